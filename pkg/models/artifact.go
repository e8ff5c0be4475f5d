package models

// ArtifactKind tags the concrete type of a tracked media unit.
type ArtifactKind string

const (
	KindMovie         ArtifactKind = "movie"
	KindTVShow        ArtifactKind = "tvshow"
	KindTVShowSeason  ArtifactKind = "tvshow_season"
	KindTVShowEpisode ArtifactKind = "tvshow_episode"
	KindAnime         ArtifactKind = "anime"
	KindAnimeEpisode  ArtifactKind = "anime_episode"
	KindGame          ArtifactKind = "game"
)

// Valid reports whether k is one of the known artifact kinds.
func (k ArtifactKind) Valid() bool {
	switch k {
	case KindMovie, KindTVShow, KindTVShowSeason, KindTVShowEpisode,
		KindAnime, KindAnimeEpisode, KindGame:
		return true
	}
	return false
}

// IsContainer reports whether artifacts of this kind carry an ordered
// child sequence (episodes or seasons) that progress can walk.
func (k ArtifactKind) IsContainer() bool {
	switch k {
	case KindTVShow, KindTVShowSeason, KindAnime:
		return true
	}
	return false
}

// ArtifactRow is the flat storage shape of one artifact. Release date
// crosses the boundary as an integer epoch-millisecond string.
type ArtifactRow struct {
	ID          int64        `json:"id" db:"id"`
	Title       string       `json:"title" db:"title"`
	Kind        ArtifactKind `json:"kind" db:"kind"`
	ParentID    *int64       `json:"parent_id,omitempty" db:"parent_id"`
	ChildIndex  *int         `json:"child_index,omitempty" db:"child_index"`
	Duration    int64        `json:"duration" db:"duration"`
	ReleaseDate string       `json:"release_date" db:"release_date"`
	Description string       `json:"description,omitempty" db:"description"`
}

// Link is an external reference attached to an artifact.
type Link struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type SearchArtifactRequest struct {
	Kind     string `form:"kind" binding:"required"`
	Q        string `form:"q"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=200"`
}

// CreateArtifactRequest creates an artifact, optionally with its whole
// child tree in one request. Child indexes are assigned in list order.
type CreateArtifactRequest struct {
	Title       string                  `json:"title" binding:"required"`
	Kind        string                  `json:"kind" binding:"required"`
	ReleaseDate string                  `json:"release_date"`
	Duration    int64                   `json:"duration" binding:"omitempty,min=0"`
	Description string                  `json:"description"`
	Genres      []string                `json:"genres"`
	Tags        []string                `json:"tags"`
	Links       []Link                  `json:"links"`
	Ratings     []Rating                `json:"ratings"`
	Children    []CreateArtifactRequest `json:"children"`
}

type PaginationMeta struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}
