package models

import "time"

// RankingType selects how a backlog seeds the rank of its entries.
type RankingType string

const (
	RankingRank     RankingType = "RANK"
	RankingElo      RankingType = "ELO"
	RankingWishlist RankingType = "WISHLIST"
)

func (r RankingType) Valid() bool {
	switch r {
	case RankingRank, RankingElo, RankingWishlist:
		return true
	}
	return false
}

// SortKey is the display order requested over already-ranked entries.
type SortKey string

const (
	SortByRank        SortKey = "RANK"
	SortByElo         SortKey = "ELO"
	SortByDateAdded   SortKey = "DATE_ADDED"
	SortByDateRelease SortKey = "DATE_RELEASE"
)

func (s SortKey) Valid() bool {
	switch s {
	case SortByRank, SortByElo, SortByDateAdded, SortByDateRelease:
		return true
	}
	return false
}

// Reserved backlog ids for the computed views. Negative so they can
// never collide with a stored backlog.
const (
	WishlistBacklogID int64 = -1
	UpcomingBacklogID int64 = -2
)

type Backlog struct {
	ID          int64        `json:"id" db:"id"`
	UserID      string       `json:"user_id" db:"user_id"`
	Kind        ArtifactKind `json:"kind" db:"kind"`
	Title       string       `json:"title" db:"title"`
	RankingType RankingType  `json:"ranking_type" db:"ranking_type"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
}

// BacklogEntry is a relation between a backlog and one artifact,
// joined to the artifact attributes the ranking keys need. Rank nil
// means unranked; Position is the 1-based rank annotated by the
// ranking engine, not a stored column.
type BacklogEntry struct {
	BacklogID   int64     `json:"backlog_id" db:"backlog_id"`
	ArtifactID  int64     `json:"artifact_id" db:"artifact_id"`
	Title       string    `json:"title" db:"title"`
	Rank        *int      `json:"rank" db:"rank"`
	Elo         float64   `json:"elo" db:"elo"`
	DateAdded   time.Time `json:"date_added" db:"date_added"`
	ReleaseDate time.Time `json:"release_date" db:"release_date"`
	Tags        []string  `json:"tags,omitempty"`
	Position    int       `json:"position"`
}

type CreateBacklogRequest struct {
	Title       string `json:"title" binding:"required"`
	Kind        string `json:"kind" binding:"required"`
	RankingType string `json:"ranking_type" binding:"omitempty,oneof=RANK ELO WISHLIST"`
}

type AddEntryRequest struct {
	ArtifactID int64    `json:"artifact_id" binding:"required"`
	Rank       *int     `json:"rank" binding:"omitempty,min=1"`
	Tags       []string `json:"tags"`
}

type SetRankRequest struct {
	ArtifactID int64 `json:"artifact_id" binding:"required"`
	Rank       int   `json:"rank" binding:"required,min=1"`
}

// DuelRequest records one pairwise comparison; the winner gains Elo
// from the loser.
type DuelRequest struct {
	WinnerID int64 `json:"winner_id" binding:"required"`
	LoserID  int64 `json:"loser_id" binding:"required"`
}
