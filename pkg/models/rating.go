package models

// Rating source names. Sources are kind-specific: the critic aggregates
// apply to movies/shows/games, the single audience score to anime.
const (
	SourceIMDB           = "imdb"
	SourceRottenTomatoes = "rotten_tomatoes"
	SourceMetacritic     = "metacritic"
	SourceOpenCritic     = "opencritic"
	SourceSteam          = "steam"
	SourceGOG            = "gog"
	SourceMAL            = "mal"
)

// Rating is one (source, value) pair attached to an artifact. Several
// entries with different sources may coexist on the same artifact.
type Rating struct {
	Source string  `json:"source" db:"source"`
	Value  float64 `json:"value" db:"value"`
}
