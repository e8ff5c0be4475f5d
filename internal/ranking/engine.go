package ranking

import (
	"math"
	"sort"

	"github.com/tralvick/backloghub/pkg/metrics"
	"github.com/tralvick/backloghub/pkg/models"
)

const (
	// DefaultElo is assigned to entries that were never dueled.
	DefaultElo = 1200.0

	// UnrankedSentinel sorts unranked entries after every real rank
	// while keeping them orderable among themselves.
	UnrankedSentinel = math.MaxInt32
)

// Rank annotates entries with a 1-based position under the given
// strategy and sorts them accordingly. The input slice is reordered in
// place and returned.
//
// RANK keeps the stored manual rank; unranked entries take the
// sentinel and order among themselves by date added. ELO and WISHLIST
// assign standard competition ranks (ties share a rank, the next
// distinct value skips the tied count) over elo descending and release
// date ascending respectively.
func Rank(entries []models.BacklogEntry, strategy models.RankingType) []models.BacklogEntry {
	metrics.IncrementRankingsComputed()

	switch strategy {
	case models.RankingElo:
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].Elo != entries[j].Elo {
				return entries[i].Elo > entries[j].Elo
			}
			if !entries[i].DateAdded.Equal(entries[j].DateAdded) {
				return entries[i].DateAdded.Before(entries[j].DateAdded)
			}
			return entries[i].ArtifactID < entries[j].ArtifactID
		})
		annotateCompetition(entries, func(i, j int) bool {
			return entries[i].Elo == entries[j].Elo
		})

	case models.RankingWishlist:
		sort.SliceStable(entries, func(i, j int) bool {
			if !entries[i].ReleaseDate.Equal(entries[j].ReleaseDate) {
				return entries[i].ReleaseDate.Before(entries[j].ReleaseDate)
			}
			return entries[i].ArtifactID < entries[j].ArtifactID
		})
		annotateCompetition(entries, func(i, j int) bool {
			return entries[i].ReleaseDate.Equal(entries[j].ReleaseDate)
		})

	default: // RANK
		for i := range entries {
			entries[i].Position = manualRank(entries[i])
		}
		sortDefault(entries)
	}
	return entries
}

// annotateCompetition assigns standard competition ranks over entries
// already sorted by the ranking key; same reports whether two indexes
// hold equal keys.
func annotateCompetition(entries []models.BacklogEntry, same func(i, j int) bool) {
	for i := range entries {
		if i > 0 && same(i, i-1) {
			entries[i].Position = entries[i-1].Position
			continue
		}
		entries[i].Position = i + 1
	}
}

func manualRank(e models.BacklogEntry) int {
	if e.Rank == nil {
		return UnrankedSentinel
	}
	return *e.Rank
}

// sortDefault orders by annotated rank ascending, ties by date added
// ascending.
func sortDefault(entries []models.BacklogEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Position != entries[j].Position {
			return entries[i].Position < entries[j].Position
		}
		if !entries[i].DateAdded.Equal(entries[j].DateAdded) {
			return entries[i].DateAdded.Before(entries[j].DateAdded)
		}
		return entries[i].ArtifactID < entries[j].ArtifactID
	})
}

// SortBy reorders already-ranked entries by a display key without
// recomputing their positions.
func SortBy(entries []models.BacklogEntry, key models.SortKey) []models.BacklogEntry {
	switch key {
	case models.SortByElo:
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].Elo != entries[j].Elo {
				return entries[i].Elo > entries[j].Elo
			}
			return entries[i].ArtifactID < entries[j].ArtifactID
		})
	case models.SortByDateAdded:
		sort.SliceStable(entries, func(i, j int) bool {
			if !entries[i].DateAdded.Equal(entries[j].DateAdded) {
				return entries[i].DateAdded.Before(entries[j].DateAdded)
			}
			return entries[i].ArtifactID < entries[j].ArtifactID
		})
	case models.SortByDateRelease:
		sort.SliceStable(entries, func(i, j int) bool {
			if !entries[i].ReleaseDate.Equal(entries[j].ReleaseDate) {
				return entries[i].ReleaseDate.Before(entries[j].ReleaseDate)
			}
			return entries[i].ArtifactID < entries[j].ArtifactID
		})
	case models.SortByRank:
		sortDefault(entries)
	default:
		sortDefault(entries)
	}
	return entries
}

// SortByRankEloTie orders by manual rank ascending with elo descending
// as the tie break. The wishlist view uses this when the caller asks
// for rank order: equal and sentinel ranks fall back to elo.
func SortByRankEloTie(entries []models.BacklogEntry) []models.BacklogEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := manualRank(entries[i]), manualRank(entries[j])
		if ri != rj {
			return ri < rj
		}
		if entries[i].Elo != entries[j].Elo {
			return entries[i].Elo > entries[j].Elo
		}
		return entries[i].ArtifactID < entries[j].ArtifactID
	})
	return entries
}
