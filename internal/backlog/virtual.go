package backlog

import (
	"time"

	"github.com/tralvick/backloghub/internal/ranking"
	"github.com/tralvick/backloghub/pkg/metrics"
	"github.com/tralvick/backloghub/pkg/models"
)

// Resolver builds the computed wishlist and upcoming views. Neither is
// stored: both are derived from user states and artifact release dates
// on every request.
type Resolver struct {
	repo *Repository
	now  func() time.Time
}

func NewResolver(repo *Repository) *Resolver {
	return &Resolver{repo: repo, now: time.Now}
}

// Wishlist returns the released portion of the user's wishlist for one
// kind, ranked by Elo with per-user overrides applied. An empty sort
// key keeps the Elo competition order.
func (r *Resolver) Wishlist(userID string, kind models.ArtifactKind, sortKey models.SortKey) ([]models.BacklogEntry, error) {
	rows, err := r.repo.WishlistRows(userID, kind)
	if err != nil {
		return nil, err
	}

	now := r.now()
	released := make([]models.BacklogEntry, 0, len(rows))
	for _, e := range rows {
		if e.ReleaseDate.After(now) {
			continue
		}
		e.BacklogID = models.WishlistBacklogID
		released = append(released, e)
	}

	entries := ranking.Rank(released, models.RankingElo)
	switch sortKey {
	case "", models.SortByElo:
		// already in Elo order
	case models.SortByRank:
		entries = ranking.SortByRankEloTie(entries)
	default:
		entries = ranking.SortBy(entries, sortKey)
	}

	metrics.IncrementVirtualBacklogBuilds()
	return entries, nil
}

// Upcoming returns the unreleased portion of the user's wishlist for
// one kind, soonest first, with sequential positions. Entries carry
// the default Elo; duels and rank overrides do not apply here.
func (r *Resolver) Upcoming(userID string, kind models.ArtifactKind) ([]models.BacklogEntry, error) {
	rows, err := r.repo.WishlistRows(userID, kind)
	if err != nil {
		return nil, err
	}

	now := r.now()
	upcoming := make([]models.BacklogEntry, 0, len(rows))
	for _, e := range rows {
		if !e.ReleaseDate.After(now) {
			continue
		}
		e.BacklogID = models.UpcomingBacklogID
		e.Elo = ranking.DefaultElo
		e.Rank = nil
		upcoming = append(upcoming, e)
	}

	entries := ranking.SortBy(upcoming, models.SortByDateRelease)
	for i := range entries {
		entries[i].Position = i + 1
	}

	metrics.IncrementVirtualBacklogBuilds()
	return entries, nil
}
