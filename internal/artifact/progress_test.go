package artifact

import (
	"testing"

	"github.com/tralvick/backloghub/pkg/models"
)

func seasonWithEpisodes(n int) *Node {
	season := &Node{ID: 100, Kind: models.KindTVShowSeason}
	for i := 0; i < n; i++ {
		idx := i + 1
		season.Children = append(season.Children, &Node{
			ID:         int64(101 + i),
			Kind:       models.KindTVShowEpisode,
			ChildIndex: &idx,
		})
	}
	return season
}

func markFinished(n *Node, userID string) {
	status := models.StatusFinished
	n.State = &models.UserState{UserID: userID, ArtifactID: n.ID, Status: &status}
}

func TestLastAndNext_GapBlocksProgress(t *testing.T) {
	season := seasonWithEpisodes(4)
	markFinished(season.Children[0], "u1")
	markFinished(season.Children[2], "u1")

	p, err := season.LastAndNext()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// episode 3 being finished must not count past the open episode 2
	if p.Last == nil || p.Last.ID != season.Children[0].ID {
		t.Errorf("last should be episode 1, got %+v", p.Last)
	}
	if p.Next == nil || p.Next.ID != season.Children[1].ID {
		t.Errorf("next should be episode 2, got %+v", p.Next)
	}
}

func TestLastAndNext_NothingWatched(t *testing.T) {
	season := seasonWithEpisodes(3)

	p, err := season.LastAndNext()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Last != nil {
		t.Errorf("last should be nil, got %d", p.Last.ID)
	}
	if p.Next == nil || p.Next.ID != season.Children[0].ID {
		t.Errorf("next should be the first episode, got %+v", p.Next)
	}
}

func TestLastAndNext_AllFinished(t *testing.T) {
	season := seasonWithEpisodes(3)
	for _, ep := range season.Children {
		markFinished(ep, "u1")
	}

	p, err := season.LastAndNext()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Last == nil || p.Last.ID != season.Children[2].ID {
		t.Errorf("last should be the final episode, got %+v", p.Last)
	}
	if p.Next != nil {
		t.Errorf("next should be nil when everything is finished, got %d", p.Next.ID)
	}
}

func TestLastAndNext_NonFinishedStatusDoesNotCount(t *testing.T) {
	season := seasonWithEpisodes(2)
	status := models.StatusOngoing
	season.Children[0].State = &models.UserState{Status: &status}

	p, err := season.LastAndNext()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Next == nil || p.Next.ID != season.Children[0].ID {
		t.Errorf("an ongoing episode is still open: next should be episode 1, got %+v", p.Next)
	}
}

func TestLastAndNext_Idempotent(t *testing.T) {
	season := seasonWithEpisodes(3)
	markFinished(season.Children[0], "u1")

	first, err := season.LastAndNext()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := season.LastAndNext()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Last != second.Last || first.Next != second.Next {
		t.Error("repeated calls must return the same answer")
	}
}

func TestLastAndNext_LeafKindsUnsupported(t *testing.T) {
	for _, kind := range []models.ArtifactKind{models.KindMovie, models.KindGame, models.KindTVShowEpisode, models.KindAnimeEpisode} {
		n := &Node{ID: 1, Kind: kind}
		if _, err := n.LastAndNext(); err != ErrUnsupportedOperation {
			t.Errorf("%s: expected ErrUnsupportedOperation, got %v", kind, err)
		}
	}
}

func TestLastAndNext_EmptyContainer(t *testing.T) {
	show := &Node{ID: 1, Kind: models.KindTVShow}

	p, err := show.LastAndNext()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Last != nil || p.Next != nil {
		t.Errorf("empty container should have no progress, got %+v", p)
	}
}
