package artifact

import (
	"testing"

	"github.com/tralvick/backloghub/pkg/models"
)

// showTree builds a show (id 1) with two seasons (2, 3) of two
// episodes each (4/5 and 6/7).
func showTree() *Node {
	rows := []models.ArtifactRow{
		{ID: 1, Title: "Show", Kind: models.KindTVShow},
		{ID: 2, Title: "Season 1", Kind: models.KindTVShowSeason, ParentID: int64Ptr(1), ChildIndex: intPtr(1)},
		{ID: 3, Title: "Season 2", Kind: models.KindTVShowSeason, ParentID: int64Ptr(1), ChildIndex: intPtr(2)},
		{ID: 4, Title: "Pilot", Kind: models.KindTVShowEpisode, ParentID: int64Ptr(2), ChildIndex: intPtr(1)},
		{ID: 5, Title: "Second", Kind: models.KindTVShowEpisode, ParentID: int64Ptr(2), ChildIndex: intPtr(2)},
		{ID: 6, Title: "Return", Kind: models.KindTVShowEpisode, ParentID: int64Ptr(3), ChildIndex: intPtr(1)},
		{ID: 7, Title: "Finale", Kind: models.KindTVShowEpisode, ParentID: int64Ptr(3), ChildIndex: intPtr(2)},
	}
	return BuildTree(rows)
}

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }

func TestBuildTree_ShapeAndCodes(t *testing.T) {
	root := showTree()
	if root == nil {
		t.Fatal("expected a tree")
	}
	if root.ID != 1 || len(root.Children) != 2 {
		t.Fatalf("unexpected root shape: id %d, %d children", root.ID, len(root.Children))
	}

	s1 := root.Children[0]
	if s1.Code != "S01" {
		t.Errorf("season 1 code: got %q, want S01", s1.Code)
	}
	if got := s1.Children[1].Code; got != "S01E02" {
		t.Errorf("episode code: got %q, want S01E02", got)
	}
	if root.Code != "" {
		t.Errorf("show should carry no code, got %q", root.Code)
	}
}

func TestBuildTree_Empty(t *testing.T) {
	if got := BuildTree(nil); got != nil {
		t.Fatalf("expected nil for no rows, got %+v", got)
	}
}

func TestCollectIDs_DepthFirst(t *testing.T) {
	root := showTree()

	got := root.CollectIDs()
	want := []int64{1, 2, 4, 5, 3, 6, 7}
	if len(got) != len(want) {
		t.Fatalf("got %d ids, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestFindByID(t *testing.T) {
	root := showTree()

	if n := root.FindByID(6); n == nil || n.Title != "Return" {
		t.Errorf("FindByID(6): got %+v", n)
	}
	if n := root.FindByID(99); n != nil {
		t.Errorf("FindByID(99) should be nil, got %+v", n)
	}
}

func TestSetStatus_FinishedCascades(t *testing.T) {
	root := showTree()

	root.SetStatus("u1", models.StatusFinished)

	for _, id := range root.CollectIDs() {
		n := root.FindByID(id)
		if n.State == nil || n.State.Status == nil || *n.State.Status != models.StatusFinished {
			t.Errorf("artifact %d should be finished", id)
		}
	}
}

func TestSetStatus_OtherStatusesDoNotCascade(t *testing.T) {
	for _, status := range []models.UserStatus{models.StatusDropped, models.StatusOngoing, models.StatusOnHold, models.StatusWishlist} {
		root := showTree()
		root.SetStatus("u1", status)

		if root.State == nil || *root.State.Status != status {
			t.Fatalf("%s: root status not set", status)
		}
		for _, c := range root.Children {
			if c.State != nil {
				t.Errorf("%s: child %d must stay untouched", status, c.ID)
			}
		}
	}
}

func TestSetStatus_FinishCascadeKeepsExistingScores(t *testing.T) {
	root := showTree()
	ep := root.FindByID(4)
	ep.SetScore("u1", 9.0)

	root.SetStatus("u1", models.StatusFinished)

	if ep.State.Score == nil || *ep.State.Score != 9.0 {
		t.Error("cascade must not clobber an existing score")
	}
}

func TestCopyUserStates(t *testing.T) {
	src := showTree()
	src.SetStatus("u1", models.StatusFinished)
	src.FindByID(5).SetScore("u1", 7.5)

	dst := showTree()
	if err := dst.CopyUserStates(src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dst.State == nil || *dst.State.Status != models.StatusFinished {
		t.Error("root state not copied")
	}
	if got := dst.FindByID(5).State.Score; got == nil || *got != 7.5 {
		t.Error("score not copied")
	}
}

func TestCopyUserStates_ShapeMismatch(t *testing.T) {
	dst := showTree()
	other := &Node{ID: 42, Kind: models.KindMovie}

	if err := dst.CopyUserStates(other); err != ErrShapeMismatch {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestFlatten_RoundTrip(t *testing.T) {
	root := showTree()

	rows := root.Flatten()
	rebuilt := BuildTree(rows)

	if rebuilt == nil {
		t.Fatal("rebuild failed")
	}
	gotIDs := rebuilt.CollectIDs()
	wantIDs := root.CollectIDs()
	if len(gotIDs) != len(wantIDs) {
		t.Fatalf("got %d nodes, want %d", len(gotIDs), len(wantIDs))
	}
	for i := range wantIDs {
		if gotIDs[i] != wantIDs[i] {
			t.Errorf("index %d: got %d, want %d", i, gotIDs[i], wantIDs[i])
		}
	}
	if rebuilt.Children[0].Children[1].Code != "S01E02" {
		t.Error("codes must be recomputed on rebuild")
	}
}

func TestDecorate_ProgressAndRating(t *testing.T) {
	root := showTree()
	root.Ratings = []models.Rating{
		{Source: models.SourceIMDB, Value: 8.0},
		{Source: models.SourceRottenTomatoes, Value: 9.0},
	}
	season1 := root.Children[0]
	markFinished(season1.Children[0], "u1")

	root.Decorate()

	if root.MeanRating == nil || *root.MeanRating != 8.5 {
		t.Errorf("root mean rating: got %+v, want 8.5", root.MeanRating)
	}
	if season1.MeanRating != nil {
		t.Error("season must not aggregate ratings")
	}
	if season1.Progress == nil {
		t.Fatal("season progress missing")
	}
	if season1.Progress.NextID == nil || *season1.Progress.NextID != 5 {
		t.Errorf("season next: got %+v, want 5", season1.Progress.NextID)
	}
	if leaf := season1.Children[0]; leaf.Progress != nil {
		t.Error("episodes carry no progress view")
	}
}
