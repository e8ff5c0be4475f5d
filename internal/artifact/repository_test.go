package artifact_test

import (
	"database/sql"
	"testing"

	"github.com/tralvick/backloghub/internal/artifact"
	"github.com/tralvick/backloghub/pkg/database"
	"github.com/tralvick/backloghub/pkg/models"
)

func setupRepo(t *testing.T) (*artifact.Repository, *sql.DB) {
	t.Helper()
	db, err := database.Open(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// user states and backlogs reference the users table
	if _, err := db.Exec(`INSERT INTO users (id, username, email, password_hash) VALUES ('u1', 'user1', 'u1@example.com', 'x')`); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return artifact.NewRepository(db), db
}

func createShow(t *testing.T, repo *artifact.Repository) int64 {
	t.Helper()
	id, err := repo.Create(models.CreateArtifactRequest{
		Title:       "Show",
		Kind:        string(models.KindTVShow),
		ReleaseDate: "2020-01-01",
		Ratings: []models.Rating{
			{Source: models.SourceIMDB, Value: 8.0},
			{Source: models.SourceRottenTomatoes, Value: 9.0},
		},
		Genres: []string{"drama"},
		Children: []models.CreateArtifactRequest{
			{
				Title: "Season 1",
				Kind:  string(models.KindTVShowSeason),
				Children: []models.CreateArtifactRequest{
					{Title: "Pilot", Kind: string(models.KindTVShowEpisode)},
					{Title: "Second", Kind: string(models.KindTVShowEpisode)},
				},
			},
			{
				Title: "Season 2",
				Kind:  string(models.KindTVShowSeason),
				Children: []models.CreateArtifactRequest{
					{Title: "Return", Kind: string(models.KindTVShowEpisode)},
					{Title: "Finale", Kind: string(models.KindTVShowEpisode)},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("create show: %v", err)
	}
	return id
}

func TestCreateAndGetTree(t *testing.T) {
	repo, _ := setupRepo(t)
	id := createShow(t, repo)

	tree, err := repo.GetTree(id, "")
	if err != nil {
		t.Fatalf("get tree: %v", err)
	}
	if tree == nil {
		t.Fatal("tree missing")
	}

	if len(tree.Children) != 2 {
		t.Fatalf("expected 2 seasons, got %d", len(tree.Children))
	}
	if len(tree.Children[0].Children) != 2 {
		t.Fatalf("expected 2 episodes in season 1, got %d", len(tree.Children[0].Children))
	}
	if tree.Children[0].Code != "S01" || tree.Children[1].Code != "S02" {
		t.Errorf("season codes: got %q, %q", tree.Children[0].Code, tree.Children[1].Code)
	}
	if got := tree.Children[1].Children[1].Code; got != "S02E02" {
		t.Errorf("episode code: got %q, want S02E02", got)
	}
	if len(tree.Ratings) != 2 || len(tree.Genres) != 1 {
		t.Errorf("hydration incomplete: %d ratings, %d genres", len(tree.Ratings), len(tree.Genres))
	}
	if tree.ReleaseDate.IsZero() {
		t.Error("release date not stored")
	}
}

func TestGetTree_Missing(t *testing.T) {
	repo, _ := setupRepo(t)

	tree, err := repo.GetTree(12345, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree != nil {
		t.Fatal("expected nil for missing artifact")
	}
}

func TestUpdateUserState_FinishedCascadePersists(t *testing.T) {
	repo, _ := setupRepo(t)
	id := createShow(t, repo)

	_, err := repo.UpdateUserState("u1", models.UpdateUserStateRequest{
		ArtifactID: id,
		Status:     string(models.StatusFinished),
	})
	if err != nil {
		t.Fatalf("update state: %v", err)
	}

	tree, err := repo.GetTree(id, "u1")
	if err != nil {
		t.Fatalf("get tree: %v", err)
	}
	for _, nodeID := range tree.CollectIDs() {
		n := tree.FindByID(nodeID)
		if n.State == nil || n.State.Status == nil || *n.State.Status != models.StatusFinished {
			t.Errorf("artifact %d should be finished after cascade", nodeID)
		}
	}
}

func TestUpdateUserState_ScoreOnlyTouchesRoot(t *testing.T) {
	repo, _ := setupRepo(t)
	id := createShow(t, repo)

	st, err := repo.UpdateUserState("u1", models.UpdateUserStateRequest{
		ArtifactID: id,
		Score:      floatPtr(8.5),
	})
	if err != nil {
		t.Fatalf("update state: %v", err)
	}
	if st == nil || st.Score == nil || *st.Score != 8.5 {
		t.Fatalf("returned state wrong: %+v", st)
	}

	tree, _ := repo.GetTree(id, "u1")
	if tree.Children[0].State != nil {
		t.Error("children must have no state after a score-only update")
	}
}

func TestDelete_CascadesAcrossTables(t *testing.T) {
	repo, db := setupRepo(t)
	id := createShow(t, repo)

	// state on an episode, plus a backlog entry and a wishlist override
	// referencing the show
	if _, err := repo.UpdateUserState("u1", models.UpdateUserStateRequest{
		ArtifactID: id,
		Status:     string(models.StatusFinished),
	}); err != nil {
		t.Fatalf("update state: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO backlogs (user_id, kind, title, ranking_type) VALUES ('u1', 'tvshow', 'watch', 'RANK')`); err != nil {
		t.Fatalf("insert backlog: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO backlog_entries (backlog_id, artifact_id, elo, date_added) VALUES (1, ?, 1200, CURRENT_TIMESTAMP)`, id); err != nil {
		t.Fatalf("insert entry: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO wishlist_rankings (user_id, artifact_id, elo) VALUES ('u1', ?, 1300)`, id); err != nil {
		t.Fatalf("insert override: %v", err)
	}

	ids, err := repo.Delete(id)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(ids) != 7 {
		t.Fatalf("expected 7 deleted ids, got %d", len(ids))
	}

	counts := map[string]string{
		"artifacts":         `SELECT COUNT(*) FROM artifacts`,
		"user_states":       `SELECT COUNT(*) FROM user_states`,
		"backlog_entries":   `SELECT COUNT(*) FROM backlog_entries`,
		"wishlist_rankings": `SELECT COUNT(*) FROM wishlist_rankings`,
		"artifact_ratings":  `SELECT COUNT(*) FROM artifact_ratings`,
		"artifact_genres":   `SELECT COUNT(*) FROM artifact_genres`,
	}
	for table, q := range counts {
		var n int
		if err := db.QueryRow(q).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != 0 {
			t.Errorf("%s should be empty after delete, has %d rows", table, n)
		}
	}
}

func TestDelete_Missing(t *testing.T) {
	repo, _ := setupRepo(t)

	ids, err := repo.Delete(999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ids != nil {
		t.Fatalf("expected nil ids for missing artifact, got %v", ids)
	}
}

func TestSearch_KindAndTitleFilter(t *testing.T) {
	repo, _ := setupRepo(t)
	createShow(t, repo)
	if _, err := repo.Create(models.CreateArtifactRequest{Title: "Some Movie", Kind: string(models.KindMovie)}); err != nil {
		t.Fatalf("create movie: %v", err)
	}

	rows, total, err := repo.Search(models.SearchArtifactRequest{Kind: string(models.KindTVShow)})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].Title != "Show" {
		t.Fatalf("kind filter: total %d, rows %+v", total, rows)
	}

	// seasons and episodes are not top-level results
	rows, total, err = repo.Search(models.SearchArtifactRequest{Kind: string(models.KindTVShowSeason)})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 0 || len(rows) != 0 {
		t.Fatalf("child rows must not surface: total %d", total)
	}

	rows, _, err = repo.Search(models.SearchArtifactRequest{Kind: string(models.KindMovie), Q: "zzz"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("title filter failed: %+v", rows)
	}
}

func floatPtr(v float64) *float64 { return &v }
