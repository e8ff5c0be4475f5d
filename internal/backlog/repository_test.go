package backlog

import (
	"math"
	"testing"

	"github.com/tralvick/backloghub/internal/ranking"
	"github.com/tralvick/backloghub/pkg/models"
)

func TestCreateListAndDeleteBacklog(t *testing.T) {
	repo, _, _ := setupBacklogTest(t)

	created, err := repo.CreateBacklog("u1", models.CreateBacklogRequest{
		Title: "To play",
		Kind:  string(models.KindGame),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.RankingType != models.RankingRank {
		t.Errorf("default ranking type: got %s, want RANK", created.RankingType)
	}

	if _, err := repo.CreateBacklog("u1", models.CreateBacklogRequest{
		Title:       "Best of",
		Kind:        string(models.KindGame),
		RankingType: string(models.RankingElo),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	backlogs, err := repo.ListBacklogs("u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(backlogs) != 2 {
		t.Fatalf("expected 2 backlogs, got %d", len(backlogs))
	}

	deleted, err := repo.DeleteBacklog(created.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted {
		t.Fatal("expected deletion")
	}
	if b, _ := repo.GetBacklog(created.ID); b != nil {
		t.Fatal("backlog still present after delete")
	}
}

func TestEntries_JoinAndRankUpdate(t *testing.T) {
	repo, _, db := setupBacklogTest(t)

	b, err := repo.CreateBacklog("u1", models.CreateBacklogRequest{Title: "To play", Kind: string(models.KindGame)})
	if err != nil {
		t.Fatalf("create backlog: %v", err)
	}

	release := testNow.AddDate(-1, 0, 0)
	game := insertArtifact(t, db, "Game One", models.KindGame, release)

	if err := repo.AddEntry(b.ID, models.AddEntryRequest{ArtifactID: game, Tags: []string{"coop"}}); err != nil {
		t.Fatalf("add entry: %v", err)
	}

	entries, err := repo.Entries(b.ID)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Title != "Game One" {
		t.Errorf("title not joined: %q", e.Title)
	}
	if !e.ReleaseDate.Equal(release) {
		t.Errorf("release date: got %s, want %s", e.ReleaseDate, release)
	}
	if e.Elo != ranking.DefaultElo {
		t.Errorf("elo: got %f", e.Elo)
	}
	if e.Rank != nil {
		t.Errorf("rank should start unset, got %d", *e.Rank)
	}
	if len(e.Tags) != 1 || e.Tags[0] != "coop" {
		t.Errorf("tags: %v", e.Tags)
	}

	updated, err := repo.SetRank(b.ID, game, 3)
	if err != nil {
		t.Fatalf("set rank: %v", err)
	}
	if !updated {
		t.Fatal("expected rank update")
	}
	entries, _ = repo.Entries(b.ID)
	if entries[0].Rank == nil || *entries[0].Rank != 3 {
		t.Fatalf("rank not persisted: %+v", entries[0].Rank)
	}

	removed, err := repo.RemoveEntry(b.ID, game)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !removed {
		t.Fatal("expected removal")
	}
	if entries, _ = repo.Entries(b.ID); len(entries) != 0 {
		t.Fatalf("entry still present: %+v", entries)
	}
}

func TestDuel_UpdatesBothEntries(t *testing.T) {
	repo, _, db := setupBacklogTest(t)

	b, err := repo.CreateBacklog("u1", models.CreateBacklogRequest{
		Title:       "Best of",
		Kind:        string(models.KindGame),
		RankingType: string(models.RankingElo),
	})
	if err != nil {
		t.Fatalf("create backlog: %v", err)
	}

	g1 := insertArtifact(t, db, "G1", models.KindGame, testNow.AddDate(-1, 0, 0))
	g2 := insertArtifact(t, db, "G2", models.KindGame, testNow.AddDate(-1, 0, 0))
	for _, id := range []int64{g1, g2} {
		if err := repo.AddEntry(b.ID, models.AddEntryRequest{ArtifactID: id}); err != nil {
			t.Fatalf("add entry: %v", err)
		}
	}

	winnerElo, loserElo, err := repo.Duel(b.ID, g1, g2)
	if err != nil {
		t.Fatalf("duel: %v", err)
	}
	if math.Abs(winnerElo-1216) > 1e-9 || math.Abs(loserElo-1184) > 1e-9 {
		t.Fatalf("elo after equal duel: got %f / %f", winnerElo, loserElo)
	}

	entries, err := repo.Entries(b.ID)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	byID := map[int64]float64{}
	for _, e := range entries {
		byID[e.ArtifactID] = e.Elo
	}
	if math.Abs(byID[g1]-1216) > 1e-9 || math.Abs(byID[g2]-1184) > 1e-9 {
		t.Fatalf("persisted elo wrong: %v", byID)
	}
}

func TestDuel_MissingEntryFails(t *testing.T) {
	repo, _, db := setupBacklogTest(t)

	b, _ := repo.CreateBacklog("u1", models.CreateBacklogRequest{Title: "x", Kind: string(models.KindGame)})
	g1 := insertArtifact(t, db, "G1", models.KindGame, testNow)
	if err := repo.AddEntry(b.ID, models.AddEntryRequest{ArtifactID: g1}); err != nil {
		t.Fatalf("add entry: %v", err)
	}

	if _, _, err := repo.Duel(b.ID, g1, 9999); err == nil {
		t.Fatal("dueling a missing entry must fail")
	}

	// the winner's elo must be untouched after the rollback
	entries, _ := repo.Entries(b.ID)
	if entries[0].Elo != ranking.DefaultElo {
		t.Fatalf("elo changed despite failed duel: %f", entries[0].Elo)
	}
}

func TestAddEntry_ReAddUpdatesRankAndTags(t *testing.T) {
	repo, _, db := setupBacklogTest(t)

	b, _ := repo.CreateBacklog("u1", models.CreateBacklogRequest{Title: "x", Kind: string(models.KindGame)})
	g := insertArtifact(t, db, "G", models.KindGame, testNow)

	if err := repo.AddEntry(b.ID, models.AddEntryRequest{ArtifactID: g}); err != nil {
		t.Fatalf("add: %v", err)
	}

	rank := 5
	if err := repo.AddEntry(b.ID, models.AddEntryRequest{ArtifactID: g, Rank: &rank, Tags: []string{"replay"}}); err != nil {
		t.Fatalf("re-add: %v", err)
	}

	entries, _ := repo.Entries(b.ID)
	if len(entries) != 1 {
		t.Fatalf("re-add must not duplicate: %d entries", len(entries))
	}
	if entries[0].Rank == nil || *entries[0].Rank != 5 {
		t.Errorf("rank not updated: %+v", entries[0].Rank)
	}
	if len(entries[0].Tags) != 1 || entries[0].Tags[0] != "replay" {
		t.Errorf("tags not updated: %v", entries[0].Tags)
	}
	if entries[0].DateAdded.IsZero() {
		t.Error("date added not set")
	}
}

func TestEntries_CorruptTagsRowStillListed(t *testing.T) {
	repo, _, db := setupBacklogTest(t)

	b, _ := repo.CreateBacklog("u1", models.CreateBacklogRequest{Title: "x", Kind: string(models.KindGame)})
	g := insertArtifact(t, db, "G", models.KindGame, testNow)
	if err := repo.AddEntry(b.ID, models.AddEntryRequest{ArtifactID: g}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := db.Exec(`UPDATE backlog_entries SET tags = 'not-json' WHERE backlog_id = ? AND artifact_id = ?`, b.ID, g); err != nil {
		t.Fatalf("corrupt tags: %v", err)
	}

	entries, err := repo.Entries(b.ID)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("corrupt tags must not drop the row: %d entries", len(entries))
	}
	if entries[0].Tags != nil {
		t.Errorf("tags should be empty on unreadable column: %v", entries[0].Tags)
	}
}
