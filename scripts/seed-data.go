package main

import (
	"log"
	"os"

	"github.com/tralvick/backloghub/internal/artifact"
	"github.com/tralvick/backloghub/pkg/database"
	"github.com/tralvick/backloghub/pkg/models"
)

// Seeds the local database with a few artifacts for manual testing.
func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "data/backloghub.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	repo := artifact.NewRepository(db)

	movies := []models.CreateArtifactRequest{
		{
			Title:       "The Long Voyage",
			Kind:        string(models.KindMovie),
			ReleaseDate: "2019-07-12",
			Duration:    8280,
			Genres:      []string{"drama", "adventure"},
			Ratings: []models.Rating{
				{Source: models.SourceIMDB, Value: 7.9},
				{Source: models.SourceRottenTomatoes, Value: 8.4},
			},
		},
		{
			Title:       "Static Horizon",
			Kind:        string(models.KindGame),
			ReleaseDate: "2023-03-02",
			Genres:      []string{"rpg"},
			Ratings: []models.Rating{
				{Source: models.SourceMetacritic, Value: 88},
				{Source: models.SourceSteam, Value: 92},
				{Source: models.SourceGOG, Value: 85},
			},
		},
		{
			Title:       "Harbor Lights",
			Kind:        string(models.KindTVShow),
			ReleaseDate: "2021-01-15",
			Genres:      []string{"drama"},
			Ratings:     []models.Rating{{Source: models.SourceIMDB, Value: 8.6}},
			Children: []models.CreateArtifactRequest{
				{
					Title: "Season 1",
					Kind:  string(models.KindTVShowSeason),
					Children: []models.CreateArtifactRequest{
						{Title: "Arrival", Kind: string(models.KindTVShowEpisode), Duration: 2700},
						{Title: "The Storm", Kind: string(models.KindTVShowEpisode), Duration: 2700},
						{Title: "Low Tide", Kind: string(models.KindTVShowEpisode), Duration: 2700},
					},
				},
			},
		},
	}

	for _, req := range movies {
		id, err := repo.Create(req)
		if err != nil {
			log.Fatalf("Failed to seed %q: %v", req.Title, err)
		}
		log.Printf("Seeded %q as artifact %d", req.Title, id)
	}

	log.Println("Seed data inserted successfully")
}
