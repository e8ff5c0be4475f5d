package artifact

import (
	"math"
	"testing"

	"github.com/tralvick/backloghub/pkg/models"
)

const tolerance = 1e-9

func TestMeanRating_PlainMean(t *testing.T) {
	ratings := []models.Rating{
		{Source: models.SourceIMDB, Value: 8.0},
		{Source: models.SourceRottenTomatoes, Value: 9.0},
		{Source: models.SourceMetacritic, Value: 7.0},
	}

	for _, kind := range []models.ArtifactKind{models.KindMovie, models.KindTVShow, models.KindAnime} {
		got := MeanRating(kind, ratings)
		if got == nil {
			t.Fatalf("%s: expected a mean, got nil", kind)
		}
		if math.Abs(*got-8.0) > tolerance {
			t.Errorf("%s: got %f, want 8.0", kind, *got)
		}
	}
}

func TestMeanRating_NoRatings(t *testing.T) {
	if got := MeanRating(models.KindMovie, nil); got != nil {
		t.Errorf("no ratings should yield nil, got %f", *got)
	}
	if got := MeanRating(models.KindGame, nil); got != nil {
		t.Errorf("game without ratings should yield nil, got %f", *got)
	}
}

func TestMeanRating_SeasonAndEpisodeNeverAggregate(t *testing.T) {
	ratings := []models.Rating{{Source: models.SourceIMDB, Value: 9.5}}

	for _, kind := range []models.ArtifactKind{models.KindTVShowSeason, models.KindTVShowEpisode, models.KindAnimeEpisode} {
		if got := MeanRating(kind, ratings); got != nil {
			t.Errorf("%s: expected nil, got %f", kind, *got)
		}
	}
}

func TestMeanRating_GameBlend(t *testing.T) {
	ratings := []models.Rating{
		{Source: models.SourceMetacritic, Value: 85},
		{Source: models.SourceOpenCritic, Value: 87},
		{Source: models.SourceSteam, Value: 80},
		{Source: models.SourceGOG, Value: 95},
	}

	got := MeanRating(models.KindGame, ratings)
	if got == nil {
		t.Fatal("expected a blend, got nil")
	}

	critic := (85.0 + 87.0) / 2
	audience := (80.0 + 0.2*95.0) / 1.2
	want := (critic + audience) / 2
	if math.Abs(*got-want) > tolerance {
		t.Errorf("got %f, want %f", *got, want)
	}
}

func TestMeanRating_GamePartialSources(t *testing.T) {
	cases := []struct {
		name    string
		ratings []models.Rating
		want    float64
	}{
		{
			name:    "critic only",
			ratings: []models.Rating{{Source: models.SourceMetacritic, Value: 82}},
			want:    82,
		},
		{
			name:    "audience primary only",
			ratings: []models.Rating{{Source: models.SourceSteam, Value: 91}},
			want:    91,
		},
		{
			name:    "audience secondary only",
			ratings: []models.Rating{{Source: models.SourceGOG, Value: 76}},
			want:    76,
		},
		{
			name: "one of each group",
			ratings: []models.Rating{
				{Source: models.SourceOpenCritic, Value: 70},
				{Source: models.SourceGOG, Value: 90},
			},
			want: 80,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MeanRating(models.KindGame, tc.ratings)
			if got == nil {
				t.Fatal("expected a value, got nil")
			}
			if math.Abs(*got-tc.want) > tolerance {
				t.Errorf("got %f, want %f", *got, tc.want)
			}
		})
	}
}

func TestMeanRating_GameIgnoresUnknownSources(t *testing.T) {
	ratings := []models.Rating{
		{Source: models.SourceIMDB, Value: 10},
		{Source: models.SourceMetacritic, Value: 80},
	}

	got := MeanRating(models.KindGame, ratings)
	if got == nil {
		t.Fatal("expected a value, got nil")
	}
	if math.Abs(*got-80) > tolerance {
		t.Errorf("unknown sources must not contribute: got %f, want 80", *got)
	}
}
