package artifact

import "github.com/tralvick/backloghub/pkg/models"

// Weight applied to the secondary audience source in the game blend.
const secondaryAudienceWeight = 0.2

// MeanRating reduces an artifact's rating entries to a single value, or
// nil when no rating applies. The policy is kind-specific; season and
// episode kinds never aggregate (ratings live at the show level).
func MeanRating(kind models.ArtifactKind, ratings []models.Rating) *float64 {
	switch kind {
	case models.KindMovie, models.KindTVShow, models.KindAnime:
		return meanAll(ratings)
	case models.KindGame:
		return gameBlend(ratings)
	}
	return nil
}

// meanAll is the arithmetic mean over every entry, ignoring source.
func meanAll(ratings []models.Rating) *float64 {
	if len(ratings) == 0 {
		return nil
	}
	var sum float64
	for _, r := range ratings {
		sum += r.Value
	}
	mean := sum / float64(len(ratings))
	return &mean
}

// gameBlend combines the critic pair by plain average and the audience
// pair with the secondary source down-weighted:
// (primary + 0.2*secondary) / 1.2. The two group results are then
// averaged. Sources outside the four known ones are ignored.
func gameBlend(ratings []models.Rating) *float64 {
	var metacritic, opencritic, steam, gog *float64
	for i := range ratings {
		v := ratings[i].Value
		switch ratings[i].Source {
		case models.SourceMetacritic:
			metacritic = &v
		case models.SourceOpenCritic:
			opencritic = &v
		case models.SourceSteam:
			steam = &v
		case models.SourceGOG:
			gog = &v
		}
	}

	var critic *float64
	switch {
	case metacritic != nil && opencritic != nil:
		avg := (*metacritic + *opencritic) / 2
		critic = &avg
	case metacritic != nil:
		critic = metacritic
	case opencritic != nil:
		critic = opencritic
	}

	var audience *float64
	switch {
	case steam != nil && gog != nil:
		blend := (*steam + secondaryAudienceWeight**gog) / (1 + secondaryAudienceWeight)
		audience = &blend
	case steam != nil:
		audience = steam
	case gog != nil:
		audience = gog
	}

	switch {
	case critic != nil && audience != nil:
		mean := (*critic + *audience) / 2
		return &mean
	case critic != nil:
		return critic
	case audience != nil:
		return audience
	}
	return nil
}
