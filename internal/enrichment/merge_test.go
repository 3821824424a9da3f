package enrichment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	types "github.com/yungbote/wandergraph-backend/internal/domain"
)

func f64(v float64) *float64 { return &v }
func i(v int) *int           { return &v }

func fullPlaces() *types.PlaceDetails {
	return &types.PlaceDetails{
		Name:             "Hotel du Cap-Eden-Roc",
		Summary:          "Iconic five-star hotel on the Cap d'Antibes.",
		Rating:           f64(4.8),
		UserRatingsTotal: i(1000),
		PriceLevel:       i(4),
		Website:          "https://www.oetkercollection.com/hotels/hotel-du-cap-eden-roc/",
		Phone:            "+33 4 93 61 39 01",
		OpeningHours:     []string{"Mo-Su 00:00-24:00"},
		Photos:           []string{"photo-a-1", "photo-a-2"},
		Reviews:          []string{"Unforgettable."},
		Types:            []string{"lodging", "hotel"},
	}
}

func fullArticle() *types.ArticleDetails {
	return &types.ArticleDetails{
		Title:      "Hotel du Cap-Eden-Roc",
		Extract:    "The Hotel du Cap-Eden-Roc is a Belle Epoque palace hotel in Antibes.",
		URL:        "https://en.wikipedia.org/wiki/Hotel_du_Cap-Eden-Roc",
		Images:     []string{"photo-b-1"},
		Categories: []string{"Hotels in France", "hotel"},
	}
}

func fullGeo() *types.GeoDetails {
	outdoor := true
	return &types.GeoDetails{
		Website:        "https://geodata.example/edenroc",
		Phone:          "+33 4 93 61 39 02",
		OpeningHours:   []string{"Apr-Oct"},
		Cuisine:        []string{"french"},
		Amenities:      []string{"restaurant", "pool"},
		OutdoorSeating: &outdoor,
	}
}

func TestMergeFieldPriorities(t *testing.T) {
	got := Merge(fullPlaces(), fullArticle(), fullGeo(), 5)

	// Places outranks geodata and the encyclopedia URL for website/phone.
	assert.Equal(t, fullPlaces().Website, got.Website)
	assert.Equal(t, fullPlaces().Phone, got.Phone)
	// Encyclopedia narrative beats the places summary.
	assert.Equal(t, fullArticle().Extract, got.Description)
	// Places hours beat geodata hours.
	assert.Equal(t, []string{"Mo-Su 00:00-24:00"}, got.OpeningHours)

	require.NotNil(t, got.Rating)
	assert.InDelta(t, 4.8, *got.Rating, 1e-9)
	assert.InDelta(t, 1.0, got.RatingWeight, 1e-9)

	// Photo union from places + encyclopedia.
	assert.ElementsMatch(t, []string{"photo-a-1", "photo-a-2", "photo-b-1"}, got.Photos)
	// Category union, case-insensitively deduplicated ("hotel" appears twice).
	assert.ElementsMatch(t, []string{"lodging", "hotel", "Hotels in France"}, got.Categories)

	// Geodata-only fields pass through verbatim.
	assert.Equal(t, []string{"french"}, got.Cuisine)
	assert.Equal(t, []string{"restaurant", "pool"}, got.Amenities)
	require.NotNil(t, got.OutdoorSeating)
	assert.True(t, *got.OutdoorSeating)

	assert.Equal(t, []string{SourcePlaces, SourceEncyclopedia, SourceGeodata}, got.Sources)
}

func TestMergeWebsiteFallbackOrder(t *testing.T) {
	// No places website: geodata wins over the encyclopedia URL.
	a := fullPlaces()
	a.Website = ""
	got := Merge(a, fullArticle(), fullGeo(), 5)
	assert.Equal(t, fullGeo().Website, got.Website)

	// No places, no geodata: encyclopedia URL is the last resort.
	got = Merge(a, fullArticle(), nil, 5)
	assert.Equal(t, fullArticle().URL, got.Website)
}

func TestMergeGracefulDegradationSingleProvider(t *testing.T) {
	got := Merge(nil, fullArticle(), nil, 5)

	assert.Equal(t, []string{SourceEncyclopedia}, got.Sources)
	assert.Equal(t, fullArticle().Extract, got.Description)
	assert.Nil(t, got.Rating)
	assert.Empty(t, got.Phone)
	assert.Empty(t, got.Cuisine)
	// One source, description (+1) and website (+0.5) and photos (+0.5):
	// (2*1 + 2) / 10 = 0.4
	assert.InDelta(t, 0.4, got.Confidence, 1e-9)
}

func TestMergeAllNil(t *testing.T) {
	got := Merge(nil, nil, nil, 5)
	assert.Empty(t, got.Sources)
	assert.Zero(t, got.Confidence)
}

func TestMergeRatingWeightDiscountsLowSamples(t *testing.T) {
	a := fullPlaces()
	a.UserRatingsTotal = i(10)
	got := Merge(a, nil, nil, 5)

	require.NotNil(t, got.Rating)
	// The raw rating survives; only the weight is discounted.
	assert.InDelta(t, 4.8, *got.Rating, 1e-9)
	assert.InDelta(t, 0.1, got.RatingWeight, 1e-9)
}

func TestMergeScenarioRatingPlusCuisine(t *testing.T) {
	a := &types.PlaceDetails{
		Rating:           f64(4.8),
		UserRatingsTotal: i(1000),
	}
	c := &types.GeoDetails{Cuisine: []string{"french"}}

	got := Merge(a, nil, c, 5)

	assert.Equal(t, []string{SourcePlaces, SourceGeodata}, got.Sources)
	assert.Equal(t, []string{"french"}, got.Cuisine)
	assert.InDelta(t, 1.0, got.RatingWeight, 1e-9)
	// Two sources plus the rating bonus: (2*2 + 1) / 10 = 0.5.
	assert.InDelta(t, 0.5, got.Confidence, 1e-9)
}

func TestMergePhotoCap(t *testing.T) {
	a := fullPlaces()
	a.Photos = []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7"}
	got := Merge(a, nil, nil, 5)
	assert.Len(t, got.Photos, 5)
}

func TestMergeDeterministicProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var a *types.PlaceDetails
		if rapid.Bool().Draw(t, "hasA") {
			a = &types.PlaceDetails{
				Summary:          rapid.StringMatching(`[a-z ]{0,40}`).Draw(t, "summary"),
				Website:          rapid.SampledFrom([]string{"", "https://a.example"}).Draw(t, "websiteA"),
				Rating:           f64(rapid.Float64Range(0, 5).Draw(t, "rating")),
				UserRatingsTotal: i(rapid.IntRange(0, 2000).Draw(t, "reviews")),
				Photos:           rapid.SliceOfN(rapid.StringMatching(`p[0-9]{1,3}`), 0, 8).Draw(t, "photos"),
				Types:            rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,8}`), 0, 5).Draw(t, "typesA"),
			}
		}
		var b *types.ArticleDetails
		if rapid.Bool().Draw(t, "hasB") {
			b = &types.ArticleDetails{
				Extract:    rapid.StringMatching(`[a-z ]{0,60}`).Draw(t, "extract"),
				URL:        rapid.SampledFrom([]string{"", "https://b.example"}).Draw(t, "urlB"),
				Categories: rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,8}`), 0, 5).Draw(t, "cats"),
			}
		}
		var c *types.GeoDetails
		if rapid.Bool().Draw(t, "hasC") {
			c = &types.GeoDetails{
				Website: rapid.SampledFrom([]string{"", "https://c.example"}).Draw(t, "websiteC"),
				Cuisine: rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,8}`), 0, 4).Draw(t, "cuisine"),
			}
		}

		first := Merge(a, b, c, 5)
		second := Merge(a, b, c, 5)
		first.EnrichedAt = time.Time{}
		second.EnrichedAt = time.Time{}

		assert.Equal(t, first, second)

		if first.Confidence < 0 || first.Confidence > 1 {
			t.Fatalf("confidence out of range: %v", first.Confidence)
		}
	})
}

func TestValidate(t *testing.T) {
	good := Merge(fullPlaces(), fullArticle(), fullGeo(), 5)
	assert.Empty(t, Validate(good))

	bad := types.MergedEnrichment{
		Rating:     f64(7.2),
		PriceLevel: i(9),
		Confidence: 1.4,
		Website:    "not a url",
	}
	errs := Validate(bad)
	assert.Len(t, errs, 4)
}

func TestValidateRelativeURL(t *testing.T) {
	m := types.MergedEnrichment{Website: "/relative/path"}
	errs := Validate(m)
	assert.Len(t, errs, 1)
}
