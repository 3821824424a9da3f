package enrichment

import (
	"strings"
	"time"

	types "github.com/yungbote/wandergraph-backend/internal/domain"
)

// Provider identifiers recorded in MergedEnrichment.Sources.
const (
	SourcePlaces       = "places"
	SourceEncyclopedia = "encyclopedia"
	SourceGeodata      = "geodata"
)

// DefaultPhotoCap bounds how many photos a single provider may contribute.
const DefaultPhotoCap = 5

// candidate is one (provider, extractor) pair of a field's priority list.
// Expressing resolution order as data keeps the policy in one place instead
// of nested nil checks.
type candidate struct {
	provider string
	value    func() string
}

func firstNonEmpty(candidates []candidate, contributed map[string]bool) string {
	for _, c := range candidates {
		if c.value == nil {
			continue
		}
		v := strings.TrimSpace(c.value())
		if v == "" {
			continue
		}
		contributed[c.provider] = true
		return v
	}
	return ""
}

// Merge reconciles up to three provider records into one enrichment. Any
// argument may be nil; the merge degrades gracefully to whatever sources
// responded. Pure: no I/O, deterministic for fixed inputs apart from
// EnrichedAt, which callers wanting bit-identical output may zero.
func Merge(a *types.PlaceDetails, b *types.ArticleDetails, c *types.GeoDetails, photoCap int) types.MergedEnrichment {
	if photoCap <= 0 {
		photoCap = DefaultPhotoCap
	}

	var out types.MergedEnrichment
	contributed := map[string]bool{}

	out.Website = firstNonEmpty([]candidate{
		{SourcePlaces, optional(a, func() string { return a.Website })},
		{SourceGeodata, optional(c, func() string { return c.Website })},
		{SourceEncyclopedia, optional(b, func() string { return b.URL })},
	}, contributed)

	out.Phone = firstNonEmpty([]candidate{
		{SourcePlaces, optional(a, func() string { return a.Phone })},
		{SourceGeodata, optional(c, func() string { return c.Phone })},
	}, contributed)

	// Encyclopedia extracts read as narrative; the places summary is a
	// fallback, not a peer.
	out.Description = firstNonEmpty([]candidate{
		{SourceEncyclopedia, optional(b, func() string { return b.Extract })},
		{SourcePlaces, optional(a, func() string { return a.Summary })},
	}, contributed)

	if a != nil && len(a.OpeningHours) > 0 {
		out.OpeningHours = append([]string(nil), a.OpeningHours...)
		contributed[SourcePlaces] = true
	} else if c != nil && len(c.OpeningHours) > 0 {
		out.OpeningHours = append([]string(nil), c.OpeningHours...)
		contributed[SourceGeodata] = true
	}

	if a != nil && a.Rating != nil {
		rating := *a.Rating
		out.Rating = &rating
		reviews := 0
		if a.UserRatingsTotal != nil {
			reviews = *a.UserRatingsTotal
			total := *a.UserRatingsTotal
			out.UserRatingsTotal = &total
		}
		// A 4.8 from 12 reviews is weaker signal than a 4.8 from 1200. The
		// raw rating is still stored; the weight discounts reliability only.
		out.RatingWeight = ratingWeight(reviews)
		contributed[SourcePlaces] = true
	}

	if a != nil && a.PriceLevel != nil {
		level := *a.PriceLevel
		out.PriceLevel = &level
		contributed[SourcePlaces] = true
	}

	if a != nil && len(a.Reviews) > 0 {
		out.Reviews = append([]string(nil), a.Reviews...)
		contributed[SourcePlaces] = true
	}

	var photos []string
	if a != nil && len(a.Photos) > 0 {
		photos = append(photos, capList(a.Photos, photoCap)...)
		contributed[SourcePlaces] = true
	}
	if b != nil && len(b.Images) > 0 {
		photos = append(photos, capList(b.Images, photoCap)...)
		contributed[SourceEncyclopedia] = true
	}
	out.Photos = dedupe(photos)

	var categories []string
	if a != nil && len(a.Types) > 0 {
		categories = append(categories, a.Types...)
		contributed[SourcePlaces] = true
	}
	if b != nil && len(b.Categories) > 0 {
		categories = append(categories, b.Categories...)
		contributed[SourceEncyclopedia] = true
	}
	out.Categories = dedupe(categories)

	if c != nil {
		if len(c.Cuisine) > 0 {
			out.Cuisine = append([]string(nil), c.Cuisine...)
			contributed[SourceGeodata] = true
		}
		if len(c.Amenities) > 0 {
			out.Amenities = append([]string(nil), c.Amenities...)
			contributed[SourceGeodata] = true
		}
		if len(c.DietOptions) > 0 {
			out.DietOptions = append([]string(nil), c.DietOptions...)
			contributed[SourceGeodata] = true
		}
		if c.OutdoorSeating != nil {
			v := *c.OutdoorSeating
			out.OutdoorSeating = &v
			contributed[SourceGeodata] = true
		}
		if c.Wheelchair != nil {
			v := *c.Wheelchair
			out.Wheelchair = &v
			contributed[SourceGeodata] = true
		}
		if len(c.PaymentMethods) > 0 {
			out.PaymentMethods = append([]string(nil), c.PaymentMethods...)
			contributed[SourceGeodata] = true
		}
		if c.Capacity != nil {
			v := *c.Capacity
			out.Capacity = &v
			contributed[SourceGeodata] = true
		}
	}

	out.Sources = sourceList(contributed)
	out.Confidence = deriveConfidence(len(out.Sources), out)
	out.EnrichedAt = time.Now().UTC()
	return out
}

// deriveConfidence rewards both source diversity and field completeness:
// min(1, (2*sources + fieldBonus) / 10) with +1 for description, +1 for
// rating, +0.5 each for website, phone, photos, opening hours.
func deriveConfidence(sources int, m types.MergedEnrichment) float64 {
	bonus := 0.0
	if m.Description != "" {
		bonus += 1
	}
	if m.Rating != nil {
		bonus += 1
	}
	if m.Website != "" {
		bonus += 0.5
	}
	if m.Phone != "" {
		bonus += 0.5
	}
	if len(m.Photos) > 0 {
		bonus += 0.5
	}
	if len(m.OpeningHours) > 0 {
		bonus += 0.5
	}

	conf := (2*float64(sources) + bonus) / 10
	if conf > 1 {
		conf = 1
	}
	if conf < 0 {
		conf = 0
	}
	return conf
}

func ratingWeight(reviews int) float64 {
	if reviews <= 0 {
		return 0
	}
	w := float64(reviews) / 100
	if w > 1 {
		w = 1
	}
	return w
}

// optional guards an extractor against a nil provider record so the rule
// table can be declared unconditionally.
func optional[T any](rec *T, fn func() string) func() string {
	if rec == nil {
		return nil
	}
	return fn
}

func capList(in []string, cap int) []string {
	if cap <= 0 || len(in) <= cap {
		return in
	}
	return in[:cap]
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func sourceList(contributed map[string]bool) []string {
	// Fixed order keeps Merge deterministic.
	var out []string
	for _, s := range []string{SourcePlaces, SourceEncyclopedia, SourceGeodata} {
		if contributed[s] {
			out = append(out, s)
		}
	}
	return out
}
