package domain

import "time"

// PlaceDetails is the record shape returned by the general places provider.
type PlaceDetails struct {
	Name             string   `json:"name,omitempty"`
	Summary          string   `json:"summary,omitempty"`
	Rating           *float64 `json:"rating,omitempty"`
	UserRatingsTotal *int     `json:"user_ratings_total,omitempty"`
	PriceLevel       *int     `json:"price_level,omitempty"`
	Website          string   `json:"website,omitempty"`
	Phone            string   `json:"phone,omitempty"`
	OpeningHours     []string `json:"opening_hours,omitempty"`
	Photos           []string `json:"photos,omitempty"`
	Reviews          []string `json:"reviews,omitempty"`
	Types            []string `json:"types,omitempty"`
}

// ArticleDetails is the record shape returned by the encyclopedia provider.
type ArticleDetails struct {
	Title      string   `json:"title,omitempty"`
	Extract    string   `json:"extract,omitempty"`
	URL        string   `json:"url,omitempty"`
	Images     []string `json:"images,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

// GeoDetails is the record shape returned by the geodata provider.
type GeoDetails struct {
	Website        string   `json:"website,omitempty"`
	Phone          string   `json:"phone,omitempty"`
	OpeningHours   []string `json:"opening_hours,omitempty"`
	Cuisine        []string `json:"cuisine,omitempty"`
	Amenities      []string `json:"amenities,omitempty"`
	DietOptions    []string `json:"diet_options,omitempty"`
	OutdoorSeating *bool    `json:"outdoor_seating,omitempty"`
	Wheelchair     *bool    `json:"wheelchair,omitempty"`
	PaymentMethods []string `json:"payment_methods,omitempty"`
	Capacity       *int     `json:"capacity,omitempty"`
}

// MergedEnrichment is the reconciled view of up to three provider records.
// Sources lists exactly the providers that contributed at least one field,
// and Confidence is derived solely from source cardinality and field
// completeness.
type MergedEnrichment struct {
	Description      string    `json:"description,omitempty"`
	Rating           *float64  `json:"rating,omitempty"`
	RatingWeight     float64   `json:"rating_weight,omitempty"`
	UserRatingsTotal *int      `json:"user_ratings_total,omitempty"`
	PriceLevel       *int      `json:"price_level,omitempty"`
	Website          string    `json:"website,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	OpeningHours     []string  `json:"opening_hours,omitempty"`
	Photos           []string  `json:"photos,omitempty"`
	Reviews          []string  `json:"reviews,omitempty"`
	Categories       []string  `json:"categories,omitempty"`
	Cuisine          []string  `json:"cuisine,omitempty"`
	Amenities        []string  `json:"amenities,omitempty"`
	DietOptions      []string  `json:"diet_options,omitempty"`
	OutdoorSeating   *bool     `json:"outdoor_seating,omitempty"`
	Wheelchair       *bool     `json:"wheelchair,omitempty"`
	PaymentMethods   []string  `json:"payment_methods,omitempty"`
	Capacity         *int      `json:"capacity,omitempty"`
	Sources          []string  `json:"sources"`
	Confidence       float64   `json:"confidence"`
	EnrichedAt       time.Time `json:"enriched_at"`
}
