package graph

import (
	"context"
	"time"
)

// PlaceUpsert is the full payload for an upsert-by-name place write,
// including provenance for the conversation that produced it.
type PlaceUpsert struct {
	Name             string
	Type             string
	Destination      string
	Description      string
	LuxuryIndicators []string

	LuxuryScoreBase float64
	ConfidenceScore float64
	ScoreEvidence   string

	ExtractionConfidence float64
	Source               string
	SourceID             string
	SourceTitle          string
	SourceDate           time.Time
}

// RelationshipUpsert is keyed by (From, RelationType, To).
type RelationshipUpsert struct {
	From         string
	FromType     string
	RelationType string
	To           string
	ToType       string
	Confidence   float64
	Evidence     string
	Source       string
	SourceID     string
}

// WisdomCreate always creates a fresh node; wisdom is deliberately never
// deduplicated, since independent corroboration is itself a signal.
type WisdomCreate struct {
	ID         string
	Topic      string
	Content    string
	AppliesTo  []string
	Tags       []string
	Confidence float64
	Source     string
	SourceID   string
}

// Store is the graph persistence contract. Implementations must enforce a
// uniqueness key on place/destination names and (from, type, to) for
// relationship edges so concurrent upserts converge instead of duplicating;
// EnsureSchema installs those constraints.
//
// Monotonic rules all implementations honor:
//   - a non-null place field is never overwritten with null
//   - score fields only move up, never down
//   - relationship confidence only moves up, never down
type Store interface {
	EnsureSchema(ctx context.Context) error

	// UpsertPlace reports whether the node was created (as opposed to
	// updated).
	UpsertPlace(ctx context.Context, p PlaceUpsert) (bool, error)

	// LinkPlaceToDestination merges a destination node and a LOCATED_IN
	// edge from the place.
	LinkPlaceToDestination(ctx context.Context, placeName, destinationName string) error

	UpsertRelationship(ctx context.Context, r RelationshipUpsert) error

	CreateWisdom(ctx context.Context, w WisdomCreate) error

	// LinkWisdom links a wisdom node to an existing destination or place
	// node by name, reporting whether a match was found. A miss is normal.
	LinkWisdom(ctx context.Context, wisdomID, targetName string) (bool, error)
}
