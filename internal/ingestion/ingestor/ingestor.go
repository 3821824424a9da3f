package ingestor

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/wandergraph-backend/internal/data/graph"
	types "github.com/yungbote/wandergraph-backend/internal/domain"
	"github.com/yungbote/wandergraph-backend/internal/platform/logger"
)

// Ingestor writes extracted knowledge into the graph store with provenance.
// Every per-item failure is collected into stats and processing continues:
// one malformed record must never abort a conversation's ingestion.
type Ingestor struct {
	Store  graph.Store
	Scorer types.Scorer
	Log    *logger.Logger
}

func New(store graph.Store, scorer types.Scorer, log *logger.Logger) (*Ingestor, error) {
	if store == nil {
		return nil, fmt.Errorf("ingestor: graph store required")
	}
	if scorer == nil {
		return nil, fmt.Errorf("ingestor: scorer required")
	}
	if log == nil {
		return nil, fmt.Errorf("ingestor: logger required")
	}
	return &Ingestor{
		Store:  store,
		Scorer: scorer,
		Log:    log.With("component", "GraphIngestor"),
	}, nil
}

// BatchItem pairs one extraction result with the provenance of the
// conversation it came from.
type BatchItem struct {
	Knowledge types.ExtractedKnowledge
	Source    types.SourceMetadata
}

func (i *Ingestor) Ingest(ctx context.Context, knowledge types.ExtractedKnowledge, source types.SourceMetadata) types.IngestionStats {
	var stats types.IngestionStats

	for _, place := range knowledge.Places {
		if err := i.ingestPlace(ctx, place, source, &stats); err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("place %q: %v", place.Name, err))
		}
	}

	for _, rel := range knowledge.Relationships {
		if err := i.ingestRelationship(ctx, rel, source); err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("relationship %s-[%s]->%s: %v", rel.From, rel.RelationType, rel.To, err))
			continue
		}
		stats.RelationshipsCreated++
	}

	for _, w := range knowledge.Wisdom {
		if err := i.ingestWisdom(ctx, w, source); err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("wisdom %q: %v", w.Topic, err))
			continue
		}
		stats.WisdomCreated++
	}

	return stats
}

func (i *Ingestor) ingestPlace(ctx context.Context, place types.ExtractedPlace, source types.SourceMetadata, stats *types.IngestionStats) error {
	name := strings.TrimSpace(place.Name)
	if name == "" {
		return fmt.Errorf("empty name")
	}

	score := i.Scorer.Score(place)

	created, err := i.Store.UpsertPlace(ctx, graph.PlaceUpsert{
		Name:                 name,
		Type:                 place.Type,
		Destination:          place.Destination,
		Description:          place.Description,
		LuxuryIndicators:     place.LuxuryIndicators,
		LuxuryScoreBase:      score.LuxuryScore,
		ConfidenceScore:      score.Confidence,
		ScoreEvidence:        score.Evidence,
		ExtractionConfidence: place.Confidence,
		Source:               source.Source,
		SourceID:             source.SourceID,
		SourceTitle:          source.SourceTitle,
		SourceDate:           source.SourceDate,
	})
	if err != nil {
		return err
	}
	if created {
		stats.PlacesCreated++
	} else {
		stats.PlacesUpdated++
	}

	if dest := strings.TrimSpace(place.Destination); dest != "" {
		if err := i.Store.LinkPlaceToDestination(ctx, name, dest); err != nil {
			// The place node landed; a failed destination link is its own
			// soft error.
			stats.Errors = append(stats.Errors, fmt.Sprintf("link %q to destination %q: %v", name, dest, err))
		}
	}
	return nil
}

func (i *Ingestor) ingestRelationship(ctx context.Context, rel types.ExtractedRelationship, source types.SourceMetadata) error {
	return i.Store.UpsertRelationship(ctx, graph.RelationshipUpsert{
		From:         rel.From,
		FromType:     rel.FromType,
		RelationType: rel.RelationType,
		To:           rel.To,
		ToType:       rel.ToType,
		Confidence:   rel.Confidence,
		Evidence:     rel.Evidence,
		Source:       source.Source,
		SourceID:     source.SourceID,
	})
}

func (i *Ingestor) ingestWisdom(ctx context.Context, w types.ExtractedWisdom, source types.SourceMetadata) error {
	id := uuid.NewString()
	if err := i.Store.CreateWisdom(ctx, graph.WisdomCreate{
		ID:         id,
		Topic:      w.Topic,
		Content:    w.Content,
		AppliesTo:  w.AppliesTo,
		Tags:       w.Tags,
		Confidence: w.Confidence,
		Source:     source.Source,
		SourceID:   source.SourceID,
	}); err != nil {
		return err
	}

	for _, target := range w.AppliesTo {
		linked, err := i.Store.LinkWisdom(ctx, id, target)
		if err != nil {
			i.Log.Warn("wisdom link failed", "topic", w.Topic, "target", target, "error", err)
			continue
		}
		if !linked {
			i.Log.Debug("wisdom link target not in graph yet", "topic", w.Topic, "target", target)
		}
	}
	return nil
}

// BatchIngest sequentially ingests items, summing stats and reporting
// (index+1, total) after each. Sequential by design to avoid write
// contention within one export; independent exports may run in parallel
// because the store's upsert-by-key semantics converge.
func (i *Ingestor) BatchIngest(ctx context.Context, items []BatchItem, onProgress func(processed, total int)) types.IngestionStats {
	var totals types.IngestionStats
	total := len(items)

	for idx, item := range items {
		stats := i.Ingest(ctx, item.Knowledge, item.Source)
		totals.Add(stats)
		if onProgress != nil {
			onProgress(idx+1, total)
		}
	}
	return totals
}
