package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/wandergraph-backend/internal/platform/logger"
	"github.com/yungbote/wandergraph-backend/internal/platform/neo4jdb"
)

// Neo4jStore persists the travel knowledge graph through the shared Neo4j
// client. Monotonic overwrite rules live in the Cypher itself so concurrent
// writers converge on the store's MERGE semantics.
type Neo4jStore struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewNeo4jStore(client *neo4jdb.Client, log *logger.Logger) (*Neo4jStore, error) {
	if client == nil || client.Driver == nil {
		return nil, fmt.Errorf("neo4j client required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Neo4jStore{
		client: client,
		log:    log.With("component", "Neo4jTravelGraph"),
	}, nil
}

// EnsureSchema installs the uniqueness constraints the upsert semantics
// depend on. Without them two concurrent writers could race a "new" name
// into duplicate nodes.
func (s *Neo4jStore) EnsureSchema(ctx context.Context) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	stmts := []string{
		`CREATE CONSTRAINT place_name_unique IF NOT EXISTS FOR (p:Place) REQUIRE p.name IS UNIQUE`,
		`CREATE CONSTRAINT destination_name_unique IF NOT EXISTS FOR (d:Destination) REQUIRE d.name IS UNIQUE`,
		`CREATE CONSTRAINT entity_name_unique IF NOT EXISTS FOR (e:Entity) REQUIRE e.name IS UNIQUE`,
		`CREATE CONSTRAINT knowledge_id_unique IF NOT EXISTS FOR (k:Knowledge) REQUIRE k.id IS UNIQUE`,
	}
	for _, q := range stmts {
		res, err := session.Run(ctx, q, nil)
		if err != nil {
			return fmt.Errorf("schema init: %w", err)
		}
		if _, err := res.Consume(ctx); err != nil {
			return fmt.Errorf("schema init consume: %w", err)
		}
	}
	return nil
}

func (s *Neo4jStore) UpsertPlace(ctx context.Context, p PlaceUpsert) (bool, error) {
	if strings.TrimSpace(p.Name) == "" {
		return false, fmt.Errorf("place name required")
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	params := map[string]any{
		"name":                  strings.TrimSpace(p.Name),
		"type":                  p.Type,
		"destination":           p.Destination,
		"description":           p.Description,
		"luxury_indicators":     p.LuxuryIndicators,
		"luxury_score_base":     p.LuxuryScoreBase,
		"confidence_score":      p.ConfidenceScore,
		"score_evidence":        p.ScoreEvidence,
		"extraction_confidence": p.ExtractionConfidence,
		"source":                p.Source,
		"source_id":             p.SourceID,
		"source_title":          p.SourceTitle,
		"source_date":           formatTime(p.SourceDate),
		"now":                   now,
	}

	session := s.session(ctx)
	defer session.Close(ctx)

	created, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (bool, error) {
		res, err := tx.Run(ctx, `
MERGE (p:Place {name: $name})
ON CREATE SET
    p.type = $type,
    p.destination = $destination,
    p.description = CASE WHEN $description = '' THEN null ELSE $description END,
    p.luxury_indicators = $luxury_indicators,
    p.luxury_score_base = $luxury_score_base,
    p.confidence_score = $confidence_score,
    p.score_evidence = $score_evidence,
    p.extraction_confidence = $extraction_confidence,
    p.source = $source,
    p.source_id = $source_id,
    p.source_title = $source_title,
    p.source_date = $source_date,
    p.created_at = $now,
    p.updated_at = $now
ON MATCH SET
    p.description = CASE
        WHEN p.description IS NULL AND $description <> '' THEN $description
        ELSE p.description
    END,
    p.score_evidence = CASE
        WHEN $luxury_score_base > coalesce(p.luxury_score_base, -1.0) THEN $score_evidence
        ELSE p.score_evidence
    END,
    p.luxury_score_base = CASE
        WHEN $luxury_score_base > coalesce(p.luxury_score_base, -1.0) THEN $luxury_score_base
        ELSE p.luxury_score_base
    END,
    p.confidence_score = CASE
        WHEN $confidence_score > coalesce(p.confidence_score, -1.0) THEN $confidence_score
        ELSE p.confidence_score
    END,
    p.updated_at = $now
RETURN p.created_at = $now AS created
`, params)
		if err != nil {
			return false, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return false, err
		}
		created, _ := rec.Get("created")
		b, _ := created.(bool)
		return b, nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (s *Neo4jStore) LinkPlaceToDestination(ctx context.Context, placeName, destinationName string) error {
	placeName = strings.TrimSpace(placeName)
	destinationName = strings.TrimSpace(destinationName)
	if placeName == "" || destinationName == "" {
		return fmt.Errorf("place and destination names required")
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	session := s.session(ctx)
	defer session.Close(ctx)

	_, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MERGE (d:Destination {name: $destination})
ON CREATE SET d.created_at = $now
WITH d
MATCH (p:Place {name: $place})
MERGE (p)-[r:LOCATED_IN]->(d)
ON CREATE SET r.created_at = $now
`, map[string]any{"place": placeName, "destination": destinationName, "now": now})
		if err != nil {
			return nil, err
		}
		return nil, consumeResult(ctx, res)
	})
	return err
}

func (s *Neo4jStore) UpsertRelationship(ctx context.Context, r RelationshipUpsert) error {
	if strings.TrimSpace(r.From) == "" || strings.TrimSpace(r.To) == "" || strings.TrimSpace(r.RelationType) == "" {
		return fmt.Errorf("relationship endpoints and type required")
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	params := map[string]any{
		"from":       strings.TrimSpace(r.From),
		"from_type":  r.FromType,
		"rel_type":   strings.TrimSpace(r.RelationType),
		"to":         strings.TrimSpace(r.To),
		"to_type":    r.ToType,
		"confidence": r.Confidence,
		"evidence":   r.Evidence,
		"source":     r.Source,
		"source_id":  r.SourceID,
		"now":        now,
	}

	session := s.session(ctx)
	defer session.Close(ctx)

	// Relation type is data, not schema: edges carry a RELATES label with
	// the type as a keyed property so the (from, type, to) identity can be
	// MERGEd without dynamic Cypher.
	_, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MERGE (from:Entity {name: $from})
ON CREATE SET from.entity_type = $from_type, from.created_at = $now
MERGE (to:Entity {name: $to})
ON CREATE SET to.entity_type = $to_type, to.created_at = $now
MERGE (from)-[r:RELATES {relation_type: $rel_type}]->(to)
ON CREATE SET
    r.confidence = $confidence,
    r.evidence = $evidence,
    r.source = $source,
    r.source_id = $source_id,
    r.created_at = $now,
    r.updated_at = $now
ON MATCH SET
    r.evidence = CASE WHEN $confidence > r.confidence THEN $evidence ELSE r.evidence END,
    r.confidence = CASE WHEN $confidence > r.confidence THEN $confidence ELSE r.confidence END,
    r.updated_at = $now
`, params)
		if err != nil {
			return nil, err
		}
		return nil, consumeResult(ctx, res)
	})
	return err
}

func (s *Neo4jStore) CreateWisdom(ctx context.Context, w WisdomCreate) error {
	if strings.TrimSpace(w.ID) == "" {
		return fmt.Errorf("wisdom id required")
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	params := map[string]any{
		"id":         w.ID,
		"topic":      w.Topic,
		"content":    w.Content,
		"tags":       w.Tags,
		"confidence": w.Confidence,
		"source":     w.Source,
		"source_id":  w.SourceID,
		"now":        now,
	}

	session := s.session(ctx)
	defer session.Close(ctx)

	_, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
CREATE (k:Knowledge {
    id: $id,
    topic: $topic,
    content: $content,
    tags: $tags,
    confidence: $confidence,
    source: $source,
    source_id: $source_id,
    created_at: $now
})
`, params)
		if err != nil {
			return nil, err
		}
		return nil, consumeResult(ctx, res)
	})
	return err
}

func (s *Neo4jStore) LinkWisdom(ctx context.Context, wisdomID, targetName string) (bool, error) {
	targetName = strings.TrimSpace(targetName)
	if strings.TrimSpace(wisdomID) == "" || targetName == "" {
		return false, fmt.Errorf("wisdom id and target name required")
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	session := s.session(ctx)
	defer session.Close(ctx)

	linked, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (bool, error) {
		res, err := tx.Run(ctx, `
MATCH (k:Knowledge {id: $id})
OPTIONAL MATCH (d:Destination {name: $target})
OPTIONAL MATCH (p:Place {name: $target})
FOREACH (_ IN CASE WHEN d IS NOT NULL THEN [1] ELSE [] END |
    MERGE (k)-[ra:APPLIES_TO]->(d)
    ON CREATE SET ra.created_at = $now
)
FOREACH (_ IN CASE WHEN p IS NOT NULL THEN [1] ELSE [] END |
    MERGE (k)-[rr:RELATES_TO]->(p)
    ON CREATE SET rr.created_at = $now
)
RETURN d IS NOT NULL OR p IS NOT NULL AS linked
`, map[string]any{"id": wisdomID, "target": targetName, "now": now})
		if err != nil {
			return false, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return false, err
		}
		v, _ := rec.Get("linked")
		b, _ := v.(bool)
		return b, nil
	})
	if err != nil {
		return false, err
	}
	return linked, nil
}

func (s *Neo4jStore) session(ctx context.Context) neo4j.SessionWithContext {
	return s.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.client.Database,
	})
}

func consumeResult(ctx context.Context, res neo4j.ResultWithContext) error {
	_, err := res.Consume(ctx)
	return err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
