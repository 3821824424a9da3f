package graph

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MemoryStore implements the Store contract over in-process maps. It backs
// tests and dry runs; any store supporting unique-key merge satisfies the
// pipeline, and this one keeps the monotonic rules in plain Go.
type MemoryStore struct {
	mu sync.Mutex

	places       map[string]*MemoryPlace
	destinations map[string]bool
	located      map[string]string              // place name -> destination name
	rels         map[relKey]*MemoryRelationship
	wisdom       map[string]*MemoryWisdom
	wisdomLinks  map[string][]string // wisdom id -> linked target names
}

type MemoryPlace struct {
	PlaceUpsert
	HasDescription bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type MemoryRelationship struct {
	RelationshipUpsert
	CreatedAt time.Time
	UpdatedAt time.Time
}

type MemoryWisdom struct {
	WisdomCreate
	CreatedAt time.Time
}

type relKey struct {
	From, RelationType, To string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		places:       map[string]*MemoryPlace{},
		destinations: map[string]bool{},
		located:      map[string]string{},
		rels:         map[relKey]*MemoryRelationship{},
		wisdom:       map[string]*MemoryWisdom{},
		wisdomLinks:  map[string][]string{},
	}
}

func (s *MemoryStore) EnsureSchema(ctx context.Context) error {
	// Map keys are the uniqueness constraint.
	return nil
}

func (s *MemoryStore) UpsertPlace(ctx context.Context, p PlaceUpsert) (bool, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return false, fmt.Errorf("place name required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	existing, ok := s.places[name]
	if !ok {
		s.places[name] = &MemoryPlace{
			PlaceUpsert:    p,
			HasDescription: strings.TrimSpace(p.Description) != "",
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		return true, nil
	}

	if !existing.HasDescription && strings.TrimSpace(p.Description) != "" {
		existing.Description = p.Description
		existing.HasDescription = true
	}
	if p.LuxuryScoreBase > existing.LuxuryScoreBase {
		existing.LuxuryScoreBase = p.LuxuryScoreBase
		existing.ScoreEvidence = p.ScoreEvidence
	}
	if p.ConfidenceScore > existing.ConfidenceScore {
		existing.ConfidenceScore = p.ConfidenceScore
	}
	existing.UpdatedAt = now
	return false, nil
}

func (s *MemoryStore) LinkPlaceToDestination(ctx context.Context, placeName, destinationName string) error {
	placeName = strings.TrimSpace(placeName)
	destinationName = strings.TrimSpace(destinationName)
	if placeName == "" || destinationName == "" {
		return fmt.Errorf("place and destination names required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.destinations[destinationName] = true
	if _, ok := s.places[placeName]; !ok {
		return fmt.Errorf("place %q not found", placeName)
	}
	s.located[placeName] = destinationName
	return nil
}

func (s *MemoryStore) UpsertRelationship(ctx context.Context, r RelationshipUpsert) error {
	r.From = strings.TrimSpace(r.From)
	r.To = strings.TrimSpace(r.To)
	r.RelationType = strings.TrimSpace(r.RelationType)
	if r.From == "" || r.To == "" || r.RelationType == "" {
		return fmt.Errorf("relationship endpoints and type required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	key := relKey{From: r.From, RelationType: r.RelationType, To: r.To}
	existing, ok := s.rels[key]
	if !ok {
		s.rels[key] = &MemoryRelationship{
			RelationshipUpsert: r,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		return nil
	}

	if r.Confidence > existing.Confidence {
		existing.Confidence = r.Confidence
		existing.Evidence = r.Evidence
	}
	existing.UpdatedAt = now
	return nil
}

func (s *MemoryStore) CreateWisdom(ctx context.Context, w WisdomCreate) error {
	if strings.TrimSpace(w.ID) == "" {
		return fmt.Errorf("wisdom id required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.wisdom[w.ID] = &MemoryWisdom{
		WisdomCreate: w,
		CreatedAt:    time.Now().UTC(),
	}
	return nil
}

func (s *MemoryStore) LinkWisdom(ctx context.Context, wisdomID, targetName string) (bool, error) {
	targetName = strings.TrimSpace(targetName)
	if strings.TrimSpace(wisdomID) == "" || targetName == "" {
		return false, fmt.Errorf("wisdom id and target name required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.wisdom[wisdomID]; !ok {
		return false, fmt.Errorf("wisdom %q not found", wisdomID)
	}

	_, isDestination := s.destinations[targetName]
	_, isPlace := s.places[targetName]
	if !isDestination && !isPlace {
		return false, nil
	}
	s.wisdomLinks[wisdomID] = append(s.wisdomLinks[wisdomID], targetName)
	return true, nil
}

// ---- inspection helpers for tests and dry-run summaries ----

func (s *MemoryStore) Place(name string) (MemoryPlace, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.places[strings.TrimSpace(name)]
	if !ok {
		return MemoryPlace{}, false
	}
	return *p, true
}

func (s *MemoryStore) Relationship(from, relType, to string) (MemoryRelationship, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rels[relKey{From: from, RelationType: relType, To: to}]
	if !ok {
		return MemoryRelationship{}, false
	}
	return *r, true
}

func (s *MemoryStore) WisdomCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.wisdom)
}

func (s *MemoryStore) WisdomLinks(wisdomID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.wisdomLinks[wisdomID]...)
}

func (s *MemoryStore) DestinationOf(placeName string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.located[placeName]
}
