package domain

import (
	"time"
)

// Message is one turn of a reconstructed conversation thread.
type Message struct {
	Role      string    `json:"role"` // user|assistant
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ParsedConversation is an immutable linear thread reconstructed from a
// tree-shaped export. Chunking produces new derived instances and never
// mutates the original.
type ParsedConversation struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Created      time.Time `json:"created"`
	Updated      time.Time `json:"updated"`
	Messages     []Message `json:"messages"`
	FullText     string    `json:"full_text"`
	MessageCount int       `json:"message_count"`
}

// ExtractedPlace confidence bands: >=0.9 explicit statement, 0.75-0.89
// strong implication, 0.6-0.74 reasonable inference. Items below 0.6 are
// dropped at extraction time.
type ExtractedPlace struct {
	Name             string   `json:"name"`
	Type             string   `json:"type"`
	Destination      string   `json:"destination,omitempty"`
	Description      string   `json:"description,omitempty"`
	LuxuryIndicators []string `json:"luxury_indicators,omitempty"`
	Confidence       float64  `json:"confidence"`
}

type ExtractedRelationship struct {
	From         string  `json:"from"`
	FromType     string  `json:"from_type"` // place|destination
	RelationType string  `json:"relation_type"`
	To           string  `json:"to"`
	ToType       string  `json:"to_type"` // destination|theme|activity|emotion|desire|season
	Confidence   float64 `json:"confidence"`
	Evidence     string  `json:"evidence"`
}

type ExtractedWisdom struct {
	Topic      string   `json:"topic"`
	Content    string   `json:"content"`
	AppliesTo  []string `json:"applies_to,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Confidence float64  `json:"confidence"`
}

// ExtractedKnowledge is the typed result of one extraction call.
type ExtractedKnowledge struct {
	ConversationID string                  `json:"conversation_id"`
	Places         []ExtractedPlace        `json:"places"`
	Relationships  []ExtractedRelationship `json:"relationships"`
	Wisdom         []ExtractedWisdom       `json:"wisdom"`
	Usage          TokenUsage              `json:"usage"`
}

func (k ExtractedKnowledge) Empty() bool {
	return len(k.Places) == 0 && len(k.Relationships) == 0 && len(k.Wisdom) == 0
}

type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// SourceMetadata is the provenance attached to every graph write produced
// from one conversation.
type SourceMetadata struct {
	Source      string    `json:"source"`
	SourceID    string    `json:"source_id"`
	SourceTitle string    `json:"source_title"`
	SourceDate  time.Time `json:"source_date"`
}

// IngestionStats accumulates per-item outcomes. Errors collects soft
// per-item failures; a populated list does not mean the batch failed.
type IngestionStats struct {
	PlacesCreated        int      `json:"places_created"`
	PlacesUpdated        int      `json:"places_updated"`
	RelationshipsCreated int      `json:"relationships_created"`
	WisdomCreated        int      `json:"wisdom_created"`
	Errors               []string `json:"errors,omitempty"`
}

func (s *IngestionStats) Add(other IngestionStats) {
	s.PlacesCreated += other.PlacesCreated
	s.PlacesUpdated += other.PlacesUpdated
	s.RelationshipsCreated += other.RelationshipsCreated
	s.WisdomCreated += other.WisdomCreated
	s.Errors = append(s.Errors, other.Errors...)
}

type CostEstimate struct {
	EstimatedTokens  int     `json:"estimated_tokens"`
	EstimatedCostUSD float64 `json:"estimated_cost_usd"`
}

// LuxuryScore is the opaque result of the external scoring collaborator.
type LuxuryScore struct {
	LuxuryScore float64 `json:"luxury_score"`
	Confidence  float64 `json:"confidence"`
	Evidence    string  `json:"evidence"`
}

// Scorer computes a luxury score from place attributes. The ingestor treats
// it as a pure synchronous function and makes no assumptions about the
// formula.
type Scorer interface {
	Score(place ExtractedPlace) LuxuryScore
}
