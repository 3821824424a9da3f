package extractor

import (
	"testing"
)

func TestCleanResponseTextStripsFences(t *testing.T) {
	raw := "```json\n{\"places\": []}\n```"
	got := CleanResponseText(raw)
	if got != `{"places": []}` {
		t.Fatalf("cleaned: want=%q got=%q", `{"places": []}`, got)
	}
}

func TestCleanResponseTextBracketSliceFallback(t *testing.T) {
	raw := `Sure! Here is the extraction you asked for: {"places": []} Hope that helps.`
	got := CleanResponseText(raw)
	if got != `{"places": []}` {
		t.Fatalf("cleaned: want=%q got=%q", `{"places": []}`, got)
	}
}

func TestCleanResponseTextPassthrough(t *testing.T) {
	raw := `{"places": [], "relationships": []}`
	if got := CleanResponseText(raw); got != raw {
		t.Fatalf("cleaned: want unchanged, got=%q", got)
	}
}

func TestParseKnowledgeValid(t *testing.T) {
	payload := `{
	  "places": [
	    {"name": "Hotel du Cap-Eden-Roc", "type": "hotel", "destination": "Antibes", "description": "5-star resort", "luxury_indicators": ["5-star"], "confidence": 0.95}
	  ],
	  "relationships": [
	    {"from": "Hotel du Cap-Eden-Roc", "from_type": "place", "relation_type": "LOCATED_IN", "to": "Antibes", "to_type": "destination", "confidence": 0.9, "evidence": "stated directly"}
	  ],
	  "wisdom": [
	    {"topic": "booking", "content": "Book Eden-Roc months ahead for summer.", "applies_to": ["Antibes"], "tags": ["timing"], "confidence": 0.8}
	  ]
	}`

	got, err := ParseKnowledge(payload)
	if err != nil {
		t.Fatalf("ParseKnowledge: %v", err)
	}
	if len(got.Places) != 1 || len(got.Relationships) != 1 || len(got.Wisdom) != 1 {
		t.Fatalf("counts: got %d/%d/%d", len(got.Places), len(got.Relationships), len(got.Wisdom))
	}
	if got.Places[0].Confidence < 0.9 {
		t.Fatalf("explicit statement should carry confidence >= 0.9, got %v", got.Places[0].Confidence)
	}
	if got.Places[0].Destination != "Antibes" {
		t.Fatalf("destination: want=%q got=%q", "Antibes", got.Places[0].Destination)
	}
}

func TestParseKnowledgeDropsSubFloorConfidence(t *testing.T) {
	payload := `{
	  "places": [
	    {"name": "Some cafe", "type": "restaurant", "confidence": 0.4},
	    {"name": "Kept place", "type": "hotel", "confidence": 0.6}
	  ]
	}`

	got, err := ParseKnowledge(payload)
	if err != nil {
		t.Fatalf("ParseKnowledge: %v", err)
	}
	if len(got.Places) != 1 {
		t.Fatalf("places: want=1 got=%d", len(got.Places))
	}
	if got.Places[0].Name != "Kept place" {
		t.Fatalf("kept: want=%q got=%q", "Kept place", got.Places[0].Name)
	}
}

func TestParseKnowledgeDropsRelationshipWithoutEvidence(t *testing.T) {
	payload := `{
	  "relationships": [
	    {"from": "A", "from_type": "place", "relation_type": "EVOKES", "to": "calm", "to_type": "emotion", "confidence": 0.9, "evidence": ""},
	    {"from": "B", "from_type": "place", "relation_type": "EVOKES", "to": "joy", "to_type": "emotion", "confidence": 0.9, "evidence": "said so"}
	  ]
	}`

	got, err := ParseKnowledge(payload)
	if err != nil {
		t.Fatalf("ParseKnowledge: %v", err)
	}
	if len(got.Relationships) != 1 {
		t.Fatalf("relationships: want=1 got=%d", len(got.Relationships))
	}
	if got.Relationships[0].From != "B" {
		t.Fatalf("kept: want from=B got=%q", got.Relationships[0].From)
	}
}

func TestParseKnowledgeDropsInvalidEndpointTypes(t *testing.T) {
	payload := `{
	  "relationships": [
	    {"from": "A", "from_type": "banana", "relation_type": "EVOKES", "to": "calm", "to_type": "emotion", "confidence": 0.9, "evidence": "x"}
	  ]
	}`

	got, err := ParseKnowledge(payload)
	if err != nil {
		t.Fatalf("ParseKnowledge: %v", err)
	}
	if len(got.Relationships) != 0 {
		t.Fatalf("relationships: want=0 got=%d", len(got.Relationships))
	}
}

func TestParseKnowledgeMalformed(t *testing.T) {
	if _, err := ParseKnowledge("this is not json"); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
	if _, err := ParseKnowledge(""); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}
