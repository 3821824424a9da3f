package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/yungbote/wandergraph-backend/internal/data/graph"
	"github.com/yungbote/wandergraph-backend/internal/ingestion/extractor"
	"github.com/yungbote/wandergraph-backend/internal/ingestion/ingestor"
	"github.com/yungbote/wandergraph-backend/internal/ingestion/parser"
	"github.com/yungbote/wandergraph-backend/internal/platform/logger"
	"github.com/yungbote/wandergraph-backend/internal/platform/openai"
	"github.com/yungbote/wandergraph-backend/internal/scoring"
)

type fakeAI struct {
	mu        sync.Mutex
	calls     int
	responses map[string]string
}

func (f *fakeAI) GenerateText(ctx context.Context, system, user string) (string, openai.Usage, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	usage := openai.Usage{InputTokens: 100, OutputTokens: 20}
	for needle, response := range f.responses {
		if strings.Contains(user, needle) {
			return response, usage, nil
		}
	}
	return `{"places": [], "relationships": [], "wisdom": []}`, usage, nil
}

func (f *fakeAI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func testConfig() Config {
	return Config{
		Keywords:          []string{"hotel", "antibes", "resort", "beach"},
		MinKeywordMatches: 2,
		MaxChunkTokens:    30000,
		BatchSize:         2,
		Pricing:           PricingConfig{InputPerMillionUSD: 0.15, OutputPerMillionUSD: 0.60},
		SourceName:        "chat_export",
	}
}

func testPipeline(t *testing.T, ai openai.Client) (*Pipeline, *graph.MemoryStore) {
	t.Helper()
	log := testLogger(t)

	e := extractor.New(ai, log)
	e.BatchSize = 2
	e.Delay = 0

	store := graph.NewMemoryStore()
	ing, err := ingestor.New(store, scoring.NewKeywordScorer(), log)
	if err != nil {
		t.Fatalf("ingestor.New: %v", err)
	}

	p, err := New(parser.New(log), e, ing, log, testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p, store
}

// conversationTree renders a minimal single-thread export entry with one
// user message.
func conversationTree(id, title, userText string) string {
	return fmt.Sprintf(`{
  "id": %q,
  "title": %q,
  "create_time": 1714000000,
  "update_time": 1714003600,
  "current_node": "n1",
  "mapping": {
    "n0": {"message": null, "parent": "", "children": ["n1"]},
    "n1": {
      "message": {"author": {"role": "user"}, "content": {"parts": [%q]}, "create_time": 1714000000},
      "parent": "n0",
      "children": []
    }
  }
}`, id, title, userText)
}

func sampleExport() []byte {
	relevant := conversationTree("conv-1", "Planning Antibes",
		"Which hotel near the beach in Antibes should we book?")
	irrelevant := conversationTree("conv-2", "Tax filing",
		"How do quarterly estimated payments work?")
	return []byte("[" + relevant + "," + irrelevant + "]")
}

func TestRunEndToEnd(t *testing.T) {
	ai := &fakeAI{responses: map[string]string{
		"Antibes": `{"places": [{"name": "Hotel du Cap-Eden-Roc", "type": "hotel", "destination": "Antibes", "luxury_indicators": ["5-star"], "confidence": 0.95}]}`,
	}}
	p, store := testPipeline(t, ai)

	var parseCalls, processCalls, ingestCalls int
	result, err := p.Run(context.Background(), sampleExport(), Options{
		OnParseComplete:   func(parsed, total int) { parseCalls++ },
		OnProcessProgress: func(processed, total int) { processCalls++ },
		OnIngestProgress:  func(processed, total int) { ingestCalls++ },
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.ConversationsParsed != 2 {
		t.Fatalf("ConversationsParsed: want=2 got=%d", result.ConversationsParsed)
	}
	if result.ConversationsRelevant != 1 {
		t.Fatalf("ConversationsRelevant: want=1 got=%d", result.ConversationsRelevant)
	}
	if result.ChunksProcessed != 1 {
		t.Fatalf("ChunksProcessed: want=1 got=%d", result.ChunksProcessed)
	}
	if result.Stats.PlacesCreated != 1 {
		t.Fatalf("PlacesCreated: want=1 got=%d", result.Stats.PlacesCreated)
	}
	if result.ActualUsage.InputTokens != 100 || result.ActualUsage.OutputTokens != 20 {
		t.Fatalf("ActualUsage: got %+v", result.ActualUsage)
	}
	if result.CostEstimate.EstimatedTokens <= 0 {
		t.Fatalf("CostEstimate: want >0 tokens got %+v", result.CostEstimate)
	}
	if parseCalls != 1 || processCalls == 0 || ingestCalls != 1 {
		t.Fatalf("callbacks: parse=%d process=%d ingest=%d", parseCalls, processCalls, ingestCalls)
	}
	if ai.callCount() != 1 {
		t.Fatalf("AI calls: want=1 (irrelevant conversation filtered) got=%d", ai.callCount())
	}

	place, ok := store.Place("Hotel du Cap-Eden-Roc")
	if !ok {
		t.Fatalf("place not persisted")
	}
	if place.Source != "chat_export" || place.SourceID != "conv-1" {
		t.Fatalf("provenance: got source=%q source_id=%q", place.Source, place.SourceID)
	}
	if place.SourceTitle != "Planning Antibes" {
		t.Fatalf("SourceTitle: got %q", place.SourceTitle)
	}
	if got := store.DestinationOf("Hotel du Cap-Eden-Roc"); got != "Antibes" {
		t.Fatalf("DestinationOf: want=Antibes got=%q", got)
	}
}

func TestRunMalformedExportFails(t *testing.T) {
	p, _ := testPipeline(t, &fakeAI{})

	_, err := p.Run(context.Background(), []byte(`{"unrelated": true}`), Options{})
	if err == nil {
		t.Fatalf("expected error for malformed export")
	}
	if _, ok := err.(*parser.ParseError); !ok {
		t.Fatalf("expected *parser.ParseError, got %T", err)
	}
}

func TestRunSkipsEmptyExtractions(t *testing.T) {
	// No canned responses: every extraction comes back empty.
	ai := &fakeAI{}
	p, store := testPipeline(t, ai)

	var ingestCalls int
	result, err := p.Run(context.Background(), sampleExport(), Options{
		OnIngestProgress: func(processed, total int) { ingestCalls++ },
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Stats.PlacesCreated != 0 {
		t.Fatalf("PlacesCreated: want=0 got=%d", result.Stats.PlacesCreated)
	}
	// Token usage is still accounted even when nothing was extracted.
	if result.ActualUsage.InputTokens != 100 {
		t.Fatalf("ActualUsage.InputTokens: want=100 got=%d", result.ActualUsage.InputTokens)
	}
	if ingestCalls != 0 {
		t.Fatalf("ingest progress for empty batch: want=0 got=%d", ingestCalls)
	}
	if store.WisdomCount() != 0 {
		t.Fatalf("WisdomCount: want=0 got=%d", store.WisdomCount())
	}
}

func TestRunNoRelevantConversations(t *testing.T) {
	ai := &fakeAI{}
	p, _ := testPipeline(t, ai)

	export := []byte("[" + conversationTree("conv-9", "Tax filing", "standard deduction?") + "]")
	result, err := p.Run(context.Background(), export, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ConversationsRelevant != 0 || result.ChunksProcessed != 0 {
		t.Fatalf("want nothing processed, got %+v", result)
	}
	if ai.callCount() != 0 {
		t.Fatalf("AI calls: want=0 got=%d", ai.callCount())
	}
}
