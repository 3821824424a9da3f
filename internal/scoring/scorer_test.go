package scoring

import (
	"strings"
	"testing"

	types "github.com/yungbote/wandergraph-backend/internal/domain"
)

func TestScoreCountsSignalsAcrossFields(t *testing.T) {
	s := NewKeywordScorer()

	got := s.Score(types.ExtractedPlace{
		Name:             "Hotel du Cap-Eden-Roc",
		Type:             "hotel",
		Description:      "Legendary 5-star palace on the Cap d'Antibes",
		LuxuryIndicators: []string{"michelin dining", "private butler"},
	})

	// 5-star (3.0) + palace (2.0) + michelin (2.5) + butler (2.0) = 9.5
	if got.LuxuryScore != 9.5 {
		t.Fatalf("LuxuryScore: want=9.5 got=%v", got.LuxuryScore)
	}
	// 0.3 + 0.15*4
	if got.Confidence != 0.9 {
		t.Fatalf("Confidence: want=0.9 got=%v", got.Confidence)
	}
	for _, signal := range []string{"5-star", "butler", "michelin", "palace"} {
		if !strings.Contains(got.Evidence, signal) {
			t.Fatalf("Evidence missing %q: %s", signal, got.Evidence)
		}
	}
}

func TestScoreCapsAtTen(t *testing.T) {
	s := NewKeywordScorer()

	got := s.Score(types.ExtractedPlace{
		Name: "over the top",
		LuxuryIndicators: []string{
			"5-star", "michelin", "palace", "butler", "private villa",
			"penthouse", "luxury", "exclusive",
		},
	})
	if got.LuxuryScore != 10 {
		t.Fatalf("LuxuryScore: want=10 got=%v", got.LuxuryScore)
	}
	if got.Confidence != 0.9 {
		t.Fatalf("Confidence: want capped 0.9 got=%v", got.Confidence)
	}
}

func TestScoreNoSignals(t *testing.T) {
	s := NewKeywordScorer()

	got := s.Score(types.ExtractedPlace{Name: "Campground 12", Type: "campsite"})
	if got.LuxuryScore != 0 {
		t.Fatalf("LuxuryScore: want=0 got=%v", got.LuxuryScore)
	}
	if got.Confidence != 0.2 {
		t.Fatalf("Confidence: want=0.2 got=%v", got.Confidence)
	}
	if got.Evidence != "no luxury signals detected" {
		t.Fatalf("Evidence: got %q", got.Evidence)
	}
}

func TestScoreDeterministicEvidenceOrder(t *testing.T) {
	s := NewKeywordScorer()
	place := types.ExtractedPlace{
		Name:             "Brand Resort & Spa",
		LuxuryIndicators: []string{"infinity pool", "concierge"},
	}

	first := s.Score(place)
	for i := 0; i < 5; i++ {
		if again := s.Score(place); again != first {
			t.Fatalf("non-deterministic score: %+v vs %+v", first, again)
		}
	}
	if first.Evidence != "matched signals: concierge, infinity pool, resort, spa" {
		t.Fatalf("Evidence order: got %q", first.Evidence)
	}
}
