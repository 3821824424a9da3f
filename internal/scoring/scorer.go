package scoring

import (
	"fmt"
	"sort"
	"strings"

	types "github.com/yungbote/wandergraph-backend/internal/domain"
)

// KeywordScorer is the default luxury-scoring collaborator: a deterministic
// signal-counting heuristic over a place's extracted attributes. The
// ingestor treats any Scorer as opaque; swap this out without touching the
// pipeline.
type KeywordScorer struct{}

func NewKeywordScorer() *KeywordScorer { return &KeywordScorer{} }

var signalWeights = map[string]float64{
	"5-star":        3.0,
	"five-star":     3.0,
	"michelin":      2.5,
	"palace":        2.0,
	"butler":        2.0,
	"private villa": 2.0,
	"penthouse":     1.5,
	"luxury":        1.5,
	"exclusive":     1.5,
	"suite":         1.0,
	"spa":           1.0,
	"fine dining":   1.0,
	"infinity pool": 1.0,
	"concierge":     1.0,
	"resort":        0.5,
	"boutique":      0.5,
}

func (s *KeywordScorer) Score(place types.ExtractedPlace) types.LuxuryScore {
	haystack := strings.ToLower(strings.Join([]string{
		place.Name,
		place.Type,
		place.Description,
		strings.Join(place.LuxuryIndicators, " "),
	}, " "))

	total := 0.0
	var matched []string
	for signal, weight := range signalWeights {
		if strings.Contains(haystack, signal) {
			total += weight
			matched = append(matched, signal)
		}
	}
	sort.Strings(matched)

	if total > 10 {
		total = 10
	}

	// More independent signals, more trust in the number.
	confidence := 0.3 + 0.15*float64(len(matched))
	if confidence > 0.9 {
		confidence = 0.9
	}
	if len(matched) == 0 {
		confidence = 0.2
	}

	evidence := "no luxury signals detected"
	if len(matched) > 0 {
		evidence = fmt.Sprintf("matched signals: %s", strings.Join(matched, ", "))
	}

	return types.LuxuryScore{
		LuxuryScore: total,
		Confidence:  confidence,
		Evidence:    evidence,
	}
}
