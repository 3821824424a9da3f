package extractor

import (
	"encoding/json"
	"fmt"
	"strings"

	types "github.com/yungbote/wandergraph-backend/internal/domain"
)

// MinConfidence is the floor below which extracted items are dropped. The
// extraction contract tells the model not to emit anything weaker than a
// reasonable inference.
const MinConfidence = 0.6

// CleanResponseText is the permissive first stage of response parsing: it
// strips Markdown code fences and, failing that, slices from the first '{'
// to the last '}' so a chatty preamble or trailer does not poison the
// strict decode.
func CleanResponseText(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		return s
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

// rawKnowledge mirrors the JSON contract the model is asked to produce.
type rawKnowledge struct {
	Places        []types.ExtractedPlace        `json:"places"`
	Relationships []types.ExtractedRelationship `json:"relationships"`
	Wisdom        []types.ExtractedWisdom       `json:"wisdom"`
}

// ParseKnowledge is the strict second stage: decode the cleaned text and
// validate item shape. Items that violate the contract (missing names,
// out-of-range or sub-floor confidence, relationships without evidence) are
// dropped rather than failing the whole response.
func ParseKnowledge(cleaned string) (types.ExtractedKnowledge, error) {
	var out types.ExtractedKnowledge
	if strings.TrimSpace(cleaned) == "" {
		return out, fmt.Errorf("empty response text")
	}

	var raw rawKnowledge
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return out, fmt.Errorf("decode extraction JSON: %w", err)
	}

	for _, p := range raw.Places {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			continue
		}
		if p.Confidence < MinConfidence || p.Confidence > 1 {
			continue
		}
		out.Places = append(out.Places, p)
	}

	for _, r := range raw.Relationships {
		r.From = strings.TrimSpace(r.From)
		r.To = strings.TrimSpace(r.To)
		r.Evidence = strings.TrimSpace(r.Evidence)
		if r.From == "" || r.To == "" || r.RelationType == "" {
			continue
		}
		if r.Evidence == "" {
			continue
		}
		if r.Confidence < MinConfidence || r.Confidence > 1 {
			continue
		}
		if !validFromType(r.FromType) || !validToType(r.ToType) {
			continue
		}
		out.Relationships = append(out.Relationships, r)
	}

	for _, w := range raw.Wisdom {
		w.Topic = strings.TrimSpace(w.Topic)
		w.Content = strings.TrimSpace(w.Content)
		if w.Topic == "" || w.Content == "" {
			continue
		}
		if w.Confidence < MinConfidence || w.Confidence > 1 {
			continue
		}
		out.Wisdom = append(out.Wisdom, w)
	}

	return out, nil
}

func validFromType(t string) bool {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "place", "destination":
		return true
	default:
		return false
	}
}

func validToType(t string) bool {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "destination", "theme", "activity", "emotion", "desire", "season":
		return true
	default:
		return false
	}
}
