package parser

import (
	"strings"

	types "github.com/yungbote/wandergraph-backend/internal/domain"
)

const DefaultMinKeywordMatches = 2

// FilterRelevant keeps a conversation only when at least minMatches distinct
// keywords appear (case-insensitive) across its title and full text. This is
// a cheap relevance gate before spending extraction budget; false negatives
// are acceptable and false positives are cheap to discard downstream.
func FilterRelevant(conversations []*types.ParsedConversation, keywords []string, minMatches int) []*types.ParsedConversation {
	if minMatches <= 0 {
		minMatches = DefaultMinKeywordMatches
	}
	if len(keywords) == 0 {
		return nil
	}

	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}

	out := make([]*types.ParsedConversation, 0, len(conversations))
	for _, conv := range conversations {
		if conv == nil {
			continue
		}
		haystack := strings.ToLower(conv.Title + "\n" + conv.FullText)
		matches := 0
		for _, kw := range lowered {
			if strings.Contains(haystack, kw) {
				matches++
			}
		}
		if matches >= minMatches {
			out = append(out, conv)
		}
	}
	return out
}
