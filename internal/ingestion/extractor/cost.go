package extractor

import (
	types "github.com/yungbote/wandergraph-backend/internal/domain"
	"github.com/yungbote/wandergraph-backend/internal/ingestion/parser"
)

// Pricing holds per-million-token USD rates for the configured model.
type Pricing struct {
	InputPerMillionUSD  float64
	OutputPerMillionUSD float64
}

// EstimateCost approximates the extraction bill for a conversation set:
// input tokens as characters/4 and output tokens as 20% of input. A planning
// aid, not billed truth.
func EstimateCost(conversations []*types.ParsedConversation, pricing Pricing) types.CostEstimate {
	totalChars := 0
	for _, conv := range conversations {
		if conv == nil {
			continue
		}
		totalChars += len(conv.FullText)
	}

	inputTokens := totalChars / parser.CharsPerToken
	outputTokens := inputTokens / 5

	cost := float64(inputTokens)/1e6*pricing.InputPerMillionUSD +
		float64(outputTokens)/1e6*pricing.OutputPerMillionUSD

	return types.CostEstimate{
		EstimatedTokens:  inputTokens + outputTokens,
		EstimatedCostUSD: cost,
	}
}
