package extractor

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	types "github.com/yungbote/wandergraph-backend/internal/domain"
	"github.com/yungbote/wandergraph-backend/internal/platform/logger"
	"github.com/yungbote/wandergraph-backend/internal/platform/openai"
)

const systemContract = `You extract travel knowledge from conversation transcripts.

Respond with exactly one JSON object and nothing else:
{
  "places": [{"name", "type", "destination", "description", "luxury_indicators", "confidence"}],
  "relationships": [{"from", "from_type", "relation_type", "to", "to_type", "confidence", "evidence"}],
  "wisdom": [{"topic", "content", "applies_to", "tags", "confidence"}]
}

Rules:
- Never invent facts. Only report what the transcript states or strongly implies.
- confidence: >=0.9 explicit statement, 0.75-0.89 strong implication, 0.6-0.74 reasonable inference. Omit anything weaker.
- from_type is "place" or "destination"; to_type is one of "destination", "theme", "activity", "emotion", "desire", "season".
- evidence is a short quote or paraphrase justifying the relationship. Required.
- Empty arrays are fine when the transcript has nothing to report.`

type Extractor struct {
	AI  openai.Client
	Log *logger.Logger

	BatchSize int
	Delay     time.Duration
}

func New(ai openai.Client, log *logger.Logger) *Extractor {
	return &Extractor{
		AI:        ai,
		Log:       log.With("component", "ExtractionProcessor"),
		BatchSize: 5,
		Delay:     1 * time.Second,
	}
}

// Extract sends one chunk's full text to the completion service and parses
// the result. A malformed response yields an empty ExtractedKnowledge, never
// an error: one bad chunk must not abort a batch.
func (e *Extractor) Extract(ctx context.Context, chunk *types.ParsedConversation) types.ExtractedKnowledge {
	out := types.ExtractedKnowledge{ConversationID: chunk.ID}

	text, usage, err := e.AI.GenerateText(ctx, systemContract, chunk.FullText)
	out.Usage = types.TokenUsage{InputTokens: usage.InputTokens, OutputTokens: usage.OutputTokens}
	if err != nil {
		e.Log.Warn("extraction request failed; yielding empty result",
			"conversation_id", chunk.ID, "error", err)
		return out
	}

	parsed, err := ParseKnowledge(CleanResponseText(text))
	if err != nil {
		e.Log.Warn("extraction response unparsable; yielding empty result",
			"conversation_id", chunk.ID, "error", err)
		return out
	}

	parsed.ConversationID = chunk.ID
	parsed.Usage = out.Usage
	return parsed
}

// ExtractBatch processes chunks in fixed-size groups. Requests within a
// group run concurrently; groups are strictly sequential with an inter-group
// delay as a courtesy throttle against the completion service. onProgress
// receives (processedCount, total) after each group.
func (e *Extractor) ExtractBatch(ctx context.Context, chunks []*types.ParsedConversation, onProgress func(processed, total int)) []types.ExtractedKnowledge {
	total := len(chunks)
	results := make([]types.ExtractedKnowledge, total)
	if total == 0 {
		return results
	}

	batchSize := e.BatchSize
	if batchSize <= 0 {
		batchSize = 5
	}

	var mu sync.Mutex
	processed := 0

	for start := 0; start < total; start += batchSize {
		end := start + batchSize
		if end > total {
			end = total
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				res := e.Extract(gctx, chunks[i])
				mu.Lock()
				results[i] = res
				processed++
				mu.Unlock()
				return nil
			})
		}
		// Extract absorbs its own failures, so the group error is always nil.
		_ = g.Wait()

		if onProgress != nil {
			onProgress(processed, total)
		}

		if end < total && e.Delay > 0 {
			select {
			case <-ctx.Done():
				return results
			case <-time.After(e.Delay):
			}
		}
	}

	return results
}
