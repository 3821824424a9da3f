package pipeline

import (
	"context"
	"fmt"

	types "github.com/yungbote/wandergraph-backend/internal/domain"
	"github.com/yungbote/wandergraph-backend/internal/ingestion/extractor"
	"github.com/yungbote/wandergraph-backend/internal/ingestion/ingestor"
	"github.com/yungbote/wandergraph-backend/internal/ingestion/parser"
	"github.com/yungbote/wandergraph-backend/internal/platform/logger"
)

// Pipeline sequences parse -> filter -> chunk -> extract -> ingest. It owns
// no retry logic: the extractor tolerates per-chunk failures and the
// ingestor tolerates per-item failures, so the only fatal outcome here is a
// malformed export.
type Pipeline struct {
	Parser    *parser.Parser
	Extractor *extractor.Extractor
	Ingestor  *ingestor.Ingestor
	Log       *logger.Logger
	Config    Config
}

func New(p *parser.Parser, e *extractor.Extractor, i *ingestor.Ingestor, log *logger.Logger, cfg Config) (*Pipeline, error) {
	if p == nil || e == nil || i == nil {
		return nil, fmt.Errorf("pipeline: missing deps")
	}
	if log == nil {
		return nil, fmt.Errorf("pipeline: logger required")
	}
	return &Pipeline{
		Parser:    p,
		Extractor: e,
		Ingestor:  i,
		Log:       log.With("component", "Pipeline"),
		Config:    cfg,
	}, nil
}

// Options carries the optional progress callbacks, each receiving
// (processedCount, total).
type Options struct {
	OnParseComplete   func(parsed, total int)
	OnProcessProgress func(processed, total int)
	OnIngestProgress  func(processed, total int)
}

type Result struct {
	ConversationsParsed   int                  `json:"conversations_parsed"`
	ConversationsRelevant int                  `json:"conversations_relevant"`
	ChunksProcessed       int                  `json:"chunks_processed"`
	Stats                 types.IngestionStats `json:"stats"`
	CostEstimate          types.CostEstimate   `json:"cost_estimate"`
	ActualUsage           types.TokenUsage     `json:"actual_usage"`
}

func (p *Pipeline) Run(ctx context.Context, raw []byte, opts Options) (Result, error) {
	var result Result

	conversations, err := p.Parser.ParseExport(raw)
	if err != nil {
		return result, err
	}
	result.ConversationsParsed = len(conversations)
	if opts.OnParseComplete != nil {
		opts.OnParseComplete(len(conversations), len(conversations))
	}
	p.Log.Info("export parsed", "conversations", len(conversations))

	relevant := parser.FilterRelevant(conversations, p.Config.Keywords, p.Config.MinKeywordMatches)
	result.ConversationsRelevant = len(relevant)
	p.Log.Info("relevance filter applied",
		"kept", len(relevant),
		"dropped", len(conversations)-len(relevant),
	)

	chunks := parser.ChunkAll(relevant, p.Config.MaxChunkTokens)
	result.CostEstimate = extractor.EstimateCost(chunks, extractor.Pricing{
		InputPerMillionUSD:  p.Config.Pricing.InputPerMillionUSD,
		OutputPerMillionUSD: p.Config.Pricing.OutputPerMillionUSD,
	})
	p.Log.Info("chunking complete",
		"chunks", len(chunks),
		"estimated_tokens", result.CostEstimate.EstimatedTokens,
		"estimated_cost_usd", result.CostEstimate.EstimatedCostUSD,
	)

	extracted := p.Extractor.ExtractBatch(ctx, chunks, opts.OnProcessProgress)
	result.ChunksProcessed = len(extracted)

	items := make([]ingestor.BatchItem, 0, len(extracted))
	for idx, knowledge := range extracted {
		result.ActualUsage.Add(knowledge.Usage)
		if knowledge.Empty() {
			continue
		}
		chunk := chunks[idx]
		items = append(items, ingestor.BatchItem{
			Knowledge: knowledge,
			Source: types.SourceMetadata{
				Source:      p.Config.SourceName,
				SourceID:    chunk.ID,
				SourceTitle: chunk.Title,
				SourceDate:  chunk.Created,
			},
		})
	}

	result.Stats = p.Ingestor.BatchIngest(ctx, items, opts.OnIngestProgress)
	p.Log.Info("pipeline complete",
		"places_created", result.Stats.PlacesCreated,
		"places_updated", result.Stats.PlacesUpdated,
		"relationships_created", result.Stats.RelationshipsCreated,
		"wisdom_created", result.Stats.WisdomCreated,
		"errors", len(result.Stats.Errors),
		"input_tokens", result.ActualUsage.InputTokens,
		"output_tokens", result.ActualUsage.OutputTokens,
	)

	return result, nil
}
