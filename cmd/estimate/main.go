package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/yungbote/wandergraph-backend/internal/ingestion/extractor"
	"github.com/yungbote/wandergraph-backend/internal/ingestion/parser"
	"github.com/yungbote/wandergraph-backend/internal/ingestion/pipeline"
	"github.com/yungbote/wandergraph-backend/internal/platform/logger"
)

// estimate parses and filters an export without touching the completion
// service, then prints what a full extraction run would cost.
func main() {
	_ = godotenv.Load()

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if len(os.Args) < 2 {
		log.Fatal("usage: estimate <export.json>")
	}

	raw, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatal("read export file failed", "path", os.Args[1], "error", err)
	}

	cfg := pipeline.LoadConfig(log)

	conversations, err := parser.New(log).ParseExport(raw)
	if err != nil {
		log.Fatal("parse export failed", "error", err)
	}
	relevant := parser.FilterRelevant(conversations, cfg.Keywords, cfg.MinKeywordMatches)
	chunks := parser.ChunkAll(relevant, cfg.MaxChunkTokens)

	estimate := extractor.EstimateCost(chunks, extractor.Pricing{
		InputPerMillionUSD:  cfg.Pricing.InputPerMillionUSD,
		OutputPerMillionUSD: cfg.Pricing.OutputPerMillionUSD,
	})

	out := map[string]any{
		"conversations_parsed":   len(conversations),
		"conversations_relevant": len(relevant),
		"chunks":                 len(chunks),
		"estimate":               estimate,
	}
	summary, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(summary))
}
