package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/yungbote/wandergraph-backend/internal/data/graph"
	"github.com/yungbote/wandergraph-backend/internal/ingestion/extractor"
	"github.com/yungbote/wandergraph-backend/internal/ingestion/ingestor"
	"github.com/yungbote/wandergraph-backend/internal/ingestion/parser"
	"github.com/yungbote/wandergraph-backend/internal/ingestion/pipeline"
	"github.com/yungbote/wandergraph-backend/internal/platform/logger"
	"github.com/yungbote/wandergraph-backend/internal/platform/neo4jdb"
	"github.com/yungbote/wandergraph-backend/internal/platform/openai"
	"github.com/yungbote/wandergraph-backend/internal/scoring"
)

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
		log.Fatal("usage: pipeline <export.json>")
	}
	exportPath := os.Args[1]

	raw, err := os.ReadFile(exportPath)
	if err != nil {
		log.Fatal("read export file failed", "path", exportPath, "error", err)
	}

	cfg := pipeline.LoadConfig(log)

	ai, err := openai.NewClient(log)
	if err != nil {
		log.Fatal("completion client init failed", "error", err)
	}

	ctx := context.Background()

	// Neo4j when configured, in-memory dry run otherwise.
	var store graph.Store
	neoClient, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Fatal("neo4j init failed", "error", err)
	}
	if neoClient != nil {
		defer neoClient.Close(ctx)
		neoStore, err := graph.NewNeo4jStore(neoClient, log)
		if err != nil {
			log.Fatal("neo4j store init failed", "error", err)
		}
		store = neoStore
	} else {
		log.Warn("NEO4J_URI not set; using in-memory store (dry run)")
		store = graph.NewMemoryStore()
	}
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatal("graph schema init failed", "error", err)
	}

	ing, err := ingestor.New(store, scoring.NewKeywordScorer(), log)
	if err != nil {
		log.Fatal("ingestor init failed", "error", err)
	}

	ext := extractor.New(ai, log)
	ext.BatchSize = cfg.BatchSize
	ext.Delay = cfg.BatchDelay

	pipe, err := pipeline.New(parser.New(log), ext, ing, log, cfg)
	if err != nil {
		log.Fatal("pipeline init failed", "error", err)
	}

	result, err := pipe.Run(ctx, raw, pipeline.Options{
		OnParseComplete: func(parsed, total int) {
			log.Info("parse complete", "parsed", parsed, "total", total)
		},
		OnProcessProgress: func(processed, total int) {
			log.Info("extraction progress", "processed", processed, "total", total)
		},
		OnIngestProgress: func(processed, total int) {
			log.Info("ingestion progress", "processed", processed, "total", total)
		},
	})
	if err != nil {
		log.Fatal("pipeline run failed", "error", err)
	}

	summary, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(summary))
}
