package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigEmbeddedDefaults(t *testing.T) {
	cfg := LoadConfig(testLogger(t))

	if len(cfg.Keywords) == 0 {
		t.Fatalf("Keywords: want embedded defaults, got none")
	}
	if cfg.MinKeywordMatches != 2 {
		t.Fatalf("MinKeywordMatches: want=2 got=%d", cfg.MinKeywordMatches)
	}
	if cfg.MaxChunkTokens != 30000 {
		t.Fatalf("MaxChunkTokens: want=30000 got=%d", cfg.MaxChunkTokens)
	}
	if cfg.BatchSize != 5 {
		t.Fatalf("BatchSize: want=5 got=%d", cfg.BatchSize)
	}
	if cfg.BatchDelay != time.Second {
		t.Fatalf("BatchDelay: want=1s got=%v", cfg.BatchDelay)
	}
	if cfg.Pricing.InputPerMillionUSD != 0.15 || cfg.Pricing.OutputPerMillionUSD != 0.60 {
		t.Fatalf("Pricing: got %+v", cfg.Pricing)
	}
	if cfg.SourceName != "chat_export" {
		t.Fatalf("SourceName: want=chat_export got=%q", cfg.SourceName)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("EXTRACTION_BATCH_SIZE", "10")
	t.Setenv("EXTRACTION_BATCH_DELAY", "250ms")
	t.Setenv("MAX_CHUNK_TOKENS", "8000")
	t.Setenv("MIN_KEYWORD_MATCHES", "3")
	t.Setenv("PRICE_INPUT_PER_MILLION_USD", "1.25")

	cfg := LoadConfig(testLogger(t))

	if cfg.BatchSize != 10 {
		t.Fatalf("BatchSize: want=10 got=%d", cfg.BatchSize)
	}
	if cfg.BatchDelay != 250*time.Millisecond {
		t.Fatalf("BatchDelay: want=250ms got=%v", cfg.BatchDelay)
	}
	if cfg.MaxChunkTokens != 8000 {
		t.Fatalf("MaxChunkTokens: want=8000 got=%d", cfg.MaxChunkTokens)
	}
	if cfg.MinKeywordMatches != 3 {
		t.Fatalf("MinKeywordMatches: want=3 got=%d", cfg.MinKeywordMatches)
	}
	if cfg.Pricing.InputPerMillionUSD != 1.25 {
		t.Fatalf("Pricing.InputPerMillionUSD: want=1.25 got=%v", cfg.Pricing.InputPerMillionUSD)
	}
	// Untouched fields keep the embedded defaults.
	if cfg.Pricing.OutputPerMillionUSD != 0.60 {
		t.Fatalf("Pricing.OutputPerMillionUSD: want=0.60 got=%v", cfg.Pricing.OutputPerMillionUSD)
	}
}

func TestLoadConfigFileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	override := `
keywords: ["ski", "chalet"]
min_keyword_matches: 1
max_chunk_tokens: 5000
source_name: "archive_import"
`
	if err := os.WriteFile(path, []byte(override), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("PIPELINE_CONFIG_YAML", path)

	cfg := LoadConfig(testLogger(t))

	if len(cfg.Keywords) != 2 || cfg.Keywords[0] != "ski" {
		t.Fatalf("Keywords: got %v", cfg.Keywords)
	}
	if cfg.MinKeywordMatches != 1 {
		t.Fatalf("MinKeywordMatches: want=1 got=%d", cfg.MinKeywordMatches)
	}
	if cfg.MaxChunkTokens != 5000 {
		t.Fatalf("MaxChunkTokens: want=5000 got=%d", cfg.MaxChunkTokens)
	}
	if cfg.SourceName != "archive_import" {
		t.Fatalf("SourceName: want=archive_import got=%q", cfg.SourceName)
	}
	// Unset knobs fall back to hard defaults, not zero values.
	if cfg.BatchSize != 5 || cfg.BatchDelay != time.Second {
		t.Fatalf("defaults not applied: batch=%d delay=%v", cfg.BatchSize, cfg.BatchDelay)
	}
}

func TestLoadConfigBrokenFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("keywords: [unclosed"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("PIPELINE_CONFIG_YAML", path)

	cfg := LoadConfig(testLogger(t))

	if cfg.MinKeywordMatches != 2 || cfg.MaxChunkTokens != 30000 || cfg.BatchSize != 5 {
		t.Fatalf("fallback defaults not applied: %+v", cfg)
	}
	if cfg.SourceName != "chat_export" {
		t.Fatalf("SourceName: want=chat_export got=%q", cfg.SourceName)
	}
}
