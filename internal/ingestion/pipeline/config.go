package pipeline

import (
	"embed"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/wandergraph-backend/internal/platform/envutil"
	"github.com/yungbote/wandergraph-backend/internal/platform/logger"
)

const pipelineConfigEnv = "PIPELINE_CONFIG_YAML"

//go:embed pipeline.yaml
var defaultConfigFS embed.FS

type PricingConfig struct {
	InputPerMillionUSD  float64 `yaml:"input_per_million_usd"`
	OutputPerMillionUSD float64 `yaml:"output_per_million_usd"`
}

type Config struct {
	Keywords          []string
	MinKeywordMatches int
	MaxChunkTokens    int
	BatchSize         int
	BatchDelay        time.Duration
	Pricing           PricingConfig
	SourceName        string
}

// yamlConfig mirrors Config for decoding; batch_delay is a string because
// YAML has no duration scalar.
type yamlConfig struct {
	Keywords          []string      `yaml:"keywords"`
	MinKeywordMatches int           `yaml:"min_keyword_matches"`
	MaxChunkTokens    int           `yaml:"max_chunk_tokens"`
	BatchSize         int           `yaml:"batch_size"`
	BatchDelay        string        `yaml:"batch_delay"`
	Pricing           PricingConfig `yaml:"pricing"`
	SourceName        string        `yaml:"source_name"`
}

func (y yamlConfig) toConfig() (Config, error) {
	cfg := Config{
		Keywords:          y.Keywords,
		MinKeywordMatches: y.MinKeywordMatches,
		MaxChunkTokens:    y.MaxChunkTokens,
		BatchSize:         y.BatchSize,
		Pricing:           y.Pricing,
		SourceName:        y.SourceName,
	}
	if raw := strings.TrimSpace(y.BatchDelay); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return cfg, fmt.Errorf("parse batch_delay %q: %w", raw, err)
		}
		cfg.BatchDelay = d
	}
	return cfg, nil
}

// LoadConfig reads the pipeline YAML (path from PIPELINE_CONFIG_YAML, else
// the embedded default), then applies env overrides for the operational
// knobs. A broken override file logs a warning and falls back rather than
// failing the run.
func LoadConfig(log *logger.Logger) Config {
	cfg, err := loadYAML()
	if err != nil {
		if log != nil {
			log.Warn("pipeline config YAML invalid; using embedded defaults", "error", err)
		}
		cfg = Config{}
	}

	if cfg.MinKeywordMatches <= 0 {
		cfg.MinKeywordMatches = 2
	}
	if cfg.MaxChunkTokens <= 0 {
		cfg.MaxChunkTokens = 30000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	if cfg.BatchDelay <= 0 {
		cfg.BatchDelay = 1 * time.Second
	}
	if strings.TrimSpace(cfg.SourceName) == "" {
		cfg.SourceName = "chat_export"
	}

	cfg.BatchSize = envutil.Int("EXTRACTION_BATCH_SIZE", cfg.BatchSize)
	cfg.BatchDelay = envutil.Duration("EXTRACTION_BATCH_DELAY", cfg.BatchDelay)
	cfg.MaxChunkTokens = envutil.Int("MAX_CHUNK_TOKENS", cfg.MaxChunkTokens)
	cfg.MinKeywordMatches = envutil.Int("MIN_KEYWORD_MATCHES", cfg.MinKeywordMatches)
	cfg.Pricing.InputPerMillionUSD = envutil.Float("PRICE_INPUT_PER_MILLION_USD", cfg.Pricing.InputPerMillionUSD)
	cfg.Pricing.OutputPerMillionUSD = envutil.Float("PRICE_OUTPUT_PER_MILLION_USD", cfg.Pricing.OutputPerMillionUSD)

	return cfg
}

func loadYAML() (Config, error) {
	var decoded yamlConfig

	if path := strings.TrimSpace(os.Getenv(pipelineConfigEnv)); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &decoded); err != nil {
			return Config{}, fmt.Errorf("decode %s: %w", path, err)
		}
		return decoded.toConfig()
	}

	raw, err := defaultConfigFS.ReadFile("pipeline.yaml")
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(raw, &decoded); err != nil {
		return Config{}, fmt.Errorf("decode embedded pipeline.yaml: %w", err)
	}
	return decoded.toConfig()
}
