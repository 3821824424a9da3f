package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	types "github.com/yungbote/wandergraph-backend/internal/domain"
	"github.com/yungbote/wandergraph-backend/internal/enrichment"
	"github.com/yungbote/wandergraph-backend/internal/platform/logger"
	"github.com/yungbote/wandergraph-backend/internal/platform/rediscache"
)

type output struct {
	Place            string                 `json:"place"`
	Enrichment       types.MergedEnrichment `json:"enrichment"`
	WebsiteReachable bool                   `json:"website_reachable"`
}

func main() {
	_ = godotenv.Load()

	lat := flag.Float64("lat", 0, "location bias latitude")
	lon := flag.Float64("lon", 0, "location bias longitude")
	flag.Parse()

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

	if flag.NArg() < 1 {
		log.Fatal("usage: enrich [-lat f -lon f] <place name>...")
	}

	ctx := context.Background()

	// Each provider is optional: missing credentials just narrow the merge.
	places, err := enrichment.NewPlacesProvider(log)
	if err != nil {
		log.Warn("places provider unavailable", "error", err)
	}
	encyclopedia, err := enrichment.NewEncyclopediaProvider(log)
	if err != nil {
		log.Warn("encyclopedia provider unavailable", "error", err)
	}
	geodata, err := enrichment.NewGeodataProvider(log)
	if err != nil {
		log.Warn("geodata provider unavailable", "error", err)
	}
	if places == nil && encyclopedia == nil && geodata == nil {
		log.Fatal("no enrichment providers configured")
	}

	cache, err := rediscache.NewFromEnv(log)
	if err != nil {
		log.Warn("redis cache unavailable; continuing without it", "error", err)
	}
	if cache != nil {
		defer cache.Close()
	}

	enricher := enrichment.NewEnricher(places, encyclopedia, geodata, cache, log)

	results := make([]output, 0, flag.NArg())
	for _, name := range flag.Args() {
		merged, err := enricher.EnrichPlace(ctx, name, *lat, *lon)
		if err != nil {
			log.Error("enrichment failed", "place", name, "error", err)
			continue
		}
		results = append(results, output{
			Place:            name,
			Enrichment:       merged,
			WebsiteReachable: enrichment.URLReachable(ctx, merged.Website),
		})
	}

	summary, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(summary))
}
