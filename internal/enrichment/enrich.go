package enrichment

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	types "github.com/yungbote/wandergraph-backend/internal/domain"
	"github.com/yungbote/wandergraph-backend/internal/platform/logger"
	"github.com/yungbote/wandergraph-backend/internal/platform/rediscache"
)

// Enricher fans a place name out to the configured providers and merges the
// results. Any provider may be nil (not configured) or fail at runtime; both
// degrade to a merge over the remaining sources.
type Enricher struct {
	Places       PlacesProvider
	Encyclopedia EncyclopediaProvider
	Geodata      GeodataProvider

	Cache    *rediscache.Cache
	Log      *logger.Logger
	PhotoCap int
}

func NewEnricher(places PlacesProvider, encyclopedia EncyclopediaProvider, geodata GeodataProvider, cache *rediscache.Cache, log *logger.Logger) *Enricher {
	return &Enricher{
		Places:       places,
		Encyclopedia: encyclopedia,
		Geodata:      geodata,
		Cache:        cache,
		Log:          log.With("component", "EnrichmentMerger"),
		PhotoCap:     DefaultPhotoCap,
	}
}

// EnrichPlace looks a place up across all providers concurrently and merges
// whatever came back. Provider failures are absorbed as missing sources.
func (e *Enricher) EnrichPlace(ctx context.Context, name string, lat, lon float64) (types.MergedEnrichment, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.MergedEnrichment{}, fmt.Errorf("enrich: place name required")
	}

	cacheKey := fmt.Sprintf("enrichment:%s", strings.ToLower(name))
	if e.Cache != nil {
		var cached types.MergedEnrichment
		ok, err := e.Cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			e.Log.Warn("enrichment cache read failed", "place", name, "error", err)
		} else if ok {
			return cached, nil
		}
	}

	var (
		placeRec   *types.PlaceDetails
		articleRec *types.ArticleDetails
		geoRec     *types.GeoDetails
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		placeRec = lookupProvider[types.PlaceDetails](gctx, e.Log, SourcePlaces, name, lat, lon, e.Places)
		return nil
	})
	g.Go(func() error {
		articleRec = lookupProvider[types.ArticleDetails](gctx, e.Log, SourceEncyclopedia, name, lat, lon, e.Encyclopedia)
		return nil
	})
	g.Go(func() error {
		geoRec = lookupProvider[types.GeoDetails](gctx, e.Log, SourceGeodata, name, lat, lon, e.Geodata)
		return nil
	})
	_ = g.Wait()

	merged := Merge(placeRec, articleRec, geoRec, e.PhotoCap)
	if errs := Validate(merged); len(errs) > 0 {
		e.Log.Warn("merged enrichment failed validation", "place", name, "validation_errors", fmt.Sprint(errs))
	}

	if e.Cache != nil && len(merged.Sources) > 0 {
		if err := e.Cache.Set(ctx, cacheKey, merged); err != nil {
			e.Log.Warn("enrichment cache write failed", "place", name, "error", err)
		}
	}

	return merged, nil
}

// searchDetailer is the shared provider shape; the concrete record type
// differs per provider.
type searchDetailer[T any] interface {
	Search(ctx context.Context, name string, lat, lon float64) (string, error)
	Details(ctx context.Context, id string) (*T, error)
}

// lookupProvider runs the search->details sequence for one provider. A nil
// provider, a no-match, or a network failure all come back as nil; only the
// failure is logged.
func lookupProvider[T any](ctx context.Context, log *logger.Logger, source, name string, lat, lon float64, p searchDetailer[T]) *T {
	if p == nil {
		return nil
	}

	id, err := p.Search(ctx, name, lat, lon)
	if err != nil {
		log.Warn("provider search failed; continuing without it",
			"provider", source, "place", name, "error", err)
		return nil
	}
	if id == "" {
		return nil
	}

	rec, err := p.Details(ctx, id)
	if err != nil {
		log.Warn("provider details failed; continuing without it",
			"provider", source, "place", name, "error", err)
		return nil
	}
	return rec
}
