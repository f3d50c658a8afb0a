package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/shoplens/smart-product-advisor/internal/domain/entities"
	"github.com/shoplens/smart-product-advisor/internal/domain/providers"
	"github.com/shoplens/smart-product-advisor/internal/infrastructure/observability"
	"github.com/shoplens/smart-product-advisor/pkg/config"
)

// Default interpretation cache TTLs (in seconds), used when no cache
// configuration is supplied. High-confidence intents are stable enough
// to keep around longer.
const (
	queryCacheTTL               = 3600
	queryCacheHighConfidenceTTL = 7200
	highConfidenceThreshold     = 0.8
)

// CachedQueryProcessor wraps a QueryProcessor with cache-aside reads.
// Cache failures are treated as misses; processor errors propagate
// uncached.
type CachedQueryProcessor struct {
	processor providers.QueryProcessor
	cache     providers.CacheProvider
	shortTTL  int
	longTTL   int
}

// NewCachedQueryProcessor creates a new cached query processor. TTLs
// come from cfg when provided, otherwise the package defaults apply.
func NewCachedQueryProcessor(processor providers.QueryProcessor, cache providers.CacheProvider, cfg *config.CacheConfig) providers.QueryProcessor {
	shortTTL, longTTL := queryCacheTTL, queryCacheHighConfidenceTTL
	if cfg != nil {
		if cfg.DefaultTTL > 0 {
			shortTTL = cfg.DefaultTTL
		}
		if cfg.HighConfidenceTTL > 0 {
			longTTL = cfg.HighConfidenceTTL
		}
	}
	return &CachedQueryProcessor{
		processor: processor,
		cache:     cache,
		shortTTL:  shortTTL,
		longTTL:   longTTL,
	}
}

// QueryCacheKey derives the interpretation cache key for a raw query.
// The query is case-folded and trimmed first so trivially different
// spellings share an entry.
func QueryCacheKey(query string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	sum := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("spa:query:%s", hex.EncodeToString(sum[:]))
}

func (p *CachedQueryProcessor) ProcessQuery(ctx context.Context, query string) (*entities.ProcessedQuery, error) {
	cacheKey := QueryCacheKey(query)

	if cached, err := p.cache.Get(ctx, cacheKey); err == nil {
		var processed entities.ProcessedQuery
		if err := json.Unmarshal(cached, &processed); err == nil {
			observability.RecordCacheHit(ctx, "interpretation")
			return &processed, nil
		}
		log.Warn().Str("key", cacheKey).Err(err).Msg("failed to unmarshal cached query intent")
	}
	observability.RecordCacheMiss(ctx, "interpretation")

	processed, err := p.processor.ProcessQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	ttl := p.shortTTL
	if processed.Confidence > highConfidenceThreshold {
		ttl = p.longTTL
	}

	if data, err := json.Marshal(processed); err == nil {
		if err := p.cache.Set(ctx, cacheKey, data, ttl); err != nil {
			log.Warn().Str("key", cacheKey).Err(err).Msg("failed to cache query intent")
		}
	}

	return processed, nil
}
