package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/shoplens/smart-product-advisor/internal/domain/entities"
	"github.com/shoplens/smart-product-advisor/internal/domain/providers"
	"github.com/shoplens/smart-product-advisor/internal/domain/repositories"
	"github.com/shoplens/smart-product-advisor/internal/infrastructure/observability"
	"github.com/shoplens/smart-product-advisor/pkg/config"
)

// searchResultsTTL is the default TTL in seconds when no cache
// configuration is supplied.
const searchResultsTTL = 1800

// ResultCache is a cache-aside wrapper around full search responses.
// All cache failures are soft: reads that error are misses, writes
// that error are dropped.
type ResultCache struct {
	cache providers.CacheProvider
	ttl   int
}

// NewResultCache creates a new result cache
func NewResultCache(cache providers.CacheProvider, cfg *config.CacheConfig) *ResultCache {
	ttl := searchResultsTTL
	if cfg != nil && cfg.SearchResultsTTL > 0 {
		ttl = cfg.SearchResultsTTL
	}
	return &ResultCache{cache: cache, ttl: ttl}
}

// canonicalSearchKey pins the serialized field order so equivalent
// requests always hash to the same key.
type canonicalSearchKey struct {
	Query      string               `json:"query"`
	Category   string               `json:"category"`
	PriceRange *entities.PriceRange `json:"priceRange"`
	Brands     []string             `json:"brands"`
	Rating     float64              `json:"rating"`
	SortBy     string               `json:"sortBy"`
	SortOrder  string               `json:"sortOrder"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
}

// DeriveResultCacheKey computes the cache key for a search request.
// The admission path and the handler path must derive identical keys,
// so the query is case-folded and trimmed and brands are sorted before
// hashing.
func DeriveResultCacheKey(query string, filters repositories.SearchFilters) string {
	brands := append([]string(nil), filters.Brands...)
	sort.Strings(brands)

	canonical := canonicalSearchKey{
		Query:      strings.ToLower(strings.TrimSpace(query)),
		Category:   filters.Category,
		PriceRange: filters.PriceRange,
		Brands:     brands,
		Rating:     filters.Rating,
		SortBy:     filters.SortBy,
		SortOrder:  filters.SortOrder,
		Page:       filters.Page,
		Limit:      filters.Limit,
	}

	data, _ := json.Marshal(canonical)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("spa:search:%s", hex.EncodeToString(sum[:]))
}

// Exists reports whether a cached response is present for the key.
// Errors are soft and read as absence.
func (c *ResultCache) Exists(ctx context.Context, key string) bool {
	if c.cache == nil {
		return false
	}
	exists, err := c.cache.Exists(ctx, key)
	if err != nil {
		return false
	}
	return exists
}

// GetOrCompute returns the cached response for the key, or runs
// compute and caches its result. Cached responses come back with
// FromCache set.
func (c *ResultCache) GetOrCompute(ctx context.Context, key string, compute func(ctx context.Context) (*entities.SearchResponse, error)) (*entities.SearchResponse, error) {
	if c.cache == nil {
		return compute(ctx)
	}
	if cached, err := c.cache.Get(ctx, key); err == nil {
		var response entities.SearchResponse
		if err := json.Unmarshal(cached, &response); err == nil {
			observability.RecordCacheHit(ctx, "search-result")
			response.FromCache = true
			return &response, nil
		}
		log.Warn().Str("key", key).Err(err).Msg("failed to unmarshal cached search response")
	}
	observability.RecordCacheMiss(ctx, "search-result")

	response, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(response); err == nil {
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			log.Warn().Str("key", key).Err(err).Msg("failed to cache search response")
		}
	}

	return response, nil
}
