package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/shoplens/smart-product-advisor/internal/domain/entities"
	"github.com/shoplens/smart-product-advisor/internal/domain/repositories"
)

// CacheWarmingService pre-computes search responses for queries that
// come up often, so the first user after a deploy or cache flush still
// gets a cached answer.
type CacheWarmingService struct {
	searchService *ProductSearchService
	resultCache   *ResultCache
	queries       []string
}

// defaultWarmQueries is the starter set of popular queries. Operators
// can extend this from zero-result analytics over time.
var defaultWarmQueries = []string{
	"laptop for work",
	"wireless headphones",
	"coffee maker",
	"running shoes",
	"board games for family night",
}

// NewCacheWarmingService creates a new cache warming service
func NewCacheWarmingService(searchService *ProductSearchService, resultCache *ResultCache) *CacheWarmingService {
	return &CacheWarmingService{
		searchService: searchService,
		resultCache:   resultCache,
		queries:       defaultWarmQueries,
	}
}

// WarmCache computes and caches responses for the popular query set
func (s *CacheWarmingService) WarmCache(ctx context.Context) error {
	log.Info().Int("queries", len(s.queries)).Msg("starting search cache warming")

	warmed := 0
	for _, query := range s.queries {
		filters := repositories.SearchFilters{}
		key := DeriveResultCacheKey(query, filters)
		if s.resultCache.Exists(ctx, key) {
			continue
		}

		_, err := s.resultCache.GetOrCompute(ctx, key, func(ctx context.Context) (*entities.SearchResponse, error) {
			return s.searchService.SearchWithAI(ctx, query, filters), nil
		})
		if err != nil {
			log.Warn().Str("query", query).Err(err).Msg("failed to warm search cache")
			continue
		}
		warmed++
	}

	log.Info().Int("warmed", warmed).Msg("search cache warming completed")
	return nil
}
