package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplens/smart-product-advisor/internal/application/services"
	"github.com/shoplens/smart-product-advisor/internal/domain/entities"
	"github.com/shoplens/smart-product-advisor/internal/domain/repositories"
)

func TestCacheWarming_PopulatesResultCache(t *testing.T) {
	cache := newFakeCache()
	resultCache := services.NewResultCache(cache, nil)
	repo := &fakeProductRepo{result: catalogResult(&entities.Product{ID: "p1"})}
	processor := &fakeProcessor{intent: &entities.ProcessedQuery{
		Keywords:   []string{"laptop"},
		Confidence: 0.8,
	}}
	searchService := newSearchService(repo, processor)

	warming := services.NewCacheWarmingService(searchService, resultCache)
	require.NoError(t, warming.WarmCache(context.Background()))

	key := services.DeriveResultCacheKey("laptop for work", repositories.SearchFilters{})
	assert.True(t, resultCache.Exists(context.Background(), key))
	assert.NotEmpty(t, cache.data)
}

func TestCacheWarming_SkipsAlreadyWarmKeys(t *testing.T) {
	cache := newFakeCache()
	resultCache := services.NewResultCache(cache, nil)
	repo := &fakeProductRepo{result: catalogResult()}
	processor := &fakeProcessor{intent: &entities.ProcessedQuery{
		Keywords:   []string{"anything"},
		Confidence: 0.8,
	}}
	searchService := newSearchService(repo, processor)

	warming := services.NewCacheWarmingService(searchService, resultCache)
	require.NoError(t, warming.WarmCache(context.Background()))
	firstRepoCalls := repo.searchCalls

	require.NoError(t, warming.WarmCache(context.Background()))
	assert.Equal(t, firstRepoCalls, repo.searchCalls, "already warm keys should not be recomputed")
}
