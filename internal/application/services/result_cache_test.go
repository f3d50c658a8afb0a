package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplens/smart-product-advisor/internal/application/services"
	"github.com/shoplens/smart-product-advisor/internal/domain/entities"
	"github.com/shoplens/smart-product-advisor/internal/domain/repositories"
	"github.com/shoplens/smart-product-advisor/pkg/config"
)

func TestDeriveResultCacheKey_NormalizesQuery(t *testing.T) {
	filters := repositories.SearchFilters{Category: "Electronics", Page: 1, Limit: 12}

	assert.Equal(t,
		services.DeriveResultCacheKey("  Laptop ", filters),
		services.DeriveResultCacheKey("laptop", filters),
	)
}

func TestDeriveResultCacheKey_BrandOrderIrrelevant(t *testing.T) {
	a := repositories.SearchFilters{Brands: []string{"Novatech", "Auralis"}}
	b := repositories.SearchFilters{Brands: []string{"Auralis", "Novatech"}}

	assert.Equal(t,
		services.DeriveResultCacheKey("laptop", a),
		services.DeriveResultCacheKey("laptop", b),
	)
}

func TestDeriveResultCacheKey_DistinguishesFilters(t *testing.T) {
	base := repositories.SearchFilters{}
	withCategory := repositories.SearchFilters{Category: "Electronics"}
	withPage := repositories.SearchFilters{Page: 2}

	key := services.DeriveResultCacheKey("laptop", base)
	assert.NotEqual(t, key, services.DeriveResultCacheKey("laptop", withCategory))
	assert.NotEqual(t, key, services.DeriveResultCacheKey("laptop", withPage))
	assert.NotEqual(t, key, services.DeriveResultCacheKey("headphones", base))
}

func TestResultCache_ComputeThenHit(t *testing.T) {
	cache := newFakeCache()
	rc := services.NewResultCache(cache, nil)
	key := services.DeriveResultCacheKey("laptop", repositories.SearchFilters{})

	computeCalls := 0
	compute := func(ctx context.Context) (*entities.SearchResponse, error) {
		computeCalls++
		return &entities.SearchResponse{Query: "laptop", Total: 3}, nil
	}

	first, err := rc.GetOrCompute(context.Background(), key, compute)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, 1, computeCalls)
	assert.Equal(t, 1800, cache.ttls[key])

	second, err := rc.GetOrCompute(context.Background(), key, compute)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, 3, second.Total)
	assert.Equal(t, 1, computeCalls, "hit must not recompute")
}

func TestResultCache_ConfiguredTTL(t *testing.T) {
	cache := newFakeCache()
	rc := services.NewResultCache(cache, &config.CacheConfig{SearchResultsTTL: 90})
	key := services.DeriveResultCacheKey("laptop", repositories.SearchFilters{})

	_, err := rc.GetOrCompute(context.Background(), key, func(ctx context.Context) (*entities.SearchResponse, error) {
		return &entities.SearchResponse{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 90, cache.ttls[key])
}

func TestResultCache_ReadFailureFallsThroughToCompute(t *testing.T) {
	cache := newFakeCache()
	cache.failGet = true
	rc := services.NewResultCache(cache, nil)

	response, err := rc.GetOrCompute(context.Background(), "some-key", func(ctx context.Context) (*entities.SearchResponse, error) {
		return &entities.SearchResponse{Total: 1}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, response.Total)
	assert.False(t, response.FromCache)
}

func TestResultCache_ComputeErrorPropagates(t *testing.T) {
	rc := services.NewResultCache(newFakeCache(), nil)

	_, err := rc.GetOrCompute(context.Background(), "some-key", func(ctx context.Context) (*entities.SearchResponse, error) {
		return nil, errors.New("boom")
	})
	assert.Error(t, err)
}

func TestResultCache_Exists(t *testing.T) {
	cache := newFakeCache()
	rc := services.NewResultCache(cache, nil)
	key := services.DeriveResultCacheKey("laptop", repositories.SearchFilters{})

	assert.False(t, rc.Exists(context.Background(), key))

	_, err := rc.GetOrCompute(context.Background(), key, func(ctx context.Context) (*entities.SearchResponse, error) {
		return &entities.SearchResponse{}, nil
	})
	require.NoError(t, err)
	assert.True(t, rc.Exists(context.Background(), key))

	cache.failGet = true
	assert.False(t, rc.Exists(context.Background(), key), "store errors read as absent")
}

func TestResultCache_NilProviderIsPassThrough(t *testing.T) {
	rc := services.NewResultCache(nil, nil)

	computeCalls := 0
	for i := 0; i < 2; i++ {
		response, err := rc.GetOrCompute(context.Background(), "key", func(ctx context.Context) (*entities.SearchResponse, error) {
			computeCalls++
			return &entities.SearchResponse{}, nil
		})
		require.NoError(t, err)
		assert.False(t, response.FromCache)
	}
	assert.Equal(t, 2, computeCalls)
	assert.False(t, rc.Exists(context.Background(), "key"))
}
