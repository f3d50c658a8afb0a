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
)

func catalogResult(products ...*entities.Product) *repositories.SearchResult {
	return &repositories.SearchResult{
		Products:   products,
		Total:      len(products),
		Page:       1,
		TotalPages: 1,
	}
}

func newSearchService(repo *fakeProductRepo, processor *fakeProcessor) *services.ProductSearchService {
	return services.NewProductSearchService(repo, nil, processor, services.NewSearchRankingService(), nil)
}

func TestSearchWithAI_UsesInterpretedIntent(t *testing.T) {
	repo := &fakeProductRepo{result: catalogResult(
		&entities.Product{ID: "p1", Name: "UltraBook Pro", Category: "Electronics"},
	)}
	processor := &fakeProcessor{intent: &entities.ProcessedQuery{
		Category:    "Electronics",
		Features:    []string{"lightweight", "gaming"},
		Keywords:    []string{"laptop", "gaming"},
		Explanation: "Looking for a portable gaming laptop",
		Confidence:  0.9,
	}}
	service := newSearchService(repo, processor)

	response := service.SearchWithAI(context.Background(), "laptop for gaming", repositories.SearchFilters{})

	assert.True(t, response.UsedAI)
	assert.Equal(t, "laptop for gaming", response.Query)
	assert.Equal(t, 0.9, response.ProcessedQuery.Confidence)

	// criteria carry the intent category and the deduplicated union of
	// keywords then features
	assert.Equal(t, "Electronics", repo.lastCriteria.Category)
	assert.Equal(t, []string{"laptop", "gaming", "lightweight"}, repo.lastCriteria.Keywords)
}

func TestSearchWithAI_DegradesWhenInterpretationFails(t *testing.T) {
	repo := &fakeProductRepo{result: catalogResult()}
	processor := &fakeProcessor{err: errors.New("upstream down")}
	service := newSearchService(repo, processor)

	response := service.SearchWithAI(context.Background(), "I need a laptop for college", repositories.SearchFilters{})

	assert.False(t, response.UsedAI)
	require.NotNil(t, response.ProcessedQuery)
	assert.Equal(t, 0.3, response.ProcessedQuery.Confidence)
	assert.Equal(t, []string{"laptop", "college"}, response.ProcessedQuery.Keywords)
	assert.Empty(t, response.ProcessedQuery.Features)
	assert.Contains(t, response.Explanation, "basic search")
}

func TestSearchWithAI_ExplicitFiltersPassedThrough(t *testing.T) {
	repo := &fakeProductRepo{result: catalogResult()}
	processor := &fakeProcessor{intent: &entities.ProcessedQuery{
		Category:   "Electronics",
		PriceRange: &entities.PriceRange{Min: 100, Max: 500},
		Keywords:   []string{"laptop"},
		Confidence: 0.8,
	}}
	service := newSearchService(repo, processor)

	explicit := repositories.SearchFilters{
		Category:   "Fashion",
		PriceRange: &entities.PriceRange{Min: 10, Max: 50},
		Page:       2,
		Limit:      24,
	}
	service.SearchWithAI(context.Background(), "laptop", explicit)

	// explicit filters travel untouched; the repository resolves
	// precedence over intent criteria
	assert.Equal(t, explicit, repo.lastFilters)
	assert.Equal(t, "Electronics", repo.lastCriteria.Category)
	assert.Equal(t, 100.0, repo.lastCriteria.PriceRange.Min)
}

func TestSearchWithAI_RelevanceSortReordersByScore(t *testing.T) {
	weak := &entities.Product{ID: "weak", Name: "Socks"}
	strong := &entities.Product{ID: "strong", Name: "UltraBook", Category: "Electronics", Rating: 4.5, StockQuantity: 3}
	repo := &fakeProductRepo{result: catalogResult(weak, strong)}
	processor := &fakeProcessor{intent: &entities.ProcessedQuery{
		Category:   "Electronics",
		Keywords:   []string{"laptop"},
		Confidence: 0.8,
	}}
	service := newSearchService(repo, processor)

	response := service.SearchWithAI(context.Background(), "laptop", repositories.SearchFilters{})

	require.Len(t, response.Products, 2)
	assert.Equal(t, "strong", response.Products[0].Product.ID)
}

func TestSearchWithAI_ExplicitSortPreservesCatalogOrder(t *testing.T) {
	cheap := &entities.Product{ID: "cheap", Name: "Budget laptop", Price: 300}
	pricey := &entities.Product{ID: "pricey", Name: "UltraBook", Category: "Electronics", Price: 1500, Rating: 4.8, StockQuantity: 10}
	repo := &fakeProductRepo{result: catalogResult(cheap, pricey)}
	processor := &fakeProcessor{intent: &entities.ProcessedQuery{
		Category:   "Electronics",
		Keywords:   []string{"laptop"},
		Confidence: 0.8,
	}}
	service := newSearchService(repo, processor)

	response := service.SearchWithAI(context.Background(), "laptop", repositories.SearchFilters{
		SortBy:    repositories.SortByPrice,
		SortOrder: "asc",
	})

	require.Len(t, response.Products, 2)
	assert.Equal(t, "cheap", response.Products[0].Product.ID)
	assert.Equal(t, "pricey", response.Products[1].Product.ID)
	assert.Greater(t, response.Products[1].Score, response.Products[0].Score)
}

func TestSearchWithAI_ExplanationFacets(t *testing.T) {
	repo := &fakeProductRepo{result: catalogResult(
		&entities.Product{ID: "p1"}, &entities.Product{ID: "p2"},
	)}
	processor := &fakeProcessor{intent: &entities.ProcessedQuery{
		Category:    "Electronics",
		Features:    []string{"lightweight", "fast", "quiet", "cheap"},
		PriceRange:  &entities.PriceRange{Min: 500, Max: 1500},
		UseCase:     "college work",
		Explanation: "Interpreted as a study laptop",
		Confidence:  0.9,
	}}
	service := newSearchService(repo, processor)

	response := service.SearchWithAI(context.Background(), "laptop", repositories.SearchFilters{})

	assert.Contains(t, response.Explanation, "Found 2 products")
	assert.Contains(t, response.Explanation, "focusing on Electronics")
	assert.Contains(t, response.Explanation, "lightweight, fast, quiet")
	assert.NotContains(t, response.Explanation, "cheap", "only the first three features are shown")
	assert.Contains(t, response.Explanation, "$500-$1500")
	assert.Contains(t, response.Explanation, "for college work")
	assert.Contains(t, response.Explanation, "Interpreted as a study laptop")
}

func TestSearchWithAI_GenericExplanationWithoutFacets(t *testing.T) {
	repo := &fakeProductRepo{result: catalogResult(&entities.Product{ID: "p1"})}
	processor := &fakeProcessor{intent: &entities.ProcessedQuery{
		Keywords:   []string{"something"},
		Confidence: 0.5,
	}}
	service := newSearchService(repo, processor)

	response := service.SearchWithAI(context.Background(), "something", repositories.SearchFilters{})

	assert.Contains(t, response.Explanation, "Found 1 products matching your search")
}

func TestSearchWithAI_NeverFailsOnCatalogError(t *testing.T) {
	repo := &fakeProductRepo{
		result: catalogResult(),
		err:    errors.New("database down"),
	}
	processor := &fakeProcessor{intent: &entities.ProcessedQuery{
		Keywords:   []string{"laptop"},
		Confidence: 0.8,
	}}
	service := newSearchService(repo, processor)

	response := service.SearchWithAI(context.Background(), "laptop", repositories.SearchFilters{})

	require.NotNil(t, response)
	assert.Empty(t, response.Products)
	assert.Equal(t, 0, response.Total)
}

func TestBasicSearch_ExtractsKeywords(t *testing.T) {
	repo := &fakeProductRepo{result: catalogResult()}
	service := newSearchService(repo, &fakeProcessor{})

	_, err := service.Search(context.Background(), "I want a coffee maker for the office", repositories.SearchFilters{})
	require.NoError(t, err)

	assert.Equal(t, []string{"coffee", "maker", "office"}, repo.lastCriteria.Keywords)
	assert.Empty(t, repo.lastCriteria.Category)
}
