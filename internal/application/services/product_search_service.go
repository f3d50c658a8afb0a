package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/shoplens/smart-product-advisor/internal/domain/entities"
	"github.com/shoplens/smart-product-advisor/internal/domain/providers"
	"github.com/shoplens/smart-product-advisor/internal/domain/repositories"
	"github.com/shoplens/smart-product-advisor/pkg/utils"
)

// ProductSearchService orchestrates the search pipeline: query
// interpretation, criteria merging, catalog retrieval, and ranking.
// SearchWithAI never fails; upstream interpretation errors degrade to
// a keyword search rather than surfacing to the caller.
type ProductSearchService struct {
	repo       repositories.ProductRepository
	searchRepo repositories.ProductSearchRepository
	processor  providers.QueryProcessor
	ranker     *SearchRankingService
	analytics  *SearchAnalyticsService
}

// NewProductSearchService creates a new product search service.
// searchRepo and analytics may be nil when the backing services are
// not configured.
func NewProductSearchService(
	repo repositories.ProductRepository,
	searchRepo repositories.ProductSearchRepository,
	processor providers.QueryProcessor,
	ranker *SearchRankingService,
	analytics *SearchAnalyticsService,
) *ProductSearchService {
	return &ProductSearchService{
		repo:       repo,
		searchRepo: searchRepo,
		processor:  processor,
		ranker:     ranker,
		analytics:  analytics,
	}
}

// SearchWithAI runs the full AI-assisted search pipeline. It always
// returns a usable response; UsedAI and the intent confidence signal
// how much of the interpretation survived.
func (s *ProductSearchService) SearchWithAI(ctx context.Context, query string, filters repositories.SearchFilters) *entities.SearchResponse {
	start := time.Now()

	intent, err := s.processor.ProcessQuery(ctx, query)
	usedAI := err == nil
	if err != nil {
		log.Warn().Str("query", query).Err(err).Msg("query interpretation unavailable, falling back to keyword search")
		intent = degradedIntent(query)
	}

	criteria := buildSearchCriteria(intent)
	result := s.retrieveCandidates(ctx, criteria, filters)

	var products []entities.ScoredProduct
	if isRelevanceSort(filters.SortBy) {
		products = s.ranker.Rank(result.Products, intent)
	} else {
		products = s.ranker.Score(result.Products, intent)
	}

	response := &entities.SearchResponse{
		Query:          query,
		ProcessedQuery: intent,
		Explanation:    buildExplanation(intent, result.Total),
		Products:       products,
		Total:          result.Total,
		Page:           result.Page,
		TotalPages:     result.TotalPages,
		SearchTimeMs:   time.Since(start).Milliseconds(),
		UsedAI:         usedAI,
	}

	s.logSearchEvent(query, response)

	return response
}

// Search runs a plain keyword search without query interpretation
func (s *ProductSearchService) Search(ctx context.Context, query string, filters repositories.SearchFilters) (*repositories.SearchResult, error) {
	criteria := repositories.SearchCriteria{
		Keywords: utils.ExtractKeywords(query),
	}
	return s.repo.SearchWithFilters(ctx, criteria, filters)
}

// GetProduct retrieves a single product by ID
func (s *ProductSearchService) GetProduct(ctx context.Context, id string) (*entities.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// ListProducts retrieves a page of the catalog
func (s *ProductSearchService) ListProducts(ctx context.Context, page, limit int) (*repositories.SearchResult, error) {
	return s.repo.List(ctx, page, limit)
}

// Categories lists the distinct catalog categories
func (s *ProductSearchService) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

// Brands lists the distinct catalog brands
func (s *ProductSearchService) Brands(ctx context.Context) ([]string, error) {
	return s.repo.Brands(ctx)
}

// retrieveCandidates picks the retrieval backend. Keyword queries
// without an explicit sort go through the search index for full-text
// relevance; everything else, and any index failure, uses the catalog
// database.
func (s *ProductSearchService) retrieveCandidates(ctx context.Context, criteria repositories.SearchCriteria, filters repositories.SearchFilters) *repositories.SearchResult {
	if s.searchRepo != nil && len(criteria.Keywords) > 0 && isRelevanceSort(filters.SortBy) {
		result, err := s.searchRepo.Search(ctx, criteria, filters)
		if err == nil {
			return result
		}
		log.Warn().Err(err).Msg("search index unavailable, falling back to database search")
	}

	result, err := s.repo.SearchWithFilters(ctx, criteria, filters)
	if err != nil {
		log.Error().Err(err).Msg("catalog search failed")
		page := filters.Page
		if page < 1 {
			page = 1
		}
		return &repositories.SearchResult{Products: []*entities.Product{}, Page: page}
	}
	return result
}

func (s *ProductSearchService) logSearchEvent(query string, response *entities.SearchResponse) {
	if s.analytics == nil {
		return
	}

	confidence := 0.0
	if response.ProcessedQuery != nil {
		confidence = response.ProcessedQuery.Confidence
	}

	s.analytics.LogSearch(&entities.SearchEvent{
		Query:       query,
		UsedAI:      response.UsedAI,
		Confidence:  confidence,
		ResultCount: response.Total,
		LatencyMs:   response.SearchTimeMs,
		CacheHit:    response.FromCache,
	})
}

// degradedIntent is the local stand-in used when interpretation fails
// outright. Confidence mirrors the interpreter's own fallback path.
func degradedIntent(query string) *entities.ProcessedQuery {
	return &entities.ProcessedQuery{
		Features:    []string{},
		Keywords:    utils.ExtractKeywords(query),
		Explanation: "Used basic search due to AI service unavailability",
		Confidence:  0.3,
	}
}

// buildSearchCriteria carries the intent-derived constraints. Keywords
// are the union of intent keywords and features, order preserved.
func buildSearchCriteria(intent *entities.ProcessedQuery) repositories.SearchCriteria {
	criteria := repositories.SearchCriteria{
		Category:   intent.Category,
		PriceRange: intent.PriceRange,
	}

	seen := make(map[string]struct{})
	for _, kw := range intent.Keywords {
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		criteria.Keywords = append(criteria.Keywords, kw)
	}
	for _, feature := range intent.Features {
		if _, ok := seen[feature]; ok {
			continue
		}
		seen[feature] = struct{}{}
		criteria.Keywords = append(criteria.Keywords, feature)
	}

	return criteria
}

func isRelevanceSort(sortBy string) bool {
	return sortBy == "" || sortBy == repositories.SortByRelevance
}

func buildExplanation(intent *entities.ProcessedQuery, total int) string {
	var parts []string

	if intent.Category != "" {
		parts = append(parts, fmt.Sprintf("focusing on %s", intent.Category))
	}
	if len(intent.Features) > 0 {
		features := intent.Features
		if len(features) > 3 {
			features = features[:3]
		}
		parts = append(parts, fmt.Sprintf("with features like %s", strings.Join(features, ", ")))
	}
	if intent.PriceRange != nil {
		parts = append(parts, fmt.Sprintf("in the $%.0f-$%.0f range", intent.PriceRange.Min, intent.PriceRange.Max))
	}
	if intent.UseCase != "" {
		parts = append(parts, fmt.Sprintf("for %s", intent.UseCase))
	}

	explanation := fmt.Sprintf("Found %d products matching your search", total)
	if len(parts) > 0 {
		explanation = fmt.Sprintf("Found %d products %s", total, strings.Join(parts, ", "))
	}

	if intent.Explanation != "" {
		return fmt.Sprintf("%s. %s", explanation, intent.Explanation)
	}
	return explanation
}
