package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shoplens/smart-product-advisor/internal/application/services"
	"github.com/shoplens/smart-product-advisor/internal/domain/entities"
	"github.com/shoplens/smart-product-advisor/internal/domain/providers"
	"github.com/shoplens/smart-product-advisor/internal/domain/repositories"
)

const maxQueryLength = 500

// SearchRequest is the body of POST /api/search
type SearchRequest struct {
	Query   string                     `json:"query"`
	Filters repositories.SearchFilters `json:"filters"`
}

// SearchHandler handles search-related HTTP requests
type SearchHandler struct {
	searchService *services.ProductSearchService
	resultCache   *services.ResultCache
	processor     providers.QueryProcessor
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchService *services.ProductSearchService, resultCache *services.ResultCache, processor providers.QueryProcessor) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		resultCache:   resultCache,
		processor:     processor,
	}
}

// Search handles POST /api/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSearchRequest(w, r)
	if !ok {
		return
	}

	key := services.DeriveResultCacheKey(req.Query, req.Filters)

	response, err := h.resultCache.GetOrCompute(r.Context(), key, func(ctx context.Context) (*entities.SearchResponse, error) {
		return h.searchService.SearchWithAI(ctx, req.Query, req.Filters), nil
	})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if response.FromCache {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}

	respondWithJSON(w, http.StatusOK, response)
}

// BasicSearch handles POST /api/products/search, a keyword search
// without query interpretation
func (h *SearchHandler) BasicSearch(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSearchRequest(w, r)
	if !ok {
		return
	}

	result, err := h.searchService.Search(r.Context(), req.Query, req.Filters)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to search products")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// Interpret handles POST /api/interpret, exposing the raw query
// interpretation for debugging and client-side previews
func (h *SearchHandler) Interpret(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		respondWithError(w, http.StatusBadRequest, "query is required")
		return
	}

	intent, err := h.processor.ProcessQuery(r.Context(), req.Query)
	if err != nil {
		if providers.IsFatalQueryProcessorError(err) {
			respondWithError(w, http.StatusServiceUnavailable, "query interpretation is unavailable")
			return
		}
		respondWithError(w, http.StatusBadGateway, "query interpretation failed")
		return
	}

	respondWithJSON(w, http.StatusOK, intent)
}

func decodeSearchRequest(w http.ResponseWriter, r *http.Request) (*SearchRequest, bool) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}

	if strings.TrimSpace(req.Query) == "" {
		respondWithError(w, http.StatusBadRequest, "query is required")
		return nil, false
	}
	if len(req.Query) > maxQueryLength {
		respondWithError(w, http.StatusBadRequest, "query is too long")
		return nil, false
	}
	// Zero values mean the field was omitted and take the defaults
	// downstream.
	if req.Filters.Page < 0 {
		respondWithError(w, http.StatusBadRequest, "page must not be negative")
		return nil, false
	}
	if req.Filters.Limit < 0 || req.Filters.Limit > 100 {
		respondWithError(w, http.StatusBadRequest, "limit must be between 0 and 100")
		return nil, false
	}
	if req.Filters.PriceRange != nil && !req.Filters.PriceRange.Valid() {
		respondWithError(w, http.StatusBadRequest, "invalid price range")
		return nil, false
	}

	return &req, true
}
