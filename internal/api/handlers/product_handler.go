package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shoplens/smart-product-advisor/internal/application/services"
	apperrors "github.com/shoplens/smart-product-advisor/pkg/errors"
)

// ProductHandler handles catalog HTTP requests
type ProductHandler struct {
	searchService *services.ProductSearchService
	analytics     *services.SearchAnalyticsService
}

// NewProductHandler creates a new product handler
func NewProductHandler(searchService *services.ProductSearchService, analytics *services.SearchAnalyticsService) *ProductHandler {
	return &ProductHandler{
		searchService: searchService,
		analytics:     analytics,
	}
}

// GetProduct handles GET /api/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("id")
	if productID == "" {
		respondWithError(w, http.StatusBadRequest, "product ID is required")
		return
	}

	product, err := h.searchService.GetProduct(r.Context(), productID)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok && appErr.Type == apperrors.ErrorTypeNotFound {
			respondWithError(w, http.StatusNotFound, appErr.Message)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, product)
}

// ListProducts handles GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 12)
	if limit > 100 {
		limit = 100
	}

	result, err := h.searchService.ListProducts(r.Context(), page, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// GetCategories handles GET /api/categories
func (h *ProductHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.searchService.Categories(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
	})
}

// GetBrands handles GET /api/brands
func (h *ProductHandler) GetBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.searchService.Brands(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list brands")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"brands": brands,
	})
}

// GetZeroResultQueries handles GET /api/analytics/zero-result-queries
func (h *ProductHandler) GetZeroResultQueries(w http.ResponseWriter, r *http.Request) {
	if h.analytics == nil {
		respondWithError(w, http.StatusServiceUnavailable, "analytics is not configured")
		return
	}

	limit := queryInt(r, "limit", 100)
	events, err := h.analytics.GetZeroResultQueries(r.Context(), limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to get zero result queries")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"queries": events,
		"count":   len(events),
	})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
