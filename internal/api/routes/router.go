package routes

import (
	"net/http"

	"github.com/shoplens/smart-product-advisor/internal/api/handlers"
	"github.com/shoplens/smart-product-advisor/internal/api/middleware"
	"github.com/shoplens/smart-product-advisor/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	searchHandler  *handlers.SearchHandler
	productHandler *handlers.ProductHandler

	admission *middleware.AdmissionMiddleware
	rateLimit *middleware.RateLimitMiddleware
	cors      *middleware.CORSMiddleware
	metrics   *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	searchHandler *handlers.SearchHandler,
	productHandler *handlers.ProductHandler,
	admission *middleware.AdmissionMiddleware,
	rateLimit *middleware.RateLimitMiddleware,
	cors *middleware.CORSMiddleware,
	metrics *observability.Metrics,
) *Router {
	if cors == nil {
		cors = middleware.NewCORSMiddleware(nil)
	}
	return &Router{
		mux: http.NewServeMux(),

		searchHandler:  searchHandler,
		productHandler: productHandler,

		admission: admission,
		rateLimit: rateLimit,
		cors:      cors,
		metrics:   metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Search endpoints
	r.mux.HandleFunc("POST /api/search", r.searchHandler.Search)
	r.mux.HandleFunc("POST /api/interpret", r.searchHandler.Interpret)

	// Product endpoints
	r.mux.HandleFunc("GET /api/products", r.productHandler.ListProducts)
	r.mux.HandleFunc("POST /api/products/search", r.searchHandler.BasicSearch)
	r.mux.HandleFunc("GET /api/products/{id}", r.productHandler.GetProduct)

	// Facet endpoints
	r.mux.HandleFunc("GET /api/categories", r.productHandler.GetCategories)
	r.mux.HandleFunc("GET /api/brands", r.productHandler.GetBrands)

	// Analytics endpoints
	r.mux.HandleFunc("GET /api/analytics/zero-result-queries", r.productHandler.GetZeroResultQueries)

	// Apply middleware in reverse order (last middleware wraps first).
	// The admission probe must run before the rate limiter so cached
	// requests skip throttling.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.rateLimit != nil {
		handler = r.rateLimit.Middleware(handler)
	}
	if r.admission != nil {
		handler = r.admission.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on error responses
	handler = r.cors.Middleware(handler)

	return handler
}
