package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shoplens/smart-product-advisor/internal/adapters/cache"
	"github.com/shoplens/smart-product-advisor/internal/adapters/database"
	"github.com/shoplens/smart-product-advisor/internal/adapters/search"
	"github.com/shoplens/smart-product-advisor/internal/api/handlers"
	"github.com/shoplens/smart-product-advisor/internal/api/middleware"
	"github.com/shoplens/smart-product-advisor/internal/api/routes"
	"github.com/shoplens/smart-product-advisor/internal/application/services"
	"github.com/shoplens/smart-product-advisor/internal/domain/providers"
	"github.com/shoplens/smart-product-advisor/internal/domain/repositories"
	"github.com/shoplens/smart-product-advisor/internal/infrastructure/clients/openai"
	"github.com/shoplens/smart-product-advisor/internal/infrastructure/clients/postgres"
	"github.com/shoplens/smart-product-advisor/internal/infrastructure/clients/redis"
	"github.com/shoplens/smart-product-advisor/internal/infrastructure/clients/typesense"
	"github.com/shoplens/smart-product-advisor/internal/infrastructure/observability"
	"github.com/shoplens/smart-product-advisor/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Environment)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()
	log.Println("PostgreSQL client initialized successfully")

	// Initialize Redis client. The application works without it, just
	// without caching and rate limiting.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	// Initialize Typesense client
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Printf("Warning: Failed to initialize Typesense client: %v", err)
		typesenseClient = nil
	} else {
		log.Println("Typesense client initialized successfully")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize adapters
	productAdapter := database.NewProductAdapter(pgClient)
	analyticsAdapter := database.NewSearchAnalyticsAdapter(pgClient)

	var searchRepo repositories.ProductSearchRepository
	if typesenseClient != nil {
		adapter := search.NewTypesenseAdapter(typesenseClient)
		if err := adapter.InitSchema(context.Background()); err != nil {
			log.Printf("Warning: Failed to init Typesense schema: %v", err)
		}
		searchRepo = adapter
	}

	// Initialize query interpretation, wrapped with caching when Redis
	// is available
	var processor providers.QueryProcessor
	processor, err = openai.NewClient(&cfg.OpenAI)
	if err != nil {
		log.Fatalf("Failed to initialize OpenAI client: %v", err)
	}
	if cacheProvider != nil {
		processor = services.NewCachedQueryProcessor(processor, cacheProvider, &cfg.Cache)
		log.Println("Query processor wrapped with caching layer")
	}

	// Initialize services
	analyticsService := services.NewSearchAnalyticsService(analyticsAdapter)
	rankingService := services.NewSearchRankingService()
	searchService := services.NewProductSearchService(
		productAdapter,
		searchRepo,
		processor,
		rankingService,
		analyticsService,
	)

	// ResultCache degrades to pass-through when Redis is absent
	resultCache := services.NewResultCache(cacheProvider, &cfg.Cache)

	var admission *middleware.AdmissionMiddleware
	var rateLimit *middleware.RateLimitMiddleware
	if cacheProvider != nil {
		admission = middleware.NewAdmissionMiddleware(resultCache)

		// Warm popular searches in the background so the first
		// requests after startup hit the cache
		warming := services.NewCacheWarmingService(searchService, resultCache)
		go func() {
			warmCtx, warmCancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer warmCancel()
			if err := warming.WarmCache(warmCtx); err != nil {
				log.Printf("Warning: cache warming failed: %v", err)
			}
		}()
	}
	if redisClient != nil {
		rateLimit = middleware.NewRateLimitMiddleware(redisClient, &cfg.RateLimit)
	}

	// Initialize handlers
	searchHandler := handlers.NewSearchHandler(searchService, resultCache, processor)
	productHandler := handlers.NewProductHandler(searchService, analyticsService)

	router := routes.NewRouter(
		searchHandler,
		productHandler,
		admission,
		rateLimit,
		middleware.NewCORSMiddleware(cfg.Server.AllowedOrigins),
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	log.Println("Server stopped")
}
