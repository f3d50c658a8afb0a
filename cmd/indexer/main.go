package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shoplens/smart-product-advisor/internal/adapters/database"
	"github.com/shoplens/smart-product-advisor/internal/adapters/search"
	"github.com/shoplens/smart-product-advisor/internal/infrastructure/clients/postgres"
	"github.com/shoplens/smart-product-advisor/internal/infrastructure/clients/typesense"
	"github.com/shoplens/smart-product-advisor/pkg/config"
)

const indexPageSize = 200

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	var err error
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatalf("Invalid interval %q: %v", intervalValue, err)
		}
		if interval <= 0 {
			log.Fatalf("Interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, reset); err != nil {
			log.Printf("Reindex failed: %v", err)
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Printf("Reindex complete. Next run in %s.", interval)

		select {
		case <-ctx.Done():
			log.Println("Reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, reset bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	productRepo := database.NewProductAdapter(pgClient)

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		log.Println("Deleting products collection before reindex")
		if _, err := tsClient.Client().Collection(search.ProductsCollection).Delete(ctx); err != nil {
			log.Printf("Warning: failed to delete collection: %v", err)
		}
	}

	adapter := search.NewTypesenseAdapter(tsClient)
	if err := adapter.InitSchema(ctx); err != nil {
		return err
	}

	indexed := 0
	for page := 1; ; page++ {
		result, err := productRepo.List(ctx, page, indexPageSize)
		if err != nil {
			return err
		}
		if len(result.Products) == 0 {
			break
		}

		for _, product := range result.Products {
			if err := adapter.Index(ctx, product); err != nil {
				log.Printf("Warning: failed to index product %s: %v", product.ID, err)
				continue
			}
			indexed++
		}

		if page >= result.TotalPages {
			break
		}
	}

	log.Printf("Indexed %d products", indexed)
	return nil
}
