package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shoplens/smart-product-advisor/internal/adapters/database"
	"github.com/shoplens/smart-product-advisor/internal/adapters/search"
	"github.com/shoplens/smart-product-advisor/internal/domain/entities"
	"github.com/shoplens/smart-product-advisor/internal/infrastructure/clients/postgres"
	"github.com/shoplens/smart-product-advisor/internal/infrastructure/clients/typesense"
	"github.com/shoplens/smart-product-advisor/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()

	var searchRepo *search.TypesenseAdapter
	if tsClient, err := typesense.NewClient(&cfg.Typesense); err == nil {
		searchRepo = search.NewTypesenseAdapter(tsClient)
		if err := searchRepo.InitSchema(ctx); err != nil {
			log.Printf("Warning: failed to init Typesense schema: %v", err)
			searchRepo = nil
		}
	}

	productRepo := database.NewProductAdapter(pgClient)

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				search_analytics,
				products
			RESTART IDENTITY CASCADE
		`); err != nil {
			log.Fatalf("Failed to truncate tables: %v", err)
		}
	}

	now := time.Now()
	seeded := 0
	for _, product := range sampleProducts() {
		product.ID = uuid.New().String()
		product.CreatedAt = now
		product.UpdatedAt = now

		if err := productRepo.Create(ctx, product); err != nil {
			log.Printf("Warning: failed to seed product %q: %v", product.Name, err)
			continue
		}
		if searchRepo != nil {
			if err := searchRepo.Index(ctx, product); err != nil {
				log.Printf("Warning: failed to index product %q: %v", product.Name, err)
			}
		}
		seeded++
	}

	log.Printf("Seeded %d products", seeded)
}

func sampleProducts() []*entities.Product {
	return []*entities.Product{
		{
			Name:          "UltraBook Pro 15",
			Description:   "Lightweight 15-inch laptop with a dedicated GPU, great for college work and gaming",
			Price:         1299.99,
			Category:      "Electronics",
			Brand:         "Novatech",
			Rating:        4.6,
			StockQuantity: 25,
			Tags:          []string{"laptop", "gaming", "lightweight"},
		},
		{
			Name:          "AeroBook Air 13",
			Description:   "Slim everyday laptop with all-day battery life",
			Price:         749.00,
			Category:      "Electronics",
			Brand:         "Novatech",
			Rating:        4.3,
			StockQuantity: 40,
			Tags:          []string{"laptop", "portable"},
		},
		{
			Name:          "SoundWave ANC Headphones",
			Description:   "Over-ear wireless headphones with active noise cancelling",
			Price:         199.99,
			Category:      "Electronics",
			Brand:         "Auralis",
			Rating:        4.7,
			StockQuantity: 120,
			Tags:          []string{"headphones", "wireless", "noise cancelling"},
		},
		{
			Name:          "ChefPro Stand Mixer",
			Description:   "5-quart stand mixer with ten speed settings for baking",
			Price:         329.00,
			Category:      "Home & Kitchen",
			Brand:         "KitchenCraft",
			Rating:        4.8,
			StockQuantity: 18,
			Tags:          []string{"mixer", "baking"},
		},
		{
			Name:          "BrewMaster Drip Coffee Maker",
			Description:   "Programmable 12-cup coffee maker with thermal carafe",
			Price:         89.95,
			Category:      "Home & Kitchen",
			Brand:         "KitchenCraft",
			Rating:        4.1,
			StockQuantity: 60,
			Tags:          []string{"coffee", "kitchen"},
		},
		{
			Name:          "TrailRunner Jacket",
			Description:   "Waterproof breathable running jacket for all seasons",
			Price:         129.50,
			Category:      "Fashion",
			Brand:         "Peakline",
			Rating:        4.4,
			StockQuantity: 75,
			Tags:          []string{"jacket", "running", "waterproof"},
		},
		{
			Name:          "Classic Leather Sneakers",
			Description:   "Minimalist white leather sneakers for everyday wear",
			Price:         95.00,
			Category:      "Fashion",
			Brand:         "Strideway",
			Rating:        4.2,
			StockQuantity: 90,
			Tags:          []string{"sneakers", "leather"},
		},
		{
			Name:          "The Silent Orchard",
			Description:   "Bestselling literary novel about a family orchard in wartime",
			Price:         16.99,
			Category:      "Books & Media",
			Brand:         "Harbor Press",
			Rating:        4.5,
			StockQuantity: 200,
			Tags:          []string{"novel", "fiction"},
		},
		{
			Name:          "Summit 2-Person Tent",
			Description:   "Three-season backpacking tent that packs down small",
			Price:         249.00,
			Category:      "Sports & Outdoors",
			Brand:         "Peakline",
			Rating:        4.6,
			StockQuantity: 30,
			Tags:          []string{"tent", "camping", "backpacking"},
		},
		{
			Name:          "FlexFit Yoga Mat",
			Description:   "Non-slip 6mm yoga mat with carrying strap",
			Price:         39.99,
			Category:      "Sports & Outdoors",
			Brand:         "Kinetiq",
			Rating:        4.3,
			StockQuantity: 150,
			Tags:          []string{"yoga", "fitness"},
		},
		{
			Name:          "HydraGlow Face Serum",
			Description:   "Hyaluronic acid serum for daily hydration",
			Price:         28.00,
			Category:      "Beauty & Health",
			Brand:         "Lumessa",
			Rating:        4.4,
			StockQuantity: 110,
			Tags:          []string{"serum", "skincare"},
		},
		{
			Name:          "RoadGrip All-Season Tires (Set of 4)",
			Description:   "All-season tires with 60k mile warranty",
			Price:         539.00,
			Category:      "Automotive",
			Brand:         "Velocitread",
			Rating:        4.5,
			StockQuantity: 12,
			Tags:          []string{"tires", "all-season"},
		},
		{
			Name:          "Colorblock Building Bricks Set",
			Description:   "480-piece creative building set for ages 6 and up",
			Price:         49.99,
			Category:      "Toys & Games",
			Brand:         "Brickhaus",
			Rating:        4.7,
			StockQuantity: 85,
			Tags:          []string{"building", "kids"},
		},
		{
			Name:          "Strategy Night Board Game",
			Description:   "Award-winning area control board game for 2-5 players",
			Price:         59.95,
			Category:      "Toys & Games",
			Brand:         "Tabletoppers",
			Rating:        4.8,
			StockQuantity: 0,
			Tags:          []string{"board game", "strategy"},
		},
	}
}
