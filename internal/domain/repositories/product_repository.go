package repositories

import (
	"context"

	"github.com/shoplens/smart-product-advisor/internal/domain/entities"
)

// Sort options accepted by SearchWithFilters
const (
	SortByPrice     = "price"
	SortByRating    = "rating"
	SortByName      = "name"
	SortByRelevance = "relevance"
)

// SearchFilters are the explicit, user-supplied search constraints
type SearchFilters struct {
	Category   string               `json:"category,omitempty"`
	PriceRange *entities.PriceRange `json:"priceRange,omitempty"`
	Brands     []string             `json:"brands,omitempty"`
	Rating     float64              `json:"rating,omitempty"`
	SortBy     string               `json:"sortBy,omitempty"`
	SortOrder  string               `json:"sortOrder,omitempty"`
	Page       int                  `json:"page,omitempty"`
	Limit      int                  `json:"limit,omitempty"`
}

// SearchCriteria are the intent-derived search constraints, merged with
// explicit filters before a catalog lookup. Explicit filter values win
// over criteria values when both are present.
type SearchCriteria struct {
	Category   string
	PriceRange *entities.PriceRange
	Keywords   []string
}

// SearchResult is one page of catalog candidates
type SearchResult struct {
	Products   []*entities.Product `json:"products"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	TotalPages int                 `json:"totalPages"`
}

// ProductRepository is the catalog collaborator consumed by the search
// pipeline. Implementations execute filtering, pagination, and sorting;
// relevance ordering for keyword criteria is delegated to the backing
// store's full-text scoring.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entities.Product, error)
	List(ctx context.Context, page, limit int) (*SearchResult, error)
	SearchWithFilters(ctx context.Context, criteria SearchCriteria, filters SearchFilters) (*SearchResult, error)
	Categories(ctx context.Context) ([]string, error)
	Brands(ctx context.Context) ([]string, error)
	Create(ctx context.Context, product *entities.Product) error
	Update(ctx context.Context, product *entities.Product) error
	Delete(ctx context.Context, id string) error
}
