package repositories

import (
	"context"

	"github.com/shoplens/smart-product-advisor/internal/domain/entities"
)

// ProductSearchRepository is the full-text search index collaborator.
// It serves relevance-ordered keyword lookups; the catalog repository
// remains the source of truth.
type ProductSearchRepository interface {
	InitSchema(ctx context.Context) error
	Index(ctx context.Context, product *entities.Product) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, criteria SearchCriteria, filters SearchFilters) (*SearchResult, error)
}
