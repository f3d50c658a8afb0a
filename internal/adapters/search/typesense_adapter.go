package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/shoplens/smart-product-advisor/internal/domain/entities"
	"github.com/shoplens/smart-product-advisor/internal/domain/repositories"
	tsclient "github.com/shoplens/smart-product-advisor/internal/infrastructure/clients/typesense"
)

// ProductsCollection is the Typesense collection holding the catalog
const ProductsCollection = "products"

// TypesenseAdapter implements product search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

var _ repositories.ProductSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the products collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	_, err := a.client.Client().Collection(ProductsCollection).Retrieve(ctx)
	if err == nil {
		return nil // Collection exists
	}

	schema := &api.CollectionSchema{
		Name: ProductsCollection,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "name", Type: "string"},
			{Name: "description", Type: "string"},
			{Name: "brand", Type: "string", Facet: pointer.True()},
			{Name: "category", Type: "string", Facet: pointer.True()},
			{Name: "tags", Type: "string[]"},
			{Name: "price", Type: "float"},
			{Name: "rating", Type: "float"},
			{Name: "stock_quantity", Type: "int32"},
			{Name: "created_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("created_at"),
	}

	_, err = a.client.Client().Collections().Create(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}

	return nil
}

// Index upserts a product document
func (a *TypesenseAdapter) Index(ctx context.Context, product *entities.Product) error {
	tags := product.Tags
	if tags == nil {
		tags = []string{}
	}

	document := map[string]interface{}{
		"id":             product.ID,
		"name":           product.Name,
		"description":    product.Description,
		"brand":          product.Brand,
		"category":       product.Category,
		"tags":           tags,
		"price":          product.Price,
		"rating":         product.Rating,
		"stock_quantity": product.StockQuantity,
		"created_at":     product.CreatedAt.Unix(),
	}

	_, err := a.client.Client().Collection(ProductsCollection).Documents().Upsert(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to index product: %w", err)
	}

	return nil
}

// Delete removes a product from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(ProductsCollection).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete product from index: %w", err)
	}
	return nil
}

// Search runs a relevance-ordered keyword query with the merged
// criteria and filters. Explicit filter values win over criteria.
func (a *TypesenseAdapter) Search(ctx context.Context, criteria repositories.SearchCriteria, filters repositories.SearchFilters) (*repositories.SearchResult, error) {
	page := filters.Page
	if page < 1 {
		page = 1
	}
	limit := filters.Limit
	if limit < 1 {
		limit = 12
	}

	q := "*"
	if len(criteria.Keywords) > 0 {
		q = strings.Join(criteria.Keywords, " ")
	}

	searchParams := &api.SearchCollectionParams{
		Q:       pointer.String(q),
		QueryBy: pointer.String("name,description,brand,tags"),
		Page:    pointer.Int(page),
		PerPage: pointer.Int(limit),
	}

	if filterBy := buildFilterBy(criteria, filters); filterBy != "" {
		searchParams.FilterBy = pointer.String(filterBy)
	}
	if sortBy := buildSortBy(filters); sortBy != "" {
		searchParams.SortBy = pointer.String(sortBy)
	}

	result, err := a.client.Client().Collection(ProductsCollection).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}

	products := []*entities.Product{}
	if result.Hits != nil {
		for _, hit := range *result.Hits {
			if hit.Document == nil {
				continue
			}
			products = append(products, documentToProduct(*hit.Document))
		}
	}

	total := 0
	if result.Found != nil {
		total = *result.Found
	}
	totalPages := (total + limit - 1) / limit

	return &repositories.SearchResult{
		Products:   products,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}, nil
}

func buildFilterBy(criteria repositories.SearchCriteria, filters repositories.SearchFilters) string {
	var clauses []string

	category := filters.Category
	if category == "" {
		category = criteria.Category
	}
	if category != "" {
		clauses = append(clauses, fmt.Sprintf("category:=%s", category))
	}

	priceRange := filters.PriceRange
	if priceRange == nil {
		priceRange = criteria.PriceRange
	}
	if priceRange != nil {
		clauses = append(clauses, fmt.Sprintf("price:[%f..%f]", priceRange.Min, priceRange.Max))
	}

	if len(filters.Brands) > 0 {
		clauses = append(clauses, fmt.Sprintf("brand:=[%s]", strings.Join(filters.Brands, ",")))
	}

	if filters.Rating > 0 {
		clauses = append(clauses, fmt.Sprintf("rating:>=%f", filters.Rating))
	}

	return strings.Join(clauses, " && ")
}

func buildSortBy(filters repositories.SearchFilters) string {
	column := ""
	switch filters.SortBy {
	case repositories.SortByPrice:
		column = "price"
	case repositories.SortByRating:
		column = "rating"
	case repositories.SortByName:
		column = "name"
	}
	if column == "" {
		// relevance or unspecified: Typesense text match order
		return ""
	}

	order := "asc"
	if filters.SortOrder == "desc" {
		order = "desc"
	}
	return fmt.Sprintf("%s:%s", column, order)
}

func documentToProduct(doc map[string]interface{}) *entities.Product {
	product := &entities.Product{}

	if val, ok := doc["id"].(string); ok {
		product.ID = val
	}
	if val, ok := doc["name"].(string); ok {
		product.Name = val
	}
	if val, ok := doc["description"].(string); ok {
		product.Description = val
	}
	if val, ok := doc["brand"].(string); ok {
		product.Brand = val
	}
	if val, ok := doc["category"].(string); ok {
		product.Category = val
	}
	if val, ok := doc["price"].(float64); ok {
		product.Price = val
	}
	if val, ok := doc["rating"].(float64); ok {
		product.Rating = val
	}
	if val, ok := doc["stock_quantity"].(float64); ok {
		product.StockQuantity = int(val)
	}
	if val, ok := doc["created_at"].(float64); ok {
		product.CreatedAt = time.Unix(int64(val), 0)
	}
	if raw, ok := doc["tags"].([]interface{}); ok {
		tags := make([]string, 0, len(raw))
		for _, t := range raw {
			if s, ok := t.(string); ok {
				tags = append(tags, s)
			}
		}
		product.Tags = tags
	}

	return product
}
