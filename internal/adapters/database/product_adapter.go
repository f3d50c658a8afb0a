package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"
	"github.com/shoplens/smart-product-advisor/internal/domain/entities"
	"github.com/shoplens/smart-product-advisor/internal/domain/repositories"
	"github.com/shoplens/smart-product-advisor/internal/infrastructure/clients/postgres"
	apperrors "github.com/shoplens/smart-product-advisor/pkg/errors"
)

const defaultPageSize = 12

var productColumns = []interface{}{
	"id", "name", "description", "price", "category", "image_url",
	"color", "size", "brand", "rating", "stock_quantity", "tags",
	"created_at", "updated_at",
}

// ProductAdapter implements ProductRepository on PostgreSQL
type ProductAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewProductAdapter creates a new product adapter
func NewProductAdapter(client *postgres.Client) repositories.ProductRepository {
	return &ProductAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a new product
func (a *ProductAdapter) Create(ctx context.Context, product *entities.Product) error {
	record := goqu.Record{
		"id":             product.ID,
		"name":           product.Name,
		"description":    product.Description,
		"price":          product.Price,
		"category":       product.Category,
		"image_url":      sql.NullString{String: product.ImageURL, Valid: product.ImageURL != ""},
		"color":          sql.NullString{String: product.Color, Valid: product.Color != ""},
		"size":           sql.NullString{String: product.Size, Valid: product.Size != ""},
		"brand":          sql.NullString{String: product.Brand, Valid: product.Brand != ""},
		"rating":         product.Rating,
		"stock_quantity": product.StockQuantity,
		"tags":           pq.StringArray(product.Tags),
		"created_at":     product.CreatedAt,
		"updated_at":     product.UpdatedAt,
	}

	query, args, err := a.db.Insert("products").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create product", err)
	}

	return nil
}

// GetByID retrieves a product by ID
func (a *ProductAdapter) GetByID(ctx context.Context, id string) (*entities.Product, error) {
	query, args, err := a.db.Select(productColumns...).
		From("products").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	product, err := scanProduct(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("product with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get product", err)
	}

	return product, nil
}

// List retrieves a page of products ordered by newest first
func (a *ProductAdapter) List(ctx context.Context, page, limit int) (*repositories.SearchResult, error) {
	page, limit = normalizePage(page, limit)

	ds := a.db.Select(productColumns...).
		From("products").
		Order(goqu.I("created_at").Desc()).
		Limit(uint(limit)).
		Offset(uint((page - 1) * limit))

	products, err := a.queryProducts(ctx, ds)
	if err != nil {
		return nil, err
	}

	total, err := a.countProducts(ctx, nil)
	if err != nil {
		return nil, err
	}

	return pageResult(products, total, page, limit), nil
}

// SearchWithFilters retrieves candidates matching the merged criteria
// and explicit filters, with pagination and sorting. Relevance sorting
// falls back to recency here; full-text relevance is served by the
// search index adapter.
func (a *ProductAdapter) SearchWithFilters(ctx context.Context, criteria repositories.SearchCriteria, filters repositories.SearchFilters) (*repositories.SearchResult, error) {
	page, limit := normalizePage(filters.Page, filters.Limit)

	where := buildSearchExpressions(criteria, filters)

	ds := a.db.Select(productColumns...).
		From("products").
		Where(where...).
		Order(searchOrder(filters)).
		Limit(uint(limit)).
		Offset(uint((page - 1) * limit))

	products, err := a.queryProducts(ctx, ds)
	if err != nil {
		return nil, err
	}

	total, err := a.countProducts(ctx, where)
	if err != nil {
		return nil, err
	}

	return pageResult(products, total, page, limit), nil
}

// Categories returns the distinct categories present in the catalog
func (a *ProductAdapter) Categories(ctx context.Context) ([]string, error) {
	return a.distinctColumn(ctx, "category")
}

// Brands returns the distinct brands present in the catalog
func (a *ProductAdapter) Brands(ctx context.Context) ([]string, error) {
	return a.distinctColumn(ctx, "brand")
}

// Update updates a product
func (a *ProductAdapter) Update(ctx context.Context, product *entities.Product) error {
	product.UpdatedAt = time.Now()

	record := goqu.Record{
		"name":           product.Name,
		"description":    product.Description,
		"price":          product.Price,
		"category":       product.Category,
		"image_url":      sql.NullString{String: product.ImageURL, Valid: product.ImageURL != ""},
		"color":          sql.NullString{String: product.Color, Valid: product.Color != ""},
		"size":           sql.NullString{String: product.Size, Valid: product.Size != ""},
		"brand":          sql.NullString{String: product.Brand, Valid: product.Brand != ""},
		"rating":         product.Rating,
		"stock_quantity": product.StockQuantity,
		"tags":           pq.StringArray(product.Tags),
		"updated_at":     product.UpdatedAt,
	}

	query, args, err := a.db.Update("products").
		Set(record).
		Where(goqu.Ex{"id": product.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update product", err)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("product with id %s not found", product.ID))
	}

	return nil
}

// Delete removes a product
func (a *ProductAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("products").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete product", err)
	}

	return nil
}

// buildSearchExpressions merges intent criteria and explicit filters
// into WHERE expressions. Explicit filter values win over criteria.
func buildSearchExpressions(criteria repositories.SearchCriteria, filters repositories.SearchFilters) []goqu.Expression {
	var where []goqu.Expression

	switch {
	case filters.Category != "":
		where = append(where, goqu.Ex{"category": filters.Category})
	case criteria.Category != "":
		where = append(where, goqu.I("category").ILike(criteria.Category))
	}

	priceRange := filters.PriceRange
	if priceRange == nil {
		priceRange = criteria.PriceRange
	}
	if priceRange != nil {
		where = append(where,
			goqu.I("price").Gte(priceRange.Min),
			goqu.I("price").Lte(priceRange.Max),
		)
	}

	if len(filters.Brands) > 0 {
		where = append(where, goqu.I("brand").In(stringsToInterfaces(filters.Brands)...))
	}

	if filters.Rating > 0 {
		where = append(where, goqu.I("rating").Gte(filters.Rating))
	}

	if len(criteria.Keywords) > 0 {
		var keywordMatch []goqu.Expression
		for _, keyword := range criteria.Keywords {
			pattern := "%" + keyword + "%"
			keywordMatch = append(keywordMatch,
				goqu.I("name").ILike(pattern),
				goqu.I("description").ILike(pattern),
				goqu.I("brand").ILike(pattern),
				goqu.I("category").ILike(pattern),
			)
		}
		where = append(where, goqu.Or(keywordMatch...))
	}

	return where
}

func searchOrder(filters repositories.SearchFilters) exp.OrderedExpression {
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
		// relevance or unspecified: newest first
		return goqu.I("created_at").Desc()
	}

	if filters.SortOrder == "desc" {
		return goqu.I(column).Desc()
	}
	return goqu.I(column).Asc()
}

func (a *ProductAdapter) queryProducts(ctx context.Context, ds *goqu.SelectDataset) ([]*entities.Product, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build search query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query products", err)
	}
	defer rows.Close()

	var products []*entities.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan product", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read products", err)
	}

	return products, nil
}

func (a *ProductAdapter) countProducts(ctx context.Context, where []goqu.Expression) (int, error) {
	ds := a.db.Select(goqu.COUNT("*")).From("products")
	if len(where) > 0 {
		ds = ds.Where(where...)
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var total int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, apperrors.NewInternalError("failed to count products", err)
	}

	return total, nil
}

func (a *ProductAdapter) distinctColumn(ctx context.Context, column string) ([]string, error) {
	query, args, err := a.db.Select(goqu.DISTINCT(column)).
		From("products").
		Where(goqu.I(column).IsNotNull()).
		Order(goqu.I(column).Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to list %s values", column), err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, apperrors.NewInternalError("failed to scan value", err)
		}
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read values", err)
	}

	return values, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*entities.Product, error) {
	product := &entities.Product{}
	var imageURL, color, size, brand sql.NullString
	var tags pq.StringArray

	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Category,
		&imageURL,
		&color,
		&size,
		&brand,
		&product.Rating,
		&product.StockQuantity,
		&tags,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	product.ImageURL = imageURL.String
	product.Color = color.String
	product.Size = size.String
	product.Brand = brand.String
	product.Tags = tags

	return product, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	return page, limit
}

func pageResult(products []*entities.Product, total, page, limit int) *repositories.SearchResult {
	totalPages := (total + limit - 1) / limit
	if products == nil {
		products = []*entities.Product{}
	}
	return &repositories.SearchResult{
		Products:   products,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}
}

func stringsToInterfaces(values []string) []interface{} {
	result := make([]interface{}, len(values))
	for i, v := range values {
		result[i] = v
	}
	return result
}
