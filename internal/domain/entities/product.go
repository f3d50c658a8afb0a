package entities

import (
	"time"
)

// Product represents an item in the catalog
type Product struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Description   string    `json:"description" db:"description"`
	Price         float64   `json:"price" db:"price"`
	Category      string    `json:"category" db:"category"`
	ImageURL      string    `json:"imageUrl,omitempty" db:"image_url"`
	Color         string    `json:"color,omitempty" db:"color"`
	Size          string    `json:"size,omitempty" db:"size"`
	Brand         string    `json:"brand,omitempty" db:"brand"`
	Rating        float64   `json:"rating" db:"rating"`
	StockQuantity int       `json:"stockQuantity" db:"stock_quantity"`
	Tags          []string  `json:"tags,omitempty" db:"-"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// ProductCategories is the fixed set of catalog categories.
// The query processor only ever emits a category from this list.
var ProductCategories = []string{
	"Electronics",
	"Home & Kitchen",
	"Fashion",
	"Books & Media",
	"Sports & Outdoors",
	"Beauty & Health",
	"Automotive",
	"Toys & Games",
}

// IsValidCategory reports whether category is one of the fixed catalog categories
func IsValidCategory(category string) bool {
	for _, c := range ProductCategories {
		if c == category {
			return true
		}
	}
	return false
}
