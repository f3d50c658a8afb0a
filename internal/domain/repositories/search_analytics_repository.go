package repositories

import (
	"context"

	"github.com/shoplens/smart-product-advisor/internal/domain/entities"
)

// SearchAnalyticsRepository persists search events for offline analysis
type SearchAnalyticsRepository interface {
	LogEvent(ctx context.Context, event *entities.SearchEvent) error
	GetZeroResultQueries(ctx context.Context, limit int) ([]*entities.SearchEvent, error)
}
