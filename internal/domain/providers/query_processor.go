package providers

import (
	"context"
	"errors"

	"github.com/shoplens/smart-product-advisor/internal/domain/entities"
)

// ErrQueryProcessorUnauthorized marks authentication or authorization
// failures from the AI backend. Never retried.
var ErrQueryProcessorUnauthorized = errors.New("query processor unauthorized")

// ErrQueryProcessorQuotaExceeded marks quota exhaustion at the AI
// backend. Never retried.
var ErrQueryProcessorQuotaExceeded = errors.New("query processor quota exceeded")

// QueryProcessor extracts structured search facets from a free-text
// product query. Implementations return an error only after the retry
// budget is exhausted or a fatal classification is hit; a malformed
// backend payload yields a low-confidence fallback result instead.
type QueryProcessor interface {
	ProcessQuery(ctx context.Context, query string) (*entities.ProcessedQuery, error)
}

// IsFatalQueryProcessorError reports whether err must not be retried
func IsFatalQueryProcessorError(err error) bool {
	return errors.Is(err, ErrQueryProcessorUnauthorized) ||
		errors.Is(err, ErrQueryProcessorQuotaExceeded)
}
