package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/shoplens/smart-product-advisor/internal/application/services"
	"github.com/shoplens/smart-product-advisor/internal/domain/repositories"
)

type contextKey string

const throttleExemptKey contextKey = "throttleExempt"

// maxAdmissionBodyBytes bounds how much of the request body the probe
// will read.
const maxAdmissionBodyBytes = 1 << 20

// aiSearchPath is the only route whose responses live in the result
// cache. Other POST routes must never earn an exemption from a warm
// search entry.
const aiSearchPath = "/api/search"

// IsThrottleExempt reports whether the admission probe found a cached
// response for this request.
func IsThrottleExempt(ctx context.Context) bool {
	exempt, _ := ctx.Value(throttleExemptKey).(bool)
	return exempt
}

// AdmissionMiddleware probes the result cache ahead of rate limiting.
// Requests whose response is already cached are marked throttle-exempt
// so the limiter does not count or reject them. Any probe failure
// leaves the request unmarked; errors here must never grant a bypass.
type AdmissionMiddleware struct {
	resultCache *services.ResultCache
}

// NewAdmissionMiddleware creates a new admission middleware
func NewAdmissionMiddleware(resultCache *services.ResultCache) *AdmissionMiddleware {
	return &AdmissionMiddleware{resultCache: resultCache}
}

// Middleware returns the admission probe handler
func (m *AdmissionMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.resultCache == nil || r.Method != http.MethodPost || r.URL.Path != aiSearchPath || r.Body == nil {
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxAdmissionBodyBytes))
		r.Body.Close()
		// Restore the body for the handler regardless of what the
		// probe decides.
		r.Body = io.NopCloser(bytes.NewReader(body))
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		var req struct {
			Query   string                     `json:"query"`
			Filters repositories.SearchFilters `json:"filters"`
		}
		if err := json.Unmarshal(body, &req); err != nil || req.Query == "" {
			next.ServeHTTP(w, r)
			return
		}

		key := services.DeriveResultCacheKey(req.Query, req.Filters)
		if m.resultCache.Exists(r.Context(), key) {
			ctx := context.WithValue(r.Context(), throttleExemptKey, true)
			r = r.WithContext(ctx)
		}

		next.ServeHTTP(w, r)
	})
}
