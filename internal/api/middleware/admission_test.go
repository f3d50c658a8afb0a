package middleware_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplens/smart-product-advisor/internal/api/middleware"
	"github.com/shoplens/smart-product-advisor/internal/application/services"
	"github.com/shoplens/smart-product-advisor/internal/domain/repositories"
)

type stubCache struct {
	data map[string][]byte
	fail bool
}

func newStubCache() *stubCache {
	return &stubCache{data: make(map[string][]byte)}
}

func (c *stubCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.fail {
		return nil, errors.New("cache unavailable")
	}
	data, ok := c.data[key]
	if !ok {
		return nil, errors.New("key not found")
	}
	return data, nil
}

func (c *stubCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	if c.fail {
		return errors.New("cache unavailable")
	}
	c.data[key] = value
	return nil
}

func (c *stubCache) Delete(ctx context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func (c *stubCache) Exists(ctx context.Context, key string) (bool, error) {
	if c.fail {
		return false, errors.New("cache unavailable")
	}
	_, ok := c.data[key]
	return ok, nil
}

func exemptionProbe(t *testing.T, exempt *bool, body *[]byte) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*exempt = middleware.IsThrottleExempt(r.Context())
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		*body = data
		w.WriteHeader(http.StatusOK)
	})
}

func TestAdmission_MarksCachedRequestsExempt(t *testing.T) {
	cache := newStubCache()
	resultCache := services.NewResultCache(cache, nil)
	key := services.DeriveResultCacheKey("laptop", repositories.SearchFilters{})
	cache.data[key] = []byte(`{}`)

	mw := middleware.NewAdmissionMiddleware(resultCache)

	var exempt bool
	var seenBody []byte
	handler := mw.Middleware(exemptionProbe(t, &exempt, &seenBody))

	payload := []byte(`{"query":"laptop","filters":{}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/search", bytes.NewReader(payload))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, exempt)
	assert.Equal(t, payload, seenBody, "body must be restored for the handler")
}

func TestAdmission_UncachedRequestsNotExempt(t *testing.T) {
	resultCache := services.NewResultCache(newStubCache(), nil)
	mw := middleware.NewAdmissionMiddleware(resultCache)

	var exempt bool
	var seenBody []byte
	handler := mw.Middleware(exemptionProbe(t, &exempt, &seenBody))

	req := httptest.NewRequest(http.MethodPost, "/api/search", bytes.NewReader([]byte(`{"query":"laptop"}`)))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.False(t, exempt)
}

func TestAdmission_CacheFailureNeverGrantsBypass(t *testing.T) {
	cache := newStubCache()
	cache.fail = true
	resultCache := services.NewResultCache(cache, nil)
	mw := middleware.NewAdmissionMiddleware(resultCache)

	var exempt bool
	var seenBody []byte
	handler := mw.Middleware(exemptionProbe(t, &exempt, &seenBody))

	req := httptest.NewRequest(http.MethodPost, "/api/search", bytes.NewReader([]byte(`{"query":"laptop"}`)))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.False(t, exempt)
}

func TestAdmission_MalformedBodyPassesThrough(t *testing.T) {
	resultCache := services.NewResultCache(newStubCache(), nil)
	mw := middleware.NewAdmissionMiddleware(resultCache)

	var exempt bool
	var seenBody []byte
	handler := mw.Middleware(exemptionProbe(t, &exempt, &seenBody))

	payload := []byte(`not json at all`)
	req := httptest.NewRequest(http.MethodPost, "/api/search", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.False(t, exempt)
	assert.Equal(t, payload, seenBody)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdmission_OtherPostRoutesNeverExempt(t *testing.T) {
	cache := newStubCache()
	resultCache := services.NewResultCache(cache, nil)
	key := services.DeriveResultCacheKey("laptop", repositories.SearchFilters{})
	cache.data[key] = []byte(`{}`)

	mw := middleware.NewAdmissionMiddleware(resultCache)

	for _, path := range []string{"/api/interpret", "/api/products/search"} {
		t.Run(path, func(t *testing.T) {
			var exempt bool
			var seenBody []byte
			handler := mw.Middleware(exemptionProbe(t, &exempt, &seenBody))

			payload := []byte(`{"query":"laptop","filters":{}}`)
			req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
			handler.ServeHTTP(httptest.NewRecorder(), req)

			assert.False(t, exempt, "only search responses are cached, other routes must still be throttled")
			assert.Equal(t, payload, seenBody)
		})
	}
}

func TestAdmission_SkipsNonPostRequests(t *testing.T) {
	cache := newStubCache()
	resultCache := services.NewResultCache(cache, nil)
	mw := middleware.NewAdmissionMiddleware(resultCache)

	var exempt bool
	var seenBody []byte
	handler := mw.Middleware(exemptionProbe(t, &exempt, &seenBody))

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.False(t, exempt)
}

func TestIsThrottleExempt_DefaultsFalse(t *testing.T) {
	assert.False(t, middleware.IsThrottleExempt(context.Background()))
}
