package openai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shoplens/smart-product-advisor/internal/domain/providers"
	"github.com/shoplens/smart-product-advisor/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelopeWith(text string) string {
	payload := fmt.Sprintf(`{"output":[{"content":[{"type":"output_text","text":%q}]}]}`, text)
	return payload
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&config.OpenAIConfig{
		APIKey:     "test-key",
		Model:      "gpt-4o-mini",
		MaxRetries: 3,
		BaseDelay:  5 * time.Millisecond,
		Timeout:    time.Second,
	})
	require.NoError(t, err)
	client.baseURL = server.URL

	return client, server
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(&config.OpenAIConfig{})
	assert.Error(t, err)

	_, err = NewClient(nil)
	assert.Error(t, err)
}

func TestProcessQuery_ValidResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		fmt.Fprint(w, envelopeWith(`{"category":"Electronics","features":["gaming"],"priceRange":[800,2000],"useCase":"college","keywords":["laptop"],"explanation":"ok","confidence":0.9}`))
	})

	result, err := client.ProcessQuery(context.Background(), "I need a laptop")

	require.NoError(t, err)
	assert.Equal(t, "Electronics", result.Category)
	assert.Equal(t, []string{"gaming"}, result.Features)
	assert.Equal(t, 0.9, result.Confidence)
}

func TestProcessQuery_MarkdownFencedJSON(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, envelopeWith("```json\n{\"category\":\"Electronics\",\"keywords\":[\"laptop\"],\"confidence\":0.8}\n```"))
	})

	result, err := client.ProcessQuery(context.Background(), "laptop")

	require.NoError(t, err)
	assert.Equal(t, "Electronics", result.Category)
}

func TestProcessQuery_UnparsableTextFallsBack(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		fmt.Fprint(w, envelopeWith("sure! here are some laptops you might like"))
	})

	result, err := client.ProcessQuery(context.Background(), "I need a laptop for college work and gaming")

	require.NoError(t, err)
	// malformed payload is not retried
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 0.3, result.Confidence)
	assert.Empty(t, result.Features)
	assert.Equal(t, []string{"laptop", "college", "work", "gaming"}, result.Keywords)
}

func TestProcessQuery_RetriesTransientFailures(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, envelopeWith(`{"keywords":["laptop"],"confidence":0.7}`))
	})

	start := time.Now()
	result, err := client.ProcessQuery(context.Background(), "laptop")

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 0.7, result.Confidence)
	// backoff of baseDelay + 2*baseDelay was injected between attempts
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestProcessQuery_ExhaustsRetryBudget(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.ProcessQuery(context.Background(), "laptop")

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.False(t, providers.IsFatalQueryProcessorError(err))
}

func TestProcessQuery_UnauthorizedIsNotRetried(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.ProcessQuery(context.Background(), "laptop")

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.ErrorIs(t, err, providers.ErrQueryProcessorUnauthorized)
	assert.True(t, providers.IsFatalQueryProcessorError(err))
}

func TestProcessQuery_QuotaExceededIsNotRetried(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.ProcessQuery(context.Background(), "laptop")

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.ErrorIs(t, err, providers.ErrQueryProcessorQuotaExceeded)
}

func TestProcessQuery_EmptyOutputIsRetryable(t *testing.T) {
	attempts := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		fmt.Fprint(w, `{"output":[]}`)
	})

	_, err := client.ProcessQuery(context.Background(), "laptop")

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
}
