package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shoplens/smart-product-advisor/internal/domain/entities"
	"github.com/shoplens/smart-product-advisor/internal/domain/providers"
	"github.com/shoplens/smart-product-advisor/internal/infrastructure/observability"
	"github.com/shoplens/smart-product-advisor/pkg/config"
	"github.com/shoplens/smart-product-advisor/pkg/retry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client extracts product search intent through the OpenAI Responses API.
type Client struct {
	apiKey      string
	model       string
	baseURL     string
	httpClient  *http.Client
	maxTokens   int
	temperature float64
	retryCfg    retry.Config
}

var _ providers.QueryProcessor = (*Client)(nil)

// NewClient creates a new OpenAI client.
func NewClient(cfg *config.OpenAIConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	baseDelay := cfg.BaseDelay
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 400
	}

	return &Client{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		retryCfg: retry.Config{
			MaxAttempts:   maxRetries,
			InitialDelay:  baseDelay,
			BackoffFactor: 2.0,
		},
	}, nil
}

type responseContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type responseOutput struct {
	Content []responseContent `json:"content"`
}

type responseEnvelope struct {
	Output []responseOutput `json:"output"`
}

// ProcessQuery extracts structured search facets from a free-text query.
// Transient backend failures are retried with exponential backoff;
// authentication and quota failures are surfaced after a single attempt.
// A malformed payload is never an error: it degrades to a keyword-only
// fallback result.
func (c *Client) ProcessQuery(ctx context.Context, query string) (*entities.ProcessedQuery, error) {
	logger := observability.GetLogger()

	var result *entities.ProcessedQuery
	err := retry.DoWithLog(ctx, c.retryCfg, "OpenAI", func() error {
		processed, err := c.processOnce(ctx, query)
		if err != nil {
			return err
		}
		result = processed
		return nil
	}, func(attempt int, err error, nextDelay time.Duration) {
		logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("retry_in", nextDelay).
			Msg("openai request failed, retrying")
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) processOnce(ctx context.Context, query string) (*entities.ProcessedQuery, error) {
	payload := map[string]interface{}{
		"model": c.model,
		"input": []map[string]string{
			{"role": "system", "content": searchIntentSystemPrompt},
			{"role": "user", "content": buildSearchIntentUserPrompt(query)},
		},
		"temperature":       c.temperature,
		"max_output_tokens": c.maxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, retry.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return nil, retry.Permanent(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordRequestMetric(ctx, c.model, 0, time.Since(start), err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		recordRequestMetric(ctx, c.model, resp.StatusCode, time.Since(start), fmt.Errorf("status %d", resp.StatusCode))
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, retry.Permanent(fmt.Errorf("%w: openai request failed with status %d", providers.ErrQueryProcessorUnauthorized, resp.StatusCode))
		case http.StatusTooManyRequests:
			return nil, retry.Permanent(fmt.Errorf("%w: openai request failed with status %d", providers.ErrQueryProcessorQuotaExceeded, resp.StatusCode))
		}
		return nil, fmt.Errorf("openai request failed with status %d", resp.StatusCode)
	}

	var envelope responseEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		recordRequestMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return nil, err
	}

	var text string
	for _, out := range envelope.Output {
		for _, content := range out.Content {
			if content.Type == "output_text" && content.Text != "" {
				text = content.Text
				break
			}
		}
		if text != "" {
			break
		}
	}

	if text == "" {
		recordRequestMetric(ctx, c.model, resp.StatusCode, time.Since(start), errors.New("missing output text"))
		return nil, errors.New("openai response missing output text")
	}

	recordRequestMetric(ctx, c.model, resp.StatusCode, time.Since(start), nil)

	// Clean Markdown code blocks if present
	cleaned := text
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	cleaned = strings.TrimSpace(cleaned)

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		// A malformed payload degrades to the keyword fallback, it is
		// not retried: the backend answered, just not with usable JSON.
		observability.GetLogger().Warn().Err(err).Msg("openai returned unparsable intent payload, using fallback")
		return fallbackQuery(query), nil
	}

	return validateAndClean(raw, query), nil
}

type aiMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
}

var aiMetricsInit = false
var aiMetricsInst aiMetrics

func ensureAIMetrics() {
	if aiMetricsInit {
		return
	}
	meter := otel.Meter("github.com/shoplens/smart-product-advisor/openai")

	requestCount, err := meter.Int64Counter(
		"ai.openai.request.count",
		metric.WithDescription("Number of OpenAI requests"),
	)
	if err != nil {
		return
	}
	requestDuration, err := meter.Float64Histogram(
		"ai.openai.request.duration",
		metric.WithDescription("OpenAI request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}
	requestErrors, err := meter.Int64Counter(
		"ai.openai.request.errors",
		metric.WithDescription("Number of OpenAI request errors"),
	)
	if err != nil {
		return
	}

	aiMetricsInst = aiMetrics{
		requestCount:    requestCount,
		requestDuration: requestDuration,
		requestErrors:   requestErrors,
	}
	aiMetricsInit = true
}

func recordRequestMetric(ctx context.Context, model string, statusCode int, duration time.Duration, err error) {
	ensureAIMetrics()
	if !aiMetricsInit {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "openai"),
		attribute.String("ai.model", model),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	aiMetricsInst.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	aiMetricsInst.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		aiMetricsInst.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
