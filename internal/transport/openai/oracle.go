// Package openai talks to OpenAI-compatible chat APIs for query analysis
// and content summarization.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/keepson/keepson/internal/domain"
	"github.com/keepson/keepson/internal/domain/search/hints"
	"github.com/keepson/keepson/internal/metrics"
)

// UsageRecorder receives consumed token counts for budget accounting.
type UsageRecorder interface {
	Record(tokens int64)
}

// Oracle extracts structured search parameters from free-form queries.
type Oracle struct {
	client *openai.Client
	model  string
	usage  UsageRecorder
	logger *zap.Logger
}

// Config holds the chat provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Usage   UsageRecorder
	Logger  *zap.Logger
}

// NewOracle creates an OpenAI-compatible query analysis provider.
func NewOracle(cfg *Config) *Oracle {
	return &Oracle{
		client: newClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout),
		model:  cfg.Model,
		usage:  cfg.Usage,
		logger: cfg.Logger,
	}
}

// searchParams mirrors the JSON object the model is instructed to emit.
type searchParams struct {
	Keywords []string `json:"keywords"`
	Types    []string `json:"types"`
	DateFrom string   `json:"date_from"`
	DateTo   string   `json:"date_to"`
}

// ExtractSearchParams asks the model to read keywords, record types and a
// date window out of the query. Any failure, transport or payload, comes
// back wrapped in domain.ErrOracleUnavailable.
func (o *Oracle) ExtractSearchParams(ctx context.Context, query string, knownTypes []string) (hints.Hints, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractPrompt(knownTypes)},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		MaxTokens: 300,
	}

	start := time.Now()

	resp, err := o.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.OracleRequestsTotal.WithLabelValues(o.model, "extract", "error").Inc()
		metrics.OracleErrorsTotal.WithLabelValues(o.model, "extract", "api_error").Inc()
		return hints.Hints{}, parseAPIError(err, domain.ErrOracleUnavailable)
	}

	if len(resp.Choices) == 0 {
		metrics.OracleRequestsTotal.WithLabelValues(o.model, "extract", "error").Inc()
		metrics.OracleErrorsTotal.WithLabelValues(o.model, "extract", "empty_response").Inc()
		return hints.Hints{}, fmt.Errorf("empty oracle response: %w", domain.ErrOracleUnavailable)
	}

	metrics.OracleRequestsTotal.WithLabelValues(o.model, "extract", "success").Inc()
	metrics.OracleRequestDuration.WithLabelValues(o.model, "extract").Observe(duration.Seconds())
	recordTokens(o.model, "extract", resp.Usage, o.usage)

	content := stripFences(resp.Choices[0].Message.Content)

	var params searchParams
	if err := json.Unmarshal([]byte(content), &params); err != nil {
		metrics.OracleErrorsTotal.WithLabelValues(o.model, "extract", "bad_payload").Inc()
		o.logger.Warn("oracle payload is not valid JSON",
			zap.String("payload", snippet(content)),
			zap.Error(err))
		return hints.Hints{}, fmt.Errorf("decode oracle payload: %w", domain.ErrOracleUnavailable)
	}

	return hints.New(params.Keywords, params.Types, params.DateFrom, params.DateTo), nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (o *Oracle) HealthCheck(ctx context.Context) error {
	if _, err := o.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func extractPrompt(knownTypes []string) string {
	today := time.Now().UTC().Format("2006-01-02")
	return fmt.Sprintf(`You convert a personal search query into JSON search parameters.

Respond with a single JSON object:
{"keywords": [], "types": [], "date_from": "", "date_to": ""}

Rules:
- keywords: one to five short key phrases taken from the query, in the query's language, without filler words.
- types: values from [%s], only when the query clearly asks for that kind of item.
- date_from and date_to: YYYY-MM-DD bounds when the query names a period, otherwise empty strings.
- Today is %s.`, strings.Join(knownTypes, ", "), today)
}

func newClient(apiKey, baseURL string, timeout time.Duration) *openai.Client {
	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	if timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: timeout}
	}
	return openai.NewClientWithConfig(clientCfg)
}

func recordTokens(model, operation string, usage openai.Usage, rec UsageRecorder) {
	if usage.TotalTokens == 0 {
		return
	}
	metrics.OracleTokensTotal.WithLabelValues(model, operation, "prompt").Add(float64(usage.PromptTokens))
	metrics.OracleTokensTotal.WithLabelValues(model, operation, "total").Add(float64(usage.TotalTokens))
	if rec != nil {
		rec.Record(int64(usage.TotalTokens))
	}
}

// stripFences removes a markdown code fence if the model wrapped its JSON
// in one despite the response format.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func snippet(s string) string {
	const max = 200
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

// parseAPIError extracts a human-readable error from the API response.
// Everything is wrapped with the given sentinel for transport mapping.
func parseAPIError(err, wrap error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("chat API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("chat API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("chat request failed: %w", wrap)
}
