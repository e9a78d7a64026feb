package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/keepson/keepson/internal/domain"
	"github.com/keepson/keepson/internal/metrics"
)

// maxSummaryInput bounds how much content goes into the prompt. Longer
// notes are summarized from their head.
const maxSummaryInput = 6000

// Summarizer produces short summaries of captured content.
type Summarizer struct {
	client   *openai.Client
	model    string
	maxChars int
	usage    UsageRecorder
	logger   *zap.Logger
}

// SummarizerConfig holds the summarization provider settings.
type SummarizerConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	MaxChars int
	Timeout  time.Duration
	Usage    UsageRecorder
	Logger   *zap.Logger
}

// NewSummarizer creates an OpenAI-compatible summarization provider.
func NewSummarizer(cfg *SummarizerConfig) *Summarizer {
	return &Summarizer{
		client:   newClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout),
		model:    cfg.Model,
		maxChars: cfg.MaxChars,
		usage:    cfg.Usage,
		logger:   cfg.Logger,
	}
}

// Summarize returns a one-to-two sentence summary of the content. Failures
// are wrapped in domain.ErrSummaryUnavailable so callers can degrade.
func (s *Summarizer) Summarize(ctx context.Context, content string) (string, error) {
	input := content
	if len(input) > maxSummaryInput {
		input = input[:maxSummaryInput]
	}

	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summaryPrompt(s.maxChars)},
			{Role: openai.ChatMessageRoleUser, Content: input},
		},
		MaxTokens: 200,
	}

	start := time.Now()

	resp, err := s.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.OracleRequestsTotal.WithLabelValues(s.model, "summarize", "error").Inc()
		metrics.OracleErrorsTotal.WithLabelValues(s.model, "summarize", "api_error").Inc()
		return "", parseAPIError(err, domain.ErrSummaryUnavailable)
	}

	if len(resp.Choices) == 0 {
		metrics.OracleRequestsTotal.WithLabelValues(s.model, "summarize", "error").Inc()
		metrics.OracleErrorsTotal.WithLabelValues(s.model, "summarize", "empty_response").Inc()
		return "", fmt.Errorf("empty summary response: %w", domain.ErrSummaryUnavailable)
	}

	metrics.OracleRequestsTotal.WithLabelValues(s.model, "summarize", "success").Inc()
	metrics.OracleRequestDuration.WithLabelValues(s.model, "summarize").Observe(duration.Seconds())
	recordTokens(s.model, "summarize", resp.Usage, s.usage)

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	return truncateRunes(summary, s.maxChars), nil
}

func summaryPrompt(maxChars int) string {
	return fmt.Sprintf(`Summarize the user's note in one or two plain sentences, at most %d characters, in the note's language. No markdown, no preamble.`, maxChars)
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
