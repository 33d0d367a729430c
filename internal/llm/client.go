// Package llm implements the summarization capability against any
// OpenAI-compatible chat-completions endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/rohitdas13595/sitesage/internal/model"
	"github.com/rohitdas13595/sitesage/internal/platform/errs"
)

const systemPrompt = "You are an SEO consultant. Answer with JSON only."

// Config holds the client's connection settings.
type Config struct {
	BaseURL           string
	APIKey            string
	Model             string
	RequestsPerMinute int
}

// Client calls a chat-completions API and maps its output to Insights.
// Calls are rate limited client-side so a large batch cannot exhaust the
// provider quota.
type Client struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Client. The per-call deadline comes from the caller's
// context, not from the HTTP client.
func NewClient(cfg Config) *Client {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	return &Client{
		cfg:     cfg,
		client:  &http.Client{},
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Summarize sends the prompt to the model and parses the completion into
// Insights. All failure modes (quota, timeout, HTTP errors, malformed
// output) surface as ServiceUnavailable; the caller's fallback handles them.
func (c *Client) Summarize(ctx context.Context, prompt string) (*model.Insights, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, serviceError("summarization rate limit wait aborted", err)
	}

	payload, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, serviceError("failed to encode summarization request", err)
	}

	endpoint := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, serviceError("failed to build summarization request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, serviceError("summarization request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, serviceError(fmt.Sprintf("summarization service returned status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, serviceError("failed to read summarization response", err)
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return nil, serviceError("summarization response is not valid JSON", err)
	}
	if len(chat.Choices) == 0 {
		return nil, serviceError("summarization response contains no choices", nil)
	}

	insights := parseInsights(chat.Choices[0].Message.Content)
	if insights.Summary == "" {
		return nil, serviceError("summarization response contains no usable summary", nil)
	}
	return insights, nil
}

// parseInsights prefers a JSON object embedded in the completion and falls
// back to scraping summary/suggestion lines out of plain text.
func parseInsights(content string) *model.Insights {
	if start := strings.Index(content, "{"); start >= 0 {
		if end := strings.LastIndex(content, "}"); end > start {
			var parsed struct {
				Summary     string   `json:"summary"`
				Suggestions []string `json:"suggestions"`
			}
			if err := json.Unmarshal([]byte(content[start:end+1]), &parsed); err == nil {
				return &model.Insights{
					Summary:     strings.TrimSpace(parsed.Summary),
					Suggestions: parsed.Suggestions,
				}
			}
		}
	}

	var summaryLines, suggestions []string
	inSuggestions := false
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isListItem(line) || strings.Contains(strings.ToLower(line), "suggestion") {
			inSuggestions = true
			if cleaned := strings.TrimLeft(line, "0123456789.-* "); cleaned != "" && isListItem(line) {
				suggestions = append(suggestions, cleaned)
			}
			continue
		}
		if !inSuggestions {
			summaryLines = append(summaryLines, line)
		}
	}

	return &model.Insights{
		Summary:     strings.Join(summaryLines, " "),
		Suggestions: suggestions,
	}
}

func isListItem(line string) bool {
	if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") {
		return true
	}
	trimmed := strings.TrimLeft(line, "0123456789")
	return trimmed != line && strings.HasPrefix(trimmed, ".")
}

func serviceError(message string, cause error) error {
	return &errs.AppError{
		Kind:    errs.ServiceUnavailable,
		Message: message,
		Cause:   cause,
	}
}
