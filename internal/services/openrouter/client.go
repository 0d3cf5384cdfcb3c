// Package openrouter wraps the OpenRouter chat completion API for idea,
// script, and visual section generation.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storyreel/internal/config"
)

const (
	defaultHTTPTimeout    = 60 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryAttempts  = 3
)

// Client wraps the OpenRouter chat completion API.
type Client struct {
	cfg        config.LLM
	httpClient *http.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the default retry count.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs an OpenRouter client from the llm config section.
func NewClient(cfg config.LLM, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg:              cfg,
		httpClient:       &http.Client{Timeout: timeout},
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if strings.TrimSpace(client.cfg.BaseURL) == "" {
		client.cfg.BaseURL = "https://openrouter.ai/api/v1/chat/completions"
	}
	return client
}

// SectionPlan is one visual section proposed by the model, with timings taken
// from the word-level transcript it was shown.
type SectionPlan struct {
	SectionText string  `json:"section_text"`
	SearchQuery string  `json:"search_query"`
	StartTime   float64 `json:"start_time"`
	EndTime     float64 `json:"end_time"`
}

// WordTiming is the minimal caption shape embedded in the section prompt.
type WordTiming struct {
	Text  string
	Start float64
	End   float64
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("openrouter request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// GenerateIdeas asks the model for count single-sentence video ideas, steering
// it away from previously approved ones.
func (c *Client) GenerateIdeas(ctx context.Context, count int, previousIdeas []string) ([]string, error) {
	if count <= 0 {
		return nil, errors.New("openrouter ideas: count must be positive")
	}
	if err := c.requireKey("openrouter ideas"); err != nil {
		return nil, err
	}

	content, err := c.completionWithRetry(ctx, chatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: ideaSystemPrompt},
			{Role: "user", Content: buildIdeaPrompt(count, previousIdeas)},
		},
		Temperature: 0.8,
	}, "openrouter ideas")
	if err != nil {
		return nil, err
	}

	var ideas []string
	if err := DecodeJSON(content, &ideas); err != nil {
		return nil, fmt.Errorf("openrouter ideas: parse payload: %w", err)
	}
	return ideas, nil
}

// GenerateScript asks the model for a long-form narration script for one idea.
func (c *Client) GenerateScript(ctx context.Context, idea string) (string, error) {
	idea = strings.TrimSpace(idea)
	if idea == "" {
		return "", errors.New("openrouter script: idea required")
	}
	if err := c.requireKey("openrouter script"); err != nil {
		return "", err
	}

	return c.completionWithRetry(ctx, chatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: scriptSystemPrompt},
			{Role: "user", Content: buildScriptPrompt(idea)},
		},
		Temperature: 0.7,
		MaxTokens:   4000,
	}, "openrouter script")
}

// GenerateSections asks the model to break the timed transcript into visual
// sections, each with a stock footage search query.
func (c *Client) GenerateSections(ctx context.Context, words []WordTiming) ([]SectionPlan, error) {
	if len(words) == 0 {
		return nil, errors.New("openrouter sections: word timings required")
	}
	if err := c.requireKey("openrouter sections"); err != nil {
		return nil, err
	}

	content, err := c.completionWithRetry(ctx, chatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: sectionSystemPrompt},
			{Role: "user", Content: buildSectionPrompt(words)},
		},
		Temperature: 0.5,
	}, "openrouter sections")
	if err != nil {
		return nil, err
	}

	var sections []SectionPlan
	if err := DecodeJSON(content, &sections); err != nil {
		return nil, fmt.Errorf("openrouter sections: parse payload: %w", err)
	}
	return sections, nil
}

func (c *Client) requireKey(op string) error {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return fmt.Errorf("%s: api key required", op)
	}
	return nil
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) completionWithRetry(ctx context.Context, payload chatCompletionRequest, op string) (string, error) {
	attempts := c.retryMaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		content, err := c.sendOnce(ctx, payload)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if attempt >= attempts || !c.shouldRetry(ctx, err) {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		if err := c.sleep(ctx, c.backoffDelay(attempt)); err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
	}
	return "", fmt.Errorf("%s: failed after %d attempts: %w", op, attempts, lastErr)
}

func (c *Client) sendOnce(ctx context.Context, payload chatCompletionRequest) (string, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", c.cfg.Referer)
	}
	if c.cfg.Title != "" {
		req.Header.Set("X-Title", c.cfg.Title)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if completion.Error != nil {
		return "", fmt.Errorf("api error: %s", strings.TrimSpace(completion.Error.Message))
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("empty choices")
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("empty content")
	}
	return content, nil
}

func (c *Client) shouldRetry(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusRequestTimeout ||
			statusErr.StatusCode == http.StatusTooManyRequests ||
			statusErr.StatusCode >= http.StatusInternalServerError
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	return false
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := c.retryBaseDelay
	for i := 1; i < attempt; i++ {
		if delay > c.retryMaxDelay/2 {
			return c.retryMaxDelay
		}
		delay *= 2
	}
	if delay > c.retryMaxDelay {
		return c.retryMaxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
