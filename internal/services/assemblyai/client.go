// Package assemblyai wraps the AssemblyAI transcription API, turning an
// uploaded narration file into word-level captions.
package assemblyai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"storyreel/internal/captions"
	"storyreel/internal/config"
)

const defaultPollInterval = 3 * time.Second

// Client wraps the AssemblyAI upload and transcript endpoints.
type Client struct {
	cfg        config.Transcription
	httpClient *http.Client
	interval   time.Duration
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

// WithPollInterval overrides the transcript polling interval.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval > 0 {
			c.interval = interval
		}
	}
}

// NewClient constructs a transcription client from the transcription config
// section.
func NewClient(cfg config.Transcription, opts ...Option) *Client {
	interval := defaultPollInterval
	if cfg.PollIntervalSeconds > 0 {
		interval = time.Duration(cfg.PollIntervalSeconds) * time.Second
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		interval:   interval,
	}
	for _, opt := range opts {
		opt(client)
	}
	if strings.TrimSpace(client.cfg.BaseURL) == "" {
		client.cfg.BaseURL = "https://api.assemblyai.com"
	}
	client.cfg.BaseURL = strings.TrimRight(client.cfg.BaseURL, "/")
	return client
}

type transcriptWord struct {
	Text       string  `json:"text"`
	Start      int64   `json:"start"`
	End        int64   `json:"end"`
	Confidence float64 `json:"confidence"`
}

type transcript struct {
	ID     string           `json:"id"`
	Status string           `json:"status"`
	Words  []transcriptWord `json:"words"`
	Text   string           `json:"text"`
	Error  string           `json:"error"`
}

// Transcribe uploads the audio file, submits it for transcription, and polls
// until completion, returning word-level captions with timings in seconds.
func (c *Client) Transcribe(ctx context.Context, audioPath string) ([]captions.Word, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return nil, errors.New("assemblyai transcribe: api key required")
	}

	uploadURL, err := c.upload(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	transcriptID, err := c.submit(ctx, uploadURL)
	if err != nil {
		return nil, err
	}
	result, err := c.poll(ctx, transcriptID)
	if err != nil {
		return nil, err
	}

	words := make([]captions.Word, len(result.Words))
	for i, word := range result.Words {
		words[i] = captions.Word{
			Text:       word.Text,
			Start:      float64(word.Start) / 1000,
			End:        float64(word.End) / 1000,
			Confidence: word.Confidence,
		}
	}
	return words, nil
}

func (c *Client) upload(ctx context.Context, audioPath string) (string, error) {
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("assemblyai upload: read audio: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v2/upload", bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("assemblyai upload: new request: %w", err)
	}
	req.Header.Set("Authorization", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	var response struct {
		UploadURL string `json:"upload_url"`
	}
	if err := c.do(req, &response); err != nil {
		return "", fmt.Errorf("assemblyai upload: %w", err)
	}
	if response.UploadURL == "" {
		return "", errors.New("assemblyai upload: empty upload url")
	}
	return response.UploadURL, nil
}

func (c *Client) submit(ctx context.Context, audioURL string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"audio_url":          audioURL,
		"language_detection": true,
	})
	if err != nil {
		return "", fmt.Errorf("assemblyai submit: encode body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v2/transcript", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("assemblyai submit: new request: %w", err)
	}
	req.Header.Set("Authorization", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	var response transcript
	if err := c.do(req, &response); err != nil {
		return "", fmt.Errorf("assemblyai submit: %w", err)
	}
	if response.ID == "" {
		return "", errors.New("assemblyai submit: empty transcript id")
	}
	return response.ID, nil
}

func (c *Client) poll(ctx context.Context, transcriptID string) (*transcript, error) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		result, err := c.fetch(ctx, transcriptID)
		if err != nil {
			return nil, err
		}
		switch result.Status {
		case "completed":
			return result, nil
		case "error":
			return nil, fmt.Errorf("assemblyai poll: transcription failed: %s", result.Error)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) fetch(ctx context.Context, transcriptID string) (*transcript, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/v2/transcript/"+transcriptID, nil)
	if err != nil {
		return nil, fmt.Errorf("assemblyai fetch: new request: %w", err)
	}
	req.Header.Set("Authorization", c.cfg.APIKey)

	var response transcript
	if err := c.do(req, &response); err != nil {
		return nil, fmt.Errorf("assemblyai fetch: %w", err)
	}
	return &response, nil
}

func (c *Client) do(req *http.Request, target any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
