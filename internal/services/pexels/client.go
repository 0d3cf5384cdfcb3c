// Package pexels wraps the Pexels video API for stock footage search and
// download.
package pexels

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"storyreel/internal/config"
)

// widescreenTolerance bounds how far a clip's aspect ratio may drift from
// 16:9 and still count as widescreen.
const widescreenTolerance = 0.05

// Client wraps the Pexels video search and file download endpoints.
type Client struct {
	cfg        config.Stock
	httpClient *http.Client
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

// NewClient constructs a stock footage client from the stock config section.
func NewClient(cfg config.Stock, opts ...Option) *Client {
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
	for _, opt := range opts {
		opt(client)
	}
	if strings.TrimSpace(client.cfg.BaseURL) == "" {
		client.cfg.BaseURL = "https://api.pexels.com/videos"
	}
	client.cfg.BaseURL = strings.TrimRight(client.cfg.BaseURL, "/")
	if client.cfg.ResultsPer <= 0 {
		client.cfg.ResultsPer = 5
	}
	return client
}

// Video is one stock search result.
type Video struct {
	ID       int64       `json:"id"`
	URL      string      `json:"url"`
	Image    string      `json:"image"`
	Width    int         `json:"width"`
	Height   int         `json:"height"`
	Duration float64     `json:"duration"`
	Files    []VideoFile `json:"video_files"`
}

// VideoFile is one downloadable rendition of a video.
type VideoFile struct {
	ID      int64  `json:"id"`
	Quality string `json:"quality"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Link    string `json:"link"`
}

type searchResponse struct {
	Videos       []Video `json:"videos"`
	Page         int     `json:"page"`
	PerPage      int     `json:"per_page"`
	TotalResults int     `json:"total_results"`
}

// Search queries landscape stock footage for the term and returns up to the
// configured number of widescreen results. Twice as many results are requested
// so the 16:9 filter has room to discard off-ratio clips.
func (c *Client) Search(ctx context.Context, query string) ([]Video, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("pexels search: query required")
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return nil, errors.New("pexels search: api key required")
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(c.cfg.ResultsPer*2))
	params.Set("orientation", "landscape")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("pexels search: new request: %w", err)
	}
	req.Header.Set("Authorization", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pexels search: http error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("pexels search: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("pexels search: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("pexels search: decode response: %w", err)
	}

	widescreen := make([]Video, 0, len(decoded.Videos))
	for _, video := range decoded.Videos {
		if isWidescreen(video.Width, video.Height) {
			widescreen = append(widescreen, video)
		}
	}
	if len(widescreen) > c.cfg.ResultsPer {
		widescreen = widescreen[:c.cfg.ResultsPer]
	}
	return widescreen, nil
}

// BestFile picks the download link for a video: full HD 16:9 first, then any
// HD 16:9, then the widest 16:9 rendition, then the widest file of any ratio.
func BestFile(video Video) string {
	widescreen := make([]VideoFile, 0, len(video.Files))
	for _, file := range video.Files {
		if isWidescreen(file.Width, file.Height) {
			widescreen = append(widescreen, file)
		}
	}

	for _, file := range widescreen {
		if file.Width == 1920 && file.Height == 1080 {
			return file.Link
		}
	}
	for _, file := range widescreen {
		if file.Quality == "hd" {
			return file.Link
		}
	}
	if len(widescreen) > 0 {
		sort.Slice(widescreen, func(i, j int) bool { return widescreen[i].Width > widescreen[j].Width })
		return widescreen[0].Link
	}

	if len(video.Files) == 0 {
		return ""
	}
	files := append([]VideoFile(nil), video.Files...)
	sort.Slice(files, func(i, j int) bool { return files[i].Width > files[j].Width })
	return files[0].Link
}

// Download streams a video file to outputPath, creating parent directories as
// needed.
func (c *Client) Download(ctx context.Context, fileURL, outputPath string) error {
	fileURL = strings.TrimSpace(fileURL)
	if fileURL == "" {
		return errors.New("pexels download: file url required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return fmt.Errorf("pexels download: new request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pexels download: http error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("pexels download: http %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("pexels download: create directory: %w", err)
	}

	tmp := outputPath + ".partial"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("pexels download: create file: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("pexels download: write file: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("pexels download: close file: %w", err)
	}
	if err := os.Rename(tmp, outputPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("pexels download: finalize file: %w", err)
	}
	return nil
}

func isWidescreen(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	const targetRatio = 16.0 / 9.0
	ratio := float64(width) / float64(height)
	return math.Abs(ratio-targetRatio) < widescreenTolerance
}
