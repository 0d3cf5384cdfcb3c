package pexels

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"storyreel/internal/config"
)

func TestSearchFiltersForWidescreen(t *testing.T) {
	var gotQuery, gotPerPage, gotOrientation, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotPerPage = r.URL.Query().Get("per_page")
		gotOrientation = r.URL.Query().Get("orientation")
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{
			"videos": []map[string]any{
				{"id": 1, "width": 1920, "height": 1080},
				{"id": 2, "width": 1080, "height": 1920}, // portrait, dropped
				{"id": 3, "width": 3840, "height": 2160},
				{"id": 4, "width": 1440, "height": 1080}, // 4:3, dropped
				{"id": 5, "width": 1280, "height": 720},
			},
		})
	}))
	defer server.Close()

	client := NewClient(config.Stock{APIKey: "px-key", BaseURL: server.URL, ResultsPer: 2})

	videos, err := client.Search(context.Background(), "ocean waves")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if gotQuery != "ocean waves" || gotOrientation != "landscape" || gotAuth != "px-key" {
		t.Fatalf("unexpected request: query=%q orientation=%q auth=%q", gotQuery, gotOrientation, gotAuth)
	}
	// twice the configured results are requested to survive the ratio filter
	if gotPerPage != "4" {
		t.Fatalf("per_page = %q, want 4", gotPerPage)
	}

	if len(videos) != 2 {
		t.Fatalf("expected 2 results after filter and cap, got %d", len(videos))
	}
	if videos[0].ID != 1 || videos[1].ID != 3 {
		t.Fatalf("unexpected result order: %d, %d", videos[0].ID, videos[1].ID)
	}
}

func TestSearchRequiresQueryAndKey(t *testing.T) {
	client := NewClient(config.Stock{APIKey: "k"})
	if _, err := client.Search(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty query")
	}

	client = NewClient(config.Stock{})
	if _, err := client.Search(context.Background(), "ocean"); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestBestFilePreference(t *testing.T) {
	fullHD := VideoFile{ID: 1, Quality: "hd", Width: 1920, Height: 1080, Link: "https://v/fullhd"}
	hd := VideoFile{ID: 2, Quality: "hd", Width: 1280, Height: 720, Link: "https://v/hd"}
	sd := VideoFile{ID: 3, Quality: "sd", Width: 960, Height: 540, Link: "https://v/sd"}
	portrait := VideoFile{ID: 4, Quality: "hd", Width: 1080, Height: 1920, Link: "https://v/portrait"}

	cases := []struct {
		name  string
		files []VideoFile
		want  string
	}{
		{"full hd wins", []VideoFile{sd, hd, fullHD}, "https://v/fullhd"},
		{"hd quality next", []VideoFile{sd, hd}, "https://v/hd"},
		{"widest widescreen fallback", []VideoFile{sd, {ID: 5, Quality: "sd", Width: 1600, Height: 900, Link: "https://v/900p"}}, "https://v/900p"},
		{"any ratio last resort", []VideoFile{portrait}, "https://v/portrait"},
		{"no files", nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := BestFile(Video{Files: tc.files})
			if got != tc.want {
				t.Fatalf("BestFile = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDownloadWritesFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("video-bytes"))
	}))
	defer server.Close()

	client := NewClient(config.Stock{APIKey: "k"})
	output := filepath.Join(t.TempDir(), "visuals", "42.mp4")

	if err := client.Download(context.Background(), server.URL, output); err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(data) != "video-bytes" {
		t.Fatalf("unexpected file content: %q", string(data))
	}
}

func TestDownloadFailsOnHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(config.Stock{APIKey: "k"})
	output := filepath.Join(t.TempDir(), "42.mp4")

	if err := client.Download(context.Background(), server.URL, output); err == nil {
		t.Fatal("expected error for 404 download")
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Fatal("no file should be written on failure")
	}
}
