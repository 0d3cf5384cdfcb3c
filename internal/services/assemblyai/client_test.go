package assemblyai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"storyreel/internal/config"
)

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "narration.mp3")
	if err := os.WriteFile(path, []byte("fake audio"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func TestTranscribeFullFlow(t *testing.T) {
	var polls atomic.Int32
	var uploadAuth, uploadContentType string
	var submitBody map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/upload", func(w http.ResponseWriter, r *http.Request) {
		uploadAuth = r.Header.Get("Authorization")
		uploadContentType = r.Header.Get("Content-Type")
		json.NewEncoder(w).Encode(map[string]string{"upload_url": "https://cdn.example.com/upload/abc"})
	})
	mux.HandleFunc("POST /v2/transcript", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&submitBody)
		json.NewEncoder(w).Encode(map[string]string{"id": "tr-1", "status": "queued"})
	})
	mux.HandleFunc("GET /v2/transcript/tr-1", func(w http.ResponseWriter, _ *http.Request) {
		if polls.Add(1) < 2 {
			json.NewEncoder(w).Encode(map[string]any{"id": "tr-1", "status": "processing"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "tr-1",
			"status": "completed",
			"words": []map[string]any{
				{"text": "hello", "start": 100, "end": 450, "confidence": 0.99},
				{"text": "world", "start": 500, "end": 980, "confidence": 0.97},
			},
		})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(config.Transcription{
		APIKey:  "aai-key",
		BaseURL: server.URL,
	}, WithPollInterval(time.Millisecond))

	words, err := client.Transcribe(context.Background(), writeAudio(t))
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	if uploadAuth != "aai-key" {
		t.Fatalf("unexpected upload authorization: %q", uploadAuth)
	}
	if uploadContentType != "application/octet-stream" {
		t.Fatalf("unexpected upload content type: %q", uploadContentType)
	}
	if submitBody["audio_url"] != "https://cdn.example.com/upload/abc" {
		t.Fatalf("unexpected submit body: %#v", submitBody)
	}
	if submitBody["language_detection"] != true {
		t.Fatal("expected language detection enabled")
	}

	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(words))
	}
	// millisecond timings convert to seconds
	if words[0].Text != "hello" || words[0].Start != 0.1 || words[0].End != 0.45 {
		t.Fatalf("unexpected first word: %#v", words[0])
	}
	if words[1].End != 0.98 {
		t.Fatalf("unexpected second word end: %v", words[1].End)
	}
}

func TestTranscribeSurfacesTranscriptionError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/upload", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"upload_url": "https://cdn.example.com/upload/x"})
	})
	mux.HandleFunc("POST /v2/transcript", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "tr-2", "status": "queued"})
	})
	mux.HandleFunc("GET /v2/transcript/tr-2", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "tr-2", "status": "error", "error": "audio too quiet"})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(config.Transcription{APIKey: "k", BaseURL: server.URL}, WithPollInterval(time.Millisecond))

	_, err := client.Transcribe(context.Background(), writeAudio(t))
	if err == nil {
		t.Fatal("expected transcription error to surface")
	}
}

func TestTranscribeRequiresAPIKey(t *testing.T) {
	client := NewClient(config.Transcription{})
	if _, err := client.Transcribe(context.Background(), writeAudio(t)); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestTranscribeMissingAudioFile(t *testing.T) {
	client := NewClient(config.Transcription{APIKey: "k", BaseURL: "http://127.0.0.1:0"})
	if _, err := client.Transcribe(context.Background(), "/does/not/exist.mp3"); err == nil {
		t.Fatal("expected error for missing audio file")
	}
}

func TestPollRespectsContextCancellation(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/upload", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"upload_url": "https://cdn.example.com/upload/y"})
	})
	mux.HandleFunc("POST /v2/transcript", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "tr-3", "status": "queued"})
	})
	mux.HandleFunc("GET /v2/transcript/tr-3", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "tr-3", "status": "processing"})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(config.Transcription{APIKey: "k", BaseURL: server.URL}, WithPollInterval(50*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Transcribe(ctx, writeAudio(t))
	if err == nil {
		t.Fatal("expected context cancellation to abort polling")
	}
}
