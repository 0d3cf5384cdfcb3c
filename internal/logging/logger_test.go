package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"storyreel/internal/services"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
		" DEBUG ": slog.LevelDebug,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleHandlerIncludesComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	level := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, level))

	NewComponentLogger(logger, "muxer").Info("subtitles burned in", String("output", "/tmp/video.mp4"))

	line := buf.String()
	if !strings.Contains(line, "[muxer]") {
		t.Fatalf("missing component marker in %q", line)
	}
	if !strings.Contains(line, "output=/tmp/video.mp4") {
		t.Fatalf("missing field in %q", line)
	}
}

func TestWithContextAttachesProjectFields(t *testing.T) {
	var buf bytes.Buffer
	level := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, level))

	ctx := services.WithProjectID(context.Background(), "proj-123")
	ctx = services.WithStage(ctx, "concatenating")
	ctx = services.WithRequestID(ctx, "ab12cd34")
	WithContext(ctx, logger).Info("stage started")

	line := buf.String()
	if !strings.Contains(line, "project_id=proj-123") {
		t.Fatalf("missing project id in %q", line)
	}
	if !strings.Contains(line, "stage=concatenating") {
		t.Fatalf("missing stage in %q", line)
	}
	if !strings.Contains(line, "correlation_id=ab12cd34") {
		t.Fatalf("missing correlation id in %q", line)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	logger.Error("should not panic", Error(nil))
}
