package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const consoleTimestampLayout = "2006-01-02 15:04:05"

func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	opts := slog.HandlerOptions{
		Level:     lvl,
		AddSource: addSource,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				if attr.Value.Kind() == slog.KindTime {
					attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
				}
			case slog.LevelKey:
				attr.Key = "level"
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			case slog.MessageKey:
				attr.Key = "msg"
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
				}
			}
			return attr
		},
	}
	return slog.NewJSONHandler(w, &opts)
}

// consoleHandler renders single-line human-readable records:
//
//	2026-03-01 10:02:11 INFO  [muxer] subtitles burned in project_id=9f2c duration=4.1s
type consoleHandler struct {
	mu     sync.Mutex
	writer io.Writer
	level  *slog.LevelVar
	attrs  []slog.Attr
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar) slog.Handler {
	return &consoleHandler{writer: w, level: lvl}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	timestamp := record.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	var component string
	fields := make([]slog.Attr, 0, record.NumAttrs()+len(h.attrs))
	collect := func(attr slog.Attr) {
		if attr.Key == FieldComponent {
			if component == "" {
				component = attr.Value.String()
			}
			return
		}
		fields = append(fields, attr)
	}
	for _, attr := range h.attrs {
		collect(attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		collect(attr)
		return true
	})

	var b strings.Builder
	b.WriteString(timestamp.In(time.Local).Format(consoleTimestampLayout))
	b.WriteByte(' ')
	b.WriteString(fmt.Sprintf("%-5s", record.Level.String()))
	if component != "" {
		b.WriteString(" [")
		b.WriteString(component)
		b.WriteByte(']')
	}
	b.WriteByte(' ')
	b.WriteString(record.Message)
	for _, attr := range fields {
		b.WriteByte(' ')
		b.WriteString(attr.Key)
		b.WriteByte('=')
		b.WriteString(formatConsoleValue(attr.Value))
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &consoleHandler{writer: h.writer, level: h.level, attrs: merged}
}

func (h *consoleHandler) WithGroup(string) slog.Handler {
	// Groups are flattened; the console format has no nesting.
	return h
}

func formatConsoleValue(value slog.Value) string {
	value = value.Resolve()
	text := value.String()
	if strings.ContainsAny(text, " \t") {
		return fmt.Sprintf("%q", text)
	}
	if text == "" {
		return `""`
	}
	return text
}
