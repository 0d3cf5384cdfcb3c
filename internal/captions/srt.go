package captions

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// FormatTimestamp renders a second offset as an SRT timestamp
// (HH:MM:SS,mmm). The fractional remainder is truncated to whole
// milliseconds, never rounded up, so a cue cannot spill into the
// following second.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMillis := int64(seconds * 1000)
	hours := totalMillis / 3_600_000
	minutes := (totalMillis % 3_600_000) / 60_000
	secs := (totalMillis % 60_000) / 1000
	millis := totalMillis % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// Document serializes chunks into a complete SRT document: 1-based index,
// timestamp line, cue text, blank-line separated. An empty chunk list yields
// an empty document.
func Document(chunks []Chunk) string {
	var b strings.Builder
	for i, chunk := range chunks {
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteByte('\n')
		b.WriteString(FormatTimestamp(chunk.Start))
		b.WriteString(" --> ")
		b.WriteString(FormatTimestamp(chunk.End))
		b.WriteByte('\n')
		b.WriteString(chunk.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// WriteSRT writes the serialized chunks to path.
func WriteSRT(chunks []Chunk, path string) error {
	if err := os.WriteFile(path, []byte(Document(chunks)), 0o644); err != nil {
		return fmt.Errorf("write srt: %w", err)
	}
	return nil
}

// ParseTimestamp converts an SRT timestamp back into seconds. Both the comma
// and period millisecond separators are accepted.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

// CueCount reports the number of cues present in an SRT file.
func CueCount(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read srt: %w", err)
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return 0, nil
	}
	count := 0
	for _, block := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(block) != "" {
			count++
		}
	}
	return count, nil
}

// Bounds returns the first cue start and last cue end found in an SRT file.
// A file with no timestamp lines reports (0, 0).
func Bounds(path string) (float64, float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("read srt: %w", err)
	}
	first := math.Inf(1)
	var last float64
	found := false
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.Contains(line, "-->") {
			continue
		}
		parts := strings.Split(line, "-->")
		if len(parts) != 2 {
			continue
		}
		if start, err := ParseTimestamp(parts[0]); err == nil {
			if start < first {
				first = start
			}
			found = true
		}
		if end, err := ParseTimestamp(parts[1]); err == nil && end > last {
			last = end
		}
	}
	if !found {
		return 0, last, nil
	}
	return first, last, nil
}
