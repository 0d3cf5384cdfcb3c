package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WriteMediaFile drops a placeholder clip or audio file at path, creating
// parent directories as needed. The payload is opaque filler sized so
// existence and size checks behave like they would against real media; the
// pipeline tests never decode it because ffmpeg is faked out.
func WriteMediaFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create fixture directory for %s: %v", path, err)
	}
	payload := bytes.Repeat([]byte("storyreel-fixture\n"), int(size/18)+1)
	if err := os.WriteFile(path, payload[:size], 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
}
