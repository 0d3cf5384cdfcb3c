package render_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storyreel/internal/logging"
	"storyreel/internal/render"
	"storyreel/internal/testsupport"
)

func writeClip(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	testsupport.WriteMediaFile(t, path, 16)
	return path
}

func TestConcatenateWritesManifestAndInvokesFFmpeg(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	concatenator := render.NewConcatenator(cfg, logging.NewNop())

	var captured []capturedCommand
	concatenator.WithCommandRunner(fakeRunner(t, &captured))

	dir := t.TempDir()
	clips := []string{
		writeClip(t, dir, "clip_0.mp4"),
		writeClip(t, dir, "clip_1.mp4"),
	}
	manifest := filepath.Join(dir, "concat_list.txt")
	output := filepath.Join(dir, "merged.mp4")

	if err := concatenator.Concatenate(context.Background(), clips, manifest, output); err != nil {
		t.Fatalf("Concatenate failed: %v", err)
	}

	data, err := os.ReadFile(manifest)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 manifest entries, got %d: %q", len(lines), string(data))
	}
	for i, line := range lines {
		if !strings.HasPrefix(line, "file '") || !strings.HasSuffix(line, "'") {
			t.Fatalf("malformed manifest line %d: %q", i, line)
		}
		if !strings.Contains(line, clips[i]) {
			t.Fatalf("manifest line %d does not reference %s: %q", i, clips[i], line)
		}
	}

	if len(captured) != 1 {
		t.Fatalf("expected one ffmpeg invocation, got %d", len(captured))
	}
	args := captured[0].args
	if format, _ := findArg(args, "-f"); format != "concat" {
		t.Fatalf("expected concat demuxer, got %q", format)
	}
	if safe, _ := findArg(args, "-safe"); safe != "0" {
		t.Fatalf("expected -safe 0, got %q", safe)
	}
	if codec, _ := findArg(args, "-c"); codec != "copy" {
		t.Fatalf("expected stream copy, got %q", codec)
	}
	if input, _ := findArg(args, "-i"); input != manifest {
		t.Fatalf("expected manifest input, got %q", input)
	}
}

func TestConcatenateStrictFailsOnMissingClip(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMissingClipPolicy("strict"))
	concatenator := render.NewConcatenator(cfg, logging.NewNop())

	var captured []capturedCommand
	concatenator.WithCommandRunner(fakeRunner(t, &captured))

	dir := t.TempDir()
	clips := []string{
		writeClip(t, dir, "clip_0.mp4"),
		filepath.Join(dir, "missing.mp4"),
	}

	err := concatenator.Concatenate(context.Background(), clips, filepath.Join(dir, "list.txt"), filepath.Join(dir, "merged.mp4"))
	if err == nil {
		t.Fatal("expected strict policy to fail on missing clip")
	}
	if len(captured) != 0 {
		t.Fatal("ffmpeg should not run when a clip is missing under strict policy")
	}
}

func TestConcatenateBestEffortSkipsMissingClip(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMissingClipPolicy("best-effort"))
	concatenator := render.NewConcatenator(cfg, logging.NewNop())

	var captured []capturedCommand
	concatenator.WithCommandRunner(fakeRunner(t, &captured))

	dir := t.TempDir()
	present := writeClip(t, dir, "clip_0.mp4")
	clips := []string{
		present,
		filepath.Join(dir, "missing.mp4"),
	}
	manifest := filepath.Join(dir, "list.txt")

	if err := concatenator.Concatenate(context.Background(), clips, manifest, filepath.Join(dir, "merged.mp4")); err != nil {
		t.Fatalf("Concatenate failed: %v", err)
	}

	data, err := os.ReadFile(manifest)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, present) {
		t.Fatalf("manifest missing surviving clip: %q", content)
	}
	if strings.Contains(content, "missing.mp4") {
		t.Fatalf("manifest should not list skipped clip: %q", content)
	}
}

func TestConcatenateFailsWithNoUsableClips(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMissingClipPolicy("best-effort"))
	concatenator := render.NewConcatenator(cfg, logging.NewNop())

	dir := t.TempDir()
	clips := []string{filepath.Join(dir, "gone.mp4")}

	err := concatenator.Concatenate(context.Background(), clips, filepath.Join(dir, "list.txt"), filepath.Join(dir, "merged.mp4"))
	if err == nil {
		t.Fatal("expected error when no clips survive")
	}
}
