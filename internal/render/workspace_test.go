package render_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"storyreel/internal/logging"
	"storyreel/internal/render"
)

func failingRunner(message string) func(ctx context.Context, name string, args ...string) error {
	return func(context.Context, string, ...string) error {
		return errors.New(message)
	}
}

func TestAcquireWorkspaceCreatesAndReleasesScratch(t *testing.T) {
	root := filepath.Join(t.TempDir(), "render")

	workspace, err := render.AcquireWorkspace(root, logging.NewNop())
	if err != nil {
		t.Fatalf("AcquireWorkspace failed: %v", err)
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatalf("scratch directory not created: %v", err)
	}

	if got := workspace.ClipPath(2); got != filepath.Join(root, "clip_2.mp4") {
		t.Fatalf("unexpected clip path: %q", got)
	}
	if got := workspace.ManifestPath(); got != filepath.Join(root, "concat_list.txt") {
		t.Fatalf("unexpected manifest path: %q", got)
	}
	if got := workspace.SubtitlePath(); got != filepath.Join(root, "subtitles.srt") {
		t.Fatalf("unexpected subtitle path: %q", got)
	}
	if got := workspace.MergedPath(); got != filepath.Join(root, "merged.mp4") {
		t.Fatalf("unexpected merged path: %q", got)
	}

	workspace.Release()
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Fatalf("expected scratch directory removed, stat err = %v", err)
	}
}

func TestAcquireWorkspaceRejectsConcurrentRender(t *testing.T) {
	root := filepath.Join(t.TempDir(), "render")

	first, err := render.AcquireWorkspace(root, logging.NewNop())
	if err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}
	defer first.Release()

	if _, err := render.AcquireWorkspace(root, logging.NewNop()); err == nil {
		t.Fatal("expected second acquire on same scratch to fail")
	}
}

func TestReleaseAfterConflictKeepsFirstOwnerWorking(t *testing.T) {
	root := filepath.Join(t.TempDir(), "render")

	first, err := render.AcquireWorkspace(root, logging.NewNop())
	if err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}
	first.Release()

	second, err := render.AcquireWorkspace(root, logging.NewNop())
	if err != nil {
		t.Fatalf("acquire after release failed: %v", err)
	}
	second.Release()
}
