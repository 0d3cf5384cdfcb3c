package render

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"storyreel/internal/logging"
	"storyreel/internal/services"
)

// Workspace is the scratch directory tree owned by one render invocation.
// Acquisition takes an exclusive file lock so two renders of the same project
// cannot race on the same directory; Release removes everything and drops the
// lock on every exit path.
type Workspace struct {
	root   string
	lock   *flock.Flock
	logger *slog.Logger
}

// AcquireWorkspace creates the scratch directory for a render and takes its
// exclusive lock. It fails immediately when another render of the same project
// holds the lock.
func AcquireWorkspace(root string, logger *slog.Logger) (*Workspace, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "render", "workspace", "create scratch directory", err)
	}

	lock := flock.New(filepath.Join(root, ".render.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "render", "workspace", "acquire scratch lock", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrValidation, "render", "workspace",
			fmt.Sprintf("render already in progress for %s", root), nil)
	}

	return &Workspace{
		root:   root,
		lock:   lock,
		logger: logging.NewComponentLogger(logger, "render"),
	}, nil
}

// Root returns the scratch directory path.
func (w *Workspace) Root() string {
	return w.root
}

// ClipPath returns the destination for the normalized clip at the given
// section index.
func (w *Workspace) ClipPath(index int) string {
	return filepath.Join(w.root, fmt.Sprintf("clip_%d.mp4", index))
}

// ManifestPath is the concat demuxer list file.
func (w *Workspace) ManifestPath() string {
	return filepath.Join(w.root, "concat_list.txt")
}

// SubtitlePath is the generated SRT file.
func (w *Workspace) SubtitlePath() string {
	return filepath.Join(w.root, "subtitles.srt")
}

// MergedPath is the concatenated pre-mux video.
func (w *Workspace) MergedPath() string {
	return filepath.Join(w.root, "merged.mp4")
}

// Release unlocks and removes the scratch directory. Removal failures are
// logged and abandoned rather than surfaced; the render outcome is already
// decided by the time cleanup runs.
func (w *Workspace) Release() {
	if w == nil {
		return
	}
	if w.lock != nil {
		if err := w.lock.Unlock(); err != nil {
			w.logger.Warn("failed to release scratch lock", logging.Error(err), logging.String("path", w.root))
		}
	}
	if err := os.RemoveAll(w.root); err != nil {
		w.logger.Warn("failed to remove scratch directory", logging.Error(err), logging.String("path", w.root))
	}
}
