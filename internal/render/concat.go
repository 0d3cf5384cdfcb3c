package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/services"
)

// Concatenator joins normalized clips into one continuous video using the
// concat demuxer with stream copy. All inputs share the normalizer's encoding
// profile, which is what makes the no-reencode join safe.
type Concatenator struct {
	logger *slog.Logger
	cfg    *config.Config
	run    commandRunner
}

// NewConcatenator constructs a clip concatenator.
func NewConcatenator(cfg *config.Config, logger *slog.Logger) *Concatenator {
	return &Concatenator{
		logger: logging.NewComponentLogger(logger, "concatenator"),
		cfg:    cfg,
		run:    defaultCommandRunner,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (c *Concatenator) WithCommandRunner(r commandRunner) {
	if c != nil && r != nil {
		c.run = r
	}
}

// Concatenate joins the clips at clipPaths, in order, into outputPath using
// the manifest file at manifestPath. Clips missing on disk are handled per the
// configured missing clip policy: strict renders fail, best-effort skips the
// clip and proceeds with fewer sections. A render with zero usable clips fails
// under either policy.
func (c *Concatenator) Concatenate(ctx context.Context, clipPaths []string, manifestPath, outputPath string) error {
	strict := c.cfg.Render.MissingClipPolicy == config.MissingClipStrict
	logger := logging.WithContext(ctx, c.logger)

	present := make([]string, 0, len(clipPaths))
	for _, clip := range clipPaths {
		if _, err := os.Stat(clip); err != nil {
			if strict {
				return services.Wrap(services.ErrNotFound, "concatenator", "concatenate",
					fmt.Sprintf("clip missing: %s", clip), err)
			}
			logger.Warn("skipping missing clip", logging.String("path", clip))
			continue
		}
		present = append(present, clip)
	}
	if len(present) == 0 {
		return services.Wrap(services.ErrValidation, "concatenator", "concatenate", "no clips available to concatenate", nil)
	}

	if err := writeManifest(manifestPath, present); err != nil {
		return services.Wrap(services.ErrConfiguration, "concatenator", "manifest", manifestPath, err)
	}

	logger.Info("concatenating clips",
		logging.Int("count", len(present)),
		logging.String("output", outputPath))

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "concat",
		"-safe", "0",
		"-i", manifestPath,
		"-c", "copy",
		outputPath,
	}
	if err := c.run(ctx, c.cfg.FFmpegBinary(), args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "concatenator", "concatenate", outputPath, err)
	}
	return nil
}

// writeManifest emits the concat demuxer list. Paths are made absolute so the
// demuxer does not resolve them relative to the manifest location.
func writeManifest(path string, clips []string) error {
	var b strings.Builder
	for _, clip := range clips {
		abs, err := filepath.Abs(clip)
		if err != nil {
			return fmt.Errorf("resolve clip path %s: %w", clip, err)
		}
		fmt.Fprintf(&b, "file '%s'\n", abs)
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
