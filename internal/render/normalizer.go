package render

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/services"
)

// Normalizer retimes a single clip so its playback duration matches a target
// section length. The speed factor is clamped so extreme mismatches degrade to
// a slight duration error instead of visibly broken motion; the output is
// hard-truncated to the target either way.
type Normalizer struct {
	logger *slog.Logger
	cfg    *config.Config
	run    commandRunner
	probe  probeFunc
}

// NewNormalizer constructs a clip normalizer bound to the configured ffmpeg
// and ffprobe binaries.
func NewNormalizer(cfg *config.Config, logger *slog.Logger) *Normalizer {
	return &Normalizer{
		logger: logging.NewComponentLogger(logger, "normalizer"),
		cfg:    cfg,
		run:    defaultCommandRunner,
		probe:  defaultProbe(cfg.FFprobeBinary()),
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (n *Normalizer) WithCommandRunner(r commandRunner) {
	if n != nil && r != nil {
		n.run = r
	}
}

// WithProbe allows injecting a custom media prober for tests.
func (n *Normalizer) WithProbe(p probeFunc) {
	if n != nil && p != nil {
		n.probe = p
	}
}

// Normalize probes the input clip, computes the clamped speed factor, and
// transcodes the clip to the target duration. The output carries no audio
// track; source clips are treated as silent footage.
func (n *Normalizer) Normalize(ctx context.Context, inputPath, outputPath string, targetDuration float64) error {
	if targetDuration <= 0 {
		return services.Wrap(services.ErrValidation, "normalizer", "normalize",
			fmt.Sprintf("target duration must be positive, got %.3f", targetDuration), nil)
	}

	result, err := n.probe(ctx, inputPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "normalizer", "probe", inputPath, err)
	}
	nativeDuration := result.DurationSeconds()
	if nativeDuration <= 0 {
		return services.Wrap(services.ErrValidation, "normalizer", "probe",
			fmt.Sprintf("clip %s has no measurable duration", inputPath), nil)
	}

	speedFactor := nativeDuration / targetDuration
	clamped := clampSpeed(speedFactor, n.cfg.Render.MinSpeedFactor, n.cfg.Render.MaxSpeedFactor)

	logging.WithContext(ctx, n.logger).Info("normalizing clip",
		logging.String("input", inputPath),
		logging.Float64("native_duration", nativeDuration),
		logging.Float64("target_duration", targetDuration),
		logging.Float64("speed_factor", speedFactor),
		logging.Float64("clamped_speed", clamped))

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", inputPath,
		"-vf", fmt.Sprintf("setpts=%.3f*PTS", 1/clamped),
		"-an",
		"-c:v", "libx264",
		"-preset", n.cfg.Render.VideoPreset,
		"-crf", strconv.Itoa(n.cfg.Render.VideoCRF),
		"-pix_fmt", "yuv420p",
		"-t", formatSeconds(targetDuration),
		outputPath,
	}
	if err := n.run(ctx, n.cfg.FFmpegBinary(), args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "normalizer", "transcode", inputPath, err)
	}
	return nil
}

func clampSpeed(factor, minFactor, maxFactor float64) float64 {
	if factor < minFactor {
		return minFactor
	}
	if factor > maxFactor {
		return maxFactor
	}
	return factor
}

// formatSeconds renders a duration for ffmpeg's -t flag without trailing
// noise from float formatting.
func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}
