package render

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/services"
)

// subtitleStyle is the fixed burn-in caption style: bold, outlined,
// bottom-anchored, high contrast, sized for short-form viewing. Not
// user-exposed.
var subtitleStyle = strings.Join([]string{
	"FontName=Arial",
	"FontSize=48",
	"PrimaryColour=&H00FFFFFF",
	"OutlineColour=&H00000000",
	"BorderStyle=3",
	"Outline=4",
	"Shadow=0",
	"Bold=1",
	"Alignment=2",
	"MarginV=50",
}, ",")

// Muxer produces the final deliverable: the concatenated silent video with
// subtitles burned in, muxed with the narration audio. This is the only stage
// that re-encodes picture, since burn-in requires it.
type Muxer struct {
	logger *slog.Logger
	cfg    *config.Config
	run    commandRunner
}

// NewMuxer constructs the final muxer.
func NewMuxer(cfg *config.Config, logger *slog.Logger) *Muxer {
	return &Muxer{
		logger: logging.NewComponentLogger(logger, "muxer"),
		cfg:    cfg,
		run:    defaultCommandRunner,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (m *Muxer) WithCommandRunner(r commandRunner) {
	if m != nil && r != nil {
		m.run = r
	}
}

// Mux burns the subtitle file into videoPath, replaces its audio with the
// narration at audioPath, and writes the result to outputPath.
func (m *Muxer) Mux(ctx context.Context, videoPath, audioPath, subtitlePath, outputPath string) error {
	logging.WithContext(ctx, m.logger).Info("muxing final video",
		logging.String("video", videoPath),
		logging.String("audio", audioPath),
		logging.String("output", outputPath))

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v",
		"-map", "1:a",
		"-vf", fmt.Sprintf("subtitles=%s:force_style='%s'", subtitleFilterPath(subtitlePath), subtitleStyle),
		"-c:v", "libx264",
		"-preset", m.cfg.Render.VideoPreset,
		"-crf", strconv.Itoa(m.cfg.Render.VideoCRF),
		"-c:a", "aac",
		"-b:a", m.cfg.Render.AudioBitrate,
		outputPath,
	}
	if err := m.run(ctx, m.cfg.FFmpegBinary(), args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "muxer", "mux", outputPath, err)
	}
	return nil
}

// subtitleFilterPath escapes a path for use inside ffmpeg's subtitles filter.
func subtitleFilterPath(path string) string {
	path = strings.ReplaceAll(path, `\`, `/`)
	path = strings.ReplaceAll(path, `:`, `\:`)
	return path
}
