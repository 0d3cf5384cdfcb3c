package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"storyreel/internal/captions"
	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/projects"
	"storyreel/internal/services"
)

// Job is the input contract for one render invocation. Every section must
// already have a selected clip whose file exists under the project's visuals
// directory; the caller enforces that precondition.
type Job struct {
	ProjectID string
	Sections  []projects.Section
	AudioPath string
	Words     []captions.Word
}

// StatusRecorder receives stage transitions as the render progresses. The
// daemon persists them to the project record; tests capture them directly.
type StatusRecorder interface {
	RecordStage(ctx context.Context, projectID string, status projects.Status, message string) error
}

// Orchestrator sequences the render stages for one project and guarantees
// scratch cleanup on every exit path.
type Orchestrator struct {
	logger       *slog.Logger
	cfg          *config.Config
	normalizer   *Normalizer
	concatenator *Concatenator
	muxer        *Muxer
}

// NewOrchestrator wires the render stages against one configuration.
func NewOrchestrator(cfg *config.Config, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		logger:       logging.NewComponentLogger(logger, "render"),
		cfg:          cfg,
		normalizer:   NewNormalizer(cfg, logger),
		concatenator: NewConcatenator(cfg, logger),
		muxer:        NewMuxer(cfg, logger),
	}
}

// Normalizer exposes the clip normalizer, mainly so tests can inject fakes.
func (o *Orchestrator) Normalizer() *Normalizer { return o.normalizer }

// Concatenator exposes the clip concatenator.
func (o *Orchestrator) Concatenator() *Concatenator { return o.concatenator }

// Muxer exposes the final muxer.
func (o *Orchestrator) Muxer() *Muxer { return o.muxer }

// Render runs the full pipeline for one job and returns the final video path.
// Stages run strictly in order: normalize each clip, concatenate, build the
// subtitle file, mux. A job without caption words still renders; the subtitle
// stage writes an empty file and the mux burns no visible cues. Any stage
// failure aborts the job. The scratch workspace is released whether the
// render succeeds or fails.
func (o *Orchestrator) Render(ctx context.Context, job Job, recorder StatusRecorder) (string, error) {
	if len(job.Sections) == 0 {
		return "", services.Wrap(services.ErrValidation, "render", "start", "job has no sections", nil)
	}
	if _, err := os.Stat(job.AudioPath); err != nil {
		return "", services.Wrap(services.ErrNotFound, "render", "start", "narration audio missing", err)
	}

	ctx = services.WithProjectID(ctx, job.ProjectID)
	logger := logging.WithContext(ctx, o.logger)
	logger.Info("starting render", logging.Int("sections", len(job.Sections)))

	project := projects.Project{ID: job.ProjectID}
	workspace, err := AcquireWorkspace(project.RenderDir(o.cfg.Paths.StagingDir), logger)
	if err != nil {
		return "", err
	}
	defer workspace.Release()

	if err := o.record(ctx, recorder, job.ProjectID, projects.StatusProcessingClips, "Normalizing clips"); err != nil {
		return "", err
	}
	normalizeCtx := services.WithStage(ctx, "normalize")
	clipPaths := make([]string, 0, len(job.Sections))
	for i, section := range job.Sections {
		if section.Selected == nil {
			return "", services.Wrap(services.ErrValidation, "render", "normalize",
				fmt.Sprintf("section %d has no selected clip", i), nil)
		}
		source := project.ClipSourcePath(o.cfg.Paths.StagingDir, section.Selected.ID)
		destination := workspace.ClipPath(i)
		if _, statErr := os.Stat(source); statErr != nil {
			if o.cfg.Render.MissingClipPolicy == config.MissingClipStrict {
				return "", services.Wrap(services.ErrNotFound, "render", "normalize",
					fmt.Sprintf("source clip missing for section %d: %s", i, source), statErr)
			}
			logger.Warn("source clip missing, skipping section",
				logging.Int("section", i), logging.String("path", source))
			continue
		}
		if err := o.normalizer.Normalize(normalizeCtx, source, destination, section.Duration); err != nil {
			return "", err
		}
		clipPaths = append(clipPaths, destination)
	}

	if err := o.record(ctx, recorder, job.ProjectID, projects.StatusConcatenating, "Concatenating clips"); err != nil {
		return "", err
	}
	if err := o.concatenator.Concatenate(services.WithStage(ctx, "concatenate"), clipPaths, workspace.ManifestPath(), workspace.MergedPath()); err != nil {
		return "", err
	}

	if err := o.record(ctx, recorder, job.ProjectID, projects.StatusSubtitling, "Building subtitles"); err != nil {
		return "", err
	}
	chunks := captions.BuildChunks(job.Words)
	if err := captions.WriteSRT(chunks, workspace.SubtitlePath()); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "render", "subtitles", workspace.SubtitlePath(), err)
	}
	logger.Info("subtitle file written", logging.Int("chunks", len(chunks)))

	if err := o.record(ctx, recorder, job.ProjectID, projects.StatusMuxing, "Muxing final video"); err != nil {
		return "", err
	}
	finalPath := project.FinalOutputPath(o.cfg.Paths.LibraryDir)
	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "render", "mux", "create library directory", err)
	}
	if err := o.muxer.Mux(services.WithStage(ctx, "mux"), workspace.MergedPath(), job.AudioPath, workspace.SubtitlePath(), finalPath); err != nil {
		return "", err
	}

	logger.Info("render complete", logging.String("output", finalPath))
	return finalPath, nil
}

func (o *Orchestrator) record(ctx context.Context, recorder StatusRecorder, projectID string, status projects.Status, message string) error {
	if recorder == nil {
		return nil
	}
	if err := recorder.RecordStage(ctx, projectID, status, message); err != nil {
		return services.Wrap(services.ErrConfiguration, "render", "status", string(status), err)
	}
	return nil
}
