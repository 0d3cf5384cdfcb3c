package workflow

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"log/slog"

	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/notifications"
	"storyreel/internal/projects"
	"storyreel/internal/render"
	"storyreel/internal/services"
)

// Renderer runs the full render pipeline for one job. Satisfied by
// render.Orchestrator; tests substitute fakes.
type Renderer interface {
	Render(ctx context.Context, job render.Job, recorder render.StatusRecorder) (string, error)
}

// Manager coordinates background render processing.
type Manager struct {
	cfg          *config.Config
	store        *projects.Store
	logger       *slog.Logger
	renderer     Renderer
	notifier     notifications.Service
	pollInterval time.Duration
	retryDelay   time.Duration

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
}

// NewManager constructs a workflow manager with the default render pipeline.
func NewManager(cfg *config.Config, store *projects.Store, logger *slog.Logger) *Manager {
	return NewManagerWithRenderer(cfg, store, logger, render.NewOrchestrator(cfg, logger))
}

// NewManagerWithRenderer constructs a workflow manager with a custom renderer
// (used in tests).
func NewManagerWithRenderer(cfg *config.Config, store *projects.Store, logger *slog.Logger, renderer Renderer) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logging.NewComponentLogger(logger, "workflow"),
		renderer:     renderer,
		notifier:     notifications.NewService(cfg),
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		retryDelay:   time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
	}
}

// Start begins background processing. Projects stranded in a rendering state
// by a previous daemon run are failed before the poll loop begins.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	reset, err := m.store.ResetStuck(runCtx)
	if err != nil {
		m.logger.Warn("failed to reset stuck renders", logging.Error(err))
	} else if reset > 0 {
		m.logger.Info("failed stuck renders from previous run", logging.Int64("count", reset))
	}

	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for the in-flight render,
// if any, to finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// RenderOnce runs the full render pipeline for a single project in the
// calling goroutine. Used by the CLI render command; the daemon poll loop
// uses Start instead.
func (m *Manager) RenderOnce(ctx context.Context, projectID string) error {
	project, err := m.store.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return services.Wrap(services.ErrNotFound, "workflow", "render once", "project not found", nil)
	}
	if project.IsRendering() {
		return services.Wrap(services.ErrValidation, "workflow", "render once", "render already in progress", nil)
	}
	if err := m.process(ctx, project); err != nil {
		return err
	}

	// process persists failures on the project record rather than returning
	// them; surface the recorded message to the caller.
	updated, err := m.store.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if updated != nil && updated.Status == projects.StatusFailed {
		return errors.New(updated.ErrorMessage)
	}
	return nil
}

// LastError returns the most recent processing error, if any.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		project, err := m.store.NextPending(ctx)
		if err != nil {
			m.setLastError(err)
			m.logger.Error("failed to fetch next pending project", logging.Error(err))
			if !m.sleep(ctx, m.retryDelay) {
				return
			}
			continue
		}
		if project == nil {
			if !m.sleep(ctx, m.pollInterval) {
				return
			}
			continue
		}

		if err := m.process(ctx, project); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			m.setLastError(err)
		}
	}
}

func (m *Manager) process(ctx context.Context, project *projects.Project) error {
	ctx = services.WithProjectID(ctx, project.ID)
	logger := logging.WithContext(ctx, m.logger)
	logger.Info("picked up render", logging.String("title", project.Title))

	if err := m.notifier.NotifyRenderStarted(ctx, project.Title); err != nil {
		logger.Warn("render start notification failed", logging.Error(err))
	}

	job, err := m.buildJob(project)
	if err != nil {
		logger.Error("render inputs invalid", logging.Error(err))
		return m.fail(ctx, project.ID, err)
	}

	recorder := &storeRecorder{store: m.store}
	finalPath, err := m.renderer.Render(ctx, job, recorder)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		logger.Error("render failed", logging.Error(err))
		return m.fail(ctx, project.ID, err)
	}

	return m.complete(ctx, project.ID, finalPath)
}

// buildJob validates the project's render preconditions and assembles the
// pipeline input.
func (m *Manager) buildJob(project *projects.Project) (render.Job, error) {
	// Empty captions are allowed; the render proceeds with an empty
	// subtitle file.
	words, err := project.Words()
	if err != nil {
		return render.Job{}, services.Wrap(services.ErrValidation, "workflow", "build job", "decode captions", err)
	}

	sections, err := project.Sections()
	if err != nil {
		return render.Job{}, services.Wrap(services.ErrValidation, "workflow", "build job", "decode sections", err)
	}
	if !projects.AllSectionsSelected(sections) {
		return render.Job{}, services.Wrap(services.ErrValidation, "workflow", "build job", "not every section has a selected clip", nil)
	}

	if project.AudioFilePath == "" {
		return render.Job{}, services.Wrap(services.ErrValidation, "workflow", "build job", "project has no narration audio", nil)
	}
	if _, err := os.Stat(project.AudioFilePath); err != nil {
		return render.Job{}, services.Wrap(services.ErrNotFound, "workflow", "build job", "narration audio missing on disk", err)
	}

	return render.Job{
		ProjectID: project.ID,
		Sections:  sections,
		AudioPath: project.AudioFilePath,
		Words:     words,
	}, nil
}

func (m *Manager) fail(ctx context.Context, projectID string, cause error) error {
	project, err := m.store.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return nil
	}
	project.SetFailed(services.Details(cause))
	if err := m.store.Update(ctx, project); err != nil {
		return err
	}
	if err := m.notifier.NotifyRenderFailed(ctx, project.Title, project.ErrorMessage); err != nil {
		m.logger.Warn("render failure notification failed", logging.Error(err))
	}
	return nil
}

func (m *Manager) complete(ctx context.Context, projectID, finalPath string) error {
	project, err := m.store.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return nil
	}
	project.Status = projects.StatusCompleted
	project.FinalVideoPath = finalPath
	project.ErrorMessage = ""
	project.ProgressStage = "Completed"
	project.ProgressMessage = ""
	if err := m.store.Update(ctx, project); err != nil {
		return err
	}
	m.logger.Info("render completed",
		logging.String(logging.FieldProjectID, projectID),
		logging.String("output", finalPath))
	if err := m.notifier.NotifyRenderCompleted(ctx, project.Title, finalPath); err != nil {
		m.logger.Warn("render completion notification failed", logging.Error(err))
	}
	return nil
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) sleep(ctx context.Context, delay time.Duration) bool {
	if delay <= 0 {
		delay = time.Second
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// storeRecorder persists render stage transitions onto the project record.
type storeRecorder struct {
	store *projects.Store
}

func (r *storeRecorder) RecordStage(ctx context.Context, projectID string, status projects.Status, message string) error {
	project, err := r.store.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return errors.New("project not found")
	}
	project.Status = status
	project.ProgressStage = message
	project.ProgressMessage = message
	return r.store.Update(ctx, project)
}
