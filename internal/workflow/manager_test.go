package workflow_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"storyreel/internal/captions"
	"storyreel/internal/logging"
	"storyreel/internal/projects"
	"storyreel/internal/render"
	"storyreel/internal/testsupport"
	"storyreel/internal/workflow"
)

type fakeRenderer struct {
	result   string
	err      error
	rendered chan render.Job
}

func newFakeRenderer(result string, err error) *fakeRenderer {
	return &fakeRenderer{result: result, err: err, rendered: make(chan render.Job, 8)}
}

func (f *fakeRenderer) Render(ctx context.Context, job render.Job, recorder render.StatusRecorder) (string, error) {
	if recorder != nil {
		_ = recorder.RecordStage(ctx, job.ProjectID, projects.StatusProcessingClips, "Normalizing clips")
	}
	f.rendered <- job
	return f.result, f.err
}

func pendingProject(t *testing.T, store *projects.Store) *projects.Project {
	t.Helper()

	project := testsupport.NewProject(t, store, "Render Me")

	audioPath := filepath.Join(t.TempDir(), "narration.mp3")
	testsupport.WriteMediaFile(t, audioPath, 32)
	project.AudioFilePath = audioPath

	if err := project.SetWords([]captions.Word{
		{Text: "hello", Start: 0, End: 0.5},
		{Text: "world", Start: 0.6, End: 1.0},
	}); err != nil {
		t.Fatalf("SetWords failed: %v", err)
	}
	if err := project.SetSections([]projects.Section{
		{Text: "opening", Duration: 1.0, Selected: &projects.ClipRef{ID: 1}},
	}); err != nil {
		t.Fatalf("SetSections failed: %v", err)
	}
	project.Status = projects.StatusPending

	if err := store.Update(context.Background(), project); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	return project
}

func waitForStatus(t *testing.T, store *projects.Store, id string, want projects.Status) *projects.Project {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		project, err := store.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if project != nil && project.Status == want {
			return project
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("project %s never reached status %s", id, want)
	return nil
}

func TestManagerRendersPendingProject(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 1
	store := testsupport.MustOpenStore(t, cfg)
	project := pendingProject(t, store)

	renderer := newFakeRenderer("/library/final.mp4", nil)
	manager := workflow.NewManagerWithRenderer(cfg, store, logging.NewNop(), renderer)

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer manager.Stop()

	select {
	case job := <-renderer.rendered:
		if job.ProjectID != project.ID || len(job.Sections) != 1 || len(job.Words) != 2 {
			t.Fatalf("unexpected job: %#v", job)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("renderer never invoked")
	}

	done := waitForStatus(t, store, project.ID, projects.StatusCompleted)
	if done.FinalVideoPath != "/library/final.mp4" {
		t.Fatalf("final path not persisted: %q", done.FinalVideoPath)
	}
	if done.ErrorMessage != "" {
		t.Fatalf("unexpected error message: %q", done.ErrorMessage)
	}
}

func TestManagerRendersProjectWithoutCaptions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 1
	store := testsupport.MustOpenStore(t, cfg)
	project := pendingProject(t, store)

	// No word-level captions is not a precondition failure; the pipeline
	// writes an empty subtitle file and muxes without visible cues.
	if err := project.SetWords(nil); err != nil {
		t.Fatalf("SetWords failed: %v", err)
	}
	project.Status = projects.StatusPending
	if err := store.Update(context.Background(), project); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	renderer := newFakeRenderer("/library/final.mp4", nil)
	manager := workflow.NewManagerWithRenderer(cfg, store, logging.NewNop(), renderer)

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer manager.Stop()

	select {
	case job := <-renderer.rendered:
		if len(job.Words) != 0 {
			t.Fatalf("expected empty caption words, got %d", len(job.Words))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("renderer never invoked")
	}

	waitForStatus(t, store, project.ID, projects.StatusCompleted)
}

func TestManagerMarksFailureWithMessage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 1
	store := testsupport.MustOpenStore(t, cfg)
	project := pendingProject(t, store)

	renderer := newFakeRenderer("", errors.New("transcode exploded"))
	manager := workflow.NewManagerWithRenderer(cfg, store, logging.NewNop(), renderer)

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer manager.Stop()

	failed := waitForStatus(t, store, project.ID, projects.StatusFailed)
	if failed.ErrorMessage == "" {
		t.Fatal("expected failure message to be persisted")
	}
}

func TestManagerFailsProjectWithUnselectedSections(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 1
	store := testsupport.MustOpenStore(t, cfg)
	project := pendingProject(t, store)

	project.SectionsJSON = `[{"section_text":"x","duration":1.0,"selected_clip":null}]`
	project.Status = projects.StatusPending
	if err := store.Update(context.Background(), project); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	renderer := newFakeRenderer("/library/final.mp4", nil)
	manager := workflow.NewManagerWithRenderer(cfg, store, logging.NewNop(), renderer)

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer manager.Stop()

	failed := waitForStatus(t, store, project.ID, projects.StatusFailed)
	if failed.ErrorMessage == "" {
		t.Fatal("expected precondition failure message")
	}

	select {
	case job := <-renderer.rendered:
		t.Fatalf("renderer should not run for invalid project, got job %#v", job)
	default:
	}
}

func TestManagerResetsStuckProjectsOnStart(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 1
	store := testsupport.MustOpenStore(t, cfg)

	stuck := testsupport.NewProject(t, store, "Stuck")
	stuck.Status = projects.StatusMuxing
	if err := store.Update(context.Background(), stuck); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	manager := workflow.NewManagerWithRenderer(cfg, store, logging.NewNop(), newFakeRenderer("", nil))
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer manager.Stop()

	failed := waitForStatus(t, store, stuck.ID, projects.StatusFailed)
	if failed.ErrorMessage != projects.DaemonStopReason {
		t.Fatalf("expected daemon stop reason, got %q", failed.ErrorMessage)
	}
}

func TestManagerStartIsExclusive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	manager := workflow.NewManagerWithRenderer(cfg, store, logging.NewNop(), newFakeRenderer("", nil))

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	defer manager.Stop()

	if err := manager.Start(context.Background()); err == nil {
		t.Fatal("expected second Start to fail")
	}
}
