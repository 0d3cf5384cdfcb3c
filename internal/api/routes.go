package api

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"storyreel/internal/projects"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/api/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		if cfg.Config.Paths.APIToken != "" {
			r.Use(AuthMiddleware(cfg.Config.Paths.APIToken, cfg.Logger))
		}

		r.Get("/api/projects", listProjectsHandler(cfg))
		r.Get("/api/projects/{id}", getProjectHandler(cfg))
		r.Post("/api/videos/render/{id}", renderHandler(cfg))
		r.Get("/api/videos/download/{id}", downloadHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health, err := cfg.Store.Health(r.Context())
		if err != nil {
			cfg.Logger.Error("health query failed", "error", err)
			WriteError(w, http.StatusInternalServerError, "store unavailable", "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:    "ok",
			Version:   cfg.Version,
			UptimeS:   int64(time.Since(cfg.StartTime).Seconds()),
			Total:     health.Total,
			Pending:   health.Pending,
			Rendering: health.Rendering,
			Completed: health.Completed,
			Failed:    health.Failed,
		})
	}
}

func listProjectsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		statuses, ok := parseStatusFilter(r.URL.Query().Get("status"))
		if !ok {
			WriteError(w, http.StatusBadRequest, "unknown status filter", "BAD_REQUEST")
			return
		}

		list, err := cfg.Store.List(r.Context(), statuses...)
		if err != nil {
			cfg.Logger.Error("failed to list projects", "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to list projects", "INTERNAL_ERROR")
			return
		}

		resp := ProjectsResponse{Projects: make([]ProjectResponse, 0, len(list))}
		for _, project := range list {
			resp.Projects = append(resp.Projects, ProjectToResponse(project))
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, ok := lookupProject(w, r, cfg)
		if !ok {
			return
		}
		WriteJSON(w, http.StatusOK, ProjectToResponse(project))
	}
}

// renderHandler validates that a project is renderable, marks it pending, and
// returns immediately. Progress is observed by polling the project endpoints.
func renderHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, ok := lookupProject(w, r, cfg)
		if !ok {
			return
		}

		if project.Status == projects.StatusPending || project.IsRendering() {
			WriteError(w, http.StatusConflict, "render already in progress", "CONFLICT")
			return
		}

		if message := renderPreconditionError(project); message != "" {
			WriteError(w, http.StatusUnprocessableEntity, message, "NOT_READY")
			return
		}

		project.Status = projects.StatusPending
		project.ErrorMessage = ""
		project.ProgressStage = "Queued"
		project.ProgressMessage = "Waiting for render daemon"
		if err := cfg.Store.Update(r.Context(), project); err != nil {
			cfg.Logger.Error("failed to queue render", "project", project.ID, "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to queue render", "INTERNAL_ERROR")
			return
		}

		cfg.Logger.Info("render queued", "project", project.ID, "title", project.Title)
		WriteJSON(w, http.StatusAccepted, RenderResponse{
			ProjectID: project.ID,
			Status:    string(projects.StatusPending),
		})
	}
}

func downloadHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, ok := lookupProject(w, r, cfg)
		if !ok {
			return
		}

		if project.Status != projects.StatusCompleted || project.FinalVideoPath == "" {
			WriteError(w, http.StatusConflict, "project has no completed video", "NOT_READY")
			return
		}

		if _, err := os.Stat(project.FinalVideoPath); err != nil {
			cfg.Logger.Error("final video missing on disk", "project", project.ID, "path", project.FinalVideoPath)
			WriteError(w, http.StatusNotFound, "final video missing on disk", "NOT_FOUND")
			return
		}

		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", project.DownloadFilename()))
		http.ServeFile(w, r, project.FinalVideoPath)
	}
}

func lookupProject(w http.ResponseWriter, r *http.Request, cfg ServerConfig) (*projects.Project, bool) {
	id := chi.URLParam(r, "id")
	project, err := cfg.Store.GetByID(r.Context(), id)
	if err != nil {
		cfg.Logger.Error("failed to load project", "project", id, "error", err)
		WriteError(w, http.StatusInternalServerError, "failed to load project", "INTERNAL_ERROR")
		return nil, false
	}
	if project == nil {
		WriteError(w, http.StatusNotFound, "project not found", "NOT_FOUND")
		return nil, false
	}
	return project, true
}

// renderPreconditionError returns a human-readable reason the project cannot
// be rendered yet, or "" when all render inputs are present.
func renderPreconditionError(project *projects.Project) string {
	if project.AudioFilePath == "" {
		return "project has no narration audio"
	}
	if _, err := os.Stat(project.AudioFilePath); err != nil {
		return "narration audio missing on disk"
	}

	// Empty captions render fine (no visible cues); only a payload that
	// fails to decode blocks the job.
	if _, err := project.Words(); err != nil {
		return "project captions are malformed"
	}

	sections, err := project.Sections()
	if err != nil {
		return "project sections are malformed"
	}
	if !projects.AllSectionsSelected(sections) {
		return "every section needs a selected clip"
	}
	return ""
}

func parseStatusFilter(raw string) ([]projects.Status, bool) {
	if raw == "" {
		return nil, true
	}
	status, ok := projects.ParseStatus(raw)
	if !ok {
		return nil, false
	}
	return []projects.Status{status}, true
}
