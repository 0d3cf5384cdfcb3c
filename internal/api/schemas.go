package api

import (
	"time"

	"storyreel/internal/projects"
)

type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	UptimeS   int64  `json:"uptime_s"`
	Total     int    `json:"projects_total"`
	Pending   int    `json:"projects_pending"`
	Rendering int    `json:"projects_rendering"`
	Completed int    `json:"projects_completed"`
	Failed    int    `json:"projects_failed"`
}

type ProjectResponse struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	LanguageCode    string `json:"language_code"`
	CurrentStep     int    `json:"current_step"`
	Status          string `json:"status"`
	HasAudio        bool   `json:"has_audio"`
	HasCaptions     bool   `json:"has_captions"`
	SectionCount    int    `json:"section_count"`
	SelectedCount   int    `json:"selected_count"`
	FinalVideoPath  string `json:"final_video_path,omitempty"`
	ErrorMessage    string `json:"error_message,omitempty"`
	ProgressStage   string `json:"progress_stage,omitempty"`
	ProgressMessage string `json:"progress_message,omitempty"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

type ProjectsResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

type RenderResponse struct {
	ProjectID string `json:"project_id"`
	Status    string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func ProjectToResponse(p *projects.Project) ProjectResponse {
	sections, _ := p.Sections()
	selected := 0
	for _, section := range sections {
		if section.Selected != nil {
			selected++
		}
	}
	return ProjectResponse{
		ID:              p.ID,
		Title:           p.Title,
		LanguageCode:    p.LanguageCode,
		CurrentStep:     p.CurrentStep,
		Status:          string(p.Status),
		HasAudio:        p.AudioFilePath != "",
		HasCaptions:     p.CaptionsJSON != "",
		SectionCount:    len(sections),
		SelectedCount:   selected,
		FinalVideoPath:  p.FinalVideoPath,
		ErrorMessage:    p.ErrorMessage,
		ProgressStage:   p.ProgressStage,
		ProgressMessage: p.ProgressMessage,
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       p.UpdatedAt.Format(time.RFC3339),
	}
}
