package projects

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"storyreel/internal/captions"
)

// Status represents the lifecycle of a project.
type Status string

const (
	// StatusDraft covers the preparation steps before a render is requested.
	StatusDraft Status = "draft"
	// StatusPending marks a project whose render has been requested but not picked up.
	StatusPending Status = "pending"
	// StatusProcessingClips through StatusMuxing are the in-flight render stages.
	StatusProcessingClips Status = "processing_clips"
	StatusConcatenating   Status = "concatenating"
	StatusSubtitling      Status = "subtitling"
	StatusMuxing          Status = "muxing"
	StatusCompleted       Status = "completed"
	StatusFailed          Status = "failed"
)

// DaemonStopReason is the error message set when renders are failed due to daemon shutdown.
const DaemonStopReason = "Daemon stopped"

var allStatuses = []Status{
	StatusDraft,
	StatusPending,
	StatusProcessingClips,
	StatusConcatenating,
	StatusSubtitling,
	StatusMuxing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var renderingStatuses = map[Status]struct{}{
	StatusProcessingClips: {},
	StatusConcatenating:   {},
	StatusSubtitling:      {},
	StatusMuxing:          {},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsRenderingStatus reports whether a status reflects an in-flight render stage.
func IsRenderingStatus(status Status) bool {
	_, ok := renderingStatuses[status]
	return ok
}

// IsTerminal reports whether a status ends the render lifecycle.
func IsTerminal(status Status) bool {
	return status == StatusCompleted || status == StatusFailed
}

// ClipRef identifies the stock video chosen for a section.
type ClipRef struct {
	ID     int64  `json:"id"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Candidate is one stock search result offered for a section.
type Candidate struct {
	ID       int64   `json:"id"`
	URL      string  `json:"url"`
	Image    string  `json:"image"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Duration float64 `json:"duration"`
	FileURL  string  `json:"file_url"`
}

// Section is a contiguous range of the narration assigned one stock clip.
type Section struct {
	Text        string      `json:"section_text"`
	SearchQuery string      `json:"search_query"`
	StartTime   float64     `json:"start_time"`
	EndTime     float64     `json:"end_time"`
	Duration    float64     `json:"duration"`
	Selected    *ClipRef    `json:"selected_clip"`
	Candidates  []Candidate `json:"candidates,omitempty"`
}

// AllSectionsSelected reports whether every section has a chosen clip, the
// precondition for requesting a render.
func AllSectionsSelected(sections []Section) bool {
	if len(sections) == 0 {
		return false
	}
	for _, section := range sections {
		if section.Selected == nil {
			return false
		}
	}
	return true
}

// Project represents a video project persisted in SQLite.
type Project struct {
	ID              string
	Title           string
	LanguageCode    string
	CurrentStep     int
	Status          Status
	IdeaText        string
	ScriptText      string
	AudioFilePath   string
	CaptionsJSON    string
	SectionsJSON    string
	FinalVideoPath  string
	ErrorMessage    string
	ProgressStage   string
	ProgressMessage string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsRendering returns true when the project is inside an in-flight render stage.
func (p Project) IsRendering() bool {
	return IsRenderingStatus(p.Status)
}

// SetFailed marks the project as failed with the given error message.
func (p *Project) SetFailed(message string) {
	p.Status = StatusFailed
	p.ErrorMessage = message
	p.ProgressStage = "Failed"
	p.ProgressMessage = message
}

// Words decodes the persisted word-level captions.
func (p Project) Words() ([]captions.Word, error) {
	if strings.TrimSpace(p.CaptionsJSON) == "" {
		return nil, nil
	}
	var words []captions.Word
	if err := json.Unmarshal([]byte(p.CaptionsJSON), &words); err != nil {
		return nil, fmt.Errorf("decode captions: %w", err)
	}
	return words, nil
}

// SetWords persists word-level captions onto the project record.
func (p *Project) SetWords(words []captions.Word) error {
	encoded, err := json.Marshal(words)
	if err != nil {
		return fmt.Errorf("encode captions: %w", err)
	}
	p.CaptionsJSON = string(encoded)
	return nil
}

// Sections decodes the persisted visual sections.
func (p Project) Sections() ([]Section, error) {
	if strings.TrimSpace(p.SectionsJSON) == "" {
		return nil, nil
	}
	var sections []Section
	if err := json.Unmarshal([]byte(p.SectionsJSON), &sections); err != nil {
		return nil, fmt.Errorf("decode sections: %w", err)
	}
	return sections, nil
}

// SetSections persists visual sections onto the project record.
func (p *Project) SetSections(sections []Section) error {
	encoded, err := json.Marshal(sections)
	if err != nil {
		return fmt.Errorf("encode sections: %w", err)
	}
	p.SectionsJSON = string(encoded)
	return nil
}

var titleCaser = cases.Title(language.English)

// TitleFromIdea derives a short display title from an idea sentence.
func TitleFromIdea(idea string) string {
	idea = strings.TrimSpace(idea)
	if idea == "" {
		return "Untitled Project"
	}
	const maxTitleRunes = 60
	runes := []rune(idea)
	if len(runes) > maxTitleRunes {
		truncated := strings.TrimSpace(string(runes[:maxTitleRunes]))
		if idx := strings.LastIndex(truncated, " "); idx > 0 {
			truncated = truncated[:idx]
		}
		idea = truncated
	}
	return titleCaser.String(strings.TrimSuffix(idea, "."))
}
