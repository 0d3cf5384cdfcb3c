package projects

import (
	"fmt"
	"path/filepath"
	"strings"

	"storyreel/internal/textutil"
)

// StagingRoot returns the project-scoped directory under the staging area.
func (p Project) StagingRoot(stagingDir string) string {
	return filepath.Join(stagingDir, p.ID)
}

// AudioDir holds the uploaded narration audio for the project.
func (p Project) AudioDir(stagingDir string) string {
	return filepath.Join(p.StagingRoot(stagingDir), "audio")
}

// VisualsDir holds the downloaded stock clips for the project.
func (p Project) VisualsDir(stagingDir string) string {
	return filepath.Join(p.StagingRoot(stagingDir), "visuals")
}

// RenderDir is the scratch workspace for one render invocation.
func (p Project) RenderDir(stagingDir string) string {
	return filepath.Join(p.StagingRoot(stagingDir), "render")
}

// ClipSourcePath resolves a downloaded clip file from its stock identifier.
func (p Project) ClipSourcePath(stagingDir string, clipID int64) string {
	return filepath.Join(p.VisualsDir(stagingDir), fmt.Sprintf("%d.mp4", clipID))
}

// FinalOutputPath is where the deliverable for the project lands.
func (p Project) FinalOutputPath(libraryDir string) string {
	return filepath.Join(libraryDir, p.ID, "video.mp4")
}

// DownloadFilename builds a safe attachment filename from the project title.
func (p Project) DownloadFilename() string {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		title = p.ID
	}
	return textutil.SanitizeToken(title) + ".mp4"
}
