package preflight

import (
	"context"
	"fmt"
	"strings"

	"storyreel/internal/config"
	"storyreel/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(_ context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir))
	if cfg.Paths.LibraryDir != "" {
		results = append(results, CheckDirectoryAccess("Library directory", cfg.Paths.LibraryDir))
	}
	results = append(results, CheckFreeSpace("Staging free space", cfg.Paths.StagingDir, minimumStagingBytes))

	for _, status := range CheckSystemDeps(cfg) {
		result := Result{Name: status.Name, Passed: status.Available, Detail: status.Detail}
		if status.Available {
			result.Detail = fmt.Sprintf("%s found", status.Command)
		}
		results = append(results, result)
	}

	results = append(results, checkCredential("LLM API key", cfg.LLM.APIKey))
	results = append(results, checkCredential("Transcription API key", cfg.Transcription.APIKey))
	results = append(results, checkCredential("Stock footage API key", cfg.Stock.APIKey))

	return results
}

// CheckSystemDeps evaluates the external binaries the render pipeline needs.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries([]deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for clip normalization, concatenation, and muxing",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for clip duration probing",
		},
	})
}

// AllPassed reports whether every result succeeded.
func AllPassed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}

func checkCredential(name, value string) Result {
	if strings.TrimSpace(value) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	return Result{Name: name, Passed: true, Detail: "configured"}
}
