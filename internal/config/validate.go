package config

import (
	"fmt"
	"strings"
)

// Missing clip policies accepted by render.missing_clip_policy.
const (
	MissingClipStrict     = "strict"
	MissingClipBestEffort = "best-effort"
)

// normalize expands path fields and fills defaulted values left empty by the
// config file.
func (c *Config) normalize() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return err
	}
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}

	c.Render.MissingClipPolicy = strings.ToLower(strings.TrimSpace(c.Render.MissingClipPolicy))
	if c.Render.MissingClipPolicy == "" {
		c.Render.MissingClipPolicy = defaultMissingClipPolicy
	}
	if c.Workflow.QueuePollInterval <= 0 {
		c.Workflow.QueuePollInterval = defaultQueuePollInterval
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		c.Workflow.ErrorRetryInterval = defaultErrorRetryInterval
	}
	if c.Transcription.PollIntervalSeconds <= 0 {
		c.Transcription.PollIntervalSeconds = defaultTranscriptionPoll
	}
	if c.Stock.ResultsPer <= 0 {
		c.Stock.ResultsPer = defaultStockResults
	}
	return nil
}

// Validate reports configuration errors that would prevent correct operation.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		return fmt.Errorf("paths.staging_dir is required")
	}
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		return fmt.Errorf("paths.library_dir is required")
	}
	switch c.Render.MissingClipPolicy {
	case MissingClipStrict, MissingClipBestEffort:
	default:
		return fmt.Errorf("render.missing_clip_policy: unsupported value %q (want \"strict\" or \"best-effort\")", c.Render.MissingClipPolicy)
	}
	if c.Render.MinSpeedFactor <= 0 {
		return fmt.Errorf("render.min_speed_factor must be positive")
	}
	if c.Render.MaxSpeedFactor < c.Render.MinSpeedFactor {
		return fmt.Errorf("render.max_speed_factor must be >= render.min_speed_factor")
	}
	if c.Render.VideoCRF < 0 || c.Render.VideoCRF > 51 {
		return fmt.Errorf("render.video_crf must be between 0 and 51")
	}
	return nil
}
