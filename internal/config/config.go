package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	LibraryDir string `toml:"library_dir"`
	LogDir     string `toml:"log_dir"`
	APIBind    string `toml:"api_bind"`
	APIToken   string `toml:"api_token"`
}

// LLM contains connection settings for the chat completion API used to
// generate ideas, scripts, and visual section plans.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Transcription contains configuration for the speech-to-text API.
type Transcription struct {
	APIKey              string `toml:"api_key"`
	BaseURL             string `toml:"base_url"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
}

// Stock contains configuration for the stock-footage search API.
type Stock struct {
	APIKey     string `toml:"api_key"`
	BaseURL    string `toml:"base_url"`
	ResultsPer int    `toml:"results_per_section"`
}

// Render contains configuration for the video assembly pipeline.
type Render struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	// MissingClipPolicy controls concatenation behavior when a normalized
	// clip is absent on disk: "strict" fails the render, "best-effort"
	// skips the section and proceeds with fewer clips.
	MissingClipPolicy string  `toml:"missing_clip_policy"`
	MinSpeedFactor    float64 `toml:"min_speed_factor"`
	MaxSpeedFactor    float64 `toml:"max_speed_factor"`
	VideoPreset       string  `toml:"video_preset"`
	VideoCRF          int     `toml:"video_crf"`
	AudioBitrate      string  `toml:"audio_bitrate"`
}

// Notifications contains configuration for ntfy push notifications. Leaving
// the topic empty disables notifications entirely.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Workflow contains configuration for daemon timing and intervals.
type Workflow struct {
	QueuePollInterval  int `toml:"queue_poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for storyreel.
//
// Configuration sections by subsystem:
//   - Paths: staging/library/log directories and API bind address
//   - LLM: chat completion API for ideas, scripts, and section planning
//   - Transcription: speech-to-text API producing word-level captions
//   - Stock: stock-footage search and download API
//   - Render: ffmpeg/ffprobe invocation and encoding constants
//   - Notifications: optional ntfy push on render completion or failure
//   - Workflow: daemon polling intervals
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	LLM           LLM           `toml:"llm"`
	Transcription Transcription `toml:"transcription"`
	Stock         Stock         `toml:"stock"`
	Render        Render        `toml:"render"`
	Notifications Notifications `toml:"notifications"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/storyreel/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized. API keys may be supplied through
// the environment (optionally via a .env file) instead of the config file.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// applyEnvOverrides lets API keys come from the process environment, loading a
// .env file from the working directory first when one exists.
func (c *Config) applyEnvOverrides() {
	_ = godotenv.Load()

	if v := strings.TrimSpace(os.Getenv("STORYREEL_LLM_API_KEY")); v != "" {
		c.LLM.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("STORYREEL_TRANSCRIPTION_API_KEY")); v != "" {
		c.Transcription.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("STORYREEL_STOCK_API_KEY")); v != "" {
		c.Stock.APIKey = v
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("storyreel.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
// LibraryDir is created on a best-effort basis so the daemon can run when
// external storage is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.LibraryDir) != "" {
		_ = os.MkdirAll(c.Paths.LibraryDir, 0o755)
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used for transcode, concat, and mux.
func (c *Config) FFmpegBinary() string {
	if v := strings.TrimSpace(c.Render.FFmpegBinary); v != "" {
		return v
	}
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable used for clip inspection.
func (c *Config) FFprobeBinary() string {
	if v := strings.TrimSpace(c.Render.FFprobeBinary); v != "" {
		return v
	}
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
