package config

const (
	defaultStagingDir         = "~/.local/share/storyreel/staging"
	defaultLibraryDir         = "~/videos/storyreel"
	defaultLogDir             = "~/.local/share/storyreel/logs"
	defaultAPIBind            = "127.0.0.1:7519"
	defaultLLMBaseURL         = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel           = "google/gemini-3-flash-preview"
	defaultLLMReferer         = "https://github.com/storyreel/storyreel"
	defaultLLMTitle           = "Storyreel"
	defaultLLMTimeoutSeconds  = 120
	defaultTranscriptionURL   = "https://api.assemblyai.com"
	defaultTranscriptionPoll  = 3
	defaultStockBaseURL       = "https://api.pexels.com/videos"
	defaultStockResults       = 5
	defaultMissingClipPolicy  = "strict"
	defaultMinSpeedFactor     = 0.5
	defaultMaxSpeedFactor     = 2.0
	defaultVideoPreset        = "medium"
	defaultVideoCRF           = 23
	defaultAudioBitrate       = "192k"
	defaultNtfyTimeoutSeconds = 10
	defaultQueuePollInterval  = 5
	defaultErrorRetryInterval = 30
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LibraryDir: defaultLibraryDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Transcription: Transcription{
			BaseURL:             defaultTranscriptionURL,
			PollIntervalSeconds: defaultTranscriptionPoll,
		},
		Stock: Stock{
			BaseURL:    defaultStockBaseURL,
			ResultsPer: defaultStockResults,
		},
		Render: Render{
			MissingClipPolicy: defaultMissingClipPolicy,
			MinSpeedFactor:    defaultMinSpeedFactor,
			MaxSpeedFactor:    defaultMaxSpeedFactor,
			VideoPreset:       defaultVideoPreset,
			VideoCRF:          defaultVideoCRF,
			AudioBitrate:      defaultAudioBitrate,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeoutSeconds,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
