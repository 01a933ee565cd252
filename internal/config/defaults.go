package config

const (
	defaultWorkDir                = "~/.local/share/dubstudio/work"
	defaultLogDir                 = "~/.local/share/dubstudio/logs"
	defaultAPIBind                = "127.0.0.1:7823"
	defaultDeepgramBaseURL        = "https://api.deepgram.com"
	defaultDeepgramModel          = "nova-2"
	defaultDeepgramTimeout        = 120
	defaultTranslationBaseURL     = "https://translate.googleapis.com"
	defaultTranslationTimeout     = 30
	defaultElevenLabsBaseURL      = "https://api.elevenlabs.io/v1"
	defaultElevenLabsModelID      = "eleven_multilingual_v2"
	defaultElevenLabsTimeout      = 60
	defaultVoiceFetchTimeout      = 30
	defaultMaxPrebuiltVoices      = 10
	defaultYtDlpBinary            = "yt-dlp"
	defaultFFmpegBinary           = "ffmpeg"
	defaultDownloadTimeout        = 600
	defaultDownloadRetries        = 3
	defaultStageTimeoutSeconds    = 900
	defaultSessionTimeoutSeconds  = 3600
	defaultNotifyRequestTimeout   = 10
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir: defaultWorkDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Deepgram: Deepgram{
			BaseURL:        defaultDeepgramBaseURL,
			Model:          defaultDeepgramModel,
			TimeoutSeconds: defaultDeepgramTimeout,
		},
		Translation: Translation{
			BaseURL:        defaultTranslationBaseURL,
			TimeoutSeconds: defaultTranslationTimeout,
		},
		ElevenLabs: ElevenLabs{
			BaseURL:           defaultElevenLabsBaseURL,
			ModelID:           defaultElevenLabsModelID,
			TimeoutSeconds:    defaultElevenLabsTimeout,
			VoiceFetchTimeout: defaultVoiceFetchTimeout,
			MaxPrebuiltVoices: defaultMaxPrebuiltVoices,
		},
		Download: Download{
			YtDlpBinary:    defaultYtDlpBinary,
			FFmpegBinary:   defaultFFmpegBinary,
			TimeoutSeconds: defaultDownloadTimeout,
			Retries:        defaultDownloadRetries,
		},
		Workflow: Workflow{
			StageTimeoutSeconds:   defaultStageTimeoutSeconds,
			SessionTimeoutSeconds: defaultSessionTimeoutSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
