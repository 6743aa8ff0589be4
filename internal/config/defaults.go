package config

const (
	defaultJobsDir                 = "~/lyricsync/jobs"
	defaultLogDir                  = "~/.local/share/lyricsync/logs"
	defaultCacheDir                = "~/.cache/lyricsync"
	defaultGeniusBaseURL           = "https://api.genius.com"
	defaultAZLyricsBaseURL         = "https://www.azlyrics.com"
	defaultLyricsUserAgent         = "lyricsync/dev"
	defaultMinConfidence           = 0.35
	defaultRateLimitBackoffSeconds = 5
	defaultRateLimitRetries        = 1
	defaultLyricsTimeoutSeconds    = 15
	defaultRequestsPerSecond       = 1.0
	defaultAnchorSegments          = 3
	defaultMinRatio                = 0.4
	defaultMaxChars                = 24
	defaultBreakMarker             = "\r"
	defaultFrameSize               = 2048
	defaultHopSize                 = 512
	defaultMinBPM                  = 60
	defaultMaxBPM                  = 200
	defaultTightness               = 100
	defaultWhisperXModel           = "large-v3"
	defaultVADMethod               = "silero"
	defaultTranscriptionLanguage   = "en"
	defaultClipDurationSeconds     = 30
	defaultCoverSize               = 700
	defaultPaletteColors           = 2
	defaultMaxConcurrentJobs       = 2
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
	defaultLogMaxSizeMB            = 50
	defaultLogMaxBackups           = 5
	defaultLogRetentionDays        = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			JobsDir:  defaultJobsDir,
			LogDir:   defaultLogDir,
			CacheDir: defaultCacheDir,
		},
		Lyrics: Lyrics{
			GeniusBaseURL:           defaultGeniusBaseURL,
			AZLyricsBaseURL:         defaultAZLyricsBaseURL,
			UserAgent:               defaultLyricsUserAgent,
			MinConfidence:           defaultMinConfidence,
			RateLimitBackoffSeconds: defaultRateLimitBackoffSeconds,
			RateLimitRetries:        defaultRateLimitRetries,
			TimeoutSeconds:          defaultLyricsTimeoutSeconds,
			RequestsPerSecond:       defaultRequestsPerSecond,
			CacheEnabled:            true,
		},
		Alignment: Alignment{
			AnchorSegments: defaultAnchorSegments,
			MinRatio:       defaultMinRatio,
		},
		Captions: Captions{
			MaxChars:    defaultMaxChars,
			BreakMarker: defaultBreakMarker,
		},
		Beats: Beats{
			FrameSize: defaultFrameSize,
			HopSize:   defaultHopSize,
			MinBPM:    defaultMinBPM,
			MaxBPM:    defaultMaxBPM,
			Tightness: defaultTightness,
		},
		Transcription: Transcription{
			WhisperXModel: defaultWhisperXModel,
			VADMethod:     defaultVADMethod,
			Language:      defaultTranscriptionLanguage,
		},
		Media: Media{
			ClipDurationSeconds: defaultClipDurationSeconds,
			CoverSize:           defaultCoverSize,
			PaletteColors:       defaultPaletteColors,
		},
		Jobs: Jobs{
			MaxConcurrent: defaultMaxConcurrentJobs,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			MaxSizeMB:     defaultLogMaxSizeMB,
			MaxBackups:    defaultLogMaxBackups,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
