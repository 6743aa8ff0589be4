package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	JobsDir  string `toml:"jobs_dir"`
	LogDir   string `toml:"log_dir"`
	CacheDir string `toml:"cache_dir"`
}

// Lyrics contains configuration for reference lyric providers.
type Lyrics struct {
	GeniusBaseURL           string  `toml:"genius_base_url"`
	GeniusToken             string  `toml:"genius_token"`
	AZLyricsBaseURL         string  `toml:"azlyrics_base_url"`
	UserAgent               string  `toml:"user_agent"`
	MinConfidence           float64 `toml:"min_confidence"`
	RateLimitBackoffSeconds int     `toml:"rate_limit_backoff_seconds"`
	RateLimitRetries        int     `toml:"rate_limit_retries"`
	TimeoutSeconds          int     `toml:"timeout_seconds"`
	RequestsPerSecond       float64 `toml:"requests_per_second"`
	CacheEnabled            bool    `toml:"cache_enabled"`
}

// Alignment contains configuration for transcript-to-reference alignment.
type Alignment struct {
	AnchorSegments int     `toml:"anchor_segments"`
	MinRatio       float64 `toml:"min_ratio"`
}

// Captions contains configuration for caption reflow.
type Captions struct {
	MaxChars    int    `toml:"max_chars"`
	BreakMarker string `toml:"break_marker"`
}

// Beats contains configuration for beat tracking.
type Beats struct {
	FrameSize int     `toml:"frame_size"`
	HopSize   int     `toml:"hop_size"`
	MinBPM    float64 `toml:"min_bpm"`
	MaxBPM    float64 `toml:"max_bpm"`
	Tightness float64 `toml:"tightness"`
}

// Transcription contains configuration for the WhisperX collaborator.
type Transcription struct {
	WhisperXModel string `toml:"whisperx_model"`
	CUDAEnabled   bool   `toml:"cuda_enabled"`
	VADMethod     string `toml:"vad_method"`
	HFToken       string `toml:"hf_token"`
	Language      string `toml:"language"`
}

// Media contains configuration for download, trimming, and cover art.
type Media struct {
	ClipStartSeconds    float64 `toml:"clip_start_seconds"`
	ClipDurationSeconds float64 `toml:"clip_duration_seconds"`
	CoverSize           int     `toml:"cover_size"`
	PaletteColors       int     `toml:"palette_colors"`
}

// Jobs contains configuration for the batch runner.
type Jobs struct {
	MaxConcurrent int `toml:"max_concurrent"`
}

// Metrics contains configuration for the Prometheus textfile export.
type Metrics struct {
	Textfile string `toml:"textfile"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	MaxSizeMB     int    `toml:"max_size_mb"`
	MaxBackups    int    `toml:"max_backups"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for lyricsync.
//
// Configuration sections by subsystem:
//   - Paths: job, log, and cache directories
//   - Lyrics: reference lyric providers, retry and confidence knobs
//   - Alignment: anchor size and minimum similarity
//   - Captions: display width budget and line-break marker
//   - Beats: onset analysis and tempo search range
//   - Transcription: WhisperX model and device settings
//   - Media: clip window and cover art layout
//   - Jobs: batch concurrency
//   - Metrics: Prometheus textfile output
//   - Logging: log format, level, and rotation
type Config struct {
	Paths         Paths         `toml:"paths"`
	Lyrics        Lyrics        `toml:"lyrics"`
	Alignment     Alignment     `toml:"alignment"`
	Captions      Captions      `toml:"captions"`
	Beats         Beats         `toml:"beats"`
	Transcription Transcription `toml:"transcription"`
	Media         Media         `toml:"media"`
	Jobs          Jobs          `toml:"jobs"`
	Metrics       Metrics       `toml:"metrics"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/lyricsync/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
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

	loadDotEnv(resolvedPath)

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadDotEnv reads .env files from the working directory and next to the
// config file. Existing environment variables win.
func loadDotEnv(configPath string) {
	candidates := []string{".env"}
	if configPath != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(configPath), ".env"))
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err != nil || info.IsDir() {
			continue
		}
		_ = godotenv.Load(candidate)
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

	projectPath, err := filepath.Abs("lyricsync.toml")
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

// EnsureDirectories creates the directories the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.JobsDir, c.Paths.LogDir, c.Paths.CacheDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for trimming.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for duration probes.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// YTDLPBinary returns the yt-dlp executable name used for audio downloads.
func (c *Config) YTDLPBinary() string {
	return "yt-dlp"
}

// LyricsCachePath returns the SQLite database used for reference text caching.
func (c *Config) LyricsCachePath() string {
	return filepath.Join(c.Paths.CacheDir, "lyrics.db")
}

// LyricsTimeout returns the per-request timeout for lyric providers.
func (c *Config) LyricsTimeout() time.Duration {
	return time.Duration(c.Lyrics.TimeoutSeconds) * time.Second
}

// RateLimitBackoff returns the fixed sleep applied after a rate-limit response.
func (c *Config) RateLimitBackoff() time.Duration {
	return time.Duration(c.Lyrics.RateLimitBackoffSeconds) * time.Second
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
