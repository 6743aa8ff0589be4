package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLyrics(); err != nil {
		return err
	}
	if err := c.validateAlignment(); err != nil {
		return err
	}
	if err := c.validateCaptions(); err != nil {
		return err
	}
	if err := c.validateBeats(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLyrics() error {
	if c.Lyrics.MinConfidence < 0 || c.Lyrics.MinConfidence > 1 {
		return errors.New("lyrics.min_confidence must be between 0 and 1")
	}
	if c.Lyrics.RateLimitBackoffSeconds < 0 {
		return errors.New("lyrics.rate_limit_backoff_seconds must be non-negative")
	}
	if c.Lyrics.RateLimitRetries < 0 {
		return errors.New("lyrics.rate_limit_retries must be non-negative")
	}
	if c.Lyrics.RequestsPerSecond < 0 {
		return errors.New("lyrics.requests_per_second must be non-negative")
	}
	return ensurePositiveMap(map[string]int{
		"lyrics.timeout_seconds": c.Lyrics.TimeoutSeconds,
	})
}

func (c *Config) validateAlignment() error {
	if c.Alignment.MinRatio < 0 || c.Alignment.MinRatio > 1 {
		return errors.New("alignment.min_ratio must be between 0 and 1")
	}
	return ensurePositiveMap(map[string]int{
		"alignment.anchor_segments": c.Alignment.AnchorSegments,
	})
}

func (c *Config) validateCaptions() error {
	return ensurePositiveMap(map[string]int{
		"captions.max_chars": c.Captions.MaxChars,
	})
}

func (c *Config) validateBeats() error {
	if err := ensurePositiveMap(map[string]int{
		"beats.frame_size": c.Beats.FrameSize,
		"beats.hop_size":   c.Beats.HopSize,
	}); err != nil {
		return err
	}
	if c.Beats.HopSize > c.Beats.FrameSize {
		return errors.New("beats.hop_size must not exceed beats.frame_size")
	}
	if c.Beats.MinBPM <= 0 || c.Beats.MaxBPM <= c.Beats.MinBPM {
		return fmt.Errorf("beats tempo range invalid: min_bpm=%v max_bpm=%v", c.Beats.MinBPM, c.Beats.MaxBPM)
	}
	if c.Beats.Tightness <= 0 {
		return errors.New("beats.tightness must be positive")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.VADMethod {
	case "silero", "pyannote":
	default:
		return fmt.Errorf("transcription.vad_method must be silero or pyannote, got %q", c.Transcription.VADMethod)
	}
	if c.Transcription.VADMethod == "pyannote" && c.Transcription.HFToken == "" {
		return errors.New("transcription.hf_token is required when vad_method is pyannote. Set HF_TOKEN env var or edit the config")
	}
	return nil
}

func (c *Config) validateMedia() error {
	if c.Media.ClipStartSeconds < 0 {
		return errors.New("media.clip_start_seconds must be non-negative")
	}
	if c.Media.ClipDurationSeconds <= 0 {
		return errors.New("media.clip_duration_seconds must be positive")
	}
	return ensurePositiveMap(map[string]int{
		"media.cover_size":     c.Media.CoverSize,
		"media.palette_colors": c.Media.PaletteColors,
		"jobs.max_concurrent":  c.Jobs.MaxConcurrent,
	})
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not recognised", c.Logging.Level)
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 || c.Logging.RetentionDays < 0 {
		return errors.New("logging rotation values must be non-negative")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
