package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLyrics()
	c.normalizeCaptions()
	c.normalizeTranscription()
	if err := c.normalizeMetrics(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.JobsDir) == "" {
		c.Paths.JobsDir = defaultJobsDir
	}
	if c.Paths.JobsDir, err = expandPath(c.Paths.JobsDir); err != nil {
		return fmt.Errorf("paths.jobs_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLyrics() {
	if c.Lyrics.GeniusToken == "" {
		if value, ok := os.LookupEnv("GENIUS_ACCESS_TOKEN"); ok {
			c.Lyrics.GeniusToken = strings.TrimSpace(value)
		}
	}
	c.Lyrics.GeniusBaseURL = strings.TrimRight(strings.TrimSpace(c.Lyrics.GeniusBaseURL), "/")
	if c.Lyrics.GeniusBaseURL == "" {
		c.Lyrics.GeniusBaseURL = defaultGeniusBaseURL
	}
	c.Lyrics.AZLyricsBaseURL = strings.TrimRight(strings.TrimSpace(c.Lyrics.AZLyricsBaseURL), "/")
	if c.Lyrics.AZLyricsBaseURL == "" {
		c.Lyrics.AZLyricsBaseURL = defaultAZLyricsBaseURL
	}
	c.Lyrics.UserAgent = strings.TrimSpace(c.Lyrics.UserAgent)
	if c.Lyrics.UserAgent == "" {
		c.Lyrics.UserAgent = defaultLyricsUserAgent
	}
}

func (c *Config) normalizeCaptions() {
	if c.Captions.BreakMarker == "" {
		c.Captions.BreakMarker = defaultBreakMarker
	}
}

func (c *Config) normalizeTranscription() {
	if c.Transcription.HFToken == "" {
		if value, ok := os.LookupEnv("HF_TOKEN"); ok {
			c.Transcription.HFToken = strings.TrimSpace(value)
		}
	}
	c.Transcription.WhisperXModel = strings.TrimSpace(c.Transcription.WhisperXModel)
	if c.Transcription.WhisperXModel == "" {
		c.Transcription.WhisperXModel = defaultWhisperXModel
	}
	c.Transcription.VADMethod = strings.ToLower(strings.TrimSpace(c.Transcription.VADMethod))
	if c.Transcription.VADMethod == "" {
		c.Transcription.VADMethod = defaultVADMethod
	}
	c.Transcription.Language = strings.ToLower(strings.TrimSpace(c.Transcription.Language))
}

func (c *Config) normalizeMetrics() error {
	c.Metrics.Textfile = strings.TrimSpace(c.Metrics.Textfile)
	if c.Metrics.Textfile == "" {
		return nil
	}
	var err error
	if c.Metrics.Textfile, err = expandPath(c.Metrics.Textfile); err != nil {
		return fmt.Errorf("metrics.textfile: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
