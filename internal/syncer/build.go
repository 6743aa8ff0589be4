package syncer

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"lyricsync/internal/align"
	"lyricsync/internal/config"
	"lyricsync/internal/logging"
	"lyricsync/internal/lyriccache"
	"lyricsync/internal/lyrics"
	"lyricsync/internal/lyrics/azlyrics"
	"lyricsync/internal/lyrics/genius"
	"lyricsync/internal/metrics"
)

// NewResolver builds the provider chain from configuration: Genius first
// when a token is configured, then AZLyrics.
func NewResolver(cfg *config.Config, logger *slog.Logger) (*lyrics.Resolver, error) {
	httpClient := &http.Client{Timeout: cfg.LyricsTimeout()}
	var providers []lyrics.Provider

	if strings.TrimSpace(cfg.Lyrics.GeniusToken) != "" {
		client, err := genius.New(genius.Config{
			Token:             cfg.Lyrics.GeniusToken,
			BaseURL:           cfg.Lyrics.GeniusBaseURL,
			UserAgent:         cfg.Lyrics.UserAgent,
			MinConfidence:     cfg.Lyrics.MinConfidence,
			RequestsPerSecond: cfg.Lyrics.RequestsPerSecond,
			HTTPClient:        httpClient,
		})
		if err != nil {
			return nil, fmt.Errorf("genius provider: %w", err)
		}
		providers = append(providers, client)
	} else if logger != nil {
		logger.Info("genius provider disabled",
			logging.String("reason", "no access token"),
			logging.ErrorHint("set lyrics.genius_token or GENIUS_ACCESS_TOKEN"),
		)
	}

	az, err := azlyrics.New(azlyrics.Config{
		BaseURL:           cfg.Lyrics.AZLyricsBaseURL,
		UserAgent:         cfg.Lyrics.UserAgent,
		RequestsPerSecond: cfg.Lyrics.RequestsPerSecond,
		HTTPClient:        httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("azlyrics provider: %w", err)
	}
	providers = append(providers, az)

	return lyrics.NewResolver(lyrics.ResolverOptions{
		Backoff: cfg.RateLimitBackoff(),
		Retries: cfg.Lyrics.RateLimitRetries,
		Logger:  logger,
	}, providers...), nil
}

// NewFromConfig wires a Service from configuration. The returned close
// function releases the lyric cache and is always non-nil.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*Service, func() error, error) {
	resolver, err := NewResolver(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	opts := Options{
		Aligner:  align.NewAnchorAligner(cfg.Alignment.AnchorSegments, cfg.Alignment.MinRatio, logger),
		Resolver: resolver,
		Metrics:  recorder,
		Logger:   logger,
		MaxChars: cfg.Captions.MaxChars,
		Marker:   cfg.Captions.BreakMarker,
	}
	closeFn := func() error { return nil }
	if cfg.Lyrics.CacheEnabled {
		store, err := lyriccache.Open(cfg.LyricsCachePath())
		if err != nil {
			return nil, nil, fmt.Errorf("open lyric cache: %w", err)
		}
		opts.Cache = store
		closeFn = store.Close
	}
	return New(opts), closeFn, nil
}
