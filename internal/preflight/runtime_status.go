package preflight

import (
	"context"
	"fmt"
	"os"
	"strings"

	"lyricsync/internal/config"
	"lyricsync/internal/lyriccache"
)

// CheckGeniusFromConfig evaluates Genius status from config and connectivity.
func CheckGeniusFromConfig(ctx context.Context, cfg *config.Config) Result {
	const name = "Genius"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if strings.TrimSpace(cfg.Lyrics.GeniusToken) == "" {
		return Result{Name: name, Passed: true, Detail: "Disabled (no access token)"}
	}
	return CheckGenius(ctx, cfg.Lyrics.GeniusBaseURL, cfg.Lyrics.GeniusToken, cfg.Lyrics.UserAgent)
}

// CheckAZLyricsFromConfig evaluates AZLyrics status from config and connectivity.
func CheckAZLyricsFromConfig(ctx context.Context, cfg *config.Config) Result {
	const name = "AZLyrics"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	return CheckAZLyrics(ctx, cfg.Lyrics.AZLyricsBaseURL, cfg.Lyrics.UserAgent)
}

// CheckLyricCache reports the reference text cache state without creating it.
func CheckLyricCache(ctx context.Context, cfg *config.Config) Result {
	const name = "Lyric cache"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if !cfg.Lyrics.CacheEnabled {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	path := cfg.LyricsCachePath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (not created yet)", path)}
	}
	store, err := lyriccache.Open(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer store.Close()

	stats, err := store.Stats(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d entries)", path, stats.Entries)}
}
