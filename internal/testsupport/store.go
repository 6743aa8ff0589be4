package testsupport

import (
	"testing"

	"lyricsync/internal/config"
	"lyricsync/internal/lyriccache"
)

// MustOpenCache opens a lyriccache.Store for tests and registers cleanup.
func MustOpenCache(t testing.TB, cfg *config.Config) *lyriccache.Store {
	t.Helper()

	store, err := lyriccache.Open(cfg.LyricsCachePath())
	if err != nil {
		t.Fatalf("lyriccache.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
