package azlyrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"lyricsync/internal/lyrics"
)

func TestPageURL(t *testing.T) {
	client, err := New(Config{BaseURL: "https://example.com"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tests := []struct {
		song lyrics.SongID
		want string
	}{
		{lyrics.SongID{Artist: "The Beatles", Title: "Let It Be"}, "https://example.com/lyrics/beatles/letitbe.html"},
		{lyrics.SongID{Artist: "Theory of a Deadman", Title: "Bad Girlfriend"}, "https://example.com/lyrics/theoryofadeadman/badgirlfriend.html"},
		{lyrics.SongID{Artist: "AC/DC", Title: "T.N.T."}, "https://example.com/lyrics/acdc/tnt.html"},
		{lyrics.SongID{Artist: "Simon & Garfunkel", Title: "The Sound of Silence"}, "https://example.com/lyrics/simongarfunkel/thesoundofsilence.html"},
	}
	for _, tt := range tests {
		got, err := client.PageURL(tt.song)
		if err != nil {
			t.Fatalf("PageURL(%v): %v", tt.song, err)
		}
		if got != tt.want {
			t.Fatalf("PageURL(%v) = %q, want %q", tt.song, got, tt.want)
		}
	}
	if _, err := client.PageURL(lyrics.SongID{Title: "Orphan"}); !errors.Is(err, lyrics.ErrTryNext) {
		t.Fatalf("expected decline without artist, got %v", err)
	}
}

func TestLookupExtractsLyricsBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lyrics/simongarfunkel/thesoundofsilence.html" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, `<html><body><div class="ringtone">Play</div>
<div><!-- Usage of azlyrics.com content by any third-party lyrics provider is prohibited. -->
Hello darkness, my old friend<br>
I&#39;ve come to talk with you again<br>
</div><div class="noprint">Submit Corrections</div></body></html>`)
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := client.Lookup(context.Background(), lyrics.SongID{Artist: "Simon & Garfunkel", Title: "The Sound of Silence"})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	want := "Hello darkness, my old friend\nI've come to talk with you again"
	if result.Text != want {
		t.Fatalf("unexpected text %q", result.Text)
	}
	if result.Source != "azlyrics" {
		t.Fatalf("unexpected source %q", result.Source)
	}
}

func TestLookupStatusMapping(t *testing.T) {
	for _, tc := range []struct {
		status      int
		rateLimited bool
	}{
		{http.StatusNotFound, false},
		{http.StatusTooManyRequests, true},
	} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		client, err := New(Config{BaseURL: server.URL})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		_, err = client.Lookup(context.Background(), lyrics.SongID{Artist: "A", Title: "B"})
		server.Close()
		if !errors.Is(err, lyrics.ErrTryNext) {
			t.Fatalf("status %d: expected ErrTryNext, got %v", tc.status, err)
		}
		if got := errors.Is(err, lyrics.ErrRateLimited); got != tc.rateLimited {
			t.Fatalf("status %d: rate limited = %v, want %v", tc.status, got, tc.rateLimited)
		}
	}
}
