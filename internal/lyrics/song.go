package lyrics

import (
	"strings"

	"lyricsync/internal/textutil"
)

// SongID identifies a song by artist and title. Artist may be empty.
type SongID struct {
	Artist string
	Title  string
}

// ParseSongID splits "Artist - Title". Input without the separator is treated
// as a bare title.
func ParseSongID(value string) SongID {
	value = strings.TrimSpace(value)
	if artist, title, ok := strings.Cut(value, " - "); ok {
		return SongID{Artist: strings.TrimSpace(artist), Title: strings.TrimSpace(title)}
	}
	return SongID{Title: value}
}

// String renders the id back into "Artist - Title" form.
func (s SongID) String() string {
	if s.Artist == "" {
		return s.Title
	}
	return s.Artist + " - " + s.Title
}

// Empty reports whether the id carries no title.
func (s SongID) Empty() bool {
	return strings.TrimSpace(s.Title) == ""
}

// Key returns a stable cache key that ignores case, punctuation, and diacritics.
func (s SongID) Key() string {
	return textutil.NormalizeJoined(s.Artist) + "|" + textutil.NormalizeJoined(s.Title)
}

// Query returns the free-text search string for providers.
func (s SongID) Query() string {
	return strings.TrimSpace(s.Title + " " + s.Artist)
}
