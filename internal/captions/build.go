package captions

import (
	"encoding/json"
	"fmt"
	"os"

	"lyricsync/internal/fileutil"
	"lyricsync/internal/transcript"
)

// Line is one caption entry in the persisted lyric sequence.
type Line struct {
	T       float64 `json:"t"`
	Prev    string  `json:"lyric_prev"`
	Current string  `json:"lyric_current"`
	Next1   string  `json:"lyric_next1"`
	Next2   string  `json:"lyric_next2"`
}

// Options controls caption building.
type Options struct {
	// MaxChars is the per-line width budget; <= 0 disables wrapping.
	MaxChars int
	// Marker is inserted between wrapped lines.
	Marker string
	// Duration clamps timestamps into [0, Duration] when positive.
	Duration float64
}

// Build maps segments to caption lines in order. Each line starts at its
// segment's start time and carries the wrapped text of its neighbours.
// Timestamps are clamped to the clip and never decrease.
func Build(segments []transcript.Segment, opts Options) []Line {
	current := make([]string, len(segments))
	for i, seg := range segments {
		current[i] = Wrap(seg.Text, opts.MaxChars, opts.Marker)
	}

	lines := make([]Line, len(segments))
	last := 0.0
	for i, seg := range segments {
		t := seg.Start
		if t < 0 {
			t = 0
		}
		if opts.Duration > 0 && t > opts.Duration {
			t = opts.Duration
		}
		if t < last {
			t = last
		}
		last = t
		lines[i] = Line{
			T:       t,
			Prev:    at(current, i-1),
			Current: current[i],
			Next1:   at(current, i+1),
			Next2:   at(current, i+2),
		}
	}
	return lines
}

func at(values []string, i int) string {
	if i < 0 || i >= len(values) {
		return ""
	}
	return values[i]
}

// WriteFile persists lines as a JSON array.
func WriteFile(path string, lines []Line) error {
	if lines == nil {
		lines = []Line{}
	}
	if err := fileutil.WriteJSON(path, lines); err != nil {
		return fmt.Errorf("write captions: %w", err)
	}
	return nil
}

// ReadFile loads a caption sequence written by WriteFile.
func ReadFile(path string) ([]Line, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read captions: %w", err)
	}
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("parse captions %s: %w", path, err)
	}
	return lines, nil
}
