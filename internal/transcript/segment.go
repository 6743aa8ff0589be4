package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"lyricsync/internal/fileutil"
	"lyricsync/internal/services"
)

// ErrEmpty reports a transcript with no usable segments.
var ErrEmpty = errors.New("transcript has no usable segments")

// Segment is one time-stamped unit of transcribed speech.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcriber converts an audio file into ordered segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]Segment, error)
}

// Sanitize returns a copy of segments stably sorted by start time with empty
// text removed, negative times clamped to zero, and overlaps trimmed so each
// segment ends no later than its successor starts. Whitespace runs inside a
// segment, including stray carriage returns and newlines, collapse to one
// space so they cannot pass for a caption break marker.
func Sanitize(segments []Segment) ([]Segment, error) {
	out := make([]Segment, 0, len(segments))
	for _, seg := range segments {
		seg.Text = strings.Join(strings.Fields(seg.Text), " ")
		if seg.Text == "" {
			continue
		}
		if seg.Start < 0 {
			seg.Start = 0
		}
		if seg.End < seg.Start {
			seg.End = seg.Start
		}
		out = append(out, seg)
	}
	if len(out) == 0 {
		return nil, services.Wrap(services.ErrValidation, "transcribe", "sanitize", "", ErrEmpty)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	for i := 0; i+1 < len(out); i++ {
		if out[i].End > out[i+1].Start {
			out[i].End = out[i+1].Start
		}
	}
	return out, nil
}

// Texts returns the text of each segment in order.
func Texts(segments []Segment) []string {
	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
	}
	return texts
}

// Clone returns an independent copy of segments.
func Clone(segments []Segment) []Segment {
	if segments == nil {
		return nil
	}
	return append([]Segment(nil), segments...)
}

type filePayload struct {
	Segments []Segment `json:"segments"`
}

// Load reads segments from path. Both the WhisperX {"segments": [...]} shape
// and a bare JSON array are accepted.
func Load(path string) ([]Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var segments []Segment
		if err := json.Unmarshal(data, &segments); err != nil {
			return nil, services.Wrap(services.ErrValidation, "transcribe", "parse transcript", path, err)
		}
		return segments, nil
	}
	var payload filePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, services.Wrap(services.ErrValidation, "transcribe", "parse transcript", path, err)
	}
	return payload.Segments, nil
}

// Save writes segments to path in the WhisperX-compatible object shape.
func Save(path string, segments []Segment) error {
	if segments == nil {
		segments = []Segment{}
	}
	if err := fileutil.WriteJSON(path, filePayload{Segments: segments}); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}
