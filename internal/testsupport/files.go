package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"lyricsync/internal/transcript"
)

// WriteText writes content to path, creating parent directories.
func WriteText(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteTranscript persists segments as a transcript JSON file.
func WriteTranscript(t testing.TB, path string, segments []transcript.Segment) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := transcript.Save(path, segments); err != nil {
		t.Fatalf("save transcript %s: %v", path, err)
	}
}

// Segments builds transcript segments one second apart from texts.
func Segments(texts ...string) []transcript.Segment {
	out := make([]transcript.Segment, len(texts))
	for i, text := range texts {
		out[i] = transcript.Segment{Start: float64(i), End: float64(i) + 0.9, Text: text}
	}
	return out
}
