package transcript

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"lyricsync/internal/services"
)

func TestSanitizeOrdersAndTrims(t *testing.T) {
	input := []Segment{
		{Start: 4, End: 6, Text: "third"},
		{Start: 1, End: 3.5, Text: "first"},
		{Start: 2, End: 2.5, Text: "   "},
		{Start: 3, End: 4.5, Text: " second "},
		{Start: -1, End: -2, Text: "zero"},
	}
	original := Clone(input)

	got, err := Sanitize(input)
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	want := []Segment{
		{Start: 0, End: 0, Text: "zero"},
		{Start: 1, End: 3, Text: "first"},
		{Start: 3, End: 4, Text: "second"},
		{Start: 4, End: 6, Text: "third"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Sanitize = %+v, want %+v", got, want)
	}
	if !reflect.DeepEqual(input, original) {
		t.Fatalf("input mutated: %+v", input)
	}
}

func TestSanitizeKeepsStableOrderForEqualStarts(t *testing.T) {
	got, err := Sanitize([]Segment{
		{Start: 1, End: 1, Text: "a"},
		{Start: 1, End: 1, Text: "b"},
	})
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	if got[0].Text != "a" || got[1].Text != "b" {
		t.Fatalf("expected stable order, got %+v", got)
	}
}

func TestSanitizeCollapsesLineBreaks(t *testing.T) {
	got, err := Sanitize([]Segment{{Start: 0, End: 2, Text: "hello\rthis transcription\r\nline  is\tlong\n"}})
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	if got[0].Text != "hello this transcription line is long" {
		t.Fatalf("Sanitize text = %q", got[0].Text)
	}
}

func TestSanitizeEmpty(t *testing.T) {
	_, err := Sanitize([]Segment{{Start: 0, End: 1, Text: " "}})
	if !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if !services.IsInputError(err) {
		t.Fatalf("expected input error classification, got %v", err)
	}
}

func TestLoadAcceptsBothShapes(t *testing.T) {
	dir := t.TempDir()
	objectPath := filepath.Join(dir, "object.json")
	arrayPath := filepath.Join(dir, "array.json")
	if err := os.WriteFile(objectPath, []byte(`{"segments":[{"start":0.5,"end":1.5,"text":"hi","words":[]}],"language":"en"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(arrayPath, []byte(`[{"start":0.5,"end":1.5,"text":"hi"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, path := range []string{objectPath, arrayPath} {
		segments, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s): %v", path, err)
		}
		if len(segments) != 1 || segments[0].Text != "hi" || segments[0].Start != 0.5 {
			t.Fatalf("unexpected segments from %s: %+v", path, segments)
		}
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcript.json")
	segments := []Segment{{Start: 0, End: 2, Text: "hello"}, {Start: 2, End: 3, Text: "world"}}
	if err := Save(path, segments); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, segments) {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestLoadCorruptIsValidationError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
