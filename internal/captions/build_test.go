package captions

import (
	"path/filepath"
	"reflect"
	"testing"

	"lyricsync/internal/transcript"
)

func TestBuildContextLines(t *testing.T) {
	segments := []transcript.Segment{
		{Start: 0.5, End: 1, Text: "one"},
		{Start: 1.5, End: 2, Text: "two"},
		{Start: 2.5, End: 3, Text: "three"},
		{Start: 3.5, End: 4, Text: "four"},
	}
	got := Build(segments, Options{MaxChars: 24, Marker: "\r"})
	want := []Line{
		{T: 0.5, Prev: "", Current: "one", Next1: "two", Next2: "three"},
		{T: 1.5, Prev: "one", Current: "two", Next1: "three", Next2: "four"},
		{T: 2.5, Prev: "two", Current: "three", Next1: "four", Next2: ""},
		{T: 3.5, Prev: "three", Current: "four", Next1: "", Next2: ""},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Build = %+v\nwant %+v", got, want)
	}
}

func TestBuildWrapsCurrentAndNeighbours(t *testing.T) {
	segments := []transcript.Segment{
		{Start: 0, Text: "this is a fairly long caption line"},
		{Start: 1, Text: "short"},
	}
	got := Build(segments, Options{MaxChars: 10, Marker: "\r"})
	if got[0].Current != "this is a\rfairly\rlong\rcaption\rline" {
		t.Fatalf("unexpected wrapped current %q", got[0].Current)
	}
	if got[1].Prev != got[0].Current {
		t.Fatalf("expected prev to mirror wrapped text, got %q", got[1].Prev)
	}
}

func TestBuildTimestampsMonotonicAndClamped(t *testing.T) {
	segments := []transcript.Segment{
		{Start: -1, Text: "a"},
		{Start: 5, Text: "b"},
		{Start: 3, Text: "c"},
		{Start: 40, Text: "d"},
	}
	got := Build(segments, Options{Duration: 30})
	wantT := []float64{0, 5, 5, 30}
	for i, line := range got {
		if line.T != wantT[i] {
			t.Fatalf("line %d t = %v, want %v", i, line.T, wantT[i])
		}
		if i > 0 && line.T < got[i-1].T {
			t.Fatalf("t decreased at %d", i)
		}
	}
}

func TestBuildEmpty(t *testing.T) {
	if got := Build(nil, Options{}); len(got) != 0 {
		t.Fatalf("expected no lines, got %+v", got)
	}
}

func TestWriteAndReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "lyrics.json")
	lines := Build([]transcript.Segment{{Start: 1, Text: "hello"}, {Start: 2, Text: "world"}}, Options{})
	if err := WriteFile(path, lines); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !reflect.DeepEqual(got, lines) {
		t.Fatalf("read %+v, want %+v", got, lines)
	}
}
