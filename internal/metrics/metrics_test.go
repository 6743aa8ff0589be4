package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteTextfile(t *testing.T) {
	rec := New()
	rec.RecordAlignment("aligned")
	rec.RecordAlignment("aligned")
	rec.RecordAlignment("low_confidence")
	rec.RecordReference("genius")
	rec.RecordReference("")
	rec.RecordJob("completed")
	rec.ObserveStage("beats", 0.2)

	path := filepath.Join(t.TempDir(), "textfile", "lyricsync.prom")
	if err := rec.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	body := string(data)
	for _, want := range []string{
		`lyricsync_alignment_total{result="aligned"} 2`,
		`lyricsync_alignment_total{result="low_confidence"} 1`,
		`lyricsync_reference_total{source="genius"} 1`,
		`lyricsync_reference_total{source="unknown"} 1`,
		`lyricsync_jobs_total{status="completed"} 1`,
		`lyricsync_stage_duration_seconds_count{stage="beats"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("textfile missing %q:\n%s", want, body)
		}
	}
}

func TestNilRecorderIsNoop(t *testing.T) {
	var rec *Recorder
	rec.RecordAlignment("aligned")
	rec.RecordReference("genius")
	rec.RecordJob("failed")
	rec.ObserveStage("beats", 1)
	if err := rec.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Fatalf("nil recorder write: %v", err)
	}
	if rec.Registry() != nil {
		t.Fatal("expected nil registry")
	}
}

func TestEmptyPathSkipsWrite(t *testing.T) {
	if err := New().WriteTextfile(""); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}
