package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"lyricsync/internal/services"
)

type recordedCall struct {
	name string
	args []string
}

// fakeRunner records calls and writes the file named by the last argument
// (or the yt-dlp output template) so output verification succeeds.
func fakeRunner(calls *[]recordedCall, output []byte, fail error) CommandRunner {
	return func(_ context.Context, name string, args ...string) ([]byte, error) {
		*calls = append(*calls, recordedCall{name: name, args: args})
		if fail != nil {
			return nil, fail
		}
		target := args[len(args)-1]
		if i := slices.Index(args, "-o"); i >= 0 {
			target = strings.Replace(args[i+1], "%(ext)s", "mp3", 1)
		}
		if strings.HasPrefix(name, "ffprobe") {
			return output, nil
		}
		if err := os.WriteFile(target, []byte("audio"), 0o644); err != nil {
			return nil, err
		}
		return output, nil
	}
}

func TestDownloadRunsYTDLP(t *testing.T) {
	var calls []recordedCall
	tools := NewTools(nil, nil)
	tools.WithCommandRunner(fakeRunner(&calls, nil, nil))

	dest := filepath.Join(t.TempDir(), "job_001", "audio_full.mp3")
	if err := tools.Download(context.Background(), "https://example.com/watch?v=1", dest); err != nil {
		t.Fatalf("Download: %v", err)
	}
	if len(calls) != 1 || calls[0].name != "yt-dlp" {
		t.Fatalf("unexpected calls: %+v", calls)
	}
	args := strings.Join(calls[0].args, " ")
	for _, want := range []string{"-x", "--audio-format mp3", "audio_full.%(ext)s", "https://example.com/watch?v=1"} {
		if !strings.Contains(args, want) {
			t.Fatalf("args %q missing %q", args, want)
		}
	}
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("expected output file: %v", err)
	}
}

func TestDownloadConvertsLocalFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "song.flac")
	if err := os.WriteFile(src, []byte("flac"), 0o644); err != nil {
		t.Fatal(err)
	}
	var calls []recordedCall
	tools := NewTools(nil, nil)
	tools.WithCommandRunner(fakeRunner(&calls, nil, nil))

	dest := filepath.Join(dir, "audio_full.mp3")
	if err := tools.Download(context.Background(), src, dest); err != nil {
		t.Fatalf("Download: %v", err)
	}
	if len(calls) != 1 || calls[0].name != "ffmpeg" || !slices.Contains(calls[0].args, src) {
		t.Fatalf("unexpected calls: %+v", calls)
	}
}

func TestDownloadErrors(t *testing.T) {
	tools := NewTools(nil, nil)
	if err := tools.Download(context.Background(), " ", filepath.Join(t.TempDir(), "a.mp3")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	var calls []recordedCall
	tools.WithCommandRunner(fakeRunner(&calls, nil, errors.New("HTTP Error 403")))
	err := tools.Download(context.Background(), "https://example.com/x", filepath.Join(t.TempDir(), "a.mp3"))
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestTrimBuildsMonoWAVCommand(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "audio_full.mp3")
	if err := os.WriteFile(src, []byte("mp3"), 0o644); err != nil {
		t.Fatal(err)
	}
	var calls []recordedCall
	tools := NewTools(nil, nil)
	tools.WithCommandRunner(fakeRunner(&calls, nil, nil))

	dest := filepath.Join(dir, "audio_trimmed.wav")
	if err := tools.Trim(context.Background(), src, 12.5, 30, dest); err != nil {
		t.Fatalf("Trim: %v", err)
	}
	want := []string{"-y", "-hide_banner", "-loglevel", "error", "-ss", "12.500", "-t", "30.000",
		"-i", src, "-vn", "-ac", "1", "-ar", "44100", "-sample_fmt", "s16", dest}
	if !slices.Equal(calls[0].args, want) {
		t.Fatalf("args = %v\nwant   %v", calls[0].args, want)
	}
}

func TestTrimWithoutDurationKeepsTail(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "audio_full.mp3")
	if err := os.WriteFile(src, []byte("mp3"), 0o644); err != nil {
		t.Fatal(err)
	}
	var calls []recordedCall
	tools := NewTools(nil, nil)
	tools.WithCommandRunner(fakeRunner(&calls, nil, nil))
	if err := tools.Trim(context.Background(), src, -3, 0, filepath.Join(dir, "out.wav")); err != nil {
		t.Fatalf("Trim: %v", err)
	}
	if slices.Contains(calls[0].args, "-t") || !slices.Contains(calls[0].args, "0.000") {
		t.Fatalf("unexpected args: %v", calls[0].args)
	}
}

func TestTrimMissingSourceIsValidationError(t *testing.T) {
	tools := NewTools(nil, nil)
	err := tools.Trim(context.Background(), filepath.Join(t.TempDir(), "missing.mp3"), 0, 30, "out.wav")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDuration(t *testing.T) {
	var calls []recordedCall
	tools := NewTools(nil, nil)
	tools.WithCommandRunner(fakeRunner(&calls, []byte(`{"format":{"duration":"29.991"}}`), nil))
	seconds, err := tools.Duration(context.Background(), "clip.wav")
	if err != nil {
		t.Fatalf("Duration: %v", err)
	}
	if seconds != 29.991 || calls[0].name != "ffprobe" {
		t.Fatalf("unexpected result %v from %+v", seconds, calls)
	}

	calls = nil
	tools.WithCommandRunner(fakeRunner(&calls, []byte(`{"format":{}}`), nil))
	if _, err := tools.Duration(context.Background(), "clip.wav"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for missing duration, got %v", err)
	}
}
