package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"lyricsync/internal/beats"
	"lyricsync/internal/captions"
	"lyricsync/internal/lyriccache"
	"lyricsync/internal/lyrics"
	"lyricsync/internal/testsupport"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t, "", "")

	out, _, err := runCLI(t, env.configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	if _, err := os.Stat(env.jobsDir); err != nil {
		t.Fatalf("expected jobs dir to be created: %v", err)
	}

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}

	out, _, err = runCLI(t, target, "config", "validate")
	if err != nil {
		t.Fatalf("sample config should validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestConfigShowRedactsSecrets(t *testing.T) {
	env := setupCLITestEnv(t, "", `genius_token = "super-secret"`)

	out, _, err := runCLI(t, env.configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "super-secret") {
		t.Fatalf("token leaked in output: %s", out)
	}
	requireContains(t, out, redacted)
	requireContains(t, out, env.jobsDir)
}

func TestWrapCommand(t *testing.T) {
	env := setupCLITestEnv(t, "", "")

	out, _, err := runCLI(t, env.configPath, "wrap", "--max-chars", "9", "one two three four five")
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) < 3 {
		t.Fatalf("expected several lines, got %q", out)
	}
	for _, line := range lines {
		if utf8.RuneCountInString(line) > 9 {
			t.Fatalf("line %q exceeds budget", line)
		}
	}
	if got := strings.Join(strings.Fields(out), " "); got != "one two three four five" {
		t.Fatalf("words changed: %q", got)
	}

	out, _, err = runCLI(t, env.configPath, "wrap", "--raw", "--max-chars", "9", "one two three")
	if err != nil {
		t.Fatalf("wrap --raw: %v", err)
	}
	if !strings.Contains(out, "\r") {
		t.Fatalf("expected default marker in raw output, got %q", out)
	}
}

func TestShowCommand(t *testing.T) {
	env := setupCLITestEnv(t, "", "")
	path := filepath.Join(t.TempDir(), "lyrics.json")
	lines := []captions.Line{
		{T: 0.5, Current: "hello darkness\rmy old friend", Next1: "again"},
		{T: 2.25, Prev: "hello darkness\rmy old friend", Current: "again"},
	}
	if err := captions.WriteFile(path, lines); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, env.configPath, "show", path)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "CURRENT")
	requireContains(t, out, "hello darkness / my old friend")
	requireContains(t, out, "2.25")

	out, _, err = runCLI(t, env.configPath, "show", "--json", path)
	if err != nil {
		t.Fatalf("show --json: %v", err)
	}
	var decoded []captions.Line
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decode json output: %v", err)
	}
	if len(decoded) != 2 || decoded[1].Prev != lines[1].Prev {
		t.Fatalf("unexpected json lines: %+v", decoded)
	}
}

func TestSyncCommandWithReferenceFile(t *testing.T) {
	env := setupCLITestEnv(t, "", "")
	dir := t.TempDir()
	transcriptPath := filepath.Join(dir, "transcript.json")
	referencePath := filepath.Join(dir, "reference.txt")
	outPath := filepath.Join(dir, "lyrics.json")
	testsupport.WriteTranscript(t, transcriptPath, testsupport.Segments("one to", "three for"))
	testsupport.WriteText(t, referencePath, "[Chorus]\nOne two\nthree four\n")

	out, _, err := runCLI(t, env.configPath, "sync",
		"--transcript", transcriptPath,
		"--reference", referencePath,
		"--out", outPath,
	)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	requireContains(t, out, "reference: file, aligned: yes")

	lines, err := captions.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read captions: %v", err)
	}
	if len(lines) != 2 || lines[0].Current != "one two" || lines[0].Next1 != "three four" {
		t.Fatalf("unexpected captions: %+v", lines)
	}
}

func TestSyncCommandRequiresTranscript(t *testing.T) {
	env := setupCLITestEnv(t, "", "")
	if _, _, err := runCLI(t, env.configPath, "sync"); err == nil {
		t.Fatal("expected error without --transcript")
	}
}

func TestLyricsCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lyrics/band/count.html" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `<html><body><div><!-- Usage of azlyrics.com content by any third-party lyrics provider is prohibited. -->
One two<br>
three four<br>
</div></body></html>`)
	}))
	defer server.Close()
	env := setupCLITestEnv(t, server.URL, "")

	out, errOut, err := runCLI(t, env.configPath, "lyrics", "Band", "-", "Count")
	if err != nil {
		t.Fatalf("lyrics: %v", err)
	}
	requireContains(t, out, "One two\nthree four")
	requireContains(t, errOut, "source: azlyrics")

	if _, _, err := runCLI(t, env.configPath, "lyrics", "Band - Missing"); err == nil {
		t.Fatal("expected error for unresolved song")
	}
}

func TestBeatsCommandSilence(t *testing.T) {
	env := setupCLITestEnv(t, "", "")
	path := filepath.Join(t.TempDir(), "silence.wav")
	file, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	remaining := 22050
	streamer := beep.StreamerFunc(func(buf [][2]float64) (int, bool) {
		if remaining <= 0 {
			return 0, false
		}
		n := min(len(buf), remaining)
		for i := 0; i < n; i++ {
			buf[i] = [2]float64{}
		}
		remaining -= n
		return n, true
	})
	if err := wav.Encode(file, streamer, beep.Format{SampleRate: 22050, NumChannels: 1, Precision: 2}); err != nil {
		t.Fatalf("encode wav: %v", err)
	}
	file.Close()

	out, _, err := runCLI(t, env.configPath, "beats", path)
	if err != nil {
		t.Fatalf("beats: %v", err)
	}
	var track beats.Track
	if err := json.Unmarshal([]byte(out), &track); err != nil {
		t.Fatalf("decode beats output %q: %v", out, err)
	}
	if track.TempoBPM != 0 || len(track.BeatTimes) != 0 {
		t.Fatalf("expected empty track for silence, got %+v", track)
	}
	requireContains(t, out, `"beat_times": []`)

	if _, _, err := runCLI(t, env.configPath, "beats", filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatal("expected error for missing audio")
	}
}

func TestCacheCommands(t *testing.T) {
	env := setupCLITestEnv(t, "", "")

	out, _, err := runCLI(t, env.configPath, "cache", "stats")
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "Cache is empty")

	store, err := lyriccache.Open(filepath.Join(env.cacheDir, "lyrics.db"))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, song := range []string{"Band - Count", "Band - Other"} {
		if err := store.Put(ctx, lyrics.ParseSongID(song), lyrics.Result{Text: "words", Source: "genius"}); err != nil {
			t.Fatal(err)
		}
	}
	store.Close()

	out, _, err = runCLI(t, env.configPath, "cache", "stats")
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "genius")
	requireContains(t, out, "total")

	out, _, err = runCLI(t, env.configPath, "cache", "forget", "band", "-", "count")
	if err != nil {
		t.Fatalf("cache forget: %v", err)
	}
	requireContains(t, out, "Removed band - count from cache")

	out, _, err = runCLI(t, env.configPath, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Removed 1 cache entries")
}

func TestStatusCommandOffline(t *testing.T) {
	env := setupCLITestEnv(t, "", "")
	testsupport.NewConfig(t, testsupport.WithStubbedBinaries())

	out, _, err := runCLI(t, env.configPath, "status", "--offline")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "== Dependencies ==")
	requireContains(t, out, "FFmpeg:")
	requireContains(t, out, "Skipped (--offline)")
	requireContains(t, out, "Lyric cache:")
	if strings.Contains(out, "Missing dependencies") {
		t.Fatalf("stubbed binaries should satisfy dependencies: %s", out)
	}
}

func TestRunRequiresAudioSource(t *testing.T) {
	env := setupCLITestEnv(t, "", "")
	_, _, err := runCLI(t, env.configPath, "run", "--song", "Band - Count")
	if err == nil || !strings.Contains(err.Error(), "--audio-url") {
		t.Fatalf("expected audio url error, got %v", err)
	}
}

func TestBatchRejectsInvalidFile(t *testing.T) {
	env := setupCLITestEnv(t, "", "")
	path := filepath.Join(t.TempDir(), "jobs.toml")
	testsupport.WriteText(t, path, "[[job]]\nsong = \"x\"\nunknown = 1\n")
	if _, _, err := runCLI(t, env.configPath, "batch", path); err == nil {
		t.Fatal("expected batch file validation error")
	}
}

func TestInvalidLogLevel(t *testing.T) {
	env := setupCLITestEnv(t, "", "")
	dir := t.TempDir()
	transcriptPath := filepath.Join(dir, "transcript.json")
	testsupport.WriteTranscript(t, transcriptPath, testsupport.Segments("la la"))
	if _, _, err := runCLI(t, env.configPath, "--log-level", "loud", "sync", "--transcript", transcriptPath); err == nil {
		t.Fatal("expected invalid log level error")
	}
}
