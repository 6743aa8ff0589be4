package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"lyricsync/internal/config"
	"lyricsync/internal/logging"
	"lyricsync/internal/media/ffprobe"
	"lyricsync/internal/services"
)

// Audio format produced by Trim.
const (
	TrimSampleRate = 44100
	TrimChannels   = 1
)

// CommandRunner executes a command and returns its standard output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Tools runs yt-dlp, ffmpeg, and ffprobe.
type Tools struct {
	ffmpeg  string
	ffprobe string
	ytdlp   string
	run     CommandRunner
	logger  *slog.Logger
}

// NewTools creates Tools using binaries named by cfg.
func NewTools(cfg *config.Config, logger *slog.Logger) *Tools {
	t := &Tools{
		ffmpeg:  "ffmpeg",
		ffprobe: "ffprobe",
		ytdlp:   "yt-dlp",
		logger:  logging.NewComponentLogger(logger, "media"),
	}
	if cfg != nil {
		t.ffmpeg = cfg.FFmpegBinary()
		t.ffprobe = cfg.FFprobeBinary()
		t.ytdlp = cfg.YTDLPBinary()
	}
	t.run = execCommand
	return t
}

// WithCommandRunner sets a custom command runner (for testing).
func (t *Tools) WithCommandRunner(runner CommandRunner) {
	if runner != nil {
		t.run = runner
	}
}

func execCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return output, nil
}

// Download fetches audio from source into dest as MP3. A source that names
// an existing local file is converted with ffmpeg instead of yt-dlp.
func (t *Tools) Download(ctx context.Context, source, dest string) error {
	source = strings.TrimSpace(source)
	if source == "" {
		return services.Wrap(services.ErrValidation, "download_audio", "resolve source", "audio source required", nil)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "download_audio", "create directory", filepath.Dir(dest), err)
	}

	if info, err := os.Stat(source); err == nil && !info.IsDir() {
		t.logger.Info("converting local audio",
			logging.String("source", source),
			logging.String("dest", dest),
		)
		args := []string{"-y", "-hide_banner", "-loglevel", "error", "-i", source, "-vn", "-codec:a", "libmp3lame", "-q:a", "2", dest}
		if _, err := t.run(ctx, t.ffmpeg, args...); err != nil {
			return services.Wrap(services.ErrExternalTool, "download_audio", "ffmpeg convert", source, err)
		}
		return requireOutput("download_audio", dest)
	}

	template := strings.TrimSuffix(dest, filepath.Ext(dest)) + ".%(ext)s"
	args := []string{"-x", "--audio-format", "mp3", "--no-playlist", "--no-progress", "-o", template, source}
	t.logger.Info("downloading audio",
		logging.String("source", source),
		logging.String("dest", dest),
	)
	if _, err := t.run(ctx, t.ytdlp, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "download_audio", "yt-dlp", source, err)
	}
	return requireOutput("download_audio", dest)
}

// Trim cuts [start, start+duration) from src into a mono 44.1 kHz 16-bit WAV.
// A non-positive duration keeps everything after start.
func (t *Tools) Trim(ctx context.Context, src string, start, duration float64, dest string) error {
	if _, err := os.Stat(src); err != nil {
		return services.Wrap(services.ErrValidation, "trim_audio", "stat source", src, err)
	}
	if start < 0 {
		start = 0
	}
	args := []string{"-y", "-hide_banner", "-loglevel", "error", "-ss", formatSeconds(start)}
	if duration > 0 {
		args = append(args, "-t", formatSeconds(duration))
	}
	args = append(args,
		"-i", src,
		"-vn",
		"-ac", strconv.Itoa(TrimChannels),
		"-ar", strconv.Itoa(TrimSampleRate),
		"-sample_fmt", "s16",
		dest,
	)
	if _, err := t.run(ctx, t.ffmpeg, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "trim_audio", "ffmpeg", src, err)
	}
	return requireOutput("trim_audio", dest)
}

// Duration returns the length of path in seconds.
func (t *Tools) Duration(ctx context.Context, path string) (float64, error) {
	result, err := ffprobe.Inspect(ctx, ffprobe.Runner(t.run), t.ffprobe, path)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "probe", "ffprobe", path, err)
	}
	seconds := result.DurationSeconds()
	if math.IsNaN(seconds) || seconds <= 0 {
		return 0, services.Wrap(services.ErrValidation, "probe", "duration", fmt.Sprintf("%s reports no duration", path), nil)
	}
	return seconds, nil
}

func requireOutput(stage, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, stage, "verify output", path, err)
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrExternalTool, stage, "verify output", path+" is empty", nil)
	}
	return nil
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', 3, 64)
}
