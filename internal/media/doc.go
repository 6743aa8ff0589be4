// Package media wraps the external tools that fetch and prepare audio:
// yt-dlp for downloads, ffmpeg for trimming and conversion, and ffprobe for
// duration probes. Commands run through an injectable runner so tests never
// spawn processes.
package media
