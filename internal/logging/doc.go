// Package logging assembles structured slog loggers and formatting helpers used
// across lyricsync.
//
// It owns the configurable console/JSON handlers, rotates the on-disk log with
// lumberjack, and exposes context-aware helpers so stage code automatically
// tags log lines with job IDs, stages, and correlation IDs. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
