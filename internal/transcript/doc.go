// Package transcript models time-stamped speech transcription output and
// sanitizes it before alignment and caption building.
//
// Segments arrive from WhisperX JSON or from callers directly. Sanitize
// produces a fresh slice and never mutates its input.
package transcript
