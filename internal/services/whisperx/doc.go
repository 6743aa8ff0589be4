// Package whisperx runs WhisperX through uvx to transcribe trimmed song clips.
//
// The Service satisfies transcript.Transcriber: it invokes WhisperX with the
// configured model, device, and VAD method, then loads the JSON output as
// sentence-level segments. Word timings are read but callers only need
// segment-level timing.
package whisperx
