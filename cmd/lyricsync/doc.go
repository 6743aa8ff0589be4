// Command lyricsync builds synced lyric captions, beat grids, and cover
// palettes for short song clips.
//
// A job downloads audio, trims the clip, transcribes it with WhisperX,
// aligns the transcript against reference lyrics, and writes the artifacts
// into a numbered job folder:
//
//	lyricsync run --song "Artist - Title" --audio-url https://... --cover-url https://...
//	lyricsync batch jobs.toml
//
// The individual steps are also exposed for scripting: sync, lyrics, beats,
// wrap, and show.
package main
