// Package captions turns aligned transcription segments into the display
// sequence consumed by the title template: one line per segment with its
// start time, the wrapped current lyric, and its neighbours for context.
package captions
