// Package align reconciles transcription segments against reference lyric
// text.
//
// AnchorAligner takes the first few segments as an anchor, slides a window of
// the same word count over the normalized reference, and picks the offset
// with the highest similarity ratio. Above the confidence threshold, segments
// are rewritten in order with reference words, each consuming as many words as
// it originally held. Below it, the transcript is returned unchanged.
package align
