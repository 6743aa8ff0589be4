// Package textutil provides the text normalization and similarity helpers the
// alignment and lyric lookup code share, plus filename sanitization.
//
// Normalize folds case and diacritics, strips punctuation, and keeps
// apostrophes so contractions survive as single words. Ratio reports the
// classic 2*M/T sequence similarity between two strings, computed over runes.
package textutil
