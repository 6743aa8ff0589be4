// Package lyrics resolves canonical reference lyric text for a song.
//
// A Resolver walks an ordered chain of Providers. Each provider returns either
// a Result or an error; errors that wrap ErrTryNext advance the chain, and a
// rate-limited provider is retried after a fixed backoff before the chain
// moves on. Nothing in the chain is fatal: when every provider declines, the
// caller proceeds with transcription-only captions.
//
// Providers render page markup with NodeText and pass it through CleanText,
// which drops section headers, contributor banners, and credit lines.
package lyrics
