// Package syncer turns one transcript into a display-ready caption sequence.
//
// A sync run sanitises the transcript, obtains reference text (given
// directly, from the cache, or through the provider chain), aligns the
// transcript against it, and builds wrapped caption lines. Every failure
// after sanitation degrades to the transcript text so a non-empty transcript
// always yields captions.
package syncer
