// Package preflight provides readiness checks for external tools, lyric
// providers, and filesystem paths that lyricsync depends on.
//
// These checks run in two contexts:
//   - The run and batch commands call RunAll before starting any job.
//     If a check fails, nothing is downloaded or transcribed.
//   - The CLI "lyricsync status" command uses the individual check functions
//     to display tool and provider health.
//
// Provider checks are gated by configuration; an unset Genius token skips
// the Genius check.
package preflight
