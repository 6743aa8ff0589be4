package lyrics

import (
	"context"
	"errors"
	"fmt"
)

// ErrTryNext signals that a provider declined and the chain should advance.
var ErrTryNext = errors.New("lyrics: try next provider")

// ErrRateLimited marks a rate-limited response. It wraps ErrTryNext so a
// provider exhausting its retry budget falls through to the next one.
var ErrRateLimited = fmt.Errorf("%w: rate limited", ErrTryNext)

// Result is resolved reference text tagged with the provider that produced it.
type Result struct {
	Text   string
	Source string
}

// Provider looks up reference lyric text for a song.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, song SongID) (Result, error)
}

// Decline builds an ErrTryNext error with a reason.
func Decline(provider, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrTryNext, provider, fmt.Sprintf(format, args...))
}
