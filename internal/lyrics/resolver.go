package lyrics

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"lyricsync/internal/logging"
)

// Default retry policy for rate-limited providers.
const (
	DefaultRateLimitBackoff = 5 * time.Second
	DefaultRateLimitRetries = 1
)

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	// Backoff is the fixed sleep applied after a rate-limited response.
	Backoff time.Duration
	// Retries is how many times a rate-limited request is repeated before
	// the chain advances.
	Retries int
	Logger  *slog.Logger
	// Sleep overrides the backoff sleep (for testing).
	Sleep func(ctx context.Context, d time.Duration) error
}

// Resolver walks providers in order until one yields reference text.
type Resolver struct {
	providers []Provider
	backoff   time.Duration
	retries   int
	logger    *slog.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewResolver builds a resolver over providers, tried in the given order.
// Nil providers are ignored.
func NewResolver(opts ResolverOptions, providers ...Provider) *Resolver {
	chain := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			chain = append(chain, p)
		}
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = SleepWithContext
	}
	retries := opts.Retries
	if retries < 0 {
		retries = 0
	}
	return &Resolver{
		providers: chain,
		backoff:   opts.Backoff,
		retries:   retries,
		logger:    logging.NewComponentLogger(opts.Logger, "lyrics"),
		sleep:     sleep,
	}
}

// Providers returns the names of the configured providers in chain order.
func (r *Resolver) Providers() []string {
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name()
	}
	return names
}

// Resolve returns reference text for song. ok is false when every provider
// declined or the song id is empty; callers then fall back to the transcript.
func (r *Resolver) Resolve(ctx context.Context, song SongID) (Result, bool) {
	if r == nil || song.Empty() {
		return Result{}, false
	}
	logger := logging.WithContext(ctx, r.logger)
	for _, provider := range r.providers {
		result, err := r.lookup(ctx, logger, provider, song)
		if err == nil {
			logger.Info("reference lyrics resolved",
				logging.String("provider", result.Source),
				logging.String("song", song.String()),
				logging.Int("chars", len(result.Text)),
				logging.EventType("reference_resolved"),
			)
			return result, true
		}
		if ctx.Err() != nil {
			logger.Warn("reference lookup cancelled", logging.Error(ctx.Err()))
			return Result{}, false
		}
		logging.WarnWithContext(logger, "reference provider declined", "provider_fallback",
			logging.String("provider", provider.Name()),
			logging.String("song", song.String()),
			logging.Error(err),
			logging.ErrorHint("check provider token, connectivity, or song id spelling"),
			logging.String(logging.FieldImpact, "next provider will be tried"),
		)
	}
	logger.Info("no reference lyrics found",
		logging.String("song", song.String()),
		logging.EventType("reference_missing"),
	)
	return Result{}, false
}

func (r *Resolver) lookup(ctx context.Context, logger *slog.Logger, provider Provider, song SongID) (Result, error) {
	attempt := 0
	for {
		result, err := provider.Lookup(ctx, song)
		if err == nil {
			if strings.TrimSpace(result.Text) == "" {
				return Result{}, Decline(provider.Name(), "empty text")
			}
			if result.Source == "" {
				result.Source = provider.Name()
			}
			return result, nil
		}
		if !errors.Is(err, ErrRateLimited) || attempt >= r.retries {
			return Result{}, err
		}
		attempt++
		logger.Warn("reference provider rate limited, retrying",
			logging.String("provider", provider.Name()),
			logging.Duration("backoff", r.backoff),
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", r.retries),
			logging.EventType("provider_rate_limited"),
			logging.ErrorHint("wait for rate limits or lower lyrics.requests_per_second"),
		)
		if err := r.sleep(ctx, r.backoff); err != nil {
			return Result{}, err
		}
	}
}

// TextProvider serves a fixed reference text; it backs the --reference flag
// and tests.
type TextProvider struct {
	Label string
	Text  string
}

// Name implements Provider.
func (p TextProvider) Name() string {
	if p.Label == "" {
		return "text"
	}
	return p.Label
}

// Lookup implements Provider.
func (p TextProvider) Lookup(context.Context, SongID) (Result, error) {
	text := CleanText(p.Text)
	if text == "" {
		return Result{}, Decline(p.Name(), "empty text")
	}
	return Result{Text: text, Source: p.Name()}, nil
}
