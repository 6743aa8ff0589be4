package syncer

import (
	"context"
	"log/slog"
	"strings"

	"lyricsync/internal/align"
	"lyricsync/internal/captions"
	"lyricsync/internal/logging"
	"lyricsync/internal/lyriccache"
	"lyricsync/internal/lyrics"
	"lyricsync/internal/metrics"
	"lyricsync/internal/transcript"
)

// Reference sources reported in metrics beyond provider names.
const (
	SourceFile  = "file"
	SourceCache = "cache"
	SourceNone  = "none"
)

// Resolver finds reference text for a song.
type Resolver interface {
	Resolve(ctx context.Context, song lyrics.SongID) (lyrics.Result, bool)
}

// Cache stores resolved reference text between runs.
type Cache interface {
	Get(ctx context.Context, song lyrics.SongID) (lyriccache.Entry, bool, error)
	Put(ctx context.Context, song lyrics.SongID, result lyrics.Result) error
}

// Request describes one sync run.
type Request struct {
	Segments []transcript.Segment
	// Reference is raw reference text; when set the resolver is not consulted.
	Reference string
	Song      lyrics.SongID
	// Duration clamps caption times when positive.
	Duration float64
}

// Outcome is the result of a sync run.
type Outcome struct {
	Lines     []captions.Line
	Segments  []transcript.Segment
	Reference lyrics.Result
	FromCache bool
	Alignment align.Result
}

// Options wires the collaborators of a Service. Nil collaborators are
// optional except Aligner, which defaults to an AnchorAligner.
type Options struct {
	Aligner  align.Aligner
	Resolver Resolver
	Cache    Cache
	Metrics  *metrics.Recorder
	Logger   *slog.Logger
	MaxChars int
	Marker   string
}

// Service runs the sync pipeline.
type Service struct {
	aligner  align.Aligner
	resolver Resolver
	cache    Cache
	metrics  *metrics.Recorder
	logger   *slog.Logger
	maxChars int
	marker   string
}

// New constructs a Service.
func New(opts Options) *Service {
	logger := logging.NewComponentLogger(opts.Logger, "syncer")
	aligner := opts.Aligner
	if aligner == nil {
		aligner = align.NewAnchorAligner(0, 0, opts.Logger)
	}
	marker := opts.Marker
	if marker == "" {
		marker = captions.DefaultBreakMarker
	}
	return &Service{
		aligner:  aligner,
		resolver: opts.Resolver,
		cache:    opts.Cache,
		metrics:  opts.Metrics,
		logger:   logger,
		maxChars: opts.MaxChars,
		marker:   marker,
	}
}

// Sync produces captions for req. It fails only when the transcript is empty
// after sanitation or ctx is already done.
func (s *Service) Sync(ctx context.Context, req Request) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	segments, err := transcript.Sanitize(req.Segments)
	if err != nil {
		return Outcome{}, err
	}
	logger := logging.WithContext(ctx, s.logger)

	reference, fromCache := s.reference(ctx, logger, req)
	var result align.Result
	if reference.Text != "" {
		result = s.aligner.Align(segments, reference.Text)
	} else {
		result = align.Result{Segments: segments, Reason: align.ReasonEmptyReference}
	}
	s.metrics.RecordAlignment(result.Reason)

	lines := captions.Build(result.Segments, captions.Options{
		MaxChars: s.maxChars,
		Marker:   s.marker,
		Duration: req.Duration,
	})
	logger.Info("captions built",
		logging.Int("lines", len(lines)),
		logging.Bool("aligned", result.Applied),
		logging.String("reason", result.Reason),
		logging.String("reference_source", reference.Source),
		logging.EventType("captions_built"),
	)
	return Outcome{
		Lines:     lines,
		Segments:  result.Segments,
		Reference: reference,
		FromCache: fromCache,
		Alignment: result,
	}, nil
}

func (s *Service) reference(ctx context.Context, logger *slog.Logger, req Request) (lyrics.Result, bool) {
	if text := lyrics.CleanText(req.Reference); text != "" {
		s.metrics.RecordReference(SourceFile)
		return lyrics.Result{Text: text, Source: SourceFile}, false
	}
	if req.Song.Empty() {
		s.metrics.RecordReference(SourceNone)
		return lyrics.Result{}, false
	}

	if s.cache != nil {
		entry, found, err := s.cache.Get(ctx, req.Song)
		switch {
		case err != nil:
			logging.WarnWithContext(logger, "lyric cache read failed", "lyric_cache_error",
				logging.String("song", req.Song.String()),
				logging.Error(err),
				logging.String(logging.FieldImpact, "providers will be queried"),
			)
		case found && strings.TrimSpace(entry.Text) != "":
			logger.Debug("reference lyrics served from cache",
				logging.String("song", req.Song.String()),
				logging.String("provider", entry.Source),
			)
			s.metrics.RecordReference(SourceCache)
			return lyrics.Result{Text: entry.Text, Source: entry.Source}, true
		}
	}

	if s.resolver == nil {
		s.metrics.RecordReference(SourceNone)
		return lyrics.Result{}, false
	}
	result, ok := s.resolver.Resolve(ctx, req.Song)
	if !ok {
		s.metrics.RecordReference(SourceNone)
		return lyrics.Result{}, false
	}
	s.metrics.RecordReference(result.Source)
	if s.cache != nil {
		if err := s.cache.Put(ctx, req.Song, result); err != nil {
			logging.WarnWithContext(logger, "lyric cache write failed", "lyric_cache_error",
				logging.String("song", req.Song.String()),
				logging.Error(err),
				logging.String(logging.FieldImpact, "next run will query providers again"),
			)
		}
	}
	return result, false
}
