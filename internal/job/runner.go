package job

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"lyricsync/internal/artwork"
	"lyricsync/internal/beats"
	"lyricsync/internal/captions"
	"lyricsync/internal/config"
	"lyricsync/internal/fileutil"
	"lyricsync/internal/logging"
	"lyricsync/internal/lyrics"
	"lyricsync/internal/metrics"
	"lyricsync/internal/services"
	"lyricsync/internal/syncer"
	"lyricsync/internal/transcript"
)

// ErrJobLocked indicates another run holds the job folder lock.
var ErrJobLocked = errors.New("job folder is locked by another run")

// MediaTools fetches and prepares audio.
type MediaTools interface {
	Download(ctx context.Context, source, dest string) error
	Trim(ctx context.Context, src string, start, duration float64, dest string) error
	Duration(ctx context.Context, path string) (float64, error)
}

// Syncer produces captions from a transcript.
type Syncer interface {
	Sync(ctx context.Context, req syncer.Request) (syncer.Outcome, error)
}

// BeatDetector analyses the trimmed clip.
type BeatDetector interface {
	Detect(path string) (beats.Track, error)
}

// CoverFetcher downloads and crops cover art into dest.
type CoverFetcher func(ctx context.Context, source, dest string, size int) (image.Image, error)

// Dependencies are the collaborators a Runner drives.
type Dependencies struct {
	Media       MediaTools
	Transcriber transcript.Transcriber
	Syncer      Syncer
	Beats       BeatDetector

	// Cover is optional; without it the cover_art stage does nothing.
	Cover   CoverFetcher
	Metrics *metrics.Recorder
	Logger  *slog.Logger
}

// Runner executes job pipelines.
type Runner struct {
	cfg    *config.Config
	deps   Dependencies
	logger *slog.Logger
	now    func() time.Time
}

// NewRunner validates deps and returns a Runner.
func NewRunner(cfg *config.Config, deps Dependencies) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("job runner: config is required")
	}
	switch {
	case deps.Media == nil:
		return nil, errors.New("job runner: media tools are required")
	case deps.Transcriber == nil:
		return nil, errors.New("job runner: transcriber is required")
	case deps.Syncer == nil:
		return nil, errors.New("job runner: syncer is required")
	case deps.Beats == nil:
		return nil, errors.New("job runner: beat detector is required")
	}
	return &Runner{
		cfg:    cfg,
		deps:   deps,
		logger: logging.NewComponentLogger(deps.Logger, "job"),
		now:    time.Now,
	}, nil
}

// runState carries values between stages of one run.
type runState struct {
	req      Request
	layout   Layout
	start    float64
	duration float64
	segments []transcript.Segment
	data     Data
}

type stage struct {
	name string
	// artifact returns the file whose presence lets the stage be skipped;
	// nil means the stage always runs.
	artifact func(Layout) string
	fatal    bool
	run      func(context.Context, *runState) error
	// restore reloads state from an existing artifact when the stage is skipped.
	restore func(context.Context, *runState) error
}

// Stage names in execution order.
const (
	StageDownloadAudio = "download_audio"
	StageTrimAudio     = "trim_audio"
	StageCoverArt      = "cover_art"
	StageTranscribe    = "transcribe"
	StageSyncLyrics    = "sync_lyrics"
	StageBeats         = "beats"
	StageWriteJobData  = "write_job_data"
)

// Stages lists the pipeline stage names in order.
func Stages() []string {
	return []string{
		StageDownloadAudio, StageTrimAudio, StageCoverArt, StageTranscribe,
		StageSyncLyrics, StageBeats, StageWriteJobData,
	}
}

func (r *Runner) stages() []stage {
	return []stage{
		{name: StageDownloadAudio, artifact: Layout.AudioFull, fatal: true, run: r.downloadAudio},
		{name: StageTrimAudio, artifact: Layout.AudioTrimmed, fatal: true, run: r.trimAudio, restore: r.probeDuration},
		{name: StageCoverArt, artifact: Layout.Cover, run: r.coverArt, restore: r.restoreCover},
		{name: StageTranscribe, artifact: Layout.Transcript, fatal: true, run: r.transcribe, restore: r.restoreTranscript},
		{name: StageSyncLyrics, artifact: Layout.Lyrics, fatal: true, run: r.syncLyrics},
		{name: StageBeats, artifact: Layout.Beats, fatal: true, run: r.detectBeats, restore: r.restoreBeats},
		{name: StageWriteJobData, fatal: true, run: r.writeJobData},
	}
}

// Run executes the pipeline for req and returns the job summary. Stage
// failures are wrapped with the services taxonomy.
func (r *Runner) Run(ctx context.Context, req Request) (Data, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		next, err := NextID(r.cfg.Paths.JobsDir, nil)
		if err != nil {
			return Data{}, services.Wrap(services.ErrConfiguration, "job", "allocate id", "", err)
		}
		id = next
	}
	layout := NewLayout(r.cfg.Paths.JobsDir, id)
	if err := os.MkdirAll(layout.Dir, 0o755); err != nil {
		return Data{}, services.Wrap(services.ErrConfiguration, "job", "create folder", layout.Dir, err)
	}

	lock := flock.New(layout.Lock())
	ok, err := lock.TryLock()
	if err != nil {
		return Data{}, services.Wrap(services.ErrTransient, "job", "acquire lock", layout.Lock(), err)
	}
	if !ok {
		return Data{}, services.Wrap(services.ErrValidation, "job", "acquire lock", layout.Name(), ErrJobLocked)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release job lock", logging.String("lock", layout.Lock()), logging.Error(err))
		}
	}()

	correlationID := uuid.NewString()
	ctx = services.WithJobID(ctx, layout.Name())
	ctx = services.WithRequestID(ctx, correlationID)
	logger := logging.WithContext(ctx, r.logger)

	state := &runState{req: req, layout: layout}
	state.start = req.ClipStart
	if state.start <= 0 {
		state.start = r.cfg.Media.ClipStartSeconds
	}
	state.duration = req.ClipDuration
	if state.duration <= 0 {
		state.duration = r.cfg.Media.ClipDurationSeconds
	}
	if !req.Force {
		if previous, err := ReadData(layout.Data()); err == nil {
			state.data = previous
		}
	}
	state.data.JobID = layout.Name()
	state.data.JobFolder = layout.Dir
	state.data.CorrelationID = correlationID
	if req.Song != "" || state.data.Song == "" {
		state.data.Song = req.Song
	}
	if req.AudioSource != "" || state.data.AudioSource == "" {
		state.data.AudioSource = req.AudioSource
	}
	state.data.ClipStart = state.start

	logger.Info("job started",
		logging.String("song", state.data.Song),
		logging.String("folder", layout.Dir),
		logging.Bool("force", req.Force),
		logging.EventType("job_start"),
	)
	started := r.now()
	for _, st := range r.stages() {
		if err := r.runStage(ctx, state, st); err != nil {
			r.deps.Metrics.RecordJob("failed")
			r.flushMetrics(logger)
			return state.data, err
		}
	}
	r.deps.Metrics.RecordJob("completed")
	r.flushMetrics(logger)
	logger.Info("job completed",
		logging.Duration("elapsed", r.now().Sub(started)),
		logging.Bool("aligned", state.data.Aligned),
		logging.String("reference_source", state.data.ReferenceSource),
		logging.EventType("job_complete"),
	)
	return state.data, nil
}

func (r *Runner) runStage(ctx context.Context, state *runState, st stage) error {
	stageCtx := services.WithStage(ctx, st.name)
	logger := logging.WithContext(stageCtx, r.logger)

	if st.artifact != nil && !state.req.Force {
		path := st.artifact(state.layout)
		if fileutil.NonEmpty(path) {
			if st.restore == nil {
				logger.Info("stage skipped", logging.String("artifact", path), logging.EventType("stage_skipped"))
				return nil
			}
			err := st.restore(stageCtx, state)
			if err == nil {
				logger.Info("stage skipped", logging.String("artifact", path), logging.EventType("stage_skipped"))
				return nil
			}
			logging.WarnWithContext(logger, "cached artifact unusable", "stage_cache_invalid",
				logging.String("artifact", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "stage will run again"),
			)
		}
	}

	logger.Info("stage started", logging.EventType("stage_start"))
	started := r.now()
	err := st.run(stageCtx, state)
	elapsed := r.now().Sub(started)
	r.deps.Metrics.ObserveStage(st.name, elapsed.Seconds())
	if err != nil {
		if !st.fatal {
			logging.WarnWithContext(logger, "stage failed, continuing", "stage_degraded",
				logging.String("error_kind", services.Kind(err)),
				logging.Error(err),
				logging.String(logging.FieldImpact, "job continues without this artifact"),
			)
			return nil
		}
		logging.ErrorWithContext(logger, "stage failed", "stage_failure",
			logging.String("error_kind", services.Kind(err)),
			logging.Error(err),
		)
		return err
	}
	logger.Info("stage completed", logging.Duration("elapsed", elapsed), logging.EventType("stage_complete"))
	return nil
}

func (r *Runner) downloadAudio(ctx context.Context, state *runState) error {
	if strings.TrimSpace(state.req.AudioSource) == "" {
		return services.Wrap(services.ErrValidation, StageDownloadAudio, "resolve source",
			"no audio source given and "+AudioFullFile+" is missing", nil)
	}
	if err := r.deps.Media.Download(ctx, state.req.AudioSource, state.layout.AudioFull()); err != nil {
		return err
	}
	state.data.AudioFull = state.layout.AudioFull()
	return nil
}

func (r *Runner) trimAudio(ctx context.Context, state *runState) error {
	if err := r.deps.Media.Trim(ctx, state.layout.AudioFull(), state.start, state.duration, state.layout.AudioTrimmed()); err != nil {
		return err
	}
	return r.probeDuration(ctx, state)
}

// probeDuration records the trimmed clip length, falling back to the
// requested duration when ffprobe cannot tell.
func (r *Runner) probeDuration(ctx context.Context, state *runState) error {
	state.data.AudioFull = state.layout.AudioFull()
	state.data.AudioTrimmed = state.layout.AudioTrimmed()
	seconds, err := r.deps.Media.Duration(ctx, state.layout.AudioTrimmed())
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "clip duration probe failed", "duration_probe_failed",
			logging.Error(err),
			logging.Float64("fallback_seconds", state.duration),
			logging.String(logging.FieldImpact, "captions are clamped to the requested duration"),
		)
	} else {
		state.duration = seconds
	}
	state.data.ClipDuration = state.duration
	return nil
}

func (r *Runner) coverArt(ctx context.Context, state *runState) error {
	source := strings.TrimSpace(state.req.CoverSource)
	if source == "" || r.deps.Cover == nil {
		logging.WithContext(ctx, r.logger).Info("no cover source, skipping artwork")
		state.data.CoverImage = ""
		state.data.Colors = []string{}
		return nil
	}
	state.data.Colors = []string{}
	img, err := r.deps.Cover(ctx, source, state.layout.Cover(), r.cfg.Media.CoverSize)
	if err != nil {
		return err
	}
	state.data.CoverImage = state.layout.Cover()
	state.data.Colors = artwork.Palette(img, r.cfg.Media.PaletteColors)
	return nil
}

func (r *Runner) restoreCover(_ context.Context, state *runState) error {
	img, err := artwork.LoadPNG(state.layout.Cover())
	if err != nil {
		return err
	}
	state.data.CoverImage = state.layout.Cover()
	state.data.Colors = artwork.Palette(img, r.cfg.Media.PaletteColors)
	return nil
}

func (r *Runner) transcribe(ctx context.Context, state *runState) error {
	segments, err := r.deps.Transcriber.Transcribe(ctx, state.layout.AudioTrimmed())
	if err != nil {
		return err
	}
	if err := transcript.Save(state.layout.Transcript(), segments); err != nil {
		return services.Wrap(services.ErrTransient, StageTranscribe, "save transcript", "", err)
	}
	state.segments = segments
	state.data.TranscriptFile = state.layout.Transcript()
	return nil
}

func (r *Runner) restoreTranscript(_ context.Context, state *runState) error {
	segments, err := transcript.Load(state.layout.Transcript())
	if err != nil {
		return err
	}
	state.segments = segments
	state.data.TranscriptFile = state.layout.Transcript()
	return nil
}

func (r *Runner) syncLyrics(ctx context.Context, state *runState) error {
	if state.segments == nil {
		if err := r.restoreTranscript(ctx, state); err != nil {
			return services.Wrap(services.ErrValidation, StageSyncLyrics, "load transcript", "", err)
		}
	}

	var referenceText string
	if path := strings.TrimSpace(state.req.ReferencePath); path != "" {
		if err := fileutil.CopyFile(path, state.layout.Reference(), 0o644); err != nil {
			return services.Wrap(services.ErrValidation, StageSyncLyrics, "copy reference", path, err)
		}
		raw, err := os.ReadFile(state.layout.Reference())
		if err != nil {
			return services.Wrap(services.ErrValidation, StageSyncLyrics, "read reference", path, err)
		}
		referenceText = string(raw)
	}

	outcome, err := r.deps.Syncer.Sync(ctx, syncer.Request{
		Segments:  state.segments,
		Reference: referenceText,
		Song:      lyrics.ParseSongID(state.req.Song),
		Duration:  state.duration,
	})
	if err != nil {
		marker := services.ErrTransient
		if services.IsInputError(err) {
			marker = services.ErrValidation
		}
		return services.Wrap(marker, StageSyncLyrics, "sync", "", err)
	}
	if err := captions.WriteFile(state.layout.Lyrics(), outcome.Lines); err != nil {
		return services.Wrap(services.ErrTransient, StageSyncLyrics, "save captions", "", err)
	}
	if referenceText == "" && outcome.Reference.Text != "" {
		if err := fileutil.WriteFileAtomic(state.layout.Reference(), []byte(outcome.Reference.Text+"\n"), 0o644); err != nil {
			return services.Wrap(services.ErrTransient, StageSyncLyrics, "save reference", "", err)
		}
	}

	state.data.LyricsFile = state.layout.Lyrics()
	state.data.ReferenceSource = outcome.Reference.Source
	if state.data.ReferenceSource == "" {
		state.data.ReferenceSource = syncer.SourceNone
	}
	state.data.AlignmentScore = outcome.Alignment.Window.Score
	state.data.Aligned = outcome.Alignment.Applied
	return nil
}

func (r *Runner) detectBeats(ctx context.Context, state *runState) error {
	track, err := r.deps.Beats.Detect(state.layout.AudioTrimmed())
	if err != nil {
		return err
	}
	if err := beats.WriteFile(state.layout.Beats(), track); err != nil {
		return services.Wrap(services.ErrTransient, StageBeats, "save beats", "", err)
	}
	logging.WithContext(ctx, r.logger).Info("beats detected",
		logging.Float64("tempo_bpm", track.TempoBPM),
		logging.Int("beats", len(track.BeatTimes)),
	)
	state.data.BeatsFile = state.layout.Beats()
	state.data.TempoBPM = track.TempoBPM
	return nil
}

func (r *Runner) restoreBeats(_ context.Context, state *runState) error {
	track, err := beats.ReadFile(state.layout.Beats())
	if err != nil {
		return err
	}
	state.data.BeatsFile = state.layout.Beats()
	state.data.TempoBPM = track.TempoBPM
	return nil
}

func (r *Runner) writeJobData(_ context.Context, state *runState) error {
	state.data.UpdatedAt = r.now().UTC().Format(time.RFC3339)
	if err := WriteData(state.layout.Data(), state.data); err != nil {
		return services.Wrap(services.ErrTransient, StageWriteJobData, "save", "", err)
	}
	return nil
}

func (r *Runner) flushMetrics(logger *slog.Logger) {
	if err := r.deps.Metrics.WriteTextfile(r.cfg.Metrics.Textfile); err != nil {
		logger.Warn("metrics textfile write failed", logging.Error(err))
	}
}
