package job

import (
	"context"
	"image"
	"log/slog"
	"net/http"
	"time"

	"lyricsync/internal/artwork"
	"lyricsync/internal/beats"
	"lyricsync/internal/config"
	"lyricsync/internal/media"
	"lyricsync/internal/metrics"
	"lyricsync/internal/services/whisperx"
	"lyricsync/internal/syncer"
)

const coverDownloadTimeout = 30 * time.Second

// NewRunnerFromConfig wires the production collaborators. The returned close
// function releases the lyric cache and is always non-nil on success.
func NewRunnerFromConfig(cfg *config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*Runner, func() error, error) {
	sync, closeFn, err := syncer.NewFromConfig(cfg, logger, recorder)
	if err != nil {
		return nil, nil, err
	}
	httpClient := &http.Client{Timeout: coverDownloadTimeout}
	runner, err := NewRunner(cfg, Dependencies{
		Media:       media.NewTools(cfg, logger),
		Transcriber: NewTranscriber(cfg),
		Syncer:      sync,
		Beats:       NewBeatDetector(cfg),
		Cover: func(ctx context.Context, source, dest string, size int) (image.Image, error) {
			return artwork.Download(ctx, httpClient, source, dest, size)
		},
		Metrics: recorder,
		Logger:  logger,
	})
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	return runner, closeFn, nil
}

// NewTranscriber returns the WhisperX transcriber described by cfg.
func NewTranscriber(cfg *config.Config) *whisperx.Service {
	return whisperx.NewService(whisperx.Config{
		Model:       cfg.Transcription.WhisperXModel,
		CUDAEnabled: cfg.Transcription.CUDAEnabled,
		VADMethod:   cfg.Transcription.VADMethod,
		HFToken:     cfg.Transcription.HFToken,
		Language:    cfg.Transcription.Language,
	})
}

// NewBeatDetector returns a beat detector tuned by cfg.
func NewBeatDetector(cfg *config.Config) *beats.Detector {
	return beats.NewDetector(beats.Config{
		FrameSize: cfg.Beats.FrameSize,
		HopSize:   cfg.Beats.HopSize,
		MinBPM:    cfg.Beats.MinBPM,
		MaxBPM:    cfg.Beats.MaxBPM,
		Tightness: cfg.Beats.Tightness,
	})
}
