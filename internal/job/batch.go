package job

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/sync/errgroup"

	"lyricsync/internal/logging"
	"lyricsync/internal/services"
)

// BatchFile is the on-disk shape of a batch definition:
//
//	[[job]]
//	song = "Artist - Title"
//	audio_url = "https://..."
//	cover_url = "https://..."
type BatchFile struct {
	Jobs []Request `toml:"job"`
}

// BatchResult pairs a request with its outcome.
type BatchResult struct {
	Request Request
	Data    Data
	Err     error
}

// LoadBatch reads job requests from a TOML batch file.
func LoadBatch(path string) ([]Request, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "batch", "open", path, err)
	}
	defer file.Close()

	var batch BatchFile
	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&batch); err != nil {
		return nil, services.Wrap(services.ErrValidation, "batch", "parse", path, err)
	}
	if len(batch.Jobs) == 0 {
		return nil, services.Wrap(services.ErrValidation, "batch", "parse", path+" defines no [[job]] entries", nil)
	}
	return batch.Jobs, nil
}

// AssignIDs fills empty request ids with fresh job numbers so concurrent
// runs never race for the same folder. Duplicate ids are rejected.
func (r *Runner) AssignIDs(reqs []Request) ([]Request, error) {
	out := make([]Request, len(reqs))
	copy(out, reqs)
	reserved := make(map[string]bool, len(out))
	for _, req := range out {
		if req.ID == "" {
			continue
		}
		name := FolderName(req.ID)
		if reserved[name] {
			return nil, services.Wrap(services.ErrValidation, "batch", "assign ids", "duplicate job id "+req.ID, nil)
		}
		reserved[name] = true
	}
	for i := range out {
		if out[i].ID != "" {
			continue
		}
		id, err := NextID(r.cfg.Paths.JobsDir, reserved)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "batch", "assign ids", "", err)
		}
		out[i].ID = id
		reserved[FolderName(id)] = true
	}
	return out, nil
}

// RunBatch runs independent jobs with at most limit in flight. Each job is
// still a strict pipeline. A failing job does not stop the others; all
// failures are joined into the returned error.
func (r *Runner) RunBatch(ctx context.Context, reqs []Request, limit int) ([]BatchResult, error) {
	reqs, err := r.AssignIDs(reqs)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 1
	}
	r.logger.Info("batch started",
		logging.Int("jobs", len(reqs)),
		logging.Int("max_concurrent", limit),
		logging.EventType("batch_start"),
	)

	results := make([]BatchResult, len(reqs))
	var g errgroup.Group
	g.SetLimit(limit)
	for i := range reqs {
		g.Go(func() error {
			data, err := r.Run(ctx, reqs[i])
			results[i] = BatchResult{Request: reqs[i], Data: data, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			errs = append(errs, fmt.Errorf("%s: %w", FolderName(res.Request.ID), res.Err))
		}
	}
	r.logger.Info("batch finished",
		logging.Int("jobs", len(results)),
		logging.Int("failed", failed),
		logging.EventType("batch_complete"),
	)
	return results, errors.Join(errs...)
}
