package preflight

import (
	"context"
	"fmt"

	"lyricsync/internal/config"
	"lyricsync/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks that gate a job run: writable working
// directories and the required external binaries. Provider reachability is
// not included because every provider failure degrades to the raw
// transcript instead of failing the job.
func RunAll(_ context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Jobs directory", cfg.Paths.JobsDir),
		CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir),
	}
	for _, status := range CheckSystemDeps(cfg) {
		results = append(results, fromStatus(status))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

func fromStatus(status deps.Status) Result {
	if status.Available {
		detail := status.Path
		if status.Version != "" {
			detail = fmt.Sprintf("%s (%s)", status.Path, status.Version)
		}
		return Result{Name: status.Name, Passed: true, Detail: detail}
	}
	return Result{Name: status.Name, Passed: status.Optional, Detail: status.Detail}
}
