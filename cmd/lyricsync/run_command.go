package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lyricsync/internal/config"
	"lyricsync/internal/job"
	"lyricsync/internal/preflight"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var req job.Request
	var jsonOutput bool
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline for one song clip",
		Long: "Download audio, trim the clip, fetch cover art, transcribe, align against\n" +
			"reference lyrics, and detect beats. Artifacts are written to a job folder\n" +
			"under paths.jobs_dir; existing artifacts are reused unless --force is set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(req.AudioSource) == "" && strings.TrimSpace(req.ID) == "" {
				return errors.New("--audio-url is required for a new job")
			}
			if !skipPreflight {
				if err := checkPreflight(cmd, cfg); err != nil {
					return err
				}
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			runner, closeRunner, err := job.NewRunnerFromConfig(cfg, logger, ctx.recorder)
			if err != nil {
				return err
			}
			defer closeRunner()

			data, err := runner.Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, data)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderJobSummary(cmd.OutOrStdout(), data))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.Song, "song", "", `Song id as "Artist - Title"`)
	flags.StringVar(&req.AudioSource, "audio-url", "", "Audio URL or local file")
	flags.StringVar(&req.CoverSource, "cover-url", "", "Cover art URL or local image")
	flags.StringVar(&req.ReferencePath, "reference", "", "Reference lyrics file (skips provider lookup)")
	flags.Float64Var(&req.ClipStart, "start", 0, "Clip start in seconds (default media.clip_start_seconds)")
	flags.Float64Var(&req.ClipDuration, "duration", 0, "Clip duration in seconds (default media.clip_duration_seconds)")
	flags.StringVar(&req.ID, "job-id", "", "Job id; numeric ids map to job_NNN folders")
	flags.BoolVar(&req.Force, "force", false, "Re-run every stage even when artifacts exist")
	flags.BoolVar(&jsonOutput, "json", false, "Print job data as JSON")
	flags.BoolVar(&skipPreflight, "skip-preflight", false, "Skip tool and directory checks")
	return cmd
}

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var maxConcurrent int
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "batch <jobs.toml>",
		Short: "Run many jobs from a TOML batch file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			reqs, err := job.LoadBatch(path)
			if err != nil {
				return err
			}
			if !skipPreflight {
				if err := checkPreflight(cmd, cfg); err != nil {
					return err
				}
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			runner, closeRunner, err := job.NewRunnerFromConfig(cfg, logger, ctx.recorder)
			if err != nil {
				return err
			}
			defer closeRunner()

			limit := maxConcurrent
			if limit <= 0 {
				limit = cfg.Jobs.MaxConcurrent
			}
			results, runErr := runner.RunBatch(cmd.Context(), reqs, limit)
			stdout := cmd.OutOrStdout()
			fmt.Fprint(stdout, renderBatchResults(stdout, results))
			return runErr
		},
	}
	cmd.Flags().IntVar(&maxConcurrent, "max-concurrent", 0, "Jobs to run at once (default jobs.max_concurrent)")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip tool and directory checks")
	return cmd
}

// checkPreflight fails fast when a required tool or directory is missing.
func checkPreflight(cmd *cobra.Command, cfg *config.Config) error {
	failed := preflight.Failed(preflight.RunAll(cmd.Context(), cfg))
	if len(failed) == 0 {
		return nil
	}
	parts := make([]string, 0, len(failed))
	for _, r := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return fmt.Errorf("preflight failed (run `lyricsync status` for details): %s", strings.Join(parts, "; "))
}
