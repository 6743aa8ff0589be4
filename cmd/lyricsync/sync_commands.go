package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"lyricsync/internal/beats"
	"lyricsync/internal/captions"
	"lyricsync/internal/config"
	"lyricsync/internal/job"
	"lyricsync/internal/lyrics"
	"lyricsync/internal/syncer"
	"lyricsync/internal/transcript"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var transcriptPath, referencePath, song, outPath string
	var duration float64

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Align a transcript against reference lyrics and build captions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(transcriptPath) == "" {
				return errors.New("--transcript is required")
			}
			segments, err := transcript.Load(transcriptPath)
			if err != nil {
				return err
			}
			var reference string
			if strings.TrimSpace(referencePath) != "" {
				raw, err := os.ReadFile(referencePath)
				if err != nil {
					return fmt.Errorf("read reference: %w", err)
				}
				reference = string(raw)
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			svc, closeSvc, err := syncer.NewFromConfig(cfg, logger, ctx.recorder)
			if err != nil {
				return err
			}
			defer closeSvc()

			outcome, err := svc.Sync(cmd.Context(), syncer.Request{
				Segments:  segments,
				Reference: reference,
				Song:      lyrics.ParseSongID(song),
				Duration:  duration,
			})
			if err != nil {
				return err
			}
			if strings.TrimSpace(outPath) == "" {
				return writeJSON(cmd, outcome.Lines)
			}
			if err := captions.WriteFile(outPath, outcome.Lines); err != nil {
				return err
			}
			source := outcome.Reference.Source
			if source == "" {
				source = syncer.SourceNone
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d caption lines to %s (reference: %s, aligned: %s)\n",
				len(outcome.Lines), outPath, source, yesNo(outcome.Alignment.Applied))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&transcriptPath, "transcript", "", "Transcript JSON file")
	flags.StringVar(&referencePath, "reference", "", "Reference lyrics file")
	flags.StringVar(&song, "song", "", `Song id as "Artist - Title" for provider lookup`)
	flags.StringVarP(&outPath, "out", "o", "", "Write captions to this file instead of stdout")
	flags.Float64Var(&duration, "duration", 0, "Clamp caption times to this clip length")
	return cmd
}

func newLyricsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "lyrics <artist - title>",
		Short: "Look up reference lyrics through the provider chain",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			song := lyrics.ParseSongID(strings.Join(args, " "))
			if song.Empty() {
				return errors.New("song title is required")
			}
			resolver, err := syncer.NewResolver(cfg, logger)
			if err != nil {
				return err
			}
			result, ok := resolver.Resolve(cmd.Context(), song)
			if !ok {
				return fmt.Errorf("no reference lyrics found for %q", song.String())
			}
			ctx.recorder.RecordReference(result.Source)
			fmt.Fprintf(cmd.ErrOrStderr(), "source: %s\n", result.Source)
			fmt.Fprintln(cmd.OutOrStdout(), result.Text)
			return nil
		},
	}
}

func newBeatsCommand(ctx *commandContext) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "beats <audio>",
		Short: "Estimate tempo and beat times for a WAV, MP3, or FLAC file",
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
			track, err := job.NewBeatDetector(cfg).Detect(path)
			if err != nil {
				return err
			}
			if strings.TrimSpace(outPath) == "" {
				return writeJSON(cmd, track)
			}
			if err := beats.WriteFile(outPath, track); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d beats at %s to %s\n", len(track.BeatTimes), formatTempo(track.TempoBPM), outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write beats JSON to this file instead of stdout")
	return cmd
}

func newWrapCommand(ctx *commandContext) *cobra.Command {
	var maxChars int
	var marker string
	var raw bool

	cmd := &cobra.Command{
		Use:   "wrap <text>",
		Short: "Reflow text into caption lines",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("max-chars") {
				maxChars = cfg.Captions.MaxChars
			}
			if !cmd.Flags().Changed("marker") {
				marker = cfg.Captions.BreakMarker
			}
			wrapped := captions.Wrap(strings.Join(args, " "), maxChars, marker)
			if raw {
				fmt.Fprint(cmd.OutOrStdout(), wrapped)
				return nil
			}
			for _, line := range captions.Lines(wrapped, marker) {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxChars, "max-chars", 0, "Per-line width budget (default captions.max_chars)")
	cmd.Flags().StringVar(&marker, "marker", "", "Line-break marker (default captions.break_marker)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the wrapped text with markers instead of one line per row")
	return cmd
}
