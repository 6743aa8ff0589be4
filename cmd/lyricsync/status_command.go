package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lyricsync/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show tool, provider, and directory health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			for _, line := range renderSectionHeader("Configuration", colorize) {
				fmt.Fprintln(stdout, line)
			}
			fmt.Fprintln(stdout, renderStatusLine("Config file", statusInfo, ctx.configPath, colorize))
			fmt.Fprintln(stdout, resultLine(preflight.CheckDirectoryAccess("Jobs directory", cfg.Paths.JobsDir), true, colorize))
			fmt.Fprintln(stdout, resultLine(preflight.CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir), true, colorize))
			fmt.Fprintln(stdout, resultLine(preflight.CheckDirectoryAccess("Log directory", cfg.Paths.LogDir), false, colorize))
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range dependencyLines(preflight.CheckSystemDeps(cfg), colorize) {
				fmt.Fprintln(stdout, line)
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Lyric Providers", colorize) {
				fmt.Fprintln(stdout, line)
			}
			if offline {
				fmt.Fprintln(stdout, renderStatusLine("Providers", statusInfo, "Skipped (--offline)", colorize))
			} else {
				fmt.Fprintln(stdout, resultLine(preflight.CheckGeniusFromConfig(cmd.Context(), cfg), false, colorize))
				fmt.Fprintln(stdout, resultLine(preflight.CheckAZLyricsFromConfig(cmd.Context(), cfg), false, colorize))
			}
			fmt.Fprintln(stdout, resultLine(preflight.CheckLyricCache(cmd.Context(), cfg), false, colorize))
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip lyric provider connectivity checks")
	return cmd
}
