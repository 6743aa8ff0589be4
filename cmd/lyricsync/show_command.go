package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"lyricsync/internal/captions"
)

// markerGlyph stands in for the caption line-break marker in tables.
const markerGlyph = " / "

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <lyrics.json>",
		Short: "Display a caption file as a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			lines, err := captions.ReadFile(args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, lines)
			}
			stdout := cmd.OutOrStdout()
			if len(lines) == 0 {
				fmt.Fprintln(stdout, "No caption lines")
				return nil
			}
			fmt.Fprint(stdout, renderCaptionTable(stdout, lines, cfg.Captions.BreakMarker))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print caption lines as JSON")
	return cmd
}

func renderCaptionTable(out io.Writer, lines []captions.Line, marker string) string {
	rows := make([][]string, 0, len(lines))
	for i, line := range lines {
		rows = append(rows, []string{
			strconv.Itoa(i+1),
			fmt.Sprintf("%.2f", line.T),
			displayCaption(line.Prev, marker),
			displayCaption(line.Current, marker),
			displayCaption(line.Next1, marker),
			displayCaption(line.Next2, marker),
		})
	}
	return renderTable(out,
		[]string{"#", "Time", "Previous", "Current", "Next", "After"},
		rows,
		[]columnAlignment{alignRight, alignRight},
	)
}

func displayCaption(text, marker string) string {
	if marker == "" {
		marker = captions.DefaultBreakMarker
	}
	return strings.ReplaceAll(text, marker, markerGlyph)
}
