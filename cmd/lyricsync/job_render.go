package main

import (
	"fmt"
	"io"
	"strings"

	"lyricsync/internal/job"
)

func renderJobSummary(out io.Writer, data job.Data) string {
	rows := [][]string{
		{"Job", data.JobID},
		{"Song", data.Song},
		{"Folder", data.JobFolder},
		{"Clip", fmt.Sprintf("%.2fs from %.2fs", data.ClipDuration, data.ClipStart)},
		{"Reference", data.ReferenceSource},
		{"Aligned", fmt.Sprintf("%s (score %.2f)", yesNo(data.Aligned), data.AlignmentScore)},
		{"Tempo", formatTempo(data.TempoBPM)},
		{"Colors", strings.Join(data.Colors, " ")},
		{"Correlation", data.CorrelationID},
	}
	return renderTable(out, []string{"Field", "Value"}, rows, nil)
}

func renderBatchResults(out io.Writer, results []job.BatchResult) string {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		status := "completed"
		detail := ""
		if res.Err != nil {
			status = "failed"
			detail = res.Err.Error()
		}
		rows = append(rows, []string{
			job.FolderName(res.Request.ID),
			res.Request.Song,
			status,
			formatTempo(res.Data.TempoBPM),
			yesNo(res.Data.Aligned),
			detail,
		})
	}
	return renderTable(out,
		[]string{"Job", "Song", "Status", "Tempo", "Aligned", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	)
}

func formatTempo(bpm float64) string {
	if bpm <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f BPM", bpm)
}
