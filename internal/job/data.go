package job

import (
	"fmt"

	"lyricsync/internal/fileutil"
)

// Request describes one job. It is also the shape of a [[job]] entry in a
// batch file.
type Request struct {
	ID            string  `toml:"id"`
	Song          string  `toml:"song"`
	AudioSource   string  `toml:"audio_url"`
	CoverSource   string  `toml:"cover_url"`
	ReferencePath string  `toml:"reference"`
	ClipStart     float64 `toml:"start"`
	ClipDuration  float64 `toml:"duration"`
	Force         bool    `toml:"force"`
}

// Data is the job summary written to job_data.json for downstream editing
// scripts.
type Data struct {
	JobID           string   `json:"job_id"`
	JobFolder       string   `json:"job_folder"`
	CorrelationID   string   `json:"correlation_id"`
	Song            string   `json:"song"`
	AudioSource     string   `json:"audio_source"`
	AudioFull       string   `json:"audio_full"`
	AudioTrimmed    string   `json:"audio_trimmed"`
	ClipStart       float64  `json:"clip_start"`
	ClipDuration    float64  `json:"clip_duration"`
	CoverImage      string   `json:"cover_image"`
	Colors          []string `json:"colors"`
	TranscriptFile  string   `json:"transcript_file"`
	LyricsFile      string   `json:"lyrics_file"`
	BeatsFile       string   `json:"beats_file"`
	TempoBPM        float64  `json:"tempo_bpm"`
	ReferenceSource string   `json:"reference_source"`
	AlignmentScore  float64  `json:"alignment_score"`
	Aligned         bool     `json:"aligned"`
	UpdatedAt       string   `json:"updated_at"`
}

// ReadData loads job_data.json from path.
func ReadData(path string) (Data, error) {
	var data Data
	if err := fileutil.ReadJSON(path, &data); err != nil {
		return Data{}, fmt.Errorf("read job data: %w", err)
	}
	return data, nil
}

// WriteData persists data to path.
func WriteData(path string, data Data) error {
	if data.Colors == nil {
		data.Colors = []string{}
	}
	if err := fileutil.WriteJSON(path, data); err != nil {
		return fmt.Errorf("write job data: %w", err)
	}
	return nil
}

// String renders a short human summary of the job data.
func (d Data) String() string {
	return fmt.Sprintf("%s song=%q aligned=%t reference=%s tempo=%.1f", d.JobID, d.Song, d.Aligned, d.ReferenceSource, d.TempoBPM)
}
