package job

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"lyricsync/internal/textutil"
)

// Artifact file names inside a job folder.
const (
	AudioFullFile    = "audio_full.mp3"
	AudioTrimmedFile = "audio_trimmed.wav"
	CoverFile        = "cover.png"
	TranscriptFile   = "transcript.json"
	ReferenceFile    = "reference.txt"
	LyricsFile       = "lyrics.json"
	BeatsFile        = "beats.json"
	DataFile         = "job_data.json"
	lockFile         = ".lock"
	folderPrefix     = "job_"
)

// Layout resolves artifact paths for one job folder.
type Layout struct {
	Dir string
}

// NewLayout returns the layout for job id under jobsDir.
func NewLayout(jobsDir, id string) Layout {
	return Layout{Dir: filepath.Join(jobsDir, FolderName(id))}
}

// Name returns the folder name, which doubles as the job identifier in logs.
func (l Layout) Name() string { return filepath.Base(l.Dir) }

func (l Layout) AudioFull() string { return filepath.Join(l.Dir, AudioFullFile) }
func (l Layout) AudioTrimmed() string { return filepath.Join(l.Dir, AudioTrimmedFile) }
func (l Layout) Cover() string { return filepath.Join(l.Dir, CoverFile) }
func (l Layout) Transcript() string { return filepath.Join(l.Dir, TranscriptFile) }
func (l Layout) Reference() string { return filepath.Join(l.Dir, ReferenceFile) }
func (l Layout) Lyrics() string { return filepath.Join(l.Dir, LyricsFile) }
func (l Layout) Beats() string { return filepath.Join(l.Dir, BeatsFile) }
func (l Layout) Data() string { return filepath.Join(l.Dir, DataFile) }
func (l Layout) Lock() string { return filepath.Join(l.Dir, lockFile) }

// FolderName maps a job id to its folder name. Numeric ids are zero-padded
// to three digits ("7" -> "job_007"); other ids are sanitized.
func FolderName(id string) string {
	id = strings.TrimPrefix(strings.TrimSpace(id), folderPrefix)
	if n, err := strconv.Atoi(id); err == nil && n >= 0 {
		return fmt.Sprintf("%s%03d", folderPrefix, n)
	}
	return folderPrefix + textutil.SanitizeToken(id)
}

// NextID returns the smallest numeric id greater than every existing
// job_NNN folder under jobsDir, skipping ids in reserved.
func NextID(jobsDir string, reserved map[string]bool) (string, error) {
	entries, err := os.ReadDir(jobsDir)
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("list jobs directory: %w", err)
	}
	highest := 0
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), folderPrefix) {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(entry.Name(), folderPrefix)); err == nil && n > highest {
			highest = n
		}
	}
	for n := highest + 1; ; n++ {
		id := fmt.Sprintf("%03d", n)
		if !reserved[FolderName(id)] {
			return id, nil
		}
	}
}
