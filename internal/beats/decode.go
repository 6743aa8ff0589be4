package beats

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"

	"lyricsync/internal/services"
)

// DecodeFile reads an audio file and returns mono samples and the sample rate.
// The decoder is chosen by extension (.wav, .mp3, .flac).
func DecodeFile(path string) ([]float64, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, services.Wrap(services.ErrValidation, "beats", "open audio", path, err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		streamer, format, err = wav.Decode(file)
	case ".mp3":
		streamer, format, err = mp3.Decode(file)
	case ".flac":
		streamer, format, err = flac.Decode(file)
	default:
		file.Close()
		return nil, 0, services.Wrap(services.ErrValidation, "beats", "decode audio", fmt.Sprintf("unsupported format %q", ext), nil)
	}
	if err != nil {
		file.Close()
		return nil, 0, services.Wrap(services.ErrValidation, "beats", "decode audio", path, err)
	}
	defer streamer.Close()

	samples, err := readMono(streamer)
	if err != nil {
		return nil, 0, services.Wrap(services.ErrValidation, "beats", "read audio", path, err)
	}
	return samples, int(format.SampleRate), nil
}

func readMono(streamer beep.Streamer) ([]float64, error) {
	buf := make([][2]float64, 4096)
	var mono []float64
	for {
		n, ok := streamer.Stream(buf)
		for _, frame := range buf[:n] {
			mono = append(mono, (frame[0]+frame[1])/2)
		}
		if !ok {
			break
		}
	}
	if err := streamer.Err(); err != nil {
		return nil, err
	}
	return mono, nil
}
