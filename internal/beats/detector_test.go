package beats

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"lyricsync/internal/services"
)

const (
	testRate     = 22050
	clickSpacing = 22 * DefaultHopSize // 22 frames at the default hop
)

func clickTrack(seconds float64) []float64 {
	samples := make([]float64, int(seconds*testRate))
	for start := testRate / 4; start < len(samples); start += clickSpacing {
		for i := 0; i < 400 && start+i < len(samples); i++ {
			decay := math.Exp(-float64(i) / 60)
			samples[start+i] = 0.8 * decay * math.Sin(2*math.Pi*1000*float64(i)/testRate)
		}
	}
	return samples
}

func expectedTempo() float64 {
	return 60 * float64(testRate) / float64(clickSpacing)
}

func TestDetectSamplesClickTrack(t *testing.T) {
	track := NewDetector(Config{}).DetectSamples(clickTrack(12), testRate)

	if math.Abs(track.TempoBPM-expectedTempo()) > 3 {
		t.Fatalf("tempo = %.2f, want about %.2f", track.TempoBPM, expectedTempo())
	}
	if len(track.BeatTimes) < 15 {
		t.Fatalf("expected at least 15 beats, got %d", len(track.BeatTimes))
	}
	if !sort.Float64sAreSorted(track.BeatTimes) {
		t.Fatalf("beat times not ascending: %v", track.BeatTimes)
	}
	gaps := make([]float64, 0, len(track.BeatTimes)-1)
	for i := 1; i < len(track.BeatTimes); i++ {
		gaps = append(gaps, track.BeatTimes[i]-track.BeatTimes[i-1])
	}
	sort.Float64s(gaps)
	want := float64(clickSpacing) / testRate
	if median := gaps[len(gaps)/2]; math.Abs(median-want) > 0.03 {
		t.Fatalf("median beat gap = %.3f, want about %.3f", median, want)
	}
}

func TestDetectSamplesSilence(t *testing.T) {
	track := NewDetector(Config{}).DetectSamples(make([]float64, testRate*3), testRate)
	if track.TempoBPM != 0 {
		t.Fatalf("silence tempo = %v, want 0", track.TempoBPM)
	}
	if track.BeatTimes == nil || len(track.BeatTimes) != 0 {
		t.Fatalf("silence beats = %#v, want empty slice", track.BeatTimes)
	}
}

func TestDetectSamplesDeterministic(t *testing.T) {
	samples := clickTrack(8)
	det := NewDetector(Config{})
	first := det.DetectSamples(samples, testRate)
	second := det.DetectSamples(samples, testRate)
	if first.TempoBPM != second.TempoBPM || len(first.BeatTimes) != len(second.BeatTimes) {
		t.Fatalf("results differ: %+v vs %+v", first, second)
	}
	for i := range first.BeatTimes {
		if first.BeatTimes[i] != second.BeatTimes[i] {
			t.Fatalf("beat %d differs: %v vs %v", i, first.BeatTimes[i], second.BeatTimes[i])
		}
	}
}

func writeWAV(t *testing.T, path string, samples []float64) {
	t.Helper()
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	pos := 0
	streamer := beep.StreamerFunc(func(buf [][2]float64) (int, bool) {
		if pos >= len(samples) {
			return 0, false
		}
		n := 0
		for n < len(buf) && pos < len(samples) {
			buf[n] = [2]float64{samples[pos], samples[pos]}
			n++
			pos++
		}
		return n, true
	})
	format := beep.Format{SampleRate: testRate, NumChannels: 1, Precision: 2}
	if err := wav.Encode(file, streamer, format); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestDetectWAVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	writeWAV(t, path, clickTrack(10))

	track, err := NewDetector(Config{}).Detect(path)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if math.Abs(track.TempoBPM-expectedTempo()) > 3 {
		t.Fatalf("tempo = %.2f, want about %.2f", track.TempoBPM, expectedTempo())
	}
}

func TestDetectRejectsUnreadableAudio(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "clip.wav")
	if err := os.WriteFile(corrupt, []byte("not audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	cases := []string{corrupt, filepath.Join(dir, "missing.wav"), filepath.Join(dir, "clip.ogg")}
	for _, path := range cases {
		if _, err := NewDetector(Config{}).Detect(path); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("Detect(%s) err = %v, want validation error", filepath.Base(path), err)
		}
	}
}

func TestTrackFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beats.json")
	if err := WriteFile(path, Track{TempoBPM: 0}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := "{\n  \"tempo_bpm\": 0,\n  \"beat_times\": []\n}"; string(data) != want {
		t.Fatalf("file = %q, want %q", data, want)
	}
	track, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if track.TempoBPM != 0 || len(track.BeatTimes) != 0 {
		t.Fatalf("unexpected track %+v", track)
	}
}

func TestTempoPriorPeaksAt120(t *testing.T) {
	if tempoPrior(120) != 1 {
		t.Fatalf("prior(120) = %v", tempoPrior(120))
	}
	if got := tempoPrior(60); math.Abs(got-math.Exp(-0.5)) > 1e-9 {
		t.Fatalf("prior(60) = %v", got)
	}
}
