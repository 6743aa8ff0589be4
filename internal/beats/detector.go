package beats

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"

	"lyricsync/internal/fileutil"
)

// Default analysis parameters.
const (
	DefaultFrameSize = 2048
	DefaultHopSize   = 512
	DefaultMinBPM    = 60
	DefaultMaxBPM    = 200
	DefaultTightness = 100
	priorCenterBPM   = 120
)

// Track is the persisted beat analysis.
type Track struct {
	TempoBPM  float64   `json:"tempo_bpm"`
	BeatTimes []float64 `json:"beat_times"`
}

// Config holds detector parameters.
type Config struct {
	FrameSize int
	HopSize   int
	MinBPM    float64
	MaxBPM    float64
	Tightness float64
}

// Detector estimates tempo and beat times.
type Detector struct {
	cfg Config
}

// NewDetector returns a detector; zero fields take the defaults.
func NewDetector(cfg Config) *Detector {
	if cfg.FrameSize <= 0 {
		cfg.FrameSize = DefaultFrameSize
	}
	if cfg.HopSize <= 0 {
		cfg.HopSize = DefaultHopSize
	}
	if cfg.MinBPM <= 0 {
		cfg.MinBPM = DefaultMinBPM
	}
	if cfg.MaxBPM <= cfg.MinBPM {
		cfg.MaxBPM = math.Max(DefaultMaxBPM, cfg.MinBPM*2)
	}
	if cfg.Tightness <= 0 {
		cfg.Tightness = DefaultTightness
	}
	return &Detector{cfg: cfg}
}

// Detect decodes path and analyses it.
func (d *Detector) Detect(path string) (Track, error) {
	samples, sampleRate, err := DecodeFile(path)
	if err != nil {
		return Track{}, err
	}
	return d.DetectSamples(samples, sampleRate), nil
}

// DetectSamples analyses mono samples at sampleRate. Silence or clips shorter
// than one frame yield tempo 0 and no beats.
func (d *Detector) DetectSamples(samples []float64, sampleRate int) Track {
	empty := Track{BeatTimes: []float64{}}
	if sampleRate <= 0 || len(samples) == 0 {
		return empty
	}
	env := d.onsetEnvelope(samples)
	std := stddev(env)
	if len(env) < 2 || std == 0 {
		return empty
	}
	for i := range env {
		env[i] /= std
	}

	fps := float64(sampleRate) / float64(d.cfg.HopSize)
	tempo := d.estimateTempo(env, fps)
	if tempo <= 0 {
		return empty
	}
	frames := d.trackBeats(env, 60*fps/tempo)
	times := make([]float64, len(frames))
	for i, f := range frames {
		times[i] = round3(float64(f) / fps)
	}
	return Track{TempoBPM: round3(tempo), BeatTimes: times}
}

// onsetEnvelope computes half-wave rectified log-magnitude spectral flux,
// averaged over frequency bins. Frames are centred by padding frame/2 zeros.
func (d *Detector) onsetEnvelope(samples []float64) []float64 {
	n, hop := d.cfg.FrameSize, d.cfg.HopSize
	padded := make([]float64, len(samples)+n)
	copy(padded[n/2:], samples)
	frameCount := 1 + (len(padded)-n)/hop
	if frameCount < 1 {
		return nil
	}

	window := hann(n)
	fft := fourier.NewFFT(n)
	frame := make([]float64, n)
	coeffs := make([]complex128, n/2+1)
	prev := make([]float64, n/2+1)
	curr := make([]float64, n/2+1)
	env := make([]float64, frameCount)

	for t := 0; t < frameCount; t++ {
		start := t * hop
		for i := 0; i < n; i++ {
			frame[i] = padded[start+i] * window[i]
		}
		coeffs = fft.Coefficients(coeffs, frame)
		var flux float64
		for k, c := range coeffs {
			mag := math.Hypot(real(c), imag(c))
			curr[k] = math.Log1p(1000 * mag)
			if t > 0 {
				if diff := curr[k] - prev[k]; diff > 0 {
					flux += diff
				}
			}
		}
		env[t] = flux / float64(len(coeffs))
		prev, curr = curr, prev
	}
	return env
}

// estimateTempo picks the autocorrelation lag with the highest prior-weighted
// score within [MinBPM, MaxBPM].
func (d *Detector) estimateTempo(env []float64, fps float64) float64 {
	mean := 0.0
	for _, v := range env {
		mean += v
	}
	mean /= float64(len(env))
	centred := make([]float64, len(env))
	for i, v := range env {
		centred[i] = v - mean
	}

	minLag := int(math.Floor(60 * fps / d.cfg.MaxBPM))
	maxLag := int(math.Ceil(60 * fps / d.cfg.MinBPM))
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(centred)-1 {
		maxLag = len(centred) - 2
	}
	if maxLag < minLag {
		return 0
	}

	ac := make([]float64, maxLag+2)
	for lag := max(minLag-1, 1); lag <= maxLag+1; lag++ {
		var sum float64
		for i := 0; i+lag < len(centred); i++ {
			sum += centred[i] * centred[i+lag]
		}
		ac[lag] = sum / float64(len(centred)-lag)
	}

	bestLag, bestScore := 0, 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		bpm := 60 * fps / float64(lag)
		if bpm < d.cfg.MinBPM || bpm > d.cfg.MaxBPM {
			continue
		}
		smoothed := ac[lag] + 0.5*(ac[lag-1]+ac[lag+1])
		score := smoothed * tempoPrior(bpm)
		if score > bestScore {
			bestLag, bestScore = lag, score
		}
	}
	if bestLag == 0 {
		return 0
	}
	return 60 * fps / float64(bestLag)
}

// tempoPrior is a log-normal weight centred on 120 BPM with a one-octave spread.
func tempoPrior(bpm float64) float64 {
	octaves := math.Log2(bpm / priorCenterBPM)
	return math.Exp(-0.5 * octaves * octaves)
}

// trackBeats places beats by dynamic programming over the onset envelope and
// returns their frame indices in ascending order.
func (d *Detector) trackBeats(env []float64, period float64) []int {
	local := localScore(env, period)
	n := len(local)
	cum := make([]float64, n)
	back := make([]int, n)

	farthest := int(math.Round(2 * period))
	nearest := max(int(math.Round(period/2)), 1)
	for i := 0; i < n; i++ {
		best, bestJ := math.Inf(-1), -1
		for j := max(i-farthest, 0); j <= i-nearest; j++ {
			gap := math.Log(float64(i-j) / period)
			score := cum[j] - d.cfg.Tightness*gap*gap
			if score > best {
				best, bestJ = score, j
			}
		}
		cum[i] = local[i]
		back[i] = -1
		if bestJ >= 0 && best > 0 {
			cum[i] += best
			back[i] = bestJ
		}
	}

	last := lastStrongPeak(cum)
	if last < 0 {
		return nil
	}
	var beats []int
	for b := last; b >= 0; b = back[b] {
		beats = append(beats, b)
	}
	for i, j := 0, len(beats)-1; i < j; i, j = i+1, j-1 {
		beats[i], beats[j] = beats[j], beats[i]
	}
	return trimWeak(beats, local)
}

// localScore smooths the envelope with a Gaussian whose width tracks the period.
func localScore(env []float64, period float64) []float64 {
	half := max(int(math.Round(period)), 1)
	kernel := make([]float64, 2*half+1)
	for k := -half; k <= half; k++ {
		x := float64(k) * 32 / period
		kernel[k+half] = math.Exp(-0.5 * x * x)
	}
	out := make([]float64, len(env))
	for i := range env {
		var sum float64
		for k := -half; k <= half; k++ {
			if j := i + k; j >= 0 && j < len(env) {
				sum += env[j] * kernel[k+half]
			}
		}
		out[i] = sum
	}
	return out
}

// lastStrongPeak returns the last local maximum of cum that reaches half the
// median peak height, or -1.
func lastStrongPeak(cum []float64) int {
	var peaks []int
	for i := range cum {
		left := i == 0 || cum[i] > cum[i-1]
		right := i == len(cum)-1 || cum[i] >= cum[i+1]
		if left && right {
			peaks = append(peaks, i)
		}
	}
	if len(peaks) == 0 {
		return -1
	}
	heights := make([]float64, len(peaks))
	for i, p := range peaks {
		heights[i] = cum[p]
	}
	sort.Float64s(heights)
	threshold := 0.5 * heights[len(heights)/2]
	for i := len(peaks) - 1; i >= 0; i-- {
		if cum[peaks[i]] >= threshold {
			return peaks[i]
		}
	}
	return peaks[len(peaks)-1]
}

// trimWeak drops leading and trailing beats whose local score falls below half
// the RMS of all beat scores.
func trimWeak(beats []int, local []float64) []int {
	if len(beats) == 0 {
		return beats
	}
	var sq float64
	for _, b := range beats {
		sq += local[b] * local[b]
	}
	threshold := 0.5 * math.Sqrt(sq/float64(len(beats)))
	start, end := 0, len(beats)
	for start < end && local[beats[start]] < threshold {
		start++
	}
	for end > start && local[beats[end-1]] < threshold {
		end--
	}
	return beats[start:end]
}

func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var ss float64
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// WriteFile persists a track as JSON.
func WriteFile(path string, track Track) error {
	if track.BeatTimes == nil {
		track.BeatTimes = []float64{}
	}
	if err := fileutil.WriteJSON(path, track); err != nil {
		return fmt.Errorf("write beats: %w", err)
	}
	return nil
}

// ReadFile loads a track written by WriteFile.
func ReadFile(path string) (Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Track{}, fmt.Errorf("read beats: %w", err)
	}
	var track Track
	if err := json.Unmarshal(data, &track); err != nil {
		return Track{}, fmt.Errorf("parse beats %s: %w", path, err)
	}
	return track, nil
}
