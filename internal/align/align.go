package align

import (
	"log/slog"
	"strings"

	"lyricsync/internal/logging"
	"lyricsync/internal/lyrics"
	"lyricsync/internal/textutil"
	"lyricsync/internal/transcript"
)

// Default alignment parameters.
const (
	DefaultAnchorSegments = 3
	DefaultMinRatio       = 0.4
)

// Reasons reported in Result.Reason.
const (
	ReasonAligned        = "aligned"
	ReasonLowConfidence  = "low_confidence"
	ReasonEmptyAnchor    = "empty_anchor"
	ReasonEmptyReference = "empty_reference"
	ReasonAnchorTooLong  = "anchor_too_long"
)

// Window is a span of reference words [Start, End) and its similarity score.
type Window struct {
	Start int     `json:"start"`
	End   int     `json:"end"`
	Score float64 `json:"score"`
}

// Result is the outcome of an alignment attempt. Segments is always a fresh
// slice; when Applied is false it holds the input unchanged.
type Result struct {
	Segments []transcript.Segment
	Window   Window
	Applied  bool
	Reason   string
}

// Aligner rewrites transcription segments using reference text.
type Aligner interface {
	Align(segments []transcript.Segment, reference string) Result
}

// BestWindow slides a window of len(anchor) words across reference and
// returns the offset with the highest ratio. The first maximum wins. ok is
// false when either input is empty or the anchor is longer than the reference.
func BestWindow(anchor, reference []string) (Window, bool) {
	if len(anchor) == 0 || len(reference) == 0 || len(anchor) > len(reference) {
		return Window{}, false
	}
	joinedAnchor := strings.Join(anchor, " ")
	best := Window{Start: 0, End: len(anchor), Score: -1}
	for i := 0; i+len(anchor) <= len(reference); i++ {
		score := textutil.Ratio(joinedAnchor, strings.Join(reference[i:i+len(anchor)], " "))
		if score > best.Score {
			best = Window{Start: i, End: i + len(anchor), Score: score}
		}
	}
	return best, true
}

// AnchorAligner implements Aligner with anchor-based window search.
type AnchorAligner struct {
	AnchorSegments int
	MinRatio       float64
	Logger         *slog.Logger
}

// NewAnchorAligner returns an aligner with the given parameters. Non-positive
// values fall back to the defaults.
func NewAnchorAligner(anchorSegments int, minRatio float64, logger *slog.Logger) *AnchorAligner {
	if anchorSegments <= 0 {
		anchorSegments = DefaultAnchorSegments
	}
	if minRatio <= 0 {
		minRatio = DefaultMinRatio
	}
	return &AnchorAligner{
		AnchorSegments: anchorSegments,
		MinRatio:       minRatio,
		Logger:         logging.NewComponentLogger(logger, "align"),
	}
}

// Align implements Aligner. Inputs are never modified.
func (a *AnchorAligner) Align(segments []transcript.Segment, reference string) Result {
	out := transcript.Clone(segments)
	anchorCount := a.AnchorSegments
	if anchorCount <= 0 {
		anchorCount = DefaultAnchorSegments
	}
	minRatio := a.MinRatio
	if minRatio <= 0 {
		minRatio = DefaultMinRatio
	}

	segmentWords := make([][]string, len(out))
	var anchor []string
	for i, seg := range out {
		segmentWords[i] = textutil.Normalize(seg.Text)
		if i < anchorCount {
			anchor = append(anchor, segmentWords[i]...)
		}
	}
	refWords := textutil.Normalize(lyrics.CleanText(reference))

	switch {
	case len(anchor) == 0:
		return a.decline(out, Window{}, ReasonEmptyAnchor)
	case len(refWords) == 0:
		return a.decline(out, Window{}, ReasonEmptyReference)
	case len(anchor) > len(refWords):
		return a.decline(out, Window{}, ReasonAnchorTooLong)
	}

	window, _ := BestWindow(anchor, refWords)
	if window.Score < minRatio {
		return a.decline(out, window, ReasonLowConfidence)
	}

	cursor := window.Start
	for i := range out {
		n := len(segmentWords[i])
		if n == 0 {
			continue
		}
		if cursor >= len(refWords) {
			break
		}
		end := min(cursor+n, len(refWords))
		out[i].Text = strings.Join(refWords[cursor:end], " ")
		cursor = end
	}

	if a.Logger != nil {
		a.Logger.Info("alignment applied",
			logging.Args(append(logging.DecisionAttrs("alignment", ReasonAligned, "window score above threshold"),
				logging.Float64("score", window.Score),
				logging.Int("window_start", window.Start),
				logging.Int("reference_words", len(refWords)),
			)...)...,
		)
	}
	return Result{Segments: out, Window: window, Applied: true, Reason: ReasonAligned}
}

func (a *AnchorAligner) decline(segments []transcript.Segment, window Window, reason string) Result {
	if a.Logger != nil {
		a.Logger.Info("alignment skipped",
			logging.Args(append(logging.DecisionAttrs("alignment", "transcript_kept", reason),
				logging.Float64("score", window.Score),
			)...)...,
		)
	}
	return Result{Segments: segments, Window: window, Applied: false, Reason: reason}
}
