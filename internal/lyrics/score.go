package lyrics

import "lyricsync/internal/textutil"

const (
	titleWeight  = 0.6
	artistWeight = 0.4
)

// Candidate is one search hit returned by a provider.
type Candidate struct {
	Title  string
	Artist string
	URL    string
}

// Score rates how well a candidate matches song. Title similarity counts 0.6
// and artist similarity 0.4; with no artist in the song the artist term is 0.
func Score(song SongID, c Candidate) float64 {
	score := titleWeight * textutil.Ratio(textutil.Fold(song.Title), textutil.Fold(c.Title))
	if song.Artist != "" {
		score += artistWeight * textutil.Ratio(textutil.Fold(song.Artist), textutil.Fold(c.Artist))
	}
	return score
}

// BestCandidate returns the index and score of the highest-scoring candidate.
// The first maximum wins. The index is -1 when candidates is empty.
func BestCandidate(song SongID, candidates []Candidate) (int, float64) {
	best, bestScore := -1, 0.0
	for i, c := range candidates {
		if score := Score(song, c); best < 0 || score > bestScore {
			best, bestScore = i, score
		}
	}
	return best, bestScore
}
