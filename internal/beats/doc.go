// Package beats estimates tempo and beat positions from an audio file.
//
// Audio is decoded with beep and mixed to mono. A Hann-windowed STFT feeds a
// log-magnitude spectral flux onset envelope; tempo comes from the envelope's
// autocorrelation weighted by a log-normal prior around 120 BPM, and beats are
// placed by dynamic programming that rewards onsets while penalising deviation
// from the tempo period. The analysis is deterministic.
package beats
