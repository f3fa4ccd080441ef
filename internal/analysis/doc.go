// Package analysis inspects recorded weapon runs.
//
//   - [PowerSpectrum] and [DominantFrequency]: oscillation of a sampled
//     series, typically the residual velocity of locked fragments
//   - [Timeline]: the modes a run passed through and for how long
//   - [SettleTime]: when the blade last came to rest
//   - [NewPortrait]: two sampled series against each other as ASCII art
//
// # Drive Ringing
//
// A stiff joint drive that overshoots shows up as a peak in the residual
// spectrum:
//
//	f, _ := analysis.DominantFrequency(analysis.Residual.Values(samples), dt)
package analysis
