// Package analysis inspects recorded traces after a run.
//
//   - [PowerSpectrum] and [DominantFrequency]: spectral content of a column,
//     used to spot oscillation from wave reflections on a delayed link
//   - [NewPhasePortrait]: one column against another, e.g. local against
//     remote position
//   - [Settle]: when a column stays within a band of its final value
package analysis
