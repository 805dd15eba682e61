// Package analysis extracts orbital properties from recorded runs.
//
//   - [OrbitalPeriod]: dominant period of a body's motion about the anchor,
//     read off a Hann-windowed FFT of its relative x coordinate
//   - [KeplerPeriod]: the period Kepler's third law predicts for comparison
//   - [Divergence]: separation between two runs of the same system, such as
//     the two force orderings
//
// A recording should span at least a few orbits; the frequency resolution of
// the spectrum is one cycle per recording.
package analysis
