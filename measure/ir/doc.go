// Package ir provides supplementary impulse response metrics: clarity,
// definition, and center time, each derived from the early/late energy
// split of an impulse response.
//
//   - C50, C80: Clarity (early-to-late energy ratio at 50ms and 80ms)
//   - D50, D80: Definition (early energy fraction at 50ms and 80ms)
//   - Center Time: Temporal energy centroid
//
// Reverberation-time estimation (EDT/T20/T30/RT60Direct) lives in
// decaytime, not here.
//
// # Usage
//
//	analyzer := ir.NewAnalyzer(48000) // sample rate
//	c80, err := analyzer.Clarity(impulseResponse, 80)
package ir
