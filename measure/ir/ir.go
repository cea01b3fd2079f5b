package ir

import (
	"errors"
	"math"
)

// Errors returned by IR analysis functions.
var (
	ErrEmptyIR           = errors.New("ir: impulse response is empty")
	ErrInvalidSampleRate = errors.New("ir: sample rate must be positive")
	ErrInvalidTime       = errors.New("ir: time must be positive")
)

// Analyzer computes supplementary IR metrics (clarity, definition, center
// time) at a fixed sample rate. The reverberation-time estimators this
// engine reports (EDT/T20/T30/RT60Direct) live in decaytime, not here.
type Analyzer struct {
	SampleRate float64
}

// NewAnalyzer creates an IR analyzer with the given sample rate.
func NewAnalyzer(sampleRate float64) *Analyzer {
	return &Analyzer{SampleRate: sampleRate}
}

// Definition computes the definition D(t) at a given time boundary in ms.
//
//	D(t) = ∫₀ᵗ h²(τ)dτ / ∫₀^∞ h²(τ)dτ
//
// Returns a ratio between 0 and 1.
func (a *Analyzer) Definition(ir []float64, timeMs float64) (float64, error) {
	if len(ir) == 0 {
		return 0, ErrEmptyIR
	}

	if a.SampleRate <= 0 {
		return 0, ErrInvalidSampleRate
	}

	if timeMs <= 0 {
		return 0, ErrInvalidTime
	}

	return a.definition(ir, timeMs), nil
}

// definition computes D(t) (unchecked).
func (a *Analyzer) definition(ir []float64, timeMs float64) float64 {
	boundarySample := int(math.Round(timeMs * 0.001 * a.SampleRate))
	if boundarySample <= 0 {
		return 0
	}

	if boundarySample >= len(ir) {
		return 1
	}

	var earlyEnergy, totalEnergy float64

	for i, v := range ir {
		e := v * v

		totalEnergy += e
		if i < boundarySample {
			earlyEnergy += e
		}
	}

	if totalEnergy <= 0 {
		return 0
	}

	return earlyEnergy / totalEnergy
}

// Clarity computes the clarity C(t) at a given time boundary in ms.
//
//	C(t) = 10*log10( ∫₀ᵗ h²(τ)dτ / ∫ₜ^∞ h²(τ)dτ )
//
// Returns the value in dB.
func (a *Analyzer) Clarity(ir []float64, timeMs float64) (float64, error) {
	if len(ir) == 0 {
		return 0, ErrEmptyIR
	}

	if a.SampleRate <= 0 {
		return 0, ErrInvalidSampleRate
	}

	if timeMs <= 0 {
		return 0, ErrInvalidTime
	}

	return a.clarity(ir, timeMs), nil
}

// clarity computes C(t) (unchecked).
func (a *Analyzer) clarity(ir []float64, timeMs float64) float64 {
	boundarySample := int(math.Round(timeMs * 0.001 * a.SampleRate))
	if boundarySample <= 0 {
		return math.Inf(-1)
	}

	if boundarySample >= len(ir) {
		return math.Inf(1)
	}

	var earlyEnergy, lateEnergy float64

	for i, v := range ir {
		e := v * v
		if i < boundarySample {
			earlyEnergy += e
		} else {
			lateEnergy += e
		}
	}

	if lateEnergy <= 0 {
		return math.Inf(1)
	}

	if earlyEnergy <= 0 {
		return math.Inf(-1)
	}

	return 10 * math.Log10(earlyEnergy/lateEnergy)
}

// CenterTime computes the temporal energy centroid of the impulse response.
//
//	Ts = ∫₀^∞ τ·h²(τ)dτ / ∫₀^∞ h²(τ)dτ
//
// Returns the center time in seconds.
func (a *Analyzer) CenterTime(ir []float64) (float64, error) {
	if len(ir) == 0 {
		return 0, ErrEmptyIR
	}

	if a.SampleRate <= 0 {
		return 0, ErrInvalidSampleRate
	}

	return a.centerTime(ir), nil
}

// centerTime computes Ts (unchecked).
func (a *Analyzer) centerTime(ir []float64) float64 {
	var numerator, denominator float64

	for i, v := range ir {
		e := v * v
		t := float64(i) / a.SampleRate
		numerator += t * e
		denominator += e
	}

	if denominator <= 0 {
		return 0
	}

	return numerator / denominator
}
