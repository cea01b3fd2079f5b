// Package decaytime estimates EDT, T20, T30, and direct RT60 from a
// Schroeder decay curve via least-squares regression with correlation
// gating and plausibility checks.
package decaytime

import (
	"fmt"
	"math"

	"github.com/cwbudde/reverbeng/dsp/core"
	"github.com/cwbudde/reverbeng/engineerr"
	"github.com/cwbudde/reverbeng/schroeder"
)

// CorrelationGate is the minimum acceptable |Pearson r| for a regression to
// be trusted; estimates below this are rejected with LowCorrelation.
const CorrelationGate = 0.9

// Plausibility window for a decay time, in seconds.
const (
	MinPlausibleSeconds = 0.05
	MaxPlausibleSeconds = 15.0
)

// NoiseFloorClampDB bounds peak-level and noise-floor dB helpers away from
// -Inf for silent or near-silent input.
const NoiseFloorClampDB = -120.0

// ThresholdPair names the (startDB, endDB) window a decay-time estimator
// regresses over. StartDB must be greater than EndDB; both are <= 0.
type ThresholdPair struct {
	StartDB float64
	EndDB   float64
}

// The four standard threshold pairs from spec.md §4.6.
var (
	EDTPair        = ThresholdPair{StartDB: 0, EndDB: -10}
	T20Pair        = ThresholdPair{StartDB: -5, EndDB: -25}
	T30Pair        = ThresholdPair{StartDB: -5, EndDB: -35}
	RT60DirectPair = ThresholdPair{StartDB: -5, EndDB: -65}
)

// Regression is the least-squares fit of a decay-curve segment.
type Regression struct {
	SlopeDBPerSec float64
	InterceptDB   float64
	R             float64 // Pearson correlation coefficient, |R| <= 1
}

// DecayTimes holds the four optional per-band decay-time estimates. A nil
// field means the corresponding estimator failed its quality gate or the
// pair was never requested.
type DecayTimes struct {
	EDT        *float64 `json:"edt_seconds,omitempty"`
	T20        *float64 `json:"t20_seconds,omitempty"`
	T30        *float64 `json:"t30_seconds,omitempty"`
	RT60Direct *float64 `json:"rt60_direct_seconds,omitempty"`
}

// Measured picks the single "measured RT60" for a band per the priority
// rule direct > T30 > T20 > EDT. Returns nil if every estimator failed.
func (dt DecayTimes) Measured() *float64 {
	switch {
	case dt.RT60Direct != nil:
		return dt.RT60Direct
	case dt.T30 != nil:
		return dt.T30
	case dt.T20 != nil:
		return dt.T20
	case dt.EDT != nil:
		return dt.EDT
	default:
		return nil
	}
}

// Options selects which decay-time estimators to compute.
type Options struct {
	ComputeEDT        bool
	ComputeT20        bool
	ComputeT30        bool
	ComputeRT60Direct bool
}

// Compute estimates the requested decay times from a Schroeder curve.
// Failures of individual estimators are absorbed (the corresponding field
// stays nil); Compute itself never returns an error.
func Compute(c schroeder.Curve, o Options) DecayTimes {
	var dt DecayTimes

	if o.ComputeEDT {
		if v, _, err := Estimate(c, EDTPair); err == nil {
			dt.EDT = &v
		}
	}

	if o.ComputeT20 {
		if v, _, err := Estimate(c, T20Pair); err == nil {
			dt.T20 = &v
		}
	}

	if o.ComputeT30 {
		if v, _, err := Estimate(c, T30Pair); err == nil {
			dt.T30 = &v
		}
	}

	if o.ComputeRT60Direct {
		if v, _, err := Estimate(c, RT60DirectPair); err == nil {
			dt.RT60Direct = &v
		}
	}

	return dt
}

// Estimate computes a single decay-time estimate from curve c over the
// given threshold pair.
//
//  1. Find i_s = first index with L_i <= StartDB, i_e = first index with
//     L_i <= EndDB after i_s. Fails with InvalidDecayRange if not both found.
//  2. Least-squares regression over [i_s, i_e] yields slope (dB/s) and
//     Pearson r.
//  3. Reject with LowCorrelation if |r| < CorrelationGate.
//  4. RT = 60/|slope|.
//  5. Reject with ImplausibleResult unless RT is in
//     [MinPlausibleSeconds, MaxPlausibleSeconds].
func Estimate(c schroeder.Curve, pair ThresholdPair) (float64, Regression, error) {
	if len(c.LevelDB) == 0 {
		return 0, Regression{}, engineerr.ErrInsufficientData
	}

	startIdx, endIdx := -1, -1

	for i, v := range c.LevelDB {
		if startIdx < 0 && v <= pair.StartDB {
			startIdx = i
		}

		if startIdx >= 0 && v <= pair.EndDB {
			endIdx = i
			break
		}
	}

	if startIdx < 0 || endIdx < 0 || endIdx <= startIdx {
		return 0, Regression{}, fmt.Errorf("%w: pair (%.0f, %.0f) dB not both crossed", engineerr.ErrInvalidDecayRange, pair.StartDB, pair.EndDB)
	}

	reg, ok := linearRegression(c.TimeS[startIdx:endIdx+1], c.LevelDB[startIdx:endIdx+1])
	if !ok || reg.SlopeDBPerSec >= 0 {
		return 0, reg, fmt.Errorf("%w: segment does not decay", engineerr.ErrInvalidDecayRange)
	}

	if math.Abs(reg.R) < CorrelationGate {
		return 0, reg, fmt.Errorf("%w: |r|=%.3f below gate %.2f", engineerr.ErrLowCorrelation, reg.R, CorrelationGate)
	}

	rt := 60.0 / math.Abs(reg.SlopeDBPerSec)
	if rt < MinPlausibleSeconds || rt > MaxPlausibleSeconds {
		return 0, reg, fmt.Errorf("%w: %.3fs outside [%.2f, %.1f]", engineerr.ErrImplausibleResult, rt, MinPlausibleSeconds, MaxPlausibleSeconds)
	}

	return rt, reg, nil
}

// linearRegression fits y = slope*x + intercept by ordinary least squares
// and reports the Pearson correlation coefficient.
func linearRegression(x, y []float64) (Regression, bool) {
	n := len(x)
	if n < 2 {
		return Regression{}, false
	}

	var sumX, sumY, sumXX, sumXY, sumYY float64

	for i := 0; i < n; i++ {
		sumX += x[i]
		sumY += y[i]
		sumXX += x[i] * x[i]
		sumXY += x[i] * y[i]
		sumYY += y[i] * y[i]
	}

	nf := float64(n)

	denom := nf*sumXX - sumX*sumX
	if denom == 0 {
		return Regression{}, false
	}

	numerator := nf*sumXY - sumX*sumY
	slope := numerator / denom
	intercept := (sumY - slope*sumX) / nf

	rDenom := math.Sqrt((nf*sumXX - sumX*sumX) * (nf*sumYY - sumY*sumY))

	var r float64
	if rDenom != 0 {
		r = numerator / rDenom
	}

	return Regression{SlopeDBPerSec: slope, InterceptDB: intercept, R: r}, true
}

// PeakDB returns 20*log10(max|b[n]|), clamped to >= NoiseFloorClampDB.
func PeakDB(b []float64) float64 {
	peak := 0.0
	for _, v := range b {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}

	return clampFloor(core.LinearToDB(peak))
}

// NoiseFloorDB returns 20*log10(RMS) over the final 10% of b, clamped to
// >= NoiseFloorClampDB.
func NoiseFloorDB(b []float64) float64 {
	if len(b) == 0 {
		return NoiseFloorClampDB
	}

	tailLen := len(b) / 10
	if tailLen < 1 {
		tailLen = len(b)
	}

	tail := b[len(b)-tailLen:]

	var sumSq float64
	for _, v := range tail {
		sumSq += v * v
	}

	rms := math.Sqrt(sumSq / float64(len(tail)))

	return clampFloor(core.LinearToDB(rms))
}

func clampFloor(db float64) float64 {
	if math.IsNaN(db) || db < NoiseFloorClampDB {
		return NoiseFloorClampDB
	}

	return db
}
