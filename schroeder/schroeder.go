// Package schroeder computes the Schroeder backward energy integration of a
// band-filtered impulse response, producing a normalized, monotonically
// non-increasing decay curve in dB.
package schroeder

import (
	"math"

	"github.com/cwbudde/reverbeng/dsp/core"
)

// FloorDB is the numerical floor below which decay-curve entries are
// clipped: they carry no further information about the true decay.
const FloorDB = -80.0

// MaxPoints is the maximum number of points retained after decimation.
const MaxPoints = 1000

// Curve is a Schroeder decay curve: ascending time in seconds paired with
// level in dB, normalized so Level[0] == 0.
type Curve struct {
	TimeS   []float64 `json:"time_s"`
	LevelDB []float64 `json:"level_db"`
}

// Integrate computes the Schroeder decay curve of a band-filtered impulse
// response b, sampled at sampleRateHz.
//
//  1. e[n] = b[n]^2.
//  2. S[n] = sum_{k=n..N-1} e[k], a single backward pass.
//  3. S_max = S[0]; if S_max <= 0 an empty curve is returned (the estimator
//     downstream will fail with InsufficientData).
//  4. L[n] = 10*log10(S[n]/S_max); L[0] = 0.
//  5. Entries with L[n] < FloorDB are dropped.
//  6. The remaining points are decimated to at most MaxPoints.
func Integrate(b []float64, sampleRateHz float64) Curve {
	n := len(b)
	if n == 0 {
		return Curve{}
	}

	energy := make([]float64, n)

	var cum float64
	for i := n - 1; i >= 0; i-- {
		cum += b[i] * b[i]
		energy[i] = cum
	}

	sMax := energy[0]
	if sMax <= 0 {
		return Curve{}
	}

	levelDB := make([]float64, 0, n)
	timeS := make([]float64, 0, n)

	for i, s := range energy {
		ratio := s / sMax

		var db float64
		if i == 0 {
			db = 0
		} else {
			db = core.LinearPowerToDB(ratio)
		}

		if db < FloorDB {
			break
		}

		levelDB = append(levelDB, db)
		timeS = append(timeS, float64(i)/sampleRateHz)
	}

	return decimate(Curve{TimeS: timeS, LevelDB: levelDB}, MaxPoints)
}

// decimate reduces a curve to at most maxPoints samples by taking every
// stride-th point, always keeping the first point.
func decimate(c Curve, maxPoints int) Curve {
	n := len(c.LevelDB)
	if n <= maxPoints || maxPoints <= 0 {
		return c
	}

	stride := int(math.Ceil(float64(n) / float64(maxPoints)))

	timeS := make([]float64, 0, maxPoints+1)
	levelDB := make([]float64, 0, maxPoints+1)

	for i := 0; i < n; i += stride {
		timeS = append(timeS, c.TimeS[i])
		levelDB = append(levelDB, c.LevelDB[i])
	}

	return Curve{TimeS: timeS, LevelDB: levelDB}
}
