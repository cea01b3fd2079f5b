// Package deconvolve performs FFT-based linear deconvolution of a recorded
// sweep response against its matched inverse filter to recover an impulse
// response.
package deconvolve

import (
	"fmt"
	"math"
	"sync"

	algofft "github.com/cwbudde/algo-fft"

	"github.com/cwbudde/reverbeng/engineerr"
)

// PreRollSamples is the fixed pre-peak margin preserved around the located
// peak so pre-echo and direct-sound structure survive the windowing step.
const PreRollSamples = 1000

// planCache memoizes FFT plans by transform size. It is immutable once a
// given size has been initialized and is safe to share across concurrent
// runs, matching the shared-resource contract of the analysis engine.
var planCache sync.Map // map[int]*algofft.Plan64

func planFor(size int) (*algofft.Plan64, error) {
	if v, ok := planCache.Load(size); ok {
		return v.(*algofft.Plan64), nil
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("%w: fft plan setup for size %d: %v", engineerr.ErrDeconvolutionFailed, size, err)
	}

	actual, _ := planCache.LoadOrStore(size, plan)
	return actual.(*algofft.Plan64), nil
}

// Deconvolve computes the linear convolution recorded*inverse via FFT and
// returns the window [peak-1000, peak+sampleRateHz*durationS] around the
// located peak, clipped to the bounds of the full result.
//
// It fails with engineerr.ErrDeconvolutionFailed only when FFT setup is
// impossible (a zero-length transform); otherwise it always returns an IR,
// possibly of low quality.
func Deconvolve(recorded, inverse []float64, sampleRateHz, durationS float64) ([]float64, error) {
	if len(recorded) == 0 || len(inverse) == 0 {
		return nil, fmt.Errorf("%w: empty input to deconvolution", engineerr.ErrDeconvolutionFailed)
	}

	n := len(recorded) + len(inverse) - 1
	fftSize := nextPowerOf2(n)
	if fftSize == 0 {
		return nil, fmt.Errorf("%w: zero-length transform", engineerr.ErrDeconvolutionFailed)
	}

	plan, err := planFor(fftSize)
	if err != nil {
		return nil, err
	}

	recFreq, err := forward(plan, recorded, fftSize)
	if err != nil {
		return nil, err
	}

	invFreq, err := forward(plan, inverse, fftSize)
	if err != nil {
		return nil, err
	}

	prodFreq := make([]complex128, fftSize)
	for i := range prodFreq {
		prodFreq[i] = recFreq[i] * invFreq[i]
	}

	timeDomain := make([]complex128, fftSize)
	if err := plan.Inverse(timeDomain, prodFreq); err != nil {
		return nil, fmt.Errorf("%w: inverse fft: %v", engineerr.ErrDeconvolutionFailed, err)
	}

	full := make([]float64, n)
	for i := range full {
		full[i] = real(timeDomain[i])
	}

	return window(full, sampleRateHz, durationS), nil
}

func forward(plan *algofft.Plan64, signal []float64, fftSize int) ([]complex128, error) {
	padded := make([]complex128, fftSize)
	for i, v := range signal {
		padded[i] = complex(v, 0)
	}

	freq := make([]complex128, fftSize)
	if err := plan.Forward(freq, padded); err != nil {
		return nil, fmt.Errorf("%w: forward fft: %v", engineerr.ErrDeconvolutionFailed, err)
	}

	return freq, nil
}

// window locates the peak magnitude in full and returns the slice
// [peak-PreRollSamples, peak+sampleRateHz*durationS], clipped to bounds.
func window(full []float64, sampleRateHz, durationS float64) []float64 {
	peakIdx := 0
	peakAbs := 0.0

	for i, v := range full {
		if a := math.Abs(v); a > peakAbs {
			peakAbs = a
			peakIdx = i
		}
	}

	start := peakIdx - PreRollSamples
	if start < 0 {
		start = 0
	}

	tail := int(math.Round(sampleRateHz * durationS))
	end := peakIdx + tail
	if end > len(full) {
		end = len(full)
	}

	if end <= start {
		return []float64{}
	}

	out := make([]float64, end-start)
	copy(out, full[start:end])

	return out
}

// nextPowerOf2 returns the smallest power of two >= n, or 0 if n <= 0.
func nextPowerOf2(n int) int {
	if n <= 0 {
		return 0
	}

	p := 1
	for p < n {
		p *= 2
	}

	return p
}
