// Package impulse locates and windows a directly-triggered acoustic event
// (clap, balloon pop) inside a raw recording, for callers that did not use
// an ESS sweep.
package impulse

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmptyInput is returned when the sample buffer is empty.
var ErrEmptyInput = errors.New("impulse: sample buffer is empty")

// ErrNoImpulseDetected is returned when the peak absolute value never
// reaches the detection threshold. Callers may fall back to the raw buffer.
var ErrNoImpulseDetected = errors.New("impulse: no impulse detected above threshold")

// MaxLengthSeconds caps the returned window length.
const MaxLengthSeconds = 5.0

// Options controls impulse detection.
type Options struct {
	// Threshold is the detection threshold that the peak absolute value
	// must reach, in the same amplitude units as the samples. Default 0.3.
	Threshold float64
}

// DefaultOptions returns the spec default threshold of 0.3.
func DefaultOptions() Options {
	return Options{Threshold: 0.3}
}

// Option mutates an Options value.
type Option func(*Options)

// WithThreshold overrides the peak detection threshold.
func WithThreshold(t float64) Option {
	return func(o *Options) { o.Threshold = t }
}

// Locate finds the primary impulse in s and returns the window
// [start, end) bounding it, capped at MaxLengthSeconds of audio.
//
// The peak p = argmax|s[n]| is located first; if its magnitude P falls
// below Threshold, ErrNoImpulseDetected is returned. Otherwise the window
// start is found by walking backward from p until |s[i]| drops below
// 0.1*P.
func Locate(s []float64, sampleRateHz float64, opts ...Option) (start, end int, err error) {
	if len(s) == 0 {
		return 0, 0, ErrEmptyInput
	}

	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	peakIdx, peakAbs := findPeak(s)
	if peakAbs < o.Threshold {
		return 0, 0, fmt.Errorf("%w: peak %.4f below threshold %.4f", ErrNoImpulseDetected, peakAbs, o.Threshold)
	}

	startThreshold := 0.1 * peakAbs

	i := peakIdx
	for i > 0 && math.Abs(s[i-1]) >= startThreshold {
		i--
	}

	start = i
	end = len(s)

	maxLen := int(math.Round(MaxLengthSeconds * sampleRateHz))
	if maxLen > 0 && end-start > maxLen {
		end = start + maxLen
	}

	return start, end, nil
}

func findPeak(s []float64) (idx int, abs float64) {
	for i, v := range s {
		if a := math.Abs(v); a > abs {
			abs = a
			idx = i
		}
	}

	return idx, abs
}
