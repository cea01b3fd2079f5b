// Package sweep generates the exponential swept-sine excitation used to
// measure a room's impulse response, and the matched inverse filter that
// recovers it from a recording.
package sweep

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/reverbeng/deconvolve"
)

// Errors returned by sweep functions.
var (
	ErrInvalidFrequency  = errors.New("sweep: frequency must be positive")
	ErrInvalidDuration   = errors.New("sweep: duration must be positive")
	ErrInvalidSampleRate = errors.New("sweep: sample rate must be positive")
	ErrFrequencyOrder    = errors.New("sweep: start frequency must be less than end frequency")
	ErrEmptyResponse     = errors.New("sweep: response signal is empty")
	ErrMaxHarmonic       = errors.New("sweep: max harmonic must be >= 2")
)

// Options controls the amplitude envelope applied to a generated sweep.
type Options struct {
	Amplitude    float64
	FadeFraction float64
}

// DefaultOptions returns the spec default: amplitude 0.8, with a linear
// fade-in/fade-out over 5% of the sweep duration at each end.
func DefaultOptions() Options {
	return Options{Amplitude: 0.8, FadeFraction: 0.05}
}

// Option mutates an Options value.
type Option func(*Options)

// WithAmplitude overrides the envelope's steady-state amplitude.
func WithAmplitude(a float64) Option {
	return func(o *Options) { o.Amplitude = a }
}

// WithFadeFraction overrides the fade-in/fade-out duration, expressed as a
// fraction of the total sweep duration applied at each end.
func WithFadeFraction(f float64) Option {
	return func(o *Options) { o.FadeFraction = f }
}

// LogSweep generates a logarithmic (exponential) sine sweep and provides
// deconvolution methods for impulse response measurement.
//
// A logarithmic sweep has the property that each octave takes the same
// amount of time, making it ideal for room acoustic measurements. The
// corresponding inverse filter, when convolved with the recorded response,
// yields the impulse response plus separated harmonic distortion IRs.
type LogSweep struct {
	StartFreq  float64 // start frequency in Hz
	EndFreq    float64 // end frequency in Hz
	Duration   float64 // sweep duration in seconds
	SampleRate float64 // sample rate in Hz
}

// Validate checks that the LogSweep parameters are valid.
func (s *LogSweep) Validate() error {
	if s.StartFreq <= 0 || s.EndFreq <= 0 {
		return ErrInvalidFrequency
	}

	if s.StartFreq >= s.EndFreq {
		return ErrFrequencyOrder
	}

	if s.Duration <= 0 {
		return ErrInvalidDuration
	}

	if s.SampleRate <= 0 {
		return ErrInvalidSampleRate
	}

	return nil
}

// samples returns the total number of samples for the sweep.
func (s *LogSweep) samples() int {
	return int(math.Round(s.Duration * s.SampleRate))
}

// envelope returns the amplitude at time t (seconds) for the given options:
// a linear fade-in over the first FadeFraction*D seconds, a flat plateau at
// Amplitude, and a linear fade-out over the last FadeFraction*D seconds.
func envelope(t, duration float64, o Options) float64 {
	fade := o.FadeFraction * duration
	if fade <= 0 {
		return o.Amplitude
	}

	switch {
	case t < fade:
		return o.Amplitude * (t / fade)
	case t > duration-fade:
		return o.Amplitude * ((duration - t) / fade)
	default:
		return o.Amplitude
	}
}

// Generate creates the logarithmic sine sweep signal x(t) = A(t)*sin(phi(t)).
//
// The instantaneous frequency increases exponentially from StartFreq to EndFreq:
//
//	f(t) = f1 * exp(t/T * ln(f2/f1))
//
// The phase integral gives:
//
//	phi(t) = 2*pi * f1*T/ln(f2/f1) * (exp(t/T*ln(f2/f1)) - 1)
//
// An amplitude envelope with a linear fade-in/fade-out over FadeFraction of
// the duration at each end avoids spectral splatter at the boundaries.
func (s *LogSweep) Generate(opts ...Option) ([]float64, error) {
	err := s.Validate()
	if err != nil {
		return nil, err
	}

	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	n := s.samples()
	out := make([]float64, n)

	T := s.Duration
	ratio := s.EndFreq / s.StartFreq
	lnRatio := math.Log(ratio)

	for i := range out {
		t := float64(i) / s.SampleRate
		phase := 2 * math.Pi * s.StartFreq * T / lnRatio * (math.Exp(t/T*lnRatio) - 1)
		out[i] = envelope(t, T, o) * math.Sin(phase)
	}

	return out, nil
}

// InverseFilter creates the inverse filter for deconvolution.
//
// For a log sweep, the inverse filter is the time-reversed sweep with
// amplitude compensation that decreases at 6 dB/octave (to compensate
// for the sweep's increasing energy per frequency band):
//
//	h_inv(t) = x(T-t) * (f1/f(T-t))
//
// This ensures that convolution of the sweep with its inverse yields an
// impulse. The result is normalized so its peak absolute value is 1.
func (s *LogSweep) InverseFilter() ([]float64, error) {
	err := s.Validate()
	if err != nil {
		return nil, err
	}

	n := s.samples()

	sweep, err := s.Generate()
	if err != nil {
		return nil, err
	}

	T := s.Duration
	ratio := s.EndFreq / s.StartFreq
	lnRatio := math.Log(ratio)

	inv := make([]float64, n)
	for i := range inv {
		// Reverse index into the original sweep.
		j := n - 1 - i

		// Time in the original sweep for sample j.
		t := float64(j) / s.SampleRate

		// Instantaneous frequency at time t.
		fInst := s.StartFreq * math.Exp(t/T*lnRatio)

		// Amplitude compensation: normalize by instantaneous frequency
		// (6 dB/octave rolloff to flatten the energy spectrum).
		amp := s.StartFreq / fInst

		inv[i] = sweep[j] * amp
	}

	peak := 0.0
	for _, v := range inv {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}

	if peak > 0 {
		scale := 1.0 / peak
		for i := range inv {
			inv[i] *= scale
		}
	}

	return inv, nil
}

// Deconvolve recovers the impulse response from a recorded sweep response
// via FFT-based deconvolution against the matched inverse filter.
func (s *LogSweep) Deconvolve(response []float64) ([]float64, error) {
	err := s.Validate()
	if err != nil {
		return nil, err
	}

	if len(response) == 0 {
		return nil, ErrEmptyResponse
	}

	inv, err := s.InverseFilter()
	if err != nil {
		return nil, err
	}

	ir, err := deconvolve.Deconvolve(response, inv, s.SampleRate, s.Duration)
	if err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}

	return ir, nil
}

// ExtractHarmonicIRs separates the harmonic impulse responses from a
// deconvolved sweep response.
//
// When a log sweep passes through a nonlinear system, the deconvolved
// response contains the linear IR plus separate harmonic distortion IRs
// that appear at predictable time offsets before the main IR:
//
//	dt_k = T * ln(k) / ln(f2/f1)
//
// where k is the harmonic order and T is the sweep duration.
//
// maxHarmonic specifies the highest harmonic to extract (e.g., 5 for H2-H5).
// Returns a slice of IRs: [linear IR, H2 IR, H3 IR, ...]. This is a
// supplementary diagnostic, not part of the core RT60/EDT/T20/T30 path.
func (s *LogSweep) ExtractHarmonicIRs(response []float64, maxHarmonic int) ([][]float64, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	if maxHarmonic < 2 {
		return nil, ErrMaxHarmonic
	}

	deconv, err := s.Deconvolve(response)
	if err != nil {
		return nil, err
	}

	T := s.Duration
	lnRatio := math.Log(s.EndFreq / s.StartFreq)

	// Deconvolve windows its result around the dominant peak, so locate the
	// linear IR's peak directly instead of relying on a fixed pre-window
	// offset.
	mainOffset := 0
	peakAbs := 0.0

	for i, v := range deconv {
		if a := math.Abs(v); a > peakAbs {
			peakAbs = a
			mainOffset = i
		}
	}

	centers := make([]int, maxHarmonic+1) // index 1 = linear, 2 = H2, etc.
	for k := 1; k <= maxHarmonic; k++ {
		dtSamples := int(math.Round(T * math.Log(float64(k)) / lnRatio * s.SampleRate))
		centers[k] = mainOffset - dtSamples
	}

	results := make([][]float64, maxHarmonic)

	for k := 1; k <= maxHarmonic; k++ {
		center := centers[k]

		var halfWidth int

		switch {
		case k == 1:
			// maxHarmonic >= 2 is enforced by the ErrMaxHarmonic check above, so centers[2]
			// always exists here.
			halfWidth = (centers[1] - centers[2]) / 2
		case k < maxHarmonic:
			halfWidth = (centers[k-1] - centers[k]) / 2
		default:
			if k >= 3 {
				halfWidth = (centers[k-1] - centers[k]) / 2
			} else {
				halfWidth = (centers[1] - centers[2]) / 2
			}
		}

		if halfWidth < 1 {
			halfWidth = 1
		}

		start := center - halfWidth
		end := center + halfWidth

		if start < 0 {
			start = 0
		}

		if end > len(deconv) {
			end = len(deconv)
		}

		irLen := end - start
		if irLen <= 0 {
			results[k-1] = []float64{0}
			continue
		}

		ir := make([]float64, irLen)
		copy(ir, deconv[start:end])
		results[k-1] = ir
	}

	return results, nil
}

// Params describes an ESS measurement for the top-level Synthesize /
// SynthesizeInverse entry points used by callers outside this package.
type Params struct {
	F1Hz       float64
	F2Hz       float64
	DurationS  float64
	SampleRate float64
}

func (p Params) logSweep() LogSweep {
	return LogSweep{StartFreq: p.F1Hz, EndFreq: p.F2Hz, Duration: p.DurationS, SampleRate: p.SampleRate}
}

// Synthesize produces the ESS excitation for playback by an external audio
// collaborator.
func Synthesize(p Params) ([]float32, error) {
	s := p.logSweep()

	samples, err := s.Generate()
	if err != nil {
		return nil, err
	}

	return toFloat32(samples), nil
}

// SynthesizeInverse produces the matched inverse filter for callers that
// wish to deconvolve elsewhere.
func SynthesizeInverse(p Params) ([]float32, error) {
	s := p.logSweep()

	inv, err := s.InverseFilter()
	if err != nil {
		return nil, err
	}

	return toFloat32(inv), nil
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}

	return out
}
