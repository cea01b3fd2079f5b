// Package octaveband realizes the six ISO octave-band bandpass filters
// (125 Hz to 4 kHz) as Audio-EQ-Cookbook biquads, applied zero-phase via a
// forward-then-reverse (filtfilt) pass.
package octaveband

import (
	"math"

	"github.com/cwbudde/reverbeng/dsp/filter/biquad"
	"github.com/cwbudde/reverbeng/room"
)

// Q is the fixed quality factor giving a one-octave bandwidth.
const Q = math.Sqrt2

// NyquistGuard is the margin below sr/2 within which a band center
// frequency is considered too close to Nyquist to filter reliably.
const NyquistGuard = 1e-6

// ShortInputFraction defines the "very short input" edge case: inputs
// shorter than sampleRateHz/ShortInputFraction are passed through
// unchanged per band.
const ShortInputFraction = 10

// Design computes the constant-0dB-peak-gain bandpass Coefficients for a
// center frequency fc at sample rate sr, per the Audio-EQ-Cookbook:
//
//	w0 = 2*pi*fc/sr;  alpha = sin(w0)/(2*Q)
//	b0 =  alpha;  b1 = 0;  b2 = -alpha
//	a0 = 1+alpha; a1 = -2*cos(w0); a2 = 1-alpha
//
// Coefficients are normalized by a0 before being returned, matching
// biquad.Coefficients' convention of an implicit a0=1.
func Design(fc, sampleRateHz float64) biquad.Coefficients {
	w0 := 2 * math.Pi * fc / sampleRateHz
	alpha := math.Sin(w0) / (2 * Q)

	a0 := 1 + alpha

	return biquad.Coefficients{
		B0: alpha / a0,
		B1: 0,
		B2: -alpha / a0,
		A1: -2 * math.Cos(w0) / a0,
		A2: (1 - alpha) / a0,
	}
}

// FiltFilt applies a biquad.Coefficients forward then in reverse over a
// copy of in, producing a zero-phase (no group delay) result of the same
// length. No samples are trimmed, so transient energy at both ends survives
// for downstream Schroeder integration.
func FiltFilt(in []float64, c biquad.Coefficients) []float64 {
	out := make([]float64, len(in))
	copy(out, in)

	fwd := biquad.NewSection(c)
	fwd.ProcessBlock(out)

	reverse(out)

	bwd := biquad.NewSection(c)
	bwd.ProcessBlock(out)

	reverse(out)

	return out
}

func reverse(buf []float64) {
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
}

// Excluded reports whether band b should be excluded at the given sample
// rate because its center frequency is at or above the Nyquist frequency.
func Excluded(b room.FrequencyBand, sampleRateHz float64) bool {
	return b.CenterHz() >= sampleRateHz/2-NyquistGuard
}

// Bank filters an impulse response into each of the six ISO octave bands.
//
// For very short inputs (fewer than sampleRateHz/ShortInputFraction
// samples) the bank returns the input unchanged per band: the estimator
// downstream will fail with InsufficientData rather than the bank
// attempting an unstable filter design on too little data.
func Bank(ir []float64, sampleRateHz float64) map[room.FrequencyBand][]float64 {
	out := make(map[room.FrequencyBand][]float64, len(room.Bands))

	shortInput := float64(len(ir)) < sampleRateHz/ShortInputFraction

	for _, b := range room.Bands {
		if Excluded(b, sampleRateHz) {
			continue
		}

		if shortInput {
			passthrough := make([]float64, len(ir))
			copy(passthrough, ir)
			out[b] = passthrough

			continue
		}

		coeffs := Design(b.CenterHz(), sampleRateHz)
		out[b] = FiltFilt(ir, coeffs)
	}

	return out
}
