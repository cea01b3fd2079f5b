// Package geometry computes Sabine and Eyring reverberation-time
// predictions from a room's geometry and absorption profile, with a
// simplified air-absorption correction.
package geometry

import (
	"math"

	"github.com/cwbudde/reverbeng/dsp/core"
	"github.com/cwbudde/reverbeng/room"
)

// EyringAlphaCap bounds the mean absorption coefficient used by Eyring's
// formula; as alphaBar approaches 1 the logarithm diverges, so it is capped
// just below 1.
const EyringAlphaCap = 0.99

// OutputMinSeconds and OutputMaxSeconds bound every reported RT60
// prediction to keep downstream UI and quality assessment meaningful.
const (
	OutputMinSeconds = 0.1
	OutputMaxSeconds = 10.0
)

// AbsorptionArea returns the room's total equivalent absorption area at
// band b: sum of surface areas weighted by their material's alpha, or
// totalSurfaceArea*0.1 when the room has no surfaces.
func AbsorptionArea(r room.Model, b room.FrequencyBand) float64 {
	return r.AbsorptionArea(b)
}

// AirAbsorption returns the simplified air-absorption coefficient m(b) at
// the room's humidity, using m = 5.5e-4 * sqrt(50/h) * (f/1000)^1.7 where h
// is humidity as a percentage in (0, 100].
func AirAbsorption(r room.Model, b room.FrequencyBand) float64 {
	h := r.HumidityPct
	f := b.CenterHz()

	return 5.5e-4 * math.Sqrt(50/h) * math.Pow(f/1000, 1.7)
}

// Sabine computes the Sabine reverberation time prediction for band b:
//
//	T_sab(b) = 0.161 * V / (A(b) + 4*m(b)*V)
func Sabine(r room.Model, b room.FrequencyBand) float64 {
	v := r.VolumeM3()
	a := AbsorptionArea(r, b)
	m := AirAbsorption(r, b)

	t := 0.161 * v / (a + 4*m*v)

	return core.Clamp(t, OutputMinSeconds, OutputMaxSeconds)
}

// Eyring computes the Eyring reverberation time prediction for band b,
// more accurate than Sabine at high mean absorption:
//
//	alphaBar(b) = min(0.99, A(b)/S_total)
//	T_eyr(b) = 0.161*V / (-S_total*ln(1-alphaBar(b)) + 4*m(b)*V)
func Eyring(r room.Model, b room.FrequencyBand) float64 {
	v := r.VolumeM3()
	sTotal := r.TotalSurfaceAreaM2()
	a := AbsorptionArea(r, b)
	m := AirAbsorption(r, b)

	alphaBar := a / sTotal
	if alphaBar > EyringAlphaCap {
		alphaBar = EyringAlphaCap
	}

	t := 0.161 * v / (-sTotal*math.Log(1-alphaBar) + 4*m*v)

	return core.Clamp(t, OutputMinSeconds, OutputMaxSeconds)
}

// MeanAbsorption returns alphaBar(b) = min(EyringAlphaCap, A(b)/S_total),
// exposed for callers that want the intermediate Eyring quantity directly.
func MeanAbsorption(r room.Model, b room.FrequencyBand) float64 {
	alphaBar := AbsorptionArea(r, b) / r.TotalSurfaceAreaM2()
	if alphaBar > EyringAlphaCap {
		alphaBar = EyringAlphaCap
	}

	return alphaBar
}
