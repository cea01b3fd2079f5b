package sweep

import (
	"math"
	"testing"

	"github.com/cwbudde/reverbeng/deconvolve"
)

func TestLogSweepValidation(t *testing.T) {
	tests := []struct {
		name    string
		sweep   LogSweep
		wantErr error
	}{
		{"valid", LogSweep{20, 20000, 1, 48000}, nil},
		{"zero start freq", LogSweep{0, 20000, 1, 48000}, ErrInvalidFrequency},
		{"negative end freq", LogSweep{20, -1, 1, 48000}, ErrInvalidFrequency},
		{"start >= end", LogSweep{1000, 100, 1, 48000}, ErrFrequencyOrder},
		{"equal freqs", LogSweep{1000, 1000, 1, 48000}, ErrFrequencyOrder},
		{"zero duration", LogSweep{20, 20000, 0, 48000}, ErrInvalidDuration},
		{"negative duration", LogSweep{20, 20000, -1, 48000}, ErrInvalidDuration},
		{"zero sample rate", LogSweep{20, 20000, 1, 0}, ErrInvalidSampleRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sweep.Validate()
			if err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogSweepGenerate(t *testing.T) {
	s := &LogSweep{
		StartFreq:  20,
		EndFreq:    20000,
		Duration:   1,
		SampleRate: 48000,
	}

	signal, err := s.Generate()
	if err != nil {
		t.Fatal(err)
	}

	expectedLen := 48000
	if len(signal) != expectedLen {
		t.Errorf("length = %d, want %d", len(signal), expectedLen)
	}

	for i, v := range signal {
		if v < -1.001 || v > 1.001 {
			t.Errorf("sample[%d] = %f, out of [-1, 1] range", i, v)
			break
		}
	}

	if math.Abs(signal[0]) > 1e-10 {
		t.Errorf("first sample = %g, want ~0", signal[0])
	}
}

func TestLogSweepGenerateEnvelope(t *testing.T) {
	s := &LogSweep{
		StartFreq:  100,
		EndFreq:    1000,
		Duration:   1,
		SampleRate: 8000,
	}

	signal, err := s.Generate()
	if err != nil {
		t.Fatal(err)
	}

	// The peak amplitude in the plateau should approach the configured 0.8,
	// while fade-in/fade-out samples near both ends stay well below it.
	fadeSamples := int(0.05 * 1 * 8000)

	for i := 0; i < fadeSamples/4; i++ {
		if math.Abs(signal[i]) > 0.8 {
			t.Errorf("fade-in sample[%d] = %f exceeds envelope amplitude", i, signal[i])
		}
	}

	n := len(signal)
	for i := n - fadeSamples/4; i < n; i++ {
		if math.Abs(signal[i]) > 0.8+1e-9 {
			t.Errorf("fade-out sample[%d] = %f exceeds envelope amplitude", i, signal[i])
		}
	}

	maxAbs := 0.0
	for _, v := range signal {
		if a := math.Abs(v); a > maxAbs {
			maxAbs = a
		}
	}

	if maxAbs > 0.8+1e-6 {
		t.Errorf("max amplitude %.4f exceeds configured 0.8", maxAbs)
	}
}

func TestLogSweepGenerateShort(t *testing.T) {
	s := &LogSweep{
		StartFreq:  100,
		EndFreq:    1000,
		Duration:   0.1,
		SampleRate: 8000,
	}

	signal, err := s.Generate()
	if err != nil {
		t.Fatal(err)
	}

	expectedLen := 800
	if len(signal) != expectedLen {
		t.Errorf("length = %d, want %d", len(signal), expectedLen)
	}
}

func TestLogSweepInverseFilter(t *testing.T) {
	s := &LogSweep{
		StartFreq:  100,
		EndFreq:    4000,
		Duration:   0.5,
		SampleRate: 16000,
	}

	inv, err := s.InverseFilter()
	if err != nil {
		t.Fatal(err)
	}

	sweepLen := s.samples()
	if len(inv) != sweepLen {
		t.Errorf("inverse filter length = %d, want %d", len(inv), sweepLen)
	}

	maxAbs := 0.0
	for _, v := range inv {
		if math.Abs(v) > maxAbs {
			maxAbs = math.Abs(v)
		}
	}

	if maxAbs == 0 {
		t.Error("inverse filter is all zeros")
	}

	if math.Abs(maxAbs-1) > 1e-9 {
		t.Errorf("inverse filter peak = %.6f, want normalized to 1", maxAbs)
	}
}

func TestLogSweepDeconvolveIdentity(t *testing.T) {
	s := &LogSweep{
		StartFreq:  100,
		EndFreq:    4000,
		Duration:   0.25,
		SampleRate: 16000,
	}

	signal, err := s.Generate()
	if err != nil {
		t.Fatal(err)
	}

	ir, err := s.Deconvolve(signal)
	if err != nil {
		t.Fatal(err)
	}

	peakIdx := 0
	peakVal := 0.0

	for i, v := range ir {
		if math.Abs(v) > peakVal {
			peakVal = math.Abs(v)
			peakIdx = i
		}
	}

	if peakVal == 0 {
		t.Fatal("deconvolved IR is all zeros")
	}

	var totalEnergy float64
	for _, v := range ir {
		totalEnergy += v * v
	}

	avgEnergy := totalEnergy / float64(len(ir))
	peakEnergy := peakVal * peakVal

	peakToAvgDB := 10 * math.Log10(peakEnergy/avgEnergy)
	if peakToAvgDB < 15 {
		t.Errorf("peak-to-average ratio = %.1f dB, want >= 15 dB (peak at %d)", peakToAvgDB, peakIdx)
	}
}

func TestLogSweepDeconvolveKnownIR(t *testing.T) {
	s := &LogSweep{
		StartFreq:  100,
		EndFreq:    4000,
		Duration:   0.5,
		SampleRate: 16000,
	}

	signal, err := s.Generate()
	if err != nil {
		t.Fatal(err)
	}

	// Simple IR: delta at sample 0 with amplitude 1, plus reflection at sample 100 with amplitude 0.3.
	irLen := 200
	knownIR := make([]float64, irLen)
	knownIR[0] = 1.0
	knownIR[100] = 0.3

	responseLen := len(signal) + irLen - 1
	response := make([]float64, responseLen)

	for i, sv := range signal {
		for j, iv := range knownIR {
			if i+j < responseLen {
				response[i+j] += sv * iv
			}
		}
	}

	recovered, err := s.Deconvolve(response)
	if err != nil {
		t.Fatal(err)
	}

	peakIdx := 0
	peakVal := 0.0

	for i, v := range recovered {
		if math.Abs(v) > peakVal {
			peakVal = math.Abs(v)
			peakIdx = i
		}
	}

	searchStart := peakIdx + 80
	searchEnd := peakIdx + 120
	if searchEnd > len(recovered) {
		searchEnd = len(recovered)
	}

	secondPeakVal := 0.0
	for i := searchStart; i < searchEnd && i >= 0; i++ {
		if math.Abs(recovered[i]) > secondPeakVal {
			secondPeakVal = math.Abs(recovered[i])
		}
	}

	ratio := secondPeakVal / peakVal
	if ratio < 0.15 || ratio > 0.5 {
		t.Errorf("reflection amplitude ratio = %.3f, want ~0.3", ratio)
	}
}

func TestLogSweepDeconvolveEmptyResponse(t *testing.T) {
	s := &LogSweep{100, 4000, 0.5, 16000}

	_, err := s.Deconvolve(nil)
	if err != ErrEmptyResponse {
		t.Errorf("Deconvolve(nil) = %v, want ErrEmptyResponse", err)
	}

	_, err = s.Deconvolve([]float64{})
	if err != ErrEmptyResponse {
		t.Errorf("Deconvolve([]) = %v, want ErrEmptyResponse", err)
	}
}

func TestLogSweepExtractHarmonicIRs(t *testing.T) {
	s := &LogSweep{
		StartFreq:  100,
		EndFreq:    4000,
		Duration:   0.5,
		SampleRate: 16000,
	}

	signal, err := s.Generate()
	if err != nil {
		t.Fatal(err)
	}

	harmonics, err := s.ExtractHarmonicIRs(signal, 3)
	if err != nil {
		t.Fatal(err)
	}

	if len(harmonics) != 3 {
		t.Fatalf("expected 3 harmonic IRs, got %d", len(harmonics))
	}

	energies := make([]float64, len(harmonics))
	for h, ir := range harmonics {
		for _, v := range ir {
			energies[h] += v * v
		}
	}

	if energies[0] == 0 {
		t.Error("linear IR has zero energy")
	}
}

func TestLogSweepExtractHarmonicIRsValidation(t *testing.T) {
	s := &LogSweep{100, 4000, 0.5, 16000}
	signal, _ := s.Generate()

	_, err := s.ExtractHarmonicIRs(signal, 1)
	if err != ErrMaxHarmonic {
		t.Errorf("ExtractHarmonicIRs(maxHarmonic=1) = %v, want ErrMaxHarmonic", err)
	}
}

func TestDeconvolveSelfZeroNoiseSeedScenario(t *testing.T) {
	// A 3s sweep at 44.1kHz fed directly back through its own deconvolver
	// (zero noise, response == excitation) recovers a single sharp
	// impulse. Deconvolve windows its result starting PreRollSamples before
	// the located peak, so the peak lands at that fixed offset inside the
	// returned IR, with nearly all its energy concentrated in a narrow
	// window around it.
	const sr = 44100.0

	s := &LogSweep{StartFreq: 20, EndFreq: 20000, Duration: 3, SampleRate: sr}

	signal, err := s.Generate()
	if err != nil {
		t.Fatal(err)
	}

	ir, err := s.Deconvolve(signal)
	if err != nil {
		t.Fatal(err)
	}

	peakIdx := 0
	peakVal := 0.0
	for i, v := range ir {
		if a := math.Abs(v); a > peakVal {
			peakVal = a
			peakIdx = i
		}
	}

	if peakVal == 0 {
		t.Fatal("self-deconvolution produced an all-zero IR")
	}

	if d := math.Abs(float64(peakIdx - deconvolve.PreRollSamples)); d > 2 {
		t.Errorf("peak at sample %d, want within 2 samples of pre-roll offset %d", peakIdx, deconvolve.PreRollSamples)
	}

	// 95% of the IR's L2 energy should sit within a +-2.5ms window of the peak.
	halfWindow := int(math.Round(0.0025 * sr))
	start := peakIdx - halfWindow
	if start < 0 {
		start = 0
	}
	end := peakIdx + halfWindow
	if end > len(ir) {
		end = len(ir)
	}

	var windowEnergy, totalEnergy float64
	for i, v := range ir {
		e := v * v
		totalEnergy += e
		if i >= start && i < end {
			windowEnergy += e
		}
	}

	if totalEnergy == 0 {
		t.Fatal("zero total energy in recovered IR")
	}

	if ratio := windowEnergy / totalEnergy; ratio < 0.95 {
		t.Errorf("energy concentration within +-2.5ms of peak = %.4f, want >= 0.95", ratio)
	}
}

func TestSynthesizeAndInverse(t *testing.T) {
	p := Params{F1Hz: 20, F2Hz: 20000, DurationS: 1, SampleRate: 48000}

	excitation, err := Synthesize(p)
	if err != nil {
		t.Fatal(err)
	}

	if len(excitation) != 48000 {
		t.Errorf("Synthesize length = %d, want 48000", len(excitation))
	}

	inv, err := SynthesizeInverse(p)
	if err != nil {
		t.Fatal(err)
	}

	if len(inv) != 48000 {
		t.Errorf("SynthesizeInverse length = %d, want 48000", len(inv))
	}
}
