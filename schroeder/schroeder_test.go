package schroeder

import (
	"math"
	"testing"
)

func TestIntegrateEmptyInput(t *testing.T) {
	c := Integrate(nil, 48000)
	if len(c.TimeS) != 0 || len(c.LevelDB) != 0 {
		t.Errorf("Integrate(nil) = %+v, want empty curve", c)
	}
}

func TestIntegrateSilenceReturnsEmpty(t *testing.T) {
	c := Integrate(make([]float64, 1000), 48000)
	if len(c.LevelDB) != 0 {
		t.Errorf("Integrate(silence) produced a non-empty curve: %+v", c)
	}
}

func TestIntegrateStartsAtZeroDB(t *testing.T) {
	sr := 48000.0
	n := 48000
	b := make([]float64, n)
	tau := 0.5 // decay time constant in seconds

	for i := range b {
		t := float64(i) / sr
		b[i] = math.Exp(-t / tau)
	}

	c := Integrate(b, sr)

	if len(c.LevelDB) == 0 {
		t.Fatal("Integrate produced an empty curve for a decaying exponential")
	}

	if c.LevelDB[0] != 0 {
		t.Errorf("LevelDB[0] = %.6f, want 0", c.LevelDB[0])
	}
}

func TestIntegrateMonotonicallyNonIncreasing(t *testing.T) {
	sr := 48000.0
	n := 48000
	b := make([]float64, n)
	tau := 0.3

	for i := range b {
		t := float64(i) / sr
		b[i] = math.Exp(-t / tau)
	}

	c := Integrate(b, sr)

	for i := 1; i < len(c.LevelDB); i++ {
		if c.LevelDB[i] > c.LevelDB[i-1]+1e-9 {
			t.Fatalf("LevelDB not monotonically non-increasing at index %d: %.4f > %.4f", i, c.LevelDB[i], c.LevelDB[i-1])
		}
	}
}

func TestIntegrateFloorsAtNeg80DB(t *testing.T) {
	sr := 48000.0
	n := 48000
	b := make([]float64, n)
	tau := 0.05

	for i := range b {
		t := float64(i) / sr
		b[i] = math.Exp(-t / tau)
	}

	c := Integrate(b, sr)

	for i, db := range c.LevelDB {
		if db < FloorDB-1e-6 {
			t.Fatalf("LevelDB[%d] = %.2f, below floor %.1f", i, db, FloorDB)
		}
	}
}

func TestIntegrateDecimatesToMaxPoints(t *testing.T) {
	sr := 48000.0
	n := 480000
	b := make([]float64, n)
	tau := 2.0

	for i := range b {
		t := float64(i) / sr
		b[i] = math.Exp(-t / tau)
	}

	c := Integrate(b, sr)

	if len(c.LevelDB) > MaxPoints {
		t.Errorf("decimated curve has %d points, want <= %d", len(c.LevelDB), MaxPoints)
	}

	if len(c.TimeS) != len(c.LevelDB) {
		t.Errorf("TimeS/LevelDB length mismatch: %d vs %d", len(c.TimeS), len(c.LevelDB))
	}
}
