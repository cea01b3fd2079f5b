package ir_test

import (
	"fmt"

	"github.com/cwbudde/reverbeng/measure/ir"
)

func ExampleAnalyzer_Clarity() {
	sampleRate := 48000.0

	// Equal-energy impulses at t=0 and t=100ms: with an 80ms boundary the
	// first impulse falls in the early window and the second in the late
	// one, so early energy equals late energy and C80 = 0 dB.
	irData := make([]float64, int(sampleRate*0.2))
	irData[0] = 1.0
	irData[int(0.1*sampleRate)] = 1.0

	analyzer := ir.NewAnalyzer(sampleRate)

	c80, err := analyzer.Clarity(irData, 80)
	if err != nil {
		panic(err)
	}

	fmt.Printf("C80 = %.1f dB\n", c80)

	// Output:
	// C80 = 0.0 dB
}

func ExampleAnalyzer_Definition() {
	sampleRate := 48000.0

	// Same equal-energy impulses; with a 50ms boundary only the first
	// impulse is early, so D50 = 0.5.
	irData := make([]float64, int(sampleRate*0.2))
	irData[0] = 1.0
	irData[int(0.1*sampleRate)] = 1.0

	analyzer := ir.NewAnalyzer(sampleRate)

	d50, err := analyzer.Definition(irData, 50)
	if err != nil {
		panic(err)
	}

	fmt.Printf("D50 = %.3f\n", d50)

	// Output:
	// D50 = 0.500
}
