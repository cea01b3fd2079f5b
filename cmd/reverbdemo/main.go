// Command reverbdemo is a thin flag-parsing demonstrator that exercises the
// sweep synthesis and analysis engine end to end and prints the resulting
// Analysis as JSON. It exists purely to exercise the library; it is not
// part of the analyze contract.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/cwbudde/reverbeng/analysis"
	"github.com/cwbudde/reverbeng/measure/sweep"
	"github.com/cwbudde/reverbeng/room"
)

func main() {
	f1 := flag.Float64("f1", 20, "sweep start frequency in Hz")
	f2 := flag.Float64("f2", 20000, "sweep end frequency in Hz")
	duration := flag.Float64("duration", 3, "sweep duration in seconds")
	sampleRate := flag.Uint64("rate", 48000, "sample rate in Hz")
	width := flag.Float64("width", 5, "room width in meters")
	length := flag.Float64("length", 7, "room length in meters")
	height := flag.Float64("height", 3, "room height in meters")
	temperature := flag.Float64("temperature", 20, "room temperature in Celsius")
	humidity := flag.Float64("humidity", 50, "room relative humidity percent")
	flag.Parse()

	p := sweep.Params{F1Hz: *f1, F2Hz: *f2, DurationS: *duration, SampleRate: float64(*sampleRate)}

	excitation, err := sweep.Synthesize(p)
	if err != nil {
		log.Fatalf("reverbdemo: synthesize sweep: %v", err)
	}

	r, err := room.NewRoom("demo room", *width, *length, *height, nil, *temperature, *humidity)
	if err != nil {
		log.Fatalf("reverbdemo: build room: %v", err)
	}

	audio := analysis.Audio{Samples: excitation, SampleRateHz: uint32(*sampleRate)}
	mode := analysis.ESSMode{F1Hz: *f1, F2Hz: *f2, DurationS: *duration}

	result, err := analysis.Analyze(audio, mode, r, analysis.DefaultOptions())
	if err != nil {
		log.Fatalf("reverbdemo: analyze: %v", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("reverbdemo: marshal result: %v", err)
	}

	fmt.Println(string(out))
}
