// Package analysis orchestrates the full acoustic analysis pipeline: it
// resolves an impulse response from a raw recording, runs the per-band
// octave filter/Schroeder/decay-time chain, cross-checks against the
// Sabine/Eyring geometric prediction, and emits a self-contained Analysis.
package analysis

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/cwbudde/reverbeng/decaytime"
	"github.com/cwbudde/reverbeng/deconvolve"
	"github.com/cwbudde/reverbeng/engineerr"
	"github.com/cwbudde/reverbeng/geometry"
	"github.com/cwbudde/reverbeng/impulse"
	irmetrics "github.com/cwbudde/reverbeng/measure/ir"
	"github.com/cwbudde/reverbeng/measure/sweep"
	"github.com/cwbudde/reverbeng/measure/thd"
	"github.com/cwbudde/reverbeng/octaveband"
	"github.com/cwbudde/reverbeng/room"
	"github.com/cwbudde/reverbeng/schroeder"
)

// MinIRSeconds is the minimum impulse-response length, in seconds, below
// which an ImpulseResponse is considered too short to carry any decay
// information at all. analyzeBand rejects a band outright (InsufficientData,
// surfaced as an absent measured value) once the resolved IR is shorter than
// MinIRSeconds at the given sample rate, rather than relying on the
// octave-band filter and regression gates downstream to fail open.
const MinIRSeconds = 0.1

// Mode selects how the raw audio buffer is turned into an impulse response.
// Exactly one variant is dispatched, once, at the top of Analyze.
type Mode interface {
	isMode()
}

// ESSMode deconvolves the raw recording against the matched inverse filter
// of an exponential sweep with the given parameters.
type ESSMode struct {
	F1Hz      float64
	F2Hz      float64
	DurationS float64
}

func (ESSMode) isMode() {}

// ImpulseMode locates and windows a directly-triggered acoustic event in
// the raw recording. Threshold <= 0 uses impulse.DefaultOptions.
type ImpulseMode struct {
	Threshold float64
}

func (ImpulseMode) isMode() {}

// RawMode uses the buffer as-is, with no IR extraction step.
type RawMode struct{}

func (RawMode) isMode() {}

// Audio is a contiguous mono sample buffer at a fixed sample rate.
type Audio struct {
	Samples      []float32
	SampleRateHz uint32
}

// Options selects which decay-time estimators to compute and how bands are
// processed. Context, when non-nil, is checked at band boundaries and is
// the idiomatic Go form of the engine's cancellation token.
type Options struct {
	ComputeEDT        bool
	ComputeT20        bool
	ComputeT30        bool
	ComputeRT60Direct bool
	FilterByBand      bool
	UseAirAbsorption  bool
	ExtractHarmonics  bool
	Context           context.Context
}

// DefaultOptions returns an Options value that computes every estimator,
// filters by band, and applies the air-absorption correction.
func DefaultOptions() Options {
	return Options{
		ComputeEDT:        true,
		ComputeT20:        true,
		ComputeT30:        true,
		ComputeRT60Direct: true,
		FilterByBand:      true,
		UseAirAbsorption:  true,
	}
}

// RoomSnapshot is the immutable record of the RoomModel used for a run,
// stored on Analysis so later mutation of the source room cannot alter
// stored results.
type RoomSnapshot struct {
	Name               string  `json:"name"`
	WidthM             float64 `json:"width_m"`
	LengthM            float64 `json:"length_m"`
	HeightM            float64 `json:"height_m"`
	RoomVolumeM3       float64 `json:"room_volume_m3"`
	TotalSurfaceAreaM2 float64 `json:"total_surface_area_m2"`
	TemperatureC       float64 `json:"temperature_c"`
	HumidityPct        float64 `json:"humidity_pct"`
}

func newRoomSnapshot(r room.Model) RoomSnapshot {
	return RoomSnapshot{
		Name:               r.Name,
		WidthM:             r.WidthM,
		LengthM:            r.LengthM,
		HeightM:            r.HeightM,
		RoomVolumeM3:       r.VolumeM3(),
		TotalSurfaceAreaM2: r.TotalSurfaceAreaM2(),
		TemperatureC:       r.TemperatureC,
		HumidityPct:        r.HumidityPct,
	}
}

// BandResult is the per-band analysis product: decay curve, decay times,
// level metrics, and the supplemented clarity/definition/center-time
// diagnostics.
type BandResult struct {
	DecayCurve    schroeder.Curve      `json:"decay_curve"`
	DecayTimes    decaytime.DecayTimes `json:"decay_times"`
	PeakDB        float64              `json:"peak_db"`
	NoiseFloorDB  float64              `json:"noise_floor_db"`
	Valid         bool                 `json:"valid"`
	ClarityC50Db  *float64             `json:"clarity_c50_db,omitempty"`
	ClarityC80Db  *float64             `json:"clarity_c80_db,omitempty"`
	DefinitionD50 *float64             `json:"definition_d50,omitempty"`
	DefinitionD80 *float64             `json:"definition_d80,omitempty"`
	CenterTimeS   *float64             `json:"center_time_s,omitempty"`
}

// Analysis is the terminal, self-contained product of a run.
type Analysis struct {
	Timestamp                  time.Time                         `json:"timestamp"`
	RoomSnapshot                RoomSnapshot                      `json:"room_snapshot"`
	MeasuredRT60Seconds         map[room.FrequencyBand]*float64   `json:"measured_rt60_seconds"`
	SabineRT60Seconds           map[room.FrequencyBand]float64    `json:"sabine_rt60_seconds"`
	EyringRT60Seconds           map[room.FrequencyBand]float64    `json:"eyring_rt60_seconds"`
	BandResults                 map[room.FrequencyBand]BandResult `json:"band_results"`
	AverageMeasuredRT60Seconds  *float64                          `json:"average_measured_rt60_seconds"`
	AverageSabineRT60Seconds    float64                           `json:"average_sabine_rt60_seconds"`
	AverageEyringRT60Seconds    float64                           `json:"average_eyring_rt60_seconds"`
	QualityText                 string                            `json:"quality_text"`
	HarmonicDistortionDb        map[room.FrequencyBand]float64    `json:"harmonic_distortion_db,omitempty"`
	Warning                     string                            `json:"warning,omitempty"`
}

// Analyze runs the full pipeline: resolve IR, per-band filter/Schroeder/
// decay-time, geometric prediction, averages, and quality text.
//
// Band-level failures (InsufficientData, InvalidDecayRange, LowCorrelation,
// ImplausibleResult) never abort the run; they simply leave that band's
// measured value absent. Only run-level failures (InvalidRoom,
// DeconvolutionFailed, Cancelled, ComputationFault) are returned as errors,
// plus InsufficientData when the audio buffer is empty and no band can be
// computed at all.
func Analyze(audio Audio, mode Mode, r room.Model, opts Options) (Analysis, error) {
	if opts.Context == nil {
		opts.Context = context.Background()
	}

	if err := validateRoom(r); err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", engineerr.ErrInvalidRoom, err)
	}

	if err := opts.Context.Err(); err != nil {
		return Analysis{}, engineerr.ErrCancelled
	}

	sampleRateHz := float64(audio.SampleRateHz)

	ir, warning, err := resolveIR(audio, mode, opts)
	if err != nil {
		return Analysis{}, err
	}

	bandResults, measured, err := analyzeBands(ir, sampleRateHz, opts)
	if err != nil {
		return Analysis{}, err
	}

	sabine := make(map[room.FrequencyBand]float64, len(room.Bands))
	eyring := make(map[room.FrequencyBand]float64, len(room.Bands))

	for _, b := range room.Bands {
		if octaveband.Excluded(b, sampleRateHz) {
			continue
		}

		sabine[b] = geometry.Sabine(r, b)
		eyring[b] = geometry.Eyring(r, b)
	}

	if err := checkFinite(sabine, eyring); err != nil {
		return Analysis{}, err
	}

	avgMeasured := average(measured)
	avgSabine := averagePlain(sabine)
	avgEyring := averagePlain(eyring)

	qualitySource := avgMeasured
	if qualitySource == nil {
		v := avgSabine
		qualitySource = &v
	}

	result := Analysis{
		Timestamp:                  time.Now(),
		RoomSnapshot:               newRoomSnapshot(r),
		MeasuredRT60Seconds:        measured,
		SabineRT60Seconds:          sabine,
		EyringRT60Seconds:          eyring,
		BandResults:                bandResults,
		AverageMeasuredRT60Seconds: avgMeasured,
		AverageSabineRT60Seconds:   avgSabine,
		AverageEyringRT60Seconds:   avgEyring,
		QualityText:                qualityText(*qualitySource),
	}

	if warning != "" {
		result.Warning = warning
	}

	if opts.ExtractHarmonics {
		if ess, ok := mode.(ESSMode); ok {
			result.HarmonicDistortionDb = harmonicDistortion(audio, ess)
		}
	}

	return result, nil
}

func validateRoom(r room.Model) error {
	if r.WidthM <= 0 || r.LengthM <= 0 || r.HeightM <= 0 {
		return room.ErrInvalidDimension
	}

	if r.HumidityPct <= 0 || r.HumidityPct > 100 {
		return room.ErrInvalidHumidity
	}

	for _, s := range r.Surfaces {
		if s.AreaM2 <= 0 {
			return fmt.Errorf("%w: surface %q", room.ErrInvalidArea, s.Name)
		}
	}

	return nil
}

// resolveIR dispatches on mode exactly once, producing the impulse response
// samples that feed the per-band pipeline.
func resolveIR(audio Audio, mode Mode, opts Options) (ir []float64, warning string, err error) {
	samples := toFloat64(audio.Samples)

	if len(samples) == 0 {
		return nil, "", fmt.Errorf("%w: empty audio buffer", engineerr.ErrInsufficientData)
	}

	sampleRateHz := float64(audio.SampleRateHz)

	switch m := mode.(type) {
	case ESSMode:
		s := sweep.LogSweep{StartFreq: m.F1Hz, EndFreq: m.F2Hz, Duration: m.DurationS, SampleRate: sampleRateHz}

		inv, err := s.InverseFilter()
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", engineerr.ErrDeconvolutionFailed, err)
		}

		out, err := deconvolve.Deconvolve(samples, inv, sampleRateHz, m.DurationS)
		if err != nil {
			return nil, "", err
		}

		return out, "", nil

	case ImpulseMode:
		threshold := m.Threshold
		if threshold <= 0 {
			threshold = impulse.DefaultOptions().Threshold
		}

		start, end, err := impulse.Locate(samples, sampleRateHz, impulse.WithThreshold(threshold))
		if err != nil {
			return samples, "impulse not detected above threshold; falling back to raw buffer", nil
		}

		return samples[start:end], "", nil

	case RawMode:
		return samples, "", nil

	default:
		return nil, "", fmt.Errorf("%w: unrecognized mode %T", engineerr.ErrComputationFault, mode)
	}
}

type bandOutcome struct {
	result   BandResult
	measured *float64
}

// analyzeBands fans the octave bands out across goroutines (the per-band
// pipeline has no cross-band data dependency) and joins on a WaitGroup,
// writing into a preallocated, index-addressed slice so aggregation needs
// no mutex.
func analyzeBands(ir []float64, sampleRateHz float64, opts Options) (map[room.FrequencyBand]BandResult, map[room.FrequencyBand]*float64, error) {
	outcomes := make([]bandOutcome, len(room.Bands))

	var wg sync.WaitGroup

	for i, b := range room.Bands {
		if opts.Context.Err() != nil {
			break
		}

		if octaveband.Excluded(b, sampleRateHz) {
			continue
		}

		wg.Add(1)

		go func(i int, b room.FrequencyBand) {
			defer wg.Done()

			outcomes[i] = analyzeBand(ir, sampleRateHz, b, opts)
		}(i, b)
	}

	wg.Wait()

	if err := opts.Context.Err(); err != nil {
		return nil, nil, engineerr.ErrCancelled
	}

	bandResults := make(map[room.FrequencyBand]BandResult, len(room.Bands))
	measured := make(map[room.FrequencyBand]*float64, len(room.Bands))

	for i, b := range room.Bands {
		if octaveband.Excluded(b, sampleRateHz) {
			continue
		}

		bandResults[b] = outcomes[i].result
		measured[b] = outcomes[i].measured
	}

	return bandResults, measured, nil
}

func analyzeBand(ir []float64, sampleRateHz float64, b room.FrequencyBand, opts Options) bandOutcome {
	if float64(len(ir)) < sampleRateHz*MinIRSeconds {
		return bandOutcome{result: BandResult{Valid: false}, measured: nil}
	}

	filtered := ir

	if opts.FilterByBand && float64(len(ir)) >= sampleRateHz/octaveband.ShortInputFraction {
		coeffs := octaveband.Design(b.CenterHz(), sampleRateHz)
		filtered = octaveband.FiltFilt(ir, coeffs)
	}

	curve := schroeder.Integrate(filtered, sampleRateHz)

	dt := decaytime.Compute(curve, decaytime.Options{
		ComputeEDT:        opts.ComputeEDT,
		ComputeT20:        opts.ComputeT20,
		ComputeT30:        opts.ComputeT30,
		ComputeRT60Direct: opts.ComputeRT60Direct,
	})

	result := BandResult{
		DecayCurve:   curve,
		DecayTimes:   dt,
		PeakDB:       decaytime.PeakDB(filtered),
		NoiseFloorDB: decaytime.NoiseFloorDB(filtered),
		Valid:        dt.Measured() != nil,
	}

	attachSupplementedMetrics(&result, filtered, sampleRateHz)

	return bandOutcome{result: result, measured: dt.Measured()}
}

// attachSupplementedMetrics computes clarity, definition, and center-time
// — supplementary fields that never gate or alter the measured RT60/EDT/
// T20/T30 values.
func attachSupplementedMetrics(result *BandResult, filtered []float64, sampleRateHz float64) {
	if len(filtered) == 0 {
		return
	}

	an := irmetrics.NewAnalyzer(sampleRateHz)

	if v, err := an.Clarity(filtered, 50); err == nil && !math.IsInf(v, 0) {
		result.ClarityC50Db = &v
	}

	if v, err := an.Clarity(filtered, 80); err == nil && !math.IsInf(v, 0) {
		result.ClarityC80Db = &v
	}

	if v, err := an.Definition(filtered, 50); err == nil {
		result.DefinitionD50 = &v
	}

	if v, err := an.Definition(filtered, 80); err == nil {
		result.DefinitionD80 = &v
	}

	if v, err := an.CenterTime(filtered); err == nil {
		result.CenterTimeS = &v
	}
}

// harmonicDistortion extracts per-harmonic IRs from the raw ESS recording
// and summarizes each octave band's distortion via measure/thd, as an
// opt-in diagnostic.
func harmonicDistortion(audio Audio, mode ESSMode) map[room.FrequencyBand]float64 {
	sampleRateHz := float64(audio.SampleRateHz)

	s := sweep.LogSweep{StartFreq: mode.F1Hz, EndFreq: mode.F2Hz, Duration: mode.DurationS, SampleRate: sampleRateHz}

	harmonics, err := s.ExtractHarmonicIRs(toFloat64(audio.Samples), 5)
	if err != nil || len(harmonics) == 0 {
		return nil
	}

	fundamental := harmonics[0]

	out := make(map[room.FrequencyBand]float64, len(room.Bands))

	for _, b := range room.Bands {
		if octaveband.Excluded(b, sampleRateHz) {
			continue
		}

		cfg := thd.Config{SampleRate: sampleRateHz, FundamentalFreq: b.CenterHz()}
		res := thd.AnalyzeSignal(fundamental, cfg)
		out[b] = res.THD_dB
	}

	return out
}

func checkFinite(maps ...map[room.FrequencyBand]float64) error {
	for _, m := range maps {
		for b, v := range m {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: non-finite prediction for band %s", engineerr.ErrComputationFault, b)
			}
		}
	}

	return nil
}

func average(m map[room.FrequencyBand]*float64) *float64 {
	var sum float64

	var n int

	for _, v := range m {
		if v == nil {
			continue
		}

		sum += *v
		n++
	}

	if n == 0 {
		return nil
	}

	avg := sum / float64(n)

	return &avg
}

func averagePlain(m map[room.FrequencyBand]float64) float64 {
	if len(m) == 0 {
		return 0
	}

	var sum float64
	for _, v := range m {
		sum += v
	}

	return sum / float64(len(m))
}

// qualityText maps an average RT60 onto one of six fixed human-readable
// categories.
func qualityText(avgRT60 float64) string {
	switch {
	case avgRT60 < 0.3:
		return "very dry"
	case avgRT60 < 0.5:
		return "dry"
	case avgRT60 < 0.8:
		return "balanced"
	case avgRT60 < 1.2:
		return "live"
	case avgRT60 < 2.0:
		return "reverberant"
	default:
		return "very reverberant"
	}
}

func toFloat64(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}

	return out
}
