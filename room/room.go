// Package room holds the geometric and material data model shared by the
// acoustic analysis engine: octave bands, absorption materials, surfaces,
// and the room description the geometric predictor and analyzer consume.
package room

import (
	"errors"
	"fmt"
	"math"
)

// Errors returned by room model construction.
var (
	ErrInvalidDimension = errors.New("room: width, length, and height must be positive")
	ErrInvalidHumidity  = errors.New("room: humidity must be in (0, 100]")
	ErrInvalidArea      = errors.New("room: surface area must be positive")
	ErrMissingBand      = errors.New("room: material is missing an absorption coefficient for a band")
	ErrInvalidAlpha     = errors.New("room: absorption coefficient must be in [0, 1]")
)

// FrequencyBand identifies one of the six ISO octave bands this engine
// analyzes. Values are ordered ascending by center frequency.
type FrequencyBand int

// The six standard octave bands from 125 Hz to 4 kHz.
const (
	Band125 FrequencyBand = iota
	Band250
	Band500
	Band1k
	Band2k
	Band4k
)

// Bands lists all frequency bands in ascending center-frequency order.
// Callers should iterate this slice rather than assume enum ordinal order.
var Bands = []FrequencyBand{Band125, Band250, Band500, Band1k, Band2k, Band4k}

// CenterHz returns the center frequency of the band in Hz.
func (b FrequencyBand) CenterHz() float64 {
	switch b {
	case Band125:
		return 125
	case Band250:
		return 250
	case Band500:
		return 500
	case Band1k:
		return 1000
	case Band2k:
		return 2000
	case Band4k:
		return 4000
	default:
		return 0
	}
}

// EdgesHz returns the lower and upper -3dB-equivalent band edges,
// fc/sqrt(2) and fc*sqrt(2).
func (b FrequencyBand) EdgesHz() (lower, upper float64) {
	fc := b.CenterHz()
	return fc / math.Sqrt2, fc * math.Sqrt2
}

// String implements fmt.Stringer.
func (b FrequencyBand) String() string {
	switch b {
	case Band125:
		return "125 Hz"
	case Band250:
		return "250 Hz"
	case Band500:
		return "500 Hz"
	case Band1k:
		return "1 kHz"
	case Band2k:
		return "2 kHz"
	case Band4k:
		return "4 kHz"
	default:
		return "unknown band"
	}
}

// MarshalText implements encoding.TextMarshaler, producing the wire-format
// band keys from spec.md §6: "125_hz", "250_hz", ..., "4_khz".
func (b FrequencyBand) MarshalText() ([]byte, error) {
	switch b {
	case Band125:
		return []byte("125_hz"), nil
	case Band250:
		return []byte("250_hz"), nil
	case Band500:
		return []byte("500_hz"), nil
	case Band1k:
		return []byte("1_khz"), nil
	case Band2k:
		return []byte("2_khz"), nil
	case Band4k:
		return []byte("4_khz"), nil
	default:
		return nil, fmt.Errorf("room: unknown frequency band %d", int(b))
	}
}

// Material is a named absorption profile: a total mapping from every
// FrequencyBand to an absorption coefficient alpha in [0, 1].
type Material struct {
	Name  string
	alpha [Band4k + 1]float64
}

// DefaultMaterial is used when a room supplies no surfaces: alpha = 0.1 at
// every band, per spec.md §3.
var DefaultMaterial = Material{
	Name:  "default",
	alpha: [Band4k + 1]float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1},
}

// NewMaterial builds a Material from a complete band->alpha mapping.
// Every band in Bands must be present, and every alpha must be in [0, 1];
// a partial map is rejected with ErrMissingBand.
func NewMaterial(name string, alphaByBand map[FrequencyBand]float64) (Material, error) {
	m := Material{Name: name}
	for i, b := range Bands {
		a, ok := alphaByBand[b]
		if !ok {
			return Material{}, fmt.Errorf("%w: %s", ErrMissingBand, b)
		}
		if a < 0 || a > 1 {
			return Material{}, fmt.Errorf("%w: %s = %.3f", ErrInvalidAlpha, b, a)
		}
		m.alpha[i] = a
	}
	return m, nil
}

// Alpha returns the absorption coefficient at the given band.
func (m Material) Alpha(b FrequencyBand) float64 {
	idx := int(b)
	if idx < 0 || idx >= len(m.alpha) {
		return 0
	}
	return m.alpha[idx]
}

// Surface is a named area of a room with a uniform absorption material.
type Surface struct {
	Name     string
	AreaM2   float64
	Material Material
}

// NewSurface validates and constructs a Surface.
func NewSurface(name string, areaM2 float64, material Material) (Surface, error) {
	if areaM2 <= 0 {
		return Surface{}, ErrInvalidArea
	}
	return Surface{Name: name, AreaM2: areaM2, Material: material}, nil
}

// AbsorptionArea returns the equivalent absorption area of the surface at
// the given band: area * material.alpha(band).
func (s Surface) AbsorptionArea(b FrequencyBand) float64 {
	return s.AreaM2 * s.Material.Alpha(b)
}

// Model is the geometric and material description of a room, as supplied
// by an external geometry-acquisition collaborator (out of scope here).
type Model struct {
	Name         string
	WidthM       float64
	LengthM      float64
	HeightM      float64
	Surfaces     []Surface
	TemperatureC float64
	HumidityPct  float64
}

// NewRoom validates and constructs a room Model. Surfaces may be empty, in
// which case absorption defaults to DefaultMaterial over the full surface
// area (spec.md §3).
func NewRoom(name string, widthM, lengthM, heightM float64, surfaces []Surface, temperatureC, humidityPct float64) (Model, error) {
	if widthM <= 0 || lengthM <= 0 || heightM <= 0 {
		return Model{}, ErrInvalidDimension
	}
	if humidityPct <= 0 || humidityPct > 100 {
		return Model{}, ErrInvalidHumidity
	}
	for _, s := range surfaces {
		if s.AreaM2 <= 0 {
			return Model{}, fmt.Errorf("%w: surface %q", ErrInvalidArea, s.Name)
		}
	}

	out := make([]Surface, len(surfaces))
	copy(out, surfaces)

	return Model{
		Name:         name,
		WidthM:       widthM,
		LengthM:      lengthM,
		HeightM:      heightM,
		Surfaces:     out,
		TemperatureC: temperatureC,
		HumidityPct:  humidityPct,
	}, nil
}

// VolumeM3 returns the room's internal volume.
func (m Model) VolumeM3() float64 {
	return m.WidthM * m.LengthM * m.HeightM
}

// TotalSurfaceAreaM2 returns the total interior surface area of the room
// envelope (floor, ceiling, and four walls).
func (m Model) TotalSurfaceAreaM2() float64 {
	w, l, h := m.WidthM, m.LengthM, m.HeightM
	return 2 * (w*l + w*h + l*h)
}

// SpeedOfSoundMPS returns the temperature-corrected speed of sound in m/s.
func (m Model) SpeedOfSoundMPS() float64 {
	return 331.3 * math.Sqrt(1+m.TemperatureC/273.15)
}

// AbsorptionArea returns the room's total equivalent absorption area at
// the given band: sum of surface areas, or 0.1*totalSurfaceArea when the
// room has no surfaces defined (spec.md §4.7).
func (m Model) AbsorptionArea(b FrequencyBand) float64 {
	if len(m.Surfaces) == 0 {
		return m.TotalSurfaceAreaM2() * DefaultMaterial.Alpha(b)
	}
	var total float64
	for _, s := range m.Surfaces {
		total += s.AbsorptionArea(b)
	}
	return total
}

// Clone returns a deep, independent copy of the room model, used by the
// Analyzer to snapshot the room into an Analysis so later mutation of the
// source room cannot alter stored results (spec.md §3 lifecycle rule).
func (m Model) Clone() Model {
	out := m
	out.Surfaces = make([]Surface, len(m.Surfaces))
	copy(out.Surfaces, m.Surfaces)
	return out
}
