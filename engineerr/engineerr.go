// Package engineerr defines the sentinel error taxonomy shared across the
// analysis engine. Band-local failures are caught by callers and reduced to
// absent optional fields; only the run-level sentinels here ever propagate
// out of analysis.Analyze.
package engineerr

import "errors"

// Kind classifies an engine error for programmatic matching, independent of
// the wrapped message text.
type Kind int

// The eight error kinds the engine distinguishes.
const (
	Unknown Kind = iota
	InsufficientData
	InvalidDecayRange
	LowCorrelation
	ImplausibleResult
	DeconvolutionFailed
	InvalidRoom
	Cancelled
	ComputationFault
)

func (k Kind) String() string {
	switch k {
	case InsufficientData:
		return "InsufficientData"
	case InvalidDecayRange:
		return "InvalidDecayRange"
	case LowCorrelation:
		return "LowCorrelation"
	case ImplausibleResult:
		return "ImplausibleResult"
	case DeconvolutionFailed:
		return "DeconvolutionFailed"
	case InvalidRoom:
		return "InvalidRoom"
	case Cancelled:
		return "Cancelled"
	case ComputationFault:
		return "ComputationFault"
	default:
		return "Unknown"
	}
}

// Sentinel errors, one per Kind. Wrap with fmt.Errorf("%w: ...") at the call
// site to add context without losing errors.Is matchability.
var (
	ErrInsufficientData    = errors.New("engine: input is too short or has too few valid points")
	ErrInvalidDecayRange   = errors.New("engine: decay curve never crosses the required dB threshold")
	ErrLowCorrelation      = errors.New("engine: regression correlation fails the quality gate")
	ErrImplausibleResult   = errors.New("engine: computed decay time is outside the plausible range")
	ErrDeconvolutionFailed = errors.New("engine: deconvolution could not produce a usable impulse response")
	ErrInvalidRoom         = errors.New("engine: room geometry is invalid")
	ErrCancelled           = errors.New("engine: analysis was cancelled")
	ErrComputationFault    = errors.New("engine: internal numerical invariant violated")
)

// KindOf classifies err against the known sentinels using errors.Is, so
// wrapped errors still resolve correctly.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return Unknown
	case errors.Is(err, ErrInsufficientData):
		return InsufficientData
	case errors.Is(err, ErrInvalidDecayRange):
		return InvalidDecayRange
	case errors.Is(err, ErrLowCorrelation):
		return LowCorrelation
	case errors.Is(err, ErrImplausibleResult):
		return ImplausibleResult
	case errors.Is(err, ErrDeconvolutionFailed):
		return DeconvolutionFailed
	case errors.Is(err, ErrInvalidRoom):
		return InvalidRoom
	case errors.Is(err, ErrCancelled):
		return Cancelled
	case errors.Is(err, ErrComputationFault):
		return ComputationFault
	default:
		return Unknown
	}
}
