package engineerr

import (
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, Unknown},
		{"insufficient data", ErrInsufficientData, InsufficientData},
		{"wrapped insufficient data", fmt.Errorf("band 125hz: %w", ErrInsufficientData), InsufficientData},
		{"invalid decay range", ErrInvalidDecayRange, InvalidDecayRange},
		{"low correlation", ErrLowCorrelation, LowCorrelation},
		{"implausible result", ErrImplausibleResult, ImplausibleResult},
		{"deconvolution failed", ErrDeconvolutionFailed, DeconvolutionFailed},
		{"invalid room", ErrInvalidRoom, InvalidRoom},
		{"cancelled", ErrCancelled, Cancelled},
		{"computation fault", ErrComputationFault, ComputationFault},
		{"unrelated error", fmt.Errorf("something else"), Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{InsufficientData, "InsufficientData"},
		{InvalidRoom, "InvalidRoom"},
		{Kind(999), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.k, got, tt.want)
		}
	}
}
