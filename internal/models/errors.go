package models

import "errors"

// Sentinel errors for the synthesis core. Callers match with errors.Is;
// call sites wrap these with %w and the offending value.
var (
	// ErrInvalidParameter indicates a non-positive rate, duration, or
	// sampling rate, or an out-of-range gaming attribute. The call fails
	// at the boundary and never produces a partial result.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrUnsupportedMode indicates an unknown spike model, band name,
	// mental state, or callback event. The wrapped message lists the
	// recognized set.
	ErrUnsupportedMode = errors.New("unsupported mode")
)
