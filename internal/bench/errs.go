package bench

import "errors"

var (
	// ErrEmptySamples is raised when analysis is attempted over a benchmark
	// with run_count == 0.
	ErrEmptySamples = errors.New("bench: no samples to analyze")

	// ErrMeasurementLengthMismatch guards the invariant that every meas[i]
	// has length run_count.
	ErrMeasurementLengthMismatch = errors.New("bench: measurement sample length mismatch")

	// ErrStdoutOffsetsMismatch guards stdout_offsets length/monotonicity.
	ErrStdoutOffsetsMismatch = errors.New("bench: stdout offsets invalid")

	// ErrDuplicateVariable is an argument error: more than one benchmark
	// variable was declared in a single session.
	ErrDuplicateVariable = errors.New("bench: at most one benchmark variable is allowed")

	// ErrNoPrimaryMeasurement means a custom descriptor's primary_idx points
	// nowhere.
	ErrNoPrimaryMeasurement = errors.New("bench: primary_idx out of range")
)
