package sampler

import "errors"

var (
	// ErrPrepareFailed means the benchmark's "prepare" command exited
	// non-zero; the failure aborts the benchmark.
	ErrPrepareFailed = errors.New("sampler: prepare command failed")

	// ErrNonZeroExit means the iteration's exit code was non-zero and
	// IgnoreFailure is false.
	ErrNonZeroExit = errors.New("sampler: benchmark exited non-zero")

	// ErrCustomParseFailed means an extractor produced unparseable or empty
	// output (custom-measurement pass, "Measurement
	// errors").
	ErrCustomParseFailed = errors.New("sampler: custom extractor produced no number")

	// ErrTempFile covers any I/O error against a sampler-owned tempfile.
	ErrTempFile = errors.New("sampler: tempfile I/O error")
)
