package runner

import "errors"

// ErrBenchmarkFailed wraps a sampling or custom-extractor error that
// aborted one benchmark; failures are per-benchmark, siblings keep
// running.
var ErrBenchmarkFailed = errors.New("runner: benchmark failed")
