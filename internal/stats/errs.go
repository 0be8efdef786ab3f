package stats

import "errors"

// ErrEmptySample is an aggregation error: the
// statistics kernel never fails on well-formed input, but an empty sample
// set is ill-formed and must be rejected rather than silently producing NaN.
var ErrEmptySample = errors.New("stats: empty sample")
