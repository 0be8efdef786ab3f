package perfcnt

import "errors"

var (
	// ErrUnavailable is returned by InitPerf when the host/platform cannot
	// provide the counters at all.
	ErrUnavailable = errors.New("perfcnt: hardware counters unavailable on this platform")

	// ErrPermission means the counters exist but this process lacks the
	// privilege to open them.
	ErrPermission = errors.New("perfcnt: insufficient privilege to open performance counters")

	// ErrArmFailed means one of the counters for the gated child could not
	// be opened, so arming before the measured workload failed.
	ErrArmFailed = errors.New("perfcnt: failed to arm counters before child ran")

	// ErrCollectFailed wraps a read failure; the adapter kills the child
	// and returns false in this case.
	ErrCollectFailed = errors.New("perfcnt: failed to read counters")
)
