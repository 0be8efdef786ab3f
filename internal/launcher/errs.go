package launcher

import "errors"

var (
	// ErrLaunchFailed wraps any pre-exec failure surfaced from the child
	//: fork, dup2, or exec itself failing.
	ErrLaunchFailed = errors.New("launcher: child failed to launch")

	// ErrWaitFailed wraps a wait4 syscall failure.
	ErrWaitFailed = errors.New("launcher: wait failed")

	// ErrGateFailed means the PMC-gated child could not be stopped/resumed
	// in the right order.
	ErrGateFailed = errors.New("launcher: pmc gate failed")
)
