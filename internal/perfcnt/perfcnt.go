// Package perfcnt is the performance-counter adapter: it measures
// {cycles, instructions, branches, branch-misses} over a child process's
// lifetime, gating the child's start so counter arming happens before the
// measured workload runs.
//
// The Collector interface has one backend per supported OS, selected by a
// runtime capability probe.
package perfcnt

// Counters holds one child's lifetime totals for the four hardware
// counter measurements.
type Counters struct {
	Cycles       uint64
	Instructions uint64
	Branches     uint64
	BranchMisses uint64
}

// Collector arms and reads hardware counters for a single gated child PID.
// Collect must only be called after the child has been released to run (see
// internal/launcher.Child.Release) and the child has since exited or is
// being waited on; it measures over the entire lifetime of pid.
type Collector interface {
	// Arm prepares counters for pid before the child is released to run.
	Arm(pid int) error
	// Collect reads final counter values once the child has exited. On
	// failure the adapter has already attempted to kill the child and the
	// second return value is false.
	Collect(pid int) (Counters, bool)
	// Close releases OS resources held by the collector.
	Close() error
}
