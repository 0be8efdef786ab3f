// Package bench holds the data model shared by every other csbench
// component: measurement descriptors, the benchmark's sample matrix, and
// the benchmark-variable/group grouping used when a benchmark is
// parameterized.
package bench

import "fmt"

// MeasurementKind is the stable identifier of a measurement.
type MeasurementKind string

const (
	MeasWall         MeasurementKind = "wall"
	MeasSTime        MeasurementKind = "stime"
	MeasUTime        MeasurementKind = "utime"
	MeasMaxRSS       MeasurementKind = "maxrss"
	MeasMinFlt       MeasurementKind = "minflt"
	MeasMajFlt       MeasurementKind = "majflt"
	MeasNVCSw        MeasurementKind = "nvcsw"
	MeasNIVCSw       MeasurementKind = "nivcsw"
	MeasCycles       MeasurementKind = "cycles"
	MeasInstructions MeasurementKind = "instructions"
	MeasBranches     MeasurementKind = "branches"
	MeasBranchMisses MeasurementKind = "branch-misses"
	MeasCustom       MeasurementKind = "custom"
)

// DefaultMeasurementSet is the set enabled with no --meas flag at all
// (wall-clock only); --no-default-meas suppresses it.
func DefaultMeasurementSet() []MeasurementKind { return []MeasurementKind{MeasWall} }

// IsPMC reports whether a kind requires the perf counter adapter.
func (k MeasurementKind) IsPMC() bool {
	switch k {
	case MeasCycles, MeasInstructions, MeasBranches, MeasBranchMisses:
		return true
	default:
		return false
	}
}

// MeasurementDescriptor describes one column of the sample matrix.
type MeasurementDescriptor struct {
	Kind MeasurementKind
	Name string
	// Units: one of units.Unit string constants, or a freeform custom label.
	Units string
	// ExtractorCmd is only set for MeasCustom: a shell pipeline applied to
	// the run's captured stdout. "cat" is special-cased to mean "parse the
	// first real number in stdout".
	ExtractorCmd string
	// PrimaryIdx links a secondary measurement to the primary measurement
	// index it annotates, or -1 if this descriptor has no primary.
	PrimaryIdx int
}

// IsCustom reports whether this descriptor needs the custom-measurement pass.
func (d MeasurementDescriptor) IsCustom() bool { return d.Kind == MeasCustom }

// InputPolicyKind selects how a benchmark's stdin is populated.
type InputPolicyKind int

const (
	InputNull InputPolicyKind = iota
	InputFile
	InputInline
)

// InputPolicy configures a benchmark's stdin. FilePathOrDir may embed the
// benchmark variable's current value.
type InputPolicy struct {
	Kind          InputPolicyKind
	FilePathOrDir string
	Inline        string
}

// OutputPolicyKind selects how a benchmark's stdout/stderr are redirected
// when no custom measurement forces capture.
type OutputPolicyKind int

const (
	OutputNull OutputPolicyKind = iota
	OutputInherit
	OutputCaptured
)

// Benchmark is the unit of execution: one command plus its measurement
// policy and the samples it has accumulated.
type Benchmark struct {
	DisplayName string

	// Execution target.
	UseShell bool
	Shell    string // shell binary, e.g. "/bin/sh", run with "-c"; empty means /bin/sh
	Command  string // the full command line (shell mode) or argv[0] (exec mode)
	Argv     []string

	PrepareCmd string

	Input  InputPolicy
	Output OutputPolicyKind

	Measurements []MeasurementDescriptor

	// Sample matrix: Meas[measurementIdx][runIdx].
	Meas [][]float64
	// ExitCodes[runIdx], shell-style (128+signal for signalled children).
	ExitCodes []int
	// StdoutOffsets[runIdx] is the byte offset in StdoutTempFile marking the
	// end of run i's captured stdout; empty if no custom measurement needs
	// stdout capture.
	StdoutOffsets []int64
	// StdoutTempFile is the path to the shared, already-unlinked tempfile
	// holding concatenated stdouts (empty if unused).
	StdoutTempFile string

	IgnoreFailure bool

	// RunCount is the number of completed iterations (including any
	// suspended-and-resumed rounds); always equal to len(ExitCodes).
	RunCount int

	// TimeRun accumulates elapsed seconds across round-suspensions so the
	// adaptive/exact loop can resume without losing the running time budget
	//.
	TimeRun float64

	// Failed is set once a sample or custom-extractor failure aborts this
	// benchmark; siblings are unaffected.
	Failed    bool
	FailedErr error
}

// EnsureMeasurementSlots lazily grows Meas to match len(Measurements).
func (b *Benchmark) EnsureMeasurementSlots() {
	for len(b.Meas) < len(b.Measurements) {
		b.Meas = append(b.Meas, nil)
	}
}

// AppendRun appends one iteration's values across all non-custom
// measurements plus its exit code, maintaining len(ExitCodes) == RunCount
// == len(Meas[m]) for every m.
func (b *Benchmark) AppendRun(exitCode int, values map[int]float64) {
	b.EnsureMeasurementSlots()
	for i := range b.Measurements {
		v, ok := values[i]
		if !ok {
			v = 0
		}
		b.Meas[i] = append(b.Meas[i], v)
	}
	b.ExitCodes = append(b.ExitCodes, exitCode)
	b.RunCount++
}

// PushStdoutOffset records the captured-stdout boundary for the run just
// appended. Offsets must be non-decreasing.
func (b *Benchmark) PushStdoutOffset(off int64) error {
	if len(b.StdoutOffsets) > 0 && off < b.StdoutOffsets[len(b.StdoutOffsets)-1] {
		return fmt.Errorf("%w: %d < %d", ErrStdoutOffsetsMismatch, off, b.StdoutOffsets[len(b.StdoutOffsets)-1])
	}
	b.StdoutOffsets = append(b.StdoutOffsets, off)
	return nil
}

// CheckInvariants validates the structural invariants that must hold
// after every mutation; intended for use in tests and as a cheap runtime
// assertion after a round of sampling.
func (b *Benchmark) CheckInvariants() error {
	if len(b.ExitCodes) != b.RunCount {
		return fmt.Errorf("%w: exit_codes=%d run_count=%d", ErrMeasurementLengthMismatch, len(b.ExitCodes), b.RunCount)
	}
	for i, m := range b.Meas {
		if len(m) != b.RunCount {
			return fmt.Errorf("%w: meas[%d]=%d run_count=%d", ErrMeasurementLengthMismatch, i, len(m), b.RunCount)
		}
	}
	if len(b.StdoutOffsets) != 0 && len(b.StdoutOffsets) != b.RunCount {
		return fmt.Errorf("%w: stdout_offsets=%d run_count=%d", ErrStdoutOffsetsMismatch, len(b.StdoutOffsets), b.RunCount)
	}
	for i := 1; i < len(b.StdoutOffsets); i++ {
		if b.StdoutOffsets[i] < b.StdoutOffsets[i-1] {
			return fmt.Errorf("%w: offsets not nondecreasing at %d", ErrStdoutOffsetsMismatch, i)
		}
	}
	return nil
}

// HasCustomMeasurements reports whether any descriptor needs the
// custom-measurement pass, which in turn forces stdout capture during
// sampling.
func (b *Benchmark) HasCustomMeasurements() bool {
	for _, m := range b.Measurements {
		if m.IsCustom() {
			return true
		}
	}
	return false
}

// Variable is a benchmark variable: a name plus an ordered list of
// string values. At most one may exist per session.
type Variable struct {
	Name   string
	Values []string
}

// Group is an ordered list of benchmark indices aligned with
// Variable.Values, plus a display name.
type Group struct {
	DisplayName  string
	BenchIndices []int
}
