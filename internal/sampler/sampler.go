// Package sampler implements the sample collector: one benchmark
// iteration (launch, time, collect rusage and PMCs, append to the sample
// matrix) plus the custom-measurement pass that runs once the
// adaptive/exact loop has finished.
package sampler

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/ja7ad/csbench/internal/bench"
	"github.com/ja7ad/csbench/internal/clock"
	"github.com/ja7ad/csbench/internal/launcher"
	"github.com/ja7ad/csbench/internal/perfcnt"
)

// Params configures the collector for one benchmark across its whole run.
type Params struct {
	Shell    string // "" -> /bin/sh
	UseShell bool
	Command  string   // shell-mode command line
	Argv     []string // exec-mode argv

	PrepareCmd string

	Input  bench.InputPolicy
	Output bench.OutputPolicyKind

	IgnoreFailure bool

	PMC perfcnt.Collector // nil disables PMC collection
}

// Collector drives repeated sampling of one benchmark.
type Collector struct {
	params Params
	bench  *bench.Benchmark

	stdoutTemp *os.File // only opened if HasCustomMeasurements()
}

// NewCollector opens whatever shared tempfiles this benchmark's measurement
// set requires.
func NewCollector(params Params, b *bench.Benchmark) (*Collector, error) {
	c := &Collector{params: params, bench: b}
	if b.HasCustomMeasurements() {
		f, err := newUnlinkedTemp("csbench-stdout-")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTempFile, err)
		}
		c.stdoutTemp = f
		b.StdoutTempFile = f.Name()
	}
	return c, nil
}

// Close releases any tempfiles this collector opened.
func (c *Collector) Close() error {
	if c.stdoutTemp != nil {
		return c.stdoutTemp.Close()
	}
	return nil
}

// RunPrepare runs the benchmark's configured "prepare" command, if any,
// before a sample; a non-zero exit aborts the benchmark.
func (c *Collector) RunPrepare() error {
	if c.params.PrepareCmd == "" {
		return nil
	}
	child, err := launcher.ShellLaunch(c.params.Shell, c.params.PrepareCmd, launcher.Streams{})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPrepareFailed, err)
	}
	res, _ := child.Wait()
	if res.ExitCode != 0 {
		return fmt.Errorf("%w: exit code %d", ErrPrepareFailed, res.ExitCode)
	}
	return nil
}

// RunOne executes one full iteration: launch, time, wait, collect rusage
// and counters, and append the run to the sample matrix.
func (c *Collector) RunOne(isWarmup bool) error {
	streams, cleanup, err := c.resolveStreams(isWarmup)
	if err != nil {
		return err
	}
	defer cleanup()

	t0 := clock.Now()

	var child *launcher.Child
	pmcEnabled := c.params.PMC != nil && !isWarmup
	if c.params.UseShell {
		child, err = launcher.ShellLaunch(c.params.Shell, c.params.Command, streams)
	} else {
		child, err = launcher.ExecDirect(c.params.Argv, streams, pmcEnabled)
	}
	if err != nil {
		return err
	}

	if pmcEnabled {
		if err := c.params.PMC.Arm(child.Pid()); err != nil {
			_ = child.Cmd.Process.Kill()
			return err
		}
		if err := child.Release(); err != nil {
			return err
		}
	}

	res, waitErr := child.Wait()
	t1 := clock.Now()

	var counters perfcnt.Counters
	if pmcEnabled {
		var ok bool
		counters, ok = c.params.PMC.Collect(child.Pid())
		if !ok {
			return fmt.Errorf("perfcnt: collection failed for pid %d", child.Pid())
		}
	}

	if waitErr != nil {
		return waitErr
	}

	// Warm-up iterations are timed and checked but never recorded.
	if !isWarmup {
		c.appendRun(t0, t1, res, counters)
	}
	if !c.params.IgnoreFailure && res.ExitCode != 0 {
		return fmt.Errorf("%w: %d", ErrNonZeroExit, res.ExitCode)
	}
	return nil
}

func (c *Collector) appendRun(t0, t1 float64, res launcher.Result, counters perfcnt.Counters) {
	values := map[int]float64{}
	for i, m := range c.bench.Measurements {
		switch m.Kind {
		case bench.MeasWall:
			values[i] = t1 - t0
		case bench.MeasUTime:
			if res.Rusage != nil {
				values[i] = launcher.RusageSeconds(res.Rusage.Utime)
			}
		case bench.MeasSTime:
			if res.Rusage != nil {
				values[i] = launcher.RusageSeconds(res.Rusage.Stime)
			}
		case bench.MeasMaxRSS:
			if res.Rusage != nil {
				values[i] = float64(res.Rusage.Maxrss)
			}
		case bench.MeasMinFlt:
			if res.Rusage != nil {
				values[i] = float64(res.Rusage.Minflt)
			}
		case bench.MeasMajFlt:
			if res.Rusage != nil {
				values[i] = float64(res.Rusage.Majflt)
			}
		case bench.MeasNVCSw:
			if res.Rusage != nil {
				values[i] = float64(res.Rusage.Nvcsw)
			}
		case bench.MeasNIVCSw:
			if res.Rusage != nil {
				values[i] = float64(res.Rusage.Nivcsw)
			}
		case bench.MeasCycles:
			values[i] = float64(counters.Cycles)
		case bench.MeasInstructions:
			values[i] = float64(counters.Instructions)
		case bench.MeasBranches:
			values[i] = float64(counters.Branches)
		case bench.MeasBranchMisses:
			values[i] = float64(counters.BranchMisses)
		case bench.MeasCustom:
			// filled in later by the custom-measurement pass.
		}
	}
	c.bench.AppendRun(res.ExitCode, values)
	if c.stdoutTemp != nil {
		if off, err := c.stdoutTemp.Seek(0, io.SeekCurrent); err == nil {
			_ = c.bench.PushStdoutOffset(off)
		}
	}
}

// resolveStreams picks the child's streams: stdout goes to the shared
// tempfile when custom measurements exist (stderr -> /dev/null), otherwise
// the configured output policy applies; warm-up always forces /dev/null.
func (c *Collector) resolveStreams(isWarmup bool) (launcher.Streams, func(), error) {
	var in *os.File
	cleanups := []func(){}
	cleanup := func() {
		for _, fn := range cleanups {
			fn()
		}
	}

	switch c.params.Input.Kind {
	case bench.InputFile:
		f, err := os.Open(c.params.Input.FilePathOrDir)
		if err != nil {
			return launcher.Streams{}, cleanup, fmt.Errorf("%w: %v", ErrTempFile, err)
		}
		in = f
		cleanups = append(cleanups, func() { _ = f.Close() })
	case bench.InputInline:
		f, err := newUnlinkedTemp("csbench-stdin-")
		if err != nil {
			return launcher.Streams{}, cleanup, fmt.Errorf("%w: %v", ErrTempFile, err)
		}
		if _, err := f.WriteString(c.params.Input.Inline); err != nil {
			_ = f.Close()
			return launcher.Streams{}, cleanup, fmt.Errorf("%w: %v", ErrTempFile, err)
		}
		_, _ = f.Seek(0, io.SeekStart)
		in = f
		cleanups = append(cleanups, func() { _ = f.Close() })
	}

	if isWarmup {
		return launcher.Streams{Stdin: in}, cleanup, nil
	}

	if c.stdoutTemp != nil {
		return launcher.Streams{Stdin: in, Stdout: c.stdoutTemp}, cleanup, nil
	}

	switch c.params.Output {
	case bench.OutputInherit:
		return launcher.Streams{Stdin: in, Stdout: os.Stdout, Stderr: os.Stderr}, cleanup, nil
	default:
		return launcher.Streams{Stdin: in}, cleanup, nil
	}
}

// RunCustomMeasurements is the custom-measurement pass: slice the shared
// stdout tempfile per run using StdoutOffsets, pipe each slice through
// every custom extractor, and parse the first real number out of its
// stdout. The tempfile is already unlinked, so it must be read through the
// collector's own descriptor, not reopened by name.
func (c *Collector) RunCustomMeasurements(shell string) error {
	b := c.bench
	if !b.HasCustomMeasurements() || c.stdoutTemp == nil {
		return nil
	}
	src := c.stdoutTemp
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %v", ErrTempFile, err)
	}

	var prev int64
	for run := 0; run < b.RunCount; run++ {
		end := b.StdoutOffsets[run]
		slice := make([]byte, end-prev)
		if _, err := io.ReadFull(src, slice); err != nil {
			return fmt.Errorf("%w: %v", ErrTempFile, err)
		}
		prev = end

		for mi, m := range b.Measurements {
			if !m.IsCustom() {
				continue
			}
			val, err := extractOne(shell, m.ExtractorCmd, slice)
			if err != nil {
				return err
			}
			if run < len(b.Meas[mi]) {
				b.Meas[mi][run] = val
			}
		}
	}
	return nil
}

// extractOne runs one extractor command with slice on its stdin and parses
// the first real number out of the extractor's stdout. "cat" is special
// cased to mean "parse the first real number in stdout" — which
// is exactly what running the literal `cat` command and then parsing does,
// so no special branch is needed beyond documenting the behavior.
func extractOne(shell, cmd string, slice []byte) (float64, error) {
	inFile, err := newUnlinkedTemp("csbench-custom-in-")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTempFile, err)
	}
	defer func() { _ = inFile.Close() }()
	if _, err := inFile.Write(slice); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTempFile, err)
	}
	if _, err := inFile.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTempFile, err)
	}

	outFile, err := newUnlinkedTemp("csbench-custom-out-")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTempFile, err)
	}
	defer func() { _ = outFile.Close() }()

	child, err := launcher.ShellLaunch(shell, cmd, launcher.Streams{Stdin: inFile, Stdout: outFile})
	if err != nil {
		return 0, err
	}
	if _, err := child.Wait(); err != nil {
		// Non-zero extractor exit is not itself fatal; an empty/unparseable
		// result below is what treats as the measurement error.
		_ = err
	}

	if _, err := outFile.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTempFile, err)
	}
	out, err := io.ReadAll(outFile)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTempFile, err)
	}

	v, ok := firstFloat(string(out))
	if !ok {
		return 0, fmt.Errorf("%w: extractor output %q", ErrCustomParseFailed, strings.TrimSpace(string(out)))
	}
	return v, nil
}

// firstFloat implements locale-independent double parsing of the first real
// number appearing in s.
func firstFloat(s string) (float64, bool) {
	n := len(s)
	for i := 0; i < n; i++ {
		c := s[i]
		if !unicode.IsDigit(rune(c)) && c != '-' && c != '+' && c != '.' {
			continue
		}
		j := i
		sawDigit := false
		for j < n {
			c := s[j]
			if unicode.IsDigit(rune(c)) {
				sawDigit = true
				j++
				continue
			}
			if c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E' {
				j++
				continue
			}
			break
		}
		if !sawDigit {
			i = j
			continue
		}
		v, err := strconv.ParseFloat(s[i:j], 64)
		if err == nil {
			return v, true
		}
		i = j
	}
	return 0, false
}

// newUnlinkedTemp creates a uniquely-named temp file, opens it, and
// unlinks it immediately so it vanishes on crash.
func newUnlinkedTemp(prefix string) (*os.File, error) {
	f, err := os.CreateTemp("", prefix+uuid.NewString())
	if err != nil {
		return nil, err
	}
	name := f.Name()
	if err := os.Remove(name); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}
