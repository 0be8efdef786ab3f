// Package config builds the single immutable configuration record the CLI
// hands to the runner. Workers never mutate it.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ja7ad/csbench/internal/bench"
	"github.com/ja7ad/csbench/internal/progress"
	"github.com/ja7ad/csbench/internal/stopper"
	"github.com/ja7ad/csbench/internal/units"
)

// CustomSpec is one --custom/--custom-t/--custom-x directive before it is
// turned into a measurement descriptor.
type CustomSpec struct {
	Name  string
	Units string
	Cmd   string
}

// Config carries every session-wide knob, built once by the CLI layer and
// passed down read-only.
type Config struct {
	BenchPolicy  stopper.Policy
	WarmupPolicy stopper.Policy
	RoundPolicy  stopper.Policy

	NResamples int

	UseShell bool
	Shell    string

	PrepareCmd string
	CommonArgs string

	Input         bench.InputPolicy
	Output        bench.OutputPolicyKind
	IgnoreFailure bool

	Measurements []bench.MeasurementDescriptor

	Variable *bench.Variable

	Jobs int

	BaselineIdx  int // 0-based, -1 when unset
	BaselineName string

	Color       progress.TriState
	ProgressBar progress.TriState

	OutDir   string
	JSONPath string
	WriteCSV bool
	HTMLPath string

	RenameByIdx  map[int]string
	RenameByName map[string]string
	RenameAll    []string
}

// Defaults returns the configuration csbench starts from before any flag
// is applied: nresamp 10000, output null, sequential execution, and a
// round time of a few seconds so sibling benchmarks interleave unless
// --no-rounds.
func Defaults() Config {
	return Config{
		BenchPolicy:  stopper.Policy{TimeLimit: 5, MinRuns: 5, MaxRuns: 0},
		WarmupPolicy: stopper.Policy{TimeLimit: 1},
		RoundPolicy:  stopper.Policy{TimeLimit: 5},
		NResamples:   10000,
		UseShell:     true,
		Output:       bench.OutputNull,
		Jobs:         1,
		BaselineIdx:  -1,
		Color:        progress.Auto,
		ProgressBar:  progress.Auto,
		OutDir:       ".csbench",
	}
}

// ParseScan parses a --scan argument of the form i/n/m[/s]: a variable
// named i ranging from n to m inclusive with step s (default 1).
func ParseScan(arg string) (bench.Variable, error) {
	parts := strings.Split(arg, "/")
	if len(parts) != 3 && len(parts) != 4 {
		return bench.Variable{}, fmt.Errorf("%w: %q", ErrBadScan, arg)
	}
	name := parts[0]
	if name == "" {
		return bench.Variable{}, fmt.Errorf("%w: empty variable name in %q", ErrBadScan, arg)
	}
	from, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return bench.Variable{}, fmt.Errorf("%w: %q: %v", ErrBadScan, arg, err)
	}
	to, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return bench.Variable{}, fmt.Errorf("%w: %q: %v", ErrBadScan, arg, err)
	}
	step := 1.0
	if len(parts) == 4 {
		step, err = strconv.ParseFloat(parts[3], 64)
		if err != nil {
			return bench.Variable{}, fmt.Errorf("%w: %q: %v", ErrBadScan, arg, err)
		}
	}
	if step <= 0 || to < from {
		return bench.Variable{}, fmt.Errorf("%w: %q: empty range", ErrBadScan, arg)
	}

	v := bench.Variable{Name: name}
	for x := from; x <= to; x += step {
		v.Values = append(v.Values, strconv.FormatFloat(x, 'g', -1, 64))
	}
	return v, nil
}

// ParseScanList parses a --scanl argument of the form i/v,v,...: a variable
// named i taking each listed literal value in order.
func ParseScanList(arg string) (bench.Variable, error) {
	name, rest, ok := strings.Cut(arg, "/")
	if !ok || name == "" || rest == "" {
		return bench.Variable{}, fmt.Errorf("%w: %q", ErrBadScan, arg)
	}
	return bench.Variable{Name: name, Values: strings.Split(rest, ",")}, nil
}

// ParseMeasList validates --meas tokens against the fixed vocabulary and
// returns their descriptors in the given order.
func ParseMeasList(tokens []string) ([]bench.MeasurementDescriptor, error) {
	var out []bench.MeasurementDescriptor
	for _, tok := range tokens {
		kind := bench.MeasurementKind(strings.TrimSpace(tok))
		switch kind {
		case bench.MeasWall, bench.MeasSTime, bench.MeasUTime,
			bench.MeasMaxRSS, bench.MeasMinFlt, bench.MeasMajFlt,
			bench.MeasNVCSw, bench.MeasNIVCSw,
			bench.MeasCycles, bench.MeasInstructions, bench.MeasBranches, bench.MeasBranchMisses:
			out = append(out, newDescriptor(kind))
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownMeasurement, tok)
		}
	}
	return out, nil
}

// DefaultMeasurements is the set enabled with no --meas flag at all:
// wall-clock only.
func DefaultMeasurements() []bench.MeasurementDescriptor {
	out := make([]bench.MeasurementDescriptor, 0, len(bench.DefaultMeasurementSet()))
	for _, kind := range bench.DefaultMeasurementSet() {
		out = append(out, newDescriptor(kind))
	}
	return out
}

func newDescriptor(kind bench.MeasurementKind) bench.MeasurementDescriptor {
	d := bench.MeasurementDescriptor{Kind: kind, Name: string(kind), PrimaryIdx: -1}
	switch kind {
	case bench.MeasWall, bench.MeasSTime, bench.MeasUTime:
		d.Units = string(units.UnitSeconds)
	case bench.MeasMaxRSS:
		d.Units = string(units.UnitKilobytes)
	default:
		d.Units = string(units.UnitNone)
	}
	return d
}

// CustomDescriptor turns one custom-measurement spec into its descriptor.
// An empty units token means "none"; an empty command means the `cat`
// shorthand.
func CustomDescriptor(spec CustomSpec) bench.MeasurementDescriptor {
	cmd := spec.Cmd
	if cmd == "" {
		cmd = "cat"
	}
	return bench.MeasurementDescriptor{
		Kind:         bench.MeasCustom,
		Name:         spec.Name,
		Units:        string(units.ParseUnit(spec.Units)),
		ExtractorCmd: cmd,
		PrimaryIdx:   -1,
	}
}

// SetVariable records the session's single benchmark variable, rejecting a
// second one.
func (c *Config) SetVariable(v bench.Variable) error {
	if c.Variable != nil {
		return fmt.Errorf("%w: %q and %q", ErrDuplicateVariable, c.Variable.Name, v.Name)
	}
	c.Variable = &v
	return nil
}

// BuildBenchmarks expands the positional commands into the session's
// benchmark list and groups. With a variable configured, every command
// becomes one group with one benchmark per value, `{name}` occurrences in
// the command substituted with the value.
func (c *Config) BuildBenchmarks(commands []string) ([]*bench.Benchmark, []bench.Group, error) {
	if len(commands) == 0 {
		return nil, nil, ErrNoCommands
	}

	var benches []*bench.Benchmark
	var groups []bench.Group

	if c.Variable == nil {
		for _, cmd := range commands {
			benches = append(benches, c.newBenchmark(cmd, ""))
		}
	} else {
		placeholder := "{" + c.Variable.Name + "}"
		for _, cmd := range commands {
			g := bench.Group{DisplayName: cmd}
			for _, val := range c.Variable.Values {
				expanded := strings.ReplaceAll(cmd, placeholder, val)
				b := c.newBenchmark(expanded, val)
				g.BenchIndices = append(g.BenchIndices, len(benches))
				benches = append(benches, b)
			}
			groups = append(groups, g)
		}
	}

	if err := c.applyRenames(benches); err != nil {
		return nil, nil, err
	}
	return benches, groups, nil
}

func (c *Config) newBenchmark(cmd, varValue string) *bench.Benchmark {
	full := cmd
	if c.CommonArgs != "" {
		full = cmd + " " + c.CommonArgs
	}
	name := full
	if varValue != "" && !strings.Contains(cmd, varValue) {
		name = fmt.Sprintf("%s (%s=%s)", full, c.Variable.Name, varValue)
	}
	input := c.Input
	if input.Kind == bench.InputFile && varValue != "" && c.Variable != nil {
		input.FilePathOrDir = strings.ReplaceAll(input.FilePathOrDir, "{"+c.Variable.Name+"}", varValue)
	}
	return &bench.Benchmark{
		DisplayName:   name,
		UseShell:      c.UseShell,
		Shell:         c.Shell,
		Command:       full,
		Argv:          splitArgv(full),
		PrepareCmd:    c.PrepareCmd,
		Input:         input,
		Output:        c.Output,
		Measurements:  append([]bench.MeasurementDescriptor(nil), c.Measurements...),
		IgnoreFailure: c.IgnoreFailure,
	}
}

// splitArgv is the no-shell tokenizer: whitespace splitting only, since
// without a shell there is nothing to expand; the exec path takes the
// words as-is.
func splitArgv(cmd string) []string {
	return strings.Fields(cmd)
}

// applyRenames applies --rename / --renamen / --rename-all in that order.
func (c *Config) applyRenames(benches []*bench.Benchmark) error {
	for idx, name := range c.RenameByIdx {
		if idx < 1 || idx > len(benches) {
			return fmt.Errorf("%w: index %d out of range 1..%d", ErrBadRename, idx, len(benches))
		}
		benches[idx-1].DisplayName = name
	}
	for old, repl := range c.RenameByName {
		found := false
		for _, b := range benches {
			if b.DisplayName == old {
				b.DisplayName = repl
				found = true
			}
		}
		if !found {
			return fmt.Errorf("%w: no benchmark named %q", ErrBadRename, old)
		}
	}
	if len(c.RenameAll) > 0 {
		if len(c.RenameAll) != len(benches) {
			return fmt.Errorf("%w: --rename-all has %d names for %d benchmarks", ErrBadRename, len(c.RenameAll), len(benches))
		}
		for i, name := range c.RenameAll {
			benches[i].DisplayName = name
		}
	}
	return nil
}

// ResolveBaseline maps --baseline (1-based) / --baseline-name onto a
// 0-based benchmark index, or -1 for "smallest mean" auto-selection.
func (c *Config) ResolveBaseline(benches []*bench.Benchmark) (int, error) {
	if c.BaselineName != "" {
		for i, b := range benches {
			if b.DisplayName == c.BaselineName {
				return i, nil
			}
		}
		return -1, fmt.Errorf("%w: no benchmark named %q", ErrBadRename, c.BaselineName)
	}
	if c.BaselineIdx >= 0 {
		if c.BaselineIdx >= len(benches) {
			return -1, fmt.Errorf("%w: baseline %d out of range 1..%d", ErrBadRename, c.BaselineIdx+1, len(benches))
		}
		return c.BaselineIdx, nil
	}
	return -1, nil
}
