package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ja7ad/csbench/internal/bench"
	"github.com/ja7ad/csbench/internal/config"
	"github.com/ja7ad/csbench/internal/export"
	"github.com/ja7ad/csbench/internal/perfcnt"
	"github.com/ja7ad/csbench/internal/progress"
	"github.com/ja7ad/csbench/internal/report"
	"github.com/ja7ad/csbench/internal/runner"
	"github.com/ja7ad/csbench/internal/sampler"
	"github.com/ja7ad/csbench/internal/stopper"
	"github.com/ja7ad/csbench/internal/units"
)

type opts struct {
	// benchmark stop policy
	timeLimit string
	runs      int
	minRuns   int
	maxRuns   int

	// warm-up stop policy
	warmupTime    string
	warmupRuns    int
	warmupMinRuns int
	warmupMaxRuns int
	noWarmup      bool

	// round policy
	roundTime    string
	roundRuns    int
	minRoundRuns int
	maxRoundRuns int
	noRounds     bool

	prepare    string
	nrs        int
	commonArgs string

	shell   string
	noShell bool

	output  string
	noInput bool
	input   string
	inputs  string
	inputd  string

	customs  []string
	customTs []string
	customXs []string

	scan  string
	scanl string

	jobs          int
	baseline      int
	baselineName  string
	colorMode     string
	progressBar   string
	ignoreFailure bool

	meas          []string
	noDefaultMeas bool

	renames   []string
	renamens  []string
	renameAll string

	outDir   string
	jsonPath string
	htmlPath string
	writeCSV bool
}

func main() {
	var o opts

	root := &cobra.Command{
		Use:   "csbench <command>...",
		Short: "Command-line benchmark runner with statistical analysis",
		Long: `csbench repeatedly executes commands under controlled conditions, measures
wall-clock and resource usage, optionally reads hardware performance counters
and custom metrics from the command's stdout, and produces bootstrap point +
interval estimates so commands can be compared or studied against a parameter.

Examples:
  csbench 'sleep 0.01' -R 20 --no-warmup --json out.json
  csbench 'grep -r foo .' 'rg foo' -T 5 --baseline 1
  csbench 'echo {n} | ./quicksort.py' --scan n/100/500/100 --custom t -R 3`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return run(o, args)
		},
	}

	root.Flags().StringVarP(&o.timeLimit, "time-limit", "T", "5", "benchmark time limit (bare seconds, or s/ms/us/ns suffix)")
	root.Flags().IntVarP(&o.runs, "runs", "R", 0, "run each benchmark exactly this many times")
	root.Flags().IntVar(&o.minRuns, "min-runs", 5, "never stop before this many runs")
	root.Flags().IntVar(&o.maxRuns, "max-runs", 0, "never run more than this many times (0 = unbounded)")

	root.Flags().StringVarP(&o.warmupTime, "warmup", "W", "1", "warm-up time limit")
	root.Flags().IntVar(&o.warmupRuns, "warmup-runs", 0, "run warm-up exactly this many times")
	root.Flags().IntVar(&o.warmupMinRuns, "warmup-min-runs", 0, "minimum warm-up runs")
	root.Flags().IntVar(&o.warmupMaxRuns, "warmup-max-runs", 0, "maximum warm-up runs")
	root.Flags().BoolVar(&o.noWarmup, "no-warmup", false, "disable warm-up entirely")

	root.Flags().StringVar(&o.roundTime, "round-time", "5", "maximum contiguous time one benchmark runs before yielding")
	root.Flags().IntVar(&o.roundRuns, "round-runs", 0, "yield after exactly this many runs per round")
	root.Flags().IntVar(&o.minRoundRuns, "min-round-runs", 0, "minimum runs per round before yielding")
	root.Flags().IntVar(&o.maxRoundRuns, "max-round-runs", 0, "maximum runs per round")
	root.Flags().BoolVar(&o.noRounds, "no-rounds", false, "run each benchmark to completion without yielding")

	root.Flags().StringVarP(&o.prepare, "prepare", "P", "", "shell command run before every benchmark sample")
	root.Flags().IntVar(&o.nrs, "nrs", 10000, "number of bootstrap resamples")
	root.Flags().StringVar(&o.commonArgs, "common-args", "", "string appended to every benchmark command")

	root.Flags().StringVarP(&o.shell, "shell", "S", "", "shell used to launch commands (default /bin/sh)")
	root.Flags().BoolVarP(&o.noShell, "no-shell", "N", false, "execute commands directly without a shell")

	root.Flags().StringVar(&o.output, "output", "null", "benchmark stdout/stderr policy: null or inherit")
	root.Flags().BoolVar(&o.noInput, "no-input", false, "feed /dev/null to benchmark stdin (default)")
	root.Flags().StringVar(&o.input, "input", "", "feed this file to benchmark stdin")
	root.Flags().StringVar(&o.inputs, "inputs", "", "feed this literal string to benchmark stdin")
	root.Flags().StringVar(&o.inputd, "inputd", "", "feed <dir>/<value> to stdin, one file per variable value")

	root.Flags().StringArrayVar(&o.customs, "custom", nil, "custom measurement <name>: parse the first number in stdout")
	root.Flags().StringArrayVar(&o.customTs, "custom-t", nil, "custom measurement \"<name> <cmd>\": extractor piped the run's stdout")
	root.Flags().StringArrayVar(&o.customXs, "custom-x", nil, "custom measurement \"<name> <units> <cmd>\"")

	root.Flags().StringVar(&o.scan, "scan", "", "benchmark variable i/n/m[/s]: numeric range with optional step")
	root.Flags().StringVar(&o.scanl, "scanl", "", "benchmark variable i/v,v,...: literal value list")

	root.Flags().IntVarP(&o.jobs, "jobs", "j", 1, "number of worker threads")
	root.Flags().IntVar(&o.baseline, "baseline", 0, "1-based index of the baseline benchmark")
	root.Flags().StringVar(&o.baselineName, "baseline-name", "", "display name of the baseline benchmark")
	root.Flags().StringVar(&o.colorMode, "color", "auto", "colorize output: auto, never, always")
	root.Flags().StringVar(&o.progressBar, "progress-bar", "auto", "draw a progress bar: auto, never, always")
	root.Flags().BoolVar(&o.ignoreFailure, "ignore-failure", false, "keep sampling when the benchmark exits non-zero")

	root.Flags().StringSliceVar(&o.meas, "meas", nil, "measurements: wall,stime,utime,maxrss,minflt,majflt,nvcsw,nivcsw,cycles,instructions,branches,branch-misses")
	root.Flags().BoolVar(&o.noDefaultMeas, "no-default-meas", false, "suppress wall-clock from the default measurement set")

	root.Flags().StringArrayVar(&o.renames, "rename", nil, "rename benchmark \"<n> <name>\" (1-based index)")
	root.Flags().StringArrayVar(&o.renamens, "renamen", nil, "rename benchmark \"<old> <new>\" by display name")
	root.Flags().StringVar(&o.renameAll, "rename-all", "", "comma-separated names for every benchmark in order")

	root.Flags().StringVarP(&o.outDir, "out-dir", "o", ".csbench", "directory for CSV/HTML artifacts")
	root.Flags().StringVar(&o.jsonPath, "json", "", "export raw results as JSON to this file")
	root.Flags().StringVar(&o.htmlPath, "html", "", "write an HTML report to this file")
	root.Flags().BoolVar(&o.writeCSV, "csv", false, "write the CSV artifact family into the output directory")

	root.AddCommand(newLoadCommand(&o))

	if err := root.Execute(); err != nil {
		fatal(resolveColor(o.colorMode), err)
	}
}

// newLoadCommand implements `csbench load <file.json>`: re-render reports
// from a prior --json export without re-running anything.
func newLoadCommand(o *opts) *cobra.Command {
	return &cobra.Command{
		Use:   "load <file.json>",
		Short: "Re-render reports from a previous --json export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runLoad(*o, args[0])
		},
	}
}

func run(o opts, commands []string) error {
	cfg, err := buildConfig(o)
	if err != nil {
		return err
	}

	benches, groups, err := cfg.BuildBenchmarks(commands)
	if err != nil {
		return err
	}
	baseline, err := cfg.ResolveBaseline(benches)
	if err != nil {
		return err
	}

	var pmc perfcnt.Collector
	if hasPMCMeasurement(cfg.Measurements) {
		pmc, err = perfcnt.InitPerf()
		if err != nil {
			return fmt.Errorf("performance counters requested but unavailable: %w", err)
		}
		defer func() { _ = pmc.Close() }()
		if cfg.UseShell {
			return fmt.Errorf("performance counters require --no-shell so the child can be gated before exec")
		}
	}

	tasks := make([]*runner.Task, len(benches))
	for i, b := range benches {
		c, err := sampler.NewCollector(sampler.Params{
			Shell:         cfg.Shell,
			UseShell:      b.UseShell,
			Command:       b.Command,
			Argv:          b.Argv,
			PrepareCmd:    b.PrepareCmd,
			Input:         b.Input,
			Output:        b.Output,
			IgnoreFailure: b.IgnoreFailure,
			PMC:           pmc,
		}, b)
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		t := runner.NewTask(b, c, cfg.WarmupPolicy, cfg.BenchPolicy)
		t.RoundPolicy = cfg.RoundPolicy
		tasks[i] = t
	}

	colorize := resolveColor(o.colorMode)
	showBar := progress.ResolveTriState(progress.TriState(o.progressBar), os.Stderr)

	var variable bench.Variable
	if cfg.Variable != nil {
		variable = *cfg.Variable
	}
	sess := &runner.Session{
		Tasks:       tasks,
		Groups:      groups,
		Variable:    variable,
		WorkerCount: cfg.Jobs,
		NResamples:  cfg.NResamples,
		Shell:       cfg.Shell,
		BaselineIdx: baseline,
		Progress:    os.Stderr,
		ShowBar:     showBar,
		Colorize:    colorize,
	}

	if err := sess.Run(); err != nil {
		return err
	}
	for _, b := range benches {
		if b.Failed {
			// Partial artifacts are not written on session failure.
			return b.FailedErr
		}
	}

	rep, err := sess.Analyze()
	if err != nil {
		return err
	}

	export.WriteSummary(os.Stdout, rep, colorize)

	settings := export.Settings{
		TimeLimit:  cfg.BenchPolicy.TimeLimit,
		Runs:       cfg.BenchPolicy.ExactRuns,
		MinRuns:    cfg.BenchPolicy.MinRuns,
		MaxRuns:    cfg.BenchPolicy.MaxRuns,
		WarmupTime: cfg.WarmupPolicy.TimeLimit,
		NResamp:    cfg.NResamples,
	}
	if cfg.JSONPath != "" {
		if err := export.WriteJSON(cfg.JSONPath, settings, benches); err != nil {
			return err
		}
	}
	if cfg.WriteCSV || cfg.HTMLPath != "" {
		if err := writeArtifacts(cfg, benches, rep); err != nil {
			return err
		}
	}
	return nil
}

func runLoad(o opts, path string) error {
	benches, settings, err := export.LoadJSON(path)
	if err != nil {
		return err
	}
	nrs := settings.NResamp
	if nrs <= 0 {
		nrs = 10000
	}

	tasks := make([]*runner.Task, len(benches))
	for i, b := range benches {
		if b.DisplayName == "" {
			b.DisplayName = b.Command
		}
		if b.RunCount == 0 {
			slog.Warn("loaded benchmark has no recorded runs", "command", b.Command)
		}
		tasks[i] = &runner.Task{Bench: b}
	}
	sess := &runner.Session{
		Tasks:       tasks,
		NResamples:  nrs,
		BaselineIdx: -1,
	}
	rep, err := sess.Analyze()
	if err != nil {
		return err
	}
	export.WriteSummary(os.Stdout, rep, resolveColor(o.colorMode))
	return nil
}

// buildConfig translates parsed flags into the immutable Config record.
func buildConfig(o opts) (config.Config, error) {
	cfg := config.Defaults()

	var err error
	if cfg.BenchPolicy.TimeLimit, err = units.ParseDuration(o.timeLimit); err != nil {
		return cfg, err
	}
	cfg.BenchPolicy.ExactRuns = o.runs
	cfg.BenchPolicy.MinRuns = o.minRuns
	cfg.BenchPolicy.MaxRuns = o.maxRuns

	if o.noWarmup {
		cfg.WarmupPolicy = stopper.Policy{TimeLimit: -1}
	} else {
		if cfg.WarmupPolicy.TimeLimit, err = units.ParseDuration(o.warmupTime); err != nil {
			return cfg, err
		}
		cfg.WarmupPolicy.ExactRuns = o.warmupRuns
		cfg.WarmupPolicy.MinRuns = o.warmupMinRuns
		cfg.WarmupPolicy.MaxRuns = o.warmupMaxRuns
	}

	if o.noRounds {
		cfg.RoundPolicy = stopper.NoRounds()
	} else {
		if cfg.RoundPolicy.TimeLimit, err = units.ParseDuration(o.roundTime); err != nil {
			return cfg, err
		}
		cfg.RoundPolicy.ExactRuns = o.roundRuns
		cfg.RoundPolicy.MinRuns = o.minRoundRuns
		cfg.RoundPolicy.MaxRuns = o.maxRoundRuns
	}

	cfg.NResamples = o.nrs
	cfg.PrepareCmd = o.prepare
	cfg.CommonArgs = o.commonArgs
	cfg.IgnoreFailure = o.ignoreFailure
	cfg.Jobs = o.jobs
	if cfg.Jobs < 1 {
		cfg.Jobs = 1
	}

	cfg.UseShell = !o.noShell
	cfg.Shell = o.shell

	switch o.output {
	case "null", "":
		cfg.Output = bench.OutputNull
	case "inherit":
		cfg.Output = bench.OutputInherit
	default:
		return cfg, fmt.Errorf("config: --output must be null or inherit, got %q", o.output)
	}

	switch {
	case o.input != "":
		cfg.Input = bench.InputPolicy{Kind: bench.InputFile, FilePathOrDir: o.input}
	case o.inputs != "":
		cfg.Input = bench.InputPolicy{Kind: bench.InputInline, Inline: o.inputs}
	case o.inputd != "":
		name := variableName(o)
		if name == "" {
			return cfg, fmt.Errorf("config: --inputd needs a benchmark variable (--scan/--scanl) to pick files by value")
		}
		cfg.Input = bench.InputPolicy{Kind: bench.InputFile, FilePathOrDir: filepath.Join(o.inputd, "{"+name+"}")}
	default:
		cfg.Input = bench.InputPolicy{Kind: bench.InputNull}
	}

	if o.meas != nil {
		cfg.Measurements, err = config.ParseMeasList(o.meas)
		if err != nil {
			return cfg, err
		}
	} else if !o.noDefaultMeas {
		cfg.Measurements = config.DefaultMeasurements()
	}

	for _, name := range o.customs {
		cfg.Measurements = append(cfg.Measurements, config.CustomDescriptor(config.CustomSpec{Name: name}))
	}
	for _, arg := range o.customTs {
		name, cmd, ok := strings.Cut(arg, " ")
		if !ok {
			return cfg, fmt.Errorf("config: --custom-t wants \"<name> <cmd>\", got %q", arg)
		}
		cfg.Measurements = append(cfg.Measurements, config.CustomDescriptor(config.CustomSpec{Name: name, Cmd: cmd}))
	}
	for _, arg := range o.customXs {
		fields := strings.SplitN(arg, " ", 3)
		if len(fields) != 3 {
			return cfg, fmt.Errorf("config: --custom-x wants \"<name> <units> <cmd>\", got %q", arg)
		}
		cfg.Measurements = append(cfg.Measurements, config.CustomDescriptor(config.CustomSpec{Name: fields[0], Units: fields[1], Cmd: fields[2]}))
	}

	if o.scan != "" {
		v, err := config.ParseScan(o.scan)
		if err != nil {
			return cfg, err
		}
		if err := cfg.SetVariable(v); err != nil {
			return cfg, err
		}
	}
	if o.scanl != "" {
		v, err := config.ParseScanList(o.scanl)
		if err != nil {
			return cfg, err
		}
		if err := cfg.SetVariable(v); err != nil {
			return cfg, err
		}
	}

	if o.baseline > 0 {
		cfg.BaselineIdx = o.baseline - 1
	}
	cfg.BaselineName = o.baselineName

	cfg.RenameByIdx = map[int]string{}
	for _, arg := range o.renames {
		idxStr, name, ok := strings.Cut(arg, " ")
		if !ok {
			return cfg, fmt.Errorf("config: --rename wants \"<n> <name>\", got %q", arg)
		}
		var idx int
		if _, err := fmt.Sscanf(idxStr, "%d", &idx); err != nil {
			return cfg, fmt.Errorf("config: --rename index %q: %w", idxStr, err)
		}
		cfg.RenameByIdx[idx] = name
	}
	cfg.RenameByName = map[string]string{}
	for _, arg := range o.renamens {
		old, repl, ok := strings.Cut(arg, " ")
		if !ok {
			return cfg, fmt.Errorf("config: --renamen wants \"<old> <new>\", got %q", arg)
		}
		cfg.RenameByName[old] = repl
	}
	if o.renameAll != "" {
		cfg.RenameAll = strings.Split(o.renameAll, ",")
	}

	cfg.Color = progress.TriState(o.colorMode)
	cfg.ProgressBar = progress.TriState(o.progressBar)
	cfg.OutDir = o.outDir
	cfg.JSONPath = o.jsonPath
	cfg.HTMLPath = o.htmlPath
	cfg.WriteCSV = o.writeCSV

	return cfg, nil
}

func variableName(o opts) string {
	if o.scan != "" {
		if name, _, ok := strings.Cut(o.scan, "/"); ok {
			return name
		}
	}
	if o.scanl != "" {
		if name, _, ok := strings.Cut(o.scanl, "/"); ok {
			return name
		}
	}
	return ""
}

func hasPMCMeasurement(ms []bench.MeasurementDescriptor) bool {
	for _, m := range ms {
		if m.Kind.IsPMC() {
			return true
		}
	}
	return false
}

// writeArtifacts recreates the output directory and writes the CSV family
// plus the optional HTML report into it.
func writeArtifacts(cfg config.Config, benches []*bench.Benchmark, rep *report.Report) error {
	if err := os.RemoveAll(cfg.OutDir); err != nil {
		return fmt.Errorf("cleaning output directory %s: %w", cfg.OutDir, err)
	}
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", cfg.OutDir, err)
	}

	if cfg.WriteCSV {
		for i, b := range benches {
			if err := export.WriteBenchRawCSV(cfg.OutDir, i, b); err != nil {
				return err
			}
		}
		for mi, measName := range rep.MeasurementNames {
			if err := export.WriteBenchesRawCSV(filepath.Join(cfg.OutDir, fmt.Sprintf("benches_raw_%d.csv", mi)), measName, benches); err != nil {
				return err
			}
			if err := export.WriteBenchesStatsCSV(filepath.Join(cfg.OutDir, fmt.Sprintf("benches_stats_%d.csv", mi)), measName, benches, rep); err != nil {
				return err
			}
		}
		for gi, g := range rep.Groups {
			mi := measurementIndexByName(rep.MeasurementNames, g.MeasurementName)
			var values []string
			if cfg.Variable != nil {
				values = cfg.Variable.Values
			}
			if err := export.WriteGroupRawCSV(filepath.Join(cfg.OutDir, fmt.Sprintf("group_raw_%d_%d.csv", gi, mi)), g.MeasurementName, g.VariableName, values, benches, g.BenchIndices); err != nil {
				return err
			}
		}
		if cfg.Variable != nil && len(rep.Groups) > 0 {
			for mi, measName := range rep.MeasurementNames {
				if err := export.WriteGroupsCSV(filepath.Join(cfg.OutDir, fmt.Sprintf("groups_%d.csv", mi)), measName, cfg.Variable.Values, rep.Groups, benches); err != nil {
					return err
				}
			}
		}
	}

	if cfg.HTMLPath != "" {
		if err := export.WriteHTML(cfg.HTMLPath, rep, benches); err != nil {
			return err
		}
	}
	return nil
}

func measurementIndexByName(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return 0
}

func resolveColor(mode string) bool {
	return progress.ResolveTriState(progress.TriState(mode), os.Stderr)
}

// fatal prints the colorized `error:` prefix plus the message to stderr and
// exits non-zero.
func fatal(colorize bool, err error) {
	if colorize {
		fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("error:"), err)
	} else {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
	}
	os.Exit(1)
}
