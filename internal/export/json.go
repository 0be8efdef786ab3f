// Package export implements csbench's four report writers: JSON,
// the CSV family, an HTML page, and the console text summary. Each writer
// consumes a report.Report, the bench.Benchmark list it was built from, or
// both, and owns nothing else — no analysis happens here.
//
// The JSON schema is load-bearing: `csbench load out.json` must round-trip
// it exactly, so jsonDocument keeps its own flat field names and nesting
// rather than reusing report.Report's richer internal shape.
package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ja7ad/csbench/internal/bench"
)

// jsonDocument is the exported JSON schema: `{ "settings": {...},
// "benches": [...] }`.
type jsonDocument struct {
	Settings jsonSettings    `json:"settings"`
	Benches  []jsonBenchmark `json:"benches"`
}

type jsonSettings struct {
	TimeLimit  float64 `json:"time_limit"`
	Runs       int     `json:"runs"`
	MinRuns    int     `json:"min_runs"`
	MaxRuns    int     `json:"max_runs"`
	WarmupTime float64 `json:"warmup_time"`
	NResamp    int     `json:"nresamp"`
}

type jsonBenchmark struct {
	Prepare   string          `json:"prepare"`
	Command   string          `json:"command"`
	RunCount  int             `json:"run_count"`
	ExitCodes []int           `json:"exit_codes"`
	Meas      []jsonMeasurement `json:"meas"`
}

type jsonMeasurement struct {
	Name  string    `json:"name"`
	Units string    `json:"units"`
	Cmd   string    `json:"cmd,omitempty"`
	Val   []float64 `json:"val"`
}

// Settings carries the CLI-level knobs the JSON schema's "settings" block
// reports; cmd/csbench builds one of these from the session's
// config.Config.
type Settings struct {
	TimeLimit  float64
	Runs       int
	MinRuns    int
	MaxRuns    int
	WarmupTime float64
	NResamp    int
}

// WriteJSON writes the JSON export: one document across every benchmark,
// written atomically (temp file + rename) so a crash mid-write never
// leaves a partial artifact behind.
func WriteJSON(path string, settings Settings, benches []*bench.Benchmark) error {
	doc := jsonDocument{
		Settings: jsonSettings{
			TimeLimit:  settings.TimeLimit,
			Runs:       settings.Runs,
			MinRuns:    settings.MinRuns,
			MaxRuns:    settings.MaxRuns,
			WarmupTime: settings.WarmupTime,
			NResamp:    settings.NResamp,
		},
	}
	for _, b := range benches {
		jb := jsonBenchmark{
			Prepare:   b.PrepareCmd,
			Command:   b.Command,
			RunCount:  b.RunCount,
			ExitCodes: b.ExitCodes,
		}
		for i, m := range b.Measurements {
			var vals []float64
			if i < len(b.Meas) {
				vals = b.Meas[i]
			}
			jb.Meas = append(jb.Meas, jsonMeasurement{
				Name:  string(m.Kind),
				Units: m.Units,
				Cmd:   m.ExtractorCmd,
				Val:   vals,
			})
		}
		doc.Benches = append(doc.Benches, jb)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	return writeAtomic(path, data)
}

// LoadJSON implements the `load` subcommand's read side: parse a
// previously-exported document back into benchmarks whose sample matrices
// are fully populated, ready for re-analysis and re-export without rerunning
// anything.
func LoadJSON(path string) ([]*bench.Benchmark, Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Settings{}, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, Settings{}, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	settings := Settings{
		TimeLimit:  doc.Settings.TimeLimit,
		Runs:       doc.Settings.Runs,
		MinRuns:    doc.Settings.MinRuns,
		MaxRuns:    doc.Settings.MaxRuns,
		WarmupTime: doc.Settings.WarmupTime,
		NResamp:    doc.Settings.NResamp,
	}

	benches := make([]*bench.Benchmark, 0, len(doc.Benches))
	for _, jb := range doc.Benches {
		b := &bench.Benchmark{
			PrepareCmd: jb.Prepare,
			Command:    jb.Command,
			RunCount:   jb.RunCount,
			ExitCodes:  jb.ExitCodes,
		}
		for _, jm := range jb.Meas {
			b.Measurements = append(b.Measurements, bench.MeasurementDescriptor{
				Kind:         bench.MeasurementKind(jm.Name),
				Name:         jm.Name,
				Units:        jm.Units,
				ExtractorCmd: jm.Cmd,
			})
			b.Meas = append(b.Meas, jm.Val)
		}
		if err := b.CheckInvariants(); err != nil {
			return nil, Settings{}, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
		}
		benches = append(benches, b)
	}

	return benches, settings, nil
}

// writeAtomic writes data to a sibling temp file and renames it over path,
// so a writer crash or early exit never leaves a half-written artifact.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	return nil
}
