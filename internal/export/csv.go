package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/ja7ad/csbench/internal/bench"
	"github.com/ja7ad/csbench/internal/report"
)

func fmtFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

// WriteBenchRawCSV implements `bench_raw_N.csv`: one file per
// benchmark N, header of measurement names, one row per run.
func WriteBenchRawCSV(dir string, idx int, b *bench.Benchmark) error {
	path := fmt.Sprintf("%s/bench_raw_%d.csv", dir, idx)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	header := make([]string, len(b.Measurements))
	for i, m := range b.Measurements {
		header[i] = string(m.Kind)
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	for run := 0; run < b.RunCount; run++ {
		row := make([]string, len(b.Measurements))
		for mi := range b.Measurements {
			if mi < len(b.Meas) && run < len(b.Meas[mi]) {
				row[mi] = fmtFloat(b.Meas[mi][run])
			}
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("%w: %v", ErrEncodeFailed, err)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteBenchesRawCSV implements `benches_raw_M.csv`: one row per
// benchmark for measurement M, `name, v1, v2, ...`.
func WriteBenchesRawCSV(path string, measName string, benches []*bench.Benchmark) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	for _, b := range benches {
		mi := measurementIndex(b, measName)
		row := []string{b.DisplayName}
		if mi >= 0 && mi < len(b.Meas) {
			for _, v := range b.Meas[mi] {
				row = append(row, fmtFloat(v))
			}
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("%w: %v", ErrEncodeFailed, err)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteBenchesStatsCSV implements `benches_stats_M.csv` header:
// cmd,mean_low,mean,mean_high,st_dev_low,st_dev,st_dev_high,min,max,median,
// q1,q3,p1,p5,p95,p99,outl.
func WriteBenchesStatsCSV(path string, measName string, benches []*bench.Benchmark, rep *report.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	header := []string{"cmd", "mean_low", "mean", "mean_high", "st_dev_low", "st_dev", "st_dev_high",
		"min", "max", "median", "q1", "q3", "p1", "p5", "p95", "p99", "outl"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}

	for i, b := range benches {
		if i >= len(rep.Benchmarks) {
			continue
		}
		br := rep.Benchmarks[i]
		mr, ok := br.Measurements[measName]
		if !ok {
			continue
		}
		p := mr.Distr.Percentiles
		row := []string{
			b.Command,
			fmtFloat(mr.Distr.Mean.Lower), fmtFloat(mr.Distr.Mean.Point), fmtFloat(mr.Distr.Mean.Upper),
			fmtFloat(mr.Distr.StdDev.Lower), fmtFloat(mr.Distr.StdDev.Point), fmtFloat(mr.Distr.StdDev.Upper),
			fmtFloat(p.Min), fmtFloat(p.Max), fmtFloat(p.Median),
			fmtFloat(p.Q1), fmtFloat(p.Q3), fmtFloat(p.P1), fmtFloat(p.P5), fmtFloat(p.P95), fmtFloat(p.P99),
			strconv.Itoa(mr.Distr.Outliers.Total()),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("%w: %v", ErrEncodeFailed, err)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteGroupRawCSV implements `group_raw_G_M.csv`: one row per
// variable value, `name=value, v1, v2, ...`.
func WriteGroupRawCSV(path string, measName, varName string, values []string, benches []*bench.Benchmark, idxs []int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	for i, idx := range idxs {
		if idx >= len(benches) || i >= len(values) {
			continue
		}
		b := benches[idx]
		mi := measurementIndex(b, measName)
		row := []string{fmt.Sprintf("%s=%s", varName, values[i])}
		if mi >= 0 && mi < len(b.Meas) {
			for _, v := range b.Meas[mi] {
				row = append(row, fmtFloat(v))
			}
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("%w: %v", ErrEncodeFailed, err)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteGroupsCSV implements `groups_M.csv`: a pivot of per-value
// means across groups for measurement M — one column per group, one row per
// variable value.
func WriteGroupsCSV(path string, measName string, values []string, groups []report.GroupReport, benches []*bench.Benchmark) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	header := []string{"value"}
	for _, g := range groups {
		header = append(header, g.Name)
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}

	for i, val := range values {
		row := []string{val}
		for _, g := range groups {
			if i >= len(g.BenchIndices) {
				row = append(row, "")
				continue
			}
			idx := g.BenchIndices[i]
			if idx >= len(benches) {
				row = append(row, "")
				continue
			}
			mi := measurementIndex(benches[idx], measName)
			if mi < 0 || mi >= len(benches[idx].Meas) {
				row = append(row, "")
				continue
			}
			mean := 0.0
			samples := benches[idx].Meas[mi]
			for _, v := range samples {
				mean += v
			}
			if len(samples) > 0 {
				mean /= float64(len(samples))
			}
			row = append(row, fmtFloat(mean))
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("%w: %v", ErrEncodeFailed, err)
		}
	}
	w.Flush()
	return w.Error()
}

func measurementIndex(b *bench.Benchmark, name string) int {
	for i, m := range b.Measurements {
		if string(m.Kind) == name {
			return i
		}
	}
	return -1
}
