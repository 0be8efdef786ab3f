package export

import (
	"bytes"
	"fmt"
	"html/template"
	"os"

	"github.com/ja7ad/csbench/internal/bench"
	"github.com/ja7ad/csbench/internal/report"
)

// htmlRow is one benchmark's rendered row for one measurement.
type htmlRow struct {
	Name       string
	Command    string
	Mean       float64
	MeanLow    float64
	MeanHigh   float64
	StdDev     float64
	Median     float64
	Outliers   int
	Speedup    float64
	PValue     float64
	IsBaseline bool
}

type htmlView struct {
	MeasurementName string
	Rows            []htmlRow
}

// WriteHTML writes the HTML report: one table per measurement.
func WriteHTML(path string, rep *report.Report, benches []*bench.Benchmark) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	defer func() { _ = f.Close() }()

	var views []htmlView
	for _, measName := range rep.MeasurementNames {
		view := htmlView{MeasurementName: measName}
		for i, br := range rep.Benchmarks {
			mr, ok := br.Measurements[measName]
			if !ok {
				continue
			}
			cmd := br.Command
			_ = i
			view.Rows = append(view.Rows, htmlRow{
				Name:       br.Name,
				Command:    cmd,
				Mean:       mr.Distr.Mean.Point,
				MeanLow:    mr.Distr.Mean.Lower,
				MeanHigh:   mr.Distr.Mean.Upper,
				StdDev:     mr.Distr.StdDev.Point,
				Median:     mr.Distr.Percentiles.Median,
				Outliers:   mr.Distr.Outliers.Total(),
				Speedup:    mr.Speedup.Point,
				PValue:     mr.PValue,
				IsBaseline: mr.IsBaseline,
			})
		}
		views = append(views, view)
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, views); err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	return nil
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!doctype html>
<html lang="en"><meta charset="utf-8">
<title>csbench Report</title>
<style>
body{font-family:system-ui,Segoe UI,Roboto,Helvetica,Arial,sans-serif;margin:20px}
h2{margin:24px 0 8px}
table{border-collapse:collapse;width:100%;font-size:14px;margin-bottom:16px}
th,td{border:1px solid #ddd;padding:6px 8px;text-align:right}
th:first-child,td:first-child,th:nth-child(2),td:nth-child(2){text-align:left}
tr.baseline{background:#eef}
</style>
<h1>csbench report</h1>
{{range .}}
<h2>{{.MeasurementName}}</h2>
<table>
<tr><th>name</th><th>command</th><th>mean</th><th>mean_low</th><th>mean_high</th><th>st_dev</th><th>median</th><th>outliers</th><th>speedup</th><th>p</th></tr>
{{range .Rows}}
<tr{{if .IsBaseline}} class="baseline"{{end}}>
<td>{{.Name}}</td><td><code>{{.Command}}</code></td>
<td>{{printf "%.6g" .Mean}}</td><td>{{printf "%.6g" .MeanLow}}</td><td>{{printf "%.6g" .MeanHigh}}</td>
<td>{{printf "%.6g" .StdDev}}</td><td>{{printf "%.6g" .Median}}</td><td>{{.Outliers}}</td>
<td>{{printf "%.3f" .Speedup}}x</td><td>{{printf "%.4f" .PValue}}</td>
</tr>
{{end}}
</table>
{{end}}
`))
