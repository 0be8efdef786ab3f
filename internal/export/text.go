package export

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/ja7ad/csbench/internal/report"
	"github.com/ja7ad/csbench/internal/units"
)

// WriteSummary writes the console textual report: one tabwriter-aligned
// table per measurement, with the baseline row marked and failed
// benchmarks carrying their error inline.
func WriteSummary(w io.Writer, rep *report.Report, colorize bool) {
	for _, measName := range rep.MeasurementNames {
		fmt.Fprintf(w, "\n%s\n", measName)

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "benchmark\tmean\t±\tmedian\tspeedup\tp")
		for _, br := range rep.Benchmarks {
			name := br.Name
			if br.Failed {
				if colorize {
					fmt.Fprintf(tw, "%s\t%s\n", name, color.RedString("error: %s", br.Error))
				} else {
					fmt.Fprintf(tw, "%s\terror: %s\n", name, br.Error)
				}
				continue
			}
			mr, ok := br.Measurements[measName]
			if !ok {
				continue
			}

			speedupCol := "baseline"
			if !mr.IsBaseline {
				speedupCol = fmt.Sprintf("%.3fx", mr.Speedup.Point)
				if mr.Speedup.IsSlower && colorize {
					speedupCol = color.YellowString(speedupCol)
				} else if colorize {
					speedupCol = color.GreenString(speedupCol)
				}
			}

			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.4f\n",
				name,
				formatValue(mr.Distr.Mean.Point, mr.Units),
				formatValue(mr.Distr.StdDev.Point, mr.Units),
				formatValue(mr.Distr.Percentiles.Median, mr.Units),
				speedupCol,
				mr.PValue,
			)
		}
		tw.Flush()
	}
}

// formatValue renders one statistic in its measurement's unit: byte units
// are humanized, everything else prints as a plain number.
func formatValue(v float64, unit string) string {
	switch units.Unit(unit) {
	case units.UnitBytes:
		return units.Size(v).Humanized()
	case units.UnitKilobytes:
		return units.Size(v * 1024).Humanized()
	case units.UnitMegabytes:
		return units.Size(v * 1024 * 1024).Humanized()
	case units.UnitGigabytes:
		return units.Size(v * 1024 * 1024 * 1024).Humanized()
	default:
		return fmt.Sprintf("%.6g", v)
	}
}
