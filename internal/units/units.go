// Package units parses and formats the duration and size units that csbench
// accepts on the command line and reports in JSON/CSV output.
package units

import (
	"fmt"
	"strconv"
	"strings"
)

// Size is a byte count with the unit vocabulary csbench needs for
// measurement descriptors.
type Size float64

// Unit is a measurement unit tag. Most are fixed SI/duration units; Custom
// carries a freeform label supplied by the user for a custom measurement.
type Unit string

const (
	UnitSeconds      Unit = "s"
	UnitMilliseconds Unit = "ms"
	UnitMicroseconds Unit = "us"
	UnitNanoseconds  Unit = "ns"
	UnitBytes        Unit = "B"
	UnitKilobytes    Unit = "KB"
	UnitMegabytes    Unit = "MB"
	UnitGigabytes    Unit = "GB"
	UnitNone         Unit = "none"
)

// ParseUnit maps a CLI unit token (s|ms|us|ns|b|kb|mb|gb|none|<any-other-string>)
// to a Unit. Any unrecognized token becomes a freeform custom label, never an error.
func ParseUnit(tok string) Unit {
	switch strings.ToLower(tok) {
	case "s":
		return UnitSeconds
	case "ms":
		return UnitMilliseconds
	case "us":
		return UnitMicroseconds
	case "ns":
		return UnitNanoseconds
	case "b":
		return UnitBytes
	case "kb":
		return UnitKilobytes
	case "mb":
		return UnitMegabytes
	case "gb":
		return UnitGigabytes
	case "none", "":
		return UnitNone
	default:
		return Unit(tok)
	}
}

// ParseDuration parses a CLI duration: a bare number means
// seconds, otherwise one of s/ms/us/ns is a required suffix. Negative values
// are rejected except by callers that intentionally pass the "-1 disables
// this policy" sentinel around this parser (see internal/stopper).
func ParseDuration(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("units: empty duration")
	}

	for _, suf := range []struct {
		tok   string
		scale float64
	}{
		{"ms", 1e-3},
		{"us", 1e-6},
		{"ns", 1e-9},
		{"s", 1},
	} {
		if strings.HasSuffix(s, suf.tok) {
			numPart := strings.TrimSuffix(s, suf.tok)
			v, err := strconv.ParseFloat(numPart, 64)
			if err != nil {
				return 0, fmt.Errorf("units: bad duration %q: %w", s, err)
			}
			if v < 0 {
				return 0, fmt.Errorf("units: negative duration %q", s)
			}
			return v * suf.scale, nil
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("units: bad duration %q: %w", s, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("units: negative duration %q", s)
	}
	return v, nil
}

// Humanized renders a Size with a binary-prefix unit.
func (s Size) Humanized() string {
	const unit = 1024.0
	v := float64(s)
	switch {
	case v >= unit*unit*unit*unit:
		return fmt.Sprintf("%.2f TB", v/(unit*unit*unit*unit))
	case v >= unit*unit*unit:
		return fmt.Sprintf("%.2f GB", v/(unit*unit*unit))
	case v >= unit*unit:
		return fmt.Sprintf("%.2f MB", v/(unit*unit))
	case v >= unit:
		return fmt.Sprintf("%.2f KB", v/unit)
	default:
		return fmt.Sprintf("%.0f B", v)
	}
}

// KB, MB, GB are convenience accessors for values csbench reports for
// maxrss-style measurements.
func (s Size) KB() float64 { return float64(s) / 1024 }
func (s Size) MB() float64 { return float64(s) / (1024 * 1024) }
func (s Size) GB() float64 { return float64(s) / (1024 * 1024 * 1024) }
