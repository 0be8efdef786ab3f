// Package progress implements the progress-bar reporter: a single
// dedicated goroutine polling atomic per-benchmark state, drawing a
// terminal frame, and substituting captured error text via per-worker
// "output anchors" so interleaved stderr writes never corrupt the frame.
package progress

import (
	"fmt"
	"io"
	"math"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
)

// Mode selects exact-runs vs time-limited display, per benchmark.
type Mode int

const (
	ModeRuns Mode = iota
	ModeTime
)

// Record is one benchmark's progress state, updated by whichever worker
// currently owns it (atomic stores only) and read by the bar goroutine
// (atomic loads only); no lock is ever taken on the draw path.
type Record struct {
	Name string
	Mode Mode
	// Total is either the run target (ModeRuns) or the time limit in
	// seconds (ModeTime).
	Total float64

	barPercent atomic.Uint64 // float64 bits; no atomic double on most targets
	metric     atomic.Uint64 // float64 bits: runs done (ModeRuns) or elapsed seconds (ModeTime)
	finished   atomic.Bool
	aborted    atomic.Bool

	lastMetric   atomic.Uint64 // float64 bits, for ETA smoothing
	lastEta      atomic.Uint64 // float64 bits
	lastPollTime atomic.Uint64 // float64 bits (unix seconds)

	Anchor *Anchor
}

func storeF64(a *atomic.Uint64, v float64) { a.Store(math.Float64bits(v)) }
func loadF64(a *atomic.Uint64) float64     { return math.Float64frombits(a.Load()) }

// Update publishes new progress from the current owner worker.
func (r *Record) Update(percent, metric float64) {
	storeF64(&r.barPercent, percent)
	storeF64(&r.metric, metric)
}

// Finish marks this benchmark complete. The atomic store happens-before
// any later read of Finished under Go's memory model, so a reader that
// observes the flag also observes every earlier Update.
func (r *Record) Finish() { r.finished.Store(true) }

// Abort marks this benchmark as having failed.
func (r *Record) Abort() { r.aborted.Store(true) }

func (r *Record) Finished() bool { return r.finished.Load() }
func (r *Record) Aborted() bool  { return r.aborted.Load() }

// eta computes (total-runs)*elapsed/runs,
// with smoothing when the runs count hasn't changed since the last poll:
// show last_eta - (now - last_update).
func (r *Record) eta(now time.Time) float64 {
	metric := loadF64(&r.metric)
	last := loadF64(&r.lastMetric)
	if metric == last {
		lastEta := loadF64(&r.lastEta)
		lastPoll := loadF64(&r.lastPollTime)
		remaining := lastEta - (float64(now.Unix()) - lastPoll)
		if remaining < 0 {
			remaining = 0
		}
		return remaining
	}

	var eta float64
	if metric > 0 {
		eta = (r.Total - metric) * (float64(now.Unix()) - loadF64(&r.lastPollTime)) / metric
	}
	storeF64(&r.lastMetric, metric)
	storeF64(&r.lastEta, eta)
	storeF64(&r.lastPollTime, float64(now.Unix()))
	return eta
}

// Reporter draws Records to an io.Writer once per poll interval until
// Stop is called.
type Reporter struct {
	w        io.Writer
	records  []*Record
	interval time.Duration
	colorize bool

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewReporter constructs a reporter that polls every ~100ms.
func NewReporter(w io.Writer, records []*Record, colorize bool) *Reporter {
	return &Reporter{
		w:        w,
		records:  records,
		interval: 100 * time.Millisecond,
		colorize: colorize,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Run is the reporter's single dedicated goroutine loop; call as `go
// r.Run()`.
func (r *Reporter) Run() {
	defer close(r.doneCh)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stopCh:
			r.draw()
			return
		case <-ticker.C:
			r.draw()
		}
	}
}

// Stop signals the reporter to draw one final frame and exit, then blocks
// until it has.
func (r *Reporter) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

const barWidth = 40

func (r *Reporter) draw() {
	names := abbreviateNames(r.records)
	now := time.Now()
	for i, rec := range r.records {
		line := r.renderRow(names[i], rec, now)
		fmt.Fprintln(r.w, line)
	}
}

func (r *Reporter) renderRow(name string, rec *Record, now time.Time) string {
	if rec.Aborted() && rec.Anchor != nil && rec.Anchor.HasMessage() {
		msg := rec.Anchor.Message()
		if r.colorize {
			return fmt.Sprintf("%-12s %s", name, color.RedString("error: %s", msg))
		}
		return fmt.Sprintf("%-12s error: %s", name, msg)
	}

	percent := loadF64(&rec.barPercent)
	bar := renderBar(percent)
	metric := loadF64(&rec.metric)

	switch rec.Mode {
	case ModeRuns:
		eta := rec.eta(now)
		return fmt.Sprintf("%-12s %s %.0f/%.0f eta %.1fs", name, bar, metric, rec.Total, eta)
	default:
		return fmt.Sprintf("%-12s %s %.1fs/%.1fs", name, bar, metric, rec.Total)
	}
}

func renderBar(percent float64) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 1 {
		percent = 1
	}
	filled := int(percent * float64(barWidth))
	buf := make([]byte, barWidth+2)
	buf[0] = '['
	buf[barWidth+1] = ']'
	for i := 0; i < barWidth; i++ {
		if i < filled {
			buf[i+1] = '='
		} else {
			buf[i+1] = ' '
		}
	}
	return string(buf)
}

// abbreviateNames abbreviates to A, B, ... when the
// longest name exceeds 40 chars.
func abbreviateNames(records []*Record) []string {
	longest := 0
	for _, r := range records {
		if len(r.Name) > longest {
			longest = len(r.Name)
		}
	}
	out := make([]string, len(records))
	if longest <= 40 {
		for i, r := range records {
			out[i] = r.Name
		}
		return out
	}
	for i := range records {
		out[i] = string(rune('A' + i%26))
	}
	return out
}
