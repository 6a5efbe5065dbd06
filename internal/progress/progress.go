// Package progress renders the per-file and overall progress lines C11
// describes, grounded on the teacher's general "format a running total as
// a single overwritten line" idiom (the same style its stats summary uses
// for final totals) since no live progress-bar code survived retrieval.
package progress

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// HumanReadable mirrors clientconfig.HumanReadable without importing that
// package, keeping progress independent of the config layer's internals.
type HumanReadable int

const (
	HumanReadableDisabled HumanReadable = iota
	HumanReadableEnabled
	HumanReadableCombined
)

// Mode selects which line style is rendered.
type Mode int

const (
	ModeNone Mode = iota
	ModePerFile
	ModeOverall
)

// Observer renders progress updates to w as transfers proceed.
type Observer struct {
	w             io.Writer
	mode          Mode
	human         HumanReadable
	start         time.Time
	wroteAnyLine  bool
	xferNum       int
}

// New constructs an Observer. now is injected by the caller (the
// orchestrator stamps it once per invocation) since this package must not
// call time.Now() itself to stay deterministic under test.
func New(w io.Writer, mode Mode, human HumanReadable, now time.Time) *Observer {
	return &Observer{w: w, mode: mode, human: human, start: now}
}

// PerFileUpdate renders one per-file progress line. total<0 means unknown
// (renders the "??%" placeholder). now is the current instant; complete
// marks the final update for this file, appending the "(xfr#N,
// to-chk=A/B)" suffix.
func (o *Observer) PerFileUpdate(transferred, total int64, now time.Time, complete bool, toCheckRemaining, toCheckTotal int) {
	if o.mode != ModePerFile {
		return
	}
	elapsed := now.Sub(o.start)
	pct := percentString(transferred, total)
	rate := rateString(transferred, elapsed, o.human)
	line := fmt.Sprintf("%15s %3s %s", formatCount(transferred, o.human), pct, rate)
	line += fmt.Sprintf(" %s", elapsedString(elapsed))
	if complete {
		o.xferNum++
		line += fmt.Sprintf(" (xfr#%d, to-chk=%d/%d)", o.xferNum, toCheckRemaining, toCheckTotal)
	}
	o.writeLine(line, complete)
}

// OverallUpdate renders the single running cumulative line for
// info=progress2 mode.
func (o *Observer) OverallUpdate(transferred, total int64, now time.Time) {
	if o.mode != ModeOverall {
		return
	}
	elapsed := now.Sub(o.start)
	pct := percentString(transferred, total)
	rate := rateString(transferred, elapsed, o.human)
	line := fmt.Sprintf("%15s %3s %s %s", formatCount(transferred, o.human), pct, rate, elapsedString(elapsed))
	o.writeLine(line, false)
}

func (o *Observer) writeLine(line string, final bool) {
	if o.wroteAnyLine {
		fmt.Fprint(o.w, "\r")
	}
	fmt.Fprint(o.w, line)
	o.wroteAnyLine = true
	if final {
		fmt.Fprint(o.w, "\n")
	}
}

// Finish writes any pending line plus a terminating newline, per §4.10's
// finalization contract.
func (o *Observer) Finish() {
	if o.mode == ModeNone || !o.wroteAnyLine {
		return
	}
	fmt.Fprint(o.w, "\n")
}

func percentString(transferred, total int64) string {
	if total < 0 {
		return "??%"
	}
	if total == 0 {
		return "100%"
	}
	pct := float64(transferred) / float64(total) * 100
	if pct > 100 {
		pct = 100
	}
	return fmt.Sprintf("%d%%", int(pct))
}

func rateString(transferred int64, elapsed time.Duration, human HumanReadable) string {
	secs := elapsed.Seconds()
	var bps float64
	if secs > 0 {
		bps = float64(transferred) / secs
	}
	unit := "kB/s"
	val := bps / 1000
	if human != HumanReadableDisabled {
		unit = "B/s"
		val = bps
	}
	if bps == 0 {
		return fmt.Sprintf("0.00%s", unit)
	}
	return fmt.Sprintf("%.2f%s", val, unit)
}

func elapsedString(d time.Duration) string {
	total := int(d.Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

// formatCount renders a byte count per the human-readable mode: thousands
// separators when disabled, SI-like "1.54K" when enabled, and
// "1.54K (1,536)" when combined.
func formatCount(n int64, human HumanReadable) string {
	switch human {
	case HumanReadableEnabled:
		return siScale(n)
	case HumanReadableCombined:
		return fmt.Sprintf("%s (%s)", siScale(n), withThousands(n))
	default:
		return withThousands(n)
	}
}

func withThousands(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	out := b.String()
	if neg {
		out = "-" + out
	}
	return out
}

func siScale(n int64) string {
	const unit = 1000.0
	f := float64(n)
	suffixes := []string{"", "K", "M", "G", "T"}
	i := 0
	for f >= unit && i < len(suffixes)-1 {
		f /= unit
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%.2f%s", f, suffixes[i])
}
