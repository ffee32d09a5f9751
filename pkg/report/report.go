// Package report formats tuner frames as fixed-width text, one line per
// target.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/metalblueberry/receptor/pkg/bar"
	"github.com/metalblueberry/receptor/pkg/lifecycle"
	"github.com/metalblueberry/receptor/pkg/pitch"
	"github.com/metalblueberry/receptor/pkg/tuner"
)

const Header = "name note          receptor       free energy     entropy         energy          phase               cycle"

const noteWidth = 12

var blankNote = strings.Repeat(" ", noteWidth)

// Note names the closest note to the snapshot's instant frequency, or
// returns a blank field when there is none.
func Note(s lifecycle.Snapshot, reference float64) string {
	if !(s.InstantFrequency > 0) {
		return blankNote
	}
	n, ok := pitch.FromFrequency(s.InstantFrequency, reference)
	if !ok {
		return blankNote
	}
	return fmt.Sprintf("%-*s", noteWidth, n.String())
}

// Line renders one target.
func Line(name string, s lifecycle.Snapshot, reference float64) string {
	scale := s.MaxR
	if !(scale > 0) {
		scale = 1
	}

	// receptor strength: how fast the magnitude is falling, zero while it grows
	pc := -s.Energy - s.Entropy
	if s.Energy > 0 {
		pc = 0
	}
	phase := s.Phi
	if phase < 0 {
		phase++
	}

	half := bar.DefaultWidth / 2
	return fmt.Sprintf("%-4s %s %s %s %s %s %s %8d",
		name,
		Note(s, reference),
		bar.Log(pc, scale, bar.DefaultWidth, false),
		bar.SignedLogp1(s.F, scale, half),
		bar.SignedLogp1(s.Entropy, scale, half),
		bar.SignedLogp1(s.Energy, scale, half),
		bar.Bar(phase, 1, bar.DefaultWidth, false),
		s.Cycle,
	)
}

// Write renders every target of f, one per line.
func Write(w io.Writer, f *tuner.Frame, reference float64) error {
	var b strings.Builder
	for i, name := range f.Names {
		b.WriteString(Line(name, f.Values[i], reference))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Level renders the input level of f as a gauge with its value.
func Level(f *tuner.Frame) string {
	return fmt.Sprintf("level %s %.4f", bar.Logp1(f.Level*100, 100, bar.DefaultWidth*2, false), f.Level)
}
