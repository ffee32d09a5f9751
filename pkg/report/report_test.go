package report

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/metalblueberry/receptor/pkg/lifecycle"
	"github.com/metalblueberry/receptor/pkg/tuner"
)

func TestNote(t *testing.T) {
	s := lifecycle.Snapshot{InstantFrequency: 440}
	if got := Note(s, 440); !strings.HasPrefix(got, "A   4  69") || utf8.RuneCountInString(got) != noteWidth {
		t.Fatalf("Note = %q", got)
	}
	for _, f := range []float64{0, -3, math.NaN(), math.Inf(1)} {
		s.InstantFrequency = f
		if got := Note(s, 440); got != blankNote {
			t.Fatalf("Note(%v) = %q, want blank", f, got)
		}
	}
}

func TestLineWidthIsStable(t *testing.T) {
	want := -1
	for _, s := range []lifecycle.Snapshot{
		{},
		{F: 3, Entropy: -2, Energy: 1, Phi: -0.25, Cycle: -12, MaxR: 100, InstantFrequency: 82.4},
		{F: math.NaN(), Entropy: math.Inf(1), Energy: -1e9, Phi: 0.49, Cycle: 7, MaxR: 0},
	} {
		got := utf8.RuneCountInString(Line("E2", s, 440))
		if want < 0 {
			want = got
		}
		if got != want {
			t.Fatalf("line for %+v is %d runes, want %d", s, got, want)
		}
	}
}

func TestWrite(t *testing.T) {
	f := &tuner.Frame{
		Names:  []string{"E2", "A2"},
		Values: make([]lifecycle.Snapshot, 2),
	}
	var buf bytes.Buffer
	if err := Write(&buf, f, 440); err != nil {
		t.Fatalf("Write: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "E2 ") || !strings.HasPrefix(lines[1], "A2 ") {
		t.Fatalf("Write = %q", buf.String())
	}
}

func TestLevel(t *testing.T) {
	if got := Level(&tuner.Frame{Level: 0.5}); !strings.HasSuffix(got, "0.5000") {
		t.Fatalf("Level = %q", got)
	}
}
