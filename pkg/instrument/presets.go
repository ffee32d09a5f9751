package instrument

import (
	"fmt"
	"math"

	"github.com/metalblueberry/receptor/pkg/pitch"
)

// GuitarStrings are the note numbers of standard guitar tuning, low to high.
var GuitarStrings = []int{40, 45, 50, 55, 59, 64}

// Just intonation ratios above the ukulele's C string.
const (
	MajorThird = 5.0 / 4.0
	Fifth      = 3.0 / 2.0
	MajorSixth = 5.0 / 3.0
)

// Guitar watches E2 A2 D3 G3 B3 E4. The low E string is coupled into every
// other string at its equal-tempered ratio.
func Guitar(sampleRate float64, opts Options) (*Array, error) {
	targets := make([]Target, len(GuitarStrings))
	for i, n := range GuitarStrings {
		targets[i] = Target{Name: pitch.Name(n), Frequency: pitch.Frequency(n, opts.Reference)}
	}
	a, err := New(sampleRate, targets, opts)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(GuitarStrings); i++ {
		ratio := math.Pow(2, float64(GuitarStrings[i]-GuitarStrings[0])/12)
		if err := a.Couple(i, 0, ratio); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Uke watches C4 E4 G4 A4 in just intonation above C4, with the C string
// coupled into the others.
func Uke(sampleRate float64, opts Options) (*Array, error) {
	c4 := pitch.Frequency(60, opts.Reference)
	ratios := []float64{1, MajorThird, Fifth, MajorSixth}
	names := []string{"C4", "E4", "G4", "A4"}
	targets := make([]Target, len(ratios))
	for i, r := range ratios {
		targets[i] = Target{Name: names[i], Frequency: c4 * r}
	}
	a, err := New(sampleRate, targets, opts)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(ratios); i++ {
		if err := a.Couple(i, 0, ratios[i]); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Harpsichord watches every equal-tempered note from low to high inclusive,
// without couplings.
func Harpsichord(sampleRate float64, low, high int, opts Options) (*Array, error) {
	if high < low {
		return nil, fmt.Errorf("%w: note range %d..%d", ErrNoTargets, low, high)
	}
	targets := make([]Target, 0, high-low+1)
	for n := low; n <= high; n++ {
		targets = append(targets, Target{Name: pitch.Name(n), Frequency: pitch.Frequency(n, opts.Reference)})
	}
	return New(sampleRate, targets, opts)
}

// Chromatic watches an arbitrary list of frequencies named after their
// closest note. The first frequency is coupled into the rest by frequency
// ratio.
func Chromatic(sampleRate float64, freqs []float64, opts Options) (*Array, error) {
	targets := make([]Target, len(freqs))
	for i, name := range noteNames(freqs, opts.Reference) {
		targets[i] = Target{Name: name, Frequency: freqs[i]}
	}
	a, err := New(sampleRate, targets, opts)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(freqs); i++ {
		if err := a.Couple(i, 0, freqs[i]/freqs[0]); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Sweep watches a logarithmic ladder of frequencies from low up octaves
// octaves, divisions steps per octave. The bandwidth follows the spacing
// of the ladder so neighbouring sensors overlap.
func Sweep(sampleRate, low float64, divisions, octaves int, opts Options) (*Array, error) {
	if divisions < 1 || octaves < 1 {
		return nil, fmt.Errorf("%w: sweep of %d octaves in %d steps", ErrNoTargets, octaves, divisions)
	}
	freqs := make([]float64, divisions*octaves+1)
	for n := range freqs {
		freqs[n] = low * math.Pow(2, float64(n)/float64(divisions))
	}
	targets := make([]Target, len(freqs))
	for i, name := range noteNames(freqs, opts.Reference) {
		targets[i] = Target{Name: name, Frequency: freqs[i]}
	}
	opts.OctaveBandwidth = float64(divisions)
	return New(sampleRate, targets, opts)
}

// noteNames names each frequency after its closest note. Later frequencies
// landing on a taken name fall back to the frequency, then to a counter.
func noteNames(freqs []float64, reference float64) []string {
	names := make([]string, len(freqs))
	seen := make(map[string]int, len(freqs))
	for i, f := range freqs {
		name := fmt.Sprintf("%.1fHz", f)
		if note, ok := pitch.FromFrequency(f, reference); ok && seen[note.Label()] == 0 {
			name = note.Label()
		}
		if n := seen[name]; n > 0 {
			seen[name]++
			name = fmt.Sprintf("%s#%d", name, n+1)
		}
		seen[name]++
		names[i] = name
	}
	return names
}
