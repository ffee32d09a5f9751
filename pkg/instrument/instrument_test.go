package instrument

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/signal"

	"github.com/metalblueberry/receptor/pkg/lifecycle"
	"github.com/metalblueberry/receptor/pkg/sensor"
)

const sampleRate = 48000.0

func mustGuitar(t *testing.T) *Array {
	t.Helper()
	a, err := Guitar(sampleRate, DefaultOptions())
	if err != nil {
		t.Fatalf("Guitar: %v", err)
	}
	return a
}

func TestGuitarLayout(t *testing.T) {
	a := mustGuitar(t)
	want := []string{"E2", "A2", "D3", "G3", "B3", "E4"}
	names := a.Names()
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
	if f := a.Targets()[1].Frequency; math.Abs(f-110) > 1e-9 {
		t.Fatalf("A2 = %v Hz, want 110", f)
	}

	couplings := a.Couplings()
	if len(couplings) != 5 {
		t.Fatalf("%d couplings, want 5", len(couplings))
	}
	for i, c := range couplings {
		if c.Source != 0 || c.Target != i+1 {
			t.Fatalf("coupling %d = %d <- %d", i, c.Target, c.Source)
		}
	}
	if r := couplings[0].Ratio; math.Abs(r-math.Pow(2, 5.0/12)) > 1e-12 {
		t.Fatalf("A2 ratio = %v", r)
	}
}

func TestUkeJustIntonation(t *testing.T) {
	a, err := Uke(sampleRate, DefaultOptions())
	if err != nil {
		t.Fatalf("Uke: %v", err)
	}
	targets := a.Targets()
	c4 := 440 * math.Pow(2, -9.0/12)
	for i, r := range []float64{1, MajorThird, Fifth, MajorSixth} {
		if math.Abs(targets[i].Frequency-c4*r) > 1e-9 {
			t.Fatalf("%s = %v Hz, want %v", targets[i].Name, targets[i].Frequency, c4*r)
		}
	}
	if len(a.Couplings()) != 3 {
		t.Fatalf("%d couplings, want 3", len(a.Couplings()))
	}
}

func TestHarpsichordRange(t *testing.T) {
	a, err := Harpsichord(sampleRate, 48, 52, DefaultOptions())
	if err != nil {
		t.Fatalf("Harpsichord: %v", err)
	}
	if a.Len() != 5 || a.Names()[0] != "C3" || a.Names()[4] != "E3" {
		t.Fatalf("names = %v", a.Names())
	}
	if len(a.Couplings()) != 0 {
		t.Fatal("harpsichord has couplings")
	}
	if _, err := Harpsichord(sampleRate, 60, 50, DefaultOptions()); !errors.Is(err, ErrNoTargets) {
		t.Fatalf("empty range err = %v", err)
	}
}

func TestChromaticNames(t *testing.T) {
	a, err := Chromatic(sampleRate, []float64{110, 220, 330, 220.5}, DefaultOptions())
	if err != nil {
		t.Fatalf("Chromatic: %v", err)
	}
	want := []string{"A2", "A3", "E4", "220.5Hz"}
	for i, name := range a.Names() {
		if name != want[i] {
			t.Fatalf("names = %v, want %v", a.Names(), want)
		}
	}
	if r := a.Couplings()[1].Ratio; r != 3 {
		t.Fatalf("E4 ratio = %v, want 3", r)
	}
}

func TestNewErrors(t *testing.T) {
	good := []Target{{Name: "A4", Frequency: 440}}
	bad := DefaultOptions()
	bad.OctaveBandwidth = 0
	for _, tc := range []struct {
		name    string
		rate    float64
		targets []Target
		opts    Options
		want    error
	}{
		{"rate", 0, good, DefaultOptions(), ErrSampleRate},
		{"empty", sampleRate, nil, DefaultOptions(), ErrNoTargets},
		{"nyquist", 8000, []Target{{Name: "high", Frequency: 5000}}, DefaultOptions(), ErrFrequency},
		{"negative", sampleRate, []Target{{Name: "neg", Frequency: -1}}, DefaultOptions(), ErrFrequency},
		{"bandwidth", sampleRate, good, bad, ErrBandwidth},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.rate, tc.targets, tc.opts); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCoupleOutOfRange(t *testing.T) {
	a := mustGuitar(t)
	for _, idx := range [][2]int{{6, 0}, {1, -1}, {2, 2}} {
		if err := a.Couple(idx[0], idx[1], 1); !errors.Is(err, ErrCoupling) {
			t.Fatalf("Couple(%d, %d) err = %v", idx[0], idx[1], err)
		}
	}
}

func TestSampleCouplesCurrentTick(t *testing.T) {
	a := mustGuitar(t)
	for i := 0; i < 500; i++ {
		a.Sample(float64(i), math.Sin(2*math.Pi*82.41*float64(i)/sampleRate))
	}
	src := a.Sensor(0)
	for _, c := range a.Couplings() {
		dst := a.Sensor(c.Target)
		for k := range dst.Sensors {
			want := dst.Sensors[k].Raw().Add(c.Monochord.Rotate(src.Sensors[k].Raw()))
			if dst.Sensors[k].Cval != want {
				t.Fatalf("target %d scale %d: cval %v, want %v", c.Target, k, dst.Sensors[k].Cval, want)
			}
		}
	}
}

func TestGuitarFindsPlayedString(t *testing.T) {
	a := mustGuitar(t)
	x, err := signal.NewGenerator(core.WithSampleRate(sampleRate)).Sine(110, 1, int(sampleRate))
	if err != nil {
		t.Fatalf("Sine: %v", err)
	}
	for i, v := range x {
		a.Sample(float64(i), v)
	}
	snaps := a.Snapshots(nil)
	best := 0
	for i := range snaps {
		if snaps[i].Magnitude > snaps[best].Magnitude {
			best = i
		}
	}
	if a.Names()[best] != "A2" {
		t.Fatalf("strongest string = %s, magnitudes %v", a.Names()[best], snaps)
	}
	if f := snaps[best].InstantFrequency; math.Abs(f-110) > 1.1 {
		t.Fatalf("A2 instant frequency = %v, want 110", f)
	}
}

func TestValuesAndSnapshots(t *testing.T) {
	a := mustGuitar(t)
	a.Sample(0, 0.5)
	a.Sample(1, 0.25)

	values := a.Values()
	if len(values) != a.Len() {
		t.Fatalf("%d values, want %d", len(values), a.Len())
	}

	dst := make([]lifecycle.Snapshot, 0, a.Len())
	out := a.Snapshots(dst)
	if len(out) != a.Len() || &out[0] != &dst[:1][0] {
		t.Fatal("Snapshots reallocated a buffer with enough capacity")
	}
	for i, name := range a.Names() {
		if values[name] != out[i] {
			t.Fatalf("%s: map %+v, slice %+v", name, values[name], out[i])
		}
	}
}

func TestRetune(t *testing.T) {
	a := mustGuitar(t)
	if err := a.Retune(442); err != nil {
		t.Fatalf("Retune: %v", err)
	}
	if f := a.Targets()[1].Frequency; math.Abs(f-110.5) > 1e-9 {
		t.Fatalf("A2 = %v Hz, want 110.5", f)
	}
	if p := a.Sensor(1).Period; math.Abs(p-sampleRate/110.5) > 1e-9 {
		t.Fatalf("A2 period = %v", p)
	}
	for _, c := range a.Couplings() {
		want := sensor.NewMonochord(a.Sensor(c.Source).Period, a.Sensor(c.Target).Period, c.Ratio)
		if c.Monochord != want {
			t.Fatalf("coupling %d <- %d not rebuilt", c.Target, c.Source)
		}
	}
	if err := a.Retune(0); !errors.Is(err, ErrReference) {
		t.Fatalf("Retune(0) err = %v", err)
	}
}

func TestChromaticDuplicateNames(t *testing.T) {
	freqs := []float64{220, 220, 220, 221}
	a, err := Chromatic(sampleRate, freqs, DefaultOptions())
	if err != nil {
		t.Fatalf("Chromatic: %v", err)
	}
	want := []string{"A3", "220.0Hz", "220.0Hz#2", "221.0Hz"}
	for i, name := range a.Names() {
		if name != want[i] {
			t.Fatalf("names = %v, want %v", a.Names(), want)
		}
	}
	if n := len(a.Values()); n != len(freqs) {
		t.Fatalf("%d values for %d targets", n, len(freqs))
	}
}

func TestSweep(t *testing.T) {
	a, err := Sweep(sampleRate, 110, 12, 2, DefaultOptions())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	names := a.Names()
	if a.Len() != 25 || names[0] != "A2" || names[12] != "A3" || names[24] != "A4" {
		t.Fatalf("names = %v", names)
	}
	if f := a.Targets()[24].Frequency; math.Abs(f-440) > 1e-9 {
		t.Fatalf("top = %v Hz, want 440", f)
	}
	if len(a.Couplings()) != 0 {
		t.Fatal("sweep has couplings")
	}
	for _, tc := range [][2]int{{0, 2}, {12, 0}} {
		if _, err := Sweep(sampleRate, 110, tc[0], tc[1], DefaultOptions()); !errors.Is(err, ErrNoTargets) {
			t.Fatalf("Sweep(%d, %d) err = %v", tc[0], tc[1], err)
		}
	}
}

func TestFollow(t *testing.T) {
	leader := mustGuitar(t)
	follower := mustGuitar(t)
	x, err := signal.NewGenerator(core.WithSampleRate(sampleRate)).Sine(112, 1, int(sampleRate))
	if err != nil {
		t.Fatalf("Sine: %v", err)
	}
	for i, v := range x {
		leader.Sample(float64(i), v)
	}
	if err := follower.Follow(leader); err != nil {
		t.Fatalf("Follow: %v", err)
	}
	if f := follower.Targets()[1].Frequency; math.Abs(f-112) > 1.12 {
		t.Fatalf("A2 follows %v Hz, want 112", f)
	}
	if p := follower.Sensor(1).Period; math.Abs(p-sampleRate/follower.Targets()[1].Frequency) > 1e-9 {
		t.Fatalf("A2 period %v out of step with its target", p)
	}
	for _, c := range follower.Couplings() {
		want := sensor.NewMonochord(follower.Sensor(c.Source).Period, follower.Sensor(c.Target).Period, c.Ratio)
		if c.Monochord != want {
			t.Fatalf("coupling %d <- %d not rebuilt", c.Target, c.Source)
		}
	}

	uke, err := Uke(sampleRate, DefaultOptions())
	if err != nil {
		t.Fatalf("Uke: %v", err)
	}
	if err := uke.Follow(leader); !errors.Is(err, ErrFollow) {
		t.Fatalf("mismatched Follow err = %v", err)
	}
}
