package tuner

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/signal"
)

const sampleRate = 48000.0

func mustCreate(t *testing.T, cfg Config) *Processor {
	t.Helper()
	p, err := Create(cfg)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return p
}

// blocks splits x into stereo blocks of size n with both channels equal.
func blocks(x []float64, n int) [][][]float32 {
	var out [][][]float32
	for start := 0; start < len(x); start += n {
		end := min(start+n, len(x))
		ch := make([]float32, end-start)
		for i := range ch {
			ch[i] = float32(x[start+i])
		}
		out = append(out, [][]float32{ch, ch})
	}
	return out
}

func constant(v float64, n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = v
	}
	return x
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig(core.WithSampleRate(44100), core.WithBlockSize(256))
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.SampleRate != 44100 || cfg.BlockSize != 256 {
		t.Fatalf("processor config = %+v", cfg.ProcessorConfig)
	}
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"sample rate", func(c *Config) { c.SampleRate = 0 }, ErrSampleRate},
		{"block size", func(c *Config) { c.BlockSize = -1 }, ErrBlockSize},
		{"instrument", func(c *Config) { c.Instrument = "banjo" }, ErrInstrument},
		{"chromatic", func(c *Config) { c.Instrument = INSTRUMENT_CHROMATIC }, ErrFrequencies},
		{"midi range", func(c *Config) { c.Instrument = INSTRUMENT_HARPSICHORD; c.LowMidi = 70; c.HighMidi = 60 }, ErrMidiRange},
		{"bandwidth", func(c *Config) { c.OctaveBandwidth = 0 }, ErrBandwidth},
		{"interval", func(c *Config) { c.UpdateInterval = 0 }, ErrUpdateInterval},
		{"highpass", func(c *Config) { c.HighpassHz = sampleRate }, ErrHighpass},
		{"reference", func(c *Config) { c.Reference = -440 }, ErrReference},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if _, err := Create(cfg); !errors.Is(err, tc.want) {
				t.Fatalf("Create err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestNewArrayInstruments(t *testing.T) {
	for _, tc := range []struct {
		instrument string
		want       int
	}{
		{INSTRUMENT_GUITAR, 6},
		{INSTRUMENT_UKE, 4},
		{INSTRUMENT_HARPSICHORD, HIGH_MIDI - LOW_MIDI + 1},
		{INSTRUMENT_CHROMATIC, 2},
		{INSTRUMENT_SWEEP, 6*12 + 1},
	} {
		cfg := DefaultConfig()
		cfg.Instrument = tc.instrument
		cfg.Frequencies = []float64{196, 293.66}
		a, err := cfg.NewArray()
		if err != nil {
			t.Fatalf("%s: %v", tc.instrument, err)
		}
		if a.Len() != tc.want {
			t.Fatalf("%s: %d targets, want %d", tc.instrument, a.Len(), tc.want)
		}
	}
}

func TestProcessFindsString(t *testing.T) {
	p := mustCreate(t, DefaultConfig())
	x, err := signal.NewGenerator(core.WithSampleRate(sampleRate)).Sine(110, 0.5, int(sampleRate))
	if err != nil {
		t.Fatalf("Sine: %v", err)
	}
	for _, b := range blocks(x, 128) {
		if !p.Process(b) {
			t.Fatal("block skipped without a display clock")
		}
	}

	f, ok := p.Mailbox().Latest()
	if !ok {
		t.Fatal("no frame posted")
	}
	if len(f.Values) != 6 || len(f.Names) != 6 {
		t.Fatalf("frame has %d values for %d names", len(f.Values), len(f.Names))
	}
	best := 0
	for i := range f.Values {
		if f.Values[i].Magnitude > f.Values[best].Magnitude {
			best = i
		}
	}
	if f.Names[best] != "A2" {
		t.Fatalf("strongest = %s", f.Names[best])
	}
	if got := f.Map()["A2"].InstantFrequency; math.Abs(got-110) > 1.1 {
		t.Fatalf("A2 frequency = %v", got)
	}
	// Mean absolute deviation of a sine is 2/pi of its amplitude.
	if want := 0.5 * 2 / math.Pi; math.Abs(f.Level-want) > 0.05 {
		t.Fatalf("level = %v, want about %v", f.Level, want)
	}
	if f.Samples > p.Frames() || f.Time != time.Duration(float64(f.Samples)/sampleRate*float64(time.Second)) {
		t.Fatalf("frame time %v at %d samples", f.Time, f.Samples)
	}
}

func TestFrameCadence(t *testing.T) {
	p := mustCreate(t, DefaultConfig())
	posted := 0
	for _, b := range blocks(make([]float64, int(sampleRate)), 128) {
		p.Process(b)
		if _, ok := p.Mailbox().Latest(); ok {
			posted++
		}
	}
	// One frame per 16.67 ms for one second, plus the first block.
	if posted < 59 || posted > 62 {
		t.Fatalf("posted %d frames", posted)
	}
}

func TestMailboxKeepsLatest(t *testing.T) {
	m := CreateMailbox()
	for i := 1; i <= 3; i++ {
		m.Post(&Frame{Samples: int64(i)})
	}
	f, ok := m.Latest()
	if !ok || f.Samples != 3 {
		t.Fatalf("Latest = %+v, %v, want frame 3", f, ok)
	}
	if _, ok := m.Latest(); ok {
		t.Fatal("mailbox delivered a frame twice")
	}
	m.Post(&Frame{Samples: 4})
	if f := <-m.C(); f.Samples != 4 {
		t.Fatalf("C delivered frame %d", f.Samples)
	}
}

func TestProcessIdlesAheadOfClock(t *testing.T) {
	p := mustCreate(t, DefaultConfig())
	p.SyncClock(0)
	block := blocks(make([]float64, 1000), 1000)[0]

	// 1000 samples are about 21 ms; the fifth block is more than 100 ms ahead.
	for i := 1; i <= 4; i++ {
		if !p.Process(block) {
			t.Fatalf("block %d skipped", i)
		}
	}
	if p.Process(block) {
		t.Fatal("block 5 processed while ahead of the display clock")
	}
	if p.Frames() != 4000 {
		t.Fatalf("frames = %d, want 4000", p.Frames())
	}

	p.SyncClock(100 * time.Millisecond)
	if !p.Process(block) {
		t.Fatal("block skipped after the display clock caught up")
	}
	if p.Frames() != 5000 {
		t.Fatalf("frames = %d, want 5000", p.Frames())
	}
}

func TestProcessEmptyBlock(t *testing.T) {
	p := mustCreate(t, DefaultConfig())
	if p.Process(nil) || p.Process([][]float32{{}}) {
		t.Fatal("empty block reported as processed")
	}
}

func TestHighpassRemovesOffset(t *testing.T) {
	magnitude := func(cutoff float64) float64 {
		cfg := DefaultConfig()
		cfg.HighpassHz = cutoff
		p := mustCreate(t, cfg)
		for _, b := range blocks(constant(0.25, int(sampleRate)), 256) {
			p.Process(b)
		}
		return p.Array().Sensor(0).Sensors[0].R
	}
	raw := magnitude(0)
	filtered := magnitude(40)
	if raw == 0 || filtered*10 > raw {
		t.Fatalf("magnitude with high-pass %v, without %v", filtered, raw)
	}
}

func TestRetune(t *testing.T) {
	p := mustCreate(t, DefaultConfig())
	if err := p.Retune(442); err != nil {
		t.Fatalf("Retune: %v", err)
	}
	if p.Config().Reference != 442 {
		t.Fatalf("reference = %v", p.Config().Reference)
	}
	p.Process([][]float32{make([]float32, 2048)})
	f, ok := p.Mailbox().Latest()
	if !ok || f.Reference != 442 {
		t.Fatalf("frame after retune: %+v, %v", f, ok)
	}
	if err := p.Retune(-1); err == nil {
		t.Fatal("negative reference accepted")
	}
}
