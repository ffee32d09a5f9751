package analysis

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/cwbudde/algo-dsp/dsp/core"

	"github.com/metalblueberry/receptor/pkg/audio"
	"github.com/metalblueberry/receptor/pkg/tuner"
)

func TestRunFindsTone(t *testing.T) {
	src := &audio.Tone{Frequencies: []float64{110}, Amplitude: 0.25, Duration: time.Second, Rate: 48000, BlockSize: 512}
	res, err := Run(context.Background(), "a2", src, tuner.DefaultConfig(core.WithBlockSize(512)))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Samples != 48000 || res.Duration != time.Second {
		t.Fatalf("samples %d, duration %v", res.Samples, res.Duration)
	}
	if res.Frames < 50 {
		t.Fatalf("%d frames", res.Frames)
	}
	if len(res.Targets) != 6 {
		t.Fatalf("%d targets", len(res.Targets))
	}

	best, ok := res.Strongest()
	if !ok || best.Name != "A2" {
		t.Fatalf("strongest = %+v", best)
	}
	if math.Abs(best.Snapshot.InstantFrequency-110) > 1.1 {
		t.Fatalf("instant frequency %v", best.Snapshot.InstantFrequency)
	}
	if math.Abs(best.Amplitude-0.25) > 0.02 {
		t.Fatalf("goertzel amplitude %v, want 0.25", best.Amplitude)
	}
	for _, tg := range res.Targets {
		if tg.Name != "A2" && tg.Amplitude > 0.05 {
			t.Fatalf("%s amplitude %v", tg.Name, tg.Amplitude)
		}
	}
	found := false
	for _, group := range res.Unisons {
		for _, name := range group {
			found = found || name == "A2"
		}
	}
	if !found {
		t.Fatalf("A2 missing from unisons %v", res.Unisons)
	}
	if res.FFT == nil && res.FFTError == "" {
		t.Fatal("no crosscheck outcome")
	}
}

func TestRunRejectsConfig(t *testing.T) {
	src := &audio.Tone{Frequencies: []float64{110}, Amplitude: 0.25, Duration: 10 * time.Millisecond, Rate: 48000, BlockSize: 512}
	cfg := tuner.DefaultConfig()
	cfg.Instrument = "kazoo"
	if _, err := Run(context.Background(), "bad", src, cfg); !errors.Is(err, tuner.ErrInstrument) {
		t.Fatalf("err = %v, want %v", err, tuner.ErrInstrument)
	}
}

func TestStrongestEmpty(t *testing.T) {
	var r Result
	if _, ok := r.Strongest(); ok {
		t.Fatal("strongest of no targets")
	}
}
