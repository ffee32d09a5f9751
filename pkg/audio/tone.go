package audio

import (
	"context"
	"fmt"
	"time"

	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/signal"
)

// Tone synthesizes a mono mix of sines plus optional white noise.
type Tone struct {
	Frequencies []float64
	// Amplitude of each sine.
	Amplitude float64
	// Noise is the amplitude of the added white noise.
	Noise     float64
	Duration  time.Duration
	Rate      float64
	BlockSize int
	// Realtime releases blocks no faster than Rate.
	Realtime bool
}

// SampleRate returns the synthesis rate in Hz.
func (t *Tone) SampleRate() float64 {
	return t.Rate
}

// Render returns the whole signal.
func (t *Tone) Render() ([]float32, error) {
	if !(t.Rate > 0) {
		return nil, fmt.Errorf("%w: %v", ErrRate, t.Rate)
	}
	n := int(t.Duration.Seconds() * t.Rate)
	gen := signal.NewGenerator(core.WithSampleRate(t.Rate), core.WithBlockSize(t.BlockSize))
	mix := make([]float64, n)
	for _, f := range t.Frequencies {
		x, err := gen.Sine(f, t.Amplitude, n)
		if err != nil {
			return nil, err
		}
		for i := range mix {
			mix[i] += x[i]
		}
	}
	if t.Noise > 0 {
		x, err := gen.WhiteNoise(t.Noise, n)
		if err != nil {
			return nil, err
		}
		for i := range mix {
			mix[i] += x[i]
		}
	}
	out := make([]float32, n)
	for i, v := range mix {
		out[i] = float32(v)
	}
	return out, nil
}

// Run renders the signal and streams it in blocks.
func (t *Tone) Run(ctx context.Context, fn func(block [][]float32)) error {
	if t.BlockSize <= 0 {
		return fmt.Errorf("%w: %d", ErrBlockSize, t.BlockSize)
	}
	x, err := t.Render()
	if err != nil {
		return err
	}
	return emit(ctx, [][]float32{x}, t.BlockSize, t.Rate, t.Realtime, fn)
}
