// Package analysis runs a whole recording through a tuner and compares the
// receptors with a Goertzel measurement at each target and with an FFT
// tuner estimate of the dominant note.
package analysis

import (
	"context"
	"math"
	"time"

	"github.com/cwbudde/algo-dsp/dsp/spectrum"

	"github.com/metalblueberry/receptor/pkg/audio"
	"github.com/metalblueberry/receptor/pkg/crosscheck"
	"github.com/metalblueberry/receptor/pkg/instrument"
	"github.com/metalblueberry/receptor/pkg/lifecycle"
	"github.com/metalblueberry/receptor/pkg/tuner"
)

// crosscheckWindow caps the tail of the signal handed to the FFT tuner.
const crosscheckWindow = 1 << 16

// Target is the final state of one receptor.
type Target struct {
	Name      string             `json:"name"`
	Frequency float64            `json:"frequency"`
	Snapshot  lifecycle.Snapshot `json:"snapshot"`
	// Amplitude is the Goertzel estimate of the sine amplitude at
	// Frequency over the whole recording.
	Amplitude float64 `json:"amplitude"`
}

// Result summarizes one recording.
type Result struct {
	Name       string        `json:"name"`
	SampleRate float64       `json:"sample_rate"`
	Duration   time.Duration `json:"duration"`
	Samples    int64         `json:"samples"`
	Frames     int           `json:"frames"`
	Level      float64       `json:"level"`
	Targets    []Target      `json:"targets"`
	// Unisons groups the names of the loudest targets by the pitch their
	// sensors settled on, lowest first.
	Unisons  [][]string           `json:"unisons,omitempty"`
	FFT      *crosscheck.Estimate `json:"fft,omitempty"`
	FFTError string               `json:"fft_error,omitempty"`
}

// Strongest returns the target with the largest fast sensor magnitude.
func (r *Result) Strongest() (Target, bool) {
	best := -1
	for i, t := range r.Targets {
		if best < 0 || t.Snapshot.Magnitude > r.Targets[best].Snapshot.Magnitude {
			best = i
		}
	}
	if best < 0 {
		return Target{}, false
	}
	return r.Targets[best], true
}

// Run streams src through a processor built from cfg. The sample rate of
// cfg is replaced by the source's. src should not pace itself.
func Run(ctx context.Context, name string, src audio.Source, cfg tuner.Config) (*Result, error) {
	cfg.SampleRate = src.SampleRate()
	proc, err := tuner.Create(cfg)
	if err != nil {
		return nil, err
	}

	targets := proc.Array().Targets()
	freqs := make([]float64, len(targets))
	for i, t := range targets {
		freqs[i] = t.Frequency
	}
	goertzel, err := spectrum.NewMultiGoertzel(freqs, cfg.SampleRate)
	if err != nil {
		return nil, err
	}

	res := &Result{Name: name, SampleRate: cfg.SampleRate}
	var mono, tail []float64
	err = src.Run(ctx, func(block [][]float32) {
		if len(block) == 0 || len(block[0]) == 0 {
			return
		}
		proc.Process(block)
		if f, ok := proc.Mailbox().Latest(); ok {
			res.Frames++
			res.Level = f.Level
		}

		mono = mono[:0]
		for i := range block[0] {
			var sum float64
			for ch := range block {
				sum += float64(block[ch][i])
			}
			mono = append(mono, sum/float64(len(block)))
		}
		goertzel.ProcessBlock(mono)
		tail = append(tail, mono...)
		if over := len(tail) - crosscheckWindow; over > 0 {
			tail = append(tail[:0], tail[over:]...)
		}
	})
	if err != nil {
		return nil, err
	}

	res.Samples = proc.Frames()
	res.Duration = time.Duration(float64(res.Samples) / cfg.SampleRate * float64(time.Second))

	snaps := proc.Array().Snapshots(nil)
	powers := goertzel.Powers()
	res.Targets = make([]Target, len(targets))
	for i, t := range targets {
		amp := 0.0
		if res.Samples > 0 {
			amp = 2 * math.Sqrt(powers[i]) / float64(res.Samples)
		}
		res.Targets[i] = Target{Name: t.Name, Frequency: t.Frequency, Snapshot: snaps[i], Amplitude: amp}
	}
	res.Unisons = unisons(proc.Array().Sensations())
	if len(tail) > 0 {
		e, err := crosscheck.Analyze(tail, cfg.SampleRate)
		if err != nil {
			res.FFTError = err.Error()
		} else {
			res.FFT = &e
		}
	}
	return res, nil
}

// unisons groups the sensations at least half as strong as the loudest.
func unisons(sensations []instrument.Sensation) [][]string {
	loudest := 0.0
	for _, s := range sensations {
		loudest = max(loudest, s.Snapshot.Magnitude)
	}
	if !(loudest > 0) {
		return nil
	}
	var heard []instrument.Sensation
	for _, s := range sensations {
		if s.Snapshot.Magnitude >= loudest/2 {
			heard = append(heard, s)
		}
	}
	var out [][]string
	for _, group := range instrument.ByUnison(heard, 1) {
		names := make([]string, len(group))
		for i, s := range group {
			names[i] = s.Name
		}
		out = append(out, names)
	}
	return out
}
