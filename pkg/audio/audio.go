// Package audio supplies blocks of non-interleaved float samples from a
// sound card, a WAV file, a raw PCM stream or a synthetic tone.
package audio

import (
	"context"
	"errors"
	"time"
)

var (
	ErrDevice    = errors.New("audio: input device not found")
	ErrChannels  = errors.New("audio: channel count must be positive")
	ErrBlockSize = errors.New("audio: block size must be positive")
	ErrRate      = errors.New("audio: sample rate must be positive")
	ErrFormat    = errors.New("audio: unsupported format")
)

// Source delivers audio one block at a time. A block holds one slice per
// channel, all of the same length. The slices are reused between calls.
type Source interface {
	SampleRate() float64
	Run(ctx context.Context, fn func(block [][]float32)) error
}

// emit splits x into blocks of n samples and hands them to fn. When pace is
// set, blocks are released no faster than real time.
func emit(ctx context.Context, x [][]float32, n int, rate float64, pace bool, fn func([][]float32)) error {
	if len(x) == 0 {
		return nil
	}
	var tick <-chan time.Time
	if pace {
		t := time.NewTicker(time.Duration(float64(n) / rate * float64(time.Second)))
		defer t.Stop()
		tick = t.C
	}
	block := make([][]float32, len(x))
	for start := 0; start < len(x[0]); start += n {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+n, len(x[0]))
		for ch := range x {
			block[ch] = x[ch][start:end]
		}
		fn(block)
		if tick != nil {
			select {
			case <-tick:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}
