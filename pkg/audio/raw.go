package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Raw streams interleaved signed 16-bit little-endian PCM, such as the
// output of `arecord -f S16_LE -t raw`.
type Raw struct {
	Reader    io.Reader
	Rate      float64
	Channels  int
	BlockSize int
}

// SampleRate returns the declared sample rate in Hz.
func (r *Raw) SampleRate() float64 {
	return r.Rate
}

func (r *Raw) validate() error {
	switch {
	case !(r.Rate > 0):
		return fmt.Errorf("%w: %v", ErrRate, r.Rate)
	case r.Channels <= 0:
		return fmt.Errorf("%w: %d", ErrChannels, r.Channels)
	case r.BlockSize <= 0:
		return fmt.Errorf("%w: %d", ErrBlockSize, r.BlockSize)
	}
	return nil
}

// Run decodes blocks until the reader is exhausted or ctx is done. A
// trailing partial frame is dropped.
func (r *Raw) Run(ctx context.Context, fn func(block [][]float32)) error {
	if err := r.validate(); err != nil {
		return err
	}
	frameSize := 2 * r.Channels
	buf := make([]byte, r.BlockSize*frameSize)
	block := make([][]float32, r.Channels)
	for ch := range block {
		block[ch] = make([]float32, r.BlockSize)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := io.ReadFull(r.Reader, buf)
		frames := n / frameSize
		if frames > 0 {
			decode(buf[:frames*frameSize], block, frames)
			out := block
			if frames < r.BlockSize {
				out = make([][]float32, r.Channels)
				for ch := range out {
					out[ch] = block[ch][:frames]
				}
			}
			fn(out)
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func decode(buf []byte, block [][]float32, frames int) {
	channels := len(block)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			off := 2 * (i*channels + ch)
			v := int16(binary.LittleEndian.Uint16(buf[off:]))
			block[ch][i] = float32(v) / 32768
		}
	}
}

// Encode writes samples in the format Raw reads; values are clipped to
// [-1, 1).
func Encode(w io.Writer, block [][]float32) error {
	if len(block) == 0 {
		return nil
	}
	channels := len(block)
	buf := make([]byte, 2*channels*len(block[0]))
	for i := range block[0] {
		for ch := 0; ch < channels; ch++ {
			v := float64(block[ch][i]) * 32768
			v = max(-32768, min(v, 32767))
			binary.LittleEndian.PutUint16(buf[2*(i*channels+ch):], uint16(int16(v)))
		}
	}
	_, err := w.Write(buf)
	return err
}
