package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/youpy/go-wav"
)

// WavFile streams the samples of a PCM WAV file.
type WavFile struct {
	// BlockSize is the number of frames per block.
	BlockSize int
	// Realtime releases blocks no faster than the file's sample rate.
	Realtime bool

	closer io.Closer
	reader *wav.Reader
	format *wav.WavFormat
}

// WavReader is the random access a WAV decoder needs.
type WavReader interface {
	io.Reader
	io.ReaderAt
}

// OpenWav opens path and reads its format chunk.
func OpenWav(path string, blockSize int) (*WavFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	w, err := NewWav(f, blockSize)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	w.closer = f
	return w, nil
}

// NewWav reads the format chunk of r. Samples are decoded as Run asks for
// them.
func NewWav(r WavReader, blockSize int) (*WavFile, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrBlockSize, blockSize)
	}
	reader := wav.NewReader(r)
	format, err := reader.Format()
	if err != nil {
		return nil, err
	}
	if format.AudioFormat != wav.AudioFormatPCM || format.NumChannels == 0 || format.NumChannels > 2 || format.SampleRate == 0 {
		return nil, fmt.Errorf("%w: format %d, %d channels, %d Hz",
			ErrFormat, format.AudioFormat, format.NumChannels, format.SampleRate)
	}
	return &WavFile{BlockSize: blockSize, reader: reader, format: format}, nil
}

// SampleRate returns the file's sample rate in Hz.
func (w *WavFile) SampleRate() float64 {
	return float64(w.format.SampleRate)
}

// Channels returns the number of channels in the file.
func (w *WavFile) Channels() int {
	return int(w.format.NumChannels)
}

// Run decodes the file block by block and hands each block to fn. It
// returns nil at the end of the data.
func (w *WavFile) Run(ctx context.Context, fn func(block [][]float32)) error {
	var tick <-chan time.Time
	if w.Realtime {
		t := time.NewTicker(time.Duration(float64(w.BlockSize) / w.SampleRate() * float64(time.Second)))
		defer t.Stop()
		tick = t.C
	}

	pending := make([][]float32, w.Channels())
	block := make([][]float32, len(pending))
	send := func(n int) error {
		for ch := range pending {
			block[ch] = pending[ch][:n]
		}
		fn(block)
		for ch := range pending {
			pending[ch] = append(pending[ch][:0], pending[ch][n:]...)
		}
		if tick == nil {
			return nil
		}
		select {
		case <-tick:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		samples, err := w.reader.ReadSamples(uint32(w.BlockSize))
		for _, s := range samples {
			for ch := range pending {
				pending[ch] = append(pending[ch], float32(w.reader.FloatValue(s, uint(ch))))
			}
		}
		for len(pending[0]) >= w.BlockSize {
			if err := send(w.BlockSize); err != nil {
				return err
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
	}
	if n := len(pending[0]); n > 0 {
		return send(n)
	}
	return nil
}

// Close closes the file opened by OpenWav.
func (w *WavFile) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}
