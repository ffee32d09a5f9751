// Package cli holds the flags and setup shared by the commands.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cwbudde/algo-dsp/dsp/core"

	"github.com/metalblueberry/receptor/pkg/audio"
	"github.com/metalblueberry/receptor/pkg/tuner"
)

const (
	SourceCapture = "capture"
	SourceRaw     = "raw"
	SourceWav     = "wav"
	SourceTone    = "tone"
)

var ErrSource = errors.New("unknown source")

// InitLogger installs a text logger on stderr as the default and returns it.
func InitLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// ParseFrequencies reads a comma separated list of frequencies in Hz.
func ParseFrequencies(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out []float64
	for _, field := range strings.Split(s, ",") {
		f, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("frequency %q: %w", field, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// Flags are the command line options common to every command.
type Flags struct {
	Debug bool

	Source     string
	Device     string
	Path       string
	Rate       float64
	Channels   int
	BlockSize  int
	LowLatency bool
	Realtime   bool

	Tone      string
	Amplitude float64
	Noise     float64
	Duration  time.Duration

	Instrument  string
	Frequencies string
	LowMidi     int
	HighMidi    int
	Bandwidth   float64
	Factor      float64
	Reference   float64
	Highpass    float64
	Interval    time.Duration
	Lead        time.Duration
}

// Register binds the flags to fs with their defaults.
func (f *Flags) Register(fs *flag.FlagSet) {
	def := tuner.DefaultConfig()

	fs.BoolVar(&f.Debug, "debug", false, "enable debug logging")

	fs.StringVar(&f.Source, "source", SourceCapture, "audio source: capture, raw, wav or tone")
	fs.StringVar(&f.Device, "device", "", "input device name substring (capture)")
	fs.StringVar(&f.Path, "file", "", "WAV file (wav) or raw PCM file, - for stdin (raw)")
	fs.Float64Var(&f.Rate, "rate", 0, "sample rate in Hz; 0 keeps the source default")
	fs.IntVar(&f.Channels, "channels", 1, "channel count (capture, raw)")
	fs.IntVar(&f.BlockSize, "block", 512, "frames per block")
	fs.BoolVar(&f.LowLatency, "low-latency", false, "use low latency capture parameters")
	fs.BoolVar(&f.Realtime, "realtime", true, "pace file and tone sources at their sample rate")

	fs.StringVar(&f.Tone, "tone", "110", "comma separated tone frequencies in Hz (tone)")
	fs.Float64Var(&f.Amplitude, "amplitude", 0.25, "amplitude of each tone")
	fs.Float64Var(&f.Noise, "noise", 0, "white noise amplitude added to the tone")
	fs.DurationVar(&f.Duration, "duration", 10*time.Second, "tone duration")

	fs.StringVar(&f.Instrument, "instrument", def.Instrument, "guitar, uke, harpsichord, chromatic or sweep")
	fs.StringVar(&f.Frequencies, "freqs", "", "comma separated target frequencies in Hz (chromatic)")
	fs.IntVar(&f.LowMidi, "low", def.LowMidi, "lowest MIDI note (harpsichord, sweep)")
	fs.IntVar(&f.HighMidi, "high", def.HighMidi, "highest MIDI note (harpsichord, sweep)")
	fs.Float64Var(&f.Bandwidth, "bandwidth", def.OctaveBandwidth, "sensor bandwidth as divisions per octave")
	fs.Float64Var(&f.Factor, "bandwidth-factor", def.BandwidthFactor, "sensor bandwidth multiplier")
	fs.Float64Var(&f.Reference, "reference", def.Reference, "frequency of A4 in Hz")
	fs.Float64Var(&f.Highpass, "highpass", 0, "high-pass cutoff in Hz; 0 disables")
	fs.DurationVar(&f.Interval, "interval", def.UpdateInterval, "time between published frames")
	fs.DurationVar(&f.Lead, "lead", def.Lead, "how far the stream may run ahead of the display")
}

// Config returns the tuner configuration for a source running at rate.
func (f *Flags) Config(rate float64) (tuner.Config, error) {
	cfg := tuner.DefaultConfig(core.WithSampleRate(rate), core.WithBlockSize(f.BlockSize))
	freqs, err := ParseFrequencies(f.Frequencies)
	if err != nil {
		return cfg, err
	}
	cfg.Instrument = f.Instrument
	cfg.Frequencies = freqs
	cfg.LowMidi = f.LowMidi
	cfg.HighMidi = f.HighMidi
	cfg.OctaveBandwidth = f.Bandwidth
	cfg.BandwidthFactor = f.Factor
	cfg.Reference = f.Reference
	cfg.HighpassHz = f.Highpass
	cfg.UpdateInterval = f.Interval
	cfg.Lead = f.Lead
	return cfg, cfg.Validate()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenSource opens the selected audio source. The closer releases it.
func (f *Flags) OpenSource(log *slog.Logger) (audio.Source, io.Closer, error) {
	switch f.Source {
	case SourceCapture:
		c, err := audio.OpenCapture(audio.CaptureOptions{
			Device:     f.Device,
			Channels:   f.Channels,
			SampleRate: f.Rate,
			LowLatency: f.LowLatency,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil
	case SourceWav:
		w, err := audio.OpenWav(f.Path, f.BlockSize)
		if err != nil {
			return nil, nil, err
		}
		w.Realtime = f.Realtime
		return w, w, nil
	case SourceRaw:
		rate := f.Rate
		if rate == 0 {
			rate = core.DefaultProcessorConfig().SampleRate
		}
		if f.Path == "" || f.Path == "-" {
			return &audio.Raw{Reader: os.Stdin, Rate: rate, Channels: f.Channels, BlockSize: f.BlockSize}, nopCloser{}, nil
		}
		file, err := os.Open(f.Path)
		if err != nil {
			return nil, nil, err
		}
		return &audio.Raw{Reader: file, Rate: rate, Channels: f.Channels, BlockSize: f.BlockSize}, file, nil
	case SourceTone:
		rate := f.Rate
		if rate == 0 {
			rate = core.DefaultProcessorConfig().SampleRate
		}
		freqs, err := ParseFrequencies(f.Tone)
		if err != nil {
			return nil, nil, err
		}
		return &audio.Tone{
			Frequencies: freqs,
			Amplitude:   f.Amplitude,
			Noise:       f.Noise,
			Duration:    f.Duration,
			Rate:        rate,
			BlockSize:   f.BlockSize,
			Realtime:    f.Realtime,
		}, nopCloser{}, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrSource, f.Source)
}
