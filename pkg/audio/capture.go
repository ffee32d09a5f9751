package audio

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gordonklaus/portaudio"
)

// CaptureOptions select and configure a sound card input.
type CaptureOptions struct {
	// Device is a substring of the input device name; empty selects the
	// default input.
	Device string
	// Channels is clamped to what the device offers.
	Channels int
	// SampleRate of zero uses the device default.
	SampleRate float64
	// LowLatency trades robustness for a shorter input buffer.
	LowLatency bool
}

// Capture streams a sound card input through portaudio.
type Capture struct {
	stream *portaudio.Stream
	device *portaudio.DeviceInfo
	rate   float64
	log    *slog.Logger
	fn     func([][]float32)
}

// FindDevice returns the first input device whose name contains name, or
// the default input for an empty name.
func FindDevice(name string) (*portaudio.DeviceInfo, error) {
	if name == "" {
		return portaudio.DefaultInputDevice()
	}
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	for _, d := range devices {
		if d.MaxInputChannels > 0 && strings.Contains(d.Name, name) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrDevice, name)
}

// OpenCapture initializes portaudio and opens an input stream. Close
// releases both.
func OpenCapture(opts CaptureOptions, log *slog.Logger) (*Capture, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}

	device, err := FindDevice(opts.Device)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}

	var p portaudio.StreamParameters
	if opts.LowLatency {
		p = portaudio.LowLatencyParameters(device, nil)
	} else {
		p = portaudio.HighLatencyParameters(device, nil)
	}
	if opts.Channels > 0 && opts.Channels < p.Input.Channels {
		p.Input.Channels = opts.Channels
	}
	if opts.SampleRate > 0 {
		p.SampleRate = opts.SampleRate
	}

	c := &Capture{device: device, rate: p.SampleRate, log: log}
	c.stream, err = portaudio.OpenStream(p, c.process)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("open %q: %w", device.Name, err)
	}
	log.Info("capture opened",
		"device", device.Name,
		"channels", p.Input.Channels,
		"sample_rate", p.SampleRate,
		"latency", p.Input.Latency,
	)
	return c, nil
}

func (c *Capture) process(in [][]float32) {
	if c.fn != nil {
		c.fn(in)
	}
}

// SampleRate returns the stream's sample rate in Hz.
func (c *Capture) SampleRate() float64 {
	return c.rate
}

// Device returns the selected input device.
func (c *Capture) Device() *portaudio.DeviceInfo {
	return c.device
}

// Run streams blocks to fn until ctx is done. fn runs on the audio thread
// and must not block.
func (c *Capture) Run(ctx context.Context, fn func(block [][]float32)) error {
	c.fn = fn
	if err := c.stream.Start(); err != nil {
		return fmt.Errorf("start capture: %w", err)
	}
	<-ctx.Done()
	if err := c.stream.Stop(); err != nil {
		return fmt.Errorf("stop capture: %w", err)
	}
	c.log.Debug("capture stopped")
	return nil
}

// Close releases the stream and portaudio.
func (c *Capture) Close() error {
	err := c.stream.Close()
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}
