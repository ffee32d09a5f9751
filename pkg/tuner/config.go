package tuner

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/algo-dsp/dsp/core"

	"github.com/metalblueberry/receptor/pkg/instrument"
	"github.com/metalblueberry/receptor/pkg/pitch"
)

/*
 * Global constants.
 */
const (
	INSTRUMENT_GUITAR      = "guitar"
	INSTRUMENT_UKE         = "uke"
	INSTRUMENT_HARPSICHORD = "harpsichord"
	INSTRUMENT_CHROMATIC   = "chromatic"
	INSTRUMENT_SWEEP       = "sweep"
	INPUT_GAIN             = 32768.0
	UPDATE_INTERVAL        = 16670 * time.Microsecond
	LEAD                   = 100 * time.Millisecond
	HIGHPASS_ORDER         = 2
	LOW_MIDI               = 24
	HIGH_MIDI              = 96
)

/*
 * Errors returned by Validate.
 */
var (
	ErrSampleRate     = errors.New("tuner: sample rate must be positive")
	ErrBlockSize      = errors.New("tuner: block size must be positive")
	ErrInstrument     = errors.New("tuner: unknown instrument")
	ErrFrequencies    = errors.New("tuner: chromatic instrument needs frequencies")
	ErrMidiRange      = errors.New("tuner: invalid note range")
	ErrBandwidth      = errors.New("tuner: bandwidth must be positive")
	ErrUpdateInterval = errors.New("tuner: update interval must be positive")
	ErrHighpass       = errors.New("tuner: high-pass cutoff out of range")
	ErrReference      = errors.New("tuner: reference must be positive")
)

/*
 * Data structure holding the configuration of a tuner.
 */
type Config struct {
	core.ProcessorConfig
	Instrument      string
	Frequencies     []float64
	LowMidi         int
	HighMidi        int
	OctaveBandwidth float64
	BandwidthFactor float64
	UpdateInterval  time.Duration
	InputGain       float64
	HighpassHz      float64
	Lead            time.Duration
	Reference       float64
}

/*
 * Returns the default configuration, a guitar at 48 kHz.
 *
 * Processor options override sample rate and block size.
 */
func DefaultConfig(opts ...core.ProcessorOption) Config {
	cfg := Config{
		ProcessorConfig: core.ApplyProcessorOptions(opts...),
		Instrument:      INSTRUMENT_GUITAR,
		LowMidi:         LOW_MIDI,
		HighMidi:        HIGH_MIDI,
		OctaveBandwidth: 12.0,
		BandwidthFactor: 1.0,
		UpdateInterval:  UPDATE_INTERVAL,
		InputGain:       INPUT_GAIN,
		Lead:            LEAD,
		Reference:       pitch.A4,
	}

	return cfg
}

/*
 * Checks the configuration for values the processor cannot run with.
 */
func (this *Config) Validate() error {

	/*
	 * Check the stream parameters.
	 */
	if !(this.SampleRate > 0) {
		return fmt.Errorf("%w: %v", ErrSampleRate, this.SampleRate)
	} else if this.BlockSize <= 0 {
		return fmt.Errorf("%w: %d", ErrBlockSize, this.BlockSize)
	}

	/*
	 * Check the instrument selection.
	 */
	switch this.Instrument {
	case INSTRUMENT_GUITAR, INSTRUMENT_UKE:
	case INSTRUMENT_HARPSICHORD, INSTRUMENT_SWEEP:

		/*
		 * The range must hold at least one note.
		 */
		if this.LowMidi > this.HighMidi || this.LowMidi < 0 {
			return fmt.Errorf("%w: %d..%d", ErrMidiRange, this.LowMidi, this.HighMidi)
		}

	case INSTRUMENT_CHROMATIC:

		/*
		 * Frequencies are checked against the sample rate by the array.
		 */
		if len(this.Frequencies) == 0 {
			return ErrFrequencies
		}

	default:
		return fmt.Errorf("%w: %q", ErrInstrument, this.Instrument)
	}

	/*
	 * Check the detector parameters.
	 */
	if !(this.OctaveBandwidth > 0) || !(this.BandwidthFactor > 0) {
		return fmt.Errorf("%w: octave %v, factor %v", ErrBandwidth, this.OctaveBandwidth, this.BandwidthFactor)
	} else if this.UpdateInterval <= 0 {
		return fmt.Errorf("%w: %v", ErrUpdateInterval, this.UpdateInterval)
	} else if this.HighpassHz < 0 || this.HighpassHz >= this.SampleRate/2 {
		return fmt.Errorf("%w: %v Hz", ErrHighpass, this.HighpassHz)
	} else if !(this.Reference > 0) {
		return fmt.Errorf("%w: %v", ErrReference, this.Reference)
	}

	return nil
}

/*
 * Returns the instrument options derived from the configuration.
 */
func (this *Config) Options() instrument.Options {
	opts := instrument.DefaultOptions()
	opts.OctaveBandwidth = this.OctaveBandwidth
	opts.BandwidthFactor = this.BandwidthFactor
	opts.Reference = this.Reference
	return opts
}

/*
 * Creates the sensor array of the configured instrument.
 */
func (this *Config) NewArray() (*instrument.Array, error) {
	err := this.Validate()

	/*
	 * Do not build anything from an invalid configuration.
	 */
	if err != nil {
		return nil, err
	}

	sr := this.SampleRate
	opts := this.Options()

	switch this.Instrument {
	case INSTRUMENT_UKE:
		return instrument.Uke(sr, opts)
	case INSTRUMENT_HARPSICHORD:
		return instrument.Harpsichord(sr, this.LowMidi, this.HighMidi, opts)
	case INSTRUMENT_CHROMATIC:
		return instrument.Chromatic(sr, this.Frequencies, opts)
	case INSTRUMENT_SWEEP:
		low := pitch.Frequency(this.LowMidi, this.Reference)
		octaves := max((this.HighMidi-this.LowMidi+11)/12, 1)
		divisions := max(int(math.Round(this.OctaveBandwidth)), 1)
		return instrument.Sweep(sr, low, divisions, octaves, opts)
	default:
		return instrument.Guitar(sr, opts)
	}

}

/*
 * Returns the number of samples between two frames.
 */
func (this *Config) IntervalInFrames() float64 {
	return this.UpdateInterval.Seconds() * this.SampleRate
}
