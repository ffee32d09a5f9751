package tuner

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"

	"github.com/metalblueberry/receptor/pkg/instrument"
	"github.com/metalblueberry/receptor/pkg/lifecycle"
	"github.com/metalblueberry/receptor/pkg/recept"
)

/*
 * Data structure representing the state of every target at one instant.
 *
 * Frames are read-only once posted.
 */
type Frame struct {
	Time      time.Duration
	Samples   int64
	Level     float64
	Reference float64
	Names     []string
	Values    []lifecycle.Snapshot
}

/*
 * Returns the snapshots of the frame keyed by target name.
 */
func (this *Frame) Map() map[string]lifecycle.Snapshot {
	m := make(map[string]lifecycle.Snapshot, len(this.Names))

	/*
	 * Names and values are in the same order.
	 */
	for i, name := range this.Names {
		m[name] = this.Values[i]
	}

	return m
}

/*
 * Data structure representing a real-time tuner.
 *
 * Process must be called from a single goroutine. SyncClock may be called
 * from any goroutine.
 */
type Processor struct {
	config     Config
	array      *instrument.Array
	highpass   *biquad.Chain
	level      recept.Distribution
	mailbox    *Mailbox
	names      []string
	frame      int64
	sampleN    atomic.Int64
	nextUpdate float64
	interval   float64
	synced     atomic.Bool
	clock      atomic.Int64
	offset     atomic.Int64
}

/*
 * Returns the logical time of a sample count.
 */
func (this *Processor) logicalTime(samples int64) time.Duration {
	secs := float64(samples) / this.config.SampleRate
	return time.Duration(secs * float64(time.Second))
}

/*
 * Reports whether the stream runs more than Lead ahead of the display clock.
 */
func (this *Processor) ahead() bool {

	/*
	 * Without a display clock there is nothing to be ahead of.
	 */
	if !this.synced.Load() {
		return false
	}

	logical := this.logicalTime(this.sampleN.Load())
	display := time.Duration(this.clock.Load() + this.offset.Load())
	return logical-display > this.config.Lead
}

/*
 * Post a frame with the current state of every target.
 */
func (this *Processor) post() {
	values := this.array.Snapshots(make([]lifecycle.Snapshot, 0, len(this.names)))

	f := Frame{
		Time:      this.logicalTime(this.frame),
		Samples:   this.frame,
		Level:     this.level.Dev.V,
		Reference: this.config.Reference,
		Names:     this.names,
		Values:    values,
	}

	this.mailbox.Post(&f)
}

/*
 * Process a block of non-interleaved audio, one slice per channel.
 *
 * Channels are averaged into one signal. Returns false when the block was
 * skipped, either because it was empty or because the stream runs ahead of
 * the display clock.
 */
func (this *Processor) Process(in [][]float32) bool {
	numChannels := len(in)

	/*
	 * Nothing to do without audio.
	 */
	if numChannels == 0 || len(in[0]) == 0 {
		return false
	}

	n := len(in[0])
	this.sampleN.Add(int64(n))

	/*
	 * Skip the block if the stream runs ahead of the display.
	 */
	if this.ahead() {
		return false
	}

	gain := this.config.InputGain
	window := this.interval
	scale := 1.0 / float64(numChannels)

	/*
	 * Average channels, then feed every sample with its index as time.
	 */
	for i := 0; i < n; i++ {
		sum := 0.0

		for _, channel := range in {

			/*
			 * Short channels contribute silence.
			 */
			if i < len(channel) {
				sum += float64(channel[i])
			}

		}

		sample := sum * scale
		this.level.Sample(sample, window)
		sample *= gain

		/*
		 * Remove rumble below the lowest target.
		 */
		if this.highpass != nil {
			sample = this.highpass.ProcessSample(sample)
		}

		this.array.Sample(float64(this.frame), sample)
		this.frame++
	}

	this.nextUpdate -= float64(n)

	/*
	 * Post a frame once per update interval.
	 */
	if this.nextUpdate < 0 {
		this.nextUpdate += this.interval
		this.post()
	}

	return true
}

/*
 * Updates the display clock.
 *
 * The first call aligns the display clock with the stream's logical time.
 */
func (this *Processor) SyncClock(t time.Duration) {

	/*
	 * Align on first contact.
	 */
	if !this.synced.Load() {
		logical := this.logicalTime(this.sampleN.Load())
		this.offset.Store(int64(logical - t))
		this.clock.Store(int64(t))
		this.synced.Store(true)
	} else {
		this.clock.Store(int64(t))
	}

}

/*
 * Moves every target to a new A4 reference.
 *
 * Must be called from the goroutine calling Process.
 */
func (this *Processor) Retune(reference float64) error {
	err := this.array.Retune(reference)

	/*
	 * Keep the configuration in step with the array.
	 */
	if err == nil {
		this.config.Reference = reference
	}

	return err
}

/*
 * Returns the mailbox frames are posted to.
 */
func (this *Processor) Mailbox() *Mailbox {
	return this.mailbox
}

/*
 * Returns the target names in frame order.
 */
func (this *Processor) Names() []string {
	return this.names
}

/*
 * Returns the sensor array driven by the processor.
 */
func (this *Processor) Array() *instrument.Array {
	return this.array
}

/*
 * Returns the configuration of the processor.
 */
func (this *Processor) Config() Config {
	return this.config
}

/*
 * Returns the number of samples fed to the sensors so far.
 */
func (this *Processor) Frames() int64 {
	return this.frame
}

/*
 * Creates a real-time tuner from a configuration.
 */
func Create(config Config) (*Processor, error) {
	array, err := config.NewArray()

	/*
	 * Check if the sensor array could be built.
	 */
	if err != nil {
		return nil, err
	}

	var highpass *biquad.Chain

	/*
	 * A cutoff of zero disables the filter.
	 */
	if config.HighpassHz > 0 {
		coeffs := design.ButterworthHP(config.HighpassHz, HIGHPASS_ORDER, config.SampleRate)
		highpass = biquad.NewChain(coeffs)
	}

	interval := math.Max(config.IntervalInFrames(), 1.0)

	/*
	 * Create data structure for a real-time tuner.
	 */
	p := Processor{
		config:   config,
		array:    array,
		highpass: highpass,
		mailbox:  CreateMailbox(),
		names:    array.Names(),
		interval: interval,
	}

	return &p, nil
}
