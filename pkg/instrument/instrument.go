// Package instrument owns one ScaleSpace sensor per target note of an
// instrument and the static monochord couplings between them.
package instrument

import (
	"errors"
	"fmt"
	"math"

	"github.com/metalblueberry/receptor/pkg/lifecycle"
	"github.com/metalblueberry/receptor/pkg/pitch"
	"github.com/metalblueberry/receptor/pkg/sensor"
)

var (
	ErrSampleRate = errors.New("instrument: sample rate must be positive")
	ErrNoTargets  = errors.New("instrument: no targets")
	ErrFrequency  = errors.New("instrument: target frequency out of range")
	ErrBandwidth  = errors.New("instrument: bandwidth must be positive")
	ErrCoupling   = errors.New("instrument: coupling index out of range")
	ErrReference  = errors.New("instrument: reference must be positive")
	ErrFollow     = errors.New("instrument: arrays differ in size")
)

// CycleArea is the area under one cycle of a unit exponential decay,
// 1/(1-e^-1). It is the default ratio between smoothing windows.
var CycleArea = 1 / (1 - math.Exp(-1))

// Options tune the sensitivity of every sensor in an Array.
type Options struct {
	// OctaveBandwidth is the detection bandwidth as a fraction of an octave;
	// 12 is one semitone.
	OctaveBandwidth float64
	// BandwidthFactor scales every derived smoothing window.
	BandwidthFactor float64
	// ResponseRate is the rate, in Hz, of the lifecycle difference smoothing.
	ResponseRate float64
	// ScaleFactor is the ratio between the fast, medium and slow windows.
	ScaleFactor float64
	// Reference is the frequency of A4 in Hz.
	Reference float64
}

// DefaultOptions returns semitone bandwidth at A4 = 440 Hz.
func DefaultOptions() Options {
	return Options{
		OctaveBandwidth: 12,
		BandwidthFactor: 1,
		ResponseRate:    60,
		ScaleFactor:     CycleArea,
		Reference:       pitch.A4,
	}
}

// PeriodBandwidth is the window, in periods, that resolves one
// OctaveBandwidth step.
func (o Options) PeriodBandwidth() float64 {
	return CycleArea / (math.Pow(2, 1/o.OctaveBandwidth) - 1)
}

func (o Options) validate() error {
	if !(o.OctaveBandwidth > 0) || !(o.BandwidthFactor > 0) || !(o.ResponseRate > 0) || !(o.ScaleFactor > 0) {
		return fmt.Errorf("%w: %+v", ErrBandwidth, o)
	}
	if !(o.Reference > 0) {
		return fmt.Errorf("%w: %v", ErrReference, o.Reference)
	}
	return nil
}

// Target is one note watched by an Array.
type Target struct {
	Name      string
	Frequency float64
}

// Coupling adds the detection of sensor Source onto sensor Target, rotated
// by Monochord, on every tick.
type Coupling struct {
	Target    int
	Source    int
	Ratio     float64
	Monochord sensor.Monochord
}

// Array is a flat set of ScaleSpace sensors driven by one sample stream.
// It is not safe for concurrent use.
type Array struct {
	SampleRate float64
	Options    Options

	targets   []Target
	sensors   []*sensor.ScaleSpace
	couplings []Coupling
}

// New builds one sensor per target, in order, with no couplings.
func New(sampleRate float64, targets []Target, opts Options) (*Array, error) {
	if !(sampleRate > 0) {
		return nil, fmt.Errorf("%w: %v", ErrSampleRate, sampleRate)
	}
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	nyquist := sampleRate / 2
	resp := sampleRate / opts.ResponseRate
	periodFactor := opts.PeriodBandwidth() * opts.BandwidthFactor

	a := &Array{
		SampleRate: sampleRate,
		Options:    opts,
		targets:    make([]Target, len(targets)),
		sensors:    make([]*sensor.ScaleSpace, len(targets)),
	}
	copy(a.targets, targets)
	for i, t := range targets {
		if !(t.Frequency > 0) || t.Frequency >= nyquist {
			return nil, fmt.Errorf("%w: %s at %v Hz, sample rate %v", ErrFrequency, t.Name, t.Frequency, sampleRate)
		}
		a.sensors[i] = sensor.NewScaleSpace(sampleRate/t.Frequency, 0, resp, opts.ScaleFactor, periodFactor, sampleRate)
	}
	return a, nil
}

// Couple adds the detection of source onto target at the given frequency
// ratio.
func (a *Array) Couple(target, source int, ratio float64) error {
	if target < 0 || target >= len(a.sensors) || source < 0 || source >= len(a.sensors) || target == source {
		return fmt.Errorf("%w: %d <- %d of %d", ErrCoupling, target, source, len(a.sensors))
	}
	a.couplings = append(a.couplings, Coupling{
		Target:    target,
		Source:    source,
		Ratio:     ratio,
		Monochord: sensor.NewMonochord(a.sensors[source].Period, a.sensors[target].Period, ratio),
	})
	return nil
}

// Sample feeds one sample to every sensor. All raw correlators run first,
// then the couplings, then the lifecycles, so every coupling sees the
// source's phasor of this tick.
func (a *Array) Sample(time, value float64) {
	for _, s := range a.sensors {
		s.SampleSensors(time, value)
	}
	for _, c := range a.couplings {
		a.sensors[c.Target].Superimpose(a.sensors[c.Source], c.Monochord)
	}
	for _, s := range a.sensors {
		s.SampleLifecycle()
	}
}

// Len returns the number of targets.
func (a *Array) Len() int {
	return len(a.sensors)
}

// Names returns the target names in construction order.
func (a *Array) Names() []string {
	names := make([]string, len(a.targets))
	for i, t := range a.targets {
		names[i] = t.Name
	}
	return names
}

// Targets returns a copy of the targets.
func (a *Array) Targets() []Target {
	return append([]Target(nil), a.targets...)
}

// Sensor returns the sensor of target i.
func (a *Array) Sensor(i int) *sensor.ScaleSpace {
	return a.sensors[i]
}

// Couplings returns a copy of the coupling table.
func (a *Array) Couplings() []Coupling {
	return append([]Coupling(nil), a.couplings...)
}

// Values returns the snapshot of every target keyed by name.
func (a *Array) Values() map[string]lifecycle.Snapshot {
	m := make(map[string]lifecycle.Snapshot, len(a.sensors))
	for i, s := range a.sensors {
		m[a.targets[i].Name] = s.Snapshot()
	}
	return m
}

// Snapshots appends the snapshot of every target, in construction order,
// to dst[:0].
func (a *Array) Snapshots(dst []lifecycle.Snapshot) []lifecycle.Snapshot {
	dst = dst[:0]
	for _, s := range a.sensors {
		dst = append(dst, s.Snapshot())
	}
	return dst
}

// Retune moves every target to a new A4 reference. Sensors keep their state
// and glide to the new periods; monochords are rebuilt.
func (a *Array) Retune(reference float64) error {
	if !(reference > 0) {
		return fmt.Errorf("%w: %v", ErrReference, reference)
	}
	k := reference / a.Options.Reference
	nyquist := a.SampleRate / 2
	for _, t := range a.targets {
		if t.Frequency*k >= nyquist {
			return fmt.Errorf("%w: %s at %v Hz, sample rate %v", ErrFrequency, t.Name, t.Frequency*k, a.SampleRate)
		}
	}

	for i := range a.targets {
		a.targets[i].Frequency *= k
		a.sensors[i].UpdatePeriod(a.SampleRate / a.targets[i].Frequency)
	}
	a.rebuildMonochords()
	a.Options.Reference = reference
	return nil
}

// Follow retunes every sensor of a to the period the matching sensor of
// leader hears, so a second array can track what the first one detects.
// Estimates at or above Nyquist leave the sensor where it is.
func (a *Array) Follow(leader *Array) error {
	if leader.Len() != a.Len() {
		return fmt.Errorf("%w: %d targets following %d", ErrFollow, a.Len(), leader.Len())
	}
	for i, s := range a.sensors {
		period := leader.sensors[i].AvgPeriod()
		if !(period > 2) {
			continue
		}
		s.UpdatePeriod(period)
		a.targets[i].Frequency = a.SampleRate / period
	}
	a.rebuildMonochords()
	return nil
}

func (a *Array) rebuildMonochords() {
	for i, c := range a.couplings {
		a.couplings[i].Monochord = sensor.NewMonochord(a.sensors[c.Source].Period, a.sensors[c.Target].Period, c.Ratio)
	}
}
