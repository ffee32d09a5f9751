package sensor

import (
	"math"

	"github.com/metalblueberry/receptor/pkg/lifecycle"
)

// DefaultScaleFactor is the ratio between neighbouring smoothing windows of
// a standalone ScaleSpace.
const DefaultScaleFactor = 1.75

const (
	Fast = iota
	Medium
	Slow
	scales
)

// ScaleSpace watches one period with three PeriodSensors whose windows are
// periodFactor*scaleFactor^-3, ^-2 and ^-1 periods (Fast, Medium, Slow).
// The three magnitudes drive the Fundamental lifecycle, whose output in
// turn drives the Beat lifecycle.
//
// Sensors run from the narrowest window to the widest, the reverse of a
// widest-first layout. Against one, the Fundamental differences and its
// rotation flip sign.
//
// A tick is SampleSensors, then any Superimpose calls, then SampleLifecycle.
// Sample runs the tick without couplings.
type ScaleSpace struct {
	Period         float64
	Phase          float64
	ResponsePeriod float64
	ScaleFactor    float64
	PeriodFactor   float64
	SampleRate     float64

	Sensors     [scales]PeriodSensor
	Fundamental lifecycle.State
	Beat        lifecycle.State

	// InstantFrequency is in Hz, from the fast sensor's averaged phase
	// velocity.
	InstantFrequency float64
}

// NewScaleSpace returns a sensor for period. responsePeriod is the smoothing
// window of the magnitude differences, in samples.
func NewScaleSpace(period, phase, responsePeriod, scaleFactor, periodFactor, sampleRate float64) *ScaleSpace {
	s := &ScaleSpace{
		Period:         period,
		Phase:          phase,
		ResponsePeriod: responsePeriod,
		ScaleFactor:    scaleFactor,
		PeriodFactor:   periodFactor,
		SampleRate:     sampleRate,
		Fundamental:    lifecycle.NewDerived(period, responsePeriod),
		Beat:           lifecycle.NewIterated(period),
	}
	for i := range s.Sensors {
		wf := periodFactor * math.Pow(scaleFactor, float64(i-scales))
		s.Sensors[i] = NewPeriodSensor(period, phase, wf)
	}
	return s
}

// Frequency returns the tuned frequency in Hz.
func (s *ScaleSpace) Frequency() float64 {
	return s.SampleRate / s.Period
}

// SampleSensors runs the raw correlators for one sample.
func (s *ScaleSpace) SampleSensors(time, value float64) {
	for i := range s.Sensors {
		s.Sensors[i].Sample(time, value)
	}
}

// Superimpose adds the raw phasors of source, rotated by mc, onto the
// matching sensors of s for the current tick.
func (s *ScaleSpace) Superimpose(source *ScaleSpace, mc Monochord) {
	for i := range s.Sensors {
		s.Sensors[i].Add(mc.Rotate(source.Sensors[i].Raw()))
	}
}

// SampleLifecycle finishes the tick from the accumulated phasors.
func (s *ScaleSpace) SampleLifecycle() {
	r := s.Magnitudes()
	s.Fundamental.SampleDerived(r[Fast], r[Medium], r[Slow])
	s.Beat.SampleIterated(s.Fundamental.Lifecycle)
	s.InstantFrequency = (1/s.Period - s.Sensors[Fast].AvgPhiT) * s.SampleRate
}

// Sample runs a full tick with no couplings.
func (s *ScaleSpace) Sample(time, value float64) {
	s.SampleSensors(time, value)
	s.SampleLifecycle()
}

// Magnitudes returns the magnitude of every sensor, fastest first.
func (s *ScaleSpace) Magnitudes() [scales]float64 {
	var r [scales]float64
	for i := range s.Sensors {
		r[i] = s.Sensors[i].Cval.Abs()
		s.Sensors[i].R = r[i]
	}
	return r
}

// Snapshot returns the display record of the fundamental lifecycle.
func (s *ScaleSpace) Snapshot() lifecycle.Snapshot {
	snap := s.Fundamental.Snapshot()
	snap.InstantFrequency = s.InstantFrequency
	snap.Magnitude = s.Sensors[Fast].R
	snap.Beat = s.Beat.Lifecycle
	snap.Oscillation = s.Sensors[Fast].Oscillation()
	return snap
}

// AvgPeriod is the averaged period heard by the fast sensor, in samples.
func (s *ScaleSpace) AvgPeriod() float64 {
	return s.Sensors[Fast].AvgPeriod()
}

// Follow retunes s to the period leader currently hears.
func (s *ScaleSpace) Follow(leader *ScaleSpace) {
	s.UpdatePeriod(leader.AvgPeriod())
}

// UpdatePeriod retunes every sensor to period.
func (s *ScaleSpace) UpdatePeriod(period float64) {
	for i := range s.Sensors {
		s.Sensors[i].UpdatePeriod(period)
	}
	s.Phase = s.Sensors[Fast].Phase()
	s.Period = period
	s.Fundamental.MaxR = period
	s.Beat.MaxR = period
}
