// Package sensor builds frequency detectors out of recept correlators.
//
// A PeriodSensor watches one period at one smoothing window. A ScaleSpace
// watches one period at three windows and folds their magnitudes into a
// lifecycle. Monochord rotates the detection of one sensor onto another.
//
// Time is measured in samples throughout; periods are samples per cycle.
package sensor

import (
	"fmt"
	"math"

	"github.com/metalblueberry/receptor/pkg/lifecycle"
	"github.com/metalblueberry/receptor/pkg/recept"
	"github.com/metalblueberry/receptor/pkg/tau"
)

// PeriodSensor correlates its input against a single period and tracks the
// angular velocity of the resulting phasor.
type PeriodSensor struct {
	// Cval is the phasor of the current tick, including any coupled
	// contributions added with Add.
	Cval tau.Complex
	// R is the magnitude of Cval.
	R float64
	// PhiT is the phase velocity of the raw phasor in turns per sample.
	PhiT float64
	// AvgPhiT is PhiT smoothed over one period.
	AvgPhiT float64
	// InstantFrequency is 1/period - PhiT, in cycles per sample.
	InstantFrequency float64

	smoother recept.TimeSmoothing
	raw      tau.Complex
	delta    recept.PhaseDelta
	avgPhiT  recept.Smoother
	cycles   float64
}

// NewPeriodSensor returns a sensor for period whose smoothing window is
// period*windowFactor samples.
func NewPeriodSensor(period, phase, windowFactor float64) PeriodSensor {
	return PeriodSensor{
		smoother: recept.NewTimeSmoothing(period, phase, windowFactor),
	}
}

// Period returns the tuned period in samples.
func (ps *PeriodSensor) Period() float64 {
	return ps.smoother.Period
}

// Phase returns the reference phase in samples.
func (ps *PeriodSensor) Phase() float64 {
	return ps.smoother.Phase
}

// WindowFactor returns the smoothing window in periods.
func (ps *PeriodSensor) WindowFactor() float64 {
	return ps.smoother.WindowFactor
}

// Sample correlates value at time and returns the new raw phasor. Any
// contribution added with Add during the previous tick is discarded.
func (ps *PeriodSensor) Sample(time, value float64) tau.Complex {
	res := ps.smoother.Sample(time, value)
	ps.raw = res.Value
	ps.Cval = res.Value
	ps.R = ps.Cval.Abs()

	ps.PhiT = 0
	if d, ok := ps.delta.Sample(ps.raw); ok && ps.R >= lifecycle.Epsilon {
		ps.PhiT = tau.Phase(d)
	}
	period := ps.smoother.Period
	ps.AvgPhiT = ps.avgPhiT.Sample(ps.PhiT, period)
	ps.InstantFrequency = 1/period - ps.PhiT

	// Silence holds the count.
	if ps.R >= lifecycle.Epsilon {
		ps.cycles += ps.InstantFrequency
	}
	return ps.raw
}

// Oscillation returns the unwrapped phase of the detected oscillation in
// cycles. It advances by one cycle per period of the tone while one is
// present and holds during silence.
func (ps *PeriodSensor) Oscillation() float64 {
	return ps.cycles
}

// Add superimposes c onto the phasor of the current tick and recomputes R.
// The smoother itself is not affected.
func (ps *PeriodSensor) Add(c tau.Complex) {
	ps.Cval = ps.Cval.Add(c)
	ps.R = ps.Cval.Abs()
}

// Raw returns the phasor of the current tick before any Add.
func (ps *PeriodSensor) Raw() tau.Complex {
	return ps.raw
}

// AvgFrequency is InstantFrequency computed from AvgPhiT, in cycles per
// sample.
func (ps *PeriodSensor) AvgFrequency() float64 {
	return 1/ps.smoother.Period - ps.AvgPhiT
}

// AvgPeriod is the period matching AvgFrequency, in samples. It falls back
// to the tuned period when the averaged frequency is not positive.
func (ps *PeriodSensor) AvgPeriod() float64 {
	f := ps.AvgFrequency()
	if !(f > 0) || math.IsInf(1/f, 0) {
		return ps.smoother.Period
	}
	return 1 / f
}

// Follow retunes the sensor to the averaged period heard by leader.
func (ps *PeriodSensor) Follow(leader *PeriodSensor) {
	ps.UpdatePeriod(leader.AvgPeriod())
}

// Glissando returns the smoothed rate of retuning.
func (ps *PeriodSensor) Glissando() float64 {
	return ps.smoother.Glissando()
}

// UpdatePeriod retunes the sensor keeping its reference oscillator
// continuous.
func (ps *PeriodSensor) UpdatePeriod(period float64) {
	ps.smoother.Retune(period)
}

func (ps PeriodSensor) String() string {
	return fmt.Sprintf("{period=%.3f r=%.4f phi_t=%.5f}", ps.smoother.Period, ps.R, ps.PhiT)
}
