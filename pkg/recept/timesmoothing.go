package recept

import "github.com/metalblueberry/receptor/pkg/tau"

// Trigger selects when a TimeSmoothing folds a new sample into its phasor.
type Trigger int

const (
	// Continuous correlates every sample.
	Continuous Trigger = iota
	// ApexTriggered correlates only at turning points of the input.
	ApexTriggered
)

func (t Trigger) String() string {
	switch t {
	case Continuous:
		return "continuous"
	case ApexTriggered:
		return "apex"
	default:
		return "unknown"
	}
}

// TimeResult is the outcome of one TimeSmoothing sample.
type TimeResult struct {
	// Elapsed is the time since the previous update; 1 for Continuous.
	Elapsed float64
	// Value is the smoothed phasor.
	Value tau.Complex
	// Glissando is the smoothed rate of retuning.
	Glissando float64
	// Updated is false when an apex-triggered sample was not an apex.
	Updated bool
}

// TimeSmoothing correlates a real signal against a reference oscillator of a
// given period and phase and smooths the product into a phasor. Its magnitude
// measures how strongly the period is present, its angle the phase offset.
//
// The window of the smoother is Period*WindowFactor samples. Period is
// expected to be positive.
type TimeSmoothing struct {
	Period       float64
	Phase        float64
	WindowFactor float64
	Trigger      Trigger

	v         PhasorSmoother
	glissando Smoother
	apex      TimeApex
}

// NewTimeSmoothing returns a continuous correlator.
func NewTimeSmoothing(period, phase, windowFactor float64) TimeSmoothing {
	return TimeSmoothing{
		Period:       period,
		Phase:        phase,
		WindowFactor: windowFactor,
		Trigger:      Continuous,
		apex:         NewTimeApex(),
	}
}

// NewApexTimeSmoothing returns a correlator that only samples at turning
// points of its input.
func NewApexTimeSmoothing(period, phase, windowFactor float64) TimeSmoothing {
	ts := NewTimeSmoothing(period, phase, windowFactor)
	ts.Trigger = ApexTriggered
	return ts
}

// Sample correlates value at time against the reference oscillator.
func (ts *TimeSmoothing) Sample(time, value float64) TimeResult {
	res := TimeResult{
		Value:     ts.v.V,
		Glissando: ts.glissando.V,
		Elapsed:   1,
	}
	if ts.Trigger == ApexTriggered {
		elapsed, ok := ts.apex.Sample(time, value)
		if !ok {
			res.Elapsed = 0
			return res
		}
		res.Elapsed = elapsed
	}
	ref := tau.Unit((time + ts.Phase) / ts.Period)
	res.Value = ts.v.Sample(ref.Scale(value), ts.Period*ts.WindowFactor)
	res.Updated = true
	return res
}

// Retune moves the reference oscillator to a new period. The phase is
// rescaled so the oscillator stays continuous, and the change is folded
// into the glissando smoother, whose new value is returned.
func (ts *TimeSmoothing) Retune(period float64) float64 {
	g := ts.glissando.Sample(period-ts.Period, period*ts.WindowFactor)
	ts.Phase = ts.Phase / ts.Period * period
	ts.Period = period
	return g
}

// Value returns the current phasor.
func (ts *TimeSmoothing) Value() tau.Complex {
	return ts.v.V
}

// Glissando returns the smoothed rate of retuning.
func (ts *TimeSmoothing) Glissando() float64 {
	return ts.glissando.V
}
