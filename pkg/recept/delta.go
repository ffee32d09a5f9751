package recept

import "github.com/metalblueberry/receptor/pkg/tau"

// Delta is the first difference of a scalar sequence.
type Delta struct {
	prior    float64
	hasPrior bool
}

// Sample returns value minus the previous value. The first call has no
// previous value and reports ok == false.
func (d *Delta) Sample(value float64) (delta float64, ok bool) {
	if d.hasPrior {
		delta, ok = value-d.prior, true
	}
	d.prior = value
	d.hasPrior = true
	return delta, ok
}

// Reset forgets the previous value.
func (d *Delta) Reset() {
	*d = Delta{}
}

// PhaseDelta is the angular difference of a phasor sequence, computed by
// dividing each phasor by its predecessor so the result never needs
// unwrapping.
type PhaseDelta struct {
	prior    tau.Complex
	hasPrior bool
}

// Sample returns value / previous. A zero predecessor gives a zero delta.
// The first call reports ok == false.
func (d *PhaseDelta) Sample(value tau.Complex) (delta tau.Complex, ok bool) {
	if d.hasPrior {
		delta, ok = value.Div(d.prior), true
	}
	d.prior = value
	d.hasPrior = true
	return delta, ok
}

// Prior returns the last sampled phasor.
func (d *PhaseDelta) Prior() tau.Complex {
	return d.prior
}
