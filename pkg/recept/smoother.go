// Package recept holds the infinite impulse response building blocks of the
// tracker: exponential smoothers, one-sample-lag difference operators and the
// complex-exponential correlator.
//
// Windows are time constants measured in samples. A window of 1 makes a
// smoother follow its input exactly; larger windows move more slowly. A
// window of zero is a caller error and is not checked.
package recept

import (
	"fmt"

	"github.com/metalblueberry/receptor/pkg/tau"
)

// Smoother is a single-pole low-pass filter over a scalar whose window is
// supplied on every call.
type Smoother struct {
	V float64
}

// NewSmoother returns a smoother starting at initial.
func NewSmoother(initial float64) Smoother {
	return Smoother{V: initial}
}

// Sample moves the running value towards value by 1/window of the gap.
func (s *Smoother) Sample(value, window float64) float64 {
	s.V += (value - s.V) / window
	return s.V
}

func (s Smoother) String() string {
	return fmt.Sprintf("%.3f", s.V)
}

// PhasorSmoother is Smoother over a Complex value.
type PhasorSmoother struct {
	V tau.Complex
}

// Sample moves the running phasor towards value by 1/window of the gap.
func (s *PhasorSmoother) Sample(value tau.Complex, window float64) tau.Complex {
	s.V = s.V.Add(value.Sub(s.V).Scale(1 / window))
	return s.V
}

func (s PhasorSmoother) String() string {
	return s.V.String()
}

// Smoothing is a Smoother bound to a fixed window.
type Smoothing struct {
	Window float64
	v      Smoother
}

// NewSmoothing returns a fixed-window smoother.
func NewSmoothing(window, initial float64) Smoothing {
	return Smoothing{Window: window, v: NewSmoother(initial)}
}

func (s *Smoothing) Sample(value float64) float64 {
	return s.v.Sample(value, s.Window)
}

// Value returns the current smoothed value.
func (s *Smoothing) Value() float64 {
	return s.v.V
}

func (s Smoothing) String() string {
	return fmt.Sprintf("{ave=%s, window=%.3f}", s.v, s.Window)
}
