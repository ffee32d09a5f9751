// Package lifecycle turns a stream of phasors into a continuous
// energy/entropy state and an unwrapped cycle counter.
//
// A State counts full turns of its input phasor: whenever two successive
// angles differ by more than half a turn the angle has wrapped, and Cycle
// steps by one against the jump. Lifecycle = Cycle + Phi is then a continuous
// unwrapped phase. The caller must sample often enough that the true phase
// never advances by half a turn between samples.
//
// The input phasor is built in one of three ways, selected by Kind:
//
//	Direct    the phasor is supplied as is (Sample)
//	Derived   smoothed first and second differences of a magnitude triple (SampleDerived)
//	Iterated  raw first and second differences of a scalar (SampleIterated)
package lifecycle

import (
	"fmt"

	"github.com/metalblueberry/receptor/pkg/recept"
	"github.com/metalblueberry/receptor/pkg/tau"
)

// Epsilon is the magnitude below which a phasor's angle is treated as noise.
// Such samples never move Phi or Cycle.
const Epsilon = 1e-9

// Kind selects how the input phasor of a State is built and decomposed.
type Kind int

const (
	Direct Kind = iota
	Derived
	Iterated
)

func (k Kind) String() string {
	switch k {
	case Direct:
		return "direct"
	case Derived:
		return "derived"
	case Iterated:
		return "iterated"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// State is the lifecycle state machine.
type State struct {
	Kind Kind
	// MaxR is the reference scale consumers use to draw gauges.
	MaxR float64
	// ResponseFactor is the smoothing window of the Derived differences.
	ResponseFactor float64

	Cval tau.Complex
	// Entropy and Energy decompose Cval; see Sample for the mapping.
	Entropy float64
	Energy  float64
	// F is the free energy, Energy - Entropy.
	F float64
	// B is the bound energy, equal to Entropy.
	B float64

	R         float64
	Phi       float64
	Cycle     int
	Lifecycle float64

	// D and DD are the latest first and second differences; DAvg and DDAvg
	// their smoothed values (Derived only).
	D     float64
	DD    float64
	DAvg  float64
	DDAvg float64

	dAvg    recept.Smoother
	ddAvg   recept.Smoother
	dDelta  recept.Delta
	ddDelta recept.Delta
}

// NewDirect returns a State fed with raw phasors.
func NewDirect(maxR float64) State {
	return State{Kind: Direct, MaxR: maxR}
}

// NewDerived returns a State fed with magnitude triples whose differences are
// smoothed over responseFactor samples.
func NewDerived(maxR, responseFactor float64) State {
	return State{Kind: Derived, MaxR: maxR, ResponseFactor: responseFactor}
}

// NewIterated returns a State fed with a scalar signal.
func NewIterated(maxR float64) State {
	return State{Kind: Iterated, MaxR: maxR}
}

// Sample advances the state machine with a new phasor and returns Lifecycle.
//
// For Direct states the phasor is a raw correlation: Energy is its in-phase
// part, Entropy its quadrature part, so F = Re - Im. For Derived and Iterated
// states the phasor holds (first difference, second difference): Entropy is
// the real part and Energy the imaginary part, so F = Im - Re.
func (s *State) Sample(c tau.Complex) float64 {
	s.Cval = c
	if s.Kind == Direct {
		s.Energy = c.Re
		s.Entropy = c.Im
	} else {
		s.Entropy = c.Re
		s.Energy = c.Im
	}
	s.F = s.Energy - s.Entropy
	s.B = s.Entropy

	r, phi := tau.Polar(c)
	s.R = r
	if r < Epsilon {
		return s.Lifecycle
	}

	switch dphi := phi - s.Phi; {
	case dphi > 0.5:
		s.Cycle--
	case dphi < -0.5:
		s.Cycle++
	}
	s.Phi = phi
	s.Lifecycle = float64(s.Cycle) + s.Phi
	return s.Lifecycle
}

// SampleDerived feeds three magnitudes, ordered from the fastest to the
// slowest responding sensor. The first difference v1-v2 and the second
// difference (v1-v2)-(v2-v3) are smoothed and sampled as a phasor.
func (s *State) SampleDerived(v1, v2, v3 float64) float64 {
	d1 := v1 - v2
	d2 := v2 - v3
	s.D = d1
	s.DD = d1 - d2
	s.DAvg = s.dAvg.Sample(s.D, s.ResponseFactor)
	s.DDAvg = s.ddAvg.Sample(s.DD, s.ResponseFactor)
	return s.Sample(tau.C(s.DAvg, s.DDAvg))
}

// SampleIterated feeds one scalar; its unsmoothed first and second
// differences are sampled as a phasor. Missing differences count as zero.
func (s *State) SampleIterated(v float64) float64 {
	d, _ := s.dDelta.Sample(v)
	dd, _ := s.ddDelta.Sample(d)
	s.D = d
	s.DD = dd
	return s.Sample(tau.C(d, dd))
}

// Snapshot copies the exported record of the state.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		F:         s.F,
		Entropy:   s.Entropy,
		Energy:    s.Energy,
		B:         s.B,
		R:         s.R,
		Phi:       s.Phi,
		Cycle:     s.Cycle,
		Lifecycle: s.Lifecycle,
		MaxR:      s.MaxR,
	}
}

func (s State) String() string {
	return fmt.Sprintf("{%s F=%.3f entropy=%.3f energy=%.3f r=%.3f phi=%.3f cycle=%d}",
		s.Kind, s.F, s.Entropy, s.Energy, s.R, s.Phi, s.Cycle)
}
