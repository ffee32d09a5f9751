// Package tau measures angles in turns instead of radians, which keeps
// period arithmetic free of 2π factors. A tau angle lies in [-0.5, 0.5).
package tau

import "math"

// RadianCycle is one full turn in radians.
const RadianCycle = 2 * math.Pi

// FromRadians maps a radian angle onto [-0.5, 0.5).
func FromRadians(rad float64) float64 {
	t := math.Mod(rad/RadianCycle+0.5, 1)
	if t < 0 {
		t++
	}
	return t - 0.5
}

// ToRadians converts turns to radians.
func ToRadians(t float64) float64 {
	return t * RadianCycle
}

// Rect returns the phasor of magnitude mag at angle t turns.
func Rect(t, mag float64) Complex {
	s, c := math.Sincos(ToRadians(t))
	return Complex{Re: c * mag, Im: s * mag}
}

// Unit returns the unit phasor at angle t turns.
func Unit(t float64) Complex {
	return Rect(t, 1)
}

// Polar returns magnitude and angle (turns) of c.
func Polar(c Complex) (float64, float64) {
	return c.Abs(), FromRadians(math.Atan2(c.Im, c.Re))
}

// Phase returns the angle of c in turns.
func Phase(c Complex) float64 {
	return FromRadians(math.Atan2(c.Im, c.Re))
}
