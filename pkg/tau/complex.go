package tau

import (
	"fmt"
	"math"
)

// Complex is a minimal two-dimensional value used as the algebra for phasor
// math. Every operation returns a new value.
type Complex struct {
	Re float64
	Im float64
}

// Zero is the additive identity.
var Zero = Complex{}

// C builds a Complex from its rectangular parts.
func C(re, im float64) Complex {
	return Complex{Re: re, Im: im}
}

// Real lifts a scalar onto the real axis.
func Real(v float64) Complex {
	return Complex{Re: v}
}

// FromComplex128 converts a builtin complex value.
func FromComplex128(c complex128) Complex {
	return Complex{Re: real(c), Im: imag(c)}
}

// Complex128 converts to the builtin complex type.
func (c Complex) Complex128() complex128 {
	return complex(c.Re, c.Im)
}

func (c Complex) Add(o Complex) Complex {
	return Complex{Re: c.Re + o.Re, Im: c.Im + o.Im}
}

func (c Complex) Sub(o Complex) Complex {
	return Complex{Re: c.Re - o.Re, Im: c.Im - o.Im}
}

func (c Complex) Mul(o Complex) Complex {
	return Complex{
		Re: c.Re*o.Re - c.Im*o.Im,
		Im: c.Re*o.Im + c.Im*o.Re,
	}
}

// Scale multiplies both parts by a scalar.
func (c Complex) Scale(k float64) Complex {
	return Complex{Re: c.Re * k, Im: c.Im * k}
}

// Div divides c by o. A zero divisor yields Zero instead of Inf or NaN.
func (c Complex) Div(o Complex) Complex {
	denom := o.Re*o.Re + o.Im*o.Im
	if denom == 0 {
		return Zero
	}
	return Complex{
		Re: (c.Re*o.Re + c.Im*o.Im) / denom,
		Im: (c.Im*o.Re - c.Re*o.Im) / denom,
	}
}

// Conj returns the complex conjugate.
func (c Complex) Conj() Complex {
	return Complex{Re: c.Re, Im: -c.Im}
}

// Abs returns the magnitude.
func (c Complex) Abs() float64 {
	return math.Hypot(c.Re, c.Im)
}

// IsZero reports whether both parts are exactly zero.
func (c Complex) IsZero() bool {
	return c.Re == 0 && c.Im == 0
}

func (c Complex) String() string {
	return fmt.Sprintf("%.3f%+.3fj", c.Re, c.Im)
}
