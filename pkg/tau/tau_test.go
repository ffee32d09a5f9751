package tau

import (
	"math"
	"testing"
)

func TestDivByZeroIsZero(t *testing.T) {
	for _, a := range []Complex{Zero, C(1, 0), C(-3, 4), C(1e300, -1e300), C(math.SmallestNonzeroFloat64, 0)} {
		got := a.Div(Zero)
		if got != Zero {
			t.Fatalf("%v / 0 = %v, want 0", a, got)
		}
		if math.IsNaN(got.Re) || math.IsNaN(got.Im) {
			t.Fatalf("%v / 0 produced NaN", a)
		}
	}
}

func TestArithmetic(t *testing.T) {
	a := C(1, 2)
	b := C(3, -1)

	tests := []struct {
		name string
		got  Complex
		want complex128
	}{
		{"add", a.Add(b), complex(1, 2) + complex(3, -1)},
		{"sub", a.Sub(b), complex(1, 2) - complex(3, -1)},
		{"mul", a.Mul(b), complex(1, 2) * complex(3, -1)},
		{"div", a.Div(b), complex(1, 2) / complex(3, -1)},
		{"conj", a.Conj(), complex(1, -2)},
		{"scale", a.Scale(2), complex(2, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := FromComplex128(tt.want)
			if math.Abs(tt.got.Re-want.Re) > 1e-12 || math.Abs(tt.got.Im-want.Im) > 1e-12 {
				t.Fatalf("got %v, want %v", tt.got, want)
			}
		})
	}

	if got := C(3, 4).Abs(); got != 5 {
		t.Fatalf("abs = %v, want 5", got)
	}
}

func TestFromRadiansRange(t *testing.T) {
	for rad := -4 * math.Pi; rad <= 4*math.Pi; rad += 0.01 {
		got := FromRadians(rad)
		if got < -0.5 || got >= 0.5 {
			t.Fatalf("FromRadians(%v) = %v out of [-0.5, 0.5)", rad, got)
		}
	}
	if got := FromRadians(math.Pi); got != -0.5 {
		t.Fatalf("FromRadians(pi) = %v, want -0.5", got)
	}
}

func TestRectPolarRoundTrip(t *testing.T) {
	for _, tc := range []struct{ angle, mag float64 }{
		{0, 1}, {0.25, 2}, {-0.25, 0.5}, {0.4, 3}, {-0.5, 1},
	} {
		r, phi := Polar(Rect(tc.angle, tc.mag))
		if math.Abs(r-tc.mag) > 1e-12 {
			t.Fatalf("mag = %v, want %v", r, tc.mag)
		}
		if math.Abs(phi-tc.angle) > 1e-12 {
			t.Fatalf("angle = %v, want %v", phi, tc.angle)
		}
	}
}

func TestUnitQuarterTurn(t *testing.T) {
	u := Unit(0.25)
	if math.Abs(u.Re) > 1e-15 || math.Abs(u.Im-1) > 1e-15 {
		t.Fatalf("Unit(0.25) = %v, want j", u)
	}
}
