// Package bar renders scalar values as fixed-width Unicode gauges.
//
// Every gauge is exactly width runes wide (signed gauges 2*width+1). Inputs
// that cannot be drawn, such as non-finite values or a non-positive scale,
// give a blank gauge of the same width.
package bar

import (
	"math"
	"strings"
)

const DefaultWidth = 14

const fill = "█"

// eighths of a cell, from empty to seven eighths
var remainders = [8]string{" ", "▏", "▎", "▍", "▌", "▋", "▊", "▉"}

func blank(width int) string {
	return strings.Repeat(" ", max(width, 0))
}

func finite(v ...float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Bar draws n on a linear scale from 0 to d. A left gauge fills from the
// right edge.
func Bar(n, d float64, width int, left bool) string {
	if width <= 0 {
		return ""
	}
	if !finite(n, d) || d <= 0 {
		return blank(width)
	}

	val := math.Max(0, math.Min(n, d))
	filled := val
	if left {
		filled = d - val
	}
	sn := filled * float64(width) / d
	si := int(math.Floor(sn))
	if si >= width {
		si = width - 1
	}
	sr := math.Max(0, math.Min(sn-float64(si), 1))

	var b strings.Builder
	if left {
		b.WriteString(strings.Repeat(" ", si))
		sr = 1 - sr
	} else {
		b.WriteString(strings.Repeat(fill, si))
	}
	if idx := int(sr * 8); idx < len(remainders) {
		b.WriteString(remainders[idx])
	} else {
		b.WriteString(fill)
	}
	if left {
		b.WriteString(strings.Repeat(fill, width-si-1))
	} else {
		b.WriteString(strings.Repeat(" ", width-si-1))
	}
	return b.String()
}

// Log draws n on a natural log scale up to d. Values below 1/d are pinned
// to the bottom of the scale.
func Log(n, d float64, width int, left bool) string {
	if !finite(n, d) || d <= 1 {
		return blank(width)
	}
	n2 := 0.0
	if n > 0 {
		n2 = math.Log(n)
	}
	d2 := math.Log(d)
	if n2 < -d2 {
		n2 = -d2
	}
	return Bar(n2, d2, width, left)
}

// Logp1 draws n on a log(1+x) scale up to d. A negative n draws an empty
// gauge; SignedLogp1 draws negatives on the other side of a center mark.
func Logp1(n, d float64, width int, left bool) string {
	if !finite(n, d) || d <= 0 {
		return blank(width)
	}
	n2 := math.Log1p(n)
	if n < 0 {
		n2 = -math.Log1p(-n)
	}
	return Bar(n2, math.Log1p(d), width, left)
}

// Signed draws |n| to the right of a center mark when positive and to its
// left when negative.
func Signed(n, d float64, width int) string {
	if n >= 0 {
		return blank(width) + "|" + Bar(n, d, width, false)
	}
	return Bar(-n, d, width, true) + "|" + blank(width)
}

// SignedLogp1 is Signed on a log(1+x) scale.
func SignedLogp1(n, d float64, width int) string {
	switch {
	case n > 0:
		return blank(width) + "|" + Logp1(n, d, width, false)
	case n < 0:
		return Logp1(-n, d, width, true) + "|" + blank(width)
	default:
		return blank(width) + "|" + blank(width)
	}
}
