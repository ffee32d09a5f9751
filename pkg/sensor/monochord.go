package sensor

import (
	"fmt"

	"github.com/metalblueberry/receptor/pkg/tau"
)

// Monochord transposes a phasor detected at a source period onto a target
// period related to it by ratio. It is immutable; retuning builds a new one.
type Monochord struct {
	sourcePeriod float64
	targetPeriod float64
	ratio        float64
	period       float64
	offset       float64
	value        tau.Complex
}

// NewMonochord builds the rotation for source and target periods.
// targetPeriod must not be zero.
func NewMonochord(sourcePeriod, targetPeriod, ratio float64) Monochord {
	period := sourcePeriod * ratio
	offset := targetPeriod - period
	return Monochord{
		sourcePeriod: sourcePeriod,
		targetPeriod: targetPeriod,
		ratio:        ratio,
		period:       period,
		offset:       offset,
		value:        tau.Unit(offset / targetPeriod),
	}
}

// Rotate returns c turned by the monochord's rotation.
func (m Monochord) Rotate(c tau.Complex) tau.Complex {
	return c.Mul(m.value)
}

func (m Monochord) SourcePeriod() float64 { return m.sourcePeriod }
func (m Monochord) TargetPeriod() float64 { return m.targetPeriod }
func (m Monochord) Ratio() float64        { return m.ratio }

// Value returns the rotation phasor.
func (m Monochord) Value() tau.Complex { return m.value }

func (m Monochord) String() string {
	return fmt.Sprintf("{%.3f -> %.3f ratio=%.4f rot=%s}", m.sourcePeriod, m.targetPeriod, m.ratio, m.value)
}
