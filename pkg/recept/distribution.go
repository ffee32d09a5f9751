package recept

import (
	"fmt"
	"math"
)

// Distribution tracks an exponentially smoothed mean and mean absolute
// deviation.
type Distribution struct {
	Ave Smoother
	Dev Smoother
}

// Sample folds value in with the given window and returns mean and deviation.
func (d *Distribution) Sample(value, window float64) (float64, float64) {
	deviation := math.Abs(d.Ave.V - value)
	d.Ave.Sample(value, window)
	d.Dev.Sample(deviation, window)
	return d.Ave.V, d.Dev.V
}

func (d Distribution) String() string {
	return fmt.Sprintf("{mean=%.3f dev=%.3f}", d.Ave.V, d.Dev.V)
}

// WeightedDistribution is a Distribution with a fixed window.
type WeightedDistribution struct {
	Distribution
	Window float64
}

// Sample folds value in with the fixed window.
func (w *WeightedDistribution) Sample(value float64) (float64, float64) {
	return w.Distribution.Sample(value, w.Window)
}
