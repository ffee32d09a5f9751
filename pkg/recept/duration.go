package recept

import "fmt"

// DynamicWindow turns a sequence of event times into a smoothing window
// that spans a target duration, whatever the spacing of the events.
//
// The expected spacing is smoothed over windowSize events; the window is
// the target duration divided by it. A zero expected spacing is a caller
// error, as for any window.
type DynamicWindow struct {
	Target   float64
	since    Delta
	expected Smoothing
}

// NewDynamicWindow returns a window targeting targetDuration with the
// expected spacing starting at initialDuration.
func NewDynamicWindow(targetDuration, windowSize, initialDuration float64) DynamicWindow {
	return DynamicWindow{
		Target:   targetDuration,
		expected: NewSmoothing(windowSize, initialDuration),
	}
}

// Sample takes the time of the next event and returns the window. The first
// event has no spacing and returns the target duration itself.
func (w *DynamicWindow) Sample(sequence float64) float64 {
	d, ok := w.since.Sample(sequence)
	if !ok {
		return w.Target
	}
	return w.Target / w.expected.Sample(d)
}

// Expected returns the smoothed spacing between events.
func (w *DynamicWindow) Expected() float64 {
	return w.expected.Value()
}

func (w DynamicWindow) String() string {
	window := 0.0
	if e := w.expected.Value(); e > 0 {
		window = w.Target / e
	}
	return fmt.Sprintf("{window=%.3f, duration=%s, target=%v}", window, w.expected, w.Target)
}

// SmoothDuration smooths irregularly spaced values over a fixed duration.
type SmoothDuration struct {
	Window DynamicWindow
	V      Smoother
}

// NewSmoothDuration returns a smoother over targetDuration starting at
// initialValue.
func NewSmoothDuration(targetDuration, windowSize, initialDuration, initialValue float64) SmoothDuration {
	return SmoothDuration{
		Window: NewDynamicWindow(targetDuration, windowSize, initialDuration),
		V:      NewSmoother(initialValue),
	}
}

// Sample folds in value observed at sequence.
func (s *SmoothDuration) Sample(value, sequence float64) float64 {
	return s.V.Sample(value, s.Window.Sample(sequence))
}

func (s SmoothDuration) String() string {
	return fmt.Sprintf("{ave=%s, window=%s}", s.V, s.Window)
}

// SmoothDurationDistribution is a Distribution over irregularly spaced
// values, smoothed over a fixed duration.
type SmoothDurationDistribution struct {
	Window DynamicWindow
	Distribution
}

// NewSmoothDurationDistribution returns a distribution over targetDuration
// with the given starting mean and deviation.
func NewSmoothDurationDistribution(targetDuration, windowSize, initialDuration, initialValue, initialDeviation float64) SmoothDurationDistribution {
	return SmoothDurationDistribution{
		Window:       NewDynamicWindow(targetDuration, windowSize, initialDuration),
		Distribution: Distribution{Ave: NewSmoother(initialValue), Dev: NewSmoother(initialDeviation)},
	}
}

// Sample folds in value observed at sequence and returns mean and
// deviation.
func (s *SmoothDurationDistribution) Sample(value, sequence float64) (float64, float64) {
	return s.Distribution.Sample(value, s.Window.Sample(sequence))
}

func (s SmoothDurationDistribution) String() string {
	return fmt.Sprintf("{dist=%s, window=%s}", s.Distribution, s.Window)
}
