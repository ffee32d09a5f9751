package recept

// Apex detects turning points of a scalar sequence: it fires whenever the
// sign of the first difference flips.
type Apex struct {
	delta         Delta
	priorPositive bool
}

// NewApex returns an apex detector that assumes a rising start.
func NewApex() Apex {
	return Apex{priorPositive: true}
}

// Sample reports whether value sits just past a turning point.
func (a *Apex) Sample(value float64) bool {
	d, ok := a.delta.Sample(value)
	if !ok {
		return false
	}
	positive := d >= 0
	if positive != a.priorPositive {
		a.priorPositive = positive
		return true
	}
	return false
}

// TimeApex pairs an Apex with the time elapsed since the previous apex.
type TimeApex struct {
	apex  Apex
	delta Delta
}

// NewTimeApex returns a TimeApex that assumes a rising start.
func NewTimeApex() TimeApex {
	return TimeApex{apex: NewApex()}
}

// Sample reports whether value is an apex and, if so, the time since the
// previous apex. The first apex has no predecessor and reports elapsed 1.
func (ta *TimeApex) Sample(time, value float64) (elapsed float64, isApex bool) {
	if !ta.apex.Sample(value) {
		return 0, false
	}
	elapsed, ok := ta.delta.Sample(time)
	if !ok {
		elapsed = 1
	}
	return elapsed, true
}
