package lifecycle

// Snapshot is the read-only record handed to display consumers once per
// update tick.
type Snapshot struct {
	F         float64 `json:"F"`
	Entropy   float64 `json:"entropy"`
	Energy    float64 `json:"energy"`
	B         float64 `json:"B"`
	R         float64 `json:"r"`
	Phi       float64 `json:"phi"`
	Cycle     int     `json:"cycle"`
	Lifecycle float64 `json:"lifecycle"`
	MaxR      float64 `json:"max_r"`

	// InstantFrequency is in Hz.
	InstantFrequency float64 `json:"instant_frequency"`
	// Magnitude is the correlation strength of the fastest sensor.
	Magnitude float64 `json:"magnitude"`
	// Beat is the lifecycle derived from Lifecycle itself.
	Beat float64 `json:"beat"`
	// Oscillation counts the cycles of the tone seen by the fastest sensor.
	Oscillation float64 `json:"oscillation"`
}
