// Package crosscheck runs the FFT tuner of go-dsp-guitar beside the
// receptor array, as an independent estimate of the played note.
package crosscheck

import (
	"context"
	"log/slog"
	"sync"

	"github.com/andrepxx/go-dsp-guitar/tuner"
)

// Estimate is one result of the FFT tuner.
type Estimate struct {
	Note      string  `json:"note"`
	Frequency float64 `json:"frequency"`
	Cents     int8    `json:"cents"`
}

func fromResult(r tuner.Result) Estimate {
	return Estimate{Note: r.Note(), Frequency: r.Frequency(), Cents: r.Cents()}
}

// Analyze runs the FFT tuner over a whole buffer.
func Analyze(samples []float64, rate float64) (Estimate, error) {
	t := tuner.Create()
	t.Process(samples, uint32(rate))
	r, err := t.Analyze()
	if err != nil {
		return Estimate{}, err
	}
	return fromResult(r), nil
}

// AsyncTuner analyses audio on its own goroutine. Process hands a block
// over only when the analyser is idle, so the audio thread never waits.
type AsyncTuner struct {
	tuner tuner.Tuner
	log   *slog.Logger

	buff  []float64
	rate  float64
	ready chan struct{}
	lock  sync.Mutex

	result     Estimate
	valid      bool
	resultLock sync.Mutex
}

// NewAsyncTuner returns an idle tuner. Call Run to start analysing.
func NewAsyncTuner(log *slog.Logger) *AsyncTuner {
	if log == nil {
		log = slog.Default()
	}
	return &AsyncTuner{
		tuner: tuner.Create(),
		log:   log,
		ready: make(chan struct{}),
	}
}

// Process offers the first channel of a block. It is dropped when the
// analyser is busy.
func (a *AsyncTuner) Process(block [][]float32, rate float64) {
	if len(block) == 0 {
		return
	}
	a.lock.Lock()
	defer a.lock.Unlock()

	select {
	case a.ready <- struct{}{}:
		a.buff = a.buff[:0]
		a.rate = rate
		for _, v := range block[0] {
			a.buff = append(a.buff, float64(v))
		}
	default:
	}
}

// Result returns the latest estimate, if any.
func (a *AsyncTuner) Result() (Estimate, bool) {
	a.resultLock.Lock()
	defer a.resultLock.Unlock()
	return a.result, a.valid
}

// Run analyses handed-over blocks until ctx is done.
func (a *AsyncTuner) Run(ctx context.Context) {
	for {
		select {
		case <-a.ready:
			// Wait for Process to finish copying.
			a.lock.Lock()
			a.lock.Unlock()

			a.tuner.Process(a.buff, uint32(a.rate))

			r, err := a.tuner.Analyze()
			if err != nil {
				a.log.Debug("crosscheck failed", "err", err)
				continue
			}
			e := fromResult(r)
			a.resultLock.Lock()
			if !a.valid || a.result.Note != e.Note {
				a.log.Debug("crosscheck note", "note", e.Note, "frequency", e.Frequency, "cents", e.Cents)
			}
			a.result, a.valid = e, true
			a.resultLock.Unlock()
		case <-ctx.Done():
			return
		}
	}
}
