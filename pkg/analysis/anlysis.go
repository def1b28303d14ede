package analysis

import (
	"errors"
	"fmt"

	"github.com/edp1096/toy-reservoir/pkg/reservoir"
)

var (
	ErrNotSetup = errors.New("analysis: reservoir not set")
	ErrDiverged = errors.New("analysis: pressure is not finite")
)

type Analysis interface {
	Setup(res *reservoir.Reservoir) error
	Execute() error
	GetResults() map[string][]float64
}

// StepError reports the step at which a numerical failure happened.
type StepError struct {
	Step int
	Time float64
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%g): %v", e.Step, e.Time, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

type BaseAnalysis struct {
	Reservoir *reservoir.Reservoir
	results   map[string][]float64 // key: variable name, value: result by time
}

func NewBaseAnalysis() *BaseAnalysis {
	return &BaseAnalysis{results: make(map[string][]float64)}
}

// PressureKey names the result series of cell idx.
func PressureKey(idx int) string { return fmt.Sprintf("P(%d)", idx) }

func (a *BaseAnalysis) StoreTimeResult(step int, time float64, pressure []float64) {
	// Ignore same step
	if steps := a.results["STEP"]; len(steps) > 0 && steps[len(steps)-1] == float64(step) {
		return
	}

	a.results["STEP"] = append(a.results["STEP"], float64(step))
	a.results["TIME"] = append(a.results["TIME"], time)
	for i, p := range pressure {
		key := PressureKey(i)
		a.results[key] = append(a.results[key], p)
	}
}

func (a *BaseAnalysis) StoreScalar(name string, value float64) {
	a.results[name] = append(a.results[name], value)
}

func (a *BaseAnalysis) GetResults() map[string][]float64 {
	return a.results
}

// Snapshot rebuilds the pressure field of stored record k.
func (a *BaseAnalysis) Snapshot(k int) ([]float64, bool) {
	if k < 0 || k >= len(a.results["STEP"]) {
		return nil, false
	}
	n := 0
	for {
		if _, ok := a.results[PressureKey(n)]; !ok {
			break
		}
		n++
	}
	field := make([]float64, n)
	for i := range field {
		field[i] = a.results[PressureKey(i)][k]
	}
	return field, true
}

func (a *BaseAnalysis) NumSnapshots() int { return len(a.results["STEP"]) }
