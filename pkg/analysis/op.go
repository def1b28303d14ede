package analysis

import (
	"fmt"

	"github.com/edp1096/toy-reservoir/pkg/reservoir"
)

// SteadyState solves the time-independent problem -T p = q. It does not
// touch any transient state.
type SteadyState struct {
	BaseAnalysis
	solution []float64
}

func NewSteadyState() *SteadyState {
	return &SteadyState{
		BaseAnalysis: *NewBaseAnalysis(),
	}
}

func (ss *SteadyState) Setup(res *reservoir.Reservoir) error {
	if res == nil {
		return ErrNotSetup
	}
	ss.Reservoir = res
	return nil
}

func (ss *SteadyState) Execute() error {
	if ss.Reservoir == nil {
		return ErrNotSetup
	}

	system, err := ss.Reservoir.SteadySystem()
	if err != nil {
		return err
	}
	defer system.Destroy()

	if err := system.Factor(); err != nil {
		return fmt.Errorf("steady state: %w", err)
	}
	x, err := system.Solve()
	if err != nil {
		return fmt.Errorf("steady state: %w", err)
	}

	ss.solution = make([]float64, len(x))
	copy(ss.solution, x)
	ss.storeResults()
	return nil
}

func (ss *SteadyState) storeResults() {
	for i, p := range ss.solution {
		ss.results[PressureKey(i)] = []float64{p}
	}
}

func (ss *SteadyState) GetSolution() []float64 {
	out := make([]float64, len(ss.solution))
	copy(out, ss.solution)
	return out
}
