package analysis

import (
	"fmt"
	"math"

	"github.com/edp1096/toy-reservoir/pkg/reservoir"
)

// Transient advances the pressure field with the reservoir's theta scheme.
// It is single-threaded and not reentrant.
type Transient struct {
	BaseAnalysis
	state     *State
	numSteps  int
	frequency int // store every frequency-th step, 0 disables recording

	next    []float64
	balance float64 // largest relative material balance error so far
}

func NewTransient(numSteps, frequency int) *Transient {
	return &Transient{
		BaseAnalysis: *NewBaseAnalysis(),
		numSteps:     numSteps,
		frequency:    frequency,
	}
}

func (tr *Transient) Setup(res *reservoir.Reservoir) error {
	if res == nil {
		return ErrNotSetup
	}
	tr.Reservoir = res
	tr.state = NewState(res.NumCells(), res.InitialPressure())
	tr.next = make([]float64, res.NumCells())
	tr.balance = 0

	if err := res.BuildSystem(); err != nil {
		return &StepError{Step: 0, Time: 0, Err: fmt.Errorf("building system: %w", err)}
	}
	if tr.frequency > 0 {
		tr.StoreTimeResult(0, 0, tr.state.pressure)
	}
	return nil
}

// SolveOneStep advances the state by exactly one time step. On failure the
// state is left untouched.
func (tr *Transient) SolveOneStep() error {
	if tr.Reservoir == nil {
		return ErrNotSetup
	}
	res := tr.Reservoir
	step := tr.state.step + 1

	if err := res.Advance(tr.next, tr.state.pressure); err != nil {
		return &StepError{Step: step, Time: tr.state.time, Err: err}
	}
	for i, p := range tr.next {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return &StepError{Step: step, Time: tr.state.time, Err: fmt.Errorf("pressure[%d] = %g: %w", i, p, ErrDiverged)}
		}
	}

	tr.checkBalance(tr.state.pressure, tr.next)
	tr.state.advance(tr.next, res.TimeStep())

	if tr.frequency > 0 && tr.state.step%tr.frequency == 0 {
		tr.StoreTimeResult(tr.state.step, tr.state.time, tr.state.pressure)
	}
	return nil
}

// Execute runs the configured number of steps in order.
func (tr *Transient) Execute() error {
	if tr.Reservoir == nil {
		return ErrNotSetup
	}
	for k := 0; k < tr.numSteps; k++ {
		if err := tr.SolveOneStep(); err != nil {
			return err
		}
	}
	return nil
}

// GetSolution returns a copy of the current pressure field; before any step
// it is the initial condition.
func (tr *Transient) GetSolution() []float64 {
	if tr.state == nil {
		return nil
	}
	return tr.state.Pressure()
}

func (tr *Transient) State() *State { return tr.state }

func (tr *Transient) NumSteps() int { return tr.numSteps }

// MaterialBalanceError is the largest relative mismatch seen so far between
// the volume stored in a step and the boundary inflow over that step.
func (tr *Transient) MaterialBalanceError() float64 { return tr.balance }

func (tr *Transient) checkBalance(pOld, pNew []float64) {
	res := tr.Reservoir
	theta := res.Scheme().Theta()
	stored := res.StorageChange(pOld, pNew)
	inflow := theta*res.BoundaryInflow(pNew) + (1-theta)*res.BoundaryInflow(pOld)

	// Floor the scale so round-off in a nearly static step is not reported.
	floor := 0.0
	for i, b := range res.Accumulation() {
		floor += b * math.Abs(pNew[i])
	}
	scale := math.Max(math.Max(math.Abs(stored), math.Abs(inflow)), 1e-12*floor)
	if scale == 0 {
		return
	}
	if e := math.Abs(stored-inflow) / scale; e > tr.balance {
		tr.balance = e
	}
}
