package analysis

import (
	"errors"
	"fmt"

	"github.com/edp1096/toy-reservoir/pkg/flow"
	"github.com/edp1096/toy-reservoir/pkg/grid"
	"github.com/edp1096/toy-reservoir/pkg/reservoir"
)

var ErrSweep = errors.New("analysis: invalid sweep range")

// BoundarySweep solves the steady state for a range of values of one
// side's boundary condition. The boundary kind is kept; only its value is
// swept. The original value is restored afterwards.
type BoundarySweep struct {
	BaseAnalysis
	side      grid.Side
	sweepVals []float64
	orig      flow.BoundaryCondition
}

func NewBoundarySweep(side grid.Side, start, stop, increment float64) (*BoundarySweep, error) {
	if !(increment > 0) || stop < start {
		return nil, fmt.Errorf("start=%g, stop=%g, increment=%g: %w", start, stop, increment, ErrSweep)
	}

	sweep := make([]float64, 0)
	for k := 0; ; k++ {
		v := start + float64(k)*increment
		if v > stop+increment*1e-9 {
			break
		}
		sweep = append(sweep, v)
	}

	return &BoundarySweep{
		BaseAnalysis: *NewBaseAnalysis(),
		side:         side,
		sweepVals:    sweep,
	}, nil
}

func (bs *BoundarySweep) Setup(res *reservoir.Reservoir) error {
	if res == nil {
		return ErrNotSetup
	}
	bs.Reservoir = res
	bs.orig = res.Boundary(bs.side)
	return nil
}

func (bs *BoundarySweep) Execute() (err error) {
	if bs.Reservoir == nil {
		return ErrNotSetup
	}
	res := bs.Reservoir
	defer func() {
		if restoreErr := res.SetBoundary(bs.side, bs.orig); err == nil {
			err = restoreErr
		}
	}()

	for _, val := range bs.sweepVals {
		bc := flow.BoundaryCondition{Kind: bs.orig.Kind, Value: val}
		if err := res.SetBoundary(bs.side, bc); err != nil {
			return fmt.Errorf("%s = %g: %w", bs.side, val, err)
		}

		ss := NewSteadyState()
		if err := ss.Setup(res); err != nil {
			return err
		}
		if err := ss.Execute(); err != nil {
			return fmt.Errorf("%s = %g: %w", bs.side, val, err)
		}

		bs.StoreScalar("SWEEP", val)
		for i, p := range ss.solution {
			bs.StoreScalar(PressureKey(i), p)
		}
	}
	return nil
}

func (bs *BoundarySweep) Values() []float64 { return bs.sweepVals }
