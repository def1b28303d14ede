package simulator

import (
	"fmt"
	"io"

	"github.com/edp1096/toy-reservoir/pkg/analysis"
	"github.com/edp1096/toy-reservoir/pkg/config"
	"github.com/edp1096/toy-reservoir/pkg/flow"
	"github.com/edp1096/toy-reservoir/pkg/grid"
	"github.com/edp1096/toy-reservoir/pkg/matrix"
	"github.com/edp1096/toy-reservoir/pkg/reservoir"
	"github.com/edp1096/toy-reservoir/pkg/util"
)

// TwoDimReservoir is a 2D single-phase reservoir simulation driven by one
// configuration. It is not safe for concurrent use.
type TwoDimReservoir struct {
	cfg  *config.Config
	res  *reservoir.Reservoir
	tran *analysis.Transient
}

// New validates cfg and assembles the reservoir. The configuration is copied,
// later changes to cfg have no effect.
func New(cfg *config.Config) (*TwoDimReservoir, error) {
	if cfg == nil {
		return nil, fmt.Errorf("simulator: %w", config.ErrMissing)
	}
	cfg = cfg.Clone()

	res, err := reservoir.New(cfg)
	if err != nil {
		return nil, err
	}

	tran := analysis.NewTransient(cfg.Numerical.NumberOfTimeSteps, cfg.Plots.Frequency)
	if err := tran.Setup(res); err != nil {
		res.Destroy()
		return nil, err
	}

	return &TwoDimReservoir{cfg: cfg, res: res, tran: tran}, nil
}

// Load reads a YAML or JSON configuration file and builds the simulation.
func Load(path string) (*TwoDimReservoir, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

func (s *TwoDimReservoir) Config() *config.Config { return s.cfg.Clone() }

func (s *TwoDimReservoir) Reservoir() *reservoir.Reservoir { return s.res }

func (s *TwoDimReservoir) Grid() *grid.Grid { return s.res.Grid() }

func (s *TwoDimReservoir) NumCells() int { return s.res.NumCells() }

// ComputeTransmissibility returns the face conductance between cells a and b
// without the conversion factor. a == b gives the cell's own x conductance.
func (s *TwoDimReservoir) ComputeTransmissibility(a, b int) (float64, error) {
	return s.res.ComputeTransmissibility(a, b)
}

func (s *TwoDimReservoir) ComputeAccumulation(idx int) (float64, error) {
	return s.res.ComputeAccumulation(idx)
}

// T is the assembled transmissibility matrix. Read-only.
func (s *TwoDimReservoir) T() *matrix.Sparse { return s.res.T() }

// Q is the boundary source vector. Read-only.
func (s *TwoDimReservoir) Q() []float64 { return s.res.Q() }

func (s *TwoDimReservoir) SolveOneStep() error { return s.tran.SolveOneStep() }

// Solve runs the configured number of time steps.
func (s *TwoDimReservoir) Solve() error { return s.tran.Execute() }

func (s *TwoDimReservoir) GetSolution() []float64 { return s.tran.GetSolution() }

func (s *TwoDimReservoir) Step() int { return s.tran.State().Step() }

func (s *TwoDimReservoir) Time() float64 { return s.tran.State().Time() }

// Results returns the recorded snapshots keyed by "STEP", "TIME" and "P(i)".
func (s *TwoDimReservoir) Results() map[string][]float64 { return s.tran.GetResults() }

func (s *TwoDimReservoir) Snapshot(k int) ([]float64, bool) { return s.tran.Snapshot(k) }

func (s *TwoDimReservoir) NumSnapshots() int { return s.tran.NumSnapshots() }

func (s *TwoDimReservoir) MaterialBalanceError() float64 { return s.tran.MaterialBalanceError() }

func (s *TwoDimReservoir) MaxStableTimeStep() float64 { return s.res.MaxStableTimeStep() }

func (s *TwoDimReservoir) SetTimeStep(dt float64) error {
	if err := s.res.SetTimeStep(dt); err != nil {
		return err
	}
	s.cfg.Numerical.TimeStep = dt
	return nil
}

func (s *TwoDimReservoir) SetScheme(scheme util.Scheme) error {
	if err := s.res.SetScheme(scheme); err != nil {
		return err
	}
	s.cfg.Numerical.Solver = config.Solver{Scheme: scheme}
	return nil
}

// SetBoundary replaces the condition of one side by name.
func (s *TwoDimReservoir) SetBoundary(side string, bc config.Boundary) error {
	if err := config.ValidateBoundary(side, bc); err != nil {
		return err
	}
	gs, _ := grid.ParseSide(side)
	cond, err := flow.ParseBoundary(bc)
	if err != nil {
		return err
	}
	if err := s.res.SetBoundary(gs, cond); err != nil {
		return err
	}
	if s.cfg.Boundaries == nil {
		s.cfg.Boundaries = make(map[string]config.Boundary)
	}
	s.cfg.Boundaries[side] = bc
	return nil
}

// SteadyState solves for the equilibrium pressure of the current boundary
// conditions. The transient state is not touched.
func (s *TwoDimReservoir) SteadyState() ([]float64, error) {
	ss := analysis.NewSteadyState()
	if err := ss.Setup(s.res); err != nil {
		return nil, err
	}
	if err := ss.Execute(); err != nil {
		return nil, err
	}
	return ss.GetSolution(), nil
}

// Sweep solves the steady state for each value of one side's boundary from
// start to stop. The side keeps its kind and its value is restored afterwards.
func (s *TwoDimReservoir) Sweep(side string, start, stop, increment float64) (map[string][]float64, error) {
	gs, ok := grid.ParseSide(side)
	if !ok {
		return nil, fmt.Errorf("sweep %q: %w", side, config.ErrUnknownSide)
	}
	sweep, err := analysis.NewBoundarySweep(gs, start, stop, increment)
	if err != nil {
		return nil, err
	}
	if err := sweep.Setup(s.res); err != nil {
		return nil, err
	}
	if err := sweep.Execute(); err != nil {
		return nil, err
	}
	return sweep.GetResults(), nil
}

func (s *TwoDimReservoir) PrintSystem(w io.Writer) {
	s.res.PrintSystem(w)
}

// Close releases the linear solver.
func (s *TwoDimReservoir) Close() {
	s.res.Destroy()
}
