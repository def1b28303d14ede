package reservoir

import (
	"errors"
	"fmt"

	"github.com/edp1096/toy-reservoir/pkg/config"
	"github.com/edp1096/toy-reservoir/pkg/flow"
	"github.com/edp1096/toy-reservoir/pkg/grid"
	"github.com/edp1096/toy-reservoir/pkg/matrix"
	"github.com/edp1096/toy-reservoir/pkg/rock"
	"github.com/edp1096/toy-reservoir/pkg/util"
)

var ErrDimension = errors.New("reservoir: vector length does not match cell count")

// Reservoir owns the static discrete operators of one simulation: the
// transmissibility matrix T (boundary terms included), the accumulation
// vector B and the boundary source vector q. It composes them into the
// per-step linear system for the configured scheme.
type Reservoir struct {
	grid     *grid.Grid
	props    *rock.Properties
	interior *matrix.Sparse // T before boundary terms
	terms    *flow.Terms    // T with boundary terms, and q
	accum    []float64      // B
	bcs      map[grid.Side]flow.BoundaryCondition
	initial  float64
	timeStep float64
	scheme   util.Scheme
	backend  matrix.Backend
	system   matrix.LinearSystem
	dirty    bool
}

// New validates cfg and assembles every static operator. Nothing is
// assembled when the configuration is invalid.
func New(cfg *config.Config) (*Reservoir, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g, err := gridFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating grid: %w", err)
	}
	props, err := rock.FromConfig(cfg, g.NumCells())
	if err != nil {
		return nil, fmt.Errorf("creating properties: %w", err)
	}
	bcs, err := flow.BoundariesFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	backend := matrix.SparseBackend
	if cfg.Backend() == config.DenseSolver {
		backend = matrix.DenseBackend
	}

	return NewFromParts(g, props, bcs, cfg.InitialPressure(), cfg.Numerical.TimeStep, cfg.Numerical.Solver.Scheme, backend)
}

// NewFromParts assembles a reservoir from already built geometry and
// properties.
func NewFromParts(g *grid.Grid, props *rock.Properties, bcs map[grid.Side]flow.BoundaryCondition,
	initial, dt float64, scheme util.Scheme, backend matrix.Backend) (*Reservoir, error) {
	if props.NumCells() != g.NumCells() {
		return nil, fmt.Errorf("%d property cells for %d grid cells: %w", props.NumCells(), g.NumCells(), ErrDimension)
	}
	if !scheme.Valid() {
		return nil, fmt.Errorf("scheme %s: %w", scheme, config.ErrSolver)
	}

	interior, err := flow.AssembleTransmissibility(g, props)
	if err != nil {
		return nil, fmt.Errorf("assembling transmissibility: %w", err)
	}

	r := &Reservoir{
		grid:     g,
		props:    props,
		interior: interior,
		bcs:      make(map[grid.Side]flow.BoundaryCondition, len(grid.Sides)),
		initial:  initial,
		scheme:   scheme,
		backend:  backend,
		dirty:    true,
	}
	for _, side := range grid.Sides {
		r.bcs[side] = flow.NoFlow
	}
	for side, bc := range bcs {
		r.bcs[side] = bc
	}
	if err := r.applyBoundaries(); err != nil {
		return nil, err
	}
	if err := r.SetTimeStep(dt); err != nil {
		return nil, err
	}
	return r, nil
}

func gridFromConfig(cfg *config.Config) (*grid.Grid, error) {
	nx, ny := cfg.Numerical.Grids.X, cfg.Numerical.Grids.Y
	g, err := grid.Uniform(nx, ny, cfg.Reservoir.Length, cfg.Reservoir.Height, cfg.Reservoir.Depth)
	if err != nil {
		return nil, err
	}
	dx, dy := g.Dx, g.Dy
	if cfg.Numerical.DeltaX.IsSet() {
		if dx, err = cfg.Numerical.DeltaX.Expand(nx); err != nil {
			return nil, fmt.Errorf("delta x: %w", err)
		}
	}
	if cfg.Numerical.DeltaY.IsSet() {
		if dy, err = cfg.Numerical.DeltaY.Expand(ny); err != nil {
			return nil, fmt.Errorf("delta y: %w", err)
		}
	}
	return grid.New(dx, dy, cfg.Reservoir.Depth)
}

// applyBoundaries rebuilds T and q from the interior matrix and the current
// boundary conditions.
func (r *Reservoir) applyBoundaries() error {
	terms := &flow.Terms{T: r.interior.Clone(), Q: make([]float64, r.grid.NumCells())}
	if err := flow.InjectBoundaries(r.grid, r.props, terms, r.bcs); err != nil {
		return fmt.Errorf("injecting boundaries: %w", err)
	}
	r.terms = terms
	r.dirty = true
	return nil
}

func (r *Reservoir) Grid() *grid.Grid { return r.grid }

func (r *Reservoir) Properties() *rock.Properties { return r.props }

func (r *Reservoir) NumCells() int { return r.grid.NumCells() }

func (r *Reservoir) InitialPressure() float64 { return r.initial }

func (r *Reservoir) TimeStep() float64 { return r.timeStep }

func (r *Reservoir) Scheme() util.Scheme { return r.scheme }

// T is the assembled transmissibility matrix, boundary terms included.
// Callers must treat it as read-only.
func (r *Reservoir) T() *matrix.Sparse { return r.terms.T }

// Q is the boundary source vector. Read-only.
func (r *Reservoir) Q() []float64 { return r.terms.Q }

// Accumulation is the per-cell accumulation vector B for the current time
// step. Read-only.
func (r *Reservoir) Accumulation() []float64 { return r.accum }

func (r *Reservoir) Boundary(side grid.Side) flow.BoundaryCondition { return r.bcs[side] }

func (r *Reservoir) ComputeTransmissibility(a, b int) (float64, error) {
	return flow.ComputeTransmissibility(r.grid, r.props, a, b)
}

func (r *Reservoir) ComputeAccumulation(idx int) (float64, error) {
	if !r.grid.Valid(idx) {
		return 0, fmt.Errorf("cell %d of %d: %w", idx, r.grid.NumCells(), flow.ErrCell)
	}
	return flow.Accumulation(r.grid, r.props, idx, r.timeStep), nil
}

// SetTimeStep recomputes B for dt. The system is rebuilt on the next step.
func (r *Reservoir) SetTimeStep(dt float64) error {
	accum, err := flow.AssembleAccumulation(r.grid, r.props, dt)
	if err != nil {
		return err
	}
	r.accum = accum
	r.timeStep = dt
	r.dirty = true
	return nil
}

// SetBoundary replaces the condition on one side and recomputes T and q.
func (r *Reservoir) SetBoundary(side grid.Side, bc flow.BoundaryCondition) error {
	previous := r.bcs[side]
	r.bcs[side] = bc
	if err := r.applyBoundaries(); err != nil {
		r.bcs[side] = previous
		return err
	}
	return nil
}

func (r *Reservoir) SetScheme(s util.Scheme) error {
	if !s.Valid() {
		return fmt.Errorf("scheme %s: %w", s, config.ErrSolver)
	}
	r.scheme = s
	r.dirty = true
	return nil
}

// MaxStableTimeStep is the largest time step for which an explicit step
// keeps every cell's diagonal weight non-negative: min(B_i*dt / |T_ii|).
// It returns 0 when no cell has any conductance, meaning no limit.
func (r *Reservoir) MaxStableTimeStep() float64 {
	limit := 0.0
	for i, b := range r.accum {
		tii := -r.terms.T.Diag(i)
		if tii <= 0 {
			continue
		}
		if dt := b * r.timeStep / tii; limit == 0 || dt < limit {
			limit = dt
		}
	}
	return limit
}

// Destroy releases the linear solver backend.
func (r *Reservoir) Destroy() {
	if r.system != nil {
		r.system.Destroy()
		r.system = nil
		r.dirty = true
	}
}
