package reservoir

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/toy-reservoir/internal/consts"
	"github.com/edp1096/toy-reservoir/pkg/config"
	"github.com/edp1096/toy-reservoir/pkg/flow"
	"github.com/edp1096/toy-reservoir/pkg/grid"
	"github.com/edp1096/toy-reservoir/pkg/matrix"
	"github.com/edp1096/toy-reservoir/pkg/util"
)

func newReference(t *testing.T) *Reservoir {
	t.Helper()
	r, err := New(config.Default())
	require.NoError(t, err)
	t.Cleanup(r.Destroy)
	return r
}

func TestNewReference(t *testing.T) {
	r := newReference(t)

	assert.Equal(t, 4, r.NumCells())
	assert.Equal(t, 1000.0, r.InitialPressure())
	assert.Equal(t, 1.0, r.TimeStep())
	assert.InDeltaSlice(t, []float64{100, 100, 100, 100}, r.Accumulation(), 1e-9)

	face := consts.DARCY_FIELD * 4000
	gb := consts.DARCY_FIELD * 8000
	T := r.T()
	assert.InDelta(t, -face-gb, T.At(0, 0), 1e-9)
	assert.InDelta(t, -2*face, T.At(1, 1), 1e-9)
	assert.InDelta(t, -face, T.At(3, 3), 1e-9)
	assert.InDelta(t, face, T.At(0, 1), 1e-9)
	assert.InDeltaSlice(t, []float64{gb * 2000, 0, 0, 0}, r.Q(), 1e-6)

	tr, err := r.ComputeTransmissibility(0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 4000, tr, 1e-9)

	b, err := r.ComputeAccumulation(0)
	require.NoError(t, err)
	assert.InDelta(t, 100, b, 1e-9)

	_, err = r.ComputeAccumulation(4)
	assert.ErrorIs(t, err, flow.ErrCell)
}

func TestNewInvalid(t *testing.T) {
	cfg := config.Default()
	cfg.Reservoir.Permeability = config.Scalar(-50)
	_, err := New(cfg)
	assert.ErrorIs(t, err, config.ErrNonPositive)
}

func TestSparsity(t *testing.T) {
	cfg := config.Default()
	cfg.Numerical.Grids = config.Grids{X: 4, Y: 3}
	cfg.Boundaries[config.Top] = config.Boundary{Type: config.PrescribedPressure, Value: 500}
	r, err := New(cfg)
	require.NoError(t, err)
	defer r.Destroy()

	g := r.Grid()
	for _, e := range r.T().NonZeros() {
		if e.Row == e.Col {
			continue
		}
		_, ok := g.Adjacent(e.Row, e.Col)
		assert.True(t, ok, "entry (%d, %d)", e.Row, e.Col)
	}
	assert.True(t, r.T().IsSymmetric(1e-12))

	require.NoError(t, r.BuildSystem())
	for _, e := range r.System().Coefficients().NonZeros() {
		if e.Row == e.Col {
			continue
		}
		_, ok := g.Adjacent(e.Row, e.Col)
		assert.True(t, ok, "system entry (%d, %d)", e.Row, e.Col)
	}
}

func TestDeltaOverrides(t *testing.T) {
	cfg := config.Default()
	cfg.Numerical.Grids = config.Grids{X: 4, Y: 2}
	cfg.Numerical.DeltaX = config.Field{2000, 3000, 1500, 3500}
	cfg.Numerical.DeltaY = config.Field{50000, 150000}
	r, err := New(cfg)
	require.NoError(t, err)
	defer r.Destroy()

	g := r.Grid()
	assert.Equal(t, []float64{2000, 3000, 1500, 3500}, g.Dx)
	assert.Equal(t, []float64{50000, 150000}, g.Dy)
	assert.InDelta(t, 0.2*1e-6*1500*150000, r.Accumulation()[g.Index(2, 1)], 1e-9)
}

func TestSetTimeStep(t *testing.T) {
	r := newReference(t)
	require.NoError(t, r.BuildSystem())

	require.NoError(t, r.SetTimeStep(4))
	assert.Equal(t, 4.0, r.TimeStep())
	assert.InDeltaSlice(t, []float64{25, 25, 25, 25}, r.Accumulation(), 1e-9)

	b, err := r.ComputeAccumulation(2)
	require.NoError(t, err)
	assert.InDelta(t, 25, b, 1e-9)

	assert.ErrorIs(t, r.SetTimeStep(-1), flow.ErrTimeStep)
	assert.Equal(t, 4.0, r.TimeStep(), "failed update keeps the old step")
}

func TestSetBoundary(t *testing.T) {
	r := newReference(t)
	before := r.T().Diag(0)

	require.NoError(t, r.SetBoundary(grid.Left, flow.NoFlow))
	assert.InDelta(t, -consts.DARCY_FIELD*4000, r.T().Diag(0), 1e-9)
	assert.Equal(t, 0.0, r.Q()[0])

	require.NoError(t, r.SetBoundary(grid.Left, flow.BoundaryCondition{Kind: flow.PressureBoundary, Value: 2000}))
	assert.InDelta(t, before, r.T().Diag(0), 1e-12)

	err := r.SetBoundary(grid.Right, flow.BoundaryCondition{Kind: flow.BoundaryKind(9)})
	assert.ErrorIs(t, err, flow.ErrBoundaryKind)
	assert.Equal(t, flow.NoFlow, r.Boundary(grid.Right), "failed update is rolled back")
}

func TestChangeBetweenSteps(t *testing.T) {
	tests := []struct {
		name   string
		change func(r *Reservoir) error
		fresh  func(c *config.Config)
	}{
		{
			"time step",
			func(r *Reservoir) error { return r.SetTimeStep(2.5) },
			func(c *config.Config) { c.Numerical.TimeStep = 2.5 },
		},
		{
			"boundary",
			func(r *Reservoir) error {
				return r.SetBoundary(grid.Right, flow.BoundaryCondition{Kind: flow.PressureBoundary, Value: 500})
			},
			func(c *config.Config) {
				c.Boundaries[config.Right] = config.Boundary{Type: config.PrescribedPressure, Value: 500}
			},
		},
		{
			"mixed scheme",
			func(r *Reservoir) error { return r.SetScheme(util.Mixed(0.5)) },
			func(c *config.Config) { c.Numerical.Solver = config.Solver{Scheme: util.Mixed(0.5)} },
		},
		{
			"explicit scheme",
			func(r *Reservoir) error { return r.SetScheme(util.Explicit()) },
			func(c *config.Config) { c.Numerical.Solver = config.Solver{Scheme: util.Explicit()} },
		},
	}

	for _, backend := range []string{config.SparseSolver, config.DenseSolver} {
		for _, tt := range tests {
			t.Run(backend+" "+tt.name, func(t *testing.T) {
				cfg := config.Default()
				cfg.Numerical.LinearSolver = backend
				r, err := New(cfg)
				require.NoError(t, err)
				defer r.Destroy()

				p0 := []float64{1000, 1000, 1000, 1000}
				p1 := make([]float64, 4)
				require.NoError(t, r.Advance(p1, p0))

				require.NoError(t, tt.change(r))
				p2 := make([]float64, 4)
				require.NoError(t, r.Advance(p2, p1))
				p3 := make([]float64, 4)
				require.NoError(t, r.Advance(p3, p2))

				want := cfg.Clone()
				tt.fresh(want)
				ref, err := New(want)
				require.NoError(t, err)
				defer ref.Destroy()

				q2 := make([]float64, 4)
				require.NoError(t, ref.Advance(q2, p1))
				q3 := make([]float64, 4)
				require.NoError(t, ref.Advance(q3, q2))

				assert.InDeltaSlice(t, q2, p2, 1e-9)
				assert.InDeltaSlice(t, q3, p3, 1e-9)
			})
		}
	}
}

func TestColumnGrid(t *testing.T) {
	// the reference row turned on its side
	cfg := config.Default()
	cfg.Reservoir.Length = 200000
	cfg.Reservoir.Height = 10000
	cfg.Numerical.Grids = config.Grids{X: 1, Y: 4}
	cfg.Boundaries = map[string]config.Boundary{
		config.Bottom: {Type: config.PrescribedPressure, Value: 2000},
	}
	r, err := New(cfg)
	require.NoError(t, err)
	defer r.Destroy()

	next := make([]float64, 4)
	require.NoError(t, r.Advance(next, []float64{1000, 1000, 1000, 1000}))
	assert.InDeltaSlice(t, []float64{1295.15, 1051.10, 1008.89, 1001.80}, next, 0.05)

	// left and right lie along the collapsed x axis and have no effect
	require.NoError(t, r.SetBoundary(grid.Bottom, flow.NoFlow))
	require.NoError(t, r.SetBoundary(grid.Left, flow.BoundaryCondition{Kind: flow.PressureBoundary, Value: 2000}))
	assert.Equal(t, []float64{0, 0, 0, 0}, r.Q())
	require.NoError(t, r.Advance(next, []float64{1000, 1000, 1000, 1000}))
	assert.InDeltaSlice(t, []float64{1000, 1000, 1000, 1000}, next, 1e-9)
}

func TestMaxStableTimeStep(t *testing.T) {
	r := newReference(t)
	// cell 0: B*dt / (face + boundary) = 100 / (6.33e-3 * 12000)
	assert.InDelta(t, 100/(consts.DARCY_FIELD*12000), r.MaxStableTimeStep(), 1e-9)

	cfg := config.Default()
	cfg.Numerical.Grids.X = 1
	cfg.Reservoir.Length = 2500
	cfg.Boundaries = map[string]config.Boundary{}
	single, err := New(cfg)
	require.NoError(t, err)
	defer single.Destroy()
	assert.Equal(t, 0.0, single.MaxStableTimeStep())
}

func TestExplicitHasNoSystem(t *testing.T) {
	cfg := config.Default()
	cfg.Numerical.Solver = config.Solver{Scheme: util.Explicit()}
	r, err := New(cfg)
	require.NoError(t, err)
	defer r.Destroy()

	require.NoError(t, r.BuildSystem())
	assert.Nil(t, r.System())

	next := make([]float64, 4)
	require.NoError(t, r.Advance(next, []float64{1000, 1000, 1000, 1000}))
	assert.InDeltaSlice(t, []float64{1506.4, 1000, 1000, 1000}, next, 0.05)
}

func TestSetScheme(t *testing.T) {
	r := newReference(t)
	require.NoError(t, r.BuildSystem())
	require.NotNil(t, r.System())

	require.NoError(t, r.SetScheme(util.Explicit()))
	require.NoError(t, r.BuildSystem())
	assert.Nil(t, r.System())

	assert.ErrorIs(t, r.SetScheme(util.Mixed(2)), config.ErrSolver)
}

func TestBackends(t *testing.T) {
	p := []float64{1000, 1000, 1000, 1000}
	want := []float64{1295.15, 1051.10, 1008.89, 1001.80}

	for _, backend := range []string{config.SparseSolver, config.DenseSolver} {
		t.Run(backend, func(t *testing.T) {
			cfg := config.Default()
			cfg.Numerical.LinearSolver = backend
			r, err := New(cfg)
			require.NoError(t, err)
			defer r.Destroy()

			next := make([]float64, 4)
			require.NoError(t, r.Advance(next, p))
			assert.InDeltaSlice(t, want, next, 0.05)
		})
	}
}

func TestMaterialBalance(t *testing.T) {
	for _, scheme := range []util.Scheme{util.Implicit(), util.Explicit(), util.Mixed(0.5)} {
		cfg := config.Default()
		cfg.Numerical.Solver = config.Solver{Scheme: scheme}
		r, err := New(cfg)
		require.NoError(t, err)

		pOld := []float64{1000, 1000, 1000, 1000}
		pNew := make([]float64, 4)
		require.NoError(t, r.Advance(pNew, pOld))

		stored := r.StorageChange(pOld, pNew)
		inflow := scheme.Theta()*r.BoundaryInflow(pNew) + (1-scheme.Theta())*r.BoundaryInflow(pOld)
		assert.InDelta(t, stored, inflow, 1e-6*stored, "scheme %s", scheme)
		r.Destroy()
	}
}

func TestSteadySystem(t *testing.T) {
	r := newReference(t)
	sys, err := r.SteadySystem()
	require.NoError(t, err)
	defer sys.Destroy()

	x, err := sys.Solve()
	require.NoError(t, err)
	// a sealed right end with the left held at 2000 settles at 2000 everywhere
	assert.InDeltaSlice(t, []float64{2000, 2000, 2000, 2000}, x, 1e-6)
}

func TestSteadySystemSingular(t *testing.T) {
	cfg := config.Default()
	cfg.Boundaries = map[string]config.Boundary{}
	cfg.Numerical.LinearSolver = config.DenseSolver
	r, err := New(cfg)
	require.NoError(t, err)
	defer r.Destroy()

	sys, err := r.SteadySystem()
	require.NoError(t, err)
	_, err = sys.Solve()
	assert.Error(t, err)
}

func TestNewFromPartsDimension(t *testing.T) {
	r := newReference(t)
	g, err := grid.Uniform(2, 1, 10, 10, 1)
	require.NoError(t, err)
	_, err = NewFromParts(g, r.Properties(), nil, 0, 1, util.Implicit(), matrix.SparseBackend)
	assert.ErrorIs(t, err, ErrDimension)
}

func TestPrintSystem(t *testing.T) {
	r := newReference(t)
	require.NoError(t, r.BuildSystem())

	var buf bytes.Buffer
	r.PrintSystem(&buf)
	assert.Contains(t, buf.String(), "System Equations (4x4")
}
