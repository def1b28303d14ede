package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/toy-reservoir/internal/consts"
	"github.com/edp1096/toy-reservoir/pkg/config"
	"github.com/edp1096/toy-reservoir/pkg/grid"
	"github.com/edp1096/toy-reservoir/pkg/rock"
)

func referenceGrid(t *testing.T) (*grid.Grid, *rock.Properties) {
	t.Helper()
	g, err := grid.Uniform(4, 1, 10000, 200000, 1)
	require.NoError(t, err)
	p, err := rock.New([]float64{50, 50, 50, 50}, 0.2, 1, 1e-6, 1, consts.DARCY_FIELD)
	require.NoError(t, err)
	return g, p
}

func TestComputeTransmissibility(t *testing.T) {
	g, p := referenceGrid(t)

	tests := []struct {
		name string
		a, b int
		want float64
	}{
		{"self", 0, 0, 4000},
		{"neighbour", 0, 1, 4000},
		{"reverse", 1, 0, 4000},
		{"not adjacent", 0, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeTransmissibility(g, p, tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	_, err := ComputeTransmissibility(g, p, 0, 4)
	assert.ErrorIs(t, err, ErrCell)
	_, err = ComputeTransmissibility(g, p, -1, 0)
	assert.ErrorIs(t, err, ErrCell)
}

func TestHarmonicAverage(t *testing.T) {
	g, err := grid.New([]float64{1000, 3000}, []float64{100}, 2)
	require.NoError(t, err)
	p, err := rock.New([]float64{10, 90}, 0.2, 2, 1e-6, 1, 1)
	require.NoError(t, err)

	// series resistance: A / (mu * (d0/(2k0) + d1/(2k1)))
	want := 200.0 / (2 * (1000.0/20 + 3000.0/180))
	got, err := ComputeTransmissibility(g, p, 0, 1)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-12)

	back, err := ComputeTransmissibility(g, p, 1, 0)
	require.NoError(t, err)
	assert.InDelta(t, got, back, 1e-12)

	// the arithmetic mean would give a larger conductance
	arith := 200.0 * 50 / (2 * 2000)
	assert.Less(t, got, arith)
}

func TestBoundaryTransmissibility(t *testing.T) {
	g, p := referenceGrid(t)
	assert.InDelta(t, 8000, BoundaryTransmissibility(g, p, 0, grid.X), 1e-9)
}

func TestAccumulation(t *testing.T) {
	g, p := referenceGrid(t)
	assert.InDelta(t, 100, Accumulation(g, p, 0, 1), 1e-9)

	b, err := AssembleAccumulation(g, p, 2)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{50, 50, 50, 50}, b, 1e-9)

	_, err = AssembleAccumulation(g, p, 0)
	assert.ErrorIs(t, err, ErrTimeStep)
}

func TestAccumulationScaling(t *testing.T) {
	g, p := referenceGrid(t)
	base := Accumulation(g, p, 1, 1)

	double := *p
	double.Porosity = 0.4
	assert.InDelta(t, 2*base, Accumulation(g, &double, 1, 1), 1e-9)

	wide, err := grid.New([]float64{2500, 5000, 2500, 2500}, []float64{200000}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 2*base, Accumulation(wide, p, 1, 1), 1e-9)

	assert.InDelta(t, base/4, Accumulation(g, p, 1, 4), 1e-9)
}

func TestAssembleTransmissibility(t *testing.T) {
	g, err := grid.Uniform(3, 3, 300, 300, 10)
	require.NoError(t, err)
	perm := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90}
	p, err := rock.New(perm, 0.2, 1, 1e-6, 1, consts.DARCY_FIELD)
	require.NoError(t, err)

	T, err := AssembleTransmissibility(g, p)
	require.NoError(t, err)

	assert.True(t, T.IsSymmetric(1e-12))
	for _, e := range T.NonZeros() {
		if e.Row == e.Col {
			continue
		}
		_, ok := g.Adjacent(e.Row, e.Col)
		assert.True(t, ok, "entry (%d, %d) is not a neighbour pair", e.Row, e.Col)
		assert.Greater(t, e.Value, 0.0)
	}
	for i := 0; i < g.NumCells(); i++ {
		assert.True(t, T.Has(i, i))
		assert.InDelta(t, 0, T.RowSum(i), 1e-12)
		for _, n := range g.Neighbors(i) {
			want, err := ComputeTransmissibility(g, p, i, n)
			require.NoError(t, err)
			assert.InDelta(t, consts.DARCY_FIELD*want, T.At(i, n), 1e-12)
		}
	}
	// 9 diagonals + 2 * 12 interior faces
	assert.Equal(t, 9+2*12, T.NNZ())
}

func TestInjectBoundaries(t *testing.T) {
	g, p := referenceGrid(t)
	interior, err := AssembleTransmissibility(g, p)
	require.NoError(t, err)

	terms := &Terms{T: interior.Clone(), Q: make([]float64, 4)}
	bcs := map[grid.Side]BoundaryCondition{
		grid.Left:   {Kind: PressureBoundary, Value: 2000},
		grid.Right:  NoFlow,
		grid.Top:    {Kind: PressureBoundary, Value: 9999},
		grid.Bottom: {Kind: FluxBoundary, Value: 50},
	}
	require.NoError(t, InjectBoundaries(g, p, terms, bcs))

	gb := consts.DARCY_FIELD * 8000
	face := consts.DARCY_FIELD * 4000
	assert.InDelta(t, -face-gb, terms.T.At(0, 0), 1e-9)
	assert.InDelta(t, -face, terms.T.At(3, 3), 1e-9)
	assert.InDelta(t, gb*2000, terms.Q[0], 1e-6)
	assert.Equal(t, []float64{0, 0, 0}, terms.Q[1:], "top and bottom have no cells in a single row")

	for i := 1; i < 4; i++ {
		assert.InDelta(t, interior.Diag(i), terms.T.Diag(i), 1e-12)
	}
}

func TestFluxDistribution(t *testing.T) {
	g, err := grid.New([]float64{1, 1}, []float64{1, 3}, 1)
	require.NoError(t, err)
	p, err := rock.New([]float64{1, 1, 1, 1}, 0.2, 1, 1e-6, 1, 1)
	require.NoError(t, err)

	terms := NewTerms(4)
	err = InjectBoundaries(g, p, terms, map[grid.Side]BoundaryCondition{
		grid.Left: {Kind: FluxBoundary, Value: 8},
	})
	require.NoError(t, err)

	// shared by face area: rows of height 1 and 3
	assert.InDeltaSlice(t, []float64{2, 0, 6, 0}, terms.Q, 1e-12)
	assert.Equal(t, 0, terms.T.NNZ(), "a flux boundary never touches T")
}

func TestBoundaryOrderCommutes(t *testing.T) {
	g, err := grid.Uniform(3, 2, 300, 200, 5)
	require.NoError(t, err)
	p, err := rock.New([]float64{1, 2, 3, 4, 5, 6}, 0.2, 1, 1e-6, 1, 1)
	require.NoError(t, err)

	bcs := []struct {
		side grid.Side
		bc   BoundaryCondition
	}{
		{grid.Left, BoundaryCondition{Kind: PressureBoundary, Value: 100}},
		{grid.Bottom, BoundaryCondition{Kind: PressureBoundary, Value: 50}},
		{grid.Right, BoundaryCondition{Kind: FluxBoundary, Value: -3}},
		{grid.Top, BoundaryCondition{Kind: FluxBoundary, Value: 7}},
	}

	stamp := func(order []int) *Terms {
		terms := NewTerms(g.NumCells())
		for _, k := range order {
			e, err := NewBoundaryElement(g, p, bcs[k].side, bcs[k].bc)
			require.NoError(t, err)
			require.NoError(t, e.Stamp(terms))
		}
		return terms
	}

	forward := stamp([]int{0, 1, 2, 3})
	backward := stamp([]int{3, 2, 1, 0})
	mixed := stamp([]int{2, 0, 3, 1})

	for _, other := range []*Terms{backward, mixed} {
		assert.InDeltaSlice(t, forward.Q, other.Q, 1e-12)
		for i := 0; i < g.NumCells(); i++ {
			assert.InDelta(t, forward.T.Diag(i), other.T.Diag(i), 1e-12)
		}
	}
	// corner cell 0 collects both the left and the bottom conductance
	left := BoundaryTransmissibility(g, p, 0, grid.X)
	bottom := BoundaryTransmissibility(g, p, 0, grid.Y)
	assert.InDelta(t, -(left + bottom), forward.T.Diag(0), 1e-12)
}

func TestParseBoundary(t *testing.T) {
	bc, err := ParseBoundary(config.Boundary{Type: config.PrescribedPressure, Value: 3})
	require.NoError(t, err)
	assert.Equal(t, BoundaryCondition{Kind: PressureBoundary, Value: 3}, bc)

	_, err = ParseBoundary(config.Boundary{Type: "prescribed temperature"})
	assert.ErrorIs(t, err, ErrBoundaryKind)

	cfg := config.Default()
	delete(cfg.Boundaries, config.Right)
	bcs, err := BoundariesFromConfig(cfg)
	require.NoError(t, err)
	assert.Len(t, bcs, 4)
	assert.Equal(t, NoFlow, bcs[grid.Right])
	assert.Equal(t, PressureBoundary, bcs[grid.Left].Kind)
}

func TestCollapsedSide(t *testing.T) {
	g, err := grid.Uniform(1, 4, 200000, 10000, 1)
	require.NoError(t, err)
	p, err := rock.New([]float64{50, 50, 50, 50}, 0.2, 1, 1e-6, 1, consts.DARCY_FIELD)
	require.NoError(t, err)

	e, err := NewBoundaryElement(g, p, grid.Left, BoundaryCondition{Kind: PressureBoundary, Value: 2000})
	require.NoError(t, err)
	assert.Nil(t, e)

	_, err = NewBoundaryElement(g, p, grid.Right, BoundaryCondition{Kind: BoundaryKind(7)})
	assert.ErrorIs(t, err, ErrBoundaryKind)

	// bottom on a column mirrors left on a row
	e, err = NewBoundaryElement(g, p, grid.Bottom, BoundaryCondition{Kind: PressureBoundary, Value: 2000})
	require.NoError(t, err)
	terms := NewTerms(4)
	require.NoError(t, e.Stamp(terms))
	assert.InDelta(t, -consts.DARCY_FIELD*8000, terms.T.Diag(0), 1e-9)
	assert.InDelta(t, consts.DARCY_FIELD*8000*2000, terms.Q[0], 1e-6)
}
