package flow

import (
	"fmt"

	"github.com/edp1096/toy-reservoir/pkg/grid"
	"github.com/edp1096/toy-reservoir/pkg/matrix"
	"github.com/edp1096/toy-reservoir/pkg/rock"
)

// Transmissibility is the conductance of the face between axis-adjacent
// cells a and b, without the unit conversion factor:
//
//	T = A / (mu * (dA/(2 kA) + dB/(2 kB)))
//
// i.e. the half-width weighted harmonic mean of the two permeabilities. For
// a == b it reduces to k*A/(mu*d).
func Transmissibility(g *grid.Grid, p *rock.Properties, a, b int, axis grid.Axis) float64 {
	area := g.FaceArea(a, axis)
	resistance := g.Width(a, axis)/(2*p.Permeability[a]) + g.Width(b, axis)/(2*p.Permeability[b])
	return area / (p.Viscosity * resistance)
}

// ComputeTransmissibility returns the conductance between cells a and b.
// a == b gives the x-direction self conductance, non-adjacent pairs give 0.
func ComputeTransmissibility(g *grid.Grid, p *rock.Properties, a, b int) (float64, error) {
	if !g.Valid(a) || !g.Valid(b) {
		return 0, fmt.Errorf("cells (%d, %d) of %d: %w", a, b, g.NumCells(), ErrCell)
	}
	if a == b {
		return Transmissibility(g, p, a, a, grid.X), nil
	}
	axis, ok := g.Adjacent(a, b)
	if !ok {
		return 0, nil
	}
	return Transmissibility(g, p, a, b, axis), nil
}

// BoundaryTransmissibility is the conductance between cell and a boundary
// face along axis, taken over half the cell width.
func BoundaryTransmissibility(g *grid.Grid, p *rock.Properties, cell int, axis grid.Axis) float64 {
	return 2 * p.Permeability[cell] * g.FaceArea(cell, axis) / (p.Viscosity * g.Width(cell, axis))
}

// Face is the flow element between two neighbouring cells. Conductance
// already includes the conversion factor.
type Face struct {
	Lo, Hi      int
	Axis        grid.Axis
	Conductance float64
}

var _ Element = (*Face)(nil)

func (f *Face) GetName() string { return fmt.Sprintf("face(%d,%d)", f.Lo, f.Hi) }

func (f *Face) GetType() string { return "F" + f.Axis.String() }

// Stamp adds the conductance off the diagonal and subtracts it from both
// diagonals, so every row of T sums to zero before boundaries are applied.
func (f *Face) Stamp(m matrix.StampMatrix) error {
	g := f.Conductance
	m.AddElement(f.Lo, f.Hi, g)
	m.AddElement(f.Hi, f.Lo, g)
	m.AddElement(f.Lo, f.Lo, -g)
	m.AddElement(f.Hi, f.Hi, -g)
	return nil
}

// Faces builds one element per interior face of the grid.
func Faces(g *grid.Grid, p *rock.Properties) []Element {
	faces := g.Faces()
	elements := make([]Element, 0, len(faces))
	for _, f := range faces {
		elements = append(elements, &Face{
			Lo:          f.Lo,
			Hi:          f.Hi,
			Axis:        f.Axis,
			Conductance: p.ConversionFactor * Transmissibility(g, p, f.Lo, f.Hi, f.Axis),
		})
	}
	return elements
}

// AssembleTransmissibility builds the interior transmissibility matrix.
// Each cell gets a diagonal entry even when it has no neighbours.
func AssembleTransmissibility(g *grid.Grid, p *rock.Properties) (*matrix.Sparse, error) {
	terms := NewTerms(g.NumCells())
	for i := 0; i < g.NumCells(); i++ {
		terms.T.Add(i, i, 0)
	}
	if err := StampAll(terms, Faces(g, p)); err != nil {
		return nil, err
	}
	return terms.T, nil
}
