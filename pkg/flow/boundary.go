package flow

import (
	"fmt"
	"log"

	"github.com/edp1096/toy-reservoir/pkg/config"
	"github.com/edp1096/toy-reservoir/pkg/grid"
	"github.com/edp1096/toy-reservoir/pkg/matrix"
	"github.com/edp1096/toy-reservoir/pkg/rock"
)

type BoundaryKind int

const (
	PressureBoundary BoundaryKind = iota // Dirichlet, fixed pressure
	FluxBoundary                         // Neumann, fixed volumetric rate
)

func (k BoundaryKind) String() string {
	if k == PressureBoundary {
		return config.PrescribedPressure
	}
	return config.PrescribedFlux
}

type BoundaryCondition struct {
	Kind  BoundaryKind
	Value float64
}

// NoFlow is the default boundary: zero prescribed flux.
var NoFlow = BoundaryCondition{Kind: FluxBoundary}

func ParseBoundary(bc config.Boundary) (BoundaryCondition, error) {
	switch bc.Type {
	case config.PrescribedPressure:
		return BoundaryCondition{Kind: PressureBoundary, Value: bc.Value}, nil
	case config.PrescribedFlux:
		return BoundaryCondition{Kind: FluxBoundary, Value: bc.Value}, nil
	}
	return BoundaryCondition{}, fmt.Errorf("%q: %w", bc.Type, ErrBoundaryKind)
}

// BoundariesFromConfig returns the condition of all four sides. Sides the
// configuration omits are no-flow.
func BoundariesFromConfig(cfg *config.Config) (map[grid.Side]BoundaryCondition, error) {
	bcs := make(map[grid.Side]BoundaryCondition, len(grid.Sides))
	for _, side := range grid.Sides {
		bc, err := ParseBoundary(cfg.Boundary(side.String()))
		if err != nil {
			return nil, fmt.Errorf("%s boundary: %w", side, err)
		}
		bcs[side] = bc
	}
	return bcs, nil
}

// SidePressure fixes the pressure outside one side. Each adjacent cell is
// tied to the boundary value by a half-cell conductance.
type SidePressure struct {
	Side        grid.Side
	Cells       []int
	Conductance []float64 // per cell, conversion factor included
	Value       float64
}

var _ Element = (*SidePressure)(nil)

func (b *SidePressure) GetName() string { return b.Side.String() }

func (b *SidePressure) GetType() string { return "P" }

func (b *SidePressure) Stamp(m matrix.StampMatrix) error {
	for k, cell := range b.Cells {
		g := b.Conductance[k]
		m.AddElement(cell, cell, -g)
		m.AddRHS(cell, g*b.Value)
	}
	return nil
}

// SideFlux injects a fixed total rate through one side, shared among the
// adjacent cells in proportion to their face area. It never touches T.
type SideFlux struct {
	Side   grid.Side
	Cells  []int
	Weight []float64 // per cell, sums to 1
	Value  float64
}

var _ Element = (*SideFlux)(nil)

func (b *SideFlux) GetName() string { return b.Side.String() }

func (b *SideFlux) GetType() string { return "Q" }

func (b *SideFlux) Stamp(m matrix.StampMatrix) error {
	if b.Value == 0 {
		return nil
	}
	for k, cell := range b.Cells {
		m.AddRHS(cell, b.Value*b.Weight[k])
	}
	return nil
}

// NewBoundaryElement builds the element for one side. A side without
// adjacent cells yields nil.
func NewBoundaryElement(g *grid.Grid, p *rock.Properties, side grid.Side, bc BoundaryCondition) (Element, error) {
	if bc.Kind != PressureBoundary && bc.Kind != FluxBoundary {
		return nil, fmt.Errorf("%s: %w", side, ErrBoundaryKind)
	}
	cells := g.BoundaryCells(side)
	if len(cells) == 0 {
		if bc != NoFlow {
			log.Printf("Warning: %s boundary (%s %g) ignored, the grid is a single cell along %s", side, bc.Kind, bc.Value, side.Axis())
		}
		return nil, nil
	}
	axis := side.Axis()

	switch bc.Kind {
	case PressureBoundary:
		conductance := make([]float64, len(cells))
		for k, cell := range cells {
			conductance[k] = p.ConversionFactor * BoundaryTransmissibility(g, p, cell, axis)
		}
		return &SidePressure{Side: side, Cells: cells, Conductance: conductance, Value: bc.Value}, nil

	case FluxBoundary:
		total := 0.0
		for _, cell := range cells {
			total += g.FaceArea(cell, axis)
		}
		weight := make([]float64, len(cells))
		for k, cell := range cells {
			weight[k] = g.FaceArea(cell, axis) / total
		}
		return &SideFlux{Side: side, Cells: cells, Weight: weight, Value: bc.Value}, nil
	}
	return nil, fmt.Errorf("%s: %w", side, ErrBoundaryKind)
}

// InjectBoundaries stamps every side into terms. Sides only touch their own
// edge cells and contributions are additive, so the order does not matter.
func InjectBoundaries(g *grid.Grid, p *rock.Properties, terms *Terms, bcs map[grid.Side]BoundaryCondition) error {
	for _, side := range grid.Sides {
		bc, ok := bcs[side]
		if !ok {
			continue
		}
		element, err := NewBoundaryElement(g, p, side, bc)
		if err != nil {
			return err
		}
		if element == nil {
			continue
		}
		if err := element.Stamp(terms); err != nil {
			return fmt.Errorf("stamping %s boundary: %w", side, err)
		}
	}
	return nil
}
