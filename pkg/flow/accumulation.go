package flow

import (
	"fmt"

	"github.com/edp1096/toy-reservoir/pkg/grid"
	"github.com/edp1096/toy-reservoir/pkg/matrix"
	"github.com/edp1096/toy-reservoir/pkg/rock"
)

// Accumulation is the storage coefficient of cell idx over one time step:
// phi * Vb * c / (B * dt).
func Accumulation(g *grid.Grid, p *rock.Properties, idx int, dt float64) float64 {
	return p.Storage() * g.BulkVolume(idx) / dt
}

// AssembleAccumulation returns one coefficient per cell. It depends on dt and
// must be rebuilt whenever the time step changes.
func AssembleAccumulation(g *grid.Grid, p *rock.Properties, dt float64) ([]float64, error) {
	if !(dt > 0) {
		return nil, fmt.Errorf("dt = %g: %w", dt, ErrTimeStep)
	}
	b := make([]float64, g.NumCells())
	for i := range b {
		b[i] = Accumulation(g, p, i, dt)
	}
	return b, nil
}

// Storage is the accumulation element of one cell. It only touches the
// diagonal of the system it is stamped into.
type Storage struct {
	Cell  int
	Coeff float64
}

var _ Element = (*Storage)(nil)

func (s *Storage) GetName() string { return fmt.Sprintf("storage(%d)", s.Cell) }

func (s *Storage) GetType() string { return "S" }

func (s *Storage) Stamp(m matrix.StampMatrix) error {
	m.AddElement(s.Cell, s.Cell, s.Coeff)
	return nil
}

func StorageElements(b []float64) []Element {
	elements := make([]Element, len(b))
	for i, coeff := range b {
		elements[i] = &Storage{Cell: i, Coeff: coeff}
	}
	return elements
}
