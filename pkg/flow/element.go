// Package flow builds the discrete flow terms of the pressure equation:
// face transmissibilities, cell accumulation and boundary contributions.
// Each contribution is an Element that stamps itself into a StampMatrix.
package flow

import (
	"errors"
	"fmt"

	"github.com/edp1096/toy-reservoir/pkg/matrix"
)

var (
	ErrBoundaryKind = errors.New("flow: unrecognized boundary condition kind")
	ErrCell         = errors.New("flow: cell index out of range")
	ErrTimeStep     = errors.New("flow: time step must be positive")
)

type Element interface {
	GetName() string
	GetType() string
	Stamp(m matrix.StampMatrix) error
}

// Terms is the stamp target for the static flow terms: the transmissibility
// matrix T and the boundary source vector q.
type Terms struct {
	T *matrix.Sparse
	Q []float64
}

var _ matrix.StampMatrix = (*Terms)(nil)

func NewTerms(n int) *Terms {
	return &Terms{
		T: matrix.NewSparse(n),
		Q: make([]float64, n),
	}
}

func (t *Terms) AddElement(i, j int, value float64) { t.T.Add(i, j, value) }

func (t *Terms) AddRHS(i int, value float64) {
	if i < 0 || i >= len(t.Q) {
		return
	}
	t.Q[i] += value
}

func (t *Terms) Clone() *Terms {
	q := make([]float64, len(t.Q))
	copy(q, t.Q)
	return &Terms{T: t.T.Clone(), Q: q}
}

// StampAll stamps every element into m, stopping at the first failure.
func StampAll(m matrix.StampMatrix, elements []Element) error {
	for _, e := range elements {
		if err := e.Stamp(m); err != nil {
			return fmt.Errorf("stamping %s: %w", e.GetName(), err)
		}
	}
	return nil
}
