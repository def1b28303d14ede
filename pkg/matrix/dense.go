package matrix

import (
	"fmt"
	"io"
	"log"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ConditionLimit is the largest accepted LU condition number estimate.
const ConditionLimit = 1e12

// DenseSystem is a linear system solved with a dense gonum LU
// factorization. Useful for small grids and for cross-checking the sparse
// backend.
type DenseSystem struct {
	size     int
	a        *mat.Dense
	coeffs   *Sparse
	rhs      []float64
	solution []float64
	lu       mat.LU
	factored bool
}

var _ LinearSystem = (*DenseSystem)(nil)

func NewDenseSystem(size int) (*DenseSystem, error) {
	if size <= 0 {
		return nil, fmt.Errorf("size %d: %w", size, ErrDimension)
	}
	return &DenseSystem{
		size:     size,
		a:        mat.NewDense(size, size, nil),
		coeffs:   NewSparse(size),
		rhs:      make([]float64, size),
		solution: make([]float64, size),
	}, nil
}

func (m *DenseSystem) Size() int { return m.size }

func (m *DenseSystem) AddElement(i, j int, value float64) {
	if i < 0 || j < 0 || i >= m.size || j >= m.size {
		log.Printf("Warning: Matrix index out of bounds (i=%d, j=%d, size=%d)", i, j, m.size)
		return
	}
	m.a.Set(i, j, m.a.At(i, j)+value)
	m.coeffs.Add(i, j, value)
	m.factored = false
}

func (m *DenseSystem) AddRHS(i int, value float64) {
	if i < 0 || i >= m.size {
		log.Printf("Warning: RHS index out of bounds (i=%d, size=%d)", i, m.size)
		return
	}
	m.rhs[i] += value
}

func (m *DenseSystem) SetRHS(b []float64) error {
	if len(b) != m.size {
		return fmt.Errorf("SetRHS: got %d values, want %d: %w", len(b), m.size, ErrDimension)
	}
	copy(m.rhs, b)
	return nil
}

func (m *DenseSystem) RHS() []float64 { return m.rhs }

func (m *DenseSystem) Clear() {
	m.a.Zero()
	m.coeffs = NewSparse(m.size)
	m.ClearRHS()
	m.factored = false
}

func (m *DenseSystem) ClearRHS() {
	for i := range m.rhs {
		m.rhs[i] = 0
	}
}

func (m *DenseSystem) Factor() error {
	m.lu.Factorize(m.a)
	cond := m.lu.Cond()
	if math.IsInf(cond, 1) || math.IsNaN(cond) {
		return fmt.Errorf("matrix factorization failed: %w", ErrSingular)
	}
	if cond > ConditionLimit {
		return fmt.Errorf("condition number %.3e: %w", cond, ErrIllConditioned)
	}
	m.factored = true
	return nil
}

func (m *DenseSystem) Solve() ([]float64, error) {
	if !m.factored {
		if err := m.Factor(); err != nil {
			return nil, err
		}
	}

	x := mat.NewVecDense(m.size, m.solution)
	if err := m.lu.SolveVecTo(x, false, mat.NewVecDense(m.size, m.rhs)); err != nil {
		return nil, fmt.Errorf("matrix solve failed: %v: %w", err, ErrIllConditioned)
	}
	if err := checkSolution(m.coeffs, m.solution, m.rhs); err != nil {
		return nil, err
	}
	return m.solution, nil
}

func (m *DenseSystem) Coefficients() *Sparse { return m.coeffs }

func (m *DenseSystem) PrintSystem(w io.Writer) {
	printSystem(w, m.coeffs, m.rhs)
}

func (m *DenseSystem) Destroy() {}
