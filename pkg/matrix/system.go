package matrix

import (
	"fmt"
	"io"
	"log"
	"math"

	"github.com/edp1096/sparse"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ResidualLimit is the largest accepted relative residual |Ax-b|/|b|.
const ResidualLimit = 1e-8

// SparseSystem is a real linear system backed by the Sparse1.3 LU solver.
// The public interface is 0-based; the backend is 1-based.
type SparseSystem struct {
	size     int
	matrix   *sparse.Matrix
	config   *sparse.Configuration
	coeffs   *Sparse // mirror of the loaded values, kept for residuals and printing
	rhs      []float64
	work     []float64 // handed to the backend, which may solve in place
	solution []float64
	factored bool
	ordered  bool  // backend rows were reordered by a factorization
	err      error // backend lost on Clear, reported by Factor
}

var _ LinearSystem = (*SparseSystem)(nil)

func NewSparseSystem(size int) (*SparseSystem, error) {
	config := &sparse.Configuration{
		Real:                    true,
		Complex:                 false,
		SeparatedComplexVectors: false,
		Expandable:              true,
		Translate:               false,
		ModifiedNodal:           false,
		TiesMultiplier:          5,
		PrinterWidth:            140,
		Annotate:                0,
	}

	spm, err := createBackend(size, config)
	if err != nil {
		return nil, err
	}

	return &SparseSystem{
		size:     size,
		matrix:   spm,
		config:   config,
		coeffs:   NewSparse(size),
		rhs:      make([]float64, size+1), // 1-based indexing
		work:     make([]float64, size+1),
		solution: make([]float64, size),
	}, nil
}

func createBackend(size int, config *sparse.Configuration) (*sparse.Matrix, error) {
	spm, err := sparse.Create(int64(size), config)
	if err != nil {
		return nil, fmt.Errorf("creating sparse matrix: %v: %w", err, ErrBackend)
	}
	return spm, nil
}

func (m *SparseSystem) Size() int { return m.size }

func (m *SparseSystem) AddElement(i, j int, value float64) {
	if i < 0 || j < 0 || i >= m.size || j >= m.size {
		log.Printf("Warning: Matrix index out of bounds (i=%d, j=%d, size=%d)", i, j, m.size)
		return
	}
	if m.ordered {
		m.reload()
	}
	if m.matrix == nil {
		return
	}
	m.matrix.GetElement(int64(i+1), int64(j+1)).Real += value
	m.coeffs.Add(i, j, value)
	m.factored = false
}

func (m *SparseSystem) AddRHS(i int, value float64) {
	if i < 0 || i >= m.size {
		log.Printf("Warning: RHS index out of bounds (i=%d, size=%d)", i, m.size)
		return
	}
	m.rhs[i+1] += value
}

func (m *SparseSystem) SetRHS(b []float64) error {
	if len(b) != m.size {
		return fmt.Errorf("SetRHS: got %d values, want %d: %w", len(b), m.size, ErrDimension)
	}
	copy(m.rhs[1:], b)
	return nil
}

func (m *SparseSystem) RHS() []float64 { return m.rhs[1:] }

// Clear zeroes the system for a new stamp. Elements cannot be added to a
// reordered backend matrix without translation, so after a factorization
// the backend is replaced instead.
func (m *SparseSystem) Clear() {
	m.coeffs = NewSparse(m.size)
	if m.ordered || m.matrix == nil {
		m.reload()
	} else {
		m.matrix.Clear()
	}
	m.ClearRHS()
	m.factored = false
}

// reload replaces the backend matrix with a fresh one holding the mirrored
// coefficients.
func (m *SparseSystem) reload() {
	if m.matrix != nil {
		m.matrix.Destroy()
	}
	m.matrix, m.err = createBackend(m.size, m.config)
	m.ordered = false
	m.factored = false
	if m.err != nil {
		return
	}
	for _, e := range m.coeffs.NonZeros() {
		m.matrix.GetElement(int64(e.Row+1), int64(e.Col+1)).Real += e.Value
	}
}

func (m *SparseSystem) ClearRHS() {
	for i := range m.rhs {
		m.rhs[i] = 0
	}
}

// Factor computes the LU factors. Values must not be stamped again until
// the next Clear.
func (m *SparseSystem) Factor() error {
	if m.matrix == nil {
		if m.err != nil {
			return m.err
		}
		return fmt.Errorf("matrix destroyed: %w", ErrBackend)
	}
	m.ordered = true
	if err := m.matrix.Factor(); err != nil {
		return fmt.Errorf("matrix factorization failed: %v: %w", err, ErrSingular)
	}
	m.factored = true
	return nil
}

// Solve solves with the current RHS, factoring first if needed. The returned
// slice is owned by the system and overwritten by the next Solve.
func (m *SparseSystem) Solve() ([]float64, error) {
	if !m.factored {
		if err := m.Factor(); err != nil {
			return nil, err
		}
	}

	copy(m.work, m.rhs)
	x, err := m.matrix.Solve(m.work)
	if err != nil {
		return nil, fmt.Errorf("matrix solve failed: %v: %w", err, ErrSingular)
	}
	if len(x) < m.size+1 {
		return nil, fmt.Errorf("matrix solve returned %d values: %w", len(x), ErrDimension)
	}
	copy(m.solution, x[1:m.size+1])

	if err := checkSolution(m.coeffs, m.solution, m.rhs[1:]); err != nil {
		return nil, err
	}
	return m.solution, nil
}

func (m *SparseSystem) Solution() []float64 { return m.solution }

func (m *SparseSystem) Coefficients() *Sparse { return m.coeffs }

func (m *SparseSystem) PrintSystem(w io.Writer) {
	printSystem(w, m.coeffs, m.rhs[1:])
}

func (m *SparseSystem) Destroy() {
	if m.matrix != nil {
		m.matrix.Destroy()
		m.matrix = nil
	}
	m.ordered = false
	m.factored = false
}

// checkSolution rejects non-finite solutions and large residuals.
func checkSolution(a *Sparse, x, b []float64) error {
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("solution[%d] = %g: %w", i, v, ErrSingular)
		}
	}

	r := make([]float64, len(x))
	if err := a.MulVec(r, x); err != nil {
		return err
	}
	floats.Sub(r, b)
	res := floats.Norm(r, 2)
	scale := floats.Norm(b, 2)
	if scale == 0 {
		scale = 1
	}
	if res/scale > ResidualLimit {
		return fmt.Errorf("relative residual %.3e: %w", res/scale, ErrIllConditioned)
	}
	return nil
}

func printSystem(w io.Writer, a *Sparse, rhs []float64) {
	n := a.Size()
	fmt.Fprintf(w, "\nSystem Equations (%dx%d, %d stored):\n", n, n, a.NNZ())
	row := -1
	for _, e := range a.NonZeros() {
		if e.Row != row {
			if row >= 0 {
				fmt.Fprintf(w, " = %g\n", rhs[row])
			}
			row = e.Row
			fmt.Fprintf(w, "Equation %d:", row)
		}
		fmt.Fprintf(w, "  %+g*p%d", e.Value, e.Col)
	}
	if row >= 0 {
		fmt.Fprintf(w, " = %g\n", rhs[row])
	}
	fmt.Fprintf(w, "\n%v\n", mat.Formatted(a, mat.Prefix(""), mat.Squeeze()))
}
