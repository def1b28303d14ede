package matrix

import (
	"fmt"
	"log"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Sparse is a dictionary-of-keys square matrix. Only explicitly added
// entries exist; every other entry is a structural zero. It satisfies
// mat.Matrix so it can be formatted and combined with gonum types.
type Sparse struct {
	n    int
	data map[index]float64
}

type index struct {
	row, col int
}

// Entry is one stored coefficient.
type Entry struct {
	Row, Col int
	Value    float64
}

var _ mat.Matrix = (*Sparse)(nil)

func NewSparse(n int) *Sparse {
	return &Sparse{
		n:    n,
		data: make(map[index]float64),
	}
}

func (m *Sparse) Dims() (r, c int) { return m.n, m.n }

func (m *Sparse) Size() int { return m.n }

func (m *Sparse) At(i, j int) float64 {
	if i < 0 || i >= m.n || j < 0 || j >= m.n {
		panic(mat.ErrIndexOutOfRange)
	}
	return m.data[index{i, j}]
}

func (m *Sparse) T() mat.Matrix { return mat.Transpose{Matrix: m} }

// Add accumulates value into (i, j), creating the entry if needed.
func (m *Sparse) Add(i, j int, value float64) {
	if i < 0 || j < 0 || i >= m.n || j >= m.n {
		log.Printf("Warning: Matrix index out of bounds (i=%d, j=%d, size=%d)", i, j, m.n)
		return
	}
	m.data[index{i, j}] += value
}

// Has reports whether (i, j) is a stored entry.
func (m *Sparse) Has(i, j int) bool {
	_, ok := m.data[index{i, j}]
	return ok
}

func (m *Sparse) NNZ() int { return len(m.data) }

// NonZeros returns stored entries in row-major order.
func (m *Sparse) NonZeros() []Entry {
	entries := make([]Entry, 0, len(m.data))
	for ij, v := range m.data {
		entries = append(entries, Entry{Row: ij.row, Col: ij.col, Value: v})
	}
	sort.Slice(entries, func(a, b int) bool {
		if entries[a].Row != entries[b].Row {
			return entries[a].Row < entries[b].Row
		}
		return entries[a].Col < entries[b].Col
	})
	return entries
}

func (m *Sparse) Diag(i int) float64 { return m.At(i, i) }

// RowSum is the sum of all stored entries in row i.
func (m *Sparse) RowSum(i int) float64 {
	total := 0.0
	for j := 0; j < m.n; j++ {
		total += m.data[index{i, j}]
	}
	return total
}

// MulVec computes dst = m * x.
func (m *Sparse) MulVec(dst, x []float64) error {
	if len(x) != m.n || len(dst) != m.n {
		return fmt.Errorf("MulVec: %dx%d by %d into %d: %w", m.n, m.n, len(x), len(dst), ErrDimension)
	}
	for i := range dst {
		dst[i] = 0
	}
	for ij, aij := range m.data {
		dst[ij.row] += aij * x[ij.col]
	}
	return nil
}

// IsSymmetric compares every stored entry with its transpose.
func (m *Sparse) IsSymmetric(tol float64) bool {
	for ij, v := range m.data {
		if math.Abs(v-m.data[index{ij.col, ij.row}]) > tol*math.Max(1, math.Abs(v)) {
			return false
		}
	}
	return true
}

func (m *Sparse) Clone() *Sparse {
	out := NewSparse(m.n)
	for ij, v := range m.data {
		out.data[ij] = v
	}
	return out
}

// Dense copies the matrix into a gonum dense matrix.
func (m *Sparse) Dense() *mat.Dense {
	d := mat.NewDense(m.n, m.n, nil)
	for ij, v := range m.data {
		d.Set(ij.row, ij.col, v)
	}
	return d
}
