package matrix

// StampMatrix is what flow elements see while loading a system.
// Indices are 0-based cell indices.
type StampMatrix interface {
	AddElement(i, j int, value float64)
	AddRHS(i int, value float64)
}

// LinearSystem is a square system A x = b that can be loaded, factored
// once and solved for any number of right-hand sides.
type LinearSystem interface {
	StampMatrix
	Size() int
	Clear()
	ClearRHS()
	SetRHS(b []float64) error
	RHS() []float64
	Factor() error
	Solve() ([]float64, error)
	Coefficients() *Sparse
	Destroy()
}

type Backend int

const (
	SparseBackend Backend = iota
	DenseBackend
)

// NewSystem creates an empty size x size system on the chosen backend.
func NewSystem(backend Backend, size int) (LinearSystem, error) {
	if backend == DenseBackend {
		return NewDenseSystem(size)
	}
	return NewSparseSystem(size)
}
