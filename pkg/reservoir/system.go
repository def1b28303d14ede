package reservoir

import (
	"fmt"
	"io"

	"github.com/edp1096/toy-reservoir/pkg/flow"
	"github.com/edp1096/toy-reservoir/pkg/matrix"
	"github.com/edp1096/toy-reservoir/pkg/util"
)

// The theta scheme solves
//
//	(B - theta*T) p_new = (B + (1-theta)*T) p_old + q
//
// with T carrying the negative diagonal. For theta = 0 the left side is the
// diagonal B and no factorization is needed.

// Stamp loads A = B - theta*T into m.
func (r *Reservoir) Stamp(m matrix.StampMatrix) error {
	if err := flow.StampAll(m, flow.StorageElements(r.accum)); err != nil {
		return err
	}
	implicit, _ := util.GetThetaCoeffs(r.scheme)
	if implicit == 0 {
		return nil
	}
	for _, e := range r.terms.T.NonZeros() {
		m.AddElement(e.Row, e.Col, -implicit*e.Value)
	}
	return nil
}

// BuildSystem (re)assembles and factors the step matrix if anything it
// depends on changed since the last build. Explicit schemes have no system.
func (r *Reservoir) BuildSystem() error {
	if !r.dirty {
		return nil
	}
	if !r.scheme.NeedsSolve() {
		r.Destroy()
		r.dirty = false
		return nil
	}
	if r.system == nil {
		system, err := matrix.NewSystem(r.backend, r.NumCells())
		if err != nil {
			return fmt.Errorf("creating system: %w", err)
		}
		r.system = system
	}

	r.system.Clear()
	if err := r.Stamp(r.system); err != nil {
		return fmt.Errorf("stamping system: %w", err)
	}
	if err := r.system.Factor(); err != nil {
		return err
	}
	r.dirty = false
	return nil
}

// System returns the current step system, nil for explicit schemes.
func (r *Reservoir) System() matrix.LinearSystem { return r.system }

// RHS writes (B + (1-theta)*T) p + q into dst.
func (r *Reservoir) RHS(dst, p []float64) error {
	n := r.NumCells()
	if len(dst) != n || len(p) != n {
		return fmt.Errorf("RHS: len(dst)=%d, len(p)=%d, cells=%d: %w", len(dst), len(p), n, ErrDimension)
	}
	_, explicit := util.GetThetaCoeffs(r.scheme)
	if explicit != 0 {
		if err := r.terms.T.MulVec(dst, p); err != nil {
			return err
		}
	} else {
		for i := range dst {
			dst[i] = 0
		}
	}
	for i := range dst {
		dst[i] = r.accum[i]*p[i] + explicit*dst[i] + r.terms.Q[i]
	}
	return nil
}

// Advance computes the pressure after one step from p into dst.
func (r *Reservoir) Advance(dst, p []float64) error {
	if err := r.BuildSystem(); err != nil {
		return err
	}
	if err := r.RHS(dst, p); err != nil {
		return err
	}
	if !r.scheme.NeedsSolve() {
		for i := range dst {
			dst[i] /= r.accum[i]
		}
		return nil
	}

	if err := r.system.SetRHS(dst); err != nil {
		return err
	}
	x, err := r.system.Solve()
	if err != nil {
		return err
	}
	copy(dst, x)
	return nil
}

// BoundaryInflow is the total rate entering through all boundaries at
// pressure p. Interior faces cancel because T's interior part has zero row
// and column sums.
func (r *Reservoir) BoundaryInflow(p []float64) float64 {
	total := 0.0
	for i, q := range r.terms.Q {
		total += q + (r.terms.T.Diag(i)-r.interior.Diag(i))*p[i]
	}
	return total
}

// StorageChange is sum(B * (pNew - pOld)), the volume stored over one step
// expressed as a rate.
func (r *Reservoir) StorageChange(pOld, pNew []float64) float64 {
	total := 0.0
	for i, b := range r.accum {
		total += b * (pNew[i] - pOld[i])
	}
	return total
}

// SteadySystem builds -T p = q on a fresh system. Without any prescribed
// pressure boundary the system is singular.
func (r *Reservoir) SteadySystem() (matrix.LinearSystem, error) {
	system, err := matrix.NewSystem(r.backend, r.NumCells())
	if err != nil {
		return nil, fmt.Errorf("creating system: %w", err)
	}
	for _, e := range r.terms.T.NonZeros() {
		system.AddElement(e.Row, e.Col, -e.Value)
	}
	if err := system.SetRHS(r.terms.Q); err != nil {
		system.Destroy()
		return nil, err
	}
	return system, nil
}

func (r *Reservoir) PrintSystem(w io.Writer) {
	if p, ok := r.system.(interface{ PrintSystem(io.Writer) }); ok {
		p.PrintSystem(w)
		return
	}
	fmt.Fprintf(w, "\nExplicit scheme, diagonal system B:\n%v\n", r.accum)
}
