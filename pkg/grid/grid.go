// Package grid holds the geometry of a regular rectangular Cartesian grid.
//
// Cells are indexed row-major with the x axis varying fastest:
// idx(i, j) = j*Nx + i. The grid is immutable after construction.
package grid

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrDimensions = errors.New("grid: number of cells must be positive")
	ErrSpacing    = errors.New("grid: spacing must be positive and match cell count")
	ErrOutOfRange = errors.New("grid: cell index out of range")
)

type Axis int

const (
	X Axis = iota
	Y
)

func (a Axis) String() string {
	if a == X {
		return "x"
	}
	return "y"
}

type Side int

const (
	Left Side = iota
	Right
	Bottom
	Top
)

var Sides = [4]Side{Left, Right, Bottom, Top}

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	case Bottom:
		return "bottom"
	case Top:
		return "top"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

// ParseSide maps a configuration side name onto a Side.
func ParseSide(name string) (Side, bool) {
	for _, s := range Sides {
		if s.String() == name {
			return s, true
		}
	}
	return 0, false
}

// Axis is the flow direction across the side's faces.
func (s Side) Axis() Axis {
	if s == Left || s == Right {
		return X
	}
	return Y
}

type Grid struct {
	Nx, Ny int
	Dx     []float64 // per column widths, len Nx
	Dy     []float64 // per row heights, len Ny
	Depth  float64
}

// Uniform divides length and height evenly into nx by ny cells.
func Uniform(nx, ny int, length, height, depth float64) (*Grid, error) {
	if nx <= 0 || ny <= 0 {
		return nil, fmt.Errorf("nx=%d, ny=%d: %w", nx, ny, ErrDimensions)
	}
	dx := make([]float64, nx)
	for i := range dx {
		dx[i] = length / float64(nx)
	}
	dy := make([]float64, ny)
	for j := range dy {
		dy[j] = height / float64(ny)
	}
	return New(dx, dy, depth)
}

// New builds a grid from explicit spacings. The slices are copied.
func New(dx, dy []float64, depth float64) (*Grid, error) {
	if len(dx) == 0 || len(dy) == 0 {
		return nil, fmt.Errorf("nx=%d, ny=%d: %w", len(dx), len(dy), ErrDimensions)
	}
	if !(depth > 0) {
		return nil, fmt.Errorf("depth %g: %w", depth, ErrSpacing)
	}
	for _, spacing := range [][]float64{dx, dy} {
		for i, d := range spacing {
			if !(d > 0) || math.IsInf(d, 0) {
				return nil, fmt.Errorf("spacing[%d] = %g: %w", i, d, ErrSpacing)
			}
		}
	}

	g := &Grid{
		Nx:    len(dx),
		Ny:    len(dy),
		Dx:    make([]float64, len(dx)),
		Dy:    make([]float64, len(dy)),
		Depth: depth,
	}
	copy(g.Dx, dx)
	copy(g.Dy, dy)
	return g, nil
}

func (g *Grid) NumCells() int { return g.Nx * g.Ny }

func (g *Grid) Index(i, j int) int { return j*g.Nx + i }

// Coords is the inverse of Index.
func (g *Grid) Coords(idx int) (i, j int) { return idx % g.Nx, idx / g.Nx }

func (g *Grid) InBounds(i, j int) bool {
	return i >= 0 && i < g.Nx && j >= 0 && j < g.Ny
}

func (g *Grid) Valid(idx int) bool { return idx >= 0 && idx < g.NumCells() }

func (g *Grid) Length() float64 { return sum(g.Dx) }

func (g *Grid) Height() float64 { return sum(g.Dy) }

// Width is the cell extent along axis.
func (g *Grid) Width(idx int, axis Axis) float64 {
	i, j := g.Coords(idx)
	if axis == X {
		return g.Dx[i]
	}
	return g.Dy[j]
}

func (g *Grid) BulkVolume(idx int) float64 {
	i, j := g.Coords(idx)
	return g.Dx[i] * g.Dy[j] * g.Depth
}

// FaceArea is the cell's interface area perpendicular to flow along axis.
func (g *Grid) FaceArea(idx int, axis Axis) float64 {
	i, j := g.Coords(idx)
	if axis == X {
		return g.Dy[j] * g.Depth
	}
	return g.Dx[i] * g.Depth
}

// Face is an interior interface between two axis-adjacent cells, Lo < Hi.
type Face struct {
	Lo, Hi int
	Axis   Axis
}

// Faces lists every interior face once, x faces before y faces.
func (g *Grid) Faces() []Face {
	faces := make([]Face, 0, (g.Nx-1)*g.Ny+g.Nx*(g.Ny-1))
	for j := 0; j < g.Ny; j++ {
		for i := 0; i+1 < g.Nx; i++ {
			faces = append(faces, Face{Lo: g.Index(i, j), Hi: g.Index(i+1, j), Axis: X})
		}
	}
	for j := 0; j+1 < g.Ny; j++ {
		for i := 0; i < g.Nx; i++ {
			faces = append(faces, Face{Lo: g.Index(i, j), Hi: g.Index(i, j+1), Axis: Y})
		}
	}
	return faces
}

// Neighbors returns the axis-adjacent cells of idx. No wraparound.
func (g *Grid) Neighbors(idx int) []int {
	i, j := g.Coords(idx)
	out := make([]int, 0, 4)
	for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		if g.InBounds(i+d[0], j+d[1]) {
			out = append(out, g.Index(i+d[0], j+d[1]))
		}
	}
	return out
}

// Adjacent reports whether a and b share a face and along which axis.
func (g *Grid) Adjacent(a, b int) (Axis, bool) {
	if !g.Valid(a) || !g.Valid(b) || a == b {
		return X, false
	}
	ia, ja := g.Coords(a)
	ib, jb := g.Coords(b)
	switch {
	case ja == jb && (ia-ib == 1 || ib-ia == 1):
		return X, true
	case ia == ib && (ja-jb == 1 || jb-ja == 1):
		return Y, true
	}
	return X, false
}

// BoundaryCells lists the cells along side. A side whose axis is collapsed
// to a single cell (left/right with Nx == 1, top/bottom with Ny == 1) has no
// cells and its boundary has no effect.
func (g *Grid) BoundaryCells(s Side) []int {
	if g.Collapsed(s.Axis()) {
		return nil
	}
	var cells []int
	switch s {
	case Left, Right:
		i := 0
		if s == Right {
			i = g.Nx - 1
		}
		for j := 0; j < g.Ny; j++ {
			cells = append(cells, g.Index(i, j))
		}
	case Bottom, Top:
		j := 0
		if s == Top {
			j = g.Ny - 1
		}
		for i := 0; i < g.Nx; i++ {
			cells = append(cells, g.Index(i, j))
		}
	}
	return cells
}

// Collapsed reports whether the grid is a single cell wide along axis.
func (g *Grid) Collapsed(axis Axis) bool {
	if axis == X {
		return g.Nx == 1
	}
	return g.Ny == 1
}

func sum(xs []float64) float64 {
	total := 0.0
	for _, x := range xs {
		total += x
	}
	return total
}
