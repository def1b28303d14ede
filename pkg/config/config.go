package config

import (
	"github.com/edp1096/toy-reservoir/internal/consts"
	"github.com/edp1096/toy-reservoir/pkg/util"
)

// Boundary condition types
const (
	PrescribedPressure = "prescribed pressure"
	PrescribedFlux     = "prescribed flux"
)

// Boundary sides
const (
	Left   = "left"
	Right  = "right"
	Top    = "top"
	Bottom = "bottom"
)

// Linear solver backends
const (
	SparseSolver = "sparse"
	DenseSolver  = "dense"
)

var Sides = []string{Left, Right, Top, Bottom}

type Config struct {
	ConversionFactor float64             `yaml:"conversion factor" json:"conversion factor"`
	Fluid            Fluid               `yaml:"fluid" json:"fluid"`
	Reservoir        Reservoir           `yaml:"reservoir" json:"reservoir"`
	Initial          Initial             `yaml:"initial conditions" json:"initial conditions"`
	Boundaries       map[string]Boundary `yaml:"boundary conditions" json:"boundary conditions"`
	Numerical        Numerical           `yaml:"numerical" json:"numerical"`
	Plots            Plots               `yaml:"plots,omitempty" json:"plots,omitempty"`
}

type Fluid struct {
	Water Water `yaml:"water" json:"water"`
}

type Water struct {
	Compressibility       float64 `yaml:"compressibility" json:"compressibility"`
	Viscosity             float64 `yaml:"viscosity" json:"viscosity"`
	FormationVolumeFactor float64 `yaml:"formation volume factor" json:"formation volume factor"`
}

type Reservoir struct {
	Permeability Field   `yaml:"permeability" json:"permeability"`
	Porosity     float64 `yaml:"porosity" json:"porosity"`
	Length       float64 `yaml:"length" json:"length"`
	Height       float64 `yaml:"height" json:"height"`
	Depth        float64 `yaml:"depth" json:"depth"`
}

type Initial struct {
	Pressure *float64 `yaml:"pressure" json:"pressure"`
}

type Boundary struct {
	Type  string  `yaml:"type" json:"type"`
	Value float64 `yaml:"value" json:"value"`
}

type Numerical struct {
	Solver            Solver  `yaml:"solver" json:"solver"`
	Grids             Grids   `yaml:"number of grids" json:"number of grids"`
	TimeStep          float64 `yaml:"time step" json:"time step"`
	NumberOfTimeSteps int     `yaml:"number of time steps" json:"number of time steps"`
	DeltaX            Field   `yaml:"delta x,omitempty" json:"delta x,omitempty"`
	DeltaY            Field   `yaml:"delta y,omitempty" json:"delta y,omitempty"`
	LinearSolver      string  `yaml:"linear solver,omitempty" json:"linear solver,omitempty"`
}

type Grids struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

// Plots is only read by snapshot recording; the core ignores it.
type Plots struct {
	Frequency int `yaml:"frequency" json:"frequency"`
}

// Default returns the reference single-row, four-cell problem.
func Default() *Config {
	p := 1000.0
	return &Config{
		ConversionFactor: consts.DARCY_FIELD,
		Fluid: Fluid{Water: Water{
			Compressibility:       1e-6,
			Viscosity:             1,
			FormationVolumeFactor: 1,
		}},
		Reservoir: Reservoir{
			Permeability: Scalar(50),
			Porosity:     0.2,
			Length:       10000,
			Height:       200000,
			Depth:        1,
		},
		Initial: Initial{Pressure: &p},
		Boundaries: map[string]Boundary{
			Left:   {Type: PrescribedPressure, Value: 2000},
			Right:  {Type: PrescribedFlux, Value: 0},
			Top:    {Type: PrescribedFlux, Value: 0},
			Bottom: {Type: PrescribedFlux, Value: 0},
		},
		Numerical: Numerical{
			Solver:            Solver{Scheme: util.Implicit()},
			Grids:             Grids{X: 4, Y: 1},
			TimeStep:          consts.DAY,
			NumberOfTimeSteps: 3,
		},
		Plots: Plots{Frequency: 1},
	}
}

// Clone returns a deep copy so callers can derive variants without aliasing.
func (c *Config) Clone() *Config {
	out := *c
	out.Reservoir.Permeability = c.Reservoir.Permeability.clone()
	out.Numerical.DeltaX = c.Numerical.DeltaX.clone()
	out.Numerical.DeltaY = c.Numerical.DeltaY.clone()
	if c.Initial.Pressure != nil {
		p := *c.Initial.Pressure
		out.Initial.Pressure = &p
	}
	if c.Boundaries != nil {
		out.Boundaries = make(map[string]Boundary, len(c.Boundaries))
		for side, bc := range c.Boundaries {
			out.Boundaries[side] = bc
		}
	}
	return &out
}

// InitialPressure returns the configured initial pressure, or 0 when unset.
func (c *Config) InitialPressure() float64 {
	if c.Initial.Pressure == nil {
		return 0
	}
	return *c.Initial.Pressure
}

// Boundary returns the condition for side. The section itself is required,
// sides left out of it are no-flow.
func (c *Config) Boundary(side string) Boundary {
	if bc, ok := c.Boundaries[side]; ok {
		return bc
	}
	return Boundary{Type: PrescribedFlux, Value: 0}
}

func (c *Config) NumCells() int {
	return c.Numerical.Grids.X * c.Numerical.Grids.Y
}

func (c *Config) Backend() string {
	if c.Numerical.LinearSolver == "" {
		return SparseSolver
	}
	return c.Numerical.LinearSolver
}
