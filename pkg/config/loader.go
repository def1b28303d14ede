package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// FormatFromPath picks the decoder from the file extension; anything that is
// not .json is read as YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg, err := Parse(content, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a configuration document. Unknown keys fail.
func Parse(data []byte, format Format) (*Config, error) {
	cfg, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode reads a document without validating it.
func Decode(r io.Reader, format Format) (*Config, error) {
	cfg := &Config{}
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, wrapFormat(err)
		}
	default:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("empty document: %w", ErrFormat)
			}
			return nil, wrapFormat(err)
		}
	}
	return cfg, nil
}

func wrapFormat(err error) error {
	for _, sentinel := range []error{ErrSolver, ErrMissing, ErrFormat} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("%v: %w", err, ErrFormat)
}

func Write(w io.Writer, cfg *Config, format Format) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(cfg)
}

const sumTolerance = 1e-6

// Validate checks every physical and numerical constraint. It is called at
// construction so nothing downstream ever sees an invalid configuration.
func (c *Config) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"conversion factor", c.ConversionFactor},
		{"fluid.water.compressibility", c.Fluid.Water.Compressibility},
		{"fluid.water.viscosity", c.Fluid.Water.Viscosity},
		{"fluid.water.formation volume factor", c.Fluid.Water.FormationVolumeFactor},
		{"reservoir.length", c.Reservoir.Length},
		{"reservoir.height", c.Reservoir.Height},
		{"reservoir.depth", c.Reservoir.Depth},
		{"numerical.time step", c.Numerical.TimeStep},
	}
	for _, p := range positive {
		if math.IsNaN(p.value) || p.value <= 0 {
			return fmt.Errorf("%s = %g: %w", p.name, p.value, ErrNonPositive)
		}
	}

	if c.Initial.Pressure == nil {
		return fmt.Errorf("initial conditions.pressure: %w", ErrMissing)
	}

	phi := c.Reservoir.Porosity
	if math.IsNaN(phi) || phi <= 0 || phi > 1 {
		return fmt.Errorf("reservoir.porosity = %g not in (0, 1]: %w", phi, ErrOutOfRange)
	}

	nx, ny := c.Numerical.Grids.X, c.Numerical.Grids.Y
	if nx <= 0 || ny <= 0 {
		return fmt.Errorf("numerical.number of grids = {x: %d, y: %d}: %w", nx, ny, ErrNonPositive)
	}
	if c.Numerical.NumberOfTimeSteps < 0 {
		return fmt.Errorf("numerical.number of time steps = %d: %w", c.Numerical.NumberOfTimeSteps, ErrNonPositive)
	}
	if c.Plots.Frequency < 0 {
		return fmt.Errorf("plots.frequency = %d: %w", c.Plots.Frequency, ErrNonPositive)
	}

	if !c.Reservoir.Permeability.IsSet() {
		return fmt.Errorf("reservoir.permeability: %w", ErrMissing)
	}
	perm, err := c.Reservoir.Permeability.Expand(nx * ny)
	if err != nil {
		return fmt.Errorf("reservoir.permeability: %w", err)
	}
	for i, k := range perm {
		if math.IsNaN(k) || k <= 0 {
			return fmt.Errorf("reservoir.permeability[%d] = %g: %w", i, k, ErrNonPositive)
		}
	}

	if err := validateSpacing("numerical.delta x", c.Numerical.DeltaX, nx, c.Reservoir.Length); err != nil {
		return err
	}
	if err := validateSpacing("numerical.delta y", c.Numerical.DeltaY, ny, c.Reservoir.Height); err != nil {
		return err
	}

	s := c.Numerical.Solver
	if s.Method == 0 {
		return fmt.Errorf("numerical.solver: %w", ErrMissing)
	}
	if !s.Valid() {
		return fmt.Errorf("numerical.solver %s: theta must be in [0, 1]: %w", s, ErrOutOfRange)
	}

	switch c.Backend() {
	case SparseSolver, DenseSolver:
	default:
		return fmt.Errorf("numerical.linear solver %q: %w", c.Numerical.LinearSolver, ErrSolver)
	}

	if c.Boundaries == nil {
		return fmt.Errorf("boundary conditions: %w", ErrMissing)
	}
	for side, bc := range c.Boundaries {
		if err := ValidateBoundary(side, bc); err != nil {
			return err
		}
	}
	return nil
}

func ValidateBoundary(side string, bc Boundary) error {
	switch side {
	case Left, Right, Top, Bottom:
	default:
		return fmt.Errorf("boundary conditions.%s: %w", side, ErrUnknownSide)
	}
	switch bc.Type {
	case PrescribedPressure, PrescribedFlux:
	default:
		return fmt.Errorf("boundary conditions.%s.type %q: %w", side, bc.Type, ErrBoundaryKind)
	}
	if math.IsNaN(bc.Value) || math.IsInf(bc.Value, 0) {
		return fmt.Errorf("boundary conditions.%s.value = %g: %w", side, bc.Value, ErrOutOfRange)
	}
	return nil
}

// validateSpacing checks an optional per-column/per-row spacing override.
// A scalar override is the cell width itself, so it must tile the extent.
func validateSpacing(name string, f Field, n int, extent float64) error {
	if !f.IsSet() {
		return nil
	}
	values, err := f.Expand(n)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	sum := 0.0
	for i, d := range values {
		if math.IsNaN(d) || d <= 0 {
			return fmt.Errorf("%s[%d] = %g: %w", name, i, d, ErrNonPositive)
		}
		sum += d
	}
	if math.Abs(sum-extent) > sumTolerance*extent {
		return fmt.Errorf("%s sums to %g, want %g: %w", name, sum, extent, ErrLengthMismatch)
	}
	return nil
}
