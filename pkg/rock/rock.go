package rock

import (
	"errors"
	"fmt"
	"math"

	"github.com/edp1096/toy-reservoir/pkg/config"
)

var ErrProperty = errors.New("rock: invalid property")

// Properties holds fluid and rock properties with permeability already
// normalised to one value per cell. Immutable after construction.
type Properties struct {
	Permeability     []float64 // md, per cell
	Porosity         float64
	Viscosity        float64 // cp
	Compressibility  float64 // 1/psi
	FVF              float64 // formation volume factor
	ConversionFactor float64
}

func New(perm []float64, porosity, viscosity, compressibility, fvf, conversion float64) (*Properties, error) {
	if len(perm) == 0 {
		return nil, fmt.Errorf("empty permeability: %w", ErrProperty)
	}
	for i, k := range perm {
		if !(k > 0) || math.IsInf(k, 0) {
			return nil, fmt.Errorf("permeability[%d] = %g: %w", i, k, ErrProperty)
		}
	}
	if !(porosity > 0) || porosity > 1 {
		return nil, fmt.Errorf("porosity = %g: %w", porosity, ErrProperty)
	}
	for name, v := range map[string]float64{
		"viscosity":               viscosity,
		"compressibility":         compressibility,
		"formation volume factor": fvf,
		"conversion factor":       conversion,
	} {
		if !(v > 0) {
			return nil, fmt.Errorf("%s = %g: %w", name, v, ErrProperty)
		}
	}

	p := &Properties{
		Permeability:     make([]float64, len(perm)),
		Porosity:         porosity,
		Viscosity:        viscosity,
		Compressibility:  compressibility,
		FVF:              fvf,
		ConversionFactor: conversion,
	}
	copy(p.Permeability, perm)
	return p, nil
}

// FromConfig expands a scalar permeability to numCells values.
func FromConfig(cfg *config.Config, numCells int) (*Properties, error) {
	perm, err := cfg.Reservoir.Permeability.Expand(numCells)
	if err != nil {
		return nil, fmt.Errorf("permeability: %w", err)
	}
	w := cfg.Fluid.Water
	return New(perm, cfg.Reservoir.Porosity, w.Viscosity, w.Compressibility, w.FormationVolumeFactor, cfg.ConversionFactor)
}

func (p *Properties) NumCells() int { return len(p.Permeability) }

// Mobility is k/mu for cell idx.
func (p *Properties) Mobility(idx int) float64 {
	return p.Permeability[idx] / p.Viscosity
}

// Storage is the compressible storage per unit bulk volume, phi*c/B.
func (p *Properties) Storage() float64 {
	return p.Porosity * p.Compressibility / p.FVF
}
