package config

import "errors"

var (
	// ErrMissing indicates a required key is absent from the configuration.
	ErrMissing = errors.New("config: missing required key")
	// ErrNonPositive indicates a physical quantity that must be > 0 is not.
	ErrNonPositive = errors.New("config: value must be positive")
	// ErrOutOfRange indicates a bounded value (porosity, theta) is outside its range.
	ErrOutOfRange = errors.New("config: value out of range")
	// ErrLengthMismatch indicates a per-cell array does not match the grid.
	ErrLengthMismatch = errors.New("config: array length does not match grid")
	// ErrBoundaryKind indicates an unrecognized boundary condition type.
	ErrBoundaryKind = errors.New("config: unrecognized boundary condition type")
	// ErrUnknownSide indicates a boundary condition for a side that does not exist.
	ErrUnknownSide = errors.New("config: unrecognized boundary side")
	// ErrSolver indicates an unrecognized solver specification.
	ErrSolver = errors.New("config: unrecognized solver specification")
	// ErrFormat indicates the configuration document could not be decoded.
	ErrFormat = errors.New("config: malformed document")
)
