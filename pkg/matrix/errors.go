package matrix

import "errors"

var (
	// ErrSingular is returned when factorization meets a zero pivot or the
	// solution is not finite.
	ErrSingular = errors.New("matrix: singular matrix")
	// ErrIllConditioned is returned when the solve cannot be trusted: the
	// condition estimate or the residual is above the accepted limit.
	ErrIllConditioned = errors.New("matrix: ill-conditioned system")
	// ErrDimension indicates mismatched vector or matrix sizes.
	ErrDimension = errors.New("matrix: dimension mismatch")
	// ErrBackend indicates the sparse backend could not be created.
	ErrBackend = errors.New("matrix: backend failure")
)
