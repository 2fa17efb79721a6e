package tensor

import "github.com/pkg/errors"

// Tensor errors. Shape and backend errors are re-used from their packages.
var (
	ErrUnsupportedVariant = errors.New("unsupported tensor variant")
	ErrUnsupportedSolver  = errors.New("unsupported solver")
	ErrNotImplemented     = errors.New("not implemented")
	ErrNotClose           = errors.New("values not close")
	ErrNotConverged       = errors.New("solve did not converge")
)
