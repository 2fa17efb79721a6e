package shape

import "github.com/pkg/errors"

// Shape errors. Operations wrap these with context, test them with errors.Is.
var (
	ErrShapeMismatch  = errors.New("shape mismatch")
	ErrNameNotFound   = errors.New("dimension not found")
	ErrInvalidReorder = errors.New("invalid reorder")
)
