package artifact

import "errors"

var (
	// ErrUnsupportedOperation is returned when a container-only
	// operation is invoked on a kind with no child sequence.
	ErrUnsupportedOperation = errors.New("operation not supported for this artifact kind")

	// ErrShapeMismatch is returned when user state is copied between
	// trees whose root ids differ.
	ErrShapeMismatch = errors.New("tree shapes do not match")
)
