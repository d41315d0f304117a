package bspline

import (
	"errors"

	"github.com/caomw/r4r/bspline/internal"
)

var (
	// ErrInvalidDegree is returned for knot vectors of degree below 1.
	ErrInvalidDegree = errors.New("degree must be at least 1")

	// ErrInvalidDomain covers malformed bounds and too few knots or samples.
	ErrInvalidDomain = errors.New("invalid domain")

	// ErrDomain is returned for parameters outside of the knot domain.
	ErrDomain = internal.ErrOutOfDomain

	// ErrDimensionMismatch is returned when parallel inputs disagree in length.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrDegenerateGeometry is returned when an operation needs a planar or
	// spatial embedding it does not have, or when a surface normal vanishes.
	ErrDegenerateGeometry = errors.New("degenerate geometry")
)
