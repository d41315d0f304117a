package bspline

import (
	"fmt"

	"github.com/caomw/r4r/bspline/internal"
	"github.com/caomw/r4r/bspline/intersect"
	"github.com/ungerik/go3d/float64/vec2"
)

func checkDegree(degree int) error {
	if degree < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidDegree, degree)
	}

	return nil
}

// FindSpan returns the index i with knots[i] <= t < knots[i+1] for a knot
// array padded with degree-1 ghost knots. The last span is closed at the
// upper domain bound. Parameters outside [knots[degree-1], knots[len-degree]]
// fail with ErrDomain.
func FindSpan(knots []float64, degree int, t float64) (int, error) {
	if err := checkDegree(degree); err != nil {
		return 0, err
	}

	return internal.KnotVec(knots).Span(degree, t)
}

// EvaluateBasis returns the degree+1 basis functions that do not vanish at t
// and the span they belong to. Value j belongs to the global basis function
// span-degree+1+j.
func EvaluateBasis(knots []float64, degree int, t float64) ([]float64, int, error) {
	if err := checkDegree(degree); err != nil {
		return nil, 0, err
	}

	return internal.BasisFunctions(internal.KnotVec(knots), degree, t)
}

// EvaluateBasisDerivatives is EvaluateBasis followed by the first n
// derivatives; row k of the result holds the k-th derivatives.
func EvaluateBasisDerivatives(knots []float64, degree int, t float64, n int) ([][]float64, int, error) {
	if err := checkDegree(degree); err != nil {
		return nil, 0, err
	}

	if n < 0 {
		return nil, 0, fmt.Errorf("%w: derivative order %d", ErrInvalidDomain, n)
	}

	return internal.DerivativeBasisFunctions(internal.KnotVec(knots), degree, t, n)
}

// UnwrapPhase turns a sequence of wrapped angles, e.g. from atan2, into a
// continuous phase track.
func UnwrapPhase(angles []float64) []float64 {
	return internal.UnwrapPhase(angles)
}

// CharacteristicFunction is 1 on grid points inside the closed polyline and 0
// elsewhere. x and y hold the grid coordinates and must share a shape.
func CharacteristicFunction(x, y [][]float64, polyline []vec2.T) ([][]float64, error) {
	if len(x) != len(y) {
		return nil, ErrDimensionMismatch
	}
	for i := range x {
		if len(x[i]) != len(y[i]) {
			return nil, ErrDimensionMismatch
		}
	}

	// points outside the box of the polyline skip the crossing count
	box := new(intersect.BoundingBox)
	for i := range polyline {
		box.Add(polyline[i][:])
	}

	result := make([][]float64, len(x))
	for i := range x {
		result[i] = make([]float64, len(x[i]))

		for j := range x[i] {
			pt := vec2.T{x[i][j], y[i][j]}
			if box.Contains(pt[:], 0) && internal.PointInPolygon(&pt, polyline) {
				result[i][j] = 1
			}
		}
	}

	return result, nil
}
