package make

import (
	"fmt"

	"github.com/caomw/r4r/bspline"
	"gonum.org/v1/gonum/floats"
)

func Line(first, last []float64, opts ...bspline.Option) (*bspline.Curve, error) {
	return Polyline([][]float64{first, last}, opts...)
}

// Generate a degree 1 curve through a sequence of points
//
// **params**
// + array of points in curve, all of the same dimension
//
// **returns**
// + a curve on [0, 1] parameterized by normalized chord length
func Polyline(pts [][]float64, opts ...bspline.Option) (*bspline.Curve, error) {
	if len(pts) < 2 {
		return nil, fmt.Errorf("%w: polyline needs 2 points, got %d", bspline.ErrInvalidDomain, len(pts))
	}

	dim := len(pts[0])
	for _, pt := range pts {
		if len(pt) != dim {
			return nil, fmt.Errorf("%w: mixed point dimensions", bspline.ErrDimensionMismatch)
		}
	}

	knots := make([]float64, len(pts))

	var lsum float64
	for i := 0; i < len(pts)-1; i++ {
		lsum += floats.Distance(pts[i], pts[i+1], 2)
		knots[i+1] = lsum
	}

	if lsum == 0 {
		return nil, fmt.Errorf("%w: polyline has zero length", bspline.ErrDegenerateGeometry)
	}

	// normalize the knot array
	for i := range knots {
		knots[i] /= lsum
	}

	kv, err := bspline.OpenKnots(1, knots)
	if err != nil {
		return nil, err
	}

	crv, err := bspline.NewCurve(kv, dim, opts...)
	if err != nil {
		return nil, err
	}

	controlPoints := make([][]float64, dim)
	for d := range controlPoints {
		controlPoints[d] = make([]float64, len(pts))
		for i, pt := range pts {
			controlPoints[d][i] = pt[d]
		}
	}

	if err = crv.SetControlPoints(controlPoints); err != nil {
		return nil, err
	}

	return crv, nil
}
