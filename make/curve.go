package make

import (
	"fmt"
	"math"

	"github.com/caomw/r4r/bspline"
	"github.com/ungerik/go3d/float64/vec2"
)

// samplesPerControlPoint oversamples circle fits so the collocation system
// is overdetermined.
const samplesPerControlPoint = 4

// Identity returns the 1 dimensional curve x(t) = t on knots, with the
// Greville abscissae as control points.
func Identity(knots *bspline.KnotVector, opts ...bspline.Option) (*bspline.Curve, error) {
	crv, err := bspline.NewCurve(knots, 1, opts...)
	if err != nil {
		return nil, err
	}

	if err = crv.SetControlPoints([][]float64{knots.GrevilleAbscissae()}); err != nil {
		return nil, err
	}

	return crv, nil
}

// Create a circle
//
// **params**
// + the center
// + radius of the circle
// + degree of the periodic spline
// + number of knots on [0, 2π]
//
// **returns**
// + a closed planar curve fitted to the circle by least squares, with the
// parameter equal to the angle
func Circle(center *vec2.T, radius float64, degree, n int, opts ...bspline.Option) (*bspline.PlanarCurve, error) {
	if !(radius > 0) {
		return nil, fmt.Errorf("%w: radius %g", bspline.ErrDegenerateGeometry, radius)
	}

	knots, err := bspline.UniformPeriodic(degree, 0, 2*math.Pi, n)
	if err != nil {
		return nil, err
	}

	crv, err := bspline.NewCurve(knots, 2, opts...)
	if err != nil {
		return nil, err
	}

	m := samplesPerControlPoint * knots.NumControlPoints()
	ts := make([]float64, m)
	pts := [][]float64{make([]float64, m), make([]float64, m)}

	for i := range ts {
		ts[i] = 2 * math.Pi * float64(i) / float64(m)

		sin, cos := math.Sincos(ts[i])
		pt := vec2.T{cos, sin}
		pt.Scale(radius).Add(center)

		pts[0][i], pts[1][i] = pt[0], pt[1]
	}

	if err = crv.Interpolate(ts, pts); err != nil {
		return nil, err
	}

	return crv.Planar()
}
