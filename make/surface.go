package make

import (
	"github.com/caomw/r4r/bspline"
)

// Graph returns the surface of f over the tensor product of u and v. With
// dim 1 the surface is the scalar field f itself, with dim 3 the graph
// (u, v, f(u, v)) in space. Control points are seeded at the Greville
// abscissae, which reproduces f exactly when it is bilinear and both knot
// vectors are open.
func Graph(u, v *bspline.KnotVector, dim int, f func(u, v float64) float64, opts ...bspline.Option) (*bspline.Surface, error) {
	srf, err := bspline.NewSurface(u, v, dim, opts...)
	if err != nil {
		return nil, err
	}

	if err = srf.SetFunction(f); err != nil {
		return nil, err
	}

	return srf, nil
}
