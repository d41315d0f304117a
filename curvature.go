package bspline

import (
	"errors"
	"fmt"
	"math"

	"github.com/sgostarter/i/l"
	"github.com/spf13/cast"
	"github.com/ungerik/go3d/float64/mat4"
	"github.com/ungerik/go3d/float64/vec3"
)

// SpatialSurface exposes the differential geometry of a surface in space.
// Obtain one with Surface.Spatial.
type SpatialSurface struct {
	*Surface
}

// Curvature holds the second fundamental form at a point and the scalars
// derived from it.
type Curvature struct {
	// Mean is half the trace of II.
	Mean float64
	// GaussProxy is II00*II11 - II01 + II10. With II symmetric this reduces
	// to II00*II11 and is not the Gauss curvature; see Gauss.
	GaussProxy float64
	// Gauss is det(II) = II00*II11 - II01².
	Gauss float64
	II    [2][2]float64
}

// PrincipalCurvature is one sample of PrincipalCurvatureField. K1 <= K2 are
// the eigenvalues of II and Dir1, Dir2 the matching unit eigenvectors in
// parameter coordinates.
type PrincipalCurvature struct {
	UV         UV
	K1, K2     float64
	Dir1, Dir2 [2]float64
	// Degenerate marks samples with a vanishing normal; all other fields
	// but UV are zero.
	Degenerate bool
}

func toVec3(x []float64) vec3.T {
	return vec3.T{x[0], x[1], x[2]}
}

func unitNormal(point *SurfacePoint) (vec3.T, error) {
	xu, xv := toVec3(point.Xu), toVec3(point.Xv)

	n := vec3.Cross(&xu, &xv)
	if n.Length() == 0 {
		return n, fmt.Errorf("%w: vanishing normal at (%g, %g)", ErrDegenerateGeometry, point.UV[0], point.UV[1])
	}

	return *n.Normalize(), nil
}

// Normal returns the unit normal Xu × Xv / |Xu × Xv|.
func (this *SpatialSurface) Normal(u, v float64) (vec3.T, error) {
	point, err := this.Evaluate(u, v)
	if err != nil {
		return vec3.T{}, err
	}

	return unitNormal(&point)
}

// Curvature computes the second fundamental form, the projection of the
// second partials onto the unit normal, and the curvatures derived from it.
func (this *SpatialSurface) Curvature(u, v float64) (*Curvature, error) {
	point, err := this.Evaluate(u, v)
	if err != nil {
		return nil, err
	}

	n, err := unitNormal(&point)
	if err != nil {
		return nil, err
	}

	xuu, xuv, xvv := toVec3(point.Xuu), toVec3(point.Xuv), toVec3(point.Xvv)

	var II [2][2]float64
	II[0][0] = vec3.Dot(&n, &xuu)
	II[0][1] = vec3.Dot(&n, &xuv)
	II[1][0] = II[0][1]
	II[1][1] = vec3.Dot(&n, &xvv)

	return &Curvature{
		Mean:       0.5 * (II[0][0] + II[1][1]),
		GaussProxy: II[0][0]*II[1][1] - II[0][1] + II[1][0],
		Gauss:      II[0][0]*II[1][1] - II[0][1]*II[0][1],
		II:         II,
	}, nil
}

// eigenSym2 decomposes the symmetric matrix [[a, b], [b, c]]. Eigenvalues
// are returned in ascending order.
func eigenSym2(a, b, c float64) (k1, k2 float64, dir1, dir2 [2]float64) {
	mean, half := 0.5*(a+c), 0.5*(a-c)
	r := math.Hypot(half, b)

	k1, k2 = mean-r, mean+r

	if r == 0 {
		return k1, k2, [2]float64{1, 0}, [2]float64{0, 1}
	}

	theta := 0.5 * math.Atan2(b, half)
	sin, cos := math.Sincos(theta)

	return k1, k2, [2]float64{-sin, cos}, [2]float64{cos, sin}
}

// PrincipalCurvatureField evaluates principal curvatures and directions on
// the nu x nv parameter grid of ParameterGrid; the result is indexed
// [nv][nu].
func (this *SpatialSurface) PrincipalCurvatureField(nu, nv int) ([][]PrincipalCurvature, error) {
	U, V := this.ParameterGrid(nu, nv)

	field := make([][]PrincipalCurvature, len(U))
	for j := range U {
		field[j] = make([]PrincipalCurvature, len(U[j]))

		for i := range U[j] {
			sample := &field[j][i]
			sample.UV = UV{U[j][i], V[j][i]}

			curvature, err := this.Curvature(U[j][i], V[j][i])
			if errors.Is(err, ErrDegenerateGeometry) {
				this.logger.WithFields(l.StringField("u", cast.ToString(U[j][i])), l.StringField("v", cast.ToString(V[j][i]))).
					Debug("degenerate curvature sample")
				sample.Degenerate = true
				continue
			}
			if err != nil {
				return nil, err
			}

			II := curvature.II
			sample.K1, sample.K2, sample.Dir1, sample.Dir2 = eigenSym2(II[0][0], II[0][1], II[1][1])
		}
	}

	return field, nil
}

// Transform applies the affine map m to the surface.
func (this *SpatialSurface) Transform(m *mat4.T) {
	for cu := range this.controlPoints[0] {
		transformPoints(m, [][]float64{
			this.controlPoints[0][cu],
			this.controlPoints[1][cu],
			this.controlPoints[2][cu],
		})
	}
}
