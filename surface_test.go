package bspline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ungerik/go3d/float64/mat4"
	"github.com/ungerik/go3d/float64/vec3"
	"gonum.org/v1/gonum/mat"
)

func newTestSurface(t *testing.T, degree, n, dim int) *Surface {
	t.Helper()

	ku, err := UniformOpen(degree, 0, 1, n)
	require.NoError(t, err)
	kv, err := UniformOpen(degree, 0, 1, n)
	require.NoError(t, err)

	srf, err := NewSurface(ku, kv, dim)
	require.NoError(t, err)

	return srf
}

// saddle is the graph of u*v, which quadratic splines reproduce exactly.
func saddle(t *testing.T) *SpatialSurface {
	t.Helper()

	srf := newTestSurface(t, 2, 4, 3)
	require.NoError(t, srf.SetFunction(func(u, v float64) float64 { return u * v }))

	spatial, err := srf.Spatial()
	require.NoError(t, err)

	return spatial
}

func TestNewSurfaceErrors(t *testing.T) {
	kv, err := UniformOpen(2, 0, 1, 3)
	require.NoError(t, err)

	_, err = NewSurface(nil, kv, 1)
	assert.ErrorIs(t, err, ErrInvalidDomain)

	_, err = NewSurface(kv, kv, 0)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	srf, err := NewSurface(kv, kv, 2)
	require.NoError(t, err)
	assert.ErrorIs(t, srf.SetControlPoints([][][]float64{zeros(4, 4)}), ErrDimensionMismatch)
	assert.ErrorIs(t, srf.SetControlPoints([][][]float64{zeros(4, 4), zeros(3, 4)}), ErrDimensionMismatch)
	assert.ErrorIs(t, srf.SetControlPoints([][][]float64{zeros(4, 4), zeros(4, 5)}), ErrDimensionMismatch)
	assert.NoError(t, srf.SetControlPoints([][][]float64{zeros(4, 4), zeros(4, 4)}))
}

func TestSurfaceEvaluateGraph(t *testing.T) {
	srf := saddle(t)

	point, err := srf.Evaluate(0.3, 0.6)
	require.NoError(t, err)

	diff(t, UV{0.3, 0.6}, point.UV)
	diff(t, []float64{0.3, 0.6, 0.18}, point.X, approx)
	diff(t, []float64{1, 0, 0.6}, point.Xu, approx)
	diff(t, []float64{0, 1, 0.3}, point.Xv, approx)
	diff(t, []float64{0, 0, 1}, point.Xuv, approx)
	diff(t, []float64{0, 0, 0}, point.Xuu, approx)
	diff(t, []float64{0, 0, 0}, point.Xvv, approx)

	_, err = srf.Evaluate(1.5, 0.5)
	assert.ErrorIs(t, err, ErrDomain)
	_, err = srf.Evaluate(0.5, -1)
	assert.ErrorIs(t, err, ErrDomain)
}

func TestSurfaceEvaluateFiniteDifferences(t *testing.T) {
	srf := newTestSurface(t, 3, 4, 1)

	grid := zeros(6, 6)
	for i := range grid {
		for j := range grid[i] {
			grid[i][j] = math.Sin(float64(2*i+j)) + 0.1*float64(i*j)
		}
	}
	require.NoError(t, srf.SetControlPoints([][][]float64{grid}))

	const h = 1e-5
	u, v := 0.37, 0.58

	at := func(u, v float64) SurfacePoint {
		point, err := srf.Evaluate(u, v)
		require.NoError(t, err)
		return point
	}

	point := at(u, v)
	assert.InDelta(t, (at(u+h, v).X[0]-at(u-h, v).X[0])/(2*h), point.Xu[0], 1e-6)
	assert.InDelta(t, (at(u, v+h).X[0]-at(u, v-h).X[0])/(2*h), point.Xv[0], 1e-6)
	assert.InDelta(t, (at(u+h, v).Xu[0]-at(u-h, v).Xu[0])/(2*h), point.Xuu[0], 1e-5)
	assert.InDelta(t, (at(u, v+h).Xu[0]-at(u, v-h).Xu[0])/(2*h), point.Xuv[0], 1e-5)
	assert.InDelta(t, (at(u, v+h).Xv[0]-at(u, v-h).Xv[0])/(2*h), point.Xvv[0], 1e-5)
}

func TestSurfaceDegreeOneSecondPartials(t *testing.T) {
	srf := newTestSurface(t, 1, 3, 1)
	require.NoError(t, srf.SetControlPoints([][][]float64{{{0, 1, 0}, {1, 3, 1}, {0, 1, 5}}}))

	point, err := srf.Evaluate(0.3, 0.7)
	require.NoError(t, err)
	assert.Equal(t, 0.0, point.Xuu[0])
	assert.Equal(t, 0.0, point.Xvv[0])
	assert.NotEqual(t, 0.0, point.Xu[0])
}

func TestSurfaceEvaluateBatch(t *testing.T) {
	srf := saddle(t)

	samples, err := srf.EvaluateBatch([]float64{0, 0.5, 1}, []float64{1, 0.5, 0})
	require.NoError(t, err)
	require.Len(t, samples.X, 3)
	diff(t, []float64{0, 0.25, 0}, samples.X[2], approx)
	diff(t, []float64{1, 0.5, 0}, samples.Xu[2], approx)

	_, err = srf.EvaluateBatch([]float64{0, 1}, []float64{0})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestParameterGrid(t *testing.T) {
	srf := newTestSurface(t, 2, 3, 1)

	U, V := srf.ParameterGrid(3, 2)
	assert.Equal(t, [][]float64{{0, 0.5, 1}, {0, 0.5, 1}}, U)
	assert.Equal(t, [][]float64{{0, 0, 0}, {1, 1, 1}}, V)
}

func TestSurfaceInterpolateRoundTrip(t *testing.T) {
	srf := newTestSurface(t, 2, 4, 1)

	want := zeros(5, 5)
	for i := range want {
		for j := range want[i] {
			want[i][j] = math.Cos(float64(i)) * float64(j+1)
		}
	}
	require.NoError(t, srf.SetControlPoints([][][]float64{want}))

	U, V := srf.GrevilleGrid()
	var us, vs []float64
	for j := range U {
		us = append(us, U[j]...)
		vs = append(vs, V[j]...)
	}

	samples, err := srf.EvaluateBatch(us, vs)
	require.NoError(t, err)

	fit := newTestSurface(t, 2, 4, 1)
	require.NoError(t, fit.Interpolate(us, vs, samples.X))
	diff(t, [][][]float64{want}, fit.ControlPoints(), cmpApprox(1e-9))

	a, err := fit.InterpolationMatrix(us, vs)
	require.NoError(t, err)
	r, c := a.Dims()
	assert.Equal(t, 25, r)
	assert.Equal(t, 25, c)

	assert.ErrorIs(t, fit.Interpolate(us, vs[:3], samples.X), ErrDimensionMismatch)
	assert.ErrorIs(t, fit.Interpolate(us, vs, [][]float64{{1}}), ErrDimensionMismatch)
}

func TestSurfaceStrictInterpolation(t *testing.T) {
	kv, err := UniformOpen(2, 0, 1, 3)
	require.NoError(t, err)

	srf, err := NewSurface(kv, kv, 1, WithStrictInterpolation())
	require.NoError(t, err)

	err = srf.Interpolate([]float64{0.5}, []float64{0.5}, [][]float64{{1}})
	assert.ErrorIs(t, err, ErrInvalidDomain)
}

func TestSetFunctionScalar(t *testing.T) {
	srf := newTestSurface(t, 3, 3, 1)
	require.NoError(t, srf.SetFunction(func(u, v float64) float64 { return 2*u - v + 1 }))

	point, err := srf.Evaluate(0.2, 0.9)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, point.X[0], 1e-12)

	_, err = srf.Spatial()
	assert.ErrorIs(t, err, ErrDegenerateGeometry)

	planar := newTestSurface(t, 2, 3, 2)
	assert.ErrorIs(t, planar.SetFunction(func(u, v float64) float64 { return 0 }), ErrDegenerateGeometry)
}

func TestNormal(t *testing.T) {
	n, err := saddle(t).Normal(0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1, n[2], 1e-12)

	_, err = newTestSurfaceSpatial(t).Normal(0.5, 0.5)
	assert.ErrorIs(t, err, ErrDegenerateGeometry)
}

func newTestSurfaceSpatial(t *testing.T) *SpatialSurface {
	spatial, err := newTestSurface(t, 2, 3, 3).Spatial()
	require.NoError(t, err)

	return spatial
}

func TestCurvatureOfPlane(t *testing.T) {
	srf := newTestSurface(t, 3, 4, 3)
	require.NoError(t, srf.SetFunction(func(u, v float64) float64 { return 0.5*u - 2*v }))

	spatial, err := srf.Spatial()
	require.NoError(t, err)

	for _, uv := range []UV{{0, 0}, {0.3, 0.8}, {1, 1}} {
		curvature, err := spatial.Curvature(uv[0], uv[1])
		require.NoError(t, err)
		assert.InDelta(t, 0, curvature.Mean, 1e-12)
		assert.InDelta(t, 0, curvature.Gauss, 1e-12)
		assert.InDelta(t, 0, curvature.GaussProxy, 1e-12)
	}
}

func TestCurvatureOfSaddle(t *testing.T) {
	curvature, err := saddle(t).Curvature(0, 0)
	require.NoError(t, err)

	diff(t, [2][2]float64{{0, 1}, {1, 0}}, curvature.II, approx)
	assert.InDelta(t, 0, curvature.Mean, 1e-12)
	assert.InDelta(t, -1, curvature.Gauss, 1e-12)

	// II is symmetric, so the proxy drops the off-diagonal term
	assert.InDelta(t, 0, curvature.GaussProxy, 1e-12)
}

func TestEigenSym2(t *testing.T) {
	cases := [][3]float64{
		{2, 0, 1},
		{0, 1, 0},
		{1, -3, 4},
		{-2, 0.5, -2},
		{5, 0, 5},
	}

	for _, c := range cases {
		k1, k2, dir1, dir2 := eigenSym2(c[0], c[1], c[2])

		var es mat.EigenSym
		require.True(t, es.Factorize(mat.NewSymDense(2, []float64{c[0], c[1], c[1], c[2]}), true))
		values := es.Values(nil)
		assert.InDelta(t, values[0], k1, 1e-12, "%v", c)
		assert.InDelta(t, values[1], k2, 1e-12, "%v", c)

		a := mat.NewSymDense(2, []float64{c[0], c[1], c[1], c[2]})
		for _, pair := range []struct {
			k   float64
			dir [2]float64
		}{{k1, dir1}, {k2, dir2}} {
			assert.InDelta(t, 1, math.Hypot(pair.dir[0], pair.dir[1]), 1e-12)

			var got mat.VecDense
			got.MulVec(a, mat.NewVecDense(2, pair.dir[:]))
			assert.InDelta(t, pair.k*pair.dir[0], got.AtVec(0), 1e-12, "%v", c)
			assert.InDelta(t, pair.k*pair.dir[1], got.AtVec(1), 1e-12, "%v", c)
		}
	}
}

func TestPrincipalCurvatureField(t *testing.T) {
	field, err := saddle(t).PrincipalCurvatureField(3, 2)
	require.NoError(t, err)
	require.Len(t, field, 2)
	require.Len(t, field[0], 3)

	origin := field[0][0]
	assert.Equal(t, UV{0, 0}, origin.UV)
	assert.False(t, origin.Degenerate)
	assert.InDelta(t, -1, origin.K1, 1e-12)
	assert.InDelta(t, 1, origin.K2, 1e-12)

	s := math.Sqrt2 / 2
	diff(t, [2]float64{-s, s}, origin.Dir1, approx)
	diff(t, [2]float64{s, s}, origin.Dir2, approx)

	assert.Equal(t, UV{0.5, 1}, field[1][1].UV)
}

func TestPrincipalCurvatureFieldDegenerate(t *testing.T) {
	field, err := newTestSurfaceSpatial(t).PrincipalCurvatureField(2, 2)
	require.NoError(t, err)

	for _, row := range field {
		for _, sample := range row {
			assert.True(t, sample.Degenerate)
			assert.Equal(t, 0.0, sample.K1)
		}
	}
}

func TestSurfaceTransform(t *testing.T) {
	srf := saddle(t)

	m := mat4.Ident
	m.SetTranslation(&vec3.T{1, -2, 3})
	srf.Transform(&m)

	point, err := srf.Evaluate(0.3, 0.6)
	require.NoError(t, err)
	diff(t, []float64{1.3, -1.4, 3.18}, point.X, approx)
	diff(t, []float64{1, 0, 0.6}, point.Xu, approx)
}
