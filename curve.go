package bspline

import (
	"fmt"
	"math"

	"github.com/caomw/r4r/bspline/internal"
	"github.com/caomw/r4r/bspline/intersect"
	"github.com/sgostarter/i/l"
	"github.com/spf13/cast"
	"github.com/ungerik/go3d/float64/mat4"
	"github.com/ungerik/go3d/float64/vec3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type (
	// CurvePoint is a curve position together with its first and second
	// derivative with respect to the parameter.
	CurvePoint struct {
		T          float64
		X, Xt, Xtt []float64
	}

	// CurveSamples holds EvaluateBatch results indexed [dim][sample].
	CurveSamples struct {
		T          []float64
		X, Xt, Xtt [][]float64
	}

	ClosestPointResult struct {
		X []float64
		T float64
		// Residuals holds |x0 - x(t)| for the start value and every iterate.
		Residuals []float64
	}
)

// Curve is a non-rational B-spline curve embedded in dim dimensions.
//
// A Curve must not be read while InsertKnot runs on it.
type Curve struct {
	knots *KnotVector
	dim   int

	// control points indexed [dim][ncp]
	controlPoints [][]float64

	opts   options
	logger l.Wrapper
}

// NewCurve creates a curve on a private copy of knots with all control
// points at the origin.
func NewCurve(knots *KnotVector, dim int, opts ...Option) (*Curve, error) {
	if knots == nil {
		return nil, fmt.Errorf("%w: nil knot vector", ErrInvalidDomain)
	}

	if dim < 1 {
		return nil, fmt.Errorf("%w: curve dimension %d", ErrDimensionMismatch, dim)
	}

	o := newOptions(opts)

	this := &Curve{
		knots:  knots.Clone(),
		dim:    dim,
		opts:   o,
		logger: o.logger.WithFields(l.StringField(l.ClsKey, "Curve")),
	}
	this.controlPoints = zeros(dim, this.knots.ncp)

	return this, nil
}

func (this *Curve) Dim() int {
	return this.dim
}

// Knots returns a copy of the knot vector.
func (this *Curve) Knots() *KnotVector {
	return this.knots.Clone()
}

// ControlPoints returns a copy of the control points, indexed [dim][ncp].
func (this *Curve) ControlPoints() [][]float64 {
	return clone2d(this.controlPoints)
}

// SetControlPoints replaces the control points; points must be indexed
// [dim][ncp].
func (this *Curve) SetControlPoints(points [][]float64) error {
	if err := this.checkShape(points, this.knots.ncp); err != nil {
		return err
	}

	this.controlPoints = clone2d(points)

	return nil
}

func (this *Curve) checkShape(points [][]float64, n int) error {
	if len(points) != this.dim {
		return fmt.Errorf("%w: %d channels for a %d dimensional curve", ErrDimensionMismatch, len(points), this.dim)
	}

	for d, channel := range points {
		if len(channel) != n {
			return fmt.Errorf("%w: channel %d has %d values, want %d", ErrDimensionMismatch, d, len(channel), n)
		}
	}

	return nil
}

// Interpolate fits the control points to samples points[d][k] taken at
// parameters ts[k] in the least squares sense. All channels share one
// factorization of the collocation matrix.
//
// With fewer samples than control points the system is under-determined and
// the minimum-norm solution is used, unless WithStrictInterpolation was set.
func (this *Curve) Interpolate(ts []float64, points [][]float64) error {
	if err := this.checkShape(points, len(ts)); err != nil {
		return err
	}

	ncp := this.knots.ncp

	if len(ts) == 0 {
		return fmt.Errorf("%w: no samples", ErrInvalidDomain)
	}

	if len(ts) < ncp {
		if this.opts.strict {
			return fmt.Errorf("%w: %d samples for %d control points", ErrInvalidDomain, len(ts), ncp)
		}

		this.logger.WithFields(l.IntField("samples", len(ts)), l.IntField("controlPoints", ncp)).
			Debug("under-determined interpolation, using minimum norm solution")
	}

	a, err := this.knots.InterpolationMatrix(ts)
	if err != nil {
		return err
	}

	b := mat.NewDense(len(ts), this.dim, nil)
	for d, channel := range points {
		b.SetCol(d, channel)
	}

	x, rank, err := internal.SolveLeastSquares(a, b, this.opts.rankTolerance)
	if err != nil {
		this.logger.WithFields(l.ErrorField(err)).Error("least squares failed")
		return fmt.Errorf("interpolate: %w", err)
	}

	if rank < ncp {
		this.logger.WithFields(l.IntField("rank", rank), l.IntField("controlPoints", ncp)).
			Debug("rank deficient collocation matrix")
	}

	for d := range this.controlPoints {
		mat.Col(this.controlPoints[d], d, x)
	}

	return nil
}

// Evaluate returns the position and the first two derivatives at t. Degree
// 1 curves report zero derivatives.
func (this *Curve) Evaluate(t float64) (CurvePoint, error) {
	kv := this.knots

	ders, span, err := internal.DerivativeBasisFunctions(kv.data, kv.degree, t, 2)
	if err != nil {
		return CurvePoint{}, err
	}

	point := CurvePoint{
		T:   t,
		X:   make([]float64, this.dim),
		Xt:  make([]float64, this.dim),
		Xtt: make([]float64, this.dim),
	}

	for j := 0; j <= kv.degree; j++ {
		idx := kv.ConvertIndex(span, j)

		for d, channel := range this.controlPoints {
			point.X[d] += ders[0][j] * channel[idx]

			if kv.degree > 1 {
				point.Xt[d] += ders[1][j] * channel[idx]
				point.Xtt[d] += ders[2][j] * channel[idx]
			}
		}
	}

	return point, nil
}

// EvaluateBatch evaluates the curve at every parameter of ts.
func (this *Curve) EvaluateBatch(ts []float64) (*CurveSamples, error) {
	samples := &CurveSamples{
		T:   append([]float64(nil), ts...),
		X:   zeros(this.dim, len(ts)),
		Xt:  zeros(this.dim, len(ts)),
		Xtt: zeros(this.dim, len(ts)),
	}

	for k, t := range ts {
		point, err := this.Evaluate(t)
		if err != nil {
			return nil, err
		}

		for d := 0; d < this.dim; d++ {
			samples.X[d][k] = point.X[d]
			samples.Xt[d][k] = point.Xt[d]
			samples.Xtt[d][k] = point.Xtt[d]
		}
	}

	return samples, nil
}

// SampleLocation returns n positions uniformly spaced in the parameter
// domain, indexed [dim][n].
func (this *Curve) SampleLocation(n int) ([][]float64, error) {
	samples, err := this.EvaluateBatch(this.knots.Linspace(n))
	if err != nil {
		return nil, err
	}

	return samples.X, nil
}

// Distance samples the curve at n uniformly spaced parameters and returns
// the Euclidean distance of each sample to x0.
func (this *Curve) Distance(x0 []float64, n int) ([]float64, error) {
	if len(x0) != this.dim {
		return nil, fmt.Errorf("%w: point has %d coordinates, curve %d", ErrDimensionMismatch, len(x0), this.dim)
	}

	ts := this.knots.Linspace(n)
	result := make([]float64, len(ts))

	for k, t := range ts {
		point, err := this.Evaluate(t)
		if err != nil {
			return nil, err
		}
		result[k] = floats.Distance(x0, point.X, 2)
	}

	return result, nil
}

// ClosestPoint projects x0 onto the curve by Newton iteration on
//
//	f(t) = <x0 - x(t), x'(t)> = 0
//
// starting from t0. It stops after the configured number of iterations, when
// the residual norm changes by less than eps, or when the Newton denominator
// vanishes. Iterates leaving the domain are clamped, or wrapped on periodic
// curves.
//
// Convergence is local: a poor t0 may end at a non-global closest point or
// not converge at all, so callers should inspect Residuals.
func (this *Curve) ClosestPoint(x0 []float64, t0, eps float64) (*ClosestPointResult, error) {
	if len(x0) != this.dim {
		return nil, fmt.Errorf("%w: point has %d coordinates, curve %d", ErrDimensionMismatch, len(x0), this.dim)
	}

	point, err := this.Evaluate(t0)
	if err != nil {
		return nil, err
	}

	r := make([]float64, this.dim)
	residual := func(point CurvePoint) float64 {
		floats.SubTo(r, x0, point.X)
		return floats.Norm(r, 2)
	}

	res := residual(point)
	result := &ClosestPointResult{Residuals: []float64{res}}

	var i int
	for i < this.opts.maxNewtonIterations {
		//	f' = <r, x''> - <x', x'>
		den := floats.Dot(r, point.Xtt) - floats.Dot(point.Xt, point.Xt)
		if den == 0 {
			break
		}

		t := this.knots.normalize(point.T - floats.Dot(r, point.Xt)/den)

		if point, err = this.Evaluate(t); err != nil {
			return nil, err
		}
		i++

		next := residual(point)
		result.Residuals = append(result.Residuals, next)

		if math.Abs(next-res) < eps {
			break
		}
		res = next
	}

	result.X, result.T = point.X, point.T

	this.logger.WithFields(l.IntField("iterations", i), l.StringField("t", cast.ToString(point.T)),
		l.StringField("residual", cast.ToString(result.Residuals[len(result.Residuals)-1]))).
		Debug("closest point finished")

	return result, nil
}

// BoundingBox returns the box around the control points. By the convex hull
// property it contains the whole curve.
func (this *Curve) BoundingBox() *intersect.BoundingBox {
	pts := make([][]float64, this.knots.ncp)
	for i := range pts {
		pts[i] = make([]float64, this.dim)
		for d, channel := range this.controlPoints {
			pts[i][d] = channel[i]
		}
	}

	return new(intersect.BoundingBox).AddRange(pts)
}

// InsertKnot refines the knot vector at t without changing the shape of the
// curve.
func (this *Curve) InsertKnot(t float64) error {
	refined, err := this.knots.insertKnot(t, this.controlPoints)
	if err != nil {
		return err
	}

	this.controlPoints = refined

	this.logger.WithFields(l.StringField("t", cast.ToString(t)), l.IntField("controlPoints", this.knots.ncp)).
		Debug("knot inserted")

	return nil
}

// Transform applies the affine map m to a 3 dimensional curve. B-splines are
// affinely invariant, so mapping the control points maps the curve.
func (this *Curve) Transform(m *mat4.T) error {
	if this.dim != 3 {
		return fmt.Errorf("%w: transform needs a 3 dimensional curve, got %d", ErrDegenerateGeometry, this.dim)
	}

	transformPoints(m, this.controlPoints)

	return nil
}

// Planar returns the 2 dimensional view of the curve.
func (this *Curve) Planar() (*PlanarCurve, error) {
	if this.dim != 2 {
		return nil, fmt.Errorf("%w: curve has dimension %d, not 2", ErrDegenerateGeometry, this.dim)
	}

	return &PlanarCurve{this}, nil
}

// transformPoints maps every column of the [3][n] array pts through m.
func transformPoints(m *mat4.T, pts [][]float64) {
	for i := range pts[0] {
		v := vec3.T{pts[0][i], pts[1][i], pts[2][i]}
		v = m.MulVec3(&v)

		for d := range pts {
			pts[d][i] = v[d]
		}
	}
}

func zeros(n, m int) [][]float64 {
	result := make([][]float64, n)
	for i := range result {
		result[i] = make([]float64, m)
	}

	return result
}

func clone2d(src [][]float64) [][]float64 {
	result := make([][]float64, len(src))
	for i := range src {
		result[i] = append([]float64(nil), src[i]...)
	}

	return result
}
