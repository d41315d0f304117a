package bspline

import (
	"fmt"

	"github.com/caomw/r4r/bspline/internal"
	"github.com/james-bowman/sparse"
	"github.com/sgostarter/i/l"
	"gonum.org/v1/gonum/mat"
)

type UV [2]float64

// SurfacePoint is a surface position with all partial derivatives up to
// second order.
type SurfacePoint struct {
	UV                       UV
	X, Xu, Xv, Xuu, Xuv, Xvv []float64
}

// SurfaceSamples holds EvaluateBatch results indexed [dim][sample].
type SurfaceSamples struct {
	U, V                     []float64
	X, Xu, Xv, Xuu, Xuv, Xvv [][]float64
}

// Surface is a tensor product B-spline surface embedded in dim dimensions.
type Surface struct {
	knotsU, knotsV *KnotVector
	dim            int

	// control points indexed [dim][ncpU][ncpV]
	controlPoints [][][]float64

	opts   options
	logger l.Wrapper
}

// NewSurface creates a surface on private copies of the knot vectors with
// all control points at the origin.
func NewSurface(knotsU, knotsV *KnotVector, dim int, opts ...Option) (*Surface, error) {
	if knotsU == nil || knotsV == nil {
		return nil, fmt.Errorf("%w: nil knot vector", ErrInvalidDomain)
	}

	if dim < 1 {
		return nil, fmt.Errorf("%w: surface dimension %d", ErrDimensionMismatch, dim)
	}

	o := newOptions(opts)

	this := &Surface{
		knotsU: knotsU.Clone(),
		knotsV: knotsV.Clone(),
		dim:    dim,
		opts:   o,
		logger: o.logger.WithFields(l.StringField(l.ClsKey, "Surface")),
	}

	this.controlPoints = make([][][]float64, dim)
	for d := range this.controlPoints {
		this.controlPoints[d] = zeros(this.knotsU.ncp, this.knotsV.ncp)
	}

	return this, nil
}

func (this *Surface) Dim() int {
	return this.dim
}

func (this *Surface) KnotsU() *KnotVector {
	return this.knotsU.Clone()
}

func (this *Surface) KnotsV() *KnotVector {
	return this.knotsV.Clone()
}

// ControlPoints returns a copy of the control grid, indexed [dim][ncpU][ncpV].
func (this *Surface) ControlPoints() [][][]float64 {
	result := make([][][]float64, this.dim)
	for d := range result {
		result[d] = clone2d(this.controlPoints[d])
	}

	return result
}

// SetControlPoints replaces the control grid; points must be indexed
// [dim][ncpU][ncpV].
func (this *Surface) SetControlPoints(points [][][]float64) error {
	if len(points) != this.dim {
		return fmt.Errorf("%w: %d channels for a %d dimensional surface", ErrDimensionMismatch, len(points), this.dim)
	}

	for _, grid := range points {
		if len(grid) != this.knotsU.ncp {
			return fmt.Errorf("%w: %d rows, want %d", ErrDimensionMismatch, len(grid), this.knotsU.ncp)
		}

		for _, row := range grid {
			if len(row) != this.knotsV.ncp {
				return fmt.Errorf("%w: %d columns, want %d", ErrDimensionMismatch, len(row), this.knotsV.ncp)
			}
		}
	}

	for d := range points {
		this.controlPoints[d] = clone2d(points[d])
	}

	return nil
}

// Evaluate the surface and its partial derivatives
// (corresponds to algorithm 3.6 from The NURBS book, Piegl & Tiller 2nd edition)
//
// **params**
// + u parameter at which to evaluate the derivatives
// + v parameter at which to evaluate the derivatives
//
// **returns**
// + the point with its partials; Xuu is zero below degree 2 in u, Xvv below degree 2 in v
func (this *Surface) Evaluate(u, v float64) (SurfacePoint, error) {
	ku, kv := this.knotsU, this.knotsV

	uders, spanU, err := internal.DerivativeBasisFunctions(ku.data, ku.degree, u, 2)
	if err != nil {
		return SurfacePoint{}, fmt.Errorf("u: %w", err)
	}

	vders, spanV, err := internal.DerivativeBasisFunctions(kv.data, kv.degree, v, 2)
	if err != nil {
		return SurfacePoint{}, fmt.Errorf("v: %w", err)
	}

	point := SurfacePoint{
		UV:  UV{u, v},
		X:   make([]float64, this.dim),
		Xu:  make([]float64, this.dim),
		Xv:  make([]float64, this.dim),
		Xuu: make([]float64, this.dim),
		Xuv: make([]float64, this.dim),
		Xvv: make([]float64, this.dim),
	}

	// temp[k][d] accumulates the k-th u derivative along one v column
	temp := zeros(3, this.dim)

	for s := 0; s <= kv.degree; s++ {
		iv := kv.ConvertIndex(spanV, s)

		for k := range temp {
			for d := range temp[k] {
				temp[k][d] = 0
			}
		}

		for r := 0; r <= ku.degree; r++ {
			iu := ku.ConvertIndex(spanU, r)

			for d, grid := range this.controlPoints {
				c := grid[iu][iv]
				temp[0][d] += uders[0][r] * c
				temp[1][d] += uders[1][r] * c
				temp[2][d] += uders[2][r] * c
			}
		}

		for d := 0; d < this.dim; d++ {
			point.X[d] += vders[0][s] * temp[0][d]
			point.Xu[d] += vders[0][s] * temp[1][d]
			point.Xv[d] += vders[1][s] * temp[0][d]
			point.Xuv[d] += vders[1][s] * temp[1][d]

			if ku.degree > 1 {
				point.Xuu[d] += vders[0][s] * temp[2][d]
			}
			if kv.degree > 1 {
				point.Xvv[d] += vders[2][s] * temp[0][d]
			}
		}
	}

	return point, nil
}

// EvaluateBatch evaluates the surface at the parameter pairs (us[k], vs[k]).
func (this *Surface) EvaluateBatch(us, vs []float64) (*SurfaceSamples, error) {
	if len(us) != len(vs) {
		return nil, fmt.Errorf("%w: %d u and %d v parameters", ErrDimensionMismatch, len(us), len(vs))
	}

	n := len(us)
	samples := &SurfaceSamples{
		U:   append([]float64(nil), us...),
		V:   append([]float64(nil), vs...),
		X:   zeros(this.dim, n),
		Xu:  zeros(this.dim, n),
		Xv:  zeros(this.dim, n),
		Xuu: zeros(this.dim, n),
		Xuv: zeros(this.dim, n),
		Xvv: zeros(this.dim, n),
	}

	for k := range us {
		point, err := this.Evaluate(us[k], vs[k])
		if err != nil {
			return nil, err
		}

		for d := 0; d < this.dim; d++ {
			samples.X[d][k] = point.X[d]
			samples.Xu[d][k] = point.Xu[d]
			samples.Xv[d][k] = point.Xv[d]
			samples.Xuu[d][k] = point.Xuu[d]
			samples.Xuv[d][k] = point.Xuv[d]
			samples.Xvv[d][k] = point.Xvv[d]
		}
	}

	return samples, nil
}

// InterpolationMatrix returns the collocation matrix of the tensor product
// basis. Column cu*ncpV + cv belongs to control point (cu, cv).
func (this *Surface) InterpolationMatrix(us, vs []float64) (*SparseMatrix, error) {
	if len(us) != len(vs) {
		return nil, fmt.Errorf("%w: %d u and %d v parameters", ErrDimensionMismatch, len(us), len(vs))
	}

	ku, kv := this.knotsU, this.knotsV
	coo := sparse.NewCOO(len(us), ku.ncp*kv.ncp, nil, nil, nil)

	for k := range us {
		colsU, valsU, err := ku.row(us[k])
		if err != nil {
			return nil, fmt.Errorf("u: %w", err)
		}

		colsV, valsV, err := kv.row(vs[k])
		if err != nil {
			return nil, fmt.Errorf("v: %w", err)
		}

		for r, cu := range colsU {
			for s, cv := range colsV {
				coo.Set(k, cu*kv.ncp+cv, valsU[r]*valsV[s])
			}
		}
	}

	return coo.ToCSR(), nil
}

// Interpolate fits the control grid to samples points[d][k] taken at
// (us[k], vs[k]) in the least squares sense.
func (this *Surface) Interpolate(us, vs []float64, points [][]float64) error {
	if len(points) != this.dim {
		return fmt.Errorf("%w: %d channels for a %d dimensional surface", ErrDimensionMismatch, len(points), this.dim)
	}

	for d, channel := range points {
		if len(channel) != len(us) {
			return fmt.Errorf("%w: channel %d has %d values, want %d", ErrDimensionMismatch, d, len(channel), len(us))
		}
	}

	ncpU, ncpV := this.knotsU.ncp, this.knotsV.ncp
	unknowns := ncpU * ncpV

	if len(us) == 0 {
		return fmt.Errorf("%w: no samples", ErrInvalidDomain)
	}

	if len(us) < unknowns {
		if this.opts.strict {
			return fmt.Errorf("%w: %d samples for %d control points", ErrInvalidDomain, len(us), unknowns)
		}

		this.logger.WithFields(l.IntField("samples", len(us)), l.IntField("controlPoints", unknowns)).
			Debug("under-determined interpolation, using minimum norm solution")
	}

	a, err := this.InterpolationMatrix(us, vs)
	if err != nil {
		return err
	}

	b := mat.NewDense(len(us), this.dim, nil)
	for d, channel := range points {
		b.SetCol(d, channel)
	}

	x, rank, err := internal.SolveLeastSquares(a, b, this.opts.rankTolerance)
	if err != nil {
		this.logger.WithFields(l.ErrorField(err)).Error("least squares failed")
		return fmt.Errorf("interpolate: %w", err)
	}

	if rank < unknowns {
		this.logger.WithFields(l.IntField("rank", rank), l.IntField("controlPoints", unknowns)).
			Debug("rank deficient collocation matrix")
	}

	for d, grid := range this.controlPoints {
		for cu := range grid {
			for cv := range grid[cu] {
				grid[cu][cv] = x.At(cu*ncpV+cv, d)
			}
		}
	}

	return nil
}

// meshgrid returns U[j][i] = us[i] and V[j][i] = vs[j].
func meshgrid(us, vs []float64) (U, V [][]float64) {
	U, V = zeros(len(vs), len(us)), zeros(len(vs), len(us))

	for j := range vs {
		copy(U[j], us)
		for i := range us {
			V[j][i] = vs[j]
		}
	}

	return U, V
}

// ParameterGrid returns nu x nv uniformly spaced parameter pairs covering
// both domains, as two [nv][nu] arrays.
func (this *Surface) ParameterGrid(nu, nv int) (U, V [][]float64) {
	return meshgrid(this.knotsU.Linspace(nu), this.knotsV.Linspace(nv))
}

// GrevilleGrid is the parameter grid of the Greville abscissae, as two
// [ncpV][ncpU] arrays.
func (this *Surface) GrevilleGrid() (U, V [][]float64) {
	return meshgrid(this.knotsU.GrevilleAbscissae(), this.knotsV.GrevilleAbscissae())
}

// SetFunction seeds the control grid from f sampled at the Greville
// abscissae. A 1 dimensional surface becomes f itself; a 3 dimensional
// surface becomes the graph (u, v, f(u, v)).
func (this *Surface) SetFunction(f func(u, v float64) float64) error {
	if this.dim != 1 && this.dim != 3 {
		return fmt.Errorf("%w: function graphs need dimension 1 or 3, got %d", ErrDegenerateGeometry, this.dim)
	}

	gu, gv := this.knotsU.GrevilleAbscissae(), this.knotsV.GrevilleAbscissae()

	for cu, u := range gu {
		for cv, v := range gv {
			value := f(u, v)

			if this.dim == 1 {
				this.controlPoints[0][cu][cv] = value
				continue
			}

			this.controlPoints[0][cu][cv] = u
			this.controlPoints[1][cu][cv] = v
			this.controlPoints[2][cu][cv] = value
		}
	}

	return nil
}

// Spatial returns the 3 dimensional view of the surface.
func (this *Surface) Spatial() (*SpatialSurface, error) {
	if this.dim != 3 {
		return nil, fmt.Errorf("%w: surface has dimension %d, not 3", ErrDegenerateGeometry, this.dim)
	}

	return &SpatialSurface{this}, nil
}
