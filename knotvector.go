package bspline

import (
	"fmt"
	"math"

	"github.com/caomw/r4r/bspline/internal"
	"github.com/james-bowman/sparse"
)

// SparseMatrix is the compressed sparse row matrix produced by
// InterpolationMatrix. It implements gonum's mat.Matrix.
type SparseMatrix = sparse.CSR

// variant holds everything that differs between open and periodic knot
// vectors. Evaluation is shared.
type variant interface {
	// pad surrounds the interior knots with degree-1 ghost knots.
	pad(degree int, interior []float64) internal.KnotVec
	// count is the number of basis functions carried by a padded vector.
	count(degree, length int) int
	// index maps an unbounded basis index onto [0, n).
	index(g, n int) int
	// first is the lowest index of the control point window touched by
	// inserting a knot into span.
	first(span, ncp int) int
	// normalize brings a parameter that left [lo, hi] back into the domain.
	normalize(t, lo, hi float64) float64
	periodic() bool
}

type openVariant struct{}

func (openVariant) pad(degree int, interior []float64) internal.KnotVec {
	data := make(internal.KnotVec, 0, len(interior)+2*(degree-1))
	for i := 0; i < degree-1; i++ {
		data = append(data, interior[0])
	}
	data = append(data, interior...)
	for i := 0; i < degree-1; i++ {
		data = append(data, interior[len(interior)-1])
	}

	return data
}

func (openVariant) count(degree, length int) int { return length - degree + 1 }

func (openVariant) index(g, _ int) int { return g }

func (openVariant) first(_, _ int) int { return 0 }

func (openVariant) normalize(t, lo, hi float64) float64 {
	return math.Min(math.Max(t, lo), hi)
}

func (openVariant) periodic() bool { return false }

type periodicVariant struct{}

// pad extends the interior knots periodically: the lower ghosts repeat the
// last interior spacings shifted down by one period, the upper ghosts the
// first ones shifted up.
func (periodicVariant) pad(degree int, interior []float64) internal.KnotVec {
	n := len(interior)
	period := interior[n-1] - interior[0]

	data := make(internal.KnotVec, 0, n+2*(degree-1))
	for j := 0; j < degree-1; j++ {
		data = append(data, interior[n-degree+j]-period)
	}
	data = append(data, interior...)
	for k := 1; k < degree; k++ {
		data = append(data, interior[k]+period)
	}

	return data
}

func (periodicVariant) count(degree, length int) int { return length - 2*degree + 1 }

func (periodicVariant) index(g, n int) int {
	g %= n
	if g < 0 {
		g += n
	}
	return g
}

func (periodicVariant) first(span, ncp int) int { return span + 1 - ncp }

func (periodicVariant) normalize(t, lo, hi float64) float64 {
	if t >= lo && t <= hi {
		return t
	}

	period := hi - lo
	t = math.Mod(t-lo, period)
	if t < 0 {
		t += period
	}
	return lo + t
}

func (periodicVariant) periodic() bool { return true }

// KnotVector is a padded knot array with its degree. It is either open or
// periodic, fixed by the constructor.
type KnotVector struct {
	degree  int
	data    internal.KnotVec
	ncp     int
	variant variant
}

// UniformOpen returns an open knot vector of the given degree with n
// uniformly spaced knots on [lower, upper]. Curves built on it interpolate
// their first and last control points.
func UniformOpen(degree int, lower, upper float64, n int) (*KnotVector, error) {
	return newUniform(openVariant{}, degree, lower, upper, n)
}

// UniformPeriodic returns a periodic knot vector of the given degree with n
// uniformly spaced knots on [lower, upper]; the first and last knot mark the
// same point of a closed curve, so there are n-1 basis functions. n must
// exceed the degree.
func UniformPeriodic(degree int, lower, upper float64, n int) (*KnotVector, error) {
	if degree >= 1 && n <= degree {
		return nil, fmt.Errorf("%w: periodic degree %d needs more than %d knots", ErrInvalidDomain, degree, n)
	}

	return newUniform(periodicVariant{}, degree, lower, upper, n)
}

// OpenKnots returns an open knot vector of the given degree on arbitrary
// non-decreasing knots. The first and last knot bound the domain.
func OpenKnots(degree int, knots []float64) (*KnotVector, error) {
	return newKnotVector(openVariant{}, degree, knots)
}

// PeriodicKnots is OpenKnots for closed curves; it needs more knots than the
// degree.
func PeriodicKnots(degree int, knots []float64) (*KnotVector, error) {
	if degree >= 1 && len(knots) <= degree {
		return nil, fmt.Errorf("%w: periodic degree %d needs more than %d knots", ErrInvalidDomain, degree, len(knots))
	}

	return newKnotVector(periodicVariant{}, degree, knots)
}

func newUniform(v variant, degree int, lower, upper float64, n int) (*KnotVector, error) {
	if degree < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDegree, degree)
	}

	if !(upper > lower) || math.IsInf(upper-lower, 0) {
		return nil, fmt.Errorf("%w: bounds [%g, %g]", ErrInvalidDomain, lower, upper)
	}

	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 knots, got %d", ErrInvalidDomain, n)
	}

	return newKnotVector(v, degree, internal.Linspace(lower, upper, n))
}

func newKnotVector(v variant, degree int, interior internal.KnotVec) (*KnotVector, error) {
	if degree < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDegree, degree)
	}

	if len(interior) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 knots, got %d", ErrInvalidDomain, len(interior))
	}

	lower, upper := interior[0], interior[len(interior)-1]
	if !(upper > lower) || math.IsInf(upper-lower, 0) || !interior.IsNonDecreasing() {
		return nil, fmt.Errorf("%w: knots must be non-decreasing on a finite, non-empty interval", ErrInvalidDomain)
	}

	data := v.pad(degree, interior)

	return &KnotVector{
		degree:  degree,
		data:    data,
		ncp:     v.count(degree, len(data)),
		variant: v,
	}, nil
}

func (this *KnotVector) Degree() int { return this.degree }

func (this *KnotVector) Periodic() bool { return this.variant.periodic() }

// Data returns a copy of the padded knot array.
func (this *KnotVector) Data() []float64 { return this.data.Clone() }

// NumControlPoints is the number of basis functions, and so the number of
// control points of a curve built on this vector.
func (this *KnotVector) NumControlPoints() int { return this.ncp }

func (this *KnotVector) Clone() *KnotVector {
	return &KnotVector{
		degree:  this.degree,
		data:    this.data.Clone(),
		ncp:     this.ncp,
		variant: this.variant,
	}
}

// Domain returns the knots without ghost padding.
func (this *KnotVector) Domain() []float64 {
	return this.data.Domain(this.degree).Clone()
}

// Bounds returns the first and last parameter of the domain.
func (this *KnotVector) Bounds() (lower, upper float64) {
	return this.data.Bounds(this.degree)
}

// Linspace returns n uniformly spaced parameters spanning the domain.
func (this *KnotVector) Linspace(n int) []float64 {
	lower, upper := this.Bounds()
	return internal.Linspace(lower, upper, n)
}

// Span returns the index of the knot interval containing t.
func (this *KnotVector) Span(t float64) (int, error) {
	return this.data.Span(this.degree, t)
}

// ConvertIndex maps the local basis function j active on span to its
// global index. Periodic vectors wrap around the seam.
func (this *KnotVector) ConvertIndex(span, j int) int {
	return this.variant.index(span-this.degree+1+j, this.ncp)
}

func (this *KnotVector) normalize(t float64) float64 {
	lower, upper := this.Bounds()
	return this.variant.normalize(t, lower, upper)
}

// BasisFunction returns the value of global basis function i at t, which is
// zero unless i is active on the span of t.
func (this *KnotVector) BasisFunction(t float64, i int) (float64, error) {
	values, span, err := internal.BasisFunctions(this.data, this.degree, t)
	if err != nil {
		return 0, err
	}

	var result float64
	for j, value := range values {
		if this.ConvertIndex(span, j) == i {
			result += value
		}
	}

	return result, nil
}

// BasisFunctions evaluates every basis function at every parameter. Row i of
// the result holds basis function i.
func (this *KnotVector) BasisFunctions(ts []float64) ([][]float64, error) {
	result := make([][]float64, this.ncp)
	for i := range result {
		result[i] = make([]float64, len(ts))
	}

	for k, t := range ts {
		values, span, err := internal.BasisFunctions(this.data, this.degree, t)
		if err != nil {
			return nil, err
		}

		for j, value := range values {
			result[this.ConvertIndex(span, j)][k] += value
		}
	}

	return result, nil
}

// row returns the basis functions that do not vanish at t as global column
// indices and values. Columns repeated by a periodic wrap are merged.
func (this *KnotVector) row(t float64) ([]int, []float64, error) {
	values, span, err := internal.BasisFunctions(this.data, this.degree, t)
	if err != nil {
		return nil, nil, err
	}

	cols := make([]int, 0, len(values))
	vals := make([]float64, 0, len(values))

next:
	for j, value := range values {
		col := this.ConvertIndex(span, j)
		for k := range cols {
			if cols[k] == col {
				vals[k] += value
				continue next
			}
		}

		cols = append(cols, col)
		vals = append(vals, value)
	}

	return cols, vals, nil
}

// InterpolationMatrix returns the len(ts) x NumControlPoints collocation
// matrix; row k holds the degree+1 basis values at ts[k].
func (this *KnotVector) InterpolationMatrix(ts []float64) (*SparseMatrix, error) {
	coo := sparse.NewCOO(len(ts), this.ncp, nil, nil, nil)

	for k, t := range ts {
		cols, vals, err := this.row(t)
		if err != nil {
			return nil, err
		}

		for i, col := range cols {
			coo.Set(k, col, vals[i])
		}
	}

	return coo.ToCSR(), nil
}

// GrevilleAbscissae returns the parameter associated with each control
// point. Periodic abscissae are wrapped into the domain.
func (this *KnotVector) GrevilleAbscissae() []float64 {
	result := this.data.Greville(this.degree, this.ncp)
	for i, t := range result {
		result[i] = this.normalize(t)
	}

	return result
}

// insertKnot adds t to the vector and returns the control points of the
// same curve in the refined basis (Boehm). points is indexed [dim][ncp].
func (this *KnotVector) insertKnot(t float64, points [][]float64) ([][]float64, error) {
	span, err := this.Span(t)
	if err != nil {
		return nil, err
	}

	lower, upper := this.Bounds()
	t = math.Min(math.Max(t, lower), upper)
	p, ncp := this.degree, this.ncp

	refined := make([][]float64, len(points))
	for d := range refined {
		refined[d] = make([]float64, ncp+1)
	}

	start := this.variant.first(span, ncp)
	for g := start; g <= start+ncp; g++ {
		dst := this.variant.index(g, ncp+1)

		switch {
		case g <= span-p+1:
			src := this.variant.index(g, ncp)
			for d := range points {
				refined[d][dst] = points[d][src]
			}
		case g >= span+2:
			src := this.variant.index(g-1, ncp)
			for d := range points {
				refined[d][dst] = points[d][src]
			}
		default:
			var alpha float64
			if lo, hi := this.data[g-1], this.data[g+p-1]; hi > lo {
				alpha = (t - lo) / (hi - lo)
			}

			cur, prev := this.variant.index(g, ncp), this.variant.index(g-1, ncp)
			for d := range points {
				refined[d][dst] = alpha*points[d][cur] + (1-alpha)*points[d][prev]
			}
		}
	}

	data := this.data.Inserted(span+1, t)
	if this.variant.periodic() {
		data = this.variant.pad(p, data.Domain(p))
	}

	this.data = data
	this.ncp++

	return refined, nil
}
