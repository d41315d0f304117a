package internal

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Relative slack granted to parameters just outside of the knot domain.
const SpanTolerance = 1e-10

var ErrOutOfDomain = errors.New("parameter outside of knot domain")

// KnotVec is a padded knot array. Unlike a clamped vector from The NURBS
// Book, only degree - 1 ghost knots are stored on either side, so the valid
// domain is [this[degree-1], this[len-degree]].
type KnotVec []float64

func (this KnotVec) Clone() KnotVec {
	return append(KnotVec(nil), this...)
}

func (this KnotVec) Bounds(degree int) (min, max float64) {
	return this[degree-1], this[len(this)-degree]
}

// Domain strips the ghost knots. For degree 1 this is the whole vector.
func (this KnotVec) Domain(degree int) KnotVec {
	return this[degree-1 : len(this)-degree+1]
}

func (this KnotVec) tolerance(degree int) float64 {
	min, max := this.Bounds(degree)
	return SpanTolerance * math.Max(1, max-min)
}

func (this KnotVec) clamp(degree int, u float64) float64 {
	min, max := this.Bounds(degree)
	return math.Min(math.Max(u, min), max)
}

// Find the span on the knot array knots of the given parameter
// (algorithm 2.1 from The NURBS book, Piegl & Tiller 2nd edition, on the
// padded layout)
//
// **params**
// + integer degree of function
// + parameter
//
// **returns**
// + the index i of the knot span, this[i] <= u < this[i+1]; the last non-empty
// span is closed at the upper end of the domain
//
func (this KnotVec) Span(degree int, u float64) (int, error) {
	if degree < 1 || len(this) < 2*degree {
		return 0, fmt.Errorf("%w: degree %d with %d knots", ErrOutOfDomain, degree, len(this))
	}

	min, max := this.Bounds(degree)
	tol := this.tolerance(degree)

	if math.IsNaN(u) || u < min-tol || u > max+tol {
		return 0, fmt.Errorf("%w: %g not in [%g, %g]", ErrOutOfDomain, u, min, max)
	}

	low, high := degree-1, len(this)-degree

	if u >= max {
		span := high - 1
		for span > low && this[span] == this[span+1] {
			span--
		}
		return span, nil
	}

	if u <= min {
		span := low
		for span < high-1 && this[span] == this[span+1] {
			span++
		}
		return span, nil
	}

	mid := (low + high) / 2

	for u < this[mid] || u >= this[mid+1] {
		if u < this[mid] {
			high = mid
		} else {
			low = mid
		}

		mid = (low + high) / 2
	}

	return mid, nil
}

func (this KnotVec) IsNonDecreasing() bool {
	rep := this[0]
	for _, knot := range this[1:] {
		if knot < rep {
			return false
		}
		rep = knot
	}
	return true
}

// Greville returns the first count Greville abscissae, each the mean of
// degree consecutive knots.
func (this KnotVec) Greville(degree, count int) []float64 {
	result := make([]float64, count)

	for i := range result {
		var sum float64
		for _, knot := range this[i : i+degree] {
			sum += knot
		}
		result[i] = sum / float64(degree)
	}

	return result
}

// Inserted returns a copy with u placed at index.
func (this KnotVec) Inserted(index int, u float64) KnotVec {
	result := make(KnotVec, 0, len(this)+1)
	result = append(result, this[:index]...)
	result = append(result, u)
	return append(result, this[index:]...)
}

// Linspace returns n evenly spaced samples over [start, end].
func Linspace(start, end float64, n int) []float64 {
	switch {
	case n < 1:
		return nil
	case n == 1:
		return []float64{start}
	}

	return floats.Span(make([]float64, n), start, end)
}
