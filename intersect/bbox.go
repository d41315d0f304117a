package intersect

import (
	"math"
)

const BoundingBoxTolerance = 1e-4

// BoundingBox is an axis aligned box in any dimension. The zero value is
// ready to use; its dimension is fixed by the first point added.
type BoundingBox struct {
	Min, Max    []float64
	initialized bool
}

// Adds a point to the bounding box, expanding the bounding box if the point is outside of it.
// If the bounding box is not initialized, this method has that side effect.
//
// **params**
// + A length-n array of numbers
//
// **returns**
// + This BoundingBox for chaining
func (this *BoundingBox) Add(point []float64) *BoundingBox {
	if !this.initialized {
		this.Min = append([]float64(nil), point...)
		this.Max = append([]float64(nil), point...)
		this.initialized = true

		return this
	}

	for i, val := range point[:len(this.Min)] {
		if val > this.Max[i] {
			this.Max[i] = val
		}
		if val < this.Min[i] {
			this.Min[i] = val
		}
	}

	return this
}

// Add an array of points to the bounding box
//
// **params**
// + An array of length-n array of numbers
//
// **returns**
// + this BoundingBox for chaining
func (this *BoundingBox) AddRange(points [][]float64) *BoundingBox {
	for _, pt := range points {
		this.Add(pt)
	}

	return this
}

// Dim is the number of axes, 0 before the first point is added.
func (this *BoundingBox) Dim() int {
	return len(this.Min)
}

// Extents returns the [min, max] interval of every axis.
func (this *BoundingBox) Extents() [][2]float64 {
	result := make([][2]float64, len(this.Min))
	for i := range result {
		result[i] = [2]float64{this.Min[i], this.Max[i]}
	}

	return result
}

// Determines if point is contained in the bounding box
//
// **params**
// + the point
// + the tolerance, negative values select BoundingBoxTolerance
//
// **returns**
// + true if the point lies inside the box grown by the tolerance
func (this *BoundingBox) Contains(point []float64, tol float64) bool {
	if !this.initialized {
		return false
	}

	return this.Intersects(new(BoundingBox).Add(point), tol)
}

func intervalsOverlap(a1, a2, b1, b2 float64, tol float64) bool {
	if tol < 0 {
		tol = BoundingBoxTolerance
	}

	x1, x2 := math.Min(a1, a2)-tol, math.Max(a1, a2)+tol
	y1, y2 := math.Min(b1, b2)-tol, math.Max(b1, b2)+tol

	return x1 <= y2 && y1 <= x2
}

// Determines if this bounding box intersects with another
//
// **params**
// + BoundingBox to check for intersection with this one
// + the tolerance, negative values select BoundingBoxTolerance
//
// **returns**
// +  true if the two bounding boxes intersect, otherwise false
func (this *BoundingBox) Intersects(bb *BoundingBox, tol float64) bool {
	if !this.initialized || !bb.initialized || len(this.Min) != len(bb.Min) {
		return false
	}

	for i := range this.Min {
		if !intervalsOverlap(this.Min[i], this.Max[i], bb.Min[i], bb.Max[i], tol) {
			return false
		}
	}

	return true
}
