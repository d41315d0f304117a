package internal

import (
	"math"

	"github.com/ungerik/go3d/float64/vec2"
)

// UnwrapPhase adds multiples of 2π to successive angles so that consecutive
// differences fall in (-π, π].
func UnwrapPhase(wrapped []float64) []float64 {
	result := make([]float64, len(wrapped))
	if len(wrapped) == 0 {
		return result
	}

	result[0] = wrapped[0]
	for i := 1; i < len(wrapped); i++ {
		d := wrapped[i] - wrapped[i-1]
		d -= 2 * math.Pi * math.Ceil((d-math.Pi)/(2*math.Pi))
		result[i] = result[i-1] + d
	}

	return result
}

// Determine whether a point lies inside a closed polygon by even-odd ray casting
//
// **params**
// + the point
// + polygon vertices, the last vertex is implicitly joined to the first
//
// **returns**
// + true if a horizontal ray from the point crosses the boundary an odd number of times
func PointInPolygon(pt *vec2.T, polygon []vec2.T) bool {
	inside := false

	for i, j := 0, len(polygon)-1; i < len(polygon); j, i = i, i+1 {
		a, b := &polygon[i], &polygon[j]

		if (a[1] > pt[1]) != (b[1] > pt[1]) {
			edge, offset := vec2.Sub(b, a), vec2.Sub(pt, a)

			// the crossing lies right of pt
			if cross := edge[0]*offset[1] - edge[1]*offset[0]; cross*edge[1] > 0 {
				inside = !inside
			}
		}
	}

	return inside
}
