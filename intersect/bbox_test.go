package intersect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundingBoxAdd(t *testing.T) {
	var bb BoundingBox
	assert.Equal(t, 0, bb.Dim())
	assert.False(t, bb.Contains([]float64{0, 0}, 0))

	bb.AddRange([][]float64{{1, 2}, {-1, 5}, {0, 3}})
	assert.Equal(t, 2, bb.Dim())
	assert.Equal(t, [][2]float64{{-1, 1}, {2, 5}}, bb.Extents())

	// the first point is copied, not aliased
	pt := []float64{0, 4}
	var single BoundingBox
	single.Add(pt)
	pt[1] = 100
	assert.Equal(t, [][2]float64{{0, 0}, {4, 4}}, single.Extents())
}

func TestBoundingBoxContains(t *testing.T) {
	bb := new(BoundingBox).AddRange([][]float64{{0, 0, 0}, {1, 1, 1}})

	assert.True(t, bb.Contains([]float64{0.5, 0.5, 0.5}, 0))
	assert.True(t, bb.Contains([]float64{1, 1, 1}, 0))
	assert.False(t, bb.Contains([]float64{1.1, 0.5, 0.5}, 0))
	assert.True(t, bb.Contains([]float64{1.1, 0.5, 0.5}, 0.2))
	assert.True(t, bb.Contains([]float64{1 + BoundingBoxTolerance/2, 0, 0}, -1))
}

func TestBoundingBoxIntersects(t *testing.T) {
	a := new(BoundingBox).AddRange([][]float64{{0, 0}, {2, 2}})
	b := new(BoundingBox).AddRange([][]float64{{1, 1}, {3, 3}})
	c := new(BoundingBox).AddRange([][]float64{{2.5, 0}, {3, 1}})

	assert.True(t, a.Intersects(b, 0))
	assert.True(t, b.Intersects(a, 0))
	assert.False(t, a.Intersects(c, 0))
	assert.True(t, a.Intersects(c, 0.5))

	assert.False(t, a.Intersects(new(BoundingBox).Add([]float64{1, 1, 1}), 0))
	assert.False(t, a.Intersects(new(BoundingBox), 0))
}
