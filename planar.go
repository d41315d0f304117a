package bspline

import (
	"math"

	"github.com/ungerik/go3d/float64/vec2"
)

// PlanarCurve exposes the operations that only make sense in the plane.
// Obtain one with Curve.Planar.
type PlanarCurve struct {
	*Curve
}

// HodographPhase returns the direction angle of the tangent, atan2(y', x'),
// at n uniformly spaced parameters.
func (this *PlanarCurve) HodographPhase(n int) ([]float64, error) {
	samples, err := this.EvaluateBatch(this.knots.Linspace(n))
	if err != nil {
		return nil, err
	}

	phase := make([]float64, len(samples.T))
	for k := range phase {
		phase[k] = math.Atan2(samples.Xt[1][k], samples.Xt[0][k])
	}

	return phase, nil
}

// UnwrappedHodographPhase is HodographPhase without the jumps of 2π, so a
// simple closed curve turns by ±2π from end to end.
func (this *PlanarCurve) UnwrappedHodographPhase(n int) ([]float64, error) {
	phase, err := this.HodographPhase(n)
	if err != nil {
		return nil, err
	}

	return UnwrapPhase(phase), nil
}

// Polyline samples the curve at n uniformly spaced parameters.
func (this *PlanarCurve) Polyline(n int) ([]vec2.T, error) {
	pts, err := this.SampleLocation(n)
	if err != nil {
		return nil, err
	}

	polyline := make([]vec2.T, len(pts[0]))
	for k := range polyline {
		polyline[k] = vec2.T{pts[0][k], pts[1][k]}
	}

	return polyline, nil
}

// CharacteristicFunction approximates the curve by an n point polyline and
// marks the grid points it encloses with 1.
func (this *PlanarCurve) CharacteristicFunction(x, y [][]float64, n int) ([][]float64, error) {
	polyline, err := this.Polyline(n)
	if err != nil {
		return nil, err
	}

	return CharacteristicFunction(x, y, polyline)
}
