package bspline

import "github.com/sgostarter/i/l"

const (
	defaultRankTolerance       = 1e-12
	defaultMaxNewtonIterations = 10
)

// Option configures a Curve or Surface during creation.
//
// Example:
//
//	crv, err := bspline.NewCurve(knots, 2,
//		bspline.WithLogger(l.NewConsoleLoggerWrapper()),
//		bspline.WithStrictInterpolation())
type Option func(*options)

type options struct {
	logger              l.Wrapper
	strict              bool
	rankTolerance       float64
	maxNewtonIterations int
}

func newOptions(opts []Option) options {
	o := options{
		rankTolerance:       defaultRankTolerance,
		maxNewtonIterations: defaultMaxNewtonIterations,
	}

	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = l.NewNopLoggerWrapper()
	}

	return o
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger l.Wrapper) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStrictInterpolation makes Interpolate reject systems with fewer samples
// than control points instead of returning the minimum-norm solution.
func WithStrictInterpolation() Option {
	return func(o *options) {
		o.strict = true
	}
}

// WithRankTolerance sets the relative singular value cutoff of the least
// squares solver.
func WithRankTolerance(rcond float64) Option {
	return func(o *options) {
		if rcond >= 0 {
			o.rankTolerance = rcond
		}
	}
}

// WithMaxNewtonIterations caps the closest point iteration.
func WithMaxNewtonIterations(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxNewtonIterations = n
		}
	}
}
