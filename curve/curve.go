// Package curve implements a piecewise-linear zero-rate curve used to build
// the time-dependent coefficients and discount factors of the PDE pricer.
//
// The curve is a value object: construction validates the knots once, and the
// only mutation-like operation, Shift, returns a new curve. Evaluation is
// strict: querying outside the knot range is an error, never an
// extrapolation, because a silently extended curve misprices the option.
package curve

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrOutOfDomain is returned when a rate or integral is requested outside
	// the curve's knot range.
	ErrOutOfDomain = errors.New("curve: time outside knot domain")
)

// Knot is a single (time, rate) node. T is a year fraction from the valuation
// anchor; Rate is a continuously-compounded zero rate as a decimal
// (e.g. 0.0212 == 2.12%).
type Knot struct {
	T    float64
	Rate float64
}

// Curve is an immutable piecewise-linear rate curve over at least two knots
// with strictly increasing times.
type Curve struct {
	knots []Knot
}

// New builds a curve from the given knots.
//
// Requirements:
// - at least 2 knots
// - times strictly increasing
// - all times and rates finite
func New(knots []Knot) (*Curve, error) {
	if len(knots) < 2 {
		return nil, fmt.Errorf("curve: need at least 2 knots, got %d", len(knots))
	}
	for i, k := range knots {
		if math.IsNaN(k.T) || math.IsInf(k.T, 0) || math.IsNaN(k.Rate) || math.IsInf(k.Rate, 0) {
			return nil, fmt.Errorf("curve: knot %d is not finite (t=%v, rate=%v)", i, k.T, k.Rate)
		}
		if i > 0 && knots[i-1].T >= k.T {
			return nil, fmt.Errorf("curve: knot times must be strictly increasing (knot %d: %v >= %v)", i, knots[i-1].T, k.T)
		}
	}
	c := &Curve{knots: make([]Knot, len(knots))}
	copy(c.knots, knots)
	return c, nil
}

// Flat builds a two-knot flat curve at the given rate over [0, tMax].
// Convenience for tests and flat-rate scenarios.
func Flat(rate, tMax float64) (*Curve, error) {
	return New([]Knot{{T: 0, Rate: rate}, {T: tMax, Rate: rate}})
}

// Domain returns the inclusive [tMin, tMax] range over which the curve is
// defined.
func (c *Curve) Domain() (tMin, tMax float64) {
	return c.knots[0].T, c.knots[len(c.knots)-1].T
}

// Knots returns a copy of the curve's knots.
func (c *Curve) Knots() []Knot {
	out := make([]Knot, len(c.knots))
	copy(out, c.knots)
	return out
}

// Covers reports whether [t0, t1] lies inside the curve's domain.
func (c *Curve) Covers(t0, t1 float64) bool {
	lo, hi := c.Domain()
	return t0 >= lo && t1 <= hi
}

// Rate returns the piecewise-linear interpolation of the zero rate at t.
// Times outside the knot range return ErrOutOfDomain.
func (c *Curve) Rate(t float64) (float64, error) {
	lo, hi := c.Domain()
	if t < lo || t > hi {
		return 0, fmt.Errorf("%w: t=%v, domain=[%v, %v]", ErrOutOfDomain, t, lo, hi)
	}

	// First knot with time >= t; t is bracketed by [idx-1, idx].
	idx := sort.Search(len(c.knots), func(i int) bool {
		return c.knots[i].T >= t
	})
	if c.knots[idx].T == t {
		return c.knots[idx].Rate, nil
	}
	k0, k1 := c.knots[idx-1], c.knots[idx]
	w := (t - k0.T) / (k1.T - k0.T)
	return k0.Rate + w*(k1.Rate-k0.Rate), nil
}

// Integral returns the signed integral of the rate over [t0, t1].
//
// The integrand is piecewise linear, so the integral is computed exactly by
// summing trapezoid areas segment by segment; a segment whose rate changes
// sign is split at the zero crossing into two signed triangles. Reversed
// bounds negate the result. Both bounds must lie inside the knot domain.
func (c *Curve) Integral(t0, t1 float64) (float64, error) {
	if t1 < t0 {
		v, err := c.Integral(t1, t0)
		return -v, err
	}
	lo, hi := c.Domain()
	if t0 < lo || t1 > hi {
		return 0, fmt.Errorf("%w: interval [%v, %v], domain=[%v, %v]", ErrOutOfDomain, t0, t1, lo, hi)
	}

	var sum float64
	for i := 0; i+1 < len(c.knots); i++ {
		segLo := math.Max(c.knots[i].T, t0)
		segHi := math.Min(c.knots[i+1].T, t1)
		if segLo >= segHi {
			continue
		}
		r0, err := c.Rate(segLo)
		if err != nil {
			return 0, err
		}
		r1, err := c.Rate(segHi)
		if err != nil {
			return 0, err
		}
		sum += segmentArea(segLo, segHi, r0, r1)
	}
	return sum, nil
}

// segmentArea is the signed area under the linear rate over [t0, t1] with
// endpoint rates r0, r1. A sign change splits the trapezoid at the zero
// crossing so each side contributes with its own sign.
func segmentArea(t0, t1, r0, r1 float64) float64 {
	if (r0 >= 0 && r1 >= 0) || (r0 <= 0 && r1 <= 0) {
		return (r0 + r1) * (t1 - t0) / 2
	}
	x := t0 - r0*(t1-t0)/(r1-r0) // rate crosses zero at x
	return r0*(x-t0)/2 + r1*(t1-x)/2
}

// DiscountFactor returns exp(-Integral(t0, t1)), the discount factor over
// [t0, t1] under the curve.
func (c *Curve) DiscountFactor(t0, t1 float64) (float64, error) {
	v, err := c.Integral(t0, t1)
	if err != nil {
		return 0, err
	}
	return math.Exp(-v), nil
}

// Shift returns a new curve with delta added to every knot's rate. The
// receiver is unchanged; parallel-rate sensitivities reprice against the
// returned curve.
func (c *Curve) Shift(delta float64) *Curve {
	knots := c.Knots()
	for i := range knots {
		knots[i].Rate += delta
	}
	return &Curve{knots: knots}
}
