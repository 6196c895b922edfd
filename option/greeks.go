package option

import "fmt"

// Grid-neighbor Greeks read the solved grid directly; curve and volatility
// Greeks bump one input and reprice with a sibling Pricer. All of them
// require a successful Solve first.

// Delta is the central finite difference of today's value across the two spot
// nodes neighboring S0: (V[i0+1] - V[i0-1]) / (2*dS).
//
// If S0 sits on or next to a grid rail the neighbors do not exist; that is a
// mesh-choice misuse reported as ErrGridBounds, not an out-of-range read.
func (pr *Pricer) Delta() (float64, error) {
	if !pr.solved {
		return 0, ErrNotSolved
	}
	i0, err := pr.interiorSpotIndex()
	if err != nil {
		return 0, err
	}
	return (pr.grid[i0+1][0] - pr.grid[i0-1][0]) / (2 * pr.dS), nil
}

// Gamma is the second central difference at the S0 node:
// (V[i0+1] + V[i0-1] - 2*V[i0]) / dS^2.
func (pr *Pricer) Gamma() (float64, error) {
	if !pr.solved {
		return 0, ErrNotSolved
	}
	i0, err := pr.interiorSpotIndex()
	if err != nil {
		return 0, err
	}
	return (pr.grid[i0+1][0] + pr.grid[i0-1][0] - 2*pr.grid[i0][0]) / (pr.dS * pr.dS), nil
}

// Theta is the forward difference across the first two time columns at the S0
// node: (V[i0][1] - V[i0][0]) / dT. Needs at least two time columns.
func (pr *Pricer) Theta() (float64, error) {
	if !pr.solved {
		return 0, ErrNotSolved
	}
	if pr.p.TimeSteps < 2 {
		return 0, fmt.Errorf("option: theta needs at least 2 time steps, got %d", pr.p.TimeSteps)
	}
	i0 := pr.spotIndex()
	return (pr.grid[i0][1] - pr.grid[i0][0]) / pr.dT, nil
}

// Vega is the forward bump-and-reprice sensitivity to volatility:
// (price(sigma+h) - price(sigma)) / h, via a freshly solved sibling Pricer.
func (pr *Pricer) Vega(h float64) (float64, error) {
	if h == 0 {
		return 0, fmt.Errorf("option: vega bump must be non-zero")
	}
	base, err := pr.Price()
	if err != nil {
		return 0, err
	}
	bumped := pr.p
	bumped.Vol += h
	up, err := PriceOf(bumped)
	if err != nil {
		return 0, fmt.Errorf("option: vega reprice: %w", err)
	}
	return (up - base) / h, nil
}

// Rho is the forward bump-and-reprice sensitivity to a parallel shift of the
// whole rate curve: (price(curve+h) - price(curve)) / h. The shift produces a
// new curve value; the pricer's own curve is untouched.
func (pr *Pricer) Rho(h float64) (float64, error) {
	if h == 0 {
		return 0, fmt.Errorf("option: rho bump must be non-zero")
	}
	base, err := pr.Price()
	if err != nil {
		return 0, err
	}
	bumped := pr.p
	bumped.Curve = pr.p.Curve.Shift(h)
	up, err := PriceOf(bumped)
	if err != nil {
		return 0, fmt.Errorf("option: rho reprice: %w", err)
	}
	return (up - base) / h, nil
}

// interiorSpotIndex returns the S0 node index, failing if either neighbor
// would fall outside the spot mesh.
func (pr *Pricer) interiorSpotIndex() (int, error) {
	i0 := pr.spotIndex()
	if i0 <= 0 || i0 >= pr.p.SpotSteps {
		return 0, fmt.Errorf("%w: node %d of [0, %d]", ErrGridBounds, i0, pr.p.SpotSteps)
	}
	return i0, nil
}
