package option

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/meenmo/oplib/tridiag"
)

// Pricer owns one pricing request's grid for the lifetime of the request.
// It is not safe for concurrent use; build one Pricer per request.
//
// The grid is indexed [spot node 0..M][time index 0..N-1]: column N-1 holds
// the terminal payoff, rows 0 and M hold the boundary rails, and after Solve
// column 0 holds today's values at every spot node. Spot is truncated at
// 5*S0, wide enough that the rails do not contaminate the region near S0.
type Pricer struct {
	p Params

	dT, dS float64
	sMax   float64

	grid [][]float64 // [SpotSteps+1][TimeSteps]
	f    []float64   // interior working vector, len SpotSteps-1

	solved bool
	sor    []SORStep
}

// SORStep records the projected SOR effort spent on one backward time step of
// an American solve.
type SORStep struct {
	// TimeIndex is the grid column the step solved toward (the sweep runs
	// from column TimeIndex to TimeIndex-1).
	TimeIndex int
	// Sweeps is the number of full projected SOR sweeps performed.
	Sweeps int
	// Change is the Euclidean norm of the last sweep's update.
	Change float64
}

// New validates the request and lays out the grid with its terminal payoff.
// The heavy work happens in Solve.
func New(p Params) (*Pricer, error) {
	p = p.withDefaults()
	if err := p.validate(); err != nil {
		return nil, err
	}

	pr := &Pricer{
		p:    p,
		dT:   (p.T - p.T0) / float64(p.TimeSteps),
		dS:   5 * p.S0 / float64(p.SpotSteps),
		sMax: 5 * p.S0,
	}

	m, n := p.SpotSteps, p.TimeSteps
	pr.grid = make([][]float64, m+1)
	for j := range pr.grid {
		pr.grid[j] = make([]float64, n)
	}

	// Terminal payoff at every spot node; the interior seeds the working
	// vector for the backward sweep.
	pr.f = make([]float64, m-1)
	for j := 0; j <= m; j++ {
		v := pr.intrinsic(float64(j) * pr.dS)
		pr.grid[j][n-1] = v
		if j != 0 && j != m {
			pr.f[j-1] = v
		}
	}
	return pr, nil
}

// PriceOf builds, solves, and prices a request in one call.
func PriceOf(p Params) (float64, error) {
	pr, err := New(p)
	if err != nil {
		return 0, err
	}
	if err := pr.Solve(); err != nil {
		return 0, err
	}
	return pr.Price()
}

// Params returns the request the pricer was built from, with defaults
// applied.
func (pr *Pricer) Params() Params { return pr.p }

// SpotStep returns the spot mesh width dS.
func (pr *Pricer) SpotStep() float64 { return pr.dS }

// TimeStep returns the time mesh width dT.
func (pr *Pricer) TimeStep() float64 { return pr.dT }

// intrinsic is the immediate-exercise payoff at spot s.
func (pr *Pricer) intrinsic(s float64) float64 {
	return math.Max(pr.p.Contract.sign()*(s-pr.p.K), 0)
}

// timeAt maps a grid column to absolute curve time.
func (pr *Pricer) timeAt(i int) float64 {
	return pr.p.T0 + pr.dT*float64(i)
}

// Solve runs the backward-time recursion. It is idempotent: a second call on
// a solved grid is a no-op.
func (pr *Pricer) Solve() error {
	if pr.solved {
		return nil
	}
	var err error
	switch pr.p.Exercise {
	case European:
		err = pr.solveEuropean()
	case American:
		err = pr.solveAmerican()
	}
	if err != nil {
		return err
	}
	pr.solved = true
	return nil
}

// Price returns today's value at the grid node nearest S0. The lookup is a
// rounded-index read, not an interpolation; its error shrinks as SpotSteps
// grows, which is also why the grid Greeks difference neighboring nodes.
func (pr *Pricer) Price() (float64, error) {
	if !pr.solved {
		return 0, ErrNotSolved
	}
	return pr.grid[pr.spotIndex()][0], nil
}

// SORStats returns the per-step projected SOR effort of an American solve.
// Empty for European contracts.
func (pr *Pricer) SORStats() []SORStep {
	out := make([]SORStep, len(pr.sor))
	copy(out, pr.sor)
	return out
}

// spotIndex is the grid row nearest S0.
func (pr *Pricer) spotIndex() int {
	return int(math.Round(pr.p.S0 / pr.dS))
}

// europeanLower is the S -> 0 rail at absolute time t: worthless for a call,
// the discounted strike for a put.
func (pr *Pricer) europeanLower(t float64) (float64, error) {
	if pr.p.Contract == Call {
		return 0, nil
	}
	df, err := pr.p.Curve.DiscountFactor(t, pr.p.T)
	if err != nil {
		return 0, err
	}
	return pr.p.K * df, nil
}

// europeanUpper is the S -> 5*S0 rail at absolute time t: deep-in-the-money
// forward value for a call, worthless for a put.
func (pr *Pricer) europeanUpper(t float64) (float64, error) {
	if pr.p.Contract == Put {
		return 0, nil
	}
	df, err := pr.p.Curve.DiscountFactor(t, pr.p.T)
	if err != nil {
		return 0, err
	}
	return pr.sMax - pr.p.K*df, nil
}

// americanLower and americanUpper are the payoff-consistent rails: with early
// exercise available the rail value is the intrinsic payoff itself, never a
// discounted forward quantity.
func (pr *Pricer) americanLower() float64 { return pr.intrinsic(0) }
func (pr *Pricer) americanUpper() float64 { return pr.intrinsic(pr.sMax) }

// solveEuropean advances one implicit-explicit step per time column:
// RHS = D*F + K, then F = C^-1*RHS via the tridiagonal solve.
func (pr *Pricer) solveEuropean() error {
	for i := pr.p.TimeSteps - 1; i >= 1; i-- {
		tCurr, tPrev := pr.timeAt(i), pr.timeAt(i-1)
		rCurr, err := pr.p.Curve.Rate(tCurr)
		if err != nil {
			return fmt.Errorf("option: rate at time step %d: %w", i, err)
		}
		rPrev, err := pr.p.Curve.Rate(tPrev)
		if err != nil {
			return fmt.Errorf("option: rate at time step %d: %w", i-1, err)
		}

		cf := pr.stepCoeffs(rCurr)
		C, err := tridiag.New(negated(cf.a), oneMinus(cf.b), negated(cf.c))
		if err != nil {
			return fmt.Errorf("option: implicit operator at time step %d: %w", i, err)
		}
		D, err := tridiag.New(cf.a, onePlus(cf.b), cf.c)
		if err != nil {
			return fmt.Errorf("option: explicit operator at time step %d: %w", i, err)
		}

		lPrev, err := pr.europeanLower(tPrev)
		if err != nil {
			return fmt.Errorf("option: lower rail at time step %d: %w", i-1, err)
		}
		uPrev, err := pr.europeanUpper(tPrev)
		if err != nil {
			return fmt.Errorf("option: upper rail at time step %d: %w", i-1, err)
		}
		lCurr, err := pr.europeanLower(tCurr)
		if err != nil {
			return fmt.Errorf("option: lower rail at time step %d: %w", i, err)
		}
		uCurr, err := pr.europeanUpper(tCurr)
		if err != nil {
			return fmt.Errorf("option: upper rail at time step %d: %w", i, err)
		}

		rhs, err := D.MulVec(pr.f)
		if err != nil {
			return fmt.Errorf("option: explicit product at time step %d: %w", i, err)
		}
		k1 := pr.aEdge(rPrev)*lPrev + pr.aEdge(rCurr)*lCurr
		k2 := pr.cEdge(rPrev)*uPrev + pr.cEdge(rCurr)*uCurr
		addBoundary(rhs, k1, k2)

		pr.f, err = C.Solve(rhs)
		if err != nil {
			return fmt.Errorf("option: implicit solve at time step %d: %w", i, err)
		}
		pr.writeColumn(i-1, lPrev, uPrev)
	}
	return nil
}

// solveAmerican replaces the direct solve with a projected SOR iteration per
// time step, enforcing the early-exercise floor value >= intrinsic at every
// interior node. Only the lower rail contributes to the boundary vector; the
// projection itself governs the exercise region.
func (pr *Pricer) solveAmerican() error {
	intr := make([]float64, len(pr.f))
	for z := range intr {
		intr[z] = pr.intrinsic(float64(z+1) * pr.dS)
	}

	for i := pr.p.TimeSteps - 1; i >= 1; i-- {
		tCurr, tPrev := pr.timeAt(i), pr.timeAt(i-1)
		rCurr, err := pr.p.Curve.Rate(tCurr)
		if err != nil {
			return fmt.Errorf("option: rate at time step %d: %w", i, err)
		}
		rPrev, err := pr.p.Curve.Rate(tPrev)
		if err != nil {
			return fmt.Errorf("option: rate at time step %d: %w", i-1, err)
		}

		cf := pr.stepCoeffs(rCurr)
		D, err := tridiag.New(cf.a, onePlus(cf.b), cf.c)
		if err != nil {
			return fmt.Errorf("option: explicit operator at time step %d: %w", i, err)
		}
		rhs, err := D.MulVec(pr.f)
		if err != nil {
			return fmt.Errorf("option: explicit product at time step %d: %w", i, err)
		}
		rhs[0] += (pr.aEdge(rPrev) + pr.aEdge(rCurr)) * pr.americanLower()

		sweeps, change, err := pr.psorStep(cf, rhs, intr)
		if err != nil {
			return fmt.Errorf("option: time step %d after %d sweeps (last change %.3e, tol %.3e): %w",
				i, sweeps, change, pr.p.SORTol, err)
		}
		pr.sor = append(pr.sor, SORStep{TimeIndex: i, Sweeps: sweeps, Change: change})

		pr.writeColumn(i-1, pr.americanLower(), pr.americanUpper())
	}
	return nil
}

// psorStep runs projected Gauss-Seidel/SOR sweeps until the Euclidean norm of
// the update drops to the tolerance or the sweep cap is hit. The left
// neighbor is read from the current sweep (already updated) and the right
// neighbor from the previous one, preserving the Gauss-Seidel recurrence.
func (pr *Pricer) psorStep(cf coeffs, rhs, intr []float64) (sweeps int, change float64, err error) {
	n := len(pr.f)
	w := pr.p.SORRelax
	fNew := make([]float64, n)

	for sweeps = 1; sweeps <= pr.p.SORMaxIter; sweeps++ {
		for z := 0; z < n; z++ {
			diag := 1 - cf.b[z]
			acc := rhs[z] - diag*pr.f[z]
			if z > 0 {
				acc += cf.a[z-1] * fNew[z-1]
			}
			if z < n-1 {
				acc += cf.c[z] * pr.f[z+1]
			}
			fNew[z] = math.Max(intr[z], pr.f[z]+(w/diag)*acc)
		}
		change = floats.Distance(pr.f, fNew, 2)
		copy(pr.f, fNew)
		if change <= pr.p.SORTol {
			return sweeps, change, nil
		}
	}
	return pr.p.SORMaxIter, change, ErrNoConvergence
}

// writeColumn stores the interior working vector and the two rails into grid
// column col.
func (pr *Pricer) writeColumn(col int, lower, upper float64) {
	m := pr.p.SpotSteps
	pr.grid[0][col] = lower
	for z, v := range pr.f {
		pr.grid[z+1][col] = v
	}
	pr.grid[m][col] = upper
}
