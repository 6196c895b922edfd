// Package refpricer is an independent Crank-Nicolson pricer for American
// puts, used only to band the main engine's output in tests. It shares no
// code with the option package on purpose: a common bug cannot hide in a
// cross-check that reimplements the scheme from scratch.
//
// The grid is anchored on the strike (spot truncated at 3*K) with a flat
// rate, and the readout interpolates linearly between the two nodes
// bracketing the spot, so its conventions intentionally differ from the main
// engine's.
package refpricer

import (
	"fmt"
	"math"
)

// AmericanPut prices an American put on a uniform strike-anchored grid with
// projected SOR per time step.
//
// spotSteps is the number of spot intervals on [0, 3*K]; dt is the requested
// time step, adjusted so an integer number of steps spans [0, T].
func AmericanPut(S, K, T, vol, r float64, spotSteps int, dt float64) (float64, error) {
	if S <= 0 || K <= 0 || T <= 0 || vol <= 0 {
		return 0, fmt.Errorf("refpricer: S, K, T, vol must be positive")
	}
	if spotSteps < 3 {
		return 0, fmt.Errorf("refpricer: need at least 3 spot steps, got %d", spotSteps)
	}
	if dt <= 0 || dt > T {
		return 0, fmt.Errorf("refpricer: dt must lie in (0, T], got %v", dt)
	}

	const (
		tol       = 1e-8
		maxSweeps = 200
		omega     = 1.5
	)

	ds := 3 * K / float64(spotSteps)
	steps := int(math.Floor(T / dt))
	if steps < 1 {
		steps = 1
	}
	dt = T / float64(steps)

	iStar := int(math.Floor(S / ds))
	if iStar >= spotSteps {
		return 0, fmt.Errorf("refpricer: spot %v beyond grid truncation %v", S, 3*K)
	}
	weight := (S - float64(iStar)*ds) / ds

	prev := make([]float64, spotSteps+1) // previous time level
	curr := make([]float64, spotSteps+1)
	payoff := make([]float64, spotSteps+1)
	pred := make([]float64, spotSteps+1)
	a := make([]float64, spotSteps+1)
	b := make([]float64, spotSteps+1)
	c := make([]float64, spotSteps+1)
	ai := make([]float64, spotSteps+1) // implicit-side coefficients
	bi := make([]float64, spotSteps+1)
	ci := make([]float64, spotSteps+1)

	for i := 0; i <= spotSteps; i++ {
		payoff[i] = math.Max(K-float64(i)*ds, 0)
		prev[i] = payoff[i]
	}
	for i := 1; i < spotSteps; i++ {
		ii := float64(i)
		a[i] = dt / 4 * (vol*vol*ii*ii - r*ii)
		b[i] = 1 - dt/2*(r+vol*vol*ii*ii)
		c[i] = dt / 4 * (vol*vol*ii*ii + r*ii)
		ai[i] = -a[i]
		bi[i] = 1 + dt/2*(r+vol*vol*ii*ii)
		ci[i] = -c[i]
	}

	curr[0] = K
	curr[spotSteps] = 0

	for j := 1; j <= steps; j++ {
		for i := 1; i < spotSteps; i++ {
			curr[i] = prev[i] // SOR initial guess
			pred[i] = a[i]*prev[i-1] + b[i]*prev[i] + c[i]*prev[i+1]
		}
		sweeps := 0
		for {
			errAcc := 0.0
			for i := 1; i < spotSteps; i++ {
				diff := (pred[i]-ai[i]*curr[i-1]-ci[i]*curr[i+1])/bi[i] - curr[i]
				errAcc += diff * diff
				curr[i] += omega * diff
			}
			sweeps++
			if errAcc <= tol || sweeps >= maxSweeps {
				break
			}
		}
		for i := 1; i < spotSteps; i++ {
			prev[i] = math.Max(curr[i], payoff[i])
		}
	}

	return (1-weight)*prev[iStar] + weight*prev[iStar+1], nil
}
