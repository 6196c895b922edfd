// Package analytic provides the closed-form Black-Scholes pricer used to
// cross-check the finite-difference engine. It is a validation collaborator,
// not part of the grid pricer itself.
package analytic

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// BlackScholes returns the closed-form European option price.
//
// S is spot, K strike, T time to expiry in years, r the (flat) continuously
// compounded rate, sigma the lognormal volatility. At zero expiry or
// volatility the price collapses to the intrinsic value.
func BlackScholes(call bool, S, K, T, r, sigma float64) float64 {
	if T <= 0 || sigma <= 0 {
		if call {
			return math.Max(S-K, 0)
		}
		return math.Max(K-S, 0)
	}

	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))
	d2 := d1 - sigma*math.Sqrt(T)

	if call {
		return S*stdNormal.CDF(d1) - K*math.Exp(-r*T)*stdNormal.CDF(d2)
	}
	return K*math.Exp(-r*T)*stdNormal.CDF(-d2) - S*stdNormal.CDF(-d1)
}

// Vega returns the Black-Scholes sensitivity to volatility, per unit change
// of sigma. Zero at non-positive expiry or volatility.
func Vega(S, K, T, r, sigma float64) float64 {
	if T <= 0 || sigma <= 0 {
		return 0
	}
	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))
	return S * stdNormal.Prob(d1) * math.Sqrt(T)
}

// ImpliedVol solves for the volatility that reproduces the observed price via
// guarded Newton-Raphson. It fails when the expiry is non-positive, when vega
// degenerates, or when the iteration does not converge.
func ImpliedVol(call bool, S, K, T, r, price float64) (float64, error) {
	if T <= 0 {
		return 0, fmt.Errorf("analytic: implied vol needs positive expiry, got %v", T)
	}

	const (
		maxIter = 100
		tol     = 1e-8
	)
	sigma := 0.20 // standard initial guess

	for i := 0; i < maxIter; i++ {
		diff := BlackScholes(call, S, K, T, r, sigma) - price
		if math.Abs(diff) < tol {
			return sigma, nil
		}
		v := Vega(S, K, T, r, sigma)
		if v < 1e-10 {
			break
		}
		sigma -= diff / v

		// Guardrails against Newton overshoot.
		if sigma <= 0 {
			sigma = 1e-4
		}
		if sigma > 5 {
			sigma = 5
		}
	}
	return 0, fmt.Errorf("analytic: implied vol did not converge")
}
