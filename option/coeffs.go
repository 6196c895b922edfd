package option

import (
	"gonum.org/v1/gonum/floats"
)

// coeffs holds the Crank-Nicolson PDE coefficients of one time step for the
// interior spot nodes j = 1..M-1:
//
//	a_j = (dT/4)*(sig^2 j^2 - r*j)   (sub-diagonal, j = 2..M-1)
//	b_j = -(dT/2)*(sig^2 j^2 + r)    (diagonal,     j = 1..M-1)
//	c_j = (dT/4)*(sig^2 j^2 + r*j)   (super-diagonal, j = 1..M-2)
//
// The implicit operator is C = Tridiag(-a, 1-b, -c) and the explicit one is
// D = Tridiag(a, 1+b, c).
type coeffs struct {
	a []float64
	b []float64
	c []float64
}

// stepCoeffs evaluates the coefficient vectors at the instantaneous rate r.
func (pr *Pricer) stepCoeffs(r float64) coeffs {
	m := pr.p.SpotSteps
	sig2 := pr.p.Vol * pr.p.Vol

	a := make([]float64, m-2)
	for j := 2; j < m; j++ {
		jj := float64(j)
		a[j-2] = (pr.dT / 4) * (sig2*jj*jj - r*jj)
	}
	b := make([]float64, m-1)
	for j := 1; j < m; j++ {
		jj := float64(j)
		b[j-1] = -(pr.dT / 2) * (sig2*jj*jj + r)
	}
	c := make([]float64, m-2)
	for j := 1; j < m-1; j++ {
		jj := float64(j)
		c[j-1] = (pr.dT / 4) * (sig2*jj*jj + r*jj)
	}
	return coeffs{a: a, b: b, c: c}
}

// aEdge is a_1, the sub-diagonal coefficient the lower rail multiplies in the
// boundary-injection vector.
func (pr *Pricer) aEdge(r float64) float64 {
	return (pr.dT / 4) * (pr.p.Vol*pr.p.Vol - r)
}

// cEdge is c_{M-1}, the super-diagonal coefficient the upper rail multiplies.
func (pr *Pricer) cEdge(r float64) float64 {
	jj := float64(pr.p.SpotSteps - 1)
	return (pr.dT / 4) * (pr.p.Vol*pr.p.Vol*jj*jj + r*jj)
}

// negated returns -v as a fresh slice.
func negated(v []float64) []float64 {
	w := make([]float64, len(v))
	copy(w, v)
	floats.Scale(-1, w)
	return w
}

// oneMinus returns 1-v elementwise as a fresh slice.
func oneMinus(v []float64) []float64 {
	w := negated(v)
	floats.AddConst(1, w)
	return w
}

// onePlus returns 1+v elementwise as a fresh slice.
func onePlus(v []float64) []float64 {
	w := make([]float64, len(v))
	copy(w, v)
	floats.AddConst(1, w)
	return w
}

// addBoundary injects the rail contributions into the first and last entries
// of the right-hand side.
func addBoundary(v []float64, k1, k2 float64) {
	v[0] += k1
	v[len(v)-1] += k2
}
