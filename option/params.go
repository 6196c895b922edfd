// Package option prices vanilla European and American options on a
// Crank-Nicolson finite-difference grid under a term-structured risk-free
// rate.
//
// The pipeline is explicit: New validates the parameters and lays out the
// grid's terminal state, Solve runs the backward-time recursion, and Price
// and the Greeks read the solved grid. PriceOf bundles the three for callers
// that only want the number.
package option

import (
	"errors"
	"fmt"
	"math"

	"github.com/meenmo/oplib/curve"
)

var (
	// ErrNotSolved is returned when a price or sensitivity is requested
	// before a successful Solve.
	ErrNotSolved = errors.New("option: grid not solved yet")

	// ErrNoConvergence is returned when the projected SOR iteration hits its
	// sweep cap before meeting the tolerance. The American price is not
	// reliable in that case; retrying with identical inputs cannot succeed,
	// the mesh or relaxation factor must change.
	ErrNoConvergence = errors.New("option: projected SOR did not converge")

	// ErrGridBounds is returned when a grid-neighbor sensitivity would read
	// outside the spot mesh (spot too close to zero or to the truncation
	// boundary for the chosen mesh).
	ErrGridBounds = errors.New("option: spot node too close to grid boundary")
)

// ContractType distinguishes calls from puts. The numeric values are the
// payoff sign: +1 for a call, -1 for a put.
type ContractType int

const (
	Call ContractType = 1
	Put  ContractType = -1
)

func (ct ContractType) String() string {
	switch ct {
	case Call:
		return "call"
	case Put:
		return "put"
	default:
		return fmt.Sprintf("ContractType(%d)", int(ct))
	}
}

// sign returns the payoff sign as a float for intrinsic-value arithmetic.
func (ct ContractType) sign() float64 { return float64(ct) }

// Exercise is the exercise style of the contract.
type Exercise int

const (
	European Exercise = iota
	American
)

func (e Exercise) String() string {
	switch e {
	case European:
		return "european"
	case American:
		return "american"
	default:
		return fmt.Sprintf("Exercise(%d)", int(e))
	}
}

// Params is the immutable pricing request.
//
// Defaults: SORTol 0.01, SORRelax 1.2, SORMaxIter 10000 (American branch
// only; ignored for European contracts).
type Params struct {
	// Contract is Call or Put.
	Contract ContractType
	// Exercise is European or American.
	Exercise Exercise
	// T is the maturity in years. Must satisfy T >= T0.
	T float64
	// K is the strike. Must be positive.
	K float64
	// T0 is the valuation time in years. Must be non-negative.
	T0 float64
	// TimeSteps is the number of time mesh points N (grid columns 0..N-1).
	TimeSteps int
	// SpotSteps is the number of spot mesh intervals M. The grid models spot
	// on [0, 5*S0] with step 5*S0/M; at least 3 so the interior is non-empty.
	SpotSteps int
	// S0 is today's spot. Must be positive.
	S0 float64
	// Curve is the zero-rate curve. Its domain must cover [T0, T].
	Curve *curve.Curve
	// Vol is the lognormal volatility as a decimal. Must be positive.
	Vol float64
	// SORTol is the Euclidean-norm stopping tolerance of the projected SOR
	// sweep (American only).
	SORTol float64
	// SORRelax is the SOR over-relaxation factor omega, in (0, 2).
	SORRelax float64
	// SORMaxIter caps the SOR sweeps per time step; hitting it surfaces
	// ErrNoConvergence.
	SORMaxIter int
}

const (
	defaultSORTol     = 0.01
	defaultSORRelax   = 1.2
	defaultSORMaxIter = 10000
)

// ParamError reports a single invalid request field.
type ParamError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("option: invalid %s: %s (got %v)", e.Field, e.Reason, e.Value)
}

// withDefaults fills zero-valued SOR knobs.
func (p Params) withDefaults() Params {
	if p.SORTol == 0 {
		p.SORTol = defaultSORTol
	}
	if p.SORRelax == 0 {
		p.SORRelax = defaultSORRelax
	}
	if p.SORMaxIter == 0 {
		p.SORMaxIter = defaultSORMaxIter
	}
	return p
}

// finite reports whether x is an ordinary float, neither NaN nor infinite.
func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// validate applies the construction invariants, fail-fast, one ParamError per
// offending field. Called on a Params that already has defaults applied.
//
// Every float field is required to be finite; a NaN that slipped through here
// would surface as a NaN price with no error attached.
func (p Params) validate() error {
	if p.Contract != Call && p.Contract != Put {
		return &ParamError{Field: "Contract", Value: int(p.Contract), Reason: "must be Call (+1) or Put (-1)"}
	}
	if p.Exercise != European && p.Exercise != American {
		return &ParamError{Field: "Exercise", Value: int(p.Exercise), Reason: "must be European or American"}
	}
	if !finite(p.T0) || p.T0 < 0 {
		return &ParamError{Field: "T0", Value: p.T0, Reason: "valuation time must be finite and non-negative"}
	}
	if !finite(p.T) {
		return &ParamError{Field: "T", Value: p.T, Reason: "maturity must be finite"}
	}
	if p.T < p.T0 {
		return &ParamError{Field: "T", Value: p.T, Reason: fmt.Sprintf("maturity must not precede valuation time %v", p.T0)}
	}
	if !finite(p.K) || p.K <= 0 {
		return &ParamError{Field: "K", Value: p.K, Reason: "strike must be finite and positive"}
	}
	if p.TimeSteps <= 0 {
		return &ParamError{Field: "TimeSteps", Value: p.TimeSteps, Reason: "time mesh must be positive"}
	}
	if p.SpotSteps < 3 {
		return &ParamError{Field: "SpotSteps", Value: p.SpotSteps, Reason: "spot mesh needs at least 3 steps for a non-empty interior"}
	}
	if !finite(p.S0) || p.S0 <= 0 {
		return &ParamError{Field: "S0", Value: p.S0, Reason: "spot must be finite and positive"}
	}
	if !finite(p.Vol) || p.Vol <= 0 {
		return &ParamError{Field: "Vol", Value: p.Vol, Reason: "volatility must be finite and positive"}
	}
	if p.Curve == nil {
		return &ParamError{Field: "Curve", Value: nil, Reason: "rate curve is required"}
	}
	if !p.Curve.Covers(p.T0, p.T) {
		lo, hi := p.Curve.Domain()
		return &ParamError{
			Field:  "Curve",
			Value:  fmt.Sprintf("[%v, %v]", lo, hi),
			Reason: fmt.Sprintf("curve domain must cover [%v, %v]", p.T0, p.T),
		}
	}
	if !finite(p.SORTol) || p.SORTol <= 0 {
		return &ParamError{Field: "SORTol", Value: p.SORTol, Reason: "tolerance must be finite and positive"}
	}
	if !(p.SORRelax > 0 && p.SORRelax < 2) {
		return &ParamError{Field: "SORRelax", Value: p.SORRelax, Reason: "relaxation factor must lie in (0, 2)"}
	}
	if p.SORMaxIter <= 0 {
		return &ParamError{Field: "SORMaxIter", Value: p.SORMaxIter, Reason: "sweep cap must be positive"}
	}
	return nil
}
