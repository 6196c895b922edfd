package option_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/oplib/curve"
	"github.com/meenmo/oplib/option"
)

// flatCurve is a test helper for a flat rate over [0, tMax].
func flatCurve(t *testing.T, rate, tMax float64) *curve.Curve {
	t.Helper()
	c, err := curve.Flat(rate, tMax)
	require.NoError(t, err)
	return c
}

func validParams(t *testing.T) option.Params {
	t.Helper()
	return option.Params{
		Contract:  option.Call,
		Exercise:  option.European,
		T:         1.0,
		K:         100,
		T0:        0,
		TimeSteps: 50,
		SpotSteps: 50,
		S0:        100,
		Curve:     flatCurve(t, 0.02, 2),
		Vol:       0.2,
	}
}

func TestNewValidatesEachField(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		mutate    func(*option.Params)
		wantField string
	}{
		{"contract", func(p *option.Params) { p.Contract = 3 }, "Contract"},
		{"exercise", func(p *option.Params) { p.Exercise = 9 }, "Exercise"},
		{"negative T0", func(p *option.Params) { p.T0 = -0.5 }, "T0"},
		{"maturity before T0", func(p *option.Params) { p.T = 0.1; p.T0 = 0.5 }, "T"},
		{"zero strike", func(p *option.Params) { p.K = 0 }, "K"},
		{"negative strike", func(p *option.Params) { p.K = -10 }, "K"},
		{"zero time mesh", func(p *option.Params) { p.TimeSteps = 0 }, "TimeSteps"},
		{"tiny spot mesh", func(p *option.Params) { p.SpotSteps = 2 }, "SpotSteps"},
		{"zero spot", func(p *option.Params) { p.S0 = 0 }, "S0"},
		{"zero vol", func(p *option.Params) { p.Vol = 0 }, "Vol"},
		{"nil curve", func(p *option.Params) { p.Curve = nil }, "Curve"},
		{"short curve", func(p *option.Params) { p.Curve = flatCurve(t, 0.02, 0.5) }, "Curve"},
		{"negative tol", func(p *option.Params) { p.SORTol = -1 }, "SORTol"},
		{"relaxation too large", func(p *option.Params) { p.SORRelax = 2.5 }, "SORRelax"},
		{"negative sweep cap", func(p *option.Params) { p.SORMaxIter = -1 }, "SORMaxIter"},
		{"NaN T0", func(p *option.Params) { p.T0 = math.NaN() }, "T0"},
		{"NaN maturity", func(p *option.Params) { p.T = math.NaN() }, "T"},
		{"infinite maturity", func(p *option.Params) { p.T = math.Inf(1) }, "T"},
		{"NaN strike", func(p *option.Params) { p.K = math.NaN() }, "K"},
		{"NaN spot", func(p *option.Params) { p.S0 = math.NaN() }, "S0"},
		{"infinite spot", func(p *option.Params) { p.S0 = math.Inf(1) }, "S0"},
		{"NaN vol", func(p *option.Params) { p.Vol = math.NaN() }, "Vol"},
		{"NaN tol", func(p *option.Params) { p.SORTol = math.NaN() }, "SORTol"},
		{"NaN relaxation", func(p *option.Params) { p.SORRelax = math.NaN() }, "SORRelax"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validParams(t)
			tc.mutate(&p)

			_, err := option.New(p)
			require.Error(t, err)

			var pe *option.ParamError
			require.True(t, errors.As(err, &pe), "want *ParamError, got %T: %v", err, err)
			assert.Equal(t, tc.wantField, pe.Field)
		})
	}
}

// A NaN request field must fail construction, not ride through the solve to a
// NaN price or an out-of-range grid read.
func TestPriceOfRejectsNonFiniteRequest(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*option.Params)
	}{
		{"NaN spot", func(p *option.Params) { p.S0 = math.NaN() }},
		{"NaN strike", func(p *option.Params) { p.K = math.NaN() }},
		{"NaN vol", func(p *option.Params) { p.Vol = math.NaN() }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validParams(t)
			tc.mutate(&p)

			v, err := option.PriceOf(p)
			require.Error(t, err)
			var pe *option.ParamError
			assert.True(t, errors.As(err, &pe), "want *ParamError, got %T: %v", err, err)
			assert.Zero(t, v)
		})
	}
}

func TestNewAppliesSORDefaults(t *testing.T) {
	t.Parallel()

	pr, err := option.New(validParams(t))
	require.NoError(t, err)

	p := pr.Params()
	assert.Equal(t, 0.01, p.SORTol)
	assert.Equal(t, 1.2, p.SORRelax)
	assert.Equal(t, 10000, p.SORMaxIter)
}

func TestContractAndExerciseStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "call", option.Call.String())
	assert.Equal(t, "put", option.Put.String())
	assert.Equal(t, "european", option.European.String())
	assert.Equal(t, "american", option.American.String())
}
