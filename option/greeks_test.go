package option_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/oplib/option"
)

func solvedATM(t *testing.T, contract option.ContractType) *option.Pricer {
	t.Helper()
	p := option.Params{
		Contract:  contract,
		Exercise:  option.European,
		T:         1.0,
		K:         100,
		TimeSteps: 200,
		SpotSteps: 200,
		S0:        100,
		Curve:     flatCurve(t, 0.03, 2),
		Vol:       0.2,
	}
	pr, err := option.New(p)
	require.NoError(t, err)
	require.NoError(t, pr.Solve())
	return pr
}

func TestGridGreeksATMCall(t *testing.T) {
	t.Parallel()

	pr := solvedATM(t, option.Call)

	delta, err := pr.Delta()
	require.NoError(t, err)
	assert.Greater(t, delta, 0.4)
	assert.Less(t, delta, 0.8)

	gamma, err := pr.Gamma()
	require.NoError(t, err)
	assert.Greater(t, gamma, 0.0)

	theta, err := pr.Theta()
	require.NoError(t, err)
	assert.Less(t, theta, 0.0, "time value decays toward maturity")
}

func TestPutDeltaNegative(t *testing.T) {
	t.Parallel()

	pr := solvedATM(t, option.Put)

	delta, err := pr.Delta()
	require.NoError(t, err)
	assert.Less(t, delta, 0.0)
	assert.Greater(t, delta, -1.0)
}

func TestVegaPositive(t *testing.T) {
	t.Parallel()

	for _, contract := range []option.ContractType{option.Call, option.Put} {
		pr := solvedATM(t, contract)
		vega, err := pr.Vega(0.01)
		require.NoError(t, err)
		assert.Greater(t, vega, 0.0, "%v vega", contract)
	}
}

func TestRhoSigns(t *testing.T) {
	t.Parallel()

	call := solvedATM(t, option.Call)
	rho, err := call.Rho(0.0001)
	require.NoError(t, err)
	assert.Greater(t, rho, 0.0)

	put := solvedATM(t, option.Put)
	rho, err = put.Rho(0.0001)
	require.NoError(t, err)
	assert.Less(t, rho, 0.0)
}

func TestBumpGreeksRejectZeroBump(t *testing.T) {
	t.Parallel()

	pr := solvedATM(t, option.Call)

	_, err := pr.Vega(0)
	assert.Error(t, err)
	_, err = pr.Rho(0)
	assert.Error(t, err)
}

func TestThetaNeedsTwoTimeColumns(t *testing.T) {
	t.Parallel()

	p := validParams(t)
	p.TimeSteps = 1

	pr, err := option.New(p)
	require.NoError(t, err)
	require.NoError(t, pr.Solve())

	_, err = pr.Theta()
	assert.Error(t, err)
}

func TestGreeksBeforeSolve(t *testing.T) {
	t.Parallel()

	pr, err := option.New(validParams(t))
	require.NoError(t, err)

	_, err = pr.Delta()
	assert.ErrorIs(t, err, option.ErrNotSolved)
	_, err = pr.Gamma()
	assert.ErrorIs(t, err, option.ErrNotSolved)
	_, err = pr.Vega(0.01)
	assert.ErrorIs(t, err, option.ErrNotSolved)
}
