package tridiag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/oplib/tridiag"
)

func TestNewDimensionChecks(t *testing.T) {
	t.Parallel()

	_, err := tridiag.New(nil, []float64{1}, nil)
	assert.ErrorIs(t, err, tridiag.ErrDimension)

	_, err = tridiag.New([]float64{1, 2}, []float64{1, 2}, []float64{1})
	assert.ErrorIs(t, err, tridiag.ErrDimension)

	m, err := tridiag.New([]float64{1}, []float64{1, 2}, []float64{1})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Size())
}

func TestMulVecKnown(t *testing.T) {
	t.Parallel()

	m, err := tridiag.New([]float64{1, 2}, []float64{4, 5, 6}, []float64{7, 8})
	require.NoError(t, err)

	b, err := m.MulVec([]float64{1, 1, 1})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{11, 14, 8}, b, 1e-15)

	_, err = m.MulVec([]float64{1, 1})
	assert.ErrorIs(t, err, tridiag.ErrDimension)
}

// randomDominant builds a diagonally dominant system, which keeps every pivot
// of the Thomas recurrence well away from zero.
func randomDominant(rng *rand.Rand, n int) (sub, diag, super []float64) {
	sub = make([]float64, n-1)
	diag = make([]float64, n)
	super = make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		sub[i] = rng.Float64()*2 - 1
		super[i] = rng.Float64()*2 - 1
	}
	for i := 0; i < n; i++ {
		diag[i] = 4 + rng.Float64() // dominant over |sub| + |super| <= 2
	}
	return sub, diag, super
}

func TestSolveRoundTrip(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))
	for _, n := range []int{2, 3, 17, 101} {
		sub, diag, super := randomDominant(rng, n)
		m, err := tridiag.New(sub, diag, super)
		require.NoError(t, err)

		x := make([]float64, n)
		for i := range x {
			x[i] = rng.Float64()*10 - 5
		}

		b, err := m.MulVec(x)
		require.NoError(t, err)
		got, err := m.Solve(b)
		require.NoError(t, err)
		assert.InDeltaSlice(t, x, got, 1e-10, "n=%d", n)
	}
}

func TestSolveMatchesDense(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	const n = 8
	sub, diag, super := randomDominant(rng, n)
	m, err := tridiag.New(sub, diag, super)
	require.NoError(t, err)

	b := make([]float64, n)
	for i := range b {
		b[i] = rng.Float64()*4 - 2
	}

	got, err := m.Solve(b)
	require.NoError(t, err)

	dense := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		dense.Set(i, i, diag[i])
		if i > 0 {
			dense.Set(i, i-1, sub[i-1])
		}
		if i < n-1 {
			dense.Set(i, i+1, super[i])
		}
	}
	var want mat.VecDense
	require.NoError(t, want.SolveVec(dense, mat.NewVecDense(n, b)))

	for i := 0; i < n; i++ {
		assert.InDelta(t, want.AtVec(i), got[i], 1e-10, "row %d", i)
	}
}

func TestSolveSingularPivot(t *testing.T) {
	t.Parallel()

	m, err := tridiag.New([]float64{1}, []float64{0, 1}, []float64{1})
	require.NoError(t, err)

	_, err = m.Solve([]float64{1, 1})
	assert.ErrorIs(t, err, tridiag.ErrSingular)
}

func TestSolveLengthMismatch(t *testing.T) {
	t.Parallel()

	m, err := tridiag.New([]float64{1}, []float64{2, 2}, []float64{1})
	require.NoError(t, err)

	_, err = m.Solve([]float64{1, 2, 3})
	assert.ErrorIs(t, err, tridiag.ErrDimension)
}
