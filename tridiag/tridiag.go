// Package tridiag represents an n×n tridiagonal matrix by its three diagonals
// and solves A*x = b in O(n) via the Thomas LU factorization.
//
// The pricer rebuilds these systems at every backward time step, so both the
// product and the solve allocate only the output slice.
package tridiag

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrSingular is returned when a pivot of the LU recurrence vanishes.
	// The factorization cannot continue; the caller must change the mesh or
	// coefficients rather than retry.
	ErrSingular = errors.New("tridiag: zero pivot, matrix is numerically singular")

	// ErrDimension is returned when a vector's length does not match the
	// matrix order, or when the diagonals' lengths are inconsistent.
	ErrDimension = errors.New("tridiag: dimension mismatch")
)

// pivotTiny is the magnitude below which a pivot is treated as zero.
const pivotTiny = 1e-300

// Matrix is an n×n tridiagonal matrix: diag has length n, sub and super have
// length n-1.
type Matrix struct {
	sub   []float64
	diag  []float64
	super []float64
}

// New validates the diagonal lengths and returns the matrix. The slices are
// retained, not copied; callers must not mutate them afterwards.
func New(sub, diag, super []float64) (*Matrix, error) {
	n := len(diag)
	if n < 2 {
		return nil, fmt.Errorf("%w: order must be at least 2, got %d", ErrDimension, n)
	}
	if len(sub) != n-1 || len(super) != n-1 {
		return nil, fmt.Errorf("%w: order %d needs %d off-diagonal entries, got sub=%d super=%d",
			ErrDimension, n, n-1, len(sub), len(super))
	}
	return &Matrix{sub: sub, diag: diag, super: super}, nil
}

// Size returns the matrix order n.
func (m *Matrix) Size() int { return len(m.diag) }

// MulVec returns A*x.
func (m *Matrix) MulVec(x []float64) ([]float64, error) {
	n := m.Size()
	if len(x) != n {
		return nil, fmt.Errorf("%w: MulVec with len(x)=%d, order=%d", ErrDimension, len(x), n)
	}
	b := make([]float64, n)
	b[0] = m.diag[0]*x[0] + m.super[0]*x[1]
	for i := 1; i < n-1; i++ {
		b[i] = m.sub[i-1]*x[i-1] + m.diag[i]*x[i] + m.super[i]*x[i+1]
	}
	b[n-1] = m.sub[n-2]*x[n-2] + m.diag[n-1]*x[n-1]
	return b, nil
}

// Solve returns x with A*x = b using the Thomas algorithm: the multiplier and
// pivot recurrence factors A into a unit lower triangular and an upper
// triangular system, then one forward and one backward substitution recover x.
// A vanishing pivot returns ErrSingular rather than letting NaN propagate
// through the grid.
func (m *Matrix) Solve(b []float64) ([]float64, error) {
	n := m.Size()
	if len(b) != n {
		return nil, fmt.Errorf("%w: Solve with len(b)=%d, order=%d", ErrDimension, len(b), n)
	}

	// l_i = sub_i / pivot_i, pivot_{i+1} = diag_{i+1} - l_i * super_i.
	l := make([]float64, n-1)
	pivot := make([]float64, n)
	pivot[0] = m.diag[0]
	for i := 0; i < n-1; i++ {
		if math.Abs(pivot[i]) < pivotTiny {
			return nil, fmt.Errorf("%w (pivot %d)", ErrSingular, i)
		}
		l[i] = m.sub[i] / pivot[i]
		pivot[i+1] = m.diag[i+1] - l[i]*m.super[i]
	}
	if math.Abs(pivot[n-1]) < pivotTiny {
		return nil, fmt.Errorf("%w (pivot %d)", ErrSingular, n-1)
	}

	y := forwardSolve(l, b)
	return backwardSolve(pivot, m.super, y), nil
}

// forwardSolve solves L*y = b where L is unit lower bidiagonal with the given
// subdiagonal multipliers.
func forwardSolve(l, b []float64) []float64 {
	y := make([]float64, len(b))
	y[0] = b[0]
	for i := 1; i < len(b); i++ {
		y[i] = b[i] - l[i-1]*y[i-1]
	}
	return y
}

// backwardSolve solves U*x = y where U is upper bidiagonal with the given
// pivots on the diagonal.
func backwardSolve(pivot, super, y []float64) []float64 {
	n := len(y)
	x := make([]float64, n)
	x[n-1] = y[n-1] / pivot[n-1]
	for i := n - 2; i >= 0; i-- {
		x[i] = (y[i] - super[i]*x[i+1]) / pivot[i]
	}
	return x
}
