package option

import (
	"fmt"
	"io"
)

// Grid returns a copy of the value grid, indexed [spot node][time index].
// Before Solve only the terminal column and rails are meaningful.
func (pr *Pricer) Grid() [][]float64 {
	out := make([][]float64, len(pr.grid))
	for j, row := range pr.grid {
		out[j] = make([]float64, len(row))
		copy(out[j], row)
	}
	return out
}

// WriteGrid dumps the grid as a fixed-point table, one row per spot node
// (bottom rail first), one column per time index. Diagnostic output only;
// large meshes produce large tables.
func (pr *Pricer) WriteGrid(w io.Writer) error {
	for j := 0; j <= pr.p.SpotSteps; j++ {
		for i := 0; i < pr.p.TimeSteps; i++ {
			if _, err := fmt.Fprintf(w, "%8.3f ", pr.grid[j][i]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
