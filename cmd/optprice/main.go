// optprice prices vanilla European and American options on a Crank-Nicolson
// finite-difference grid under a term-structured rate curve.
//
// The request comes either from a JSON scenario file (--scenario) or from the
// individual flags; see the price command's help for the flag set.
package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meenmo/oplib/analytic"
	"github.com/meenmo/oplib/option"
)

var (
	log *zap.Logger

	flagVerbose  bool
	flagScenario string

	flagContract  string
	flagExercise  string
	flagMaturity  float64
	flagStrike    float64
	flagT0        float64
	flagSpot      float64
	flagVol       float64
	flagTimeSteps int
	flagSpotSteps int
	flagRate      float64
	flagCurve     string
	flagSORTol    float64
	flagSORRelax  float64
	flagBump      float64
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "optprice",
	Short: "Finite-difference option pricer with a term-structured rate curve",
	Long: `optprice prices vanilla European and American options by solving the
Black-Scholes PDE on a Crank-Nicolson grid. European contracts use a direct
tridiagonal solve per time step; American contracts use projected SOR to
enforce the early-exercise floor.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagVerbose {
			log = zap.Must(zap.NewDevelopment())
		} else {
			log = zap.NewNop()
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "log solver diagnostics")
	pf.StringVar(&flagScenario, "scenario", "", "JSON scenario file (overrides the request flags)")
	pf.StringVar(&flagContract, "contract", "call", "contract type: call or put")
	pf.StringVar(&flagExercise, "exercise", "european", "exercise style: european or american")
	pf.Float64Var(&flagMaturity, "maturity", 1.0, "maturity T in years")
	pf.Float64Var(&flagStrike, "strike", 100, "strike K")
	pf.Float64Var(&flagT0, "t0", 0, "valuation time in years")
	pf.Float64Var(&flagSpot, "spot", 100, "spot S0")
	pf.Float64Var(&flagVol, "vol", 0.2, "volatility sigma (decimal)")
	pf.IntVar(&flagTimeSteps, "time-steps", 500, "time mesh count N")
	pf.IntVar(&flagSpotSteps, "spot-steps", 500, "spot mesh count M")
	pf.Float64Var(&flagRate, "rate", 0.02, "flat rate, used when --curve is empty")
	pf.StringVar(&flagCurve, "curve", "", "inline curve knots, e.g. \"0:0.0,1:0.0212\"")
	pf.Float64Var(&flagSORTol, "sor-tol", 0, "projected SOR tolerance (default 0.01)")
	pf.Float64Var(&flagSORRelax, "sor-omega", 0, "projected SOR relaxation factor (default 1.2)")

	greeksCmd.Flags().Float64Var(&flagBump, "bump", 0.01, "bump size for vega and rho")

	rootCmd.AddCommand(priceCmd)
	rootCmd.AddCommand(greeksCmd)
	rootCmd.AddCommand(gridCmd)
	rootCmd.AddCommand(compareCmd)
}

// requestParams assembles the pricing request from the scenario file or the
// flag set.
func requestParams() (option.Params, error) {
	if flagScenario != "" {
		s, err := LoadScenario(flagScenario)
		if err != nil {
			return option.Params{}, err
		}
		return s.ToParams()
	}

	s := &Scenario{
		Contract:  flagContract,
		Exercise:  flagExercise,
		Maturity:  flagMaturity,
		Strike:    flagStrike,
		T0:        flagT0,
		Spot:      flagSpot,
		Vol:       flagVol,
		TimeSteps: flagTimeSteps,
		SpotSteps: flagSpotSteps,
		SORTol:    flagSORTol,
		SORRelax:  flagSORRelax,
	}
	if flagCurve != "" {
		knots, err := parseCurveFlag(flagCurve)
		if err != nil {
			return option.Params{}, err
		}
		s.Curve = knots
	} else {
		// Flat curve wide enough to cover [T0, T].
		s.Curve = []ScenarioKnot{{T: 0, Rate: flagRate}, {T: flagMaturity + 1, Rate: flagRate}}
	}
	return s.ToParams()
}

// solveRequest builds and solves a pricer, logging SOR effort when verbose.
func solveRequest() (*option.Pricer, error) {
	p, err := requestParams()
	if err != nil {
		return nil, err
	}
	pr, err := option.New(p)
	if err != nil {
		return nil, err
	}
	log.Info("solving grid",
		zap.Stringer("contract", p.Contract),
		zap.Stringer("exercise", p.Exercise),
		zap.Int("timeSteps", p.TimeSteps),
		zap.Int("spotSteps", p.SpotSteps))
	if err := pr.Solve(); err != nil {
		return nil, err
	}
	if stats := pr.SORStats(); len(stats) > 0 {
		total, max := 0, 0
		for _, s := range stats {
			total += s.Sweeps
			if s.Sweeps > max {
				max = s.Sweeps
			}
		}
		log.Info("projected SOR finished",
			zap.Int("steps", len(stats)),
			zap.Int("totalSweeps", total),
			zap.Int("maxSweepsPerStep", max))
	}
	return pr, nil
}

// money formats a value for display with fixed precision.
func money(v float64) string {
	return decimal.NewFromFloat(v).Round(5).String()
}

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Price the option",
	RunE: func(cmd *cobra.Command, args []string) error {
		pr, err := solveRequest()
		if err != nil {
			return err
		}
		v, err := pr.Price()
		if err != nil {
			return err
		}
		fmt.Printf("Price: %s\n", money(v))
		return nil
	},
}

var greeksCmd = &cobra.Command{
	Use:   "greeks",
	Short: "Price the option and report its sensitivities",
	RunE: func(cmd *cobra.Command, args []string) error {
		pr, err := solveRequest()
		if err != nil {
			return err
		}
		v, err := pr.Price()
		if err != nil {
			return err
		}
		delta, err := pr.Delta()
		if err != nil {
			return err
		}
		gamma, err := pr.Gamma()
		if err != nil {
			return err
		}
		theta, err := pr.Theta()
		if err != nil {
			return err
		}
		vega, err := pr.Vega(flagBump)
		if err != nil {
			return err
		}
		rho, err := pr.Rho(flagBump)
		if err != nil {
			return err
		}

		fmt.Printf("Price: %s\n", money(v))
		fmt.Printf("Delta: %s\n", money(delta))
		fmt.Printf("Gamma: %s\n", money(gamma))
		fmt.Printf("Theta: %s\n", money(theta))
		fmt.Printf("Vega:  %s\n", money(vega))
		fmt.Printf("Rho:   %s\n", money(rho))
		return nil
	},
}

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Dump the solved value grid (rows = spot nodes, cols = time)",
	RunE: func(cmd *cobra.Command, args []string) error {
		pr, err := solveRequest()
		if err != nil {
			return err
		}
		return pr.WriteGrid(os.Stdout)
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the grid price against the closed-form Black-Scholes value",
	Long: `compare prices a European contract on the grid and next to it the
closed-form Black-Scholes value at the curve's average rate over [T0, T].
American contracts are rejected: no closed form exists to compare against.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := requestParams()
		if err != nil {
			return err
		}
		if p.Exercise != option.European {
			return fmt.Errorf("compare supports European contracts only, got %s", p.Exercise)
		}
		if p.T == p.T0 {
			return fmt.Errorf("compare needs a positive tenor, got T = T0 = %v", p.T)
		}

		grid, err := option.PriceOf(p)
		if err != nil {
			return err
		}

		integral, err := p.Curve.Integral(p.T0, p.T)
		if err != nil {
			return err
		}
		avgRate := integral / (p.T - p.T0)
		closed := analytic.BlackScholes(p.Contract == option.Call, p.S0, p.K, p.T-p.T0, avgRate, p.Vol)

		diff := grid - closed
		fmt.Printf("Grid price:         %s\n", money(grid))
		fmt.Printf("Black-Scholes (r=%s): %s\n", money(avgRate), money(closed))
		fmt.Printf("Difference:         %s (%.4f%%)\n", money(diff), 100*diff/closed)
		return nil
	},
}
