package main

import (
	"fmt"
	"os"

	"github.com/meenmo/oplib/curve"
	"github.com/meenmo/oplib/option"
)

func main() {
	// One-year European call under a rate curve rising from 0 to 2.12%.
	c, err := curve.New([]curve.Knot{
		{T: 0.0, Rate: 0.0},
		{T: 1.0, Rate: 0.0212},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	pr, err := option.New(option.Params{
		Contract:  option.Call,
		Exercise:  option.European,
		T:         1.0,
		K:         40.0,
		T0:        0.0,
		TimeSteps: 500,
		SpotSteps: 500,
		S0:        50.0,
		Curve:     c,
		Vol:       0.1,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := pr.Solve(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	price, _ := pr.Price()
	delta, _ := pr.Delta()
	gamma, _ := pr.Gamma()
	theta, _ := pr.Theta()
	vega, err := pr.Vega(0.01)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rho, err := pr.Rho(0.0001)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("Price: %.5f\n", price)
	fmt.Printf("Delta: %.5f\n", delta)
	fmt.Printf("Gamma: %.5f\n", gamma)
	fmt.Printf("Theta: %.5f\n", theta)
	fmt.Printf("Vega:  %.5f\n", vega)
	fmt.Printf("Rho:   %.5f\n", rho)
}
