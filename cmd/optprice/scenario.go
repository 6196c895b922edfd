package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/meenmo/oplib/curve"
	"github.com/meenmo/oplib/option"
)

// Scenario is the JSON pricing request consumed by --scenario.
//
// Example:
//
//	{
//	  "contract": "call",
//	  "exercise": "european",
//	  "maturity": 1.0,
//	  "strike": 40.0,
//	  "t0": 0.0,
//	  "spot": 50.0,
//	  "vol": 0.1,
//	  "time_steps": 500,
//	  "spot_steps": 500,
//	  "curve": [{"t": 0.0, "rate": 0.0}, {"t": 1.0, "rate": 0.0212}]
//	}
//
// Instead of year-fraction knots the curve may be given as dated quotes, in
// which case settlement and day_count control the date-to-time conversion:
//
//	{
//	  ...
//	  "settlement": "2026-08-21",
//	  "day_count": "ACT/365F",
//	  "dated_curve": [
//	    {"date": "2026-08-21", "rate": 0.0},
//	    {"date": "2027-08-21", "rate": 0.0212}
//	  ]
//	}
type Scenario struct {
	Contract   string          `json:"contract"`
	Exercise   string          `json:"exercise"`
	Maturity   float64         `json:"maturity"`
	Strike     float64         `json:"strike"`
	T0         float64         `json:"t0"`
	Spot       float64         `json:"spot"`
	Vol        float64         `json:"vol"`
	TimeSteps  int             `json:"time_steps"`
	SpotSteps  int             `json:"spot_steps"`
	Curve      []ScenarioKnot  `json:"curve,omitempty"`
	Settlement string          `json:"settlement,omitempty"`
	DayCount   string          `json:"day_count,omitempty"`
	DatedCurve []ScenarioQuote `json:"dated_curve,omitempty"`
	SORTol     float64         `json:"sor_tol,omitempty"`
	SORRelax   float64         `json:"sor_relax,omitempty"`
	SORMaxIter int             `json:"sor_max_iter,omitempty"`
}

// ScenarioKnot is one (time, rate) node of the scenario curve.
type ScenarioKnot struct {
	T    float64 `json:"t"`
	Rate float64 `json:"rate"`
}

// ScenarioQuote is one dated node of the scenario curve.
type ScenarioQuote struct {
	Date string  `json:"date"`
	Rate float64 `json:"rate"`
}

// LoadScenario reads and decodes a scenario JSON file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode scenario %s: %w", path, err)
	}
	return &s, nil
}

// ToParams converts the scenario into a validated-ready option.Params.
func (s *Scenario) ToParams() (option.Params, error) {
	var p option.Params

	switch strings.ToLower(s.Contract) {
	case "call", "c":
		p.Contract = option.Call
	case "put", "p":
		p.Contract = option.Put
	default:
		return p, fmt.Errorf("unknown contract %q (want call or put)", s.Contract)
	}

	switch strings.ToLower(s.Exercise) {
	case "european", "eu", "":
		p.Exercise = option.European
	case "american", "am":
		p.Exercise = option.American
	default:
		return p, fmt.Errorf("unknown exercise %q (want european or american)", s.Exercise)
	}

	c, err := s.buildCurve()
	if err != nil {
		return p, err
	}

	p.T = s.Maturity
	p.K = s.Strike
	p.T0 = s.T0
	p.S0 = s.Spot
	p.Vol = s.Vol
	p.TimeSteps = s.TimeSteps
	p.SpotSteps = s.SpotSteps
	p.Curve = c
	p.SORTol = s.SORTol
	p.SORRelax = s.SORRelax
	p.SORMaxIter = s.SORMaxIter
	return p, nil
}

// buildCurve assembles the rate curve from whichever representation the
// scenario carries: year-fraction knots, or dated quotes anchored on the
// settlement date.
func (s *Scenario) buildCurve() (*curve.Curve, error) {
	switch {
	case len(s.Curve) > 0 && len(s.DatedCurve) > 0:
		return nil, fmt.Errorf("scenario has both curve and dated_curve; pick one")
	case len(s.DatedCurve) > 0:
		settlement, err := time.Parse("2006-01-02", s.Settlement)
		if err != nil {
			return nil, fmt.Errorf("bad settlement date %q: %w", s.Settlement, err)
		}
		quotes := make([]curve.DatedQuote, len(s.DatedCurve))
		for i, q := range s.DatedCurve {
			d, err := time.Parse("2006-01-02", q.Date)
			if err != nil {
				return nil, fmt.Errorf("bad quote date %q: %w", q.Date, err)
			}
			quotes[i] = curve.DatedQuote{Date: d, Rate: q.Rate}
		}
		return curve.FromDatedQuotes(settlement, quotes, s.DayCount)
	case len(s.Curve) > 0:
		knots := make([]curve.Knot, len(s.Curve))
		for i, k := range s.Curve {
			knots[i] = curve.Knot{T: k.T, Rate: k.Rate}
		}
		return curve.New(knots)
	default:
		return nil, fmt.Errorf("scenario has no curve knots")
	}
}

// parseCurveFlag parses the inline --curve format "t:rate,t:rate,...".
func parseCurveFlag(s string) ([]ScenarioKnot, error) {
	parts := strings.Split(s, ",")
	knots := make([]ScenarioKnot, 0, len(parts))
	for _, part := range parts {
		var k ScenarioKnot
		if _, err := fmt.Sscanf(strings.TrimSpace(part), "%f:%f", &k.T, &k.Rate); err != nil {
			return nil, fmt.Errorf("bad curve knot %q (want t:rate)", part)
		}
		knots = append(knots, k)
	}
	return knots, nil
}
