package curve

import (
	"fmt"
	"sort"
	"time"
)

// YearFraction computes the year fraction between two dates using the given
// day count convention. Supported conventions: ACT/360, ACT/365F, 30E/360,
// 30/360. Unknown conventions fall back to ACT/365F.
func YearFraction(start, end time.Time, convention string) float64 {
	switch convention {
	case "ACT/360":
		days := end.Sub(start).Hours() / 24
		return days / 360.0
	case "ACT/365F":
		days := end.Sub(start).Hours() / 24
		return days / 365.0
	case "30E/360", "30/360":
		// 30E/360 ISDA (Eurobond basis); D1 and D2 are capped at 30.
		d1 := start.Day()
		if d1 > 30 {
			d1 = 30
		}
		d2 := end.Day()
		if d2 > 30 {
			d2 = 30
		}
		y1, m1 := start.Year(), int(start.Month())
		y2, m2 := end.Year(), int(end.Month())
		return float64(360*(y2-y1)+30*(m2-m1)+(d2-d1)) / 360.0
	default:
		days := end.Sub(start).Hours() / 24
		return days / 365.0
	}
}

// DatedQuote is a zero-rate quote observed for a calendar date.
// Rate is a decimal (0.0212 == 2.12%).
type DatedQuote struct {
	Date time.Time
	Rate float64
}

// FromDatedQuotes builds a curve from dated market quotes, converting each
// quote date to a year fraction from the settlement date under the given day
// count convention. A quote on the settlement date itself anchors the curve
// at t=0; quotes before settlement are rejected.
func FromDatedQuotes(settlement time.Time, quotes []DatedQuote, convention string) (*Curve, error) {
	if len(quotes) < 2 {
		return nil, fmt.Errorf("curve: need at least 2 dated quotes, got %d", len(quotes))
	}

	sorted := make([]DatedQuote, len(quotes))
	copy(sorted, quotes)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	knots := make([]Knot, 0, len(sorted))
	for _, q := range sorted {
		if q.Date.Before(settlement) {
			return nil, fmt.Errorf("curve: quote date %s precedes settlement %s",
				q.Date.Format("2006-01-02"), settlement.Format("2006-01-02"))
		}
		knots = append(knots, Knot{
			T:    YearFraction(settlement, q.Date, convention),
			Rate: q.Rate,
		})
	}
	return New(knots)
}
