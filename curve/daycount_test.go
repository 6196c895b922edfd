package curve_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/oplib/curve"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestYearFraction(t *testing.T) {
	t.Parallel()

	start := date(2026, time.January, 2)

	assert.InDelta(t, 180.0/360.0, curve.YearFraction(start, start.AddDate(0, 0, 180), "ACT/360"), 1e-12)
	assert.InDelta(t, 365.0/365.0, curve.YearFraction(start, start.AddDate(0, 0, 365), "ACT/365F"), 1e-12)
	// 30E/360: 2026-01-02 -> 2026-07-02 is exactly half a year.
	assert.InDelta(t, 0.5, curve.YearFraction(start, date(2026, time.July, 2), "30E/360"), 1e-12)
	// Unknown conventions fall back to ACT/365F.
	assert.InDelta(t, 365.0/365.0, curve.YearFraction(start, start.AddDate(0, 0, 365), "BOGUS"), 1e-12)
}

func TestFromDatedQuotes(t *testing.T) {
	t.Parallel()

	settlement := date(2026, time.January, 2)
	c, err := curve.FromDatedQuotes(settlement, []curve.DatedQuote{
		// Out of order on purpose; the constructor sorts.
		{Date: settlement.AddDate(0, 0, 365), Rate: 0.03},
		{Date: settlement, Rate: 0.02},
	}, "ACT/365F")
	require.NoError(t, err)

	lo, hi := c.Domain()
	assert.InDelta(t, 0, lo, 1e-12)
	assert.InDelta(t, 1, hi, 1e-12)

	r, err := c.Rate(0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.025, r, 1e-12)
}

func TestFromDatedQuotesRejectsPreSettlement(t *testing.T) {
	t.Parallel()

	settlement := date(2026, time.January, 2)
	_, err := curve.FromDatedQuotes(settlement, []curve.DatedQuote{
		{Date: settlement.AddDate(0, 0, -1), Rate: 0.02},
		{Date: settlement.AddDate(0, 0, 365), Rate: 0.03},
	}, "ACT/365F")
	assert.Error(t, err)
}

func TestFromDatedQuotesNeedsTwo(t *testing.T) {
	t.Parallel()

	_, err := curve.FromDatedQuotes(date(2026, time.January, 2), []curve.DatedQuote{
		{Date: date(2026, time.June, 1), Rate: 0.02},
	}, "ACT/365F")
	assert.Error(t, err)
}
