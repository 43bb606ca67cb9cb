package jupiter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	resp := testQuoteResponse()

	quote, err := resp.Normalize()
	require.NoError(t, err)

	assert.Equal(t, resp.InputMint, quote.InputMint)
	assert.Equal(t, resp.OutputMint, quote.OutputMint)
	assert.Equal(t, uint64(1_000_000), quote.InAmount)
	assert.Equal(t, uint64(158_000_000), quote.OutAmount)
	assert.InDelta(t, 0.12, quote.PriceImpactPct, 1e-9)
	assert.Equal(t, uint16(50), quote.SlippageBps)
	assert.Len(t, quote.RoutePlan, 2)
	assert.Equal(t, uint64(250123456), quote.ContextSlot)
	assert.Equal(t, resp, quote.Response)
}

func TestNormalize_Errors(t *testing.T) {
	t.Run("malformed inAmount", func(t *testing.T) {
		resp := testQuoteResponse()
		resp.InAmount = "abc"
		_, err := resp.Normalize()

		var amtErr *AmountError
		require.ErrorAs(t, err, &amtErr)
		assert.Equal(t, "inAmount", amtErr.Field)
	})

	t.Run("negative outAmount", func(t *testing.T) {
		resp := testQuoteResponse()
		resp.OutAmount = "-5"
		_, err := resp.Normalize()

		var amtErr *AmountError
		require.ErrorAs(t, err, &amtErr)
	})

	t.Run("overflowing amount", func(t *testing.T) {
		resp := testQuoteResponse()
		resp.InAmount = "18446744073709551616" // MaxUint64 + 1
		_, err := resp.Normalize()

		var amtErr *AmountError
		require.ErrorAs(t, err, &amtErr)
	})

	t.Run("malformed price impact", func(t *testing.T) {
		resp := testQuoteResponse()
		resp.PriceImpactPct = "low"
		_, err := resp.Normalize()

		var amtErr *AmountError
		require.ErrorAs(t, err, &amtErr)
		assert.Equal(t, "priceImpactPct", amtErr.Field)
	})

	t.Run("empty route plan", func(t *testing.T) {
		resp := testQuoteResponse()
		resp.RoutePlan = nil
		_, err := resp.Normalize()
		assert.Error(t, err)
	})
}

func TestValidateRoutePlan(t *testing.T) {
	twoHops := []RoutePlanStep{{Percent: 60}, {Percent: 40}}
	unbalanced := []RoutePlanStep{{Percent: 60}, {Percent: 30}}

	assert.Error(t, ValidateRoutePlan(nil, false))
	assert.Error(t, ValidateRoutePlan(nil, true))

	assert.NoError(t, ValidateRoutePlan(twoHops, false))
	assert.NoError(t, ValidateRoutePlan(twoHops, true))

	// Lenient mode tolerates odd percents; strict does not.
	assert.NoError(t, ValidateRoutePlan(unbalanced, false))
	assert.Error(t, ValidateRoutePlan(unbalanced, true))
}

func TestPercentToBps(t *testing.T) {
	tests := []struct {
		percent float64
		bps     uint16
	}{
		{0, 0},
		{0.5, 50},
		{1, 100},
		{0.005, 1}, // rounds up
		{0.004, 0}, // rounds down
		{2.5, 250},
		{12.34, 1234},
		{100, 10000},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.bps, PercentToBps(tt.percent), "percent %v", tt.percent)
	}
}

func TestBpsPercentRoundTrip(t *testing.T) {
	// Converting percent -> bps -> percent must stay within half a bps
	// across the whole valid slippage range.
	for p := 0.0; p <= 100.0; p += 0.37 {
		got := BpsToPercent(PercentToBps(p))
		assert.LessOrEqual(t, math.Abs(got-p), 0.005+1e-9, "percent %v", p)
	}
}
