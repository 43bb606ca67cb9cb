package jupiter

import (
	"fmt"
	"math"
	"strconv"
)

// Quote is the internal, fully parsed representation used by callers. The
// originating wire response is retained because the venue must be re-given
// the complete quote when building a transaction.
type Quote struct {
	InputMint      string
	OutputMint     string
	InAmount       uint64
	OutAmount      uint64
	PriceImpactPct float64
	SlippageBps    uint16
	RoutePlan      []RoutePlanStep
	ContextSlot    uint64
	TimeTaken      float64

	// Response is the raw quote exactly as received.
	Response QuoteResponse
}

// Normalize converts the wire quote into the internal representation,
// parsing every string-encoded numeric field with overflow checks. A quote
// with an empty route plan is rejected.
func (r *QuoteResponse) Normalize() (*Quote, error) {
	inAmount, err := parseAmount("inAmount", r.InAmount)
	if err != nil {
		return nil, err
	}
	outAmount, err := parseAmount("outAmount", r.OutAmount)
	if err != nil {
		return nil, err
	}
	priceImpact, err := parseDecimal("priceImpactPct", r.PriceImpactPct)
	if err != nil {
		return nil, err
	}
	if len(r.RoutePlan) == 0 {
		return nil, fmt.Errorf("quote has an empty route plan")
	}

	return &Quote{
		InputMint:      r.InputMint,
		OutputMint:     r.OutputMint,
		InAmount:       inAmount,
		OutAmount:      outAmount,
		PriceImpactPct: priceImpact,
		SlippageBps:    r.SlippageBps,
		RoutePlan:      r.RoutePlan,
		ContextSlot:    r.ContextSlot,
		TimeTaken:      r.TimeTaken,
		Response:       *r,
	}, nil
}

// ValidateRoutePlan checks the route plan invariants. The plan must never
// be empty; under strict validation the hop percents must also sum to 100.
func ValidateRoutePlan(plan []RoutePlanStep, strict bool) error {
	if len(plan) == 0 {
		return fmt.Errorf("route plan is empty")
	}
	if !strict {
		return nil
	}
	var total int
	for _, hop := range plan {
		total += int(hop.Percent)
	}
	if total != 100 {
		return fmt.Errorf("route plan percents sum to %d, want 100", total)
	}
	return nil
}

// PercentToBps converts a slippage percentage to basis points, rounding to
// the nearest bps.
func PercentToBps(percent float64) uint16 {
	return uint16(math.Round(percent * 100))
}

// BpsToPercent is the inverse conversion.
func BpsToPercent(bps uint16) float64 {
	return float64(bps) / 100
}

func parseAmount(field, value string) (uint64, error) {
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, &AmountError{Field: field, Value: value, Err: err}
	}
	return n, nil
}

func parseDecimal(field, value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, &AmountError{Field: field, Value: value, Err: err}
	}
	return f, nil
}
