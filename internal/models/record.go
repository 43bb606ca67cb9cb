package models

import "time"

// SwapRecord is an audit row for one executed (or attempted) swap. It is
// written best-effort to Redis and ClickHouse after each orchestration.
type SwapRecord struct {
	Timestamp      time.Time `json:"timestamp"`
	InputMint      string    `json:"input_mint"`
	OutputMint     string    `json:"output_mint"`
	InAmount       uint64    `json:"in_amount"`
	OutAmount      uint64    `json:"out_amount"`
	PriceImpactPct float64   `json:"price_impact_pct"`
	SlippageBps    uint16    `json:"slippage_bps"`
	FeeSOL         float64   `json:"fee_sol"`
	RouteHops      int       `json:"route_hops"`
	ContextSlot    uint64    `json:"context_slot"`
	Success        bool      `json:"success"`
	Error          string    `json:"error,omitempty"`
}
