package swap

import "solana-arb-adapter/internal/jupiter"

// Intent is what the arbitrage engine hands the orchestrator: a
// protocol-agnostic description of the swap it wants executed.
type Intent struct {
	InputMint  string
	OutputMint string
	Amount     uint64 // base units

	UserPublicKey string

	// SlippagePercent is a percentage (0.5 = 0.5%), converted to basis
	// points when talking to the venue.
	SlippagePercent float64

	PriorityFeeLamports uint64

	AllowedDexes  []string
	ExcludedDexes []string
}

// Outcome is returned to the arbitrage engine. ActualProfit,
// ExecutionTimeMs, and BundleID stay zero-valued here; the settlement
// collaborator fills them in after on-chain confirmation.
type Outcome struct {
	Transaction          string // opaque unsigned transaction payload
	LastValidBlockHeight uint64
	Success              bool
	ErrorMessage         string

	FeeSOL          float64
	ActualProfit    float64
	ExecutionTimeMs int64
	BundleID        string

	// Quote is the originating quote, kept for audit.
	Quote *jupiter.Quote
}
