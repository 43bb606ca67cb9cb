package constants

import "github.com/gagliardetto/solana-go"

// Redis keys
const (
	RedisKeyRecentOutcomes = "outcomes:recent"
)

// Redis Pub/Sub channels
const (
	PubSubChannelOutcomes = "swaps:executed"
)

// Limits and defaults
const (
	MaxRecentOutcomes = 100

	// Quote requests from the orchestrator cap the account count so the
	// built transaction stays under the address-table limits.
	DefaultMaxAccounts = 64

	LamportsPerSOL = 1_000_000_000
)

// JupiterProgramID is the on-chain aggregator program, kept for
// correlating audit rows with indexed transactions.
var JupiterProgramID = solana.MustPublicKeyFromBase58("JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4")

// TokenMints maps common token symbols to their mint addresses, used by
// the CLI so callers can say "SOL" instead of the full mint.
var TokenMints = map[string]string{
	"SOL":  "So11111111111111111111111111111111111111112",
	"USDC": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
	"USDT": "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB",
	"JUP":  "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN",
	"BONK": "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263",
	"RAY":  "4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R",
}

// TokenDecimals maps token symbols to their decimal places.
var TokenDecimals = map[string]uint8{
	"SOL":  9,
	"USDC": 6,
	"USDT": 6,
	"JUP":  6,
	"BONK": 5,
	"RAY":  6,
}
