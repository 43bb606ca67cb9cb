package jupiter

import "encoding/json"

// QuoteRequest holds the parameters for a quote lookup. The same fields
// serve the GET /quote query string and, embedded, the JSON bodies of the
// Metis and Ultra quote endpoints.
type QuoteRequest struct {
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
	Amount     uint64 `json:"amount"` // raw base units

	SlippageBps uint16 `json:"slippageBps"`        // 0-10000
	SwapMode    string `json:"swapMode,omitempty"` // ExactIn | ExactOut

	Dexes        []string `json:"dexes,omitempty"`
	ExcludeDexes []string `json:"excludeDexes,omitempty"`

	PlatformFeeBps *uint16 `json:"platformFeeBps,omitempty"`
	MaxAccounts    *uint8  `json:"maxAccounts,omitempty"`
}

// QuoteResponse is the wire shape shared by all three quoting tiers.
// Token amounts arrive as decimal strings and must go through Normalize
// (or parseAmount) before arithmetic use.
type QuoteResponse struct {
	InputMint            string          `json:"inputMint"`
	InAmount             string          `json:"inAmount"`
	OutputMint           string          `json:"outputMint"`
	OutAmount            string          `json:"outAmount"`
	OtherAmountThreshold string          `json:"otherAmountThreshold"`
	SwapMode             string          `json:"swapMode"`
	SlippageBps          uint16          `json:"slippageBps"`
	PlatformFee          *PlatformFee    `json:"platformFee,omitempty"`
	PriceImpactPct       string          `json:"priceImpactPct"`
	RoutePlan            []RoutePlanStep `json:"routePlan"`

	ContextSlot uint64  `json:"contextSlot,omitempty"`
	TimeTaken   float64 `json:"timeTaken,omitempty"`
}

type PlatformFee struct {
	Amount string `json:"amount,omitempty"`
	FeeBps uint16 `json:"feeBps,omitempty"`
}

// RoutePlanStep is one hop of a multi-hop route. Percent is the share of
// the total amount routed through this hop; an accepted quote's hops sum
// to 100.
type RoutePlanStep struct {
	SwapInfo SwapInfo `json:"swapInfo"`
	Percent  uint8    `json:"percent"`
}

type SwapInfo struct {
	AmmKey     string `json:"ammKey"`
	Label      string `json:"label,omitempty"`
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
	InAmount   string `json:"inAmount"`
	OutAmount  string `json:"outAmount"`
	FeeAmount  string `json:"feeAmount,omitempty"`
	FeeMint    string `json:"feeMint,omitempty"`
}

// SwapRequest asks the venue to materialize an unsigned transaction from a
// previously obtained quote. The venue is stateless: the full QuoteResponse
// is re-submitted verbatim, never trimmed.
type SwapRequest struct {
	QuoteResponse QuoteResponse `json:"quoteResponse"`
	UserPublicKey string        `json:"userPublicKey"`

	DynamicComputeUnitLimit       *bool   `json:"dynamicComputeUnitLimit,omitempty"`
	PrioritizationFeeLamports     *uint64 `json:"prioritizationFeeLamports,omitempty"`
	AsLegacyTransaction           *bool   `json:"asLegacyTransaction,omitempty"`
	UseSharedAccounts             *bool   `json:"useSharedAccounts,omitempty"`
	FeeAccount                    *string `json:"feeAccount,omitempty"`
	TrackingAccount               *string `json:"trackingAccount,omitempty"`
	ComputeUnitPriceMicroLamports *uint64 `json:"computeUnitPriceMicroLamports,omitempty"`
	AsVersionedTransaction        *bool   `json:"asVersionedTransaction,omitempty"`
}

// SwapResponse carries the built transaction as an opaque blob. This layer
// never decodes or signs it.
type SwapResponse struct {
	SwapTransaction           string `json:"swapTransaction"`
	LastValidBlockHeight      uint64 `json:"lastValidBlockHeight"`
	PrioritizationFeeLamports uint64 `json:"prioritizationFeeLamports"`
	ComputeUnitLimit          uint32 `json:"computeUnitLimit"`

	PrioritizationFeeLamportsPerCU uint64 `json:"prioritizationFeeLamportsPerCu,omitempty"`
}

// MetisQuoteRequest extends the standard request with the optimization block.
type MetisQuoteRequest struct {
	QuoteRequest

	MetisOptimization *MetisOptimization `json:"metisOptimization,omitempty"`
	CrossAppState     *CrossAppState     `json:"crossAppState,omitempty"`
}

// MetisQuoteResponse is the standard quote extended by the optimization
// capability block. Embedding keeps route-plan and amount handling
// single-sourced in QuoteResponse.
type MetisQuoteResponse struct {
	QuoteResponse

	MetisOptimization *MetisOptimization `json:"metisOptimization,omitempty"`
	CrossAppState     *CrossAppState     `json:"crossAppState,omitempty"`
}

type MetisOptimization struct {
	Enabled              bool    `json:"enabled"`
	OptimizationLevel    uint8   `json:"optimizationLevel"` // 1-5
	MaxIterations        uint32  `json:"maxIterations"`
	ConvergenceThreshold float64 `json:"convergenceThreshold"`
}

type CrossAppState struct {
	AppID        string          `json:"appId"`
	StateData    json.RawMessage `json:"stateData,omitempty"`
	SyncRequired bool            `json:"syncRequired"`
}

// UltraQuoteRequest extends the standard request with the feature and
// slippage-protection blocks.
type UltraQuoteRequest struct {
	QuoteRequest

	UltraFeatures      *UltraFeatures      `json:"ultraFeatures,omitempty"`
	SlippageProtection *SlippageProtection `json:"slippageProtection,omitempty"`
}

type UltraQuoteResponse struct {
	QuoteResponse

	UltraFeatures      *UltraFeatures      `json:"ultraFeatures,omitempty"`
	SlippageProtection *SlippageProtection `json:"slippageProtection,omitempty"`
}

type UltraFeatures struct {
	Enabled                 bool `json:"enabled"`
	AdvancedRouting         bool `json:"advancedRouting"`
	MevProtection           bool `json:"mevProtection"`
	GasOptimization         bool `json:"gasOptimization"`
	PriceImpactOptimization bool `json:"priceImpactOptimization"`
}

type SlippageProtection struct {
	Enabled              bool    `json:"enabled"`
	MaxSlippageBps       uint16  `json:"maxSlippageBps"`
	PriceImpactThreshold float64 `json:"priceImpactThreshold"`
	DynamicSlippage      bool    `json:"dynamicSlippage"`
}

// TokenInfo describes one entry of the venue's token list.
type TokenInfo struct {
	Address  string          `json:"address"`
	ChainID  uint16          `json:"chainId"`
	Decimals uint8           `json:"decimals"`
	Name     string          `json:"name"`
	Symbol   string          `json:"symbol"`
	LogoURI  string          `json:"logoURI,omitempty"`
	Tags     []string        `json:"tags,omitempty"`
	Ext      json.RawMessage `json:"extensions,omitempty"`
}

// PriceData is the per-mint value of the price snapshot endpoint.
type PriceData struct {
	ID            string  `json:"id"`
	MintSymbol    string  `json:"mintSymbol"`
	VsToken       string  `json:"vsToken"`
	VsTokenSymbol string  `json:"vsTokenSymbol"`
	Price         float64 `json:"price"`
}

// HealthStatus is a read-only snapshot, fetched fresh per call.
type HealthStatus struct {
	Status          string           `json:"status"` // healthy | degraded | unhealthy | maintenance
	Timestamp       int64            `json:"timestamp"`
	Version         string           `json:"version"`
	Uptime          uint64           `json:"uptime"`
	LastError       *string          `json:"lastError,omitempty"`
	RateLimitStatus *RateLimitStatus `json:"rateLimitStatus,omitempty"`
}

type RateLimitStatus struct {
	Remaining uint32 `json:"remaining"`
	ResetTime int64  `json:"resetTime"`
	Limit     uint32 `json:"limit"`
}

type ApiInfo struct {
	Version           string         `json:"version"`
	APIType           string         `json:"apiType"`
	SupportedFeatures []string       `json:"supportedFeatures"`
	RateLimits        RateLimitInfo  `json:"rateLimits"`
	Endpoints         []EndpointInfo `json:"endpoints,omitempty"`
}

type RateLimitInfo struct {
	RequestsPerMinute uint32 `json:"requestsPerMinute"`
	RequestsPerHour   uint32 `json:"requestsPerHour"`
	RequestsPerDay    uint32 `json:"requestsPerDay"`
}

type EndpointInfo struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Method    string `json:"method"`
	RateLimit uint32 `json:"rateLimit"`
}
