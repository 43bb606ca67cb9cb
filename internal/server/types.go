package server

// ErrorResponse is the standardized error payload
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Details any    `json:"details,omitempty"` // dev mode only
}

// HealthResponse reports local process health
type HealthResponse struct {
	OK bool `json:"ok"`
}

// SwapExecuteRequest is the inbound intent for POST /v1/swap
type SwapExecuteRequest struct {
	InputMint           string   `json:"inputMint"`
	OutputMint          string   `json:"outputMint"`
	Amount              uint64   `json:"amount"`
	UserPublicKey       string   `json:"userPublicKey"`
	SlippagePercent     float64  `json:"slippagePercent"`
	PriorityFeeLamports uint64   `json:"priorityFeeLamports"`
	AllowedDexes        []string `json:"allowedDexes,omitempty"`
	ExcludedDexes       []string `json:"excludedDexes,omitempty"`
}

// PricesResponse maps mint ids to prices
type PricesResponse struct {
	Prices map[string]float64 `json:"prices"`
}
