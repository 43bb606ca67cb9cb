package jupiter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testQuoteResponse() QuoteResponse {
	return QuoteResponse{
		InputMint:            "So11111111111111111111111111111111111111112",
		InAmount:             "1000000",
		OutputMint:           "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		OutAmount:            "158000000",
		OtherAmountThreshold: "157210000",
		SwapMode:             "ExactIn",
		SlippageBps:          50,
		PriceImpactPct:       "0.12",
		RoutePlan: []RoutePlanStep{
			{SwapInfo: SwapInfo{AmmKey: "amm1", Label: "Orca", InAmount: "600000", OutAmount: "94800000"}, Percent: 60},
			{SwapInfo: SwapInfo{AmmKey: "amm2", Label: "Raydium", InAmount: "400000", OutAmount: "63200000"}, Percent: 40},
		},
		ContextSlot: 250123456,
		TimeTaken:   0.042,
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClientWithConfig(srv.URL, "test-key", APITypePro, nil, nil)
	require.NoError(t, err)
	return client
}

func TestQuote(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "pro", r.Header.Get("X-API-Type"))

		q := r.URL.Query()
		assert.Equal(t, "So11111111111111111111111111111111111111112", q.Get("inputMint"))
		assert.Equal(t, "1000000", q.Get("amount"))
		assert.Equal(t, "50", q.Get("slippageBps"))
		assert.Equal(t, "ExactIn", q.Get("swapMode"))
		assert.Equal(t, "Orca,Raydium", q.Get("dexes"))
		assert.Equal(t, "64", q.Get("maxAccounts"))

		_ = json.NewEncoder(w).Encode(testQuoteResponse())
	})

	maxAccounts := uint8(64)
	resp, err := client.Quote(context.Background(), QuoteRequest{
		InputMint:   "So11111111111111111111111111111111111111112",
		OutputMint:  "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		Amount:      1_000_000,
		SlippageBps: 50,
		SwapMode:    "ExactIn",
		Dexes:       []string{"Orca", "Raydium"},
		MaxAccounts: &maxAccounts,
	})
	require.NoError(t, err)
	assert.Equal(t, "158000000", resp.OutAmount)
	assert.Len(t, resp.RoutePlan, 2)
	assert.Equal(t, uint64(250123456), resp.ContextSlot)
}

func TestQuote_RequestValidation(t *testing.T) {
	client, err := NewPublicClient()
	require.NoError(t, err)

	tests := []struct {
		name string
		req  QuoteRequest
	}{
		{name: "missing input mint", req: QuoteRequest{OutputMint: "b", Amount: 1}},
		{name: "missing output mint", req: QuoteRequest{InputMint: "a", Amount: 1}},
		{name: "zero amount", req: QuoteRequest{InputMint: "a", OutputMint: "b"}},
		{name: "slippage above cap", req: QuoteRequest{InputMint: "a", OutputMint: "b", Amount: 1, SlippageBps: 10001}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Quote(context.Background(), tt.req)
			assert.Error(t, err)
		})
	}
}

func TestQuote_MalformedAmount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		resp := testQuoteResponse()
		resp.InAmount = "12x3"
		_ = json.NewEncoder(w).Encode(resp)
	})

	_, err := client.Quote(context.Background(), QuoteRequest{
		InputMint: "a", OutputMint: "b", Amount: 1,
	})

	var amtErr *AmountError
	require.ErrorAs(t, err, &amtErr)
	assert.Equal(t, "inAmount", amtErr.Field)
	assert.Equal(t, "12x3", amtErr.Value)
}

func TestQuote_StrictRouteValidation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		resp := testQuoteResponse()
		resp.RoutePlan[1].Percent = 30 // 60 + 30 != 100
		_ = json.NewEncoder(w).Encode(resp)
	})
	client.WithStrictRouteValidation()

	_, err := client.Quote(context.Background(), QuoteRequest{
		InputMint: "a", OutputMint: "b", Amount: 1,
	})

	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
}

func TestSwap_ResubmitsQuoteVerbatim(t *testing.T) {
	quote := testQuoteResponse()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/swap", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body SwapRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, quote, body.QuoteResponse)
		assert.Equal(t, "signer", body.UserPublicKey)
		require.NotNil(t, body.DynamicComputeUnitLimit)
		assert.True(t, *body.DynamicComputeUnitLimit)

		_ = json.NewEncoder(w).Encode(SwapResponse{
			SwapTransaction:           "AQIDBA==",
			LastValidBlockHeight:      987654,
			PrioritizationFeeLamports: 2_000_000,
			ComputeUnitLimit:          400_000,
		})
	})

	dynamicCU := true
	resp, err := client.Swap(context.Background(), SwapRequest{
		QuoteResponse:           quote,
		UserPublicKey:           "signer",
		DynamicComputeUnitLimit: &dynamicCU,
	})
	require.NoError(t, err)
	assert.Equal(t, "AQIDBA==", resp.SwapTransaction)
	assert.Equal(t, uint64(987654), resp.LastValidBlockHeight)
	assert.Equal(t, uint64(2_000_000), resp.PrioritizationFeeLamports)
}

func TestSwap_RequiresUserPublicKey(t *testing.T) {
	client, err := NewPublicClient()
	require.NoError(t, err)

	_, err = client.Swap(context.Background(), SwapRequest{QuoteResponse: testQuoteResponse()})
	assert.Error(t, err)
}

func TestTokens(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tokens", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]TokenInfo{
			"So11111111111111111111111111111111111111112": {
				Address: "So11111111111111111111111111111111111111112",
				ChainID: 101, Decimals: 9, Name: "Wrapped SOL", Symbol: "SOL",
			},
		})
	})

	tokens, err := client.Tokens(context.Background())
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, uint8(9), tokens["So11111111111111111111111111111111111111112"].Decimals)
}

func TestPrice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/price", r.URL.Path)
		assert.Equal(t, "mintA,mintB", r.URL.Query().Get("ids"))
		_ = json.NewEncoder(w).Encode(map[string]PriceData{
			"mintA": {ID: "mintA", Price: 158.42},
			"mintB": {ID: "mintB", Price: 1.0001},
		})
	})

	prices, err := client.Price(context.Background(), []string{"mintA", "mintB"})
	require.NoError(t, err)
	assert.Equal(t, 158.42, prices["mintA"])
	assert.Equal(t, 1.0001, prices["mintB"])
}

func TestPrice_EmptyIDs(t *testing.T) {
	client, err := NewPublicClient()
	require.NoError(t, err)

	_, err = client.Price(context.Background(), nil)
	assert.Error(t, err)
}

func TestMetisQuote(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/metis/quote", r.URL.Path)

		var body MetisQuoteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.NotNil(t, body.MetisOptimization)
		assert.Equal(t, uint8(3), body.MetisOptimization.OptimizationLevel)

		_ = json.NewEncoder(w).Encode(MetisQuoteResponse{
			QuoteResponse:     testQuoteResponse(),
			MetisOptimization: &MetisOptimization{Enabled: true, OptimizationLevel: 3},
		})
	})

	resp, err := client.MetisQuote(context.Background(), MetisQuoteRequest{
		QuoteRequest: QuoteRequest{InputMint: "a", OutputMint: "b", Amount: 1_000_000},
		MetisOptimization: &MetisOptimization{
			Enabled: true, OptimizationLevel: 3, MaxIterations: 100, ConvergenceThreshold: 0.001,
		},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.MetisOptimization)
	assert.True(t, resp.MetisOptimization.Enabled)
	assert.Equal(t, "158000000", resp.OutAmount)
}

func TestUltraQuote(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ultra/quote", r.URL.Path)
		_ = json.NewEncoder(w).Encode(UltraQuoteResponse{
			QuoteResponse: testQuoteResponse(),
			UltraFeatures: &UltraFeatures{Enabled: true, MevProtection: true},
			SlippageProtection: &SlippageProtection{
				Enabled: true, MaxSlippageBps: 100, DynamicSlippage: true,
			},
		})
	})

	resp, err := client.UltraQuote(context.Background(), UltraQuoteRequest{
		QuoteRequest:  QuoteRequest{InputMint: "a", OutputMint: "b", Amount: 1_000_000},
		UltraFeatures: &UltraFeatures{Enabled: true, MevProtection: true},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.UltraFeatures)
	assert.True(t, resp.UltraFeatures.MevProtection)
	require.NotNil(t, resp.SlippageProtection)
	assert.Equal(t, uint16(100), resp.SlippageProtection.MaxSlippageBps)
}

func TestHealth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_ = json.NewEncoder(w).Encode(HealthStatus{
			Status: "healthy", Version: "6.0.1", Uptime: 86400,
			RateLimitStatus: &RateLimitStatus{Remaining: 598, Limit: 600},
		})
	})

	status, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", status.Status)
	require.NotNil(t, status.RateLimitStatus)
	assert.Equal(t, uint32(598), status.RateLimitStatus.Remaining)
}

func TestInfo(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/info", r.URL.Path)
		_ = json.NewEncoder(w).Encode(ApiInfo{
			Version: "6.0.1", APIType: "pro",
			SupportedFeatures: []string{"quote", "swap", "metis"},
			RateLimits:        RateLimitInfo{RequestsPerMinute: 600},
		})
	})

	info, err := client.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pro", info.APIType)
	assert.Contains(t, info.SupportedFeatures, "metis")
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		headers    map[string]string
		category   ErrorCategory
		retryAfter string
	}{
		{name: "bad request", status: 400, category: CategoryBadRequest},
		{name: "unauthorized", status: 401, category: CategoryUnauthorized},
		{name: "forbidden", status: 403, category: CategoryForbidden},
		{name: "not found", status: 404, category: CategoryNotFound},
		{
			name:       "rate limited with header",
			status:     429,
			headers:    map[string]string{"Retry-After": "12"},
			category:   CategoryRateLimited,
			retryAfter: "12",
		},
		{
			name:       "rate limited without header",
			status:     429,
			category:   CategoryRateLimited,
			retryAfter: RetryAfterUnknown,
		},
		{name: "internal error", status: 500, category: CategoryUpstream},
		{name: "bad gateway", status: 502, category: CategoryUpstream},
		{name: "unavailable", status: 503, category: CategoryUpstream},
		{name: "teapot", status: 418, category: CategoryHTTP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				w.Header().Set("X-Request-Id", "req-123")
				w.Header().Set("X-Api-Type", "pro")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("nope"))
			})

			_, err := client.Health(context.Background())

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.category, apiErr.Category)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, "nope", apiErr.Body)
			assert.Equal(t, tt.retryAfter, apiErr.RetryAfter)
			assert.Equal(t, "req-123", apiErr.RequestID)
			assert.Equal(t, "pro", apiErr.APIType)
		})
	}
}

func TestDecodeError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": 42}`)) // status should be a string
	})

	_, err := client.Health(context.Background())

	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, "health", decErr.Endpoint)
	assert.NotEmpty(t, decErr.Payload)
}
