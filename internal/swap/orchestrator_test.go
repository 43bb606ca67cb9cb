package swap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-arb-adapter/internal/jupiter"
)

const (
	solMint    = "So11111111111111111111111111111111111111112"
	usdcMint   = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	testSigner = "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN"
)

func testQuoteJSON() jupiter.QuoteResponse {
	return jupiter.QuoteResponse{
		InputMint:            solMint,
		InAmount:             "1000000",
		OutputMint:           usdcMint,
		OutAmount:            "158000000",
		OtherAmountThreshold: "157210000",
		SwapMode:             "ExactIn",
		SlippageBps:          50,
		PriceImpactPct:       "0.12",
		RoutePlan: []jupiter.RoutePlanStep{
			{SwapInfo: jupiter.SwapInfo{AmmKey: "amm1", Label: "Orca"}, Percent: 60},
			{SwapInfo: jupiter.SwapInfo{AmmKey: "amm2", Label: "Raydium"}, Percent: 40},
		},
		ContextSlot: 250123456,
	}
}

func testIntent() *Intent {
	return &Intent{
		InputMint:           solMint,
		OutputMint:          usdcMint,
		Amount:              1_000_000,
		UserPublicKey:       testSigner,
		SlippagePercent:     0.5,
		PriorityFeeLamports: 100_000,
	}
}

func newTestOrchestrator(t *testing.T, handler http.HandlerFunc) *Orchestrator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := jupiter.NewClientWithConfig(srv.URL, "", jupiter.APITypePublic, nil, nil)
	require.NoError(t, err)
	return NewOrchestrator(client)
}

func TestExecuteSwap(t *testing.T) {
	quote := testQuoteJSON()

	orch := newTestOrchestrator(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/quote":
			q := r.URL.Query()
			assert.Equal(t, solMint, q.Get("inputMint"))
			assert.Equal(t, usdcMint, q.Get("outputMint"))
			assert.Equal(t, "1000000", q.Get("amount"))
			assert.Equal(t, "50", q.Get("slippageBps")) // 0.5% -> 50 bps
			assert.Equal(t, "ExactIn", q.Get("swapMode"))
			assert.Equal(t, "64", q.Get("maxAccounts"))
			_ = json.NewEncoder(w).Encode(quote)

		case "/swap":
			var body jupiter.SwapRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, quote, body.QuoteResponse)
			assert.Equal(t, testSigner, body.UserPublicKey)

			require.NotNil(t, body.DynamicComputeUnitLimit)
			assert.True(t, *body.DynamicComputeUnitLimit)
			require.NotNil(t, body.AsLegacyTransaction)
			assert.False(t, *body.AsLegacyTransaction)
			require.NotNil(t, body.UseSharedAccounts)
			assert.True(t, *body.UseSharedAccounts)
			require.NotNil(t, body.AsVersionedTransaction)
			assert.True(t, *body.AsVersionedTransaction)
			require.NotNil(t, body.PrioritizationFeeLamports)
			assert.Equal(t, uint64(100_000), *body.PrioritizationFeeLamports)

			_ = json.NewEncoder(w).Encode(jupiter.SwapResponse{
				SwapTransaction:           "AQIDBA==",
				LastValidBlockHeight:      987654,
				PrioritizationFeeLamports: 2_000_000,
				ComputeUnitLimit:          400_000,
			})

		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	outcome, err := orch.ExecuteSwap(context.Background(), testIntent())
	require.NoError(t, err)

	assert.True(t, outcome.Success)
	assert.Equal(t, "AQIDBA==", outcome.Transaction)
	assert.Equal(t, uint64(987654), outcome.LastValidBlockHeight)
	assert.InDelta(t, 0.002, outcome.FeeSOL, 1e-12) // 2_000_000 lamports
	assert.Empty(t, outcome.ErrorMessage)

	require.NotNil(t, outcome.Quote)
	assert.Equal(t, uint64(1_000_000), outcome.Quote.InAmount)
	assert.Equal(t, uint64(158_000_000), outcome.Quote.OutAmount)
	assert.Len(t, outcome.Quote.RoutePlan, 2)

	// Settlement fields are not this layer's job.
	assert.Zero(t, outcome.ActualProfit)
	assert.Zero(t, outcome.ExecutionTimeMs)
	assert.Empty(t, outcome.BundleID)
}

func TestExecuteSwap_QuoteFailureStopsSaga(t *testing.T) {
	swapHits := 0

	orch := newTestOrchestrator(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/quote":
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("routing engine down"))
		case "/swap":
			swapHits++
			w.WriteHeader(http.StatusOK)
		}
	})

	outcome, err := orch.ExecuteSwap(context.Background(), testIntent())

	var apiErr *jupiter.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, jupiter.CategoryUpstream, apiErr.Category)

	require.NotNil(t, outcome)
	assert.False(t, outcome.Success)
	assert.NotEmpty(t, outcome.ErrorMessage)
	assert.Equal(t, 0, swapHits, "swap must not be attempted after a failed quote")
}

func TestExecuteSwap_BuildFailure(t *testing.T) {
	orch := newTestOrchestrator(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/quote":
			_ = json.NewEncoder(w).Encode(testQuoteJSON())
		case "/swap":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("quote expired"))
		}
	})

	outcome, err := orch.ExecuteSwap(context.Background(), testIntent())

	var apiErr *jupiter.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, jupiter.CategoryBadRequest, apiErr.Category)

	require.NotNil(t, outcome)
	assert.False(t, outcome.Success)
	// The quote survives for audit even though the build failed.
	assert.NotNil(t, outcome.Quote)
}

func TestExecuteSwap_EmptyRoutePlan(t *testing.T) {
	orch := newTestOrchestrator(t, func(w http.ResponseWriter, r *http.Request) {
		quote := testQuoteJSON()
		quote.RoutePlan = nil
		_ = json.NewEncoder(w).Encode(quote)
	})

	outcome, err := orch.ExecuteSwap(context.Background(), testIntent())
	require.Error(t, err)
	assert.False(t, outcome.Success)
}

func TestValidateIntent(t *testing.T) {
	valid := testIntent()
	require.NoError(t, validateIntent(valid))

	tests := []struct {
		name   string
		mutate func(*Intent)
	}{
		{name: "bad input mint", mutate: func(i *Intent) { i.InputMint = "zz" }},
		{name: "bad output mint", mutate: func(i *Intent) { i.OutputMint = "not-base58-0O" }},
		{name: "same mints", mutate: func(i *Intent) { i.OutputMint = i.InputMint }},
		{name: "bad signer", mutate: func(i *Intent) { i.UserPublicKey = "" }},
		{name: "zero amount", mutate: func(i *Intent) { i.Amount = 0 }},
		{name: "negative slippage", mutate: func(i *Intent) { i.SlippagePercent = -0.1 }},
		{name: "slippage above 100", mutate: func(i *Intent) { i.SlippagePercent = 100.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := testIntent()
			tt.mutate(intent)
			assert.Error(t, validateIntent(intent))
		})
	}

	assert.Error(t, validateIntent(nil))
}
