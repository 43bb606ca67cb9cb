package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"solana-arb-adapter/internal/audit"
	"solana-arb-adapter/internal/jupiter"
	"solana-arb-adapter/internal/swap"
)

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Jupiter      *jupiter.Client    // aggregator API client
	Orchestrator *swap.Orchestrator // quote+build saga
	Audit        *audit.RedisAudit  // optional recent-outcomes store
	DevMode      bool
	Logger       *logrus.Logger
}

// err returns a standardized JSON error response. Dev mode includes details.
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// upstreamErr maps classified client failures onto gateway responses.
func (h *Handlers) upstreamErr(c echo.Context, err error) error {
	var apiErr *jupiter.APIError
	if errors.As(err, &apiErr) {
		return h.err(c, http.StatusBadGateway, string(apiErr.Category), map[string]any{"err": apiErr.Error()})
	}
	var amtErr *jupiter.AmountError
	if errors.As(err, &amtErr) {
		return h.err(c, http.StatusBadGateway, "malformed upstream amount", map[string]any{"err": amtErr.Error()})
	}
	var decErr *jupiter.DecodeError
	if errors.As(err, &decErr) {
		return h.err(c, http.StatusBadGateway, "upstream schema mismatch", map[string]any{"err": decErr.Error()})
	}
	return h.err(c, http.StatusBadGateway, "aggregator request failed", map[string]any{"err": err.Error()})
}

func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// Health reports local process health
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{OK: true})
}

// UpstreamHealth proxies the venue health snapshot
func (h *Handlers) UpstreamHealth(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	status, err := h.Jupiter.Health(ctx)
	if err != nil {
		return h.upstreamErr(c, err)
	}
	return c.JSON(http.StatusOK, status)
}

// Info proxies the venue API info
func (h *Handlers) Info(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	info, err := h.Jupiter.Info(ctx)
	if err != nil {
		return h.upstreamErr(c, err)
	}
	return c.JSON(http.StatusOK, info)
}

// Tokens proxies the venue token list
func (h *Handlers) Tokens(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	tokens, err := h.Jupiter.Tokens(ctx)
	if err != nil {
		return h.upstreamErr(c, err)
	}
	return c.JSON(http.StatusOK, tokens)
}

// Prices returns a price snapshot for a comma-separated ids parameter
func (h *Handlers) Prices(c echo.Context) error {
	ids := splitCSVQuery(c.QueryParams()["ids"])
	if len(ids) == 0 {
		return h.err(c, http.StatusBadRequest, "invalid ids", map[string]any{"ids": "at least one mint required"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	prices, err := h.Jupiter.Price(ctx, ids)
	if err != nil {
		return h.upstreamErr(c, err)
	}
	return c.JSON(http.StatusOK, PricesResponse{Prices: prices})
}

// RecentSwaps returns recently executed swap outcomes from the audit store
func (h *Handlers) RecentSwaps(c echo.Context) error {
	if h.Audit == nil {
		return h.err(c, http.StatusBadRequest, "audit store is not configured", nil)
	}

	limit := int64(100)
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 || n > 200 {
			return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "min 1 max 200"})
		}
		limit = n
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Audit.GetRecentOutcomes(ctx, limit)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to get outcomes", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// ExecuteSwap runs the full quote → build saga for an inbound intent
func (h *Handlers) ExecuteSwap(c echo.Context) error {
	if h.Orchestrator == nil {
		return h.err(c, http.StatusBadRequest, "swap execution is not configured", nil)
	}

	var req SwapExecuteRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	intent := &swap.Intent{
		InputMint:           strings.TrimSpace(req.InputMint),
		OutputMint:          strings.TrimSpace(req.OutputMint),
		Amount:              req.Amount,
		UserPublicKey:       strings.TrimSpace(req.UserPublicKey),
		SlippagePercent:     req.SlippagePercent,
		PriorityFeeLamports: req.PriorityFeeLamports,
		AllowedDexes:        req.AllowedDexes,
		ExcludedDexes:       req.ExcludedDexes,
	}

	// Both remote calls fit inside the 75s write timeout.
	ctx, cancel := h.withTimeout(c.Request().Context(), 65*time.Second)
	defer cancel()

	outcome, err := h.Orchestrator.ExecuteSwap(ctx, intent)
	if err != nil {
		var apiErr *jupiter.APIError
		if errors.As(err, &apiErr) {
			return h.upstreamErr(c, err)
		}
		return h.err(c, http.StatusBadRequest, "swap failed", map[string]any{"err": err.Error()})
	}
	return c.JSON(http.StatusOK, outcome)
}
