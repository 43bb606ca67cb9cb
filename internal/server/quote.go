package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"solana-arb-adapter/internal/jupiter"
)

func splitCSVQuery(values []string) []string {
	var out []string
	for _, v := range values {
		for _, p := range strings.Split(v, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// parseQuoteParams validates the query-string parameters shared by the
// standard quote passthrough. Returns nil and writes the error response
// when validation fails.
func (h *Handlers) parseQuoteParams(c echo.Context) (*jupiter.QuoteRequest, error) {
	inputMint := strings.TrimSpace(c.QueryParam("inputMint"))
	outputMint := strings.TrimSpace(c.QueryParam("outputMint"))
	amountStr := strings.TrimSpace(c.QueryParam("amount"))

	if inputMint == "" {
		return nil, h.err(c, http.StatusBadRequest, "invalid inputMint", map[string]any{"inputMint": "required"})
	}
	if outputMint == "" {
		return nil, h.err(c, http.StatusBadRequest, "invalid outputMint", map[string]any{"outputMint": "required"})
	}
	amount, err := strconv.ParseUint(amountStr, 10, 64)
	if err != nil || amount == 0 {
		return nil, h.err(c, http.StatusBadRequest, "invalid amount", map[string]any{"amount": "must be a positive uint64"})
	}

	slippageBps := uint64(50)
	if v := strings.TrimSpace(c.QueryParam("slippageBps")); v != "" {
		slippageBps, err = strconv.ParseUint(v, 10, 16)
		if err != nil || slippageBps > 10000 {
			return nil, h.err(c, http.StatusBadRequest, "invalid slippageBps", map[string]any{"slippageBps": "must be in [0, 10000]"})
		}
	}

	swapMode := strings.TrimSpace(c.QueryParam("swapMode"))
	if swapMode != "" && swapMode != "ExactIn" && swapMode != "ExactOut" {
		return nil, h.err(c, http.StatusBadRequest, "invalid swapMode", map[string]any{"swapMode": "must be ExactIn or ExactOut"})
	}

	req := &jupiter.QuoteRequest{
		InputMint:    inputMint,
		OutputMint:   outputMint,
		Amount:       amount,
		SlippageBps:  uint16(slippageBps),
		SwapMode:     swapMode,
		Dexes:        splitCSVQuery(c.QueryParams()["dexes"]),
		ExcludeDexes: splitCSVQuery(c.QueryParams()["excludeDexes"]),
	}

	if v := strings.TrimSpace(c.QueryParam("platformFeeBps")); v != "" {
		n, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return nil, h.err(c, http.StatusBadRequest, "invalid platformFeeBps", map[string]any{"platformFeeBps": "must be uint16"})
		}
		fee := uint16(n)
		req.PlatformFeeBps = &fee
	}
	if v := strings.TrimSpace(c.QueryParam("maxAccounts")); v != "" {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return nil, h.err(c, http.StatusBadRequest, "invalid maxAccounts", map[string]any{"maxAccounts": "must be uint8"})
		}
		max := uint8(n)
		req.MaxAccounts = &max
	}

	return req, nil
}

// Quote is a passthrough to the standard quote endpoint
func (h *Handlers) Quote(c echo.Context) error {
	req, err := h.parseQuoteParams(c)
	if req == nil {
		return err
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 35*time.Second)
	defer cancel()

	out, err := h.Jupiter.Quote(ctx, *req)
	if err != nil {
		return h.upstreamErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// MetisQuote is a passthrough to the optimization-enhanced quote endpoint
func (h *Handlers) MetisQuote(c echo.Context) error {
	var req jupiter.MetisQuoteRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 35*time.Second)
	defer cancel()

	out, err := h.Jupiter.MetisQuote(ctx, req)
	if err != nil {
		return h.upstreamErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// UltraQuote is a passthrough to the feature-enhanced quote endpoint
func (h *Handlers) UltraQuote(c echo.Context) error {
	var req jupiter.UltraQuoteRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 35*time.Second)
	defer cancel()

	out, err := h.Jupiter.UltraQuote(ctx, req)
	if err != nil {
		return h.upstreamErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
