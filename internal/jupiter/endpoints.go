package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

// Quote fetches a routed price estimate from GET /quote.
func (c *Client) Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error) {
	if err := validateQuoteRequest(req); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"inputMint":  req.InputMint,
		"outputMint": req.OutputMint,
		"amount":     req.Amount,
	}).Debug("requesting quote")

	var out QuoteResponse
	if err := c.get(ctx, "/quote", quoteQuery(req), "quote", &out); err != nil {
		return nil, err
	}
	if err := c.checkQuoteResponse(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Swap asks POST /swap to build an unsigned transaction from a quote. The
// embedded QuoteResponse goes out exactly as it was received.
func (c *Client) Swap(ctx context.Context, req SwapRequest) (*SwapResponse, error) {
	if strings.TrimSpace(req.UserPublicKey) == "" {
		return nil, fmt.Errorf("userPublicKey is required")
	}

	c.logger.WithField("userPublicKey", req.UserPublicKey).Debug("requesting swap transaction")

	var out SwapResponse
	if err := c.post(ctx, "/swap", req, "swap", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Tokens fetches the venue token list from GET /tokens, keyed by mint.
func (c *Client) Tokens(ctx context.Context) (map[string]TokenInfo, error) {
	var out map[string]TokenInfo
	if err := c.get(ctx, "/tokens", nil, "tokens", &out); err != nil {
		return nil, err
	}
	c.logger.WithField("tokens", len(out)).Debug("fetched token list")
	return out, nil
}

// Price fetches a price snapshot for a finite, non-empty list of mints from
// GET /price. The identifiers are joined into a single request.
func (c *Client) Price(ctx context.Context, ids []string) (map[string]float64, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one token id is required")
	}

	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))

	var raw map[string]PriceData
	if err := c.get(ctx, "/price", q, "price", &raw); err != nil {
		return nil, err
	}

	prices := make(map[string]float64, len(raw))
	for id, data := range raw {
		prices[id] = data.Price
	}
	return prices, nil
}

// MetisQuote fetches an optimization-enhanced quote from POST /metis/quote.
func (c *Client) MetisQuote(ctx context.Context, req MetisQuoteRequest) (*MetisQuoteResponse, error) {
	if err := validateQuoteRequest(req.QuoteRequest); err != nil {
		return nil, err
	}

	var out MetisQuoteResponse
	if err := c.post(ctx, "/metis/quote", req, "metis quote", &out); err != nil {
		return nil, err
	}
	if err := c.checkQuoteResponse(&out.QuoteResponse); err != nil {
		return nil, err
	}
	return &out, nil
}

// UltraQuote fetches a feature-enhanced quote from POST /ultra/quote.
func (c *Client) UltraQuote(ctx context.Context, req UltraQuoteRequest) (*UltraQuoteResponse, error) {
	if err := validateQuoteRequest(req.QuoteRequest); err != nil {
		return nil, err
	}

	var out UltraQuoteResponse
	if err := c.post(ctx, "/ultra/quote", req, "ultra quote", &out); err != nil {
		return nil, err
	}
	if err := c.checkQuoteResponse(&out.QuoteResponse); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health fetches the service health snapshot from GET /health.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var out HealthStatus
	if err := c.get(ctx, "/health", nil, "health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Info fetches API version and limit information from GET /info.
func (c *Client) Info(ctx context.Context) (*ApiInfo, error) {
	var out ApiInfo
	if err := c.get(ctx, "/info", nil, "info", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func validateQuoteRequest(req QuoteRequest) error {
	if strings.TrimSpace(req.InputMint) == "" {
		return fmt.Errorf("inputMint is required")
	}
	if strings.TrimSpace(req.OutputMint) == "" {
		return fmt.Errorf("outputMint is required")
	}
	if req.Amount == 0 {
		return fmt.Errorf("amount must be > 0")
	}
	if req.SlippageBps > 10000 {
		return fmt.Errorf("slippageBps must be <= 10000")
	}
	return nil
}

func quoteQuery(req QuoteRequest) url.Values {
	q := url.Values{}
	q.Set("inputMint", req.InputMint)
	q.Set("outputMint", req.OutputMint)
	q.Set("amount", fmt.Sprintf("%d", req.Amount))
	q.Set("slippageBps", fmt.Sprintf("%d", req.SlippageBps))

	if req.SwapMode != "" {
		q.Set("swapMode", req.SwapMode)
	}
	if len(req.Dexes) > 0 {
		q.Set("dexes", strings.Join(req.Dexes, ","))
	}
	if len(req.ExcludeDexes) > 0 {
		q.Set("excludeDexes", strings.Join(req.ExcludeDexes, ","))
	}
	if req.PlatformFeeBps != nil {
		q.Set("platformFeeBps", fmt.Sprintf("%d", *req.PlatformFeeBps))
	}
	if req.MaxAccounts != nil {
		q.Set("maxAccounts", fmt.Sprintf("%d", *req.MaxAccounts))
	}
	return q
}

// checkQuoteResponse enforces the wire invariants shared by all quote
// tiers: amount and price-impact strings must parse, and the route plan
// must be valid.
func (c *Client) checkQuoteResponse(resp *QuoteResponse) error {
	if _, err := parseAmount("inAmount", resp.InAmount); err != nil {
		return err
	}
	if _, err := parseAmount("outAmount", resp.OutAmount); err != nil {
		return err
	}
	if resp.OtherAmountThreshold != "" {
		if _, err := parseAmount("otherAmountThreshold", resp.OtherAmountThreshold); err != nil {
			return err
		}
	}
	if _, err := parseDecimal("priceImpactPct", resp.PriceImpactPct); err != nil {
		return err
	}
	if err := ValidateRoutePlan(resp.RoutePlan, c.strictRoutes); err != nil {
		return &DecodeError{Endpoint: "quote", Err: err}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, endpoint string, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return c.do(req, endpoint, out)
}

func (c *Client) post(ctx context.Context, path string, body any, endpoint string, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", endpoint, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	return c.do(req, endpoint, out)
}

// do issues a single best-effort round trip. Non-2xx responses go through
// the classifier; 2xx payloads must decode or the call fails.
func (c *Client) do(req *http.Request, endpoint string, out any) error {
	for k, vs := range c.headers {
		req.Header[k] = vs
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		apiErr := classify(res.StatusCode, res.Header, body)
		c.logger.WithFields(logrus.Fields{
			"endpoint":   endpoint,
			"status":     apiErr.StatusCode,
			"category":   apiErr.Category,
			"apiType":    apiErr.APIType,
			"requestId":  apiErr.RequestID,
			"rateRemain": apiErr.RateLimitRemaining,
		}).Error("aggregator API error")
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		decErr := &DecodeError{Endpoint: endpoint, Payload: body, Err: err}
		c.logger.WithField("payload", string(body)).WithError(err).Error("schema mismatch in aggregator response")
		return decErr
	}
	return nil
}
