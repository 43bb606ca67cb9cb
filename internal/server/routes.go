package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RegisterRoutes configures all API routes, middleware, and error handlers
func RegisterRoutes(e *echo.Echo, h *Handlers, cfg ServerConfig) {
	e.HTTPErrorHandler = NotFoundJSON()

	e.Use(SetJSONContentType)
	e.Use(SetNoCacheHeaders)

	// Optional API key authentication
	if cfg.APIKey != "" {
		e.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			KeyLookup: "header:X-API-Key",
			Validator: func(key string, c echo.Context) (bool, error) {
				return key == cfg.APIKey, nil
			},
		}))
	}

	v1 := e.Group("/v1")
	v1.GET("/health", h.Health)
	v1.GET("/upstream/health", h.UpstreamHealth)
	v1.GET("/info", h.Info)
	v1.GET("/quote", h.Quote)
	v1.POST("/quote/metis", h.MetisQuote)
	v1.POST("/quote/ultra", h.UltraQuote)
	v1.GET("/tokens", h.Tokens)
	v1.GET("/prices", h.Prices)
	v1.GET("/swaps/recent", h.RecentSwaps)

	// Swap execution is the expensive path; keep it rate limited so one
	// caller cannot burn the venue quota.
	swapGroup := v1.Group("/swap")
	swapGroup.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(1), // 1 swap per second
		Burst:     3,
		ExpiresIn: 2 * time.Minute,
	})))
	swapGroup.POST("", h.ExecuteSwap)

	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Code: http.StatusNotFound})
	})
}
