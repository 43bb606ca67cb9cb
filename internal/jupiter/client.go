package jupiter

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"
)

// APIType selects one of the five access tiers. It is resolved entirely at
// construction time; per call it only shows up as the X-API-Type marker
// header.
type APIType string

const (
	APITypePublic     APIType = "public"
	APITypePro        APIType = "pro"
	APITypeLite       APIType = "lite"
	APITypeSelfHosted APIType = "self-hosted"
	APITypeUltra      APIType = "ultra"
)

// Default base endpoints per tier.
const (
	PublicBaseURL = "https://quote-api.jup.ag/v6"
	ProBaseURL    = "https://api.jup.ag/v6"
	LiteBaseURL   = "https://lite-api.jup.ag/v6"
	UltraBaseURL  = "https://ultra-api.jup.ag/v6"
)

const (
	requestTimeout = 30 * time.Second
	userAgent      = "solana-arb-adapter/1.0"
)

// IntegratorFee configures the integrator fee headers. FeeAccount must be a
// 32-byte base58 public key.
type IntegratorFee struct {
	FeeBps     uint16
	FeeAccount string
}

// YellowstoneConfig points the venue at a low-latency gRPC account feed.
// Required for self-hosted deployments.
type YellowstoneConfig struct {
	GRPCEndpoint string
	XToken       string
}

// Client issues requests against one aggregator deployment. It is immutable
// after construction and safe for concurrent use; every call carries the
// same fixed header set and 30s timeout. The client performs no retries.
type Client struct {
	baseURL      string
	apiType      APIType
	headers      http.Header
	http         *http.Client
	logger       *logrus.Logger
	strictRoutes bool
}

// NewClientWithConfig is the general constructor. The optional configs are
// orthogonal: the bearer credential, integrator fee pair, and Yellowstone
// pair each toggle their own headers independently of the tier. Invalid
// header material fails here, not on first call.
func NewClientWithConfig(baseURL, apiKey string, apiType APIType, fee *IntegratorFee, yellowstone *YellowstoneConfig) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, &ConfigError{Reason: "base URL is required"}
	}

	switch apiType {
	case APITypePublic, APITypePro, APITypeLite, APITypeSelfHosted, APITypeUltra:
	default:
		return nil, &ConfigError{Reason: fmt.Sprintf("unknown API type %q", apiType)}
	}

	if apiType == APITypeSelfHosted && yellowstone == nil {
		return nil, &ConfigError{Reason: "self-hosted tier requires a Yellowstone config"}
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("User-Agent", userAgent)
	headers.Set("X-API-Type", string(apiType))

	if apiKey = strings.TrimSpace(apiKey); apiKey != "" {
		if err := checkHeaderValue("API key", apiKey); err != nil {
			return nil, err
		}
		headers.Set("Authorization", "Bearer "+apiKey)
	}

	if fee != nil {
		raw, err := base58.Decode(fee.FeeAccount)
		if err != nil || len(raw) != 32 {
			return nil, &ConfigError{Reason: fmt.Sprintf("integrator fee account %q is not a base58 public key", fee.FeeAccount)}
		}
		headers.Set("X-Integrator-Fee", fmt.Sprintf("%d", fee.FeeBps))
		headers.Set("X-Integrator-Account", fee.FeeAccount)
	}

	if yellowstone != nil {
		if err := checkHeaderValue("Yellowstone endpoint", yellowstone.GRPCEndpoint); err != nil {
			return nil, err
		}
		if err := checkHeaderValue("Yellowstone token", yellowstone.XToken); err != nil {
			return nil, err
		}
		headers.Set("X-Yellowstone-Endpoint", yellowstone.GRPCEndpoint)
		headers.Set("X-Yellowstone-Token", yellowstone.XToken)
	}

	return &Client{
		baseURL: baseURL,
		apiType: apiType,
		headers: headers,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		logger: logrus.New(),
	}, nil
}

// NewPublicClient targets the open endpoint without credentials.
func NewPublicClient() (*Client, error) {
	return NewClientWithConfig(PublicBaseURL, "", APITypePublic, nil, nil)
}

// NewProClient targets the paid endpoint with a bearer credential.
func NewProClient(apiKey string) (*Client, error) {
	return NewClientWithConfig(ProBaseURL, apiKey, APITypePro, nil, nil)
}

// NewLiteClient targets the reduced tier.
func NewLiteClient() (*Client, error) {
	return NewClientWithConfig(LiteBaseURL, "", APITypeLite, nil, nil)
}

// NewUltraClient targets the premium tier with a bearer credential.
func NewUltraClient(apiKey string) (*Client, error) {
	return NewClientWithConfig(UltraBaseURL, apiKey, APITypeUltra, nil, nil)
}

// NewSelfHostedClient targets a self-hosted deployment, which always needs
// a Yellowstone feed and may carry an integrator fee.
func NewSelfHostedClient(baseURL string, yellowstone YellowstoneConfig, fee *IntegratorFee) (*Client, error) {
	return NewClientWithConfig(baseURL, "", APITypeSelfHosted, fee, &yellowstone)
}

// WithLogger replaces the client logger. Call before sharing the client
// across goroutines.
func (c *Client) WithLogger(logger *logrus.Logger) *Client {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// WithStrictRouteValidation makes quote operations reject route plans whose
// hop percents do not sum to 100. Call before sharing the client.
func (c *Client) WithStrictRouteValidation() *Client {
	c.strictRoutes = true
	return c
}

// BaseURL returns the configured base endpoint.
func (c *Client) BaseURL() string { return c.baseURL }

// APIType returns the configured tier tag.
func (c *Client) APIType() APIType { return c.apiType }

// Headers returns a copy of the fixed header set attached to every request.
func (c *Client) Headers() http.Header {
	return c.headers.Clone()
}

func checkHeaderValue(name, value string) error {
	for _, r := range value {
		if r < 0x21 || r > 0x7e {
			return &ConfigError{Reason: fmt.Sprintf("%s contains characters not usable in a header value", name)}
		}
	}
	return nil
}
