package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	// Aggregator API settings
	JupiterTier    string // public | pro | lite | self-hosted | ultra
	JupiterBaseURL string // required for self-hosted, optional override otherwise
	JupiterAPIKey  string

	// Integrator fee (optional, both or neither)
	IntegratorFeeBps     int
	IntegratorFeeAccount string

	// Yellowstone feed (required for self-hosted)
	YellowstoneEndpoint string
	YellowstoneToken    string

	// Redis settings (optional audit sink)
	RedisAddr string

	// ClickHouse settings (optional audit sink)
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUsername string
	ClickHousePassword string

	// API server
	APIAddr string
	APIKey  string
	DevMode bool
}

func Load() *Config {
	return &Config{
		JupiterTier:    getEnv("JUPITER_TIER", "public"),
		JupiterBaseURL: getEnv("JUPITER_BASE_URL", ""),
		JupiterAPIKey:  getEnv("JUPITER_API_KEY", ""),

		IntegratorFeeBps:     getIntEnv("INTEGRATOR_FEE_BPS", 0),
		IntegratorFeeAccount: getEnv("INTEGRATOR_FEE_ACCOUNT", ""),

		YellowstoneEndpoint: getEnv("YELLOWSTONE_GRPC_ENDPOINT", ""),
		YellowstoneToken:    getEnv("YELLOWSTONE_X_TOKEN", ""),

		RedisAddr: getEnv("REDIS_ADDR", ""),

		ClickHouseAddr:     getEnv("CLICKHOUSE_ADDR", ""),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "solana"),
		ClickHouseUsername: getEnv("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),

		APIAddr: getEnv("API_ADDR", ":8090"),
		APIKey:  getEnv("API_KEY", ""),
		DevMode: getBoolEnv("DEV_MODE", false),
	}
}

// Validate catches tier/credential conflicts before any client is built,
// so misconfiguration aborts startup instead of failing on first call.
func (c *Config) Validate() error {
	switch c.JupiterTier {
	case "public", "lite":
	case "pro", "ultra":
		if c.JupiterAPIKey == "" {
			return fmt.Errorf("tier %q requires JUPITER_API_KEY", c.JupiterTier)
		}
	case "self-hosted":
		if c.JupiterBaseURL == "" {
			return fmt.Errorf("self-hosted tier requires JUPITER_BASE_URL")
		}
		if c.YellowstoneEndpoint == "" || c.YellowstoneToken == "" {
			return fmt.Errorf("self-hosted tier requires YELLOWSTONE_GRPC_ENDPOINT and YELLOWSTONE_X_TOKEN")
		}
	default:
		return fmt.Errorf("unknown JUPITER_TIER %q", c.JupiterTier)
	}

	if (c.IntegratorFeeBps > 0) != (c.IntegratorFeeAccount != "") {
		return fmt.Errorf("INTEGRATOR_FEE_BPS and INTEGRATOR_FEE_ACCOUNT must be set together")
	}
	if c.IntegratorFeeBps < 0 || c.IntegratorFeeBps > 65535 {
		return fmt.Errorf("INTEGRATOR_FEE_BPS must be in [0, 65535]")
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
