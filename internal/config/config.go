package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/Sinotrade/mcp-server-shioaji/internal/domain"
)

type Config struct {
	ShioajiAPIKey        string
	ShioajiSecretKey     string
	ShioajiSimulation    bool
	GatewayURL           string
	GatewayTimeoutSecs   int
	ContractsTimeoutSecs int

	MCPTransport          string
	MCPHTTPEnabled        bool
	MCPHTTPBind           string
	MCPHTTPPort           int
	MCPAuthToken          string
	MCPRequestTimeoutSecs int
	MCPRateLimitPerMin    int
}

func Load() *Config {
	cfg := &Config{
		ShioajiAPIKey:    os.Getenv("SHIOAJI_API_KEY"),
		ShioajiSecretKey: os.Getenv("SHIOAJI_SECRET_KEY"),
		MCPAuthToken:     os.Getenv("MCP_AUTH_TOKEN"),
	}

	cfg.ShioajiSimulation = strings.EqualFold(strings.TrimSpace(os.Getenv("SHIOAJI_SIMULATION")), "true")

	cfg.GatewayURL = strings.TrimSpace(os.Getenv("SHIOAJI_GATEWAY_URL"))
	if cfg.GatewayURL == "" {
		log.Println("Warning: SHIOAJI_GATEWAY_URL not set, defaulting to http://127.0.0.1:8000")
		cfg.GatewayURL = "http://127.0.0.1:8000"
	}

	cfg.GatewayTimeoutSecs = 30
	if v := strings.TrimSpace(os.Getenv("SHIOAJI_GATEWAY_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.GatewayTimeoutSecs = n
		}
	}

	cfg.ContractsTimeoutSecs = 120
	if v := strings.TrimSpace(os.Getenv("SHIOAJI_CONTRACTS_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ContractsTimeoutSecs = n
		}
	}

	cfg.MCPTransport = strings.ToLower(strings.TrimSpace(os.Getenv("MCP_TRANSPORT")))
	if cfg.MCPTransport == "" {
		cfg.MCPTransport = "stdio"
	}
	if cfg.MCPTransport != "stdio" && cfg.MCPTransport != "http" {
		log.Printf("Warning: unsupported MCP_TRANSPORT=%q, defaulting to stdio", cfg.MCPTransport)
		cfg.MCPTransport = "stdio"
	}

	cfg.MCPHTTPEnabled = strings.EqualFold(strings.TrimSpace(os.Getenv("MCP_HTTP_ENABLED")), "true")

	cfg.MCPHTTPBind = strings.TrimSpace(os.Getenv("MCP_HTTP_BIND"))
	if cfg.MCPHTTPBind == "" {
		cfg.MCPHTTPBind = "127.0.0.1"
	}

	cfg.MCPHTTPPort = 8090
	if v := strings.TrimSpace(os.Getenv("MCP_HTTP_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPHTTPPort = n
		}
	}

	cfg.MCPRequestTimeoutSecs = 30
	if v := strings.TrimSpace(os.Getenv("MCP_REQUEST_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPRequestTimeoutSecs = n
		}
	}

	cfg.MCPRateLimitPerMin = 60
	if v := strings.TrimSpace(os.Getenv("MCP_RATE_LIMIT_PER_MIN")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPRateLimitPerMin = n
		}
	}

	return cfg
}

// Credentials returns the Shioaji credential pair. Both values are required;
// a missing or empty one aborts startup, there is no degraded mode.
func (c *Config) Credentials() (string, string, error) {
	apiKey := strings.TrimSpace(c.ShioajiAPIKey)
	secretKey := strings.TrimSpace(c.ShioajiSecretKey)
	if apiKey == "" || secretKey == "" {
		return "", "", fmt.Errorf(
			"%w: Shioaji API credentials not found, set SHIOAJI_API_KEY and SHIOAJI_SECRET_KEY",
			domain.ErrConfiguration,
		)
	}
	return apiKey, secretKey, nil
}
