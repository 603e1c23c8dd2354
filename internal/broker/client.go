package broker

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Sinotrade/mcp-server-shioaji/internal/domain"
)

const defaultGatewayTimeout = 30 * time.Second

type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	Simulation bool
}

// Client implements Session against the Shioaji HTTP gateway.
type Client struct {
	http       *resty.Client
	timeout    time.Duration
	simulation bool

	mu       sync.RWMutex
	loggedIn bool
	stocks   []domain.Contract
	byCode   map[string]int
}

func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultGatewayTimeout
	}
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json")

	return &Client{
		http:       httpClient,
		timeout:    timeout,
		simulation: cfg.Simulation,
		byCode:     make(map[string]int),
	}
}

// callCtx bounds one gateway call with the per-call timeout. The bulk
// contract download is exempt: its only bound is the sync deadline the
// caller puts on ctx.
func (c *Client) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

type loginRequest struct {
	APIKey     string `json:"api_key"`
	SecretKey  string `json:"secret_key"`
	Simulation bool   `json:"simulation"`
}

type gatewayError struct {
	Detail string `json:"detail"`
}

func (c *Client) Login(ctx context.Context, apiKey, secretKey string) error {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	var gwErr gatewayError
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(loginRequest{APIKey: apiKey, SecretKey: secretKey, Simulation: c.simulation}).
		SetError(&gwErr).
		Post("/v1/login")
	if err != nil {
		return fmt.Errorf("gateway login: %w", err)
	}
	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		return fmt.Errorf("%w: %s", domain.ErrAuthentication, gatewayDetail(gwErr, resp))
	}
	if resp.IsError() {
		return fmt.Errorf("gateway login: %s", gatewayDetail(gwErr, resp))
	}

	c.mu.Lock()
	c.loggedIn = true
	c.mu.Unlock()
	return nil
}

func (c *Client) FetchContracts(ctx context.Context) error {
	var (
		stocks []domain.Contract
		gwErr  gatewayError
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&stocks).
		SetError(&gwErr).
		Get("/v1/contracts/stocks")
	if err != nil {
		return fmt.Errorf("fetch contracts: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("fetch contracts: %s", gatewayDetail(gwErr, resp))
	}

	byCode := make(map[string]int, len(stocks))
	for i, s := range stocks {
		byCode[s.Code] = i
	}

	c.mu.Lock()
	c.stocks = stocks
	c.byCode = byCode
	c.mu.Unlock()
	return nil
}

func (c *Client) Stock(code string) (domain.Contract, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byCode[code]
	if !ok {
		return domain.Contract{}, false
	}
	return c.stocks[i], true
}

func (c *Client) Stocks() []domain.Contract {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Contract(nil), c.stocks...)
}

type snapshotsRequest struct {
	Codes []string `json:"codes"`
}

func (c *Client) Snapshots(ctx context.Context, contracts []domain.Contract) ([]domain.Snapshot, error) {
	codes := make([]string, 0, len(contracts))
	for _, contract := range contracts {
		codes = append(codes, contract.Code)
	}

	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	var (
		snapshots []domain.Snapshot
		gwErr     gatewayError
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(snapshotsRequest{Codes: codes}).
		SetResult(&snapshots).
		SetError(&gwErr).
		Post("/v1/quotes/snapshots")
	if err != nil {
		return nil, fmt.Errorf("fetch snapshots: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch snapshots: %s", gatewayDetail(gwErr, resp))
	}
	return snapshots, nil
}

func (c *Client) Kbars(ctx context.Context, contract domain.Contract, start, end string) (domain.Kbars, error) {
	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	var (
		kbars domain.Kbars
		gwErr gatewayError
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"code": contract.Code, "start": start, "end": end}).
		SetResult(&kbars).
		SetError(&gwErr).
		Get("/v1/quotes/kbars")
	if err != nil {
		return domain.Kbars{}, fmt.Errorf("fetch kbars: %w", err)
	}
	if resp.IsError() {
		return domain.Kbars{}, fmt.Errorf("fetch kbars: %s", gatewayDetail(gwErr, resp))
	}
	return kbars, nil
}

func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	wasLoggedIn := c.loggedIn
	c.loggedIn = false
	c.mu.Unlock()
	if !wasLoggedIn {
		return nil
	}

	ctx, cancel := c.callCtx(ctx)
	defer cancel()

	var gwErr gatewayError
	resp, err := c.http.R().
		SetContext(ctx).
		SetError(&gwErr).
		Post("/v1/logout")
	if err != nil {
		return fmt.Errorf("gateway logout: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("gateway logout: %s", gatewayDetail(gwErr, resp))
	}
	return nil
}

func gatewayDetail(gwErr gatewayError, resp *resty.Response) string {
	if gwErr.Detail != "" {
		return gwErr.Detail
	}
	return resp.Status()
}
