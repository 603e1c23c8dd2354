// Package broker talks to the Shioaji brokerage backend through its HTTP
// gateway. It exposes only the narrow session surface the MCP tools need;
// connection handling, throttling, and retries are the gateway's business.
package broker

import (
	"context"

	"github.com/Sinotrade/mcp-server-shioaji/internal/domain"
)

// Session is a live handle to the brokerage backend. One session exists per
// process; the lifecycle manager owns it and the tool handlers only read
// through it.
type Session interface {
	// Login authenticates the session with the credential pair.
	Login(ctx context.Context, apiKey, secretKey string) error
	// FetchContracts bulk-downloads the stock contract set. The caller bounds
	// the wait through ctx.
	FetchContracts(ctx context.Context) error
	// Stock looks up a downloaded contract by its symbol code.
	Stock(code string) (domain.Contract, bool)
	// Stocks returns the downloaded contract set in backend order.
	Stocks() []domain.Contract
	// Snapshots fetches point-in-time quotes for the given contracts.
	Snapshots(ctx context.Context, contracts []domain.Contract) ([]domain.Snapshot, error)
	// Kbars fetches the candlestick series for one contract over an inclusive
	// YYYY-MM-DD date range.
	Kbars(ctx context.Context, contract domain.Contract, start, end string) (domain.Kbars, error)
	// Logout releases the session on the backend.
	Logout(ctx context.Context) error
}
