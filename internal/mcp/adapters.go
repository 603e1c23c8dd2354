package mcp

import (
	"context"

	"github.com/Sinotrade/mcp-server-shioaji/internal/domain"
)

// MarketReader is the read-only slice of the brokerage session the tools and
// resources use. The session is acquired before the server starts serving, so
// every reader observes a fully contract-loaded session.
type MarketReader interface {
	Stock(code string) (domain.Contract, bool)
	Stocks() []domain.Contract
	Snapshots(ctx context.Context, contracts []domain.Contract) ([]domain.Snapshot, error)
	Kbars(ctx context.Context, contract domain.Contract, start, end string) (domain.Kbars, error)
}
