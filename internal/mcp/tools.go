package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sinotrade/mcp-server-shioaji/internal/domain"
	"github.com/Sinotrade/mcp-server-shioaji/internal/reshape"
)

func registerTools(server *mcp.Server, market MarketReader, now func() time.Time) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_stock_price",
		Description: "Get the current price of a stock by its symbol",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in stockPriceInput) (*mcp.CallToolResult, stockPriceOutput, error) {
		if market == nil {
			return nil, stockPriceOutput{}, fmt.Errorf("market session unavailable")
		}
		out, err := stockPriceQuery(ctx, market, in)
		return nil, out, err
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_kbars",
		Description: "Fetch K-Bar data for a stock within a date range",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in kbarsInput) (*mcp.CallToolResult, kbarsOutput, error) {
		if market == nil {
			return nil, kbarsOutput{}, fmt.Errorf("market session unavailable")
		}
		out, err := kbarsQuery(ctx, market, now, in)
		return nil, out, err
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_stocks",
		Description: "List available stock symbols with optional filtering",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in listStocksInput) (*mcp.CallToolResult, listStocksOutput, error) {
		if market == nil {
			return nil, listStocksOutput{}, fmt.Errorf("market session unavailable")
		}
		out, err := listStocksQuery(market, in)
		return nil, out, err
	})
}

// stockPriceQuery resolves a comma-separated symbol list to snapshots.
// Unknown codes are dropped silently; an empty snapshot set is an error
// naming the original input.
func stockPriceQuery(ctx context.Context, market MarketReader, in stockPriceInput) (stockPriceOutput, error) {
	codes, err := splitSymbols(in.Symbols)
	if err != nil {
		return stockPriceOutput{}, err
	}

	contracts := make([]domain.Contract, 0, len(codes))
	for _, code := range codes {
		if contract, ok := market.Stock(code); ok {
			contracts = append(contracts, contract)
		}
	}

	var snapshots []domain.Snapshot
	if len(contracts) > 0 {
		snapshots, err = market.Snapshots(ctx, contracts)
		if err != nil {
			return stockPriceOutput{}, err
		}
	}
	if len(snapshots) == 0 {
		return stockPriceOutput{}, fmt.Errorf("%w: no data available for stocks %s", domain.ErrNotFound, strings.Join(codes, ","))
	}

	return stockPriceOutput{Snapshots: reshape.SnapshotRows(snapshots)}, nil
}

// kbarsQuery fetches the candlestick series for one symbol over an inclusive
// date range. The symbol must resolve; an empty series is a valid result.
func kbarsQuery(ctx context.Context, market MarketReader, now func() time.Time, in kbarsInput) (kbarsOutput, error) {
	symbol := strings.TrimSpace(in.Symbol)
	if symbol == "" {
		return kbarsOutput{}, fmt.Errorf("symbol is required")
	}

	contract, ok := market.Stock(symbol)
	if !ok {
		return kbarsOutput{}, fmt.Errorf("%w: unknown stock symbol %s", domain.ErrNotFound, symbol)
	}

	start, end, err := normalizeDateRange(in.StartDate, in.EndDate, now)
	if err != nil {
		return kbarsOutput{}, err
	}

	kbars, err := market.Kbars(ctx, contract, start, end)
	if err != nil {
		return kbarsOutput{}, err
	}
	rows, err := reshape.KbarRows(kbars)
	if err != nil {
		return kbarsOutput{}, err
	}

	return kbarsOutput{Symbol: symbol, StartDate: start, EndDate: end, Kbars: rows}, nil
}

// listStocksQuery walks the loaded contract set in backend order and emits up
// to limit records. The industry filter is accepted but not applied until the
// backend exposes that attribute on contracts.
func listStocksQuery(market MarketReader, in listStocksInput) (listStocksOutput, error) {
	limit, err := normalizeListLimit(in.Limit)
	if err != nil {
		return listStocksOutput{}, err
	}

	exchange := strings.TrimSpace(in.Exchange)
	stocks := make([]stockListing, 0, limit)
	for _, contract := range market.Stocks() {
		if len(stocks) >= limit {
			break
		}
		if exchange != "" && contract.Exchange != exchange {
			continue
		}

		category := contract.Category
		if category == "" {
			category = "Unknown"
		}
		stocks = append(stocks, stockListing{
			Code:     contract.Code,
			Name:     contract.Name,
			Exchange: contract.Exchange,
			Category: category,
		})
	}

	return listStocksOutput{Stocks: stocks}, nil
}
