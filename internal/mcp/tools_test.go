package mcp

import (
	"context"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sinotrade/mcp-server-shioaji/internal/domain"
)

func TestToolsList(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, _ := testServer()
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	tools, err := session.ListTools(ctx, &sdkmcp.ListToolsParams{})
	if err != nil {
		t.Fatalf("list tools failed: %v", err)
	}
	if len(tools.Tools) != 3 {
		t.Fatalf("expected 3 tools, got %d", len(tools.Tools))
	}
}

func TestGetStockPriceDropsUnknownCodes(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, market := testServer()
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "get_stock_price",
		Arguments: map[string]any{"symbols": "2330,9999"},
	})
	if err != nil {
		t.Fatalf("call tool failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res.Content)
	}

	if len(market.lastSnapshotCodes) != 1 || market.lastSnapshotCodes[0] != "2330" {
		t.Fatalf("expected snapshot request for 2330 only, got %+v", market.lastSnapshotCodes)
	}

	var out stockPriceOutput
	if err := decodeStructured(res, &out); err != nil {
		t.Fatalf("decode output failed: %v", err)
	}
	if len(out.Snapshots) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(out.Snapshots))
	}
	row := out.Snapshots[0]
	if _, ok := row["datetime"]; !ok {
		t.Fatal("record is missing the datetime field")
	}
	if _, ok := row["ts"]; ok {
		t.Fatal("record must not carry the ts field")
	}
}

func TestGetStockPriceAllUnknownIsNotFound(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, market := testServer()
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "get_stock_price",
		Arguments: map[string]any{"symbols": "9998,9999"},
	})
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected not-found tool error")
	}
	if text := contentText(res); !strings.Contains(text, "9998") || !strings.Contains(text, "9999") {
		t.Fatalf("error must name the requested codes, got %s", text)
	}
	if market.lastSnapshotCodes != nil {
		t.Fatalf("backend must not be queried with no resolved contracts, got %+v", market.lastSnapshotCodes)
	}
}

func TestGetStockPriceBlankSymbolsIsNotFound(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, market := testServer()
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "get_stock_price",
		Arguments: map[string]any{"symbols": " , "},
	})
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected not-found tool error")
	}
	if text := contentText(res); !strings.Contains(text, "no data available") {
		t.Fatalf("blank input must surface the not-found error, got %s", text)
	}
	if market.lastSnapshotCodes != nil {
		t.Fatalf("backend must not be queried for blank input, got %+v", market.lastSnapshotCodes)
	}
}

func TestGetKbarsDefaultsToToday(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, market := testServer()
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "get_kbars",
		Arguments: map[string]any{"symbol": "2330"},
	})
	if err != nil {
		t.Fatalf("call tool failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res.Content)
	}
	if market.lastKbarsStart != "2024-05-01" || market.lastKbarsEnd != "2024-05-01" {
		t.Fatalf("expected both bounds to default to today, got %s..%s", market.lastKbarsStart, market.lastKbarsEnd)
	}

	var out kbarsOutput
	if err := decodeStructured(res, &out); err != nil {
		t.Fatalf("decode output failed: %v", err)
	}
	if len(out.Kbars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(out.Kbars))
	}
	if _, ok := out.Kbars[0]["ts"]; ok {
		t.Fatal("bar must not carry the ts field")
	}
	if _, ok := out.Kbars[0]["datetime"]; !ok {
		t.Fatal("bar is missing the datetime field")
	}
}

func TestGetKbarsEndDefaultsToStart(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, market := testServer()
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "get_kbars",
		Arguments: map[string]any{"symbol": "2330", "start_date": "2024-04-10"},
	})
	if err != nil {
		t.Fatalf("call tool failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res.Content)
	}
	if market.lastKbarsStart != "2024-04-10" || market.lastKbarsEnd != "2024-04-10" {
		t.Fatalf("expected end to equal start, got %s..%s", market.lastKbarsStart, market.lastKbarsEnd)
	}
}

func TestGetKbarsUnknownSymbol(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, market := testServer()
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "get_kbars",
		Arguments: map[string]any{"symbol": "9999"},
	})
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected not-found tool error for unknown symbol")
	}
	if market.lastKbarsCode != "" {
		t.Fatal("backend must not be queried for an unknown symbol")
	}
}

func TestGetKbarsEmptyRangeIsNotAnError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, market := testServer()
	market.kbars["2330"] = domain.Kbars{}
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "get_kbars",
		Arguments: map[string]any{"symbol": "2330", "start_date": "2024-01-01"},
	})
	if err != nil {
		t.Fatalf("call tool failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("empty range must not be an error: %+v", res.Content)
	}

	var out kbarsOutput
	if err := decodeStructured(res, &out); err != nil {
		t.Fatalf("decode output failed: %v", err)
	}
	if len(out.Kbars) != 0 {
		t.Fatalf("expected empty sequence, got %d bars", len(out.Kbars))
	}
}

func TestListStocks(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, _ := testServer()
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	call := func(args map[string]any) listStocksOutput {
		t.Helper()
		res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "list_stocks", Arguments: args})
		if err != nil {
			t.Fatalf("call tool failed: %v", err)
		}
		if res.IsError {
			t.Fatalf("unexpected tool error: %+v", res.Content)
		}
		var out listStocksOutput
		if err := decodeStructured(res, &out); err != nil {
			t.Fatalf("decode output failed: %v", err)
		}
		return out
	}

	out := call(map[string]any{})
	if len(out.Stocks) != 3 {
		t.Fatalf("expected full listing, got %d", len(out.Stocks))
	}
	if out.Stocks[1].Category != "Unknown" {
		t.Fatalf("missing category must default to Unknown, got %q", out.Stocks[1].Category)
	}
	if out.Stocks[0].Code != "2330" || out.Stocks[2].Code != "6180" {
		t.Fatalf("backend order not preserved: %+v", out.Stocks)
	}

	out = call(map[string]any{"limit": 1})
	if len(out.Stocks) != 1 || out.Stocks[0].Code != "2330" {
		t.Fatalf("expected first record only, got %+v", out.Stocks)
	}

	out = call(map[string]any{"limit": 0})
	if len(out.Stocks) != 0 {
		t.Fatalf("limit=0 must return empty, got %d", len(out.Stocks))
	}

	out = call(map[string]any{"exchange": "OTC"})
	if len(out.Stocks) != 1 || out.Stocks[0].Code != "6180" {
		t.Fatalf("expected OTC listing only, got %+v", out.Stocks)
	}

	out = call(map[string]any{"exchange": "NYSE"})
	if len(out.Stocks) != 0 {
		t.Fatalf("non-matching exchange must return empty, got %+v", out.Stocks)
	}

	out = call(map[string]any{"industry": "semiconductors"})
	if len(out.Stocks) != 3 {
		t.Fatalf("industry filter is reserved and must not filter yet, got %d", len(out.Stocks))
	}
}
