package mcp

import (
	"context"
	"encoding/json"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sinotrade/mcp-server-shioaji/internal/domain"
)

// fixedClock is the process-local "today" used by the test server.
var fixedClock = func() time.Time {
	return time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
}

type fakeMarket struct {
	stocks       []domain.Contract
	snapshots    map[string]domain.Snapshot
	kbars        map[string]domain.Kbars
	snapshotsErr error
	kbarsErr     error

	lastSnapshotCodes []string
	lastKbarsCode     string
	lastKbarsStart    string
	lastKbarsEnd      string
}

func (f *fakeMarket) Stock(code string) (domain.Contract, bool) {
	for _, contract := range f.stocks {
		if contract.Code == code {
			return contract, true
		}
	}
	return domain.Contract{}, false
}

func (f *fakeMarket) Stocks() []domain.Contract {
	return append([]domain.Contract(nil), f.stocks...)
}

func (f *fakeMarket) Snapshots(ctx context.Context, contracts []domain.Contract) ([]domain.Snapshot, error) {
	f.lastSnapshotCodes = nil
	for _, contract := range contracts {
		f.lastSnapshotCodes = append(f.lastSnapshotCodes, contract.Code)
	}
	if f.snapshotsErr != nil {
		return nil, f.snapshotsErr
	}

	snapshots := make([]domain.Snapshot, 0, len(contracts))
	for _, contract := range contracts {
		if snap, ok := f.snapshots[contract.Code]; ok {
			snapshots = append(snapshots, snap)
		}
	}
	return snapshots, nil
}

func (f *fakeMarket) Kbars(ctx context.Context, contract domain.Contract, start, end string) (domain.Kbars, error) {
	f.lastKbarsCode = contract.Code
	f.lastKbarsStart = start
	f.lastKbarsEnd = end
	if f.kbarsErr != nil {
		return domain.Kbars{}, f.kbarsErr
	}
	return f.kbars[contract.Code], nil
}

func newFakeMarket() *fakeMarket {
	return &fakeMarket{
		stocks: []domain.Contract{
			{Code: "2330", Name: "TSMC", Exchange: "TSE", Category: "24"},
			{Code: "2317", Name: "Hon Hai", Exchange: "TSE"},
			{Code: "6180", Name: "GMobile", Exchange: "OTC", Category: "23"},
		},
		snapshots: map[string]domain.Snapshot{
			"2330": {TS: 1714537800000000000, Code: "2330", Exchange: "TSE", Close: 812, TotalVolume: 31401},
			"2317": {TS: 1714537800000000000, Code: "2317", Exchange: "TSE", Close: 170.5, TotalVolume: 22914},
		},
		kbars: map[string]domain.Kbars{
			"2330": {
				TS:     []int64{1714537800000000000, 1714537860000000000},
				Open:   []float64{810, 811},
				High:   []float64{812, 813},
				Low:    []float64{809, 810},
				Close:  []float64{811, 812},
				Volume: []int64{120, 95},
			},
		},
	}
}

func testServer() (*sdkmcp.Server, *fakeMarket) {
	market := newFakeMarket()
	srv := NewServer(nil, market, ServerConfig{RequestTimeout: time.Second, Now: fixedClock})
	return srv, market
}

func connectInMemory(ctx context.Context, srv *sdkmcp.Server) (*sdkmcp.ClientSession, context.CancelFunc, error) {
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	runCtx, cancel := context.WithCancel(ctx)
	go func() { _ = srv.Run(runCtx, serverTransport) }()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "mcp-test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return session, cancel, nil
}

func decodeStructured(result *sdkmcp.CallToolResult, out any) error {
	body, err := json.Marshal(result.StructuredContent)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func decodeResourceJSON(result *sdkmcp.ReadResourceResult, out any) error {
	if len(result.Contents) == 0 {
		return nil
	}
	return json.Unmarshal([]byte(result.Contents[0].Text), out)
}

func contentText(result *sdkmcp.CallToolResult) string {
	body, err := json.Marshal(result.Content)
	if err != nil {
		return ""
	}
	return string(body)
}
