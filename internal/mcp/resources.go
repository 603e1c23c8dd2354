package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerResources(server *mcp.Server, market MarketReader, now func() time.Time) {
	server.AddResource(&mcp.Resource{
		URI:         "market://exchanges",
		Name:        "exchanges",
		Description: "Exchanges present in the loaded contract set",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_ = ctx
		if market == nil {
			return nil, fmt.Errorf("market session unavailable")
		}

		seen := make(map[string]struct{})
		exchanges := make([]string, 0, 4)
		for _, contract := range market.Stocks() {
			if _, ok := seen[contract.Exchange]; ok {
				continue
			}
			seen[contract.Exchange] = struct{}{}
			exchanges = append(exchanges, contract.Exchange)
		}
		sort.Strings(exchanges)
		return jsonResource(req.Params.URI, exchanges)
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "stocks://listing{?exchange,limit}",
		Name:        "stock-listing",
		Description: "Available stock symbols; optional exchange and limit query params",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_ = ctx
		if market == nil {
			return nil, fmt.Errorf("market session unavailable")
		}

		parsed, err := url.Parse(req.Params.URI)
		if err != nil || parsed.Scheme != "stocks" || parsed.Host != "listing" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}

		in := listStocksInput{Exchange: parsed.Query().Get("exchange")}
		if rawLimit := strings.TrimSpace(parsed.Query().Get("limit")); rawLimit != "" {
			n, err := strconv.Atoi(rawLimit)
			if err != nil {
				return nil, fmt.Errorf("invalid limit: %s", rawLimit)
			}
			in.Limit = &n
		}

		out, err := listStocksQuery(market, in)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, out)
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "quotes://{+symbols}",
		Name:        "quotes-by-symbols",
		Description: "Current snapshots for comma-separated stock codes",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if market == nil {
			return nil, fmt.Errorf("market session unavailable")
		}

		parsed, err := url.Parse(req.Params.URI)
		if err != nil || parsed.Scheme != "quotes" || parsed.Host == "" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}

		out, err := stockPriceQuery(ctx, market, stockPriceInput{Symbols: parsed.Host})
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, out)
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "kbars://{symbol}{?start,end}",
		Name:        "kbars-by-symbol",
		Description: "K-Bar series for one stock code; optional start/end date query params",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if market == nil {
			return nil, fmt.Errorf("market session unavailable")
		}

		parsed, err := url.Parse(req.Params.URI)
		if err != nil || parsed.Scheme != "kbars" || parsed.Host == "" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}

		in := kbarsInput{
			Symbol:    parsed.Host,
			StartDate: parsed.Query().Get("start"),
			EndDate:   parsed.Query().Get("end"),
		}
		out, err := kbarsQuery(ctx, market, now, in)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, out)
	})
}

func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(body),
		}},
	}, nil
}
