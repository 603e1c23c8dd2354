package mcp

import (
	"fmt"
	"strings"
	"time"

	"github.com/Sinotrade/mcp-server-shioaji/internal/domain"
)

const (
	defaultListLimit = 20
	dateLayout       = "2006-01-02"
)

type stockPriceInput struct {
	Symbols string `json:"symbols" jsonschema:"comma-separated stock codes (e.g. 2330,2317)"`
}

type stockPriceOutput struct {
	Snapshots []domain.Row `json:"snapshots"`
}

type kbarsInput struct {
	Symbol    string `json:"symbol" jsonschema:"stock code (e.g. 2330 for TSMC)"`
	StartDate string `json:"start_date,omitempty" jsonschema:"start date in YYYY-MM-DD format, defaults to today"`
	EndDate   string `json:"end_date,omitempty" jsonschema:"end date in YYYY-MM-DD format, defaults to start_date"`
}

type kbarsOutput struct {
	Symbol    string       `json:"symbol"`
	StartDate string       `json:"start_date"`
	EndDate   string       `json:"end_date"`
	Kbars     []domain.Row `json:"kbars"`
}

type listStocksInput struct {
	Exchange string `json:"exchange,omitempty" jsonschema:"filter by exchange (e.g. TSE, OTC)"`
	Industry string `json:"industry,omitempty" jsonschema:"filter by industry category (reserved)"`
	Limit    *int   `json:"limit,omitempty" jsonschema:"maximum number of stocks to return, default 20"`
}

type stockListing struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Category string `json:"category"`
}

type listStocksOutput struct {
	Stocks []stockListing `json:"stocks"`
}

func splitSymbols(raw string) ([]string, error) {
	parts := strings.Split(raw, ",")
	codes := make([]string, 0, len(parts))
	for _, part := range parts {
		code := strings.TrimSpace(part)
		if code == "" {
			continue
		}
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("%w: no data available for stocks %q", domain.ErrNotFound, raw)
	}
	return codes, nil
}

func normalizeDateRange(start, end string, now func() time.Time) (string, string, error) {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)

	if start == "" {
		start = now().Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, start); err != nil {
		return "", "", fmt.Errorf("invalid start_date %q, want YYYY-MM-DD", start)
	}

	if end == "" {
		end = start
	} else if _, err := time.Parse(dateLayout, end); err != nil {
		return "", "", fmt.Errorf("invalid end_date %q, want YYYY-MM-DD", end)
	}

	return start, end, nil
}

// normalizeListLimit distinguishes an omitted limit (default 20) from an
// explicit zero, which is valid and yields an empty listing.
func normalizeListLimit(limit *int) (int, error) {
	if limit == nil {
		return defaultListLimit, nil
	}
	if *limit < 0 {
		return 0, fmt.Errorf("limit must be a positive integer")
	}
	return *limit, nil
}
