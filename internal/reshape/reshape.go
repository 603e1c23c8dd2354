// Package reshape converts the backend's tabular market data into
// row-oriented records, normalizing nanosecond epoch timestamps into a
// datetime field.
package reshape

import (
	"fmt"
	"time"

	"github.com/Sinotrade/mcp-server-shioaji/internal/domain"
)

const datetimeLayout = "2006-01-02 15:04:05.000000"

// FormatEpochNanos renders a nanosecond epoch timestamp as a UTC datetime
// string. The mapping is deterministic: equal inputs always produce equal
// outputs.
func FormatEpochNanos(ts int64) string {
	return time.Unix(0, ts).UTC().Format(datetimeLayout)
}

// SnapshotRows reshapes quote snapshots into row records. The ts field is
// replaced by a datetime field; all other fields carry over unchanged.
func SnapshotRows(snapshots []domain.Snapshot) []domain.Row {
	rows := make([]domain.Row, 0, len(snapshots))
	for _, s := range snapshots {
		rows = append(rows, domain.Row{
			"code":          s.Code,
			"exchange":      s.Exchange,
			"open":          s.Open,
			"high":          s.High,
			"low":           s.Low,
			"close":         s.Close,
			"change_price":  s.ChangePrice,
			"change_rate":   s.ChangeRate,
			"average_price": s.AveragePrice,
			"volume":        s.Volume,
			"total_volume":  s.TotalVolume,
			"amount":        s.Amount,
			"total_amount":  s.TotalAmount,
			"buy_price":     s.BuyPrice,
			"sell_price":    s.SellPrice,
			"datetime":      FormatEpochNanos(s.TS),
		})
	}
	return rows
}

// KbarRows reshapes a columnar candlestick series into row records, one per
// bar, in series order. All columns must match the timestamp column's length.
func KbarRows(k domain.Kbars) ([]domain.Row, error) {
	n := k.Len()
	for name, length := range map[string]int{
		"Open":   len(k.Open),
		"High":   len(k.High),
		"Low":    len(k.Low),
		"Close":  len(k.Close),
		"Volume": len(k.Volume),
	} {
		if length != n {
			return nil, fmt.Errorf("kbars column %s has %d entries, want %d", name, length, n)
		}
	}
	if len(k.Amount) != 0 && len(k.Amount) != n {
		return nil, fmt.Errorf("kbars column Amount has %d entries, want %d", len(k.Amount), n)
	}

	rows := make([]domain.Row, 0, n)
	for i := 0; i < n; i++ {
		row := domain.Row{
			"Open":     k.Open[i],
			"High":     k.High[i],
			"Low":      k.Low[i],
			"Close":    k.Close[i],
			"Volume":   k.Volume[i],
			"datetime": FormatEpochNanos(k.TS[i]),
		}
		if len(k.Amount) == n {
			row["Amount"] = k.Amount[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}
