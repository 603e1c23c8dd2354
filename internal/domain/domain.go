package domain

// Contract describes one tradable instrument as resolved by the brokerage
// backend. Contracts are downloaded in bulk at session start and never
// constructed or mutated here.
type Contract struct {
	Code     string `json:"code"`
	Symbol   string `json:"symbol,omitempty"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Category string `json:"category,omitempty"`
	DayTrade string `json:"day_trade,omitempty"`
}

// Snapshot is a point-in-time quote for one contract. TS is a nanosecond
// epoch timestamp as delivered by the backend.
type Snapshot struct {
	TS           int64   `json:"ts"`
	Code         string  `json:"code"`
	Exchange     string  `json:"exchange"`
	Open         float64 `json:"open"`
	High         float64 `json:"high"`
	Low          float64 `json:"low"`
	Close        float64 `json:"close"`
	ChangePrice  float64 `json:"change_price"`
	ChangeRate   float64 `json:"change_rate"`
	AveragePrice float64 `json:"average_price"`
	Volume       int64   `json:"volume"`
	TotalVolume  int64   `json:"total_volume"`
	Amount       int64   `json:"amount"`
	TotalAmount  int64   `json:"total_amount"`
	BuyPrice     float64 `json:"buy_price"`
	SellPrice    float64 `json:"sell_price"`
}

// Kbars holds a candlestick series in the backend's columnar layout: one
// slice per field, all of equal length, ordered by timestamp.
type Kbars struct {
	TS     []int64   `json:"ts"`
	Open   []float64 `json:"Open"`
	High   []float64 `json:"High"`
	Low    []float64 `json:"Low"`
	Close  []float64 `json:"Close"`
	Volume []int64   `json:"Volume"`
	Amount []float64 `json:"Amount"`
}

// Len reports the number of bars in the series, taken from the timestamp
// column.
func (k Kbars) Len() int { return len(k.TS) }

// Row is one reshaped record: plain field name to scalar value.
type Row map[string]any
