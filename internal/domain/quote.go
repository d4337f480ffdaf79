package domain

import "github.com/shopspring/decimal"

// PricePoint is one observed price state read from a streaming quote element.
type PricePoint struct {
	Price              string          `json:"price"`
	PriceChange        decimal.Decimal `json:"price_change"`
	PriceChangePercent decimal.Decimal `json:"price_change_percent"`
	Time               string          `json:"time"`
}

// PriceValue parses Price, which the page renders with thousands separators.
func (p PricePoint) PriceValue() (decimal.Decimal, bool) {
	d, err := ParseDecimal(p.Price)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ChartSample is one tooltip reading taken from the price chart.
type ChartSample struct {
	Time  string `json:"time"`
	Price string `json:"price"`
}

type Quote struct {
	Ticker          Ticker        `json:"ticker"`
	LivePrice       PricePoint    `json:"live_price"`
	AfterHoursPrice PricePoint    `json:"after_hours_price"`
	PriceChart      []ChartSample `json:"price_chart"`
}
