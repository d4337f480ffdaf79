package domain

import "time"

// QuoteRequest names what one fetch should retrieve. A nil TimeFrame skips the chart.
type QuoteRequest struct {
	Ticker    Ticker
	TimeFrame *TimeFrame
}

type QuoteUpdate struct {
	ID        string
	Request   QuoteRequest
	Status    QuoteUpdateStatus
	Error     *string
	Result    *Quote
	UpdatedAt time.Time
}
