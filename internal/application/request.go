package application

import (
	"fmt"
	"strings"

	"yfquote-service/internal/domain"
)

// ParseQuoteRequest validates user input. An empty timeFrame means no chart.
func ParseQuoteRequest(ticker, timeFrame string) (domain.QuoteRequest, error) {
	t, ok := domain.NormalizeTicker(ticker)
	if !ok {
		return domain.QuoteRequest{}, fmt.Errorf("%w: invalid ticker %q", ErrBadRequest, ticker)
	}
	req := domain.QuoteRequest{Ticker: t}
	if strings.TrimSpace(timeFrame) == "" {
		return req, nil
	}
	tf := domain.ParseTimeFrame(timeFrame)
	if !tf.Known() {
		return domain.QuoteRequest{}, fmt.Errorf("%w: unsupported time frame %q", ErrBadRequest, timeFrame)
	}
	req.TimeFrame = &tf
	return req, nil
}

func cacheKey(req domain.QuoteRequest) string {
	tf := "-"
	if req.TimeFrame != nil {
		tf = string(*req.TimeFrame)
	}
	return "quote:" + string(req.Ticker) + ":" + tf
}
