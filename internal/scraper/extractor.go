package scraper

import (
	"context"
	"fmt"

	"yfquote-service/internal/domain"

	"go.uber.org/zap"
)

var (
	LivePriceAnchor = Anchor{
		Name:         "live_price",
		Selector:     "fin-streamer.livePrice",
		ChangeIndex:  1,
		PercentIndex: 2,
		TimeIndex:    1,
	}
	AfterHoursPriceAnchor = Anchor{
		Name:         "after_hours_price",
		Selector:     "fin-streamer.price",
		ChangeIndex:  1,
		PercentIndex: 2,
		TimeIndex:    1,
	}
)

// Extractor reads the live and after-hours price snapshot off a loaded quote page.
type Extractor struct {
	Live       Anchor
	AfterHours Anchor
	Log        *zap.Logger
}

func NewExtractor(log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{Live: LivePriceAnchor, AfterHours: AfterHoursPriceAnchor, Log: log}
}

// Extract returns a Quote with both price points set and an empty chart, or an
// error wrapping ErrQuoteRetrieval. It never returns a partly filled Quote.
func (e *Extractor) Extract(ctx context.Context, r DOMReader) (domain.Quote, error) {
	live, err := e.readPoint(ctx, r, e.Live)
	if err != nil {
		return domain.Quote{}, err
	}
	after, err := e.readPoint(ctx, r, e.AfterHours)
	if err != nil {
		return domain.Quote{}, err
	}
	return domain.Quote{
		LivePrice:       live,
		AfterHoursPrice: after,
		PriceChart:      []domain.ChartSample{},
	}, nil
}

func (e *Extractor) readPoint(ctx context.Context, r DOMReader, a Anchor) (domain.PricePoint, error) {
	rd, err := r.ReadAnchor(ctx, a)
	if err != nil {
		return domain.PricePoint{}, fmt.Errorf("%w: read %s: %w", ErrQuoteRetrieval, a.Name, err)
	}
	if !rd.Found {
		return domain.PricePoint{}, e.fail(a, "anchor", fmt.Errorf("%w: %s", ErrElementMissing, a.Selector))
	}

	fields := []struct {
		name string
		v    *string
	}{
		{"value", rd.Value},
		{"change", rd.Change},
		{"change_percent", rd.ChangePercent},
		{"time", rd.Time},
	}
	for _, f := range fields {
		if f.v == nil {
			return domain.PricePoint{}, e.fail(a, f.name, fmt.Errorf("%w: %s %s", ErrElementMissing, a.Name, f.name))
		}
	}

	change, err := domain.ParseDecimal(*rd.Change)
	if err != nil {
		return domain.PricePoint{}, e.fail(a, "change", fmt.Errorf("%w: %w", ErrMalformedValue, err))
	}
	pct, err := domain.ParseDecimal(*rd.ChangePercent)
	if err != nil {
		return domain.PricePoint{}, e.fail(a, "change_percent", fmt.Errorf("%w: %w", ErrMalformedValue, err))
	}

	return domain.PricePoint{
		Price:              *rd.Value,
		PriceChange:        change,
		PriceChangePercent: pct,
		Time:               *rd.Time,
	}, nil
}

func (e *Extractor) fail(a Anchor, field string, err error) error {
	e.Log.Warn("scraper.extract_failed",
		zap.String("anchor", a.Name),
		zap.String("field", field),
		zap.Error(err),
	)
	return fmt.Errorf("%w: %w", ErrQuoteRetrieval, err)
}
