package scraper

import (
	"context"
	"fmt"

	"yfquote-service/internal/domain"
)

// TooltipStrategy reads one (time, price) pair out of the chart tooltip table.
// Probe is matched against the page to decide whether the strategy applies to
// the markup being served.
type TooltipStrategy struct {
	Name          string
	Probe         string
	TimeSelector  string
	PriceSelector string
}

const tooltipBody = "table.hu-tooltip > tbody"

var (
	// FieldAttributeStrategy addresses rows by their hu-tooltip-field attribute.
	FieldAttributeStrategy = TooltipStrategy{
		Name:          "field_attribute",
		Probe:         tooltipBody + ` > tr[hu-tooltip-field]`,
		TimeSelector:  tooltipBody + ` > tr[hu-tooltip-field="DT"] > td.hu-tooltip-value`,
		PriceSelector: tooltipBody + ` > tr[hu-tooltip-field="Close"] > td.hu-tooltip-value`,
	}
	// RowPositionStrategy addresses rows by position: date first, close fifth
	// (date, open, high, low, close).
	RowPositionStrategy = TooltipStrategy{
		Name:          "row_position",
		Probe:         tooltipBody + ` > tr:nth-child(5) > td:nth-child(2)`,
		TimeSelector:  tooltipBody + ` > tr:nth-child(1) > td:nth-child(2)`,
		PriceSelector: tooltipBody + ` > tr:nth-child(5) > td:nth-child(2)`,
	}

	DefaultTooltipStrategies = []TooltipStrategy{FieldAttributeStrategy, RowPositionStrategy}
)

var errNoTooltipStrategy = fmt.Errorf("%w: no tooltip strategy matches", ErrElementMissing)

// detectTooltipStrategy returns the first strategy whose probe matches.
func detectTooltipStrategy(ctx context.Context, p Page, strategies []TooltipStrategy) (TooltipStrategy, error) {
	for _, s := range strategies {
		el, err := p.QuerySelector(ctx, s.Probe)
		if err != nil {
			return TooltipStrategy{}, fmt.Errorf("probe %s: %w", s.Name, err)
		}
		if el != nil {
			return s, nil
		}
	}
	return TooltipStrategy{}, errNoTooltipStrategy
}

func (s TooltipStrategy) read(ctx context.Context, r DOMReader) (domain.ChartSample, error) {
	t, ok, err := r.ReadText(ctx, s.TimeSelector)
	if err != nil {
		return domain.ChartSample{}, fmt.Errorf("%s time: %w", s.Name, err)
	}
	if !ok {
		return domain.ChartSample{}, fmt.Errorf("%w: %s time", ErrElementMissing, s.Name)
	}
	p, ok, err := r.ReadText(ctx, s.PriceSelector)
	if err != nil {
		return domain.ChartSample{}, fmt.Errorf("%s price: %w", s.Name, err)
	}
	if !ok {
		return domain.ChartSample{}, fmt.Errorf("%w: %s price", ErrElementMissing, s.Name)
	}
	return domain.ChartSample{Time: t, Price: p}, nil
}
