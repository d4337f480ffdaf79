package scraper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var errBrowser = errors.New("browser error")

func strPtr(s string) *string { return &s }

func fullReading(value, change, pct, at string) AnchorReading {
	return AnchorReading{Found: true, Value: &value, Change: &change, ChangePercent: &pct, Time: &at}
}

type tooltipState struct {
	present bool
	visible bool
	time    string
	price   string
}

// everyStep shows a visible tooltip whose time changes every `per` pointer
// positions of size stride, starting at PointerOriginX.
func everyStep(stride, per int) func(x float64) tooltipState {
	return func(x float64) tooltipState {
		step := (int(x) - PointerOriginX) / stride / per
		return tooltipState{present: true, visible: true, time: fmt.Sprintf("t%03d", step), price: fmt.Sprintf("%d.00", 100+step)}
	}
}

const (
	markupFieldAttribute = "field"
	markupRowPosition    = "row"
)

type fakeElement struct{ visible bool }

func (e fakeElement) IsVisible(context.Context) (bool, error) { return e.visible, nil }

type fakePage struct {
	mu sync.Mutex

	anchors   map[string]AnchorReading
	anchorErr error
	navErr    error
	clickErr  error
	// nil means the tooltip table never renders
	tooltip    func(x float64) tooltipState
	markup     string
	failMoveAt int

	x         float64
	navigated []string
	viewport  [2]int
	clicked   []string
	hovers    int
	moves     int
	closed    int
}

func newFakePage() *fakePage {
	return &fakePage{
		anchors: map[string]AnchorReading{
			LivePriceAnchor.Selector:       fullReading("131.40", "+2.15", "(+1.66%)", "At close: 4:00 PM EDT"),
			AfterHoursPriceAnchor.Selector: fullReading("131.02", "-0.38", "(-0.29%)", "After hours: 7:59 PM EDT"),
		},
		markup: markupFieldAttribute,
	}
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navigated = append(p.navigated, url)
	return p.navErr
}

func (p *fakePage) SetViewport(_ context.Context, w, h int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.viewport = [2]int{w, h}
	return nil
}

func (p *fakePage) Close(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
	return nil
}

func (p *fakePage) Hover(context.Context, string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hovers++
	return nil
}

func (p *fakePage) MovePointer(_ context.Context, x, _ float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.moves++
	if p.failMoveAt > 0 && p.moves == p.failMoveAt {
		return errBrowser
	}
	p.x = x
	return nil
}

func (p *fakePage) Click(_ context.Context, sel string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clicked = append(p.clicked, sel)
	return p.clickErr
}

func (p *fakePage) state() tooltipState {
	if p.tooltip == nil {
		return tooltipState{}
	}
	return p.tooltip(p.x)
}

func (p *fakePage) QuerySelector(_ context.Context, sel string) (Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.state()
	if !st.present {
		return nil, nil
	}
	switch {
	case sel == tooltipBody:
		return fakeElement{visible: st.visible}, nil
	case sel == FieldAttributeStrategy.Probe && p.markup == markupFieldAttribute:
		return fakeElement{visible: st.visible}, nil
	case sel == RowPositionStrategy.Probe && p.markup == markupRowPosition:
		return fakeElement{visible: st.visible}, nil
	}
	return nil, nil
}

func (p *fakePage) ReadAnchor(_ context.Context, a Anchor) (AnchorReading, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.anchorErr != nil {
		return AnchorReading{}, p.anchorErr
	}
	return p.anchors[a.Selector], nil
}

func (p *fakePage) ReadText(_ context.Context, sel string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.state()
	if !st.present {
		return "", false, nil
	}
	var s TooltipStrategy
	switch p.markup {
	case markupFieldAttribute:
		s = FieldAttributeStrategy
	case markupRowPosition:
		s = RowPositionStrategy
	default:
		return "", false, nil
	}
	switch sel {
	case s.TimeSelector:
		return st.time, true, nil
	case s.PriceSelector:
		return st.price, true, nil
	}
	return "", false, nil
}

type fakeRecorder struct {
	mu       sync.Mutex
	outcomes []string
	samples  []int
	aborts   []string
}

func (r *fakeRecorder) FetchObserved(outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *fakeRecorder) ChartSampled(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, n)
}

func (r *fakeRecorder) SamplingAborted(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aborts = append(r.aborts, reason)
}
