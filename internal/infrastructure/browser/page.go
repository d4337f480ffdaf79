package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"yfquote-service/internal/scraper"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

var ErrNoMatch = errors.New("no element matches selector")

type page struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger
}

var _ scraper.Page = (*page)(nil)

func (p *page) Navigate(ctx context.Context, url string) error {
	return run(ctx, p.ctx, chromedp.Navigate(url))
}

func (p *page) SetViewport(ctx context.Context, width, height int) error {
	return run(ctx, p.ctx, chromedp.EmulateViewport(int64(width), int64(height)))
}

func (p *page) Close(_ context.Context) error {
	err := chromedp.Cancel(p.ctx)
	p.cancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("close tab: %w", err)
	}
	return nil
}

type point struct {
	Found bool    `json:"found"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// center scrolls the first match of selector into view and returns the
// viewport coordinates of its center.
func (p *page) center(ctx context.Context, selector string) (float64, float64, error) {
	var pt point
	if err := p.eval(ctx, fmt.Sprintf(centerJS, quote(selector)), &pt); err != nil {
		return 0, 0, err
	}
	if !pt.Found {
		return 0, 0, fmt.Errorf("%w: %s", ErrNoMatch, selector)
	}
	return pt.X, pt.Y, nil
}

func (p *page) Hover(ctx context.Context, selector string) error {
	x, y, err := p.center(ctx, selector)
	if err != nil {
		return err
	}
	return p.MovePointer(ctx, x, y)
}

func (p *page) MovePointer(ctx context.Context, x, y float64) error {
	return run(ctx, p.ctx, chromedp.MouseEvent(input.MouseMoved, x, y))
}

func (p *page) Click(ctx context.Context, selector string) error {
	x, y, err := p.center(ctx, selector)
	if err != nil {
		return err
	}
	return run(ctx, p.ctx, chromedp.MouseClickXY(x, y))
}

func (p *page) QuerySelector(ctx context.Context, selector string) (scraper.Element, error) {
	var exists bool
	if err := p.eval(ctx, fmt.Sprintf(existsJS, quote(selector)), &exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return &element{page: p, selector: selector}, nil
}

type anchorResult struct {
	Found         bool    `json:"found"`
	Value         *string `json:"value"`
	Change        *string `json:"change"`
	ChangePercent *string `json:"changePercent"`
	Time          *string `json:"time"`
}

func (p *page) ReadAnchor(ctx context.Context, a scraper.Anchor) (scraper.AnchorReading, error) {
	var res anchorResult
	js := fmt.Sprintf(anchorJS, quote(a.Selector), a.ChangeIndex, a.PercentIndex, a.TimeIndex)
	if err := p.eval(ctx, js, &res); err != nil {
		return scraper.AnchorReading{}, err
	}
	return scraper.AnchorReading{
		Found:         res.Found,
		Value:         res.Value,
		Change:        res.Change,
		ChangePercent: res.ChangePercent,
		Time:          res.Time,
	}, nil
}

type textResult struct {
	Found bool   `json:"found"`
	Text  string `json:"text"`
}

func (p *page) ReadText(ctx context.Context, selector string) (string, bool, error) {
	var res textResult
	if err := p.eval(ctx, fmt.Sprintf(textJS, quote(selector)), &res); err != nil {
		return "", false, err
	}
	return res.Text, res.Found, nil
}

func (p *page) eval(ctx context.Context, js string, out any) error {
	if err := run(ctx, p.ctx, chromedp.Evaluate(js, out)); err != nil {
		p.log.Debug("browser.eval_failed", zap.Error(err))
		return fmt.Errorf("evaluate: %w", err)
	}
	return nil
}

type element struct {
	page     *page
	selector string
}

// IsVisible reports whether the first match of the element's selector is
// rendered with a non-empty box.
func (e *element) IsVisible(ctx context.Context) (bool, error) {
	var visible bool
	if err := e.page.eval(ctx, fmt.Sprintf(visibleJS, quote(e.selector)), &visible); err != nil {
		return false, err
	}
	return visible, nil
}

// quote renders s as a JavaScript string literal.
func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
