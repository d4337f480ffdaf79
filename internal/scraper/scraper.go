package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"yfquote-service/internal/domain"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL        = "https://finance.yahoo.com/quote/"
	DefaultViewportWidth  = 1920
	DefaultViewportHeight = 1024
)

// Scraper assembles quotes from pages opened on the current browser session.
type Scraper struct {
	sessions  SessionSource
	extractor *Extractor
	sampler   *Sampler
	rec       Recorder
	log       *zap.Logger
	now       func() time.Time

	baseURL        string
	viewportWidth  int
	viewportHeight int
}

type Option func(*Scraper)

func WithLogger(l *zap.Logger) Option {
	return func(s *Scraper) {
		if l != nil {
			s.log = l
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Scraper) {
		if r != nil {
			s.rec = r
		}
	}
}

func WithBaseURL(u string) Option {
	return func(s *Scraper) {
		if u != "" {
			s.baseURL = u
		}
	}
}

func WithViewport(width, height int) Option {
	return func(s *Scraper) {
		if width > 0 && height > 0 {
			s.viewportWidth, s.viewportHeight = width, height
		}
	}
}

func WithTooltipStrategies(st ...TooltipStrategy) Option {
	return func(s *Scraper) {
		if len(st) > 0 {
			s.sampler.Strategies = st
		}
	}
}

func New(sessions SessionSource, opts ...Option) *Scraper {
	s := &Scraper{
		sessions:       sessions,
		rec:            nopRecorder{},
		log:            zap.NewNop(),
		now:            time.Now,
		baseURL:        DefaultBaseURL,
		viewportWidth:  DefaultViewportWidth,
		viewportHeight: DefaultViewportHeight,
		sampler:        &Sampler{Strategies: DefaultTooltipStrategies},
	}
	for _, o := range opts {
		o(s)
	}
	s.extractor = NewExtractor(s.log)
	s.sampler.Log, s.sampler.Recorder = s.log, s.rec
	return s
}

// QuoteURL is the page address for ticker.
func (s *Scraper) QuoteURL(ticker domain.Ticker) string {
	base := s.baseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + url.PathEscape(string(ticker)) + "/"
}

// FetchQuote loads the quote page for ticker and extracts its price snapshot.
// When tf is non-nil the price chart is sampled as well; sampling problems only
// shorten the chart. The page is closed on every path.
func (s *Scraper) FetchQuote(ctx context.Context, ticker domain.Ticker, tf *domain.TimeFrame) (domain.Quote, error) {
	start := s.now()
	log := s.log.With(zap.String("ticker", string(ticker)))

	outcome := OutcomeSuccess
	defer func() {
		s.rec.FetchObserved(outcome, s.now().Sub(start))
	}()

	sess, ok := s.sessions.Current()
	if !ok {
		outcome = OutcomeNoSession
		log.Error("scraper.no_session")
		return domain.Quote{}, ErrNoSession
	}

	page, err := sess.NewPage(ctx)
	if err != nil {
		outcome = OutcomePageLoadError
		return domain.Quote{}, fmt.Errorf("%w: new page: %w", ErrPageLoad, err)
	}
	defer func() {
		// Closing must still happen after the request context is done.
		if cerr := page.Close(context.WithoutCancel(ctx)); cerr != nil {
			log.Warn("scraper.page_close_failed", zap.Error(cerr))
		}
	}()

	u := s.QuoteURL(ticker)
	if err := page.Navigate(ctx, u); err != nil {
		outcome = OutcomePageLoadError
		log.Error("scraper.navigate_failed", zap.String("url", u), zap.Error(err))
		return domain.Quote{}, fmt.Errorf("%w: navigate %s: %w", ErrPageLoad, u, err)
	}
	if err := page.SetViewport(ctx, s.viewportWidth, s.viewportHeight); err != nil {
		outcome = OutcomePageLoadError
		return domain.Quote{}, fmt.Errorf("%w: viewport: %w", ErrPageLoad, err)
	}

	quote, err := s.extractor.Extract(ctx, page)
	if err != nil {
		outcome = OutcomeExtractionError
		log.Error("scraper.fetch_failed", zap.Error(err))
		return domain.Quote{}, err
	}
	quote.Ticker = ticker

	if tf != nil {
		quote.PriceChart = s.sampler.Sample(ctx, page, *tf)
	}

	log.Info("scraper.fetch_success",
		zap.String("price", quote.LivePrice.Price),
		zap.Int("chart_samples", len(quote.PriceChart)),
	)
	return quote, nil
}
