package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"yfquote-service/internal/application"
	"yfquote-service/internal/domain"
	"yfquote-service/internal/scraper"

	"github.com/shopspring/decimal"
)

type fakeFetcher struct {
	err error
}

func (f *fakeFetcher) FetchQuote(_ context.Context, t domain.Ticker, tf *domain.TimeFrame) (domain.Quote, error) {
	if f.err != nil {
		return domain.Quote{}, f.err
	}
	q := domain.Quote{
		Ticker:          t,
		LivePrice:       domain.PricePoint{Price: "131.40", PriceChange: decimal.RequireFromString("2.15"), PriceChangePercent: decimal.RequireFromString("1.66"), Time: "At close"},
		AfterHoursPrice: domain.PricePoint{Price: "131.02", PriceChange: decimal.RequireFromString("-0.38"), PriceChangePercent: decimal.RequireFromString("-0.29"), Time: "After hours"},
		PriceChart:      []domain.ChartSample{},
	}
	if tf != nil {
		q.PriceChart = append(q.PriceChart, domain.ChartSample{Time: "Jan 2", Price: "120.00"})
	}
	return q, nil
}

type fakeUpdateJobRepo struct {
	mu   sync.Mutex
	jobs map[string]domain.QuoteUpdate
	seq  int
}

var _ application.UpdateJobRepo = (*fakeUpdateJobRepo)(nil)

func (f *fakeUpdateJobRepo) CreateQueued(_ context.Context, req domain.QuoteRequest, _ *string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.jobs == nil {
		f.jobs = map[string]domain.QuoteUpdate{}
	}
	f.seq++
	id := fmt.Sprintf("update-%d", f.seq)
	f.jobs[id] = domain.QuoteUpdate{ID: id, Request: req, Status: domain.QuoteUpdateStatusQueued, UpdatedAt: time.Now()}
	return id, nil
}

func (f *fakeUpdateJobRepo) GetByID(_ context.Context, id string) (domain.QuoteUpdate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return domain.QuoteUpdate{}, application.ErrNotFound
	}
	return j, nil
}

func (f *fakeUpdateJobRepo) UpdateStatus(_ context.Context, id string, st domain.QuoteUpdateStatus, errMsg *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return application.ErrNotFound
	}
	j.Status, j.Error, j.UpdatedAt = st, errMsg, time.Now()
	f.jobs[id] = j
	return nil
}

func (f *fakeUpdateJobRepo) SaveResult(_ context.Context, id string, q domain.Quote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return application.ErrNotFound
	}
	j.Status, j.Result, j.UpdatedAt = domain.QuoteUpdateStatusDone, &q, time.Now()
	f.jobs[id] = j
	return nil
}

func (f *fakeUpdateJobRepo) ClaimQueued(context.Context, int) ([]domain.QuoteUpdate, error) {
	return nil, nil
}

type seenKeys struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (s *seenKeys) TryReserve(_ context.Context, k string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen == nil {
		s.seen = map[string]bool{}
	}
	if s.seen[k] {
		return false, nil
	}
	s.seen[k] = true
	return true, nil
}

func (s *seenKeys) Release(_ context.Context, k string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, k)
	return nil
}

type fakeMetrics struct {
	mu     sync.Mutex
	routes []string
}

func (m *fakeMetrics) ObserveHTTP(method, route string, status int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = append(m.routes, fmt.Sprintf("%s %s %d", method, route, status))
}

func (m *fakeMetrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})
}

var errNoSession = fmt.Errorf("fetch: %w", scraper.ErrNoSession)

func newInMemoryService(f *fakeFetcher) (*application.QuoteService, *fakeUpdateJobRepo) {
	jobs := &fakeUpdateJobRepo{}
	return application.NewQuoteService(f, jobs, application.WithIdempotency(&seenKeys{})), jobs
}
