package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"yfquote-service/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	ErrRepo    = errors.New("repo error")
	ErrScraper = errors.New("scraper error")
)

func sampleQuote(t domain.Ticker) domain.Quote {
	return domain.Quote{
		Ticker: t,
		LivePrice: domain.PricePoint{
			Price:              "131.40",
			PriceChange:        decimal.RequireFromString("2.15"),
			PriceChangePercent: decimal.RequireFromString("1.66"),
			Time:               "At close: 4:00 PM EDT",
		},
		AfterHoursPrice: domain.PricePoint{
			Price:              "131.02",
			PriceChange:        decimal.RequireFromString("-0.38"),
			PriceChangePercent: decimal.RequireFromString("-0.29"),
			Time:               "After hours: 7:59 PM EDT",
		},
		PriceChart: []domain.ChartSample{},
	}
}

type fakeFetcher struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeFetcher) FetchQuote(_ context.Context, t domain.Ticker, tf *domain.TimeFrame) (domain.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return domain.Quote{}, f.err
	}
	q := sampleQuote(t)
	if tf != nil {
		q.PriceChart = []domain.ChartSample{{Time: "Jan 2", Price: "120.00"}, {Time: "Jan 3", Price: "121.50"}}
	}
	return q, nil
}

type fakeCache struct {
	store map[string]domain.Quote
	err   error
}

func (f *fakeCache) Get(_ context.Context, key string) (domain.Quote, bool, error) {
	if f.err != nil {
		return domain.Quote{}, false, f.err
	}
	q, ok := f.store[key]
	return q, ok, nil
}

func (f *fakeCache) Set(_ context.Context, key string, q domain.Quote) error {
	if f.err != nil {
		return f.err
	}
	if f.store == nil {
		f.store = map[string]domain.Quote{}
	}
	f.store[key] = q
	return nil
}

type fakeUpdateJobRepo struct {
	mu   sync.Mutex
	jobs map[string]domain.QuoteUpdate
	seq  int
	err  error
	// saveErr fails SaveResult; honorCtx makes SaveResult fail on a done ctx.
	saveErr  error
	honorCtx bool
}

func (f *fakeUpdateJobRepo) CreateQueued(_ context.Context, req domain.QuoteRequest, _ *string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	if f.jobs == nil {
		f.jobs = map[string]domain.QuoteUpdate{}
	}
	f.seq++
	id := fmt.Sprintf("update-%d", f.seq)
	f.jobs[id] = domain.QuoteUpdate{ID: id, Request: req, Status: domain.QuoteUpdateStatusQueued}
	return id, nil
}

func (f *fakeUpdateJobRepo) GetByID(_ context.Context, id string) (domain.QuoteUpdate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.QuoteUpdate{}, f.err
	}
	j, ok := f.jobs[id]
	if !ok {
		return domain.QuoteUpdate{}, ErrNotFound
	}
	return j, nil
}

func (f *fakeUpdateJobRepo) UpdateStatus(_ context.Context, id string, st domain.QuoteUpdateStatus, errMsg *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	j, ok := f.jobs[id]
	if !ok {
		return ErrNotFound
	}
	j.Status, j.Error = st, errMsg
	f.jobs[id] = j
	return nil
}

func (f *fakeUpdateJobRepo) SaveResult(ctx context.Context, id string, q domain.Quote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.honorCtx && ctx.Err() != nil {
		return ctx.Err()
	}
	j, ok := f.jobs[id]
	if !ok {
		return ErrNotFound
	}
	j.Status, j.Error, j.Result = domain.QuoteUpdateStatusDone, nil, &q
	f.jobs[id] = j
	return nil
}

func (f *fakeUpdateJobRepo) ClaimQueued(context.Context, int) ([]domain.QuoteUpdate, error) {
	return nil, nil
}

type fakeIdem struct{ seen map[string]bool }

func (f *fakeIdem) TryReserve(_ context.Context, k string) (bool, error) {
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	if f.seen[k] {
		return false, nil
	}
	f.seen[k] = true
	return true, nil
}

func (f *fakeIdem) Release(_ context.Context, k string) error {
	delete(f.seen, k)
	return nil
}

type fakeEnqueuer struct {
	got []domain.QuoteUpdate
	err error
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, j domain.QuoteUpdate) error {
	if f.err != nil {
		return f.err
	}
	f.got = append(f.got, j)
	return nil
}

type fakeClock struct{ t time.Time }

func (f fakeClock) Now() time.Time { return f.t }

// deadlineFetcher returns a quote with an empty chart once ctx is done, the
// way the sampler ends a sweep on a deadline.
type deadlineFetcher struct{}

func (deadlineFetcher) FetchQuote(ctx context.Context, t domain.Ticker, _ *domain.TimeFrame) (domain.Quote, error) {
	<-ctx.Done()
	return sampleQuote(t), nil
}
