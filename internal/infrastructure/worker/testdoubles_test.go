package worker

import (
	"context"
	"sync"

	"yfquote-service/internal/domain"
)

type fakeProcessor struct {
	mu         sync.Mutex
	processed  []string
	failed     map[string]string
	err        error
	panicMsg   string
	sawTimeout bool
}

func (f *fakeProcessor) ProcessQuoteUpdate(ctx context.Context, job domain.QuoteUpdate, _ string) error {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := ctx.Deadline(); ok {
		f.sawTimeout = true
	}
	f.processed = append(f.processed, job.ID)
	return f.err
}

func (f *fakeProcessor) FailQuoteUpdate(_ context.Context, id, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed == nil {
		f.failed = map[string]string{}
	}
	f.failed[id] = msg
}

func (f *fakeProcessor) snapshot() ([]string, map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	failed := make(map[string]string, len(f.failed))
	for k, v := range f.failed {
		failed[k] = v
	}
	return append([]string(nil), f.processed...), failed
}

type fakeClaimer struct {
	mu    sync.Mutex
	queue []domain.QuoteUpdate
	err   error
}

func (f *fakeClaimer) ClaimQueued(_ context.Context, limit int) ([]domain.QuoteUpdate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	n := limit
	if n > len(f.queue) {
		n = len(f.queue)
	}
	out := f.queue[:n]
	f.queue = f.queue[n:]
	return out, nil
}

type countingRecorder struct {
	mu sync.Mutex
	by map[string]int
}

func (c *countingRecorder) UpdateJobFinished(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.by == nil {
		c.by = map[string]int{}
	}
	c.by[status]++
}

func (c *countingRecorder) get(status string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.by[status]
}
