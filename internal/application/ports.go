package application

import (
	"context"
	"time"

	"yfquote-service/internal/domain"
)

// QuoteFetcher retrieves a fresh quote from the source page.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, ticker domain.Ticker, tf *domain.TimeFrame) (domain.Quote, error)
}

// QuoteCache holds recently fetched quotes for a short time.
type QuoteCache interface {
	Get(ctx context.Context, key string) (domain.Quote, bool, error)
	Set(ctx context.Context, key string, q domain.Quote) error
}

type UpdateJobRepo interface {
	CreateQueued(ctx context.Context, req domain.QuoteRequest, idem *string) (string, error)
	GetByID(ctx context.Context, id string) (domain.QuoteUpdate, error)
	UpdateStatus(ctx context.Context, id string, status domain.QuoteUpdateStatus, errMsg *string) error
	SaveResult(ctx context.Context, id string, q domain.Quote) error
	ClaimQueued(ctx context.Context, limit int) ([]domain.QuoteUpdate, error)
}

// Enqueuer hands a queued job to an in-process worker.
type Enqueuer interface {
	Enqueue(ctx context.Context, job domain.QuoteUpdate) error
}

// IdempotencyStore deduplicates update requests for a limited time.
type IdempotencyStore interface {
	// TryReserve reports false when key is already held.
	TryReserve(ctx context.Context, key string) (bool, error)
	// Release frees a key whose request never produced a job.
	Release(ctx context.Context, key string) error
}

// Worker runs until ctx is done.
type Worker interface {
	Start(ctx context.Context)
}

type Clock interface {
	Now() time.Time
}
