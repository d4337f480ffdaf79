package application

import (
	"context"

	"yfquote-service/internal/domain"
)

// NoopCache never holds anything.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (domain.Quote, bool, error) {
	return domain.Quote{}, false, nil
}

func (NoopCache) Set(context.Context, string, domain.Quote) error { return nil }

// NoopIdempotency accepts every key. Used when IDEMPOTENCY_BACKEND is not redis.
type NoopIdempotency struct{}

func (NoopIdempotency) TryReserve(context.Context, string) (bool, error) { return true, nil }

func (NoopIdempotency) Release(context.Context, string) error { return nil }
