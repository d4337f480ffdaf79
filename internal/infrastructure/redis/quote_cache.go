package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"yfquote-service/internal/application"
	"yfquote-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

var _ application.QuoteCache = (*QuoteCache)(nil)

// QuoteCache stores quotes as JSON values that expire after TTL.
type QuoteCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewQuoteCache(client *redis.Client, ttl time.Duration) *QuoteCache {
	return &QuoteCache{Client: client, TTL: ttl}
}

func (c *QuoteCache) Get(ctx context.Context, key string) (domain.Quote, bool, error) {
	b, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Quote{}, false, nil
	}
	if err != nil {
		return domain.Quote{}, false, err
	}
	var q domain.Quote
	if err := json.Unmarshal(b, &q); err != nil {
		return domain.Quote{}, false, fmt.Errorf("decode cached quote %s: %w", key, err)
	}
	return q, true, nil
}

func (c *QuoteCache) Set(ctx context.Context, key string, q domain.Quote) error {
	b, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("encode quote: %w", err)
	}
	return c.Client.Set(ctx, key, b, c.TTL).Err()
}
