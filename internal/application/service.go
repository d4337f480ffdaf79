package application

import (
	"context"
	"fmt"

	"yfquote-service/internal/domain"

	"go.uber.org/zap"
)

const idempotencyPrefix = "idem:quote_update:"

type QuoteService struct {
	fetcher  QuoteFetcher
	jobs     UpdateJobRepo
	cache    QuoteCache
	idem     IdempotencyStore
	enqueuer Enqueuer
	clock    Clock
	log      *zap.Logger
}

type Option func(*QuoteService)

func WithClock(c Clock) Option                  { return func(s *QuoteService) { s.clock = c } }
func WithCache(c QuoteCache) Option             { return func(s *QuoteService) { s.cache = c } }
func WithIdempotency(i IdempotencyStore) Option { return func(s *QuoteService) { s.idem = i } }
func WithEnqueuer(e Enqueuer) Option            { return func(s *QuoteService) { s.enqueuer = e } }
func WithLogger(l *zap.Logger) Option           { return func(s *QuoteService) { s.log = l } }

func NewQuoteService(fetcher QuoteFetcher, jobs UpdateJobRepo, opts ...Option) *QuoteService {
	s := &QuoteService{
		fetcher: fetcher,
		jobs:    jobs,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.idem == nil {
		s.idem = NoopIdempotency{}
	}
	if s.cache == nil {
		s.cache = NoopCache{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// GetQuote returns a cached quote for req or fetches a fresh one.
func (s *QuoteService) GetQuote(ctx context.Context, req domain.QuoteRequest) (domain.Quote, error) {
	key := cacheKey(req)
	log := s.log.With(zap.String("ticker", string(req.Ticker)), zap.String("cache_key", key))

	q, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warn("quote_cache.get_failed", zap.Error(err))
	}
	if ok {
		log.Debug("quote_cache.hit")
		return q, nil
	}

	q, err = s.fetcher.FetchQuote(ctx, req.Ticker, req.TimeFrame)
	if err != nil {
		return domain.Quote{}, err
	}
	s.cacheQuote(ctx, log, req, q)
	return q, nil
}

// RequestQuoteUpdate queues an asynchronous fetch and returns the job id.
// A repeated idempotency key yields ErrConflict.
func (s *QuoteService) RequestQuoteUpdate(ctx context.Context, req domain.QuoteRequest, idem *string) (string, error) {
	var idemKey string
	if idem != nil && *idem != "" {
		idemKey = idempotencyPrefix + *idem
		ok, err := s.idem.TryReserve(ctx, idemKey)
		if err != nil {
			return "", fmt.Errorf("reserve idempotency key: %w", err)
		}
		if !ok {
			return "", fmt.Errorf("%w: idempotency key %q already used", ErrConflict, *idem)
		}
	}

	updateID, err := s.jobs.CreateQueued(ctx, req, idem)
	if err != nil {
		s.releaseKey(ctx, idemKey)
		return "", err
	}

	if s.enqueuer != nil {
		job := domain.QuoteUpdate{ID: updateID, Request: req, Status: domain.QuoteUpdateStatusQueued, UpdatedAt: s.clock.Now()}
		if err := s.enqueuer.Enqueue(ctx, job); err != nil {
			s.log.Warn("quote_update.enqueue_failed", zap.String("id", updateID), zap.Error(err))
			s.FailQuoteUpdate(context.WithoutCancel(ctx), updateID, "enqueue: "+err.Error())
			s.releaseKey(ctx, idemKey)
			return "", fmt.Errorf("enqueue update %s: %w", updateID, err)
		}
	}
	return updateID, nil
}

func (s *QuoteService) GetQuoteUpdate(ctx context.Context, id string) (domain.QuoteUpdate, error) {
	return s.jobs.GetByID(ctx, id)
}

// ProcessQuoteUpdate runs a queued job to completion, recording either the
// resulting quote or the failure message on the job.
func (s *QuoteService) ProcessQuoteUpdate(ctx context.Context, job domain.QuoteUpdate, source string) error {
	start := s.clock.Now()
	log := s.log.With(
		zap.String("id", job.ID),
		zap.String("ticker", string(job.Request.Ticker)),
		zap.String("source", source),
	)

	if err := s.jobs.UpdateStatus(ctx, job.ID, domain.QuoteUpdateStatusProcessing, nil); err != nil {
		log.Warn("quote_update.mark_processing_failed", zap.Error(err))
		return err
	}

	q, err := s.fetcher.FetchQuote(ctx, job.Request.Ticker, job.Request.TimeFrame)
	if err != nil {
		s.FailQuoteUpdate(context.WithoutCancel(ctx), job.ID, err.Error())
		log.Warn("quote_update.failed", zap.Error(err))
		return err
	}

	// A deadline during sampling still yields a quote, so persist it even when
	// ctx has expired.
	saveCtx := context.WithoutCancel(ctx)
	if err := s.jobs.SaveResult(saveCtx, job.ID, q); err != nil {
		log.Error("quote_update.save_failed", zap.Error(err))
		s.FailQuoteUpdate(saveCtx, job.ID, "save result: "+err.Error())
		return err
	}
	s.cacheQuote(saveCtx, log, job.Request, q)

	log.Info("quote_update.done",
		zap.Int("chart_samples", len(q.PriceChart)),
		zap.Duration("elapsed", s.clock.Now().Sub(start)),
	)
	return nil
}

// FailQuoteUpdate marks a job failed with msg.
func (s *QuoteService) FailQuoteUpdate(ctx context.Context, id, msg string) {
	if err := s.jobs.UpdateStatus(ctx, id, domain.QuoteUpdateStatusFailed, &msg); err != nil {
		s.log.Warn("quote_update.mark_failed_failed", zap.String("id", id), zap.Error(err))
	}
}

// cacheQuote stores q unless a chart was requested and none was sampled.
func (s *QuoteService) cacheQuote(ctx context.Context, log *zap.Logger, req domain.QuoteRequest, q domain.Quote) {
	if req.TimeFrame != nil && len(q.PriceChart) == 0 {
		log.Debug("quote_cache.skip_degraded")
		return
	}
	if err := s.cache.Set(ctx, cacheKey(req), q); err != nil {
		log.Warn("quote_cache.set_failed", zap.Error(err))
	}
}

func (s *QuoteService) releaseKey(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.idem.Release(context.WithoutCancel(ctx), key); err != nil {
		s.log.Warn("idempotency.release_failed", zap.String("key", key), zap.Error(err))
	}
}
