package worker

import (
	"context"
	"time"

	"yfquote-service/internal/application"
	"yfquote-service/internal/domain"
	infraconfig "yfquote-service/internal/infrastructure/config"

	"go.uber.org/zap"
)

var _ application.Worker = (*DbWorker)(nil)

// JobClaimer hands out queued jobs, each to exactly one caller.
type JobClaimer interface {
	ClaimQueued(ctx context.Context, limit int) ([]domain.QuoteUpdate, error)
}

type DbWorker struct {
	Jobs      JobClaimer
	Processor Processor
	Metrics   JobRecorder

	PollEvery  time.Duration
	BatchLimit int
	JobTimeout time.Duration
	Log        *zap.Logger
}

func (w *DbWorker) Start(ctx context.Context) {
	log := w.Log
	if log == nil {
		log = zap.NewNop()
	}
	if w.Metrics == nil {
		w.Metrics = nopJobRecorder{}
	}
	if w.PollEvery <= 0 {
		w.PollEvery = infraconfig.DefaultWorkerPoll
	}
	if w.BatchLimit <= 0 {
		w.BatchLimit = infraconfig.DefaultWorkerBatch
	}
	if w.JobTimeout <= 0 {
		w.JobTimeout = infraconfig.DefaultWorkerJobTimeout
	}

	t := time.NewTicker(w.PollEvery)
	defer t.Stop()

	log.Info("db_worker_started", zap.Duration("poll_every", w.PollEvery), zap.Int("batch_limit", w.BatchLimit))
	for {
		select {
		case <-ctx.Done():
			log.Info("db_worker_stopped")
			return
		case <-t.C:
			w.tick(ctx, log)
		}
	}
}

func (w *DbWorker) tick(ctx context.Context, log *zap.Logger) {
	jobs, err := w.Jobs.ClaimQueued(ctx, w.BatchLimit)
	if err != nil {
		log.Warn("claim_failed", zap.Error(err))
		return
	}
	for _, j := range jobs {
		if ctx.Err() != nil {
			// claimed but not started; leave a trace instead of a stuck job
			w.Processor.FailQuoteUpdate(context.WithoutCancel(ctx), j.ID, "worker stopped before processing")
			continue
		}
		jctx, cancel := context.WithTimeout(ctx, w.JobTimeout)
		err := w.Processor.ProcessQuoteUpdate(jctx, j, "db")
		cancel()
		w.Metrics.UpdateJobFinished(finalStatus(err))
		if err != nil {
			log.Warn("update_failed", zap.String("id", j.ID), zap.String("ticker", string(j.Request.Ticker)), zap.Error(err))
			continue
		}
		log.Info("update_done", zap.String("id", j.ID), zap.String("ticker", string(j.Request.Ticker)))
	}
}
