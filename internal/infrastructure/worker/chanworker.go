package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yfquote-service/internal/application"
	"yfquote-service/internal/domain"
	infraconfig "yfquote-service/internal/infrastructure/config"
	"yfquote-service/internal/infrastructure/logx"

	"go.uber.org/zap"
)

var ErrQueueFull = errors.New("update queue full")

// Queue is a bounded in-process job channel.
type Queue struct {
	ch chan domain.QuoteUpdate
}

var _ application.Enqueuer = (*Queue)(nil)

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = infraconfig.DefaultChanQueueSize
	}
	return &Queue{ch: make(chan domain.QuoteUpdate, size)}
}

// Enqueue never blocks; a full queue is reported as ErrQueueFull.
func (q *Queue) Enqueue(ctx context.Context, job domain.QuoteUpdate) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case q.ch <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *Queue) Jobs() <-chan domain.QuoteUpdate { return q.ch }

var _ application.Worker = (*ChanWorker)(nil)

type ChanWorker struct {
	processor  Processor
	jobs       <-chan domain.QuoteUpdate
	jobTimeout time.Duration
	metrics    JobRecorder
}

func NewChanWorker(p Processor, jobs <-chan domain.QuoteUpdate, jobTimeout time.Duration, metrics JobRecorder) *ChanWorker {
	if jobTimeout <= 0 {
		jobTimeout = infraconfig.DefaultWorkerJobTimeout
	}
	if metrics == nil {
		metrics = nopJobRecorder{}
	}
	return &ChanWorker{processor: p, jobs: jobs, jobTimeout: jobTimeout, metrics: metrics}
}

func (w *ChanWorker) Start(ctx context.Context) {
	log := logx.L().With(zap.String("worker", "chan"))
	log.Info("chan_worker.start")
	for {
		select {
		case <-ctx.Done():
			log.Info("chan_worker.stop")
			return
		case m, ok := <-w.jobs:
			if !ok {
				log.Info("chan_worker.closed")
				return
			}
			w.processOne(ctx, log, m)
		}
	}
}

func (w *ChanWorker) processOne(ctx context.Context, log *zap.Logger, m domain.QuoteUpdate) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("chan_worker.panic", zap.String("id", m.ID), zap.Any("r", r))
			w.processor.FailQuoteUpdate(context.WithoutCancel(ctx), m.ID, fmt.Sprintf("panic: %v", r))
			w.metrics.UpdateJobFinished(string(domain.QuoteUpdateStatusFailed))
		}
	}()
	c, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()
	err := w.processor.ProcessQuoteUpdate(c, m, "chan")
	w.metrics.UpdateJobFinished(finalStatus(err))
}
