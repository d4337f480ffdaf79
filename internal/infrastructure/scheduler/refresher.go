package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"yfquote-service/internal/application"
	"yfquote-service/internal/domain"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// UpdateRequester queues quote update jobs.
type UpdateRequester interface {
	RequestQuoteUpdate(ctx context.Context, req domain.QuoteRequest, idem *string) (string, error)
}

var _ UpdateRequester = (*application.QuoteService)(nil)
var _ application.Worker = (*Refresher)(nil)

// Refresher queues an update for every watchlist entry on a cron schedule
// (six fields, seconds first).
type Refresher struct {
	Cron      *cron.Cron
	Watchlist []domain.QuoteRequest
	Requester UpdateRequester
	Log       *zap.Logger

	now func() time.Time
	ctx context.Context
}

func NewRefresher(spec string, watchlist []domain.QuoteRequest, r UpdateRequester, log *zap.Logger) (*Refresher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	rf := &Refresher{
		Cron:      cron.New(cron.WithSeconds()),
		Watchlist: watchlist,
		Requester: r,
		Log:       log,
		now:       time.Now,
		ctx:       context.Background(),
	}
	if _, err := rf.Cron.AddFunc(spec, func() { rf.RunNow(rf.ctx) }); err != nil {
		return nil, fmt.Errorf("register refresh %q: %w", spec, err)
	}
	return rf, nil
}

// RunNow queues one update per watchlist entry and returns the job ids.
// The idempotency key is scoped to the current second so that replicas firing
// the same schedule queue each entry once.
func (r *Refresher) RunNow(ctx context.Context) []string {
	tick := strconv.FormatInt(r.now().Unix(), 10)
	ids := make([]string, 0, len(r.Watchlist))
	for _, req := range r.Watchlist {
		key := "refresh:" + string(req.Ticker) + ":" + tick
		id, err := r.Requester.RequestQuoteUpdate(ctx, req, &key)
		if err != nil {
			r.Log.Warn("refresh.enqueue_failed", zap.String("ticker", string(req.Ticker)), zap.Error(err))
			continue
		}
		ids = append(ids, id)
	}
	r.Log.Info("refresh.queued", zap.Int("jobs", len(ids)), zap.Int("watchlist", len(r.Watchlist)))
	return ids
}

// Start runs the schedule until ctx is done, then waits for a running refresh.
func (r *Refresher) Start(ctx context.Context) {
	r.ctx = ctx
	r.Cron.Start()
	r.Log.Info("refresh.started", zap.Int("watchlist", len(r.Watchlist)))
	<-ctx.Done()
	<-r.Cron.Stop().Done()
	r.Log.Info("refresh.stopped")
}
