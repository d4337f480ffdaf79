package bootstrap

import (
	"context"
	"fmt"

	"yfquote-service/internal/application"
	"yfquote-service/internal/config"

	"golang.org/x/sync/errgroup"
)

type WorkerApp func(ctx context.Context) error

// InitWorkerApp builds the polling worker and, when REFRESH_CRON is set, the
// watchlist refresher. Both stop when ctx is done.
func InitWorkerApp(ctx context.Context, cfg config.Config) (WorkerApp, func(), error) {
	switch cfg.WorkerType {
	case "", "db":
	case "chan":
		return nil, nil, fmt.Errorf("WORKER_TYPE=chan runs inside the api process")
	default:
		return nil, nil, fmt.Errorf("unsupported WORKER_TYPE=%q", cfg.WorkerType)
	}

	core, cleanup, err := buildCore(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init worker: %w", err)
	}

	workers := []application.Worker{
		ProvideDbWorker(core.Jobs, core.Service, core.Metrics, core.Log, cfg),
	}
	refresher, err := ProvideRefresher(core.Service, core.Log, cfg)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("init refresher: %w", err)
	}
	if refresher != nil {
		workers = append(workers, refresher)
	}

	run := func(ctx context.Context) error {
		g, ctx := errgroup.WithContext(ctx)
		for _, w := range workers {
			w := w
			g.Go(func() error {
				w.Start(ctx)
				return nil
			})
		}
		return g.Wait()
	}
	return run, cleanup, nil
}
