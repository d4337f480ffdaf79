package bootstrap

import (
	"context"
	"fmt"

	"yfquote-service/internal/application"
	"yfquote-service/internal/config"
	"yfquote-service/internal/infrastructure/browser"
	httpserver "yfquote-service/internal/infrastructure/http"
	"yfquote-service/internal/infrastructure/metrics"
	"yfquote-service/internal/infrastructure/pg"
	"yfquote-service/internal/infrastructure/worker"
	"yfquote-service/internal/scraper"

	"go.uber.org/zap"
)

// cleanups runs registered cleanup funcs in reverse order.
type cleanups []func()

func (c *cleanups) add(f func()) { *c = append(*c, f) }

func (c cleanups) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

// Core holds the dependencies shared by every process.
type Core struct {
	Config  config.Config
	Log     *zap.Logger
	DB      *pg.DB
	Jobs    application.UpdateJobRepo
	Browser *browser.Browser
	Metrics *metrics.Metrics
	Service *application.QuoteService
	Queue   *worker.Queue
}

func buildCore(ctx context.Context, cfg config.Config) (*Core, func(), error) {
	var cl cleanups
	fail := func(err error) (*Core, func(), error) {
		cl.run()
		return nil, func() {}, err
	}

	log := ProvideLogger()
	db, closeDB, err := ProvideDB(ctx, log, cfg)
	if err != nil {
		return fail(fmt.Errorf("init pg: %w", err))
	}
	cl.add(closeDB)

	rdb, closeRedis, err := ProvideRedisClient(cfg)
	if err != nil {
		return fail(fmt.Errorf("init redis: %w", err))
	}
	cl.add(closeRedis)

	b, closeBrowser, err := ProvideBrowser(ctx, log, cfg)
	if err != nil {
		return fail(fmt.Errorf("init browser: %w", err))
	}
	cl.add(closeBrowser)

	m := ProvideMetrics()
	jobs := ProvideJobRepo(db)
	q := ProvideQueue(cfg)
	var enq application.Enqueuer
	if q != nil {
		enq = q
	}
	svc := ProvideQuoteService(
		ProvideScraper(b, m, log, cfg),
		jobs,
		ProvideIdempotency(rdb, cfg),
		ProvideQuoteCache(rdb, cfg),
		enq,
		log,
	)

	return &Core{
		Config:  cfg,
		Log:     log,
		DB:      db,
		Jobs:    jobs,
		Browser: b,
		Metrics: m,
		Service: svc,
		Queue:   q,
	}, cl.run, nil
}

// API is the HTTP process: the router plus any workers that run in-process.
type API struct {
	Server  *httpserver.Server
	Workers []application.Worker
}

func InitAPI(ctx context.Context, cfg config.Config) (*API, func(), error) {
	core, cleanup, err := buildCore(ctx, cfg)
	if err != nil {
		return nil, func() {}, err
	}

	srv := httpserver.NewServer(core.Service, cfg.RequestTimeout)
	srv.SetMetrics(core.Metrics)
	srv.SetReadyCheck("db", core.DB.Ping)
	srv.SetReadyCheck("browser", func(context.Context) error {
		if !core.Browser.IsOpen() {
			return scraper.ErrNoSession
		}
		return nil
	})

	api := &API{Server: srv}
	if w := ProvideChanWorker(core.Queue, core.Service, core.Metrics, cfg); w != nil {
		api.Workers = append(api.Workers, w)
	}
	return api, cleanup, nil
}
