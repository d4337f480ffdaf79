package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"yfquote-service/internal/application"
	"yfquote-service/internal/config"
	"yfquote-service/internal/domain"
	"yfquote-service/internal/infrastructure/browser"
	infraconfig "yfquote-service/internal/infrastructure/config"
	"yfquote-service/internal/infrastructure/logx"
	"yfquote-service/internal/infrastructure/metrics"
	"yfquote-service/internal/infrastructure/pg"
	redisstore "yfquote-service/internal/infrastructure/redis"
	"yfquote-service/internal/infrastructure/scheduler"
	"yfquote-service/internal/infrastructure/worker"
	"yfquote-service/internal/scraper"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrMissingDBURL = errors.New("DATABASE_URL is required")

func ProvideLogger() *zap.Logger { return logx.L() }

func ProvideConfig() config.Config { return config.Load() }

func ProvideDB(ctx context.Context, log *zap.Logger, cfg config.Config) (*pg.DB, func(), error) {
	if cfg.DatabaseURL == "" {
		return nil, func() {}, ErrMissingDBURL
	}
	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, func() {}, err
	}
	if err := pg.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, func() {}, err
	}
	cleanup := func() {
		log.Info("closing pg")
		db.Close()
	}
	return db, cleanup, nil
}

func ProvideJobRepo(db *pg.DB) application.UpdateJobRepo {
	return pg.NewUpdateJobRepo(db)
}

// ProvideRedisClient returns nil when neither idempotency nor caching is
// backed by redis.
func ProvideRedisClient(cfg config.Config) (*redis.Client, func(), error) {
	if cfg.IdempotencyBackend != "redis" && cfg.CacheBackend != "redis" {
		return nil, func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return client, func() { _ = client.Close() }, nil
}

func ProvideIdempotency(client *redis.Client, cfg config.Config) application.IdempotencyStore {
	if client == nil || cfg.IdempotencyBackend != "redis" {
		return application.NoopIdempotency{}
	}
	return redisstore.New(client, cfg.RedisTTL)
}

func ProvideQuoteCache(client *redis.Client, cfg config.Config) application.QuoteCache {
	if client == nil || cfg.CacheBackend != "redis" || cfg.QuoteCacheTTL <= 0 {
		return application.NoopCache{}
	}
	return redisstore.NewQuoteCache(client, cfg.QuoteCacheTTL)
}

func ProvideMetrics() *metrics.Metrics { return metrics.New() }

// ProvideBrowser launches the shared browser session and returns a cleanup
// that closes it.
func ProvideBrowser(ctx context.Context, log *zap.Logger, cfg config.Config) (*browser.Browser, func(), error) {
	b := browser.New(browser.Options{
		ExecPath:  cfg.ChromePath,
		Headless:  cfg.BrowserHeadless,
		UserAgent: cfg.BrowserUserAgent,
	}, log)
	openCtx, cancel := context.WithTimeout(ctx, infraconfig.DefaultBrowserStartup)
	defer cancel()
	if err := b.Open(openCtx); err != nil {
		return nil, func() {}, err
	}
	return b, func() { _ = b.Close() }, nil
}

func ProvideScraper(sessions scraper.SessionSource, m *metrics.Metrics, log *zap.Logger, cfg config.Config) *scraper.Scraper {
	opts := []scraper.Option{
		scraper.WithLogger(log),
		scraper.WithBaseURL(cfg.QuoteBaseURL),
		scraper.WithViewport(cfg.ViewportWidth, cfg.ViewportHeight),
	}
	if m != nil {
		opts = append(opts, scraper.WithRecorder(m))
	}
	return scraper.New(sessions, opts...)
}

func ProvideQuoteService(
	fetcher application.QuoteFetcher,
	jobs application.UpdateJobRepo,
	idem application.IdempotencyStore,
	cache application.QuoteCache,
	enq application.Enqueuer,
	log *zap.Logger,
) *application.QuoteService {
	opts := []application.Option{
		application.WithIdempotency(idem),
		application.WithCache(cache),
		application.WithLogger(log),
	}
	if enq != nil {
		opts = append(opts, application.WithEnqueuer(enq))
	}
	return application.NewQuoteService(fetcher, jobs, opts...)
}

// ProvideQueue returns the in-process job queue when WORKER_TYPE=chan.
func ProvideQueue(cfg config.Config) *worker.Queue {
	if cfg.WorkerType != "chan" {
		return nil
	}
	return worker.NewQueue(infraconfig.DefaultChanQueueSize)
}

func ProvideChanWorker(q *worker.Queue, svc *application.QuoteService, m *metrics.Metrics, cfg config.Config) application.Worker {
	if q == nil {
		return nil
	}
	return worker.NewChanWorker(svc, q.Jobs(), cfg.WorkerJobTimeout, m)
}

func ProvideDbWorker(jobs application.UpdateJobRepo, svc *application.QuoteService, m *metrics.Metrics, log *zap.Logger, cfg config.Config) application.Worker {
	return &worker.DbWorker{
		Jobs:       jobs,
		Processor:  svc,
		Metrics:    m,
		PollEvery:  cfg.WorkerPoll,
		BatchLimit: cfg.WorkerBatchSize,
		JobTimeout: cfg.WorkerJobTimeout,
		Log:        log,
	}
}

// ParseWatchlist validates WATCHLIST entries. Every entry shares
// WATCHLIST_TIME_FRAME.
func ParseWatchlist(cfg config.Config) ([]domain.QuoteRequest, error) {
	out := make([]domain.QuoteRequest, 0, len(cfg.Watchlist))
	for _, t := range cfg.Watchlist {
		req, err := application.ParseQuoteRequest(t, cfg.WatchlistTimeFrame)
		if err != nil {
			return nil, fmt.Errorf("watchlist: %w", err)
		}
		out = append(out, req)
	}
	return out, nil
}

// ProvideRefresher returns nil when REFRESH_CRON is unset.
func ProvideRefresher(svc scheduler.UpdateRequester, log *zap.Logger, cfg config.Config) (*scheduler.Refresher, error) {
	if cfg.RefreshCron == "" {
		return nil, nil
	}
	watchlist, err := ParseWatchlist(cfg)
	if err != nil {
		return nil, err
	}
	if len(watchlist) == 0 {
		log.Warn("refresher.empty_watchlist", zap.String("cron", cfg.RefreshCron))
		return nil, nil
	}
	return scheduler.NewRefresher(cfg.RefreshCron, watchlist, svc, log)
}
