package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// Log file (optional, rotated)
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	// API
	Port        string
	DatabaseURL string
	// Browser / scraper
	QuoteBaseURL     string
	ChromePath       string
	BrowserHeadless  bool
	BrowserUserAgent string
	ViewportWidth    int
	ViewportHeight   int
	RequestTimeout   time.Duration
	// Quote cache
	CacheBackend  string
	QuoteCacheTTL time.Duration
	// Worker
	WorkerType       string
	WorkerPoll       time.Duration
	WorkerBatchSize  int
	WorkerJobTimeout time.Duration
	// Watchlist refresh
	RefreshCron        string
	Watchlist          []string
	WatchlistTimeFrame string
	// CLI
	FetchConcurrency int
	// Redis (idempotency, cache)
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	IdempotencyBackend string
	RedisTTL           time.Duration
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func boolDef(s string, def bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

func msDef(key string, def int) time.Duration {
	return time.Duration(atoiDef(os.Getenv(key), def)) * time.Millisecond
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:                getEnv("ENV", "local"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFile:            getEnv("LOG_FILE", ""),
		LogMaxSizeMB:       atoiDef(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
		LogMaxBackups:      atoiDef(getEnv("LOG_MAX_BACKUPS", "5"), 5),
		LogMaxAgeDays:      atoiDef(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		QuoteBaseURL:       getEnv("QUOTE_BASE_URL", "https://finance.yahoo.com/quote/"),
		ChromePath:         getEnv("CHROME_PATH", ""),
		BrowserHeadless:    boolDef(os.Getenv("BROWSER_HEADLESS"), true),
		BrowserUserAgent:   getEnv("BROWSER_USER_AGENT", ""),
		ViewportWidth:      atoiDef(getEnv("VIEWPORT_WIDTH", "1920"), 1920),
		ViewportHeight:     atoiDef(getEnv("VIEWPORT_HEIGHT", "1024"), 1024),
		RequestTimeout:     msDef("REQUEST_TIMEOUT_MS", 90000),
		CacheBackend:       getEnv("CACHE_BACKEND", "redis"),
		QuoteCacheTTL:      msDef("QUOTE_CACHE_TTL_MS", 30000),
		WorkerType:         getEnv("WORKER_TYPE", "db"),
		WorkerPoll:         msDef("WORKER_POLL_MS", 250),
		WorkerBatchSize:    atoiDef(getEnv("WORKER_BATCH_LIMIT", "10"), 10),
		WorkerJobTimeout:   msDef("WORKER_JOB_TIMEOUT_MS", 120000),
		RefreshCron:        getEnv("REFRESH_CRON", ""),
		Watchlist:          splitList(getEnv("WATCHLIST", "")),
		WatchlistTimeFrame: getEnv("WATCHLIST_TIME_FRAME", ""),
		FetchConcurrency:   atoiDef(getEnv("FETCH_CONCURRENCY", "4"), 4),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            atoiDef(getEnv("REDIS_DB", "0"), 0),
		IdempotencyBackend: getEnv("IDEMPOTENCY_BACKEND", "redis"),
		RedisTTL:           msDef("IDEMPOTENCY_TTL_MS", 86400000),
	}
}
