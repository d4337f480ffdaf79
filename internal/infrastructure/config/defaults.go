package config

import "time"

const (
	DefaultHTTPPort         = "8080"
	DefaultShutdownTimeout  = 10 * time.Second
	DefaultWorkerPoll       = 250 * time.Millisecond
	DefaultWorkerBatch      = 10
	DefaultWorkerJobTimeout = 2 * time.Minute
	DefaultPGMaxConns       = 5
	DefaultPGMinConns       = 1
	DefaultBrowserStartup   = 30 * time.Second
	DefaultChanQueueSize    = 100
	DefaultFetchConcurrency = 4
)
