package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"yfquote-service/internal/application"
	"yfquote-service/internal/bootstrap"
	"yfquote-service/internal/config"
	"yfquote-service/internal/domain"
	"yfquote-service/internal/infrastructure/logx"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func init() { _ = godotenv.Load() }

type result struct {
	Ticker string        `json:"ticker"`
	Quote  *domain.Quote `json:"quote,omitempty"`
	Error  string        `json:"error,omitempty"`
}

func main() {
	chart := flag.String("chart", "", "sample the price chart for this time frame (1D, 5D, 3M, 6M, YTD, 1Y, 5Y, ALL)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: fetch [-chart TF] TICKER...\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log := logx.L()
	cfg := config.Load()

	reqs := make([]domain.QuoteRequest, 0, flag.NArg())
	for _, arg := range flag.Args() {
		req, err := application.ParseQuoteRequest(arg, *chart)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		reqs = append(reqs, req)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RequestTimeout)
		defer cancel()
	}

	b, closeBrowser, err := bootstrap.ProvideBrowser(ctx, log, cfg)
	if err != nil {
		log.Fatal("open browser", zap.Error(err))
	}
	fetcher := bootstrap.ProvideScraper(b, nil, log, cfg)

	results, failed := fetchAll(ctx, fetcher, reqs, cfg.FetchConcurrency)
	closeBrowser()
	_ = log.Sync()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if failed {
		os.Exit(1)
	}
}

// fetchAll fetches every request with at most limit in flight. Results keep
// the order of reqs.
func fetchAll(ctx context.Context, f application.QuoteFetcher, reqs []domain.QuoteRequest, limit int) ([]result, bool) {
	results := make([]result, len(reqs))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			results[i].Ticker = string(req.Ticker)
			q, err := f.FetchQuote(ctx, req.Ticker, req.TimeFrame)
			if err != nil {
				results[i].Error = err.Error()
				return err
			}
			results[i].Quote = &q
			return nil
		})
	}
	return results, g.Wait() != nil
}
