package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"yfquote-service/internal/scraper"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

var ErrNotOpen = errors.New("browser not open")

type Options struct {
	ExecPath  string
	Headless  bool
	UserAgent string
}

// Browser owns a single Chrome process. Pages opened through it are tabs of
// that process.
type Browser struct {
	Options Options
	Log     *zap.Logger

	mu          sync.RWMutex
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
}

var _ scraper.SessionSource = (*Browser)(nil)

func New(opts Options, log *zap.Logger) *Browser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Browser{Options: opts, Log: log}
}

func (b *Browser) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.Flag("headless", b.Options.Headless))
	if b.Options.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(b.Options.ExecPath))
	}
	if b.Options.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(b.Options.UserAgent))
	}
	return opts
}

// Open launches the browser. Opening an already open Browser logs a warning
// and keeps the running process.
func (b *Browser) Open(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctx != nil {
		b.Log.Warn("browser.already_open")
		return nil
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), b.allocatorOptions()...)
	bctx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(b.Log.Sugar().Debugf),
		chromedp.WithErrorf(b.Log.Sugar().Warnf),
	)

	if err := start(ctx, bctx, cancel); err != nil {
		allocCancel()
		b.Log.Error("browser.open_failed", zap.Error(err))
		return fmt.Errorf("launch browser: %w", err)
	}

	b.ctx, b.cancel, b.allocCancel = bctx, cancel, allocCancel
	b.Log.Info("browser.opened", zap.Bool("headless", b.Options.Headless))
	return nil
}

// Close shuts the browser down. Closing a Browser that is not open logs a
// warning and does nothing else.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctx == nil {
		b.Log.Warn("browser.not_open")
		return nil
	}

	err := chromedp.Cancel(b.ctx)
	b.cancel()
	b.allocCancel()
	b.ctx, b.cancel, b.allocCancel = nil, nil, nil
	if err != nil && !errors.Is(err, context.Canceled) {
		b.Log.Warn("browser.close_failed", zap.Error(err))
		return fmt.Errorf("close browser: %w", err)
	}
	b.Log.Info("browser.closed")
	return nil
}

// Current returns the open session, if any.
func (b *Browser) Current() (scraper.Session, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.ctx == nil {
		return nil, false
	}
	return &session{ctx: b.ctx, log: b.Log}, true
}

// IsOpen reports whether a session is available.
func (b *Browser) IsOpen() bool {
	_, ok := b.Current()
	return ok
}

type session struct {
	ctx context.Context
	log *zap.Logger
}

func (s *session) NewPage(ctx context.Context) (scraper.Page, error) {
	tabCtx, cancel := chromedp.NewContext(s.ctx)
	if err := start(ctx, tabCtx, cancel); err != nil {
		return nil, fmt.Errorf("open tab: %w", err)
	}
	return &page{ctx: tabCtx, cancel: cancel, log: s.log}, nil
}

// start runs the first action on a fresh chromedp context, which allocates
// the browser or tab. The target lives as long as target, so ctx is honored
// by canceling it outright. cancel is called on failure.
func start(ctx, target context.Context, cancel context.CancelFunc) error {
	stop := context.AfterFunc(ctx, cancel)
	err := chromedp.Run(target)
	if !stop() {
		err = errors.Join(ctx.Err(), err)
	}
	if err != nil {
		cancel()
	}
	return err
}

// run executes actions on the chromedp context target, aborting them when
// ctx is done.
func run(ctx, target context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(target)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("%w: %w", ctx.Err(), err)
	}
	return err
}
