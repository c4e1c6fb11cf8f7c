package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/atomicstack/grpm/internal/backend"
	"github.com/atomicstack/grpm/internal/cache"
	"github.com/atomicstack/grpm/internal/github"
	"github.com/atomicstack/grpm/internal/input"
	"github.com/atomicstack/grpm/internal/logging/events"
	"github.com/atomicstack/grpm/internal/release"
	"github.com/atomicstack/grpm/internal/session"
	"github.com/atomicstack/grpm/internal/ui"
	"golang.org/x/sync/errgroup"
)

const (
	eventBuffer   = 64
	requestBuffer = 1
	resultBuffer  = 4
)

// UserAgent is sent with every GitHub request.
var UserAgent = "grpm"

// NewClient builds the repository client for cfg. The returned close function
// releases the cache, if one was opened.
func NewClient(cfg Config) (backend.Client, func() error, error) {
	gh := github.New(github.Options{
		BaseURL:   cfg.APIURL,
		Token:     cfg.Token,
		UserAgent: UserAgent,
	})
	if strings.TrimSpace(cfg.CacheFile) == "" {
		return gh, func() error { return nil }, nil
	}
	cached, err := cache.Open(cfg.CacheFile, gh, cfg.CacheTTL)
	if err != nil {
		return nil, nil, err
	}
	return cached, cached.Close, nil
}

// SessionOptions maps cfg onto the controller options.
func SessionOptions(cfg Config) session.Options {
	return session.Options{
		Mode:           cfg.Match,
		Policy:         cfg.Recompile,
		Owner:          cfg.Owner,
		Repo:           cfg.Repo,
		ReleasePattern: cfg.ReleasePattern,
		AssetPattern:   cfg.AssetPattern,
		FetchOnStart:   cfg.Owner != "" && (cfg.Repo != "" || strings.Contains(cfg.Owner, "/")),
	}
}

// Run bootstraps the session and blocks until the user quits. It returns the
// asset selected during the session, if any.
func Run(ctx context.Context, cfg Config) (*release.Asset, error) {
	client, closeClient, err := NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("repository client: %w", err)
	}
	defer closeClient()

	tty, err := input.OpenTTY(os.Stdin)
	if err != nil {
		return nil, err
	}

	model := ui.NewModel(ui.Options{DescHeight: cfg.DescHeight})
	program := ui.NewProgram(model)
	program.Start()

	selected, runErr := run(ctx, cfg, tty, client, program)

	stopErr := program.Stop()
	closeErr := tty.Close()
	switch {
	case runErr != nil:
		return nil, runErr
	case closeErr != nil:
		return nil, closeErr
	case stopErr != nil:
		return nil, fmt.Errorf("renderer: %w", stopErr)
	}
	return selected, nil
}

func run(parent context.Context, cfg Config, src input.Source, client backend.Client, renderer session.Renderer) (*release.Asset, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	evs := make(chan input.Event, eventBuffer)
	requests := make(chan backend.Request, requestBuffer)
	results := make(chan backend.Result, resultBuffer)

	g, gctx := errgroup.WithContext(ctx)
	poller := input.NewPoller(src, evs, input.Interval(cfg.TickRate))
	worker := backend.NewWorker(client, requests, results, backend.Options{
		Timeout:     cfg.FetchTimeout,
		MinInterval: cfg.MinFetchInterval,
	})
	g.Go(func() error { return poller.Run(gctx) })
	g.Go(func() error { return worker.Run(gctx) })

	ctrl := session.New(evs, results, requests, renderer, SessionOptions(cfg))
	runErr := ctrl.Run(gctx)
	cancel()
	waitErr := g.Wait()

	reason := "quit"
	switch {
	case waitErr != nil:
		reason = "worker error"
		runErr = waitErr
	case runErr != nil && parent.Err() != nil:
		reason = "interrupted"
		runErr = nil
	case runErr != nil:
		reason = "error"
	}
	events.App.Stop(reason)
	if runErr != nil {
		return nil, runErr
	}
	return ctrl.State().Selected, nil
}
