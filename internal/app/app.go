package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/baseradar/baseradar/internal/config"
	"github.com/baseradar/baseradar/internal/infrastructure/httpapi"
	"github.com/baseradar/baseradar/internal/infrastructure/httpclient"
	"github.com/baseradar/baseradar/internal/infrastructure/parser"
	"github.com/baseradar/baseradar/internal/infrastructure/scheduler"
	"github.com/baseradar/baseradar/internal/infrastructure/stdio"
	"github.com/baseradar/baseradar/internal/infrastructure/storage"
	"github.com/baseradar/baseradar/internal/infrastructure/telegram"
	"github.com/baseradar/baseradar/internal/logging"
	"github.com/baseradar/baseradar/internal/ports"
	"github.com/baseradar/baseradar/internal/scanner"
	"github.com/baseradar/baseradar/internal/tools"
	"github.com/baseradar/baseradar/internal/usecase"
)

// Application wires configs to use cases and transports.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	version  string
	closer   io.Closer
	pipeline *usecase.Pipeline
	tools    *tools.Toolset
}

// New opens storage and builds every component described by cfg.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger, version string) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := scanner.NewRegistry()
	parser.RegisterPlatforms(registry)
	for _, id := range registry.Missing(cfg.PlatformIDs()) {
		baseLogger.Warn("configured platform has no adapter", "platform", id)
	}

	crawler := scanner.NewOrchestrator(registry, scanner.OrchestratorConfig{
		Platforms:   cfg.PlatformIDs(),
		Timeout:     cfg.Crawler.Timeout(),
		Concurrency: cfg.Crawler.Concurrency,
		Client:      clientFactory(cfg.Crawler),
		Logger:      baseLogger.With("component", "crawler"),
	})

	corpus, closer, err := storage.Open(ctx, cfg.Storage, cfg.Location())
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.Enabled() {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram, nil)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Crawler:  crawler,
		Corpus:   corpus,
		Notifier: notifier,
		Config:   cfg,
		Logger:   baseLogger.With("component", "pipeline"),
	})

	toolset := tools.New(tools.Options{
		Corpus:   corpus,
		Pipeline: pipeline,
		Config:   cfg,
		Logger:   baseLogger.With("component", "tools"),
		Version:  version,
	})

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		version:  version,
		closer:   closer,
		pipeline: pipeline,
		tools:    toolset,
	}, nil
}

// clientFactory builds one throttled client per proxy URL and reuses it.
func clientFactory(cfg config.CrawlerConfig) scanner.ClientFunc {
	var (
		mu      sync.Mutex
		clients = map[string]*http.Client{}
	)
	return func(proxyURL string) (*http.Client, error) {
		if proxyURL == "" {
			proxyURL = cfg.ProxyURL
		}
		mu.Lock()
		defer mu.Unlock()
		if c, ok := clients[proxyURL]; ok {
			return c, nil
		}
		c, err := httpclient.New(httpclient.Options{
			Timeout:           cfg.Timeout(),
			ProxyURL:          proxyURL,
			UserAgent:         cfg.UserAgent,
			RequestsPerSecond: cfg.RequestsPerSecond,
		})
		if err != nil {
			return nil, err
		}
		clients[proxyURL] = c
		return c, nil
	}
}

// Tools returns the shared toolset.
func (a *Application) Tools() *tools.Toolset {
	return a.tools
}

// Pipeline returns the crawl and report workflow.
func (a *Application) Pipeline() *usecase.Pipeline {
	return a.pipeline
}

// ServeHTTP runs the HTTP transport, plus the scheduler when enabled, until
// ctx is cancelled.
func (a *Application) ServeHTTP(ctx context.Context) error {
	stop, err := a.startScheduler(ctx)
	if err != nil {
		return err
	}
	defer stop()

	return httpapi.NewServer(a.tools, a.cfg.Server, a.version, a.logger).ListenAndServe(ctx)
}

// ServeStdio answers tool calls read from in until it is exhausted.
func (a *Application) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	return stdio.NewServer(a.tools, in, out, a.logger).Serve(ctx)
}

// RunSchedule runs the crawl job on the configured cron expression until ctx
// is cancelled.
func (a *Application) RunSchedule(ctx context.Context) error {
	stop, err := a.schedule(ctx)
	if err != nil {
		return err
	}
	<-ctx.Done()
	stop()
	return nil
}

// Run performs a single crawl, report and notify pass.
func (a *Application) Run(ctx context.Context) error {
	return a.pipeline.ProcessDay(ctx, a.pipeline.Now())
}

// Close releases storage.
func (a *Application) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func (a *Application) startScheduler(ctx context.Context) (func(), error) {
	if !a.cfg.Scheduler.Enabled {
		return func() {}, nil
	}
	return a.schedule(ctx)
}

func (a *Application) schedule(ctx context.Context) (func(), error) {
	if a.cfg.Scheduler.CronExpression == "" {
		return nil, errors.New("scheduler: cron expression is empty")
	}
	logger := a.logger.With("component", "scheduler")
	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Location(), logger)
	sched := usecase.NewScheduler(driver, a.pipeline, logger)
	if err := sched.Start(ctx); err != nil {
		return nil, fmt.Errorf("start scheduler: %w", err)
	}

	return func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := sched.Stop(stopCtx); err != nil {
			logger.Warn("stop scheduler", "error", err)
		}
	}, nil
}
