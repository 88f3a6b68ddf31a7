package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/baseradar/baseradar/internal/domain"
	"github.com/baseradar/baseradar/internal/ports"
)

const (
	errUnknownPlatform = "unknown platform"
	errCancelled       = "cancelled"
)

// ClientFunc returns the HTTP client to crawl with, honoring an optional proxy.
type ClientFunc func(proxyURL string) (*http.Client, error)

// OrchestratorConfig tunes the orchestrator.
type OrchestratorConfig struct {
	// Platforms are crawled when Run receives no ids; defaults to every
	// registered platform.
	Platforms   []string
	Timeout     time.Duration
	Concurrency int
	Client      ClientFunc
	Logger      *slog.Logger
	Now         func() time.Time
}

// Orchestrator fans a crawl out over registered sources.
type Orchestrator struct {
	registry    *Registry
	platforms   []string
	timeout     time.Duration
	concurrency int
	client      ClientFunc
	logger      *slog.Logger
	now         func() time.Time
}

var _ ports.Crawler = (*Orchestrator)(nil)

// NewOrchestrator wires the registry with crawl settings.
func NewOrchestrator(reg *Registry, cfg OrchestratorConfig) *Orchestrator {
	o := &Orchestrator{
		registry:    reg,
		platforms:   cfg.Platforms,
		timeout:     cfg.Timeout,
		concurrency: cfg.Concurrency,
		client:      cfg.Client,
		logger:      cfg.Logger,
		now:         cfg.Now,
	}
	if o.timeout <= 0 {
		o.timeout = 15 * time.Second
	}
	if o.concurrency <= 0 {
		o.concurrency = 8
	}
	if o.client == nil {
		o.client = func(string) (*http.Client, error) { return &http.Client{}, nil }
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// Platforms lists the ids crawled by default.
func (o *Orchestrator) Platforms() []string {
	if len(o.platforms) > 0 {
		return append([]string(nil), o.platforms...)
	}
	return o.registry.IDs()
}

// Run crawls every requested platform concurrently and returns one result per
// id in request order. A failing, slow or panicking source only affects its own
// result. When ctx is cancelled the sources that already finished keep their
// results and the rest are reported as cancelled.
func (o *Orchestrator) Run(ctx context.Context, ids []string, proxyURL string) []domain.SourceResult {
	if len(ids) == 0 {
		ids = o.Platforms()
	}

	results := make([]domain.SourceResult, len(ids))
	for i, id := range ids {
		results[i] = failure(id, errCancelled)
	}

	client, err := o.client(proxyURL)
	if err != nil {
		for i := range results {
			results[i].Error = fmt.Sprintf("http client: %v", err)
		}
		return results
	}

	batchAt := o.now()
	opts := Options{Client: client}

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, id := range ids {
		opts.Logger = o.logger.With("platform", id)
		src, ok := o.registry.Get(id, opts)
		if !ok {
			results[i].Error = errUnknownPlatform
			results[i].Code = domain.CodeUnknownPlatform
			continue
		}
		if ctx.Err() != nil {
			continue
		}
		i, id := i, id
		g.Go(func() error {
			results[i] = o.crawlOne(ctx, id, src, batchAt)
			return nil
		})
	}
	_ = g.Wait()

	var ok, items int
	for _, res := range results {
		if res.OK() {
			ok++
			items += len(res.Items)
		}
	}
	o.logger.Info("crawl finished", "requested", len(ids), "succeeded", ok, "failed", len(ids)-ok, "items", items)

	return results
}

func (o *Orchestrator) crawlOne(ctx context.Context, id string, src Source, batchAt time.Time) (res domain.SourceResult) {
	res = failure(id, "")
	if ctx.Err() != nil {
		res.Error = errCancelled
		return res
	}

	cctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("source panicked", "platform", id, "panic", r)
			res = failure(id, fmt.Sprintf("panic: %v", r))
		}
	}()

	start := time.Now()
	items, err := src.Crawl(cctx)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			res.Error = errCancelled
		case errors.Is(cctx.Err(), context.DeadlineExceeded):
			res.Error = fmt.Sprintf("timeout after %s: %v", o.timeout, err)
		default:
			res.Error = err.Error()
		}
		o.logger.Warn("source failed", "platform", id, "error", res.Error, "elapsed", time.Since(start))
		return res
	}

	items = Normalize(id, items, batchAt)
	if len(items) == 0 {
		o.logger.Warn("source returned no items", "platform", id)
	}
	o.logger.Debug("source crawled", "platform", id, "items", len(items), "elapsed", time.Since(start))

	return domain.SourceResult{Platform: id, Status: domain.StatusSuccess, Items: items}
}

func failure(id, msg string) domain.SourceResult {
	return domain.SourceResult{Platform: id, Status: domain.StatusFailure, Error: msg, Code: domain.CodeSourceFetchFailure}
}
