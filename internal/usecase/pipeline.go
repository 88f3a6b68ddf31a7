package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baseradar/baseradar/internal/config"
	"github.com/baseradar/baseradar/internal/dates"
	"github.com/baseradar/baseradar/internal/domain"
	"github.com/baseradar/baseradar/internal/ports"
	"github.com/baseradar/baseradar/internal/ranking"
	"github.com/baseradar/baseradar/internal/report"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Crawler  ports.Crawler
	Corpus   ports.Corpus
	Notifier ports.Notifier
	Config   config.Config
	Logger   *slog.Logger
	Now      func() time.Time
}

// CrawlOutcome is the result of one crawl batch.
type CrawlOutcome struct {
	BatchID    string                `json:"batchId"`
	Day        string                `json:"day"`
	StartedAt  time.Time             `json:"startedAt"`
	FinishedAt time.Time             `json:"finishedAt"`
	Results    []domain.SourceResult `json:"-"`
	Succeeded  int                   `json:"succeeded"`
	Failed     int                   `json:"failed"`
	Items      int                   `json:"items"`
	Saved      int                   `json:"saved"`
	SaveError  string                `json:"saveError,omitempty"`
}

// Pipeline implements the crawl, persist, report and notify workflow.
type Pipeline struct {
	crawler  ports.Crawler
	corpus   ports.Corpus
	notifier ports.Notifier
	cfg      config.Config
	logger   *slog.Logger
	now      func() time.Time

	mu        sync.Mutex
	lastCrawl *CrawlOutcome
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		crawler:  deps.Crawler,
		corpus:   deps.Corpus,
		notifier: deps.Notifier,
		cfg:      deps.Config,
		logger:   deps.Logger,
		now:      deps.Now,
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Now is the pipeline clock in the configured timezone.
func (p *Pipeline) Now() time.Time {
	return p.now().In(p.cfg.Location())
}

// Weights returns the configured heat weights.
func (p *Pipeline) Weights() ranking.Weights {
	w := ranking.Weights(p.cfg.Weights)
	if w == (ranking.Weights{}) {
		return ranking.DefaultWeights
	}
	return w
}

// Crawl runs one batch over platforms (all configured ones when empty). Every
// item is stamped with the batch start so its capture day matches the day it
// is stored under. With save set, every successful non-empty result is
// appended to the corpus under that day; append failures are reported in the
// outcome, not returned.
func (p *Pipeline) Crawl(ctx context.Context, platforms []string, save bool) (CrawlOutcome, error) {
	if p.crawler == nil {
		return CrawlOutcome{}, errors.New("crawler not configured")
	}

	now := p.Now()
	out := CrawlOutcome{
		BatchID:   uuid.NewString(),
		Day:       dates.Format(dates.Today(now)),
		StartedAt: now,
	}
	out.Results = p.crawler.Run(ctx, platforms, p.cfg.Crawler.ProxyURL)

	var saveErrs []error
	for _, r := range out.Results {
		if !r.OK() {
			out.Failed++
			continue
		}
		for i := range r.Items {
			r.Items[i].CapturedAt = now
		}
		out.Succeeded++
		out.Items += len(r.Items)
		if !save || len(r.Items) == 0 {
			continue
		}
		if p.corpus == nil {
			saveErrs = append(saveErrs, errors.New("corpus not configured"))
			break
		}
		if err := p.corpus.AppendBatch(ctx, r.Platform, r.Items, dates.Today(now)); err != nil {
			saveErrs = append(saveErrs, fmt.Errorf("save %s: %w", r.Platform, err))
			continue
		}
		out.Saved += len(r.Items)
	}
	if err := errors.Join(saveErrs...); err != nil {
		out.SaveError = err.Error()
		p.logger.Error("persist crawl batch", "batch", out.BatchID, "error", err)
	}
	out.FinishedAt = p.Now()

	p.logger.Info("crawl batch finished",
		"batch", out.BatchID,
		"succeeded", out.Succeeded,
		"failed", out.Failed,
		"items", out.Items,
		"saved", out.Saved,
		"duration", out.FinishedAt.Sub(out.StartedAt).Round(time.Millisecond),
	)

	p.mu.Lock()
	last := out
	last.Results = nil
	p.lastCrawl = &last
	p.mu.Unlock()

	return out, nil
}

// LastCrawl returns the most recent crawl summary, if any.
func (p *Pipeline) LastCrawl() (CrawlOutcome, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastCrawl == nil {
		return CrawlOutcome{}, false
	}
	return *p.lastCrawl, true
}

// Report builds a daily or weekly report. A nil range selects the default
// trailing window of the report type.
func (p *Pipeline) Report(ctx context.Context, typ report.Type, r *domain.DateRange) (report.Report, error) {
	if p.corpus == nil {
		return report.Report{}, domain.CorpusUnavailable(errors.New("corpus not configured"))
	}
	now := p.Now()
	var rng domain.DateRange
	if r != nil {
		rng = *r
	} else {
		var err error
		if rng, err = report.DefaultRange(typ, now); err != nil {
			return report.Report{}, err
		}
	}

	items, err := p.corpus.QueryRange(ctx, rng)
	if err != nil {
		return report.Report{}, fmt.Errorf("load report items: %w", err)
	}
	return report.Generate(items, report.Input{
		Type:         typ,
		Range:        rng,
		Groups:       p.cfg.Keywords.Groups,
		Weights:      p.Weights(),
		PlatformName: p.cfg.PlatformName,
		Now:          now,
		Location:     p.cfg.Location(),
	})
}

// ProcessDay crawls every configured platform, persists the batch, builds the
// daily report and publishes it when a notifier is configured.
func (p *Pipeline) ProcessDay(ctx context.Context, trigger time.Time) error {
	p.logger.Info("scheduled run started", "trigger", trigger)

	if _, err := p.Crawl(ctx, nil, true); err != nil {
		return fmt.Errorf("crawl: %w", err)
	}

	rep, err := p.Report(ctx, report.Daily, nil)
	if err != nil {
		return fmt.Errorf("daily report: %w", err)
	}
	if p.notifier == nil {
		return nil
	}
	if err := p.notifier.PublishDigest(ctx, rep.Markdown); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}
	return nil
}
