package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/baseradar/baseradar/internal/config"
	"github.com/baseradar/baseradar/internal/domain"
	"github.com/baseradar/baseradar/internal/infrastructure/storage"
	"github.com/baseradar/baseradar/internal/logging"
	"github.com/baseradar/baseradar/internal/report"
)

var now = time.Date(2025, time.October, 15, 9, 30, 0, 0, time.UTC)

type fakeCrawler struct {
	results []domain.SourceResult
}

func (f fakeCrawler) Run(_ context.Context, platforms []string, _ string) []domain.SourceResult {
	if len(platforms) == 0 {
		return f.results
	}
	var out []domain.SourceResult
	for _, r := range f.results {
		for _, p := range platforms {
			if r.Platform == p {
				out = append(out, r)
			}
		}
	}
	return out
}

func (f fakeCrawler) Platforms() []string {
	ids := make([]string, 0, len(f.results))
	for _, r := range f.results {
		ids = append(ids, r.Platform)
	}
	return ids
}

type recordingNotifier struct {
	mu      sync.Mutex
	digests []string
	err     error
}

func (n *recordingNotifier) PublishDigest(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.digests = append(n.digests, text)
	return n.err
}

func crawlResults() []domain.SourceResult {
	return []domain.SourceResult{
		{Platform: "coindesk", Status: domain.StatusSuccess, Items: []domain.NewsItem{
			{Title: "Base TVL surges to record", Platform: "coindesk", Rank: 1, CapturedAt: now},
			{Title: "Stablecoin volume climbs", Platform: "coindesk", Rank: 2, CapturedAt: now},
		}},
		{Platform: "decrypt", Status: domain.StatusFailure, Error: "timeout after 15s"},
		{Platform: "theblock", Status: domain.StatusSuccess},
	}
}

func newTestPipeline(corpus *storage.MemoryCorpus, notifier *recordingNotifier) *Pipeline {
	deps := PipelineDeps{
		Crawler: fakeCrawler{results: crawlResults()},
		Config:  config.Default(),
		Logger:  logging.Discard(),
		Now:     func() time.Time { return now },
	}
	if corpus != nil {
		deps.Corpus = corpus
	}
	if notifier != nil {
		deps.Notifier = notifier
	}
	return NewPipeline(deps)
}

func TestCrawlSavesSuccessfulResults(t *testing.T) {
	t.Parallel()

	corpus := storage.NewMemoryCorpus()
	p := newTestPipeline(corpus, nil)

	out, err := p.Crawl(context.Background(), nil, true)
	if err != nil {
		t.Fatalf("crawl: %v", err)
	}
	if out.Succeeded != 2 || out.Failed != 1 || out.Items != 2 || out.Saved != 2 || out.SaveError != "" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if out.Day != "2025-10-15" || out.BatchID == "" {
		t.Fatalf("unexpected batch metadata %+v", out)
	}

	stored, _ := corpus.QueryByDate(context.Background(), now)
	if len(stored) != 2 {
		t.Fatalf("expected 2 stored items, got %d", len(stored))
	}

	last, ok := p.LastCrawl()
	if !ok || last.BatchID != out.BatchID || last.Results != nil {
		t.Fatalf("unexpected last crawl %+v", last)
	}
}

func TestCrawlStampsItemsWithBatchDay(t *testing.T) {
	t.Parallel()

	late := now.Add(15 * time.Hour)
	corpus := storage.NewMemoryCorpus()
	p := NewPipeline(PipelineDeps{
		Crawler: fakeCrawler{results: []domain.SourceResult{{Platform: "coindesk", Status: domain.StatusSuccess, Items: []domain.NewsItem{
			{Title: "Base fees fall overnight", Platform: "coindesk", Rank: 1, CapturedAt: late},
		}}}},
		Corpus: corpus,
		Config: config.Default(),
		Logger: logging.Discard(),
		Now:    func() time.Time { return now },
	})

	out, err := p.Crawl(context.Background(), nil, true)
	if err != nil || out.Saved != 1 {
		t.Fatalf("crawl: %+v %v", out, err)
	}
	stored, _ := corpus.QueryByDate(context.Background(), now)
	if len(stored) != 1 || !stored[0].CapturedAt.Equal(now) || stored[0].Day(time.UTC) != out.Day {
		t.Fatalf("item not stamped with the batch day: %+v", stored)
	}
}

func TestCrawlWithoutCorpusReportsSaveError(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(nil, nil)
	out, err := p.Crawl(context.Background(), []string{"coindesk"}, true)
	if err != nil {
		t.Fatalf("crawl: %v", err)
	}
	if out.Saved != 0 || !strings.Contains(out.SaveError, "corpus not configured") {
		t.Fatalf("expected save error, got %+v", out)
	}

	if _, err := p.Report(context.Background(), report.Daily, nil); domain.CodeOf(err) != domain.CodeCorpusUnavailable {
		t.Fatalf("expected corpus unavailable, got %v", err)
	}
}

func TestProcessDayPublishesReport(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	p := newTestPipeline(storage.NewMemoryCorpus(), notifier)

	if err := p.ProcessDay(context.Background(), now); err != nil {
		t.Fatalf("process day: %v", err)
	}
	if len(notifier.digests) != 1 || !strings.Contains(notifier.digests[0], "Base TVL surges to record") {
		t.Fatalf("unexpected digests %q", notifier.digests)
	}

	notifier.err = errors.New("chat not found")
	if err := p.ProcessDay(context.Background(), now); err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("expected publish error, got %v", err)
	}
}

func TestWeightsFallBackToDefaults(t *testing.T) {
	t.Parallel()

	p := NewPipeline(PipelineDeps{Config: config.Config{}})
	if w := p.Weights(); w.Rank != 0.6 || w.Frequency != 0.3 || w.Recency != 0.1 {
		t.Fatalf("unexpected weights %+v", w)
	}
}

type manualDriver struct {
	job     func(time.Time)
	stopped bool
}

func (d *manualDriver) Start(_ context.Context, job func(time.Time)) error {
	d.job = job
	return nil
}

func (d *manualDriver) Stop(context.Context) error {
	d.stopped = true
	return nil
}

func TestSchedulerRunsPipeline(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	driver := &manualDriver{}
	s := NewScheduler(driver, newTestPipeline(storage.NewMemoryCorpus(), notifier), logging.Discard())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	driver.job(now)
	if len(notifier.digests) != 1 {
		t.Fatalf("expected one digest after trigger, got %d", len(notifier.digests))
	}
	if err := s.Stop(context.Background()); err != nil || !driver.stopped {
		t.Fatalf("expected driver stopped, got %v", err)
	}
}
