package ports

import (
	"context"
	"time"

	"github.com/baseradar/baseradar/internal/domain"
)

// Corpus is the read/append boundary over accumulated crawl batches.
type Corpus interface {
	QueryByDate(ctx context.Context, day time.Time) ([]domain.NewsItem, error)
	QueryRange(ctx context.Context, r domain.DateRange) ([]domain.NewsItem, error)
	AppendBatch(ctx context.Context, platform string, items []domain.NewsItem, day time.Time) error
}

// CorpusStats is optionally implemented by corpora that can report totals.
type CorpusStats interface {
	Stats(ctx context.Context) (Stats, error)
}

// Stats summarizes what a corpus holds.
type Stats struct {
	Backend   string         `json:"backend"`
	Items     int            `json:"items"`
	Days      int            `json:"days"`
	FirstDay  string         `json:"firstDay,omitempty"`
	LastDay   string         `json:"lastDay,omitempty"`
	Platforms map[string]int `json:"platforms"`
}

// Crawler runs platform crawls on demand.
type Crawler interface {
	Run(ctx context.Context, platforms []string, proxyURL string) []domain.SourceResult
	Platforms() []string
}

// Notifier streams rendered reports to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
