package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/baseradar/baseradar/internal/domain"
	"github.com/baseradar/baseradar/internal/ports"
)

// MemoryCorpus keeps batches in process memory, keyed by day.
type MemoryCorpus struct {
	mu   sync.RWMutex
	days map[string][]domain.NewsItem
}

var (
	_ ports.Corpus      = (*MemoryCorpus)(nil)
	_ ports.CorpusStats = (*MemoryCorpus)(nil)
)

// NewMemoryCorpus builds an empty corpus.
func NewMemoryCorpus() *MemoryCorpus {
	return &MemoryCorpus{days: map[string][]domain.NewsItem{}}
}

// QueryByDate returns a copy of the items stored for day.
func (m *MemoryCorpus) QueryByDate(_ context.Context, day time.Time) ([]domain.NewsItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.NewsItem(nil), m.days[day.Format(domain.DayLayout)]...), nil
}

// QueryRange returns items of every day in r, oldest day first.
func (m *MemoryCorpus) QueryRange(_ context.Context, r domain.DateRange) ([]domain.NewsItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.NewsItem
	for _, d := range r.Days() {
		out = append(out, m.days[d.Format(domain.DayLayout)]...)
	}
	return out, nil
}

// AppendBatch adds items under day.
func (m *MemoryCorpus) AppendBatch(_ context.Context, platform string, items []domain.NewsItem, day time.Time) error {
	key := day.Format(domain.DayLayout)

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range items {
		item.Platform = platform
		m.days[key] = append(m.days[key], item)
	}
	return nil
}

// Stats reports totals per platform and the covered day span.
func (m *MemoryCorpus) Stats(_ context.Context) (ports.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := ports.Stats{Backend: "memory", Platforms: map[string]int{}}
	keys := make([]string, 0, len(m.days))
	for day, items := range m.days {
		if len(items) == 0 {
			continue
		}
		keys = append(keys, day)
		for _, item := range items {
			stats.Platforms[item.Platform]++
			stats.Items++
		}
	}
	sort.Strings(keys)
	stats.Days = len(keys)
	if len(keys) > 0 {
		stats.FirstDay, stats.LastDay = keys[0], keys[len(keys)-1]
	}
	return stats, nil
}
