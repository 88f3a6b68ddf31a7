package scanner

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/baseradar/baseradar/internal/domain"
)

// MaxItems caps how many items one source returns per crawl.
const MaxItems = 50

// Source captures a single platform crawler (feed, page scrape, etc.).
type Source interface {
	Name() string
	Crawl(ctx context.Context) ([]domain.NewsItem, error)
}

// Options carries the shared collaborators a source is built with.
type Options struct {
	Client *http.Client
	Logger *slog.Logger
}

// Factory builds a fresh source for one crawl.
type Factory func(opts Options) Source

// Registry keeps a mapping from platform ids to source constructors.
type Registry struct {
	factories map[string]Factory
	order     []string
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Register adds or replaces a platform constructor.
func (r *Registry) Register(id string, factory Factory) {
	if r.factories == nil {
		r.factories = map[string]Factory{}
	}
	if _, exists := r.factories[id]; !exists {
		r.order = append(r.order, id)
	}
	r.factories[id] = factory
}

// Get builds the source registered under id.
func (r *Registry) Get(id string, opts Options) (Source, bool) {
	factory, ok := r.factories[id]
	if !ok {
		return nil, false
	}
	return factory(opts), true
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.factories[id]
	return ok
}

// IDs lists registered platforms in registration order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// Missing returns the ids that have no registered constructor, in input order.
func (r *Registry) Missing(ids []string) []string {
	var out []string
	for _, id := range ids {
		if !r.Has(id) {
			out = append(out, id)
		}
	}
	return out
}

// Normalize stamps platform, 1-based rank and capture time on a crawl batch
// and drops untitled entries.
func Normalize(platform string, items []domain.NewsItem, capturedAt time.Time) []domain.NewsItem {
	out := make([]domain.NewsItem, 0, len(items))
	for _, item := range items {
		if item.Title == "" {
			continue
		}
		if len(out) == MaxItems {
			break
		}
		item.Platform = platform
		item.Rank = len(out) + 1
		item.CapturedAt = capturedAt
		out = append(out, item)
	}
	return out
}
