package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/baseradar/baseradar/internal/domain"
	"github.com/baseradar/baseradar/internal/scanner"
)

// FallbackSource tries each strategy in turn and returns the first success.
type FallbackSource struct {
	name       string
	strategies []scanner.Source
	logger     *slog.Logger
}

var _ scanner.Source = (*FallbackSource)(nil)

// NewFallbackSource chains strategies for one platform.
func NewFallbackSource(name string, opts scanner.Options, strategies ...scanner.Source) *FallbackSource {
	return &FallbackSource{name: name, strategies: strategies, logger: loggerOr(opts.Logger)}
}

// Name identifies the platform inside the registry.
func (f *FallbackSource) Name() string {
	return f.name
}

// Crawl returns the first strategy result that did not fail; when all fail the
// errors are joined.
func (f *FallbackSource) Crawl(ctx context.Context) ([]domain.NewsItem, error) {
	var errs []error
	for i, s := range f.strategies {
		items, err := s.Crawl(ctx)
		if err == nil {
			if i > 0 {
				f.logger.Info("fallback strategy used", "platform", f.name, "attempt", i+1)
			}
			return items, nil
		}
		errs = append(errs, fmt.Errorf("attempt %d: %w", i+1, err))
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("%s: no strategies configured", f.name)
	}
	return nil, errors.Join(errs...)
}
