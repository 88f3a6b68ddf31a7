package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/baseradar/baseradar/internal/config"
	"github.com/baseradar/baseradar/internal/ports"
)

// Open builds the corpus selected by cfg. The returned closer is a no-op for
// the memory backend.
func Open(ctx context.Context, cfg config.StorageConfig, loc *time.Location) (ports.Corpus, io.Closer, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryCorpus(), nopCloser{}, nil
	case "sqlite", "postgres":
		c, err := OpenSQL(ctx, cfg.Driver, cfg.DSN, loc)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
