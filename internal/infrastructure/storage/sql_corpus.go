package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/baseradar/baseradar/internal/domain"
	"github.com/baseradar/baseradar/internal/ports"
)

const newsTable = "news_items"

var newsColumns = []string{"platform", "title", "url", "mobile_url", "summary", "item_rank", "captured_at"}

var schema = map[string][]string{
	"sqlite": {
		`CREATE TABLE IF NOT EXISTS news_items (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			day         TEXT    NOT NULL,
			platform    TEXT    NOT NULL,
			title       TEXT    NOT NULL,
			url         TEXT    NOT NULL DEFAULT '',
			mobile_url  TEXT    NOT NULL DEFAULT '',
			summary     TEXT    NOT NULL DEFAULT '',
			item_rank   INTEGER NOT NULL,
			captured_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_news_items_day ON news_items(day)`,
	},
	"postgres": {
		`CREATE TABLE IF NOT EXISTS news_items (
			id          BIGSERIAL PRIMARY KEY,
			day         TEXT    NOT NULL,
			platform    TEXT    NOT NULL,
			title       TEXT    NOT NULL,
			url         TEXT    NOT NULL DEFAULT '',
			mobile_url  TEXT    NOT NULL DEFAULT '',
			summary     TEXT    NOT NULL DEFAULT '',
			item_rank   INTEGER NOT NULL,
			captured_at BIGINT  NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_news_items_day ON news_items(day)`,
	},
}

// SQLCorpus persists crawl batches into SQLite or Postgres.
type SQLCorpus struct {
	db      *sql.DB
	driver  string
	builder sq.StatementBuilderType
	loc     *time.Location
}

var (
	_ ports.Corpus      = (*SQLCorpus)(nil)
	_ ports.CorpusStats = (*SQLCorpus)(nil)
)

// OpenSQL connects to driver ("sqlite" or "postgres") and applies the schema.
func OpenSQL(ctx context.Context, driver, dsn string, loc *time.Location) (*SQLCorpus, error) {
	if _, ok := schema[driver]; !ok {
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	c := NewSQLCorpus(db, driver, loc)
	if err := c.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// NewSQLCorpus wires an existing sql.DB; the schema must already exist.
func NewSQLCorpus(db *sql.DB, driver string, loc *time.Location) *SQLCorpus {
	if loc == nil {
		loc = time.UTC
	}
	var placeholder sq.PlaceholderFormat = sq.Question
	if driver == "postgres" {
		placeholder = sq.Dollar
	}
	return &SQLCorpus{
		db:      db,
		driver:  driver,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
		loc:     loc,
	}
}

func (c *SQLCorpus) migrate(ctx context.Context) error {
	for _, stmt := range schema[c.driver] {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Close releases the connection pool.
func (c *SQLCorpus) Close() error {
	return c.db.Close()
}

// QueryByDate returns all items stored for day, in capture order.
func (c *SQLCorpus) QueryByDate(ctx context.Context, day time.Time) ([]domain.NewsItem, error) {
	return c.query(ctx, sq.Eq{"day": day.Format(domain.DayLayout)})
}

// QueryRange returns items of every day in r, in capture order.
func (c *SQLCorpus) QueryRange(ctx context.Context, r domain.DateRange) ([]domain.NewsItem, error) {
	return c.query(ctx, sq.And{
		sq.GtOrEq{"day": r.Start.Format(domain.DayLayout)},
		sq.LtOrEq{"day": r.End.Format(domain.DayLayout)},
	})
}

func (c *SQLCorpus) selectNews(where sq.Sqlizer) (string, []any, error) {
	return c.builder.
		Select(newsColumns...).
		From(newsTable).
		Where(where).
		OrderBy("captured_at", "platform", "item_rank", "id").
		ToSql()
}

func (c *SQLCorpus) query(ctx context.Context, where sq.Sqlizer) ([]domain.NewsItem, error) {
	query, args, err := c.selectNews(where)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.CorpusUnavailable(fmt.Errorf("query news: %w", err))
	}
	defer rows.Close()

	var items []domain.NewsItem
	for rows.Next() {
		var (
			item       domain.NewsItem
			capturedAt int64
		)
		if err := rows.Scan(&item.Platform, &item.Title, &item.URL, &item.MobileURL, &item.Summary, &item.Rank, &capturedAt); err != nil {
			return nil, fmt.Errorf("scan news: %w", err)
		}
		item.CapturedAt = time.UnixMilli(capturedAt).In(c.loc)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return items, nil
}

// AppendBatch stores one crawl batch of platform under day atomically.
func (c *SQLCorpus) AppendBatch(ctx context.Context, platform string, items []domain.NewsItem, day time.Time) error {
	if len(items) == 0 {
		return nil
	}

	insert := c.builder.Insert(newsTable).Columns(append([]string{"day"}, newsColumns...)...)
	dayKey := day.Format(domain.DayLayout)
	for _, item := range items {
		insert = insert.Values(dayKey, platform, item.Title, item.URL, item.MobileURL, item.Summary, item.Rank, item.CapturedAt.UnixMilli())
	}
	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.CorpusUnavailable(fmt.Errorf("begin tx: %w", err))
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert batch %s: %w", platform, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch %s: %w", platform, err)
	}
	return nil
}

// Stats reports totals per platform and the covered day span.
func (c *SQLCorpus) Stats(ctx context.Context) (ports.Stats, error) {
	stats := ports.Stats{Backend: c.driver, Platforms: map[string]int{}}

	query, args, err := c.builder.
		Select("platform", "COUNT(*)", "MIN(day)", "MAX(day)").
		From(newsTable).
		GroupBy("platform").
		ToSql()
	if err != nil {
		return stats, fmt.Errorf("build stats: %w", err)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return stats, domain.CorpusUnavailable(fmt.Errorf("query stats: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var (
			platform, first, last string
			count                 int
		)
		if err := rows.Scan(&platform, &count, &first, &last); err != nil {
			return stats, fmt.Errorf("scan stats: %w", err)
		}
		stats.Platforms[platform] = count
		stats.Items += count
		if stats.FirstDay == "" || first < stats.FirstDay {
			stats.FirstDay = first
		}
		if last > stats.LastDay {
			stats.LastDay = last
		}
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("rows iteration: %w", err)
	}

	dayQuery, dayArgs, err := c.builder.Select("COUNT(DISTINCT day)").From(newsTable).ToSql()
	if err != nil {
		return stats, fmt.Errorf("build day count: %w", err)
	}
	if err := c.db.QueryRowContext(ctx, dayQuery, dayArgs...).Scan(&stats.Days); err != nil {
		return stats, fmt.Errorf("count days: %w", err)
	}
	return stats, nil
}
