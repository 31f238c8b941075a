package questions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/playperu/bollyquiz/internal/bollyquiz"
)

var ErrNotCached = errors.New("no cached questions")

// CacheSource keeps the last successful load of inner in the question_cache
// table and serves it when inner fails.
type CacheSource struct {
	inner  Source
	db     *sql.DB
	key    string
	logger *slog.Logger
	now    func() time.Time
}

// NewCacheSource caches inner under key, typically the sheet URL. The table
// is created by the migrations package.
func NewCacheSource(inner Source, db *sql.DB, key string, logger *slog.Logger) *CacheSource {
	return &CacheSource{inner: inner, db: db, key: key, logger: logger, now: time.Now}
}

func (c *CacheSource) Load(ctx context.Context) ([]bollyquiz.Question, error) {
	qs, err := c.inner.Load(ctx)
	if err == nil {
		if perr := c.put(ctx, qs); perr != nil {
			c.logger.WarnContext(ctx, "caching questions", "key", c.key, "err", perr)
		}
		return qs, nil
	}

	cached, fetchedAt, cerr := c.get(ctx)
	if cerr != nil {
		return nil, errors.Join(err, cerr)
	}
	c.logger.WarnContext(ctx, "serving cached questions",
		"key", c.key, "fetched_at", fetchedAt, "count", len(cached), "err", err)
	return cached, nil
}

func (c *CacheSource) put(ctx context.Context, qs []bollyquiz.Question) error {
	data, err := json.Marshal(qs)
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO question_cache (key, fetched_at, data) VALUES (?, ?, jsonb(?))
		 ON CONFLICT(key) DO UPDATE SET fetched_at = excluded.fetched_at, data = excluded.data`,
		c.key, c.now().UTC().Format(time.RFC3339), string(data),
	)
	return err
}

func (c *CacheSource) get(ctx context.Context) ([]bollyquiz.Question, string, error) {
	var data, fetchedAt string
	err := c.db.QueryRowContext(ctx,
		`SELECT json(data), fetched_at FROM question_cache WHERE key = ?`, c.key,
	).Scan(&data, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotCached
	}
	if err != nil {
		return nil, "", fmt.Errorf("reading question cache: %w", err)
	}

	var qs []bollyquiz.Question
	if err := json.Unmarshal([]byte(data), &qs); err != nil {
		return nil, "", fmt.Errorf("decoding question cache: %w", err)
	}
	if len(qs) == 0 {
		return nil, "", ErrNotCached
	}
	return qs, fetchedAt, nil
}
