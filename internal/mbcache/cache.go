// Package mbcache caches metadata provider responses in SQLite.
package mbcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/llehouerou/reconcile/internal/db"
	"github.com/llehouerou/reconcile/internal/metadata"
	"github.com/llehouerou/reconcile/internal/similarity"
)

// DefaultTTL is how long a cached response stays valid.
const DefaultTTL = 30 * 24 * time.Hour

const schema = `
CREATE TABLE IF NOT EXISTS provider_cache (
	kind       TEXT    NOT NULL,
	query_key  TEXT    NOT NULL,
	response   TEXT    NOT NULL,
	fetched_at INTEGER NOT NULL,
	PRIMARY KEY (kind, query_key)
);
CREATE INDEX IF NOT EXISTS idx_provider_cache_fetched_at ON provider_cache (fetched_at);
`

// Cache stores provider responses keyed by kind and normalized query.
type Cache struct {
	db    *sql.DB
	ttl   time.Duration
	clock clockwork.Clock
}

// Stats summarizes the cache contents.
type Stats struct {
	Entries int
	Expired int
	ByKind  map[metadata.Kind]int
	Oldest  time.Time // zero when empty
	Newest  time.Time // zero when empty
}

// Open opens or creates the cache database at path.
func Open(path string, ttl time.Duration) (*Cache, error) {
	conn, err := db.Open(path, schema)
	if err != nil {
		return nil, err
	}
	return New(conn, ttl, clockwork.NewRealClock()), nil
}

// New creates a Cache on an already opened database whose schema has been
// initialized with InitSchema or Open. A non-positive ttl means DefaultTTL.
func New(conn *sql.DB, ttl time.Duration, clock clockwork.Clock) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache{db: conn, ttl: ttl, clock: clock}
}

// InitSchema creates the cache table if it does not exist.
func InitSchema(conn *sql.DB) error {
	_, err := conn.Exec(schema)
	return err
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Key builds the cache key of a query: its normalized fields and the limit.
func Key(q metadata.Query, limit int) string {
	return strings.Join([]string{
		similarity.Normalize(q.Artist),
		similarity.Normalize(q.Album),
		similarity.Normalize(q.Title),
		strconv.Itoa(limit),
	}, "|")
}

// isExpired checks if a cached entry is expired.
func (c *Cache) isExpired(fetchedAt int64) bool {
	return fetchedAt < c.expiry()
}

func (c *Cache) expiry() int64 {
	return c.clock.Now().Add(-c.ttl).Unix()
}

// Get returns the cached candidates for key. ok is false on a miss or when
// the entry has expired.
func (c *Cache) Get(ctx context.Context, kind metadata.Kind, key string) ([]metadata.Candidate, bool, error) {
	var (
		response  string
		fetchedAt int64
	)
	err := c.db.QueryRowContext(ctx, `
		SELECT response, fetched_at
		FROM provider_cache
		WHERE kind = ? AND query_key = ?
	`, string(kind), key).Scan(&response, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache: %w", err)
	}

	if c.isExpired(fetchedAt) {
		return nil, false, nil
	}

	var cands []metadata.Candidate
	if err := json.Unmarshal([]byte(response), &cands); err != nil {
		return nil, false, fmt.Errorf("decode cached response: %w", err)
	}
	return cands, true, nil
}

// Set stores candidates for key, replacing any previous entry.
func (c *Cache) Set(ctx context.Context, kind metadata.Kind, key string, cands []metadata.Candidate) error {
	if cands == nil {
		cands = []metadata.Candidate{}
	}
	data, err := json.Marshal(cands)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return db.InTx(ctx, c.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM provider_cache WHERE kind = ? AND query_key = ?`,
			string(kind), key,
		); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO provider_cache (kind, query_key, response, fetched_at)
			VALUES (?, ?, ?, ?)
		`, string(kind), key, string(data), c.clock.Now().Unix())
		return err
	})
}

// CleanExpired removes all expired entries and returns how many were removed.
func (c *Cache) CleanExpired(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM provider_cache WHERE fetched_at < ?`, c.expiry())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Stats reports entry counts and the age range of the cache.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	s := Stats{ByKind: make(map[metadata.Kind]int)}

	rows, err := c.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM provider_cache GROUP BY kind`)
	if err != nil {
		return s, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kind  string
			count int
		)
		if err := rows.Scan(&kind, &count); err != nil {
			return s, err
		}
		s.ByKind[metadata.Kind(kind)] = count
		s.Entries += count
	}
	if err := rows.Err(); err != nil {
		return s, err
	}

	var oldest, newest sql.NullInt64
	err = c.db.QueryRowContext(ctx, `
		SELECT MIN(fetched_at), MAX(fetched_at), COUNT(CASE WHEN fetched_at < ? THEN 1 END)
		FROM provider_cache
	`, c.expiry()).Scan(&oldest, &newest, &s.Expired)
	if err != nil {
		return s, err
	}
	if oldest.Valid {
		s.Oldest = time.Unix(oldest.Int64, 0)
		s.Newest = time.Unix(newest.Int64, 0)
	}

	return s, nil
}
