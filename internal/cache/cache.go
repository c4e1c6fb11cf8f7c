// Package cache keeps release listings in a local SQLite database so that
// repeated lookups of the same repository skip the network and a failing
// upstream can still be browsed from the last good copy.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atomicstack/grpm/internal/backend"
	"github.com/atomicstack/grpm/internal/logging"
	"github.com/atomicstack/grpm/internal/logging/events"
	"github.com/atomicstack/grpm/internal/release"
	jsoniter "github.com/json-iterator/go"
	_ "modernc.org/sqlite"
)

// DefaultTTL is how long a cached listing is served without asking upstream.
const DefaultTTL = 10 * time.Minute

const schema = `CREATE TABLE IF NOT EXISTS releases (
	owner      TEXT    NOT NULL,
	repo       TEXT    NOT NULL,
	fetched_at INTEGER NOT NULL,
	payload    BLOB    NOT NULL,
	PRIMARY KEY (owner, repo)
)`

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client decorates an upstream backend.Client with the release cache.
type Client struct {
	db       *sql.DB
	upstream backend.Client
	ttl      time.Duration
	now      func() time.Time
}

// Open creates or opens the cache database at path.
func Open(path string, upstream backend.Client, ttl time.Duration) (*Client, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache %s: %w", path, err)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Client{db: db, upstream: upstream, ttl: ttl, now: time.Now}, nil
}

// Close releases the database handle.
func (c *Client) Close() error {
	return c.db.Close()
}

// ListReleases serves a fresh cached listing, or asks upstream and stores the
// answer. When upstream fails the last cached listing is returned regardless
// of its age, together with a *backend.StaleError.
func (c *Client) ListReleases(ctx context.Context, owner, repo string) ([]release.Release, error) {
	cached, fetched, found, err := c.load(ctx, owner, repo)
	if err != nil {
		logging.Error(err)
	}
	if found {
		if age := c.now().Sub(fetched); age < c.ttl {
			events.Cache.Hit(owner, repo, age)
			return cached, nil
		}
	}
	rels, err := c.upstream.ListReleases(ctx, owner, repo)
	if err != nil {
		if found {
			events.Cache.Stale(owner, repo, err)
			return cached, &backend.StaleError{Age: c.now().Sub(fetched), Err: err}
		}
		return nil, err
	}
	if err := c.store(ctx, owner, repo, rels); err != nil {
		logging.Error(err)
	}
	return rels, nil
}

// GetAsset is never cached; download counters change between calls.
func (c *Client) GetAsset(ctx context.Context, owner, repo string, id int64) (release.Asset, error) {
	return c.upstream.GetAsset(ctx, owner, repo, id)
}

func key(owner, repo string) (string, string) {
	return strings.ToLower(owner), strings.ToLower(repo)
}

func (c *Client) load(ctx context.Context, owner, repo string) ([]release.Release, time.Time, bool, error) {
	o, r := key(owner, repo)
	var (
		fetchedAt int64
		payload   []byte
	)
	err := c.db.QueryRowContext(ctx, `SELECT fetched_at, payload FROM releases WHERE owner = ? AND repo = ?`, o, r).Scan(&fetchedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("read cache %s/%s: %w", o, r, err)
	}
	var rels []release.Release
	if err := json.Unmarshal(payload, &rels); err != nil {
		return nil, time.Time{}, false, fmt.Errorf("decode cache %s/%s: %w", o, r, err)
	}
	return rels, time.Unix(0, fetchedAt), true, nil
}

func (c *Client) store(ctx context.Context, owner, repo string, rels []release.Release) error {
	o, r := key(owner, repo)
	payload, err := json.Marshal(rels)
	if err != nil {
		return fmt.Errorf("encode cache %s/%s: %w", o, r, err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO releases (owner, repo, fetched_at, payload) VALUES (?, ?, ?, ?)
		 ON CONFLICT(owner, repo) DO UPDATE SET fetched_at = excluded.fetched_at, payload = excluded.payload`,
		o, r, c.now().UnixNano(), payload)
	if err != nil {
		return fmt.Errorf("write cache %s/%s: %w", o, r, err)
	}
	events.Cache.Store(o, r, len(rels))
	return nil
}
