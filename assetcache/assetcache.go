// Package assetcache persists the results of deferred conversion jobs
// (fetched and fitted images, normalised or rasterised SVG) in SQLite,
// keyed by a hash of the job's inputs.
package assetcache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/hazyhaar/domdeck/dbopen"
	"github.com/hazyhaar/domdeck/media"
)

// Schema is the DDL of the asset table.
const Schema = `
CREATE TABLE IF NOT EXISTS assets (
    key        TEXT PRIMARY KEY,
    mime       TEXT NOT NULL,
    data       BLOB NOT NULL,
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_assets_created ON assets(created_at);
`

// Key hashes the parts of a job description into a cache key.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Cache is an SQLite-backed asset store.
type Cache struct {
	DB *sql.DB
}

// Open opens (or creates) the cache database at path.
func Open(path string, opts ...dbopen.Option) (*Cache, error) {
	all := append([]dbopen.Option{
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(Schema),
	}, opts...)
	db, err := dbopen.Open(path, all...)
	if err != nil {
		return nil, fmt.Errorf("assetcache: %w", err)
	}
	return &Cache{DB: db}, nil
}

// New wraps an open database; the schema must already be applied.
func New(db *sql.DB) *Cache { return &Cache{DB: db} }

// Close closes the database.
func (c *Cache) Close() error {
	return c.DB.Close()
}

// Get returns the asset stored under key. The boolean is false on a miss.
func (c *Cache) Get(ctx context.Context, key string) (media.Asset, bool, error) {
	var a media.Asset
	err := c.DB.QueryRowContext(ctx,
		`SELECT mime, data FROM assets WHERE key = ?`, key).Scan(&a.MIME, &a.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return media.Asset{}, false, nil
	}
	if err != nil {
		return media.Asset{}, false, fmt.Errorf("assetcache: get: %w", err)
	}
	return a, true, nil
}

// Put stores a under key, replacing any previous entry.
func (c *Cache) Put(ctx context.Context, key string, a media.Asset) error {
	if a.Empty() {
		return fmt.Errorf("assetcache: put %s: empty asset", key)
	}
	_, err := dbopen.Exec(ctx, c.DB, `
		INSERT INTO assets (key, mime, data, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET mime = excluded.mime, data = excluded.data,
			created_at = excluded.created_at`,
		key, a.MIME, a.Data, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("assetcache: put: %w", err)
	}
	return nil
}

// Prune deletes entries older than maxAge and returns how many were removed.
func (c *Cache) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).UnixMilli()
	res, err := dbopen.Exec(ctx, c.DB, `DELETE FROM assets WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("assetcache: prune: %w", err)
	}
	return res.RowsAffected()
}

// Stats reports the entry count and total payload size.
func (c *Cache) Stats(ctx context.Context) (entries, size int64, err error) {
	err = c.DB.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(LENGTH(data)), 0) FROM assets`).Scan(&entries, &size)
	if err != nil {
		return 0, 0, fmt.Errorf("assetcache: stats: %w", err)
	}
	return entries, size, nil
}
