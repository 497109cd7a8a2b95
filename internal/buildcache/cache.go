// Package buildcache persists per-document content hashes between builds so
// an unchanged site can skip the render pass entirely.
package buildcache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Snapshot maps content-relative paths to their content hash.
type Snapshot map[string]string

// Cache is a SQLite-backed build cache.
type Cache struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (or creates) the cache database.
// Use ":memory:" for an in-memory database, or a file path for persistence.
func Open(dbPath string) (*Cache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	cache := &Cache{db: db}
	if err := cache.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return cache, nil
}

func (c *Cache) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		path TEXT PRIMARY KEY,
		hash TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		spec_hash TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_created ON builds(created_at);
	`
	_, err := c.db.Exec(schema)
	return err
}

// HashBytes returns the canonical content hash used by the cache.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Unchanged reports whether the given snapshot and spec hash exactly match
// the last stored build. A cache with no stored build is never unchanged.
func (c *Cache) Unchanged(ctx context.Context, specHash string, snap Snapshot) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var lastSpec string
	err := c.db.QueryRowContext(ctx,
		`SELECT spec_hash FROM builds ORDER BY id DESC LIMIT 1`).Scan(&lastSpec)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query last build: %w", err)
	}
	if lastSpec != specHash {
		return false, nil
	}

	rows, err := c.db.QueryContext(ctx, `SELECT path, hash FROM documents`)
	if err != nil {
		return false, fmt.Errorf("query documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	stored := make(Snapshot)
	for rows.Next() {
		var path, hash string
		if err := rows.Scan(&path, &hash); err != nil {
			return false, err
		}
		stored[path] = hash
	}
	if err := rows.Err(); err != nil {
		return false, err
	}

	if len(stored) != len(snap) {
		return false, nil
	}
	for path, hash := range snap {
		if stored[path] != hash {
			return false, nil
		}
	}
	return true, nil
}

// StoreSnapshot replaces the stored snapshot with the given one and records
// the build.
func (c *Cache) StoreSnapshot(ctx context.Context, buildID, specHash string, snap Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return fmt.Errorf("clear documents: %w", err)
	}
	for path, hash := range snap {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO documents (path, hash) VALUES (?, ?)`, path, hash); err != nil {
			return fmt.Errorf("insert document %s: %w", path, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO builds (build_id, spec_hash, created_at) VALUES (?, ?, ?)`,
		buildID, specHash, time.Now().Unix()); err != nil {
		return fmt.Errorf("record build: %w", err)
	}

	return tx.Commit()
}

// LastBuildID returns the most recent recorded build id, or "" when the cache
// is empty.
func (c *Cache) LastBuildID(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var id string
	err := c.db.QueryRowContext(ctx,
		`SELECT build_id FROM builds ORDER BY id DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
