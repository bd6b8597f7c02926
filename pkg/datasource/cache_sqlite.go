package datasource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteCache keeps payloads in a local database file so they survive restarts
type SQLiteCache struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteCache opens (creating if needed) the database at path. ":memory:" is accepted.
func NewSQLiteCache(path string) (*SQLiteCache, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection: sqlite serialises writers and every :memory: connection is its own db
	db.SetMaxOpenConns(1)

	c := &SQLiteCache{db: db, now: time.Now}
	if err := c.init(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *SQLiteCache) init() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS responses (
			key TEXT PRIMARY KEY,
			body BLOB NOT NULL,
			expires_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	if _, err := c.db.Exec(`DELETE FROM responses WHERE expires_at <= ?`, c.now().Unix()); err != nil {
		return fmt.Errorf("failed to purge expired responses: %w", err)
	}
	return nil
}

func (c *SQLiteCache) Get(ctx context.Context, key string) ([]byte, error) {
	var body []byte
	var expires int64
	err := c.db.QueryRowContext(ctx, `SELECT body, expires_at FROM responses WHERE key = ?`, key).Scan(&body, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	if expires <= c.now().Unix() {
		return nil, ErrCacheMiss
	}
	return body, nil
}

func (c *SQLiteCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO responses (key, body, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET body = excluded.body, expires_at = excluded.expires_at
	`, key, value, c.now().Add(ttl).Unix())
	return err
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
