package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/labelscan/backend/internal/domain"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS products (
	barcode   TEXT PRIMARY KEY,
	payload   TEXT NOT NULL,
	cached_at INTEGER NOT NULL
)`

// SQLiteStore persists products in a SQLite database so they survive restarts
type SQLiteStore struct {
	sqlDB *sql.DB
	ttl   time.Duration
	now   func() time.Time
}

// OpenSQLiteStore opens (creating if needed) a SQLite product store.
// Use ":memory:" for a throwaway database.
func OpenSQLiteStore(path string, ttl time.Duration) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := ":memory:"
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Each connection to :memory: is its own database.
	if path == ":memory:" {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{sqlDB: sqlDB, ttl: ttl, now: time.Now}, nil
}

// Get retrieves a product from SQLite
func (s *SQLiteStore) Get(ctx context.Context, barcode string) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		payload  string
		cachedAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT payload, cached_at FROM products WHERE barcode = ?`, barcode,
	).Scan(&payload, &cachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}

	if s.ttl > 0 && s.now().After(time.UnixMilli(cachedAt).Add(s.ttl)) {
		return nil, domain.ErrCacheMiss
	}

	var product domain.Product
	if err := json.Unmarshal([]byte(payload), &product); err != nil {
		return nil, fmt.Errorf("decode cached product %q: %w", barcode, err)
	}

	return &product, nil
}

// Set upserts a product into SQLite
func (s *SQLiteStore) Set(ctx context.Context, barcode string, product *domain.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if product == nil {
		return domain.ErrInvalidRequest
	}

	payload, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("encode product %q: %w", barcode, err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
		INSERT INTO products (barcode, payload, cached_at) VALUES (?, ?, ?)
		ON CONFLICT(barcode) DO UPDATE SET payload = excluded.payload, cached_at = excluded.cached_at`,
		barcode, string(payload), s.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}

	return nil
}

// Close closes the SQLite handle
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}
