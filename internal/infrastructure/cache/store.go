package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/labelscan/backend/internal/domain"
)

// Store is a product store that holds resources until closed
type Store interface {
	domain.ProductStore
	Close() error
}

// Options selects and configures a store backend
type Options struct {
	Type       string // "memory", "redis" or "sqlite"
	RedisURL   string
	SQLitePath string
	TTL        time.Duration
}

// NewStore builds the store backend named by opts.Type
func NewStore(ctx context.Context, opts Options) (Store, error) {
	switch opts.Type {
	case "", "memory":
		return NewMemoryStore(opts.TTL), nil
	case "redis":
		store, err := NewRedisStore(ctx, opts.RedisURL, opts.TTL)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "sqlite":
		store, err := OpenSQLiteStore(opts.SQLitePath, opts.TTL)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache type: %q", opts.Type)
	}
}
