package cache

import (
	"context"
	"sync"
	"time"

	"github.com/labelscan/backend/internal/domain"
)

// cacheItem represents a single product in the cache with optional expiration
type cacheItem struct {
	product    *domain.Product
	expiration time.Time // zero means never expires
}

func (i cacheItem) expired(now time.Time) bool {
	return !i.expiration.IsZero() && now.After(i.expiration)
}

// MemoryStore is a thread-safe in-memory product store.
// With a zero TTL entries live for the lifetime of the process.
type MemoryStore struct {
	data  map[string]cacheItem
	ttl   time.Duration
	mutex sync.RWMutex
	stop  chan struct{}
	once  sync.Once
}

// NewMemoryStore creates a new in-memory store. A positive ttl starts a
// background sweep of expired entries; call Close to stop it.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	store := &MemoryStore{
		data: make(map[string]cacheItem),
		ttl:  ttl,
		stop: make(chan struct{}),
	}

	if ttl > 0 {
		go store.cleanupExpired(sweepInterval(ttl))
	}

	return store
}

// Get retrieves a product from the store
func (s *MemoryStore) Get(ctx context.Context, barcode string) (*domain.Product, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	item, exists := s.data[barcode]
	if !exists || item.expired(time.Now()) {
		return nil, domain.ErrCacheMiss
	}

	return cloneProduct(item.product), nil
}

// Set stores a product under its barcode
func (s *MemoryStore) Set(ctx context.Context, barcode string, product *domain.Product) error {
	if product == nil {
		return domain.ErrInvalidRequest
	}

	item := cacheItem{product: cloneProduct(product)}
	if s.ttl > 0 {
		item.expiration = time.Now().Add(s.ttl)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.data[barcode] = item

	return nil
}

// Close stops the background sweep
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	return nil
}

// cleanupExpired removes expired entries from the store periodically
func (s *MemoryStore) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.removeExpired(now)
		}
	}
}

func (s *MemoryStore) removeExpired(now time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for key, item := range s.data {
		if item.expired(now) {
			delete(s.data, key)
		}
	}
}

func (s *MemoryStore) size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.data)
}

// sweepInterval picks how often to scan for expired entries
func sweepInterval(ttl time.Duration) time.Duration {
	interval := 10 * time.Minute
	if ttl < interval {
		interval = ttl
	}
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

// cloneProduct copies a product so callers cannot mutate stored records
func cloneProduct(p *domain.Product) *domain.Product {
	if p == nil {
		return nil
	}
	cp := *p
	cp.GoodIngredients = append([]string{}, p.GoodIngredients...)
	cp.BadIngredients = append([]string{}, p.BadIngredients...)
	if p.ImageURL != nil {
		u := *p.ImageURL
		cp.ImageURL = &u
	}
	return &cp
}
