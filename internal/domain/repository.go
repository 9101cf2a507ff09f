package domain

import "context"

// ProductStore caches enriched products by barcode.
// Get returns ErrCacheMiss when the barcode is absent.
type ProductStore interface {
	Get(ctx context.Context, barcode string) (*Product, error)
	Set(ctx context.Context, barcode string, product *Product) error
}

// ProductSource fetches raw product data from the upstream database
type ProductSource interface {
	GetProduct(ctx context.Context, barcode string) (*UpstreamResponse, error)
}

// EventPublisher delivers domain events to downstream consumers
type EventPublisher interface {
	PublishProductClassified(ctx context.Context, event ProductClassifiedEvent) error
}
