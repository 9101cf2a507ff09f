package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/labelscan/backend/internal/domain"
	"github.com/labelscan/backend/internal/infrastructure/openfoodfacts"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"
)

var tracer = otel.Tracer("github.com/labelscan/backend/internal/usecase")

// ProductServiceConfig holds configuration for the product service
type ProductServiceConfig struct {
	EnableDebugLogging bool

	// FetchTimeout bounds a shared upstream fetch. Zero means openfoodfacts.DefaultTimeout.
	FetchTimeout time.Duration
}

// ProductService looks up products by barcode, classifying and caching them
type ProductService struct {
	store     domain.ProductStore
	source    domain.ProductSource
	publisher domain.EventPublisher
	flights   singleflight.Group
	timeout   time.Duration
	debug     bool
	now       func() time.Time
}

// NewProductService creates a new product service with dependencies.
// A nil publisher disables event publishing.
func NewProductService(
	store domain.ProductStore,
	source domain.ProductSource,
	publisher domain.EventPublisher,
	config ProductServiceConfig,
) *ProductService {
	timeout := config.FetchTimeout
	if timeout <= 0 {
		timeout = openfoodfacts.DefaultTimeout
	}

	return &ProductService{
		store:     store,
		source:    source,
		publisher: publisher,
		timeout:   timeout,
		debug:     config.EnableDebugLogging,
		now:       time.Now,
	}
}

// GetProduct returns the classified product for a barcode and whether it was
// served from the store.
// Flow: check store -> fetch upstream -> classify -> store -> publish -> return
func (s *ProductService) GetProduct(ctx context.Context, barcode string) (*domain.Product, bool, error) {
	ctx, span := tracer.Start(ctx, "ProductService.GetProduct")
	defer span.End()
	span.SetAttributes(attribute.String("product.barcode", barcode))

	if cached, ok := s.lookupStore(ctx, barcode); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached, true, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	// Concurrent misses for one barcode share a single upstream call. The
	// flight outlives any one caller's cancellation but not s.timeout.
	v, err, shared := s.flights.Do(barcode, func() (interface{}, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.fetchAndStore(flightCtx, barcode)
	})
	if err != nil {
		if !errors.Is(err, domain.ErrProductNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return nil, false, err
	}
	if shared && s.debug {
		log.Printf("[ProductService] Shared upstream result for barcode %q", barcode)
	}

	return v.(*domain.Product), false, nil
}

// lookupStore reads the store, treating any failure as a miss
func (s *ProductService) lookupStore(ctx context.Context, barcode string) (*domain.Product, bool) {
	cached, err := s.store.Get(ctx, barcode)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			log.Printf("[ProductService] Cache read failed for barcode %q: %v", barcode, err)
		}
		return nil, false
	}
	if cached == nil {
		return nil, false
	}
	if s.debug {
		log.Printf("[ProductService] Cache hit for barcode %q", barcode)
	}
	return cached, true
}

func (s *ProductService) fetchAndStore(ctx context.Context, barcode string) (*domain.Product, error) {
	// Another flight may have stored the barcode since our miss.
	if cached, ok := s.lookupStore(ctx, barcode); ok {
		return cached, nil
	}

	resp, err := s.source.GetProduct(ctx, barcode)
	if err != nil {
		return nil, err
	}

	product := openfoodfacts.MapToProduct(resp, ClassifyIngredients)

	if err := s.store.Set(ctx, barcode, product); err != nil {
		log.Printf("[ProductService] Cache write failed for barcode %q: %v", barcode, err)
	}

	if s.debug {
		log.Printf("[ProductService] Classified %q: %d good, %d bad",
			product.Name, len(product.GoodIngredients), len(product.BadIngredients))
	}

	s.publish(ctx, barcode, product)

	return product, nil
}

func (s *ProductService) publish(ctx context.Context, barcode string, product *domain.Product) {
	if s.publisher == nil {
		return
	}

	event := domain.ProductClassifiedEvent{
		Barcode:         barcode,
		Name:            product.Name,
		GoodIngredients: product.GoodIngredients,
		BadIngredients:  product.BadIngredients,
		ClassifiedAt:    s.now().UTC().Format(time.RFC3339),
	}
	if err := s.publisher.PublishProductClassified(ctx, event); err != nil {
		log.Printf("[ProductService] Event publish failed for barcode %q: %v", barcode, err)
	}
}
