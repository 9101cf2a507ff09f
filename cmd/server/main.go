package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labelscan/backend/config"
	httpDelivery "github.com/labelscan/backend/internal/delivery/http"
	"github.com/labelscan/backend/internal/domain"
	"github.com/labelscan/backend/internal/infrastructure/cache"
	"github.com/labelscan/backend/internal/infrastructure/events"
	"github.com/labelscan/backend/internal/infrastructure/openfoodfacts"
	"github.com/labelscan/backend/internal/platform/otel"
	"github.com/labelscan/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting LabelScan Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Cache Type: %s (ttl: %s)", cfg.Cache.Type, cfg.Cache.TTL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Setup(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialise tracing: %v", err)
	}
	if cfg.Telemetry.OTLPEndpoint != "" {
		log.Printf("Tracing enabled: %s", cfg.Telemetry.OTLPEndpoint)
	}

	// Initialize infrastructure dependencies
	store, err := cache.NewStore(ctx, cache.Options{
		Type:       cfg.Cache.Type,
		RedisURL:   cfg.Cache.RedisURL,
		SQLitePath: cfg.Cache.SQLitePath,
		TTL:        cfg.Cache.TTL,
	})
	if err != nil {
		log.Fatalf("Failed to initialise %s cache: %v", cfg.Cache.Type, err)
	}

	offClient := openfoodfacts.NewClient(openfoodfacts.ClientConfig{
		BaseURL:           cfg.Upstream.BaseURL,
		Timeout:           cfg.Upstream.Timeout,
		UserAgent:         cfg.Upstream.UserAgent,
		RequestsPerMinute: cfg.Upstream.RateLimit,
	})

	debug := cfg.Server.Environment == "development"
	if debug {
		offClient.SetDebug(true)
		log.Printf("Open Food Facts client debug mode enabled")
	}
	log.Printf("Open Food Facts API: %s (timeout %s, %d req/min)",
		cfg.Upstream.BaseURL, cfg.Upstream.Timeout, cfg.Upstream.RateLimit)

	var publisher domain.EventPublisher = events.NoopPublisher{}
	if cfg.Events.Enabled {
		publisher = events.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Queue)
		log.Printf("Publishing product events to queue %q", cfg.Events.Queue)
	}

	// Initialize usecase layer
	productService := usecase.NewProductService(
		store,
		offClient,
		publisher,
		usecase.ProductServiceConfig{
			EnableDebugLogging: debug,
			FetchTimeout:       cfg.Upstream.Timeout,
		},
	)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(productService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if err := store.Close(); err != nil {
		log.Printf("Cache close error: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("Tracing shutdown error: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
