package openfoodfacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labelscan/backend/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds a single upstream product request
	DefaultTimeout = 10 * time.Second

	// DefaultRequestsPerMinute matches the Open Food Facts product read quota
	DefaultRequestsPerMinute = 100

	// maxBodyBytes caps how much of an upstream body we are willing to decode
	maxBodyBytes = 5 << 20
)

var tracer = otel.Tracer("github.com/labelscan/backend/internal/infrastructure/openfoodfacts")

// ClientConfig configures the Open Food Facts client
type ClientConfig struct {
	BaseURL           string
	Timeout           time.Duration
	UserAgent         string
	RequestsPerMinute int
}

// Client handles communication with the Open Food Facts API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	timeout     time.Duration
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new Open Food Facts API client
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = DefaultRequestsPerMinute
	}
	burst := rpm
	if burst > 10 {
		burst = 10
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "LabelScan/1.0"
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:   userAgent,
		timeout:     timeout,
		rateLimiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst),
	}
}

// SetDebug toggles verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// productURL builds the v0 product endpoint for a barcode
func (c *Client) productURL(barcode string) string {
	return fmt.Sprintf("%s/api/v0/product/%s.json", c.baseURL, url.PathEscape(barcode))
}

// doRequest executes an HTTP GET request and classifies transport failures
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}

	return resp, nil
}

// GetProduct fetches a product by barcode. A payload whose status is not
// "found" yields domain.ErrProductNotFound. Failed requests are not retried.
// The configured timeout bounds the whole call, including any wait for a
// rate limiter slot.
func (c *Client) GetProduct(ctx context.Context, barcode string) (*domain.UpstreamResponse, error) {
	ctx, span := tracer.Start(ctx, "openfoodfacts.GetProduct",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("product.barcode", barcode)),
	)
	defer span.End()

	result, err := c.getProduct(ctx, barcode)
	if err != nil && !errors.Is(err, domain.ErrProductNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}

func (c *Client) getProduct(ctx context.Context, barcode string) (*domain.UpstreamResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// Wait fails at once when the next slot is past the deadline.
	if err := c.rateLimiter.Wait(ctx); err != nil {
		log.Printf("[OFF] Rate limiter error: %v", err)
		return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrUpstreamUnavailable, err)
	}

	reqURL := c.productURL(barcode)
	if c.debug {
		log.Printf("[OFF] GET %s", reqURL)
	}

	resp, err := c.doRequest(ctx, reqURL)
	if err != nil {
		log.Printf("[OFF] Request error for barcode %q: %v", barcode, err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("[OFF] API error - Status: %d, Body: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("%w: %d %s for url: %s", domain.ErrUpstreamStatus,
			resp.StatusCode, http.StatusText(resp.StatusCode), reqURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	if len(body) > maxBodyBytes {
		log.Printf("[OFF] Response for barcode %q exceeds %d bytes", barcode, maxBodyBytes)
		return nil, fmt.Errorf("%w: response too large (over %d bytes)", domain.ErrUpstreamStatus, maxBodyBytes)
	}

	var payload domain.UpstreamResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("[OFF] JSON decode error: %v", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	if payload.Status == nil {
		return nil, fmt.Errorf("%w: missing 'status'", domain.ErrMalformedPayload)
	}

	if *payload.Status != domain.ProductFound {
		if c.debug {
			log.Printf("[OFF] Barcode %q not found (status %d)", barcode, *payload.Status)
		}
		return nil, domain.ErrProductNotFound
	}

	if payload.Product == nil {
		return nil, fmt.Errorf("%w: missing 'product'", domain.ErrMalformedPayload)
	}

	return &payload, nil
}

// isTimeout reports whether err came from a deadline or a network timeout
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
