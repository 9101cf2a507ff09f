package domain

import "errors"

var (
	// ErrProductNotFound is returned when Open Food Facts does not know the barcode
	ErrProductNotFound = errors.New("product not found in Open Food Facts")

	// ErrUpstreamTimeout is returned when the upstream request times out
	ErrUpstreamTimeout = errors.New("upstream request timed out")

	// ErrUpstreamUnavailable is returned when the upstream cannot be reached
	ErrUpstreamUnavailable = errors.New("upstream connection failed")

	// ErrUpstreamStatus is returned when the upstream answers with a non-success status
	ErrUpstreamStatus = errors.New("upstream request failed")

	// ErrMalformedPayload is returned when the upstream body lacks the expected fields
	ErrMalformedPayload = errors.New("malformed upstream payload")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")
)
