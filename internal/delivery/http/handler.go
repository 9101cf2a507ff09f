package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/labelscan/backend/internal/domain"
)

// ProductLookup is the usecase behind the product endpoint
type ProductLookup interface {
	GetProduct(ctx context.Context, barcode string) (*domain.Product, bool, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	productService ProductLookup
}

// NewHandler creates a new HTTP handler
func NewHandler(productService ProductLookup) *Handler {
	return &Handler{productService: productService}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "labelscan-backend",
		"version": "1.0.0",
	})
}

// GetProduct handles GET /product/:barcode
func (h *Handler) GetProduct(c *gin.Context) {
	if h.productService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"message": "Product lookup is not configured",
		})
		return
	}

	barcode := c.Param("barcode")

	product, cacheHit, err := h.productService.GetProduct(c.Request.Context(), barcode)
	if err != nil {
		status, message := errorResponse(err)
		c.JSON(status, gin.H{"message": message})
		return
	}

	if cacheHit {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	c.JSON(http.StatusOK, product)
}

// errorResponse maps a lookup error to a status code and client message
func errorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, "Product not found in Open Food Facts"
	case errors.Is(err, domain.ErrUpstreamTimeout), errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusInternalServerError, fmt.Sprintf("Error connecting to Open Food Facts: %v", err)
	case errors.Is(err, domain.ErrMalformedPayload):
		return http.StatusInternalServerError,
			fmt.Sprintf("Error processing data from Open Food Facts: %v. Check the data structure.", err)
	default:
		return http.StatusInternalServerError, fmt.Sprintf("Error fetching data: %v", err)
	}
}
