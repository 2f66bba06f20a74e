// Package api exposes the query services over HTTP with gin.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driving"
	"github.com/custodia-labs/filings-cli/internal/logger"
	"github.com/custodia-labs/filings-cli/internal/metrics"
)

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("api: query service is required")

// Services aggregates the driving ports served over HTTP.
type Services struct {
	Query      driving.QueryService
	Classifier driving.ClassifierService
	Retrieval  driving.RetrievalService
	History    driving.ContextManager
	Ingest     driving.IngestService // Optional.
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(svc Services) (*gin.Engine, error) {
	if svc.Query == nil || svc.Classifier == nil || svc.Retrieval == nil || svc.History == nil {
		return nil, ErrMissingQueryService
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	h := &handler{svc: svc}
	v1 := r.Group("/v1")
	h.RegisterRoutes(v1)

	return r, nil
}

// requestLogger logs one debug line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.With(
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		).Debug("request")
	}
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func abort(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
