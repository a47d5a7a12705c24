package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	requestIDHeader = "X-Request-Id"
	requestIDKey    = "requestId"
)

// RequestID attaches a request ID to the context and response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// RequestIDFromContext fetches the request ID stored by RequestID.
func RequestIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Get(requestIDKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

// Logging emits one structured entry per request.
func Logging(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		status := c.Writer.Status()

		entry := logger.WithFields(logrus.Fields{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      status,
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
		})
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request.complete")
		case status >= http.StatusBadRequest:
			entry.Warn("request.complete")
		default:
			entry.Info("request.complete")
		}
	}
}

// RateLimitRule is a token bucket: Rate refills per second up to Burst.
type RateLimitRule struct {
	Rate  float64
	Burst int
}

// maxTrackedClients bounds the per-client limiter set; the least recently
// seen clients are forgotten first.
const maxTrackedClients = 4096

// RateLimit limits requests per client IP. A non-positive rate disables it.
func RateLimit(rule RateLimitRule) gin.HandlerFunc {
	if rule.Rate <= 0 || rule.Burst <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiters, _ := lru.New[string, *rate.Limiter](maxTrackedClients)

	return func(c *gin.Context) {
		key := c.ClientIP()
		limiter, ok := limiters.Get(key)
		if !ok {
			limiter = rate.NewLimiter(rate.Limit(rule.Rate), rule.Burst)
			// Another request from the same client may have raced us here.
			if prev, found, _ := limiters.PeekOrAdd(key, limiter); found {
				limiter = prev
			}
		}
		if limiter.Allow() {
			c.Next()
			return
		}
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate_limited"})
	}
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
