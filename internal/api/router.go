// Package api exposes the symptom checker over HTTP.
package api

import (
	"context"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Skufu/GoSymptom/internal/checker"
)

// DefaultMaxBodyBytes caps request bodies.
const DefaultMaxBodyBytes = 1 << 20

// HealthChecker is probed by /readyz.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Options wires the router's collaborators.
type Options struct {
	Service *checker.Service
	// Health is nil when no remote store is configured.
	Health       HealthChecker
	Logger       *logrus.Logger
	StaticRoot   string
	RateLimit    RateLimitRule
	CORSOrigins  []string
	MaxBodyBytes int64
}

func NewRouter(opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	router := gin.New()
	router.Use(
		RequestID(),
		Logging(opts.Logger),
		gin.Recovery(),
		limitBodySize(opts.MaxBodyBytes),
		cors.New(cors.Config{
			AllowOrigins:  opts.CORSOrigins,
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
			ExposeHeaders: []string{requestIDHeader},
			MaxAge:        12 * time.Hour,
		}),
	)

	if opts.StaticRoot != "" {
		router.Static("/static", opts.StaticRoot)
		router.StaticFile("/", filepath.Join(opts.StaticRoot, "index.html"))
	}

	h := &handlers{service: opts.Service, health: opts.Health}

	router.GET("/healthz", h.healthz)
	router.GET("/readyz", h.readyz)

	api := router.Group("/api")
	api.GET("/vocabulary", h.vocabulary)

	limited := api.Group("", RateLimit(opts.RateLimit))
	limited.POST("/diagnose", h.diagnose)
	limited.POST("/diagnose/preview", h.preview)

	return router
}
