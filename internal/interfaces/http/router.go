// Package http assembles the REST API: routing, middleware, and the server
// lifecycle.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/leaselens/leaselens/internal/infrastructure/monitoring/logging"
	"github.com/leaselens/leaselens/internal/infrastructure/monitoring/prometheus"
	"github.com/leaselens/leaselens/internal/interfaces/http/handlers"
	"github.com/leaselens/leaselens/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and infrastructure the route tree
// needs.
type RouterConfig struct {
	LeaseHandler  *handlers.LeaseHandler
	SearchHandler *handlers.SearchHandler
	QAHandler     *handlers.QAHandler
	HealthHandler *handlers.HealthHandler

	Logger  logging.Logger
	Metrics *prometheus.Collector
}

// NewRouter builds the complete gin engine: global middleware, public
// probes, the metrics endpoint, and the versioned API group.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	v1 := r.Group("/api/v1")
	{
		if cfg.LeaseHandler != nil {
			v1.POST("/leases/:id/analysis", cfg.LeaseHandler.Analyze)
			v1.GET("/leases/:id/analysis", cfg.LeaseHandler.GetAnalysis)
		}
		if cfg.QAHandler != nil {
			v1.POST("/leases/:id/questions", cfg.QAHandler.Ask)
			v1.GET("/leases/:id/conversation", cfg.QAHandler.History)
		}
		if cfg.SearchHandler != nil {
			v1.POST("/search", cfg.SearchHandler.Search)
		}
	}

	return r
}
