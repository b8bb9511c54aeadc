package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"user-service/cmd/api/di"
	ginrouter "user-service/internal/adapter/gin/router"
	"user-service/internal/config"
)

// SetupGinServer creates and configures the Gin REST API server
func SetupGinServer(cfg *config.Config, c *di.Container, addr string, l *zap.Logger) *http.Server {
	// Setup Gin router with all middleware and routes
	router := ginrouter.SetupRouter(c.UserHandler, c.HealthHandler, ginrouter.Options{
		CORSOrigins:    cfg.HTTP.CORSAllowedOrigins,
		MetricsEnabled: cfg.HTTP.MetricsEnabled,
		RateLimiter:    c.RateLimiter,
		Production:     cfg.App.IsProduction(),
	}, l)

	l.Info("Gin REST API configured",
		zap.String("address", addr),
		zap.Bool("metrics", cfg.HTTP.MetricsEnabled),
		zap.Bool("rate_limit", c.RateLimiter.Enabled()),
	)

	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
