package di

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"user-service/cmd/api/infrastructure"
	"user-service/internal/adapter/db/mongodb"
	ginhandler "user-service/internal/adapter/gin/handler"
	"user-service/internal/adapter/metrics"
	"user-service/internal/adapter/ratelimit"
	"user-service/internal/config"
	"user-service/internal/usecase/user"
	"user-service/pkg/prometheus"
	redisclient "user-service/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	Mongo         *mongo.Client
	RedisClient   *redisclient.Client
	UserService   user.Service
	RateLimiter   *ratelimit.Limiter
	UserHandler   *ginhandler.UserHandler
	HealthHandler *ginhandler.HealthHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c := &Container{Config: cfg, Logger: l}

	client, err := infrastructure.NewMongoClient(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	c.Mongo = client

	repo := mongodb.NewUserRepoMongo(client.Database(cfg.Mongo.Database), cfg.Mongo.Timeout, l)
	if err := repo.EnsureIndexes(ctx); err != nil {
		_ = c.Close(context.Background())
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}

	var svc user.Service = user.New(repo, l)
	if cfg.HTTP.MetricsEnabled {
		counter, latency := prometheus.MakeMetrics("user_service", "api")
		svc = metrics.MetricsMiddleware(svc, counter, latency)
	}
	c.UserService = svc

	checks := map[string]ginhandler.Pinger{
		"mongodb": ginhandler.PingerFunc(func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		}),
	}

	if cfg.RateLimit.Enabled {
		rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
		if err != nil {
			_ = c.Close(context.Background())
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		c.RedisClient = rdb
		checks["redis"] = rdb
		c.RateLimiter = ratelimit.New(rdb.Client, ratelimit.Config{
			Enabled:           true,
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstCapacity:     cfg.RateLimit.BurstCapacity,
		}, l)
	} else {
		l.Info("rate limiting disabled")
	}

	c.UserHandler = ginhandler.NewUserHandler(svc, l)
	c.HealthHandler = ginhandler.NewHealthHandler(cfg.Logger.ServiceName, checks, cfg.Mongo.Timeout, l)

	return c, nil
}

// Close closes all resources held by the container
func (c *Container) Close(ctx context.Context) error {
	var errs []error

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
	if c.Mongo != nil {
		if err := infrastructure.CloseMongoClient(ctx, c.Mongo); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %w", errors.Join(errs...))
	}

	return nil
}
