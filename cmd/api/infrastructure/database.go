package infrastructure

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"user-service/internal/config"
	"user-service/pkg/logger"
)

// NewMongoClient connects to MongoDB with pool settings and command logging, then pings the primary.
func NewMongoClient(ctx context.Context, cfg *config.Config, l *zap.Logger) (*mongo.Client, error) {
	cmdLogger := logger.NewMongoCommandLogger(l, cfg.Logger.SlowQuerySeconds)

	opts := options.Client().
		ApplyURI(cfg.Mongo.URI).
		SetAppName(cfg.Logger.ServiceName).
		SetConnectTimeout(cfg.Mongo.ConnectTimeout).
		SetServerSelectionTimeout(cfg.Mongo.ConnectTimeout).
		SetMaxPoolSize(cfg.Mongo.MaxPoolSize).
		SetMinPoolSize(cfg.Mongo.MinPoolSize).
		SetMonitor(cmdLogger.Monitor())

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	l.Info("database connected successfully",
		zap.String("database", cfg.Mongo.Database),
		zap.Uint64("max_pool_size", cfg.Mongo.MaxPoolSize),
		zap.Uint64("min_pool_size", cfg.Mongo.MinPoolSize),
		zap.Duration("operation_timeout", cfg.Mongo.Timeout),
	)

	return client, nil
}

// CloseMongoClient disconnects the client, waiting for in-flight operations until ctx expires.
func CloseMongoClient(ctx context.Context, client *mongo.Client) error {
	if client == nil {
		return nil
	}

	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}
