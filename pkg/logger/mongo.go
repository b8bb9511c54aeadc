package logger

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/event"
	"go.uber.org/zap"
)

// MongoCommandLogger turns MongoDB driver command events into zap log entries.
type MongoCommandLogger struct {
	ZapLogger     *zap.Logger
	SlowThreshold time.Duration
}

// NewMongoCommandLogger creates a command logger. Commands slower than slowQuerySeconds are
// logged at warn level; zero disables slow command reporting.
func NewMongoCommandLogger(zapLogger *zap.Logger, slowQuerySeconds float64) *MongoCommandLogger {
	return &MongoCommandLogger{
		ZapLogger:     zapLogger,
		SlowThreshold: time.Duration(slowQuerySeconds * float64(time.Second)),
	}
}

// Monitor returns a driver command monitor backed by this logger.
func (l *MongoCommandLogger) Monitor() *event.CommandMonitor {
	return &event.CommandMonitor{
		Started:   l.started,
		Succeeded: l.succeeded,
		Failed:    l.failed,
	}
}

// started logs the command name and its top-level keys. Values are never logged since
// inserts and filters carry user data.
func (l *MongoCommandLogger) started(ctx context.Context, evt *event.CommandStartedEvent) {
	logger := WithContext(ctx, l.ZapLogger)
	if ce := logger.Check(zap.DebugLevel, "mongo command started"); ce != nil {
		ce.Write(
			zap.String("command", evt.CommandName),
			zap.String("database", evt.DatabaseName),
			zap.Int64("mongo_request_id", evt.RequestID),
			zap.Strings("keys", commandKeys(evt.Command)),
		)
	}
}

func commandKeys(cmd bson.Raw) []string {
	elems, err := cmd.Elements()
	if err != nil {
		return nil
	}
	keys := make([]string, 0, len(elems))
	for _, e := range elems {
		keys = append(keys, e.Key())
	}
	return keys
}

func (l *MongoCommandLogger) succeeded(ctx context.Context, evt *event.CommandSucceededEvent) {
	logger := WithContext(ctx, l.ZapLogger)

	fields := []zap.Field{
		zap.String("command", evt.CommandName),
		zap.Int64("mongo_request_id", evt.RequestID),
		zap.Duration("elapsed", evt.Duration),
	}

	if l.SlowThreshold != 0 && evt.Duration > l.SlowThreshold {
		fields = append(fields, zap.Duration("threshold", l.SlowThreshold))
		logger.Warn("mongo slow command", fields...)
		return
	}

	logger.Debug("mongo command", fields...)
}

func (l *MongoCommandLogger) failed(ctx context.Context, evt *event.CommandFailedEvent) {
	WithContext(ctx, l.ZapLogger).Error("mongo command error",
		zap.String("command", evt.CommandName),
		zap.Int64("mongo_request_id", evt.RequestID),
		zap.Duration("elapsed", evt.Duration),
		zap.String("failure", evt.Failure),
	)
}
