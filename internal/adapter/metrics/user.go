package metrics

import (
	"context"
	"time"

	"github.com/go-kit/kit/metrics"

	"user-service/internal/usecase/user"
)

var _ user.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     user.Service
}

// MetricsMiddleware instruments the user service by tracking request count and latency.
func MetricsMiddleware(svc user.Service, counter metrics.Counter, latency metrics.Histogram) user.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) CreateUser(ctx context.Context, in user.CreateUserRequest) (*user.User, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "create_user").Add(1)
		mm.latency.With("method", "create_user").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.CreateUser(ctx, in)
}

func (mm *metricsMiddleware) ListUsers(ctx context.Context, in user.ListUsersRequest) (*user.ListUsersResponse, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "list_users").Add(1)
		mm.latency.With("method", "list_users").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.ListUsers(ctx, in)
}
