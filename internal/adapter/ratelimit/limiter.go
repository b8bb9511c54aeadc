package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// KeyPrefix namespaces every bucket stored in Redis.
const KeyPrefix = "ratelimit:tb:"

// tokenBucket refills at rate tokens per second up to capacity and takes one token per call.
// Bucket state is a hash {last_refill (ms), tokens}. Returns 1 when the call is allowed.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
local last_refill = tonumber(bucket[1]) or now
local tokens = tonumber(bucket[2]) or capacity

local elapsed = math.max(0, now - last_refill) / 1000
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
end

redis.call('HSET', key, 'last_refill', now, 'tokens', tokens)
redis.call('EXPIRE', key, ttl)
return allowed
`)

// Config holds configuration for the rate limiter.
type Config struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstCapacity     int
}

// Limiter is a distributed token bucket kept in Redis so every replica shares the same budget.
type Limiter struct {
	client redis.Scripter
	cfg    Config
	log    *zap.Logger
	now    func() time.Time
}

// New creates a new Limiter. client may be nil when cfg.Enabled is false.
func New(client redis.Scripter, cfg Config, log *zap.Logger) *Limiter {
	return &Limiter{
		client: client,
		cfg:    cfg,
		log:    log,
		now:    time.Now,
	}
}

// Enabled reports whether requests are actually being limited.
func (l *Limiter) Enabled() bool {
	return l != nil && l.cfg.Enabled && l.client != nil
}

// Config returns the limiter configuration.
func (l *Limiter) Config() Config {
	return l.cfg
}

// Allow takes one token from the bucket identified by key.
// Callers decide what to do on error; the HTTP middleware fails open.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}

	allowed, err := tokenBucket.Run(ctx, l.client, []string{KeyPrefix + key},
		l.cfg.RequestsPerSecond,
		l.cfg.BurstCapacity,
		l.now().UnixMilli(),
		l.ttlSeconds(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("rate limiter: %w", err)
	}

	if allowed == 0 {
		l.log.Debug("rate limit exceeded", zap.String("key", key))
	}
	return allowed == 1, nil
}

// ttlSeconds is how long an idle bucket lives: long enough to refill completely.
func (l *Limiter) ttlSeconds() int {
	if l.cfg.RequestsPerSecond <= 0 {
		return 60
	}
	return int(math.Ceil(float64(l.cfg.BurstCapacity)/l.cfg.RequestsPerSecond)) + 1
}
