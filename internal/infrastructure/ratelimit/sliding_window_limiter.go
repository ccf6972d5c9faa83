// Package ratelimit implements distributed sliding-window rate limiting on
// the shared store, with a local token-bucket backstop for store outages.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/turtacn/authcore/internal/config"
	"github.com/turtacn/authcore/internal/domain/service"
	"github.com/turtacn/authcore/pkg/constants"
	"github.com/turtacn/authcore/pkg/errors"
	"github.com/turtacn/authcore/pkg/logger"
)

// slidingWindowScript purges aged entries, counts the window and records the
// attempt in one atomic execution. Timestamps are zset scores in
// microseconds; members carry a random suffix so concurrent attempts in the
// same microsecond are distinct.
//
// Returns {allowed, count, oldest_score}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
local count = redis.call('ZCARD', key)
if count >= max then
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  return {0, count, tonumber(oldest[2])}
end
redis.call('ZADD', key, now, ARGV[5])
redis.call('EXPIRE', key, ttl)
return {1, count + 1, 0}
`)

// SlidingWindowLimiter implements service.RateLimitService. Every node sees
// the same zset, so limits hold across the whole deployment.
type SlidingWindowLimiter struct {
	client   redis.UniversalClient
	settings func() config.RateLimitConfig
	fallback *BucketPool
	log      logger.Logger

	// now is injectable so tests control window arithmetic.
	now func() time.Time
}

// NewSlidingWindowLimiter creates the limiter. Settings are re-read through
// the provider on every Check so rule reloads take effect without a restart.
// The fallback pool is consulted only when the store is unreachable and the
// limiter is configured to fail open.
func NewSlidingWindowLimiter(client redis.UniversalClient, settings func() config.RateLimitConfig, log logger.Logger) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		client:   client,
		settings: settings,
		fallback: NewBucketPool(10 * time.Minute),
		log:      log.WithComponent("rate_limiter"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func limitKey(operation, identifier string) string {
	return constants.KeyPrefixRateLimit + operation + ":" + identifier
}

// Check records one attempt and reports the decision.
func (l *SlidingWindowLimiter) Check(ctx context.Context, identifier, operation string) (*service.Decision, error) {
	cfg := l.settings()
	rule := cfg.RuleFor(operation)
	now := l.now()

	if !cfg.Enabled {
		return &service.Decision{
			Allowed:   true,
			Limit:     rule.Max,
			Remaining: rule.Max,
			ResetAt:   now.Add(rule.Window),
		}, nil
	}

	nowMicro := now.UnixMicro()
	windowMicro := rule.Window.Microseconds()
	ttl := int64((rule.Window + constants.RateLimitWindowBuffer).Seconds())
	member := fmt.Sprintf("%d-%s", nowMicro, uuid.New().String())

	raw, err := slidingWindowScript.Run(ctx, l.client,
		[]string{limitKey(operation, identifier)},
		nowMicro, windowMicro, rule.Max, ttl, member,
	).Int64Slice()
	if err != nil {
		return l.checkFallback(ctx, identifier, operation, cfg.FailOpen, rule, now, err)
	}
	if len(raw) != 3 {
		return nil, errors.ErrInternal(fmt.Sprintf("rate limit script returned %d values", len(raw)))
	}

	allowed := raw[0] == 1
	count := int(raw[1])
	oldest := raw[2]

	decision := &service.Decision{
		Allowed: allowed,
		Limit:   rule.Max,
	}
	if allowed {
		decision.Remaining = rule.Max - count
		if decision.Remaining < 0 {
			decision.Remaining = 0
		}
		decision.ResetAt = now.Add(rule.Window)
		return decision, nil
	}

	// The window frees a slot when its oldest entry ages out.
	oldestAt := time.UnixMicro(oldest).UTC()
	decision.Remaining = 0
	decision.ResetAt = oldestAt.Add(rule.Window)
	decision.RetryAfter = decision.ResetAt.Sub(now)
	if decision.RetryAfter < 0 {
		decision.RetryAfter = 0
	}

	l.log.Warn(ctx, "rate limit exceeded",
		logger.String("operation", operation),
		logger.String("identifier", identifier),
		logger.Int("limit", rule.Max),
		logger.Duration("retry_after", decision.RetryAfter),
	)
	return decision, nil
}

// Reset clears the window for the identifier.
func (l *SlidingWindowLimiter) Reset(ctx context.Context, identifier, operation string) error {
	if err := l.client.Del(ctx, limitKey(operation, identifier)).Err(); err != nil {
		return errors.ErrStoreUnavailable(err)
	}
	return nil
}

// checkFallback applies the configured posture when the store is down.
// Failing open still runs a per-node token bucket, so a store outage does not
// remove limiting entirely.
func (l *SlidingWindowLimiter) checkFallback(ctx context.Context, identifier, operation string, failOpen bool, rule config.RateLimitRule, now time.Time, cause error) (*service.Decision, error) {
	if !failOpen {
		return nil, errors.ErrStoreUnavailable(cause)
	}

	l.log.Warn(ctx, "store unreachable, using local fallback limiter",
		logger.String("operation", operation),
		logger.Err(cause),
	)

	allowed := l.fallback.Allow(limitKey(operation, identifier), rule.Max, rule.Window)
	decision := &service.Decision{
		Allowed: allowed,
		Limit:   rule.Max,
		ResetAt: now.Add(rule.Window),
	}
	if !allowed {
		decision.RetryAfter = rule.Window
	}
	return decision, nil
}
