package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for provider throttling.
var (
	optimadeCooldownsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optimade_provider_cooldowns_total",
		Help: "Total number of cooldowns recorded from 429 responses by host",
	}, []string{"host"})

	optimadeThrottleBlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optimade_throttle_blocks_total",
		Help: "Total number of requests blocked by an active provider cooldown",
	}, []string{"host"})
)

// Throttle tracks per-host cooldowns requested by providers and gates
// outbound requests. State lives in Redis so cooperating processes
// honor the same cooldown.
type Throttle struct {
	redis  *redis.Client
	logger zerolog.Logger
}

// NewThrottle creates a new provider throttle.
func NewThrottle(redisClient *redis.Client, logger zerolog.Logger) *Throttle {
	return &Throttle{
		redis:  redisClient,
		logger: logger,
	}
}

// RecordResponse inspects a provider response and records a cooldown
// when the provider returned 429 Too Many Requests. Other statuses are
// ignored.
func (t *Throttle) RecordResponse(ctx context.Context, host string, statusCode int, headers http.Header) error {
	if statusCode != http.StatusTooManyRequests {
		return nil
	}

	cooldown := ParseRetryAfter(headers)

	if err := t.redis.Set(ctx, cooldownKey(host), time.Now().Add(cooldown).Unix(), cooldown).Err(); err != nil {
		return fmt.Errorf("store cooldown in redis: %w", err)
	}

	optimadeCooldownsTotal.WithLabelValues(host).Inc()

	t.logger.Warn().
		Str("host", host).
		Dur("cooldown", cooldown).
		Msg("Provider requested cooldown - throttling host")

	return nil
}

// ShouldAllowRequest checks whether a request to host is allowed.
// Returns false and the remaining wait when a cooldown is active.
func (t *Throttle) ShouldAllowRequest(ctx context.Context, host string) (bool, time.Duration, error) {
	wait, err := t.redis.PTTL(ctx, cooldownKey(host)).Result()
	if err != nil {
		return false, 0, fmt.Errorf("get cooldown state: %w", err)
	}

	// PTTL reports a negative duration when the key is missing or has
	// no expiry.
	if wait <= 0 {
		return true, 0, nil
	}

	optimadeThrottleBlocksTotal.WithLabelValues(host).Inc()

	t.logger.Warn().
		Str("host", host).
		Dur("wait", wait).
		Msg("Request blocked by active provider cooldown")

	return false, wait, nil
}

// Clear removes any active cooldown for host.
func (t *Throttle) Clear(ctx context.Context, host string) error {
	if err := t.redis.Del(ctx, cooldownKey(host)).Err(); err != nil {
		return fmt.Errorf("clear cooldown: %w", err)
	}
	return nil
}
