// Package ratelimit gates outbound requests to OPTIMADE providers that
// have asked for a cooldown via 429 Too Many Requests.
package ratelimit

import (
	"net/http"
	"strconv"
	"time"
)

const (
	// DefaultCooldown applies when a 429 carries no usable Retry-After.
	DefaultCooldown = 10 * time.Second

	// MaxCooldown caps provider-requested cooldowns.
	MaxCooldown = 5 * time.Minute

	// cooldownKeyPrefix namespaces cooldown keys in Redis.
	cooldownKeyPrefix = "optimade:cooldown:"
)

// cooldownKey returns the Redis key holding a host's cooldown.
func cooldownKey(host string) string {
	return cooldownKeyPrefix + host
}

// ParseRetryAfter reads the Retry-After header: either delta-seconds or
// an HTTP date. Missing or malformed values yield DefaultCooldown;
// values above MaxCooldown are capped.
func ParseRetryAfter(headers http.Header) time.Duration {
	value := headers.Get("Retry-After")
	if value == "" {
		return DefaultCooldown
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds <= 0 {
			return DefaultCooldown
		}
		return capCooldown(time.Duration(seconds) * time.Second)
	}

	if at, err := http.ParseTime(value); err == nil {
		wait := time.Until(at)
		if wait <= 0 {
			return DefaultCooldown
		}
		return capCooldown(wait)
	}

	return DefaultCooldown
}

func capCooldown(d time.Duration) time.Duration {
	if d > MaxCooldown {
		return MaxCooldown
	}
	return d
}
