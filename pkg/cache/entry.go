package cache

import (
	"net/http"
	"time"
)

// DefaultTTL is the fallback lifetime when the provider sends no
// usable Expires header.
const DefaultTTL = 5 * time.Minute

// Entry is a cached OPTIMADE response body.
type Entry struct {
	// Body is the raw JSON response body.
	Body []byte `json:"body"`

	// StatusCode is the HTTP status of the cached response.
	StatusCode int `json:"status_code"`

	// Expires is when the entry becomes stale.
	Expires time.Time `json:"expires"`

	// CachedAt is when the entry was stored.
	CachedAt time.Time `json:"cached_at"`
}

// NewEntry builds an entry from a response body and headers, deriving
// the expiry from the Expires header with DefaultTTL as fallback.
func NewEntry(body []byte, statusCode int, headers http.Header) *Entry {
	return &Entry{
		Body:       body,
		StatusCode: statusCode,
		Expires:    parseExpires(headers),
		CachedAt:   time.Now(),
	}
}

// IsExpired returns true if the entry has passed its expiry.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiry, or 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}

// parseExpires reads the Expires header. Missing, malformed, or
// already-past values fall back to a default or minimal TTL.
func parseExpires(headers http.Header) time.Time {
	expiresStr := headers.Get("Expires")
	if expiresStr == "" {
		return time.Now().Add(DefaultTTL)
	}

	expires, err := http.ParseTime(expiresStr)
	if err != nil {
		return time.Now().Add(DefaultTTL)
	}

	if expires.Before(time.Now()) {
		return time.Now()
	}

	return expires
}
