package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Key identifies a cached response by its request URL.
type Key struct {
	host  string
	path  string
	query url.Values
}

// NewKey derives a cache key from a fully-formed request URL.
func NewKey(rawURL string) (Key, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Key{}, fmt.Errorf("parse cache key URL: %w", err)
	}
	return Key{
		host:  u.Host,
		path:  strings.Trim(u.Path, "/"),
		query: u.Query(),
	}, nil
}

// String generates a deterministic cache key string.
// Format: optimade:host:path:param1=val1:param2=val2
//
// Example:
//
//	optimade:example.org:v1/structures:filter=nelements=2:page_limit=10
func (k Key) String() string {
	parts := []string{"optimade"}

	if k.host != "" {
		parts = append(parts, k.host)
	}
	if k.path != "" {
		parts = append(parts, k.path)
	}

	// Query params sorted for determinism.
	if len(k.query) > 0 {
		queryKeys := make([]string, 0, len(k.query))
		for key := range k.query {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.query.Get(key)))
		}
	}

	return strings.Join(parts, ":")
}
