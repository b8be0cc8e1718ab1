// Package testutil provides testing utilities for the OPTIMADE client.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock provider endpoint.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockProvider is a configurable mock OPTIMADE provider for testing.
type MockProvider struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount int
	LastQuery    url.Values
	LastHeader   http.Header
}

// NewMockProvider creates a new mock provider server.
func NewMockProvider() *MockProvider {
	mock := &MockProvider{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastQuery = r.URL.Query()
		mock.LastHeader = r.Header.Clone()
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL, usable as an OPTIMADE base URL.
func (m *MockProvider) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockProvider) Close() {
	m.server.Close()
}

// Reset clears all tracking state.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastQuery = nil
	m.LastHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockProvider) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a canned response for a path.
func (m *MockProvider) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/vnd.api+json")
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetStructuresResponse configures the /structures endpoint response.
func (m *MockProvider) SetStructuresResponse(resp MockResponse) {
	m.SetResponse("/structures", resp)
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockProvider) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// LastFilter returns the filter parameter of the most recent request.
func (m *MockProvider) LastFilter() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.LastQuery == nil {
		return ""
	}
	return m.LastQuery.Get("filter")
}

// defaultHandler serves an empty but valid structures response.
func (m *MockProvider) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.api+json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"data": [], "meta": {"api_version": "1.0.0", "data_returned": 0}}`))
}

// StructuresBody builds a structures response body from formula/id
// pairs. totalCount sets meta.data_returned; next sets links.next
// (empty for null).
func StructuresBody(entries [][2]string, totalCount int, next string) string {
	records := make([]string, 0, len(entries))
	for _, e := range entries {
		records = append(records, fmt.Sprintf(
			`{"id": %q, "attributes": {"chemical_formula_descriptive": %q}}`, e[0], e[1]))
	}

	nextJSON := "null"
	if next != "" {
		nextJSON = fmt.Sprintf("%q", next)
	}

	return fmt.Sprintf(
		`{"data": [%s], "meta": {"api_version": "1.0.0", "data_returned": %d}, "links": {"next": %s}}`,
		strings.Join(records, ", "), totalCount, nextJSON)
}

// NewStructuresResponse creates a 200 OK structures page.
func NewStructuresResponse(entries [][2]string, totalCount int, next string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       StructuresBody(entries, totalCount, next),
		Headers: map[string]string{
			"Content-Type": "application/vnd.api+json",
		},
	}
}

// NewErrorResponse creates a response carrying an OPTIMADE errors array.
func NewErrorResponse(statusCode int, title, detail string) MockResponse {
	return MockResponse{
		StatusCode: statusCode,
		Body: fmt.Sprintf(
			`{"errors": [{"title": %q, "detail": %q, "status": "%d"}]}`,
			title, detail, statusCode),
		Headers: map[string]string{
			"Content-Type": "application/vnd.api+json",
		},
	}
}

// NewUnsupportedVersionResponse creates a valid body advertising an
// API version the client does not support.
func NewUnsupportedVersionResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"data": [], "meta": {"api_version": "0.10.1", "data_returned": 0}}`,
		Headers: map[string]string{
			"Content-Type": "application/vnd.api+json",
		},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response with a
// Retry-After header.
func NewRateLimitResponse(retryAfterSeconds int) MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"errors": [{"title": "Too Many Requests", "status": "429"}]}`,
		Headers: map[string]string{
			"Retry-After":  fmt.Sprintf("%d", retryAfterSeconds),
			"Content-Type": "application/vnd.api+json",
		},
	}
}

// NewMalformedResponse creates a 200 OK response with a body that is
// not valid JSON.
func NewMalformedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `<html><body>Service temporarily unavailable</body></html>`,
		Headers: map[string]string{
			"Content-Type": "text/html",
		},
	}
}

// NewLinksResponse creates an index endpoint response listing child
// provider databases.
func NewLinksResponse(entries [][3]string) MockResponse {
	records := make([]string, 0, len(entries))
	for _, e := range entries {
		records = append(records, fmt.Sprintf(
			`{"id": %q, "attributes": {"name": %q, "base_url": %q, "link_type": "child"}}`,
			e[0], e[1], e[2]))
	}
	return MockResponse{
		StatusCode: http.StatusOK,
		Body: fmt.Sprintf(
			`{"data": [%s], "meta": {"api_version": "1.0.0"}}`, strings.Join(records, ", ")),
		Headers: map[string]string{
			"Content-Type": "application/vnd.api+json",
		},
	}
}
