// Package query executes OPTIMADE search requests, with optional
// response caching and provider throttling.
package query

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/matgraph/optimade-client/pkg/cache"
	"github.com/matgraph/optimade-client/pkg/ratelimit"
	"github.com/matgraph/optimade-client/pkg/response"
)

// Prometheus metrics for query execution.
var (
	optimadeQueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optimade_queries_total",
		Help: "Total OPTIMADE queries by host and status",
	}, []string{"host", "status"})

	optimadeQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "optimade_query_duration_seconds",
		Help:    "OPTIMADE query duration in seconds by host",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"host"})
)

// DefaultTimeout bounds a single query. Expiry surfaces as a
// transport-failure marker, never as a raised error.
const DefaultTimeout = 30 * time.Second

// Config holds the executor configuration.
type Config struct {
	// UserAgent identifies this client to providers.
	UserAgent string

	// Timeout per query (default: DefaultTimeout).
	Timeout time.Duration

	// Redis enables response caching and provider throttling when
	// set. A nil client disables both.
	Redis *redis.Client
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		UserAgent: "optimade-client/0.1.0",
		Timeout:   DefaultTimeout,
	}
}

// Executor performs OPTIMADE HTTP queries. It never raises transport
// or decode problems to the caller: every failure mode is folded into
// the returned raw response for classification.
type Executor struct {
	httpClient *http.Client
	cache      *cache.Manager
	throttle   *ratelimit.Throttle
	config     Config
	logger     zerolog.Logger
}

// New creates a new query executor.
func New(cfg Config) *Executor {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultConfig().UserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	logger := log.With().Str("component", "query-executor").Logger()

	e := &Executor{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logger,
	}

	if cfg.Redis != nil {
		e.cache = cache.NewManager(cfg.Redis)
		e.throttle = ratelimit.NewThrottle(cfg.Redis, logger)
	}

	return e
}

// Execute performs a single OPTIMADE query. At most one outbound GET
// happens per call (zero on a cache hit); there are no retries, a
// caller may resubmit after inspecting the classified outcome.
func (e *Executor) Execute(ctx context.Context, req Request) response.Raw {
	requestURL, err := req.URL()
	if err != nil {
		return response.Raw{TransportErr: err.Error()}
	}

	host := hostOf(requestURL)

	startTime := time.Now()
	defer func() {
		optimadeQueryDuration.WithLabelValues(host).Observe(time.Since(startTime).Seconds())
	}()

	if raw, ok := e.cachedResponse(ctx, requestURL); ok {
		e.logger.Debug().Str("host", host).Bool("cache_hit", true).Msg("Serving query from cache")
		return raw
	}

	if e.throttle != nil {
		allowed, wait, err := e.throttle.ShouldAllowRequest(ctx, host)
		if err != nil {
			// Throttle state unavailable - proceed rather than fail the query.
			e.logger.Warn().Err(err).Str("host", host).Msg("Throttle check failed")
		} else if !allowed {
			optimadeQueriesTotal.WithLabelValues(host, "throttled").Inc()
			return response.Raw{
				TransportErr: fmt.Sprintf("provider %s in cooldown, retry in %s", host, wait.Round(time.Second)),
			}
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return response.Raw{TransportErr: err.Error()}
	}
	httpReq.Header.Set("User-Agent", e.config.UserAgent)
	httpReq.Header.Set("Accept", "application/json")

	e.logger.Debug().
		Str("host", host).
		Str("url", requestURL).
		Msg("Executing OPTIMADE query")

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		e.logger.Error().Err(err).Str("host", host).Msg("Query request failed")
		optimadeQueriesTotal.WithLabelValues(host, "network_error").Inc()
		return response.Raw{TransportErr: err.Error()}
	}
	defer resp.Body.Close()

	optimadeQueriesTotal.WithLabelValues(host, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if e.throttle != nil {
		if err := e.throttle.RecordResponse(ctx, host, resp.StatusCode, resp.Header); err != nil {
			e.logger.Warn().Err(err).Str("host", host).Msg("Failed to record throttle state")
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		e.logger.Error().Err(err).Str("host", host).Msg("Failed to read response body")
		return response.Raw{TransportErr: err.Error()}
	}

	raw := decodeBody(body)
	if raw.DecodeFailed {
		e.logger.Warn().
			Str("host", host).
			Int("status_code", resp.StatusCode).
			Msg("Response body is not valid JSON")
		return raw
	}

	e.storeResponse(ctx, requestURL, resp, body, raw.Body)

	return raw
}

// decodeBody parses a response body. Undecodable bodies become the
// decode-failure marker rather than an error.
func decodeBody(body []byte) response.Raw {
	var decoded response.Body
	if err := json.Unmarshal(body, &decoded); err != nil {
		return response.Raw{DecodeFailed: true}
	}
	return response.Raw{Body: &decoded}
}

// cachedResponse returns a previously cached raw response for the URL.
func (e *Executor) cachedResponse(ctx context.Context, requestURL string) (response.Raw, bool) {
	if e.cache == nil {
		return response.Raw{}, false
	}

	key, err := cache.NewKey(requestURL)
	if err != nil {
		return response.Raw{}, false
	}

	entry, err := e.cache.Get(ctx, key)
	if err != nil {
		if err != cache.ErrCacheMiss {
			e.logger.Warn().Err(err).Msg("Cache get error")
		}
		return response.Raw{}, false
	}

	raw := decodeBody(entry.Body)
	if raw.DecodeFailed {
		// Corrupted entry; refetch.
		return response.Raw{}, false
	}
	return raw, true
}

// storeResponse caches a clean 200 response body. Responses carrying
// API errors are never cached.
func (e *Executor) storeResponse(ctx context.Context, requestURL string, resp *http.Response, body []byte, decoded *response.Body) {
	if e.cache == nil || resp.StatusCode != http.StatusOK || len(decoded.Errors) > 0 {
		return
	}

	key, err := cache.NewKey(requestURL)
	if err != nil {
		return
	}

	entry := cache.NewEntry(body, resp.StatusCode, resp.Header)
	if err := e.cache.Set(ctx, key, entry); err != nil {
		e.logger.Warn().Err(err).Msg("Failed to cache response")
		return
	}

	e.logger.Debug().
		Dur("ttl", entry.TTL()).
		Msg("Cached response")
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (e *Executor) SetHTTPClient(client *http.Client) {
	e.httpClient = client
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "unknown"
	}
	return u.Host
}
