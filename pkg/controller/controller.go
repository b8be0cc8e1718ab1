// Package controller orchestrates OPTIMADE queries: filter
// composition, execution, outcome classification, and resumable
// pagination over an otherwise stateless request/response API.
package controller

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/matgraph/optimade-client/pkg/filter"
	"github.com/matgraph/optimade-client/pkg/pagination"
	"github.com/matgraph/optimade-client/pkg/query"
	"github.com/matgraph/optimade-client/pkg/response"
	"github.com/matgraph/optimade-client/pkg/structure"
)

// State is the controller's lifecycle state. The controller is
// long-lived and cycles between the three states for the life of the
// session; there is no terminal state.
type State string

const (
	// StateIdle accepts new commands.
	StateIdle State = "idle"

	// StateInFlight has a query outstanding; further commands are
	// rejected until it completes.
	StateInFlight State = "in_flight"

	// StateErrorDisplayed holds the last command's error outcome. A
	// new submit clears it.
	StateErrorDisplayed State = "error_displayed"
)

// Sentinel errors returned by the controller.
var (
	// ErrInFlight rejects a command issued while a query is
	// outstanding. This signals a caller bug, not a data error:
	// callers must freeze their controls during a request.
	ErrInFlight = errors.New("query already in flight")

	// ErrNoQuery rejects a page advance before any successful query.
	ErrNoQuery = errors.New("no query to advance")
)

// Executor performs a single query. *query.Executor satisfies this;
// tests substitute stubs.
type Executor interface {
	Execute(ctx context.Context, req query.Request) response.Raw
}

// Config holds the controller configuration. All policy lives here;
// there are no hidden globals.
type Config struct {
	// Exclusion is the mandatory exclusion predicate combined into
	// every filter (default: filter.DefaultExclusion).
	Exclusion string

	// PageLimit is the default page size (default: 10).
	PageLimit int

	// Strict turns API-reported errors into returned fatal errors.
	// Diagnostic mode for test/debug harnesses only.
	Strict bool
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		Exclusion: filter.DefaultExclusion,
		PageLimit: pagination.DefaultPageLimit,
	}
}

// Result is the normalized result of a command: the classified outcome
// plus, on success, the materialized structures in response order.
type Result struct {
	Outcome    response.Outcome
	Structures []*structure.Structure
}

// Controller serializes queries against a provider. At most one query
// is in flight at a time; state transitions are atomic from the
// caller's perspective.
type Controller struct {
	mu      sync.Mutex
	state   State
	tracker *pagination.Tracker

	executor Executor
	filters  *filter.Builder
	config   Config
	logger   zerolog.Logger

	// Query context captured at submit, reused for offset-based
	// page advances.
	baseURL    string
	lastFilter string
	pageLimit  int
	fields     []string
}

// New creates a controller around the given executor.
func New(executor Executor, cfg Config) *Controller {
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = pagination.DefaultPageLimit
	}

	return &Controller{
		state:     StateIdle,
		tracker:   pagination.NewTracker(cfg.PageLimit),
		executor:  executor,
		filters:   filter.NewBuilder(cfg.Exclusion),
		config:    cfg,
		logger:    log.With().Str("component", "query-controller").Logger(),
		pageLimit: cfg.PageLimit,
	}
}

// SubmitQuery runs a new query: composes the filter, resets pagination,
// and requests the first page at offset 0. pageLimit falls back to the
// configured default when non-positive; fields optionally projects the
// response attributes.
//
// Returns ErrInFlight while a query is outstanding, a
// *structure.BadResourceError when a returned record cannot be
// displayed, and a *response.StrictModeError in strict mode for
// API-reported errors.
func (c *Controller) SubmitQuery(ctx context.Context, baseURL, userFragment string, pageLimit int, fields []string) (Result, error) {
	c.mu.Lock()
	if c.state == StateInFlight {
		c.mu.Unlock()
		return Result{}, ErrInFlight
	}
	if pageLimit <= 0 {
		pageLimit = c.config.PageLimit
	}

	c.state = StateInFlight
	c.tracker.Reset()
	c.baseURL = baseURL
	c.lastFilter = c.filters.Compose(userFragment)
	c.pageLimit = pageLimit
	c.fields = fields

	req := query.Request{
		BaseURL: baseURL,
		Filter:  c.lastFilter,
		Limit:   pageLimit,
		Offset:  0,
		Fields:  fields,
	}
	c.mu.Unlock()

	c.logger.Debug().
		Str("filter", req.Filter).
		Int("page_limit", req.Limit).
		Msg("Submitting query")

	raw := c.executor.Execute(ctx, req)

	return c.finish(ctx, raw, func(outcome response.Outcome) {
		c.tracker.RecordQuery(outcome.Meta, outcome.Links)
	})
}

// AdvancePage requests a further page of the current query. The target
// is either an explicit offset or a continuation link, typically
// mirroring a prior NextPageTarget result. Pagination totals are left
// untouched.
func (c *Controller) AdvancePage(ctx context.Context, target pagination.Target) (Result, error) {
	c.mu.Lock()
	if c.state == StateInFlight {
		c.mu.Unlock()
		return Result{}, ErrInFlight
	}
	if c.baseURL == "" && target.Link == "" {
		c.mu.Unlock()
		return Result{}, ErrNoQuery
	}

	c.state = StateInFlight

	var req query.Request
	if target.Link != "" {
		req = query.Request{DirectLink: target.Link}
	} else {
		req = query.Request{
			BaseURL: c.baseURL,
			Filter:  c.lastFilter,
			Limit:   c.pageLimit,
			Offset:  target.Offset,
			Fields:  c.fields,
		}
	}
	c.mu.Unlock()

	c.logger.Debug().
		Int("offset", target.Offset).
		Str("link", target.Link).
		Msg("Advancing page")

	raw := c.executor.Execute(ctx, req)

	return c.finish(ctx, raw, func(outcome response.Outcome) {
		c.tracker.RecordPageAdvance(target, outcome.Links)
	})
}

// finish classifies the raw response and applies the state transition.
// A cancelled context discards the result: no tracker mutation, no
// outcome, guarding against a stale response overwriting the state of
// a newer query.
func (c *Controller) finish(ctx context.Context, raw response.Raw, record func(response.Outcome)) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		c.state = StateIdle
		return Result{}, err
	}

	outcome, err := response.Classify(raw, c.config.Strict)
	if err != nil {
		c.state = StateErrorDisplayed
		return Result{}, err
	}

	if outcome.Kind != response.KindSuccess {
		c.logger.Warn().
			Str("outcome", string(outcome.Kind)).
			Msg("Query did not succeed")
		c.state = StateErrorDisplayed
		return Result{Outcome: outcome}, nil
	}

	structures, err := materialize(outcome.Records)
	if err != nil {
		c.state = StateErrorDisplayed
		return Result{}, err
	}

	record(outcome)
	c.state = StateIdle

	c.logger.Info().
		Int("records", len(outcome.Records)).
		Msg("Query succeeded")

	return Result{Outcome: outcome, Structures: structures}, nil
}

// materialize converts records into structures, aborting on the first
// record that cannot be displayed.
func materialize(records []response.Record) ([]*structure.Structure, error) {
	structures := make([]*structure.Structure, 0, len(records))
	for _, rec := range records {
		s, err := structure.New(rec)
		if err != nil {
			return nil, err
		}
		structures = append(structures, s)
	}
	return structures, nil
}

// NextPageTarget derives the target for the next page from the
// tracker. ok is false when pagination is exhausted.
func (c *Controller) NextPageTarget() (pagination.Target, bool) {
	c.mu.Lock()
	limit := c.pageLimit
	c.mu.Unlock()
	return c.tracker.NextRequest(limit)
}

// CurrentPagination returns a read-only snapshot of pagination state.
func (c *Controller) CurrentPagination() pagination.State {
	return c.tracker.State()
}

// State returns the controller's current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Reset returns the controller to a pristine Idle state. Rejected
// while a query is in flight.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateInFlight {
		return ErrInFlight
	}

	c.state = StateIdle
	c.tracker.Reset()
	c.baseURL = ""
	c.lastFilter = ""
	c.fields = nil
	c.pageLimit = c.config.PageLimit

	return nil
}
