package pagination

import (
	"sync"

	"github.com/matgraph/optimade-client/pkg/response"
)

// DefaultPageLimit is the page size used when none is configured.
const DefaultPageLimit = 10

// Target describes the next page request: either a fully-formed
// continuation link to follow verbatim, or a page offset. Link takes
// priority when both could apply.
type Target struct {
	Offset int
	Link   string
}

// State is a read-only snapshot of the tracker.
type State struct {
	Offset     int
	PageLimit  int
	NextLink   string
	TotalCount *int
}

// Tracker maintains offset/cursor state across pages. It is mutated
// only after a successful query or page advance, or by an explicit
// Reset; an in-flight request never touches it.
type Tracker struct {
	mu         sync.Mutex
	offset     int
	pageLimit  int
	nextLink   string
	totalCount *int

	// linkUsed suspends offset bookkeeping after a continuation link
	// has been followed, until the next Reset.
	linkUsed bool
}

// NewTracker creates a tracker with the given default page limit.
// A non-positive limit falls back to DefaultPageLimit.
func NewTracker(pageLimit int) *Tracker {
	if pageLimit <= 0 {
		pageLimit = DefaultPageLimit
	}
	return &Tracker{pageLimit: pageLimit}
}

// Reset clears all pagination state: offset back to 0, no continuation
// link, no total count.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.offset = 0
	t.nextLink = ""
	t.totalCount = nil
	t.linkUsed = false
}

// RecordQuery records the result of a new (non-paged) query. Total
// count comes from meta.data_returned when present; the continuation
// link from links.next. The offset stays at the value used for the
// request just completed.
func (t *Tracker) RecordQuery(meta response.Meta, links response.Links) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if meta.DataReturned != nil {
		count := *meta.DataReturned
		t.totalCount = &count
	}
	t.nextLink = links.Next
}

// RecordPageAdvance records the result of a successful page advance.
// The target is the request that just completed: an offset target
// adopts its offset, a link target suspends offset bookkeeping. The
// total count is left untouched.
func (t *Tracker) RecordPageAdvance(target Target, links response.Links) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if target.Link != "" {
		t.linkUsed = true
	} else {
		t.offset = target.Offset
	}
	t.nextLink = links.Next
}

// NextRequest derives the target for the next page. A recorded
// continuation link wins over offset arithmetic. With no link and
// offset bookkeeping suspended, pagination is exhausted and ok is
// false. pageLimit overrides the configured default when positive.
func (t *Tracker) NextRequest(pageLimit int) (Target, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.nextLink != "" {
		return Target{Link: t.nextLink}, true
	}
	if t.linkUsed {
		return Target{}, false
	}

	if pageLimit <= 0 {
		pageLimit = t.pageLimit
	}
	return Target{Offset: t.offset + pageLimit}, true
}

// State returns a snapshot of the current pagination state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := State{
		Offset:    t.offset,
		PageLimit: t.pageLimit,
		NextLink:  t.nextLink,
	}
	if t.totalCount != nil {
		count := *t.totalCount
		state.TotalCount = &count
	}
	return state
}
