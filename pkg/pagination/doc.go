// Package pagination tracks offset and continuation-link state across
// paginated OPTIMADE queries.
//
// OPTIMADE providers paginate in one of two ways: explicit page_offset
// query parameters, or an opaque links.next continuation URL. The link,
// when present, is authoritative since it may encode filters the client
// cannot reconstruct. The tracker resolves this dual mode:
//
//	tracker := pagination.NewTracker(10)
//	tracker.RecordQuery(meta, links)
//	target, ok := tracker.NextRequest(0)
//	if ok && target.Link != "" {
//		// follow the continuation link verbatim
//	}
//
// Once a continuation link has been followed, offset bookkeeping is
// suspended until the next Reset: mixing offsets into link-based
// pagination would silently drop the provider's filter context.
package pagination
