// Package filter composes OPTIMADE filter expressions from user input
// and mandatory exclusion predicates.
package filter

import "strings"

// DefaultExclusion rejects structures that cannot be materialized:
// disordered structures and structures with unknown atomic positions.
const DefaultExclusion = `NOT structure_features HAS ANY "disorder","unknown_positions"`

// Builder combines a user-supplied filter fragment with a fixed
// exclusion predicate.
type Builder struct {
	exclusion string
}

// NewBuilder creates a filter builder with the given exclusion
// predicate. An empty predicate falls back to DefaultExclusion.
func NewBuilder(exclusion string) *Builder {
	if exclusion == "" {
		exclusion = DefaultExclusion
	}
	return &Builder{exclusion: exclusion}
}

// Exclusion returns the configured exclusion predicate.
func (b *Builder) Exclusion() string {
	return b.exclusion
}

// Compose combines the user fragment with the exclusion predicate.
// A blank fragment yields the exclusion predicate alone; otherwise both
// sides are parenthesized and joined with AND.
//
// No syntax validation happens here. A malformed fragment surfaces
// later as an API-reported error from the remote service.
func (b *Builder) Compose(userFragment string) string {
	fragment := strings.TrimSpace(userFragment)
	if fragment == "" {
		return b.exclusion
	}
	return "( " + fragment + " ) AND ( " + b.exclusion + " )"
}
