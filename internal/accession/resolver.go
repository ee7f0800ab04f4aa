// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package accession

import (
	"strings"

	"github.com/pdiddy/seqatlas/pkg/types"
)

// Match pairs a reference entry with the strategy that found it.
type Match struct {
	Entry    *types.ReferenceEntry
	Strategy types.MatchStrategy
}

// Resolution is one ResolveAll outcome. Err is a NotFoundError when no
// strategy matched; Match is zero in that case.
type Resolution struct {
	Query string
	Match
	Err error
}

// Resolver runs the strategy chain against a prebuilt index. Strategies are
// ordered most- to least-strict and the first hit wins:
//
//  1. exact            verbatim key
//  2. case-insensitive lowercased both sides
//  3. version-stripped both sides truncated at the first '.', case-sensitive
//  4. prefix-stripped  organizational prefix removed from the query only,
//                      then case-insensitive
//  5. substring        containment either direction; opt-in, low confidence
//
// The prefix strip applies to the query side only: a bare query never
// matches a prefixed reference entry through strategies 1-4.
type Resolver struct {
	index          *Index
	stripPrefixes  []string
	allowSubstring bool
}

// NewResolver builds a resolver over ix using cfg's prefix list and
// substring opt-in.
func NewResolver(ix *Index, cfg types.ResolverConfig) *Resolver {
	prefixes := cfg.StripPrefixes
	if prefixes == nil {
		prefixes = []string{"NZ_"}
	}
	return &Resolver{
		index:          ix,
		stripPrefixes:  prefixes,
		allowSubstring: cfg.AllowSubstring,
	}
}

// Resolve matches one raw identifier. Misses return a NotFoundError; the
// caller decides whether that is fatal or just an unplaced point.
func (r *Resolver) Resolve(raw string) (Match, error) {
	query := Canonical(raw)
	if query == "" {
		return Match{}, &types.NotFoundError{Identifier: raw}
	}

	if e := r.index.exact[query]; e != nil {
		return Match{Entry: e, Strategy: types.MatchExact}, nil
	}

	if e := r.index.lower[strings.ToLower(query)]; e != nil {
		return Match{Entry: e, Strategy: types.MatchCaseInsensitive}, nil
	}

	if e := r.index.versionless[stripVersion(query)]; e != nil {
		return Match{Entry: e, Strategy: types.MatchVersionStripped}, nil
	}

	if stripped, ok := stripOrgPrefix(query, r.stripPrefixes); ok {
		if e := r.index.lower[strings.ToLower(stripped)]; e != nil {
			return Match{Entry: e, Strategy: types.MatchPrefixStripped}, nil
		}
	}

	if r.allowSubstring {
		if e := r.substringScan(query); e != nil {
			return Match{Entry: e, Strategy: types.MatchSubstring}, nil
		}
	}

	return Match{}, &types.NotFoundError{Identifier: raw}
}

// ResolveAll resolves a batch against the shared index. Equivalent to
// calling Resolve per identifier, in order.
func (r *Resolver) ResolveAll(raws []string) []Resolution {
	out := make([]Resolution, 0, len(raws))
	for _, raw := range raws {
		m, err := r.Resolve(raw)
		out = append(out, Resolution{Query: raw, Match: m, Err: err})
	}
	return out
}

// substringScan walks entries in load order and returns the first whose
// lowercased accession contains the lowercased query or vice versa.
func (r *Resolver) substringScan(query string) *types.ReferenceEntry {
	q := strings.ToLower(query)
	for i := range r.index.entries {
		e := &r.index.entries[i]
		acc := strings.ToLower(e.Accession)
		if strings.Contains(acc, q) || strings.Contains(q, acc) {
			return e
		}
	}
	return nil
}
