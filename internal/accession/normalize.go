// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package accession matches raw sequence identifiers against the reference
// collection using an ordered chain of matching strategies.
//
// Identifiers arrive in inconsistent shapes: different databases disagree on
// case, version suffixes ("NZ_CP012345.1" vs "NZ_CP012345") and
// organizational prefixes ("NZ_CP012345" vs "CP012345"). Each strategy
// handles one shape mismatch and reports itself in the match so downstream
// views can show how an identifier was matched.
package accession

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Canonical performs Unicode NFKC normalization, trims surrounding
// whitespace and drops control characters. Applied to every identifier
// before any strategy runs, on both the query and the reference side.
func Canonical(raw string) string {
	s := norm.NFKC.String(raw)
	s = strings.TrimSpace(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return s
}

// stripVersion truncates an accession at its first '.', removing the
// version suffix. "NZ_CP012345.1" becomes "NZ_CP012345"; an accession
// without a dot is returned unchanged.
func stripVersion(acc string) string {
	if i := strings.IndexByte(acc, '.'); i >= 0 {
		return acc[:i]
	}
	return acc
}

// stripOrgPrefix removes the first matching organizational prefix from the
// query, comparing case-insensitively. Returns the stripped query and
// whether any prefix applied.
func stripOrgPrefix(query string, prefixes []string) (string, bool) {
	lower := strings.ToLower(query)
	for _, p := range prefixes {
		if p == "" {
			continue
		}
		if strings.HasPrefix(lower, strings.ToLower(p)) {
			return query[len(p):], true
		}
	}
	return query, false
}
