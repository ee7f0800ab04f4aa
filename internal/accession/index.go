// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package accession

import (
	"strings"

	"github.com/pdiddy/seqatlas/pkg/types"
)

// Index holds the reference collection keyed by the derived forms the
// strategies probe. Built once per cache load and shared read-only; on a
// key collision the earliest entry wins.
type Index struct {
	entries     []types.ReferenceEntry
	exact       map[string]*types.ReferenceEntry
	lower       map[string]*types.ReferenceEntry
	versionless map[string]*types.ReferenceEntry
}

// NewIndex builds the lookup maps for entries. Accessions are canonicalized
// and each entry records the derived keys it is reachable under.
func NewIndex(entries []types.ReferenceEntry) *Index {
	ix := &Index{
		entries:     make([]types.ReferenceEntry, len(entries)),
		exact:       make(map[string]*types.ReferenceEntry, len(entries)),
		lower:       make(map[string]*types.ReferenceEntry, len(entries)),
		versionless: make(map[string]*types.ReferenceEntry, len(entries)),
	}
	copy(ix.entries, entries)

	for i := range ix.entries {
		e := &ix.entries[i]
		e.Accession = Canonical(e.Accession)

		keys := []string{e.Accession, strings.ToLower(e.Accession), stripVersion(e.Accession)}
		e.NormalizedKeys = dedupe(keys)

		if _, ok := ix.exact[e.Accession]; !ok {
			ix.exact[e.Accession] = e
		}
		if k := strings.ToLower(e.Accession); ix.lower[k] == nil {
			ix.lower[k] = e
		}
		if k := stripVersion(e.Accession); ix.versionless[k] == nil {
			ix.versionless[k] = e
		}
	}
	return ix
}

// Get returns the entry stored under the exact canonical accession, or nil.
func (ix *Index) Get(accession string) *types.ReferenceEntry {
	return ix.exact[Canonical(accession)]
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int { return len(ix.entries) }

// Entries returns the indexed entries in load order.
func (ix *Index) Entries() []types.ReferenceEntry { return ix.entries }

func dedupe(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := keys[:0]
	for _, k := range keys {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
