// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package highlight keeps point emphasis in sync across views.
//
// Views register as adapters; turning an accession on or off in one view
// fans out to every registered adapter. The hub tracks boolean state per
// accession, so repeated ons and offs collapse to single transitions and a
// clear restores every view regardless of how the highlights accumulated.
package highlight

import (
	"sort"
	"sync"

	"github.com/pdiddy/seqatlas/pkg/types"
)

// Adapter receives highlight transitions. Implemented by the view types.
type Adapter interface {
	Name() string
	ApplyHighlight(accession string, on bool)
}

// Hub is the synchronizer. Safe for concurrent use; adapter callbacks run
// outside the hub lock.
type Hub struct {
	mu       sync.Mutex
	adapters []Adapter
	lit      map[string]bool
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{lit: make(map[string]bool)}
}

// Subscribe registers an adapter and replays the currently lit accessions
// to it so a late subscriber starts consistent with the others.
func (h *Hub) Subscribe(a Adapter) {
	h.mu.Lock()
	h.adapters = append(h.adapters, a)
	lit := h.litLocked()
	h.mu.Unlock()

	for _, acc := range lit {
		a.ApplyHighlight(acc, true)
	}
}

// Set turns the highlight for accession on or off everywhere. Transitions
// that would not change state are suppressed, and the user's own sequence
// is never highlighted.
func (h *Hub) Set(accession string, on bool) {
	if accession == "" || accession == types.SelfAccession {
		return
	}

	h.mu.Lock()
	if h.lit[accession] == on {
		h.mu.Unlock()
		return
	}
	if on {
		h.lit[accession] = true
	} else {
		delete(h.lit, accession)
	}
	adapters := make([]Adapter, len(h.adapters))
	copy(adapters, h.adapters)
	h.mu.Unlock()

	for _, a := range adapters {
		a.ApplyHighlight(accession, on)
	}
}

// Clear turns off every lit accession across all adapters.
func (h *Hub) Clear() {
	h.mu.Lock()
	lit := h.litLocked()
	h.lit = make(map[string]bool)
	adapters := make([]Adapter, len(h.adapters))
	copy(adapters, h.adapters)
	h.mu.Unlock()

	for _, acc := range lit {
		for _, a := range adapters {
			a.ApplyHighlight(acc, false)
		}
	}
}

// Lit returns the currently highlighted accessions, sorted.
func (h *Hub) Lit() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.litLocked()
}

func (h *Hub) litLocked() []string {
	out := make([]string, 0, len(h.lit))
	for acc := range h.lit {
		out = append(out, acc)
	}
	sort.Strings(out)
	return out
}
