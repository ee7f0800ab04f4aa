// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package view

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// SummaryView aggregates the visible points per collection country.
type SummaryView struct {
	mu  sync.Mutex
	lit map[string]bool
}

// NewSummaryView returns an empty summary view.
func NewSummaryView() *SummaryView {
	return &SummaryView{lit: make(map[string]bool)}
}

// Name identifies the view to the highlight hub.
func (v *SummaryView) Name() string { return "summary" }

// ApplyHighlight marks or unmarks an accession.
func (v *SummaryView) ApplyHighlight(accession string, on bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if on {
		v.lit[accession] = true
	} else {
		delete(v.lit, accession)
	}
}

type countryBucket struct {
	country    string
	count      int
	simSum     float64
	highlights int
}

// Render writes one line per country: point count and mean similarity,
// largest group first. The user sequence stays out of the aggregation;
// countries holding a highlighted accession carry a marker.
func (v *SummaryView) Render(w io.Writer, f Frame) {
	v.mu.Lock()
	lit := make(map[string]bool, len(v.lit))
	for acc := range v.lit {
		lit[acc] = true
	}
	v.mu.Unlock()

	buckets := make(map[string]*countryBucket)
	var hits int
	for _, p := range f.Visible {
		if p.IsUserSequence {
			continue
		}
		hits++
		country := p.Metadata.Country
		if country == "" {
			country = "(unknown)"
		}
		b := buckets[country]
		if b == nil {
			b = &countryBucket{country: country}
			buckets[country] = b
		}
		b.count++
		b.simSum += p.Similarity
		if lit[p.Accession] {
			b.highlights++
		}
	}

	if hits == 0 {
		fmt.Fprintln(w, "No points visible.")
		return
	}

	ordered := make([]*countryBucket, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].count != ordered[j].count {
			return ordered[i].count > ordered[j].count
		}
		return ordered[i].country < ordered[j].country
	})

	fmt.Fprintf(w, "%-2s %-20s  %-6s  %s\n", "", "Country", "Points", "Mean similarity")
	fmt.Fprintln(w, strings.Repeat("-", 50))
	for _, b := range ordered {
		marker := ""
		if b.highlights > 0 {
			marker = "*"
		}
		fmt.Fprintf(w, "%-2s %-20s  %-6d  %.3f\n",
			marker, truncate(b.country, 20), b.count, b.simSum/float64(b.count))
	}
	fmt.Fprintf(w, "\n%d points across %d countries, %d of %d matched\n",
		hits, len(ordered), f.Matched, f.Total())
}
