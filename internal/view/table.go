// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package view

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pdiddy/seqatlas/pkg/types"
)

// TableView lists points row by row with a details section for the
// highlighted ones.
type TableView struct {
	mu  sync.Mutex
	lit map[string]bool
}

// NewTableView returns an empty table view.
func NewTableView() *TableView {
	return &TableView{lit: make(map[string]bool)}
}

// Name identifies the view to the highlight hub.
func (v *TableView) Name() string { return "table" }

// ApplyHighlight marks or unmarks an accession.
func (v *TableView) ApplyHighlight(accession string, on bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if on {
		v.lit[accession] = true
	} else {
		delete(v.lit, accession)
	}
}

// Render writes the point table. Highlighted rows carry a leading marker
// and are repeated with full metadata in the details section below the
// table.
func (v *TableView) Render(w io.Writer, f Frame) {
	if len(f.Visible) == 0 {
		fmt.Fprintln(w, "No points visible.")
		return
	}

	v.mu.Lock()
	lit := make(map[string]bool, len(v.lit))
	for acc := range v.lit {
		lit[acc] = true
	}
	v.mu.Unlock()

	fmt.Fprintf(w, "%-2s %-4s  %-24s  %-10s  %-4s  %-16s  %-16s  %s\n",
		"", "Rank", "Accession", "Similarity", "Year", "Country", "Match", "Position")
	fmt.Fprintln(w, strings.Repeat("-", 96))

	var details []types.ResolvedPoint
	for _, p := range f.Visible {
		marker := ""
		if lit[p.Accession] {
			marker = "*"
			details = append(details, p)
		}

		acc := p.Accession
		if p.IsUserSequence {
			acc = "(your sequence)"
		}
		if len(acc) > 24 {
			acc = acc[:21] + "..."
		}

		year := ""
		if p.Year() != 0 {
			year = fmt.Sprintf("%d", p.Year())
		}

		fmt.Fprintf(w, "%-2s %-4d  %-24s  %-10.3f  %-4s  %-16s  %-16s  %s\n",
			marker, p.Rank, acc, p.Similarity, year,
			truncate(p.Metadata.Country, 16), string(p.Strategy), position(p))
	}

	fmt.Fprintf(w, "\n%d points visible, %d of %d matched\n",
		len(f.Visible), f.Matched, f.Total())
	if filter := describeFilter(f.Window); filter != "" {
		fmt.Fprintf(w, "filter: %s\n", filter)
	}

	if len(details) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Highlighted:")
		for _, p := range details {
			fmt.Fprintf(w, "  %s\n", p.Accession)
			fmt.Fprintf(w, "    similarity %.3f  distance %.3f  rank %d\n", p.Similarity, p.Distance, p.Rank)
			if p.Metadata.Country != "" || p.Year() != 0 {
				fmt.Fprintf(w, "    collected %s %s\n", p.Metadata.Country, year4(p.Year()))
			}
			if p.Metadata.Host != "" {
				fmt.Fprintf(w, "    host %s\n", p.Metadata.Host)
			}
			if p.Metadata.Lineage != "" {
				fmt.Fprintf(w, "    lineage %s\n", p.Metadata.Lineage)
			}
		}
	}
}

func position(p types.ResolvedPoint) string {
	if !p.Resolved() {
		return "unplaced"
	}
	return fmt.Sprintf("(%.2f, %.2f)", p.Coordinates.X, p.Coordinates.Y)
}

func describeFilter(w types.TimeWindow) string {
	var parts []string
	if w.Threshold > 0 {
		parts = append(parts, fmt.Sprintf("similarity >= %.2f", w.Threshold))
	}
	if w.CurrentYear != 0 {
		parts = append(parts, fmt.Sprintf("collected through %d", w.CurrentYear))
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func year4(year int) string {
	if year == 0 {
		return ""
	}
	return fmt.Sprintf("%d", year)
}
