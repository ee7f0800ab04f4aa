// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package view

import (
	"strings"
	"testing"

	"github.com/pdiddy/seqatlas/pkg/types"
)

func samplePoints() []types.ResolvedPoint {
	return []types.ResolvedPoint{
		{
			ID: types.SelfAccession, Accession: types.SelfAccession,
			Similarity: 1, Coordinates: &types.Coordinates{X: 0.5, Y: -0.5},
			Strategy: types.MatchProjection, IsUserSequence: true, Rank: 0,
		},
		{
			ID: "r1", Accession: "NZ_CP012345.1", Similarity: 0.974, Distance: 0.026,
			Coordinates: &types.Coordinates{X: 1.25, Y: 2},
			Metadata:    types.PointMetadata{Country: "Canada", Year: 2019, Host: "Homo sapiens"},
			Strategy:    types.MatchExact, Rank: 1,
		},
		{
			ID: "r2", Accession: "GHOST.9", Similarity: 0.5,
			Strategy: types.MatchNone, Rank: 2,
		},
	}
}

func sampleFrame() Frame {
	return Frame{Visible: samplePoints(), Matched: 1, Unmatched: 1}
}

func TestTableRender(t *testing.T) {
	var b strings.Builder
	NewTableView().Render(&b, sampleFrame())
	out := b.String()

	for _, want := range []string{
		"Rank",
		"(your sequence)",
		"NZ_CP012345.1",
		"0.974",
		"2019",
		"Canada",
		"exact",
		"(1.25, 2.00)",
		"unplaced",
		"3 points visible, 1 of 2 matched",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q\n%s", want, out)
		}
	}

	// No filter line without an active filter.
	if strings.Contains(out, "filter:") {
		t.Errorf("unexpected filter line\n%s", out)
	}
}

func TestTableRenderRowOrder(t *testing.T) {
	var b strings.Builder
	NewTableView().Render(&b, sampleFrame())
	out := b.String()

	self := strings.Index(out, "(your sequence)")
	first := strings.Index(out, "NZ_CP012345.1")
	ghost := strings.Index(out, "GHOST.9")
	if !(self < first && first < ghost) {
		t.Errorf("rows out of order: self=%d first=%d ghost=%d\n%s", self, first, ghost, out)
	}
}

func TestTableRenderFilterLine(t *testing.T) {
	f := sampleFrame()
	f.Window = types.TimeWindow{Threshold: 0.8, CurrentYear: 2018}

	var b strings.Builder
	NewTableView().Render(&b, f)
	out := b.String()

	if !strings.Contains(out, "filter: similarity >= 0.80, collected through 2018") {
		t.Errorf("missing filter description\n%s", out)
	}
}

func TestTableRenderHighlightDetails(t *testing.T) {
	v := NewTableView()
	v.ApplyHighlight("NZ_CP012345.1", true)

	var b strings.Builder
	v.Render(&b, sampleFrame())
	out := b.String()

	var marked bool
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "NZ_CP012345.1") && strings.HasPrefix(line, "*") {
			marked = true
		}
	}
	if !marked {
		t.Errorf("highlighted row missing marker\n%s", out)
	}
	if !strings.Contains(out, "Highlighted:") {
		t.Errorf("missing details section\n%s", out)
	}
	if !strings.Contains(out, "host Homo sapiens") {
		t.Errorf("details missing host line\n%s", out)
	}

	// Turning the highlight off removes the section.
	v.ApplyHighlight("NZ_CP012345.1", false)
	b.Reset()
	v.Render(&b, sampleFrame())
	if strings.Contains(b.String(), "Highlighted:") {
		t.Errorf("details section after unhighlight\n%s", b.String())
	}
}

func TestTableRenderEmpty(t *testing.T) {
	var b strings.Builder
	NewTableView().Render(&b, Frame{})
	if !strings.Contains(b.String(), "No points visible.") {
		t.Errorf("empty frame output = %q", b.String())
	}
}
