// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package view renders assembled point sets for the terminal.
//
// Every view implements Renderer for drawing frames and the highlight
// hub's adapter contract for cross-view emphasis.
package view

import (
	"io"

	"github.com/pdiddy/seqatlas/pkg/types"
)

// Frame is one renderable state: the points that survive the active
// filter, the filter window itself, and the match bookkeeping of the full
// assembled set.
type Frame struct {
	Visible   []types.ResolvedPoint
	Window    types.TimeWindow
	Matched   int
	Unmatched int
}

// NewFrame snapshots an assembled set with no filtering applied.
func NewFrame(set types.AssembledSet) Frame {
	return Frame{
		Visible:   set.Points,
		Matched:   set.Matched,
		Unmatched: set.Unmatched,
	}
}

// Total returns the number of reference hits in the assembled set.
func (f Frame) Total() int {
	return f.Matched + f.Unmatched
}

// Renderer draws one frame to w.
type Renderer interface {
	Name() string
	Render(w io.Writer, f Frame)
}
