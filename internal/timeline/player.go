// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package timeline filters the assembled point set by similarity and
// collection year, and replays the temporal dimension year by year.
package timeline

import (
	"sync"
	"time"

	"github.com/pdiddy/seqatlas/pkg/types"
)

// Player owns the filter state for one point set. All methods are safe for
// concurrent use. At most one playback goroutine exists at a time; Pause
// and Reset wait for it to finish, so no frame callback runs after they
// return.
type Player struct {
	mu       sync.Mutex
	points   []types.ResolvedPoint
	minYear  int
	maxYear  int
	interval time.Duration

	threshold   float64
	currentYear int
	playing     bool
	stop        chan struct{}
	done        chan struct{}
}

// NewPlayer builds a player over points. The year range is derived from
// the points that carry a known collection year; the user sequence and
// unknown-year points do not contribute to it.
func NewPlayer(points []types.ResolvedPoint, cfg types.PlayerConfig) *Player {
	interval := cfg.TickInterval
	if interval <= 0 {
		interval = time.Second
	}

	p := &Player{points: points, interval: interval}
	for _, pt := range points {
		if pt.IsUserSequence || pt.Year() == 0 {
			continue
		}
		if p.minYear == 0 || pt.Year() < p.minYear {
			p.minYear = pt.Year()
		}
		if pt.Year() > p.maxYear {
			p.maxYear = pt.Year()
		}
	}
	return p
}

// SetThreshold updates the similarity floor, clamped to [0,1]. Playback
// keeps running.
func (p *Player) SetThreshold(t float64) {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	p.mu.Lock()
	p.threshold = t
	p.mu.Unlock()
}

// SetYear stops playback and pins the cutoff to year, clamped into the
// known range. Zero clears the temporal filter.
func (p *Player) SetYear(year int) {
	p.Pause()
	p.mu.Lock()
	defer p.mu.Unlock()
	if year != 0 && p.minYear != 0 {
		if year < p.minYear {
			year = p.minYear
		}
		if year > p.maxYear {
			year = p.maxYear
		}
	}
	p.currentYear = year
}

// Window returns a snapshot of the filter state.
func (p *Player) Window() types.TimeWindow {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.windowLocked()
}

func (p *Player) windowLocked() types.TimeWindow {
	return types.TimeWindow{
		MinYear:     p.minYear,
		MaxYear:     p.maxYear,
		CurrentYear: p.currentYear,
		Threshold:   p.threshold,
		Playing:     p.playing,
	}
}

// Visible returns the points that pass the similarity threshold and the
// year cutoff, in presentation order. The user sequence is always visible.
// Points with an unknown year pass only while no cutoff is active.
func (p *Player) Visible() []types.ResolvedPoint {
	p.mu.Lock()
	threshold, cutoff := p.threshold, p.currentYear
	p.mu.Unlock()

	out := make([]types.ResolvedPoint, 0, len(p.points))
	for _, pt := range p.points {
		if pt.IsUserSequence {
			out = append(out, pt)
			continue
		}
		if pt.Similarity < threshold {
			continue
		}
		if cutoff != 0 && (pt.Year() == 0 || pt.Year() > cutoff) {
			continue
		}
		out = append(out, pt)
	}
	return out
}

// Play starts playback: every tick advances the cutoff one year, wrapping
// from the newest year back to the oldest, and invokes onFrame with the
// new window. Playback runs until Pause, Reset or SetYear. Calling Play
// while already playing is a no-op, as is calling it on a set without
// known years.
func (p *Player) Play(onFrame func(types.TimeWindow)) {
	p.mu.Lock()
	if p.playing || p.minYear == 0 {
		p.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	p.stop, p.done = stop, done
	p.playing = true
	interval := p.interval
	p.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				w, ok := p.advance()
				if !ok {
					return
				}
				if onFrame != nil {
					onFrame(w)
				}
			}
		}
	}()
}

// advance moves the cutoff one year forward, wrapping past the maximum.
func (p *Player) advance() (types.TimeWindow, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return types.TimeWindow{}, false
	}
	switch {
	case p.currentYear == 0 || p.currentYear >= p.maxYear:
		p.currentYear = p.minYear
	default:
		p.currentYear++
	}
	return p.windowLocked(), true
}

// Pause stops playback and waits for the playback goroutine to exit. The
// cutoff keeps its last value. Safe to call when not playing.
func (p *Player) Pause() {
	p.mu.Lock()
	if !p.playing {
		p.mu.Unlock()
		return
	}
	p.playing = false
	stop, done := p.stop, p.done
	p.stop, p.done = nil, nil
	p.mu.Unlock()

	close(stop)
	<-done
}

// Reset stops playback and clears the year cutoff. The threshold is left
// as configured.
func (p *Player) Reset() {
	p.Pause()
	p.mu.Lock()
	p.currentYear = 0
	p.mu.Unlock()
}
