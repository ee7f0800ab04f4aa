// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package highlight

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/seqatlas/pkg/types"
)

type event struct {
	accession string
	on        bool
}

type recordingAdapter struct {
	mu     sync.Mutex
	name   string
	events []event
}

func (r *recordingAdapter) Name() string { return r.name }

func (r *recordingAdapter) ApplyHighlight(accession string, on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{accession, on})
}

func (r *recordingAdapter) recorded() []event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event, len(r.events))
	copy(out, r.events)
	return out
}

func TestSetFansOutToAllAdapters(t *testing.T) {
	hub := NewHub()
	a := &recordingAdapter{name: "table"}
	b := &recordingAdapter{name: "summary"}
	hub.Subscribe(a)
	hub.Subscribe(b)

	hub.Set("NZ_A.1", true)

	want := []event{{"NZ_A.1", true}}
	assert.Equal(t, want, a.recorded())
	assert.Equal(t, want, b.recorded())
	assert.Equal(t, []string{"NZ_A.1"}, hub.Lit())
}

func TestRepeatedOnCollapsesToOneTransition(t *testing.T) {
	hub := NewHub()
	a := &recordingAdapter{name: "table"}
	hub.Subscribe(a)

	// Double highlight then a single clear leaves nothing lit and the
	// adapter sees exactly one on and one off.
	hub.Set("NZ_A.1", true)
	hub.Set("NZ_A.1", true)
	hub.Set("NZ_A.1", false)

	assert.Equal(t, []event{{"NZ_A.1", true}, {"NZ_A.1", false}}, a.recorded())
	assert.Empty(t, hub.Lit())
}

func TestOffWithoutOnSuppressed(t *testing.T) {
	hub := NewHub()
	a := &recordingAdapter{name: "table"}
	hub.Subscribe(a)

	hub.Set("NZ_A.1", false)

	assert.Empty(t, a.recorded())
}

func TestUserSequenceNeverHighlights(t *testing.T) {
	hub := NewHub()
	a := &recordingAdapter{name: "table"}
	hub.Subscribe(a)

	hub.Set(types.SelfAccession, true)
	hub.Set("", true)

	assert.Empty(t, a.recorded())
	assert.Empty(t, hub.Lit())
}

func TestClear(t *testing.T) {
	hub := NewHub()
	a := &recordingAdapter{name: "table"}
	hub.Subscribe(a)

	hub.Set("NZ_A.1", true)
	hub.Set("NZ_B.1", true)
	hub.Set("NZ_C.1", true)
	hub.Clear()

	assert.Empty(t, hub.Lit())

	var offs int
	for _, e := range a.recorded() {
		if !e.on {
			offs++
		}
	}
	assert.Equal(t, 3, offs, "every lit accession receives one off")

	// A second clear has nothing to do.
	before := len(a.recorded())
	hub.Clear()
	assert.Len(t, a.recorded(), before)
}

func TestLateSubscriberReplay(t *testing.T) {
	hub := NewHub()
	hub.Set("NZ_A.1", true)
	hub.Set("NZ_B.1", true)

	late := &recordingAdapter{name: "summary"}
	hub.Subscribe(late)

	got := late.recorded()
	require.Len(t, got, 2)
	assert.ElementsMatch(t, []event{{"NZ_A.1", true}, {"NZ_B.1", true}}, got)
}

func TestConcurrentSetsConverge(t *testing.T) {
	hub := NewHub()
	a := &recordingAdapter{name: "table"}
	hub.Subscribe(a)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			acc := fmt.Sprintf("NZ_%d.1", i%4)
			hub.Set(acc, true)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, []string{"NZ_0.1", "NZ_1.1", "NZ_2.1", "NZ_3.1"}, hub.Lit())

	hub.Clear()
	assert.Empty(t, hub.Lit())
}
