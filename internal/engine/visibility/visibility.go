// Package visibility holds the one mutable piece of engine state: the set of
// hidden vendor codes. Snapshots are immutable and swapped atomically, so
// readers never observe a partially applied filter; writers serialize on a
// mutex around the swap.
package visibility

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Snapshot is an immutable hidden-code set. The zero-value maps inside are
// never mutated after construction.
type Snapshot struct {
	hidden map[string]struct{}
}

// Hidden reports whether code is hidden in this snapshot.
func (s *Snapshot) Hidden(code string) bool {
	_, ok := s.hidden[code]
	return ok
}

// Codes returns the hidden codes in ascending order.
func (s *Snapshot) Codes() []string {
	codes := make([]string, 0, len(s.hidden))
	for c := range s.hidden {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Len is the hidden-code count.
func (s *Snapshot) Len() int { return len(s.hidden) }

// State is the process-wide visibility state. The zero value is not usable;
// call New.
type State struct {
	mu      sync.Mutex // serializes writers
	current atomic.Pointer[Snapshot]
}

// New returns a State with nothing hidden.
func New() *State {
	st := &State{}
	st.current.Store(&Snapshot{hidden: map[string]struct{}{}})
	return st
}

// Current returns the snapshot a computation should read. Computations that
// started before a concurrent Apply keep their old snapshot; their results
// are superseded, never merged.
func (st *State) Current() *Snapshot {
	return st.current.Load()
}

// Apply replaces the hidden set with exactly the given codes and returns the
// new snapshot. The whole set is swapped in one pointer store; an empty input
// shows every vendor again.
func (st *State) Apply(codes []string) *Snapshot {
	hidden := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		if c != "" {
			hidden[c] = struct{}{}
		}
	}
	next := &Snapshot{hidden: hidden}

	st.mu.Lock()
	st.current.Store(next)
	st.mu.Unlock()
	return next
}
