// Package session keeps the graph state of one user session: the snapshot the user
// loaded and the stack of subsets they have drilled into since.
package session

import (
	"errors"
	"sync"

	"github.com/psidex/protnet/internal/graph"
	"github.com/psidex/protnet/internal/hubs"
)

var ErrNoHistory = errors.New("already at the full graph")

type ChangeKind string

const (
	Loaded     ChangeKind = "loaded"
	Classified ChangeKind = "classified"
	Reverted   ChangeKind = "reverted"
	Reset      ChangeKind = "reset"
)

// Change describes the active subset after a state transition. Threshold is nil for
// the root snapshot.
type Change struct {
	Kind      ChangeKind
	Subset    *graph.Snapshot
	Threshold *hubs.Threshold
	Mode      hubs.Mode
	Depth     int
}

type frame struct {
	subset    *graph.Snapshot
	threshold *hubs.Threshold
	mode      hubs.Mode
}

// State is safe for concurrent use. Listeners are called synchronously, after the
// state lock is released, in the order they subscribed.
type State struct {
	mu        sync.Mutex
	stack     []frame
	listeners []func(Change)
}

func NewState(root *graph.Snapshot) *State {
	return &State{stack: []frame{{subset: root}}}
}

// Subscribe registers fn to be called with every Change.
func (s *State) Subscribe(fn func(Change)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *State) currentLocked(kind ChangeKind) Change {
	top := s.stack[len(s.stack)-1]
	return Change{
		Kind:      kind,
		Subset:    top.subset,
		Threshold: top.threshold,
		Mode:      top.mode,
		Depth:     len(s.stack),
	}
}

func (s *State) commit(kind ChangeKind) Change {
	c := s.currentLocked(kind)
	listeners := make([]func(Change), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(c)
	}
	return c
}

// Current returns the active subset without notifying anyone.
func (s *State) Current() Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked(Loaded)
}

// Announce notifies listeners of the current subset as a Loaded change.
func (s *State) Announce() Change {
	s.mu.Lock()
	return s.commit(Loaded)
}

// Apply classifies the active subset's nodes against their own threshold and makes the
// kept nodes the new active subset. On error the state is unchanged.
func (s *State) Apply(mode hubs.Mode) (Change, error) {
	s.mu.Lock()

	top := s.stack[len(s.stack)-1]
	kept, t, err := hubs.ClassifyWithThreshold(top.subset.Nodes, mode)
	if err != nil {
		s.mu.Unlock()
		return Change{}, err
	}

	s.stack = append(s.stack, frame{
		subset:    graph.Subset(top.subset, kept),
		threshold: &t,
		mode:      mode,
	})
	return s.commit(Classified), nil
}

// Revert goes back to the previous subset.
func (s *State) Revert() (Change, error) {
	s.mu.Lock()
	if len(s.stack) < 2 {
		s.mu.Unlock()
		return Change{}, ErrNoHistory
	}
	s.stack = s.stack[:len(s.stack)-1]
	return s.commit(Reverted), nil
}

// Reset goes back to the full snapshot.
func (s *State) Reset() Change {
	s.mu.Lock()
	s.stack = s.stack[:1]
	return s.commit(Reset)
}
