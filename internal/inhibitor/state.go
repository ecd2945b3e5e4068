// Package inhibitor implements the zwlr_input_inhibit_manager_v1 extension
// and the shared inhibition flag it drives.
package inhibitor

import (
	"sync"

	"github.com/bnema/cascade/internal/protocol"
)

// Status is a snapshot of the inhibition flag
type Status struct {
	Inhibited bool
	Owner     protocol.ClientID
}

// State is the shared inhibition flag. At most one client owns it; the most
// recent Set wins and Clear always releases it.
type State struct {
	mu        sync.RWMutex
	status    Status
	observers []func(Status)
}

// NewState returns an uninhibited state
func NewState() *State {
	return &State{}
}

// Set marks owner as the exclusive client, replacing any previous owner
func (s *State) Set(owner protocol.ClientID) {
	s.mu.Lock()
	s.status = Status{Inhibited: true, Owner: owner}
	snapshot := s.status
	observers := s.observers
	s.mu.Unlock()

	notify(observers, snapshot)
}

// Clear releases the inhibition. Clearing an uninhibited state is a no-op.
func (s *State) Clear() {
	s.mu.Lock()
	if !s.status.Inhibited {
		s.mu.Unlock()
		return
	}
	s.status = Status{}
	observers := s.observers
	s.mu.Unlock()

	notify(observers, Status{})
}

// Status returns the current snapshot
func (s *State) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// IsInhibited reports whether some client holds the inhibition
func (s *State) IsInhibited() bool {
	return s.Status().Inhibited
}

// Owner returns the exclusive client, if any
func (s *State) Owner() (protocol.ClientID, bool) {
	st := s.Status()
	return st.Owner, st.Inhibited
}

// IsAllowed reports whether windows of client may take focus. Everyone is
// allowed while uninhibited.
func (s *State) IsAllowed(client protocol.ClientID) bool {
	st := s.Status()
	return !st.Inhibited || st.Owner == client
}

// IsExclusive reports whether client is the current owner
func (s *State) IsExclusive(client protocol.ClientID) bool {
	st := s.Status()
	return st.Inhibited && st.Owner == client
}

// OnChange registers fn to run after every transition
func (s *State) OnChange(fn func(Status)) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

func notify(observers []func(Status), st Status) {
	for _, fn := range observers {
		fn(st)
	}
}
