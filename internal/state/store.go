package state

import (
	"sync"

	"github.com/jonboulle/clockwork"

	"siege-client/internal/protocol"
)

// Store holds the current snapshot behind a lock. All writes go through the
// pure Apply reducer; readers get value copies and never observe a partially
// applied event.
type Store struct {
	mu    sync.RWMutex
	snap  Snapshot
	clock clockwork.Clock
}

// NewStore creates an empty store. clock may be nil, in which case the real
// clock is used; tests pass a clockwork.FakeClock to control notice expiry.
func NewStore(clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{
		snap:  Snapshot{Members: make(map[string]protocol.Member)},
		clock: clock,
	}
}

// Apply runs one inbound event through the reducer and returns the resulting
// snapshot.
func (s *Store) Apply(ev protocol.Event) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = Apply(s.snap, ev, s.clock.Now())
	return s.snap
}

// ApplyDisconnect clears the connection-scoped state (rooms, game, notices).
func (s *Store) ApplyDisconnect() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = ApplyDisconnect(s.snap)
	return s.snap
}

// Current returns the current snapshot.
func (s *Store) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// RoomNotice returns the live room-flow notice, if any.
func (s *Store) RoomNotice() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap.RoomNotice.Expired(s.clock.Now()) {
		return "", false
	}
	return s.snap.RoomNotice.Message, true
}

// GameNotice returns the live game-flow notice, if any.
func (s *Store) GameNotice() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap.GameNotice.Expired(s.clock.Now()) {
		return "", false
	}
	return s.snap.GameNotice.Message, true
}
