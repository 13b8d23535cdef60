package state

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"

	"siege-client/internal/protocol"
)

// Test 1: Store applies events and exposes the result
func TestStore_ApplyAndCurrent(t *testing.T) {
	s := NewStore(nil)

	snap := s.Apply(protocol.Welcome{
		Member:  member("m1", "Alice"),
		Members: []protocol.Member{member("m1", "Alice")},
	})
	assert.Equal(t, "m1", snap.Viewer.MemberID)
	assert.Equal(t, snap, s.Current())
}

// Test 2: Notices expire against the injected clock
// Why: Rejection messages only matter briefly after they arrive
func TestStore_NoticeExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := NewStore(clock)

	s.Apply(protocol.RoomError{Message: "Room not found."})
	msg, ok := s.RoomNotice()
	assert.True(t, ok)
	assert.Equal(t, "Room not found.", msg)

	// Still visible just inside the TTL.
	clock.Advance(NoticeTTL - time.Second)
	_, ok = s.RoomNotice()
	assert.True(t, ok)

	clock.Advance(2 * time.Second)
	_, ok = s.RoomNotice()
	assert.False(t, ok, "notice should expire after the TTL")

	// Game-flow notices are scoped independently.
	s.Apply(protocol.GameActionError{Message: "No."})
	_, ok = s.RoomNotice()
	assert.False(t, ok)
	msg, ok = s.GameNotice()
	assert.True(t, ok)
	assert.Equal(t, "No.", msg)
}

// Test 3: ApplyDisconnect resets through the store
func TestStore_ApplyDisconnect(t *testing.T) {
	s := NewStore(nil)
	s.Apply(protocol.Welcome{Member: member("m1", "Alice")})
	s.Apply(protocol.GameStarted{State: protocol.GameSnapshot{GameID: "g1"}})

	snap := s.ApplyDisconnect()
	assert.Nil(t, snap.Game)
	assert.Equal(t, "m1", snap.Viewer.MemberID)
}
