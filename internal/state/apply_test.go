package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"siege-client/internal/protocol"
)

var testNow = time.Date(2025, 12, 24, 18, 0, 0, 0, time.UTC)

func member(id, name string) protocol.Member {
	return protocol.Member{MemberID: id, Name: name, JoinedAt: "2025-12-01T00:00:00Z"}
}

func welcomed(t *testing.T) Snapshot {
	t.Helper()
	snap := Snapshot{Members: make(map[string]protocol.Member)}
	return Apply(snap, protocol.Welcome{
		Member:  member("m1", "Alice"),
		Members: []protocol.Member{member("m1", "Alice"), member("m2", "Bob")},
		Rooms:   []protocol.Room{{RoomID: "R1", Name: "Fireside", HostID: "m2"}},
	}, testNow)
}

// Test 1: Welcome replaces everything wholesale
// Why: No field may survive from a previous connection's state
func TestApply_WelcomeReplacesWholesale(t *testing.T) {
	snap := welcomed(t)
	snap.RoomNotice = &Notice{Message: "old", At: testNow}

	next := Apply(snap, protocol.Welcome{
		Member:  member("m9", "Zoe"),
		Members: []protocol.Member{member("m9", "Zoe")},
		Rooms:   nil,
	}, testNow)

	assert.Equal(t, "m9", next.Viewer.MemberID)
	assert.Len(t, next.Members, 1)
	_, survived := next.Members["m1"]
	assert.False(t, survived, "old directory entry survived a welcome")
	assert.Empty(t, next.Rooms)
}

// Test 2: Welcome is idempotent
func TestApply_WelcomeIdempotent(t *testing.T) {
	ev := protocol.Welcome{
		Member:  member("m1", "Alice"),
		Members: []protocol.Member{member("m1", "Alice"), member("m2", "Bob")},
		Rooms:   []protocol.Room{{RoomID: "R1"}},
	}
	once := Apply(Snapshot{}, ev, testNow)
	twice := Apply(once, ev, testNow)
	assert.Equal(t, once, twice)
}

// Test 3: Joins never duplicate a member id
// Why: Spec invariant - the directory is a set keyed by member_id
func TestApply_MemberJoinedDeduplicates(t *testing.T) {
	snap := welcomed(t)

	snap = Apply(snap, protocol.MemberJoined{Member: member("m3", "Carol")}, testNow)
	assert.Len(t, snap.Members, 3)

	// Same id again, even with a different name, is a no-op.
	snap = Apply(snap, protocol.MemberJoined{Member: member("m3", "Imposter")}, testNow)
	assert.Len(t, snap.Members, 3)
	assert.Equal(t, "Carol", snap.Members["m3"].Name)
}

// Test 4: Left removes the member, and only that member
func TestApply_MemberLeft(t *testing.T) {
	snap := welcomed(t)

	snap = Apply(snap, protocol.MemberLeft{Member: member("m2", "Bob")}, testNow)
	_, present := snap.Members["m2"]
	assert.False(t, present)
	assert.Len(t, snap.Members, 1)

	// Leaving twice is harmless.
	snap = Apply(snap, protocol.MemberLeft{Member: member("m2", "Bob")}, testNow)
	assert.Len(t, snap.Members, 1)
}

// Test 5: Renames update the directory, and the viewer mirror when it is us
// Why: The viewer identity is held separately and must not drift
func TestApply_MemberRenamed(t *testing.T) {
	snap := welcomed(t)

	snap = Apply(snap, protocol.MemberRenamed{Member: member("m2", "Robert")}, testNow)
	assert.Equal(t, "Robert", snap.Members["m2"].Name)
	assert.Equal(t, "Alice", snap.Viewer.Name, "viewer should not change for someone else's rename")

	snap = Apply(snap, protocol.MemberRenamed{Member: member("m1", "Alicia")}, testNow)
	assert.Equal(t, "Alicia", snap.Members["m1"].Name)
	assert.Equal(t, "Alicia", snap.Viewer.Name)
}

// Test 6: Rooms are replaced wholesale
func TestApply_RoomsUpdated(t *testing.T) {
	snap := welcomed(t)

	snap = Apply(snap, protocol.RoomsUpdated{Rooms: []protocol.Room{
		{RoomID: "R2", Name: "Workshop"},
		{RoomID: "R3", Name: "Stable"},
	}}, testNow)

	assert.Len(t, snap.Rooms, 2)
	_, found := snap.RoomByID("R1")
	assert.False(t, found, "old room survived a rooms_updated")
}

// Test 7: Game snapshots are replaced atomically, never merged
// Why: A partial merge could pair a new turn with a stale player list
func TestApply_GameSnapshotReplaced(t *testing.T) {
	snap := welcomed(t)

	first := protocol.GameSnapshot{
		GameID:  "g1",
		Turn:    protocol.TurnState{PlayerID: "m1", Number: 1},
		Players: []protocol.PlayerView{{MemberID: "m1"}, {MemberID: "m2"}},
	}
	snap = Apply(snap, protocol.GameStarted{State: first}, testNow)
	assert.Equal(t, 1, snap.Game.Turn.Number)
	assert.Len(t, snap.Game.Players, 2)

	second := protocol.GameSnapshot{
		GameID:  "g1",
		Turn:    protocol.TurnState{PlayerID: "m2", Number: 2},
		Players: []protocol.PlayerView{{MemberID: "m2"}},
	}
	snap = Apply(snap, protocol.GameStateUpdated{State: second}, testNow)
	assert.Equal(t, 2, snap.Game.Turn.Number)
	assert.Len(t, snap.Game.Players, 1, "player list must come from the new snapshot only")
}

// Test 8: Error events set flow-scoped notices without touching state
func TestApply_Notices(t *testing.T) {
	snap := welcomed(t)
	game := protocol.GameSnapshot{GameID: "g1"}
	snap = Apply(snap, protocol.GameStarted{State: game}, testNow)

	next := Apply(snap, protocol.RoomError{Message: "Room not found."}, testNow)
	assert.Equal(t, "Room not found.", next.RoomNotice.Message)
	assert.Nil(t, next.GameNotice)
	assert.Equal(t, snap.Members, next.Members)
	assert.Equal(t, snap.Game, next.Game)

	next = Apply(next, protocol.GameActionError{Message: "It is not your turn."}, testNow)
	assert.Equal(t, "It is not your turn.", next.GameNotice.Message)
}

// Test 9: Disconnect clears connection-scoped state, keeps stale identity
// Why: Rooms and games are only valid under a live connection
func TestApplyDisconnect(t *testing.T) {
	snap := welcomed(t)
	snap = Apply(snap, protocol.GameStarted{State: protocol.GameSnapshot{GameID: "g1"}}, testNow)
	snap = Apply(snap, protocol.RoomError{Message: "x"}, testNow)

	next := ApplyDisconnect(snap)
	assert.Nil(t, next.Game)
	assert.Empty(t, next.Rooms)
	assert.Nil(t, next.RoomNotice)
	assert.Equal(t, "m1", next.Viewer.MemberID, "stale identity is retained until the next welcome")
	assert.Len(t, next.Members, 2)
}

// Test 10: Apply never mutates its input
// Why: The reducer is pure; readers may hold older snapshots
func TestApply_InputUntouched(t *testing.T) {
	snap := welcomed(t)
	before := len(snap.Members)

	_ = Apply(snap, protocol.MemberJoined{Member: member("m3", "Carol")}, testNow)
	assert.Len(t, snap.Members, before)

	_ = Apply(snap, protocol.MemberLeft{Member: member("m2", "Bob")}, testNow)
	assert.Len(t, snap.Members, before)
}
