package archive

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"siege-client/internal/protocol"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("Failed to open archive: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func endedSnapshot(gameID string) protocol.GameSnapshot {
	return protocol.GameSnapshot{
		GameID: gameID,
		RoomID: "room-1",
		Status: protocol.GameStatusEnded,
		Players: []protocol.PlayerView{
			{MemberID: "m1", Name: "Alice", Score: 9},
			{MemberID: "m2", Name: "Bob", Score: 14},
		},
		Viewer: protocol.ViewerView{MemberID: "m1", Name: "Alice"},
	}
}

// Test 1: Opening a fresh archive applies migrations and yields a usable store
func TestArchive_OpenFresh(t *testing.T) {
	a := openTestArchive(t)

	results, err := a.RecentResults(10)
	if err != nil {
		t.Fatalf("Failed to list results: %v", err)
	}
	assert.Empty(t, results)
}

// Test 2: LoadProfile on an empty archive returns a zero profile, not an error
func TestArchive_LoadProfileMissing(t *testing.T) {
	a := openTestArchive(t)

	p, err := a.LoadProfile()
	if err != nil {
		t.Fatalf("Failed to load profile: %v", err)
	}
	assert.Equal(t, Profile{}, p)
}

// Test 3: Profile round trip, and the single row is replaced on re-save
func TestArchive_ProfileRoundTrip(t *testing.T) {
	a := openTestArchive(t)

	if err := a.SaveProfile("Alice", "ws://lobby.test/ws"); err != nil {
		t.Fatalf("Failed to save profile: %v", err)
	}
	p, err := a.LoadProfile()
	if err != nil {
		t.Fatalf("Failed to load profile: %v", err)
	}
	assert.Equal(t, "Alice", p.DisplayName)
	assert.Equal(t, "ws://lobby.test/ws", p.LobbyURL)
	assert.False(t, p.UpdatedAt.IsZero())

	if err := a.SaveProfile("Alicia", "ws://lobby.test/ws"); err != nil {
		t.Fatalf("Failed to re-save profile: %v", err)
	}
	p, err = a.LoadProfile()
	if err != nil {
		t.Fatalf("Failed to reload profile: %v", err)
	}
	assert.Equal(t, "Alicia", p.DisplayName)
}

// Test 4: RecordResult extracts viewer and winner scores from the snapshot
func TestArchive_RecordResult(t *testing.T) {
	a := openTestArchive(t)

	if err := a.RecordResult(endedSnapshot("game-1")); err != nil {
		t.Fatalf("Failed to record result: %v", err)
	}

	results, err := a.RecentResults(10)
	if err != nil {
		t.Fatalf("Failed to list results: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	r := results[0]
	assert.Equal(t, "game-1", r.GameID)
	assert.Equal(t, "room-1", r.RoomID)
	assert.Equal(t, 9, r.ViewerScore)
	assert.Equal(t, "Bob", r.WinnerName)
	assert.Equal(t, 14, r.WinnerScore)
	assert.False(t, r.EndedAt.IsZero())
}

// Test 5: A re-delivered final snapshot overwrites rather than duplicates
// Why: The server may resend the ended game state; game_id keys the row
func TestArchive_RecordResultIdempotent(t *testing.T) {
	a := openTestArchive(t)

	snap := endedSnapshot("game-1")
	if err := a.RecordResult(snap); err != nil {
		t.Fatalf("Failed to record result: %v", err)
	}
	snap.Players[1].Score = 20
	if err := a.RecordResult(snap); err != nil {
		t.Fatalf("Failed to re-record result: %v", err)
	}

	results, err := a.RecentResults(10)
	if err != nil {
		t.Fatalf("Failed to list results: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result after re-record, got %d", len(results))
	}
	assert.Equal(t, 20, results[0].WinnerScore)
}

// Test 6: RecentResults respects the limit
func TestArchive_RecentResultsLimit(t *testing.T) {
	a := openTestArchive(t)

	for _, id := range []string{"game-1", "game-2", "game-3"} {
		if err := a.RecordResult(endedSnapshot(id)); err != nil {
			t.Fatalf("Failed to record %s: %v", id, err)
		}
	}

	results, err := a.RecentResults(2)
	if err != nil {
		t.Fatalf("Failed to list results: %v", err)
	}
	assert.Len(t, results, 2)
}
