package state

import (
	"time"

	"siege-client/internal/protocol"
)

// Snapshot is the locally mirrored view of the lobby and active game. It is
// a value: Apply never mutates the snapshot it is given.
type Snapshot struct {
	// Viewer is this client's own identity as assigned by the server.
	Viewer protocol.Member

	// Members is the lobby directory keyed by member id.
	Members map[string]protocol.Member

	// Rooms is the room directory, replaced wholesale by the server.
	Rooms []protocol.Room

	// Game is the active game, or nil when no game is in progress. Replaced
	// wholesale on every game event, never merged field by field.
	Game *protocol.GameSnapshot

	// RoomNotice and GameNotice hold the last server rejection for the room
	// flow and the game flow respectively.
	RoomNotice *Notice
	GameNotice *Notice
}

// Notice is a transient server-reported rejection message.
type Notice struct {
	Message string
	At      time.Time
}

// NoticeTTL is how long a notice stays relevant before Expired reports true.
const NoticeTTL = 6 * time.Second

func (n *Notice) Expired(now time.Time) bool {
	if n == nil {
		return true
	}
	return now.Sub(n.At) > NoticeTTL
}

// RoomByID returns the room with the given id from the directory.
func (s Snapshot) RoomByID(roomID string) (protocol.Room, bool) {
	for _, r := range s.Rooms {
		if r.RoomID == roomID {
			return r, true
		}
	}
	return protocol.Room{}, false
}

// ViewerRoom returns the room the viewer is currently a member of.
func (s Snapshot) ViewerRoom() (protocol.Room, bool) {
	for _, r := range s.Rooms {
		for _, m := range r.Members {
			if m.MemberID == s.Viewer.MemberID {
				return r, true
			}
		}
	}
	return protocol.Room{}, false
}
