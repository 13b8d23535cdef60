package state

import (
	"time"

	"siege-client/internal/protocol"
)

// Apply maps (snapshot, inbound event) to the next snapshot. It is pure and
// total over the event taxonomy: unhandled events return the snapshot
// unchanged. now is the arrival time used to stamp notices.
func Apply(s Snapshot, ev protocol.Event, now time.Time) Snapshot {
	switch e := ev.(type) {
	case protocol.Welcome:
		// Wholesale replacement. Nothing from the previous directory or
		// viewer identity survives, which makes reapplying idempotent.
		next := s
		next.Viewer = e.Member
		next.Members = memberIndex(e.Members)
		next.Rooms = append([]protocol.Room(nil), e.Rooms...)
		return next

	case protocol.MemberJoined:
		if _, ok := s.Members[e.Member.MemberID]; ok {
			return s
		}
		next := s
		next.Members = cloneMembers(s.Members)
		next.Members[e.Member.MemberID] = e.Member
		return next

	case protocol.MemberLeft:
		if _, ok := s.Members[e.Member.MemberID]; !ok {
			return s
		}
		next := s
		next.Members = cloneMembers(s.Members)
		delete(next.Members, e.Member.MemberID)
		return next

	case protocol.MemberRenamed:
		next := s
		if _, ok := s.Members[e.Member.MemberID]; ok {
			next.Members = cloneMembers(s.Members)
			next.Members[e.Member.MemberID] = e.Member
		}
		if e.Member.MemberID == s.Viewer.MemberID {
			next.Viewer = e.Member
		}
		return next

	case protocol.RoomsUpdated:
		next := s
		next.Rooms = append([]protocol.Room(nil), e.Rooms...)
		return next

	case protocol.GameStarted:
		return replaceGame(s, e.State)

	case protocol.GameStateUpdated:
		return replaceGame(s, e.State)

	case protocol.RoomError:
		next := s
		next.RoomNotice = &Notice{Message: e.Message, At: now}
		return next

	case protocol.GameActionError:
		next := s
		next.GameNotice = &Notice{Message: e.Message, At: now}
		return next

	default:
		return s
	}
}

// ApplyDisconnect resets the state that is only valid under a live
// connection. Members and viewer identity are retained but must be treated
// as stale until the next Welcome replaces them.
func ApplyDisconnect(s Snapshot) Snapshot {
	next := s
	next.Rooms = nil
	next.Game = nil
	next.RoomNotice = nil
	next.GameNotice = nil
	return next
}

// replaceGame swaps in a whole new game snapshot. A partial merge could pair
// a new turn with a stale player list, so merging is never attempted.
func replaceGame(s Snapshot, game protocol.GameSnapshot) Snapshot {
	next := s
	next.Game = &game
	return next
}

func memberIndex(members []protocol.Member) map[string]protocol.Member {
	index := make(map[string]protocol.Member, len(members))
	for _, m := range members {
		index[m.MemberID] = m
	}
	return index
}

func cloneMembers(members map[string]protocol.Member) map[string]protocol.Member {
	clone := make(map[string]protocol.Member, len(members)+1)
	for id, m := range members {
		clone[id] = m
	}
	return clone
}
