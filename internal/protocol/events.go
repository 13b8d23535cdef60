package protocol

import (
	"encoding/json"
	"fmt"
)

// Event is one decoded inbound frame. The concrete types below cover the
// full server vocabulary; anything else fails DecodeEvent and is dropped by
// the caller.
type Event interface {
	isEvent()
}

type Welcome struct {
	Member  Member
	Members []Member
	Rooms   []Room
}

type MemberJoined struct {
	Member Member
}

type MemberLeft struct {
	Member Member
}

type MemberRenamed struct {
	Member Member
}

type RoomsUpdated struct {
	Rooms []Room
}

// RoomError is the server rejecting a room-flow request (wire type "error").
type RoomError struct {
	Message string
}

type GameStarted struct {
	State GameSnapshot
}

type GameStateUpdated struct {
	State GameSnapshot
}

// GameActionError is the rule engine rejecting a game action (wire type
// "game_error").
type GameActionError struct {
	Message string
}

type Pong struct{}

func (Welcome) isEvent()          {}
func (MemberJoined) isEvent()     {}
func (MemberLeft) isEvent()       {}
func (MemberRenamed) isEvent()    {}
func (RoomsUpdated) isEvent()     {}
func (RoomError) isEvent()        {}
func (GameStarted) isEvent()      {}
func (GameStateUpdated) isEvent() {}
func (GameActionError) isEvent()  {}
func (Pong) isEvent()             {}

// serverFrame is the superset of fields any inbound frame can carry.
type serverFrame struct {
	Type    string        `json:"type"`
	Member  *Member       `json:"member"`
	Members []Member      `json:"members"`
	Rooms   []Room        `json:"rooms"`
	Message string        `json:"message"`
	State   *GameSnapshot `json:"state"`
}

// DecodeEvent parses one inbound frame into a typed Event. Unknown types and
// frames missing their required fields return an error; callers drop those
// frames without touching any state.
func DecodeEvent(data []byte) (Event, error) {
	var frame serverFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	switch frame.Type {
	case "welcome":
		if frame.Member == nil {
			return nil, fmt.Errorf("welcome frame missing member")
		}
		return Welcome{Member: *frame.Member, Members: frame.Members, Rooms: frame.Rooms}, nil

	case "member_joined":
		if frame.Member == nil {
			return nil, fmt.Errorf("member_joined frame missing member")
		}
		return MemberJoined{Member: *frame.Member}, nil

	case "member_left":
		if frame.Member == nil {
			return nil, fmt.Errorf("member_left frame missing member")
		}
		return MemberLeft{Member: *frame.Member}, nil

	case "member_renamed":
		if frame.Member == nil {
			return nil, fmt.Errorf("member_renamed frame missing member")
		}
		return MemberRenamed{Member: *frame.Member}, nil

	case "rooms_updated":
		return RoomsUpdated{Rooms: frame.Rooms}, nil

	case "error":
		return RoomError{Message: frame.Message}, nil

	case "game_started":
		if frame.State == nil {
			return nil, fmt.Errorf("game_started frame missing state")
		}
		return GameStarted{State: *frame.State}, nil

	case "game_state":
		if frame.State == nil {
			return nil, fmt.Errorf("game_state frame missing state")
		}
		return GameStateUpdated{State: *frame.State}, nil

	case "game_error":
		return GameActionError{Message: frame.Message}, nil

	case "pong":
		return Pong{}, nil

	default:
		return nil, fmt.Errorf("unknown frame type %q", frame.Type)
	}
}
