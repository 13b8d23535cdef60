package protocol

// Outbound messages. The server reads every field at the top level of the
// frame next to "type", so each message carries its own Type tag rather than
// nesting a payload envelope.

// Game action names accepted inside a game_action message.
const (
	ActionClaimGift     = "claim_gift"
	ActionStealGift     = "steal_gift"
	ActionWrapGift      = "wrap_gift"
	ActionPlayLand      = "play_land"
	ActionBuildBuilding = "build_building"
	ActionDrawExtra     = "draw_extra"
	ActionRecycle       = "recycle"
	ActionDiscard       = "discard"
	ActionEndTurn       = "end_turn"
)

type RenameMessage struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

func NewRename(name string) RenameMessage {
	return RenameMessage{Type: "rename", Name: name}
}

type CreateRoomMessage struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

func NewCreateRoom(name string) CreateRoomMessage {
	return CreateRoomMessage{Type: "create_room", Name: name}
}

type JoinRoomMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

func NewJoinRoom(roomID string) JoinRoomMessage {
	return JoinRoomMessage{Type: "join_room", RoomID: roomID}
}

type LeaveRoomMessage struct {
	Type string `json:"type"`
}

func NewLeaveRoom() LeaveRoomMessage {
	return LeaveRoomMessage{Type: "leave_room"}
}

type StartGameMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

func NewStartGame(roomID string) StartGameMessage {
	return StartGameMessage{Type: "start_game", RoomID: roomID}
}

type PingMessage struct {
	Type string `json:"type"`
}

func NewPing() PingMessage {
	return PingMessage{Type: "ping"}
}

// GameActionMessage wraps one rule-engine action. Payload shape depends on
// the action name.
type GameActionMessage struct {
	Type    string `json:"type"`
	Action  string `json:"action"`
	Payload any    `json:"payload"`
}

func NewGameAction(action string, payload any) GameActionMessage {
	return GameActionMessage{Type: "game_action", Action: action, Payload: payload}
}

type GiftIDPayload struct {
	GiftID string `json:"gift_id"`
}

type StealGiftPayload struct {
	GiftID         string `json:"gift_id"`
	DiscardIndices []int  `json:"discard_indices"`
}

type IndexPayload struct {
	Index int `json:"index"`
}

type BuildingPayload struct {
	Building Building `json:"building"`
}

type EmptyPayload struct{}
