package protocol

// Wire model for the Gifts Under Siege lobby protocol. Field names and json
// tags mirror the server payloads exactly; the client never invents fields.

type Color string

const (
	ColorWhite Color = "W"
	ColorBlue  Color = "U"
	ColorBlack Color = "B"
	ColorRed   Color = "R"
	ColorGreen Color = "G"
)

type GiftClass string

const (
	GiftClassI   GiftClass = "I"
	GiftClassII  GiftClass = "II"
	GiftClassIII GiftClass = "III"
)

type Building string

const (
	BuildingThiefsGloves     Building = "thiefs_gloves"
	BuildingCrowbar          Building = "crowbar"
	BuildingReinforcedRibbon Building = "reinforced_ribbon"
	BuildingSupplyWarehouse  Building = "supply_warehouse"
)

// StealDiscount is the lock discount granted by the thief's gloves building.
const StealDiscount = 2

// SealLocks is the lock count at which a gift seals and cannot be stolen.
const SealLocks = 5

// Game status values as serialized by the server.
const (
	GameStatusActive = "active"
	GameStatusEnded  = "ended"
)

type Member struct {
	MemberID string `json:"member_id"`
	Name     string `json:"name"`
	JoinedAt string `json:"joined_at"`
}

type Room struct {
	RoomID    string   `json:"room_id"`
	Name      string   `json:"name"`
	HostID    string   `json:"host_id"`
	HostName  string   `json:"host_name"`
	CreatedAt string   `json:"created_at"`
	Started   bool     `json:"started"`
	Members   []Member `json:"members"`
	GameID    string   `json:"game_id,omitempty"`
}

type Land struct {
	Color  Color `json:"color"`
	Tapped bool  `json:"tapped"`
}

type Gift struct {
	GiftID    string    `json:"gift_id"`
	Color     Color     `json:"color"`
	GiftClass GiftClass `json:"gift_class"`
	Locks     int       `json:"locks"`
	OwnerID   string    `json:"owner_id,omitempty"`
	Sealed    bool      `json:"sealed"`
}

type TurnState struct {
	PlayerID       string `json:"player_id"`
	Number         int    `json:"number"`
	HasPlayedLand  bool   `json:"has_played_land"`
	HasTakenAction bool   `json:"has_taken_action"`
}

type PlayerView struct {
	MemberID    string   `json:"member_id"`
	Name        string   `json:"name"`
	Score       int      `json:"score"`
	HandCount   int      `json:"hand_count"`
	LandsInPlay []Land   `json:"lands_in_play"`
	Gifts       []Gift   `json:"gifts"`
	Building    Building `json:"building,omitempty"`
}

// ViewerView carries the fields only the viewing player may see.
type ViewerView struct {
	MemberID       string   `json:"member_id"`
	Name           string   `json:"name"`
	Hand           []Color  `json:"hand"`
	LandsInPlay    []Land   `json:"lands_in_play"`
	Building       Building `json:"building,omitempty"`
	PendingDiscard int      `json:"pending_discard"`
}

type GameSnapshot struct {
	GameID       string       `json:"game_id"`
	RoomID       string       `json:"room_id"`
	Status       string       `json:"status"`
	CreatedAt    string       `json:"created_at"`
	Turn         TurnState    `json:"turn"`
	Players      []PlayerView `json:"players"`
	GiftsDisplay []Gift       `json:"gifts_display"`
	Viewer       ViewerView   `json:"viewer"`
	DeckCount    int          `json:"deck_count"`
}

// HasGift reports whether giftID is present in any player's gift list or the
// table display of this snapshot.
func (s *GameSnapshot) HasGift(giftID string) bool {
	for _, g := range s.GiftsDisplay {
		if g.GiftID == giftID {
			return true
		}
	}
	for _, p := range s.Players {
		for _, g := range p.Gifts {
			if g.GiftID == giftID {
				return true
			}
		}
	}
	return false
}

// FindGift returns the gift with giftID from any player's gift list or the
// table display.
func (s *GameSnapshot) FindGift(giftID string) (Gift, bool) {
	for _, g := range s.GiftsDisplay {
		if g.GiftID == giftID {
			return g, true
		}
	}
	for _, p := range s.Players {
		for _, g := range p.Gifts {
			if g.GiftID == giftID {
				return g, true
			}
		}
	}
	return Gift{}, false
}
