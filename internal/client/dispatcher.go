package client

import (
	"errors"

	"github.com/rs/zerolog/log"

	"siege-client/internal/protocol"
	"siege-client/internal/state"
)

var (
	ErrNoActiveGame      = errors.New("NO_ACTIVE_GAME: no game snapshot is present")
	ErrNotYourTurn       = errors.New("NOT_YOUR_TURN: it is not the viewer's turn")
	ErrAlreadyActed      = errors.New("ALREADY_ACTED: the main action for this turn was already taken")
	ErrAlreadyPlayedLand = errors.New("ALREADY_PLAYED_LAND: a land was already played this turn")
	ErrPendingDiscard    = errors.New("PENDING_DISCARD: discards must be resolved before ending the turn")
	ErrNoPendingDiscard  = errors.New("NO_PENDING_DISCARD: no discard is currently required")
)

// Dispatcher maps user intents onto outbound messages, one message per
// intent, never batched. Preconditions mirrored from the snapshot are
// advisory only: they exist to skip obviously futile sends, the remote rule
// engine remains authoritative and reports its own rejections as game_error
// events.
type Dispatcher struct {
	conn   sender
	store  *state.Store
	stager *StealStager
}

// NewDispatcher wires a dispatcher (and its steal stager) to the client.
// Staged steals are revalidated against every new game snapshot the client
// applies.
func NewDispatcher(c *Client) *Dispatcher {
	d := &Dispatcher{
		conn:   c,
		store:  c.Store(),
		stager: NewStealStager(c, c.Store()),
	}
	c.OnSnapshot(d.stager.Invalidate)
	return d
}

// newDispatcher builds a dispatcher over any sender, for tests.
func newDispatcher(conn sender, store *state.Store) *Dispatcher {
	return &Dispatcher{
		conn:   conn,
		store:  store,
		stager: NewStealStager(conn, store),
	}
}

// Stager exposes the steal stager for multi-step steal input.
func (d *Dispatcher) Stager() *StealStager { return d.stager }

// SetName renames the viewer. Without an open connection the intent becomes
// a connect carrying the name, since the lobby assigns names at handshake
// time.
func (d *Dispatcher) SetName(name string) error {
	if d.conn.Status() != StatusConnected {
		log.Info().Str("name", name).Msg("not connected, connecting with requested name")
		return d.conn.Connect(name)
	}
	return d.conn.Send(protocol.NewRename(name))
}

func (d *Dispatcher) CreateRoom(name string) error {
	if err := d.requireConnected(); err != nil {
		return err
	}
	return d.conn.Send(protocol.NewCreateRoom(name))
}

func (d *Dispatcher) JoinRoom(roomID string) error {
	if err := d.requireConnected(); err != nil {
		return err
	}
	return d.conn.Send(protocol.NewJoinRoom(roomID))
}

func (d *Dispatcher) LeaveRoom() error {
	if err := d.requireConnected(); err != nil {
		return err
	}
	return d.conn.Send(protocol.NewLeaveRoom())
}

func (d *Dispatcher) StartGame(roomID string) error {
	if err := d.requireConnected(); err != nil {
		return err
	}
	return d.conn.Send(protocol.NewStartGame(roomID))
}

func (d *Dispatcher) Ping() error {
	if err := d.requireConnected(); err != nil {
		return err
	}
	return d.conn.Send(protocol.NewPing())
}

// PlayLand plays the land at hand index. One land per turn.
func (d *Dispatcher) PlayLand(index int) error {
	game, err := d.requireTurn()
	if err != nil {
		return err
	}
	if game.Turn.HasPlayedLand {
		return ErrAlreadyPlayedLand
	}
	return d.conn.Send(protocol.NewGameAction(protocol.ActionPlayLand, protocol.IndexPayload{Index: index}))
}

func (d *Dispatcher) ClaimGift(giftID string) error {
	if err := d.requireMainAction(); err != nil {
		return err
	}
	return d.conn.Send(protocol.NewGameAction(protocol.ActionClaimGift, protocol.GiftIDPayload{GiftID: giftID}))
}

// StealGift starts the steal flow for giftID. Depending on the target's
// locks this either emits the action immediately or stages a discard
// selection completed through the Stager.
func (d *Dispatcher) StealGift(giftID string) error {
	if err := d.requireMainAction(); err != nil {
		return err
	}
	return d.stager.Start(giftID)
}

func (d *Dispatcher) WrapGift(giftID string) error {
	if err := d.requireMainAction(); err != nil {
		return err
	}
	return d.conn.Send(protocol.NewGameAction(protocol.ActionWrapGift, protocol.GiftIDPayload{GiftID: giftID}))
}

func (d *Dispatcher) BuildBuilding(building protocol.Building) error {
	if err := d.requireMainAction(); err != nil {
		return err
	}
	return d.conn.Send(protocol.NewGameAction(protocol.ActionBuildBuilding, protocol.BuildingPayload{Building: building}))
}

func (d *Dispatcher) Recycle() error {
	if err := d.requireMainAction(); err != nil {
		return err
	}
	return d.conn.Send(protocol.NewGameAction(protocol.ActionRecycle, protocol.EmptyPayload{}))
}

func (d *Dispatcher) DrawExtra() error {
	if err := d.requireMainAction(); err != nil {
		return err
	}
	return d.conn.Send(protocol.NewGameAction(protocol.ActionDrawExtra, protocol.EmptyPayload{}))
}

// Discard discards the land at hand index against an outstanding discard
// obligation.
func (d *Dispatcher) Discard(index int) error {
	game, err := d.requireTurn()
	if err != nil {
		return err
	}
	if game.Viewer.PendingDiscard <= 0 {
		return ErrNoPendingDiscard
	}
	return d.conn.Send(protocol.NewGameAction(protocol.ActionDiscard, protocol.IndexPayload{Index: index}))
}

// EndTurn ends the viewer's turn. Refused while discards are pending.
func (d *Dispatcher) EndTurn() error {
	game, err := d.requireTurn()
	if err != nil {
		return err
	}
	if game.Viewer.PendingDiscard > 0 {
		return ErrPendingDiscard
	}
	return d.conn.Send(protocol.NewGameAction(protocol.ActionEndTurn, protocol.EmptyPayload{}))
}

func (d *Dispatcher) requireConnected() error {
	if d.conn.Status() != StatusConnected {
		return ErrNotConnected
	}
	return nil
}

func (d *Dispatcher) requireTurn() (*protocol.GameSnapshot, error) {
	if err := d.requireConnected(); err != nil {
		return nil, err
	}
	snap := d.store.Current()
	if snap.Game == nil {
		return nil, ErrNoActiveGame
	}
	if snap.Game.Turn.PlayerID != snap.Game.Viewer.MemberID {
		return nil, ErrNotYourTurn
	}
	return snap.Game, nil
}

func (d *Dispatcher) requireMainAction() error {
	game, err := d.requireTurn()
	if err != nil {
		return err
	}
	if game.Turn.HasTakenAction {
		return ErrAlreadyActed
	}
	return nil
}
