package client

import (
	"errors"
	"sort"
	"sync"

	"siege-client/internal/protocol"
	"siege-client/internal/state"
)

var (
	ErrGiftNotFound        = errors.New("GIFT_NOT_FOUND: target gift is not in the current snapshot")
	ErrGiftSealed          = errors.New("GIFT_SEALED: sealed gifts cannot be stolen")
	ErrNotEnoughCards      = errors.New("NOT_ENOUGH_CARDS: hand is smaller than the required discard count")
	ErrNoStagedSteal       = errors.New("NO_STAGED_STEAL: no steal is being staged")
	ErrIndexOutOfRange     = errors.New("INDEX_OUT_OF_RANGE: discard index is outside the current hand")
	ErrSelectionIncomplete = errors.New("SELECTION_INCOMPLETE: discard selection does not match the required count")
)

// StagedSteal is a read-only view of the in-progress steal selection.
type StagedSteal struct {
	GiftID    string
	GiftClass protocol.GiftClass
	Color     protocol.Color
	Locks     int
	Required  int
	Selected  []int
}

// StealStager holds at most one staged steal: the target is fixed at Start,
// then exactly Required discard indices are toggled in before Confirm emits
// the single steal_gift action. Modeled as an explicit {idle, selecting}
// machine so "one staged decision with a target-dependent quota" holds
// structurally rather than by call-site convention.
//
// Only target disappearance cancels a staged steal. Lock-count or building
// changes while staged leave the selection untouched; the server stays
// authoritative over whether the originally computed quota is payable.
type StealStager struct {
	conn  sender
	store *state.Store

	mu       sync.Mutex
	target   *protocol.Gift
	required int
	selected map[int]bool
}

// sender is the outbound surface the stager and dispatcher need from the
// client.
type sender interface {
	Status() Status
	Connect(name string) error
	Send(msg any) error
}

func NewStealStager(conn sender, store *state.Store) *StealStager {
	return &StealStager{conn: conn, store: store}
}

// Start begins staging a steal of giftID. The required discard count is the
// target's locks minus the thief's gloves discount, floored at zero. With
// nothing to discard the action is emitted immediately and nothing is
// staged. With a hand smaller than the requirement the steal is refused
// locally and nothing is sent. Starting over an existing staged steal
// replaces it.
func (st *StealStager) Start(giftID string) error {
	snap := st.store.Current()
	if snap.Game == nil {
		return ErrGiftNotFound
	}
	gift, ok := snap.Game.FindGift(giftID)
	if !ok {
		return ErrGiftNotFound
	}
	if gift.Sealed {
		return ErrGiftSealed
	}

	discount := 0
	if snap.Game.Viewer.Building == protocol.BuildingThiefsGloves {
		discount = protocol.StealDiscount
	}
	required := gift.Locks - discount
	if required < 0 {
		required = 0
	}

	if required == 0 {
		return st.conn.Send(protocol.NewGameAction(protocol.ActionStealGift, protocol.StealGiftPayload{
			GiftID:         gift.GiftID,
			DiscardIndices: []int{},
		}))
	}
	if len(snap.Game.Viewer.Hand) < required {
		return ErrNotEnoughCards
	}

	st.mu.Lock()
	st.target = &gift
	st.required = required
	st.selected = make(map[int]bool)
	st.mu.Unlock()
	return nil
}

// Toggle flips hand index i in or out of the discard selection. Adding past
// the required quota is ignored.
func (st *StealStager) Toggle(i int) error {
	snap := st.store.Current()

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.target == nil {
		return ErrNoStagedSteal
	}
	if snap.Game == nil || i < 0 || i >= len(snap.Game.Viewer.Hand) {
		return ErrIndexOutOfRange
	}
	if st.selected[i] {
		delete(st.selected, i)
		return nil
	}
	if len(st.selected) == st.required {
		return nil
	}
	st.selected[i] = true
	return nil
}

// Confirm emits the staged steal iff the selection is complete, then clears
// the staged state. An incomplete selection changes nothing and sends
// nothing.
func (st *StealStager) Confirm() error {
	st.mu.Lock()
	if st.target == nil {
		st.mu.Unlock()
		return ErrNoStagedSteal
	}
	if len(st.selected) != st.required {
		st.mu.Unlock()
		return ErrSelectionIncomplete
	}
	payload := protocol.StealGiftPayload{
		GiftID:         st.target.GiftID,
		DiscardIndices: sortedIndices(st.selected),
	}
	st.clearLocked()
	st.mu.Unlock()

	return st.conn.Send(protocol.NewGameAction(protocol.ActionStealGift, payload))
}

// Cancel abandons the staged steal unconditionally.
func (st *StealStager) Cancel() {
	st.mu.Lock()
	st.clearLocked()
	st.mu.Unlock()
}

// Staged returns a copy of the staged steal, if one exists.
func (st *StealStager) Staged() (StagedSteal, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.target == nil {
		return StagedSteal{}, false
	}
	return StagedSteal{
		GiftID:    st.target.GiftID,
		GiftClass: st.target.GiftClass,
		Color:     st.target.Color,
		Locks:     st.target.Locks,
		Required:  st.required,
		Selected:  sortedIndices(st.selected),
	}, true
}

// Invalidate reconciles the staged steal with a newly applied snapshot. If
// the target gift is gone from every gift list the decision is silently
// abandoned, never submitted against a stale target. Selected indices that
// no longer point into the viewer's hand are dropped.
func (st *StealStager) Invalidate(snap state.Snapshot) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.target == nil {
		return
	}
	if snap.Game == nil || !snap.Game.HasGift(st.target.GiftID) {
		st.clearLocked()
		return
	}
	handSize := len(snap.Game.Viewer.Hand)
	for i := range st.selected {
		if i >= handSize {
			delete(st.selected, i)
		}
	}
}

func (st *StealStager) clearLocked() {
	st.target = nil
	st.required = 0
	st.selected = nil
}

func sortedIndices(set map[int]bool) []int {
	indices := make([]int, 0, len(set))
	for i := range set {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return indices
}
