package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"siege-client/internal/protocol"
	"siege-client/internal/state"
)

// Status is the lifecycle state of the current connection handle.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
)

const (
	dialTimeout  = 10 * time.Second
	writeTimeout = 3 * time.Second
)

var ErrNotConnected = errors.New("NOT_CONNECTED: no open lobby connection")

// conn is the transport surface the client needs from a dialed websocket.
// *websocket.Conn satisfies it; tests substitute an in-memory fake.
type conn interface {
	Read(ctx context.Context) (websocket.MessageType, []byte, error)
	Write(ctx context.Context, typ websocket.MessageType, p []byte) error
	Close(code websocket.StatusCode, reason string) error
}

type dialFunc func(ctx context.Context, endpoint string) (conn, error)

func websocketDial(ctx context.Context, endpoint string) (conn, error) {
	sock, _, err := websocket.Dial(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return sock, nil
}

// handle is one dialed connection. Every handle carries a session token and
// a monotonically increasing generation; events produced by a handle only
// take effect while that generation is still current.
type handle struct {
	gen   uint64
	token string
	sock  conn
}

// Options configures a Client.
type Options struct {
	// LobbyURL is the websocket endpoint of the lobby, e.g.
	// ws://host:8000/api/v1/lobby/ws.
	LobbyURL string

	// Store receives every guarded inbound event.
	Store *state.Store

	// OnEvent, when set, is called after each inbound event has been applied.
	OnEvent func(protocol.Event, state.Snapshot)

	// dial overrides the websocket dialer in tests.
	dial dialFunc
}

// Client owns at most one live connection to the lobby. Opening a new
// connection always supersedes the previous one: its handle is closed first
// and the generation guard drops any of its late callbacks.
type Client struct {
	lobbyURL string
	dial     dialFunc
	store    *state.Store
	onEvent  func(protocol.Event, state.Snapshot)

	mu         sync.Mutex
	current    *handle
	status     Status
	lastGen    uint64
	onSnapshot func(state.Snapshot)
}

func New(opts Options) *Client {
	dial := opts.dial
	if dial == nil {
		dial = websocketDial
	}
	store := opts.Store
	if store == nil {
		store = state.NewStore(nil)
	}
	return &Client{
		lobbyURL: opts.LobbyURL,
		dial:     dial,
		store:    store,
		onEvent:  opts.OnEvent,
		status:   StatusDisconnected,
	}
}

// Store returns the state store this client applies events to.
func (c *Client) Store() *state.Store { return c.store }

// Status returns the lifecycle state of the current handle.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// SessionToken returns the session token of the current handle, or "" when
// disconnected.
func (c *Client) SessionToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return ""
	}
	return c.current.token
}

// OnSnapshot registers a hook invoked with the snapshot resulting from each
// applied game state event and from each disconnect reset. The dispatcher
// uses it to revalidate a staged steal against the new snapshot.
func (c *Client) OnSnapshot(fn func(state.Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSnapshot = fn
}

// Connect opens a fresh connection, superseding and closing any existing
// one. name, when non-empty, is sent as the desired display name. The dial
// happens asynchronously; progress surfaces through Status.
func (c *Client) Connect(name string) error {
	endpoint, err := c.endpoint(name)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.current != nil {
		c.closeHandleLocked(c.current, "superseded by newer connection")
	}
	c.lastGen++
	h := &handle{gen: c.lastGen, token: uuid.New().String()}
	c.current = h
	c.status = StatusConnecting
	c.mu.Unlock()

	log.Info().Uint64("gen", h.gen).Str("session", h.token).Msg("dialing lobby")
	go c.dialAndRun(h, endpoint)
	return nil
}

// Disconnect closes the current handle, if any. Room and game state are
// cleared; the member directory stays but is stale until the next welcome.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.current != nil {
		c.closeHandleLocked(c.current, "client disconnect")
		c.current = nil
	}
	c.status = StatusDisconnected
	snap := c.store.ApplyDisconnect()
	snapshotHook := c.onSnapshot
	c.mu.Unlock()

	if snapshotHook != nil {
		snapshotHook(snap)
	}
}

// Send marshals msg and writes it to the current connection. Sends are fire
// and forget: any outcome arrives later as an independent inbound event.
func (c *Client) Send(msg any) error {
	c.mu.Lock()
	if c.status != StatusConnected || c.current == nil || c.current.sock == nil {
		c.mu.Unlock()
		return ErrNotConnected
	}
	sock := c.current.sock
	c.mu.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return sock.Write(ctx, websocket.MessageText, data)
}

func (c *Client) endpoint(name string) (string, error) {
	u, err := url.Parse(c.lobbyURL)
	if err != nil {
		return "", err
	}
	if name != "" {
		q := u.Query()
		q.Set("name", name)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// dialAndRun completes the dial for h, then pumps its frames. Both the dial
// completion and every frame pass the generation guard: a superseded handle
// cannot resurrect state after a newer connection has taken over.
func (c *Client) dialAndRun(h *handle, endpoint string) {
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	sock, err := c.dial(ctx, endpoint)
	cancel()

	c.mu.Lock()
	if c.current != h {
		c.mu.Unlock()
		if err == nil {
			_ = sock.Close(websocket.StatusNormalClosure, "superseded")
		}
		log.Debug().Uint64("gen", h.gen).Msg("dropping dial result for superseded connection")
		return
	}
	if err != nil {
		c.status = StatusError
		c.current = nil
		snap := c.store.ApplyDisconnect()
		snapshotHook := c.onSnapshot
		c.mu.Unlock()
		log.Error().Err(err).Uint64("gen", h.gen).Msg("lobby dial failed")
		if snapshotHook != nil {
			snapshotHook(snap)
		}
		return
	}
	h.sock = sock
	c.status = StatusConnected
	c.mu.Unlock()

	log.Info().Uint64("gen", h.gen).Str("session", h.token).Msg("lobby connected")
	c.readLoop(h)
}

func (c *Client) readLoop(h *handle) {
	for {
		msgType, data, err := h.sock.Read(context.Background())
		if err != nil {
			c.handleClosed(h, err)
			return
		}
		if msgType != websocket.MessageText {
			continue
		}

		ev, err := protocol.DecodeEvent(data)
		if err != nil {
			// Undecodable frames are dropped without touching the mirror.
			log.Debug().Err(err).Uint64("gen", h.gen).Msg("dropping undecodable frame")
			continue
		}
		c.deliver(h, ev)
	}
}

// deliver applies one inbound event under the generation guard.
func (c *Client) deliver(h *handle, ev protocol.Event) {
	c.mu.Lock()
	if c.current != h {
		c.mu.Unlock()
		log.Debug().Uint64("gen", h.gen).Msg("dropping event from superseded connection")
		return
	}
	snap := c.store.Apply(ev)
	snapshotHook := c.onSnapshot
	c.mu.Unlock()

	switch ev.(type) {
	case protocol.GameStarted, protocol.GameStateUpdated:
		if snapshotHook != nil {
			snapshotHook(snap)
		}
	}
	if c.onEvent != nil {
		c.onEvent(ev, snap)
	}
}

// handleClosed records the loss of h's connection, if h is still current.
func (c *Client) handleClosed(h *handle, err error) {
	c.mu.Lock()
	if c.current != h {
		c.mu.Unlock()
		return
	}
	c.current = nil
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		c.status = StatusDisconnected
	default:
		c.status = StatusError
	}
	snap := c.store.ApplyDisconnect()
	snapshotHook := c.onSnapshot
	c.mu.Unlock()

	log.Info().Err(err).Uint64("gen", h.gen).Str("status", string(c.status)).Msg("lobby connection closed")
	if snapshotHook != nil {
		snapshotHook(snap)
	}
}

func (c *Client) closeHandleLocked(h *handle, reason string) {
	if h.sock != nil {
		_ = h.sock.Close(websocket.StatusNormalClosure, reason)
	}
}
