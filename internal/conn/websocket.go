package conn

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/monotanks/server/internal/gamelog"
	"github.com/monotanks/server/internal/protocol"
)

// State is a participant's position in the lobby -> playing -> ended
// lifecycle.
type State int

const (
	StateLobby State = iota
	StatePlaying
	StateEnded
	StateDisconnected
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
)

// Connection wraps one upgraded websocket with its serialization context
// and single-writer action slot. The I/O worker (ReadLoop) is the sole
// writer of pendingAction; the tick worker is the sole reader, taken once
// per tick at drain time.
type Connection struct {
	ID       string
	Kind     Kind
	PlayerID string // empty for spectators

	ws    *websocket.Conn
	codec *protocol.Codec
	log   *log.Logger

	mu    sync.Mutex
	state State

	actionMu                    sync.Mutex
	pendingAction                interface{}
	hasPendingAction              bool
	hasMadeActionThisTick          bool
	hasMadeActionToCurrentGameState bool

	writeMu sync.Mutex
}

// NewConnection wraps ws for a participant identified by id.
func NewConnection(id string, kind Kind, playerID string, ws *websocket.Conn, format protocol.EnumFormat) *Connection {
	return &Connection{
		ID:       id,
		Kind:     kind,
		PlayerID: playerID,
		ws:       ws,
		codec:    protocol.NewCodec(format),
		log:      gamelog.ForConnection(id),
		state:    StateLobby,
	}
}

// State returns the connection's current lifecycle state.
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetState transitions the connection's lifecycle state.
func (c *Connection) SetState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

// Send encodes and writes one packet. Safe for concurrent callers - the
// broadcast fan-out pool writes to many connections at once, but never
// two goroutines to the *same* connection at the same time.
func (c *Connection) Send(kind protocol.PacketType, payload interface{}) error {
	frame, err := c.codec.Encode(kind, payload)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteMessage(websocket.TextMessage, frame)
}

// Close closes the underlying socket with the given close code.
func (c *Connection) Close(code int, reason string) error {
	c.writeMu.Lock()
	msg := websocket.FormatCloseMessage(code, reason)
	c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
	c.writeMu.Unlock()
	return c.ws.Close()
}

// ReadLoop blocks reading frames until the socket closes or errs, invoking
// onFrame for each one. Runs on its own per-connection goroutine - this is
// the I/O worker for this connection.
func (c *Connection) ReadLoop(onFrame func(frame []byte)) error {
	c.ws.SetReadDeadline(time.Now().Add(readTimeout))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return err
		}
		c.ws.SetReadDeadline(time.Now().Add(readTimeout))
		onFrame(data)
	}
}

// Codec exposes the connection's negotiated codec, used by the dispatcher
// to decode inbound frames.
func (c *Connection) Codec() *protocol.Codec {
	return c.codec
}

// StoreAction admits one decoded action into the connection's slot for the
// next tick drain, guarded by actionMu so the I/O worker never blocks the
// tick worker's read. The action is stored atomically, opaque here
// (package game owns its concrete type) to keep conn free of a game
// package dependency.
func (c *Connection) StoreAction(action interface{}) {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()
	c.pendingAction = action
	c.hasPendingAction = true
	c.hasMadeActionThisTick = true
	c.hasMadeActionToCurrentGameState = true
}

// TakeAction removes and returns the pending action, if any. Called once
// per tick by the scheduler at drain time.
func (c *Connection) TakeAction() (interface{}, bool) {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()
	if !c.hasPendingAction {
		return nil, false
	}
	a := c.pendingAction
	c.hasPendingAction = false
	return a, true
}

// HasMadeActionThisTick reports the one-action-per-tick admission flag.
func (c *Connection) HasMadeActionThisTick() bool {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()
	return c.hasMadeActionThisTick
}

// ResetTickFlags clears the per-tick admission flags.
func (c *Connection) ResetTickFlags() {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()
	c.hasMadeActionThisTick = false
	c.hasMadeActionToCurrentGameState = false
}
