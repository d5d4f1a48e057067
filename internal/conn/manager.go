package conn

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/monotanks/server/internal/gamelog"
)

// Manager accepts upgrade handshakes, classifies connections as player or
// spectator, and tracks the lifecycle of every participant for the life
// of the match.
type Manager struct {
	JoinCode   string
	MaxPlayers int

	upgrader websocket.Upgrader

	mu               sync.RWMutex
	connections      map[string]*Connection
	playerToConn     map[string]*Connection
	disconnectedInGame map[string]bool
	matchRunning     bool
}

// NewManager builds a connection manager accepting up to maxPlayers
// simultaneous player slots, gated by joinCode (empty = open).
func NewManager(joinCode string, maxPlayers int) *Manager {
	return &Manager{
		JoinCode:   joinCode,
		MaxPlayers: maxPlayers,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		connections:        make(map[string]*Connection),
		playerToConn:       make(map[string]*Connection),
		disconnectedInGame: make(map[string]bool),
	}
}

// SetMatchRunning flags whether a match is currently in progress, used to
// decide whether a dropped player should be retained for results.
func (m *Manager) SetMatchRunning(running bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchRunning = running
}

// Accept upgrades the HTTP request to a websocket and registers the
// resulting connection. Returns the handshake HTTP status that should have
// been written on failure (0 on success).
func (m *Manager) Accept(w http.ResponseWriter, r *http.Request, hs HandshakeRequest) (*Connection, int) {
	if !ValidateJoinCode(m.JoinCode, hs.JoinCode) {
		return nil, http.StatusUnauthorized
	}

	if hs.Kind == KindPlayer {
		m.mu.RLock()
		full := len(m.playerToConn) >= m.MaxPlayers
		m.mu.RUnlock()
		if full {
			return nil, http.StatusTooManyRequests
		}
	}

	ws, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, http.StatusBadRequest
	}

	id := uuid.NewString()
	playerID := ""
	if hs.Kind == KindPlayer {
		playerID = id
	}

	c := NewConnection(id, hs.Kind, playerID, ws, hs.EnumFormat)

	m.mu.Lock()
	m.connections[id] = c
	if hs.Kind == KindPlayer {
		m.playerToConn[playerID] = c
	}
	m.mu.Unlock()

	gamelog.Conn.Printf("accepted %s connection %s", kindName(hs.Kind), id)
	return c, 0
}

func kindName(k Kind) string {
	if k == KindPlayer {
		return "player"
	}
	return "spectator"
}

// Register adds an already-constructed connection directly, bypassing the
// handshake. Used by the scheduler's tests, which drive a Connection
// without a real websocket upgrade.
func (m *Manager) Register(c *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connections[c.ID] = c
	if c.Kind == KindPlayer {
		m.playerToConn[c.PlayerID] = c
	}
}

// Remove detaches a connection on close. If the match is running and the
// connection was a player, the player id is retained in the
// disconnected-in-game set for results accounting.
func (m *Manager) Remove(c *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.connections, c.ID)
	if c.Kind == KindPlayer {
		delete(m.playerToConn, c.PlayerID)
		if m.matchRunning {
			m.disconnectedInGame[c.PlayerID] = true
		}
	}
	c.SetState(StateDisconnected)
}

// IsDisconnectedInGame reports whether playerID dropped mid-match.
func (m *Manager) IsDisconnectedInGame(playerID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.disconnectedInGame[playerID]
}

// All returns a snapshot slice of every currently open connection, used by
// the scheduler's broadcast fan-out.
func (m *Manager) All() []*Connection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Connection, 0, len(m.connections))
	for _, c := range m.connections {
		out = append(out, c)
	}
	return out
}

// Count returns the number of open player and spectator connections.
func (m *Manager) Count() (players, spectators int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.connections {
		if c.Kind == KindPlayer {
			players++
		} else {
			spectators++
		}
	}
	return
}

// ByPlayerID looks up a player's connection, if still open.
func (m *Manager) ByPlayerID(id string) (*Connection, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.playerToConn[id]
	return c, ok
}
