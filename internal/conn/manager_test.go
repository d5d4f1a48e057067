package conn

import (
	"net/http/httptest"
	"testing"

	"github.com/monotanks/server/internal/protocol"
)

func TestAcceptRejectsWrongJoinCode(t *testing.T) {
	m := NewManager("secret", 4)
	r := httptest.NewRequest("GET", "/?joinCode=wrong", nil)
	w := httptest.NewRecorder()

	_, status := m.Accept(w, r, ParseHandshake(r, "/"))
	if status != 401 {
		t.Errorf("expected 401 for a wrong join code, got %d", status)
	}
}

func TestAcceptRejectsFullPlayerSlots(t *testing.T) {
	m := NewManager("", 1)
	m.playerToConn["existing"] = NewConnection("existing", KindPlayer, "existing", nil, protocol.EnumAsInt)

	r := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	_, status := m.Accept(w, r, ParseHandshake(r, "/"))
	if status != 429 {
		t.Errorf("expected 429 once player slots are full, got %d", status)
	}
}

func TestManagerRemoveRetainsDisconnectedPlayerWhileMatchRunning(t *testing.T) {
	m := NewManager("", 4)
	c := NewConnection("c1", KindPlayer, "p1", nil, protocol.EnumAsInt)
	m.connections[c.ID] = c
	m.playerToConn[c.PlayerID] = c
	m.SetMatchRunning(true)

	m.Remove(c)

	if !m.IsDisconnectedInGame("p1") {
		t.Error("expected a player disconnecting mid-match to be retained for results")
	}
	if _, ok := m.ByPlayerID("p1"); ok {
		t.Error("expected the connection itself to be gone after Remove")
	}
}

func TestManagerRemoveDropsPlayerWhenMatchNotRunning(t *testing.T) {
	m := NewManager("", 4)
	c := NewConnection("c1", KindPlayer, "p1", nil, protocol.EnumAsInt)
	m.connections[c.ID] = c
	m.playerToConn[c.PlayerID] = c

	m.Remove(c)

	if m.IsDisconnectedInGame("p1") {
		t.Error("expected no disconnected-in-game retention outside a running match")
	}
}

func TestManagerCount(t *testing.T) {
	m := NewManager("", 4)
	player := NewConnection("c1", KindPlayer, "p1", nil, protocol.EnumAsInt)
	spectator := NewConnection("c2", KindSpectator, "", nil, protocol.EnumAsInt)
	m.connections[player.ID] = player
	m.connections[spectator.ID] = spectator

	players, spectators := m.Count()
	if players != 1 || spectators != 1 {
		t.Errorf("expected 1 player and 1 spectator, got players=%d spectators=%d", players, spectators)
	}
}
