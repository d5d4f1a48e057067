package action

import (
	"testing"

	"github.com/monotanks/server/internal/conn"
	"github.com/monotanks/server/internal/game"
	"github.com/monotanks/server/internal/protocol"
)

type fakeMatch struct {
	running     bool
	gameStateID string
	notified    int
}

func (f *fakeMatch) IsRunning() bool            { return f.running }
func (f *fakeMatch) CurrentGameStateID() string { return f.gameStateID }
func (f *fakeMatch) NotifyBotActed()            { f.notified++ }

func newPlayerConn() *conn.Connection {
	return conn.NewConnection("c1", conn.KindPlayer, "p1", nil, protocol.EnumAsInt)
}

func TestHandleMovementStoresAction(t *testing.T) {
	match := &fakeMatch{running: true, gameStateID: "gs1"}
	d := NewDispatcher(match)
	c := newPlayerConn()

	frame := []byte(`{"type": 10, "payload": {"direction": "forward", "gameStateId": "gs1"}}`)
	d.Handle(c, frame)

	raw, ok := c.TakeAction()
	if !ok {
		t.Fatal("expected a movement action to be stored")
	}
	mv, ok := raw.(game.MovementAction)
	if !ok || !mv.Forward {
		t.Fatalf("expected a forward MovementAction, got %#v", raw)
	}
	if match.notified != 1 {
		t.Errorf("expected NotifyBotActed to be called once, got %d", match.notified)
	}
}

func TestHandleMovementRejectsStaleGameState(t *testing.T) {
	match := &fakeMatch{running: true, gameStateID: "gs-current"}
	d := NewDispatcher(match)
	c := newPlayerConn()

	frame := []byte(`{"type": 10, "payload": {"direction": "forward", "gameStateId": "gs-stale"}}`)
	d.Handle(c, frame)

	if _, ok := c.TakeAction(); ok {
		t.Error("expected a stale gameStateId to be dropped without storing an action")
	}
	if match.notified != 0 {
		t.Error("expected no NotifyBotActed call for a dropped stale action")
	}
}

func TestHandleSkipsWhenMatchNotRunning(t *testing.T) {
	match := &fakeMatch{running: false}
	d := NewDispatcher(match)
	c := newPlayerConn()

	frame := []byte(`{"type": 10, "payload": {"direction": "forward", "gameStateId": ""}}`)
	d.Handle(c, frame)

	if _, ok := c.TakeAction(); ok {
		t.Error("expected no action to be admitted while the match is not running")
	}
}

func TestHandleSkipsSecondActionInSameTick(t *testing.T) {
	match := &fakeMatch{running: true}
	d := NewDispatcher(match)
	c := newPlayerConn()

	frame := []byte(`{"type": 10, "payload": {"direction": "forward", "gameStateId": ""}}`)
	d.Handle(c, frame)
	if _, ok := c.TakeAction(); !ok {
		t.Fatal("expected the first action in the tick to be admitted")
	}

	frame2 := []byte(`{"type": 10, "payload": {"direction": "backward", "gameStateId": ""}}`)
	d.Handle(c, frame2)
	if _, ok := c.TakeAction(); ok {
		t.Error("expected a second action in the same tick to be rejected")
	}
}

func TestHandleAbilityUseStoresAction(t *testing.T) {
	match := &fakeMatch{running: true}
	d := NewDispatcher(match)
	c := newPlayerConn()

	frame := []byte(`{"type": 12, "payload": {"abilityType": "useLaser", "gameStateId": ""}}`)
	d.Handle(c, frame)

	raw, ok := c.TakeAction()
	if !ok {
		t.Fatal("expected an ability action to be stored")
	}
	ab, ok := raw.(game.AbilityAction)
	if !ok || ab.Kind != game.AbilityUseLaser {
		t.Fatalf("expected AbilityUseLaser, got %#v", raw)
	}
}
