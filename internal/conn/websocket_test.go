package conn

import (
	"testing"

	"github.com/monotanks/server/internal/protocol"
)

func TestStoreAndTakeAction(t *testing.T) {
	c := NewConnection("c1", KindPlayer, "p1", nil, protocol.EnumAsInt)

	if _, ok := c.TakeAction(); ok {
		t.Fatal("expected no pending action on a fresh connection")
	}

	c.StoreAction("movement-forward")
	if !c.HasMadeActionThisTick() {
		t.Error("expected HasMadeActionThisTick to be true after StoreAction")
	}

	action, ok := c.TakeAction()
	if !ok || action != "movement-forward" {
		t.Fatalf("expected to take back the stored action, got %v ok=%v", action, ok)
	}

	if _, ok := c.TakeAction(); ok {
		t.Error("expected the action slot to be empty after being taken once")
	}
}

func TestResetTickFlagsClearsAdmission(t *testing.T) {
	c := NewConnection("c1", KindPlayer, "p1", nil, protocol.EnumAsInt)
	c.StoreAction("rotate-left")

	c.ResetTickFlags()
	if c.HasMadeActionThisTick() {
		t.Error("expected ResetTickFlags to clear the per-tick admission flag")
	}
}

func TestConnectionStateTransitions(t *testing.T) {
	c := NewConnection("c1", KindSpectator, "", nil, protocol.EnumAsInt)

	if c.State() != StateLobby {
		t.Fatalf("expected a fresh connection to start in StateLobby, got %v", c.State())
	}

	c.SetState(StatePlaying)
	if c.State() != StatePlaying {
		t.Errorf("expected state StatePlaying, got %v", c.State())
	}
}
