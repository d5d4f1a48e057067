package scheduler

import (
	"testing"
	"time"

	"github.com/monotanks/server/internal/conn"
	"github.com/monotanks/server/internal/config"
	"github.com/monotanks/server/internal/game"
	"github.com/monotanks/server/internal/protocol"
	"github.com/monotanks/server/internal/replay"
)

func newTestScheduler(t *testing.T, eager bool) (*Scheduler, *game.World, *conn.Manager) {
	t.Helper()
	world := game.NewWorld(10, 2, 1, config.DefaultSim(), config.DefaultLimits())
	manager := conn.NewManager("", 2)
	var journal *replay.Journal
	s := New(world, manager, journal, Config{
		BroadcastInterval: 50 * time.Millisecond,
		MaxTicks:          100,
		EagerBroadcast:    eager,
	})
	return s, world, manager
}

// addPlayerConn registers both the connection and its world-side Player
// record, since allBotsActed consults World.Players to tell a bot from a
// human.
func addPlayerConn(world *game.World, manager *conn.Manager, id, playerID string, isBot bool) *conn.Connection {
	world.AddPlayer(playerID, playerID, 0, isBot)
	c := conn.NewConnection(id, conn.KindPlayer, playerID, nil, protocol.EnumAsInt)
	manager.Register(c)
	return c
}

func TestAllBotsActedTrueWithNoPlayers(t *testing.T) {
	s, _, _ := newTestScheduler(t, true)
	if !s.allBotsActed() {
		t.Error("expected allBotsActed to vacuously hold with no player connections")
	}
}

func TestAllBotsActedFalseUntilEveryBotActs(t *testing.T) {
	s, world, manager := newTestScheduler(t, true)
	c1 := addPlayerConn(world, manager, "c1", "p1", true)
	addPlayerConn(world, manager, "c2", "p2", true)

	if s.allBotsActed() {
		t.Fatal("expected allBotsActed false before any bot has acted")
	}

	c1.StoreAction("noop")
	if s.allBotsActed() {
		t.Error("expected allBotsActed false while one bot still hasn't acted")
	}
}

func TestAllBotsActedTrueOnceEveryBotActed(t *testing.T) {
	s, world, manager := newTestScheduler(t, true)
	c1 := addPlayerConn(world, manager, "c1", "p1", true)
	c2 := addPlayerConn(world, manager, "c2", "p2", true)
	c1.StoreAction("noop")
	c2.StoreAction("noop")

	if !s.allBotsActed() {
		t.Error("expected allBotsActed true once every bot has acted")
	}
}

func TestAllBotsActedFalseWithAHumanPlayerPresent(t *testing.T) {
	s, world, manager := newTestScheduler(t, true)
	bot := addPlayerConn(world, manager, "c1", "p1", true)
	human := addPlayerConn(world, manager, "c2", "p2", false)
	bot.StoreAction("noop")
	human.StoreAction("noop")

	if s.allBotsActed() {
		t.Error("expected allBotsActed to stay false whenever a human player is in the match, regardless of whether they acted")
	}
}

func TestDrainActionsCollectsPendingGameActions(t *testing.T) {
	s, world, manager := newTestScheduler(t, false)
	c1 := addPlayerConn(world, manager, "c1", "p1", true)
	addPlayerConn(world, manager, "c2", "p2", true)
	c1.StoreAction(game.MovementAction{Forward: true})

	actions := s.drainActions()
	if len(actions) != 1 {
		t.Fatalf("expected exactly one drained action, got %d", len(actions))
	}
	mv, ok := actions["p1"].(game.MovementAction)
	if !ok || !mv.Forward {
		t.Errorf("expected p1's drained action to be a forward MovementAction, got %#v", actions["p1"])
	}
}

func TestDrainActionsIgnoresNonGameActionPayloads(t *testing.T) {
	s, world, manager := newTestScheduler(t, false)
	c1 := addPlayerConn(world, manager, "c1", "p1", true)
	c1.StoreAction("not-a-game-action")

	actions := s.drainActions()
	if len(actions) != 0 {
		t.Errorf("expected a non-game.Action payload to be filtered out, got %d actions", len(actions))
	}
}

func TestWaitEagerOrTimerReturnsTrueWhenAlreadyActed(t *testing.T) {
	s, world, manager := newTestScheduler(t, true)
	c1 := addPlayerConn(world, manager, "c1", "p1", true)
	c1.StoreAction("noop")

	if !s.waitEagerOrTimer(50 * time.Millisecond) {
		t.Error("expected an immediate true when every bot already acted before waiting")
	}
}

func TestWaitEagerOrTimerFiresOnNotifyBotActed(t *testing.T) {
	s, world, manager := newTestScheduler(t, true)
	c1 := addPlayerConn(world, manager, "c1", "p1", true)

	done := make(chan bool, 1)
	go func() {
		done <- s.waitEagerOrTimer(500 * time.Millisecond)
	}()

	time.Sleep(20 * time.Millisecond)
	c1.StoreAction("noop")
	s.NotifyBotActed()

	select {
	case fired := <-done:
		if !fired {
			t.Error("expected waitEagerOrTimer to return true on the eager signal")
		}
	case <-time.After(time.Second):
		t.Fatal("waitEagerOrTimer never returned after NotifyBotActed")
	}
}

func TestWaitEagerOrTimerTimesOutWithoutAction(t *testing.T) {
	s, world, manager := newTestScheduler(t, true)
	addPlayerConn(world, manager, "c1", "p1", true)

	if s.waitEagerOrTimer(20 * time.Millisecond) {
		t.Error("expected waitEagerOrTimer to time out false when no bot ever acts")
	}
}

func TestWaitEagerOrTimerTimesOutWithAHumanPlayerEvenIfTheyActed(t *testing.T) {
	s, world, manager := newTestScheduler(t, true)
	human := addPlayerConn(world, manager, "c1", "p1", false)
	human.StoreAction("noop")

	if s.waitEagerOrTimer(20 * time.Millisecond) {
		t.Error("expected waitEagerOrTimer to never short-circuit the broadcast interval for a human player")
	}
}

func TestNotifyBotActedNoopWhenEagerBroadcastDisabled(t *testing.T) {
	s, world, manager := newTestScheduler(t, false)
	c1 := addPlayerConn(world, manager, "c1", "p1", true)
	c1.StoreAction("noop")

	// Should not panic even though eagerSignal was never initialized.
	s.NotifyBotActed()
}
