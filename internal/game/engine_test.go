package game

import (
	"testing"

	"github.com/monotanks/server/internal/config"
)

func testWorld(t *testing.T, numberOfPlayers int) *World {
	t.Helper()
	return NewWorld(20, numberOfPlayers, 42, config.DefaultSim(), config.DefaultLimits())
}

func TestNewWorldGeneratesGridAndRNG(t *testing.T) {
	w := testWorld(t, 2)
	if w.Grid == nil {
		t.Fatal("expected a generated grid")
	}
	if w.RNG == nil {
		t.Fatal("expected a seeded match RNG")
	}
}

func TestAddPlayerAssignsSpawnAndRespectsLimit(t *testing.T) {
	limits := config.DefaultLimits()
	limits.MaxPlayers = 1
	w := NewWorld(20, 1, 1, config.DefaultSim(), limits)

	p, ok := w.AddPlayer("p1", "Alice", 0xff0000, false)
	if !ok {
		t.Fatal("expected first player to be admitted")
	}
	if p.Tank == nil {
		t.Fatal("expected a tank to be assigned on join")
	}

	if _, ok := w.AddPlayer("p2", "Bob", 0x00ff00, false); ok {
		t.Error("expected second player to be rejected once MaxPlayers is reached")
	}
}

func TestRunTickAppliesMovementAction(t *testing.T) {
	w := testWorld(t, 1)
	p, _ := w.AddPlayer("p1", "Alice", 0xff0000, false)
	p.Tank.Direction = Right
	p.Tank.SetPosition(5, 5)

	startX := p.Tank.X
	w.RunTick(map[string]Action{"p1": MovementAction{Forward: true}})

	if p.Tank.X != startX+1 {
		t.Errorf("expected tank to move one tile right, got x=%d (was %d)", p.Tank.X, startX)
	}
	if w.Tick != 1 {
		t.Errorf("expected tick counter to advance to 1, got %d", w.Tick)
	}
}

func TestRunTickBulletKillsAndAwardsKill(t *testing.T) {
	w := testWorld(t, 2)
	killer, _ := w.AddPlayer("killer", "Killer", 0xff0000, false)
	victim, _ := w.AddPlayer("victim", "Victim", 0x00ff00, false)

	killer.Tank.SetPosition(5, 5)
	killer.Tank.Direction = Right
	killer.Tank.Turret.Direction = Right
	victim.Tank.SetPosition(6, 5)
	victim.Tank.Health = 1

	w.Bullets = append(w.Bullets, NewBullet(killer.Tank, 10.0, 50))
	w.RunTick(nil)

	if !victim.Tank.IsDead() {
		t.Fatal("expected victim tank to die from the bullet hit")
	}
	if killer.Kills != 1 {
		t.Errorf("expected killer to be credited with 1 kill, got %d", killer.Kills)
	}
}

func TestRunTickMineDetonationStunsSurvivors(t *testing.T) {
	w := testWorld(t, 2)
	owner, _ := w.AddPlayer("owner", "Owner", 0xff0000, false)
	victim, _ := w.AddPlayer("victim", "Victim", 0x00ff00, false)

	owner.Tank.SetPosition(4, 4)
	victim.Tank.SetPosition(5, 5)
	victim.Tank.Health = MaxHealth

	mine := NewMine(owner.Tank)
	mine.X, mine.Y = 5, 5
	w.Mines = append(w.Mines, mine)

	w.RunTick(nil)

	if victim.Tank.IsDead() {
		t.Fatal("expected victim to survive a single mine blast at full health")
	}
	if !victim.Tank.blocks(StunAll) {
		t.Error("expected a surviving victim caught in the mine blast to be stunned")
	}
}

func TestRunTickRespawnsAfterConfiguredTicks(t *testing.T) {
	sim := config.DefaultSim()
	sim.RespawnTicks = 2
	w := NewWorld(20, 1, 1, sim, config.DefaultLimits())
	p, _ := w.AddPlayer("p1", "Alice", 0xff0000, false)
	p.Tank.TakeDamage(1000)

	w.RunTick(nil)
	if p.Tank.IsDead() != true {
		t.Fatal("expected tank still dead after first tick of respawn countdown")
	}
	w.RunTick(nil)
	if p.Tank.IsDead() {
		t.Error("expected tank to respawn once the countdown elapses")
	}
}

func TestRunTickZoneCaptureAwardsScore(t *testing.T) {
	sim := config.DefaultSim()
	sim.CaptureTicks = 2
	w := NewWorld(20, 1, 1, sim, config.DefaultLimits())
	p, _ := w.AddPlayer("p1", "Alice", 0xff0000, false)

	zone := &Zone{ID: 'A', X: 0, Y: 0, Width: 2, Height: 2, Status: ZoneNeutral}
	w.Grid.Zones = []*Zone{zone}
	p.Tank.SetPosition(0, 0)

	w.RunTick(nil)
	w.RunTick(nil)

	if p.Score != 1 {
		t.Errorf("expected capturing player to be awarded 1 score point, got %d", p.Score)
	}
}

func TestRankingsOrdersByScoreThenKills(t *testing.T) {
	w := testWorld(t, 2)
	a, _ := w.AddPlayer("a", "Alice", 0, false)
	b, _ := w.AddPlayer("b", "Bob", 0, false)
	a.Score, a.Kills = 3, 1
	b.Score, b.Kills = 3, 5

	ranked := w.Rankings()
	if ranked[0].ID != "b" {
		t.Errorf("expected Bob ranked first on tiebreak kills, got %s", ranked[0].ID)
	}
}
