package game

import "testing"

func TestLaserCoversAxisAlignedTiles(t *testing.T) {
	tank := NewTank("p1", 5, 5, Up)
	tank.Turret.Direction = Up

	l := NewLaser(tank, 60, 3)
	if !l.Covers(5, 0) || !l.Covers(5, 19) {
		t.Error("expected vertical laser to cover every row at x == origin")
	}
	if l.Covers(6, 5) {
		t.Error("expected vertical laser not to cover a different column")
	}
}

func TestLaserTickLifetime(t *testing.T) {
	tank := NewTank("p1", 0, 0, Up)
	l := NewLaser(tank, 60, 2)

	if !l.Tick() {
		t.Error("expected laser to survive its first tick")
	}
	if l.Tick() {
		t.Error("expected laser to expire after its lifetime elapses")
	}
}

func TestMineDetonateAndFade(t *testing.T) {
	tank := NewTank("p1", 3, 3, Up)
	m := NewMine(tank)

	if m.State != MineArmed {
		t.Fatalf("expected new mine armed, got %v", m.State)
	}

	m.Detonate(3)
	if m.State != MineDetonated {
		t.Fatalf("expected mine detonated, got %v", m.State)
	}

	if !m.TickFade() {
		t.Error("expected mine to survive its first fade tick")
	}
	if m.State != MineFading {
		t.Errorf("expected mine state Fading after first tick, got %v", m.State)
	}
}

func TestMineInBlastRadiusChebyshev(t *testing.T) {
	m := &Mine{X: 5, Y: 5}

	if !m.InBlastRadius(6, 6, 1) {
		t.Error("expected diagonal-adjacent tile within radius 1")
	}
	if m.InBlastRadius(7, 5, 1) {
		t.Error("expected tile two tiles away to be outside radius 1")
	}
}
