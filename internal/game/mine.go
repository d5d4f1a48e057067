package game

import "fmt"

// MineState is the lifecycle stage of a planted mine.
type MineState int

const (
	MineArmed MineState = iota
	MineDetonated
	MineFading
)

// Mine is a stationary trap dropped by a tank. It detonates the tick a tank
// other than its owner stands on its tile, dealing damage to every tank
// within the blast radius, then lingers briefly in a fading state before
// removal.
type Mine struct {
	ID      string
	OwnerID string

	X, Y int

	State      MineState
	FadeTicks  int // ticks remaining in the fading state once detonated
}

var mineSeq int

// NewMine plants an armed mine at the tank's current tile.
func NewMine(owner *Tank) *Mine {
	mineSeq++
	return &Mine{
		ID:      fmt.Sprintf("mine_%d_%s", mineSeq, owner.OwnerID),
		OwnerID: owner.OwnerID,
		X:       owner.X,
		Y:       owner.Y,
		State:   MineArmed,
	}
}

// Detonate transitions an armed mine into its detonated state.
func (m *Mine) Detonate(fadeTicks int) {
	if m.State != MineArmed {
		return
	}
	m.State = MineDetonated
	m.FadeTicks = fadeTicks
}

// TickFade advances the fading countdown once detonated. Returns false once
// the mine should be removed from the world entirely.
func (m *Mine) TickFade() bool {
	if m.State == MineArmed {
		return true
	}
	if m.State == MineDetonated {
		m.State = MineFading
	}
	m.FadeTicks--
	return m.FadeTicks > 0
}

// InBlastRadius reports whether tile (x,y) lies within radius tiles of the
// mine's position (Chebyshev distance, matching the tank's movement grid).
func (m *Mine) InBlastRadius(x, y, radius int) bool {
	dx := x - m.X
	if dx < 0 {
		dx = -dx
	}
	dy := y - m.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx <= radius
	}
	return dy <= radius
}
