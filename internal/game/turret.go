package game

// Turret is the rotating weapon mount carried by a Tank. It rotates
// independently of the tank body and regenerates ammo on a fixed cadence.
type Turret struct {
	Direction          Direction
	BulletCount        int
	BulletRegenTicks   int // ticks elapsed since the last regen tick
}

// NewTurret returns a turret facing dir, loaded to max.
func NewTurret(dir Direction, maxBullets int) Turret {
	return Turret{Direction: dir, BulletCount: maxBullets}
}

// RotateTurret turns the turret independently of the tank body. Blocked by a
// rotation stun the same way tank body rotation is.
func (t *Tank) RotateTurret(r Rotation) {
	if t.blocks(StunRotation) {
		return
	}
	t.Turret.Direction = t.Turret.Direction.Apply(r)
}

// TryShoot consumes one bullet from the turret's magazine, reporting
// whether a shot may be fired. Blocked while AbilityUse is stunned.
func (t *Tank) TryShoot() bool {
	if t.IsDead() || t.blocks(StunAbilityUse) || t.Turret.BulletCount <= 0 {
		return false
	}
	t.Turret.BulletCount--
	return true
}

// RegenAmmo advances the turret's regen counter by one tick, refilling a
// single bullet every regenTicks ticks, up to maxBullets.
func (t *Tank) RegenAmmo(regenTicks, maxBullets int) {
	if t.Turret.BulletCount >= maxBullets {
		t.Turret.BulletRegenTicks = 0
		return
	}
	t.Turret.BulletRegenTicks++
	if t.Turret.BulletRegenTicks >= regenTicks {
		t.Turret.BulletRegenTicks = 0
		t.Turret.BulletCount++
	}
}
