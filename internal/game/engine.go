package game

import (
	"log"
	"sort"
	"sync"

	"github.com/monotanks/server/internal/config"
	"github.com/monotanks/server/internal/gamelog"
)

// World is the single authoritative game state: the static grid plus every
// live entity. It is owned exclusively by the tick worker while a tick is
// in progress - callers outside the engine must
// only read it while holding RLock via WithReadLock.
type World struct {
	mu sync.RWMutex

	Grid    *Grid
	Players map[string]*Player
	Order   []string // stable player id order, for deterministic phase-1 base ordering

	Bullets []*Bullet
	Lasers  []*Laser
	Mines   []*Mine
	Items   []*Item

	Sim    config.SimConfig
	Limits config.ResourceLimits
	RNG    *MatchRNG

	Tick int

	log *log.Logger
}

// NewWorld constructs a world for numberOfPlayers slots using the given
// seed and tunables. The grid is generated once, here, and never mutated
// again.
func NewWorld(dim, numberOfPlayers int, seed int64, sim config.SimConfig, limits config.ResourceLimits) *World {
	rng := NewMatchRNG(seed)
	return &World{
		Grid:    NewGrid(dim, numberOfPlayers, rng),
		Players: make(map[string]*Player),
		Sim:     sim,
		Limits:  limits,
		RNG:     rng,
		log:     gamelog.Engine,
	}
}

// AddPlayer registers a player and assigns it a spawn-point tank. Returns
// false if the resource limit on player count has already been reached.
func (w *World) AddPlayer(id, nickname string, color uint32, isBot bool) (*Player, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.Players) >= w.Limits.MaxPlayers {
		return nil, false
	}

	p := NewPlayer(id, nickname, color, isBot)
	spawn := w.Grid.SpawnFor(len(w.Order))
	dir := Direction(w.RNG.Intn(4))
	p.Tank = NewTank(id, spawn.X, spawn.Y, dir)

	w.Players[id] = p
	w.Order = append(w.Order, id)
	return p, true
}

// MarkDisconnected retains a player for results accounting without
// removing their tank from the grid mid-match.
func (w *World) MarkDisconnected(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.Players[id]; ok {
		p.Disconnected = true
	}
}

// WithReadLock runs fn while holding the world's read lock, for use by the
// view renderer and replay journal which must observe a consistent tick
// snapshot without blocking other readers.
func (w *World) WithReadLock(fn func()) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	fn()
}

func (w *World) tankAt(x, y int) *Tank {
	for _, p := range w.Players {
		if p.Tank != nil && !p.Tank.IsDead() && p.Tank.X == x && p.Tank.Y == y {
			return p.Tank
		}
	}
	return nil
}

func (w *World) occupiedSwap(x, y int) *Tank {
	for _, p := range w.Players {
		if p.Tank != nil && !p.Tank.IsDead() && p.Tank.PrevX == x && p.Tank.PrevY == y {
			return p.Tank
		}
	}
	return nil
}

// RunTick executes simulation phases 1-10 under the world's exclusive
// write lock, draining actions in the deterministic order the scheduler
// handed it. The ordering of phases below is part of the contract.
func (w *World) RunTick(actions map[string]Action) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.Tick++

	// previous tiles only cover moves made during this tick
	for _, p := range w.Players {
		if p.Tank != nil {
			p.Tank.PrevX, p.Tank.PrevY = p.Tank.X, p.Tank.Y
		}
	}

	w.phase1DrainActions(actions)
	w.phase2UpdateBullets()
	w.phase3UpdateLasers()
	w.phase4UpdateMines()
	w.phase5UpdateStuns()
	w.phase6RegenAmmo()
	w.phase7RegenSpawn()
	w.phase8RecomputeVisibility()
	w.phase9UpdateZones()
	w.phase10PickUpItems()
}

// phase1DrainActions applies each queued action in an order that is stable
// by nickname and then shuffled by the match PRNG, so replay with the same
// seed reproduces the same apply order while remaining unpredictable to
// clients inspecting broadcast timing.
func (w *World) phase1DrainActions(actions map[string]Action) {
	ids := make([]string, 0, len(actions))
	for id := range actions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return w.Players[ids[i]].Nickname < w.Players[ids[j]].Nickname
	})
	w.RNG.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	for _, id := range ids {
		actions[id].apply(w, id)
	}
}

// phase2UpdateBullets sub-steps every bullet one tile boundary at a time so
// a fast bullet cannot tunnel past a tank occupying a crossed tile.
func (w *World) phase2UpdateBullets() {
	var alive []*Bullet

	for _, b := range w.Bullets {
		destroyed := false
		steps := int(b.Speed)
		if steps < 1 {
			steps = 1
		}
		for s := 0; s < steps && !destroyed; s++ {
			prevX, prevY := b.Tile()
			b.Step(1.0 / float64(steps))
			x, y := b.Tile()

			if b.OutOfBounds(w.Grid.Dimension) || w.Grid.IsWall(x, y) {
				destroyed = true
				break
			}

			if target := w.tankAt(x, y); target != nil {
				w.applyBulletHit(b, target)
				destroyed = true
				break
			}
			// swap collision: a tank moved into the tile the bullet just left
			// while the bullet moved into the tank's previous tile.
			if swapped := w.occupiedSwap(x, y); swapped != nil && swapped.X == prevX && swapped.Y == prevY {
				w.applyBulletHit(b, swapped)
				destroyed = true
				break
			}
		}
		if !destroyed {
			alive = append(alive, b)
		}
	}

	w.Bullets = resolveBulletCollisions(alive)
}

func (w *World) applyBulletHit(b *Bullet, target *Tank) {
	result := target.TakeDamage(b.Damage)
	if result.Killed {
		w.onKill(b.OwnerID, target)
	}
}

// onKill credits the killer with one kill and heals them by 40.
func (w *World) onKill(killerID string, victim *Tank) {
	if killer, ok := w.Players[killerID]; ok {
		killer.Kills++
		if killer.Tank != nil {
			killer.Tank.Heal(40)
		}
	}
}

// resolveBulletCollisions destroys any pair of bullets that now occupy (or
// swapped through) the same tile this sub-step, leaving the rest untouched.
func resolveBulletCollisions(bullets []*Bullet) []*Bullet {
	destroyed := make(map[int]bool)
	for i := 0; i < len(bullets); i++ {
		for j := i + 1; j < len(bullets); j++ {
			if destroyed[i] || destroyed[j] {
				continue
			}
			xi, yi := bullets[i].Tile()
			xj, yj := bullets[j].Tile()
			if xi == xj && yi == yj {
				destroyed[i] = true
				destroyed[j] = true
			}
		}
	}
	var alive []*Bullet
	for i, b := range bullets {
		if !destroyed[i] {
			alive = append(alive, b)
		}
	}
	return alive
}

// phase3UpdateLasers deals tick-damage to every tank a live laser covers,
// once per tick per laser (the Open Question resolution recorded in
// SPEC_FULL.md: damage is per tick of existence, not per enter-tile event).
func (w *World) phase3UpdateLasers() {
	var alive []*Laser
	for _, l := range w.Lasers {
		for _, p := range w.Players {
			if p.Tank == nil || p.Tank.IsDead() {
				continue
			}
			if l.Covers(p.Tank.X, p.Tank.Y) {
				result := p.Tank.TakeDamage(l.Damage)
				if result.Killed {
					w.onKill(l.OwnerID, p.Tank)
				}
			}
		}
		if l.Tick() {
			alive = append(alive, l)
		}
	}
	w.Lasers = alive
}

// phase4UpdateMines detonates and fades mines.
func (w *World) phase4UpdateMines() {
	var alive []*Mine
	for _, m := range w.Mines {
		if m.State != MineArmed {
			if m.TickFade() {
				alive = append(alive, m)
			}
			continue
		}

		if target := w.tankAt(m.X, m.Y); target != nil && target.OwnerID != m.OwnerID {
			w.detonateMine(m)
		}
		alive = append(alive, m)
	}
	w.Mines = alive
}

func (w *World) detonateMine(m *Mine) {
	m.Detonate(w.Sim.MineFadeTicks)
	for _, p := range w.Players {
		if p.Tank == nil || p.Tank.IsDead() {
			continue
		}
		if m.InBlastRadius(p.Tank.X, p.Tank.Y, w.Sim.MineBlastRadius) {
			result := p.Tank.TakeDamage(w.Sim.MineDamage)
			if result.Killed {
				w.onKill(m.OwnerID, p.Tank)
				continue
			}
			p.Tank.Stun(StunSourceMine, StunAll, w.Sim.StunDefaultTicks)
		}
	}
}

// phase5UpdateStuns decrements every tank's active stun effects.
func (w *World) phase5UpdateStuns() {
	for _, p := range w.Players {
		if p.Tank != nil {
			p.Tank.tickStuns()
		}
	}
}

// phase6RegenAmmo advances turret ammo regeneration on every living tank.
func (w *World) phase6RegenAmmo() {
	for _, p := range w.Players {
		if p.Tank != nil && !p.Tank.IsDead() {
			p.Tank.RegenAmmo(w.Sim.BulletRegenTicks, w.Sim.MaxBullets)
		}
	}
}

// phase7RegenSpawn counts down dead tanks toward respawn.
func (w *World) phase7RegenSpawn() {
	for i, id := range w.Order {
		p := w.Players[id]
		if p.Tank == nil || !p.Tank.IsDead() {
			continue
		}
		if p.RemainingTicksToRegenBullet <= 0 {
			p.RemainingTicksToRegenBullet = w.Sim.RespawnTicks
		}
		p.RemainingTicksToRegenBullet--
		if p.RemainingTicksToRegenBullet <= 0 {
			spawn := w.Grid.SpawnFor(i)
			dir := Direction(w.RNG.Intn(4))
			p.Tank.Respawn(spawn.X, spawn.Y, dir)
		}
	}
}

// phase8RecomputeVisibility rebuilds every living player's fog-of-war grid.
func (w *World) phase8RecomputeVisibility() {
	for _, p := range w.Players {
		RecomputeVisibility(p, w.Grid, w.Sim.VisibilityRange)
	}
}

// phase9UpdateZones advances each zone's capture state machine and pays
// out score to the current holder, if any.
func (w *World) phase9UpdateZones() {
	for _, z := range w.Grid.Zones {
		occ := make(zoneOccupants)
		for _, p := range w.Players {
			if p.Tank == nil || p.Tank.IsDead() {
				continue
			}
			if z.Contains(p.Tank.X, p.Tank.Y) {
				occ[p.ID]++
			}
		}
		z.Advance(occ, w.Sim.CaptureTicks)

		if holder, ok := z.AwardsScore(); ok {
			if p, exists := w.Players[holder]; exists {
				p.Score++
			}
		}
	}
}

// phase10PickUpItems lets a bare-handed tank standing on an item tile
// acquire it, removing the item from the map.
func (w *World) phase10PickUpItems() {
	var remaining []*Item
	for _, it := range w.Items {
		taken := false
		for _, p := range w.Players {
			if p.Tank == nil || p.Tank.IsDead() {
				continue
			}
			if p.Tank.X == it.X && p.Tank.Y == it.Y && p.Tank.SecondaryItem == ItemNone {
				p.Tank.PickUpItem(it.Kind)
				taken = true
				break
			}
		}
		if !taken {
			remaining = append(remaining, it)
		}
	}
	w.Items = remaining
}

// ClearRadarFlags drops every player's one-shot radar visibility boost
// after the broadcast reflecting it has gone out.
func (w *World) ClearRadarFlags() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range w.Players {
		p.ClearRadarFlag()
	}
}

// Rankings returns players ordered by descending score, used for GameEnd
// and the replay results file.
func (w *World) Rankings() []*Player {
	w.mu.RLock()
	defer w.mu.RUnlock()

	ranked := make([]*Player, 0, len(w.Players))
	for _, p := range w.Players {
		ranked = append(ranked, p)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Kills > ranked[j].Kills
	})
	return ranked
}

// AnyDisconnected reports whether any player disconnected during the
// match, which invalidates competitive replay results.
func (w *World) AnyDisconnected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, p := range w.Players {
		if p.Disconnected {
			return true
		}
	}
	return false
}
