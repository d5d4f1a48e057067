// Package view renders the single authoritative world into per-recipient
// snapshots according to the visibility matrix: a pure function of (world,
// recipient context) so the matrix itself stays table-testable instead of
// living behind polymorphic converters.
package view

import (
	"github.com/monotanks/server/internal/game"
	"github.com/monotanks/server/internal/protocol"
)

// Recipient identifies who a snapshot is being rendered for.
type Recipient struct {
	Spectator bool
	PlayerID  string // empty when Spectator is true
}

// Render must be called while the caller holds the world's read lock
// (game.World.WithReadLock) - it performs no locking of its own.
func Render(w *game.World, gsID string, r Recipient) protocol.GameState {
	state := protocol.GameState{
		Tick: w.Tick,
	}
	if !r.Spectator {
		state.ID = gsID
	}

	for _, id := range w.Order {
		p := w.Players[id]
		state.Players = append(state.Players, protocol.PlayerScoreView{
			ID:       p.ID,
			Nickname: p.Nickname,
			Score:    p.Score,
			Kills:    p.Kills,
		})
	}

	state.Map = renderMap(w, r)
	return state
}

// renderMap builds a Dim x Dim grid of per-tile entity lists, merging
// tanks/bullets/lasers/mines/items by kind onto the tile(s) they occupy
// (heterogeneous collections by kind... per-kind arrays the renderer
// merges").
func renderMap(w *game.World, r Recipient) protocol.MapView {
	dim := w.Grid.Dimension
	tiles := make([][][]interface{}, dim)
	for y := range tiles {
		tiles[y] = make([][]interface{}, dim)
	}
	put := func(x, y int, entity interface{}) {
		if x < 0 || y < 0 || x >= dim || y >= dim {
			return
		}
		tiles[y][x] = append(tiles[y][x], entity)
	}

	visible := visibilityFor(w, r)

	for _, id := range w.Order {
		p := w.Players[id]
		if p.Tank == nil {
			continue
		}
		if tv, ok := renderTank(p, r, visible); ok {
			put(p.Tank.X, p.Tank.Y, tv)
		}
	}

	if r.Spectator {
		for _, b := range w.Bullets {
			x, y := b.Tile()
			put(x, y, renderBulletFull(b))
		}
	} else {
		for _, b := range w.Bullets {
			x, y := b.Tile()
			if visible == nil || !inBounds(visible, x, y) || !visible[y][x] {
				continue
			}
			put(x, y, renderBulletFiltered(b))
		}
	}

	for _, l := range w.Lasers {
		if r.Spectator || visibleLaser(l, visible) {
			for x := 0; x < dim; x++ {
				for y := 0; y < dim; y++ {
					if l.Covers(x, y) {
						put(x, y, renderLaser(l))
					}
				}
			}
		}
	}

	for _, m := range w.Mines {
		if r.Spectator || (visible != nil && inBounds(visible, m.X, m.Y) && visible[m.Y][m.X]) {
			put(m.X, m.Y, renderMine(m))
		}
	}

	for _, it := range w.Items {
		if r.Spectator || (visible != nil && inBounds(visible, it.X, it.Y) && visible[it.Y][it.X]) {
			put(it.X, it.Y, renderItem(it))
		}
	}

	mv := protocol.MapView{Tiles: tiles}
	for _, z := range w.Grid.Zones {
		mv.Zones = append(mv.Zones, renderZone(z))
	}

	if !r.Spectator && r.PlayerID != "" {
		if p, ok := w.Players[r.PlayerID]; ok {
			mv.Visibility = p.Visibility
		}
	}

	return mv
}

func renderItem(it *game.Item) protocol.ItemView {
	return protocol.ItemView{ID: it.ID, X: it.X, Y: it.Y, Kind: it.Kind.String()}
}

// visibilityFor returns the visibility grid that gates "Other player" /
// "foreign tank" fields, or nil for a spectator (unfiltered) or a player
// with no grid yet.
func visibilityFor(w *game.World, r Recipient) [][]bool {
	if r.Spectator {
		return nil
	}
	p, ok := w.Players[r.PlayerID]
	if !ok {
		return nil
	}
	return p.Visibility
}

func inBounds(grid [][]bool, x, y int) bool {
	return y >= 0 && y < len(grid) && x >= 0 && x < len(grid[y])
}

// renderTank applies the visibility matrix row for tanks.
func renderTank(p *game.Player, r Recipient, visible [][]bool) (protocol.TankView, bool) {
	t := p.Tank
	isOwner := !r.Spectator && r.PlayerID == p.ID

	if !r.Spectator && !isOwner {
		if visible == nil || !inBounds(visible, t.X, t.Y) || !visible[t.Y][t.X] {
			return protocol.TankView{}, false
		}
	}

	tv := protocol.TankView{OwnerID: p.ID}

	if r.Spectator || isOwner || (visible != nil && inBounds(visible, t.X, t.Y) && visible[t.Y][t.X]) {
		x, y := t.X, t.Y
		tv.X, tv.Y = &x, &y
		tv.Direction = t.Direction.String()
		tv.TurretDirection = t.Turret.Direction.String()
	}

	if r.Spectator || isOwner {
		health := t.Health
		tv.Health = &health
		tv.SecondaryItem = t.SecondaryItem.String()
		count := t.Turret.BulletCount
		tv.BulletCount = &count
	}

	return tv, true
}

func renderBulletFull(b *game.Bullet) protocol.BulletView {
	x, y := b.X, b.Y
	damage := b.Damage
	speed := b.Speed
	dir := directionOf(b.DX, b.DY)
	return protocol.BulletView{
		ID: b.ID, X: &x, Y: &y, Damage: &damage,
		ShooterID: b.OwnerID, Speed: &speed, Direction: dir,
	}
}

// renderBulletFiltered hides (x,y,damage,shooterId) even from the owner
// "Bullet (x,y), damage, shooterId" is hidden outside spectator view.
func renderBulletFiltered(b *game.Bullet) protocol.BulletView {
	speed := b.Speed
	return protocol.BulletView{ID: b.ID, Speed: &speed, Direction: directionOf(b.DX, b.DY)}
}

func directionOf(dx, dy float64) string {
	switch {
	case dx == 1:
		return "right"
	case dx == -1:
		return "left"
	case dy == 1:
		return "down"
	case dy == -1:
		return "up"
	default:
		return ""
	}
}

func visibleLaser(l *game.Laser, visible [][]bool) bool {
	if visible == nil {
		return false
	}
	for y := range visible {
		for x := range visible[y] {
			if visible[y][x] && l.Covers(x, y) {
				return true
			}
		}
	}
	return false
}

func renderLaser(l *game.Laser) protocol.LaserView {
	return protocol.LaserView{
		ID: l.ID, ShooterID: l.OwnerID,
		OriginX: l.OriginX, OriginY: l.OriginY,
		Orientation: l.Orientation.String(), Damage: l.Damage,
		RemainingTicks: l.RemainingTicks,
	}
}

func renderMine(m *game.Mine) protocol.MineView {
	state := "armed"
	switch m.State {
	case game.MineDetonated:
		state = "detonated"
	case game.MineFading:
		state = "fading"
	}
	return protocol.MineView{ID: m.ID, OwnerID: m.OwnerID, X: m.X, Y: m.Y, State: state}
}

func renderZone(z *game.Zone) protocol.ZoneView {
	status := "neutral"
	switch z.Status {
	case game.ZoneBeingCaptured:
		status = "beingCaptured"
	case game.ZoneCaptured:
		status = "captured"
	case game.ZoneBeingContested:
		status = "beingContested"
	case game.ZoneBeingRetaken:
		status = "beingRetaken"
	}
	return protocol.ZoneView{
		ID: string(z.ID), X: z.X, Y: z.Y, Width: z.Width, Height: z.Height,
		Status: status, Holder: z.Holder, Attacker: z.Attacker, Progress: z.Progress,
	}
}
