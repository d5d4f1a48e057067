package game

// RecomputeVisibility rebuilds p's visibility grid for the current tick
// (simulation phase 8). A dead owner yields an all-false grid. A player
// with IsUsingRadar set gets an all-true grid for this tick only.
func RecomputeVisibility(p *Player, grid *Grid, rangeTiles int) {
	dim := grid.Dimension
	if p.Visibility == nil || len(p.Visibility) != dim {
		p.Visibility = blankVisibility(dim)
	} else {
		for y := range p.Visibility {
			for x := range p.Visibility[y] {
				p.Visibility[y][x] = false
			}
		}
	}

	if p.Tank == nil || p.Tank.IsDead() {
		return
	}

	if p.IsUsingRadar {
		for y := 0; y < dim; y++ {
			for x := 0; x < dim; x++ {
				p.Visibility[y][x] = true
			}
		}
		return
	}

	t := p.Tank
	p.Visibility[t.Y][t.X] = true

	// always-visible tiles adjacent to the tank
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			x, y := t.X+dx, t.Y+dy
			if grid.InBounds(x, y) {
				p.Visibility[y][x] = true
			}
		}
	}

	// forward-facing ray along the turret direction, one tile wide, blocked
	// by walls; it does not widen with distance
	dx, dy := t.Turret.Direction.Delta()
	x, y := t.X, t.Y
	for i := 0; i < rangeTiles; i++ {
		x, y = x+dx, y+dy
		if !grid.InBounds(x, y) {
			break
		}
		p.Visibility[y][x] = true
		if grid.IsWall(x, y) {
			break
		}
	}
}
