package game

// Grid is the static board loaded or generated once at match start: wall
// layout, zone rectangles, and spawn points. Immutable after construction -
// every query here is read-only, used by both the simulation engine and
// the visibility/rendering layer.
type Grid struct {
	Dimension int
	Walls     [][]bool // Walls[y][x], true = blocked tile
	Zones     []*Zone
	Spawns    []Point
}

// Point is an (x, y) tile coordinate.
type Point struct {
	X, Y int
}

// zoneLetters is the pool of stable single-character zone identifiers,
// assigned in generation order.
var zoneLetters = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ")

// NewGrid generates a square grid of the given dimension using rng,
// scattering a light wall layout, a handful of capture zones, and one
// spawn point per eventual player slot.
func NewGrid(dimension int, maxPlayers int, rng *MatchRNG) *Grid {
	g := &Grid{
		Dimension: dimension,
		Walls:     make([][]bool, dimension),
	}
	for y := range g.Walls {
		g.Walls[y] = make([]bool, dimension)
	}

	wallBudget := dimension * dimension / 10
	for i := 0; i < wallBudget; i++ {
		x, y := rng.Intn(dimension), rng.Intn(dimension)
		g.Walls[y][x] = true
	}

	zoneCount := dimension / 7
	if zoneCount < 1 {
		zoneCount = 1
	}
	if zoneCount > len(zoneLetters) {
		zoneCount = len(zoneLetters)
	}
	zoneSize := 2
	for i := 0; i < zoneCount; i++ {
		x := rng.Intn(dimension - zoneSize)
		y := rng.Intn(dimension - zoneSize)
		g.Zones = append(g.Zones, &Zone{
			ID:     zoneLetters[i],
			X:      x,
			Y:      y,
			Width:  zoneSize,
			Height: zoneSize,
			Status: ZoneNeutral,
		})
		for dy := 0; dy < zoneSize; dy++ {
			for dx := 0; dx < zoneSize; dx++ {
				g.Walls[y+dy][x+dx] = false
			}
		}
	}

	for i := 0; i < maxPlayers; i++ {
		for {
			x, y := rng.Intn(dimension), rng.Intn(dimension)
			if g.Walls[y][x] {
				continue
			}
			if g.occupiedBySpawn(x, y) {
				continue
			}
			g.Spawns = append(g.Spawns, Point{X: x, Y: y})
			g.Walls[y][x] = false
			break
		}
	}

	return g
}

func (g *Grid) occupiedBySpawn(x, y int) bool {
	for _, p := range g.Spawns {
		if p.X == x && p.Y == y {
			return true
		}
	}
	return false
}

// InBounds reports whether (x,y) lies within the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Dimension && y < g.Dimension
}

// IsWall reports whether tile (x,y) is a blocking wall.
func (g *Grid) IsWall(x, y int) bool {
	if !g.InBounds(x, y) {
		return true
	}
	return g.Walls[y][x]
}

// ZoneAt returns the zone containing (x,y), or nil if none.
func (g *Grid) ZoneAt(x, y int) *Zone {
	for _, z := range g.Zones {
		if z.Contains(x, y) {
			return z
		}
	}
	return nil
}

// SpawnFor returns a spawn point for the i-th player slot, wrapping if
// there are more players than generated spawns.
func (g *Grid) SpawnFor(i int) Point {
	if len(g.Spawns) == 0 {
		return Point{}
	}
	return g.Spawns[i%len(g.Spawns)]
}
