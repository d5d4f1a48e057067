package game

import "math/rand"

// MatchRNG is the single seeded source of randomness for a match. Every
// draw that affects simulation outcome (grid generation, bot action order,
// tank facing on spawn and respawn) pulls from this one stream in a fixed
// order, so two runs with the same seed produce bitwise-identical replays.
// Respawn tiles are not drawn here: a tank respawns at its player slot's
// point from Grid.SpawnFor.
type MatchRNG struct {
	r *rand.Rand
}

// NewMatchRNG seeds a new stream. A zero seed is a valid, reproducible seed.
func NewMatchRNG(seed int64) *MatchRNG {
	return &MatchRNG{r: rand.New(rand.NewSource(seed))}
}

// Shuffle permutes ids in place using the match stream (Fisher-Yates via
// rand.Shuffle), used to fix the bot action draw order each tick.
func (m *MatchRNG) Shuffle(n int, swap func(i, j int)) {
	m.r.Shuffle(n, swap)
}

// Intn draws a uniform int in [0, n).
func (m *MatchRNG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return m.r.Intn(n)
}
