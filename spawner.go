package main

import (
	"context"
	"math/rand/v2"
	"time"
)

// Spawner tops the world up with cells, one per tick, until MaxCells
type Spawner struct {
	game     *Game
	interval time.Duration
	rng      *rand.Rand
}

// NewSpawner creates a spawner. The rng is owned by the spawner goroutine.
func NewSpawner(game *Game, interval time.Duration, seed uint64) *Spawner {
	return &Spawner{
		game:     game,
		interval: interval,
		rng:      newRand(seed),
	}
}

// Tick spawns at most one cell and reports whether it did
func (s *Spawner) Tick() bool {
	_, ok := s.game.SpawnCell(s.rng)
	return ok
}

// Run spawns until ctx is done
func (s *Spawner) Run(ctx context.Context) {
	runTicker(ctx, s.interval, func() { s.Tick() })
}
