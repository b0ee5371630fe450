package main

import (
	"context"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Rules holds the tunable world parameters
type Rules struct {
	MapWidth      int
	MapHeight     int
	MaxCells      int
	StartMass     float64
	CellMass      float64
	BlobMass      float64
	BlobSpeed     float64 // units per physics tick
	BlobTravelCap float64
	RadiusScale   float64
	MinFireMass   float64 // a player must hold strictly more than this to fire
	FireCost      float64
}

// DefaultRules returns the stock arena rules
func DefaultRules() Rules {
	return Rules{
		MapWidth:      10000,
		MapHeight:     10000,
		MaxCells:      10000,
		StartMass:     20,
		CellMass:      1,
		BlobMass:      10,
		BlobSpeed:     10,
		BlobTravelCap: 100,
		RadiusScale:   4,
		MinFireMass:   10,
		FireCost:      10,
	}
}

// Game is the shared world: players, cells and blobs behind one lock.
// Every exported method is atomic with respect to every other.
type Game struct {
	mu      sync.RWMutex
	rules   Rules
	players map[string]*Player
	order   []string // player ids in join order
	cells   []*Cell
	blobs   []*Blob

	nextCellID int64
	nextBlobID int64
}

// NewGame creates an empty world
func NewGame(rules Rules) *Game {
	return &Game{
		rules:   rules,
		players: make(map[string]*Player),
	}
}

// Rules returns the world parameters
func (g *Game) Rules() Rules {
	return g.rules
}

// AddPlayer creates a player at the center of the map with a fresh id
func (g *Game) AddPlayer() Player {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := uuid.NewString()
	p := NewPlayer(id, float64(g.rules.MapWidth/2), float64(g.rules.MapHeight/2), g.rules.StartMass)
	g.players[id] = p
	g.order = append(g.order, id)
	return *p
}

// RemovePlayer removes a player, returning false if it was already gone
func (g *Game) RemovePlayer(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.removePlayerLocked(id)
}

func (g *Game) removePlayerLocked(id string) bool {
	if _, ok := g.players[id]; !ok {
		return false
	}
	delete(g.players, id)
	g.order = slices.DeleteFunc(g.order, func(pid string) bool { return pid == id })
	return true
}

// Player returns a copy of the player
func (g *Game) Player(id string) (Player, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.players[id]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// HasPlayer checks whether the player is still in the world
func (g *Game) HasPlayer(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.players[id]
	return ok
}

// MovePlayer overwrites the player's position as reported by its client
func (g *Game) MovePlayer(id string, x, y float64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[id]
	if !ok {
		return false
	}
	p.X = x
	p.Y = y
	return true
}

// ConsumeCell removes the cell and credits its mass to the player.
// Unknown players or cells leave the world untouched.
func (g *Game) ConsumeCell(playerID string, cellID int64) (float64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.players[playerID]
	if !ok {
		return 0, false
	}
	i := slices.IndexFunc(g.cells, func(c *Cell) bool { return c.ID == cellID })
	if i < 0 {
		return 0, false
	}
	mass := g.cells[i].Mass
	g.cells = slices.Delete(g.cells, i, i+1)
	p.Mass += mass
	return mass, true
}

// FireBlob spends the player's mass on a new blob heading along angle
func (g *Game) FireBlob(playerID string, angle float64) (Blob, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.players[playerID]
	if !ok || !p.CanFire(g.rules.MinFireMass) {
		return Blob{}, false
	}
	p.Mass -= g.rules.FireCost
	b := NewBlob(g.nextBlobID, p, angle, g.rules)
	g.nextBlobID++
	g.blobs = append(g.blobs, b)
	return *b, true
}

// SpawnCell adds one random cell unless the world is at capacity
func (g *Game) SpawnCell(rng *rand.Rand) (Cell, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.cells) >= g.rules.MaxCells {
		return Cell{}, false
	}
	c := NewCell(g.nextCellID, g.rules.MapWidth, g.rules.MapHeight, g.rules.CellMass, rng)
	g.nextCellID++
	g.cells = append(g.cells, c)
	return *c, true
}

// Snapshot copies the whole world into protocol form
func (g *Game) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s := Snapshot{
		Players: make([]PlayerState, 0, len(g.order)),
		Cells:   make([]CellState, 0, len(g.cells)),
		Blobs:   make([]BlobState, 0, len(g.blobs)),
	}
	for _, id := range g.order {
		s.Players = append(s.Players, g.players[id].ToState())
	}
	for _, c := range g.cells {
		s.Cells = append(s.Cells, c.ToState())
	}
	for _, b := range g.blobs {
		s.Blobs = append(s.Blobs, b.ToState())
	}
	return s
}

// PlayerCount returns the number of players
func (g *Game) PlayerCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.players)
}

// CellCount returns the number of live cells
func (g *Game) CellCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.cells)
}

// BlobCount returns the number of blobs in flight
func (g *Game) BlobCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.blobs)
}

// runTicker calls fn every interval until ctx is done
func runTicker(ctx context.Context, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fn()
		case <-ctx.Done():
			return
		}
	}
}
