package main

// Player is a connected participant. Position is client-reported and never clamped.
type Player struct {
	ID   string
	X, Y float64
	Mass float64
}

// NewPlayer creates a player at the given position
func NewPlayer(id string, x, y, mass float64) *Player {
	return &Player{ID: id, X: x, Y: y, Mass: mass}
}

// CanFire returns true if the player holds more than minMass
func (p *Player) CanFire(minMass float64) bool {
	return p.Mass > minMass
}

// Hit subtracts mass and returns true if the player is eliminated
func (p *Player) Hit(mass float64) bool {
	p.Mass -= mass
	return p.Mass <= 0
}

// ToState converts to protocol state
func (p *Player) ToState() PlayerState {
	return PlayerState{
		ID:   p.ID,
		X:    p.X,
		Y:    p.Y,
		Mass: p.Mass,
	}
}
