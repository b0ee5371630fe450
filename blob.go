package main

import "math"

// Blob is a projectile fired by a player. It moves a fixed distance per
// physics tick and is retired by collision, travel cap or leaving the map.
type Blob struct {
	ID       int64
	OwnerID  string
	X, Y     float64
	Mass     float64
	Angle    float64
	Speed    float64
	Traveled float64
}

// NewBlob creates a blob at the owner's position heading along angle
func NewBlob(id int64, owner *Player, angle float64, rules Rules) *Blob {
	return &Blob{
		ID:      id,
		OwnerID: owner.ID,
		X:       owner.X,
		Y:       owner.Y,
		Mass:    rules.BlobMass,
		Angle:   angle,
		Speed:   rules.BlobSpeed,
	}
}

// Advance moves the blob one tick and accumulates distance traveled
func (b *Blob) Advance() {
	dx := b.Speed * math.Cos(b.Angle)
	dy := b.Speed * math.Sin(b.Angle)
	b.X += dx
	b.Y += dy
	b.Traveled += math.Hypot(dx, dy)
}

// Spent returns true once the blob has covered its travel cap
func (b *Blob) Spent(travelCap float64) bool {
	return b.Traveled >= travelCap
}

// OutOfBounds returns true if the blob has left [0,w]x[0,h]
func (b *Blob) OutOfBounds(w, h float64) bool {
	return b.X < 0 || b.X > w || b.Y < 0 || b.Y > h
}

// ToState converts to protocol state
func (b *Blob) ToState() BlobState {
	return BlobState{
		ID:       b.ID,
		X:        b.X,
		Y:        b.Y,
		Mass:     b.Mass,
		Angle:    b.Angle,
		Speed:    b.Speed,
		Traveled: b.Traveled,
		OwnerID:  b.OwnerID,
	}
}
