package main

import (
	"fmt"
	"math/rand/v2"
)

const (
	colorMin = 15
	colorMax = 240
)

// Cell is a static consumable that feeds whoever reports eating it
type Cell struct {
	ID    int64
	X, Y  int
	Mass  float64
	Color string
}

// NewCell places a cell uniformly inside [0,w]x[0,h]
func NewCell(id int64, w, h int, mass float64, rng *rand.Rand) *Cell {
	return &Cell{
		ID:    id,
		X:     rng.IntN(w + 1),
		Y:     rng.IntN(h + 1),
		Mass:  mass,
		Color: RandomColor(rng),
	}
}

// RandomColor returns a #rrggbb color with channels in [15,240], never gray
func RandomColor(rng *rand.Rand) string {
	for {
		r := colorMin + rng.IntN(colorMax-colorMin+1)
		g := colorMin + rng.IntN(colorMax-colorMin+1)
		b := colorMin + rng.IntN(colorMax-colorMin+1)
		if r == g && g == b {
			continue
		}
		return fmt.Sprintf("#%02x%02x%02x", r, g, b)
	}
}

// ToState converts to protocol state
func (c *Cell) ToState() CellState {
	return CellState{
		ID:    c.ID,
		X:     c.X,
		Y:     c.Y,
		Mass:  c.Mass,
		Color: c.Color,
	}
}
