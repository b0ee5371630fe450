package main

import "math"

// Radius maps mass to a circle radius. Used for players and blobs alike.
func Radius(mass, scale float64) float64 {
	if mass <= 0 {
		return 0
	}
	return math.Sqrt(mass) * scale
}

// CheckCollision checks if two circles overlap. Touching does not count.
func CheckCollision(x1, y1, r1, x2, y2, r2 float64) bool {
	dx := x2 - x1
	dy := y2 - y1
	dist2 := dx*dx + dy*dy
	radSum := r1 + r2
	return dist2 < radSum*radSum
}
