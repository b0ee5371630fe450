package main

import (
	"math/rand/v2"
	"time"
)

// newRand returns a PCG source. A zero seed picks one from the clock.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
