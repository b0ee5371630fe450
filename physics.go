package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Hit records one blob striking a player
type Hit struct {
	BlobID     int64
	OwnerID    string
	PlayerID   string
	MassAfter  float64
	Eliminated bool
}

// PhysicsReport summarizes one physics tick
type PhysicsReport struct {
	Hits    []Hit
	Retired int // spent or out of bounds
}

// StepBlobs advances every blob once, resolves hits and retires the rest.
// The whole pass runs under the world lock.
func (g *Game) StepBlobs() PhysicsReport {
	g.mu.Lock()
	defer g.mu.Unlock()

	var report PhysicsReport
	w := float64(g.rules.MapWidth)
	h := float64(g.rules.MapHeight)

	live := make([]*Blob, 0, len(g.blobs))
	for _, b := range g.blobs {
		b.Advance()

		if p := g.firstHitLocked(b); p != nil {
			eliminated := p.Hit(b.Mass)
			report.Hits = append(report.Hits, Hit{
				BlobID:     b.ID,
				OwnerID:    b.OwnerID,
				PlayerID:   p.ID,
				MassAfter:  p.Mass,
				Eliminated: eliminated,
			})
			if eliminated {
				g.removePlayerLocked(p.ID)
			}
			continue
		}

		if b.Spent(g.rules.BlobTravelCap) || b.OutOfBounds(w, h) {
			report.Retired++
			continue
		}
		live = append(live, b)
	}
	g.blobs = live
	return report
}

// firstHitLocked returns the first player, in join order, the blob overlaps.
// The owner is never hit by its own blob.
func (g *Game) firstHitLocked(b *Blob) *Player {
	blobR := Radius(b.Mass, g.rules.RadiusScale)
	for _, id := range g.order {
		if id == b.OwnerID {
			continue
		}
		p := g.players[id]
		if CheckCollision(p.X, p.Y, Radius(p.Mass, g.rules.RadiusScale), b.X, b.Y, blobR) {
			return p
		}
	}
	return nil
}

// Physics drives StepBlobs on a fixed period
type Physics struct {
	game      *Game
	interval  time.Duration
	analytics *Analytics
}

// NewPhysics creates the blob physics loop
func NewPhysics(game *Game, interval time.Duration, analytics *Analytics) *Physics {
	return &Physics{game: game, interval: interval, analytics: analytics}
}

// Tick runs one physics pass and records its hits
func (ph *Physics) Tick() PhysicsReport {
	report := ph.game.StepBlobs()
	for _, hit := range report.Hits {
		fields := logrus.Fields{
			"player_id": hit.PlayerID,
			"owner_id":  hit.OwnerID,
			"blob_id":   hit.BlobID,
			"mass":      hit.MassAfter,
		}
		data := eventData(HitData{Blob: hit.BlobID, Owner: hit.OwnerID, Mass: hit.MassAfter})
		if hit.Eliminated {
			log.WithFields(fields).Info("player eliminated")
			ph.analytics.Track(EvtPlayerEliminated, hit.PlayerID, data)
		} else {
			log.WithFields(fields).Debug("player hit")
			ph.analytics.Track(EvtPlayerHit, hit.PlayerID, data)
		}
	}
	return report
}

// Run steps physics until ctx is done
func (ph *Physics) Run(ctx context.Context) {
	runTicker(ctx, ph.interval, func() { ph.Tick() })
}
