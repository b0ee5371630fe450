package main

import (
	"math"
	"testing"
)

// placedGame returns a world with players at the given positions, in join order
func placedGame(t *testing.T, positions ...[2]float64) (*Game, []Player) {
	t.Helper()
	g := NewGame(DefaultRules())
	players := make([]Player, 0, len(positions))
	for _, pos := range positions {
		p := g.AddPlayer()
		g.MovePlayer(p.ID, pos[0], pos[1])
		p, _ = g.Player(p.ID)
		players = append(players, p)
	}
	return g, players
}

func TestStepBlobsHitReducesMass(t *testing.T) {
	g, ps := placedGame(t, [2]float64{5000, 5000}, [2]float64{5015, 5000})
	a, b := ps[0], ps[1]

	if _, ok := g.FireBlob(a.ID, 0); !ok {
		t.Fatal("fire failed")
	}
	report := g.StepBlobs()

	if len(report.Hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(report.Hits))
	}
	hit := report.Hits[0]
	if hit.PlayerID != b.ID || hit.OwnerID != a.ID || hit.Eliminated {
		t.Errorf("unexpected hit %+v", hit)
	}
	got, _ := g.Player(b.ID)
	if got.Mass != 10 {
		t.Errorf("expected B mass 10, got %f", got.Mass)
	}
	if g.BlobCount() != 0 {
		t.Errorf("blob should be consumed by the hit, %d left", g.BlobCount())
	}
}

func TestStepBlobsElimination(t *testing.T) {
	g, ps := placedGame(t, [2]float64{5000, 5000}, [2]float64{5015, 5000})
	a, b := ps[0], ps[1]
	setMass(g, a.ID, 40)

	g.FireBlob(a.ID, 0)
	g.StepBlobs()
	g.FireBlob(a.ID, 0)
	report := g.StepBlobs()

	if len(report.Hits) != 1 || !report.Hits[0].Eliminated {
		t.Fatalf("expected an elimination, got %+v", report.Hits)
	}
	if g.HasPlayer(b.ID) {
		t.Error("eliminated player should be removed")
	}
	for _, p := range g.Snapshot().Players {
		if p.ID == b.ID {
			t.Error("eliminated player should not be in snapshots")
		}
	}
	if g.BlobCount() != 0 {
		t.Errorf("expected no blobs, got %d", g.BlobCount())
	}
}

func TestStepBlobsOwnerImmune(t *testing.T) {
	g, ps := placedGame(t, [2]float64{5000, 5000})
	a := ps[0]

	g.FireBlob(a.ID, 0)
	report := g.StepBlobs()
	if len(report.Hits) != 0 {
		t.Fatalf("owner should not be hit by own blob: %+v", report.Hits)
	}
	got, _ := g.Player(a.ID)
	if got.Mass != 10 {
		t.Errorf("owner mass should only reflect fire cost, got %f", got.Mass)
	}
	if g.BlobCount() != 1 {
		t.Errorf("blob should still be in flight")
	}
}

func TestStepBlobsFirstHitWins(t *testing.T) {
	g, ps := placedGame(t,
		[2]float64{5000, 5000},
		[2]float64{5012, 5000},
		[2]float64{5008, 5000},
	)
	a, b, c := ps[0], ps[1], ps[2]

	g.FireBlob(a.ID, 0)
	report := g.StepBlobs()
	if len(report.Hits) != 1 || report.Hits[0].PlayerID != b.ID {
		t.Fatalf("expected earliest joined player hit, got %+v", report.Hits)
	}
	got, _ := g.Player(c.ID)
	if got.Mass != 20 {
		t.Errorf("second overlapping player should be untouched, got %f", got.Mass)
	}
}

func TestStepBlobsRetiresAtTravelCap(t *testing.T) {
	g, ps := placedGame(t, [2]float64{5000, 5000})
	g.FireBlob(ps[0].ID, 0)

	last := 0.0
	for tick := 1; tick <= 9; tick++ {
		report := g.StepBlobs()
		if report.Retired != 0 || g.BlobCount() != 1 {
			t.Fatalf("blob retired early at tick %d", tick)
		}
		traveled := g.Snapshot().Blobs[0].Traveled
		if traveled < last {
			t.Fatalf("distance decreased from %f to %f", last, traveled)
		}
		last = traveled
	}
	report := g.StepBlobs()
	if report.Retired != 1 || g.BlobCount() != 0 {
		t.Fatalf("blob should retire on reaching 100, retired=%d left=%d", report.Retired, g.BlobCount())
	}
	if g.StepBlobs().Retired != 0 {
		t.Error("retirement is terminal")
	}
}

func TestStepBlobsRetiresOutOfBounds(t *testing.T) {
	g, ps := placedGame(t, [2]float64{5, 5})
	g.FireBlob(ps[0].ID, math.Pi)

	report := g.StepBlobs()
	if report.Retired != 1 || g.BlobCount() != 0 {
		t.Fatalf("blob leaving the map should be retired, retired=%d left=%d", report.Retired, g.BlobCount())
	}
}

func TestStepBlobsEliminatedOwnerBlobStillFlies(t *testing.T) {
	g, ps := placedGame(t, [2]float64{5000, 5000}, [2]float64{2000, 2000})
	a := ps[0]
	g.FireBlob(a.ID, 0)
	g.RemovePlayer(a.ID)

	g.StepBlobs()
	if g.BlobCount() != 1 {
		t.Errorf("blob of a departed owner should keep flying")
	}
}

func TestPhysicsTickReports(t *testing.T) {
	g, ps := placedGame(t, [2]float64{5000, 5000}, [2]float64{5015, 5000})
	ph := NewPhysics(g, 0, nil)
	g.FireBlob(ps[0].ID, 0)

	report := ph.Tick()
	if len(report.Hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(report.Hits))
	}
}
