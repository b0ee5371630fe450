package main

import (
	"sync"
	"testing"
)

// addCell places a cell with a known id directly into the world
func addCell(g *Game, id int64, x, y int, mass float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cells = append(g.cells, &Cell{ID: id, X: x, Y: y, Mass: mass, Color: "#102030"})
	if id >= g.nextCellID {
		g.nextCellID = id + 1
	}
}

func setMass(g *Game, id string, mass float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.players[id].Mass = mass
}

func TestGameAddRemovePlayer(t *testing.T) {
	g := NewGame(DefaultRules())
	p := g.AddPlayer()
	if p.ID == "" {
		t.Fatal("expected player id")
	}
	if p.X != 5000 || p.Y != 5000 {
		t.Errorf("expected spawn at map center, got (%f,%f)", p.X, p.Y)
	}
	if p.Mass != 20 {
		t.Errorf("expected mass 20, got %f", p.Mass)
	}
	if g.PlayerCount() != 1 {
		t.Errorf("expected 1 player, got %d", g.PlayerCount())
	}

	if !g.RemovePlayer(p.ID) {
		t.Error("first remove should report true")
	}
	if g.RemovePlayer(p.ID) {
		t.Error("second remove should report false")
	}
	if g.PlayerCount() != 0 {
		t.Errorf("expected 0 players, got %d", g.PlayerCount())
	}
}

func TestGamePlayerIDsUnique(t *testing.T) {
	g := NewGame(DefaultRules())
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		p := g.AddPlayer()
		if seen[p.ID] {
			t.Fatalf("duplicate player id %s", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestGameMovePlayerUnclamped(t *testing.T) {
	g := NewGame(DefaultRules())
	p := g.AddPlayer()
	if !g.MovePlayer(p.ID, -300, 123456) {
		t.Fatal("move should succeed")
	}
	got, _ := g.Player(p.ID)
	if got.X != -300 || got.Y != 123456 {
		t.Errorf("position should be taken as reported, got (%f,%f)", got.X, got.Y)
	}
	if g.MovePlayer("ghost", 1, 1) {
		t.Error("moving a missing player should report false")
	}
}

func TestGameConsumeCell(t *testing.T) {
	g := NewGame(DefaultRules())
	p := g.AddPlayer()
	addCell(g, 42, 10, 10, 1)

	gained, ok := g.ConsumeCell(p.ID, 42)
	if !ok || gained != 1 {
		t.Fatalf("expected to gain 1, got %f/%v", gained, ok)
	}
	got, _ := g.Player(p.ID)
	if got.Mass != 21 {
		t.Errorf("expected mass 21, got %f", got.Mass)
	}
	if g.CellCount() != 0 {
		t.Errorf("cell should be gone, %d left", g.CellCount())
	}
}

func TestGameConsumeMissingCellIsNoop(t *testing.T) {
	g := NewGame(DefaultRules())
	p := g.AddPlayer()
	addCell(g, 1, 10, 10, 1)

	if _, ok := g.ConsumeCell(p.ID, 99); ok {
		t.Error("consuming a missing cell should fail")
	}
	g.ConsumeCell(p.ID, 1)
	if _, ok := g.ConsumeCell(p.ID, 1); ok {
		t.Error("consuming the same cell twice should fail")
	}
	got, _ := g.Player(p.ID)
	if got.Mass != 21 {
		t.Errorf("expected mass 21 after one real consumption, got %f", got.Mass)
	}
	if _, ok := g.ConsumeCell("ghost", 1); ok {
		t.Error("missing player should not consume")
	}
}

func TestGameFireBlob(t *testing.T) {
	g := NewGame(DefaultRules())
	p := g.AddPlayer()

	b, ok := g.FireBlob(p.ID, 0)
	if !ok {
		t.Fatal("player with mass 20 should fire")
	}
	if b.Mass != 10 || b.Speed != 10 || b.X != p.X || b.Y != p.Y || b.OwnerID != p.ID {
		t.Errorf("unexpected blob %+v", b)
	}
	got, _ := g.Player(p.ID)
	if got.Mass != 10 {
		t.Errorf("expected mass 10 after firing, got %f", got.Mass)
	}

	// Mass must exceed 10 to fire
	if _, ok := g.FireBlob(p.ID, 0); ok {
		t.Error("player with mass 10 should not fire")
	}
	if g.BlobCount() != 1 {
		t.Errorf("expected 1 blob, got %d", g.BlobCount())
	}
	if _, ok := g.FireBlob("ghost", 0); ok {
		t.Error("missing player should not fire")
	}
}

func TestGameBlobIDsMonotonic(t *testing.T) {
	g := NewGame(DefaultRules())
	p := g.AddPlayer()
	setMass(g, p.ID, 1000)

	var last int64 = -1
	for i := 0; i < 20; i++ {
		b, ok := g.FireBlob(p.ID, 0)
		if !ok {
			t.Fatal("fire failed")
		}
		if b.ID <= last {
			t.Fatalf("blob id %d not greater than %d", b.ID, last)
		}
		last = b.ID
	}
}

func TestGameSnapshot(t *testing.T) {
	g := NewGame(DefaultRules())
	a := g.AddPlayer()
	b := g.AddPlayer()
	addCell(g, 5, 1, 2, 1)
	g.FireBlob(a.ID, 0)

	s := g.Snapshot()
	if len(s.Players) != 2 || s.Players[0].ID != a.ID || s.Players[1].ID != b.ID {
		t.Errorf("players should be in join order: %+v", s.Players)
	}
	if len(s.Cells) != 1 || s.Cells[0].ID != 5 {
		t.Errorf("unexpected cells %+v", s.Cells)
	}
	if len(s.Blobs) != 1 || s.Blobs[0].OwnerID != a.ID {
		t.Errorf("unexpected blobs %+v", s.Blobs)
	}
}

func TestGameConcurrentAccess(t *testing.T) {
	rules := DefaultRules()
	rules.MaxCells = 200
	g := NewGame(rules)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			rng := newRand(seed)
			p := g.AddPlayer()
			for i := 0; i < 300; i++ {
				g.SpawnCell(rng)
				g.MovePlayer(p.ID, float64(5000+i), 5000)
				g.ConsumeCell(p.ID, int64(i))
				g.FireBlob(p.ID, float64(i))
				g.StepBlobs()
				g.Snapshot()
			}
			g.RemovePlayer(p.ID)
		}(uint64(w + 1))
	}
	wg.Wait()

	if g.CellCount() > rules.MaxCells {
		t.Errorf("cell count %d exceeds cap %d", g.CellCount(), rules.MaxCells)
	}
	if g.PlayerCount() != 0 {
		t.Errorf("expected no players left, got %d", g.PlayerCount())
	}
}
