package sqlite

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/vioshim/proxyengine/internal/gamedata"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "gamedata.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	return store
}

// TestOpenRequiresPath rejects blank paths.
func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatalf("expected error")
	}
}

// TestLoadCatalogRoundTrip ensures seeded tables come back as a working catalog.
func TestLoadCatalogRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.PutMove(ctx, gamedata.Move{
		Name: "Ember", Type: "Fire", Category: gamedata.CategorySpecial,
		Power: 40, Accuracy: 100, PP: 25, Metronome: true,
	}); err != nil {
		t.Fatalf("put move: %v", err)
	}
	if err := store.PutMove(ctx, gamedata.Move{
		Name: "Dark Void", Type: "Dark", Banned: true, Metronome: true,
	}); err != nil {
		t.Fatalf("put move: %v", err)
	}
	if err := store.PutType(ctx, gamedata.Typing{
		ID: 1, Name: "Normal", Chart: map[int]float64{2: 2},
	}); err != nil {
		t.Fatalf("put type: %v", err)
	}
	if err := store.PutType(ctx, gamedata.Typing{
		ID: 2, Name: "Fighting",
	}); err != nil {
		t.Fatalf("put type: %v", err)
	}

	catalog, err := store.LoadCatalog(ctx)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	move, err := catalog.DeduceMove(ctx, "ember")
	if err != nil {
		t.Fatalf("deduce move: %v", err)
	}
	if move.Power != 40 || move.Category != gamedata.CategorySpecial {
		t.Fatalf("unexpected move: %+v", move)
	}

	normal, err := catalog.DeduceType(ctx, "normal")
	if err != nil {
		t.Fatalf("deduce type: %v", err)
	}
	fighting, err := catalog.DeduceType(ctx, "fighting")
	if err != nil {
		t.Fatalf("deduce type: %v", err)
	}
	if got := normal.Effectiveness(fighting); got != 2 {
		t.Fatalf("expected 2x from chart, got %v", got)
	}

	// Banned move must never come out of the metronome pool.
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		drawn, err := catalog.Metronome(ctx, rng)
		if err != nil {
			t.Fatalf("metronome: %v", err)
		}
		if drawn.Name == "Dark Void" {
			t.Fatalf("banned move drawn")
		}
	}
}

// TestPutMoveRequiresName rejects unnamed moves.
func TestPutMoveRequiresName(t *testing.T) {
	store := openTestStore(t)
	if err := store.PutMove(context.Background(), gamedata.Move{}); err == nil {
		t.Fatalf("expected error")
	}
}

// TestPutTypeReplacesChart ensures re-seeding a type clears stale chart rows.
func TestPutTypeReplacesChart(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.PutType(ctx, gamedata.Typing{ID: 1, Name: "Normal", Chart: map[int]float64{2: 2}}); err != nil {
		t.Fatalf("put type: %v", err)
	}
	if err := store.PutType(ctx, gamedata.Typing{ID: 1, Name: "Normal", Chart: map[int]float64{3: 0.5}}); err != nil {
		t.Fatalf("re-put type: %v", err)
	}

	catalog, err := store.LoadCatalog(ctx)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	normal, err := catalog.DeduceType(ctx, "Normal")
	if err != nil {
		t.Fatalf("deduce type: %v", err)
	}
	if len(normal.Chart) != 1 || normal.Chart[3] != 0.5 {
		t.Fatalf("stale chart rows: %v", normal.Chart)
	}
}
