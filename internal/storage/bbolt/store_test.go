package bbolt

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/vioshim/proxyengine/internal/persona"
	"github.com/vioshim/proxyengine/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestPersona(t *testing.T, name string, ownerID, scopeID int64) *persona.Persona {
	t.Helper()
	p, err := persona.CreatePersona(persona.CreatePersonaInput{
		OwnerID:     ownerID,
		ScopeID:     scopeID,
		DisplayName: name,
		Pairs:       []persona.BoundaryPair{{Prefix: "[", Suffix: "]"}},
		Variants:    []*persona.Variant{{Name: "Happy"}},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// TestOpenRequiresPath verifies a blank storage path is rejected.
func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for blank path")
	}
}

// TestPutAssignsID verifies new personas receive sequence IDs.
func TestPutAssignsID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := newTestPersona(t, "Alice", 1, 10)
	second := newTestPersona(t, "Bob", 1, 10)
	if err := store.Put(ctx, first); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(ctx, second); err != nil {
		t.Fatalf("put: %v", err)
	}
	if first.ID == 0 || second.ID == 0 {
		t.Fatalf("expected assigned IDs, got %d and %d", first.ID, second.ID)
	}
	if first.ID == second.ID {
		t.Fatalf("expected distinct IDs, both %d", first.ID)
	}
}

// TestGetRoundTrip verifies personas survive a store round trip with
// variants relinked to their parent.
func TestGetRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	p := newTestPersona(t, "Alice", 1, 10)
	p.Variants[0].Image = ""
	p.DefaultImage = "alice.png"
	if err := store.Put(ctx, p); err != nil {
		t.Fatalf("put: %v", err)
	}

	loaded, err := store.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.DisplayName != "Alice" {
		t.Fatalf("unexpected name %q", loaded.DisplayName)
	}
	if len(loaded.Variants) != 1 {
		t.Fatalf("expected 1 variant, got %d", len(loaded.Variants))
	}
	if got := loaded.Variants[0].SpeakerImage(); got != "alice.png" {
		t.Fatalf("variant lost parent image fallback, got %q", got)
	}
}

// TestGetMissing verifies fetching an absent persona reports ErrNotFound.
func TestGetMissing(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.Get(context.Background(), 42); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// TestListFiltersByOwnerAndScope verifies List returns only the requested
// owner's personas in the requested scope, oldest first.
func TestListFiltersByOwnerAndScope(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	mine := newTestPersona(t, "Alice", 1, 10)
	later := newTestPersona(t, "Bob", 1, 10)
	otherScope := newTestPersona(t, "Carol", 1, 20)
	otherOwner := newTestPersona(t, "Dave", 2, 10)
	for _, p := range []*persona.Persona{mine, later, otherScope, otherOwner} {
		if err := store.Put(ctx, p); err != nil {
			t.Fatalf("put %s: %v", p.DisplayName, err)
		}
	}

	personas, err := store.List(ctx, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(personas) != 2 {
		t.Fatalf("expected 2 personas, got %d", len(personas))
	}
	if personas[0].DisplayName != "Alice" || personas[1].DisplayName != "Bob" {
		t.Fatalf("unexpected order: %q, %q", personas[0].DisplayName, personas[1].DisplayName)
	}
}

// TestDelete verifies deletion removes the record and is idempotent.
func TestDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	p := newTestPersona(t, "Alice", 1, 10)
	if err := store.Put(ctx, p); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, p.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, p.ID); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
}

// TestTimezonePreference verifies timezone round trip and validation.
func TestTimezonePreference(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.PutTimezone(ctx, 7, "America/Toronto"); err != nil {
		t.Fatalf("put timezone: %v", err)
	}
	zone, err := store.Timezone(ctx, 7)
	if err != nil {
		t.Fatalf("timezone: %v", err)
	}
	if zone != "America/Toronto" {
		t.Fatalf("unexpected zone %q", zone)
	}

	if err := store.PutTimezone(ctx, 7, "Not/AZone"); err == nil {
		t.Fatal("expected error for invalid zone")
	}
}

// TestTimezoneForDefaultsToUTC verifies the resolver adapter falls back to
// UTC when no preference exists.
func TestTimezoneForDefaultsToUTC(t *testing.T) {
	store := openTestStore(t)

	loc, err := store.TimezoneFor(context.Background(), 99)
	if err != nil {
		t.Fatalf("timezone for: %v", err)
	}
	if loc != nil && loc.String() != "UTC" {
		t.Fatalf("expected UTC, got %v", loc)
	}
}
