package macro

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/vioshim/proxyengine/internal/gamedata"
	"github.com/vioshim/proxyengine/internal/persona"
)

func testCatalog() *gamedata.Catalog {
	moves := []gamedata.Move{
		{Name: "Ember", Type: "Fire", Category: gamedata.CategorySpecial, Power: 40, Accuracy: 100, PP: 25},
		{Name: "Pound", Type: "Normal", Category: gamedata.CategoryPhysical, Power: 40, Accuracy: 100, PP: 35, Metronome: true},
		{Name: "Explosion", Type: "Normal", Category: gamedata.CategoryPhysical, Power: 250, Accuracy: 100, PP: 5, Metronome: true, Banned: true},
	}
	types := []gamedata.Typing{
		{ID: 1, Name: "Fire", ZMove: "Inferno Overdrive", MaxMove: "Max Flare"},
		{ID: 2, Name: "Grass", Chart: map[int]float64{1: 2.0}},
	}
	return gamedata.NewCatalog(moves, types)
}

func testEnv() *Env {
	catalog := testCatalog()
	return &Env{
		RNG:       rand.New(rand.NewSource(1)),
		Now:       func() time.Time { return time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC) },
		Moves:     catalog,
		Types:     catalog,
		Metronome: catalog,
	}
}

// TestResolveTextPlainPassthrough verifies text with no tokens comes back
// unchanged, token markers included when unterminated.
func TestResolveTextPlainPassthrough(t *testing.T) {
	registry := DefaultRegistry()

	for _, text := range []string{"", "plain text", "half a {{roll token", "}} backwards {{"} {
		result := registry.ResolveText(context.Background(), testEnv(), text)
		if result.Text != text {
			t.Fatalf("expected %q unchanged, got %q", text, result.Text)
		}
	}
}

// TestResolveTextUnknownTokenVerbatim verifies unrecognized token names
// stay in the text verbatim.
func TestResolveTextUnknownTokenVerbatim(t *testing.T) {
	registry := DefaultRegistry()

	input := "before {{totallyBogus:1:2}} after"
	result := registry.ResolveText(context.Background(), testEnv(), input)
	if result.Text != input {
		t.Fatalf("expected %q, got %q", input, result.Text)
	}
}

// TestResolveTextReplacesToken verifies a recognized token is substituted
// in place.
func TestResolveTextReplacesToken(t *testing.T) {
	registry := DefaultRegistry()

	result := registry.ResolveText(context.Background(), testEnv(), "rolled {{roll:1d1}}!")
	if result.Text != "rolled 1d1 (1) = 1!" {
		t.Fatalf("unexpected text %q", result.Text)
	}
}

// TestResolveTextFailureIsolated verifies a failing token substitutes a
// diagnostic and later tokens still resolve.
func TestResolveTextFailureIsolated(t *testing.T) {
	registry := DefaultRegistry()

	result := registry.ResolveText(context.Background(), testEnv(), "{{roll:banana}} then {{roll:1d1}}")
	if !strings.HasPrefix(result.Text, "[roll error:") {
		t.Fatalf("expected diagnostic prefix, got %q", result.Text)
	}
	if !strings.HasSuffix(result.Text, "then 1d1 (1) = 1") {
		t.Fatalf("expected later token resolved, got %q", result.Text)
	}
}

// TestResolveTextSpeakerOverride verifies a mood token reattributes the run
// and renders as nothing.
func TestResolveTextSpeakerOverride(t *testing.T) {
	registry := DefaultRegistry()

	p, err := persona.CreatePersona(persona.CreatePersonaInput{
		DisplayName: "Alice",
		Variants:    []*persona.Variant{{Name: "Happy"}, {Name: "Angry"}},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	env := testEnv()
	env.Speaker = p
	result := registry.ResolveText(context.Background(), env, "{{mood:Happy}} Hello!")
	if result.Text != " Hello!" {
		t.Fatalf("unexpected text %q", result.Text)
	}
	if result.Speaker == nil || result.Speaker.SpeakerName() != "Happy" {
		t.Fatalf("expected Happy speaker, got %v", result.Speaker)
	}
	if env.Speaker.SpeakerName() != "Happy" {
		t.Fatal("expected env speaker updated for later tokens")
	}
}

// TestResolveTextFirstBlockWins verifies only the first block any token
// attaches survives the run.
func TestResolveTextFirstBlockWins(t *testing.T) {
	registry := DefaultRegistry()

	result := registry.ResolveText(context.Background(), testEnv(), "{{move:ember:embed}} {{type:fire:embed}}")
	if result.Block == nil {
		t.Fatal("expected a block")
	}
	if result.Block.Title != "Ember" {
		t.Fatalf("expected first block to win, got title %q", result.Block.Title)
	}
}

// TestResolveTextNoRescan verifies macro output containing token markers is
// not resolved again.
func TestResolveTextNoRescan(t *testing.T) {
	registry := DefaultRegistry()

	input := "{{roll:choices:{{roll}} }}"
	result := registry.ResolveText(context.Background(), testEnv(), input)
	// The inner markers close the outer token early; whatever remains must
	// not have been re-expanded into a roll result.
	if strings.Contains(result.Text, "= ") && strings.Contains(result.Text, "d20") {
		t.Fatalf("output was re-scanned: %q", result.Text)
	}
}
