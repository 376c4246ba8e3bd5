package persona

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

// TestCreatePersonaNormalizesFields ensures names are trimmed and timestamps set.
func TestCreatePersonaNormalizesFields(t *testing.T) {
	p, err := CreatePersona(CreatePersonaInput{
		OwnerID:     7,
		ScopeID:     11,
		DisplayName: "  Ivy  ",
		Pairs:       []BoundaryPair{{Prefix: "[", Suffix: "]"}, {Prefix: "[", Suffix: "]"}},
	}, fixedNow)
	if err != nil {
		t.Fatalf("create persona: %v", err)
	}
	if p.DisplayName != "Ivy" {
		t.Fatalf("expected trimmed name, got %q", p.DisplayName)
	}
	if len(p.Pairs) != 1 {
		t.Fatalf("expected duplicate pairs collapsed, got %d", len(p.Pairs))
	}
	if !p.CreatedAt.Equal(fixedNow()) {
		t.Fatalf("unexpected created at: %v", p.CreatedAt)
	}
}

// TestCreatePersonaRejectsEmptyName ensures blank names are rejected.
func TestCreatePersonaRejectsEmptyName(t *testing.T) {
	_, err := CreatePersona(CreatePersonaInput{DisplayName: "   "}, fixedNow)
	if !errors.Is(err, ErrEmptyDisplayName) {
		t.Fatalf("error = %v, want %v", err, ErrEmptyDisplayName)
	}
}

// TestCreatePersonaRejectsLongName ensures the 80-character cap applies
// after normalization.
func TestCreatePersonaRejectsLongName(t *testing.T) {
	_, err := CreatePersona(CreatePersonaInput{DisplayName: strings.Repeat("a", 81)}, fixedNow)
	if !errors.Is(err, ErrDisplayNameTooLong) {
		t.Fatalf("error = %v, want %v", err, ErrDisplayNameTooLong)
	}
	if _, err := CreatePersona(CreatePersonaInput{DisplayName: strings.Repeat("a", 80)}, fixedNow); err != nil {
		t.Fatalf("80-char name rejected: %v", err)
	}
}

// TestVariantNameFallsBackToParent ensures unnamed variants display the
// parent name and variant images fall back too.
func TestVariantNameFallsBackToParent(t *testing.T) {
	p := &Persona{DisplayName: "Ivy", DefaultImage: "ivy.png"}
	v := &Variant{Name: "*"}
	p.AddVariant(v)

	if got := v.SpeakerName(); got != "Ivy" {
		t.Fatalf("expected parent name, got %q", got)
	}
	if got := v.SpeakerImage(); got != "ivy.png" {
		t.Fatalf("expected parent image, got %q", got)
	}
}

// TestVariantForcedNameStripsMarker ensures the trailing '*' never displays.
func TestVariantForcedNameStripsMarker(t *testing.T) {
	p := &Persona{DisplayName: "Ivy"}
	v := &Variant{Name: "Ivy*", Image: "alt.png"}
	p.AddVariant(v)

	if got := v.SpeakerName(); got != "Ivy" {
		t.Fatalf("expected forced literal name, got %q", got)
	}
	if got := v.SpeakerImage(); got != "alt.png" {
		t.Fatalf("expected own image, got %q", got)
	}
}

// TestVariantsOrderedByName ensures variant lists stay sorted.
func TestVariantsOrderedByName(t *testing.T) {
	p := &Persona{DisplayName: "Ivy"}
	p.AddVariant(&Variant{Name: "Sad"})
	p.AddVariant(&Variant{Name: "Angry"})
	p.AddVariant(&Variant{Name: "Happy"})

	got := make([]string, 0, len(p.Variants))
	for _, v := range p.Variants {
		got = append(got, v.Name)
	}
	want := []string{"Angry", "Happy", "Sad"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order: %v", got)
		}
	}
}

// TestMatchLinePrefersVariantPairs ensures variant markers outrank the
// persona's own markers.
func TestMatchLinePrefersVariantPairs(t *testing.T) {
	p := &Persona{DisplayName: "Ivy", Pairs: []BoundaryPair{{Prefix: "[", Suffix: "]"}}}
	p.AddVariant(&Variant{Name: "Happy", Pairs: []BoundaryPair{{Prefix: "[h", Suffix: "]"}}})

	m, ok := p.MatchLine("[hello there]")
	if !ok {
		t.Fatalf("expected a match")
	}
	if m.Speaker.SpeakerName() != "Happy" {
		t.Fatalf("expected variant match, got %q", m.Speaker.SpeakerName())
	}
	if m.Text != "ello there" {
		t.Fatalf("unexpected stripped text: %q", m.Text)
	}
}

// TestMatchLineSkipsEmptyPairs ensures catch-all pairs never claim single lines.
func TestMatchLineSkipsEmptyPairs(t *testing.T) {
	p := &Persona{DisplayName: "Ivy", Pairs: []BoundaryPair{{}}}
	if _, ok := p.MatchLine("plain text"); ok {
		t.Fatalf("empty pair should not match per line")
	}
	if _, ok := p.MatchFallback("plain text"); !ok {
		t.Fatalf("empty pair should match in fallback mode")
	}
}

// TestMatchLineRejectsOverlappingDelimiters ensures a short line cannot be
// claimed when prefix and suffix would overlap.
func TestMatchLineRejectsOverlappingDelimiters(t *testing.T) {
	p := &Persona{DisplayName: "Ivy", Pairs: []BoundaryPair{{Prefix: "((", Suffix: "))"}}}
	if _, ok := p.MatchLine("(()"); ok {
		t.Fatalf("line shorter than both delimiters should not match")
	}
}

// TestFirstMatchPriorityOrder ensures the earliest-registered candidate wins.
func TestFirstMatchPriorityOrder(t *testing.T) {
	a := &Persona{DisplayName: "A", Pairs: []BoundaryPair{{Prefix: "[", Suffix: "]"}}}
	b := &Persona{DisplayName: "B", Pairs: []BoundaryPair{{Prefix: "[", Suffix: "]"}}}

	m, ok := FirstMatch([]*Persona{a, b}, "[hi]")
	if !ok || m.Speaker.SpeakerName() != "A" {
		t.Fatalf("expected A to win, got %+v ok=%v", m, ok)
	}

	m, ok = FirstMatch([]*Persona{b, a}, "[hi]")
	if !ok || m.Speaker.SpeakerName() != "B" {
		t.Fatalf("expected B to win after reordering, got %+v ok=%v", m, ok)
	}
}

// TestSafeName ensures reserved names are mangled but others pass through.
func TestSafeName(t *testing.T) {
	if got := SafeName("Clyde"); got == "Clyde" {
		t.Fatalf("reserved name was not mangled")
	}
	if got := SafeName("Ivy"); got != "Ivy" {
		t.Fatalf("unexpected mangling: %q", got)
	}
}

// TestAlternateName ensures alternate names differ from the original.
func TestAlternateName(t *testing.T) {
	if got := AlternateName("Ivy"); got == "Ivy" {
		t.Fatalf("alternate name should differ")
	}
}
