package dice

import (
	"errors"
	"math/rand"
	"testing"
)

func rng(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// TestRollIsDeterministic ensures the same seed reproduces the same result.
func TestRollIsDeterministic(t *testing.T) {
	first, err := Roll("2d6+3", rng(1))
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	second, err := Roll("2d6+3", rng(1))
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	if first.Total != second.Total {
		t.Fatalf("totals differ: %d vs %d", first.Total, second.Total)
	}
}

// TestRollMatchesSourceDraws ensures dice draw from the source in term order.
func TestRollMatchesSourceDraws(t *testing.T) {
	reference := rng(7)
	want := reference.Intn(6) + 1 + reference.Intn(6) + 1 + reference.Intn(4) + 1 + 2

	result, err := Roll("2d6+d4+2", rng(7))
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	if result.Total != want {
		t.Fatalf("expected total %d, got %d", want, result.Total)
	}
	if len(result.Terms) != 3 {
		t.Fatalf("expected 3 terms, got %d", len(result.Terms))
	}
	if len(result.Terms[0].Rolls) != 2 || len(result.Terms[1].Rolls) != 1 {
		t.Fatalf("unexpected roll counts: %+v", result.Terms)
	}
	if result.Terms[2].Value != 2 {
		t.Fatalf("expected flat modifier 2, got %d", result.Terms[2].Value)
	}
}

// TestRollNegatedTerms ensures '-' terms subtract.
func TestRollNegatedTerms(t *testing.T) {
	reference := rng(3)
	want := reference.Intn(20) + 1 - 4

	result, err := Roll("d20-4", rng(3))
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	if result.Total != want {
		t.Fatalf("expected total %d, got %d", want, result.Total)
	}
	if !result.Terms[1].Negated || result.Terms[1].Value != -4 {
		t.Fatalf("unexpected modifier term: %+v", result.Terms[1])
	}
}

// TestRollKeepHighest ensures kh filtering keeps the top rolls only.
func TestRollKeepHighest(t *testing.T) {
	result, err := Roll("4d6kh3", rng(5))
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	term := result.Terms[0]
	if len(term.Rolls) != 4 {
		t.Fatalf("expected 4 rolls, got %d", len(term.Rolls))
	}
	if len(term.Kept) != 3 {
		t.Fatalf("expected 3 kept, got %d", len(term.Kept))
	}
	sum := 0
	for _, v := range term.Kept {
		sum += v
	}
	if term.Value != sum || result.Total != sum {
		t.Fatalf("kept sum mismatch: %+v", term)
	}
	lowest := term.Rolls[0]
	for _, v := range term.Rolls {
		if v < lowest {
			lowest = v
		}
	}
	total := 0
	for _, v := range term.Rolls {
		total += v
	}
	if sum != total-lowest {
		t.Fatalf("expected lowest roll dropped: rolls=%v kept=%v", term.Rolls, term.Kept)
	}
}

// TestRollRejectsInvalidExpressions fails closed on garbage input.
func TestRollRejectsInvalidExpressions(t *testing.T) {
	tcs := []string{"", "banana", "2x6", "d", "2d", "d6+", "+", "2d6++1", "0d6", "d0"}
	for _, tc := range tcs {
		if _, err := Roll(tc, rng(1)); err == nil {
			t.Fatalf("Roll(%q) succeeded, want error", tc)
		}
	}
}

// TestRollRejectsHugeExpressions enforces the size limits.
func TestRollRejectsHugeExpressions(t *testing.T) {
	if _, err := Roll("1000d6", rng(1)); !errors.Is(err, ErrExpressionTooLarge) {
		t.Fatalf("expected ErrExpressionTooLarge, got %v", err)
	}
	if _, err := Roll("d10000", rng(1)); !errors.Is(err, ErrExpressionTooLarge) {
		t.Fatalf("expected ErrExpressionTooLarge, got %v", err)
	}
}

// TestDefaultRollsD20 ensures the no-expression form rolls the default die.
func TestDefaultRollsD20(t *testing.T) {
	result := Default(rng(2))
	if result.Total < 1 || result.Total > DefaultSides {
		t.Fatalf("default roll out of range: %d", result.Total)
	}
	if result.Expression != "d20" {
		t.Fatalf("unexpected expression: %q", result.Expression)
	}
}

// TestResultString renders a breakdown with rolls and modifiers.
func TestResultString(t *testing.T) {
	result := Result{
		Terms: []Term{
			{Spec: "2d6", Rolls: []int{3, 5}, Kept: []int{3, 5}, Value: 8},
			{Spec: "1", Value: 1},
		},
		Total: 9,
	}
	if got := result.String(); got != "2d6 (3, 5) + 1 = 9" {
		t.Fatalf("unexpected rendering: %q", got)
	}
}
