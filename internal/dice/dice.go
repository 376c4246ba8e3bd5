// Package dice implements seeded dice-expression evaluation.
//
// Expressions are sums of terms, where a term is either a dice group
// ("d20", "2d6", "4d6kh3", "2d20kl1") or a flat modifier ("3"). Evaluation
// is deterministic with respect to the provided random source: the same
// expression and the same source state always produce the same result.
package dice

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/vioshim/proxyengine/internal/platform/errors"
)

// DefaultSides is the die rolled when no expression is given.
const DefaultSides = 20

// Limits keep hostile expressions from soaking CPU; a chat macro never
// needs more than this.
const (
	maxTerms = 16
	maxCount = 100
	maxSides = 1000
)

var (
	// ErrEmptyExpression indicates an empty dice expression.
	ErrEmptyExpression = apperrors.New(apperrors.CodeDiceEmptyExpression, "dice expression is required")
	// ErrInvalidExpression indicates an expression that failed to parse.
	ErrInvalidExpression = apperrors.New(apperrors.CodeDiceInvalidExpression, "invalid dice expression")
	// ErrExpressionTooLarge indicates an expression over the term/size limits.
	ErrExpressionTooLarge = apperrors.New(apperrors.CodeDiceExpressionTooLarge, "dice expression too large")
)

// Term captures one evaluated component of an expression.
type Term struct {
	// Spec is the original text of the term, e.g. "2d6" or "4d6kh3".
	Spec string
	// Rolls are all dice rolled for the term, in roll order. Empty for
	// flat modifiers.
	Rolls []int
	// Kept are the rolls that count toward Value after keep-highest or
	// keep-lowest filtering. Equal to Rolls when no filter applies.
	Kept []int
	// Negated marks terms introduced with a '-' sign.
	Negated bool
	// Value is the signed contribution to the total.
	Value int
}

// Result is a fully evaluated dice expression.
type Result struct {
	Expression string
	Terms      []Term
	Total      int
}

// String renders the result with a per-term breakdown, e.g.
// "2d6 (3, 5) + 1 = 9".
func (r Result) String() string {
	var b strings.Builder
	for i, term := range r.Terms {
		if i > 0 {
			if term.Negated {
				b.WriteString(" - ")
			} else {
				b.WriteString(" + ")
			}
		} else if term.Negated {
			b.WriteString("-")
		}
		b.WriteString(term.Spec)
		if len(term.Rolls) > 0 {
			b.WriteString(" (")
			for j, roll := range term.Rolls {
				if j > 0 {
					b.WriteString(", ")
				}
				b.WriteString(strconv.Itoa(roll))
			}
			b.WriteString(")")
		}
	}
	fmt.Fprintf(&b, " = %d", r.Total)
	return b.String()
}

// Default rolls the default die.
func Default(rng *rand.Rand) Result {
	result, err := Roll(fmt.Sprintf("d%d", DefaultSides), rng)
	if err != nil {
		// The expression is hardcoded and always valid.
		panic(err)
	}
	return result
}

// Roll evaluates a dice expression against the provided random source.
func Roll(expression string, rng *rand.Rand) (Result, error) {
	expression = strings.ToLower(strings.ReplaceAll(expression, " ", ""))
	if expression == "" {
		return Result{}, ErrEmptyExpression
	}

	specs, err := splitTerms(expression)
	if err != nil {
		return Result{}, err
	}
	if len(specs) > maxTerms {
		return Result{}, ErrExpressionTooLarge
	}

	result := Result{Expression: expression}
	for _, spec := range specs {
		term, err := evalTerm(spec.text, spec.negated, rng)
		if err != nil {
			return Result{}, err
		}
		result.Terms = append(result.Terms, term)
		result.Total += term.Value
	}
	return result, nil
}

type termSpec struct {
	text    string
	negated bool
}

// splitTerms breaks "2d6+d4-1" into signed term specs.
func splitTerms(expression string) ([]termSpec, error) {
	var specs []termSpec
	start := 0
	negated := false
	for i := 0; i <= len(expression); i++ {
		if i < len(expression) && expression[i] != '+' && expression[i] != '-' {
			continue
		}
		if i == start {
			if i == len(expression) || i > 0 {
				return nil, fmt.Errorf("%w: %q", ErrInvalidExpression, expression)
			}
			// Leading sign.
			negated = expression[i] == '-'
			start = i + 1
			continue
		}
		specs = append(specs, termSpec{text: expression[start:i], negated: negated})
		if i < len(expression) {
			negated = expression[i] == '-'
		}
		start = i + 1
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidExpression, expression)
	}
	return specs, nil
}

func evalTerm(spec string, negated bool, rng *rand.Rand) (Term, error) {
	term := Term{Spec: spec, Negated: negated}

	if flat, err := strconv.Atoi(spec); err == nil {
		term.Value = flat
		if negated {
			term.Value = -flat
		}
		return term, nil
	}

	countPart, rest, found := strings.Cut(spec, "d")
	if !found {
		return Term{}, fmt.Errorf("%w: %q", ErrInvalidExpression, spec)
	}

	count := 1
	if countPart != "" {
		parsed, err := strconv.Atoi(countPart)
		if err != nil || parsed <= 0 {
			return Term{}, fmt.Errorf("%w: %q", ErrInvalidExpression, spec)
		}
		count = parsed
	}

	sidesPart, keepSpec := rest, ""
	if idx := strings.Index(rest, "k"); idx >= 0 {
		sidesPart, keepSpec = rest[:idx], rest[idx:]
	}
	sides, err := strconv.Atoi(sidesPart)
	if err != nil || sides <= 0 {
		return Term{}, fmt.Errorf("%w: %q", ErrInvalidExpression, spec)
	}
	if count > maxCount || sides > maxSides {
		return Term{}, ErrExpressionTooLarge
	}

	rolls := make([]int, count)
	for i := range rolls {
		rolls[i] = rng.Intn(sides) + 1
	}
	term.Rolls = rolls

	kept, err := applyKeep(rolls, keepSpec)
	if err != nil {
		return Term{}, fmt.Errorf("%w: %q", err, spec)
	}
	term.Kept = kept

	for _, roll := range kept {
		term.Value += roll
	}
	if negated {
		term.Value = -term.Value
	}
	return term, nil
}

// applyKeep filters rolls through a "kh<N>" or "kl<N>" suffix.
func applyKeep(rolls []int, keepSpec string) ([]int, error) {
	if keepSpec == "" {
		return rolls, nil
	}
	if len(keepSpec) < 3 || (keepSpec[1] != 'h' && keepSpec[1] != 'l') {
		return nil, ErrInvalidExpression
	}
	n, err := strconv.Atoi(keepSpec[2:])
	if err != nil || n <= 0 {
		return nil, ErrInvalidExpression
	}
	if n >= len(rolls) {
		return rolls, nil
	}

	sorted := append([]int(nil), rolls...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	if keepSpec[1] == 'h' {
		return sorted[:n], nil
	}
	return sorted[len(sorted)-n:], nil
}
