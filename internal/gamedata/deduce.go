package gamedata

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// deduceCutoff is the minimum similarity score (0-100) for a name to count
// as a match.
const deduceCutoff = 70

// DeduceName finds the best fuzzy match for name among choices and returns
// its index, or -1 when nothing scores at or above the cutoff. Matching is
// case-insensitive and ignores spaces and hyphens, so "hidden power",
// "HiddenPower" and "hidden-power" all resolve alike.
func DeduceName(name string, choices []string) int {
	query := foldName(name)
	if query == "" {
		return -1
	}

	best, bestScore := -1, 0
	for i, choice := range choices {
		if folded := foldName(choice); folded == query {
			return i
		} else if score := fuzzy.Ratio(query, folded); score > bestScore {
			best, bestScore = i, score
		}
	}
	if bestScore < deduceCutoff {
		return -1
	}
	return best
}

func foldName(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "")
	return strings.ReplaceAll(name, "-", "")
}

func deduceIndex(name string, n int, nameAt func(int) string) int {
	choices := make([]string, n)
	for i := range choices {
		choices[i] = nameAt(i)
	}
	return DeduceName(name, choices)
}
