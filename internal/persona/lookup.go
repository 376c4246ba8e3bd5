package persona

// Match is the result of testing a line against a persona's boundary pairs.
type Match struct {
	// Speaker is the persona or variant whose pair claimed the line.
	Speaker Speaker
	// Text is the line with the matched delimiters stripped.
	Text string
}

// MatchLine tests the line against the persona's boundary pairs. Variant
// pairs are checked before persona-level pairs, so a more specific marker
// always outranks a more general one for the same owner. Empty pairs are
// skipped; see MatchFallback.
func (p *Persona) MatchLine(line string) (Match, bool) {
	return p.match(line, false)
}

// MatchFallback is the whole-message variant of MatchLine: empty boundary
// pairs participate, acting as a catch-all of last resort.
func (p *Persona) MatchFallback(text string) (Match, bool) {
	return p.match(text, true)
}

func (p *Persona) match(line string, includeEmpty bool) (Match, bool) {
	if line == "" {
		return Match{}, false
	}

	for _, v := range p.Variants {
		for _, pair := range v.Pairs {
			if pair.Empty() && !includeEmpty {
				continue
			}
			if pair.Matches(line) {
				return Match{Speaker: v, Text: pair.Strip(line)}, true
			}
		}
	}

	for _, pair := range p.Pairs {
		if pair.Empty() && !includeEmpty {
			continue
		}
		if pair.Matches(line) {
			return Match{Speaker: p, Text: pair.Strip(line)}, true
		}
	}

	return Match{}, false
}

// FirstMatch tests the line against candidates in priority order and returns
// the first match. The earliest-registered candidate wins ties.
func FirstMatch(candidates []*Persona, line string) (Match, bool) {
	for _, candidate := range candidates {
		if m, ok := candidate.MatchLine(line); ok {
			return m, true
		}
	}
	return Match{}, false
}

// FirstFallbackMatch is FirstMatch over whole-message fallback matching.
func FirstFallbackMatch(candidates []*Persona, text string) (Match, bool) {
	for _, candidate := range candidates {
		if m, ok := candidate.MatchFallback(text); ok {
			return m, true
		}
	}
	return Match{}, false
}
