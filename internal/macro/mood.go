package macro

import (
	"context"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/vioshim/proxyengine/internal/persona"
)

// moodCutoff is the minimum fuzzy score for a variant name to count as a
// mood match. Looser than the dispatch cutoff because mood names are
// short.
const moodCutoff = 60

// MoodHandler switches the current speaker to one of its persona's
// variants by fuzzy name match. The token itself renders as nothing; its
// effect is the speaker override for the rest of the run.
//
// Accepted shape:
//
//	{{mood:happy}}
type MoodHandler struct{}

func (MoodHandler) Aliases() []string   { return []string{"mood", "form", "variant"} }
func (MoodHandler) LowercaseArgs() bool { return false }
func (MoodHandler) TrimArgs() bool      { return true }

func (h MoodHandler) Resolve(_ context.Context, env *Env, args []string) Outcome {
	if len(args) != 1 || args[0] == "" {
		return NoMatch()
	}

	variants := speakerVariants(env.Speaker)
	if len(variants) == 0 {
		return NoMatch()
	}

	wanted := strings.ToLower(args[0])
	best := -1
	bestScore := 0
	for i, v := range variants {
		score := fuzzy.Ratio(wanted, strings.ToLower(v.SpeakerName()))
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 || bestScore < moodCutoff {
		return NoMatch()
	}
	return OverrideSpeaker(variants[best], "")
}

// speakerVariants returns the variant set reachable from the current
// speaker: a persona's own variants, or the sibling variants of a variant.
func speakerVariants(speaker persona.Speaker) []*persona.Variant {
	switch s := speaker.(type) {
	case *persona.Persona:
		return s.Variants
	case *persona.Variant:
		if parent := s.Parent(); parent != nil {
			return parent.Variants
		}
	}
	return nil
}
