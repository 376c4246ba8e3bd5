// Package macro resolves {{name:arg:...}} tokens embedded in message text.
//
// Each token is fuzzy-dispatched by name to a handler from a fixed registry
// built at process start. Handlers pattern-match on the shape of the
// argument list and produce an Outcome: a literal substitution, a
// substitution with a rich block, a speaker override, or a failure. Tokens
// nobody recognizes stay in the text verbatim.
package macro

import (
	"context"
	"math/rand"
	"strings"
	"time"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"github.com/vioshim/proxyengine/internal/gamedata"
	"github.com/vioshim/proxyengine/internal/persona"
)

// dispatchCutoff is the minimum similarity score (0-100) for a token name
// to dispatch to a handler alias.
const dispatchCutoff = 90

// Env carries the per-message collaborators handlers resolve against. The
// only sanctioned sources of non-determinism live here, so tests can pin
// them all down.
type Env struct {
	// Speaker is the run's currently attributed speaker. The resolver
	// updates it when a handler overrides the speaker mid-run.
	Speaker persona.Speaker
	// UserID identifies the message author for preference lookups.
	UserID int64

	RNG *rand.Rand
	Now func() time.Time

	Moves     gamedata.MoveDeducer
	Types     gamedata.TypeDeducer
	Metronome gamedata.MetronomeSource

	// TimezoneFor resolves the author's preferred timezone; a nil func,
	// an error, or a nil location all fall back to UTC.
	TimezoneFor func(ctx context.Context, userID int64) (*time.Location, error)
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Env) location(ctx context.Context) *time.Location {
	if e.TimezoneFor == nil {
		return time.UTC
	}
	loc, err := e.TimezoneFor(ctx, e.UserID)
	if err != nil || loc == nil {
		return time.UTC
	}
	return loc
}

// Handler resolves one macro family.
type Handler interface {
	// Aliases returns the case-insensitive names the handler answers to.
	// The first alias is the canonical name used in diagnostics.
	Aliases() []string
	// LowercaseArgs reports whether arguments are lowercased before Resolve.
	LowercaseArgs() bool
	// TrimArgs reports whether arguments are whitespace-trimmed before Resolve.
	TrimArgs() bool
	// Resolve pattern-matches the argument list and produces an outcome.
	Resolve(ctx context.Context, env *Env, args []string) Outcome
}

// Registry is the closed set of handlers known at process start. Build one
// with NewRegistry and pass it into the pipeline explicitly; there is no
// global registration.
type Registry struct {
	handlers []Handler
}

// NewRegistry builds a registry over the given handlers. Dispatch ties
// break in registration order.
func NewRegistry(handlers ...Handler) *Registry {
	return &Registry{handlers: append([]Handler(nil), handlers...)}
}

// DefaultRegistry builds the full stock handler set.
func DefaultRegistry() *Registry {
	return NewRegistry(
		RollHandler{},
		DateHandler{},
		MoveHandler{},
		TypeHandler{},
		MetronomeHandler{},
		MoodHandler{},
	)
}

// Handlers returns the registered handlers for inspection.
func (r *Registry) Handlers() []Handler {
	return append([]Handler(nil), r.handlers...)
}

// Dispatch fuzzy-matches a token name against every handler alias and
// returns the best match at or above the cutoff.
func (r *Registry) Dispatch(name string) (Handler, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, false
	}

	var best Handler
	bestScore := 0
	for _, handler := range r.handlers {
		for _, alias := range handler.Aliases() {
			alias = strings.ToLower(alias)
			if alias == name {
				return handler, true
			}
			if score := fuzzy.Ratio(name, alias); score > bestScore {
				best, bestScore = handler, score
			}
		}
	}
	if bestScore < dispatchCutoff {
		return nil, false
	}
	return best, true
}
