package macro

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/vioshim/proxyengine/internal/persona"
	apperrors "github.com/vioshim/proxyengine/internal/platform/errors"
)

const (
	openMarker  = "{{"
	closeMarker = "}}"
)

// Result is the fully resolved form of one text run.
type Result struct {
	// Text is the literal output with every recognized token substituted.
	Text string
	// Block is the first rich block any handler attached; later blocks in
	// the same run are dropped (first-wins policy).
	Block *Block
	// Speaker is the run's final speaker: the input speaker unless a
	// handler overrode it.
	Speaker persona.Speaker
}

// ResolveText resolves every token in the run's text, left to right.
//
// Macro output is never re-scanned, so a handler cannot expand into further
// tokens. Unknown names and unmatched argument shapes leave the token in
// place verbatim. A handler failure (or panic) substitutes a bracketed
// diagnostic and resolution continues with the next token; nothing a single
// token does can abort the run.
func (r *Registry) ResolveText(ctx context.Context, env *Env, text string) Result {
	result := Result{Speaker: env.Speaker}

	var out strings.Builder
	rest := text
	for {
		start := strings.Index(rest, openMarker)
		if start < 0 {
			break
		}
		end := strings.Index(rest[start+len(openMarker):], closeMarker)
		if end < 0 {
			break
		}
		token := rest[start+len(openMarker) : start+len(openMarker)+end]
		out.WriteString(rest[:start])
		rest = rest[start+len(openMarker)+end+len(closeMarker):]

		replacement, outcome := r.resolveToken(ctx, env, &result, token)
		if outcome.Kind == OutcomeOverrideSpeaker {
			result.Speaker = outcome.Speaker
			env.Speaker = outcome.Speaker
		}
		out.WriteString(replacement)
	}
	out.WriteString(rest)

	result.Text = out.String()
	return result
}

// resolveToken resolves a single token body (the text between the markers)
// and returns the literal replacement.
func (r *Registry) resolveToken(ctx context.Context, env *Env, result *Result, token string) (string, Outcome) {
	verbatim := openMarker + token + closeMarker

	fields := strings.Split(token, ":")
	handler, ok := r.Dispatch(fields[0])
	if !ok {
		return verbatim, NoMatch()
	}

	args := fields[1:]
	for i, arg := range args {
		if handler.LowercaseArgs() {
			arg = strings.ToLower(arg)
		}
		if handler.TrimArgs() {
			arg = strings.TrimSpace(arg)
		}
		args[i] = arg
	}

	outcome := invoke(ctx, handler, env, args)
	switch outcome.Kind {
	case OutcomeNoMatch:
		return verbatim, outcome
	case OutcomeFailure:
		name := handler.Aliases()[0]
		log.Printf("macro: %s handler failed: %v", name, outcome.Err)
		return fmt.Sprintf("[%s error: %v]", name, outcome.Err), outcome
	default:
		if outcome.Block != nil && result.Block == nil {
			result.Block = outcome.Block
		}
		return outcome.Text, outcome
	}
}

// invoke calls the handler, converting panics into failures so one broken
// token never takes down message resolution.
func invoke(ctx context.Context, handler Handler, env *Env, args []string) (outcome Outcome) {
	defer func() {
		if recovered := recover(); recovered != nil {
			outcome = Failure(apperrors.New(apperrors.CodeMacroHandlerFailed, fmt.Sprintf("handler panic: %v", recovered)))
		}
	}()
	return handler.Resolve(ctx, env, args)
}
