// Package pipeline composes speaker segmentation with token resolution:
// one inbound message goes in, attributed and fully substituted runs come
// out, ready for the relay layer.
package pipeline

import (
	"context"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vioshim/proxyengine/internal/gamedata"
	"github.com/vioshim/proxyengine/internal/macro"
	"github.com/vioshim/proxyengine/internal/persona"
	"github.com/vioshim/proxyengine/internal/random"
	"github.com/vioshim/proxyengine/internal/segment"
)

var tracer = otel.Tracer("proxyengine/pipeline")

// Message is one inbound message to resolve.
type Message struct {
	// UserID identifies the author for preference lookups.
	UserID int64
	// Candidates are the author's personas in priority order.
	Candidates []*persona.Persona
	// Text is the raw message body.
	Text string
}

// ResolvedRun is one outbound run after segmentation and token resolution.
type ResolvedRun struct {
	// Speaker is the run's final attribution; nil for unattributed runs.
	Speaker persona.Speaker
	Text    string
	Block   *macro.Block
}

// Resolver wires the segmenter and the macro registry to their
// collaborators. The zero value resolves with the stock registry, no game
// data, UTC timestamps, and a crypto-seeded RNG.
type Resolver struct {
	Registry *macro.Registry

	Moves     gamedata.MoveDeducer
	Types     gamedata.TypeDeducer
	Metronome gamedata.MetronomeSource

	// TimezoneFor resolves a user's preferred timezone; nil means UTC.
	TimezoneFor func(ctx context.Context, userID int64) (*time.Location, error)

	// Now and NewRNG pin down the clock and randomness for tests.
	Now    func() time.Time
	NewRNG func() *rand.Rand
}

// ResolveMessage segments the message across the candidate personas and
// resolves every token in each run.
//
// Runs share one RNG so draws within a message are a single stream, but
// each run gets its own environment: a speaker override in one run never
// leaks into the next. Runs that resolve to nothing are dropped.
func (r *Resolver) ResolveMessage(ctx context.Context, msg Message) []ResolvedRun {
	ctx, span := tracer.Start(ctx, "pipeline.resolve_message", trace.WithAttributes(
		attribute.Int("message.candidates", len(msg.Candidates)),
		attribute.Int("message.length", len(msg.Text)),
	))
	defer span.End()

	registry := r.Registry
	if registry == nil {
		registry = macro.DefaultRegistry()
	}
	rng := r.rng()

	var resolved []ResolvedRun
	for _, run := range segment.Message(msg.Candidates, msg.Text) {
		env := &macro.Env{
			Speaker:     run.Speaker,
			UserID:      msg.UserID,
			RNG:         rng,
			Now:         r.Now,
			Moves:       r.Moves,
			Types:       r.Types,
			Metronome:   r.Metronome,
			TimezoneFor: r.TimezoneFor,
		}
		result := registry.ResolveText(ctx, env, run.Text)
		if result.Text == "" && result.Block == nil {
			continue
		}
		resolved = append(resolved, ResolvedRun{
			Speaker: result.Speaker,
			Text:    result.Text,
			Block:   result.Block,
		})
	}

	span.SetAttributes(attribute.Int("message.runs", len(resolved)))
	return resolved
}

func (r *Resolver) rng() *rand.Rand {
	if r.NewRNG != nil {
		return r.NewRNG()
	}
	seed, err := random.NewSeed()
	if err != nil {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
