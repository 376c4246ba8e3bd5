package macro

import (
	"github.com/vioshim/proxyengine/internal/persona"
)

// OutcomeKind discriminates handler outcomes.
type OutcomeKind int

const (
	// OutcomeNoMatch means the argument shape matched no declared pattern;
	// the token is left verbatim.
	OutcomeNoMatch OutcomeKind = iota
	// OutcomeReplace substitutes literal text, optionally with a block.
	OutcomeReplace
	// OutcomeOverrideSpeaker substitutes text and reattributes the rest of
	// the run to a different speaker.
	OutcomeOverrideSpeaker
	// OutcomeFailure substitutes a bracketed diagnostic; resolution of the
	// remaining tokens continues.
	OutcomeFailure
)

// BlockField is one labelled value inside a Block.
type BlockField struct {
	Name   string
	Value  string
	Inline bool
}

// Block is supplementary rich content attached to a resolved run, rendered
// by the transport layer as an info panel next to the plain text.
type Block struct {
	Title       string
	Description string
	Color       int
	Thumbnail   string
	Footer      string
	Fields      []BlockField
}

// Outcome is the result of one handler invocation.
type Outcome struct {
	Kind    OutcomeKind
	Text    string
	Block   *Block
	Speaker persona.Speaker
	Err     error
}

// NoMatch reports that no declared argument shape matched.
func NoMatch() Outcome {
	return Outcome{Kind: OutcomeNoMatch}
}

// Replace substitutes literal text for the token.
func Replace(text string) Outcome {
	return Outcome{Kind: OutcomeReplace, Text: text}
}

// ReplaceWithBlock substitutes literal text and attaches a rich block.
func ReplaceWithBlock(text string, block *Block) Outcome {
	return Outcome{Kind: OutcomeReplace, Text: text, Block: block}
}

// OverrideSpeaker substitutes text and changes the run's speaker for the
// remainder of resolution.
func OverrideSpeaker(speaker persona.Speaker, text string) Outcome {
	return Outcome{Kind: OutcomeOverrideSpeaker, Text: text, Speaker: speaker}
}

// Failure reports an internal handler error.
func Failure(err error) Outcome {
	return Outcome{Kind: OutcomeFailure, Err: err}
}
