// Package segment splits a raw multi-paragraph message into runs, each
// attributed to exactly one persona or variant.
//
// Attribution walks the message line by line. A line wrapped in a known
// boundary pair starts a new run under that pair's owner; an unmarked line
// carries over onto the previous speaker's run. Consecutive lines under the
// same speaker merge into a single run joined by the original newlines.
package segment

import (
	"strings"

	"github.com/vioshim/proxyengine/internal/persona"
)

// Run is a maximal contiguous span of the message attributed to one speaker.
type Run struct {
	// Speaker is nil when no candidate claimed the text; callers must treat
	// such runs as unattributed rather than guess.
	Speaker persona.Speaker
	Text    string
}

// Attributed reports whether a speaker was resolved for the run.
func (r Run) Attributed() bool {
	return r.Speaker != nil
}

// Message segments text against the candidates in priority order.
//
// Every character of the input is accounted for exactly once, in order,
// modulo stripped boundary markers, with one exception: when a line fails to
// match and there is no previous speaker to carry over to, segmentation
// stops and the remaining lines are dropped from attribution. The whole
// message is then retried as a single fallback run, where catch-all (empty)
// boundary pairs are allowed to claim it. A message nobody claims comes back
// as one unattributed run.
func Message(candidates []*persona.Persona, text string) []Run {
	if text == "" {
		return nil
	}

	type attributed struct {
		speaker persona.Speaker
		text    string
	}

	var values []attributed
	var current persona.Speaker
	complete := true

	for _, line := range strings.Split(text, "\n") {
		if m, ok := persona.FirstMatch(candidates, line); ok {
			values = append(values, attributed{speaker: m.Speaker, text: m.Text})
			current = m.Speaker
			continue
		}
		if current == nil {
			complete = false
			break
		}
		values = append(values, attributed{speaker: current, text: line})
	}
	if !complete {
		values = nil
	}

	var runs []Run
	for _, v := range values {
		if n := len(runs); n > 0 && runs[n-1].Speaker == v.speaker {
			runs[n-1].Text += "\n" + v.text
			continue
		}
		runs = append(runs, Run{Speaker: v.speaker, Text: v.text})
	}
	for i := range runs {
		runs[i].Text = strings.TrimSpace(runs[i].Text)
	}

	if len(runs) == 0 {
		if m, ok := persona.FirstFallbackMatch(candidates, text); ok {
			return []Run{{Speaker: m.Speaker, Text: strings.TrimSpace(m.Text)}}
		}
		return []Run{{Text: text}}
	}

	return runs
}
