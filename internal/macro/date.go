package macro

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DateHandler renders timestamps in the invoking user's timezone.
//
// Accepted shapes:
//
//	{{date}}                 the current moment
//	{{date:F}}               the current moment in a given style
//	{{date:march 3 5pm}}     a parsed moment in the default style
//	{{date:march 3 5pm:F}}   a parsed moment in a given style
//
// Styles follow the single-letter convention: t short time, T long
// time, d short date, D long date, f short date-time, F long
// date-time, R relative. The style token trails the expression; the
// arguments before it are re-joined with ":" before parsing, so clock
// times survive the argument split.
type DateHandler struct{}

func (DateHandler) Aliases() []string   { return []string{"date", "time", "now"} }
func (DateHandler) LowercaseArgs() bool { return false }
func (DateHandler) TrimArgs() bool      { return true }

var dateStyles = map[string]string{
	"t": "3:04 PM",
	"T": "3:04:05 PM",
	"d": "01/02/2006",
	"D": "January 2, 2006",
	"f": "January 2, 2006 3:04 PM",
	"F": "Monday, January 2, 2006 3:04 PM",
}

func (h DateHandler) Resolve(ctx context.Context, env *Env, args []string) Outcome {
	style := "f"
	if n := len(args); n > 0 {
		last := args[n-1]
		if _, ok := dateStyles[last]; ok || last == "R" {
			style = last
			args = args[:n-1]
		}
	}

	loc := env.location(ctx)
	now := env.now().In(loc)

	moment := now
	if len(args) > 0 {
		raw := strings.Join(args, ":")
		parsed, err := dateparse.ParseIn(raw, loc)
		if err != nil {
			return Failure(fmt.Errorf("parse date %q: %w", raw, err))
		}
		moment = parsed.In(loc)
	}

	if style == "R" {
		return Replace(relative(moment, now))
	}
	return Replace(moment.Format(dateStyles[style]))
}

// relative renders the distance between two moments in coarse units.
func relative(t, now time.Time) string {
	d := t.Sub(now)
	past := d < 0
	if past {
		d = -d
	}

	var amount string
	switch {
	case d < time.Minute:
		amount = fmt.Sprintf("%d seconds", int(d.Seconds()))
	case d < time.Hour:
		amount = fmt.Sprintf("%d minutes", int(d.Minutes()))
	case d < 24*time.Hour:
		amount = fmt.Sprintf("%d hours", int(d.Hours()))
	case d < 30*24*time.Hour:
		amount = fmt.Sprintf("%d days", int(d.Hours()/24))
	case d < 365*24*time.Hour:
		amount = fmt.Sprintf("%d months", int(d.Hours()/(24*30)))
	default:
		amount = fmt.Sprintf("%d years", int(d.Hours()/(24*365)))
	}

	if past {
		return amount + " ago"
	}
	return "in " + amount
}
