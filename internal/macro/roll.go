package macro

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/vioshim/proxyengine/internal/dice"
	apperrors "github.com/vioshim/proxyengine/internal/platform/errors"
)

const embedArg = "embed"

// RollHandler evaluates dice expressions and random picks.
//
// Accepted shapes:
//
//	{{roll}}                        default d20
//	{{roll:embed}}                  default d20 with a block
//	{{roll:2d6+3}}                  dice expression
//	{{roll:2d6+3:embed}}            dice expression with a block
//	{{roll:choices:a:b:c}}          one random pick
//	{{roll:choices:2:a:b:c}}        n picks with replacement
//	{{roll:sample:2:a:b:c}}         n distinct picks
type RollHandler struct{}

func (RollHandler) Aliases() []string   { return []string{"roll", "dice", "rng"} }
func (RollHandler) LowercaseArgs() bool { return true }
func (RollHandler) TrimArgs() bool      { return true }

func (h RollHandler) Resolve(_ context.Context, env *Env, args []string) Outcome {
	switch {
	case len(args) == 0:
		return h.roll(env, "", false)
	case len(args) == 1 && args[0] == embedArg:
		return h.roll(env, "", true)
	case args[0] == "choices" && len(args) > 1:
		return h.pick(env, args[1:], true)
	case args[0] == "sample" && len(args) > 1:
		return h.pick(env, args[1:], false)
	case len(args) == 1:
		return h.roll(env, args[0], false)
	case len(args) == 2 && args[1] == embedArg:
		return h.roll(env, args[0], true)
	default:
		return NoMatch()
	}
}

func (RollHandler) roll(env *Env, expression string, embed bool) Outcome {
	var result dice.Result
	if expression == "" {
		result = dice.Default(env.RNG)
	} else {
		var err error
		result, err = dice.Roll(expression, env.RNG)
		if err != nil {
			return Failure(err)
		}
	}

	text := result.String()
	if !embed {
		return Replace(text)
	}
	return ReplaceWithBlock(text, &Block{
		Title:       "Dice Roll",
		Description: text,
		Footer:      result.Expression,
	})
}

// pick selects from a literal item list: with replacement for choices,
// without for sample. A leading integer argument sets the pick count.
func (RollHandler) pick(env *Env, args []string, replacement bool) Outcome {
	count := 1
	items := args
	if n, err := strconv.Atoi(args[0]); err == nil && len(args) > 1 {
		if n <= 0 {
			return Failure(apperrors.New(apperrors.CodeMacroBadArguments, fmt.Sprintf("pick count must be positive, got %d", n)))
		}
		count = n
		items = args[1:]
	}
	if len(items) == 0 {
		return NoMatch()
	}

	var picks []string
	if replacement {
		for i := 0; i < count; i++ {
			picks = append(picks, items[env.RNG.Intn(len(items))])
		}
	} else {
		if count > len(items) {
			return Failure(apperrors.New(apperrors.CodeMacroBadArguments, fmt.Sprintf("cannot sample %d of %d items", count, len(items))))
		}
		indexes := env.RNG.Perm(len(items))[:count]
		for _, idx := range indexes {
			picks = append(picks, items[idx])
		}
	}
	return Replace(strings.Join(picks, ", "))
}
