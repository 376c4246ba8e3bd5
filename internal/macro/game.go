package macro

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/vioshim/proxyengine/internal/gamedata"
)

// MoveHandler looks up a move and optionally converts its power to the
// Z-Move or Max-Move scale.
//
// Accepted shapes:
//
//	{{move:ember}}
//	{{move:ember:embed}}
//	{{move:ember:max}}
//	{{move:ember:max:embed}}
//	{{move:ember:max:water}}        max conversion under a changed type
//	{{move:ember:max:water:embed}}
//	{{move:ember:z}}
//	{{move:ember:z:embed}}
type MoveHandler struct{}

func (MoveHandler) Aliases() []string   { return []string{"move", "attack"} }
func (MoveHandler) LowercaseArgs() bool { return true }
func (MoveHandler) TrimArgs() bool      { return true }

func (h MoveHandler) Resolve(ctx context.Context, env *Env, args []string) Outcome {
	if len(args) == 0 || env.Moves == nil {
		return NoMatch()
	}

	move, err := env.Moves.DeduceMove(ctx, args[0])
	if err != nil {
		return Failure(fmt.Errorf("move %q: %w", args[0], err))
	}
	rest := args[1:]

	embed := false
	if n := len(rest); n > 0 && rest[n-1] == embedArg {
		embed = true
		rest = rest[:n-1]
	}

	switch {
	case len(rest) == 0:
		return moveOutcome(move, embed)
	case rest[0] == "z" && len(rest) == 1:
		move.Name = zMoveName(ctx, env, move) + " (" + move.Name + ")"
		move.Power = gamedata.ZMovePower(move.Power)
		return moveOutcome(move, embed)
	case rest[0] == "max" && len(rest) <= 2:
		if len(rest) == 2 {
			typing, err := deduceTyping(ctx, env, rest[1])
			if err != nil {
				return Failure(err)
			}
			move.Type = typing.Name
		}
		move.Name = maxMoveName(ctx, env, move) + " (" + move.Name + ")"
		move.Power = gamedata.MaxMovePower(move.Power, move.Type)
		return moveOutcome(move, embed)
	default:
		return NoMatch()
	}
}

func moveOutcome(move gamedata.Move, embed bool) Outcome {
	text := moveText(move)
	if !embed {
		return Replace(text)
	}
	return ReplaceWithBlock(text, moveBlock(move))
}

func moveText(move gamedata.Move) string {
	parts := []string{move.Name, "(" + move.Type + ", " + move.Category.String() + ")"}
	if move.Power > 0 {
		parts = append(parts, strconv.Itoa(move.Power)+" power")
	}
	if move.Accuracy > 0 {
		parts = append(parts, strconv.Itoa(move.Accuracy)+"% accuracy")
	}
	return strings.Join(parts, " ")
}

func moveBlock(move gamedata.Move) *Block {
	block := &Block{
		Title:       move.Name,
		Description: move.Desc,
		Fields: []BlockField{
			{Name: "Type", Value: move.Type, Inline: true},
			{Name: "Category", Value: move.Category.String(), Inline: true},
		},
	}
	if move.Power > 0 {
		block.Fields = append(block.Fields, BlockField{Name: "Power", Value: strconv.Itoa(move.Power), Inline: true})
	}
	if move.Accuracy > 0 {
		block.Fields = append(block.Fields, BlockField{Name: "Accuracy", Value: strconv.Itoa(move.Accuracy) + "%", Inline: true})
	}
	if move.PP > 0 {
		block.Fields = append(block.Fields, BlockField{Name: "PP", Value: strconv.Itoa(move.PP), Inline: true})
	}
	return block
}

// zMoveName and maxMoveName look the converted move names up through the
// move's typing, falling back to a generic label when no typing is wired.

func zMoveName(ctx context.Context, env *Env, move gamedata.Move) string {
	if typing, err := deduceTyping(ctx, env, move.Type); err == nil && typing.ZMove != "" {
		return typing.ZMove
	}
	return "Z-" + move.Name
}

func maxMoveName(ctx context.Context, env *Env, move gamedata.Move) string {
	if typing, err := deduceTyping(ctx, env, move.Type); err == nil && typing.MaxMove != "" {
		return typing.MaxMove
	}
	return "Max " + move.Name
}

// deduceDefender resolves a defender typing, combining "a/b" duals.
func deduceDefender(ctx context.Context, env *Env, name string) (gamedata.Typing, error) {
	first, second, dual := strings.Cut(name, "/")
	if !dual {
		return deduceTyping(ctx, env, name)
	}
	a, err := deduceTyping(ctx, env, first)
	if err != nil {
		return gamedata.Typing{}, err
	}
	b, err := deduceTyping(ctx, env, second)
	if err != nil {
		return gamedata.Typing{}, err
	}
	return gamedata.Combine(a, b), nil
}

func deduceTyping(ctx context.Context, env *Env, name string) (gamedata.Typing, error) {
	if env.Types == nil {
		return gamedata.Typing{}, gamedata.ErrNotFound
	}
	typing, err := env.Types.DeduceType(ctx, name)
	if err != nil {
		return gamedata.Typing{}, fmt.Errorf("type %q: %w", name, err)
	}
	return typing, nil
}

// TypeHandler looks up a typing, or the effectiveness of one typing
// attacking another. Defenders written as "grass/poison" combine into a
// dual typing before the matchup is computed.
//
// Accepted shapes:
//
//	{{type:fire}}
//	{{type:fire:embed}}
//	{{type:fire:grass}}          fire attacking grass
//	{{type:fire:grass/poison}}   fire attacking a dual type
//	{{type:fire:grass:embed}}
type TypeHandler struct{}

func (TypeHandler) Aliases() []string   { return []string{"type", "typing"} }
func (TypeHandler) LowercaseArgs() bool { return true }
func (TypeHandler) TrimArgs() bool      { return true }

func (h TypeHandler) Resolve(ctx context.Context, env *Env, args []string) Outcome {
	if len(args) == 0 || env.Types == nil {
		return NoMatch()
	}

	embed := false
	if n := len(args); args[n-1] == embedArg {
		embed = true
		args = args[:n-1]
		if len(args) == 0 {
			return NoMatch()
		}
	}

	attacker, err := deduceTyping(ctx, env, args[0])
	if err != nil {
		return Failure(err)
	}

	switch len(args) {
	case 1:
		return typingOutcome(attacker, embed)
	case 2:
		defender, err := deduceDefender(ctx, env, args[1])
		if err != nil {
			return Failure(err)
		}
		multi := defender.Effectiveness(attacker)
		text := fmt.Sprintf("%s vs %s: %gx", attacker.Name, defender.Name, multi)
		if !embed {
			return Replace(text)
		}
		return ReplaceWithBlock(text, &Block{
			Title:       attacker.Name + " vs " + defender.Name,
			Description: fmt.Sprintf("%gx damage", multi),
			Color:       attacker.Color,
		})
	default:
		return NoMatch()
	}
}

func typingOutcome(typing gamedata.Typing, embed bool) Outcome {
	if !embed {
		return Replace(typing.Name)
	}
	block := &Block{
		Title: typing.Name,
		Color: typing.Color,
	}
	if typing.ZMove != "" {
		block.Fields = append(block.Fields, BlockField{Name: "Z-Move", Value: typing.ZMove, Inline: true})
	}
	if typing.MaxMove != "" {
		block.Fields = append(block.Fields, BlockField{Name: "Max Move", Value: typing.MaxMove, Inline: true})
	}
	return ReplaceWithBlock(typing.Name, block)
}

// MetronomeHandler draws a random metronome-callable move.
//
// Accepted shapes:
//
//	{{metronome}}
//	{{metronome:embed}}
type MetronomeHandler struct{}

func (MetronomeHandler) Aliases() []string   { return []string{"metronome"} }
func (MetronomeHandler) LowercaseArgs() bool { return true }
func (MetronomeHandler) TrimArgs() bool      { return true }

func (h MetronomeHandler) Resolve(ctx context.Context, env *Env, args []string) Outcome {
	if env.Metronome == nil {
		return NoMatch()
	}

	embed := false
	switch {
	case len(args) == 0:
	case len(args) == 1 && args[0] == embedArg:
		embed = true
	default:
		return NoMatch()
	}

	move, err := env.Metronome.Metronome(ctx, env.RNG)
	if err != nil {
		return Failure(fmt.Errorf("metronome: %w", err))
	}
	return moveOutcome(move, embed)
}
