// Package gamedata defines the move and typing records consulted by macro
// handlers, and the deduction contracts their lookups go through.
//
// The engine never embeds the game tables themselves; implementations load
// them from storage (see the sqlite subpackage) or are constructed in
// memory for tests.
package gamedata

import (
	"context"
	"math/rand"
	"sort"
	"strings"

	apperrors "github.com/vioshim/proxyengine/internal/platform/errors"
)

// ErrNotFound indicates no entity matched a deduction query.
var ErrNotFound = apperrors.New(apperrors.CodeGameDataNotFound, "game data entity not found")

// ErrEmptyPool indicates a metronome draw against an empty move pool.
var ErrEmptyPool = apperrors.New(apperrors.CodeGameDataEmptyPool, "metronome pool is empty")

// Category is a move's damage category.
type Category int

const (
	// CategoryStatus marks non-damaging moves.
	CategoryStatus Category = iota
	// CategoryPhysical marks physical moves.
	CategoryPhysical
	// CategorySpecial marks special moves.
	CategorySpecial
)

func (c Category) String() string {
	switch c {
	case CategoryStatus:
		return "Status"
	case CategoryPhysical:
		return "Physical"
	case CategorySpecial:
		return "Special"
	default:
		return "Unknown"
	}
}

// Move is a game move record.
type Move struct {
	Name     string
	Type     string
	Category Category
	Power    int
	Accuracy int
	PP       int
	Desc     string

	// Banned moves never appear in metronome draws.
	Banned bool
	// Metronome marks moves callable by metronome.
	Metronome bool
}

// Typing is a game type record with its matchup chart.
type Typing struct {
	ID    int
	Name  string
	Color int

	ZMove   string
	MaxMove string

	// Chart maps attacking type IDs to damage multipliers. Absent entries
	// mean a neutral 1x matchup.
	Chart map[int]float64
}

// Effectiveness returns the damage multiplier for an attack of the given
// type against this typing.
func (t Typing) Effectiveness(attacker Typing) float64 {
	if multi, ok := t.Chart[attacker.ID]; ok {
		return multi
	}
	return 1.0
}

// Combine merges two typings into a dual typing whose chart is the product
// of both charts, dropping neutral 1x entries.
func Combine(a, b Typing) Typing {
	if a.ID == b.ID {
		return a
	}
	chart := make(map[int]float64)
	ids := make(map[int]struct{})
	for id := range a.Chart {
		ids[id] = struct{}{}
	}
	for id := range b.Chart {
		ids[id] = struct{}{}
	}
	for id := range ids {
		multi := chartValue(a.Chart, id) * chartValue(b.Chart, id)
		if multi != 1.0 {
			chart[id] = multi
		}
	}
	return Typing{
		Name:  a.Name + "/" + b.Name,
		Chart: chart,
	}
}

func chartValue(chart map[int]float64, id int) float64 {
	if multi, ok := chart[id]; ok {
		return multi
	}
	return 1.0
}

// powerBracket maps base-power thresholds to converted powers. Lookup picks
// the smallest threshold at or above the base power.
type powerBracket []struct{ threshold, power int }

var zMoveBracket = powerBracket{
	{0, 0}, {55, 100}, {65, 120}, {75, 140}, {85, 160}, {95, 175},
	{100, 190}, {110, 195}, {125, 190}, {130, 195}, {140, 200}, {250, 200},
}

var maxMoveBracket = powerBracket{
	{0, 0}, {40, 90}, {50, 100}, {60, 110}, {70, 120},
	{100, 130}, {140, 140}, {250, 150},
}

// Fighting and Poison max moves use a weaker bracket.
var maxMoveWeakBracket = powerBracket{
	{0, 0}, {40, 70}, {50, 75}, {60, 80}, {70, 85},
	{100, 90}, {140, 95}, {250, 100},
}

func (b powerBracket) lookup(base int) int {
	for _, entry := range b {
		if base <= entry.threshold {
			return entry.power
		}
	}
	return b[len(b)-1].power
}

// ZMovePower converts a move's base power to its Z-Move power.
func ZMovePower(base int) int {
	return zMoveBracket.lookup(base)
}

// MaxMovePower converts a move's base power to its Max-Move power. The
// weaker bracket applies to Fighting and Poison moves.
func MaxMovePower(base int, moveType string) int {
	switch strings.ToLower(moveType) {
	case "fighting", "poison":
		return maxMoveWeakBracket.lookup(base)
	default:
		return maxMoveBracket.lookup(base)
	}
}

// MoveDeducer resolves a fuzzy, case-insensitive move name.
type MoveDeducer interface {
	DeduceMove(ctx context.Context, name string) (Move, error)
}

// TypeDeducer resolves a fuzzy, case-insensitive type name.
type TypeDeducer interface {
	DeduceType(ctx context.Context, name string) (Typing, error)
}

// MetronomeSource draws a random callable move.
type MetronomeSource interface {
	Metronome(ctx context.Context, rng *rand.Rand) (Move, error)
}

// Catalog is an in-memory MoveDeducer, TypeDeducer, and MetronomeSource.
type Catalog struct {
	moves []Move
	types []Typing
	pool  []Move
}

// NewCatalog builds a catalog over the provided tables. The metronome pool
// holds every unbanned move flagged as metronome-callable.
func NewCatalog(moves []Move, types []Typing) *Catalog {
	c := &Catalog{
		moves: append([]Move(nil), moves...),
		types: append([]Typing(nil), types...),
	}
	sort.SliceStable(c.moves, func(i, j int) bool { return c.moves[i].Name < c.moves[j].Name })
	for _, move := range c.moves {
		if move.Metronome && !move.Banned {
			c.pool = append(c.pool, move)
		}
	}
	return c
}

// DeduceMove resolves a move by fuzzy name match.
func (c *Catalog) DeduceMove(_ context.Context, name string) (Move, error) {
	idx := deduceIndex(name, len(c.moves), func(i int) string { return c.moves[i].Name })
	if idx < 0 {
		return Move{}, ErrNotFound
	}
	return c.moves[idx], nil
}

// DeduceType resolves a typing by fuzzy name match.
func (c *Catalog) DeduceType(_ context.Context, name string) (Typing, error) {
	idx := deduceIndex(name, len(c.types), func(i int) string { return c.types[i].Name })
	if idx < 0 {
		return Typing{}, ErrNotFound
	}
	return c.types[idx], nil
}

// Metronome draws a uniformly random move from the metronome pool.
func (c *Catalog) Metronome(_ context.Context, rng *rand.Rand) (Move, error) {
	if len(c.pool) == 0 {
		return Move{}, ErrEmptyPool
	}
	return c.pool[rng.Intn(len(c.pool))], nil
}
