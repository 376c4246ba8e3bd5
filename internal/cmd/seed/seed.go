// Package seed loads move and typing tables into the game data store.
package seed

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	entrypoint "github.com/vioshim/proxyengine/internal/platform/cmd"

	"github.com/vioshim/proxyengine/internal/gamedata"
	gamedatasqlite "github.com/vioshim/proxyengine/internal/gamedata/sqlite"
)

// Config holds seed command configuration.
type Config struct {
	DBPath    string `env:"PROXYENGINE_GAME_DATA_PATH" envDefault:"gamedata.db"`
	MovesPath string
	TypesPath string
	Verbose   bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "game data sqlite path")
	fs.StringVar(&cfg.MovesPath, "moves", "", "moves JSON file")
	fs.StringVar(&cfg.TypesPath, "types", "", "typings JSON file")
	fs.BoolVar(&cfg.Verbose, "v", false, "verbose output")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type moveRecord struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Category  string `json:"category"`
	Power     int    `json:"power"`
	Accuracy  int    `json:"accuracy"`
	PP        int    `json:"pp"`
	Desc      string `json:"desc,omitempty"`
	Banned    bool   `json:"banned,omitempty"`
	Metronome bool   `json:"metronome,omitempty"`
}

type typingRecord struct {
	ID      int                `json:"id"`
	Name    string             `json:"name"`
	Color   int                `json:"color,omitempty"`
	ZMove   string             `json:"z_move,omitempty"`
	MaxMove string             `json:"max_move,omitempty"`
	Chart   map[string]float64 `json:"chart,omitempty"`
}

// Run loads the configured JSON tables into the game data store.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if cfg.MovesPath == "" && cfg.TypesPath == "" {
		return fmt.Errorf("at least one of -moves or -types is required")
	}

	store, err := gamedatasqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open game data store: %w", err)
	}
	defer func() { _ = store.Close() }()

	if cfg.TypesPath != "" {
		count, err := seedTypes(ctx, store, cfg.TypesPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "seeded %d typings\n", count)
	}
	if cfg.MovesPath != "" {
		count, err := seedMoves(ctx, store, cfg.MovesPath, cfg.Verbose, out)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "seeded %d moves\n", count)
	}
	return nil
}

func seedTypes(ctx context.Context, store *gamedatasqlite.Store, path string) (int, error) {
	var records []typingRecord
	if err := readJSON(path, &records); err != nil {
		return 0, err
	}

	for _, record := range records {
		typing := gamedata.Typing{
			ID:      record.ID,
			Name:    record.Name,
			Color:   record.Color,
			ZMove:   record.ZMove,
			MaxMove: record.MaxMove,
		}
		if len(record.Chart) > 0 {
			typing.Chart = make(map[int]float64, len(record.Chart))
			for key, multi := range record.Chart {
				attackerID, err := strconv.Atoi(key)
				if err != nil {
					return 0, fmt.Errorf("typing %q: bad chart key %q", record.Name, key)
				}
				typing.Chart[attackerID] = multi
			}
		}
		if err := store.PutType(ctx, typing); err != nil {
			return 0, fmt.Errorf("put typing %q: %w", record.Name, err)
		}
	}
	return len(records), nil
}

func seedMoves(ctx context.Context, store *gamedatasqlite.Store, path string, verbose bool, out io.Writer) (int, error) {
	var records []moveRecord
	if err := readJSON(path, &records); err != nil {
		return 0, err
	}

	for _, record := range records {
		category, err := parseCategory(record.Category)
		if err != nil {
			return 0, fmt.Errorf("move %q: %w", record.Name, err)
		}
		move := gamedata.Move{
			Name:      record.Name,
			Type:      record.Type,
			Category:  category,
			Power:     record.Power,
			Accuracy:  record.Accuracy,
			PP:        record.PP,
			Desc:      record.Desc,
			Banned:    record.Banned,
			Metronome: record.Metronome,
		}
		if err := store.PutMove(ctx, move); err != nil {
			return 0, fmt.Errorf("put move %q: %w", record.Name, err)
		}
		if verbose {
			fmt.Fprintf(out, "  %s (%s)\n", move.Name, move.Type)
		}
	}
	return len(records), nil
}

func parseCategory(raw string) (gamedata.Category, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "status":
		return gamedata.CategoryStatus, nil
	case "physical":
		return gamedata.CategoryPhysical, nil
	case "special":
		return gamedata.CategorySpecial, nil
	default:
		return 0, fmt.Errorf("unknown category %q", raw)
	}
}

func readJSON(path string, target any) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
