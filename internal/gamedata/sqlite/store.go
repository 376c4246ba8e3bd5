// Package sqlite provides a SQLite-backed source of game data tables.
//
// Tables are small and read-mostly, so the store loads them whole into an
// in-memory gamedata.Catalog; lookups never touch the database afterwards.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vioshim/proxyengine/internal/gamedata"
	"github.com/vioshim/proxyengine/internal/gamedata/sqlite/migrations"
	"github.com/vioshim/proxyengine/internal/platform/storage/sqlitemigrate"
	_ "modernc.org/sqlite"
)

// Store persists game data tables in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite game data store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// LoadCatalog reads every move and typing into an in-memory catalog.
func (s *Store) LoadCatalog(ctx context.Context) (*gamedata.Catalog, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	moves, err := s.loadMoves(ctx)
	if err != nil {
		return nil, err
	}
	types, err := s.loadTypes(ctx)
	if err != nil {
		return nil, err
	}
	return gamedata.NewCatalog(moves, types), nil
}

func (s *Store) loadMoves(ctx context.Context) ([]gamedata.Move, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT name, type, category, power, accuracy, pp, description, banned, metronome
		   FROM moves ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query moves: %w", err)
	}
	defer rows.Close()

	var moves []gamedata.Move
	for rows.Next() {
		var move gamedata.Move
		var category int
		var banned, metronome bool
		if err := rows.Scan(&move.Name, &move.Type, &category, &move.Power,
			&move.Accuracy, &move.PP, &move.Desc, &banned, &metronome); err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		move.Category = gamedata.Category(category)
		move.Banned = banned
		move.Metronome = metronome
		moves = append(moves, move)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moves: %w", err)
	}
	return moves, nil
}

func (s *Store) loadTypes(ctx context.Context) ([]gamedata.Typing, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, name, color, z_move, max_move FROM types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query types: %w", err)
	}
	defer rows.Close()

	byID := make(map[int]*gamedata.Typing)
	var order []int
	for rows.Next() {
		var typing gamedata.Typing
		if err := rows.Scan(&typing.ID, &typing.Name, &typing.Color, &typing.ZMove, &typing.MaxMove); err != nil {
			return nil, fmt.Errorf("scan type: %w", err)
		}
		typing.Chart = make(map[int]float64)
		byID[typing.ID] = &typing
		order = append(order, typing.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate types: %w", err)
	}

	chartRows, err := s.sqlDB.QueryContext(ctx,
		`SELECT defender_id, attacker_id, multiplier FROM type_chart`)
	if err != nil {
		return nil, fmt.Errorf("query type chart: %w", err)
	}
	defer chartRows.Close()
	for chartRows.Next() {
		var defenderID, attackerID int
		var multiplier float64
		if err := chartRows.Scan(&defenderID, &attackerID, &multiplier); err != nil {
			return nil, fmt.Errorf("scan type chart: %w", err)
		}
		if typing, ok := byID[defenderID]; ok {
			typing.Chart[attackerID] = multiplier
		}
	}
	if err := chartRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate type chart: %w", err)
	}

	types := make([]gamedata.Typing, 0, len(order))
	for _, id := range order {
		types = append(types, *byID[id])
	}
	return types, nil
}

// PutMove inserts or replaces one move record.
func (s *Store) PutMove(ctx context.Context, move gamedata.Move) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := strings.TrimSpace(move.Name)
	if name == "" {
		return fmt.Errorf("move name is required")
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT OR REPLACE INTO moves (name, type, category, power, accuracy, pp, description, banned, metronome)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		name, move.Type, int(move.Category), move.Power, move.Accuracy,
		move.PP, move.Desc, move.Banned, move.Metronome)
	if err != nil {
		return fmt.Errorf("insert move: %w", err)
	}
	return nil
}

// PutType inserts or replaces one typing record along with its chart rows.
func (s *Store) PutType(ctx context.Context, typing gamedata.Typing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := strings.TrimSpace(typing.Name)
	if name == "" {
		return fmt.Errorf("type name is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO types (id, name, color, z_move, max_move) VALUES (?, ?, ?, ?, ?)`,
		typing.ID, name, typing.Color, typing.ZMove, typing.MaxMove); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert type: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM type_chart WHERE defender_id = ?`, typing.ID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear type chart: %w", err)
	}
	for attackerID, multiplier := range typing.Chart {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO type_chart (defender_id, attacker_id, multiplier) VALUES (?, ?, ?)`,
			typing.ID, attackerID, multiplier); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert type chart row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit type: %w", err)
	}
	return nil
}
