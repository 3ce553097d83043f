package queue

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
)

//go:embed schema.sql
var schemaSQL string

// historyVersion is stored in PRAGMA user_version. A history database from
// another version is not migrated; `cbae history clear --all` replaces it.
const historyVersion = 2

// historyTables must all exist in a usable history database.
var historyTables = []string{"conversions", "conversion_tracks"}

// ErrSchemaMismatch reports a database that is not a history database of
// this version.
var ErrSchemaMismatch = errors.New("history schema mismatch")

func (s *Store) initSchema(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read history version: %w", err)
	}
	present, err := s.tableNames(ctx)
	if err != nil {
		return err
	}

	if version == 0 && len(present) == 0 {
		return s.createSchema(ctx)
	}
	if version != historyVersion {
		return s.mismatch(fmt.Sprintf("database has version %d, expected %d", version, historyVersion))
	}
	var missing []string
	for _, table := range historyTables {
		if _, ok := present[table]; !ok {
			missing = append(missing, table)
		}
	}
	if len(missing) > 0 {
		return s.mismatch("missing tables " + strings.Join(missing, ", "))
	}
	return nil
}

func (s *Store) mismatch(detail string) error {
	return fmt.Errorf("%w: %s: %s (run 'cbae history clear --all' to start a new history)",
		ErrSchemaMismatch, s.path, detail)
}

func (s *Store) tableNames(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'")
	if err != nil {
		return nil, fmt.Errorf("list history tables: %w", err)
	}
	defer rows.Close()

	names := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan history table: %w", err)
		}
		names[name] = struct{}{}
	}
	return names, rows.Err()
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history schema: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create history tables: %w", err)
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", historyVersion)); err != nil {
		return fmt.Errorf("record history version: %w", err)
	}
	return tx.Commit()
}
