package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// NewItem records a sheet that is about to be converted.
func (s *Store) NewItem(ctx context.Context, sheetPath, sessionID string) (*Item, error) {
	if sheetPath == "" {
		return nil, errors.New("sheet path is required")
	}
	timestamp := formatTime(time.Now())

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO conversions (
            sheet_path, status, session_id, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?)`,
		sheetPath,
		StatusPending,
		nullableString(sessionID),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert conversion: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a conversion by identifier. A missing row yields nil, nil.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM conversions WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conversion: %w", err)
	}
	return item, nil
}

// LatestForSheet returns the most recent conversion of a sheet path.
func (s *Store) LatestForSheet(ctx context.Context, sheetPath string) (*Item, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+itemColumns+` FROM conversions WHERE sheet_path = ? ORDER BY id DESC LIMIT 1`,
		sheetPath,
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest for sheet: %w", err)
	}
	return item, nil
}

// Update persists changes to an existing conversion.
func (s *Store) Update(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("item is nil")
	}
	item.UpdatedAt = time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE conversions
         SET sheet_path = ?, disc_title = ?, codec = ?, output_dir = ?, status = ?,
             error_message = ?, track_count = ?, total_bytes = ?, session_id = ?, updated_at = ?
         WHERE id = ?`,
		item.SheetPath,
		nullableString(item.DiscTitle),
		nullableString(item.Codec),
		nullableString(item.OutputDir),
		item.Status,
		nullableString(item.ErrorMessage),
		item.TrackCount,
		item.TotalBytes,
		nullableString(item.SessionID),
		formatTime(item.UpdatedAt),
		item.ID,
	); err != nil {
		return fmt.Errorf("update conversion: %w", err)
	}
	return nil
}

// SetStatus moves a conversion to status, replacing its error message.
func (s *Store) SetStatus(ctx context.Context, id int64, status Status, message string) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE conversions SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		status,
		nullableString(message),
		formatTime(time.Now()),
		id,
	)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("set status: conversion %d not found", id)
	}
	return nil
}

// List returns conversions filtered by status set (or all conversions when
// no status is provided), oldest first.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + itemColumns + ` FROM conversions`
	orderClause := ` ORDER BY created_at, id`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		query := baseQuery + ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, statusArgs(statuses)...)
	}
	if err != nil {
		return nil, fmt.Errorf("list conversions: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ResetStuckConverting fails conversions left in flight by a previous process.
func (s *Store) ResetStuckConverting(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE conversions
         SET status = ?, error_message = ?, updated_at = ?
         WHERE status IN (?, ?)`,
		StatusFailed,
		InterruptedReason,
		formatTime(time.Now()),
		StatusPending,
		StatusConverting,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck conversions: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns a count of conversions grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM conversions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("history stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Remove deletes a conversion and its track results.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM conversions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete conversion: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if err := s.pruneOrphanTracks(ctx); err != nil {
		return affected > 0, err
	}
	return affected > 0, nil
}

// Clear removes conversions with any of the given statuses, or every
// conversion when none are given.
func (s *Store) Clear(ctx context.Context, statuses ...Status) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if len(statuses) == 0 {
		res, err = s.execWithRetry(ctx, `DELETE FROM conversions`)
	} else {
		res, err = s.execWithRetry(
			ctx,
			`DELETE FROM conversions WHERE status IN (`+makePlaceholders(len(statuses))+`)`,
			statusArgs(statuses)...,
		)
	}
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, s.pruneOrphanTracks(ctx)
}
