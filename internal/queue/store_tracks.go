package queue

import (
	"context"
	"fmt"
)

// RecordTracks replaces the track results stored for a conversion.
func (s *Store) RecordTracks(ctx context.Context, itemID int64, tracks []TrackResult) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tracks tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM conversion_tracks WHERE conversion_id = ?`, itemID); err != nil {
			return fmt.Errorf("clear tracks: %w", err)
		}
		for _, track := range tracks {
			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO conversion_tracks (`+trackColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				itemID,
				track.Number,
				track.Name,
				boolToInt(track.Audio),
				track.ByteStart,
				track.ByteSize,
				int64(track.CRC32),
				track.SHA1,
				nullableString(track.OutputPath),
			); err != nil {
				return fmt.Errorf("insert track %d: %w", track.Number, err)
			}
		}
		return tx.Commit()
	})
}

// Tracks returns the track results of a conversion ordered by track number.
func (s *Store) Tracks(ctx context.Context, itemID int64) ([]TrackResult, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+trackColumns+` FROM conversion_tracks WHERE conversion_id = ? ORDER BY number`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []TrackResult
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}

// pruneOrphanTracks drops track rows whose conversion is gone. The
// foreign_keys pragma only reaches the connection that ran it.
func (s *Store) pruneOrphanTracks(ctx context.Context) error {
	if err := s.execWithoutResultRetry(
		ctx,
		`DELETE FROM conversion_tracks WHERE conversion_id NOT IN (SELECT id FROM conversions)`,
	); err != nil {
		return fmt.Errorf("prune tracks: %w", err)
	}
	return nil
}
