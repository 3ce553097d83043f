package queue

import (
	"database/sql"
	"errors"
	"time"
)

const itemColumns = "id, sheet_path, disc_title, codec, output_dir, status, error_message, track_count, total_bytes, session_id, created_at, updated_at"

const trackColumns = "conversion_id, number, name, audio, byte_start, byte_size, crc32, sha1, output_path"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id           int64
		sheetPath    string
		discTitle    sql.NullString
		codec        sql.NullString
		outputDir    sql.NullString
		statusStr    string
		errorMessage sql.NullString
		trackCount   int
		totalBytes   int64
		sessionID    sql.NullString
		createdRaw   string
		updatedRaw   string
	)

	if err := scanner.Scan(
		&id,
		&sheetPath,
		&discTitle,
		&codec,
		&outputDir,
		&statusStr,
		&errorMessage,
		&trackCount,
		&totalBytes,
		&sessionID,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:           id,
		SheetPath:    sheetPath,
		DiscTitle:    discTitle.String,
		Codec:        codec.String,
		OutputDir:    outputDir.String,
		Status:       Status(statusStr),
		ErrorMessage: errorMessage.String,
		TrackCount:   trackCount,
		TotalBytes:   totalBytes,
		SessionID:    sessionID.String,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}

func scanTrack(scanner interface{ Scan(dest ...any) error }) (TrackResult, error) {
	var (
		track      TrackResult
		audio      int
		crc        int64
		outputPath sql.NullString
	)
	if err := scanner.Scan(
		&track.ItemID,
		&track.Number,
		&track.Name,
		&audio,
		&track.ByteStart,
		&track.ByteSize,
		&crc,
		&track.SHA1,
		&outputPath,
	); err != nil {
		return TrackResult{}, err
	}
	track.Audio = audio != 0
	track.CRC32 = uint32(crc)
	track.OutputPath = outputPath.String
	return track, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func formatTime(value time.Time) string {
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}

func statusArgs(statuses []Status) []any {
	args := make([]any, len(statuses))
	for i, status := range statuses {
		args[i] = status
	}
	return args
}
