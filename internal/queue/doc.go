// Package queue persists conversion history in SQLite.
//
// Every sheet handed to the encoder becomes an Item that moves from pending
// through converting to one of the terminal statuses. Completed items carry a
// TrackResult per track with the byte range that was read and the checksums of
// the payload, so a later run can tell whether an image changed on disk.
//
// The database is a local convenience rather than an archive. Schema changes
// bump the version in schema.go; users clear the history to adopt them.
package queue
