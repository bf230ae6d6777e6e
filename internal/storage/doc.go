// Package storage persists the household: rooms, users, chores and the
// completion history, plus the notifier's duplicate-suppression windows.
//
// Two drivers exist. "file" keeps one snapshot file (JSON or CBOR) written
// atomically, with dedup windows in a small JSON Lines journal beside it.
// "sqlite" keeps everything in a single SQLite database.
package storage
