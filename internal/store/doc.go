// Package store provides SQLite-backed durable storage for the four
// relations this core owns: users, lessons, progresses, and the
// journal_entries sync queue.
//
// # Durability
//
// WAL mode, synchronous=NORMAL, a 5-second busy timeout, and foreign-key
// enforcement — the same pragma set the teacher applies. A single open
// connection (SetMaxOpenConns(1)) makes SQLite's single-writer
// constraint explicit rather than surfacing as SQLITE_BUSY under load.
//
// # Atomicity
//
// UpsertProgressAndJournal is the one place this package commits two
// tables in a single transaction: a Progress upsert and a JournalEntry
// insert always commit together or not at all (§3, §8 property 1).
//
// # Change notification
//
// WatchUsers, WatchLessons, WatchProgresses, and WatchPendingJournal each
// return a channel seeded with the current table contents at subscribe
// time and fed on every subsequent commit that touches that table. Slow
// subscribers coalesce: the channel is buffered to depth 1 and a pending
// send is replaced rather than queued, so a subscriber that falls behind
// sees only the latest snapshot, never a backlog.
package store
