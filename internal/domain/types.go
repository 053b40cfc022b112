package domain

import "time"

// SyncStatus tags the reconciliation state of a locally-held record.
type SyncStatus string

const (
	StatusSynced  SyncStatus = "synced"
	StatusPending SyncStatus = "pending"
	StatusFailed  SyncStatus = "failed"
)

// OpTag identifies the kind of mutation a JournalEntry records.
type OpTag string

const (
	OpCreateProgress OpTag = "createProgress"
	OpUpdateProgress OpTag = "updateProgress"
)

// User is read-only after seeding in this core.
type User struct {
	ID          string
	DisplayName string
	Contact     string
	UpdatedAt   time.Time
	Status      SyncStatus
}

// Lesson is read-only after seeding in this core.
type Lesson struct {
	ID              string
	Title           string
	Description     string
	DurationMinutes int
	UpdatedAt       time.Time
	Status          SyncStatus
}

// Progress is the only entity this core mutates locally. At most one row
// exists per (UserID, LessonID) pair; ID is allocated once and never
// changes thereafter (see the resolver's identity preservation rule).
// Percent is kept in [0, 100] by ClampPercent.
type Progress struct {
	ID        string
	UserID    string
	LessonID  string
	Percent   int
	UpdatedAt time.Time
	Status    SyncStatus
}

// JournalEntry is a durable outbound-queue row. Insertion order (ID) is
// processing order. Entries are never mutated except to bump RetryCount
// or to be deleted after a successful upload.
type JournalEntry struct {
	ID         int64
	Op         OpTag
	EntityID   string
	Payload    string
	RetryCount int
	CreatedAt  time.Time
}

// ClampPercent saturates a raw percent value to [0, 100].
func ClampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
