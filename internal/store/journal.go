package store

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/mohamed352/edu-sync-core/internal/domain"
)

// UpsertProgressAndJournal commits a Progress upsert and a JournalEntry
// insert atomically: the mutation journal's core rule (§3, §4.2, §8
// property 1). Returns the journal entry's assigned id.
//
// Modeled on the teacher's WriteSyncFiringAtomic: one transaction, begin
// → write both rows → commit, with a deferred rollback as the safety net
// for any early return.
func (s *Store) UpsertProgressAndJournal(ctx context.Context, p domain.Progress, entry domain.JournalEntry) (int64, error) {
	var journalID int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := upsertProgressTx(ctx, tx, p); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO journal_entries (op, entity_id, payload, retry_count, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, string(entry.Op), entry.EntityID, entry.Payload, entry.RetryCount, formatTime(entry.CreatedAt))
		if err != nil {
			return err
		}

		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		journalID = id
		return nil
	})
	if err != nil {
		return 0, domain.NewStorageError("upsert progress and journal", err)
	}

	if err := s.publishProgress(ctx); err != nil {
		return journalID, err
	}
	if err := s.publishJournal(ctx); err != nil {
		return journalID, err
	}
	return journalID, nil
}

// ListPendingJournal returns journal entries with retry_count < maxRetry,
// ordered by insertion id ascending — the queue scan §4.1 defines.
func (s *Store) ListPendingJournal(ctx context.Context, maxRetry int) ([]domain.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, op, entity_id, payload, retry_count, created_at
		FROM journal_entries
		WHERE retry_count < ?
		ORDER BY id ASC
	`, maxRetry)
	if err != nil {
		return nil, domain.NewStorageError("list pending journal", err)
	}
	defer rows.Close()
	return scanJournalRows(rows)
}

// ListAllJournal returns every journal entry regardless of retry count,
// for the unfiltered "pending sync items" view. §9's open question notes
// the source's watch stream is unfiltered while the processing scan is
// filtered by retry cap; this core keeps both views available and lets
// callers pick.
func (s *Store) ListAllJournal(ctx context.Context) ([]domain.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, op, entity_id, payload, retry_count, created_at
		FROM journal_entries
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, domain.NewStorageError("list all journal", err)
	}
	defer rows.Close()
	return scanJournalRows(rows)
}

// WatchPendingJournal returns a channel seeded with the current
// unfiltered journal contents, updated on every subsequent commit that
// touches journal_entries.
func (s *Store) WatchPendingJournal(ctx context.Context) (<-chan []domain.JournalEntry, error) {
	current, err := s.ListAllJournal(ctx)
	if err != nil {
		return nil, err
	}
	return s.broadcast.journal.subscribe(current), nil
}

func (s *Store) publishJournal(ctx context.Context) error {
	entries, err := s.ListAllJournal(ctx)
	if err != nil {
		return err
	}
	s.broadcast.journal.publish(entries)
	return nil
}

// MarkProgressSynced sets status=synced on the progress row with the
// given id. A no-match is a warning, not an error (§4.2).
func (s *Store) MarkProgressSynced(ctx context.Context, progressID string) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE progresses SET status = ? WHERE id = ?`, string(domain.StatusSynced), progressID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			slog.Warn("mark progress synced: no matching row", "progress_id", progressID)
		}
		return nil
	})
	if err != nil {
		return domain.NewStorageError("mark progress synced", err)
	}
	return s.publishProgress(ctx)
}

// DeleteJournalEntry removes a journal entry by id.
func (s *Store) DeleteJournalEntry(ctx context.Context, id int64) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM journal_entries WHERE id = ?`, id)
		return err
	})
	if err != nil {
		return domain.NewStorageError("delete journal entry", err)
	}
	return s.publishJournal(ctx)
}

// IncrementRetryCount writes currentCount+1 for the journal entry, guarded
// by a compare-and-swap on the observed currentCount so spurious retries
// of this call are idempotent (§4.2).
func (s *Store) IncrementRetryCount(ctx context.Context, id int64, currentCount int) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE journal_entries SET retry_count = ? WHERE id = ? AND retry_count = ?
		`, currentCount+1, id, currentCount)
		return err
	})
	if err != nil {
		return domain.NewStorageError("increment retry count", err)
	}
	return s.publishJournal(ctx)
}

func scanJournalRows(rows *sql.Rows) ([]domain.JournalEntry, error) {
	var out []domain.JournalEntry
	for rows.Next() {
		e, err := scanJournal(rows)
		if err != nil {
			return nil, domain.NewStorageError("scan journal entry", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("iterate journal entries", err)
	}
	if out == nil {
		out = []domain.JournalEntry{}
	}
	return out, nil
}

func scanJournal(rows *sql.Rows) (domain.JournalEntry, error) {
	var e domain.JournalEntry
	var op, createdAt string
	if err := rows.Scan(&e.ID, &op, &e.EntityID, &e.Payload, &e.RetryCount, &createdAt); err != nil {
		return domain.JournalEntry{}, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return domain.JournalEntry{}, err
	}
	e.Op = domain.OpTag(op)
	e.CreatedAt = t
	return e, nil
}
