package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mohamed352/edu-sync-core/internal/domain"
)

// GetProgressByUser returns the Progress row for (userID, lessonID), if
// any. At most one row ever exists per pair (§3 uniqueness invariant).
func (s *Store) GetProgressByUser(ctx context.Context, userID, lessonID string) (domain.Progress, bool, error) {
	p, ok, err := s.getProgressByUserTx(ctx, s.db, userID, lessonID)
	if err != nil {
		return domain.Progress{}, false, domain.NewStorageError("get progress by user", err)
	}
	return p, ok, nil
}

// queryRower is satisfied by both *sql.DB and *sql.Tx, letting read paths
// run either standalone or inside an in-flight transaction.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) getProgressByUserTx(ctx context.Context, q queryRower, userID, lessonID string) (domain.Progress, bool, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, user_id, lesson_id, percent, updated_at, status
		FROM progresses WHERE user_id = ? AND lesson_id = ?
	`, userID, lessonID)

	p, err := scanProgressRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Progress{}, false, nil
	}
	if err != nil {
		return domain.Progress{}, false, err
	}
	return p, true, nil
}

// ReplaceProgress overwrites a Progress row by id without touching the
// journal. Used by the LWW accept path (§4.5), which never journals.
func (s *Store) ReplaceProgress(ctx context.Context, p domain.Progress) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return upsertProgressTx(ctx, tx, p)
	})
	if err != nil {
		return domain.NewStorageError("replace progress", err)
	}
	return s.publishProgress(ctx)
}

func upsertProgressTx(ctx context.Context, tx *sql.Tx, p domain.Progress) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO progresses (id, user_id, lesson_id, percent, updated_at, status)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id    = excluded.user_id,
			lesson_id  = excluded.lesson_id,
			percent    = excluded.percent,
			updated_at = excluded.updated_at,
			status     = excluded.status
	`, p.ID, p.UserID, p.LessonID, domain.ClampPercent(p.Percent), formatTime(p.UpdatedAt), string(p.Status))
	return err
}

// ListProgresses returns all progress rows ordered by id.
func (s *Store) ListProgresses(ctx context.Context) ([]domain.Progress, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, lesson_id, percent, updated_at, status
		FROM progresses ORDER BY id ASC
	`)
	if err != nil {
		return nil, domain.NewStorageError("list progresses", err)
	}
	defer rows.Close()

	var out []domain.Progress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, domain.NewStorageError("scan progress", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("iterate progresses", err)
	}
	if out == nil {
		out = []domain.Progress{}
	}
	return out, nil
}

// WatchProgresses returns a channel seeded with the current progress list
// and updated on every subsequent commit to the progresses table.
func (s *Store) WatchProgresses(ctx context.Context) (<-chan []domain.Progress, error) {
	current, err := s.ListProgresses(ctx)
	if err != nil {
		return nil, err
	}
	return s.broadcast.progress.subscribe(current), nil
}

func (s *Store) publishProgress(ctx context.Context) error {
	progresses, err := s.ListProgresses(ctx)
	if err != nil {
		return err
	}
	s.broadcast.progress.publish(progresses)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgress(rows *sql.Rows) (domain.Progress, error) {
	return scanProgressInto(rows)
}

func scanProgressRow(row *sql.Row) (domain.Progress, error) {
	return scanProgressInto(row)
}

func scanProgressInto(s rowScanner) (domain.Progress, error) {
	var p domain.Progress
	var updatedAt, status string
	if err := s.Scan(&p.ID, &p.UserID, &p.LessonID, &p.Percent, &updatedAt, &status); err != nil {
		return domain.Progress{}, err
	}
	t, err := parseTime(updatedAt)
	if err != nil {
		return domain.Progress{}, err
	}
	p.UpdatedAt = t
	p.Status = domain.SyncStatus(status)
	return p, nil
}
