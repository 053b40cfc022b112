package store

import (
	"context"
	"database/sql"

	"github.com/mohamed352/edu-sync-core/internal/domain"
)

// UpsertLesson inserts or replaces a lesson row by primary key. Lessons
// are read-only after seeding (§3); this is the seeding path.
func (s *Store) UpsertLesson(ctx context.Context, l domain.Lesson) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO lessons (id, title, description, duration_minutes, updated_at, status)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				title             = excluded.title,
				description       = excluded.description,
				duration_minutes  = excluded.duration_minutes,
				updated_at        = excluded.updated_at,
				status            = excluded.status
		`, l.ID, domain.Normalize(l.Title), l.Description, l.DurationMinutes, formatTime(l.UpdatedAt), string(l.Status))
		return err
	})
	if err != nil {
		return domain.NewStorageError("upsert lesson", err)
	}
	return s.publishLessons(ctx)
}

// ListLessons returns all lessons ordered by id for deterministic output.
func (s *Store) ListLessons(ctx context.Context) ([]domain.Lesson, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, duration_minutes, updated_at, status
		FROM lessons ORDER BY id ASC
	`)
	if err != nil {
		return nil, domain.NewStorageError("list lessons", err)
	}
	defer rows.Close()

	var lessons []domain.Lesson
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, domain.NewStorageError("scan lesson", err)
		}
		lessons = append(lessons, l)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("iterate lessons", err)
	}
	if lessons == nil {
		lessons = []domain.Lesson{}
	}
	return lessons, nil
}

// WatchLessons returns a channel seeded with the current lesson list and
// updated on every subsequent commit to the lessons table.
func (s *Store) WatchLessons(ctx context.Context) (<-chan []domain.Lesson, error) {
	current, err := s.ListLessons(ctx)
	if err != nil {
		return nil, err
	}
	return s.broadcast.lessons.subscribe(current), nil
}

func (s *Store) publishLessons(ctx context.Context) error {
	lessons, err := s.ListLessons(ctx)
	if err != nil {
		return err
	}
	s.broadcast.lessons.publish(lessons)
	return nil
}

func scanLesson(rows *sql.Rows) (domain.Lesson, error) {
	var l domain.Lesson
	var updatedAt, status string
	if err := rows.Scan(&l.ID, &l.Title, &l.Description, &l.DurationMinutes, &updatedAt, &status); err != nil {
		return domain.Lesson{}, err
	}
	t, err := parseTime(updatedAt)
	if err != nil {
		return domain.Lesson{}, err
	}
	l.UpdatedAt = t
	l.Status = domain.SyncStatus(status)
	return l, nil
}
