package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/mohamed352/edu-sync-core/internal/domain"
)

// UpsertUser inserts or replaces a user row by primary key. Users are
// read-only after seeding (§3); this is the seeding path.
func (s *Store) UpsertUser(ctx context.Context, u domain.User) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, display_name, contact, updated_at, status)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				display_name = excluded.display_name,
				contact      = excluded.contact,
				updated_at   = excluded.updated_at,
				status       = excluded.status
		`, u.ID, domain.Normalize(u.DisplayName), u.Contact, formatTime(u.UpdatedAt), string(u.Status))
		return err
	})
	if err != nil {
		return domain.NewStorageError("upsert user", err)
	}
	return s.publishUsers(ctx)
}

// ListUsers returns all users ordered by id for deterministic output.
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, display_name, contact, updated_at, status FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, domain.NewStorageError("list users", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, domain.NewStorageError("scan user", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("iterate users", err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// WatchUsers returns a channel seeded with the current user list and
// updated on every subsequent commit to the users table.
func (s *Store) WatchUsers(ctx context.Context) (<-chan []domain.User, error) {
	current, err := s.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return s.broadcast.users.subscribe(current), nil
}

func (s *Store) publishUsers(ctx context.Context) error {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return err
	}
	s.broadcast.users.publish(users)
	return nil
}

func scanUser(rows *sql.Rows) (domain.User, error) {
	var u domain.User
	var updatedAt, status string
	if err := rows.Scan(&u.ID, &u.DisplayName, &u.Contact, &updatedAt, &status); err != nil {
		return domain.User{}, err
	}
	t, err := parseTime(updatedAt)
	if err != nil {
		return domain.User{}, err
	}
	u.UpdatedAt = t
	u.Status = domain.SyncStatus(status)
	return u, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
