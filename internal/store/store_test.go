package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mohamed352/edu-sync-core/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_IsIdempotentAndUsable(t *testing.T) {
	s := newTestStore(t)
	users, err := s.ListUsers(context.Background())
	require.NoError(t, err)
	require.Empty(t, users)
}

func TestUpsertUser_SeedsAndUpdates(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	u := domain.User{ID: "u1", DisplayName: "Ada", Contact: "ada@example.com", UpdatedAt: now, Status: domain.StatusSynced}
	require.NoError(t, s.UpsertUser(ctx, u))

	got, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Ada", got[0].DisplayName)

	u.DisplayName = "Ada Lovelace"
	require.NoError(t, s.UpsertUser(ctx, u))

	got, err = s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Ada Lovelace", got[0].DisplayName)
}

func TestUpsertLesson_SeedsAndUpdates(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := domain.Lesson{ID: "l1", Title: "Intro", Description: "Basics", DurationMinutes: 10, UpdatedAt: now, Status: domain.StatusSynced}
	require.NoError(t, s.UpsertLesson(ctx, l))

	got, err := s.ListLessons(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, 10, got[0].DurationMinutes)
}
