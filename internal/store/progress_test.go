package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mohamed352/edu-sync-core/internal/domain"
)

func TestGetProgressByUser_NoMatch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, ok, err := s.GetProgressByUser(ctx, "u1", "l1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestReplaceProgress_DoesNotTouchJournal(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now()

	p := domain.Progress{ID: "p1", UserID: "u1", LessonID: "l1", Percent: 80, UpdatedAt: now, Status: domain.StatusSynced}
	require.NoError(t, s.ReplaceProgress(ctx, p))

	got, ok, err := s.GetProgressByUser(ctx, "u1", "l1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 80, got.Percent)

	journal, err := s.ListAllJournal(ctx)
	require.NoError(t, err)
	require.Empty(t, journal)
}

func TestWatchProgresses_SeedsThenUpdates(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	ch, err := s.WatchProgresses(ctx)
	require.NoError(t, err)

	select {
	case initial := <-ch:
		require.Empty(t, initial)
	default:
		t.Fatal("expected seeded snapshot on subscribe")
	}

	p := domain.Progress{ID: "p1", UserID: "u1", LessonID: "l1", Percent: 50, UpdatedAt: time.Now(), Status: domain.StatusSynced}
	require.NoError(t, s.ReplaceProgress(ctx, p))

	select {
	case updated := <-ch:
		require.Len(t, updated, 1)
		require.Equal(t, 50, updated[0].Percent)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for update")
	}
}
