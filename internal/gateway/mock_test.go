package gateway_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mohamed352/edu-sync-core/internal/domain"
	"github.com/mohamed352/edu-sync-core/internal/gateway"
	"github.com/mohamed352/edu-sync-core/internal/testutil"
)

func TestMockGateway_UploadThenFetch_RoundTrips(t *testing.T) {
	ctx := context.Background()
	g := gateway.NewMock(gateway.WithNoDelay(), gateway.WithFailurePercent(0))

	doc := domain.RemoteDoc{
		"id": "p1", "userId": "u1", "lessonId": "l1",
		"progressPercent": 42, "updatedAt": "2026-01-01T00:00:00Z",
	}
	require.NoError(t, g.UploadProgress(ctx, doc))

	docs, err := g.FetchAllProgress(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "p1", docs[0]["id"])
	require.Equal(t, 42, docs[0]["progressPercent"])
}

func TestMockGateway_UploadMerge_LeavesOtherFieldsUntouched(t *testing.T) {
	ctx := context.Background()
	g := gateway.NewMock(gateway.WithNoDelay(), gateway.WithFailurePercent(0))

	require.NoError(t, g.UploadProgress(ctx, domain.RemoteDoc{
		"id": "p1", "userId": "u1", "lessonId": "l1",
		"progressPercent": 10, "updatedAt": "2026-01-01T00:00:00Z",
	}))
	require.NoError(t, g.UploadProgress(ctx, domain.RemoteDoc{
		"id": "p1", "progressPercent": 20,
	}))

	docs, err := g.FetchAllProgress(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "u1", docs[0]["userId"], "merge must not drop fields absent from the later patch")
	require.Equal(t, 20, docs[0]["progressPercent"])
}

func TestMockGateway_SimulateRemoteConflict_WritesNowPlusOneHour(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewFakeClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	g := gateway.NewMock(gateway.WithNoDelay(), gateway.WithFailurePercent(0), gateway.WithClock(clock))

	require.NoError(t, g.SimulateRemoteConflict(ctx, "p1"))

	docs, err := g.FetchAllProgress(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, 100, docs[0]["progressPercent"])
	require.Equal(t, "2026-01-01T13:00:00Z", docs[0]["updatedAt"])
}

func TestMockGateway_SimulateRemoteConflict_CreatesDocumentIfAbsent(t *testing.T) {
	ctx := context.Background()
	g := gateway.NewMock(gateway.WithNoDelay(), gateway.WithFailurePercent(0))

	require.NoError(t, g.SimulateRemoteConflict(ctx, "never-uploaded"))

	docs, err := g.FetchAllProgress(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "never-uploaded", docs[0]["id"])
}

func TestMockGateway_DeterministicFailures_AlwaysFail(t *testing.T) {
	ctx := context.Background()
	g := gateway.NewMock(gateway.WithNoDelay(), gateway.WithDeterministicFailures(func() bool { return true }))

	err := g.UploadProgress(ctx, domain.RemoteDoc{"id": "p1"})
	require.Error(t, err)
	require.True(t, domain.IsRemoteTransientError(err))
}

func TestMockGateway_FetchUsersAndLessons_ReturnSeeded(t *testing.T) {
	ctx := context.Background()
	g := gateway.NewMock(gateway.WithNoDelay(), gateway.WithFailurePercent(0))

	g.SeedUsers(domain.RemoteDoc{"id": "u1", "displayName": "Ada"})
	g.SeedLessons(domain.RemoteDoc{"id": "l1", "title": "Intro"})

	users, err := g.FetchUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)

	lessons, err := g.FetchLessons(ctx)
	require.NoError(t, err)
	require.Len(t, lessons, 1)
}

func TestMockGateway_ContextCancellation_AbortsBeforeFailureRoll(t *testing.T) {
	g := gateway.NewMock(gateway.WithFailurePercent(0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := g.UploadProgress(ctx, domain.RemoteDoc{"id": "p1"})
	require.ErrorIs(t, err, context.Canceled)
}
