package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mohamed352/edu-sync-core/internal/domain"
	"github.com/mohamed352/edu-sync-core/internal/engine"
	"github.com/mohamed352/edu-sync-core/internal/gateway"
	"github.com/mohamed352/edu-sync-core/internal/repository"
	"github.com/mohamed352/edu-sync-core/internal/store"
	"github.com/mohamed352/edu-sync-core/internal/testutil"
)

func newHarness(t *testing.T, opts ...engine.Option) (*engine.Engine, *repository.Repository, *store.Store, *gateway.MockGateway, *testutil.FakeClock) {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	clock := testutil.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ids := testutil.NewFixedUUIDs("p1", "p2", "p3", "p4")
	repo := repository.New(s, repository.WithClock(clock), repository.WithIDGenerator(ids))
	gw := gateway.NewMock(gateway.WithNoDelay(), gateway.WithFailurePercent(0), gateway.WithClock(clock))

	e := engine.New(repo, gw, opts...)
	return e, repo, s, gw, clock
}

func TestPerformFullSync_OfflineGate_NoGatewayCalls(t *testing.T) {
	ctx := context.Background()
	e, repo, _, gw, _ := newHarness(t)

	require.NoError(t, repo.UpdateProgress(ctx, "u1", "l1", 10))
	e.TriggerSync(ctx)

	docs, err := gw.FetchAllProgress(ctx)
	require.NoError(t, err)
	require.Empty(t, docs)
	require.Equal(t, engine.StatusIdle, e.Status())
}

func TestSetConnectivity_OfflineToOnline_TriggersOneCycle(t *testing.T) {
	ctx := context.Background()
	e, repo, _, gw, _ := newHarness(t)

	require.NoError(t, repo.UpdateProgress(ctx, "u1", "l1", 10))

	e.SetConnectivity(ctx, true)

	docs, err := gw.FetchAllProgress(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	p, ok, err := repo.GetProgressByUser(ctx, "u1", "l1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.StatusSynced, p.Status)

	journal, err := repo.ListPendingJournal(ctx, domain.MaxRetry)
	require.NoError(t, err)
	require.Empty(t, journal)

	require.Equal(t, engine.StatusIdle, e.Status())
}

func TestSetConnectivity_OnlineToOffline_DoesNotTriggerCycle(t *testing.T) {
	ctx := context.Background()
	e, _, _, _, _ := newHarness(t)

	e.SetConnectivity(ctx, true)
	require.Equal(t, engine.StatusIdle, e.Status())

	e.SetConnectivity(ctx, false)
	require.Equal(t, engine.Offline, e.Connectivity())
	require.Equal(t, engine.StatusIdle, e.Status(), "offline transition must not flip status")
}

func TestPerformFullSync_RetryCap_EntryExcludedAfterMaxRetries(t *testing.T) {
	ctx := context.Background()

	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	clock := testutil.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	repo := repository.New(s, repository.WithClock(clock), repository.WithIDGenerator(testutil.NewFixedUUIDs("p1")))
	failingGW := gateway.NewMock(gateway.WithNoDelay(), gateway.WithDeterministicFailures(func() bool { return true }))
	e := engine.New(repo, failingGW, engine.WithMaxRetry(2))

	require.NoError(t, repo.UpdateProgress(ctx, "u1", "l1", 10))
	e.SetConnectivity(ctx, true)

	for i := 0; i < 3; i++ {
		e.TriggerSync(ctx)
	}

	journal, err := repo.ListPendingJournal(ctx, 2)
	require.NoError(t, err)
	require.Empty(t, journal, "entry must be excluded from processing once retryCount reaches the cap")

	all, err := s.ListAllJournal(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1, "shelved entry remains in the store")
	require.Equal(t, 2, all[0].RetryCount)
}

func TestPerformFullSync_ConflictThenDownload_RemoteWins(t *testing.T) {
	ctx := context.Background()
	e, repo, s, gw, clock := newHarness(t)

	require.NoError(t, s.ReplaceProgress(ctx, domain.Progress{
		ID: "p1", UserID: "u1", LessonID: "l1",
		Percent: 10, UpdatedAt: clock.Now(), Status: domain.StatusSynced,
	}))
	// A synced row is already on the remote; the conflict patches that document.
	gw.SeedProgress(domain.RemoteDoc{
		"id": "p1", "userId": "u1", "lessonId": "l1",
		"progressPercent": 10, "updatedAt": clock.Now().Format(time.RFC3339Nano),
	})

	e.QueueConflictSimulation("p1")
	e.SetConnectivity(ctx, true)

	p, ok, err := repo.GetProgressByUser(ctx, "u1", "l1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 100, p.Percent)
	require.Equal(t, clock.Now().Add(time.Hour), p.UpdatedAt)

	docs, err := gw.FetchAllProgress(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
}

func TestTriggerSync_AfterCompletedCycle_EndsIdle(t *testing.T) {
	ctx := context.Background()
	e, _, _, _, _ := newHarness(t)

	e.SetConnectivity(ctx, true)
	e.TriggerSync(ctx)
	require.Equal(t, engine.StatusIdle, e.Status())
}

func TestWatchStatus_PublishesSyncingThenIdle(t *testing.T) {
	ctx := context.Background()
	e, repo, _, _, _ := newHarness(t)
	require.NoError(t, repo.UpdateProgress(ctx, "u1", "l1", 5))

	ch := e.WatchStatus()
	require.Equal(t, engine.StatusIdle, <-ch)

	e.SetConnectivity(ctx, true)

	seen := []engine.Status{<-ch, <-ch}
	require.Equal(t, []engine.Status{engine.StatusSyncing, engine.StatusIdle}, seen)
}
