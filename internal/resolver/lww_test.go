package resolver_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mohamed352/edu-sync-core/internal/domain"
	"github.com/mohamed352/edu-sync-core/internal/resolver"
)

func TestDecide_NoLocalRow_InsertsNew(t *testing.T) {
	remote := domain.RemoteProgress{
		ID: "p-remote", UserID: "u1", LessonID: "l1",
		Percent: 40, UpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	d := resolver.Decide(nil, remote)

	require.Equal(t, resolver.InsertNew, d.Outcome)
	require.True(t, d.Accepted())
	require.Equal(t, "p-remote", d.Write.ID)
	require.Equal(t, 40, d.Write.Percent)
	require.Equal(t, domain.StatusSynced, d.Write.Status)
}

func TestDecide_RemoteNewer_Overwrites(t *testing.T) {
	local := &domain.Progress{
		ID: "p-local", UserID: "u1", LessonID: "l1",
		Percent: 20, UpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Status: domain.StatusSynced,
	}
	remote := domain.RemoteProgress{
		ID: "p-remote", UserID: "u1", LessonID: "l1",
		Percent: 90, UpdatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}

	d := resolver.Decide(local, remote)

	require.Equal(t, resolver.Overwrite, d.Outcome)
	require.True(t, d.Accepted())
	require.Equal(t, 90, d.Write.Percent)
	require.Equal(t, remote.UpdatedAt, d.Write.UpdatedAt)
}

func TestDecide_LocalNewer_Rejects(t *testing.T) {
	local := &domain.Progress{
		ID: "p-local", UserID: "u1", LessonID: "l1",
		Percent: 70, UpdatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), Status: domain.StatusPending,
	}
	remote := domain.RemoteProgress{
		ID: "p-remote", UserID: "u1", LessonID: "l1",
		Percent: 10, UpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	d := resolver.Decide(local, remote)

	require.Equal(t, resolver.Reject, d.Outcome)
	require.False(t, d.Accepted())
	require.Equal(t, *local, d.Write)
}

func TestDecide_ExactTie_TieBreaksToLocal(t *testing.T) {
	ts := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	local := &domain.Progress{
		ID: "p-local", UserID: "u1", LessonID: "l1",
		Percent: 55, UpdatedAt: ts, Status: domain.StatusSynced,
	}
	remote := domain.RemoteProgress{
		ID: "p-remote", UserID: "u1", LessonID: "l1",
		Percent: 99, UpdatedAt: ts,
	}

	d := resolver.Decide(local, remote)

	require.Equal(t, resolver.Reject, d.Outcome)
	require.Equal(t, 55, d.Write.Percent, "tie favors local value, not remote")
}

func TestDecide_Overwrite_PreservesLocalIdentity(t *testing.T) {
	local := &domain.Progress{
		ID: "local-identity", UserID: "u1", LessonID: "l1",
		Percent: 5, UpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Status: domain.StatusSynced,
	}
	remote := domain.RemoteProgress{
		ID: "some-other-remote-id", UserID: "u1", LessonID: "l1",
		Percent: 60, UpdatedAt: time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC),
	}

	d := resolver.Decide(local, remote)

	require.Equal(t, resolver.Overwrite, d.Outcome)
	require.Equal(t, "local-identity", d.Write.ID, "local row identity must survive an overwrite")
}

func TestDecide_OverwriteClampsOutOfRangePercent(t *testing.T) {
	local := &domain.Progress{
		ID: "p1", UserID: "u1", LessonID: "l1",
		Percent: 5, UpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Status: domain.StatusSynced,
	}
	remote := domain.RemoteProgress{
		ID: "p1", UserID: "u1", LessonID: "l1",
		// ParseRemoteProgress already clamps, but Decide must not assume
		// a caller always routes through it.
		Percent: 500, UpdatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}

	d := resolver.Decide(local, remote)

	require.Equal(t, 100, d.Write.Percent)
}
