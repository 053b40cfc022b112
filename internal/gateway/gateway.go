package gateway

import (
	"context"

	"github.com/mohamed352/edu-sync-core/internal/domain"
)

// Gateway is the Remote Gateway contract (C3, spec.md §4.3). The engine
// depends only on this interface; MockGateway is the sole concrete
// implementation this core ships, matching "concrete remote transport...
// abstracted behind an interface."
//
// All four operations may fail with a RemoteTransientError
// (domain.NewRemoteTransientError) — the engine treats every gateway
// failure as transient and counts retries. MockGateway also returns the
// context's own error, unwrapped, when ctx is cancelled during its
// simulated delay.
type Gateway interface {
	// UploadProgress merges doc into the remote document keyed by
	// doc["id"]. Fields absent from doc are left untouched on the
	// remote side.
	UploadProgress(ctx context.Context, doc domain.RemoteDoc) error

	// FetchAllProgress returns every remote progress document. Documents
	// may be partial; callers validate with domain.ParseRemoteProgress.
	FetchAllProgress(ctx context.Context) ([]domain.RemoteDoc, error)

	// SimulateRemoteConflict partially writes {progressPercent: 100,
	// updatedAt: now+1h} to the document keyed by progressID, creating
	// it if absent.
	SimulateRemoteConflict(ctx context.Context, progressID string) error

	// FetchUsers and FetchLessons are the seed-data source for the two
	// read-only entities; the core applies both as unconditional
	// upserts.
	FetchUsers(ctx context.Context) ([]domain.RemoteDoc, error)
	FetchLessons(ctx context.Context) ([]domain.RemoteDoc, error)
}
