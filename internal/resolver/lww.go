package resolver

import (
	"github.com/mohamed352/edu-sync-core/internal/domain"
)

// Outcome is the resolver's verdict on a candidate remote document.
type Outcome int

const (
	// Reject means the local row is unchanged: the remote document is no
	// newer than local (strict tie-break favors local). Malformed documents
	// never reach Decide; the repository skips them at the validity gate.
	Reject Outcome = iota
	// InsertNew means no local row existed; the remote document should be
	// inserted as a new, synced Progress row.
	InsertNew
	// Overwrite means the remote document is strictly newer; local should
	// be overwritten with remote values while preserving the local row's
	// identity (id).
	Overwrite
)

// Decision is the result of Decide: what to do, and the exact Progress
// row to write when Outcome is InsertNew or Overwrite.
type Decision struct {
	Outcome Outcome
	Write   domain.Progress
}

// Accepted reports whether Decide's decision should be applied to the
// store — true for InsertNew and Overwrite, false for Reject. Mirrors
// the bool upsertProgressIfNewer returns in §4.5.
func (d Decision) Accepted() bool {
	return d.Outcome != Reject
}

// Decide implements §4.5 step 3: the LWW decision. local is nil when no
// row exists for (remote.UserID, remote.LessonID) — step 3's "no local
// row exists" branch.
//
// Tie-break: remote.UpdatedAt == local.UpdatedAt rejects in favor of
// local (§4.5 "Tie-break"), on the theory that the user's latest action
// on this device should win under clock skew.
//
// Identity preservation: when local exists, the write always carries
// local.ID even if remote carries a different id for the same
// (userId, lessonId) pair (§4.5 "Identity preservation", §8 property 3).
func Decide(local *domain.Progress, remote domain.RemoteProgress) Decision {
	if local == nil {
		return Decision{
			Outcome: InsertNew,
			Write: domain.Progress{
				ID:        remote.ID,
				UserID:    remote.UserID,
				LessonID:  remote.LessonID,
				Percent:   domain.ClampPercent(remote.Percent),
				UpdatedAt: remote.UpdatedAt,
				Status:    domain.StatusSynced,
			},
		}
	}

	if !remote.UpdatedAt.After(local.UpdatedAt) {
		return Decision{Outcome: Reject, Write: *local}
	}

	return Decision{
		Outcome: Overwrite,
		Write: domain.Progress{
			ID:        local.ID,
			UserID:    remote.UserID,
			LessonID:  remote.LessonID,
			Percent:   domain.ClampPercent(remote.Percent),
			UpdatedAt: remote.UpdatedAt,
			Status:    domain.StatusSynced,
		},
	}
}
