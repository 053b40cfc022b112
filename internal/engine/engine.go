package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/mohamed352/edu-sync-core/internal/domain"
	"github.com/mohamed352/edu-sync-core/internal/gateway"
	"github.com/mohamed352/edu-sync-core/internal/repository"
)

// Engine is the Sync Engine (C4): owns connectivity state, serializes
// sync cycles behind an in-progress flag, drains the mutation journal
// through the gateway, and reconciles remote progress documents through
// the repository's LWW write path.
type Engine struct {
	repo *repository.Repository
	gw   gateway.Gateway

	maxRetry int

	mu           sync.Mutex
	connectivity Connectivity

	inProgress atomic.Bool

	conflicts *conflictQueue
	status    *statusHub
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithMaxRetry overrides domain.MaxRetry.
func WithMaxRetry(n int) Option {
	return func(e *Engine) { e.maxRetry = n }
}

// New creates an Engine in its initial state: status=idle,
// connectivity=offline (§4.4), wired to repo and gw.
func New(repo *repository.Repository, gw gateway.Gateway, opts ...Option) *Engine {
	e := &Engine{
		repo:         repo,
		gw:           gw,
		maxRetry:     domain.MaxRetry,
		connectivity: Offline,
		conflicts:    newConflictQueue(),
		status:       newStatusHub(StatusIdle),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Status returns the engine's current lifecycle status.
func (e *Engine) Status() Status {
	return e.status.current()
}

// WatchStatus returns a channel seeded with the current status and
// updated on every subsequent transition (syncing/idle/error).
func (e *Engine) WatchStatus() <-chan Status {
	return e.status.subscribe()
}

// Connectivity returns the engine's current connectivity state.
func (e *Engine) Connectivity() Connectivity {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.connectivity
}

// SetConnectivity applies an external connectivity signal. A
// transition from offline to online automatically runs one sync cycle;
// online to offline does not interrupt an in-flight cycle (§4.4).
func (e *Engine) SetConnectivity(ctx context.Context, online bool) {
	e.mu.Lock()
	prev := e.connectivity
	next := Offline
	if online {
		next = Online
	}
	e.connectivity = next
	e.mu.Unlock()

	if prev == Offline && next == Online {
		e.performFullSync(ctx)
	}
}

// QueueConflictSimulation appends progressID to the synthetic-conflict
// queue, drained during the next cycle's C phase.
func (e *Engine) QueueConflictSimulation(progressID string) {
	e.conflicts.enqueue(progressID)
}

// TriggerSync runs one sync cycle if none is already in flight and
// connectivity is online (§6 consumer API's triggerSync()).
func (e *Engine) TriggerSync(ctx context.Context) {
	e.performFullSync(ctx)
}

// performFullSync is the cycle described in §4.4: Gate, Upload,
// Conflict Simulation, Download, Finalize.
func (e *Engine) performFullSync(ctx context.Context) {
	if !e.inProgress.CompareAndSwap(false, true) {
		return
	}
	defer e.inProgress.Store(false)

	if e.Connectivity() == Offline {
		return
	}

	e.status.publish(StatusSyncing)

	var cycleErr error

	if err := e.runUploadPhase(ctx); err != nil {
		cycleErr = err
	}

	e.runConflictPhase(ctx)

	if err := e.runDownloadPhase(ctx); err != nil && cycleErr == nil {
		cycleErr = err
	}

	if cycleErr != nil {
		slog.Error("sync cycle failed", "error", cycleErr)
		e.status.publish(StatusError)
		return
	}
	e.status.publish(StatusIdle)
}

// runUploadPhase drains the pending journal in insertion order,
// uploading each entry and marking it synced on success or bumping its
// retry count on failure (§4.4 Phase U).
func (e *Engine) runUploadPhase(ctx context.Context) error {
	entries, err := e.repo.ListPendingJournal(ctx, e.maxRetry)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.RetryCount >= e.maxRetry {
			continue
		}

		payload, err := domain.UnmarshalProgressPayload(entry.Payload)
		if err != nil {
			slog.Warn("skipping journal entry with malformed payload", "journal_id", entry.ID, "error", err)
			continue
		}

		doc := domain.RemoteDoc{
			"id":              payload.ID,
			"userId":          payload.UserID,
			"lessonId":        payload.LessonID,
			"progressPercent": payload.ProgressPercent,
			"updatedAt":       payload.UpdatedAt,
		}

		if uploadErr := e.gw.UploadProgress(ctx, doc); uploadErr != nil {
			slog.Warn("upload failed, will retry", "journal_id", entry.ID, "entity_id", entry.EntityID, "error", uploadErr)
			if err := e.repo.IncrementRetryCount(ctx, entry.ID, entry.RetryCount); err != nil {
				return err
			}
			continue
		}

		if err := e.repo.MarkProgressSynced(ctx, entry.EntityID); err != nil {
			return err
		}
		if err := e.repo.DeleteJournalEntry(ctx, entry.ID); err != nil {
			return err
		}
	}
	return nil
}

// runConflictPhase drains the synthetic-conflict queue FIFO, swallowing
// individual failures (§4.4 Phase C).
func (e *Engine) runConflictPhase(ctx context.Context) {
	for _, id := range e.conflicts.drain() {
		if err := e.gw.SimulateRemoteConflict(ctx, id); err != nil {
			slog.Warn("conflict simulation failed", "progress_id", id, "error", err)
		}
	}
}

// runDownloadPhase fetches users, lessons, and progress documents,
// applying users and lessons unconditionally and routing progress
// documents through the repository's LWW write path (§4.4 Phase D).
func (e *Engine) runDownloadPhase(ctx context.Context) error {
	var storageErr error

	users, err := e.gw.FetchUsers(ctx)
	if err != nil {
		slog.Warn("fetch users failed", "error", err)
	}
	for _, doc := range users {
		u, ok := parseRemoteUser(doc)
		if !ok {
			slog.Warn("skipping malformed remote user document")
			continue
		}
		if err := e.repo.UpsertUser(ctx, u); err != nil && storageErr == nil {
			storageErr = err
		}
	}

	lessons, err := e.gw.FetchLessons(ctx)
	if err != nil {
		slog.Warn("fetch lessons failed", "error", err)
	}
	for _, doc := range lessons {
		l, ok := parseRemoteLesson(doc)
		if !ok {
			slog.Warn("skipping malformed remote lesson document")
			continue
		}
		if err := e.repo.UpsertLesson(ctx, l); err != nil && storageErr == nil {
			storageErr = err
		}
	}

	progresses, err := e.gw.FetchAllProgress(ctx)
	if err != nil {
		slog.Warn("fetch progress failed", "error", err)
	}
	accepted := 0
	for _, doc := range progresses {
		ok, err := e.repo.UpsertProgressIfNewer(ctx, doc)
		if err != nil {
			if storageErr == nil {
				storageErr = err
			}
			continue
		}
		if ok {
			accepted++
		}
	}
	slog.Info("download phase complete", "remote_progress_accepted", accepted, "remote_progress_seen", len(progresses))

	return storageErr
}

func asDocString(doc domain.RemoteDoc, key string) string {
	s, _ := doc[key].(string)
	return s
}

func asDocInt(doc domain.RemoteDoc, key string) int {
	switch n := doc[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func parseRemoteUser(doc domain.RemoteDoc) (domain.User, bool) {
	id := asDocString(doc, "id")
	if id == "" {
		return domain.User{}, false
	}
	updatedAt, err := domain.ParseRemoteTimestamp(doc["updatedAt"])
	if err != nil {
		updatedAt = domain.SystemClock{}.Now()
	}
	return domain.User{
		ID:          id,
		DisplayName: asDocString(doc, "displayName"),
		Contact:     asDocString(doc, "contact"),
		UpdatedAt:   updatedAt,
		Status:      domain.StatusSynced,
	}, true
}

func parseRemoteLesson(doc domain.RemoteDoc) (domain.Lesson, bool) {
	id := asDocString(doc, "id")
	if id == "" {
		return domain.Lesson{}, false
	}
	updatedAt, err := domain.ParseRemoteTimestamp(doc["updatedAt"])
	if err != nil {
		updatedAt = domain.SystemClock{}.Now()
	}
	return domain.Lesson{
		ID:              id,
		Title:           asDocString(doc, "title"),
		Description:     asDocString(doc, "description"),
		DurationMinutes: asDocInt(doc, "durationMinutes"),
		UpdatedAt:       updatedAt,
		Status:          domain.StatusSynced,
	}, true
}
