package repository

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mohamed352/edu-sync-core/internal/domain"
	"github.com/mohamed352/edu-sync-core/internal/resolver"
	"github.com/mohamed352/edu-sync-core/internal/store"
)

// IDGenerator mints Progress.id values on first local creation. Mirrors
// the teacher's FlowTokenGenerator seam: UUIDGenerator is the production
// implementation, testutil.FixedUUIDs the deterministic test double.
type IDGenerator interface {
	Next() string
}

// UUIDGenerator mints random UUIDv4 strings, matching the server-agnostic
// id the spec's data model calls for.
type UUIDGenerator struct{}

// Next implements IDGenerator.
func (UUIDGenerator) Next() string { return uuid.NewString() }

// Repository is the Education Repository (C6): the sole write entry
// point, a thin facade over *store.Store.
type Repository struct {
	store *store.Store
	clock domain.Clock
	ids   IDGenerator
}

// Option configures a Repository at construction time.
type Option func(*Repository)

// WithClock overrides the wall clock used to stamp UpdateProgress
// mutations. Defaults to domain.SystemClock{}.
func WithClock(c domain.Clock) Option {
	return func(r *Repository) { r.clock = c }
}

// WithIDGenerator overrides the Progress.id source. Defaults to
// UUIDGenerator{}.
func WithIDGenerator(g IDGenerator) Option {
	return func(r *Repository) { r.ids = g }
}

// New creates a Repository backed by s.
func New(s *store.Store, opts ...Option) *Repository {
	r := &Repository{
		store: s,
		clock: domain.SystemClock{},
		ids:   UUIDGenerator{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// UpdateProgress implements §4.2's atomic write path: read existing,
// compute the clamped new percent and op tag, then commit the Progress
// upsert and the JournalEntry insert in one transaction via
// store.UpsertProgressAndJournal.
func (r *Repository) UpdateProgress(ctx context.Context, userID, lessonID string, incrementBy int) error {
	existing, ok, err := r.store.GetProgressByUser(ctx, userID, lessonID)
	if err != nil {
		return err
	}

	now := r.clock.Now()

	id := existing.ID
	op := domain.OpCreateProgress
	basePercent := 0
	if ok {
		id = existing.ID
		op = domain.OpUpdateProgress
		basePercent = existing.Percent
	} else {
		id = r.ids.Next()
	}

	p := domain.Progress{
		ID:        id,
		UserID:    userID,
		LessonID:  lessonID,
		Percent:   domain.ClampPercent(basePercent + incrementBy),
		UpdatedAt: now,
		Status:    domain.StatusPending,
	}

	payload, err := domain.MarshalProgressPayload(p)
	if err != nil {
		return domain.NewStorageError("marshal journal payload", err)
	}

	entry := domain.JournalEntry{
		Op:        op,
		EntityID:  id,
		Payload:   payload,
		CreatedAt: now,
	}

	_, err = r.store.UpsertProgressAndJournal(ctx, p, entry)
	return err
}

// MarkProgressSynced passes through to the store.
func (r *Repository) MarkProgressSynced(ctx context.Context, progressID string) error {
	return r.store.MarkProgressSynced(ctx, progressID)
}

// DeleteJournalEntry passes through to the store.
func (r *Repository) DeleteJournalEntry(ctx context.Context, id int64) error {
	return r.store.DeleteJournalEntry(ctx, id)
}

// IncrementRetryCount passes through to the store.
func (r *Repository) IncrementRetryCount(ctx context.Context, id int64, currentCount int) error {
	return r.store.IncrementRetryCount(ctx, id, currentCount)
}

// UpsertProgressIfNewer is the LWW write path (§4.5): validate, look up
// the local row, delegate the decision to resolver.Decide, and apply it.
// Returns whether the local store was updated.
func (r *Repository) UpsertProgressIfNewer(ctx context.Context, doc domain.RemoteDoc) (bool, error) {
	remote, err := domain.ParseRemoteProgress(doc)
	if err != nil {
		slog.Warn("skipping malformed remote progress document", "error", err)
		return false, nil
	}

	existing, ok, err := r.store.GetProgressByUser(ctx, remote.UserID, remote.LessonID)
	if err != nil {
		return false, err
	}

	var local *domain.Progress
	if ok {
		local = &existing
	}

	decision := resolver.Decide(local, remote)
	if !decision.Accepted() {
		return false, nil
	}

	if err := r.store.ReplaceProgress(ctx, decision.Write); err != nil {
		return false, err
	}
	return true, nil
}

// ListPendingJournal passes through to the store (§4.1 queue scan).
func (r *Repository) ListPendingJournal(ctx context.Context, maxRetry int) ([]domain.JournalEntry, error) {
	return r.store.ListPendingJournal(ctx, maxRetry)
}

// WatchPendingJournal passes through to the store's unfiltered journal
// stream (§9 open question: the watch stream is intentionally unfiltered).
func (r *Repository) WatchPendingJournal(ctx context.Context) (<-chan []domain.JournalEntry, error) {
	return r.store.WatchPendingJournal(ctx)
}

// GetProgressByUser passes through to the store.
func (r *Repository) GetProgressByUser(ctx context.Context, userID, lessonID string) (domain.Progress, bool, error) {
	return r.store.GetProgressByUser(ctx, userID, lessonID)
}

// WatchProgresses passes through to the store.
func (r *Repository) WatchProgresses(ctx context.Context) (<-chan []domain.Progress, error) {
	return r.store.WatchProgresses(ctx)
}

// WatchUsers passes through to the store.
func (r *Repository) WatchUsers(ctx context.Context) (<-chan []domain.User, error) {
	return r.store.WatchUsers(ctx)
}

// WatchLessons passes through to the store.
func (r *Repository) WatchLessons(ctx context.Context) (<-chan []domain.Lesson, error) {
	return r.store.WatchLessons(ctx)
}

// UpsertUser applies an unconditional seed upsert (§4.4 Phase D). Users
// are read-only after seeding from the application's perspective, but
// the download phase re-applies the remote copy on every cycle.
func (r *Repository) UpsertUser(ctx context.Context, u domain.User) error {
	return r.store.UpsertUser(ctx, u)
}

// UpsertLesson applies an unconditional seed upsert (§4.4 Phase D).
func (r *Repository) UpsertLesson(ctx context.Context, l domain.Lesson) error {
	return r.store.UpsertLesson(ctx, l)
}
