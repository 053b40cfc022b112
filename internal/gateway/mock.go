package gateway

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/mohamed352/edu-sync-core/internal/domain"
)

// failer decides whether the next call fails, abstracting the RNG so
// tests can force deterministic outcomes. The default implementation
// wraps a *rand.Rand seeded from the runtime's own entropy source.
type failer interface {
	fails(percent int) bool
}

type randFailer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (f *randFailer) fails(percent int) bool {
	if percent <= 0 {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rng.IntN(100) < percent
}

// sleeper bounds the artificial network delay; tests override it to a
// no-op so the suite doesn't pay SimulatedNetworkDelayMS on every call.
type sleeper func(ctx context.Context, d time.Duration) error

func realSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// MockGateway is the sole Gateway implementation this core ships: an
// in-memory document store keyed by id, per domain.RemoteDoc, with
// injectable latency and failure rate (spec.md §4.3, §6).
type MockGateway struct {
	mu       sync.Mutex
	progress map[string]domain.RemoteDoc
	users    map[string]domain.RemoteDoc
	lessons  map[string]domain.RemoteDoc

	clock domain.Clock

	delay          time.Duration
	failurePercent int

	failer failer
	sleep  sleeper

	calls map[string]int
}

// MockOption configures a MockGateway at construction time, mirroring
// the functional-option pattern used throughout this core's constructors.
type MockOption func(*MockGateway)

// WithNetworkDelay overrides domain.SimulatedNetworkDelayMS.
func WithNetworkDelay(d time.Duration) MockOption {
	return func(g *MockGateway) { g.delay = d }
}

// WithFailurePercent overrides domain.SimulatedFailurePercent. Values
// outside [0, 100] are not validated; callers are expected to pass a
// sane percentage.
func WithFailurePercent(percent int) MockOption {
	return func(g *MockGateway) { g.failurePercent = percent }
}

// WithClock overrides the clock used for SimulateRemoteConflict's
// now+1h timestamp. Defaults to domain.SystemClock{}.
func WithClock(c domain.Clock) MockOption {
	return func(g *MockGateway) { g.clock = c }
}

// WithDeterministicFailures replaces the RNG-driven failure roll with a
// caller-supplied predicate, called once per gateway operation. Intended
// for tests that need guaranteed failure or success sequences (e.g. S5's
// retry-cap scenario).
func WithDeterministicFailures(fails func() bool) MockOption {
	return func(g *MockGateway) { g.failer = deterministicFailer(fails) }
}

// WithNoDelay disables the artificial sleep entirely, for tests that
// don't want to pay SimulatedNetworkDelayMS per call.
func WithNoDelay() MockOption {
	return func(g *MockGateway) {
		g.delay = 0
		g.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	}
}

type deterministicFailer func() bool

func (f deterministicFailer) fails(int) bool { return f() }

// NewMock creates a MockGateway with domain's default delay and failure
// rate, seeded users/lessons/progress maps empty. Apply MockOptions to
// override any default.
func NewMock(opts ...MockOption) *MockGateway {
	g := &MockGateway{
		progress:       make(map[string]domain.RemoteDoc),
		users:          make(map[string]domain.RemoteDoc),
		lessons:        make(map[string]domain.RemoteDoc),
		clock:          domain.SystemClock{},
		delay:          time.Duration(domain.SimulatedNetworkDelayMS) * time.Millisecond,
		failurePercent: domain.SimulatedFailurePercent,
		failer:         &randFailer{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))},
		sleep:          realSleep,
		calls:          make(map[string]int),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SeedUsers and SeedLessons pre-populate the read-only seed entities a
// fresh deployment would ship with; demos and tests call these before
// the first sync cycle.
func (g *MockGateway) SeedUsers(docs ...domain.RemoteDoc) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, d := range docs {
		if id, ok := d["id"].(string); ok {
			g.users[id] = d
		}
	}
}

func (g *MockGateway) SeedLessons(docs ...domain.RemoteDoc) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, d := range docs {
		if id, ok := d["id"].(string); ok {
			g.lessons[id] = d
		}
	}
}

// SeedProgress pre-populates remote progress documents, for tests that
// need an already-synced baseline before exercising conflict injection
// or download-side LWW.
func (g *MockGateway) SeedProgress(docs ...domain.RemoteDoc) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, d := range docs {
		if id, ok := d["id"].(string); ok {
			g.progress[id] = d
		}
	}
}

func (g *MockGateway) wait(ctx context.Context) error {
	if err := g.sleep(ctx, g.delay); err != nil {
		return err
	}
	return nil
}

func (g *MockGateway) roll() bool {
	return g.failer.fails(g.failurePercent)
}

func (g *MockGateway) record(op string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[op]++
}

// Calls returns a snapshot of per-operation invocation counts, for tests
// that assert on "exactly one upload" style scenarios (spec.md §8 S1).
func (g *MockGateway) Calls() map[string]int {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[string]int, len(g.calls))
	for k, v := range g.calls {
		out[k] = v
	}
	return out
}

// UploadProgress implements Gateway. Merge semantics: fields present in
// doc overwrite the stored document; fields absent are left untouched.
func (g *MockGateway) UploadProgress(ctx context.Context, doc domain.RemoteDoc) error {
	g.record("uploadProgress")
	if err := g.wait(ctx); err != nil {
		return err
	}
	if g.roll() {
		return domain.NewRemoteTransientError("upload failed", nil)
	}

	id, ok := doc["id"].(string)
	if !ok || id == "" {
		return domain.NewRemoteTransientError("upload rejected: missing id", nil)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	merged := mergeDoc(g.progress[id], doc)
	g.progress[id] = merged
	return nil
}

// FetchAllProgress implements Gateway.
func (g *MockGateway) FetchAllProgress(ctx context.Context) ([]domain.RemoteDoc, error) {
	g.record("fetchAllProgress")
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	if g.roll() {
		return nil, domain.NewRemoteTransientError("fetch progress failed", nil)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]domain.RemoteDoc, 0, len(g.progress))
	for _, doc := range g.progress {
		out = append(out, cloneDoc(doc))
	}
	return out, nil
}

// SimulateRemoteConflict implements Gateway: a partial write of
// {progressPercent: 100, updatedAt: now+1h}, creating the document if it
// doesn't already exist (the demo path's synthetic conflict needs a
// target even before any real upload happened).
func (g *MockGateway) SimulateRemoteConflict(ctx context.Context, progressID string) error {
	g.record("simulateRemoteConflict")
	if err := g.wait(ctx); err != nil {
		return err
	}
	if g.roll() {
		return domain.NewRemoteTransientError("conflict simulation failed", nil)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	patch := domain.RemoteDoc{
		"id":              progressID,
		"progressPercent": 100,
		"updatedAt":       g.clock.Now().Add(time.Hour).Format(time.RFC3339Nano),
	}
	g.progress[progressID] = mergeDoc(g.progress[progressID], patch)
	return nil
}

// FetchUsers implements Gateway.
func (g *MockGateway) FetchUsers(ctx context.Context) ([]domain.RemoteDoc, error) {
	g.record("fetchUsers")
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	if g.roll() {
		return nil, domain.NewRemoteTransientError("fetch users failed", nil)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]domain.RemoteDoc, 0, len(g.users))
	for _, doc := range g.users {
		out = append(out, cloneDoc(doc))
	}
	return out, nil
}

// FetchLessons implements Gateway.
func (g *MockGateway) FetchLessons(ctx context.Context) ([]domain.RemoteDoc, error) {
	g.record("fetchLessons")
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	if g.roll() {
		return nil, domain.NewRemoteTransientError("fetch lessons failed", nil)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]domain.RemoteDoc, 0, len(g.lessons))
	for _, doc := range g.lessons {
		out = append(out, cloneDoc(doc))
	}
	return out, nil
}

func mergeDoc(existing, patch domain.RemoteDoc) domain.RemoteDoc {
	merged := cloneDoc(existing)
	if merged == nil {
		merged = domain.RemoteDoc{}
	}
	for k, v := range patch {
		merged[k] = v
	}
	return merged
}

func cloneDoc(doc domain.RemoteDoc) domain.RemoteDoc {
	if doc == nil {
		return nil
	}
	out := make(domain.RemoteDoc, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
