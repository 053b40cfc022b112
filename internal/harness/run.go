package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/mohamed352/edu-sync-core/internal/domain"
	"github.com/mohamed352/edu-sync-core/internal/engine"
	"github.com/mohamed352/edu-sync-core/internal/gateway"
	"github.com/mohamed352/edu-sync-core/internal/repository"
	"github.com/mohamed352/edu-sync-core/internal/store"
	"github.com/mohamed352/edu-sync-core/internal/testutil"
)

// defaultStartTime seeds a scenario's clock when it doesn't specify one,
// chosen to read naturally against wall-clock times written in scenario
// fixtures (e.g. "T=12:00").
var defaultStartTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// runner holds the live collaborators a scenario executes against plus
// the trace accumulated so far; assertions read back through it.
type runner struct {
	ctx context.Context

	store   *store.Store
	repo    *repository.Repository
	engine  *engine.Engine
	gateway *gateway.MockGateway
	clock   *testutil.FakeClock

	maxRetry int
	trace    []TraceEvent
}

// Run executes scenario against a fresh in-memory store and returns the
// trace plus assertion results. A non-nil error means the scenario
// itself could not execute (malformed step, storage failure); assertion
// failures are reported in Result.Errors instead.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	start := defaultStartTime
	if scenario.StartTime != "" {
		t, err := time.Parse(time.RFC3339, scenario.StartTime)
		if err != nil {
			return nil, fmt.Errorf("parse startTime: %w", err)
		}
		start = t
	}
	clock := testutil.NewFakeClock(start)

	maxRetry := domain.MaxRetry
	if scenario.MaxRetry > 0 {
		maxRetry = scenario.MaxRetry
	}

	gw := gateway.NewMock(
		gateway.WithClock(clock),
		gateway.WithNoDelay(),
		gateway.WithFailurePercent(scenario.GatewayFailurePercent),
	)
	repo := repository.New(st, repository.WithClock(clock))
	eng := engine.New(repo, gw, engine.WithMaxRetry(maxRetry))

	r := &runner{
		ctx:      context.Background(),
		store:    st,
		repo:     repo,
		engine:   eng,
		gateway:  gw,
		clock:    clock,
		maxRetry: maxRetry,
	}

	for _, step := range scenario.Setup {
		if err := r.execute("setup", step); err != nil {
			return nil, fmt.Errorf("setup step %q: %w", step.Action, err)
		}
	}
	for _, step := range scenario.Flow {
		if err := r.execute("flow", step); err != nil {
			return nil, fmt.Errorf("flow step %q: %w", step.Action, err)
		}
	}

	errs := EvaluateAssertions(r, scenario.Assertions)

	return &Result{
		ScenarioName: scenario.Name,
		Trace:        r.trace,
		Pass:         len(errs) == 0,
		Errors:       errs,
	}, nil
}

func (r *runner) execute(phase string, step Step) error {
	observed, err := r.dispatch(step)
	if err != nil {
		return err
	}
	r.trace = append(r.trace, TraceEvent{
		Seq:      len(r.trace),
		Phase:    phase,
		Action:   step.Action,
		Args:     step.Args,
		Observed: observed,
	})
	return nil
}

func (r *runner) dispatch(step Step) (map[string]any, error) {
	switch step.Action {
	case "updateProgress":
		userID, err := argString(step.Args, "userId")
		if err != nil {
			return nil, err
		}
		lessonID, err := argString(step.Args, "lessonId")
		if err != nil {
			return nil, err
		}
		incrementBy, err := argInt(step.Args, "incrementBy")
		if err != nil {
			return nil, err
		}
		if err := r.repo.UpdateProgress(r.ctx, userID, lessonID, incrementBy); err != nil {
			return nil, err
		}
		return nil, nil

	case "seedProgress":
		p, err := progressFromArgs(step.Args)
		if err != nil {
			return nil, err
		}
		if err := r.store.ReplaceProgress(r.ctx, p); err != nil {
			return nil, err
		}
		return nil, nil

	case "seedRemoteProgress":
		doc, err := remoteProgressDocFromArgs(step.Args)
		if err != nil {
			return nil, err
		}
		r.gateway.SeedProgress(doc)
		return nil, nil

	case "upsertProgressIfNewer":
		doc, err := remoteProgressDocFromArgs(step.Args)
		if err != nil {
			return nil, err
		}
		accepted, err := r.repo.UpsertProgressIfNewer(r.ctx, doc)
		if err != nil {
			return nil, err
		}
		return map[string]any{"accepted": accepted}, nil

	case "setConnectivity":
		online, err := argBool(step.Args, "online")
		if err != nil {
			return nil, err
		}
		r.engine.SetConnectivity(r.ctx, online)
		return nil, nil

	case "triggerSync":
		r.engine.TriggerSync(r.ctx)
		return nil, nil

	case "queueConflictSimulation":
		progressID, err := argString(step.Args, "progressId")
		if err != nil {
			return nil, err
		}
		r.engine.QueueConflictSimulation(progressID)
		return nil, nil

	case "advanceClock":
		seconds, err := argInt(step.Args, "seconds")
		if err != nil {
			return nil, err
		}
		r.clock.Advance(time.Duration(seconds) * time.Second)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown action %q", step.Action)
	}
}

func progressFromArgs(args map[string]any) (domain.Progress, error) {
	id, err := argString(args, "id")
	if err != nil {
		return domain.Progress{}, err
	}
	userID, err := argString(args, "userId")
	if err != nil {
		return domain.Progress{}, err
	}
	lessonID, err := argString(args, "lessonId")
	if err != nil {
		return domain.Progress{}, err
	}
	percent, err := argInt(args, "percent")
	if err != nil {
		return domain.Progress{}, err
	}
	updatedAt, err := argTime(args, "updatedAt")
	if err != nil {
		return domain.Progress{}, err
	}
	status := domain.StatusPending
	if s, ok := args["status"]; ok {
		status = domain.SyncStatus(fmt.Sprint(s))
	}
	return domain.Progress{
		ID:        id,
		UserID:    userID,
		LessonID:  lessonID,
		Percent:   domain.ClampPercent(percent),
		UpdatedAt: updatedAt,
		Status:    status,
	}, nil
}

func remoteProgressDocFromArgs(args map[string]any) (domain.RemoteDoc, error) {
	id, err := argString(args, "id")
	if err != nil {
		return nil, err
	}
	userID, err := argString(args, "userId")
	if err != nil {
		return nil, err
	}
	lessonID, err := argString(args, "lessonId")
	if err != nil {
		return nil, err
	}
	percent, err := argInt(args, "percent")
	if err != nil {
		return nil, err
	}
	updatedAt, err := argString(args, "updatedAt")
	if err != nil {
		return nil, err
	}
	return domain.RemoteDoc{
		"id":              id,
		"userId":          userID,
		"lessonId":        lessonID,
		"progressPercent": percent,
		"updatedAt":       updatedAt,
	}, nil
}

func argString(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required arg %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("arg %q: want string, got %T", key, v)
	}
	return s, nil
}

func argInt(args map[string]any, key string) (int, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing required arg %q", key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("arg %q: want int, got %T", key, v)
	}
}

func argBool(args map[string]any, key string) (bool, error) {
	v, ok := args[key]
	if !ok {
		return false, fmt.Errorf("missing required arg %q", key)
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("arg %q: want bool, got %T", key, v)
	}
	return b, nil
}

func argTime(args map[string]any, key string) (time.Time, error) {
	s, err := argString(args, key)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("arg %q: %w", key, err)
	}
	return t, nil
}
