package harness

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mohamed352/edu-sync-core/internal/domain"
	"github.com/mohamed352/edu-sync-core/internal/engine"
)

// EvaluateAssertions checks every assertion against r's live state and
// accumulated trace, returning one message per failure.
func EvaluateAssertions(r *runner, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateOne(r, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d] (%s): %v", i, a.Type, err))
		}
	}
	return errs
}

func evaluateOne(r *runner, a Assertion) error {
	switch a.Type {
	case AssertProgress:
		return assertProgress(r, a)
	case AssertJournalPendingCount:
		return assertJournalPendingCount(r, a)
	case AssertJournalAllCount:
		return assertJournalAllCount(r, a)
	case AssertGatewayCalls:
		return assertGatewayCalls(r, a)
	case AssertEngineStatus:
		return assertEngineStatus(r, a)
	case AssertStepResult:
		return assertStepResult(r, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertProgress(r *runner, a Assertion) error {
	p, ok, err := r.repo.GetProgressByUser(r.ctx, a.UserID, a.LessonID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no progress row for user=%s lesson=%s", a.UserID, a.LessonID)
	}

	if want, ok := a.Expect["percent"]; ok {
		wantInt, err := toInt(want)
		if err != nil {
			return fmt.Errorf("expect.percent: %w", err)
		}
		if wantInt != p.Percent {
			return fmt.Errorf("percent: want %d, got %d", wantInt, p.Percent)
		}
	}
	if want, ok := a.Expect["status"]; ok {
		if domain.SyncStatus(fmt.Sprint(want)) != p.Status {
			return fmt.Errorf("status: want %v, got %s", want, p.Status)
		}
	}
	if want, ok := a.Expect["updatedAt"]; ok {
		wantTime, err := time.Parse(time.RFC3339, fmt.Sprint(want))
		if err != nil {
			return fmt.Errorf("expect.updatedAt: %w", err)
		}
		if !p.UpdatedAt.Equal(wantTime) {
			return fmt.Errorf("updatedAt: want %s, got %s", wantTime, p.UpdatedAt)
		}
	}
	return nil
}

func assertJournalPendingCount(r *runner, a Assertion) error {
	entries, err := r.repo.ListPendingJournal(r.ctx, r.maxRetry)
	if err != nil {
		return err
	}
	if len(entries) != a.Count {
		return fmt.Errorf("want %d pending entries, got %d", a.Count, len(entries))
	}
	return nil
}

func assertJournalAllCount(r *runner, a Assertion) error {
	entries, err := r.store.ListAllJournal(r.ctx)
	if err != nil {
		return err
	}
	if len(entries) != a.Count {
		return fmt.Errorf("want %d journal entries, got %d", a.Count, len(entries))
	}
	return nil
}

func assertGatewayCalls(r *runner, a Assertion) error {
	calls := r.gateway.Calls()
	got := calls[a.Op]
	if got != a.Count {
		return fmt.Errorf("op %q: want %d calls, got %d", a.Op, a.Count, got)
	}
	return nil
}

func assertEngineStatus(r *runner, a Assertion) error {
	want, ok := a.Expect["status"]
	if !ok {
		return fmt.Errorf("expect.status is required")
	}
	got := r.engine.Status()
	if engine.Status(fmt.Sprint(want)) != got {
		return fmt.Errorf("engine status: want %v, got %s", want, got)
	}
	return nil
}

func assertStepResult(r *runner, a Assertion) error {
	if a.Index < 0 || a.Index >= len(r.trace) {
		return fmt.Errorf("index %d out of range (trace has %d steps)", a.Index, len(r.trace))
	}
	observed := r.trace[a.Index].Observed
	for key, want := range a.Expect {
		got, ok := observed[key]
		if !ok {
			return fmt.Errorf("step %d: observed field %q not present", a.Index, key)
		}
		if !reflect.DeepEqual(want, got) {
			return fmt.Errorf("step %d: field %q: want %v, got %v", a.Index, key, want, got)
		}
	}
	return nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("want int, got %T", v)
	}
}
