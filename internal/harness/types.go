package harness

// Step is a single action invocation, used in both Setup and Flow.
type Step struct {
	Action string         `yaml:"action"`
	Args   map[string]any `yaml:"args,omitempty"`
}

// Assertion validates the scenario's final state or a specific step's
// observed result. Fields are a union across assertion Types; only the
// fields relevant to a given Type need be set.
type Assertion struct {
	// Type selects the assertion: progress, journalPendingCount,
	// journalAllCount, gatewayCalls, engineStatus, or stepResult.
	Type string `yaml:"type"`

	UserID   string `yaml:"userId,omitempty"`
	LessonID string `yaml:"lessonId,omitempty"`
	Op       string `yaml:"op,omitempty"`
	Index    int    `yaml:"index,omitempty"`

	Count  int            `yaml:"count,omitempty"`
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertProgress            = "progress"
	AssertJournalPendingCount = "journalPendingCount"
	AssertJournalAllCount     = "journalAllCount"
	AssertGatewayCalls        = "gatewayCalls"
	AssertEngineStatus        = "engineStatus"
	AssertStepResult          = "stepResult"
)

// Scenario defines an end-to-end test scenario: a deterministic starting
// clock and gateway failure rate, a setup phase assumed to succeed, a
// main flow, and assertions against the resulting trace and live state.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// StartTime seeds the scenario's fake clock (RFC 3339). Defaults to
	// a fixed instant if omitted, so golden traces stay reproducible.
	StartTime string `yaml:"startTime,omitempty"`

	// MaxRetry overrides domain.MaxRetry for this scenario. Zero means
	// use the default.
	MaxRetry int `yaml:"maxRetry,omitempty"`

	// GatewayFailurePercent is fixed for the whole run; 100 makes every
	// gateway call fail deterministically without needing a separate
	// toggle step.
	GatewayFailurePercent int `yaml:"gatewayFailurePercent,omitempty"`

	Setup      []Step      `yaml:"setup,omitempty"`
	Flow       []Step      `yaml:"flow"`
	Assertions []Assertion `yaml:"assertions"`
}

// TraceEvent records one executed step and whatever it returned.
type TraceEvent struct {
	Seq      int            `json:"seq"`
	Phase    string         `json:"phase"`
	Action   string         `json:"action"`
	Args     map[string]any `json:"args,omitempty"`
	Observed map[string]any `json:"observed,omitempty"`
}

// Result is the outcome of running a Scenario.
type Result struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
	Pass         bool         `json:"pass"`
	Errors       []string     `json:"errors,omitempty"`
}
