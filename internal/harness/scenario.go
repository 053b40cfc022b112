package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadScenario reads and strictly parses a scenario YAML file, rejecting
// unknown fields so a typo'd key fails loudly instead of being silently
// ignored.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario yaml: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Setup {
		if step.Action == "" {
			return fmt.Errorf("setup[%d]: action is required", i)
		}
	}
	for i, step := range s.Flow {
		if step.Action == "" {
			return fmt.Errorf("flow[%d]: action is required", i)
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	switch a.Type {
	case AssertProgress:
		if a.UserID == "" || a.LessonID == "" {
			return fmt.Errorf("assertions[%d]: userId and lessonId are required for progress", index)
		}
	case AssertJournalPendingCount, AssertJournalAllCount:
		// count defaults to zero, which is a meaningful expectation.
	case AssertGatewayCalls:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for gatewayCalls", index)
		}
	case AssertEngineStatus:
		if a.Expect["status"] == nil {
			return fmt.Errorf("assertions[%d]: expect.status is required for engineStatus", index)
		}
	case AssertStepResult:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for stepResult", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
