package harness

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// marshalCanonical renders v as indented JSON with HTML escaping
// disabled, the same canonicalization domain.MarshalProgressPayload
// uses, so golden files diff cleanly and don't flip on Go version
// changes to map key ordering (json.Marshal already sorts map keys).
func marshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden, failing t if they differ.
// Regenerate fixtures with: go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) *Result {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		t.Fatalf("run scenario %q: %v", scenario.Name, err)
	}

	traceJSON, err := marshalCanonical(result.Trace)
	if err != nil {
		t.Fatalf("marshal trace: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)

	return result
}
