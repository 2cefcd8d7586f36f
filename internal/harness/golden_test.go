package harness

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_TaggedIDs(t *testing.T) {
	// Regenerate with:
	//   go test ./internal/harness -run TestRunWithGolden_TaggedIDs -update
	require.NoError(t, RunWithGolden(t, loadScenario(t, "tagged_ids")))
}

func TestAssertGolden_ReusesResult(t *testing.T) {
	result, err := Run(loadScenario(t, "tagged_ids"))
	require.NoError(t, err)
	require.NoError(t, AssertGolden(t, "tagged_ids", result))
}

func TestMarshalSnapshot_FailedRun(t *testing.T) {
	result, err := Run(loadScenario(t, "bad_weights"))
	require.NoError(t, err)

	data, err := MarshalSnapshot("bad_weights", result)
	require.NoError(t, err)
	require.JSONEq(t, `{"scenario_name":"bad_weights","rows":0,"columns":null,"batches":0,"records":null}`, string(data))
}
