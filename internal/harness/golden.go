package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario and compares its rendered table
// against the golden file testdata/golden/{scenario.Name}.golden.
//
// Golden files are the source of truth for expected trajectories; to
// regenerate them run:
//
//	go test ./internal/harness -update
//
// Returns an error if scenario execution fails; golden mismatches fail
// the test via goldie. Expected-error scenarios have no table and are
// skipped.
func RunWithGolden(t *testing.T, sc *Scenario) error {
	t.Helper()

	res, err := Run(sc)
	if err != nil {
		return err
	}
	if res == nil {
		return nil
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, sc.Name, []byte(res.Table))
	return nil
}
