package harness

import (
	"fmt"

	"github.com/roach88/stockflow/internal/compiler"
	"github.com/roach88/stockflow/internal/engine"
	"github.com/roach88/stockflow/internal/render"
)

// Result holds the outcome of one scenario execution.
type Result struct {
	Model     *engine.Model
	Snapshots []engine.Snapshot
	Table     string
}

// Run compiles and simulates a scenario's spec.
//
// For a scenario with ExpectError set, Run succeeds (with a nil Result)
// when the pipeline fails with the expected error code, and fails when
// the pipeline unexpectedly succeeds or fails with a different code.
func Run(sc *Scenario) (*Result, error) {
	model, err := compiler.Compile(sc.Spec)
	var snapshots []engine.Snapshot
	if err == nil {
		snapshots, err = model.Run(sc.Rounds)
	}

	if sc.ExpectError != "" {
		if err == nil {
			return nil, fmt.Errorf("scenario %s: expected error %s, got success", sc.Name, sc.ExpectError)
		}
		if code := compiler.ErrorCode(err); code != sc.ExpectError {
			return nil, fmt.Errorf("scenario %s: expected error %s, got %s (%v)", sc.Name, sc.ExpectError, code, err)
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}

	return &Result{
		Model:     model,
		Snapshots: snapshots,
		Table:     render.Table(model, snapshots),
	}, nil
}

// Verify checks a result against the scenario's expectations and
// returns one message per mismatch. A nil result (expected-error
// scenario) verifies trivially.
func Verify(sc *Scenario, res *Result) []string {
	if res == nil {
		return nil
	}

	var mismatches []string
	final := res.Snapshots[len(res.Snapshots)-1]
	for stock, want := range sc.FinalState {
		if got := final[stock]; got != want {
			mismatches = append(mismatches,
				fmt.Sprintf("final state %s: want %v, got %v", stock, want, got))
		}
	}
	for stock, series := range sc.Series {
		for round, want := range series {
			if round >= len(res.Snapshots) {
				mismatches = append(mismatches,
					fmt.Sprintf("series %s round %d: beyond simulated rounds", stock, round))
				break
			}
			if got := res.Snapshots[round][stock]; got != want {
				mismatches = append(mismatches,
					fmt.Sprintf("series %s round %d: want %v, got %v", stock, round, want, got))
			}
		}
	}
	return mismatches
}
