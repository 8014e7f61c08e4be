// Package harness runs conformance scenarios: small model specs with
// expected trajectories, loaded from YAML and optionally compared
// against golden rendered tables.
package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario; golden files are named
	// after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Spec is the inline model text to compile.
	Spec string `yaml:"spec"`

	// Rounds is the number of rounds to simulate.
	Rounds int `yaml:"rounds"`

	// ExpectError, when set, is the error code the compile or run is
	// expected to fail with; the remaining expectations are ignored.
	ExpectError string `yaml:"expect_error,omitempty"`

	// FinalState lists expected stock values after the last round.
	// Subset match: only named stocks are checked.
	FinalState map[string]float64 `yaml:"final_state,omitempty"`

	// Series lists expected per-round values keyed by stock name,
	// starting at round 0. Each slice may be shorter than the full
	// trajectory; only the listed rounds are checked.
	Series map[string][]float64 `yaml:"series,omitempty"`
}

// LoadScenario reads a single scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", path, err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", path, err)
	}
	if strings.TrimSpace(sc.Name) == "" {
		return nil, fmt.Errorf("load scenario %s: name is required", path)
	}
	if strings.TrimSpace(sc.Spec) == "" {
		return nil, fmt.Errorf("load scenario %s: spec is required", path)
	}
	return &sc, nil
}

// LoadScenarios reads every *.yaml scenario in a directory, sorted by
// file name for deterministic test order.
func LoadScenarios(dir string) ([]*Scenario, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load scenarios %s: %w", dir, err)
	}
	sort.Strings(matches)

	var scenarios []*Scenario
	for _, path := range matches {
		sc, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, sc)
	}
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("load scenarios %s: no scenario files found", dir)
	}
	return scenarios, nil
}
