package engine

import "maps"

// Snapshot is an immutable, independent copy of the state map at one
// round boundary.
type Snapshot map[string]float64

// State is the live mutable working set of one simulation run: a
// mapping from stock name to current value. A State is created fresh
// per run, advances monotonically round by round, and is discarded
// after producing snapshots. There is no rollback.
type State struct {
	model  *Model
	values map[string]float64
}

// newState builds the initial state. Stocks not appearing in the cached
// safe order have no initial-value references and are initialized
// first, in model insertion order; stocks in the safe order follow in
// that order, so every reference resolves to an already-computed value.
// Requires a validated model.
func (m *Model) newState() *State {
	values := make(map[string]float64, len(m.stocks))

	ordered := make(map[string]bool, len(m.order))
	for _, name := range m.order {
		ordered[name] = true
	}
	for _, s := range m.stocks {
		if !ordered[s.Name] {
			values[s.Name] = s.Initial.Compute(values)
		}
	}
	for _, name := range m.order {
		values[name] = m.index[name].Initial.Compute(values)
	}

	return &State{model: m, values: values}
}

// Value returns the current value of a stock.
func (s *State) Value(name string) float64 {
	return s.values[name]
}

// Advance processes every flow once, completing one round.
//
// Flows run in reverse insertion order. Each flow reads the live state,
// so a source drained by an earlier flow in the same pass is seen
// depleted by later flows. Removals are applied immediately; additions
// are deferred and committed only after every flow has been processed,
// which keeps fan-in and source/destination overlap from double
// counting within a round. Deferred additions still reserve capacity:
// each flow's available capacity is reduced by amounts already pending
// for its destination, so fan-in into a finite-maximum stock cannot
// push it past its maximum.
func (s *State) Advance() {
	pending := make(map[string]float64)

	flows := s.model.flows
	for i := len(flows) - 1; i >= 0; i-- {
		f := flows[i]
		source := s.values[f.Source.Name]
		dest := s.values[f.Destination.Name]

		capacity := f.Destination.Maximum.Compute(s.values)
		if !f.Destination.Infinite() {
			capacity -= dest + pending[f.Destination.Name]
		}

		removed, added := f.Rule.Apply(s.values, source, dest, capacity)
		if removed != 0 {
			s.values[f.Source.Name] = source - removed
		}
		if added != 0 {
			pending[f.Destination.Name] += added
		}
	}

	for dest, amount := range pending {
		s.values[dest] += amount
	}
}

// Snapshot returns an independent copy of the state map.
func (s *State) Snapshot() Snapshot {
	return maps.Clone(s.values)
}
