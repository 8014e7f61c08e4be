package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/stockflow/internal/formula"
	"github.com/roach88/stockflow/internal/resolver"
)

// Model owns the ordered stock and flow collections of a compiled spec.
// Stock insertion order is significant for rendering; flow insertion
// order is significant for simulation (flows are applied in reverse
// insertion order each round).
type Model struct {
	stocks []*Stock
	flows  []*Flow
	index  map[string]*Stock

	// order is the cached safe initialization order, computed by
	// Validate from the initial-value reference graph.
	order     []string
	validated bool
}

// New creates an empty model.
func New() *Model {
	return &Model{index: make(map[string]*Stock)}
}

// Stocks returns the stocks in insertion order.
func (m *Model) Stocks() []*Stock {
	return m.stocks
}

// Flows returns the flows in insertion order.
func (m *Model) Flows() []*Flow {
	return m.flows
}

// Stock looks up a stock by name.
func (m *Model) Stock(name string) (*Stock, bool) {
	s, ok := m.index[name]
	return s, ok
}

// InitializationOrder returns the cached safe order computed by
// Validate. Stocks absent from the order have no initial-value
// references and are initialized first, in insertion order.
func (m *Model) InitializationOrder() []string {
	return m.order
}

// AddStock declares a stock, or redeclares an existing one. A nil
// initial or maximum leaves that field alone. Redeclaration may only
// fill a field still at its default; supplying a value different from
// one already set is a ConflictError.
func (m *Model) AddStock(name string, initial, maximum *formula.Formula) (*Stock, error) {
	s, ok := m.index[name]
	if !ok {
		s = NewStock(name)
		m.stocks = append(m.stocks, s)
		m.index[name] = s
	}

	if initial != nil {
		switch {
		case !s.initialSet:
			s.Initial = initial
			s.initialSet = true
		case s.Initial.Source() != initial.Source():
			return nil, &ConflictError{
				Code:     ErrCodeConflictingValues,
				Stock:    name,
				Field:    "initial",
				Existing: existingSource(s, s.Initial),
				Proposed: initial.Source(),
			}
		}
	}
	if maximum != nil {
		switch {
		case !s.maximumSet:
			s.Maximum = maximum
			s.maximumSet = true
		case s.Maximum.Source() != maximum.Source():
			return nil, &ConflictError{
				Code:     ErrCodeConflictingValues,
				Stock:    name,
				Field:    "maximum",
				Existing: existingSource(s, s.Maximum),
				Proposed: maximum.Source(),
			}
		}
	}
	return s, nil
}

// existingSource renders a stock's already-set formula for conflict
// messages. An infinite stock's values have no written expression, so
// they render as the inf literal rather than an empty default.
func existingSource(s *Stock, f *formula.Formula) string {
	if s.Infinite() {
		return "inf"
	}
	return f.Source()
}

// AddInfiniteStock declares an infinite stock. Redeclaring an existing
// infinite stock is a no-op; redeclaring a finite stock as infinite is
// a ConflictError.
func (m *Model) AddInfiniteStock(name string) (*Stock, error) {
	if s, ok := m.index[name]; ok {
		if s.Infinite() {
			return s, nil
		}
		return nil, &ConflictError{
			Code:     ErrCodeConflictingValues,
			Stock:    name,
			Field:    "initial",
			Existing: s.Initial.Source(),
			Proposed: "inf",
		}
	}
	s := NewInfiniteStock(name)
	m.stocks = append(m.stocks, s)
	m.index[name] = s
	return s, nil
}

// AddFlow appends a validated flow to the model.
func (m *Model) AddFlow(source, destination *Stock, rule Rule) (*Flow, error) {
	f, err := NewFlow(source, destination, rule)
	if err != nil {
		return nil, err
	}
	m.flows = append(m.flows, f)
	return f, nil
}

// Validate checks the model and caches the safe initialization order.
// It runs before the first simulation step and is idempotent.
//
// Two rules are enforced:
//  1. Every reference in any stock's initial or maximum formula and in
//     any flow's rate formula names a stock present in the model.
//  2. The initial-value reference graph across all stocks is acyclic.
func (m *Model) Validate() error {
	if m.validated {
		return nil
	}

	for _, s := range m.stocks {
		if err := m.checkReferences(s.Initial, fmt.Sprintf("stock %q initial", s.Name)); err != nil {
			return err
		}
		if err := m.checkReferences(s.Maximum, fmt.Sprintf("stock %q maximum", s.Name)); err != nil {
			return err
		}
	}
	for _, f := range m.flows {
		if err := m.checkReferences(f.Rule.Formula, fmt.Sprintf("flow %q", f.Label())); err != nil {
			return err
		}
	}

	inward := make(map[string][]string)
	outward := make(map[string][]string)
	for _, s := range m.stocks {
		for _, ref := range s.Initial.References() {
			outward[s.Name] = append(outward[s.Name], ref)
			inward[ref] = append(inward[ref], s.Name)
		}
	}

	order, err := resolver.Resolve(inward, outward)
	if err != nil {
		var ce *resolver.CycleError
		if errors.As(err, &ce) {
			return &CircularReferenceError{Code: ErrCodeCircularReferences, Edges: ce.Edges, Err: ce}
		}
		return err
	}

	m.order = order
	m.validated = true
	slog.Debug("model validated",
		"stocks", len(m.stocks),
		"flows", len(m.flows),
		"ordered_stocks", len(order),
	)
	return nil
}

func (m *Model) checkReferences(f *formula.Formula, owner string) error {
	for _, name := range f.References() {
		if _, ok := m.index[name]; !ok {
			return &UnresolvedReferenceError{
				Code:  ErrCodeUnresolvedReference,
				Owner: owner,
				Name:  name,
			}
		}
	}
	return nil
}

// Run validates the model, constructs the initial state, and advances
// it the given number of rounds. The returned snapshots include the
// initial round: len(snapshots) == rounds + 1, and snapshot 0 equals
// the freshly initialized state. A model that fails validation
// produces no snapshots.
func (m *Model) Run(rounds int) ([]Snapshot, error) {
	if rounds < 0 {
		return nil, fmt.Errorf("rounds must be non-negative, got %d", rounds)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	st := m.newState()
	snapshots := make([]Snapshot, 0, rounds+1)
	snapshots = append(snapshots, st.Snapshot())
	for i := 0; i < rounds; i++ {
		st.Advance()
		snapshots = append(snapshots, st.Snapshot())
	}
	slog.Debug("run complete", "rounds", rounds, "snapshots", len(snapshots))
	return snapshots, nil
}
