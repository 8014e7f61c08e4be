package engine

import (
	"math"

	"github.com/roach88/stockflow/internal/formula"
)

// RuleKind identifies a flow's rate rule variant. The set is closed:
// rules are resolved by exhaustive switch, and adding a kind means
// extending every switch site.
type RuleKind int

const (
	// RuleRate transfers a fixed amount per round.
	RuleRate RuleKind = iota

	// RuleConversion multiplies the consumed source quantity by a
	// factor; it is percentage-based and illegal on infinite sources.
	RuleConversion

	// RuleLeak removes a fixed fraction of the source, floor-rounded;
	// percentage-based and illegal on infinite sources.
	RuleLeak
)

// String returns the rule kind's surface-grammar label.
func (k RuleKind) String() string {
	switch k {
	case RuleRate:
		return "Rate"
	case RuleConversion:
		return "Conversion"
	case RuleLeak:
		return "Leak"
	default:
		return "Rule(?)"
	}
}

// percentageBased reports whether the rule consumes a share of the
// source rather than a fixed amount.
func (k RuleKind) percentageBased() bool {
	return k == RuleConversion || k == RuleLeak
}

// Rule is a flow's rate rule: a closed tagged variant over the three
// built-in kinds plus the formula its evaluation starts from.
type Rule struct {
	Kind    RuleKind
	Formula *formula.Formula
}

// Apply computes one round's transfer for the rule given the current
// environment, the source and destination quantities, and the capacity
// available to the destination. It returns the amount removed from the
// source and the amount added to the destination; the two differ only
// for Conversion, where the scaled output need not equal the raw input
// consumed. Neither return value is ever negative or exceeds the
// available source quantity.
func (r Rule) Apply(env map[string]float64, source, dest, capacity float64) (removed, added float64) {
	switch r.Kind {
	case RuleRate:
		if source <= 0 {
			return 0, 0
		}
		// A destination already at or above its maximum has no capacity,
		// never negative capacity.
		if capacity < 0 {
			capacity = 0
		}
		amount := math.Min(r.Formula.Compute(env), source)
		if amount < 0 {
			amount = 0
		}
		if amount > capacity {
			amount = capacity
		}
		return amount, amount

	case RuleConversion:
		factor := r.Formula.Compute(env)
		// Eligible source units: all of the source when capacity is
		// unbounded or undefined, else the floor of what fits without
		// exceeding capacity.
		eligible := source
		if !math.IsInf(capacity, 1) && !math.IsNaN(capacity) {
			eligible = math.Floor((capacity - dest) / factor)
			if eligible < 0 {
				eligible = 0
			}
			if eligible > source {
				eligible = source
			}
		}
		gain := math.Floor(eligible * factor)
		if gain == 0 || math.IsNaN(gain) {
			// A fractional, unproductive consumption would drain the
			// source for nothing; report no movement at all.
			return 0, 0
		}
		return eligible, gain

	case RuleLeak:
		if capacity < 0 {
			capacity = 0
		}
		fraction := r.Formula.Compute(env)
		amount := math.Floor(source * fraction)
		if amount < 0 || math.IsNaN(amount) {
			amount = 0
		}
		if amount > source {
			amount = source
		}
		// NaN capacity is treated as unconstrained.
		if !math.IsNaN(capacity) && amount > capacity {
			amount = capacity
		}
		return amount, amount

	default:
		panic("engine: unknown rule kind")
	}
}
