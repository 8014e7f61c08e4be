package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddStock_RedeclarationFillsDefaults(t *testing.T) {
	m := New()

	_, err := m.AddStock("b", nil, nil)
	require.NoError(t, err)

	s, err := m.AddStock("b", mustFormula(t, "10"), nil)
	require.NoError(t, err)
	assert.Equal(t, "10", s.Initial.Source())
	assert.Len(t, m.Stocks(), 1)
}

func TestAddStock_IdenticalRedeclarationAccepted(t *testing.T) {
	m := New()

	_, err := m.AddStock("b", mustFormula(t, "10"), nil)
	require.NoError(t, err)
	_, err = m.AddStock("b", mustFormula(t, "10"), nil)
	require.NoError(t, err)
}

func TestAddStock_ConflictingInitial(t *testing.T) {
	m := New()

	_, err := m.AddStock("b", mustFormula(t, "10"), nil)
	require.NoError(t, err)

	_, err = m.AddStock("b", mustFormula(t, "20"), nil)
	require.Error(t, err)
	assert.True(t, IsConflict(err))

	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "b", ce.Stock)
	assert.Equal(t, "initial", ce.Field)
	assert.Equal(t, "10", ce.Existing)
	assert.Equal(t, "20", ce.Proposed)
}

func TestAddStock_ConflictingMaximum(t *testing.T) {
	m := New()

	_, err := m.AddStock("b", nil, mustFormula(t, "5"))
	require.NoError(t, err)

	_, err = m.AddStock("b", nil, mustFormula(t, "6"))
	require.Error(t, err)
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "maximum", ce.Field)
}

func TestAddInfiniteStock_RedeclarationIsNoOp(t *testing.T) {
	m := New()

	_, err := m.AddInfiniteStock("pool")
	require.NoError(t, err)
	s, err := m.AddInfiniteStock("pool")
	require.NoError(t, err)
	assert.True(t, s.Infinite())
	assert.False(t, s.Show)
	assert.Len(t, m.Stocks(), 1)
}

func TestAddStock_ConflictWithInfiniteStockNamesInf(t *testing.T) {
	m := New()

	_, err := m.AddInfiniteStock("pool")
	require.NoError(t, err)

	_, err = m.AddStock("pool", mustFormula(t, "5"), nil)
	require.Error(t, err)

	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "inf", ce.Existing)
	assert.Equal(t, "5", ce.Proposed)
	assert.Contains(t, ce.Error(), "inf vs 5")
}

func TestAddInfiniteStock_ConflictsWithFiniteStock(t *testing.T) {
	m := New()

	_, err := m.AddStock("pool", mustFormula(t, "10"), nil)
	require.NoError(t, err)

	_, err = m.AddInfiniteStock("pool")
	require.Error(t, err)
	assert.True(t, IsConflict(err))
}

func TestAddFlow_InfiniteSourceRejectedForPercentageRules(t *testing.T) {
	m := New()
	src, err := m.AddInfiniteStock("pool")
	require.NoError(t, err)
	dst, err := m.AddStock("out", nil, nil)
	require.NoError(t, err)

	_, err = m.AddFlow(src, dst, Rule{Kind: RuleLeak, Formula: mustFormula(t, "0.5")})
	require.Error(t, err)
	assert.True(t, IsIllegalSource(err))

	_, err = m.AddFlow(src, dst, Rule{Kind: RuleConversion, Formula: mustFormula(t, "0.5")})
	require.Error(t, err)

	_, err = m.AddFlow(src, dst, Rule{Kind: RuleRate, Formula: mustFormula(t, "5")})
	require.NoError(t, err)
}

func TestValidate_UnresolvedInitialReference(t *testing.T) {
	m := New()
	_, err := m.AddStock("a", mustFormula(t, "missing + 1"), nil)
	require.NoError(t, err)

	err = m.Validate()
	require.Error(t, err)
	assert.True(t, IsUnresolvedReference(err))

	var ure *UnresolvedReferenceError
	require.ErrorAs(t, err, &ure)
	assert.Equal(t, "missing", ure.Name)
	assert.Contains(t, ure.Owner, `stock "a"`)
}

func TestValidate_UnresolvedFlowReference(t *testing.T) {
	m := New()
	src, err := m.AddStock("a", mustFormula(t, "10"), nil)
	require.NoError(t, err)
	dst, err := m.AddStock("b", nil, nil)
	require.NoError(t, err)
	_, err = m.AddFlow(src, dst, Rule{Kind: RuleRate, Formula: mustFormula(t, "ghost / 2")})
	require.NoError(t, err)

	err = m.Validate()
	require.Error(t, err)
	var ure *UnresolvedReferenceError
	require.ErrorAs(t, err, &ure)
	assert.Equal(t, "ghost", ure.Name)
	assert.Contains(t, ure.Owner, `flow "a > b"`)
}

func TestValidate_CircularInitialReferences(t *testing.T) {
	m := New()
	_, err := m.AddStock("a", mustFormula(t, "b"), nil)
	require.NoError(t, err)
	_, err = m.AddStock("b", mustFormula(t, "a"), nil)
	require.NoError(t, err)

	err = m.Validate()
	require.Error(t, err)
	assert.True(t, IsCircularReference(err))

	var cre *CircularReferenceError
	require.ErrorAs(t, err, &cre)
	assert.Contains(t, cre.Edges, "a")
	assert.Contains(t, cre.Edges, "b")
}

func TestValidate_Idempotent(t *testing.T) {
	m := New()
	_, err := m.AddStock("a", mustFormula(t, "10"), nil)
	require.NoError(t, err)

	require.NoError(t, m.Validate())
	require.NoError(t, m.Validate())
}

func TestValidate_CachesInitializationOrder(t *testing.T) {
	m := New()
	_, err := m.AddStock("c", mustFormula(t, "5"), nil)
	require.NoError(t, err)
	_, err = m.AddStock("b", mustFormula(t, "c"), nil)
	require.NoError(t, err)
	_, err = m.AddStock("a", mustFormula(t, "b"), nil)
	require.NoError(t, err)

	require.NoError(t, m.Validate())
	order := m.InitializationOrder()
	require.Len(t, order, 2)
	assert.Less(t, indexOf(order, "b"), indexOf(order, "a"))
	assert.NotContains(t, order, "c")
}

func TestRun_SnapshotCountIncludesInitialRound(t *testing.T) {
	m := New()
	src, err := m.AddStock("a", mustFormula(t, "10"), nil)
	require.NoError(t, err)
	dst, err := m.AddStock("b", nil, nil)
	require.NoError(t, err)
	_, err = m.AddFlow(src, dst, Rule{Kind: RuleRate, Formula: mustFormula(t, "5")})
	require.NoError(t, err)

	snapshots, err := m.Run(3)
	require.NoError(t, err)
	require.Len(t, snapshots, 4)
	assert.Equal(t, Snapshot{"a": 10, "b": 0}, snapshots[0])
}

func TestRun_ZeroRoundsYieldsInitialStateOnly(t *testing.T) {
	m := New()
	_, err := m.AddStock("a", mustFormula(t, "10 + 5 * 2"), nil)
	require.NoError(t, err)

	snapshots, err := m.Run(0)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, 30.0, snapshots[0]["a"])
}

func TestRun_NegativeRoundsRejected(t *testing.T) {
	m := New()
	_, err := m.AddStock("a", mustFormula(t, "10"), nil)
	require.NoError(t, err)

	snapshots, err := m.Run(-2)
	require.Error(t, err)
	assert.Nil(t, snapshots)
	assert.Contains(t, err.Error(), "non-negative")
}

func TestRun_FailedValidationProducesNoSnapshots(t *testing.T) {
	m := New()
	_, err := m.AddStock("a", mustFormula(t, "b"), nil)
	require.NoError(t, err)
	_, err = m.AddStock("b", mustFormula(t, "a"), nil)
	require.NoError(t, err)

	snapshots, err := m.Run(5)
	require.Error(t, err)
	assert.Nil(t, snapshots)
}

func indexOf(order []string, name string) int {
	for i, n := range order {
		if n == name {
			return i
		}
	}
	return -1
}
