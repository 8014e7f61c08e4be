package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stockflow/internal/token"
)

func kinds(tok *token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(tok.Children))
	for _, c := range tok.Children {
		out = append(out, c.Kind)
	}
	return out
}

func TestLexFormula_FlatSequence(t *testing.T) {
	f, err := LexFormula("10 + 5 * 2")
	require.NoError(t, err)

	assert.Equal(t, []token.Kind{
		token.KindInteger,
		token.KindOperator,
		token.KindInteger,
		token.KindOperator,
		token.KindInteger,
	}, kinds(f))
	assert.Equal(t, "+", f.Children[1].Text)
	assert.Equal(t, "*", f.Children[3].Text)
}

func TestLexFormula_Classification(t *testing.T) {
	f, err := LexFormula("3 1.5 inf hires")
	require.NoError(t, err)

	assert.Equal(t, []token.Kind{
		token.KindInteger,
		token.KindDecimal,
		token.KindInfinity,
		token.KindReference,
	}, kinds(f))
	assert.Equal(t, "hires", f.Children[3].Text)
}

func TestLexFormula_NegativeLiteral(t *testing.T) {
	f, err := LexFormula("-5")
	require.NoError(t, err)

	require.Len(t, f.Children, 1)
	assert.Equal(t, token.KindInteger, f.Children[0].Kind)
	assert.Equal(t, "-5", f.Children[0].Text)
}

func TestLexFormula_MinusAfterOperatorIsNegativeLiteral(t *testing.T) {
	f, err := LexFormula("10 - -5")
	require.NoError(t, err)

	require.Len(t, f.Children, 3)
	assert.Equal(t, token.KindOperator, f.Children[1].Kind)
	assert.Equal(t, "-", f.Children[1].Text)
	assert.Equal(t, "-5", f.Children[2].Text)
}

func TestLexFormula_NestedGroup(t *testing.T) {
	f, err := LexFormula("(a + 1) / 2")
	require.NoError(t, err)

	require.Len(t, f.Children, 3)
	group := f.Children[0]
	assert.Equal(t, token.KindFormula, group.Kind)
	assert.Equal(t, []token.Kind{
		token.KindReference,
		token.KindOperator,
		token.KindInteger,
	}, kinds(group))
	assert.Equal(t, token.KindOperator, f.Children[1].Kind)
}

func TestLexFormula_OperatorGluedToLiterals(t *testing.T) {
	f, err := LexFormula("a+1")
	require.NoError(t, err)

	assert.Equal(t, []token.Kind{
		token.KindReference,
		token.KindOperator,
		token.KindInteger,
	}, kinds(f))
}

func TestLexFormula_UnbalancedParens(t *testing.T) {
	_, err := LexFormula("((1)")
	require.Error(t, err)
	assert.True(t, IsInvalidParameters(err))

	_, err = LexFormula("1)")
	require.Error(t, err)
	assert.True(t, IsInvalidParameters(err))
}

func TestLexFormula_Empty(t *testing.T) {
	f, err := LexFormula("")
	require.NoError(t, err)
	assert.Empty(t, f.Children)
}
