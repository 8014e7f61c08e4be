package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stockflow/internal/token"
)

func TestScan_StockDeclaration(t *testing.T) {
	tree, err := Scan("a")
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)

	line := tree.Children[0]
	assert.Equal(t, token.KindLine, line.Kind)
	assert.Equal(t, 1, line.Line)
	require.Len(t, line.Children, 1)
	assert.Equal(t, token.KindStock, line.Children[0].Kind)
	assert.Equal(t, "a", line.Children[0].Text)
	assert.Nil(t, line.Children[0].Params())
}

func TestScan_StockWithParameters(t *testing.T) {
	tree, err := Scan("a(5, 10)")
	require.NoError(t, err)

	stock := tree.Children[0].Children[0]
	assert.Equal(t, token.KindStock, stock.Kind)
	params := stock.Params()
	require.Len(t, params, 2)
	assert.Equal(t, token.KindFormula, params[0].Kind)
	require.Len(t, params[0].Children, 1)
	assert.Equal(t, token.KindInteger, params[0].Children[0].Kind)
	assert.Equal(t, "5", params[0].Children[0].Text)
	assert.Equal(t, "10", params[1].Children[0].Text)
}

func TestScan_InfiniteStock(t *testing.T) {
	tree, err := Scan("[candidates]")
	require.NoError(t, err)

	stock := tree.Children[0].Children[0]
	assert.Equal(t, token.KindInfiniteStock, stock.Kind)
	assert.Equal(t, "candidates", stock.Text)
}

func TestScan_FlowLine(t *testing.T) {
	tree, err := Scan("a > b @ Rate(2)")
	require.NoError(t, err)

	leaves := tree.Children[0].Children
	require.Len(t, leaves, 5)
	assert.Equal(t, token.KindStock, leaves[0].Kind)
	assert.Equal(t, "a", leaves[0].Text)
	assert.Equal(t, token.KindFlowDirection, leaves[1].Kind)
	assert.Equal(t, token.KindStock, leaves[2].Kind)
	assert.Equal(t, "b", leaves[2].Text)
	assert.Equal(t, token.KindFlowDelimiter, leaves[3].Kind)
	assert.Equal(t, token.KindFlow, leaves[4].Kind)
	assert.Equal(t, "Rate", leaves[4].Text)
	require.Len(t, leaves[4].Params(), 1)
}

func TestScan_ChainedFlowLine(t *testing.T) {
	tree, err := Scan("a > b > c @ 5")
	require.NoError(t, err)

	leaves := tree.Children[0].Children
	require.Len(t, leaves, 7)
	assert.Equal(t, "a", leaves[0].Text)
	assert.Equal(t, "b", leaves[2].Text)
	assert.Equal(t, "c", leaves[4].Text)
	assert.Equal(t, token.KindFlow, leaves[6].Kind)
}

func TestScan_UnlabeledFlowIsImplicitParameter(t *testing.T) {
	tree, err := Scan("a > b @ 5")
	require.NoError(t, err)

	flow := tree.Children[0].Children[4]
	assert.Equal(t, token.KindFlow, flow.Kind)
	assert.Equal(t, "", flow.Text)
	params := flow.Params()
	require.Len(t, params, 1)
	require.Len(t, params[0].Children, 1)
	assert.Equal(t, token.KindInteger, params[0].Children[0].Kind)
}

func TestScan_UnrecognizedLabelStaysImplicit(t *testing.T) {
	// Foo is not a flow kind, so the whole text is one implicit
	// formula parameter rather than a labeled call.
	tree, err := Scan("a > b @ Foo(1)")
	require.NoError(t, err)

	flow := tree.Children[0].Children[4]
	assert.Equal(t, "", flow.Text)
	require.Len(t, flow.Params(), 1)
}

func TestScan_WholeLineComment(t *testing.T) {
	tree, err := Scan("# a funnel model")
	require.NoError(t, err)

	leaves := tree.Children[0].Children
	require.Len(t, leaves, 1)
	assert.Equal(t, token.KindComment, leaves[0].Kind)
	assert.Equal(t, "a funnel model", leaves[0].Text)
}

func TestScan_TrailingComment(t *testing.T) {
	tree, err := Scan("a > b @ 5 # weekly hires")
	require.NoError(t, err)

	leaves := tree.Children[0].Children
	require.Len(t, leaves, 6)
	assert.Equal(t, token.KindFlow, leaves[4].Kind)
	assert.Equal(t, token.KindComment, leaves[5].Kind)
	assert.Equal(t, "weekly hires", leaves[5].Text)
}

func TestScan_BlankLinesSkipped(t *testing.T) {
	tree, err := Scan("a\n\n   \nb")
	require.NoError(t, err)

	require.Len(t, tree.Children, 2)
	assert.Equal(t, 1, tree.Children[0].Line)
	assert.Equal(t, 4, tree.Children[1].Line)
}

func TestScan_IllegalName(t *testing.T) {
	_, err := Scan("1abc > b @ 5")
	require.Error(t, err)
	assert.True(t, IsIllegalName(err))

	var se *ScanError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, se.Line)
	assert.Equal(t, "1abc > b @ 5", se.Text)
}

func TestScan_IllegalNameCarriesLaterLineNumber(t *testing.T) {
	_, err := Scan("a > b @ 5\nc\n9bad")
	require.Error(t, err)

	var se *ScanError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ErrCodeIllegalName, se.Code)
	assert.Equal(t, 3, se.Line)
}

func TestScan_UnterminatedParameterList(t *testing.T) {
	_, err := Scan("a(5")
	require.Error(t, err)
	assert.True(t, IsInvalidParameters(err))
}

func TestScan_UnbalancedClosingParen(t *testing.T) {
	_, err := Scan("a(5))")
	require.Error(t, err)
	assert.True(t, IsInvalidParameters(err))
}

func TestScan_TooManyStockParameters(t *testing.T) {
	_, err := Scan("a(1, 2, 3)")
	require.Error(t, err)
	assert.True(t, IsInvalidParameters(err))
}

func TestScan_WhitespaceIsTransparent(t *testing.T) {
	tree, err := Scan("  a   >   b   @   7  ")
	require.NoError(t, err)
	require.Len(t, tree.Children[0].Children, 5)
}
