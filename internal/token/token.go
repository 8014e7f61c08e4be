// Package token defines the typed token tree produced by the scanner.
//
// A scanned model is a Lines token containing one Line token per source
// line. Line children are the typed leaves of the surface grammar: stock
// declarations, flow-direction and flow-delimiter markers, flow calls,
// and comments. Formulas are themselves trees: a flat sequence of value
// and operator leaves, with parenthesized groups as nested Formula nodes.
//
// The tree is a closed tagged union over Kind. Encoding it as untyped
// nested slices would silently permit malformed trees that callers could
// only catch at read time; the Kind tag keeps every consumer an
// exhaustive switch away from the full shape.
package token

import "fmt"

// Kind identifies the type of a token node.
type Kind int

const (
	// KindLines is the root node: one child per non-blank source line.
	KindLines Kind = iota

	// KindLine is a single source line. Line carries the 1-based line
	// number and Text the raw line for diagnostics.
	KindLine

	// KindStock is a stock declaration or reference. Text is the stock
	// name; an optional KindParams child carries the declared formulas.
	KindStock

	// KindInfiniteStock is an infinite stock declaration ([Name]).
	KindInfiniteStock

	// KindFlowDirection is the > marker between stocks.
	KindFlowDirection

	// KindFlowDelimiter is the @ marker before a flow specification.
	KindFlowDelimiter

	// KindFlow is a flow specification. Text is the flow kind label
	// (Rate, Conversion, Leak) or empty for an unlabeled flow; a
	// KindParams child carries the parameter formulas.
	KindFlow

	// KindParams groups the comma-separated parameter formulas of a
	// stock declaration or flow call.
	KindParams

	// KindFormula is an arithmetic expression: alternating value and
	// operator leaves, with nested KindFormula nodes for groups.
	KindFormula

	// KindOperator is one of + - * /. Text is the operator symbol.
	KindOperator

	// KindInteger is an integer literal (optional leading minus).
	KindInteger

	// KindDecimal is a decimal literal (digits, dot, digits).
	KindDecimal

	// KindInfinity is the literal inf.
	KindInfinity

	// KindReference is a stock-name reference inside a formula.
	KindReference

	// KindComment is trailing comment text.
	KindComment
)

// String returns the token kind name for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindLines:
		return "lines"
	case KindLine:
		return "line"
	case KindStock:
		return "stock"
	case KindInfiniteStock:
		return "infinite_stock"
	case KindFlowDirection:
		return "flow_direction"
	case KindFlowDelimiter:
		return "flow_delimiter"
	case KindFlow:
		return "flow"
	case KindParams:
		return "params"
	case KindFormula:
		return "formula"
	case KindOperator:
		return "operator"
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	case KindInfinity:
		return "infinity"
	case KindReference:
		return "reference"
	case KindComment:
		return "comment"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Token is a node in the scanned token tree.
type Token struct {
	Kind     Kind
	Text     string // name, label, literal text, or raw line text
	Line     int    // 1-based source line, set on KindLine nodes
	Children []*Token
}

// New creates a leaf token.
func New(kind Kind, text string) *Token {
	return &Token{Kind: kind, Text: text}
}

// Append adds children to the token and returns it.
func (t *Token) Append(children ...*Token) *Token {
	t.Children = append(t.Children, children...)
	return t
}

// Params returns the parameter formulas of a stock or flow token.
// Returns nil when the token carries no parameter list.
func (t *Token) Params() []*Token {
	for _, c := range t.Children {
		if c.Kind == KindParams {
			return c.Children
		}
	}
	return nil
}

// FlowKinds lists the built-in flow rule names recognized by the surface
// grammar. The scanner only parses a labeled flow call for these names;
// any other leading identifier is treated as formula content.
var FlowKinds = []string{"Rate", "Conversion", "Leak"}

// IsFlowKind reports whether name is a recognized flow kind label.
func IsFlowKind(name string) bool {
	for _, k := range FlowKinds {
		if k == name {
			return true
		}
	}
	return false
}
