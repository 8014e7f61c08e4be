// Package formula wraps a scanned arithmetic expression and evaluates it
// against a named-value environment.
//
// Evaluation is a strict left-to-right fold with NO operator precedence:
// 10 + 5 * 2 computes as (10 + 5) * 2 = 30, not 20. Arithmetic follows
// IEEE-754 double semantics, including division by zero producing
// infinity and saturating infinity arithmetic.
package formula

import (
	"math"
	"strconv"
	"strings"

	"github.com/roach88/stockflow/internal/token"
)

// Formula wraps a token-tree expression plus a default numeric value,
// returned when the expression is empty.
type Formula struct {
	root *token.Token
	def  float64
	src  string
}

// New creates a Formula from a scanned formula token, validating its
// shape: non-empty, no leading or trailing operator, no two adjacent
// operators, and an operator separating every pair of operands. Nested
// groups are validated by the same rules at construction time.
func New(root *token.Token, def float64) (*Formula, error) {
	f := &Formula{root: root, def: def, src: Render(root)}
	if err := validate(root, f.src); err != nil {
		return nil, err
	}
	return f, nil
}

// Default creates an empty Formula that evaluates to def. This is the
// value of a parameter slot that was never written: it is exempt from
// the non-empty validation rule applied to explicit expressions.
func Default(def float64) *Formula {
	return &Formula{root: &token.Token{Kind: token.KindFormula}, def: def}
}

// DefaultValue returns the formula's configured default.
func (f *Formula) DefaultValue() float64 {
	return f.def
}

// IsDefault reports whether the formula has no expression and always
// evaluates to its default value.
func (f *Formula) IsDefault() bool {
	return len(f.root.Children) == 0
}

// Source returns the rendered expression text. Empty formulas render as
// the empty string. Two formulas with equal Source are interchangeable.
func (f *Formula) Source() string {
	return f.src
}

// Leaves returns the top-level leaf sequence. Used by the compiler to
// classify bare flow specifications by shape.
func (f *Formula) Leaves() []*token.Token {
	return f.root.Children
}

// References returns the stock names referenced by the formula, in
// appearance order with duplicates preserved. Numeric and infinity
// literals are excluded; nested groups are walked.
func (f *Formula) References() []string {
	return references(f.root, nil)
}

func references(node *token.Token, acc []string) []string {
	for _, leaf := range node.Children {
		switch leaf.Kind {
		case token.KindReference:
			acc = append(acc, leaf.Text)
		case token.KindFormula:
			acc = references(leaf, acc)
		}
	}
	return acc
}

// Compute evaluates the formula against env, a stock-name to value
// environment. An empty formula returns the configured default. An
// unresolved reference evaluates to NaN and propagates through
// arithmetic; model validation rejects unresolved references before any
// state is built, so NaN can only surface through direct formula use.
func (f *Formula) Compute(env map[string]float64) float64 {
	return compute(f.root, env, f.def)
}

func compute(node *token.Token, env map[string]float64, def float64) float64 {
	if len(node.Children) == 0 {
		return def
	}

	var acc float64
	var op string
	started := false
	for _, leaf := range node.Children {
		if leaf.Kind == token.KindOperator {
			op = leaf.Text
			continue
		}
		v := operand(leaf, env)
		if !started {
			acc = v
			started = true
			continue
		}
		acc = apply(acc, op, v)
	}
	return acc
}

func operand(leaf *token.Token, env map[string]float64) float64 {
	switch leaf.Kind {
	case token.KindInteger:
		n, err := strconv.ParseInt(leaf.Text, 10, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	case token.KindDecimal:
		v, err := strconv.ParseFloat(leaf.Text, 64)
		if err != nil {
			return math.NaN()
		}
		return v
	case token.KindInfinity:
		return math.Inf(1)
	case token.KindReference:
		v, ok := env[leaf.Text]
		if !ok {
			return math.NaN()
		}
		return v
	case token.KindFormula:
		// validation rejects empty groups, so the default is unreachable
		return compute(leaf, env, math.NaN())
	default:
		return math.NaN()
	}
}

func apply(acc float64, op string, v float64) float64 {
	switch op {
	case "+":
		return acc + v
	case "-":
		return acc - v
	case "*":
		return acc * v
	case "/":
		return acc / v
	default:
		return math.NaN()
	}
}

// validate enforces the shape rules on one leaf sequence and recurses
// into nested groups, each validated independently.
func validate(node *token.Token, src string) error {
	if len(node.Children) == 0 {
		return validationError(ReasonEmpty, "formula is empty", src)
	}

	prevOperator := false
	for i, leaf := range node.Children {
		isOperator := leaf.Kind == token.KindOperator
		switch {
		case isOperator && i == 0:
			return validationError(ReasonLeadingOperator, "formula starts with an operator", src)
		case isOperator && i == len(node.Children)-1:
			return validationError(ReasonTrailingOperator, "formula ends with an operator", src)
		case isOperator && prevOperator:
			return validationError(ReasonAdjacentOperators, "two operators in a row", src)
		case !isOperator && i > 0 && !prevOperator:
			return validationError(ReasonMissingOperator, "missing operator between operands", src)
		}
		prevOperator = isOperator

		if leaf.Kind == token.KindFormula {
			if err := validate(leaf, Render(leaf)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Render reconstructs expression text from a formula token. Leaves are
// joined with single spaces and nested groups parenthesized, so equal
// expressions render identically regardless of original spacing.
func Render(node *token.Token) string {
	var parts []string
	for _, leaf := range node.Children {
		if leaf.Kind == token.KindFormula {
			parts = append(parts, "("+Render(leaf)+")")
			continue
		}
		parts = append(parts, leaf.Text)
	}
	return strings.Join(parts, " ")
}
