package scanner

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/roach88/stockflow/internal/token"
)

var (
	integerPattern = regexp.MustCompile(`^-?[0-9]+$`)
	decimalPattern = regexp.MustCompile(`^[0-9]+\.[0-9]+$`)
)

// LexFormula tokenizes a single expression string into a formula token:
// a flat sequence of alternating value and operator leaves, with
// parenthesized groups as nested formula nodes.
//
// An accumulated literal closes out whenever whitespace, an operator
// character, or a closing parenthesis is seen. A closed literal is
// classified by trying, in order: the literal inf, the integer pattern,
// the decimal pattern, else a stock-name reference.
//
// LexFormula checks only parenthesis balance; shape rules (operator
// placement, alternation) are enforced by the formula package.
func LexFormula(expr string) (*token.Token, error) {
	root := &token.Token{Kind: token.KindFormula}
	stack := []*token.Token{root}
	var lit strings.Builder

	top := func() *token.Token { return stack[len(stack)-1] }
	flush := func() {
		if lit.Len() == 0 {
			return
		}
		top().Append(classifyLiteral(lit.String()))
		lit.Reset()
	}

	for _, c := range expr {
		switch {
		case unicode.IsSpace(c):
			flush()

		case c == '(':
			flush()
			group := &token.Token{Kind: token.KindFormula}
			top().Append(group)
			stack = append(stack, group)

		case c == ')':
			flush()
			if len(stack) == 1 {
				return nil, invalidParameters("unbalanced parentheses in formula")
			}
			stack = stack[:len(stack)-1]

		case c == '-' && lit.Len() == 0 && expectsOperand(top()):
			// leading minus of a literal, not a binary operator
			lit.WriteRune(c)

		case c == '+' || c == '-' || c == '*' || c == '/':
			flush()
			top().Append(token.New(token.KindOperator, string(c)))

		default:
			lit.WriteRune(c)
		}
	}

	flush()
	if len(stack) != 1 {
		return nil, invalidParameters("unbalanced parentheses in formula")
	}
	return root, nil
}

// expectsOperand reports whether the next leaf in the group would be an
// operand: the group is empty or its last leaf is an operator.
func expectsOperand(group *token.Token) bool {
	n := len(group.Children)
	return n == 0 || group.Children[n-1].Kind == token.KindOperator
}

func classifyLiteral(lit string) *token.Token {
	switch {
	case lit == "inf":
		return token.New(token.KindInfinity, lit)
	case integerPattern.MatchString(lit):
		return token.New(token.KindInteger, lit)
	case decimalPattern.MatchString(lit):
		return token.New(token.KindDecimal, lit)
	default:
		return token.New(token.KindReference, lit)
	}
}
