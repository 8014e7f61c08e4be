// Package compiler builds an executable model from model text.
//
// Compile is the public facade over the pipeline: scan the text into a
// token tree, build stocks and flows line by line, then validate the
// finished model. Errors raised while building one line are wrapped
// with that line's number and text; scanner errors already carry line
// context and pass through untouched.
package compiler

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/roach88/stockflow/internal/engine"
	"github.com/roach88/stockflow/internal/formula"
	"github.com/roach88/stockflow/internal/scanner"
	"github.com/roach88/stockflow/internal/token"
)

// Compile turns raw model text into a validated model. All errors are
// fatal: a model that fails to compile or validate produces no
// snapshots.
func Compile(text string) (*engine.Model, error) {
	tree, err := scanner.Scan(text)
	if err != nil {
		return nil, err
	}

	m := engine.New()
	for _, line := range tree.Children {
		if err := buildLine(m, line); err != nil {
			return nil, annotate(err, line)
		}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// annotate wraps a build error with line context unless it already
// carries some.
func annotate(err error, line *token.Token) error {
	var se *scanner.ScanError
	var le *LineError
	if errors.As(err, &se) || errors.As(err, &le) {
		return err
	}
	return &LineError{
		Code: ErrCodeLineFailure,
		Line: line.Line,
		Text: strings.TrimSpace(line.Text),
		Err:  err,
	}
}

// buildLine applies one scanned line to the model. A line declares a
// stock, or a chain of stocks joined by the direction marker with an
// optional flow specification; each adjacent stock pair gets one flow
// sharing the rule.
func buildLine(m *engine.Model, line *token.Token) error {
	var stocks []*engine.Stock
	var flowTok *token.Token

	for _, leaf := range line.Children {
		switch leaf.Kind {
		case token.KindStock:
			s, err := declareStock(m, leaf)
			if err != nil {
				return err
			}
			stocks = append(stocks, s)
		case token.KindInfiniteStock:
			s, err := m.AddInfiniteStock(leaf.Text)
			if err != nil {
				return err
			}
			stocks = append(stocks, s)
		case token.KindFlow:
			flowTok = leaf
		case token.KindFlowDirection, token.KindFlowDelimiter, token.KindComment:
			// structural markers and comments carry no build action
		default:
			return fmt.Errorf("unexpected %s token in line", leaf.Kind)
		}
	}

	if flowTok == nil {
		if len(stocks) > 1 {
			return fmt.Errorf("flow missing rate specification")
		}
		return nil
	}
	if len(stocks) < 2 {
		return fmt.Errorf("flow requires a source and a destination")
	}

	rule, err := ruleFromToken(flowTok)
	if err != nil {
		return err
	}
	for i := 0; i+1 < len(stocks); i++ {
		if _, err := m.AddFlow(stocks[i], stocks[i+1], rule); err != nil {
			return err
		}
	}
	return nil
}

// declareStock builds the initial and maximum formulas from a stock
// token's parameter list and declares the stock on the model.
func declareStock(m *engine.Model, tok *token.Token) (*engine.Stock, error) {
	params := tok.Params()

	var initial, maximum *formula.Formula
	var err error
	if len(params) > 0 {
		initial, err = formula.New(params[0], 0)
		if err != nil {
			return nil, err
		}
	}
	if len(params) > 1 {
		maximum, err = formula.New(params[1], math.Inf(1))
		if err != nil {
			return nil, err
		}
	}
	return m.AddStock(tok.Text, initial, maximum)
}

// ruleFromToken interprets a flow token as a rate rule.
//
// Labeled calls map directly onto the rule kinds. An unlabeled flow is
// a single implicit formula classified by shape: a lone integer leaf is
// a Rate, a lone decimal leaf a Conversion, anything else a
// formula-valued Rate.
func ruleFromToken(tok *token.Token) (engine.Rule, error) {
	if tok.Text == "" {
		return implicitRule(tok)
	}

	var kind engine.RuleKind
	switch tok.Text {
	case "Rate":
		kind = engine.RuleRate
	case "Conversion":
		kind = engine.RuleConversion
	case "Leak":
		kind = engine.RuleLeak
	default:
		// The scanner only labels recognized kinds; this guards direct
		// token construction.
		return engine.Rule{}, &UnknownFlowTypeError{Code: ErrCodeUnknownFlowType, Name: tok.Text}
	}

	params := tok.Params()
	if len(params) != 1 {
		return engine.Rule{}, fmt.Errorf("%s takes exactly one parameter, got %d", tok.Text, len(params))
	}
	f, err := formula.New(params[0], 0)
	if err != nil {
		return engine.Rule{}, err
	}
	return engine.Rule{Kind: kind, Formula: f}, nil
}

func implicitRule(tok *token.Token) (engine.Rule, error) {
	params := tok.Params()
	if len(params) != 1 {
		return engine.Rule{}, fmt.Errorf("flow missing rate specification")
	}
	f, err := formula.New(params[0], 0)
	if err != nil {
		return engine.Rule{}, err
	}

	kind := engine.RuleRate
	if leaves := f.Leaves(); len(leaves) == 1 && leaves[0].Kind == token.KindDecimal {
		kind = engine.RuleConversion
	}
	return engine.Rule{Kind: kind, Formula: f}, nil
}
