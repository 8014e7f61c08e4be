// Package scanner converts raw model text into the typed token tree
// consumed by the compiler.
//
// Scanning is line-oriented. Each line starts in "expecting a stock"
// state; the > marker closes the buffer as a stock token and stays in
// stock state for the destination, the @ marker closes the buffer and
// switches to "expecting a flow" state for the remainder of the line.
// Whitespace and the direction marker are otherwise transparent
// separators. Lines are independent: a failure on one line carries that
// line's number and text, and scanner state never leaks across the
// newline boundary.
package scanner

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/roach88/stockflow/internal/token"
)

// namePattern is the identifier grammar for stock and flow names:
// a letter followed by letters, digits, or underscores.
var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Scan converts raw model text into a lines token.
//
// Blank lines are skipped. The first failing line aborts the scan; the
// returned error carries that line's 1-based number and trimmed text.
func Scan(text string) (*token.Token, error) {
	root := &token.Token{Kind: token.KindLines}
	for i, raw := range strings.Split(text, "\n") {
		num := i + 1
		if strings.TrimSpace(raw) == "" {
			continue
		}
		line, err := scanLine(raw, num)
		if err != nil {
			return nil, annotate(err, num, raw)
		}
		root.Append(line)
	}
	return root, nil
}

// annotate attaches line context to an error raised while processing one
// line. Errors that already carry line context (because they originated
// deeper in formula or parameter processing before the line boundary was
// known) are annotated in place rather than re-wrapped.
func annotate(err error, num int, raw string) error {
	var se *ScanError
	if errors.As(err, &se) {
		if se.Line == 0 {
			se.Line = num
			se.Text = strings.TrimSpace(raw)
		}
		return err
	}
	return &ScanError{
		Code:    ErrCodeLineFailure,
		Message: err.Error(),
		Line:    num,
		Text:    strings.TrimSpace(raw),
		Err:     err,
	}
}

// scanLine runs the per-line state machine.
func scanLine(raw string, num int) (*token.Token, error) {
	line := &token.Token{Kind: token.KindLine, Text: raw, Line: num}

	const (
		expectStock = iota
		expectFlow
	)
	mode := expectStock
	var buf strings.Builder
	depth := 0 // paren/bracket nesting; markers only fire at depth 0
	sawContent := false

	// flush closes the accumulated buffer as a stock or flow token,
	// depending on the current state. The buffer is consumed only on
	// success so the end-of-line consistency check stays meaningful.
	flush := func() error {
		if buf.Len() == 0 {
			return nil
		}
		var tok *token.Token
		var err error
		if mode == expectStock {
			tok, err = closeStock(buf.String())
		} else {
			tok, err = closeFlow(buf.String())
		}
		if err != nil {
			return err
		}
		buf.Reset()
		line.Append(tok)
		return nil
	}

	runes := []rune(raw)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case depth == 0 && c == '#':
			rest := strings.TrimSpace(string(runes[i+1:]))
			if !sawContent {
				// Only whitespace so far: the whole line is a comment.
				line.Append(token.New(token.KindComment, rest))
				return line, nil
			}
			if err := flush(); err != nil {
				return nil, err
			}
			line.Append(token.New(token.KindComment, rest))
			return line, nil

		case depth == 0 && unicode.IsSpace(c):
			// transparent separator

		case depth == 0 && mode == expectStock && c == '>':
			if buf.Len() > 0 {
				if err := flush(); err != nil {
					return nil, err
				}
				line.Append(token.New(token.KindFlowDirection, ">"))
			}

		case depth == 0 && mode == expectStock && c == '@':
			if err := flush(); err != nil {
				return nil, err
			}
			line.Append(token.New(token.KindFlowDelimiter, "@"))
			mode = expectFlow

		default:
			switch c {
			case '(', '[':
				depth++
			case ')', ']':
				depth--
				if depth < 0 {
					return nil, invalidParameters("unbalanced parentheses")
				}
			}
			buf.WriteRune(c)
			sawContent = true
		}
	}

	if err := flush(); err != nil {
		return nil, err
	}
	if buf.Len() > 0 {
		// flush consumed nothing; scanner state is inconsistent
		return nil, &ScanError{Code: ErrCodeScanInternal, Message: "unconsumed input at end of line"}
	}
	return line, nil
}

// closeStock classifies a buffered stock declaration.
//
// [Name] declares an infinite stock. Otherwise the leading identifier
// plus an optional trailing parenthesized parameter list is extracted;
// a name failing the identifier grammar is an illegal-name error.
func closeStock(content string) (*token.Token, error) {
	if strings.HasPrefix(content, "[") {
		if !strings.HasSuffix(content, "]") {
			return nil, invalidParameters("unterminated infinite stock")
		}
		name := strings.TrimSpace(content[1 : len(content)-1])
		if !namePattern.MatchString(name) {
			return nil, illegalName(name)
		}
		return token.New(token.KindInfiniteStock, name), nil
	}

	open := strings.IndexByte(content, '(')
	if open < 0 {
		if !namePattern.MatchString(content) {
			return nil, illegalName(content)
		}
		return token.New(token.KindStock, content), nil
	}

	name := content[:open]
	if !namePattern.MatchString(name) {
		return nil, illegalName(name)
	}
	params, err := parseParams(content[open:])
	if err != nil {
		return nil, err
	}
	if len(params) > 2 {
		return nil, invalidParameters("a stock takes at most two parameters (initial, maximum)")
	}
	tok := token.New(token.KindStock, name)
	tok.Append((&token.Token{Kind: token.KindParams}).Append(params...))
	return tok, nil
}

// closeFlow classifies a buffered flow specification.
//
// A leading legal identifier immediately followed by a parameter list is
// parsed as a labeled flow call when the identifier is a recognized flow
// kind (Rate, Conversion, Leak). Otherwise the entire text is a single
// implicit parameter to an unlabeled flow, interpreted during flow
// building.
func closeFlow(content string) (*token.Token, error) {
	if open := strings.IndexByte(content, '('); open > 0 && strings.HasSuffix(content, ")") {
		name := content[:open]
		if namePattern.MatchString(name) && token.IsFlowKind(name) {
			params, err := parseParams(content[open:])
			if err != nil {
				return nil, err
			}
			tok := token.New(token.KindFlow, name)
			tok.Append((&token.Token{Kind: token.KindParams}).Append(params...))
			return tok, nil
		}
	}

	f, err := LexFormula(content)
	if err != nil {
		return nil, err
	}
	tok := token.New(token.KindFlow, "")
	tok.Append((&token.Token{Kind: token.KindParams}).Append(f))
	return tok, nil
}

// parseParams lexes a parenthesized, comma-separated parameter list into
// formula tokens. Commas split only at the top nesting level so grouped
// formulas survive intact.
func parseParams(tail string) ([]*token.Token, error) {
	if !strings.HasPrefix(tail, "(") || !strings.HasSuffix(tail, ")") {
		return nil, invalidParameters("parameter list must be parenthesized")
	}
	inner := tail[1 : len(tail)-1]
	if strings.TrimSpace(inner) == "" {
		return []*token.Token{}, nil
	}

	parts, err := splitTopLevel(inner)
	if err != nil {
		return nil, err
	}
	params := make([]*token.Token, 0, len(parts))
	for _, part := range parts {
		f, err := LexFormula(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		params = append(params, f)
	}
	return params, nil
}

// splitTopLevel splits on commas outside any parenthesized group.
func splitTopLevel(s string) ([]string, error) {
	var parts []string
	depth := 0
	start := 0
	for i, c := range s {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, invalidParameters("unbalanced parentheses")
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, invalidParameters("unbalanced parentheses")
	}
	parts = append(parts, s[start:])
	return parts, nil
}
