package compiler

import (
	"errors"
	"fmt"

	"github.com/roach88/stockflow/internal/engine"
	"github.com/roach88/stockflow/internal/formula"
	"github.com/roach88/stockflow/internal/resolver"
	"github.com/roach88/stockflow/internal/scanner"
)

// Compile error codes (E120-E129).
const (
	ErrCodeUnknownFlowType = "E120" // labeled flow names an unknown kind
	ErrCodeLineFailure     = "E121" // failure while building one line
)

// UnknownFlowTypeError reports a labeled flow call naming something
// other than Rate, Conversion, or Leak.
type UnknownFlowTypeError struct {
	Code string
	Name string
}

// Error implements the error interface.
func (e *UnknownFlowTypeError) Error() string {
	return fmt.Sprintf("[%s] unknown flow type %q", e.Code, e.Name)
}

// IsUnknownFlowType returns true if the error is an unknown-flow-type
// error. Uses errors.As to handle wrapped errors.
func IsUnknownFlowType(err error) bool {
	var ue *UnknownFlowTypeError
	return errors.As(err, &ue)
}

// LineError wraps a build failure with the failing line's 1-based
// number and raw text. Errors that already carry line context (scanner
// errors) are never re-wrapped.
type LineError struct {
	Code string
	Line int
	Text string
	Err  error
}

// Error implements the error interface.
func (e *LineError) Error() string {
	return fmt.Sprintf("[%s] line %d %q: %v", e.Code, e.Line, e.Text, e.Err)
}

// Unwrap returns the underlying build error.
func (e *LineError) Unwrap() error {
	return e.Err
}

// ErrorCode extracts the taxonomy code from any error produced by the
// compile pipeline, returning the most specific code available, or the
// empty string for errors outside the taxonomy.
func ErrorCode(err error) string {
	var (
		scanErr     *scanner.ScanError
		formulaErr  *formula.ValidationError
		unknownFlow *UnknownFlowTypeError
		unresolved  *engine.UnresolvedReferenceError
		circular    *resolver.CycleError
		illegal     *engine.IllegalSourceError
		conflict    *engine.ConflictError
		lineErr     *LineError
	)
	switch {
	case errors.As(err, &formulaErr):
		return formulaErr.Code
	case errors.As(err, &unknownFlow):
		return unknownFlow.Code
	case errors.As(err, &unresolved):
		return unresolved.Code
	case errors.As(err, &circular):
		return circular.Code
	case errors.As(err, &illegal):
		return illegal.Code
	case errors.As(err, &conflict):
		return conflict.Code
	case errors.As(err, &scanErr):
		return scanErr.Code
	case errors.As(err, &lineErr):
		return lineErr.Code
	default:
		return ""
	}
}
