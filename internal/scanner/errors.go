package scanner

import (
	"errors"
	"fmt"
)

// Scan error codes (E101-E109).
const (
	ErrCodeIllegalName       = "E101" // name fails the identifier grammar
	ErrCodeInvalidParameters = "E102" // malformed parameter list or parenthesization
	ErrCodeScanInternal      = "E103" // leftover unconsumed buffer at end of line
	ErrCodeLineFailure       = "E104" // generic failure while scanning one line
)

// ScanError represents a failure while scanning source text.
//
// Errors raised while processing a single line carry that line's 1-based
// number and raw text. Errors that originate deeper in formula or
// parameter processing are created without line context and annotated in
// place once the line boundary is known (see Scan).
type ScanError struct {
	Code    string // error category (ErrCode* constant)
	Message string // human-readable description
	Line    int    // 1-based source line, 0 if not yet known
	Text    string // raw line text, empty if not yet known
	Err     error  // underlying error, optional
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d %q: %s", e.Code, e.Line, e.Text, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error, if any.
func (e *ScanError) Unwrap() error {
	return e.Err
}

// IsIllegalName returns true if the error is an illegal-name scan error.
// Uses errors.As to handle wrapped errors.
func IsIllegalName(err error) bool {
	var se *ScanError
	return errors.As(err, &se) && se.Code == ErrCodeIllegalName
}

// IsInvalidParameters returns true if the error is an invalid-parameters
// scan error. Uses errors.As to handle wrapped errors.
func IsInvalidParameters(err error) bool {
	var se *ScanError
	return errors.As(err, &se) && se.Code == ErrCodeInvalidParameters
}

func illegalName(name string) *ScanError {
	return &ScanError{
		Code:    ErrCodeIllegalName,
		Message: fmt.Sprintf("illegal name: %q", name),
	}
}

func invalidParameters(detail string) *ScanError {
	return &ScanError{
		Code:    ErrCodeInvalidParameters,
		Message: fmt.Sprintf("invalid parameters: %s", detail),
	}
}
