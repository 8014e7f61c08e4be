package formula

import (
	"errors"
	"fmt"
)

// Formula validation error code (E110).
const ErrCodeInvalidFormula = "E110"

// Validation failure reasons, used as the Reason field of
// ValidationError so callers can distinguish shape problems without
// string matching.
const (
	ReasonEmpty             = "empty"              // formula has no leaves
	ReasonLeadingOperator   = "leading_operator"   // starts with an operator
	ReasonTrailingOperator  = "trailing_operator"  // ends with an operator
	ReasonAdjacentOperators = "adjacent_operators" // two operators in a row
	ReasonMissingOperator   = "missing_operator"   // two operands in a row
)

// ValidationError reports an illegally shaped formula.
type ValidationError struct {
	Code    string // always ErrCodeInvalidFormula
	Reason  string // Reason* constant
	Message string // human-readable description
	Source  string // rendered formula text
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("[%s] invalid formula %q: %s", e.Code, e.Source, e.Message)
	}
	return fmt.Sprintf("[%s] invalid formula: %s", e.Code, e.Message)
}

// IsValidationError returns true if the error is a formula validation
// error. Uses errors.As to handle wrapped errors.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func validationError(reason, message, source string) *ValidationError {
	return &ValidationError{
		Code:    ErrCodeInvalidFormula,
		Reason:  reason,
		Message: message,
		Source:  source,
	}
}
