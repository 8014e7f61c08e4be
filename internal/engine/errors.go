package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Model error codes (E130-E139). E131 belongs to the resolver's
// CycleError, which CircularReferenceError wraps.
const (
	ErrCodeUnresolvedReference = "E130"
	ErrCodeCircularReferences  = "E131"
	ErrCodeIllegalSourceStock  = "E132"
	ErrCodeConflictingValues   = "E133"
)

// UnresolvedReferenceError reports a formula referencing a stock name
// absent from the model.
type UnresolvedReferenceError struct {
	Code  string
	Owner string // owning formula, e.g. `stock "a" initial` or `flow "a > b"`
	Name  string // the missing stock name
}

// Error implements the error interface.
func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("[%s] %s references unknown stock %q", e.Code, e.Owner, e.Name)
}

// IsUnresolvedReference returns true if the error is an
// unresolved-reference error. Uses errors.As to handle wrapped errors.
func IsUnresolvedReference(err error) bool {
	var ue *UnresolvedReferenceError
	return errors.As(err, &ue)
}

// CircularReferenceError reports a cycle in the initial-value reference
// graph. Edges holds the residual graph from the resolver.
type CircularReferenceError struct {
	Code  string
	Edges map[string][]string
	Err   error // the resolver's CycleError
}

// Error implements the error interface.
func (e *CircularReferenceError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the resolver error.
func (e *CircularReferenceError) Unwrap() error {
	return e.Err
}

// IsCircularReference returns true if the error is a circular-reference
// error. Uses errors.As to handle wrapped errors.
func IsCircularReference(err error) bool {
	var ce *CircularReferenceError
	return errors.As(err, &ce)
}

// IllegalSourceError reports a percentage-based flow (Conversion, Leak)
// drawing from an infinite stock. Raised at flow construction time,
// never at run time.
type IllegalSourceError struct {
	Code  string
	Stock string
	Kind  RuleKind
}

// Error implements the error interface.
func (e *IllegalSourceError) Error() string {
	return fmt.Sprintf("[%s] %s flow cannot drain infinite stock %q", e.Code, e.Kind, e.Stock)
}

// IsIllegalSource returns true if the error is an illegal-source-stock
// error. Uses errors.As to handle wrapped errors.
func IsIllegalSource(err error) bool {
	var ie *IllegalSourceError
	return errors.As(err, &ie)
}

// ConflictError reports a stock redeclared with a different non-default
// initial or maximum value than previously set.
type ConflictError struct {
	Code     string
	Stock    string
	Field    string // "initial" or "maximum"
	Existing string // rendered existing formula
	Proposed string // rendered conflicting formula
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	existing := e.Existing
	if strings.TrimSpace(existing) == "" {
		existing = "(default)"
	}
	return fmt.Sprintf("[%s] conflicting %s values for stock %q: %s vs %s",
		e.Code, e.Field, e.Stock, existing, e.Proposed)
}

// IsConflict returns true if the error is a conflicting-values error.
// Uses errors.As to handle wrapped errors.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
