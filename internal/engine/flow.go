package engine

import "fmt"

// Flow is a directed transfer rule between two stocks.
type Flow struct {
	Source      *Stock
	Destination *Stock
	Rule        Rule
}

// NewFlow creates a flow, eagerly validating the rate rule against the
// source stock: percentage-based rules (Conversion, Leak) reject an
// infinite source at construction time, never at run time.
func NewFlow(source, destination *Stock, rule Rule) (*Flow, error) {
	if source.Infinite() && rule.Kind.percentageBased() {
		return nil, &IllegalSourceError{
			Code:  ErrCodeIllegalSourceStock,
			Stock: source.Name,
			Kind:  rule.Kind,
		}
	}
	return &Flow{Source: source, Destination: destination, Rule: rule}, nil
}

// Label returns a diagnostic name for the flow.
func (f *Flow) Label() string {
	return fmt.Sprintf("%s > %s", f.Source.Name, f.Destination.Name)
}
