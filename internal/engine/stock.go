package engine

import (
	"math"

	"github.com/roach88/stockflow/internal/formula"
)

// Stock is a named numeric container: an initial-value formula, a
// maximum-value formula (default effectively unbounded), and a display
// flag controlling whether the stock appears in rendered output.
//
// Stocks are created once per distinct name. Redeclaring a stock may
// only fill in an initial or maximum value that was previously left at
// its default; supplying a different non-default value is a conflict
// (see Model.AddStock).
type Stock struct {
	Name    string
	Initial *formula.Formula
	Maximum *formula.Formula
	Show    bool

	infinite   bool
	initialSet bool
	maximumSet bool
}

// NewStock creates a stock with default values: initial 0, unbounded
// maximum, displayed.
func NewStock(name string) *Stock {
	return &Stock{
		Name:    name,
		Initial: formula.Default(0),
		Maximum: formula.Default(math.Inf(1)),
		Show:    true,
	}
}

// NewInfiniteStock creates an infinite stock: initial value fixed to
// positive infinity, hidden from rendered output. Infinite stocks are
// illegal as the source of percentage-based flows (Conversion, Leak).
func NewInfiniteStock(name string) *Stock {
	return &Stock{
		Name:       name,
		Initial:    formula.Default(math.Inf(1)),
		Maximum:    formula.Default(math.Inf(1)),
		Show:       false,
		infinite:   true,
		initialSet: true,
		maximumSet: true,
	}
}

// Infinite reports whether the stock is fixed at positive infinity.
func (s *Stock) Infinite() bool {
	return s.infinite
}
