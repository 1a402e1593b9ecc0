package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

// DefaultLineName is shown for a line whose product name never reached the client.
const DefaultLineName = "Producto"

// CartLine is one purchasable line as tracked client-side.
type CartLine struct {
	ID                   string
	Name                 string
	UnitPrice            decimal.Decimal
	Quantity             int
	ImageURL             string
	RequiresPrescription bool
}

// Subtotal is UnitPrice × Quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartSnapshot is the full cart at one instant. It is never mutated in place:
// the With* methods return a new snapshot with a freshly computed total.
type CartSnapshot struct {
	Lines []CartLine
	Total decimal.Decimal
	// HasTotal reports whether Total was carried on the wire rather than computed.
	HasTotal bool
}

// EmptySnapshot is the canonical empty cart.
func EmptySnapshot() CartSnapshot {
	return CartSnapshot{Lines: []CartLine{}, Total: decimal.Zero}
}

// NewSnapshot builds a snapshot from lines, dropping any with a non-positive
// quantity, and computes its total.
func NewSnapshot(lines []CartLine) CartSnapshot {
	kept := make([]CartLine, 0, len(lines))
	for _, l := range lines {
		if l.Quantity > 0 {
			kept = append(kept, l)
		}
	}
	return CartSnapshot{Lines: kept, Total: SumLines(kept), HasTotal: true}
}

// SumLines returns Σ(unitPrice × quantity).
func SumLines(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (s CartSnapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}

// ItemCount is the number of units across all lines.
func (s CartSnapshot) ItemCount() int {
	n := 0
	for _, l := range s.Lines {
		n += l.Quantity
	}
	return n
}

func (s CartSnapshot) Line(id string) (CartLine, bool) {
	for _, l := range s.Lines {
		if l.ID == id {
			return l, true
		}
	}
	return CartLine{}, false
}

// WithLine adds line, or replaces the line with the same ID in place.
func (s CartSnapshot) WithLine(line CartLine) CartSnapshot {
	lines := slices.Clone(s.Lines)
	idx := slices.IndexFunc(lines, func(l CartLine) bool { return l.ID == line.ID })
	if idx >= 0 {
		lines[idx] = line
	} else {
		lines = append(lines, line)
	}
	return NewSnapshot(lines)
}

// WithQuantity sets the quantity of line id. A quantity <= 0 removes the line.
func (s CartSnapshot) WithQuantity(id string, quantity int) CartSnapshot {
	if quantity <= 0 {
		return s.WithoutLine(id)
	}
	lines := slices.Clone(s.Lines)
	for i := range lines {
		if lines[i].ID == id {
			lines[i].Quantity = quantity
		}
	}
	return NewSnapshot(lines)
}

func (s CartSnapshot) WithoutLine(id string) CartSnapshot {
	lines := slices.DeleteFunc(slices.Clone(s.Lines), func(l CartLine) bool { return l.ID == id })
	return NewSnapshot(lines)
}
