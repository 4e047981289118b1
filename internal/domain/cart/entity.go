// internal/domain/cart/entity.go
package cart

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-client/internal/domain/product"
)

// SourceKind tells which cart is active
type SourceKind int

const (
	SourceLocal SourceKind = iota
	SourceRemote
)

// Source is either the guest cart kept in local storage or the remote cart
// owned by the API for one authenticated user.
type Source struct {
	kind   SourceKind
	userID uint
}

// Local returns the guest cart source
func Local() Source {
	return Source{kind: SourceLocal}
}

// Remote returns the source for the remote cart of userID
func Remote(userID uint) Source {
	return Source{kind: SourceRemote, userID: userID}
}

// Kind returns the source kind
func (s Source) Kind() SourceKind {
	return s.kind
}

// UserID returns the owning user for a remote source
func (s Source) UserID() (uint, bool) {
	return s.userID, s.kind == SourceRemote
}

func (s Source) String() string {
	switch s.kind {
	case SourceRemote:
		return fmt.Sprintf("remote(%d)", s.userID)
	default:
		return "local"
	}
}

// Line is a product in the cart with its quantity. The product fields and
// quantity serialize flat, the same shape the snapshot has always used.
type Line struct {
	product.Product
	Quantity int `json:"quantity"`
}

// Subtotal returns unit price times quantity
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the active cart with at most one line per product id
type Cart struct {
	Source Source
	Lines  []Line
}

// Totals represents derived cart totals
type Totals struct {
	LineCount  int             `json:"line_count"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// Totals recomputes totals from the current lines
func (c Cart) Totals() Totals {
	return CalculateTotals(c.Lines)
}

// IsEmpty reports whether the cart has no lines
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Find returns the line for productID
func (c Cart) Find(productID uint) (Line, bool) {
	for _, line := range c.Lines {
		if line.ID == productID {
			return line, true
		}
	}
	return Line{}, false
}

// Clone returns a copy that shares no line storage with c
func (c Cart) Clone() Cart {
	lines := make([]Line, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Source: c.Source, Lines: lines}
}

// Upsert adds qty units of p, incrementing an existing line instead of duplicating it
func (c *Cart) Upsert(p product.Product, qty int) {
	if qty < 1 {
		return
	}
	for i := range c.Lines {
		if c.Lines[i].ID == p.ID {
			c.Lines[i].Quantity += qty
			return
		}
	}
	c.Lines = append(c.Lines, Line{Product: p, Quantity: qty})
}

// Remove deletes the line for productID and reports whether one existed
func (c *Cart) Remove(productID uint) bool {
	for i := range c.Lines {
		if c.Lines[i].ID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return true
		}
	}
	return false
}

// SetQuantity sets the quantity of productID; qty <= 0 removes the line.
func (c *Cart) SetQuantity(productID uint, qty int) bool {
	if qty <= 0 {
		return c.Remove(productID)
	}
	for i := range c.Lines {
		if c.Lines[i].ID == productID {
			c.Lines[i].Quantity = qty
			return true
		}
	}
	return false
}

// CalculateTotals sums quantities and price x quantity over lines
func CalculateTotals(lines []Line) Totals {
	totals := Totals{
		LineCount:  len(lines),
		TotalPrice: decimal.Zero,
	}

	for _, line := range lines {
		totals.TotalItems += line.Quantity
		totals.TotalPrice = totals.TotalPrice.Add(line.Subtotal())
	}

	return totals
}

// RemoteCart is the cart document returned by GET /cart/my_cart/
type RemoteCart struct {
	ID         uint             `json:"id"`
	User       uint             `json:"user"`
	Items      []RemoteCartItem `json:"items"`
	TotalItems int              `json:"total_items"`
	TotalPrice decimal.Decimal  `json:"total_price"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// RemoteCartItem is one server-side cart item
type RemoteCartItem struct {
	ID         uint            `json:"id"`
	Product    product.Product `json:"product"`
	Quantity   int             `json:"quantity"`
	AddedAt    time.Time       `json:"added_at"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// Lines projects the remote items into cart lines. Items with a non-positive
// quantity are dropped and repeated products are folded into one line.
func (rc RemoteCart) Lines() []Line {
	projected := Cart{Lines: make([]Line, 0, len(rc.Items))}
	for _, item := range rc.Items {
		projected.Upsert(item.Product, item.Quantity)
	}
	return projected.Lines
}
