// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog product as served by the storefront API.
// Price arrives as a decimal string ("19.99") and is kept exact.
type Product struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    Category        `json:"category"`
	Image       string          `json:"image,omitempty"`
	IsActive    bool            `json:"is_active"`
	IsAvailable bool            `json:"is_available"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Category represents product categories
type Category struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListFilter narrows product listings
type ListFilter struct {
	CategoryID uint
}

// InStock reports whether at least qty units can be ordered
func (p Product) InStock(qty int) bool {
	return p.IsAvailable && p.Stock >= qty
}
