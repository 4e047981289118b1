package product

import "github.com/shopspring/decimal"

// FormatPrice renders a price for display, e.g. "$12.50".
func FormatPrice(price decimal.Decimal) string {
	return "$" + price.StringFixed(2)
}
