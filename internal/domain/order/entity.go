// internal/domain/order/entity.go
package order

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-client/internal/domain/product"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Label returns the human readable status
func (s OrderStatus) Label() string {
	switch s {
	case OrderStatusPending:
		return "Pending"
	case OrderStatusProcessing:
		return "Processing"
	case OrderStatusShipped:
		return "Shipped"
	case OrderStatusDelivered:
		return "Delivered"
	case OrderStatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// PaymentMethod identifies how an order is paid
type PaymentMethod string

const (
	PaymentMethodCreditCard     PaymentMethod = "credit_card"
	PaymentMethodDebitCard      PaymentMethod = "debit_card"
	PaymentMethodPayPal         PaymentMethod = "paypal"
	PaymentMethodBankTransfer   PaymentMethod = "bank_transfer"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
)

// PaymentMethods lists the methods offered at checkout, in display order
var PaymentMethods = []PaymentMethod{
	PaymentMethodCreditCard,
	PaymentMethodDebitCard,
	PaymentMethodPayPal,
	PaymentMethodBankTransfer,
	PaymentMethodCashOnDelivery,
}

// Label returns the human readable payment method
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentMethodCreditCard:
		return "Credit card"
	case PaymentMethodDebitCard:
		return "Debit card"
	case PaymentMethodPayPal:
		return "PayPal"
	case PaymentMethodBankTransfer:
		return "Bank transfer"
	case PaymentMethodCashOnDelivery:
		return "Cash on delivery"
	default:
		return string(m)
	}
}

// Order is immutable once created by the API
type Order struct {
	ID              uint            `json:"id"`
	User            uint            `json:"user"`
	Status          OrderStatus     `json:"status"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ShippingAddress string          `json:"shipping_address"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	Items           []OrderItem     `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem is a snapshot of a purchased product; Price is the unit price at purchase time
type OrderItem struct {
	ID       uint            `json:"id"`
	Order    uint            `json:"order"`
	Product  product.Product `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Subtotal returns unit price times quantity
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemCount returns the number of units in the order
func (o Order) ItemCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

// CheckoutRequest is the body of POST /cart/checkout/
type CheckoutRequest struct {
	ShippingAddress string        `json:"shipping_address"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
}

// CheckoutResponse is the envelope returned by POST /cart/checkout/
type CheckoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Order   *Order `json:"order,omitempty"`
	Error   string `json:"error,omitempty"`
}
