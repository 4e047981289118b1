package pdf

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-client/internal/config"
	"github.com/your-org/storefront-client/internal/domain/order"
	"github.com/your-org/storefront-client/internal/domain/product"
	"github.com/your-org/storefront-client/internal/domain/user"
)

func testService() *Service {
	cfg := &config.Config{
		Store: config.StoreConfig{
			Name:  "Tienda Online",
			Email: "ventas@example.com",
		},
	}
	s := NewService(cfg)
	s.now = func() time.Time { return time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestRenderHTML(t *testing.T) {
	o := &order.Order{
		ID:              42,
		Status:          order.OrderStatusProcessing,
		TotalAmount:     decimal.RequireFromString("27.50"),
		ShippingAddress: "123 Main St",
		PaymentMethod:   order.PaymentMethodPayPal,
		Items: []order.OrderItem{
			{Product: product.Product{Name: "Mug"}, Quantity: 2, Price: decimal.RequireFromString("12.50")},
			{Product: product.Product{Name: "Pen & Pencil"}, Quantity: 1, Price: decimal.RequireFromString("2.50")},
		},
	}
	customer := &user.User{Username: "ada", FirstName: "Ada", LastName: "Lovelace"}

	html, err := testService().RenderHTML(o, customer)
	require.NoError(t, err)

	assert.Contains(t, html, "RCPT-000042")
	assert.Contains(t, html, "March 9, 2024")
	assert.Contains(t, html, "Tienda Online")
	assert.Contains(t, html, "Ada Lovelace")
	assert.Contains(t, html, "123 Main St")
	assert.Contains(t, html, "PayPal")
	assert.Contains(t, html, "Processing")
	assert.Contains(t, html, "$25.00")
	assert.Contains(t, html, "$27.50")
	assert.Contains(t, html, "Pen &amp; Pencil")
}

func TestRenderHTML_WithoutCustomer(t *testing.T) {
	html, err := testService().RenderHTML(&order.Order{ID: 1, TotalAmount: decimal.Zero}, nil)
	require.NoError(t, err)
	assert.Contains(t, html, "$0.00")
}

func TestRenderHTML_NilOrder(t *testing.T) {
	_, err := testService().RenderHTML(nil, nil)
	assert.Error(t, err)
}
