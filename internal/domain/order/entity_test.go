package order

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrder_Decode(t *testing.T) {
	body := `{
		"id": 7,
		"user": 3,
		"status": "processing",
		"total_amount": "45.00",
		"shipping_address": "123 Main St",
		"payment_method": "paypal",
		"items": [
			{"id": 1, "order": 7, "product": {"id": 10, "name": "Mug", "price": "12.50"}, "quantity": 2, "price": "10.00"},
			{"id": 2, "order": 7, "product": {"id": 11, "name": "Tee", "price": "25.00"}, "quantity": 1, "price": "25.00"}
		]
	}`

	var o Order
	require.NoError(t, json.Unmarshal([]byte(body), &o))

	assert.Equal(t, OrderStatusProcessing, o.Status)
	assert.Equal(t, PaymentMethodPayPal, o.PaymentMethod)
	assert.Equal(t, 3, o.ItemCount())
	// purchase-time price is kept independently of the current product price
	assert.True(t, o.Items[0].Subtotal().Equal(decimal.RequireFromString("20")))
	assert.True(t, o.TotalAmount.Equal(decimal.RequireFromString("45")))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Shipped", OrderStatusShipped.Label())
	assert.Equal(t, "unknown", OrderStatus("unknown").Label())
	assert.Equal(t, "Cash on delivery", PaymentMethodCashOnDelivery.Label())
	assert.Len(t, PaymentMethods, 5)
}
