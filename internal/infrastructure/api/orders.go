// internal/infrastructure/api/orders.go
package api

import (
	"context"
	"fmt"

	"github.com/your-org/storefront-client/internal/domain/order"
)

// ListOrders retrieves the order history of the logged in user
func (c *Client) ListOrders(ctx context.Context) ([]order.Order, error) {
	var raw rawList
	if err := c.get(ctx, "/orders/", nil, &raw); err != nil {
		return nil, err
	}
	orders, err := decodeList[order.Order](raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

// GetOrder retrieves an order by ID
func (c *Client) GetOrder(ctx context.Context, id uint) (*order.Order, error) {
	var o order.Order
	if err := c.get(ctx, fmt.Sprintf("/orders/%d/", id), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}
