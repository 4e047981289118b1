// internal/infrastructure/api/cart.go
package api

import (
	"context"
	"fmt"

	"github.com/your-org/storefront-client/internal/domain/cart"
	"github.com/your-org/storefront-client/internal/domain/order"
)

type addItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type removeItemRequest struct {
	ProductID uint `json:"product_id"`
}

// GetCart retrieves the cart of the logged in user
func (c *Client) GetCart(ctx context.Context) (*cart.RemoteCart, error) {
	var rc cart.RemoteCart
	if err := c.get(ctx, "/cart/my_cart/", nil, &rc); err != nil {
		return nil, err
	}
	return &rc, nil
}

// AddItem adds quantity units of a product to the remote cart
func (c *Client) AddItem(ctx context.Context, productID uint, quantity int) error {
	return c.post(ctx, "/cart/add_item/", addItemRequest{ProductID: productID, Quantity: quantity}, nil)
}

// RemoveItem removes a product from the remote cart
func (c *Client) RemoveItem(ctx context.Context, productID uint) error {
	return c.post(ctx, "/cart/remove_item/", removeItemRequest{ProductID: productID}, nil)
}

// Checkout turns the remote cart into an order. A {"success": false}
// envelope is reported as an APIError.
func (c *Client) Checkout(ctx context.Context, req order.CheckoutRequest) (*order.Order, error) {
	var resp order.CheckoutResponse
	if err := c.post(ctx, "/cart/checkout/", req, &resp); err != nil {
		return nil, err
	}

	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "checkout was rejected"
		}
		return nil, &APIError{StatusCode: 200, Message: msg}
	}

	if resp.Order == nil {
		return nil, fmt.Errorf("checkout succeeded without an order in the response")
	}

	return resp.Order, nil
}
