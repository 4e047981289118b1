// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-client/internal/domain/cart"
)

// Carts is the active cart of the client
type Carts interface {
	Cart() cart.Cart
	AddToCart(ctx context.Context, productID uint, quantity int) error
	RemoveFromCart(ctx context.Context, productID uint) error
	UpdateCartQuantity(ctx context.Context, productID uint, quantity int) error
	SyncCart(ctx context.Context) error
	ClearCart(ctx context.Context) error
}

// AddToCartRequest is the body of POST /cart/items
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

// UpdateCartItemRequest is the body of PUT /cart/items/:id
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// CartResponse is the cart as rendered by the shell
type CartResponse struct {
	Source string      `json:"source"`
	Items  []cart.Line `json:"items"`
	Totals cart.Totals `json:"totals"`
}

// CartHandler handles cart endpoints
type CartHandler struct {
	carts Carts
	log   *logrus.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts Carts, log *logrus.Logger) *CartHandler {
	return &CartHandler{
		carts: carts,
		log:   log,
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    h.render(),
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if err := h.carts.AddToCart(c.Request.Context(), req.ProductID, req.Quantity); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    h.render(),
	})
}

// UpdateCartItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := h.carts.UpdateCartQuantity(c.Request.Context(), productID, *req.Quantity); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    h.render(),
	})
}

// RemoveFromCart handles DELETE /cart/items/:id
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.carts.RemoveFromCart(c.Request.Context(), productID); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    h.render(),
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.carts.ClearCart(c.Request.Context()); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
		"data":    h.render(),
	})
}

// SyncCart handles POST /cart/sync
func (h *CartHandler) SyncCart(c *gin.Context) {
	if err := h.carts.SyncCart(c.Request.Context()); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart synced successfully",
		"data":    h.render(),
	})
}

func (h *CartHandler) render() CartResponse {
	current := h.carts.Cart()
	items := current.Lines
	if items == nil {
		items = []cart.Line{}
	}
	return CartResponse{
		Source: current.Source.String(),
		Items:  items,
		Totals: current.Totals(),
	}
}
