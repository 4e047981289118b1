// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-client/internal/domain/order"
)

// Checkouts places orders
type Checkouts interface {
	PlaceOrder(ctx context.Context, shippingAddress string, method order.PaymentMethod) (*order.Order, error)
}

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	checkouts Checkouts
	log       *logrus.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkouts Checkouts, log *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkouts: checkouts,
		log:       log,
	}
}

// Checkout handles POST /checkout. Missing fields are reported by the
// reconciler's validation rather than by binding tags so both surfaces
// produce the same error shape.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req order.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	placed, err := h.checkouts.PlaceOrder(c.Request.Context(), req.ShippingAddress, req.PaymentMethod)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    placed,
	})
}

// GetPaymentMethods handles GET /checkout/payment-methods
func (h *CheckoutHandler) GetPaymentMethods(c *gin.Context) {
	methods := make([]gin.H, 0, len(order.PaymentMethods))
	for _, m := range order.PaymentMethods {
		methods = append(methods, gin.H{
			"value": m,
			"label": m.Label(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"data": methods,
	})
}
