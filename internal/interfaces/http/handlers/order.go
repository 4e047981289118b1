// internal/interfaces/http/handlers/order.go
package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-client/internal/domain/order"
	"github.com/your-org/storefront-client/internal/pkg/pdf"
)

// Orders is the order history of the logged in user
type Orders interface {
	Orders(ctx context.Context) ([]order.Order, error)
	Order(ctx context.Context, id uint) (*order.Order, error)
	Receipt(ctx context.Context, id uint) (*bytes.Buffer, error)
	ReceiptHTML(ctx context.Context, id uint) (string, error)
}

// OrderHandler handles order endpoints
type OrderHandler struct {
	orders Orders
	log    *logrus.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders Orders, log *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		log:    log,
	}
}

// GetOrders handles GET /orders
func (h *OrderHandler) GetOrders(c *gin.Context) {
	orders, err := h.orders.Orders(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    orders,
	})
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	o, err := h.orders.Order(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    o,
	})
}

// GetReceipt handles GET /orders/:id/receipt. ?format=html returns the
// markup instead of the PDF.
func (h *OrderHandler) GetReceipt(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if c.Query("format") == "html" {
		html, err := h.orders.ReceiptHTML(c.Request.Context(), id)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
		return
	}

	pdfBuffer, err := h.orders.Receipt(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", pdf.ReceiptNumber(id)))
	c.Header("Content-Length", strconv.Itoa(pdfBuffer.Len()))
	c.Data(http.StatusOK, "application/pdf", pdfBuffer.Bytes())
}
