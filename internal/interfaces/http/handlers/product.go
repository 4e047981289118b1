// internal/interfaces/http/handlers/product.go
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-client/internal/domain/product"
)

// Catalog is the read side of the storefront
type Catalog interface {
	Products(ctx context.Context, filter product.ListFilter) ([]product.Product, error)
	SearchProducts(ctx context.Context, q string) ([]product.Product, error)
	Product(ctx context.Context, id uint) (*product.Product, error)
	Categories(ctx context.Context) ([]product.Category, error)
	Category(ctx context.Context, id uint) (*product.Category, error)
	CategoryProducts(ctx context.Context, id uint) ([]product.Product, error)
}

// ProductHandler handles catalog endpoints
type ProductHandler struct {
	catalog Catalog
	log     *logrus.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalog Catalog, log *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		log:     log,
	}
}

// GetProducts handles GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var filter product.ListFilter
	if categoryParam := c.Query("category"); categoryParam != "" {
		categoryID, err := strconv.ParseUint(categoryParam, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid category",
			})
			return
		}
		filter.CategoryID = uint(categoryID)
	}

	products, err := h.catalog.Products(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Products retrieved successfully",
		"data":    products,
	})
}

// SearchProducts handles GET /products/search
func (h *ProductHandler) SearchProducts(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Search query is required",
		})
		return
	}

	products, err := h.catalog.SearchProducts(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Search completed successfully",
		"data":    products,
		"query":   q,
	})
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	p, err := h.catalog.Product(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product retrieved successfully",
		"data":    p,
	})
}

// GetCategories handles GET /categories
func (h *ProductHandler) GetCategories(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Categories retrieved successfully",
		"data":    categories,
	})
}

// GetCategory handles GET /categories/:id
func (h *ProductHandler) GetCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	category, err := h.catalog.Category(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Category retrieved successfully",
		"data":    category,
	})
}

// GetCategoryProducts handles GET /categories/:id/products
func (h *ProductHandler) GetCategoryProducts(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	products, err := h.catalog.CategoryProducts(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Products retrieved successfully",
		"data":    products,
	})
}
