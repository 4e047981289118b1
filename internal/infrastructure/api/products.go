// internal/infrastructure/api/products.go
package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/your-org/storefront-client/internal/domain/product"
)

// ListProducts retrieves the catalog, optionally limited to one category
func (c *Client) ListProducts(ctx context.Context, filter product.ListFilter) ([]product.Product, error) {
	query := url.Values{}
	if filter.CategoryID != 0 {
		query.Set("category", strconv.FormatUint(uint64(filter.CategoryID), 10))
	}
	return c.productList(ctx, "/products/", query)
}

// SearchProducts finds products by name
func (c *Client) SearchProducts(ctx context.Context, q string) ([]product.Product, error) {
	return c.productList(ctx, "/products/search/", url.Values{"q": {q}})
}

// GetProduct retrieves a product by ID
func (c *Client) GetProduct(ctx context.Context, id uint) (*product.Product, error) {
	var p product.Product
	if err := c.get(ctx, fmt.Sprintf("/products/%d/", id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListCategories retrieves all categories
func (c *Client) ListCategories(ctx context.Context) ([]product.Category, error) {
	var raw rawList
	if err := c.get(ctx, "/categories/", nil, &raw); err != nil {
		return nil, err
	}
	categories, err := decodeList[product.Category](raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return categories, nil
}

// GetCategory retrieves a category by ID
func (c *Client) GetCategory(ctx context.Context, id uint) (*product.Category, error) {
	var category product.Category
	if err := c.get(ctx, fmt.Sprintf("/categories/%d/", id), nil, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// CategoryProducts retrieves the products of one category
func (c *Client) CategoryProducts(ctx context.Context, id uint) ([]product.Product, error) {
	return c.productList(ctx, fmt.Sprintf("/categories/%d/products/", id), nil)
}

func (c *Client) productList(ctx context.Context, path string, query url.Values) ([]product.Product, error) {
	var raw rawList
	if err := c.get(ctx, path, query, &raw); err != nil {
		return nil, err
	}
	products, err := decodeList[product.Product](raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}
