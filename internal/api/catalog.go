package api

import (
	"context"
	"fmt"

	"github.com/fjod/go_storefront/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CatalogClient reads the product catalog. Listing is public, no bearer
// token is attached.
type CatalogClient struct {
	client *Client
	sfg    singleflight.Group // collapses concurrent lookups of one product
}

func NewCatalogClient(client *Client) *CatalogClient {
	return &CatalogClient{client: client}
}

func (c *CatalogClient) Products(ctx context.Context, page int) (*domain.PagedProducts, error) {
	if page < 1 {
		page = 1
	}
	var out domain.PagedProducts
	if err := c.client.Get(ctx, fmt.Sprintf("/products?page=%d", page), "", &out); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return &out, nil
}

func (c *CatalogClient) Product(ctx context.Context, code string) (*domain.Product, error) {
	v, err, _ := c.sfg.Do(code, func() (interface{}, error) {
		var out domain.Product
		if err := c.client.Get(ctx, "/products/"+code, "", &out); err != nil {
			return nil, fmt.Errorf("get product %s: %w", code, err)
		}
		return &out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Product), nil
}
