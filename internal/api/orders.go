package api

import (
	"context"
	"fmt"

	"github.com/fjod/go_storefront/internal/domain"
)

// OrdersClient talks to the remote order API. All calls carry the caller's
// bearer token; the client itself never decides auth.
type OrdersClient struct {
	client *Client
}

func NewOrdersClient(client *Client) *OrdersClient {
	return &OrdersClient{client: client}
}

// Create issues exactly one order-creation call. The idempotency key lets
// the backend drop an accidental duplicate of the same attempt.
func (o *OrdersClient) Create(ctx context.Context, token string, req *domain.OrderRequest, idempotencyKey string) (*domain.OrderConfirmation, error) {
	var out domain.OrderConfirmation
	headers := map[string]string{"Idempotency-Key": idempotencyKey}
	if err := o.client.Post(ctx, "/orders", token, req, &out, headers); err != nil {
		return nil, err
	}
	return &out, nil
}

func (o *OrdersClient) List(ctx context.Context, token string) ([]domain.OrderSummary, error) {
	var out []domain.OrderSummary
	if err := o.client.Get(ctx, "/orders", token, &out); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return out, nil
}

func (o *OrdersClient) Get(ctx context.Context, token, orderNumber string) (*domain.OrderDetails, error) {
	var out domain.OrderDetails
	if err := o.client.Get(ctx, "/orders/"+orderNumber, token, &out); err != nil {
		return nil, fmt.Errorf("get order %s: %w", orderNumber, err)
	}
	return &out, nil
}
