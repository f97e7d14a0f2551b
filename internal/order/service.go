package order

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/identity"
	"github.com/google/uuid"
)

var (
	ErrEmptyCart    = errors.New("cart is empty, nothing to order")
	ErrAuthRequired = errors.New("login required to place an order")
)

// OrdersAPI is the slice of the remote order API the submitter needs.
type OrdersAPI interface {
	Create(ctx context.Context, token string, req *domain.OrderRequest, idempotencyKey string) (*domain.OrderConfirmation, error)
	List(ctx context.Context, token string) ([]domain.OrderSummary, error)
	Get(ctx context.Context, token, orderNumber string) (*domain.OrderDetails, error)
}

// CartStore is the slice of the cart service the submitter needs: clearing
// after a confirmed order is its only cart side effect.
type CartStore interface {
	Clear(ctx context.Context) (*domain.Cart, error)
}

// Service drives one submission attempt through
// VALIDATING -> (AUTH_REQUIRED | SUBMITTING) -> (SUCCEEDED | FAILED).
type Service struct {
	api  OrdersAPI
	gate identity.Gate
	cart CartStore
}

func NewService(api OrdersAPI, gate identity.Gate, cart CartStore) *Service {
	return &Service{api: api, gate: gate, cart: cart}
}

// PlaceOrder validates, gates on the identity provider, then issues exactly
// one order-creation call. The cart is cleared only after the backend has
// confirmed the order with a number; on any failure it stays untouched so
// the user can retry without losing items.
func (s *Service) PlaceOrder(ctx context.Context, req *domain.OrderRequest) (string, error) {
	if len(req.Items) == 0 {
		return "", ErrEmptyCart
	}

	// Auth gate comes before any network activity: nothing is lost if the
	// user abandons the login that follows.
	if !s.gate.IsLoggedIn() {
		return "", ErrAuthRequired
	}
	token, err := s.gate.Token(ctx)
	if err != nil {
		// The session died between the check and the token fetch; same
		// branch, the caller sends the user to login.
		return "", fmt.Errorf("%w: %v", ErrAuthRequired, err)
	}

	conf, err := s.api.Create(ctx, token, req, uuid.NewString())
	if err != nil {
		return "", err
	}

	if _, err := s.cart.Clear(ctx); err != nil {
		// The order is already placed; a failed clear must not mask that.
		log.Printf("order %s placed but cart clear failed: %v", conf.OrderNumber, err)
	}
	return conf.OrderNumber, nil
}

// ListOrders requires a live session, matching the backend's bearer gate.
func (s *Service) ListOrders(ctx context.Context) ([]domain.OrderSummary, error) {
	if !s.gate.IsLoggedIn() {
		return nil, ErrAuthRequired
	}
	token, err := s.gate.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthRequired, err)
	}
	return s.api.List(ctx, token)
}

func (s *Service) GetOrder(ctx context.Context, orderNumber string) (*domain.OrderDetails, error) {
	// Detail view attaches the token when a session exists and lets the
	// backend decide; the confirmation page can be shown right after login.
	var token string
	if s.gate.IsLoggedIn() {
		if tok, err := s.gate.Token(ctx); err == nil {
			token = tok
		}
	}
	return s.api.Get(ctx, token, orderNumber)
}
