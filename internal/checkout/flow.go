package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/fjod/go_storefront/internal/api"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/identity"
	"github.com/fjod/go_storefront/internal/order"
	"github.com/fjod/go_storefront/internal/storage"
)

// ErrSubmissionInFlight rejects a second submit while one is pending; the
// flow allows exactly one in-flight order call.
var ErrSubmissionInFlight = errors.New("an order submission is already in progress")

type Status string

const (
	StatusSucceeded    Status = "SUCCEEDED"
	StatusAuthRequired Status = "AUTH_REQUIRED"
	StatusRejected     Status = "REJECTED"
	StatusFailed       Status = "FAILED"
)

// Result is the outcome of one submission attempt. Exactly one of
// OrderNumber, LoginURL or Message is meaningful, selected by Status.
type Result struct {
	Status      Status
	OrderNumber string
	LoginURL    string
	Message     string
}

// Form is the locally held customer/delivery input a submission snapshots.
type Form struct {
	Customer        domain.Customer `json:"customer"`
	DeliveryAddress domain.Address  `json:"deliveryAddress"`
}

// Submitter is the slice of the order service the flow drives.
type Submitter interface {
	PlaceOrder(ctx context.Context, req *domain.OrderRequest) (string, error)
}

// CartService is the slice of the cart store the flow displays and edits.
type CartService interface {
	Get(ctx context.Context) (*domain.Cart, error)
	Add(ctx context.Context, product domain.Product) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, code string, quantity int) (*domain.Cart, error)
	Remove(ctx context.Context, code string) (*domain.Cart, error)
	Clear(ctx context.Context) (*domain.Cart, error)
	ItemCount(ctx context.Context) (int, error)
}

// Flow orchestrates the checkout interaction. It never mutates cart data it
// displays; the cart service is the sole source of truth and every edit
// re-reads from its return value.
type Flow struct {
	cart     CartService
	orders   Submitter
	gate     identity.Gate
	returnTo storage.Slot

	mu         sync.Mutex
	submitting bool
}

func NewFlow(cart CartService, orders Submitter, gate identity.Gate, returnTo storage.Slot) *Flow {
	return &Flow{
		cart:     cart,
		orders:   orders,
		gate:     gate,
		returnTo: returnTo,
	}
}

// View returns the current cart for display.
func (f *Flow) View(ctx context.Context) (*domain.Cart, error) {
	return f.cart.Get(ctx)
}

func (f *Flow) AddItem(ctx context.Context, product domain.Product) (*domain.Cart, error) {
	return f.cart.Add(ctx, product)
}

func (f *Flow) ItemCount(ctx context.Context) (int, error) {
	return f.cart.ItemCount(ctx)
}

func (f *Flow) SetQuantity(ctx context.Context, code string, quantity int) (*domain.Cart, error) {
	return f.cart.UpdateQuantity(ctx, code, quantity)
}

func (f *Flow) RemoveItem(ctx context.Context, code string) (*domain.Cart, error) {
	return f.cart.Remove(ctx, code)
}

func (f *Flow) ClearCart(ctx context.Context) (*domain.Cart, error) {
	return f.cart.Clear(ctx)
}

// Submit snapshots the cart into an OrderRequest and drives it through the
// submitter. currentPath is remembered as the post-login destination when
// the attempt bounces off the auth gate.
func (f *Flow) Submit(ctx context.Context, form Form, currentPath string) (*Result, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	f.submitting = true
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	cart, err := f.cart.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cart for submission: %w", err)
	}
	req := domain.NewOrderRequest(cart, form.Customer, form.DeliveryAddress)

	orderNumber, err := f.orders.PlaceOrder(ctx, req)
	switch {
	case err == nil:
		return &Result{Status: StatusSucceeded, OrderNumber: orderNumber}, nil

	case errors.Is(err, order.ErrEmptyCart):
		return &Result{Status: StatusRejected, Message: "Your cart is empty"}, nil

	case errors.Is(err, order.ErrAuthRequired):
		if saveErr := f.returnTo.Save(ctx, currentPath); saveErr != nil {
			log.Printf("checkout: persist post-login destination: %v", saveErr)
		}
		return &Result{Status: StatusAuthRequired, LoginURL: f.gate.LoginURL(currentPath)}, nil

	default:
		return &Result{Status: StatusFailed, Message: failureMessage(err)}, nil
	}
}

// ConsumeReturnPath pops the persisted post-login destination, defaulting
// to the storefront root. Read-once: a later login does not replay it.
func (f *Flow) ConsumeReturnPath(ctx context.Context) string {
	var path string
	found, err := f.returnTo.Load(ctx, &path)
	if err != nil {
		log.Printf("checkout: load post-login destination: %v", err)
	}
	if clearErr := f.returnTo.Clear(ctx); clearErr != nil {
		log.Printf("checkout: clear post-login destination: %v", clearErr)
	}
	if !found || path == "" {
		return "/"
	}
	return path
}

// failureMessage surfaces the backend's own message verbatim when there is
// one, and stays generic for transport-level failures.
func failureMessage(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "Failed to place order. Please try again."
}
