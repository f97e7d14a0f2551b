package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/order"
	"github.com/go-chi/chi/v5"
)

// OrderHistory is the slice of the order service the history views need.
type OrderHistory interface {
	ListOrders(ctx context.Context) ([]domain.OrderSummary, error)
	GetOrder(ctx context.Context, orderNumber string) (*domain.OrderDetails, error)
}

type OrdersHandler struct {
	orders  OrderHistory
	timeout time.Duration
}

func NewOrdersHandler(orders OrderHistory, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
	}
}

// GET /api/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.orders.ListOrders(ctx)
	if err != nil {
		if errors.Is(err, order.ErrAuthRequired) {
			respondError(w, http.StatusUnauthorized, "unauthenticated", "login required to see orders")
			return
		}
		handleAPIError(w, err)
		return
	}
	if orders == nil {
		orders = []domain.OrderSummary{}
	}
	respondJSON(w, http.StatusOK, orders)
}

// GET /api/orders/{order_number}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderNumber := chi.URLParam(r, "order_number")

	details, err := h.orders.GetOrder(ctx, orderNumber)
	if err != nil {
		handleAPIError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, details)
}
