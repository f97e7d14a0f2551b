package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/go_storefront/internal/api"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

// CatalogAPI is the slice of the catalog client the cart path needs to
// resolve a product code into a full product line.
type CatalogAPI interface {
	Products(ctx context.Context, page int) (*domain.PagedProducts, error)
	Product(ctx context.Context, code string) (*domain.Product, error)
}

type CartFlow interface {
	View(ctx context.Context) (*domain.Cart, error)
	AddItem(ctx context.Context, product domain.Product) (*domain.Cart, error)
	SetQuantity(ctx context.Context, code string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, code string) (*domain.Cart, error)
	ClearCart(ctx context.Context) (*domain.Cart, error)
	ItemCount(ctx context.Context) (int, error)
}

type CartHandler struct {
	flow    CartFlow
	catalog CatalogAPI
	timeout time.Duration
}

func NewCartHandler(flow CartFlow, catalog CatalogAPI, timeout time.Duration) *CartHandler {
	return &CartHandler{
		flow:    flow,
		catalog: catalog,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	Code string `json:"code"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type ItemCountResponseDTO struct {
	Count int `json:"count"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.flow.View(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		respondError(w, http.StatusBadRequest, "invalid_code", "code must not be empty")
		return
	}

	// Resolve the code against the catalog so the cart line carries the
	// product detail the order payload needs later.
	product, err := h.catalog.Product(ctx, req.Code)
	if err != nil {
		handleAPIError(w, err)
		return
	}

	cart, err := h.flow.AddItem(ctx, *product)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update cart")
		return
	}
	respondJSON(w, http.StatusCreated, cart)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	code := chi.URLParam(r, "code")

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// Negative quantities clamp to zero downstream; no validation here.
	cart, err := h.flow.SetQuantity(ctx, code, req.Quantity)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update cart")
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	code := chi.URLParam(r, "code")

	cart, err := h.flow.RemoveItem(ctx, code)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update cart")
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.flow.ClearCart(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to clear cart")
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) ItemCount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	count, err := h.flow.ItemCount(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to count items")
		return
	}
	respondJSON(w, http.StatusOK, ItemCountResponseDTO{Count: count})
}

// handleAPIError maps a backend error to the local response, passing the
// backend's status and message through when they exist.
func handleAPIError(w http.ResponseWriter, err error) {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusNotFound:
			respondError(w, http.StatusNotFound, "not_found", apiErr.Message)
		case http.StatusUnauthorized:
			respondError(w, http.StatusUnauthorized, "unauthenticated", apiErr.Message)
		default:
			respondError(w, http.StatusBadGateway, "upstream_error", apiErr.Message)
		}
		return
	}
	respondError(w, http.StatusBadGateway, "upstream_unreachable", "backend unavailable")
}
