package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

type ProductHandler struct {
	catalog CatalogAPI
	timeout time.Duration
}

func NewProductHandler(catalog CatalogAPI, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		timeout: timeout,
	}
}

// GET /api/products?page=N
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(w, http.StatusBadRequest, "invalid_page", "page must be a positive integer")
			return
		}
		page = parsed
	}

	products, err := h.catalog.Products(ctx, page)
	if err != nil {
		handleAPIError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// GET /api/products/{code}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	code := chi.URLParam(r, "code")

	product, err := h.catalog.Product(ctx, code)
	if err != nil {
		handleAPIError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}
