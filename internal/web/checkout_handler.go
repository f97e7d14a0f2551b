package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/checkout"
)

// CheckoutFlow is the submission surface of the checkout orchestration.
type CheckoutFlow interface {
	Submit(ctx context.Context, form checkout.Form, currentPath string) (*checkout.Result, error)
}

type CheckoutHandler struct {
	flow    CheckoutFlow
	timeout time.Duration
}

func NewCheckoutHandler(flow CheckoutFlow, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		flow:    flow,
		timeout: timeout,
	}
}

type SubmitRequestDTO struct {
	checkout.Form
	// ReturnTo is remembered as the post-login destination when the
	// submission bounces off the auth gate.
	ReturnTo string `json:"returnTo"`
}

type SubmitResponseDTO struct {
	OrderNumber string `json:"orderNumber,omitempty"`
	LoginURL    string `json:"loginUrl,omitempty"`
}

// POST /api/checkout
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SubmitRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ReturnTo == "" {
		req.ReturnTo = "/cart"
	}

	result, err := h.flow.Submit(ctx, req.Form, req.ReturnTo)
	if err != nil {
		if errors.Is(err, checkout.ErrSubmissionInFlight) {
			respondError(w, http.StatusConflict, "submission_in_flight", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to submit order")
		return
	}

	switch result.Status {
	case checkout.StatusSucceeded:
		respondJSON(w, http.StatusCreated, SubmitResponseDTO{OrderNumber: result.OrderNumber})
	case checkout.StatusAuthRequired:
		respondJSON(w, http.StatusUnauthorized, SubmitResponseDTO{LoginURL: result.LoginURL})
	case checkout.StatusRejected:
		respondError(w, http.StatusBadRequest, "empty_cart", result.Message)
	default:
		respondError(w, http.StatusBadGateway, "order_failed", result.Message)
	}
}
