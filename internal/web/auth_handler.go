package web

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/identity"
)

// AuthProvider is the identity gate plus the code exchange the callback
// endpoint needs.
type AuthProvider interface {
	identity.Gate
	Exchange(ctx context.Context, code, state string) (string, error)
}

// ReturnPathSource yields the persisted post-login destination.
type ReturnPathSource interface {
	ConsumeReturnPath(ctx context.Context) string
}

type AuthHandler struct {
	gate    AuthProvider
	returns ReturnPathSource
	timeout time.Duration
}

func NewAuthHandler(gate AuthProvider, returns ReturnPathSource, timeout time.Duration) *AuthHandler {
	return &AuthHandler{
		gate:    gate,
		returns: returns,
		timeout: timeout,
	}
}

type AuthStatusDTO struct {
	LoggedIn bool `json:"loggedIn"`
}

// GET /auth/status
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, AuthStatusDTO{LoggedIn: h.gate.IsLoggedIn()})
}

// GET /auth/login?next=/cart
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	if next == "" {
		next = "/"
	}
	http.Redirect(w, r, h.gate.LoginURL(next), http.StatusFound)
}

// GET /auth/callback?code=...&state=...
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" {
		respondError(w, http.StatusBadRequest, "invalid_callback", "missing authorization code")
		return
	}

	if _, err := h.gate.Exchange(ctx, code, state); err != nil {
		respondError(w, http.StatusUnauthorized, "login_failed", "could not complete login")
		return
	}

	http.Redirect(w, r, h.returns.ConsumeReturnPath(ctx), http.StatusFound)
}

// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.gate.Logout(ctx); err != nil {
		respondError(w, http.StatusInternalServerError, "logout_failed", "could not clear session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
