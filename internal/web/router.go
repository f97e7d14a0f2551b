package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterDeps struct {
	Cart     *CartHandler
	Products *ProductHandler
	Orders   *OrdersHandler
	Checkout *CheckoutHandler
	Auth     *AuthHandler

	RequestTimeout time.Duration
}

func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(deps.RequestTimeout))
	r.Use(middleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Get("/status", deps.Auth.Status)
		r.Get("/login", deps.Auth.Login)
		r.Get("/callback", deps.Auth.Callback)
		r.Post("/logout", deps.Auth.Logout)
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", deps.Products.ListProducts)
			r.Get("/{code}", deps.Products.GetProduct)
		})
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", deps.Cart.GetCart)
			r.Delete("/", deps.Cart.ClearCart)
			r.Get("/count", deps.Cart.ItemCount)
			r.Post("/items", deps.Cart.AddItem)
			r.Put("/items/{code}", deps.Cart.UpdateQuantity)
			r.Delete("/items/{code}", deps.Cart.RemoveItem)
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", deps.Orders.ListOrders)
			r.Get("/{order_number}", deps.Orders.GetOrder)
		})
		r.Post("/checkout", deps.Checkout.Submit)
	})

	return otelhttp.NewHandler(r, "storefront")
}
