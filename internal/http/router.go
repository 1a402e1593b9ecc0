// Package http exposes the storefront and the checkout contexts over HTTP.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterOptions struct {
	Service            string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	Logger             *slog.Logger
}

func newRouter(opts RouterOptions) chi.Router {
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.MaxRequestBodySize == 0 {
		opts.MaxRequestBodySize = 1 << 20
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(opts.Logger))
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(MaxBodySize(opts.MaxRequestBodySize))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}

func instrument(r chi.Router, service string) http.Handler {
	return otelhttp.NewHandler(r, service)
}

// NewStorefrontRouter serves the writer context.
func NewStorefrontRouter(h *StorefrontHandler, opts RouterOptions) http.Handler {
	r := newRouter(opts)

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.ListProducts)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/register", h.Register)
			r.Post("/logout", h.Logout)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Post("/items", h.AddItem)
			r.Put("/items/{product_id}", h.UpdateQuantity)
			r.Post("/items/{product_id}/increment", h.Increment)
			r.Post("/items/{product_id}/decrement", h.Decrement)
			r.Delete("/items/{product_id}", h.RemoveItem)
			r.Post("/checkout", h.Checkout)
		})

		r.Route("/admin/products", func(r chi.Router) {
			r.Post("/", h.CreateProduct)
			r.Put("/{product_id}", h.UpdateProduct)
			r.Delete("/{product_id}", h.DeleteProduct)
		})
	})

	return instrument(r, opts.Service)
}

// NewCheckoutRouter serves the reader context. Every API request touches
// activity, so the first one after an idle period reloads the order.
func NewCheckoutRouter(h *CheckoutHandler, opts RouterOptions) http.Handler {
	r := newRouter(opts)

	r.Route("/api", func(r chi.Router) {
		r.Use(ActivityMiddleware(h.activity))
		r.Get("/order", h.GetOrder)
		r.Post("/pay", h.Pay)
		r.Post("/pay/{checkout_id}/confirm", h.ConfirmPayment)
	})

	return instrument(r, opts.Service)
}
