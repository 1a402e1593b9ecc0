package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/cartstore"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/checkout"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/domain"
)

type OrderService interface {
	Load(ctx context.Context) domain.CartSnapshot
	Summary() checkout.Summary
	Pay(ctx context.Context) (checkout.PaymentResult, error)
	Confirm(ctx context.Context, checkoutID string) (domain.CartSnapshot, error)
}

type CheckoutHandler struct {
	orders   OrderService
	activity *cartstore.Activity
	timeout  time.Duration
}

func NewCheckoutHandler(orders OrderService, activity *cartstore.Activity, timeout time.Duration) *CheckoutHandler {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &CheckoutHandler{
		orders:   orders,
		activity: activity,
		timeout:  timeout,
	}
}

type PaymentResponse struct {
	CheckoutID   string `json:"checkout_id"`
	ClientSecret string `json:"client_secret"`
	Total        string `json:"total"`
	Currency     string `json:"currency"`
}

type ConfirmResponse struct {
	CheckoutID string `json:"checkout_id"`
	Status     string `json:"status"`
	Total      string `json:"total"`
}

// GetOrder is a page load: it always re-reads the channel.
func (h *CheckoutHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	h.orders.Load(r.Context())
	respondJSON(w, http.StatusOK, h.orders.Summary())
}

func (h *CheckoutHandler) Pay(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, err := h.orders.Pay(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}
	summary := h.orders.Summary()
	respondJSON(w, http.StatusCreated, PaymentResponse{
		CheckoutID:   res.CheckoutID,
		ClientSecret: res.ClientSecret,
		Total:        checkout.FormatAmount(res.Order.Total),
		Currency:     summary.Currency,
	})
}

// ConfirmPayment is called once the client confirmed the card payment for a
// checkout created by Pay.
func (h *CheckoutHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	checkoutID := chi.URLParam(r, "checkout_id")
	order, err := h.orders.Confirm(ctx, checkoutID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ConfirmResponse{
		CheckoutID: checkoutID,
		Status:     "confirmed",
		Total:      checkout.FormatAmount(order.Total),
	})
}
