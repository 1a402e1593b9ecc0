// Package checkout is the reader side of the shared cart: the payment page
// that reconstructs the order from the channel and creates a payment intent.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/backend"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/cartstore"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/domain"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/session"
)

var (
	ErrEmptyOrder      = errors.New("order is empty, nothing to pay")
	ErrUnknownCheckout = errors.New("unknown or already confirmed checkout")
)

type PaymentBackend interface {
	CreatePaymentIntent(ctx context.Context, token string, req backend.PaymentIntentRequest) (backend.PaymentIntent, error)
}

// CompletionPublisher announces a confirmed payment to other contexts.
type CompletionPublisher interface {
	PublishCheckoutCompleted(ctx context.Context, ev CompletedEvent) error
}

type CompletedEvent struct {
	CheckoutID  string            `json:"checkout_id"`
	UserID      string            `json:"user_id"`
	Items       []CompletedItem   `json:"items"`
	TotalAmount domain.JSONAmount `json:"total_amount"`
	Currency    string            `json:"currency"`
	CompletedAt time.Time         `json:"completed_at"`
}

type CompletedItem struct {
	ProductID string            `json:"product_id"`
	Name      string            `json:"product_name"`
	Quantity  int               `json:"quantity"`
	UnitPrice domain.JSONAmount `json:"unit_price"`
}

type PaymentResult struct {
	CheckoutID   string
	ClientSecret string
	Order        domain.CartSnapshot
}

// OrderManager owns the order shown on the payment page. It reloads from the
// shared channel on start, whenever its context becomes active again, on
// every page load and right before charging.
type OrderManager struct {
	store     *cartstore.SharedCartStore
	session   *session.Session
	payments  PaymentBackend
	publisher CompletionPublisher
	currency  string
	log       *slog.Logger

	sfg         singleflight.Group
	mu          sync.RWMutex
	order       domain.CartSnapshot
	pending     map[string]domain.CartSnapshot // checkout id → order charged
	unsubscribe func()
}

func NewOrderManager(store *cartstore.SharedCartStore, sess *session.Session, payments PaymentBackend, currency string) *OrderManager {
	if currency == "" {
		currency = "COP"
	}
	return &OrderManager{
		store:    store,
		session:  sess,
		payments: payments,
		currency: currency,
		log:      slog.Default().With("component", "order_manager"),
		order:    domain.EmptySnapshot(),
		pending:  make(map[string]domain.CartSnapshot),
	}
}

// WithPublisher enables checkout-completed events.
func (m *OrderManager) WithPublisher(p CompletionPublisher) *OrderManager {
	m.publisher = p
	return m
}

// Start loads the order and subscribes to activity transitions.
func (m *OrderManager) Start(ctx context.Context) {
	m.Load(ctx)
	m.unsubscribe = m.store.OnBecomesActive(func() {
		// the triggering request may finish before the reload does
		m.Load(context.WithoutCancel(ctx))
	})
}

func (m *OrderManager) Stop() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Load re-reads the order and the session from the shared channel.
// Concurrent calls share one read.
func (m *OrderManager) Load(ctx context.Context) domain.CartSnapshot {
	v, _, _ := m.sfg.Do("load", func() (interface{}, error) {
		m.session.Restore(ctx)
		order := m.store.Read(ctx)

		m.mu.Lock()
		m.order = order
		m.mu.Unlock()

		m.log.DebugContext(ctx, "order reloaded", "lines", len(order.Lines), "total", order.Total.String())
		return order, nil
	})
	return v.(domain.CartSnapshot)
}

func (m *OrderManager) Order() domain.CartSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.order
}

func (m *OrderManager) Summary() Summary {
	return Summarize(m.Order(), m.currency)
}

// Pay re-reads the order and creates a payment intent for its total. The
// checkout stays pending until Confirm.
func (m *OrderManager) Pay(ctx context.Context) (PaymentResult, error) {
	order := m.Load(ctx)
	if order.IsEmpty() {
		return PaymentResult{}, ErrEmptyOrder
	}
	token, err := m.session.Token()
	if err != nil {
		return PaymentResult{}, err
	}

	checkoutID := uuid.NewString()
	intent, err := m.payments.CreatePaymentIntent(ctx, token, backend.PaymentIntentRequest{
		Amount:         order.Total,
		Currency:       m.currency,
		IdempotencyKey: checkoutID,
	})
	if err != nil {
		if backend.IsAuthError(err) {
			m.session.Clear(ctx)
		}
		return PaymentResult{}, fmt.Errorf("create payment intent: %w", err)
	}

	m.mu.Lock()
	m.pending[checkoutID] = order
	m.mu.Unlock()

	return PaymentResult{CheckoutID: checkoutID, ClientSecret: intent.ClientSecret, Order: order}, nil
}

// Confirm records that the client confirmed the payment for checkoutID and
// announces the completed checkout. Each checkout confirms once.
func (m *OrderManager) Confirm(ctx context.Context, checkoutID string) (domain.CartSnapshot, error) {
	m.mu.Lock()
	order, ok := m.pending[checkoutID]
	delete(m.pending, checkoutID)
	m.mu.Unlock()
	if !ok {
		return domain.CartSnapshot{}, ErrUnknownCheckout
	}

	m.publishCompleted(ctx, checkoutID, order)
	return order, nil
}

func (m *OrderManager) publishCompleted(ctx context.Context, checkoutID string, order domain.CartSnapshot) {
	if m.publisher == nil {
		return
	}
	user, _ := m.session.User()
	ev := CompletedEvent{
		CheckoutID:  checkoutID,
		UserID:      user.ID,
		Items:       make([]CompletedItem, 0, len(order.Lines)),
		TotalAmount: domain.JSONAmount(order.Total),
		Currency:    m.currency,
		CompletedAt: time.Now().UTC(),
	}
	for _, l := range order.Lines {
		ev.Items = append(ev.Items, CompletedItem{
			ProductID: l.ID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: domain.JSONAmount(l.UnitPrice),
		})
	}
	if err := m.publisher.PublishCheckoutCompleted(ctx, ev); err != nil {
		m.log.ErrorContext(ctx, "publish checkout completed failed", "checkout_id", checkoutID, "error", err)
	}
}
