package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/backend"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/cartstore"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/domain"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/session"
)

// CartBackend is the part of the backend API the cart needs.
type CartBackend interface {
	GetCart(ctx context.Context, token string) (domain.CartSnapshot, error)
	AddItem(ctx context.Context, token, productID string, quantity int) (domain.CartSnapshot, error)
	UpdateItem(ctx context.Context, token, productID string, quantity int) (domain.CartSnapshot, error)
	RemoveItem(ctx context.Context, token, productID string) (domain.CartSnapshot, error)
}

// CartService is the writer side of the shared cart. It keeps the last good
// cart in memory and publishes a full snapshot after every successful
// mutation, before the mutation returns.
type CartService struct {
	backend CartBackend
	store   *cartstore.SharedCartStore
	session *session.Session
	log     *slog.Logger

	// mu serializes mutations so snapshot writes follow program order.
	mu   sync.Mutex
	cart domain.CartSnapshot
}

func NewCartService(b CartBackend, store *cartstore.SharedCartStore, sess *session.Session) *CartService {
	return &CartService{
		backend: b,
		store:   store,
		session: sess,
		log:     slog.Default().With("component", "cart_service"),
		cart:    domain.EmptySnapshot(),
	}
}

// Cart returns the last good cart.
func (s *CartService) Cart() domain.CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart
}

func (s *CartService) ItemCount() int {
	return s.Cart().ItemCount()
}

// Load refreshes the cart, with live prices, from the backend.
func (s *CartService) Load(ctx context.Context) (domain.CartSnapshot, error) {
	return s.mutate(ctx, "load cart", func(token string) (domain.CartSnapshot, error) {
		return s.backend.GetCart(ctx, token)
	})
}

// AddItem adds one unit of product. Fields missing from the backend answer
// are taken from the product the user clicked.
func (s *CartService) AddItem(ctx context.Context, product domain.Product) (domain.CartSnapshot, error) {
	if product.ID == "" {
		return domain.CartSnapshot{}, fmt.Errorf("%w: product id is required", ErrInvalidInput)
	}
	return s.mutate(ctx, "add item", func(token string) (domain.CartSnapshot, error) {
		snap, err := s.backend.AddItem(ctx, token, product.ID, 1)
		if err != nil {
			return snap, err
		}
		return fillFromProduct(snap, product), nil
	})
}

// UpdateQuantity sets the quantity of a line. A quantity <= 0 removes it.
func (s *CartService) UpdateQuantity(ctx context.Context, productID string, quantity int) (domain.CartSnapshot, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, productID)
	}
	return s.mutate(ctx, "update quantity", func(token string) (domain.CartSnapshot, error) {
		return s.backend.UpdateItem(ctx, token, productID, quantity)
	})
}

func (s *CartService) Increment(ctx context.Context, productID string) (domain.CartSnapshot, error) {
	return s.UpdateQuantity(ctx, productID, s.quantityOf(productID)+1)
}

func (s *CartService) Decrement(ctx context.Context, productID string) (domain.CartSnapshot, error) {
	return s.UpdateQuantity(ctx, productID, s.quantityOf(productID)-1)
}

func (s *CartService) RemoveItem(ctx context.Context, productID string) (domain.CartSnapshot, error) {
	return s.mutate(ctx, "remove item", func(token string) (domain.CartSnapshot, error) {
		return s.backend.RemoveItem(ctx, token, productID)
	})
}

// Checkout publishes the current cart with its total for the payment page.
func (s *CartService) Checkout(ctx context.Context) (domain.CartSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart.IsEmpty() {
		return domain.CartSnapshot{}, ErrEmptyCart
	}
	snap := domain.NewSnapshot(s.cart.Lines)
	s.store.Write(ctx, snap)
	return snap, nil
}

// Reset forgets the cart locally and in the shared channel. Used on logout,
// where the snapshot must not outlive the session.
func (s *CartService) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = domain.EmptySnapshot()
	s.store.Clear(ctx)
}

func (s *CartService) quantityOf(productID string) int {
	l, ok := s.Cart().Line(productID)
	if !ok {
		return 0
	}
	return l.Quantity
}

func (s *CartService) mutate(ctx context.Context, op string, fn func(token string) (domain.CartSnapshot, error)) (domain.CartSnapshot, error) {
	token, err := s.session.Token()
	if err != nil {
		return domain.CartSnapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := fn(token)
	if err != nil {
		if backend.IsAuthError(err) {
			s.log.WarnContext(ctx, "session rejected by backend", "op", op, "error", err)
			s.session.Clear(ctx)
			s.cart = domain.EmptySnapshot()
			s.store.Clear(ctx)
			return domain.CartSnapshot{}, err
		}
		s.log.ErrorContext(ctx, "cart operation failed", "op", op, "error", err)
		return s.cart, err
	}

	s.cart = snap
	s.store.Write(ctx, snap)
	return snap, nil
}

func fillFromProduct(snap domain.CartSnapshot, p domain.Product) domain.CartSnapshot {
	line, ok := snap.Line(p.ID)
	if !ok {
		return snap
	}
	fallback := p.Line()
	if line.Name == domain.DefaultLineName {
		line.Name = fallback.Name
	}
	if line.UnitPrice.IsZero() {
		line.UnitPrice = fallback.UnitPrice
	}
	if line.ImageURL == "" {
		line.ImageURL = fallback.ImageURL
	}
	line.RequiresPrescription = line.RequiresPrescription || fallback.RequiresPrescription
	return snap.WithLine(line)
}
